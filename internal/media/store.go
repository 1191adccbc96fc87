package media

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"
)

// StoreConfig configures the S3-backed media store.
type StoreConfig struct {
	Region     string
	Bucket     string
	PublicBase string
}

// Store writes media payloads to object storage and hands back the URL that
// goes into the message's fileUrl. Everything past producing that URL
// (virus scans, thumbnails, the upload UI) lives outside this core.
type Store struct {
	cfg StoreConfig
	s3  *s3.Client
}

func NewStore(ctx context.Context, cfg StoreConfig) (*Store, error) {
	if cfg.Region == "" || cfg.Bucket == "" {
		return nil, errors.New("s3 region and bucket are required")
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(cfg.Region))
	if err != nil {
		return nil, err
	}

	return &Store{
		cfg: cfg,
		s3:  s3.NewFromConfig(awsCfg),
	}, nil
}

// Put uploads a media blob under a fresh key and returns its public URL.
func (s *Store) Put(ctx context.Context, contentType string, payload []byte) (string, error) {
	key := fmt.Sprintf("media/%d/%s", time.Now().Year(), uuid.New().String())

	_, err := s.s3.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.cfg.Bucket),
		Key:         aws.String(key),
		ContentType: aws.String(contentType),
		Body:        bytes.NewReader(payload),
	})
	if err != nil {
		return "", err
	}

	if s.cfg.PublicBase != "" {
		return fmt.Sprintf("%s/%s", s.cfg.PublicBase, key), nil
	}
	return fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s", s.cfg.Bucket, s.cfg.Region, key), nil
}
