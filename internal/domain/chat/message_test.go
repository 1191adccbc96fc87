package chat

import (
	"errors"
	"testing"

	apperrors "atendezap/pkg/errors"
)

func TestValidatePayload(t *testing.T) {
	tests := []struct {
		name    string
		kind    MessageKind
		body    string
		fileURL string
		wantErr bool
	}{
		{"text with body", KindText, "hello", "", false},
		{"text without body", KindText, "", "", true},
		{"pix with body", KindPix, "00020126...", "", false},
		{"pix without body", KindPix, "", "", true},
		{"department selection with body", KindDepartmentSelection, "suporte", "", false},
		{"image with url", KindImage, "", "https://cdn.example.com/a.jpg", false},
		{"image without url", KindImage, "caption only", "", true},
		{"video with url", KindVideo, "", "https://cdn.example.com/a.mp4", false},
		{"audio without url", KindAudio, "", "", true},
		{"unknown kind", MessageKind("sticker"), "x", "x", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := Message{
				Kind:    tt.kind,
				Body:    nullStr(tt.body),
				FileURL: nullStr(tt.fileURL),
			}
			err := m.ValidatePayload()
			if tt.wantErr {
				if !errors.Is(err, apperrors.ErrInvalidPayload) {
					t.Fatalf("expected ErrInvalidPayload, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
		})
	}
}

func TestIsMedia(t *testing.T) {
	media := []MessageKind{KindImage, KindVideo, KindAudio}
	for _, kind := range media {
		if !(Message{Kind: kind}).IsMedia() {
			t.Errorf("%s should be media", kind)
		}
	}
	notMedia := []MessageKind{KindText, KindPix, KindDepartmentSelection}
	for _, kind := range notMedia {
		if (Message{Kind: kind}).IsMedia() {
			t.Errorf("%s should not be media", kind)
		}
	}
}

func nullStr(s string) NullString {
	return NewNullString(s)
}
