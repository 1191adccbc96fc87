package main

import (
	"context"
	"time"

	"atendezap/config"
	"atendezap/internal/bridge"
	"atendezap/internal/events"
	"atendezap/internal/handler"
	"atendezap/internal/hub"
	"atendezap/internal/media"
	appredis "atendezap/internal/redis"
	"atendezap/internal/registry"
	"atendezap/internal/repository"
	"atendezap/internal/server"
	"atendezap/internal/services"
	"atendezap/internal/supervisor"
	"atendezap/pkg/database"
	"atendezap/pkg/logger"
)

func main() {
	cfg := config.LoadConfig()

	l := logger.New(cfg.AppMode)
	logger.SetGlobalLogger(l)

	database.Connect(cfg)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	messageRepo := repository.NewMessageRepository(database.DB)
	ticketRepo := repository.NewTicketRepository(database.DB)
	connectionRepo := repository.NewConnectionRepository(database.DB)

	redisClient := appredis.NewClient(appredis.Config{
		Host:     cfg.RedisHost,
		Port:     cfg.RedisPort,
		Password: cfg.RedisPassword,
	})
	presence := appredis.NewPresenceStore(redisClient, 0)

	// Local fan-out hub plus a redis relay so peers on other instances see
	// the same events. A shared deduper keeps relayed copies of our own
	// events from being delivered twice.
	h := hub.New(l)

	dedup := events.NewDeduper(4096)
	local := events.NewDedupPublisher(dedup, events.PublisherFunc(h.Publish))
	publisher := events.Fanout{
		local,
		events.NewRelayPublisher(appredis.NewPublisher(redisClient)),
	}

	bridgeClient := bridge.NewClient(cfg.BridgeURL, cfg.BridgeSecretKey, time.Duration(cfg.BridgeTimeoutSec)*time.Second)
	reg := registry.New(bridgeClient, connectionRepo, publisher, l)
	if err := reg.Restore(ctx); err != nil {
		l.Warnf("restore sessions: %s", err)
	}

	relay := events.NewRelayBridge(appredis.NewSubscriber(redisClient), local, l)
	reconnector := supervisor.NewReconnector(0, l)
	go reconnector.Run(ctx, "event-relay", relay.Run)

	picker := services.NewRoundRobinPicker(cfg.AgentIDs, presence, l)
	messageService := services.NewMessageService(database.DB, messageRepo, ticketRepo, publisher, picker)
	ticketService := services.NewTicketService(ticketRepo, cfg.AIEnabledDefault)
	authService := services.NewAuthService(cfg.JWTSecret)

	sweeper := media.NewSweeper(messageRepo, cfg.MediaRetentionDays, l)
	go sweeper.Run(ctx)

	watcher := supervisor.NewQRWatcher(reg, l)

	var mediaHandler *handler.MediaHandler
	store, err := media.NewStore(ctx, media.StoreConfig{
		Region:     cfg.S3Region,
		Bucket:     cfg.S3Bucket,
		PublicBase: cfg.MediaBaseURL,
	})
	if err != nil {
		l.Warnf("media store unavailable, uploads disabled: %s", err)
	} else {
		mediaHandler = handler.NewMediaHandler(store)
	}

	handlers := &server.Handlers{
		Message: handler.NewMessageHandler(messageService),
		Ticket:  handler.NewTicketHandler(ticketService, messageService),
		Session: handler.NewSessionHandler(ctx, reg, watcher),
		Media:   mediaHandler,
		Socket:  hub.NewHandler(authService, h, presence),
	}

	srv := server.New(cfg, l)
	srv.SetupRoutes(handlers, authService)

	if err := srv.Start(); err != nil {
		l.Errorf("server exited: %s", err)
	}
}
