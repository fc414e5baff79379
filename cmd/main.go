package main

import (
	"context"
	"expvar"
	"log"
	"runtime"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/stardeck/logbook/internal/infrastructure/ai"
	"github.com/stardeck/logbook/internal/infrastructure/asr"
	"github.com/stardeck/logbook/internal/infrastructure/auth"
	"github.com/stardeck/logbook/internal/infrastructure/configs"
	"github.com/stardeck/logbook/internal/infrastructure/events"
	"github.com/stardeck/logbook/internal/infrastructure/logging"
	"github.com/stardeck/logbook/internal/infrastructure/messaging"
	"github.com/stardeck/logbook/internal/infrastructure/metrics"
	"github.com/stardeck/logbook/internal/infrastructure/storage"
	"github.com/stardeck/logbook/internal/infrastructure/tracing"
	"github.com/stardeck/logbook/internal/infrastructure/ws"
	"github.com/stardeck/logbook/internal/notify"
	"github.com/stardeck/logbook/internal/persistence/db"
	"github.com/stardeck/logbook/internal/persistence/repository"
	"github.com/stardeck/logbook/internal/pipeline"
	"github.com/stardeck/logbook/internal/presentation/api"
	"github.com/stardeck/logbook/internal/presentation/handler/files"
	"github.com/stardeck/logbook/internal/presentation/handler/folders"
	"github.com/stardeck/logbook/internal/presentation/handler/health"
	"github.com/stardeck/logbook/internal/presentation/handler/logentries"
	"github.com/stardeck/logbook/internal/presentation/handler/notifications"
	"github.com/stardeck/logbook/internal/presentation/handler/profile"
	"github.com/stardeck/logbook/internal/service"
)

const (
	serviceName = "logbook-api"
)

func main() {
	tracerCfg := tracing.NewDefaultConfig(serviceName)

	sh, err := tracing.InitTracer(tracerCfg)
	if err != nil {
		log.Fatalf("Failed to initialize the tracer: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	defer sh(ctx)

	logger := logging.NewLogger(logging.NewDefaultConfig())

	configPath := configs.DetermineConfigPath()
	cfg, err := configs.Load(configPath)
	if err != nil {
		log.Fatal(err)
	}

	mongoClient, err := db.NewMongoClient(ctx, cfg.Mongo)
	if err != nil {
		log.Fatal(err)
	}
	defer db.DisconnectMongo(context.Background(), mongoClient)

	database := mongoClient.Database(cfg.Mongo.Database)

	logEntryRepository := repository.NewLogEntryRepository(database)
	messageRepository := repository.NewEntityChangedMessageRepository(database)
	folderRepository := repository.NewFolderRepository(database)
	fileRepository := repository.NewFileRepository(database)

	for _, ensure := range []func(context.Context) error{
		logEntryRepository.EnsureIndexes,
		messageRepository.EnsureIndexes,
		folderRepository.EnsureIndexes,
		fileRepository.EnsureIndexes,
	} {
		if err := ensure(ctx); err != nil {
			log.Fatalf("Failed to ensure indexes: %v", err)
		}
	}

	promRegistry := prometheus.NewRegistry()
	promRegistry.MustRegister(collectors.NewGoCollector())
	promRegistry.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(promRegistry)

	registry := ws.NewRegistry()

	notifyService := notify.NewService(messageRepository)
	deliverer := notify.NewDeliverer(registry, logger, m)
	fanout := notify.NewFanout(notifyService, deliverer, logger, m)

	objectStorage, err := storage.NewS3Storage(storage.Config{
		Bucket:   cfg.Storage.Bucket,
		Region:   cfg.Storage.Region,
		Endpoint: cfg.Storage.Endpoint,
	})
	if err != nil {
		log.Fatal(err)
	}

	fileService := service.NewFileService(fileRepository, objectStorage, fanout, logger)

	transcriber, err := asr.NewTranscriber(asr.Config{
		ModelDir:   cfg.ASR.ModelDir,
		NumThreads: cfg.ASR.NumThreads,
		SampleRate: cfg.ASR.SampleRate,
	}, logger)
	if err != nil {
		log.Fatal(err)
	}
	defer transcriber.Close()

	enricher := ai.NewEnricher(anthropic.NewClient(), logger, ai.Config{
		Model:      cfg.AI.Model,
		MaxRetries: cfg.AI.MaxRetries,
	})

	orchestrator := pipeline.NewOrchestrator(
		logEntryRepository,
		fileService,
		transcriber,
		enricher,
		fanout,
		logger,
		m,
		pipeline.OrchestratorConfig{
			TranscriptionTimeout: cfg.Pipeline.TranscriptionTimeout,
			EnrichmentTimeout:    cfg.Pipeline.EnrichmentTimeout,
		},
	)

	pool := pipeline.NewPool(orchestrator, logger, cfg.Pipeline.Workers, cfg.Pipeline.QueueSize)
	defer pool.Close()

	var scheduler pipeline.Scheduler = pool

	if cfg.RabbitMQ.Enabled {
		rabbitmq, err := messaging.NewRabbitMQ(cfg.RabbitMQ.URI)
		if err != nil {
			log.Fatal(err)
		}
		defer rabbitmq.Close()

		logger.Info(logging.RabbitMQ, logging.Startup, "rabbitmq connected", nil)

		// upserts publish to the broker, the consumer feeds the local pool
		scheduler = events.NewPipelinePublisher(rabbitmq, logger)

		consumer := events.NewPipelineConsumer(rabbitmq, pool, logger)
		go func() {
			if err := consumer.Listen(ctx); err != nil && ctx.Err() == nil {
				logger.Error(logging.RabbitMQ, logging.ExternalService, "pipeline consumer stopped", map[logging.ExtraKey]any{
					logging.ErrorMessage: err.Error(),
				})
			}
		}()
	}

	logEntryService := service.NewLogEntryService(logEntryRepository, fileRepository, fanout, scheduler, logger)
	folderService := service.NewFolderService(folderRepository, fanout, logger)

	verifier := auth.NewVerifier(cfg.Auth.JWTSecret)

	app := api.NewApplication(
		cfg,
		verifier,
		logentries.NewHandler(logEntryService),
		folders.NewHandler(folderService),
		files.NewHandler(fileService),
		profile.NewHandler(),
		notifications.NewHandler(notifyService, registry, logger, m),
		health.NewHandler(),
		promRegistry,
		logger,
	)

	expvar.Publish("goroutines", expvar.Func(func() any {
		return runtime.NumGoroutine()
	}))

	mux := app.Mount()
	if err := app.Run(mux); err != nil {
		logger.Fatal(logging.General, logging.Shutdown, "server exited with error", map[logging.ExtraKey]any{
			logging.ErrorMessage: err.Error(),
		})
	}
}
