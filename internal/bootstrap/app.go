package bootstrap

import (
	"context"
	"fmt"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	appsvc "ragbase/internal/app"
	"ragbase/internal/config"
	"ragbase/internal/model"
	"ragbase/internal/pkg/secretbox"
	mysqlClient "ragbase/internal/platform/mysql"
	rabbitmqClient "ragbase/internal/platform/rabbitmq"
	redisClient "ragbase/internal/platform/redis"
	"ragbase/internal/provider"
	"ragbase/internal/queue"
	"ragbase/internal/ragconfig"
	"ragbase/internal/repository"
	"ragbase/internal/vectorstore"
	"ragbase/internal/worker"
)

// App holds the process-wide resources: platform connections plus the shared
// collaborators both the HTTP surface and the background worker wire against.
type App struct {
	Config *config.Config
	MySQL  *gorm.DB
	Redis  *redis.Client
	MQConn *amqp.Connection

	Sealer         *secretbox.Sealer
	ProviderClient *provider.OpenAICompatibleClient
	ParseClient    *provider.ParseClient
	EmbedCache     *provider.EmbedCache
	Store          vectorstore.Store
	Configs        *ragconfig.Manager
	Producer       *queue.Producer
	Tracker        *queue.Tracker
	Ingestion      *appsvc.IngestionService
	IngestWorker   *worker.IngestWorker

	StartedAt time.Time
}

func New(ctx context.Context) (*App, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config failed: %w", err)
	}

	sealer, err := secretbox.NewSealer(cfg.Auth.SealKey)
	if err != nil {
		return nil, fmt.Errorf("init credential sealer failed: %w", err)
	}

	mysqlDB, err := mysqlClient.New(ctx, cfg.MySQLDSN(), mysqlClient.Pool{
		MaxOpenConns:    cfg.MySQL.MaxOpenConns,
		MaxIdleConns:    cfg.MySQL.MaxIdleConns,
		ConnMaxLifetime: time.Duration(cfg.MySQL.ConnMaxLifetimeMin) * time.Minute,
	})
	if err != nil {
		return nil, err
	}
	if err := mysqlDB.AutoMigrate(
		&model.Tenant{},
		&model.Assistant{},
		&model.AssistantConfig{},
		&model.Document{},
		&model.Chunk{},
		&model.Conversation{},
		&model.Message{},
		&model.ProcessingTask{},
	); err != nil {
		return nil, fmt.Errorf("auto migrate tables failed: %w", err)
	}

	redisCli, err := redisClient.New(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB, cfg.Redis.PoolSize)
	if err != nil {
		return nil, err
	}

	mqConn, err := rabbitmqClient.New(ctx, cfg.RabbitMQ.URL)
	if err != nil {
		return nil, err
	}

	tenantRepo := repository.NewTenantRepository(mysqlDB)
	assistantRepo := repository.NewAssistantRepository(mysqlDB)
	docRepo := repository.NewDocumentRepository(mysqlDB)
	taskRepo := repository.NewTaskRepository(mysqlDB)
	configRepo := repository.NewConfigRepository(mysqlDB)

	configs := ragconfig.NewManager(configRepo)
	store := vectorstore.NewMySQLStore(mysqlDB)

	providerClient := provider.NewOpenAICompatibleClient()
	parseClient := provider.NewParseClient()
	embedCache := provider.NewEmbedCache(redisCli, time.Duration(cfg.Redis.EmbedCacheTTLSecs)*time.Second)

	tracker := queue.NewTracker(taskRepo, redisCli)
	producer := queue.NewProducer(mqConn, taskRepo, redisCli, cfg.RabbitMQ.IngestQueue, cfg.RabbitMQ.IngestMaxRetries)

	ingestion := appsvc.NewIngestionService(
		docRepo,
		assistantRepo,
		tenantRepo,
		configs,
		store,
		parseClient,
		providerClient,
		embedCache,
		sealer,
		producer,
		cfg.Providers,
	)

	ingestWorker := worker.NewIngestWorker(mqConn, ingestion, tracker, cfg.RabbitMQ.IngestQueue)
	if err := ingestWorker.Start(ctx); err != nil {
		return nil, fmt.Errorf("start ingest worker failed: %w", err)
	}

	return &App{
		Config:         cfg,
		MySQL:          mysqlDB,
		Redis:          redisCli,
		MQConn:         mqConn,
		Sealer:         sealer,
		ProviderClient: providerClient,
		ParseClient:    parseClient,
		EmbedCache:     embedCache,
		Store:          store,
		Configs:        configs,
		Producer:       producer,
		Tracker:        tracker,
		Ingestion:      ingestion,
		IngestWorker:   ingestWorker,
		StartedAt:      time.Now(),
	}, nil
}

func (a *App) Close() error {
	var closeErr error
	if a.IngestWorker != nil {
		a.IngestWorker.Close()
	}
	if a.Redis != nil {
		if err := a.Redis.Close(); err != nil {
			closeErr = err
		}
	}
	if a.MQConn != nil {
		if err := a.MQConn.Close(); err != nil {
			closeErr = err
		}
	}
	if a.MySQL != nil {
		sqlDB, err := a.MySQL.DB()
		if err == nil {
			if err := sqlDB.Close(); err != nil {
				closeErr = err
			}
		}
	}
	return closeErr
}
