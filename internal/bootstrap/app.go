package bootstrap

import (
	"context"
	"fmt"
	"log"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"docqa/internal/config"
	"docqa/internal/model"
	mysqlClient "docqa/internal/platform/mysql"
	rabbitmqClient "docqa/internal/platform/rabbitmq"
	redisClient "docqa/internal/platform/redis"
	"docqa/internal/repository"
	"docqa/internal/worker"
)

type App struct {
	Config             *config.Config
	MySQL              *gorm.DB
	Redis              *redis.Client
	MQConn             *amqp.Connection
	ConversationWorker *worker.ConversationPersistWorker

	StartedAt time.Time
}

func New(ctx context.Context) (*App, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config failed: %w", err)
	}

	// Missing key only disables upload/ask; auth and history still work.
	if cfg.LLM.APIKey == "" {
		log.Printf("warning: no LLM API key configured; ingestion and question answering will fail until one is set")
	}

	mysqlDB, err := mysqlClient.New(ctx, cfg.MySQLDSN())
	if err != nil {
		return nil, err
	}
	if err := mysqlDB.AutoMigrate(
		&model.User{},
		&model.AuthToken{},
		&model.Document{},
		&model.Conversation{},
	); err != nil {
		return nil, fmt.Errorf("auto migrate tables failed: %w", err)
	}

	redisCli, err := redisClient.New(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
	if err != nil {
		return nil, err
	}

	mqConn, err := rabbitmqClient.New(ctx, cfg.RabbitMQ.URL)
	if err != nil {
		return nil, err
	}

	convRepo := repository.NewConversationRepository(mysqlDB)
	convWorker := worker.NewConversationPersistWorker(mqConn, convRepo, cfg.RabbitMQ.ConversationPersistQueue)
	if err := convWorker.Start(ctx); err != nil {
		return nil, fmt.Errorf("start conversation worker failed: %w", err)
	}

	return &App{
		Config:             cfg,
		MySQL:              mysqlDB,
		Redis:              redisCli,
		MQConn:             mqConn,
		ConversationWorker: convWorker,
		StartedAt:          time.Now(),
	}, nil
}

func (a *App) Close() error {
	var closeErr error
	if a.Redis != nil {
		if err := a.Redis.Close(); err != nil {
			closeErr = err
		}
	}
	if a.ConversationWorker != nil {
		a.ConversationWorker.Close()
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
