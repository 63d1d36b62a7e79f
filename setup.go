package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/Yulian302/lfusys-wetransfer/caching"
	"github.com/Yulian302/lfusys-wetransfer/client"
	"github.com/Yulian302/lfusys-wetransfer/config"
	"github.com/Yulian302/lfusys-wetransfer/logging"
	"github.com/Yulian302/lfusys-wetransfer/store"
	"github.com/Yulian302/lfusys-wetransfer/tracing"
	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/otel/sdk/trace"
)

const (
	serviceName = "wetransfer-cli"
	cachePrefix = "wetransfer:"
)

type App struct {
	DynamoDB *dynamodb.Client
	Redis    *redis.Client

	Config    config.Config
	AwsConfig aws.Config
	Logger    *slog.Logger

	Cache     caching.CachingService
	Resources store.ResourceStore

	TracerProvider *trace.TracerProvider
}

// SetupApp loads the configuration and connects the optional backends. Redis
// and DynamoDB are only used when configured.
func SetupApp(ctx context.Context) (*App, error) {
	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, err
	}

	if err := cfg.ValidateAllSecrets(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	app := &App{
		Config:    cfg,
		Logger:    logging.CreateLogger(cfg.Env),
		Cache:     caching.NewNullCachingService(),
		Resources: store.NewNullResourceStore(),
	}

	if cfg.RedisConfig != nil && cfg.RedisConfig.HOST != "" {
		app.Redis = initRedis(*cfg.RedisConfig)
		app.Cache = caching.NewRedisCachingService(app.Redis, cachePrefix)
	}

	if cfg.DynamoDBConfig != nil && cfg.DynamoDBConfig.ResourcesTableName != "" {
		awsCfg, err := initAWS(ctx, *cfg.AWSConfig)
		if err != nil {
			return nil, err
		}
		app.AwsConfig = awsCfg
		app.DynamoDB = initDynamo(awsCfg)
		app.Resources = store.NewResourceStore(app.DynamoDB, cfg.DynamoDBConfig.ResourcesTableName)
	}

	if cfg.Tracing {
		tp, err := tracing.StartTracing(ctx, serviceName)
		if err != nil {
			return nil, fmt.Errorf("failed to start tracing: %w", err)
		}
		app.TracerProvider = tp
	}

	return app, nil
}

// Client authenticates against the API and returns a ready session.
func (a *App) Client(ctx context.Context) (*client.Client, error) {
	return client.New(ctx, a.Config, client.Deps{
		Cache:     a.Cache,
		Resources: a.Resources,
		Logger:    a.Logger,
	})
}

func initAWS(ctx context.Context, cfg config.AWSConfig) (aws.Config, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(
		ctx,
		awsconfig.WithRegion(cfg.Region),
	)
	if err != nil {
		return aws.Config{}, fmt.Errorf("load aws config: %w", err)
	}
	return awsCfg, nil
}

func initDynamo(cfg aws.Config) *dynamodb.Client {
	return dynamodb.NewFromConfig(cfg)
}

func initRedis(cfg config.RedisConfig) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:     cfg.HOST,
		Password: "",
		DB:       0,
	})
}

type Shutdowner interface {
	Shutdown(context.Context) error
}

func (a *App) Shutdown(ctx context.Context) {
	if sh, ok := a.Cache.(Shutdowner); ok {
		if err := sh.Shutdown(ctx); err != nil {
			a.Logger.Warn("cache shutdown error", slog.String("error", err.Error()))
		}
	}
	if a.TracerProvider != nil {
		_ = a.TracerProvider.Shutdown(ctx)
	}
}
