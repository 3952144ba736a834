package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/samber/do"
	"github.com/serroba/click-tracker/internal/container"
	"github.com/serroba/click-tracker/internal/messaging"
	"go.uber.org/zap"
)

// The analytics consumer reads token and click events from the Redis streams
// and folds them into the stats counters served by /api/stats.
func main() {
	opts, err := optionsFromEnv()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}

	injector := do.New()
	do.ProvideValue(injector, opts)
	container.LoggerPackage(injector)
	container.RedisPackage(injector)
	container.StatsPackage(injector)
	container.ConsumerGroupPackage(injector)

	logger := do.MustInvoke[*zap.Logger](injector)

	if err := run(injector, logger); err != nil {
		logger.Error("consumer stopped", zap.Error(err))
		_ = logger.Sync()
		os.Exit(1)
	}

	_ = logger.Sync()
}

func run(injector *do.Injector, logger *zap.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	group, err := do.Invoke[*messaging.ConsumerGroup](injector)
	if err != nil {
		return fmt.Errorf("build consumer group: %w", err)
	}

	if err := group.Start(ctx); err != nil {
		return err
	}

	<-ctx.Done()
	logger.Info("shutting down")

	if err := injector.Shutdown(); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}

	logger.Info("shutdown complete")

	return nil
}

func optionsFromEnv() (*container.Options, error) {
	nackDelay, err := strconv.Atoi(getEnv("NACK_DELAY", "1"))
	if err != nil {
		return nil, fmt.Errorf("NACK_DELAY: %w", err)
	}

	opts := &container.Options{
		Storage:        container.StoragePostgres,
		RedisAddr:      getEnv("REDIS_ADDR", "localhost:6379"),
		LogFormat:      getEnv("LOG_FORMAT", "console"),
		ConsumerGroup:  getEnv("CONSUMER_GROUP", "analytics"),
		AnalyticsStore: getEnv("ANALYTICS_STORE", container.AnalyticsStoreRedis),
		NackDelay:      nackDelay,
	}

	return opts, opts.Validate()
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}

	return fallback
}
