package container

import (
	"time"

	"github.com/ThreeDotsLabs/watermill-redisstream/pkg/redisstream"
	"github.com/samber/do"
	"github.com/serroba/click-tracker/internal/analytics"
	analyticsstore "github.com/serroba/click-tracker/internal/analytics/store"
	"github.com/serroba/click-tracker/internal/messaging"
	"go.uber.org/zap"
)

// PublisherGroupPackage provides the analytics publishers. Standalone servers
// discard events.
func PublisherGroupPackage(injector *do.Injector) {
	do.Provide(injector, func(i *do.Injector) (*messaging.PublisherGroup, error) {
		client := do.MustInvoke[*RedisClient](i)
		logger := do.MustInvoke[*zap.Logger](i)

		publisher, err := redisstream.NewPublisher(redisstream.PublisherConfig{
			Client: client.UniversalClient,
		}, messaging.NewZapLoggerAdapter(logger))
		if err != nil {
			return nil, err
		}

		return messaging.NewPublisherGroup(publisher), nil
	})

	do.Provide(injector, func(i *do.Injector) (*analytics.Publishers, error) {
		opts := do.MustInvoke[*Options](i)
		if opts.Standalone() {
			return analytics.DiscardPublishers(), nil
		}

		group := do.MustInvoke[*messaging.PublisherGroup](i)

		return analytics.NewPublishers(group.Publisher()), nil
	})
}

// StatsPackage provides the Redis backed analytics counters and the store the
// consumer writes to. AnalyticsStore "log" only logs events.
func StatsPackage(injector *do.Injector) {
	do.Provide(injector, func(i *do.Injector) (*analyticsstore.RedisStore, error) {
		client := do.MustInvoke[*RedisClient](i)

		return analyticsstore.NewRedisStore(client.UniversalClient), nil
	})

	do.Provide(injector, func(i *do.Injector) (analytics.Store, error) {
		opts := do.MustInvoke[*Options](i)
		if opts.AnalyticsStore == AnalyticsStoreLog {
			return analyticsstore.NewNoop(do.MustInvoke[*zap.Logger](i)), nil
		}

		return do.MustInvoke[*analyticsstore.RedisStore](i), nil
	})
}

// ConsumerGroupPackage provides the analytics consumers reading the Redis streams.
func ConsumerGroupPackage(injector *do.Injector) {
	do.Provide(injector, func(i *do.Injector) (*messaging.ConsumerGroup, error) {
		opts := do.MustInvoke[*Options](i)
		client := do.MustInvoke[*RedisClient](i)
		logger := do.MustInvoke[*zap.Logger](i)
		sink := do.MustInvoke[analytics.Store](i)

		subscriber, err := redisstream.NewSubscriber(redisstream.SubscriberConfig{
			Client:        client.UniversalClient,
			ConsumerGroup: opts.ConsumerGroup,
		}, messaging.NewZapLoggerAdapter(logger))
		if err != nil {
			return nil, err
		}

		group := messaging.NewConsumerGroup(subscriber, logger)
		nackDelay := messaging.WithNackDelay(time.Duration(opts.NackDelay) * time.Second)
		for _, consumer := range analytics.NewConsumers(subscriber, sink, logger, nackDelay) {
			group.Add(consumer)
		}

		return group, nil
	})
}
