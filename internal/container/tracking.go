package container

import (
	"time"

	"github.com/samber/do"
	"github.com/serroba/click-tracker/internal/botfilter"
	"github.com/serroba/click-tracker/internal/store"
	"github.com/serroba/click-tracker/internal/tracking"
	"go.uber.org/zap"
)

// RepositoryPackage provides the token store, click ledger and click reader.
// The memory storage is bounded and loses everything on restart.
func RepositoryPackage(injector *do.Injector) {
	do.Provide(injector, func(i *do.Injector) (tracking.Store, error) {
		opts := do.MustInvoke[*Options](i)

		if opts.Standalone() {
			logger := do.MustInvoke[*zap.Logger](i)
			logger.Warn("using memory storage, tokens and clicks do not survive a restart",
				zap.Int("capacity", opts.MemoryCapacity))

			return store.NewMemoryStore(store.WithCapacity(opts.MemoryCapacity)), nil
		}

		pool := do.MustInvoke[*PostgresPool](i)

		return store.NewPostgresStore(pool.Pool), nil
	})

	do.Provide(injector, func(i *do.Injector) (tracking.TokenRepository, error) {
		opts := do.MustInvoke[*Options](i)
		base := do.MustInvoke[tracking.Store](i)

		if opts.Standalone() || opts.CacheTTL <= 0 {
			return base, nil
		}

		client := do.MustInvoke[*RedisClient](i)

		return store.NewRedisCacheRepository(base, client, time.Duration(opts.CacheTTL)*time.Second), nil
	})
}

// TrackingPackage provides the issuer, resolver and query service.
func TrackingPackage(injector *do.Injector) {
	do.Provide(injector, func(i *do.Injector) (*tracking.Issuer, error) {
		opts := do.MustInvoke[*Options](i)
		tokens := do.MustInvoke[tracking.TokenRepository](i)

		generate, err := tracking.NewGenerator(tracking.GeneratorKind(opts.TokenGenerator), opts.TokenLength)
		if err != nil {
			return nil, err
		}

		return tracking.NewIssuer(tokens, generate, opts.PublicBaseURL()), nil
	})

	do.Provide(injector, func(i *do.Injector) (*tracking.Resolver, error) {
		opts := do.MustInvoke[*Options](i)
		tokens := do.MustInvoke[tracking.TokenRepository](i)
		ledger := do.MustInvoke[tracking.Store](i)
		filter := botfilter.New(opts.ExtraBotSignatures()...)

		return tracking.NewResolver(tokens, ledger, filter.Classify), nil
	})

	do.Provide(injector, func(i *do.Injector) (*tracking.QueryService, error) {
		opts := do.MustInvoke[*Options](i)
		reader := do.MustInvoke[tracking.Store](i)

		return tracking.NewQueryService(reader, opts.MaxPageSize), nil
	})
}
