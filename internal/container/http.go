package container

import (
	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humachi"
	_ "github.com/danielgtaylor/huma/v2/formats/cbor" // CBOR format support for huma
	"github.com/go-chi/chi/v5"
	"github.com/samber/do"
	"github.com/serroba/click-tracker/internal/analytics"
	analyticsstore "github.com/serroba/click-tracker/internal/analytics/store"
	"github.com/serroba/click-tracker/internal/handlers"
	"github.com/serroba/click-tracker/internal/health"
	"github.com/serroba/click-tracker/internal/middleware"
	"github.com/serroba/click-tracker/internal/ratelimit"
	"github.com/serroba/click-tracker/internal/store"
	"github.com/serroba/click-tracker/internal/tracking"
	"go.uber.org/zap"
)

// RateLimitPackage provides the policy limiter. Standalone servers keep
// their counters in process memory.
func RateLimitPackage(injector *do.Injector) {
	do.Provide(injector, func(i *do.Injector) (*ratelimit.PolicyLimiter, error) {
		opts := do.MustInvoke[*Options](i)

		var counters ratelimit.Store = store.NewRateLimitMemoryStore()
		if !opts.Standalone() {
			client := do.MustInvoke[*RedisClient](i)
			counters = store.NewRateLimitRedisStore(client.UniversalClient)
		}

		return ratelimit.NewPolicyLimiter(counters, ratelimit.DefaultPolicy()), nil
	})
}

// HTTPPackage provides the router and the huma API with every route registered.
func HTTPPackage(injector *do.Injector) {
	do.Provide(injector, func(_ *do.Injector) (*chi.Mux, error) {
		return chi.NewMux(), nil
	})

	do.Provide(injector, func(i *do.Injector) (huma.API, error) {
		opts := do.MustInvoke[*Options](i)
		logger := do.MustInvoke[*zap.Logger](i)
		router := do.MustInvoke[*chi.Mux](i)

		api := humachi.New(router, huma.DefaultConfig("Click Tracker", "1.0.0"))

		api.UseMiddleware(middleware.RequestMeta(api))
		api.UseMiddleware(middleware.AdminKey(api, opts.AdminKey, logger))

		if opts.RateLimit {
			limiter := do.MustInvoke[*ratelimit.PolicyLimiter](i)
			api.UseMiddleware(middleware.PolicyRateLimiter(api, limiter, ratelimit.NewOperationScopeResolver(), logger))
		}

		if opts.AdminKey == "" {
			logger.Warn("no admin key configured, admin endpoints will reject every request")
		}

		publishers := do.MustInvoke[*analytics.Publishers](i)

		var (
			stats          analytics.StatsReader
			postgresHealth health.Checker
			redisHealth    health.Checker
		)

		if !opts.Standalone() {
			client := do.MustInvoke[*RedisClient](i)
			pool := do.MustInvoke[*PostgresPool](i)

			stats = do.MustInvoke[*analyticsstore.RedisStore](i)
			postgresHealth = health.NewPostgresChecker(pool.Pool)
			redisHealth = health.NewRedisChecker(client.UniversalClient)
		}

		handlers.RegisterRoutes(api,
			handlers.NewTokenHandler(do.MustInvoke[*tracking.Issuer](i), publishers.TokenIssued, logger),
			handlers.NewRedirectHandler(do.MustInvoke[*tracking.Resolver](i), publishers.ClickRecorded, logger),
			handlers.NewClickHandler(do.MustInvoke[*tracking.QueryService](i), stats, logger),
		)
		health.RegisterRoutes(api, health.NewHandler(postgresHealth, redisHealth))

		return api, nil
	})
}
