package middleware

import (
	"crypto/subtle"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
	"github.com/serroba/click-tracker/internal/handlers"
	"go.uber.org/zap"
)

// AdminKeyHeader carries the admin key on requests.
const AdminKeyHeader = "X-Admin-Key"

// AdminKey rejects requests to operations marked with handlers.AdminMetadataKey
// unless they present the configured key. An empty configured key rejects
// every admin request.
func AdminKey(api huma.API, key string, logger *zap.Logger) func(ctx huma.Context, next func(huma.Context)) {
	return func(ctx huma.Context, next func(huma.Context)) {
		if !isAdminOperation(ctx) {
			next(ctx)

			return
		}

		if !validAdminKey(key, ctx.Header(AdminKeyHeader)) {
			logger.Warn("rejected admin request",
				zap.String("path", getOperationPath(ctx)),
				zap.String("client_ip", ClientIP(ctx)),
			)
			_ = huma.WriteErr(api, ctx, http.StatusUnauthorized, "Unauthorized")

			return
		}

		next(ctx)
	}
}

func isAdminOperation(ctx huma.Context) bool {
	op := ctx.Operation()
	if op == nil || op.Metadata == nil {
		return false
	}

	admin, _ := op.Metadata[handlers.AdminMetadataKey].(bool)

	return admin
}

func validAdminKey(configured, presented string) bool {
	if configured == "" {
		return false
	}

	return subtle.ConstantTimeCompare([]byte(configured), []byte(presented)) == 1
}
