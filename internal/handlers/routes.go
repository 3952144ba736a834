package handlers

import (
	"net/http"

	"github.com/danielgtaylor/huma/v2"
	"github.com/serroba/click-tracker/internal/ratelimit"
)

// AdminMetadataKey marks an operation as requiring the admin key.
const AdminMetadataKey = "adminOnly"

func adminMetadata() map[string]any {
	return map[string]any{
		AdminMetadataKey:      true,
		ratelimit.MetadataKey: ratelimit.EndpointConfig{Scope: ratelimit.ScopeAdmin},
	}
}

// RegisterRoutes registers the tracker routes. Admin operations are marked
// through metadata for the admin key and rate limit middlewares.
func RegisterRoutes(api huma.API, tokens *TokenHandler, redirect *RedirectHandler, clicks *ClickHandler) {
	huma.Register(api, huma.Operation{
		OperationID: "home",
		Method:      http.MethodGet,
		Path:        "/",
		Summary:     "Service landing page",
		Tags:        []string{"Public"},
		Metadata: map[string]any{
			ratelimit.MetadataKey: ratelimit.EndpointConfig{Disabled: true},
		},
	}, Home)

	huma.Register(api, huma.Operation{
		OperationID: "create-token",
		Method:      http.MethodPost,
		Path:        "/api/create-token",
		Summary:     "Issue a tracking token",
		Description: "Issues one tracking link. Re-issuing an existing token value is a no-op.",
		Tags:        []string{"Admin"},
		Metadata:    adminMetadata(),
	}, tokens.CreateToken)

	huma.Register(api, huma.Operation{
		OperationID: "create-batch",
		Method:      http.MethodPost,
		Path:        "/api/create-batch",
		Summary:     "Issue tracking tokens in bulk",
		Description: "Issues one tracking link per row. Any invalid row rejects the whole batch.",
		Tags:        []string{"Admin"},
		Metadata:    adminMetadata(),
	}, tokens.CreateBatch)

	huma.Register(api, huma.Operation{
		OperationID: "list-clicks",
		Method:      http.MethodGet,
		Path:        "/api/clicks",
		Summary:     "List recorded clicks",
		Description: "Returns clicks joined with their token, most recent first.",
		Tags:        []string{"Admin"},
		Metadata:    adminMetadata(),
	}, clicks.ListClicks)

	huma.Register(api, huma.Operation{
		OperationID: "stats",
		Method:      http.MethodGet,
		Path:        "/api/stats",
		Summary:     "Aggregated counters",
		Description: "Returns issued, click and prefetch counters for a campaign, a token or everything.",
		Tags:        []string{"Admin"},
		Metadata:    adminMetadata(),
	}, clicks.Stats)

	huma.Register(api, huma.Operation{
		OperationID:   "redirect",
		Method:        http.MethodGet,
		Path:          "/r/{token}",
		Summary:       "Follow a tracking link",
		Description:   "Records the click and redirects to the destination.",
		Tags:          []string{"Public"},
		DefaultStatus: http.StatusFound,
		Metadata: map[string]any{
			ratelimit.MetadataKey: ratelimit.EndpointConfig{Scope: ratelimit.ScopeRedirect},
		},
	}, redirect.Redirect)
}
