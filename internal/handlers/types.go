package handlers

import "time"

// HomeResponse is the plain-text landing page.
type HomeResponse struct {
	ContentType string `header:"Content-Type"`
	Body        []byte
}

// CreateTokenRequest is the request body for issuing a single token.
type CreateTokenRequest struct {
	Body struct {
		Email     string     `doc:"Recipient email"                       example:"alice@example.com"        json:"email"                required:"false"`
		TargetURL string     `doc:"Destination of the redirect"           example:"https://example.com/page" json:"target_url"           required:"false"`
		Campaign  string     `doc:"Optional campaign label"               example:"spring"                   json:"campaign,omitempty"   required:"false"`
		ExpiresAt *time.Time `doc:"Optional expiry, RFC 3339"                                                json:"expires_at,omitempty" required:"false"`
		Token     string     `doc:"Optional caller-chosen token value"    example:"alice-spring"             json:"token,omitempty"      required:"false"`
	}
}

// CreateTokenResponse is the response for a successfully issued token.
type CreateTokenResponse struct {
	Body struct {
		Token        string `doc:"The token value"      example:"alice-spring"                            json:"token"`
		TrackingLink string `doc:"The public redirect" example:"https://track.example/r/alice-spring" json:"tracking_link"`
	}
}

// BatchRowBody is one recipient of a batch request.
type BatchRowBody struct {
	Email     string `doc:"Recipient email"                          json:"email"                required:"false"`
	TargetURL string `doc:"Destination overriding the batch default" json:"target_url,omitempty" required:"false"`
	Token     string `doc:"Optional caller-chosen token value"       json:"token,omitempty"      required:"false"`
}

// CreateBatchRequest is the request body for issuing tokens in bulk.
type CreateBatchRequest struct {
	Body struct {
		Rows             []BatchRowBody `doc:"One entry per recipient"                     json:"rows"                         required:"false"`
		Campaign         string         `doc:"Campaign shared by every row"                json:"campaign,omitempty"           required:"false"`
		DefaultTargetURL string         `doc:"Destination for rows without their own one" json:"default_target_url,omitempty" required:"false"`
	}
}

// BatchItem is one issued token of a batch.
type BatchItem struct {
	Email        string `json:"email"`
	Token        string `json:"token"`
	TrackingLink string `json:"tracking_link"`
}

// CreateBatchResponse lists the issued tokens in input order.
type CreateBatchResponse struct {
	Body struct {
		Count int         `json:"count"`
		Items []BatchItem `json:"items"`
	}
}

// RedirectRequest is the request for following a tracking link.
type RedirectRequest struct {
	Token string `doc:"The token value" example:"alice-spring" path:"token"`
}

// RedirectResponse sends the visitor on to the destination.
type RedirectResponse struct {
	Status       int
	Location     string `header:"Location"`
	CacheControl string `header:"Cache-Control"`
}

// ListClicksRequest filters and pages the click ledger.
type ListClicksRequest struct {
	Campaign        string `doc:"Only clicks of this campaign"    query:"campaign"`
	Email           string `doc:"Only clicks of this recipient"   query:"email"`
	Token           string `doc:"Only clicks of this token"       query:"token"`
	ExcludePrefetch bool   `doc:"Drop prefetch and bot traffic"   query:"exclude_prefetch"`
	Limit           int    `doc:"Page size, clamped to a maximum" query:"limit"`
	Offset          int    `doc:"Rows to skip"                    query:"offset"`
}

// ClickRowBody is one click joined with its token.
type ClickRowBody struct {
	ID             int64     `json:"id"`
	Token          string    `json:"token"`
	RecipientEmail string    `json:"recipient_email"`
	ClickedAt      time.Time `json:"clicked_at"`
	IP             string    `json:"ip"`
	UserAgent      string    `json:"user_agent"`
	Referer        string    `json:"referer"`
	IsPrefetch     bool      `json:"is_prefetch"`
	Campaign       string    `json:"campaign"`
	TargetURL      string    `json:"target_url"`
}

// ListClicksResponse is a page of clicks, most recent first.
type ListClicksResponse struct {
	Body struct {
		Rows []ClickRowBody `json:"rows"`
	}
}

// StatsRequest selects the counters to read.
type StatsRequest struct {
	Campaign string `doc:"Counters of one campaign" query:"campaign"`
	Token    string `doc:"Counters of one token"    query:"token"`
}

// StatsResponse holds aggregated counters.
type StatsResponse struct {
	Body struct {
		Issued   int64 `json:"issued"`
		Clicks   int64 `json:"clicks"`
		Prefetch int64 `json:"prefetch"`
		Human    int64 `json:"human"`
	}
}
