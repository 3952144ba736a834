package handlers

import "context"

const homeText = `Click Tracker

Issue links:   POST /api/create-token, POST /api/create-batch (X-Admin-Key)
Follow links:  GET  /r/{token}
Read clicks:   GET  /api/clicks, GET /api/stats (X-Admin-Key)
`

// Home serves the plain-text landing page.
func Home(_ context.Context, _ *struct{}) (*HomeResponse, error) {
	return &HomeResponse{
		ContentType: "text/plain; charset=utf-8",
		Body:        []byte(homeText),
	}, nil
}
