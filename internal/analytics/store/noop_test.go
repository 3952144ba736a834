package store_test

import (
	"context"
	"testing"
	"time"

	"github.com/serroba/click-tracker/internal/analytics"
	"github.com/serroba/click-tracker/internal/analytics/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestNoop_SaveTokenIssued(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	noop := store.NewNoop(zap.New(core))

	err := noop.SaveTokenIssued(context.Background(), &analytics.TokenIssuedEvent{
		Token:    "abc123",
		Campaign: "spring",
		IssuedAt: time.Now(),
	})

	require.NoError(t, err)
	require.Equal(t, 1, logs.Len())
	assert.Equal(t, "spring", logs.All()[0].ContextMap()["campaign"])
}

func TestNoop_SaveClickRecorded(t *testing.T) {
	noop := store.NewNoop(zap.NewNop())

	err := noop.SaveClickRecorded(context.Background(), &analytics.ClickRecordedEvent{
		ClickID:   7,
		Token:     "abc123",
		ClickedAt: time.Now(),
	})

	require.NoError(t, err)
}
