package subscription

import (
	"testing"
	"time"

	paddle "github.com/PaddleHQ/paddle-go-sdk/v4"
	"github.com/stretchr/testify/assert"

	"github.com/dmitrymomot/quotaguard/pkg/period"
)

func TestMapPaddleStatus(t *testing.T) {
	t.Parallel()

	tests := []struct {
		paddle paddle.SubscriptionStatus
		want   period.SubscriptionStatus
	}{
		{paddle.SubscriptionStatusActive, period.StatusActive},
		{paddle.SubscriptionStatusTrialing, period.StatusTrialing},
		{paddle.SubscriptionStatusPastDue, period.StatusGrace},
		{paddle.SubscriptionStatusCanceled, period.StatusInactive},
		{paddle.SubscriptionStatusPaused, period.StatusInactive},
	}

	for _, tt := range tests {
		t.Run(string(tt.paddle), func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, mapPaddleStatus(tt.paddle))
		})
	}
}

func TestParsePaddleTime(t *testing.T) {
	t.Parallel()

	t.Run("valid timestamp", func(t *testing.T) {
		t.Parallel()
		got := parsePaddleTime("2026-03-20T09:15:00Z")
		assert.Equal(t, time.Date(2026, time.March, 20, 9, 15, 0, 0, time.UTC), got)
	})

	t.Run("offset normalized to UTC", func(t *testing.T) {
		t.Parallel()
		got := parsePaddleTime("2026-03-20T11:15:00+02:00")
		assert.Equal(t, time.Date(2026, time.March, 20, 9, 15, 0, 0, time.UTC), got)
	})

	t.Run("empty value", func(t *testing.T) {
		t.Parallel()
		assert.True(t, parsePaddleTime("").IsZero())
	})

	t.Run("malformed value", func(t *testing.T) {
		t.Parallel()
		assert.True(t, parsePaddleTime("last tuesday").IsZero())
	})
}
