package schedule

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestTickerEveryRejectsInvalidInput(t *testing.T) {
	ticker := NewTicker(zap.NewNop())

	_, err := ticker.Every(0, func() {})
	assert.Error(t, err)

	_, err = ticker.Every(time.Second, nil)
	assert.Error(t, err)
}

func TestTickerStopFuncRemovesEntry(t *testing.T) {
	ticker := NewTicker(nil)

	stop, err := ticker.Every(time.Minute, func() {})
	require.NoError(t, err)
	assert.Equal(t, 1, ticker.Entries())

	stop()
	stop()
	assert.Equal(t, 0, ticker.Entries())
}

func TestTickerRunsEntries(t *testing.T) {
	ticker := NewTicker(zap.NewNop())
	ticker.Start()
	defer ticker.Stop(context.Background())

	var calls int32
	stop, err := ticker.Every(time.Second, func() { atomic.AddInt32(&calls, 1) })
	require.NoError(t, err)
	defer stop()

	require.Eventually(t, func() bool { return atomic.LoadInt32(&calls) > 0 }, 3*time.Second, 50*time.Millisecond)
}
