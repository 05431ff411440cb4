package event

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestActivityLoggerIsWildcard(t *testing.T) {
	logger := NewActivityLogger(zap.NewNop())
	assert.Empty(t, logger.EventTypes())
}

func TestActivityLoggerLogsEveryEvent(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	bus := NewInMemoryEventBus(zap.NewNop())
	bus.Subscribe(NewActivityLogger(zap.New(core)))

	events := productEvents(t)
	require.NoError(t, bus.Publish(context.Background(), events...))

	entries := logs.FilterMessage("domain event").All()
	require.Len(t, entries, len(events))
	assert.Equal(t, events[0].EventType(), entries[0].ContextMap()["event_type"])
}
