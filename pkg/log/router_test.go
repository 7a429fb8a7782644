package log_test

import (
	"testing"

	"github.com/arnavsurve/wfcapture/pkg/log"
	"github.com/arnavsurve/wfcapture/pkg/security"
	"github.com/arnavsurve/wfcapture/pkg/types"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memorySink struct {
	events []*log.LogEvent
	closed bool
}

func (m *memorySink) Write(event *log.LogEvent) error {
	m.events = append(m.events, event)
	return nil
}

func (m *memorySink) Close() error {
	m.closed = true
	return nil
}

func TestRouter_FansOutToSinks(t *testing.T) {
	first := &memorySink{}
	second := &memorySink{}
	router := log.NewRouter(first)
	router.AddSink(second)

	logger := log.NewZerologAdapter(zerolog.New(router))
	logger.Warn().Str("app", "asana").Msg("probe failed")

	require.Len(t, first.events, 1)
	require.Len(t, second.events, 1)

	evt := first.events[0]
	assert.Equal(t, types.WarnLevel, evt.Level)
	assert.Equal(t, "probe failed", evt.Message)
	assert.Equal(t, "asana", evt.Fields["app"])
}

func TestRouter_RedactsSecrets(t *testing.T) {
	sink := &memorySink{}
	router := log.NewRouter(sink)
	router.Redactor = security.NewRedactor("sk-verysecret")

	logger := log.NewZerologAdapter(zerolog.New(router))
	logger.Info().Str("key", "using sk-verysecret now").Msg("token sk-verysecret loaded")

	require.Len(t, sink.events, 1)
	assert.Equal(t, "token ******** loaded", sink.events[0].Message)
	assert.Equal(t, "using ******** now", sink.events[0].Fields["key"])
}

func TestRouter_CloseClosesSinks(t *testing.T) {
	first := &memorySink{}
	second := &memorySink{}
	router := log.NewRouter(first, second)

	require.NoError(t, router.Close())
	assert.True(t, first.closed)
	assert.True(t, second.closed)
}

func TestRouter_MalformedLineDoesNotError(t *testing.T) {
	sink := &memorySink{}
	router := log.NewRouter(sink)

	n, err := router.Write([]byte("not json"))
	assert.NoError(t, err)
	assert.Equal(t, len("not json"), n)
	assert.Empty(t, sink.events)
}
