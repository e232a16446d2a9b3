package logger

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/axiomhq/axiom-go/axiom"
	"github.com/axiomhq/axiom-go/axiom/ingest"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func restoreLogger(t *testing.T) {
	t.Helper()
	saved := log.Logger
	t.Cleanup(func() {
		Close()
		log.Logger = saved
	})
}

func TestInit_ConsoleJSON(t *testing.T) {
	restoreLogger(t)

	var buf bytes.Buffer
	require.NoError(t, Init(Options{Level: "info", Console: true, Output: &buf}))

	log.Debug().Msg("hidden")
	log.Info().Str("url", "https://example.com").Msg("visible")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 1)

	var ev map[string]any
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &ev))
	assert.Equal(t, "visible", ev["message"])
	assert.Equal(t, "info", ev["level"])
	assert.Equal(t, "https://example.com", ev["url"])
	assert.Contains(t, ev, "time")
}

func TestInit_InvalidLevelFallsBackToInfo(t *testing.T) {
	restoreLogger(t)

	require.NoError(t, Init(Options{Level: "verbose"}))
	assert.Equal(t, zerolog.InfoLevel, log.Logger.GetLevel())
}

func TestInit_NoConsoleDiscards(t *testing.T) {
	restoreLogger(t)

	var buf bytes.Buffer
	require.NoError(t, Init(Options{Level: "debug", Output: &buf}))

	log.Error().Msg("nowhere")
	assert.Empty(t, buf.String())
}

func TestInit_File(t *testing.T) {
	restoreLogger(t)

	path := filepath.Join(t.TempDir(), "logs", "fetcher.log")
	require.NoError(t, Init(Options{Level: "info", File: path}))

	log.Warn().Msg("written to file")

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "written to file")
}

type recordingSink struct {
	events []axiom.Event
}

func (s *recordingSink) Send(ev axiom.Event) {
	s.events = append(s.events, ev)
}

func TestAxiomWriter(t *testing.T) {
	sink := &recordingSink{}
	w := &axiomWriter{sink: sink}

	n, err := w.Write([]byte(`{"level":"debug","message":"noise"}`))
	require.NoError(t, err)
	assert.Equal(t, len(`{"level":"debug","message":"noise"}`), n)

	_, err = w.Write([]byte(`{"level":"warn","message":"fetch failed","url":"u"}`))
	require.NoError(t, err)

	_, err = w.Write([]byte("not json"))
	require.NoError(t, err)

	require.Len(t, sink.events, 2)
	assert.Equal(t, "fetch failed", sink.events[0]["message"])
	assert.Equal(t, ServiceName, sink.events[0]["service"])
	assert.Contains(t, sink.events[0], ingest.TimestampField)
	assert.Equal(t, "not json", sink.events[1]["message"])
}
