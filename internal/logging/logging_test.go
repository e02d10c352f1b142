package logging

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	cases := map[string]string{
		"":        "INFO",
		"debug":   "DEBUG",
		"WARN":    "WARN",
		"warning": "WARN",
		" error ": "ERROR",
		"bogus":   "INFO",
	}
	for in, want := range cases {
		assert.Equal(t, want, ParseLevel(in).String(), "ParseLevel(%q)", in)
	}
}

func decodeLines(t *testing.T, buf *bytes.Buffer) []map[string]any {
	t.Helper()
	var out []map[string]any
	for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		if line == "" {
			continue
		}
		var rec map[string]any
		require.NoError(t, json.Unmarshal([]byte(line), &rec), line)
		out = append(out, rec)
	}
	return out
}

func TestNew_JSONWithServiceAndLevel(t *testing.T) {
	var buf bytes.Buffer
	logger := New(&buf, Options{Level: "warn", Service: "server"})

	logger.Info("dropped")
	logger.Warn("kept", "feed", "postgres")

	recs := decodeLines(t, &buf)
	require.Len(t, recs, 1)
	assert.Equal(t, "kept", recs[0]["msg"])
	assert.Equal(t, "server", recs[0]["service"])
	assert.Equal(t, "postgres", recs[0]["feed"])
	assert.NotContains(t, recs[0], "stacktrace")
}

func TestNew_ErrorCarriesStack(t *testing.T) {
	var buf bytes.Buffer
	New(&buf, Options{}).Error("boom")

	recs := decodeLines(t, &buf)
	require.Len(t, recs, 1)
	assert.Contains(t, recs[0]["stacktrace"], "logging")
}

func TestNew_RedactsSecrets(t *testing.T) {
	var buf bytes.Buffer
	logger := New(&buf, Options{Format: "text"})

	logger.Info("login", "email", "ops@momentum.gg", "password", "hunter2", "Token", "abc123")

	out := buf.String()
	assert.Contains(t, out, "ops@momentum.gg")
	assert.NotContains(t, out, "hunter2")
	assert.NotContains(t, out, "abc123")
	assert.Contains(t, out, redacted)
	assert.True(t, strings.HasPrefix(out, "time="), "text format: %s", out)
}
