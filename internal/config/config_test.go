package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDotEnvLine(t *testing.T) {
	tests := []struct {
		line      string
		wantKey   string
		wantValue string
		wantOK    bool
	}{
		{"LOGIN_TIMEOUT=600", "LOGIN_TIMEOUT", "600", true},
		{"export DEBUG=low", "DEBUG", "low", true},
		{`PROXY="http://127.0.0.1:8080"`, "PROXY", "http://127.0.0.1:8080", true},
		{"API_KEY=sk-1 # comment", "API_KEY", "sk-1", true},
		{"API_KEY=sk#1", "API_KEY", "sk#1", true},
		{"EMPTY=", "EMPTY", "", true},
		{"# comment", "", "", false},
		{"=value", "", "", false},
		{"novalue", "", "", false},
	}

	for _, tt := range tests {
		key, value, ok := parseDotEnvLine(tt.line)
		assert.Equal(t, tt.wantOK, ok, tt.line)
		assert.Equal(t, tt.wantKey, key, tt.line)
		assert.Equal(t, tt.wantValue, value, tt.line)
	}
}

func TestFormatEnvLine(t *testing.T) {
	assert.Equal(t, "DEBUG=low", formatEnvLine("DEBUG", "low"))
	assert.Equal(t, `UA="a b"`, formatEnvLine("UA", "a b"))
	assert.Equal(t, `EMPTY=""`, formatEnvLine("EMPTY", ""))
}

func TestUpdateDotEnvFileRewritesAndAppends(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ".env")
	require.NoError(t, os.WriteFile(path, []byte("# pool\nLOGIN_TIMEOUT=600\nPORT=8046\n"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "go.mod"), []byte("module x\n"), 0o644))
	t.Chdir(dir)

	require.NoError(t, updateDotEnvFile(map[string]string{
		"LOGIN_TIMEOUT":  "30",
		"INFO_THRESHOLD": "15",
	}))

	lines, err := readDotEnvLines(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"# pool", "LOGIN_TIMEOUT=30", "PORT=8046", "INFO_THRESHOLD=15"}, lines)
}

func TestConfigDurationsAndLocation(t *testing.T) {
	c := &Config{LoginTimeoutMinutes: 600, InfoThresholdMinutes: 30, TimeWindowTZ: "UTC"}
	assert.Equal(t, 10*time.Hour, c.LoginTimeout())
	assert.Equal(t, 30*time.Minute, c.InfoThreshold())
	assert.Equal(t, time.UTC, c.Location())

	c.TimeWindowTZ = "Not/AZone"
	assert.Equal(t, time.Local, c.Location())
}
