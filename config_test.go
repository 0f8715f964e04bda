package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/adrg/xdg"
	flag "github.com/spf13/pflag"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func writeFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "settings.yml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestConfig(t *testing.T) {
	isolate(t)

	t.Run("defaults", func(t *testing.T) {
		cfg, err := loadConfig("", map[string]string{})
		require.NoError(t, err)
		require.Equal(t, defaultConfig(), cfg)
		require.Equal(t, "http://127.0.0.1:8080", cfg.URL)
		require.Equal(t, 5*time.Second, cfg.HealthTimeout)
		require.Equal(t, 5*time.Second, cfg.DiscoveryTimeout)
		require.Equal(t, 30*time.Second, cfg.ChatTimeout)
		require.Equal(t, 10*time.Second, cfg.EmbeddingTimeout)
		require.Equal(t, 5*time.Second, cfg.InfoTimeout)
	})

	t.Run("default settings file", func(t *testing.T) {
		dir := filepath.Join(xdg.ConfigHome, "mcp-smoke")
		require.NoError(t, os.MkdirAll(dir, 0o700))
		path := filepath.Join(dir, "settings.yml")
		require.NoError(t, os.WriteFile(path, []byte("info: true\n"), 0o600))
		t.Cleanup(func() { _ = os.Remove(path) })

		cfg, err := loadConfig("", map[string]string{})
		require.NoError(t, err)
		require.True(t, cfg.Info)
		require.Equal(t, path, cfg.SettingsPath)
	})

	t.Run("settings file", func(t *testing.T) {
		path := writeFile(t, "url: https://node.example.com\nchat-timeout: 1m\nmodel: llama\nraw: true\n")
		cfg, err := loadConfig(path, map[string]string{})
		require.NoError(t, err)
		require.Equal(t, "https://node.example.com", cfg.URL)
		require.Equal(t, time.Minute, cfg.ChatTimeout)
		require.Equal(t, 5*time.Second, cfg.HealthTimeout)
		require.Equal(t, "llama", cfg.Model)
		require.True(t, cfg.Raw)
		require.Equal(t, path, cfg.SettingsPath)
	})

	t.Run("empty values keep the defaults", func(t *testing.T) {
		path := writeFile(t, "url: \"\"\nprompt: \"\"\n")
		cfg, err := loadConfig(path, map[string]string{})
		require.NoError(t, err)
		require.Equal(t, defaultConfig().URL, cfg.URL)
		require.Equal(t, defaultConfig().Prompt, cfg.Prompt)
	})

	t.Run("environment over settings file", func(t *testing.T) {
		path := writeFile(t, "url: https://node.example.com\nchat-timeout: 1m\n")
		cfg, err := loadConfig(path, map[string]string{
			"NODE_URL":                    "https://other.example.com",
			"MCP_SMOKE_EMBEDDING_TIMEOUT": "2s",
			"MCP_SMOKE_QUIET":             "true",
			"MCP_SMOKE_INFO_TIMEOUT":      "20s",
		})
		require.NoError(t, err)
		require.Equal(t, "https://other.example.com", cfg.URL)
		require.Equal(t, time.Minute, cfg.ChatTimeout)
		require.Equal(t, 2*time.Second, cfg.EmbeddingTimeout)
		require.True(t, cfg.Quiet)
		require.Equal(t, 20*time.Second, cfg.InfoTimeout)
	})

	t.Run("flags over environment", func(t *testing.T) {
		cfg, err := loadConfig("", map[string]string{
			"NODE_URL":               "https://other.example.com",
			"MCP_SMOKE_CHAT_TIMEOUT": "2s",
		})
		require.NoError(t, err)
		flags := flag.NewFlagSet("test", flag.ContinueOnError)
		initFlags(flags, &cfg)
		require.NoError(t, flags.Parse([]string{"--url", "https://flag.example.com", "--info-timeout", "15s"}))
		require.Equal(t, "https://flag.example.com", cfg.URL)
		require.Equal(t, 2*time.Second, cfg.ChatTimeout)
		require.Equal(t, 15*time.Second, cfg.InfoTimeout)
		require.Equal(t, 15*time.Second, cfg.timeouts().Info)
	})

	t.Run("bad settings file", func(t *testing.T) {
		_, err := loadConfig(writeFile(t, "chat-timeout: [\n"), map[string]string{})
		var serr smokeError
		require.ErrorAs(t, err, &serr)
		require.Equal(t, "Could not parse settings file.", serr.Reason())
	})

	t.Run("bad environment", func(t *testing.T) {
		_, err := loadConfig("", map[string]string{"MCP_SMOKE_HEALTH_TIMEOUT": "soon"})
		var serr smokeError
		require.ErrorAs(t, err, &serr)
		require.Equal(t, "Could not parse environment into settings.", serr.Reason())
	})

	t.Run("printed settings load back", func(t *testing.T) {
		want := defaultConfig()
		want.Model = "llama"
		want.SystemPrompt = `Say "hi".`
		want.ChatTimeout = 90 * time.Second
		want.InfoTimeout = 12 * time.Second
		want.Info = true

		var buf bytes.Buffer
		require.NoError(t, writeSettings(&buf, want))

		var got Config
		require.NoError(t, yaml.Unmarshal(buf.Bytes(), &got))
		require.Equal(t, want, got)
	})
}

func TestSettingsFlag(t *testing.T) {
	for _, tt := range []struct {
		args []string
		want string
	}{
		{nil, ""},
		{[]string{"--config", "a.yml"}, "a.yml"},
		{[]string{"--nope", "x", "--config=b.yml", "http://node"}, "b.yml"},
		{[]string{"--model", "llama", "-q", "--config", "c.yml"}, "c.yml"},
		{[]string{"-h"}, ""},
	} {
		t.Run(strings.Join(tt.args, " "), func(t *testing.T) {
			require.Equal(t, tt.want, settingsFlag(tt.args))
		})
	}
}

func TestEnvironMap(t *testing.T) {
	require.Equal(t, map[string]string{
		"NODE_URL": "http://a=b",
		"EMPTY":    "",
	}, environMap([]string{"NODE_URL=http://a=b", "EMPTY=", "BROKEN"}))
}
