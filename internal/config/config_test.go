package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load(New())
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.Server.Addr)
	assert.Equal(t, 5*time.Second, cfg.Server.ReadTimeout)
	assert.Equal(t, int64(5<<20), cfg.Server.MaxUploadBytes)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Encoding)
	assert.False(t, cfg.Telemetry.Enabled)
	assert.Equal(t, "", cfg.Roster.Path)
}

func TestLoad_Env(t *testing.T) {
	t.Setenv("LEAGUERESULTS_SERVER_ADDR", "127.0.0.1:9000")
	t.Setenv("LEAGUERESULTS_LOG_LEVEL", "debug")

	cfg, err := Load(New())
	require.NoError(t, err)
	assert.Equal(t, "127.0.0.1:9000", cfg.Server.Addr)
	assert.Equal(t, "debug", cfg.Log.Level)
}

func TestReadFile(t *testing.T) {
	dir := t.TempDir()
	rosterPath := filepath.Join(dir, "roster.yaml")
	require.NoError(t, os.WriteFile(rosterPath, []byte("drivers: []\n"), 0o600))

	path := filepath.Join(dir, "config.yaml")
	content := "server:\n  addr: \":9090\"\n  write_timeout: 2m\nlog:\n  encoding: console\nroster:\n  path: " + rosterPath + "\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	v := New()
	require.NoError(t, ReadFile(v, path))
	cfg, err := Load(v)
	require.NoError(t, err)

	assert.Equal(t, ":9090", cfg.Server.Addr)
	assert.Equal(t, 2*time.Minute, cfg.Server.WriteTimeout)
	assert.Equal(t, "console", cfg.Log.Encoding)
	assert.Equal(t, rosterPath, cfg.Roster.Path)
}

func TestReadFile_Missing(t *testing.T) {
	assert.NoError(t, ReadFile(New(), ""))
	assert.Error(t, ReadFile(New(), filepath.Join(t.TempDir(), "nope.yaml")))
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name string
		key  string
		val  any
	}{
		{"empty addr", "server.addr", ""},
		{"bad level", "log.level", "loud"},
		{"bad encoding", "log.encoding", "xml"},
		{"zero upload limit", "server.max_upload_bytes", 0},
		{"missing roster file", "roster.path", "/definitely/not/here.yaml"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := New()
			v.Set(tt.key, tt.val)
			_, err := Load(v)
			assert.Error(t, err)
		})
	}
}

func TestBindFlags(t *testing.T) {
	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	flags.String("addr", "", "")
	require.NoError(t, flags.Parse([]string{"--addr", ":7000"}))

	v := New()
	require.NoError(t, BindFlags(v, flags, map[string]string{"addr": "server.addr"}))
	assert.Equal(t, ":7000", v.GetString("server.addr"))

	err := BindFlags(v, flags, map[string]string{"missing": "log.level"})
	assert.Error(t, err)
}
