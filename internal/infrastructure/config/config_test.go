package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o600))
}

func TestLoadConfig_Defaults(t *testing.T) {
	t.Setenv("CONFIG_ENV", "")
	dir := t.TempDir()

	cfg, err := LoadConfig(dir)
	require.NoError(t, err)

	require.Equal(t, 8000, cfg.Shell.BasePort)
	require.Equal(t, 65000, cfg.Shell.MaxPort)
	require.Equal(t, 30, cfg.Readiness.Attempts)
	require.Equal(t, time.Second, cfg.Readiness.Interval)
	require.Equal(t, time.Second, cfg.Readiness.MaxInterval)
	require.False(t, cfg.Readiness.Backoff)
	require.Equal(t, "dist", cfg.Backend.DistDir)
	require.Equal(t, "perfi", cfg.Backend.Binary)
	require.Equal(t, "python", cfg.Backend.Interpreter)
	require.Equal(t, "app_main.py", cfg.Backend.Script)
	require.NotEmpty(t, cfg.Shell.RootDir)
	require.NotEmpty(t, cfg.Preferences.Path)
}

func TestLoadConfig_MergesEnvFile(t *testing.T) {
	t.Setenv("CONFIG_ENV", "dev")
	dir := t.TempDir()
	writeFile(t, dir, "app-config.yaml", `
shell:
  basePort: 9000
  rootDir: /opt/perfi
readiness:
  attempts: 10
  interval: 2s
backend:
  interpreter: python3
`)
	writeFile(t, dir, "dev.yaml", `
readiness:
  attempts: 5
  backoff: true
  maxInterval: 8
`)

	cfg, err := LoadConfig(dir)
	require.NoError(t, err)

	require.Equal(t, 9000, cfg.Shell.BasePort)
	require.Equal(t, "/opt/perfi", cfg.Shell.RootDir)
	require.Equal(t, 5, cfg.Readiness.Attempts)
	require.True(t, cfg.Readiness.Backoff)
	require.Equal(t, 2*time.Second, cfg.Readiness.Interval)
	require.Equal(t, 8*time.Second, cfg.Readiness.MaxInterval)
	require.Equal(t, "python3", cfg.Backend.Interpreter)
}

func TestLoadConfig_EnvOverrides(t *testing.T) {
	t.Setenv("CONFIG_ENV", "")
	t.Setenv("PERFI_SHELL_BASE_PORT", "8100")
	t.Setenv("PERFI_API_URL", "http://127.0.0.1:6001")
	t.Setenv("PERFI_READINESS_INTERVAL", "3")

	cfg, err := LoadConfig(t.TempDir())
	require.NoError(t, err)

	require.Equal(t, 8100, cfg.Shell.BasePort)
	require.Equal(t, "http://127.0.0.1:6001", cfg.API.URL)
	require.Equal(t, 3*time.Second, cfg.Readiness.Interval)
}

func TestLoadConfig_DotEnvFile(t *testing.T) {
	t.Setenv("CONFIG_ENV", "")
	for _, key := range []string{"PERFI_API_URL", "VITE_BACKEND_URL"} {
		t.Setenv(key, "")
		require.NoError(t, os.Unsetenv(key))
	}
	t.Setenv("PERFI_SHELL_MAX_PORT", "9500")
	dir := t.TempDir()
	writeFile(t, dir, ".env", "VITE_BACKEND_URL=http://localhost:5002\nPERFI_SHELL_MAX_PORT=9100\n")

	cfg, err := LoadConfig(dir)
	require.NoError(t, err)

	require.Equal(t, "http://localhost:5002", cfg.API.URL)
	require.Equal(t, 9500, cfg.Shell.MaxPort, "OS environment wins over .env")
}

func TestLoadConfig_InvalidPortRange(t *testing.T) {
	t.Setenv("CONFIG_ENV", "")
	dir := t.TempDir()
	writeFile(t, dir, "app-config.yaml", `
shell:
  basePort: 9000
  maxPort: 8000
`)

	_, err := LoadConfig(dir)
	require.Error(t, err)
}

func TestParseDuration(t *testing.T) {
	tests := []struct {
		in     string
		want   time.Duration
		wantOK bool
	}{
		{in: "1s", want: time.Second, wantOK: true},
		{in: "250ms", want: 250 * time.Millisecond, wantOK: true},
		{in: "4", want: 4 * time.Second, wantOK: true},
		{in: "", wantOK: false},
		{in: "-1s", wantOK: false},
		{in: "soon", wantOK: false},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, ok := parseDuration(tt.in)
			require.Equal(t, tt.wantOK, ok)
			require.Equal(t, tt.want, got)
		})
	}
}
