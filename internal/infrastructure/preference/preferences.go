package preference

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"sync"

	"github.com/spf13/viper"

	"perfi.com/internal/domain/port"
)

const (
	// viper keys are case-insensitive and written lower case
	keyAPIPort = "apiport"

	// DefaultAPIPort is used when no backend has ever been launched.
	DefaultAPIPort = 5001
)

// FilePreferences is a small key-value file that survives restarts.
type FilePreferences struct {
	mu   sync.Mutex
	path string
	v    *viper.Viper
}

// Open reads the preference file at path. A missing file is not an error.
func Open(path string) (*FilePreferences, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	if _, err := os.Stat(path); err == nil {
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read preferences: %w", err)
		}
	}

	return &FilePreferences{path: path, v: v}, nil
}

// APIPort returns the last recorded backend API port.
func (p *FilePreferences) APIPort() (int, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.v.IsSet(keyAPIPort) {
		return 0, false
	}
	port := p.v.GetInt(keyAPIPort)
	return port, port > 0
}

// SetAPIPort records the backend API port and writes the file.
func (p *FilePreferences) SetAPIPort(port int) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.v.Set(keyAPIPort, port)
	if err := os.MkdirAll(filepath.Dir(p.path), 0o700); err != nil {
		return fmt.Errorf("failed to create preferences directory: %w", err)
	}
	if err := p.v.WriteConfigAs(p.path); err != nil {
		return fmt.Errorf("failed to write preferences: %w", err)
	}
	return nil
}

// BackendURL is the API base URL derived from the recorded port.
func BackendURL(prefs port.Preferences) string {
	apiPort := DefaultAPIPort
	if prefs != nil {
		if p, ok := prefs.APIPort(); ok {
			apiPort = p
		}
	}
	return "http://127.0.0.1:" + strconv.Itoa(apiPort)
}
