package tui

import (
	"errors"
	"io"
	"path/filepath"
	"testing"

	"github.com/charmbracelet/log"

	"github.com/vovakirdan/flappy-evo/internal/config"
)

func TestNewSSHServer(t *testing.T) {
	quiet := log.New(io.Discard)

	tests := []struct {
		name    string
		mutate  func(*SSHServerConfig)
		wantErr error
	}{
		{"valid", func(*SSHServerConfig) {}, nil},
		{"optimizer fields are ignored", func(c *SSHServerConfig) { c.Sim.Evolve.CrossoverRate = 2 }, nil},
		{"invalid simulation", func(c *SSHServerConfig) { c.Sim.Pipes.Speed = 0 }, config.ErrInvalid},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			cfg := DefaultSSHServerConfig()
			cfg.Address = "127.0.0.1:2222"
			cfg.HostKeyPath = filepath.Join(t.TempDir(), "keys", "host_key")
			cfg.Factory = idle
			cfg.Logger = quiet
			tc.mutate(&cfg)

			srv, err := NewSSHServer(cfg)
			if tc.wantErr != nil {
				if !errors.Is(err, tc.wantErr) {
					t.Fatalf("NewSSHServer() error = %v, expected %v", err, tc.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("NewSSHServer() failed: %v", err)
			}
			if srv.Addr() != "127.0.0.1:2222" {
				t.Errorf("Addr() = %q, expected 127.0.0.1:2222", srv.Addr())
			}
		})
	}
}

func TestNewSSHServerRequiresFactory(t *testing.T) {
	cfg := DefaultSSHServerConfig()
	cfg.HostKeyPath = filepath.Join(t.TempDir(), "host_key")

	if _, err := NewSSHServer(cfg); err == nil {
		t.Fatal("NewSSHServer() should reject a config without a controller factory")
	}
}
