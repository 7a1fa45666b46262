package config

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestWatchConfigFileReloads(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	dir := t.TempDir()
	serverCfg := filepath.Join(dir, "server.yaml")
	if err := os.WriteFile(serverCfg, []byte("server:\n  gateway:\n    maxRetries: 3\n"), 0o600); err != nil {
		t.Fatalf("failed to write server config: %v", err)
	}

	loader := NewLoader("INNKEEPER_WATCH_TEST", serverCfg)
	if _, err := loader.Load(ctx); err != nil {
		t.Fatalf("loader failed: %v", err)
	}

	changeCh := make(chan Config, 4)
	errCh := make(chan error, 4)

	watcher, err := loader.Watch(ctx, func(cfg Config) {
		changeCh <- cfg
	}, func(err error) {
		select {
		case errCh <- err:
		default:
		}
	})
	if err != nil {
		t.Fatalf("watcher failed: %v", err)
	}
	defer watcher.Stop()

	if err := os.WriteFile(serverCfg, []byte("server:\n  gateway:\n    maxRetries: 5\n    ttl: 90s\n"), 0o600); err != nil {
		t.Fatalf("failed to update server config: %v", err)
	}

	select {
	case cfg := <-changeCh:
		if cfg.Server.Gateway.MaxRetries != 5 {
			t.Fatalf("expected maxRetries 5 after reload, got %d", cfg.Server.Gateway.MaxRetries)
		}
		if cfg.Server.Gateway.TTL != "90s" {
			t.Fatalf("expected ttl 90s after reload, got %q", cfg.Server.Gateway.TTL)
		}
	case err := <-errCh:
		t.Fatalf("unexpected error: %v", err)
	case <-time.After(3 * time.Second):
		t.Fatal("timeout waiting for reload event")
	}
}

func TestWatchReportsInvalidSnapshot(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	dir := t.TempDir()
	serverCfg := filepath.Join(dir, "server.yaml")
	if err := os.WriteFile(serverCfg, []byte("server:\n  listen:\n    port: 8081\n"), 0o600); err != nil {
		t.Fatalf("failed to write server config: %v", err)
	}

	loader := NewLoader("", serverCfg)
	changeCh := make(chan Config, 4)
	errCh := make(chan error, 4)
	watcher, err := loader.Watch(ctx, func(cfg Config) {
		changeCh <- cfg
	}, func(err error) {
		select {
		case errCh <- err:
		default:
		}
	})
	if err != nil {
		t.Fatalf("watcher failed: %v", err)
	}
	defer watcher.Stop()

	if err := os.WriteFile(serverCfg, []byte("server:\n  gateway:\n    maxRetries: 0\n"), 0o600); err != nil {
		t.Fatalf("failed to update server config: %v", err)
	}

	select {
	case cfg := <-changeCh:
		t.Fatalf("invalid snapshot must not be delivered: %+v", cfg.Server.Gateway)
	case err := <-errCh:
		if err == nil {
			t.Fatal("expected validation error")
		}
	case <-time.After(3 * time.Second):
		t.Fatal("timeout waiting for validation error")
	}
}

func TestWatchRequiresFile(t *testing.T) {
	loader := NewLoader("INNKEEPER")
	if _, err := loader.Watch(context.Background(), func(Config) {}, nil); err == nil {
		t.Fatal("expected error when no configuration file is set")
	}
	if _, err := loader.Watch(context.Background(), nil, nil); err == nil {
		t.Fatal("expected error when callback is nil")
	}
}
