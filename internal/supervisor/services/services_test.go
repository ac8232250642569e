// Venuerec - Venue Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/venuerec

package services

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/tomtom215/venuerec/internal/recommend"
)

// mockTrainer counts Train calls.
type mockTrainer struct {
	mu    sync.Mutex
	calls int
	err   error
}

func (m *mockTrainer) Train(context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	return m.err
}

func (m *mockTrainer) getCalls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

// mockReloader counts Reload calls.
type mockReloader struct {
	mu    sync.Mutex
	calls int
	err   error
}

func (m *mockReloader) Reload(context.Context) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	return "unchanged", m.err
}

func (m *mockReloader) getCalls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

// mockHTTPServer blocks in ListenAndServe until Shutdown.
type mockHTTPServer struct {
	listenErr error
	stop      chan struct{}
	once      sync.Once
	shutdowns int
	mu        sync.Mutex
}

func newMockHTTPServer() *mockHTTPServer {
	return &mockHTTPServer{stop: make(chan struct{})}
}

func (m *mockHTTPServer) ListenAndServe() error {
	if m.listenErr != nil {
		return m.listenErr
	}
	<-m.stop
	return http.ErrServerClosed
}

func (m *mockHTTPServer) Shutdown(context.Context) error {
	m.mu.Lock()
	m.shutdowns++
	m.mu.Unlock()
	m.once.Do(func() { close(m.stop) })
	return nil
}

func TestServiceNames(t *testing.T) {
	t.Parallel()

	tests := []struct {
		svc  fmt.Stringer
		want string
	}{
		{NewHTTPServerService(newMockHTTPServer(), 0, zerolog.Nop()), "http-server"},
		{NewTrainerService(&mockTrainer{}, TrainerServiceConfig{}, zerolog.Nop()), "trainer-service"},
		{NewReloaderService(&mockReloader{}, 0, zerolog.Nop()), "artifact-reloader"},
	}
	for _, tt := range tests {
		if got := tt.svc.String(); got != tt.want {
			t.Errorf("String() = %q, want %q", got, tt.want)
		}
	}
}

func TestHTTPServerService_GracefulShutdown(t *testing.T) {
	t.Parallel()

	server := newMockHTTPServer()
	svc := NewHTTPServerService(server, time.Second, zerolog.Nop())

	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() { errCh <- svc.Serve(ctx) }()

	time.Sleep(20 * time.Millisecond)
	cancel()

	select {
	case err := <-errCh:
		if !errors.Is(err, context.Canceled) {
			t.Errorf("Serve() error = %v, want context.Canceled", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Serve() did not return after cancel")
	}

	server.mu.Lock()
	defer server.mu.Unlock()
	if server.shutdowns != 1 {
		t.Errorf("Shutdown called %d times, want 1", server.shutdowns)
	}
}

func TestHTTPServerService_ListenFailure(t *testing.T) {
	t.Parallel()

	server := newMockHTTPServer()
	server.listenErr = errors.New("address already in use")
	svc := NewHTTPServerService(server, time.Second, zerolog.Nop())

	err := svc.Serve(context.Background())
	if err == nil || !errors.Is(err, server.listenErr) {
		t.Errorf("Serve() error = %v, want wrapped listen error", err)
	}
}

func TestHTTPServerService_RealServer(t *testing.T) {
	t.Parallel()

	server := &http.Server{
		Addr:              "127.0.0.1:0",
		Handler:           http.NotFoundHandler(),
		ReadHeaderTimeout: time.Second,
	}
	svc := NewHTTPServerService(server, time.Second, zerolog.Nop())

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	if err := svc.Serve(ctx); !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("Serve() error = %v, want context.DeadlineExceeded", err)
	}
}

func TestTrainerService(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		cfg       TrainerServiceConfig
		err       error
		wantCalls func(int) bool
	}{
		{
			name:      "train on startup only",
			cfg:       TrainerServiceConfig{TrainOnStartup: true},
			wantCalls: func(n int) bool { return n == 1 },
		},
		{
			name:      "no startup, long interval",
			cfg:       TrainerServiceConfig{TrainInterval: time.Hour},
			wantCalls: func(n int) bool { return n == 0 },
		},
		{
			name:      "scheduled",
			cfg:       TrainerServiceConfig{TrainInterval: 20 * time.Millisecond},
			wantCalls: func(n int) bool { return n >= 3 },
		},
		{
			name:      "failures keep the schedule",
			cfg:       TrainerServiceConfig{TrainOnStartup: true, TrainInterval: 20 * time.Millisecond},
			err:       errors.New("catalog down"),
			wantCalls: func(n int) bool { return n >= 3 },
		},
		{
			name:      "empty catalog",
			cfg:       TrainerServiceConfig{TrainOnStartup: true},
			err:       recommend.ErrEmptyCatalog,
			wantCalls: func(n int) bool { return n == 1 },
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			trainer := &mockTrainer{err: tt.err}
			svc := NewTrainerService(trainer, tt.cfg, zerolog.Nop())

			ctx, cancel := context.WithTimeout(context.Background(), 150*time.Millisecond)
			defer cancel()

			if err := svc.Serve(ctx); !errors.Is(err, context.DeadlineExceeded) {
				t.Errorf("Serve() error = %v, want context.DeadlineExceeded", err)
			}
			if got := trainer.getCalls(); !tt.wantCalls(got) {
				t.Errorf("Train() called %d times", got)
			}
		})
	}
}

func TestReloaderService(t *testing.T) {
	t.Parallel()

	t.Run("loads at startup without polling", func(t *testing.T) {
		t.Parallel()
		reloader := &mockReloader{}
		svc := NewReloaderService(reloader, 0, zerolog.Nop())

		ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
		defer cancel()
		_ = svc.Serve(ctx)

		if got := reloader.getCalls(); got != 1 {
			t.Errorf("Reload() called %d times, want 1", got)
		}
	})

	t.Run("polls on interval despite errors", func(t *testing.T) {
		t.Parallel()
		reloader := &mockReloader{err: errors.New("corrupt artifact")}
		svc := NewReloaderService(reloader, 20*time.Millisecond, zerolog.Nop())

		ctx, cancel := context.WithTimeout(context.Background(), 150*time.Millisecond)
		defer cancel()
		if err := svc.Serve(ctx); !errors.Is(err, context.DeadlineExceeded) {
			t.Errorf("Serve() error = %v, want context.DeadlineExceeded", err)
		}

		if got := reloader.getCalls(); got < 3 {
			t.Errorf("Reload() called %d times, want at least 3", got)
		}
	})
}
