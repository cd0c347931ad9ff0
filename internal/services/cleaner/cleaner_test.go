package services

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

type RepoStub struct {
	calls   atomic.Int64
	deleted int64
	err     error
}

func (s *RepoStub) DeleteExpiredResetTokens(_ context.Context) (int64, error) {
	s.calls.Add(1)
	return s.deleted, s.err
}

func newNoopLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// Первая очистка выполняется сразу, дальше по тикеру, остановка по контексту.
func TestCleanerService_Run(t *testing.T) {
	repo := &RepoStub{deleted: 3}
	svc := NewCleanerService(repo, newNoopLogger(), 20*time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		svc.Run(ctx)
		close(done)
	}()

	assert.Eventually(t, func() bool {
		return repo.calls.Load() >= 2
	}, time.Second, 5*time.Millisecond)

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Run did not stop after context cancel")
	}
}

// Ошибка хранилища не останавливает цикл.
func TestCleanerService_Run_RepoError(t *testing.T) {
	repo := &RepoStub{err: errors.New("db error")}
	svc := NewCleanerService(repo, newNoopLogger(), 10*time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		svc.Run(ctx)
		close(done)
	}()

	assert.Eventually(t, func() bool {
		return repo.calls.Load() >= 3
	}, time.Second, 5*time.Millisecond)

	cancel()
	<-done
}
