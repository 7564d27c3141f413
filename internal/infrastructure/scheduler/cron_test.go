package scheduler

import (
	"context"
	"testing"
	"time"
)

func TestStartRejectsInvalidExpression(t *testing.T) {
	t.Parallel()

	s := New("not a cron spec", time.UTC, nil)
	if err := s.Start(func() {}); err == nil {
		t.Fatal("expected error for invalid cron expression")
	}
}

func TestStartAndStop(t *testing.T) {
	t.Parallel()

	s := New("0 9 * * *", nil, nil)
	if err := s.Start(func() {}); err != nil {
		t.Fatalf("Start: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := s.Stop(ctx); err != nil {
		t.Fatalf("Stop: %v", err)
	}
}

func TestStartWithoutJobIsNoOp(t *testing.T) {
	t.Parallel()

	s := New("0 9 * * *", time.UTC, nil)
	if err := s.Start(nil); err != nil {
		t.Fatalf("Start: %v", err)
	}
}
