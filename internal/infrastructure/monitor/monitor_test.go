package monitor

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	redislib "github.com/redis/go-redis/v9"
)

type pingFunc func(ctx context.Context) error

func (f pingFunc) Ping(ctx context.Context) error { return f(ctx) }

func TestRefreshStorageUp(t *testing.T) {
	m := New(pingFunc(func(context.Context) error { return nil }), "bolt", nil, time.Minute, nil)
	m.Refresh(context.Background())

	status := m.GetStatus()
	if !status.Storage || !status.Healthy() {
		t.Errorf("expected healthy storage, got %+v", status)
	}
	if status.RedisEnabled || status.Redis {
		t.Errorf("expected redis disabled, got %+v", status)
	}
	if status.StorageDriver != "bolt" {
		t.Errorf("expected driver bolt, got %q", status.StorageDriver)
	}
	if status.LastCheck.IsZero() {
		t.Error("expected last check to be set")
	}
}

func TestRefreshStorageDown(t *testing.T) {
	m := New(pingFunc(func(context.Context) error { return errors.New("down") }), "postgres", nil, time.Minute, nil)
	m.Refresh(context.Background())

	if m.GetStatus().Healthy() {
		t.Error("expected unhealthy status when storage ping fails")
	}
}

func TestRefreshRedis(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redislib.NewClient(&redislib.Options{Addr: mr.Addr()})
	defer client.Close()

	m := New(pingFunc(func(context.Context) error { return nil }), "bolt", client, time.Minute, nil)
	m.Refresh(context.Background())
	if status := m.GetStatus(); !status.RedisEnabled || !status.Redis {
		t.Errorf("expected redis up, got %+v", status)
	}

	mr.Close()
	m.Refresh(context.Background())
	status := m.GetStatus()
	if status.Redis {
		t.Error("expected redis down after server close")
	}
	if !status.Healthy() {
		t.Error("redis outage should not make the service unhealthy")
	}
}

func TestStartStop(t *testing.T) {
	m := New(pingFunc(func(context.Context) error { return nil }), "bolt", nil, time.Second, nil)
	if err := m.Start(); err != nil {
		t.Fatalf("Start: %v", err)
	}
	if !m.GetStatus().Storage {
		t.Error("expected Start to run an initial check")
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	m.Stop(ctx)
}
