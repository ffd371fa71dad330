package lifecycle

import (
	"context"
	"errors"
	"reflect"
	"strings"
	"testing"
	"time"
)

func TestShutdownRunsHooksInReverseOrder(t *testing.T) {
	m := New(time.Second, nil)
	var order []string
	for _, name := range []string{"storage", "monitor", "http_server"} {
		name := name
		m.Register(name, func(ctx context.Context) error {
			order = append(order, name)
			return nil
		})
	}

	if err := m.Shutdown(context.Background()); err != nil {
		t.Fatalf("Shutdown: %v", err)
	}
	want := []string{"http_server", "monitor", "storage"}
	if !reflect.DeepEqual(order, want) {
		t.Errorf("expected %v, got %v", want, order)
	}
}

func TestShutdownJoinsErrorsAndContinues(t *testing.T) {
	m := New(time.Second, nil)
	ran := false
	m.Register("first", func(ctx context.Context) error {
		ran = true
		return nil
	})
	m.Register("broken", func(ctx context.Context) error {
		return errors.New("boom")
	})

	err := m.Shutdown(context.Background())
	if err == nil || !strings.Contains(err.Error(), "broken: boom") {
		t.Fatalf("expected joined error naming the hook, got %v", err)
	}
	if !ran {
		t.Error("expected remaining hooks to run after a failure")
	}
}

func TestShutdownOnlyOnce(t *testing.T) {
	m := New(time.Second, nil)
	calls := 0
	m.Register("x", func(ctx context.Context) error {
		calls++
		return nil
	})
	_ = m.Shutdown(context.Background())
	_ = m.Shutdown(context.Background())
	if calls != 1 {
		t.Errorf("expected 1 call, got %d", calls)
	}
}

func TestShutdownHookSeesDeadline(t *testing.T) {
	m := New(50*time.Millisecond, nil)
	m.Register("slow", func(ctx context.Context) error {
		if _, ok := ctx.Deadline(); !ok {
			return errors.New("no deadline")
		}
		return nil
	})
	if err := m.Shutdown(context.Background()); err != nil {
		t.Fatalf("Shutdown: %v", err)
	}
}

func TestListenStop(t *testing.T) {
	m := New(time.Second, nil)
	cancelled := false
	stop := m.Listen(func() { cancelled = true })
	stop()
	stop()
	if cancelled {
		t.Error("stop must not cancel")
	}
}
