package closer

import (
	"context"
	"errors"
	"strings"
	"sync/atomic"
	"testing"
	"time"
)

func TestCloseLIFOOrder(t *testing.T) {
	c := NewCloser(0)
	var order []int
	for i := 1; i <= 3; i++ {
		c.Add(func(_ context.Context) error {
			order = append(order, i)
			return nil
		})
	}

	if err := c.Close(context.Background()); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if len(order) != 3 || order[0] != 3 || order[1] != 2 || order[2] != 1 {
		t.Fatalf("order = %v, want [3 2 1]", order)
	}
}

func TestCloseCollectsErrors(t *testing.T) {
	c := NewCloser(0)
	c.Add(func(_ context.Context) error { return errors.New("redis: connection reset") })
	c.Add(func(_ context.Context) error { return nil })

	err := c.Close(context.Background())
	if err == nil {
		t.Fatal("ожидали ошибку закрытия")
	}
	if !strings.Contains(err.Error(), "redis: connection reset") {
		t.Fatalf("err = %v, want wrapped close error", err)
	}
}

func TestCloseOnlyOnce(t *testing.T) {
	c := NewCloser(0)
	var calls atomic.Int32
	c.Add(func(_ context.Context) error {
		calls.Add(1)
		return nil
	})

	if err := c.Close(context.Background()); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if err := c.Close(context.Background()); err != nil {
		t.Fatalf("second Close: %v", err)
	}
	if got := calls.Load(); got != 1 {
		t.Fatalf("close func called %d times, want 1", got)
	}
}

func TestCloseForcesRemainingOnCancel(t *testing.T) {
	c := NewCloser(time.Second)
	var forced atomic.Bool
	c.Add(func(_ context.Context) error {
		forced.Store(true)
		return nil
	})
	// Верхняя функция висит дольше отведённого контекста, нижнюю
	// добивает принудительный проход.
	c.Add(func(ctx context.Context) error {
		<-ctx.Done()
		time.Sleep(50 * time.Millisecond)
		return ctx.Err()
	})

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	err := c.Close(ctx)
	if err == nil {
		t.Fatal("ожидали ошибку прерванного закрытия")
	}
	if !strings.Contains(err.Error(), "shutdown interrupted") {
		t.Fatalf("err = %v, want interrupted shutdown", err)
	}
	if !forced.Load() {
		t.Fatal("оставшийся ресурс не был закрыт принудительно")
	}
}
