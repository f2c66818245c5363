package redis

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/MrSnakeDoc/marksync/internal/logger"
)

type flakyPinger struct {
	failures int
	calls    int
}

func (p *flakyPinger) Ping(ctx context.Context) *redis.StatusCmd {
	p.calls++
	cmd := redis.NewStatusCmd(ctx)
	if p.calls <= p.failures {
		cmd.SetErr(errors.New("connection refused"))
	} else {
		cmd.SetVal("PONG")
	}
	return cmd
}

func testOptions() ConnectOptions {
	return ConnectOptions{
		Addr:           "localhost:6379",
		ConnectTimeout: time.Second,
		RetryInterval:  time.Millisecond,
		MaxWait:        4 * time.Millisecond,
		PingTimeout:    100 * time.Millisecond,
		WarnThreshold:  1,
	}
}

func TestWaitReady_RetriesUntilPong(t *testing.T) {
	p := &flakyPinger{failures: 3}

	if err := waitReady(context.Background(), p, testOptions(), logger.NewNop()); err != nil {
		t.Fatalf("waitReady() error = %v", err)
	}
	if p.calls != 4 {
		t.Errorf("ping calls = %d, want 4", p.calls)
	}
}

func TestWaitReady_GivesUpAfterTimeout(t *testing.T) {
	p := &flakyPinger{failures: 1 << 30}
	opts := testOptions()
	opts.ConnectTimeout = 20 * time.Millisecond

	err := waitReady(context.Background(), p, opts, logger.NewNop())
	if err == nil {
		t.Fatal("waitReady() should fail when redis never answers")
	}
	if p.calls < 2 {
		t.Errorf("ping calls = %d, want retries", p.calls)
	}
}

func TestConnectOptions_Validate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*ConnectOptions)
	}{
		{"missing addr", func(o *ConnectOptions) { o.Addr = "" }},
		{"zero connect timeout", func(o *ConnectOptions) { o.ConnectTimeout = 0 }},
		{"zero retry interval", func(o *ConnectOptions) { o.RetryInterval = 0 }},
		{"zero max wait", func(o *ConnectOptions) { o.MaxWait = 0 }},
		{"zero ping timeout", func(o *ConnectOptions) { o.PingTimeout = 0 }},
		{"negative warn threshold", func(o *ConnectOptions) { o.WarnThreshold = -1 }},
	}

	if err := testOptions().validate(); err != nil {
		t.Fatalf("validate() on valid options = %v", err)
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts := testOptions()
			tt.mutate(&opts)
			if err := opts.validate(); err == nil {
				t.Error("validate() should fail")
			}
		})
	}
}
