package scheduler

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/hibiken/asynq"
)

type testConfig struct {
	redisURL string
	queue    string
}

func (c testConfig) GetRedisURL() string                     { return c.redisURL }
func (c testConfig) GetRedisTLSInsecure() bool               { return false }
func (c testConfig) GetAsynqQueueName() string               { return c.queue }
func (c testConfig) GetAsynqConcurrency() int                { return 1 }
func (c testConfig) GetFollowupSweepInterval() time.Duration { return time.Minute }

func TestNewClientRequiresRedisURL(t *testing.T) {
	if _, err := NewClient(testConfig{}); err == nil {
		t.Fatal("expected error without redis url")
	}
}

func TestEnqueueFollowupSweep(t *testing.T) {
	mr := miniredis.RunT(t)

	cfg := testConfig{redisURL: "redis://" + mr.Addr(), queue: "calltrack"}
	client, err := NewClient(cfg)
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	defer client.Close()

	requestedAt := time.Date(2025, 4, 1, 8, 0, 0, 0, time.UTC)
	if err := client.EnqueueFollowupSweep(context.Background(), FollowupSweepPayload{RequestedAt: requestedAt}); err != nil {
		t.Fatalf("enqueue: %v", err)
	}

	inspector := asynq.NewInspector(asynq.RedisClientOpt{Addr: mr.Addr()})
	defer inspector.Close()

	pending, err := inspector.ListPendingTasks("calltrack")
	if err != nil {
		t.Fatalf("list pending: %v", err)
	}
	if len(pending) != 1 {
		t.Fatalf("pending tasks = %d, want 1", len(pending))
	}
	if pending[0].Type != TaskFollowupSweep {
		t.Errorf("task type = %q, want %q", pending[0].Type, TaskFollowupSweep)
	}

	var payload FollowupSweepPayload
	if err := json.Unmarshal(pending[0].Payload, &payload); err != nil {
		t.Fatalf("decode payload: %v", err)
	}
	if !payload.RequestedAt.Equal(requestedAt) {
		t.Errorf("requestedAt = %v, want %v", payload.RequestedAt, requestedAt)
	}
}

func TestParseFollowupSweepPayloadRoundTrip(t *testing.T) {
	requestedAt := time.Date(2025, 4, 1, 8, 0, 0, 0, time.UTC)
	task, err := NewFollowupSweepTask(FollowupSweepPayload{RequestedAt: requestedAt})
	if err != nil {
		t.Fatalf("new task: %v", err)
	}

	payload, err := ParseFollowupSweepPayload(task)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if !payload.RequestedAt.Equal(requestedAt) {
		t.Errorf("requestedAt = %v, want %v", payload.RequestedAt, requestedAt)
	}
}
