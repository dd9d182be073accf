package scheduler

import (
	"encoding/json"
	"time"

	"github.com/hibiken/asynq"
)

const TaskFollowupSweep = "followups.sweep"

// FollowupSweepPayload records when the sweep was requested. The sweep
// itself always evaluates against the worker's clock; the timestamp is for
// tracing only.
type FollowupSweepPayload struct {
	RequestedAt time.Time `json:"requestedAt"`
}

func NewFollowupSweepTask(payload FollowupSweepPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskFollowupSweep, data), nil
}

func ParseFollowupSweepPayload(task *asynq.Task) (FollowupSweepPayload, error) {
	var payload FollowupSweepPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		return FollowupSweepPayload{}, err
	}
	return payload, nil
}
