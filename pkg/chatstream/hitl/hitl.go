// Package hitl makes human-gated workflows resumable across independent
// request/response cycles by snapshotting execution state at pause points.
package hitl

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/pjamessteven/social-project-sub002/pkg/chatstream/types"
)

var (
	// ErrSnapshotNotFound is returned when no snapshot exists under the
	// given request id, or it was already consumed by an earlier resume.
	ErrSnapshotNotFound = errors.New("workflow snapshot not found")

	// ErrMissingRequestID is returned when a pause is attempted without a
	// request id. Storing under a generated id would orphan the snapshot:
	// the client has no way to send a matching id back.
	ErrMissingRequestID = errors.New("request id is required to pause for human input")
)

// Snapshot holds the serialized workflow execution context at the moment
// of a human input pause. Never mutated after creation; resumption builds
// a fresh execution context seeded from it.
type Snapshot struct {
	RequestID string          `json:"request_id"`
	State     json.RawMessage `json:"state"`
	Request   map[string]any  `json:"request,omitempty"`
	CreatedAt time.Time       `json:"created_at"`
}

// SnapshotStore persists snapshots between the pausing request and the
// resuming one. Consume must be atomic: concurrent resumes of the same id
// yield the snapshot to exactly one caller, ErrSnapshotNotFound to the rest.
type SnapshotStore interface {
	Put(ctx context.Context, snapshot Snapshot) error
	Consume(ctx context.Context, requestID string) (Snapshot, error)
}

// Snapshotter is the slice of a workflow execution context the coordinator
// needs: a serialized view of its state.
type Snapshotter interface {
	SnapshotState() (json.RawMessage, error)
}

// Coordinator owns snapshot storage for paused workflows.
type Coordinator struct {
	store SnapshotStore
}

func NewCoordinator(store SnapshotStore) *Coordinator {
	return &Coordinator{store: store}
}

// PauseForHumanInput serializes the workflow context and the pending
// request under requestID so a later request can resume it.
func (c *Coordinator) PauseForHumanInput(ctx context.Context, wfctx Snapshotter, ev *types.HumanInputRequestEvent, requestID string) error {
	if requestID == "" {
		return ErrMissingRequestID
	}

	state, err := wfctx.SnapshotState()
	if err != nil {
		return err
	}

	request := map[string]any{
		"tool_call_id": ev.ToolCallID,
		"prompt":       ev.Prompt,
	}
	if ev.InputType != "" {
		request["input_type"] = ev.InputType
	}

	snapshot := Snapshot{
		RequestID: requestID,
		State:     state,
		Request:   request,
		CreatedAt: time.Now(),
	}

	if err := c.store.Put(ctx, snapshot); err != nil {
		return err
	}

	log.Info().
		Str("request_id", requestID).
		Str("tool_call_id", ev.ToolCallID).
		Msg("Paused workflow for human input")

	return nil
}

// Resume consumes the snapshot stored under requestID. A miss (expired,
// never created, or already consumed) is a reportable error, not a silent
// restart.
func (c *Coordinator) Resume(ctx context.Context, requestID string) (Snapshot, error) {
	if requestID == "" {
		return Snapshot{}, ErrMissingRequestID
	}

	snapshot, err := c.store.Consume(ctx, requestID)
	if err != nil {
		return Snapshot{}, err
	}

	log.Info().
		Str("request_id", requestID).
		Time("paused_at", snapshot.CreatedAt).
		Msg("Resuming workflow from snapshot")

	return snapshot, nil
}

// HumanResponsesFromMessage extracts previously submitted human response
// payloads embedded in an inbound message's structured parts, in order.
func HumanResponsesFromMessage(msg types.UIMessage) []types.HumanResponseData {
	var responses []types.HumanResponseData

	for _, part := range msg.Parts {
		if part.Type != types.PartTypeHumanResponse {
			continue
		}

		response := types.HumanResponseData{}
		if id, ok := part.Data["tool_call_id"].(string); ok {
			response.ToolCallID = id
		}
		if data, ok := part.Data["data"].(map[string]any); ok {
			response.Data = data
		} else if part.Text != "" {
			response.Data = map[string]any{"text": part.Text}
		}

		responses = append(responses, response)
	}

	return responses
}
