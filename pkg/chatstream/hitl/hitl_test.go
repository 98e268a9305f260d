package hitl_test

import (
	"context"
	"encoding/json"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pjamessteven/social-project-sub002/pkg/chatstream/hitl"
	"github.com/pjamessteven/social-project-sub002/pkg/chatstream/hitl/inmemory"
	"github.com/pjamessteven/social-project-sub002/pkg/chatstream/types"
)

type fakeSnapshotter struct {
	state json.RawMessage
	err   error
}

func (f *fakeSnapshotter) SnapshotState() (json.RawMessage, error) {
	return f.state, f.err
}

func TestCoordinator_PauseAndResume(t *testing.T) {
	coordinator := hitl.NewCoordinator(inmemory.New())

	state := json.RawMessage(`{"messages":[],"iteration":2}`)
	ev := &types.HumanInputRequestEvent{
		ToolCallID: "call-1",
		Prompt:     "Which city?",
		InputType:  "text",
	}

	err := coordinator.PauseForHumanInput(context.Background(), &fakeSnapshotter{state: state}, ev, "req-1")
	require.NoError(t, err)

	snapshot, err := coordinator.Resume(context.Background(), "req-1")
	require.NoError(t, err)

	assert.Equal(t, "req-1", snapshot.RequestID)
	assert.Equal(t, state, snapshot.State)
	assert.Equal(t, "call-1", snapshot.Request["tool_call_id"])
	assert.Equal(t, "Which city?", snapshot.Request["prompt"])
	assert.False(t, snapshot.CreatedAt.IsZero())
}

func TestCoordinator_PauseRequiresRequestID(t *testing.T) {
	coordinator := hitl.NewCoordinator(inmemory.New())

	err := coordinator.PauseForHumanInput(context.Background(), &fakeSnapshotter{}, &types.HumanInputRequestEvent{}, "")
	assert.ErrorIs(t, err, hitl.ErrMissingRequestID)
}

func TestCoordinator_ResumeMissingSnapshot(t *testing.T) {
	coordinator := hitl.NewCoordinator(inmemory.New())

	_, err := coordinator.Resume(context.Background(), "never-paused")
	assert.ErrorIs(t, err, hitl.ErrSnapshotNotFound)
}

func TestCoordinator_ConcurrentResumeFirstWins(t *testing.T) {
	coordinator := hitl.NewCoordinator(inmemory.New())

	err := coordinator.PauseForHumanInput(context.Background(), &fakeSnapshotter{state: json.RawMessage(`{}`)}, &types.HumanInputRequestEvent{ToolCallID: "call-1"}, "req-1")
	require.NoError(t, err)

	const resumers = 8

	var wg sync.WaitGroup
	results := make(chan error, resumers)

	for i := 0; i < resumers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := coordinator.Resume(context.Background(), "req-1")
			results <- err
		}()
	}

	wg.Wait()
	close(results)

	winners := 0
	for err := range results {
		if err == nil {
			winners++
		} else {
			assert.ErrorIs(t, err, hitl.ErrSnapshotNotFound)
		}
	}

	assert.Equal(t, 1, winners, "exactly one resumer must consume the snapshot")
}

func TestHumanResponsesFromMessage(t *testing.T) {
	msg := types.UIMessage{
		Role: types.RoleUser,
		Parts: []types.MessagePart{
			{Type: types.PartTypeText, Text: "here you go"},
			{
				Type: types.PartTypeHumanResponse,
				Data: map[string]any{
					"tool_call_id": "call-1",
					"data":         map[string]any{"answer": "Auckland"},
				},
			},
			{
				Type: types.PartTypeHumanResponse,
				Text: "just text",
				Data: map[string]any{"tool_call_id": "call-2"},
			},
		},
	}

	responses := hitl.HumanResponsesFromMessage(msg)
	require.Len(t, responses, 2)

	assert.Equal(t, "call-1", responses[0].ToolCallID)
	assert.Equal(t, map[string]any{"answer": "Auckland"}, responses[0].Data)

	assert.Equal(t, "call-2", responses[1].ToolCallID)
	assert.Equal(t, map[string]any{"text": "just text"}, responses[1].Data)
}

func TestHumanResponsesFromMessage_NoParts(t *testing.T) {
	msg := types.NewTextMessage(types.RoleUser, "plain question")
	assert.Empty(t, hitl.HumanResponsesFromMessage(msg))
}
