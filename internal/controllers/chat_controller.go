package controllers

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/gofiber/fiber/v3"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/pjamessteven/social-project-sub002/internal/agents"
	"github.com/pjamessteven/social-project-sub002/internal/storage"
	"github.com/pjamessteven/social-project-sub002/pkg/chatstream"
	"github.com/pjamessteven/social-project-sub002/pkg/chatstream/hitl"
	"github.com/pjamessteven/social-project-sub002/pkg/chatstream/types"
	"github.com/pjamessteven/social-project-sub002/pkg/chatstream/workflow"
)

// ChatController serves the streaming chat and research endpoints.
type ChatController struct {
	factory          *agents.Factory
	coordinator      *hitl.Coordinator
	conversations    *storage.ConversationStore
	questions        *storage.QuestionStore
	suggestQuestions bool
}

type ChatControllerDependencies struct {
	Factory           *agents.Factory
	Coordinator       *hitl.Coordinator
	ConversationStore *storage.ConversationStore
	QuestionStore     *storage.QuestionStore
	SuggestQuestions  bool
}

func NewChatController(deps ChatControllerDependencies) *ChatController {
	return &ChatController{
		factory:          deps.Factory,
		coordinator:      deps.Coordinator,
		conversations:    deps.ConversationStore,
		questions:        deps.QuestionStore,
		suggestQuestions: deps.SuggestQuestions,
	}
}

// ChatRequest is the body of a streaming chat or research request.
type ChatRequest struct {
	Messages       []types.UIMessage `json:"messages"`
	ID             string            `json:"id,omitempty"`
	ConversationID string            `json:"conversationId,omitempty"`
	Locale         string            `json:"locale,omitempty"`
}

// Chat handles POST /api/chat.
func (c *ChatController) Chat(ctx fiber.Ctx) error {
	return c.handle(ctx, agents.ModeChat)
}

// Research handles POST /api/research.
func (c *ChatController) Research(ctx fiber.Ctx) error {
	return c.handle(ctx, agents.ModeResearch)
}

func (c *ChatController) handle(ctx fiber.Ctx, mode agents.Mode) error {
	var req ChatRequest

	if err := ctx.Bind().Body(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
	}

	if len(req.Messages) == 0 {
		return fiber.NewError(fiber.StatusBadRequest, "Messages are required")
	}

	lastMessage := req.Messages[len(req.Messages)-1]
	if lastMessage.Role != types.RoleUser {
		return fiber.NewError(fiber.StatusBadRequest, "Last message must be from the user")
	}

	conversationID := req.ConversationID
	if conversationID == "" {
		conversationID = req.ID
	}
	if conversationID == "" {
		conversationID = uuid.NewString()
	}

	question := lastMessage.Text()

	if mode == agents.ModeResearch {
		if err := c.checkResearchConversation(ctx.RequestCtx(), conversationID); err != nil {
			return err
		}
		c.questions.IncrementViews(ctx.RequestCtx(), question)
	}

	wf := c.factory.Workflow(mode)

	// The stream outlives the handler, so the workflow runs on its own
	// cancellable context rather than the request's.
	runCtx, cancel := context.WithCancel(context.Background())

	wfctx, err := c.startWorkflow(ctx.RequestCtx(), runCtx, wf, req.Messages, lastMessage, conversationID)
	if err != nil {
		cancel()
		return err
	}

	ds := chatstream.ToDataStream(runCtx, wfctx.Events(), chatstream.Options{
		SourceErr: wfctx.Err,
		Callbacks: chatstream.StreamCallbacks{
			OnPauseForHumanInput: func(cbCtx context.Context, ev *types.HumanInputRequestEvent) error {
				return c.coordinator.PauseForHumanInput(cbCtx, wfctx, ev, conversationID)
			},
			OnComplete: func(cbCtx context.Context, w chatstream.FrameWriter) error {
				c.appendSuggestedQuestions(cbCtx, w, req.Messages)
				return nil
			},
			OnFinal: func(cbCtx context.Context, completion string) error {
				c.saveConversation(cbCtx, conversationID, mode, req, completion)
				if mode == agents.ModeResearch {
					c.questions.RecordFinalResponse(cbCtx, question, completion)
				}
				return nil
			},
		},
	})

	ctx.Set(fiber.HeaderContentType, "text/plain; charset=utf-8")
	ctx.Set(fiber.HeaderCacheControl, "no-cache")
	ctx.Set("X-Vercel-AI-Data-Stream", "v1")
	ctx.Set("X-Accel-Buffering", "no")
	ctx.Set("X-Conversation-Id", conversationID)

	return ctx.SendStreamWriter(func(w *bufio.Writer) {
		defer cancel()

		writeStream(w, ds)
	})
}

// checkResearchConversation enforces the single-question research flow: a
// conversation that already holds messages, or was archived, is done.
func (c *ChatController) checkResearchConversation(ctx context.Context, conversationID string) error {
	existing, err := c.conversations.Get(ctx, conversationID)
	if errors.Is(err, storage.ErrConversationNotFound) {
		return nil
	}
	if err != nil {
		log.Warn().Err(err).Msg("Failed to look up conversation")
		return nil
	}

	if existing.Archived || len(existing.Messages) > 1 {
		return fiber.NewError(fiber.StatusGone, "This research conversation is already complete")
	}

	return nil
}

// startWorkflow either resumes a paused run, when the inbound message
// carries human responses, or starts a fresh one.
func (c *ChatController) startWorkflow(reqCtx context.Context, runCtx context.Context, wf *workflow.Workflow, messages []types.UIMessage, lastMessage types.UIMessage, conversationID string) (*workflow.Context, error) {
	responses := hitl.HumanResponsesFromMessage(lastMessage)
	if len(responses) == 0 {
		return wf.Run(runCtx, types.ChatHistoryFromUIMessages(messages)), nil
	}

	snapshot, err := c.coordinator.Resume(reqCtx, conversationID)
	if errors.Is(err, hitl.ErrSnapshotNotFound) {
		return nil, fiber.NewError(fiber.StatusGone, "This session has expired or was already resumed")
	}
	if err != nil {
		log.Error().Err(err).Msg("Failed to resume workflow")
		return nil, fiber.NewError(fiber.StatusInternalServerError, "Failed to resume session")
	}

	wfctx, err := wf.Resume(runCtx, snapshot.State, responses)
	if err != nil {
		log.Error().Err(err).Msg("Failed to restore workflow state")
		return nil, fiber.NewError(fiber.StatusInternalServerError, "Failed to resume session")
	}

	return wfctx, nil
}

func (c *ChatController) appendSuggestedQuestions(ctx context.Context, w chatstream.FrameWriter, messages []types.UIMessage) {
	if !c.suggestQuestions {
		return
	}

	questions, err := c.factory.SuggestQuestions(ctx, types.ChatHistoryFromUIMessages(messages))
	if err != nil {
		log.Warn().Err(err).Msg("Failed to generate suggested questions")
		return
	}
	if len(questions) == 0 {
		return
	}

	w.Write(types.AnnotationFrame{
		Type: types.AnnotationSuggestedQuestions,
		Data: map[string]any{"questions": questions},
	})
}

func (c *ChatController) saveConversation(ctx context.Context, conversationID string, mode agents.Mode, req ChatRequest, completion string) {
	if completion == "" {
		return
	}

	conversation, err := c.conversations.Get(ctx, conversationID)
	if errors.Is(err, storage.ErrConversationNotFound) {
		conversation = &storage.Conversation{
			UUID:    conversationID,
			Mode:    string(mode),
			Title:   truncate(req.Messages[0].Text(), 120),
			Country: req.Locale,
		}
	} else if err != nil {
		log.Warn().Err(err).Msg("Failed to load conversation for save")
		return
	}

	assistant := types.NewTextMessage(types.RoleAssistant, completion)
	assistant.ID = uuid.NewString()

	conversation.Messages = append(req.Messages, assistant)

	if err := c.conversations.Save(ctx, conversation); err != nil {
		log.Warn().Err(err).Msg("Failed to save conversation")
	}
}

// writeStream renders frames as server-sent events until the stream ends,
// then reports the terminal error, if any, and the DONE marker.
func writeStream(w *bufio.Writer, ds *chatstream.DataStream) {
	for frame := range ds.Frames() {
		payload, err := json.Marshal(frame)
		if err != nil {
			log.Warn().Err(err).Msg("Failed to marshal stream frame")
			continue
		}

		if _, err := fmt.Fprintf(w, "data: %s\n\n", payload); err != nil {
			return
		}
		if err := w.Flush(); err != nil {
			return
		}
	}

	if err := ds.Err(); err != nil {
		payload, marshalErr := json.Marshal(map[string]string{
			"type":      "error",
			"errorText": err.Error(),
		})
		if marshalErr == nil {
			fmt.Fprintf(w, "data: %s\n\n", payload)
		}
	}

	fmt.Fprint(w, "data: [DONE]\n\n")
	w.Flush()
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max]
}
