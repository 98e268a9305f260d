package controllers

import (
	"errors"
	"strconv"

	"github.com/gofiber/fiber/v3"

	"github.com/pjamessteven/social-project-sub002/internal/storage"
)

// ConversationController serves stored research conversations.
type ConversationController struct {
	conversations *storage.ConversationStore
}

func NewConversationController(conversations *storage.ConversationStore) *ConversationController {
	return &ConversationController{conversations: conversations}
}

// List handles GET /api/research/conversations.
func (c *ConversationController) List(ctx fiber.Ctx) error {
	filter := storage.ConversationFilter{
		Mode: "research",
		Page: fiber.Query(ctx, "page", 1),
	}

	filter.Limit = fiber.Query(ctx, "limit", 20)

	if featured := ctx.Query("featured"); featured != "" {
		value, err := strconv.ParseBool(featured)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid featured filter")
		}
		filter.Featured = &value
	}

	conversations, err := c.conversations.List(ctx.RequestCtx(), filter)
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "Failed to list conversations")
	}

	return ctx.JSON(fiber.Map{
		"conversations": conversations,
		"page":          filter.Page,
	})
}

// Get handles GET /api/research/conversations/:uuid.
func (c *ConversationController) Get(ctx fiber.Ctx) error {
	uuid := ctx.Params("uuid")
	if uuid == "" {
		return fiber.NewError(fiber.StatusBadRequest, "Conversation uuid is required")
	}

	conversation, err := c.conversations.Get(ctx.RequestCtx(), uuid)
	if errors.Is(err, storage.ErrConversationNotFound) {
		return fiber.NewError(fiber.StatusNotFound, "Conversation not found")
	}
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "Failed to load conversation")
	}

	return ctx.JSON(conversation)
}
