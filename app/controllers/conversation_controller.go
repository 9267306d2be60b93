// app/controllers/conversation_controller.go
package controllers

import (
	"talkmatch/app/middlewares"
	"talkmatch/app/services"
	apperrors "talkmatch/pkg/errors"

	"github.com/gocql/gocql"
	"github.com/gofiber/fiber/v2"
)

// ConversationController serves conversation lookups for paired requesters
type ConversationController struct {
	conversations services.ConversationStore
}

// NewConversationController creates a new conversation controller instance
func NewConversationController(conversations services.ConversationStore) *ConversationController {
	return &ConversationController{conversations: conversations}
}

// Get handles GET /api/conversations/:id. Only a participant of the
// conversation may read it.
func (c *ConversationController) Get(ctx *fiber.Ctx) error {
	requesterID := middlewares.RequesterID(ctx)

	conversationID, err := gocql.ParseUUID(ctx.Params("id"))
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"status":  "error",
			"message": "Invalid conversation id",
		})
	}

	conversation, err := c.conversations.GetByID(ctx.Context(), conversationID)
	if err != nil {
		return errorResponse(ctx, err)
	}
	if conversation == nil || !conversation.HasParticipant(requesterID) {
		return errorResponse(ctx, apperrors.ErrConversationNotFound)
	}

	return ctx.JSON(fiber.Map{
		"status":       "success",
		"conversation": conversation,
	})
}
