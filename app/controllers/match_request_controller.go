// app/controllers/match_request_controller.go
package controllers

import (
	"talkmatch/app/middlewares"
	"talkmatch/app/models"
	"talkmatch/app/services"
	apperrors "talkmatch/pkg/errors"

	"github.com/gocql/gocql"
	"github.com/gofiber/fiber/v2"
)

// MatchRequestController handles the match request HTTP endpoints
type MatchRequestController struct {
	requests    *services.RequestService
	matchmaking *services.MatchmakingService
	messaging   *services.MessagingService
}

// NewMatchRequestController creates a new match request controller instance
func NewMatchRequestController(requests *services.RequestService, matchmaking *services.MatchmakingService) *MatchRequestController {
	return &MatchRequestController{
		requests:    requests,
		matchmaking: matchmaking,
	}
}

// SetMessagingService wires the socket delivery channel for paired events
func (c *MatchRequestController) SetMessagingService(messaging *services.MessagingService) {
	c.messaging = messaging
}

// Submit handles POST /api/match-requests
func (c *MatchRequestController) Submit(ctx *fiber.Ctx) error {
	requesterID := middlewares.RequesterID(ctx)

	var req models.CreateMatchRequestRequest
	if err := ctx.BodyParser(&req); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"status":  "error",
			"message": "Invalid request format",
		})
	}

	if req.Intent == "" {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"status":  "error",
			"message": "Intent is required",
		})
	}

	request, result, err := c.requests.Submit(ctx.Context(), requesterID, &req)
	if err != nil {
		return errorResponse(ctx, err)
	}

	if result != nil && c.messaging != nil {
		c.messaging.NotifyPaired(result)
	}

	response := fiber.Map{
		"status":  "success",
		"request": request,
		"matched": result != nil,
	}
	if result != nil {
		response["conversation_id"] = result.ConversationID
		response["score"] = result.Score
	}

	return ctx.Status(fiber.StatusCreated).JSON(response)
}

// Cancel handles DELETE /api/match-requests/:id
func (c *MatchRequestController) Cancel(ctx *fiber.Ctx) error {
	requesterID := middlewares.RequesterID(ctx)

	requestID, err := gocql.ParseUUID(ctx.Params("id"))
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"status":  "error",
			"message": "Invalid request id",
		})
	}

	if err := c.requests.Cancel(ctx.Context(), requesterID, requestID); err != nil {
		return errorResponse(ctx, err)
	}

	return ctx.JSON(fiber.Map{
		"status":  "success",
		"message": "Match request cancelled",
	})
}

// GetActive handles GET /api/match-requests/active
func (c *MatchRequestController) GetActive(ctx *fiber.Ctx) error {
	requesterID := middlewares.RequesterID(ctx)

	request, err := c.requests.GetActive(ctx.Context(), requesterID)
	if err != nil {
		return errorResponse(ctx, err)
	}
	if request == nil {
		return errorResponse(ctx, apperrors.ErrNoActiveRequest)
	}

	return ctx.JSON(fiber.Map{
		"status":  "success",
		"request": request,
	})
}

// Stats handles GET /api/match-requests/stats
func (c *MatchRequestController) Stats(ctx *fiber.Ctx) error {
	stats, err := c.matchmaking.Stats(ctx.Context())
	if err != nil {
		return errorResponse(ctx, err)
	}

	return ctx.JSON(fiber.Map{
		"status": "success",
		"stats":  stats,
	})
}

func errorResponse(ctx *fiber.Ctx, err error) error {
	return ctx.Status(apperrors.HTTPStatus(err)).JSON(fiber.Map{
		"status":  "error",
		"code":    apperrors.CodeOf(err),
		"message": err.Error(),
	})
}
