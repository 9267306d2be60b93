package socket

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"talkmatch/app/models"
	"talkmatch/app/services"
	"talkmatch/app/utils"

	socketio "github.com/doquangtan/socket.io/v4"
	"github.com/gofiber/fiber/v2"
)

// SocketIoHandler handles all Socket.IO related functionality
type SocketIoHandler struct {
	io        *socketio.Io
	sessions  *services.SessionService
	requests  *services.RequestService
	matching  *services.MatchmakingService
	messaging *services.MessagingService
}

// NewSocketHandler creates a new Socket.IO handler instance
func NewSocketHandler(sessions *services.SessionService, requests *services.RequestService, matching *services.MatchmakingService) *SocketIoHandler {
	io := socketio.New()

	handler := &SocketIoHandler{
		io:        io,
		sessions:  sessions,
		requests:  requests,
		matching:  matching,
		messaging: services.NewMessagingService(sessions, io),
	}

	handler.setupSocketHandlers()
	return handler
}

// setupSocketHandlers configures all Socket.IO event handlers
func (h *SocketIoHandler) setupSocketHandlers() {
	// Authorization handler
	h.io.OnAuthorization(func(params map[string]string) bool {
		log.Printf("Authorization attempt with params: %v", params)
		// Token validation happens per event; the handshake stays open
		return true
	})

	// Main connection handler
	h.io.OnConnection(func(socket *socketio.Socket) {
		log.Printf("✅ Socket connected: %s (namespace: %s)", socket.Id, socket.Nps)

		connectResp := models.ConnectResponse{
			Message:   "Welcome to the TalkMatch server!",
			Timestamp: time.Now().UTC().Format(time.RFC3339),
			SocketID:  socket.Id,
			Status:    "connected",
			Event:     "connect",
		}
		socket.Emit("connect", connectResp)

		// Socket registration handler
		socket.On(models.EventHello, func(event *socketio.EventPayload) {
			requesterID, ok := h.authenticateEvent(socket, event, "jwt_token")
			if !ok {
				return
			}

			if err := h.sessions.RegisterConnection(requesterID, socket.Id, socket.Nps); err != nil {
				h.emitError(socket, models.ErrorCodeVerificationError, models.ErrorTypeMatching, "", "Failed to register connection")
				return
			}

			socket.Emit(models.EventHello, models.HelloResponse{
				Status:      "registered",
				Message:     "Socket registered for pairing events",
				RequesterID: requesterID,
				Timestamp:   time.Now().UTC().Format(time.RFC3339),
				SocketID:    socket.Id,
				Event:       models.EventHello,
			})
		})

		// Pairing retry handler
		socket.On(models.EventReady, func(event *socketio.EventPayload) {
			requesterID, ok := h.authenticateEvent(socket, event, "jwt_token")
			if !ok {
				return
			}

			h.sessions.TouchConnection(requesterID)

			ctx := context.Background()
			request, err := h.requests.GetActive(ctx, requesterID)
			if err != nil {
				h.emitError(socket, models.ErrorCodeVerificationError, models.ErrorTypeMatching, "", "Failed to load active request")
				return
			}
			if request == nil {
				h.emitError(socket, models.ErrorCodeNoActiveRequest, models.ErrorTypeMatching, "", "No waiting match request")
				return
			}

			result, err := h.matching.AttemptMatch(ctx, request)
			if err != nil {
				log.Printf("⚠️ Socket retry attempt failed for %s: %v", requesterID, err)
			}

			if result != nil {
				h.messaging.NotifyPaired(result)
				return
			}

			socket.Emit(models.EventWaiting, models.WaitingEvent{
				Status:    "waiting",
				RequestID: request.ID,
				Message:   "Still waiting for a compatible partner",
				Timestamp: time.Now().UTC().Format(time.RFC3339),
				Event:     models.EventWaiting,
			})
		})

		// Disconnecting handler
		socket.On("disconnecting", func(event *socketio.EventPayload) {
			log.Printf("🔌 Socket disconnecting: %s (namespace: %s)", socket.Id, socket.Nps)
		})

		// Disconnect handler
		socket.On("disconnect", func(event *socketio.EventPayload) {
			log.Printf("🔌 Socket disconnected: %s (namespace: %s)", socket.Id, socket.Nps)
			h.sessions.RemoveConnectionBySocket(socket.Id)
		})
	})
}

// authenticateEvent extracts and validates the JWT carried in the first event
// payload element. It emits the matching error event and returns ok=false on
// any failure.
func (h *SocketIoHandler) authenticateEvent(socket *socketio.Socket, event *socketio.EventPayload, field string) (string, bool) {
	if len(event.Data) == 0 {
		h.emitError(socket, models.ErrorCodeMissingField, models.ErrorTypeField, field, "No payload provided")
		return "", false
	}

	payloadData, ok := event.Data[0].(map[string]interface{})
	if !ok {
		h.emitError(socket, models.ErrorCodeInvalidFormat, models.ErrorTypeFormat, field, "Invalid payload format")
		return "", false
	}

	payloadJSON, _ := json.Marshal(payloadData)
	var hello models.HelloRequest
	if err := json.Unmarshal(payloadJSON, &hello); err != nil {
		h.emitError(socket, models.ErrorCodeInvalidFormat, models.ErrorTypeFormat, field, "Failed to parse payload")
		return "", false
	}

	if hello.JWTToken == "" {
		h.emitError(socket, models.ErrorCodeMissingField, models.ErrorTypeField, field, "JWT token is required")
		return "", false
	}

	claims, err := utils.ValidateToken(hello.JWTToken)
	if err != nil {
		h.emitError(socket, models.ErrorCodeInvalidToken, models.ErrorTypeAuthentication, field, "Invalid or expired token")
		return "", false
	}

	return claims.RequesterID, true
}

func (h *SocketIoHandler) emitError(socket *socketio.Socket, code, errType, field, message string) {
	errorResp := models.ConnectionError{
		Status:    "error",
		ErrorCode: code,
		ErrorType: errType,
		Field:     field,
		Message:   message,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		SocketID:  socket.Id,
		Event:     models.EventError,
	}
	socket.Emit(models.EventError, errorResp)
}

// GetIo returns the underlying Socket.IO instance
func (h *SocketIoHandler) GetIo() *socketio.Io {
	return h.io
}

// GetMessaging returns the socket delivery service
func (h *SocketIoHandler) GetMessaging() *services.MessagingService {
	return h.messaging
}

// SetupSocketRoutes configures the Socket.IO routes on the Fiber app
func (h *SocketIoHandler) SetupSocketRoutes(app *fiber.App) {
	app.Use("/", h.io.Middleware)
	app.Route("/socket.io", h.io.FiberRoute)
}
