package services

import (
	"fmt"
	"log"
	"time"

	socketio "github.com/doquangtan/socket.io/v4"

	"talkmatch/app/models"
)

// MessagingService delivers pairing events to connected sockets. Delivery is
// best effort: a participant without a live socket learns about the pair the
// next time they ask over the socket channel.
type MessagingService struct {
	sessions *SessionService
	io       *socketio.Io
}

func NewMessagingService(sessions *SessionService, io *socketio.Io) *MessagingService {
	return &MessagingService{
		sessions: sessions,
		io:       io,
	}
}

// EmitToRequester sends an event to the requester's registered socket.
func (m *MessagingService) EmitToRequester(requesterID, event string, payload interface{}) error {
	socketID := m.sessions.SocketIDForRequester(requesterID)
	if socketID == "" {
		return fmt.Errorf("requester %s has no registered socket", requesterID)
	}
	return m.EmitToSocket(socketID, event, payload)
}

// EmitToSocket sends an event to one connected socket by id.
func (m *MessagingService) EmitToSocket(socketID, event string, payload interface{}) error {
	if m.io == nil {
		return fmt.Errorf("socket.io not initialized")
	}

	// Find the specific socket among the connected ones and emit to it
	sockets := m.io.Sockets()
	for _, socket := range sockets {
		if socket.Id == socketID {
			socket.Emit(event, payload)
			return nil
		}
	}

	return fmt.Errorf("socket %s not connected", socketID)
}

// NotifyPaired pushes the paired event to both participants of a fresh pair.
func (m *MessagingService) NotifyPaired(result *models.PairingResult) {
	if result == nil {
		return
	}

	event := models.PairedEvent{
		Status:         "matched",
		ConversationID: result.ConversationID,
		Participants:   result.Participants(),
		Score:          result.Score,
		Intent:         result.Intent,
		Timestamp:      time.Now().Format(time.RFC3339),
		Event:          models.EventPaired,
	}

	for _, requesterID := range event.Participants {
		if err := m.EmitToRequester(requesterID, models.EventPaired, event); err != nil {
			log.Printf("⚠️ Could not deliver paired event to %s: %v", requesterID, err)
		}
	}
}
