package services

import (
	"log"
	"time"

	redisservice "talkmatch/redis"
)

const connectionTTL = 24 * time.Hour

// SessionService tracks which socket each connected requester is on. The
// mapping lives in Redis so a restart does not orphan delivery state.
type SessionService struct {
	redisService *redisservice.Service
}

func NewSessionService(redisService *redisservice.Service) *SessionService {
	return &SessionService{redisService: redisService}
}

// RegisterConnection records that requesterID is reachable on socketID.
// A reconnect simply overwrites the previous mapping.
func (s *SessionService) RegisterConnection(requesterID, socketID, namespace string) error {
	now := time.Now()
	data := redisservice.ConnectionData{
		SocketID:    socketID,
		RequesterID: requesterID,
		Namespace:   namespace,
		ConnectedAt: now,
		LastSeen:    now,
	}

	if err := s.redisService.CacheConnection(data, connectionTTL); err != nil {
		log.Printf("❌ Failed to register connection for %s: %v", requesterID, err)
		return err
	}

	log.Printf("🔌 Registered socket %s for requester %s", socketID, requesterID)
	return nil
}

// SocketIDForRequester returns the socket the requester is currently on, or
// "" when the requester has no registered connection.
func (s *SessionService) SocketIDForRequester(requesterID string) string {
	data, err := s.redisService.GetConnectionByRequester(requesterID)
	if err != nil || data == nil {
		return ""
	}
	return data.SocketID
}

// RemoveConnectionBySocket drops the mapping for a disconnected socket.
func (s *SessionService) RemoveConnectionBySocket(socketID string) {
	if err := s.redisService.DeleteConnectionBySocket(socketID); err != nil {
		log.Printf("⚠️ Failed to remove connection for socket %s: %v", socketID, err)
	}
}

// TouchConnection refreshes the requester's last-seen timestamp.
func (s *SessionService) TouchConnection(requesterID string) {
	if err := s.redisService.UpdateConnectionLastSeen(requesterID); err != nil {
		log.Printf("⚠️ Failed to update last seen for %s: %v", requesterID, err)
	}
}
