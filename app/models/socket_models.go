package models

import "github.com/gocql/gocql"

// ConnectResponse represents connection response
type ConnectResponse struct {
	Message   string `json:"message"`
	Timestamp string `json:"timestamp"`
	SocketID  string `json:"socket_id"`
	Status    string `json:"status"`
	Event     string `json:"event"`
}

// ConnectionError represents error response sent over the socket
type ConnectionError struct {
	Status    string `json:"status"`
	ErrorCode string `json:"error_code"`
	ErrorType string `json:"error_type"`
	Field     string `json:"field,omitempty"`
	Message   string `json:"message"`
	Timestamp string `json:"timestamp"`
	SocketID  string `json:"socket_id"`
	Event     string `json:"event"`
}

// HelloRequest registers the caller's socket for paired-event delivery
type HelloRequest struct {
	JWTToken string `json:"jwt_token"`
}

// HelloResponse acknowledges socket registration
type HelloResponse struct {
	Status      string `json:"status"`
	Message     string `json:"message"`
	RequesterID string `json:"requester_id"`
	Timestamp   string `json:"timestamp"`
	SocketID    string `json:"socket_id"`
	Event       string `json:"event"`
}

// ReadyRequest is the "re-attempt pairing now" signal from a waiting client
type ReadyRequest struct {
	JWTToken string `json:"jwt_token"`
}

// PairedEvent is fanned out to both participants of a successful pairing
type PairedEvent struct {
	Status         string     `json:"status"`
	ConversationID gocql.UUID `json:"conversation_id"`
	Participants   []string   `json:"participants"`
	Score          int        `json:"score"`
	Intent         Intent     `json:"intent"`
	Timestamp      string     `json:"timestamp"`
	Event          string     `json:"event"`
}

// WaitingEvent is sent to the caller only when a retry found no candidate
type WaitingEvent struct {
	Status    string     `json:"status"`
	RequestID gocql.UUID `json:"request_id"`
	Message   string     `json:"message"`
	Timestamp string     `json:"timestamp"`
	Event     string     `json:"event"`
}

// Socket event names
const (
	EventHello   = "match:hello"
	EventReady   = "match:ready"
	EventPaired  = "match:paired"
	EventWaiting = "match:waiting"
	EventError   = "match:error"
)

// Error codes and types
const (
	// Error codes
	ErrorCodeMissingField      = "MISSING_FIELD"
	ErrorCodeInvalidFormat     = "INVALID_FORMAT"
	ErrorCodeInvalidToken      = "INVALID_TOKEN"
	ErrorCodeNoActiveRequest   = "NO_ACTIVE_REQUEST"
	ErrorCodeVerificationError = "VERIFICATION_ERROR"

	// Error types
	ErrorTypeField          = "FIELD_ERROR"
	ErrorTypeFormat         = "FORMAT_ERROR"
	ErrorTypeAuthentication = "AUTHENTICATION_ERROR"
	ErrorTypeMatching       = "MATCHING_ERROR"
)
