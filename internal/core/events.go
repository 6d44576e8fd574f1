package core

import (
	"encoding/json"

	"github.com/DeveloperTechForest/nodevideocall/internal/domain"
)

// Event is the wire-level name of an outbound frame.
type Event string

const (
	EventPeerJoined       Event = "peer-joined"
	EventRoomParticipants Event = "room-participants"
	EventSignal           Event = "signal"
	EventChatMessage      Event = "chat-message"
	EventPeerLeft         Event = "peer-left"
)

// Emitter is the transport primitive the engine fans out through.
// Implementations must not block; a frame that cannot be queued is dropped.
// Owned by the adapter; the adapter must close its connections itself.
type Emitter interface {
	Emit(to domain.ConnID, event Event, payload any)
}

// PeerJoined notifies existing members that a new connection entered the room.
type PeerJoined struct {
	PeerID domain.ConnID `json:"peerId"`
	UserID string        `json:"userId"`
}

// RoomParticipants is the full presence snapshot of a room,
// taken after the mutation that triggered it.
type RoomParticipants struct {
	Participants []domain.Participant `json:"participants"`
}

// SignalPayload is a routed negotiation payload. Data is opaque to the
// server; From and UserID are resolved server-side and cannot be spoofed.
// UserID is omitted when the sender never recorded a display identity.
type SignalPayload struct {
	From   domain.ConnID   `json:"from"`
	Data   json.RawMessage `json:"data"`
	UserID string          `json:"userId,omitempty"`
}

// ChatPayload is a room chat message. Timestamp is epoch millis,
// assigned at emission time.
type ChatPayload struct {
	From      string  `json:"from"`
	Message   string  `json:"message"`
	FileURL   *string `json:"fileUrl"`
	Timestamp int64   `json:"timestamp"`
}

// PeerLeft notifies remaining members that a connection left the room.
type PeerLeft struct {
	PeerID domain.ConnID `json:"peerId"`
	UserID string        `json:"userId"`
}
