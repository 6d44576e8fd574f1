// Package domain contains entity without logic, just meta-data
package domain

// ConnID identifies one live transport session. Assigned by the
// transport on connect, stable until disconnect, never reused meaningfully.
type ConnID string

// RoomName is the key of a room. Used exactly as the client sent it:
// case-sensitive, no normalization, no length limit.
type RoomName string

// Participant is one entry of a room presence snapshot.
// UserID is nil when the connection has no recorded display identity.
type Participant struct {
	SocketID ConnID  `json:"socketId"`
	UserID   *string `json:"userId"`
}
