package core

import (
	"encoding/json"
	"sort"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/DeveloperTechForest/nodevideocall/internal/domain"
)

// SystemSender is the chat identity used for announcements that do not
// originate from a live connection (e.g. the upload endpoint).
const SystemSender = "system"

type connState struct {
	displayID string
	joined    map[domain.RoomName]struct{}
}

// Engine owns the room table and every connection's display identity.
// All mutations of a room's member set and the presence snapshots derived
// from them happen under one lock, so a snapshot is never stale relative
// to the mutation that produced it. The engine is the only owner of
// membership; there is no separate transport-level group to diverge from.
//
// Routing degrades to a no-op rather than an error for ordinary races:
// a signal to a vanished peer or an already-empty room is dropped silently.
type Engine struct {
	emitter Emitter

	mu    sync.RWMutex
	rooms map[domain.RoomName]map[domain.ConnID]struct{}
	conns map[domain.ConnID]*connState
}

func NewEngine(emitter Emitter) *Engine {
	return &Engine{
		emitter: emitter,
		rooms:   make(map[domain.RoomName]map[domain.ConnID]struct{}),
		conns:   make(map[domain.ConnID]*connState),
	}
}

// Connect registers a new live connection. Called by the transport once,
// before any frame for this connection is dispatched.
func (e *Engine) Connect(id domain.ConnID) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.getOrCreateLocked(id)
	log.Info().Str("module", "core.engine").Str("conn", string(id)).Msg("connection registered")
}

func (e *Engine) getOrCreateLocked(id domain.ConnID) *connState {
	if c, ok := e.conns[id]; ok {
		return c
	}
	c := &connState{joined: make(map[domain.RoomName]struct{})}
	e.conns[id] = c
	return c
}

// Join adds the connection to a room, creating the room on first join.
// userID becomes the connection's display identity; empty defaults to the
// connection id. Joining a room twice is idempotent on membership but
// still re-emits presence, so a client can force a refresh by re-joining.
func (e *Engine) Join(id domain.ConnID, room domain.RoomName, userID string) {
	if room == "" {
		return
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	c := e.getOrCreateLocked(id)
	if userID == "" {
		userID = string(id)
	}
	c.displayID = userID

	members, ok := e.rooms[room]
	if !ok {
		members = make(map[domain.ConnID]struct{})
		e.rooms[room] = members
	}
	members[id] = struct{}{}
	c.joined[room] = struct{}{}

	log.Info().Str("module", "core.engine").
		Str("conn", string(id)).Str("room", string(room)).
		Str("user", userID).Int("members", len(members)).
		Msg("joined room")

	// Notify the others before the snapshot that supersedes it.
	joined := PeerJoined{PeerID: id, UserID: userID}
	for member := range members {
		if member == id {
			continue
		}
		e.emitter.Emit(member, EventPeerJoined, joined)
	}

	snapshot := RoomParticipants{Participants: e.participantsLocked(room)}
	for member := range members {
		e.emitter.Emit(member, EventRoomParticipants, snapshot)
	}
}

// Signal routes an opaque negotiation payload. Direct addressing via `to`
// takes priority over room broadcast; with neither set the payload is
// dropped. The sender identity on the envelope is resolved server-side.
func (e *Engine) Signal(sender domain.ConnID, room domain.RoomName, to domain.ConnID, data json.RawMessage) {
	e.mu.RLock()
	defer e.mu.RUnlock()

	envelope := SignalPayload{From: sender, Data: data, UserID: e.displayIDLocked(sender)}

	switch {
	case to != "":
		if _, ok := e.conns[to]; ok {
			e.emitter.Emit(to, EventSignal, envelope)
		}
	case room != "":
		for member := range e.rooms[room] {
			if member == sender {
				continue
			}
			e.emitter.Emit(member, EventSignal, envelope)
		}
	default:
		log.Debug().Str("module", "core.engine").Str("conn", string(sender)).Msg("unaddressed signal dropped")
	}
}

// Chat broadcasts a chat message to every member of the room except the
// sender. A missing room drops the message.
func (e *Engine) Chat(sender domain.ConnID, room domain.RoomName, from, message, fileURL string) {
	if room == "" {
		return
	}
	e.mu.RLock()
	defer e.mu.RUnlock()

	payload := chatPayload(from, message, fileURL)
	for member := range e.rooms[room] {
		if member == sender {
			continue
		}
		e.emitter.Emit(member, EventChatMessage, payload)
	}
}

// Announce broadcasts a chat message to the full membership of the room,
// uploader included. Used by callers that are not room members themselves
// (the upload endpoint), so nobody would receive a redundant self-echo.
// An empty from falls back to SystemSender.
func (e *Engine) Announce(room domain.RoomName, from, message, fileURL string) {
	if room == "" {
		return
	}
	if from == "" {
		from = SystemSender
	}
	e.mu.RLock()
	defer e.mu.RUnlock()

	payload := chatPayload(from, message, fileURL)
	for member := range e.rooms[room] {
		e.emitter.Emit(member, EventChatMessage, payload)
	}
}

func chatPayload(from, message, fileURL string) ChatPayload {
	p := ChatPayload{From: from, Message: message, Timestamp: time.Now().UnixMilli()}
	if fileURL != "" {
		p.FileURL = &fileURL
	}
	return p
}

// Disconnect resolves every room membership of the connection and then
// forgets it. Rooms that reach zero members are deleted; rooms with
// remaining members get a peer-left notification followed by a fresh
// presence snapshot. The transport calls this exactly once per
// connection, for voluntary close and network death alike.
func (e *Engine) Disconnect(id domain.ConnID) {
	e.mu.Lock()
	defer e.mu.Unlock()

	c, ok := e.conns[id]
	if !ok {
		return
	}

	left := PeerLeft{PeerID: id, UserID: c.displayID}
	for room := range c.joined {
		members, ok := e.rooms[room]
		if !ok {
			continue
		}
		delete(members, id)
		if len(members) == 0 {
			delete(e.rooms, room)
			log.Info().Str("module", "core.engine").Str("room", string(room)).Msg("room emptied, deleted")
			continue
		}
		snapshot := RoomParticipants{Participants: e.participantsLocked(room)}
		for member := range members {
			e.emitter.Emit(member, EventPeerLeft, left)
			e.emitter.Emit(member, EventRoomParticipants, snapshot)
		}
	}

	delete(e.conns, id)
	log.Info().Str("module", "core.engine").Str("conn", string(id)).Msg("connection removed")
}

// participantsLocked projects the room's member set into a snapshot,
// sorted by socket id for a stable wire order. Caller holds e.mu.
func (e *Engine) participantsLocked(room domain.RoomName) []domain.Participant {
	members := e.rooms[room]
	out := make([]domain.Participant, 0, len(members))
	for member := range members {
		p := domain.Participant{SocketID: member}
		if c, ok := e.conns[member]; ok && c.displayID != "" {
			displayID := c.displayID
			p.UserID = &displayID
		}
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].SocketID < out[j].SocketID })
	return out
}

func (e *Engine) displayIDLocked(id domain.ConnID) string {
	if c, ok := e.conns[id]; ok {
		return c.displayID
	}
	return ""
}

// RoomCount reports the number of live rooms, for metrics.
func (e *Engine) RoomCount() int {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return len(e.rooms)
}

// ConnCount reports the number of registered connections, for metrics.
func (e *Engine) ConnCount() int {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return len(e.conns)
}
