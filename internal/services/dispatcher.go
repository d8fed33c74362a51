package services

import (
	"context"
	"encoding/json"

	"github.com/interlingo/backend/internal/providers/media"
	"github.com/sirupsen/logrus"
)

// SessionPrefix distinguishes call sessions from ad-hoc sessions on the
// media platform. The raw room code is never used as a session name.
const SessionPrefix = "call-"

// AgentIdentity is the fixed identity the translation agent joins under.
// Clients classify it by the "agent" substring.
const AgentIdentity = "agent-translator"

func SessionName(roomCode string) string {
	return SessionPrefix + roomCode
}

// SessionDispatcher provisions the live session and attaches the translation
// agent. Every call is best-effort: a human-to-human call works without the
// agent, so failures are logged and swallowed.
type SessionDispatcher struct {
	provider media.Provider
	log      *logrus.Logger
}

func NewSessionDispatcher(provider media.Provider, log *logrus.Logger) *SessionDispatcher {
	return &SessionDispatcher{provider: provider, log: log}
}

type agentMetadata struct {
	RoomCode string `json:"room_code"`
}

func (d *SessionDispatcher) Dispatch(ctx context.Context, roomCode string, maxParticipants int) {
	name := SessionName(roomCode)
	// one extra slot reserved for the agent
	if err := d.provider.EnsureRoom(ctx, name, maxParticipants+1); err != nil {
		d.log.WithError(err).WithField("session", name).Warn("media room provisioning failed")
		return
	}

	md, _ := json.Marshal(agentMetadata{RoomCode: roomCode})
	if err := d.provider.DispatchAgent(ctx, name, AgentIdentity, string(md)); err != nil {
		d.log.WithError(err).WithField("session", name).Warn("agent dispatch failed")
	}
}
