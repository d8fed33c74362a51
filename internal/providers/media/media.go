// Package media abstracts the external real-time media platform: room
// provisioning, agent dispatch, and data-channel publishing. The backend
// never touches media tracks itself.
package media

import "context"

type Provider interface {
	// EnsureRoom creates the live session if it does not exist yet.
	// An "already exists" answer counts as success.
	EnsureRoom(ctx context.Context, name string, maxParticipants int) error

	// DispatchAgent asks the platform to attach the translation agent to
	// the session. Metadata is an opaque JSON blob passed to the agent.
	DispatchAgent(ctx context.Context, room, agentIdentity, metadata string) error

	// SendData publishes a payload on the session's data channel, optionally
	// targeted at specific identities. An empty destination list broadcasts.
	SendData(ctx context.Context, room string, destIdentities []string, payload []byte) error

	Close() error
}
