package media

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// LiveKit talks to a LiveKit-compatible control API over its twirp-style
// HTTP endpoints, signing an admin token per request.
type LiveKit struct {
	host      string
	apiKey    string
	apiSecret []byte
	http      *http.Client
}

func NewLiveKit(host, apiKey, apiSecret string) (*LiveKit, error) {
	if host == "" || apiKey == "" || apiSecret == "" {
		return nil, fmt.Errorf("media: host, api key, and api secret are required")
	}
	return &LiveKit{
		host:      strings.TrimRight(host, "/"),
		apiKey:    apiKey,
		apiSecret: []byte(apiSecret),
		http:      &http.Client{Timeout: 10 * time.Second},
	}, nil
}

func (l *LiveKit) Close() error { return nil }

type adminClaims struct {
	jwt.RegisteredClaims
	Video map[string]any `json:"video"`
}

func (l *LiveKit) adminToken(room string) (string, error) {
	now := time.Now()
	claims := adminClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    l.apiKey,
			Subject:   l.apiKey,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(time.Minute)),
		},
		Video: map[string]any{
			"roomCreate": true,
			"roomAdmin":  true,
			"room":       room,
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(l.apiSecret)
}

func (l *LiveKit) post(ctx context.Context, path, room string, body any) error {
	b, err := json.Marshal(body)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, l.host+path, bytes.NewReader(b))
	if err != nil {
		return err
	}
	tok, err := l.adminToken(room)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+tok)
	req.Header.Set("Content-Type", "application/json")

	resp, err := l.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 4<<10))
		return fmt.Errorf("media: %s returned %d: %s", path, resp.StatusCode, strings.TrimSpace(string(msg)))
	}
	return nil
}

func (l *LiveKit) EnsureRoom(ctx context.Context, name string, maxParticipants int) error {
	err := l.post(ctx, "/twirp/livekit.RoomService/CreateRoom", name, map[string]any{
		"name":             name,
		"max_participants": maxParticipants,
	})
	if err != nil && strings.Contains(err.Error(), "already exists") {
		return nil
	}
	return err
}

func (l *LiveKit) DispatchAgent(ctx context.Context, room, agentIdentity, metadata string) error {
	return l.post(ctx, "/twirp/livekit.AgentDispatchService/CreateDispatch", room, map[string]any{
		"room":       room,
		"agent_name": agentIdentity,
		"metadata":   metadata,
	})
}

func (l *LiveKit) SendData(ctx context.Context, room string, destIdentities []string, payload []byte) error {
	return l.post(ctx, "/twirp/livekit.RoomService/SendData", room, map[string]any{
		"room":                   room,
		"data":                   base64.StdEncoding.EncodeToString(payload),
		"destination_identities": destIdentities,
		"kind":                   "RELIABLE",
	})
}
