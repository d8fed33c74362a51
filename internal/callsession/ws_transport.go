package callsession

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"net/url"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/interlingo/backend/internal/capability"
)

// WSTransport streams session events from the media platform's signaling
// websocket. One reader goroutine feeds the event channel; the channel is
// closed when the socket drops, which the session treats as a disconnect.
type WSTransport struct {
	host string

	conn   *websocket.Conn
	events chan Event

	done     chan struct{}
	doneOnce sync.Once
}

func NewWSTransport(host string) *WSTransport {
	return &WSTransport{
		host:   host,
		events: make(chan Event, 64),
		done:   make(chan struct{}),
	}
}

// signalFrame is the platform's wire shape for session events. Metadata is
// the participant metadata string the capability token carried at join.
type signalFrame struct {
	Event      string `json:"event"`
	Identity   string `json:"identity,omitempty"`
	Name       string `json:"name,omitempty"`
	Metadata   string `json:"metadata,omitempty"`
	TrackSID   string `json:"track_sid,omitempty"`
	PayloadB64 string `json:"payload,omitempty"`
}

func (t *WSTransport) Connect(ctx context.Context, token string) error {
	u := url.URL{Scheme: "wss", Host: t.host, Path: "/rtc"}
	q := u.Query()
	q.Set("access_token", token)
	u.RawQuery = q.Encode()

	dialer := websocket.Dialer{HandshakeTimeout: 15 * time.Second}
	conn, _, err := dialer.DialContext(ctx, u.String(), nil)
	if err != nil {
		return err
	}
	t.conn = conn

	go t.readLoop()

	t.send(Event{Kind: EventConnected})
	return nil
}

func (t *WSTransport) Events() <-chan Event { return t.events }

// send delivers an event unless the transport has been closed, so the reader
// never blocks on a consumer that already stopped listening.
func (t *WSTransport) send(ev Event) bool {
	select {
	case t.events <- ev:
		return true
	case <-t.done:
		return false
	}
}

func (t *WSTransport) readLoop() {
	defer close(t.events)
	for {
		_, raw, err := t.conn.ReadMessage()
		if err != nil {
			t.send(Event{Kind: EventDisconnected})
			return
		}

		var frame signalFrame
		if err := json.Unmarshal(raw, &frame); err != nil {
			continue
		}
		ev, ok := frameEvent(frame)
		if !ok {
			continue
		}
		if !t.send(ev) {
			return
		}
	}
}

// frameEvent maps one wire frame to a session event. Unknown events and
// undecodable payloads are skipped.
func frameEvent(frame signalFrame) (Event, bool) {
	p := RemoteParticipant{Identity: frame.Identity, Name: frame.Name}
	if frame.Metadata != "" {
		var md capability.Metadata
		if err := json.Unmarshal([]byte(frame.Metadata), &md); err == nil {
			p.SpeaksLanguage = md.SpeaksLanguage
			p.HearsLanguage = md.HearsLanguage
		}
	}

	switch frame.Event {
	case "participant_joined":
		return Event{Kind: EventParticipantJoined, Participant: p}, true
	case "participant_left":
		return Event{Kind: EventParticipantLeft, Participant: p}, true
	case "track_subscribed":
		return Event{Kind: EventTrackSubscribed, Participant: p, TrackID: frame.TrackSID}, true
	case "track_unsubscribed":
		return Event{Kind: EventTrackUnsubscribed, Participant: p, TrackID: frame.TrackSID}, true
	case "data":
		payload, err := base64.StdEncoding.DecodeString(frame.PayloadB64)
		if err != nil {
			return Event{}, false
		}
		return Event{Kind: EventData, Participant: p, Data: payload}, true
	}
	return Event{}, false
}

func (t *WSTransport) Close() error {
	t.doneOnce.Do(func() { close(t.done) })
	if t.conn == nil {
		return nil
	}
	_ = t.conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
		time.Now().Add(time.Second))
	return t.conn.Close()
}
