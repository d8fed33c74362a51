package callsession

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/sirupsen/logrus"
)

type State int32

const (
	StateLoading State = iota
	StateConnecting
	StateConnected
	StateDisconnected
)

func (s State) String() string {
	switch s {
	case StateLoading:
		return "loading"
	case StateConnecting:
		return "connecting"
	case StateConnected:
		return "connected"
	case StateDisconnected:
		return "disconnected"
	default:
		return "unknown"
	}
}

// ErrNoSession is returned when no stored credential matches the expected
// room; the caller should send the user back to the lobby instead of
// attempting a connection.
var ErrNoSession = errors.New("callsession: no stored session for this room")

// Credentials is the join result a client stores locally between the join
// call and mounting the call screen.
type Credentials struct {
	Token           string `json:"token"`
	RoomID          string `json:"roomId"`
	RoomCode        string `json:"roomCode"`
	RoomName        string `json:"roomName"`
	LiveSessionName string `json:"liveSessionName"`
	Identity        string `json:"identity"`
	DisplayName     string `json:"displayName"`
	SpeaksLanguage  string `json:"speaksLanguage"`
	HearsLanguage   string `json:"hearsLanguage"`
}

type CredentialStore interface {
	Load(ctx context.Context) (*Credentials, error)
}

type EventKind int

const (
	EventConnected EventKind = iota
	EventDisconnected
	EventParticipantJoined
	EventParticipantLeft
	EventTrackSubscribed
	EventTrackUnsubscribed
	EventData
)

type RemoteParticipant struct {
	Identity       string
	Name           string
	SpeaksLanguage string
	HearsLanguage  string
}

type Event struct {
	Kind        EventKind
	Participant RemoteParticipant
	TrackID     string
	Data        []byte
}

// Transport is the connection to the live media session. Connect blocks
// until the handshake settles; afterwards events stream until the channel
// closes.
type Transport interface {
	Connect(ctx context.Context, token string) error
	Events() <-chan Event
	Close() error
}

// AudioOutput renders remote audio. Attach is called for every subscribed
// track with the muting decision already made; Play receives reassembled
// translation audio.
type AudioOutput interface {
	Attach(trackID, identity string, muted bool)
	Detach(trackID string)
	Play(audio []byte) error
}

// TranscriptLine is the text pair surfaced to the UI as soon as a
// translation is announced, before its audio arrives.
type TranscriptLine struct {
	MessageID      string
	SpeakerName    string
	OriginalText   string
	TranslatedText string
	SourceLang     string
	TargetLang     string
	At             time.Time
}

// HistoryRecorder persists the call summary at teardown. Failures are
// logged and ignored; leaving must never block on it.
type HistoryRecorder interface {
	SaveCall(ctx context.Context, roomID, roomCode, roomName string, startedAt, endedAt time.Time, roster []RemoteParticipant) error
}

type Config struct {
	ExpectedRoomCode string
	Store            CredentialStore
	Transport        Transport
	Audio            AudioOutput
	History          HistoryRecorder
	Logger           *logrus.Logger

	// BufferExpiry bounds incomplete chunk buffers; zero means the default.
	BufferExpiry time.Duration

	// OnTranscript, if set, receives each transcript line as it arrives.
	OnTranscript func(TranscriptLine)
}

type Session struct {
	cfg   Config
	creds *Credentials
	log   *logrus.Logger

	state            atomic.Int32
	translatorActive atomic.Bool

	asm *reassembler

	mu        sync.Mutex
	roster    map[string]RemoteParticipant // identity -> info, humans only
	tracks    map[string]string            // trackID -> identity
	startedAt time.Time

	done      chan struct{}
	closeOnce sync.Once
}

func New(cfg Config) *Session {
	log := cfg.Logger
	if log == nil {
		log = logrus.New()
	}
	s := &Session{
		cfg:    cfg,
		log:    log,
		asm:    newReassembler(cfg.BufferExpiry),
		roster: make(map[string]RemoteParticipant),
		tracks: make(map[string]string),
		done:   make(chan struct{}),
	}
	s.state.Store(int32(StateLoading))
	return s
}

func (s *Session) State() State { return State(s.state.Load()) }

// TranslatorActive reports whether an agent-classified participant is
// currently in the session. UI status only; protocol correctness never
// depends on it.
func (s *Session) TranslatorActive() bool { return s.translatorActive.Load() }

// Roster returns the current human participants.
func (s *Session) Roster() []RemoteParticipant {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]RemoteParticipant, 0, len(s.roster))
	for _, p := range s.roster {
		out = append(out, p)
	}
	return out
}

// Start loads credentials, validates them against the expected room, and
// connects. On handshake failure the session lands in Disconnected with no
// retry; the user re-joins for a fresh capability.
func (s *Session) Start(ctx context.Context) error {
	creds, err := s.cfg.Store.Load(ctx)
	if err != nil || creds == nil || creds.RoomCode != s.cfg.ExpectedRoomCode {
		s.state.Store(int32(StateDisconnected))
		return ErrNoSession
	}
	s.creds = creds

	s.state.Store(int32(StateConnecting))
	if err := s.cfg.Transport.Connect(ctx, creds.Token); err != nil {
		s.state.Store(int32(StateDisconnected))
		return err
	}

	s.mu.Lock()
	s.startedAt = time.Now()
	s.mu.Unlock()
	s.state.Store(int32(StateConnected))

	go s.eventLoop()
	return nil
}

func (s *Session) eventLoop() {
	sweep := time.NewTicker(s.asm.expiry)
	defer sweep.Stop()

	events := s.cfg.Transport.Events()
	for {
		select {
		case ev, ok := <-events:
			if !ok {
				s.state.Store(int32(StateDisconnected))
				return
			}
			s.handleEvent(ev)
			if ev.Kind == EventDisconnected {
				return
			}
		case <-sweep.C:
			if n := s.asm.sweep(); n > 0 {
				s.log.WithField("buffers", n).Debug("discarded stale translation buffers")
			}
		case <-s.done:
			return
		}
	}
}

func (s *Session) handleEvent(ev Event) {
	switch ev.Kind {
	case EventDisconnected:
		s.state.Store(int32(StateDisconnected))

	case EventParticipantJoined:
		if IsAgentIdentity(ev.Participant.Identity) {
			s.translatorActive.Store(true)
			return
		}
		s.mu.Lock()
		s.roster[ev.Participant.Identity] = ev.Participant
		s.mu.Unlock()

	case EventParticipantLeft:
		if IsAgentIdentity(ev.Participant.Identity) {
			s.translatorActive.Store(false)
			return
		}
		s.mu.Lock()
		delete(s.roster, ev.Participant.Identity)
		s.mu.Unlock()

	case EventTrackSubscribed:
		// humans never hear each other's raw audio: only agent tracks stay
		// audible, translated speech is the only thing that reaches the ear
		muted := !IsAgentIdentity(ev.Participant.Identity)
		s.mu.Lock()
		s.tracks[ev.TrackID] = ev.Participant.Identity
		s.mu.Unlock()
		if s.cfg.Audio != nil {
			s.cfg.Audio.Attach(ev.TrackID, ev.Participant.Identity, muted)
		}

	case EventTrackUnsubscribed:
		s.mu.Lock()
		delete(s.tracks, ev.TrackID)
		s.mu.Unlock()
		if s.cfg.Audio != nil {
			s.cfg.Audio.Detach(ev.TrackID)
		}

	case EventData:
		s.handleData(ev.Data)
	}
}

// handleData processes a data-channel payload. Anything malformed is
// swallowed: translation hiccups must never take down the call.
func (s *Session) handleData(raw []byte) {
	var probe struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal(raw, &probe); err != nil {
		return
	}

	switch probe.Type {
	case TypeTranslationStart:
		var msg StartMessage
		if err := json.Unmarshal(raw, &msg); err != nil {
			return
		}
		s.asm.start(msg.MessageID, msg.TotalChunks)
		if s.cfg.OnTranscript != nil {
			s.cfg.OnTranscript(TranscriptLine{
				MessageID:      msg.MessageID,
				SpeakerName:    msg.SpeakerName,
				OriginalText:   msg.OriginalText,
				TranslatedText: msg.TranslatedText,
				SourceLang:     msg.SourceLang,
				TargetLang:     msg.TargetLang,
				At:             time.Now(),
			})
		}

	case TypeTranslationChunk:
		var msg ChunkMessage
		if err := json.Unmarshal(raw, &msg); err != nil {
			return
		}
		audio, complete := s.asm.chunk(msg.MessageID, msg.ChunkIndex, msg.Audio)
		if complete && s.cfg.Audio != nil {
			if err := s.cfg.Audio.Play(audio); err != nil {
				s.log.WithError(err).Debug("translated audio playback failed")
			}
		}
	}
}

// Leave records the call and releases everything. History is best-effort:
// a recording failure never blocks navigation away.
func (s *Session) Leave(ctx context.Context) {
	s.mu.Lock()
	startedAt := s.startedAt
	roster := make([]RemoteParticipant, 0, len(s.roster)+1)
	for _, p := range s.roster {
		roster = append(roster, p)
	}
	s.mu.Unlock()

	if s.cfg.History != nil && s.creds != nil && !startedAt.IsZero() {
		// the roster tracks remote humans only; the leaver comes from the
		// stored credentials so their own history row can be written
		roster = append(roster, RemoteParticipant{
			Identity:       s.creds.Identity,
			Name:           s.creds.DisplayName,
			SpeaksLanguage: s.creds.SpeaksLanguage,
			HearsLanguage:  s.creds.HearsLanguage,
		})
		err := s.cfg.History.SaveCall(ctx,
			s.creds.RoomID, s.creds.RoomCode, s.creds.RoomName,
			startedAt, time.Now(), roster)
		if err != nil {
			s.log.WithError(err).Warn("failed to record call history")
		}
	}
	s.Close()
}

// Close detaches all audio and disconnects. Required on every teardown path
// so media resources are not leaked.
func (s *Session) Close() {
	s.closeOnce.Do(func() { close(s.done) })

	s.mu.Lock()
	trackIDs := make([]string, 0, len(s.tracks))
	for id := range s.tracks {
		trackIDs = append(trackIDs, id)
	}
	s.tracks = make(map[string]string)
	s.mu.Unlock()

	if s.cfg.Audio != nil {
		for _, id := range trackIDs {
			s.cfg.Audio.Detach(id)
		}
	}
	_ = s.cfg.Transport.Close()
	s.state.Store(int32(StateDisconnected))
}
