package callsession

import (
	"encoding/base64"
	"testing"
	"time"
)

func TestFrameEvent_ParticipantMetadata(t *testing.T) {
	frame := signalFrame{
		Event:    "participant_joined",
		Identity: "guest_b",
		Name:     "Bob",
		Metadata: `{"participant_id":"p1","display_name":"Bob","speaks_language":"ar","hears_language":"en","room_code":"ABC234"}`,
	}
	ev, ok := frameEvent(frame)
	if !ok {
		t.Fatal("frame not mapped")
	}
	if ev.Kind != EventParticipantJoined {
		t.Fatalf("kind = %v", ev.Kind)
	}
	p := ev.Participant
	if p.Identity != "guest_b" || p.SpeaksLanguage != "ar" || p.HearsLanguage != "en" {
		t.Fatalf("participant = %+v, want the ar/en pair from metadata", p)
	}
}

func TestFrameEvent_BadMetadataIgnored(t *testing.T) {
	frame := signalFrame{Event: "participant_joined", Identity: "guest_b", Metadata: "{not json"}
	ev, ok := frameEvent(frame)
	if !ok {
		t.Fatal("frame not mapped")
	}
	if ev.Participant.SpeaksLanguage != "" || ev.Participant.HearsLanguage != "" {
		t.Fatalf("languages = %+v, want empty on undecodable metadata", ev.Participant)
	}
}

func TestFrameEvent_DataPayload(t *testing.T) {
	payload := []byte(`{"type":"translation_start"}`)
	frame := signalFrame{Event: "data", PayloadB64: base64.StdEncoding.EncodeToString(payload)}
	ev, ok := frameEvent(frame)
	if !ok {
		t.Fatal("frame not mapped")
	}
	if string(ev.Data) != string(payload) {
		t.Fatalf("data = %q, want %q", ev.Data, payload)
	}

	if _, ok := frameEvent(signalFrame{Event: "data", PayloadB64: "!!!"}); ok {
		t.Fatal("undecodable payload must be skipped")
	}
	if _, ok := frameEvent(signalFrame{Event: "speaker_changed"}); ok {
		t.Fatal("unknown event must be skipped")
	}
}

func TestSend_UnblocksAfterClose(t *testing.T) {
	tr := NewWSTransport("media.example")
	for i := 0; i < cap(tr.events); i++ {
		tr.events <- Event{Kind: EventData}
	}
	if err := tr.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	done := make(chan bool, 1)
	go func() { done <- tr.send(Event{Kind: EventDisconnected}) }()
	select {
	case delivered := <-done:
		if delivered {
			t.Fatal("send reported delivery into a full channel after close")
		}
	case <-time.After(2 * time.Second):
		t.Fatal("send blocked on a full channel after close")
	}
}
