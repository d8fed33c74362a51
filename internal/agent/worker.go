// Package agent runs the translation pipeline: it consumes captured speech
// segments, transcribes, translates, synthesizes, and publishes the result
// as chunked messages on the session's data channel.
package agent

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/interlingo/backend/internal/callsession"
	"github.com/interlingo/backend/internal/models"
	"github.com/interlingo/backend/internal/providers/media"
	"github.com/interlingo/backend/internal/providers/stt"
	"github.com/interlingo/backend/internal/providers/translate"
	"github.com/interlingo/backend/internal/providers/tts"
	pgrepo "github.com/interlingo/backend/internal/repositories/postgres"
	"github.com/interlingo/backend/internal/services"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

// WorkerPool consumes speech segments from a Redis stream through a
// consumer group. Every stage failure is logged and the segment dropped;
// translation is an enhancement, never a reason to break a call.
type WorkerPool struct {
	Redis        *redis.Client
	Participants pgrepo.ParticipantRepo
	Transcripts  services.TranscriptService
	Media        media.Provider

	STT       stt.Provider
	Translate translate.Provider
	TTS       tts.Provider

	Logger *logrus.Logger

	NumWorkers     int
	Stream         string
	Group          string
	ConsumerPrefix string
}

func (p *WorkerPool) Start(ctx context.Context) error {
	if p.Redis == nil || p.Participants == nil || p.Media == nil ||
		p.STT == nil || p.Translate == nil || p.TTS == nil {
		return errors.New("WorkerPool missing dependency")
	}
	if p.Stream == "" {
		p.Stream = "audio:segments"
	}
	if p.Group == "" {
		p.Group = "translation-agents"
	}
	if p.ConsumerPrefix == "" {
		p.ConsumerPrefix = "agent"
	}
	if p.NumWorkers <= 0 {
		p.NumWorkers = 4
	}
	if p.Logger == nil {
		p.Logger = logrus.New()
	}

	_ = p.Redis.XGroupCreateMkStream(ctx, p.Stream, p.Group, "0").Err() // ignore BUSYGROUP

	for i := 0; i < p.NumWorkers; i++ {
		consumer := p.ConsumerPrefix + "-" + strconv.Itoa(i+1)
		go p.runConsumer(ctx, consumer)
	}
	return nil
}

func (p *WorkerPool) runConsumer(ctx context.Context, consumer string) {
	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		res, err := p.Redis.XReadGroup(ctx, &redis.XReadGroupArgs{
			Group:    p.Group,
			Consumer: consumer,
			Streams:  []string{p.Stream, ">"},
			Count:    10,
			Block:    5 * time.Second,
		}).Result()

		if err != nil {
			if err == redis.Nil {
				continue
			}
			time.Sleep(500 * time.Millisecond)
			continue
		}

		for _, stream := range res {
			for _, msg := range stream.Messages {
				p.handleSegment(ctx, msg)
				_ = p.Redis.XAck(ctx, p.Stream, p.Group, msg.ID).Err()
			}
		}
	}
}

// segment is one utterance captured from a speaker, as enqueued on the
// stream by the media ingress.
type segment struct {
	SessionName     string
	RoomID          string
	SpeakerIdentity string
	SpeakerName     string
	SourceLang      string
	Audio           []byte
}

func parseSegment(msg redis.XMessage) (*segment, error) {
	getStr := func(k string) string {
		v, ok := msg.Values[k]
		if !ok || v == nil {
			return ""
		}
		s, _ := v.(string)
		return s
	}

	seg := &segment{
		SessionName:     getStr("session_name"),
		RoomID:          getStr("room_id"),
		SpeakerIdentity: getStr("speaker_identity"),
		SpeakerName:     getStr("speaker_name"),
		SourceLang:      getStr("source_lang"),
	}
	if seg.SessionName == "" || seg.RoomID == "" || seg.SpeakerIdentity == "" {
		return nil, errors.New("segment missing required fields")
	}

	raw := getStr("audio_base64")
	if i := strings.Index(raw, ","); i >= 0 {
		raw = raw[i+1:] // strip data:...;base64,
	}
	audio, err := base64.StdEncoding.DecodeString(raw)
	if err != nil || len(audio) == 0 {
		return nil, errors.New("segment has no decodable audio")
	}
	seg.Audio = audio
	return seg, nil
}

func (p *WorkerPool) handleSegment(ctx context.Context, msg redis.XMessage) {
	seg, err := parseSegment(msg)
	if err != nil {
		p.Logger.WithError(err).WithField("redis_id", msg.ID).Warn("dropping bad segment")
		return
	}

	log := p.Logger.WithFields(logrus.Fields{
		"redis_id": msg.ID,
		"session":  seg.SessionName,
		"speaker":  seg.SpeakerIdentity,
	})

	text, _, err := p.STT.Transcribe(ctx, seg.Audio, sttLanguage(seg.SourceLang))
	if err != nil {
		log.WithError(err).Error("stt failed")
		return
	}
	if strings.TrimSpace(text) == "" {
		return
	}

	listeners, err := p.listenersFor(ctx, seg)
	if err != nil {
		log.WithError(err).Error("listener lookup failed")
		return
	}

	for targetLang, identities := range listeners {
		if err := p.deliver(ctx, seg, text, targetLang, identities); err != nil {
			log.WithError(err).WithField("target_lang", targetLang).Error("delivery failed")
		}
	}
}

// listenersFor groups the room's other active participants by the language
// they hear, so each language pair is translated once.
func (p *WorkerPool) listenersFor(ctx context.Context, seg *segment) (map[string][]string, error) {
	participants, err := p.Participants.ListActive(ctx, seg.RoomID)
	if err != nil {
		return nil, err
	}
	out := make(map[string][]string)
	for _, part := range participants {
		if part.Identity == seg.SpeakerIdentity || part.HearsLanguage == "" {
			continue
		}
		out[part.HearsLanguage] = append(out[part.HearsLanguage], part.Identity)
	}
	return out, nil
}

// deliver translates and speaks one utterance for one target language, then
// streams it as a start message plus index-ordered chunks addressed to the
// listeners of that language.
func (p *WorkerPool) deliver(ctx context.Context, seg *segment, text, targetLang string, identities []string) error {
	translated, err := p.Translate.Translate(ctx, text, seg.SourceLang, targetLang)
	if err != nil {
		return err
	}

	audio, err := p.TTS.Synthesize(ctx, translated, targetLang)
	if err != nil {
		return err
	}

	chunks := splitChunks(base64.StdEncoding.EncodeToString(audio), ChunkSize)
	messageID := uuid.NewString()

	start := callsession.StartMessage{
		Type:           callsession.TypeTranslationStart,
		MessageID:      messageID,
		TotalChunks:    len(chunks),
		SpeakerName:    seg.SpeakerName,
		OriginalText:   text,
		TranslatedText: translated,
		SourceLang:     seg.SourceLang,
		TargetLang:     targetLang,
	}
	payload, err := json.Marshal(start)
	if err != nil {
		return err
	}
	if err := p.Media.SendData(ctx, seg.SessionName, identities, payload); err != nil {
		return err
	}

	for i, chunk := range chunks {
		payload, err := json.Marshal(callsession.ChunkMessage{
			Type:       callsession.TypeTranslationChunk,
			MessageID:  messageID,
			ChunkIndex: i,
			Audio:      chunk,
		})
		if err != nil {
			return err
		}
		if err := p.Media.SendData(ctx, seg.SessionName, identities, payload); err != nil {
			return err
		}
	}

	// transcript write is best-effort
	if p.Transcripts != nil {
		err := p.Transcripts.Append(ctx, &models.TranscriptEntry{
			SessionName:     seg.SessionName,
			MessageID:       messageID,
			SpeakerIdentity: seg.SpeakerIdentity,
			SpeakerName:     seg.SpeakerName,
			OriginalText:    text,
			TranslatedText:  translated,
			SourceLang:      seg.SourceLang,
			TargetLang:      targetLang,
		})
		if err != nil {
			p.Logger.WithError(err).Warn("transcript write failed")
		}
	}
	return nil
}

func sttLanguage(code string) string {
	switch code {
	case "en":
		return "en-US"
	case "ar":
		return "ar-SA"
	default:
		return code
	}
}
