package tts

import (
	"context"

	texttospeech "cloud.google.com/go/texttospeech/apiv1"
	ttspb "cloud.google.com/go/texttospeech/apiv1/texttospeechpb"
)

type GoogleTTS struct {
	c *texttospeech.Client
}

func NewGoogleTTS(ctx context.Context) (*GoogleTTS, error) {
	c, err := texttospeech.NewClient(ctx)
	if err != nil {
		return nil, err
	}
	return &GoogleTTS{c: c}, nil
}

func (g *GoogleTTS) Close() error { return g.c.Close() }

func (g *GoogleTTS) Synthesize(ctx context.Context, text, language string) ([]byte, error) {
	resp, err := g.c.SynthesizeSpeech(ctx, &ttspb.SynthesizeSpeechRequest{
		Input: &ttspb.SynthesisInput{
			InputSource: &ttspb.SynthesisInput_Text{Text: text},
		},
		Voice: &ttspb.VoiceSelectionParams{
			LanguageCode: voiceLanguage(language),
			SsmlGender:   ttspb.SsmlVoiceGender_NEUTRAL,
		},
		AudioConfig: &ttspb.AudioConfig{
			AudioEncoding: ttspb.AudioEncoding_MP3,
		},
	})
	if err != nil {
		return nil, err
	}
	return resp.AudioContent, nil
}

func voiceLanguage(code string) string {
	switch code {
	case "en":
		return "en-US"
	case "ar":
		return "ar-XA"
	default:
		return code
	}
}
