package tts

import "context"

type Provider interface {
	// Synthesize renders text as encoded audio in the given language.
	Synthesize(ctx context.Context, text, language string) ([]byte, error)
	Close() error
}
