package translate

import "context"

type Provider interface {
	// Translate renders text from sourceLang into targetLang. Language codes
	// are the app-level short codes ("en", "ar").
	Translate(ctx context.Context, text, sourceLang, targetLang string) (string, error)
	Close() error
}
