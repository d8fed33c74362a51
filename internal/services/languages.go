package services

import (
	"os"
	"strings"
)

// SupportedLanguages returns the closed set of language codes a participant
// may pick. Defaults to the launch pair; extendable via env without a deploy
// of new code.
func SupportedLanguages() map[string]bool {
	raw := os.Getenv("SUPPORTED_LANGUAGES")
	if raw == "" {
		raw = "en,ar"
	}
	out := make(map[string]bool)
	for _, code := range strings.Split(raw, ",") {
		code = strings.TrimSpace(strings.ToLower(code))
		if code != "" {
			out[code] = true
		}
	}
	return out
}
