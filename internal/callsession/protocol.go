// Package callsession implements the client side of a translated call:
// connecting to the live media session, the human/agent audio policy, and
// reassembly of chunked translated-audio messages from the data channel.
package callsession

import "strings"

// Data-channel message kinds. A translation arrives as one start message
// followed by totalChunks chunk messages; there is no terminal marker.
const (
	TypeTranslationStart = "translation_start"
	TypeTranslationChunk = "translation_chunk"
)

// StartMessage announces a translation and carries the transcript pair.
// Text is surfaced immediately; audio follows in chunks.
type StartMessage struct {
	Type           string `json:"type"`
	MessageID      string `json:"messageId"`
	TotalChunks    int    `json:"totalChunks"`
	SpeakerName    string `json:"speakerName"`
	OriginalText   string `json:"originalText"`
	TranslatedText string `json:"translatedText"`
	SourceLang     string `json:"sourceLang"`
	TargetLang     string `json:"targetLang"`
}

// ChunkMessage carries one base64 fragment of the translated audio.
type ChunkMessage struct {
	Type       string `json:"type"`
	MessageID  string `json:"messageId"`
	ChunkIndex int    `json:"chunkIndex"`
	Audio      string `json:"audio"`
}

// IsAgentIdentity classifies a remote identity as the translation agent.
// Matching is case-insensitive on the "agent" substring so it holds for
// "agent-translator", "Agent", "translation-agent", etc.
func IsAgentIdentity(identity string) bool {
	return strings.Contains(strings.ToLower(identity), "agent")
}
