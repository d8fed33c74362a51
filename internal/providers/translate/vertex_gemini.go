package translate

import (
	"context"
	"fmt"
	"strings"

	vertexgenai "cloud.google.com/go/vertexai/genai"
	"google.golang.org/api/iterator"
)

type VertexGemini struct {
	client *vertexgenai.Client
	model  *vertexgenai.GenerativeModel
}

func NewVertexGemini(ctx context.Context, projectID, location, modelName string) (*VertexGemini, error) {
	c, err := vertexgenai.NewClient(ctx, projectID, location)
	if err != nil {
		return nil, err
	}

	if modelName == "" {
		modelName = "gemini-1.5-flash"
	}

	m := c.GenerativeModel(modelName)
	var temp float32 = 0.1
	m.Temperature = &temp

	return &VertexGemini{client: c, model: m}, nil
}

func (v *VertexGemini) Close() error { return v.client.Close() }

func (v *VertexGemini) Translate(ctx context.Context, text, sourceLang, targetLang string) (string, error) {
	prompt := fmt.Sprintf(
		"Translate the following from %s to %s. Reply with the translation only, no commentary.\n\n%s",
		languageName(sourceLang), languageName(targetLang), text,
	)

	var out strings.Builder
	it := v.model.GenerateContentStream(ctx, vertexgenai.Text(prompt))
	for {
		resp, err := it.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return "", err
		}
		for _, cand := range resp.Candidates {
			if cand.Content == nil {
				continue
			}
			for _, part := range cand.Content.Parts {
				if t, ok := part.(vertexgenai.Text); ok {
					out.WriteString(string(t))
				}
			}
		}
	}
	return strings.TrimSpace(out.String()), nil
}

func languageName(code string) string {
	switch code {
	case "en":
		return "English"
	case "ar":
		return "Arabic"
	default:
		return code
	}
}
