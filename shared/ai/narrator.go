package ai

import (
	"context"
	"fmt"
	"strings"

	"weather-app/internal/models"
	"weather-app/shared/config"

	"google.golang.org/genai"
)

const maxNarrativeLength = 1200

// Narrator asks Gemini for a short plain-language summary of a forecast digest
type Narrator struct {
	client *genai.Client
	model  string
}

func NewNarrator(ctx context.Context, cfg *config.AIConfig) (*Narrator, error) {
	if cfg.GeminiAPIKey == "" {
		return nil, fmt.Errorf("Gemini API key is required (set GEMINI_API_KEY or ai.gemini_api_key)")
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey: cfg.GeminiAPIKey,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	return &Narrator{
		client: client,
		model:  cfg.Model,
	}, nil
}

// Summarize returns a one-paragraph narrative for the digest
func (n *Narrator) Summarize(ctx context.Context, digest *models.ForecastDigest) (string, error) {
	if digest == nil || digest.View == nil {
		return "", fmt.Errorf("digest cannot be nil")
	}

	parts := []*genai.Part{
		genai.NewPartFromText(buildPrompt(digest)),
	}
	contents := []*genai.Content{
		genai.NewContentFromParts(parts, genai.RoleUser),
	}

	result, err := n.client.Models.GenerateContent(ctx, n.model, contents, nil)
	if err != nil {
		return "", fmt.Errorf("failed to summarize forecast for %s: %w", digest.View.Label, err)
	}

	narrative := cleanNarrative(result.Text())
	if narrative == "" {
		return "", fmt.Errorf("empty narrative for %s", digest.View.Label)
	}
	return narrative, nil
}

func buildPrompt(digest *models.ForecastDigest) string {
	view := digest.View

	var b strings.Builder
	fmt.Fprintf(&b, `You are a friendly weather presenter. Write ONE short paragraph (at most 4 sentences, plain text, no markdown) summarizing today's weather for %s on %s.
Mention what to wear or plan for. Use the units exactly as given.

`, view.Label, digest.Date.Format("Monday, January 2, 2006"))

	if c := view.Current; c != nil {
		fmt.Fprintf(&b, "CURRENT: temperature %s, wind %s, condition %s\n", c.Temperature, c.Wind, c.Condition)
	}
	if len(view.Daily) > 0 {
		b.WriteString("DAILY:\n")
		for _, d := range view.Daily {
			fmt.Fprintf(&b, "- %s\n", d.Text)
		}
	}
	if h := view.Hourly; h != nil && len(h.Labels) > 0 {
		b.WriteString("HOURLY TEMPERATURES:\n")
		for i, label := range h.Labels {
			v := "unknown"
			if i < len(h.Temperatures) && h.Temperatures[i] != nil {
				v = fmt.Sprintf("%g%s", *h.Temperatures[i], view.Units.TemperatureLabel())
			}
			fmt.Fprintf(&b, "%s %s; ", label, v)
		}
		b.WriteString("\n")
	}
	return b.String()
}

// cleanNarrative strips markdown emphasis and fences and bounds the length
func cleanNarrative(text string) string {
	text = strings.TrimSpace(text)
	text = strings.Trim(text, "`")
	text = strings.NewReplacer("**", "", "__", "", "#", "").Replace(text)
	text = strings.Join(strings.Fields(text), " ")

	if len(text) > maxNarrativeLength {
		cut := strings.LastIndex(text[:maxNarrativeLength], ". ")
		if cut <= 0 {
			return text[:maxNarrativeLength] + "..."
		}
		text = text[:cut+1]
	}
	return text
}
