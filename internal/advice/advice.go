// Package advice produces short home-care advice for symptom descriptions,
// using Gemini when configured and canned text otherwise.
package advice

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/sony/gobreaker"
)

// TextGenerator is anything that turns a prompt into text.
type TextGenerator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// Generator wraps a TextGenerator in a circuit breaker and never fails.
type Generator struct {
	llm     TextGenerator
	breaker *gobreaker.CircuitBreaker
}

// NewGenerator returns a Generator. A nil llm always answers from the canned
// advice.
func NewGenerator(llm TextGenerator) *Generator {
	g := &Generator{llm: llm}
	g.breaker = gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "gemini",
		MaxRequests: 1,
		Timeout:     60 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 3
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			log.Warn().Str("breaker", name).Str("from", from.String()).Str("to", to.String()).Msg("🔌 Circuit breaker state changed")
		},
	})
	return g
}

// Enabled reports whether a model backs this generator.
func (g *Generator) Enabled() bool {
	return g.llm != nil
}

// Advise returns advice for symptoms, taking up to the last three exchanges
// of history into account.
func (g *Generator) Advise(ctx context.Context, symptoms string, history []string) string {
	if g.llm == nil {
		return Fallback(symptoms)
	}

	out, err := g.breaker.Execute(func() (interface{}, error) {
		return g.llm.Generate(ctx, BuildPrompt(symptoms, history))
	})
	if err != nil {
		log.Error().Err(err).Msg("❌ AI health response error")
		return Fallback(symptoms)
	}
	return out.(string)
}

const promptTemplate = `You are "Sehat Saathi" - a healthcare assistant for rural India.
%sUser: "%s"

Provide practical health solutions.

**RULES:**
- Focus on SOLUTIONS only, no unnecessary explanations
- Use simple Hindi-English mix for rural users
- Keep it helpful but not too short
- Maximum 6-7 lines total
- No long stories, no causes, just actionable advice
- Be empathetic but practical

**Example for headache:**
🤕 Sir dard hai? Ye practical solutions try karein:
• Thandi patti se matha ponche aur aaram karein
• Ginger tea ya haldi doodh piyein
• Andhere room mein 20-30 minute aaram karein
⚠️ Agar 3-4 ghante tak dard na jaye ya ulti ho, doctor ko dikhayein

Now respond to: "%s"`

// BuildPrompt renders the instruction template with recent history.
func BuildPrompt(symptoms string, history []string) string {
	if len(history) > 6 {
		history = history[len(history)-6:]
	}
	var ctxBlock string
	if len(history) > 0 {
		ctxBlock = "Previous conversation:\n" + strings.Join(history, "\n") + "\n\n"
	}
	return fmt.Sprintf(promptTemplate, ctxBlock, symptoms, symptoms)
}
