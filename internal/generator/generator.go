// Package generator produces the short supportive messages. Generation
// never fails from the caller's point of view: provider errors and empty
// answers are folded into fixed fallback text.
package generator

import (
	"context"
	"fmt"
	"time"

	"github.com/julianstephens/softworkday/internal/models"
)

// Generator returns a message for a mood, a time of day and an optional
// free-text context.
type Generator interface {
	Generate(ctx context.Context, mood models.Mood, tod models.TimeOfDay, context string) string
}

const defaultContext = "Starting/continuing the workday"

const systemInstruction = `You are an emotionally intelligent, supportive companion for office workers in Western professional environments.
Your goal is to provide a short, grounding message based on the user's current time of day and mood.

Strict Constraints:
- Length: 1 to 3 short, impactful sentences.
- Tone: Natural, supportive, realistic, and human.
- Avoid: Clichés ("You got this"), hustle culture ("Crush it", "Grind"), famous quotes, and overly poetic language.
- Context Sensitivity:
  - Morning: Focus on building a steady baseline and a realistic pace.
  - Midday: Focus on re-centering, handling noise, and avoiding the mid-afternoon slump without being preachy.
  - End of Day: Focus on leaving work at the desk, transitioning to personal time, and shedding the day's stress.
- Uniqueness: Use varied sentence structures. Do not start with generic openings.
- Goal: Help the user feel seen and supported without the "toxic positivity" of standard corporate motivation.`

func buildPrompt(mood models.Mood, tod models.TimeOfDay, userContext string) string {
	if userContext == "" {
		userContext = defaultContext
	}
	return fmt.Sprintf(`Current State: %s
Time of Day: %s
User's specific thought: %q

Generate a grounding message for this specific moment.
Remember: 1-3 sentences. No clichés. Natural tone.`, mood.Label(), tod.Label(), userContext)
}

// New returns the Claude generator when an API key is available and the
// offline generator otherwise.
func New(apiKey, model string, timeout time.Duration) Generator {
	if apiKey == "" {
		return Offline{}
	}
	return NewClaude(apiKey, model, timeout)
}
