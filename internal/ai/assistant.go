package ai

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"petwell/internal/model"
)

// CareTipsFallback is stored verbatim when tip generation fails at pet
// creation. It is a sentinel the frontend recognises, not an error.
const CareTipsFallback = "AI care tips unavailable"

// maxFallbackTitle caps the derived activity title when the AI cannot
// produce one.
const maxFallbackTitle = 50

// historyWindow is how many trailing chat messages are forwarded to the
// provider (3 user/assistant exchanges).
const historyWindow = 6

// Assistant wraps a Client with the domain prompts. It is constructed once
// at startup and injected wherever enrichment happens — never reached
// through package-level state.
type Assistant struct {
	client Client
	logger *slog.Logger
}

func NewAssistant(client Client, logger *slog.Logger) *Assistant {
	return &Assistant{client: client, logger: logger}
}

// Enabled reports whether a real provider is behind this assistant. Used
// only for logging at startup; request paths rely on the error contract
// instead.
func (a *Assistant) Enabled() bool {
	_, disabled := a.client.(Disabled)
	return !disabled
}

// CareTips generates brief care tips for a newly created pet.
//
// Never fails: on any provider problem it logs and returns
// CareTipsFallback, so pet creation succeeds identically with or without
// a working provider.
func (a *Assistant) CareTips(ctx context.Context, pet *model.Pet) string {
	prompt := fmt.Sprintf("Provide 3 brief care tips for a %s", pet.Species)
	if pet.Breed != nil && *pet.Breed != "" {
		prompt += fmt.Sprintf(" (breed: %s)", *pet.Breed)
	}
	if pet.Age != nil {
		prompt += fmt.Sprintf(" that is %d years old", *pet.Age)
	}
	prompt += ". Keep it concise and practical."

	tips, err := a.client.Complete(ctx,
		[]Message{{Role: RoleUser, Content: prompt}},
		Options{MaxTokens: 200},
	)
	if err != nil {
		a.logger.Warn("care tips generation failed",
			slog.String("pet", pet.Name),
			slog.String("error", err.Error()),
		)
		return CareTipsFallback
	}

	return tips
}

// RegenerateCareTips produces the longer, medical-notes-aware variant used
// by the explicit regenerate endpoint. Unlike CareTips this DOES return an
// error: the caller asked for AI output specifically, so an absent
// provider is the answer (ErrUnavailable → 503), not something to paper
// over.
func (a *Assistant) RegenerateCareTips(ctx context.Context, pet *model.Pet) (string, error) {
	prompt := fmt.Sprintf("Provide 3 detailed care tips for a %s", pet.Species)
	if pet.Breed != nil && *pet.Breed != "" {
		prompt += fmt.Sprintf(" (breed: %s)", *pet.Breed)
	}
	if pet.Age != nil {
		prompt += fmt.Sprintf(" that is %d years old", *pet.Age)
	}
	if pet.MedicalNotes != nil && *pet.MedicalNotes != "" {
		prompt += fmt.Sprintf(". Medical notes: %s", truncateRunes(*pet.MedicalNotes, 100))
	}
	prompt += ". Keep it practical and actionable."

	return a.client.Complete(ctx,
		[]Message{{Role: RoleUser, Content: prompt}},
		Options{MaxTokens: 300},
	)
}

// Categorization is the structured result of parsing a free-text activity
// description.
type Categorization struct {
	Type     model.ActivityType
	Title    string
	Duration *int
	Distance *float64
	Notes    *string
}

const categorizeSystemPrompt = `You are an expert pet activity analyzer. Given a description of a pet activity, extract and return a JSON object with:
- activity_type: one of (walk, feeding, medication, vet_visit, grooming, play, training, other)
- title: a brief title (max 50 chars)
- duration: estimated duration in minutes (if mentioned or can be inferred, null otherwise)
- distance: distance in miles (for walks, if mentioned, null otherwise)
- notes: any additional relevant notes or details

Return ONLY valid JSON, no markdown or explanation.`

// CategorizeActivity derives type/title/duration/distance/notes from a
// free-text description.
//
// THE FALLBACK IS TOTAL:
// provider absent, provider error, timeout, non-JSON reply, JSON with an
// unknown activity_type — every failure collapses to
// {type: other, title: first 50 chars of the description}. Nothing
// propagates; activity creation cannot fail because of this call.
func (a *Assistant) CategorizeActivity(ctx context.Context, pet *model.Pet, description string) Categorization {
	fallback := Categorization{
		Type:  model.ActivityOther,
		Title: truncateRunes(description, maxFallbackTitle),
	}

	reply, err := a.client.Complete(ctx,
		[]Message{
			{Role: RoleSystem, Content: categorizeSystemPrompt},
			{Role: RoleUser, Content: fmt.Sprintf("Pet: %s (%s)\nActivity Description: %s", pet.Name, pet.Species, description)},
		},
		Options{Temperature: 0.3},
	)
	if err != nil {
		if err != ErrUnavailable {
			a.logger.Error("activity categorization failed", slog.String("error", err.Error()))
		}
		return fallback
	}

	var parsed struct {
		ActivityType string   `json:"activity_type"`
		Title        string   `json:"title"`
		Duration     *int     `json:"duration"`
		Distance     *float64 `json:"distance"`
		Notes        *string  `json:"notes"`
	}
	if err := json.Unmarshal([]byte(stripCodeFences(reply)), &parsed); err != nil {
		a.logger.Error("activity categorization returned invalid JSON",
			slog.String("error", err.Error()),
		)
		return fallback
	}

	result := fallback
	if t, ok := model.ParseActivityType(parsed.ActivityType); ok {
		result.Type = t
	}
	if strings.TrimSpace(parsed.Title) != "" {
		result.Title = truncateRunes(parsed.Title, maxFallbackTitle)
	}
	if parsed.Duration != nil && *parsed.Duration >= 0 {
		result.Duration = parsed.Duration
	}
	if parsed.Distance != nil && *parsed.Distance >= 0 {
		result.Distance = parsed.Distance
	}
	result.Notes = parsed.Notes

	return result
}

const vetChatSystemPrompt = `You are a compassionate veterinary assistant helping concerned pet owners. Your approach is conversational, supportive, and focused on asking clarifying questions before giving advice.

**Your communication style:**
- Ask 1-3 specific, targeted questions to understand the situation better
- Keep responses SHORT (2-4 sentences max) unless giving critical safety information
- Use a warm, reassuring tone - pet owners are often anxious
- Break complex topics into simple, digestible pieces
- Guide the conversation step-by-step rather than overwhelming with information

**Your approach:**
1. First, ask clarifying questions about symptoms, duration, severity, or pet's current state
2. Once you understand the situation, provide focused guidance (not exhaustive lists)
3. For urgent concerns, prioritize immediate safety actions first
4. Always end with a clear next step or follow-up question

**Red flags requiring immediate vet care (be direct and concise):**
- Difficulty breathing, seizures, collapse, suspected poisoning, severe bleeding
- Severe pain/distress, bloated/hard abdomen, inability to urinate/defecate

**Important:**
- Focus on the most relevant 1-2 points at a time
- Always include disclaimer: "I'm providing general guidance - not a diagnosis"`

// VetChat answers one turn of the veterinary chat. Stateless per call: the
// caller supplies the trailing history and the pet context; nothing is kept
// between requests.
func (a *Assistant) VetChat(ctx context.Context, pets []model.Pet, history []Message, userMessage string) (string, error) {
	system := vetChatSystemPrompt
	if ctxBlock := petsContext(pets); ctxBlock != "" {
		system += "\n\n" + ctxBlock
	}

	messages := []Message{{Role: RoleSystem, Content: system}}

	if len(history) > historyWindow {
		history = history[len(history)-historyWindow:]
	}
	messages = append(messages, history...)
	messages = append(messages, Message{Role: RoleUser, Content: userMessage})

	return a.client.Complete(ctx, messages, Options{MaxTokens: 300, Temperature: 0.8})
}

// Insights is the AI-generated half of the activity insights endpoint; the
// deterministic grouping half lives in the activity service.
type Insights struct {
	Patterns []string `json:"patterns"`
	Insights string   `json:"insights"`
}

const insightsSystemPrompt = `You are a pet activity analyst. Given a list of pet activities, provide:
1. Identify patterns (e.g., "walks usually in morning", "fed twice daily")
2. Provide insights about the pet's routine and care
Return JSON with: {"patterns": [], "insights": ""}`

// ActivityInsights asks the provider for patterns across the supplied
// activity summary lines. Errors are returned so the caller can degrade to
// plain grouping.
func (a *Assistant) ActivityInsights(ctx context.Context, summaryLines []string) (*Insights, error) {
	reply, err := a.client.Complete(ctx,
		[]Message{
			{Role: RoleSystem, Content: insightsSystemPrompt},
			{Role: RoleUser, Content: "Activities:\n" + strings.Join(summaryLines, "\n")},
		},
		Options{Temperature: 0.5},
	)
	if err != nil {
		return nil, err
	}

	var insights Insights
	if err := json.Unmarshal([]byte(stripCodeFences(reply)), &insights); err != nil {
		return nil, fmt.Errorf("ai: parsing insights reply: %w", err)
	}

	return &insights, nil
}

// petsContext flattens the caller's pets into the block the system prompt
// embeds, so the model can answer "is that normal for a 12-year-old cat?"
// without being told which cat.
func petsContext(pets []model.Pet) string {
	if len(pets) == 0 {
		return ""
	}

	var b strings.Builder
	b.WriteString("**User's Pets:**\n")
	for _, pet := range pets {
		fmt.Fprintf(&b, "- %s: %s ", pet.Name, pet.Species)
		if pet.Breed != nil && *pet.Breed != "" {
			fmt.Fprintf(&b, "(%s) ", *pet.Breed)
		}
		if pet.Age != nil {
			fmt.Fprintf(&b, "- Age: %d years ", *pet.Age)
		}
		if pet.Weight != nil {
			fmt.Fprintf(&b, "- Weight: %g lbs ", *pet.Weight)
		}
		if pet.MedicalNotes != nil && *pet.MedicalNotes != "" {
			fmt.Fprintf(&b, "\n  Medical Notes: %s", *pet.MedicalNotes)
		}
		b.WriteString("\n")
	}

	return b.String()
}

// stripCodeFences removes a ```json ... ``` wrapper. Models are told to
// return bare JSON but wrap it anyway often enough that parsing without
// this would turn valid replies into fallbacks.
func stripCodeFences(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}

// truncateRunes clips to n runes, not bytes — a multi-byte character at
// the boundary must not be split.
func truncateRunes(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}
