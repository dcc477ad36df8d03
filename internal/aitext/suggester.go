// Copyright (c) 2026 Haasivu Contributors
// SPDX-License-Identifier: GPL-3.0-or-later

// Package aitext generates text suggestions for site blocks: welcome
// paragraphs, invitation wordings, program descriptions. It is optional;
// without an API key the handler reports the feature as unavailable.
package aitext

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
)

// ErrNotConfigured is returned when no API key is set.
var ErrNotConfigured = errors.New("text suggestions not configured")

// Known suggestion kinds.
const (
	KindWelcome    = "welcome"
	KindInvitation = "invitation"
	KindProgram    = "program"
	KindThankYou   = "thankyou"
)

var prompts = map[string]string{
	KindWelcome:    "Kirjoita lämmin tervetulotoivotus hääsivustolle.",
	KindInvitation: "Kirjoita lyhyt ja juhlava hääkutsuteksti.",
	KindProgram:    "Kirjoita tiivis kuvaus hääpäivän ohjelmasta.",
	KindThankYou:   "Kirjoita kiitosviesti häävieraille juhlien jälkeen.",
}

const systemPrompt = "Olet avustaja, joka kirjoittaa tekstiä suomalaiselle hääsivustolle. " +
	"Kirjoita suomeksi, lämpimästi ja lyhyesti. Älä käytä otsikoita tai listoja."

// Suggester produces block text suggestions.
type Suggester struct {
	client  openai.Client
	model   string
	enabled bool
}

// NewSuggester creates a suggester. An empty apiKey yields a disabled
// suggester whose Suggest returns ErrNotConfigured.
func NewSuggester(apiKey, model string) *Suggester {
	if apiKey == "" {
		return &Suggester{}
	}
	return &Suggester{
		client:  openai.NewClient(option.WithAPIKey(apiKey)),
		model:   model,
		enabled: true,
	}
}

// Enabled reports whether suggestions are available.
func (s *Suggester) Enabled() bool {
	return s.enabled
}

// IsValidKind reports whether kind names a known suggestion prompt.
func IsValidKind(kind string) bool {
	_, ok := prompts[kind]
	return ok
}

// Suggest generates one suggestion of the given kind. The optional hint
// carries couple-specific context such as names and the wedding date.
func (s *Suggester) Suggest(ctx context.Context, kind, hint string) (string, error) {
	if !s.enabled {
		return "", ErrNotConfigured
	}

	prompt, ok := prompts[kind]
	if !ok {
		return "", fmt.Errorf("unknown suggestion kind %q", kind)
	}
	if hint != "" {
		prompt = prompt + " Taustatiedot: " + hint
	}

	completion, err := s.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: openai.ChatModel(s.model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(systemPrompt),
			openai.UserMessage(prompt),
		},
		MaxCompletionTokens: openai.Int(400),
		Temperature:         openai.Float(0.8),
	})
	if err != nil {
		return "", fmt.Errorf("requesting suggestion: %w", err)
	}
	if len(completion.Choices) == 0 {
		return "", errors.New("no suggestion returned")
	}

	return strings.TrimSpace(completion.Choices[0].Message.Content), nil
}
