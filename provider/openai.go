package provider

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/ZaguanLabs/locpatch"
	"github.com/sashabaranov/go-openai"
)

const (
	// DefaultBaseURL is Gemini's OpenAI-compatible endpoint.
	DefaultBaseURL = "https://generativelanguage.googleapis.com/v1beta/openai/"
	// DefaultModel is the model used when none is configured.
	DefaultModel = "gemini-2.5-flash"
	// DefaultSetting describes the mod the texts belong to.
	DefaultSetting = `a "Lord of the Rings" mod for the game "Crusader Kings 3"`
)

// OpenAIProvider implements Gateway using any OpenAI-compatible chat API.
type OpenAIProvider struct {
	client      *openai.Client
	model       string
	temperature float32
	setting     string
	rules       []string
}

// OpenAIConfig holds configuration for the OpenAI-compatible provider.
type OpenAIConfig struct {
	APIKey      string   // API key
	Model       string   // Model to use (default: "gemini-2.5-flash")
	Temperature float32  // Temperature for generation (default: 0.3)
	BaseURL     string   // Base URL (default: Gemini OpenAI-compatible endpoint)
	Setting     string   // What the texts belong to (default: LOTR mod for CK3)
	Rules       []string // Extra instructions appended to every prompt
}

// NewOpenAIProvider creates a new OpenAI-compatible provider.
func NewOpenAIProvider(cfg OpenAIConfig) *OpenAIProvider {
	config := openai.DefaultConfig(cfg.APIKey)
	config.HTTPClient = &http.Client{Transport: userAgentTransport{base: http.DefaultTransport}}
	config.BaseURL = DefaultBaseURL
	if cfg.BaseURL != "" {
		config.BaseURL = cfg.BaseURL
	}

	model := cfg.Model
	if model == "" {
		model = DefaultModel
	}

	temperature := cfg.Temperature
	if temperature == 0 {
		temperature = 0.3
	}

	setting := cfg.Setting
	if setting == "" {
		setting = DefaultSetting
	}

	return &OpenAIProvider{
		client:      openai.NewClientWithConfig(config),
		model:       model,
		temperature: temperature,
		setting:     setting,
		rules:       cfg.Rules,
	}
}

// userAgentTransport tags every request with the locpatch user agent.
type userAgentTransport struct {
	base http.RoundTripper
}

func (t userAgentTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	req = req.Clone(req.Context())
	req.Header.Set("User-Agent", locpatch.UserAgent())
	return t.base.RoundTrip(req)
}

// Model returns the configured model name.
func (p *OpenAIProvider) Model() string {
	return p.model
}

// TranslateBatch sends all texts in one JSON-mode request.
func (p *OpenAIProvider) TranslateBatch(ctx context.Context, req BatchRequest) ([]string, error) {
	if len(req.Texts) == 0 {
		return []string{}, nil
	}

	content, err := p.complete(ctx, p.buildBatchPrompt(req), p.buildBatchMessage(req), true)
	if err != nil {
		return nil, err
	}
	return parseResponse(content, len(req.Texts))
}

// TranslateOne sends one text and returns the model's answer trimmed.
func (p *OpenAIProvider) TranslateOne(ctx context.Context, req SingleRequest) (string, error) {
	content, err := p.complete(ctx, p.buildSinglePrompt(req), p.buildSingleMessage(req), false)
	if err != nil {
		return "", err
	}

	text := strings.TrimSpace(stripFence(content))
	if text == "" {
		return "", &locpatch.ProviderError{
			Message:   "empty response",
			Retryable: true,
		}
	}
	return text, nil
}

func (p *OpenAIProvider) complete(ctx context.Context, system, user string, jsonMode bool) (string, error) {
	creq := openai.ChatCompletionRequest{
		Model: p.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: system},
			{Role: openai.ChatMessageRoleUser, Content: user},
		},
		Temperature: p.temperature,
	}
	if jsonMode {
		creq.ResponseFormat = &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		}
	}

	resp, err := p.client.CreateChatCompletion(ctx, creq)
	if err != nil {
		return "", &locpatch.ProviderError{
			Message:   "chat completion failed",
			Cause:     err,
			Retryable: isRetryableError(err),
		}
	}

	if len(resp.Choices) == 0 {
		return "", &locpatch.ProviderError{
			Message:   "no choices in response",
			Retryable: true,
		}
	}
	return resp.Choices[0].Message.Content, nil
}

// translateRules are the preservation rules every translation prompt carries.
func (p *OpenAIProvider) translateRules(targetLang string) []string {
	rules := []string{
		"**USE OFFICIAL TOLKIEN TRANSLATIONS:** ('Frodo Baggins' -> 'Frodo Beutlin'). Do not translate names that remain in English ('Gondor').",
		"**DO NOT TRANSLATE GAME CODE:** Preserve text inside `[]` EXACTLY.",
		"**PRESERVE IN-TEXT VARIABLES:** Preserve text inside `$$` EXACTLY.",
		"**PRESERVE FORMATTING MARKERS:** Preserve single words starting with `#` EXACTLY.",
		"**PRESERVE ICON CODES:** Preserve text from `@` to `!` EXACTLY.",
		"**USE CK3 TERMINOLOGY:** ('vassal' -> 'Vasall').",
	}
	if locpatch.NormalizeLanguage(targetLang) == "german" {
		rules = append(rules, `**TONE:** Use the informal German "du/dein/euch".`)
	}
	return append(rules, p.rules...)
}

func numbered(rules []string) string {
	var b strings.Builder
	for i, r := range rules {
		fmt.Fprintf(&b, "%d. %s\n", i+1, r)
	}
	return b.String()
}

func langNames(source, target string) (string, string) {
	if source == "" {
		source = "english"
	}
	return locpatch.GetLanguageName(source), locpatch.GetLanguageName(target)
}

func (p *OpenAIProvider) buildBatchPrompt(req BatchRequest) string {
	sourceName, targetName := langNames(req.SourceLang, req.TargetLang)

	switch req.Mode {
	case locpatch.ModeArticle:
		return p.articlePrompt(targetName) + `
You will receive a JSON object with an "items" array. Each item has a "key" and a "value".
# Format
Return a valid JSON object with a single key "translations" containing one article per item, in the exact same order as the input.
Example: { "translations": ["der", "das"] }`

	case locpatch.ModePhrase:
		return p.phrasePrompt(sourceName, targetName, req.TargetLang) + `
You will receive a JSON array of phrases.
# Format
Return a valid JSON object with a single key "translations" containing one corrected phrase per input, in the exact same order as the input.
Example: { "translations": ["der König von Gondor"] }`
	}

	return fmt.Sprintf(`You are an expert translator for video game mods, specifically for %s.
**CONTEXT:** You are translating content from the file named: `+"`%s`"+`.
**TASK:** You will receive a JSON array of %s strings. Translate every string to %s.
**CRITICAL INSTRUCTIONS:**
%s
# Format
Return a valid JSON object with a single key "translations" containing an array of strings in the exact same order as the input.
Example: { "translations": ["translated string 1", "translated string 2"] }
- Do NOT wrap in Markdown code blocks.`,
		p.setting, req.File, sourceName, targetName, numbered(p.translateRules(req.TargetLang)))
}

func (p *OpenAIProvider) buildSinglePrompt(req SingleRequest) string {
	sourceName, targetName := langNames(req.SourceLang, req.TargetLang)

	switch req.Mode {
	case locpatch.ModeArticle:
		return p.articlePrompt(targetName) + `
Return ONLY the article. Do not add any other text, explanations, quotes, or the underscore.`
	case locpatch.ModePhrase:
		return p.phrasePrompt(sourceName, targetName, req.TargetLang) + `
Return ONLY the corrected phrase. Do not add any other text or explanations.`
	}

	return fmt.Sprintf(`You are an expert translator for video game mods, specifically for %s.
**CONTEXT:** You are translating content from the file named: `+"`%s`"+`.
**TASK:** Translate the single following %s text to %s.
**CRITICAL INSTRUCTIONS:**
%s
**OUTPUT:** Return ONLY the final translated %s text.`,
		p.setting, req.File, sourceName, targetName, numbered(p.translateRules(req.TargetLang)), targetName)
}

func (p *OpenAIProvider) articlePrompt(targetName string) string {
	return fmt.Sprintf(`You are a %[1]s grammar expert. The context for the following task is %[2]s.
Your task is to determine the correct %[1]s definite article for a noun hinted at by a localization key.
The value is a placeholder like "%[3]s".
Use the key (e.g., "k_rohan_article") to infer the noun (e.g., "Rohan").
Based on the noun's gender, replace the placeholder with ONLY the correct %[1]s definite article (for German: "der", "die", "das", "den" or "dem").

EXAMPLE:
Key: k_king_of_gondor_article -> der
Key: k_rohan_article -> das`, targetName, p.setting, locpatch.ArticlePlaceholder)
}

func (p *OpenAIProvider) phrasePrompt(sourceName, targetName, targetLang string) string {
	return fmt.Sprintf(`You are a %[2]s grammar expert. The context for the following task is %[3]s.
Your task is to translate the %[1]s phrase to %[2]s and correct its article.
The placeholder "%[4]s" must be replaced with the correct %[2]s definite article. The trailing underscore from the placeholder must be removed.
%[5]s
EXAMPLE INPUT:
%[4]s King of Gondor
EXAMPLE OUTPUT:
der König von Gondor`, sourceName, targetName, p.setting, locpatch.ArticlePlaceholder, numbered(p.translateRules(targetLang)))
}

func (p *OpenAIProvider) buildBatchMessage(req BatchRequest) string {
	if req.Mode != locpatch.ModeArticle {
		data, _ := json.Marshal(req.Texts)
		return string(data)
	}

	type item struct {
		Key   string `json:"key"`
		Value string `json:"value"`
	}

	items := make([]item, len(req.Texts))
	for i, text := range req.Texts {
		items[i].Value = text
		if i < len(req.Keys) {
			items[i].Key = req.Keys[i]
		}
	}

	data, _ := json.Marshal(map[string][]item{"items": items})
	return string(data)
}

func (p *OpenAIProvider) buildSingleMessage(req SingleRequest) string {
	switch req.Mode {
	case locpatch.ModeArticle:
		return fmt.Sprintf("Key: %s\nValue: %s\nOUTPUT:", req.Key, req.Text)
	case locpatch.ModePhrase:
		return fmt.Sprintf("Phrase to correct:\n%q", req.Text)
	}
	_, targetName := langNames(req.SourceLang, req.TargetLang)
	return fmt.Sprintf("Text: %q\n%s translation:", req.Text, targetName)
}

// stripFence removes a surrounding ```json ... ``` block.
func stripFence(content string) string {
	s := strings.TrimSpace(content)
	if !strings.HasPrefix(s, "```") {
		return content
	}
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}

func parseResponse(content string, expectedCount int) ([]string, error) {
	content = stripFence(content)

	// Try parsing as object first
	var objResult map[string]interface{}
	if err := json.Unmarshal([]byte(content), &objResult); err == nil {
		if translations, ok := objResult["translations"]; ok {
			if arr, ok := translations.([]interface{}); ok {
				return toStringSlice(arr, expectedCount)
			}
		}

		// Fallback: a single array field under another name.
		var only []interface{}
		arrays := 0
		for _, v := range objResult {
			if arr, ok := v.([]interface{}); ok {
				only = arr
				arrays++
			}
		}
		if arrays == 1 {
			return toStringSlice(only, expectedCount)
		}
	}

	// Try parsing as direct array
	var arrResult []interface{}
	if err := json.Unmarshal([]byte(content), &arrResult); err == nil {
		return toStringSlice(arrResult, expectedCount)
	}

	return nil, &locpatch.ProviderError{
		Message:   "invalid response format",
		Retryable: false,
	}
}

func toStringSlice(arr []interface{}, expectedCount int) ([]string, error) {
	result := make([]string, len(arr))
	for i, v := range arr {
		s, ok := v.(string)
		if !ok {
			return nil, &locpatch.ProviderError{
				Message:   fmt.Sprintf("translation %d is %T, not a string", i, v),
				Retryable: false,
			}
		}
		result[i] = s
	}

	if len(result) != expectedCount {
		return nil, &locpatch.CountMismatchError{
			Expected: expectedCount,
			Got:      len(result),
		}
	}

	return result, nil
}

func isRetryableError(err error) bool {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.HTTPStatusCode {
		case 408, 429, 500, 502, 503, 504:
			return true
		}
	}

	errStr := strings.ToLower(err.Error())
	retryablePatterns := []string{
		"rate limit",
		"timeout",
		"connection refused",
		"connection reset",
		"temporary",
		"resource_exhausted",
		"503",
		"502",
		"429",
	}

	for _, pattern := range retryablePatterns {
		if strings.Contains(errStr, pattern) {
			return true
		}
	}
	return false
}

// Verify OpenAIProvider implements Gateway
var _ Gateway = (*OpenAIProvider)(nil)
