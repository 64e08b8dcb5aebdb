package ai

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"resrv/pkg/domain"
	"resrv/pkg/prefs"
)

// Extraction failure classes. Callers are expected to degrade to the fallback
// slot-filling strategy on either of them; neither is a user-facing error.
var (
	// ErrExtractionUnavailable means no usable extraction service: missing
	// credential, network failure, or an API-level error.
	ErrExtractionUnavailable = errors.New("extraction service unavailable")
	// ErrMalformedResponse means the service replied but no valid JSON object
	// could be located in the reply.
	ErrMalformedResponse = errors.New("no valid JSON object in extraction response")
)

const extractorSystemPrompt = `你是一個餐廳推薦系統的需求抽取器
請從使用者輸入中 抽取並更新偏好
只能輸出 JSON 不能輸出任何多餘文字

欄位如下（缺漏用 null）：
{
  "budget": number|null,
  "people": number|null,
  "area": string|null,
  "cuisine": string|null,
  "occasion": string|null
}

規則：
- budget 取整數 例如 500
- people 取整數
- area/cuisine/occasion 用最短關鍵字
- 若使用者沒有提到某欄位 請回 null
- 若目前偏好已有值 且使用者沒有明確推翻 請回 null（代表不修改）`

// Gemini wraps answers in ```json fences or leading prose often enough that
// the fenced form is tried first, then any brace-delimited substring.
var (
	fencedJSONRe = regexp.MustCompile("(?s)```(?:json)?\\s*(\\{.*?\\})\\s*```")
	braceJSONRe  = regexp.MustCompile(`(?s)(\{.*\})`)
)

// PreferenceExtractor asks Gemini to turn a free-form utterance into a
// preference update. The current snapshot is sent along so the model can
// decide whether the utterance overrides an existing value; a null in the
// reply means "leave this slot alone", never "clear it".
type PreferenceExtractor struct {
	client *GeminiClient
	model  string
}

// NewPreferenceExtractor binds a Gemini client and model name.
func NewPreferenceExtractor(client *GeminiClient, model string) (*PreferenceExtractor, error) {
	if client == nil {
		return nil, fmt.Errorf("gemini client required")
	}
	model = strings.TrimSpace(model)
	if model == "" {
		return nil, fmt.Errorf("extraction model required")
	}
	return &PreferenceExtractor{client: client, model: model}, nil
}

// Extract returns a preference update for userText. Slots come back nil when
// the model found no evidence to change them. Numeric slots may arrive as
// numbers or numeric-looking strings ("600元"); strings are coerced through
// digit extraction and dropped when that fails.
func (e *PreferenceExtractor) Extract(ctx context.Context, userText string, current domain.Preferences) (domain.Preferences, error) {
	snapshot, err := json.Marshal(current)
	if err != nil {
		return domain.Preferences{}, fmt.Errorf("%w: marshal snapshot: %v", ErrExtractionUnavailable, err)
	}
	userPrompt := fmt.Sprintf("目前已知偏好：\n%s\n\n使用者輸入：\n%s", snapshot, userText)

	reply, err := e.client.GenerateText(ctx, e.model, extractorSystemPrompt, userPrompt)
	if err != nil {
		return domain.Preferences{}, fmt.Errorf("%w: %v", ErrExtractionUnavailable, err)
	}
	raw, err := locateJSON(reply)
	if err != nil {
		return domain.Preferences{}, err
	}
	return coercePayload(raw), nil
}

// locateJSON finds the first well-formed JSON object in text, trying a fenced
// code block before any brace-delimited substring.
func locateJSON(text string) (map[string]any, error) {
	for _, re := range []*regexp.Regexp{fencedJSONRe, braceJSONRe} {
		m := re.FindStringSubmatch(text)
		if m == nil {
			continue
		}
		var payload map[string]any
		if err := json.Unmarshal([]byte(m[1]), &payload); err == nil {
			return payload, nil
		}
	}
	return nil, ErrMalformedResponse
}

// coercePayload keeps only the five schema keys and discards values of the
// wrong type rather than failing the whole extraction.
func coercePayload(payload map[string]any) domain.Preferences {
	return domain.Preferences{
		Budget:   coerceInt(payload["budget"]),
		People:   coerceInt(payload["people"]),
		Area:     coerceText(payload["area"]),
		Cuisine:  coerceText(payload["cuisine"]),
		Occasion: coerceText(payload["occasion"]),
	}
}

func coerceInt(v any) *int {
	switch n := v.(type) {
	case float64:
		if n < 0 {
			return nil
		}
		value := int(n)
		return &value
	case string:
		value, ok := prefs.ParseDigits(n)
		if !ok {
			return nil
		}
		return &value
	default:
		return nil
	}
}

func coerceText(v any) *string {
	s, ok := v.(string)
	if !ok {
		return nil
	}
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}
