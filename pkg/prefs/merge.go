package prefs

import (
	"strings"

	"resrv/pkg/domain"
)

// Merge overlays incoming onto base, one slot at a time. A nil incoming slot
// keeps the base value: extraction answering "no evidence" must never erase
// information collected on earlier turns. Text slots are accepted only when
// non-empty after trimming.
func Merge(base, incoming domain.Preferences) domain.Preferences {
	out := base
	if incoming.Budget != nil {
		out.Budget = intPtr(*incoming.Budget)
	}
	if incoming.People != nil {
		out.People = intPtr(*incoming.People)
	}
	if s := textValue(incoming.Area); s != nil {
		out.Area = s
	}
	if s := textValue(incoming.Cuisine); s != nil {
		out.Cuisine = s
	}
	if s := textValue(incoming.Occasion); s != nil {
		out.Occasion = s
	}
	return out
}

func textValue(s *string) *string {
	if s == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*s)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}

func intPtr(n int) *int       { return &n }
func strPtr(s string) *string { return &s }
