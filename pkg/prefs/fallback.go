package prefs

import (
	"strings"

	"resrv/pkg/domain"
)

// RetryNumericPrompt is returned when a numeric slot gets an answer without
// any digit in it. The turn is not consumed: the same slot is asked again.
const RetryNumericPrompt = "我沒抓到數字 你可以回我一個數字就好 例如 500"

// FillNextSlot is the deterministic single-slot strategy used when extraction
// is unavailable. It assigns userText to the first missing slot and returns
// the updated record. For a numeric slot whose answer has no digits it
// returns the record unchanged plus a corrective prompt. When no slot is
// missing it returns the record unchanged and an empty prompt.
func FillNextSlot(userText string, p domain.Preferences) (domain.Preferences, string) {
	q, ok := NextMissingSlot(p)
	if !ok {
		return p, ""
	}
	if q.Kind == KindNumeric {
		n, ok := ParseDigits(userText)
		if !ok {
			return p, RetryNumericPrompt
		}
		return setSlot(p, q.Slot, intPtr(n), nil), ""
	}
	return setSlot(p, q.Slot, nil, strPtr(strings.TrimSpace(userText))), ""
}

func setSlot(p domain.Preferences, slot Slot, num *int, text *string) domain.Preferences {
	switch slot {
	case SlotBudget:
		p.Budget = num
	case SlotPeople:
		p.People = num
	case SlotArea:
		p.Area = text
	case SlotCuisine:
		p.Cuisine = text
	case SlotOccasion:
		p.Occasion = text
	}
	return p
}
