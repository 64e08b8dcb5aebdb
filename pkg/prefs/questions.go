package prefs

import "resrv/pkg/domain"

// SlotKind describes how a slot's answer is interpreted.
type SlotKind string

const (
	KindNumeric SlotKind = "numeric"
	KindText    SlotKind = "text"
)

// Slot names a single preference field.
type Slot string

const (
	SlotBudget   Slot = "budget"
	SlotPeople   Slot = "people"
	SlotArea     Slot = "area"
	SlotCuisine  Slot = "cuisine"
	SlotOccasion Slot = "occasion"
)

// Question pairs a slot with the prompt the assistant asks for it.
type Question struct {
	Slot   Slot
	Prompt string
	Kind   SlotKind
}

// Questions is the canonical question sequence. Order is fixed: it determines
// which slot the fallback strategy fills next and which prompt is asked.
var Questions = []Question{
	{Slot: SlotBudget, Prompt: "嗨～你的預算大概落在哪個區間？請回覆我數字 例如：300 500 800", Kind: KindNumeric},
	{Slot: SlotPeople, Prompt: "幾個人用餐？", Kind: KindNumeric},
	{Slot: SlotArea, Prompt: "想在哪個地區？ 例如 信義 大安 中山 或輸入捷運站", Kind: KindText},
	{Slot: SlotCuisine, Prompt: "想吃什麼類型？例如 日式 義式 火鍋 咖啡廳", Kind: KindText},
	{Slot: SlotOccasion, Prompt: "這次是約會 聚餐 家庭 還是慶生？", Kind: KindText},
}

// NextMissingSlot returns the first question whose slot is unset, scanning
// Questions in order. ok is false when every slot is set.
func NextMissingSlot(p domain.Preferences) (Question, bool) {
	for _, q := range Questions {
		if !slotSet(p, q.Slot) {
			return q, true
		}
	}
	return Question{}, false
}

// Complete reports whether all five slots are set.
func Complete(p domain.Preferences) bool {
	_, missing := NextMissingSlot(p)
	return !missing
}

func slotSet(p domain.Preferences, slot Slot) bool {
	switch slot {
	case SlotBudget:
		return p.Budget != nil
	case SlotPeople:
		return p.People != nil
	case SlotArea:
		return p.Area != nil
	case SlotCuisine:
		return p.Cuisine != nil
	case SlotOccasion:
		return p.Occasion != nil
	default:
		return false
	}
}
