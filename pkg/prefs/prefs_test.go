package prefs

import (
	"testing"

	"resrv/pkg/domain"
)

func TestParseDigits(t *testing.T) {
	cases := []struct {
		in   string
		want int
		ok   bool
	}{
		{"500", 500, true},
		{"大概500元", 500, true},
		{"3 或 4 個", 34, true},
		{"0", 0, true},
		{"兩個人", 0, false},
		{"", 0, false},
		{"no numbers here", 0, false},
	}
	for _, tc := range cases {
		got, ok := ParseDigits(tc.in)
		if ok != tc.ok || got != tc.want {
			t.Fatalf("ParseDigits(%q) = (%d, %v), want (%d, %v)", tc.in, got, ok, tc.want, tc.ok)
		}
	}
}

func TestNextMissingSlotOrder(t *testing.T) {
	p := domain.Preferences{}
	wantOrder := []Slot{SlotBudget, SlotPeople, SlotArea, SlotCuisine, SlotOccasion}
	for _, want := range wantOrder {
		q, ok := NextMissingSlot(p)
		if !ok {
			t.Fatalf("expected missing slot %s, got none", want)
		}
		if q.Slot != want {
			t.Fatalf("missing slot = %s, want %s", q.Slot, want)
		}
		if q.Prompt == "" {
			t.Fatalf("slot %s has empty prompt", q.Slot)
		}
		p, _ = FillNextSlot("500", p)
	}
	if _, ok := NextMissingSlot(p); ok {
		t.Fatalf("expected no missing slot on full record")
	}
	if !Complete(p) {
		t.Fatalf("full record should be complete")
	}
}

func TestNextMissingSlotSingleGap(t *testing.T) {
	full := fullPrefs()
	for _, slot := range []Slot{SlotBudget, SlotPeople, SlotArea, SlotCuisine, SlotOccasion} {
		p := full
		switch slot {
		case SlotBudget:
			p.Budget = nil
		case SlotPeople:
			p.People = nil
		case SlotArea:
			p.Area = nil
		case SlotCuisine:
			p.Cuisine = nil
		case SlotOccasion:
			p.Occasion = nil
		}
		q, ok := NextMissingSlot(p)
		if !ok || q.Slot != slot {
			t.Fatalf("single gap %s: got (%v, %v)", slot, q.Slot, ok)
		}
	}
}

func TestMergeNilNeverClobbers(t *testing.T) {
	base := fullPrefs()
	merged := Merge(base, domain.Preferences{})
	if *merged.Budget != 500 || *merged.People != 2 || *merged.Area != "信義" ||
		*merged.Cuisine != "日式" || *merged.Occasion != "約會" {
		t.Fatalf("empty incoming changed base: %+v", merged)
	}
}

func TestMergeOverridesAndTrims(t *testing.T) {
	base := domain.Preferences{Budget: intPtr(500)}
	merged := Merge(base, domain.Preferences{
		Budget: intPtr(800),
		Area:   strPtr("  大安 "),
	})
	if *merged.Budget != 800 {
		t.Fatalf("budget = %d, want 800", *merged.Budget)
	}
	if *merged.Area != "大安" {
		t.Fatalf("area = %q, want trimmed value", *merged.Area)
	}
	if merged.People != nil || merged.Cuisine != nil || merged.Occasion != nil {
		t.Fatalf("unrelated slots should stay unset: %+v", merged)
	}
}

func TestMergeRejectsEmptyText(t *testing.T) {
	base := domain.Preferences{Cuisine: strPtr("火鍋")}
	merged := Merge(base, domain.Preferences{Cuisine: strPtr("   ")})
	if merged.Cuisine == nil || *merged.Cuisine != "火鍋" {
		t.Fatalf("blank incoming text must not clobber: %+v", merged.Cuisine)
	}
}

func TestMergeDoesNotAliasIncoming(t *testing.T) {
	n := 300
	merged := Merge(domain.Preferences{}, domain.Preferences{Budget: &n})
	n = 999
	if *merged.Budget != 300 {
		t.Fatalf("merged budget aliases incoming pointer: %d", *merged.Budget)
	}
}

func TestFillNextSlotNumeric(t *testing.T) {
	p, prompt := FillNextSlot("大概500元", domain.Preferences{})
	if prompt != "" {
		t.Fatalf("unexpected prompt %q", prompt)
	}
	if p.Budget == nil || *p.Budget != 500 {
		t.Fatalf("budget = %v, want 500", p.Budget)
	}
	q, ok := NextMissingSlot(p)
	if !ok || q.Slot != SlotPeople {
		t.Fatalf("next slot = %v, want people", q.Slot)
	}
}

func TestFillNextSlotNumericMiss(t *testing.T) {
	base := domain.Preferences{Budget: intPtr(500)}
	p, prompt := FillNextSlot("兩個人", base)
	if prompt != RetryNumericPrompt {
		t.Fatalf("prompt = %q, want retry prompt", prompt)
	}
	if p.People != nil {
		t.Fatalf("record must stay unchanged on numeric miss: %+v", p)
	}
	if *p.Budget != 500 {
		t.Fatalf("earlier slot lost: %+v", p)
	}
}

func TestFillNextSlotText(t *testing.T) {
	base := domain.Preferences{Budget: intPtr(500), People: intPtr(2)}
	p, prompt := FillNextSlot("  信義區 ", base)
	if prompt != "" {
		t.Fatalf("unexpected prompt %q", prompt)
	}
	if p.Area == nil || *p.Area != "信義區" {
		t.Fatalf("area = %v, want trimmed text", p.Area)
	}
}

func TestFillNextSlotComplete(t *testing.T) {
	full := fullPrefs()
	p, prompt := FillNextSlot("隨便說點什麼", full)
	if prompt != "" {
		t.Fatalf("complete record should produce no prompt, got %q", prompt)
	}
	if *p.Budget != 500 || *p.People != 2 || *p.Area != "信義" || *p.Cuisine != "日式" || *p.Occasion != "約會" {
		t.Fatalf("complete record changed: %+v", p)
	}
}

func fullPrefs() domain.Preferences {
	return domain.Preferences{
		Budget:   intPtr(500),
		People:   intPtr(2),
		Area:     strPtr("信義"),
		Cuisine:  strPtr("日式"),
		Occasion: strPtr("約會"),
	}
}
