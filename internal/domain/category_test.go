package domain

import (
	"errors"
	"testing"
	"time"
)

func TestParseCategory(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		want    Category
		wantErr bool
	}{
		{name: "exact", raw: "notice", want: CategoryNotice},
		{name: "mixed case with spaces", raw: "  Patch Note ", want: CategoryPatchNote},
		{name: "event", raw: "EVENT", want: CategoryEvent},
		{name: "unknown", raw: "giveaway", wantErr: true},
		{name: "empty", raw: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseCategory(tt.raw)
			if tt.wantErr {
				if !errors.Is(err, ErrInvalidCategory) {
					t.Fatalf("ParseCategory(%q) error = %v, want ErrInvalidCategory", tt.raw, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseCategory(%q) unexpected error: %v", tt.raw, err)
			}
			if got != tt.want {
				t.Errorf("ParseCategory(%q) = %q, want %q", tt.raw, got, tt.want)
			}
		})
	}
}

func TestCategoryTitleAndSlug(t *testing.T) {
	if got := CategoryPatchNote.Title(); got != "Patch Note" {
		t.Errorf("Title() = %q, want %q", got, "Patch Note")
	}
	if got := CategoryPatchNote.Slug(); got != "patch-note" {
		t.Errorf("Slug() = %q, want %q", got, "patch-note")
	}
}

func TestTranslationEntryExpired(t *testing.T) {
	now := time.Date(2026, 10, 18, 12, 0, 0, 0, time.UTC)
	e := &TranslationEntry{ExpiresAt: now.Add(time.Hour)}

	if e.Expired(now) {
		t.Error("entry should not be expired before its TTL")
	}
	if !e.Expired(now.Add(time.Hour)) {
		t.Error("entry should be expired exactly at its TTL")
	}
}

func TestLookupLanguage(t *testing.T) {
	zh, ok := LookupLanguage("zh")
	if !ok || zh.BackendCode != "zh-CN" {
		t.Errorf("LookupLanguage(zh) = %+v, %v", zh, ok)
	}
	if _, ok := LookupLanguage("fr"); ok {
		t.Error("LookupLanguage(fr) should not be supported")
	}
}
