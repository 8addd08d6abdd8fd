package domain

import "time"

// Language is a supported translation target.
type Language struct {
	Code        string // short code used in button ids ("zh")
	BackendCode string // code sent to the translation backend ("zh-CN")
	Label       string // button label
	Name        string // human readable name used in prompts
}

// Languages lists the translate buttons in display order.
var Languages = []Language{
	{Code: "es", BackendCode: "es", Label: "🇪🇸 Español", Name: "Spanish"},
	{Code: "pt", BackendCode: "pt", Label: "🇵🇹 Português", Name: "Portuguese"},
	{Code: "zh", BackendCode: "zh-CN", Label: "🇨🇳 中文", Name: "Simplified Chinese"},
}

// LookupLanguage returns the language for a short code.
func LookupLanguage(code string) (Language, bool) {
	for _, l := range Languages {
		if l.Code == code {
			return l, true
		}
	}
	return Language{}, false
}

// EntryMetadata describes the post a cache entry was rendered from.
type EntryMetadata struct {
	Title string `json:"title,omitempty"`
	URL   string `json:"url,omitempty"`
}

// TranslationEntry is a content-addressed translation cache record.
//
// Original and Metadata never change after creation; only Translations grows.
type TranslationEntry struct {
	Key          string            `json:"key"`
	Original     string            `json:"original"`
	Translations map[string]string `json:"translations"`
	Metadata     EntryMetadata     `json:"metadata"`
	CreatedAt    time.Time         `json:"created_at"`
	ExpiresAt    time.Time         `json:"expires_at"`
}

// Expired reports whether the entry is past its TTL at now.
func (e *TranslationEntry) Expired(now time.Time) bool {
	return !e.ExpiresAt.IsZero() && !now.Before(e.ExpiresAt)
}

// Translation returns the cached translation for a language code.
func (e *TranslationEntry) Translation(code string) (string, bool) {
	if e == nil || e.Translations == nil {
		return "", false
	}
	t, ok := e.Translations[code]
	return t, ok
}
