// Package translate turns English post text into the supported languages.
package translate

import (
	"context"

	"github.com/MrSnakeDoc/boardwatch/internal/domain"
)

// Translator translates text into a target language. Failures wrap
// domain.ErrTranslation.
type Translator interface {
	Translate(ctx context.Context, text string, lang domain.Language) (string, error)
	Name() string
}
