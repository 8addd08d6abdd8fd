package translate

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/MrSnakeDoc/boardwatch/internal/domain"
	"github.com/MrSnakeDoc/boardwatch/internal/utils"
)

// DefaultGoogleURL is the public web translation endpoint.
const DefaultGoogleURL = "https://translate.googleapis.com/translate_a/single"

// Google calls the keyless web translation endpoint.
type Google struct {
	endpoint string
	client   *http.Client
	limiter  *rate.Limiter
}

// NewGoogle returns a Google translator. An empty endpoint uses DefaultGoogleURL.
func NewGoogle(endpoint string, timeout time.Duration) *Google {
	if endpoint == "" {
		endpoint = DefaultGoogleURL
	}
	return &Google{
		endpoint: endpoint,
		client:   &http.Client{Timeout: timeout},
		limiter:  rate.NewLimiter(rate.Limit(5), 5),
	}
}

func (g *Google) Name() string { return "google" }

func (g *Google) Translate(ctx context.Context, text string, lang domain.Language) (string, error) {
	if strings.TrimSpace(text) == "" {
		return text, nil
	}
	if err := g.limiter.Wait(ctx); err != nil {
		return "", fmt.Errorf("%w: %w", domain.ErrTranslation, err)
	}

	query := url.Values{
		"client": {"gtx"},
		"sl":     {"auto"},
		"tl":     {lang.BackendCode},
		"dt":     {"t"},
	}
	form := url.Values{"q": {text}}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.endpoint+"?"+query.Encode(), strings.NewReader(form.Encode()))
	if err != nil {
		return "", fmt.Errorf("%w: %w", domain.ErrTranslation, err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded;charset=utf-8")

	resp, err := g.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %w", domain.ErrTranslation, err)
	}
	defer utils.Close(resp.Body)

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("%w: google returned %d", domain.ErrTranslation, resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return "", fmt.Errorf("%w: %w", domain.ErrTranslation, err)
	}
	return parseGoogle(body)
}

// parseGoogle reads the nested array answer:
// [[["translated","source",...],...], null, "en", ...]
func parseGoogle(body []byte) (string, error) {
	var root []json.RawMessage
	if err := json.Unmarshal(body, &root); err != nil || len(root) == 0 {
		return "", fmt.Errorf("%w: unexpected response shape", domain.ErrTranslation)
	}

	var segments [][]any
	if err := json.Unmarshal(root[0], &segments); err != nil {
		return "", fmt.Errorf("%w: unexpected segments: %w", domain.ErrTranslation, err)
	}

	var sb strings.Builder
	for _, seg := range segments {
		if len(seg) == 0 {
			continue
		}
		if s, ok := seg[0].(string); ok {
			sb.WriteString(s)
		}
	}
	if sb.Len() == 0 {
		return "", fmt.Errorf("%w: empty translation", domain.ErrTranslation)
	}
	return sb.String(), nil
}
