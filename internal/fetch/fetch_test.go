package fetch

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/MrSnakeDoc/boardwatch/internal/domain"
)

func TestGetSendsBrowserHeaders(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasPrefix(r.UserAgent(), "Mozilla/5.0") {
			w.WriteHeader(http.StatusForbidden)
			return
		}
		if r.Header.Get("Accept-Language") == "" {
			w.WriteHeader(http.StatusForbidden)
			return
		}
		_, _ = w.Write([]byte("<html>ok</html>"))
	}))
	defer ts.Close()

	f := New(Options{Timeout: time.Second})
	body, err := f.Get(context.Background(), ts.URL)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if string(body) != "<html>ok</html>" {
		t.Errorf("Get() body = %q", body)
	}
}

func TestGetNon2xxIsFetchError(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer ts.Close()

	_, err := New(Options{Timeout: time.Second}).Get(context.Background(), ts.URL)
	if !errors.Is(err, domain.ErrFetch) {
		t.Fatalf("Get() error = %v, want ErrFetch", err)
	}
	if !strings.Contains(err.Error(), "502") {
		t.Errorf("error should mention the status: %v", err)
	}
}

func TestGetHonorsContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := New(Options{Timeout: time.Second, RPS: 1}).Get(ctx, "http://127.0.0.1:1")
	if !errors.Is(err, domain.ErrFetch) {
		t.Errorf("Get() with cancelled context = %v, want ErrFetch", err)
	}
}
