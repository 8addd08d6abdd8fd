package discord

import (
	"bytes"
	"context"
	"crypto/ed25519"
	"encoding/hex"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"

	"github.com/bwmarrin/discordgo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrSnakeDoc/boardwatch/internal/domain"
)

type recorded struct {
	Method string
	Path   string
	Body   map[string]any
}

// fakeDiscord answers every REST call and records it.
type fakeDiscord struct {
	mu    sync.Mutex
	calls []recorded
	srv   *httptest.Server
}

func newFakeDiscord(t *testing.T) *fakeDiscord {
	t.Helper()
	f := &fakeDiscord{}
	f.srv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body map[string]any
		raw, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(raw, &body)
		f.mu.Lock()
		f.calls = append(f.calls, recorded{Method: r.Method, Path: r.URL.EscapedPath(), Body: body})
		f.mu.Unlock()

		w.Header().Set("Content-Type", "application/json")
		if strings.Contains(r.URL.Path, "/commands") {
			_, _ = w.Write([]byte(`[]`))
			return
		}
		_, _ = w.Write([]byte(`{"id":"m1","channel_id":"c1","content":"ok"}`))
	}))
	t.Cleanup(f.srv.Close)
	return f
}

// client rewrites every request to the fake server.
func (f *fakeDiscord) client() *http.Client {
	target, _ := url.Parse(f.srv.URL)
	return &http.Client{Transport: roundTripFunc(func(r *http.Request) (*http.Response, error) {
		r = r.Clone(r.Context())
		r.URL.Scheme = target.Scheme
		r.URL.Host = target.Host
		r.Host = target.Host
		return http.DefaultTransport.RoundTrip(r)
	})}
}

type roundTripFunc func(*http.Request) (*http.Response, error)

func (f roundTripFunc) RoundTrip(r *http.Request) (*http.Response, error) { return f(r) }

func TestTransportSend(t *testing.T) {
	fake := newFakeDiscord(t)
	tr, err := NewTransport("token", fake.client())
	require.NoError(t, err)

	msg := Message{
		Content: "hello",
		Components: []discordgo.MessageComponent{discordgo.ActionsRow{Components: []discordgo.MessageComponent{
			discordgo.Button{Label: "es", CustomID: "translate_es_k", Style: discordgo.PrimaryButton},
		}}},
	}
	require.NoError(t, tr.Send(context.Background(), "c1", msg))

	require.Len(t, fake.calls, 1)
	call := fake.calls[0]
	assert.Equal(t, http.MethodPost, call.Method)
	assert.True(t, strings.HasSuffix(call.Path, "/channels/c1/messages"), call.Path)
	assert.Equal(t, "hello", call.Body["content"])
	assert.Len(t, call.Body["components"], 1)
}

func TestTransportEditOriginalClearsComponents(t *testing.T) {
	fake := newFakeDiscord(t)
	tr, err := NewTransport("token", fake.client())
	require.NoError(t, err)

	corr := domain.Correlation{AppID: "app", Token: "tok", InteractionID: "i1"}
	require.NoError(t, tr.EditOriginal(context.Background(), corr, Message{Content: "done"}))

	require.Len(t, fake.calls, 1)
	call := fake.calls[0]
	assert.Equal(t, http.MethodPatch, call.Method)
	assert.Contains(t, call.Path, "/webhooks/app/tok/messages/")
	assert.Equal(t, "done", call.Body["content"])
	assert.Equal(t, []any{}, call.Body["components"])
}

func TestRegister(t *testing.T) {
	fake := newFakeDiscord(t)
	tr, err := NewTransport("token", fake.client())
	require.NoError(t, err)

	_, err = tr.Register(context.Background(), "app", "guild")
	require.NoError(t, err)
	require.Len(t, fake.calls, 1)
	assert.Equal(t, http.MethodPut, fake.calls[0].Method)
	assert.True(t, strings.HasSuffix(fake.calls[0].Path, "/applications/app/guilds/guild/commands"), fake.calls[0].Path)
}

func TestCommands(t *testing.T) {
	cmds := Commands()
	names := make([]string, 0, len(cmds))
	for _, c := range cmds {
		names = append(names, c.Name)
	}
	assert.Equal(t, []string{"configure-channel", "check-patch-note", "check-notice", "check-event", "status"}, names)

	require.Len(t, cmds[0].Options, 1)
	assert.True(t, cmds[0].Options[0].Required)
	assert.Equal(t, discordgo.ApplicationCommandOptionChannel, cmds[0].Options[0].Type)
	for _, c := range cmds[1:] {
		assert.Empty(t, c.Options)
	}

	cat, ok := CategoryForCommand("check-patch-note")
	assert.True(t, ok)
	assert.Equal(t, domain.CategoryPatchNote, cat)
	_, ok = CategoryForCommand("check-everything")
	assert.False(t, ok)
}

func signedRequest(t *testing.T, priv ed25519.PrivateKey, body string) *http.Request {
	t.Helper()
	ts := "1700000000"
	sig := ed25519.Sign(priv, []byte(ts+body))
	r := httptest.NewRequest(http.MethodPost, "/interactions", bytes.NewBufferString(body))
	r.Header.Set("X-Signature-Ed25519", hex.EncodeToString(sig))
	r.Header.Set("X-Signature-Timestamp", ts)
	return r
}

func TestVerifier(t *testing.T) {
	pub, priv, err := ed25519.GenerateKey(nil)
	require.NoError(t, err)

	parsed, err := ParsePublicKey(hex.EncodeToString(pub))
	require.NoError(t, err)
	v := NewVerifier(parsed)

	t.Run("valid", func(t *testing.T) {
		r := signedRequest(t, priv, `{"type":1}`)
		require.NoError(t, v.Verify(r))
		body, _ := io.ReadAll(r.Body)
		assert.Equal(t, `{"type":1}`, string(body), "body must stay readable")
	})

	t.Run("tampered body", func(t *testing.T) {
		r := signedRequest(t, priv, `{"type":1}`)
		r.Body = io.NopCloser(bytes.NewBufferString(`{"type":2}`))
		assert.ErrorIs(t, v.Verify(r), domain.ErrAuth)
	})

	t.Run("missing headers", func(t *testing.T) {
		r := httptest.NewRequest(http.MethodPost, "/interactions", bytes.NewBufferString(`{}`))
		assert.ErrorIs(t, v.Verify(r), domain.ErrAuth)
	})
}

func TestParsePublicKey(t *testing.T) {
	_, err := ParsePublicKey("zz")
	assert.Error(t, err)
	_, err = ParsePublicKey("abcd")
	assert.Error(t, err)
}
