package slack_test

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	slackadapter "github.com/randomtoy/tarotbot/internal/adapters/slack"
	"github.com/randomtoy/tarotbot/internal/app"
	"github.com/randomtoy/tarotbot/internal/domain"
)

type post struct {
	channel string
	text    string
}

type fakeMessenger struct {
	mu    sync.Mutex
	posts []post
	errs  []error
}

func (m *fakeMessenger) PostMessage(_ context.Context, channelID, text string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.posts = append(m.posts, post{channel: channelID, text: text})
	if len(m.errs) > 0 {
		err := m.errs[0]
		m.errs = m.errs[1:]
		return err
	}
	return nil
}

type stubGenerator struct {
	out     string
	release chan struct{}

	mu      sync.Mutex
	prompts []string
}

func (s *stubGenerator) Generate(_ context.Context, prompt string) (string, error) {
	if s.release != nil {
		<-s.release
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.prompts = append(s.prompts, prompt)
	return s.out, nil
}

type zeroRNG struct{}

func (zeroRNG) Intn(int) int { return 0 }

type harness struct {
	e      *echo.Echo
	events *slackadapter.EventHandler
}

// deliver posts a webhook and waits for the mention it triggers to finish.
func (h harness) deliver(body string, header http.Header) *httptest.ResponseRecorder {
	rec := send(h.e, body, header)
	h.events.Wait()
	return rec
}

func newEcho(t *testing.T, gen *stubGenerator, msg *fakeMessenger, secret string, readings map[string]domain.ReadingConfig) harness {
	t.Helper()
	return newEchoWithLogger(t, gen, msg, secret, readings, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func newEchoWithLogger(t *testing.T, gen *stubGenerator, msg *fakeMessenger, secret string, readings map[string]domain.ReadingConfig, logger *slog.Logger) harness {
	t.Helper()

	catalog, err := domain.NewCatalog([]domain.Card{
		{Name: "The Star", Upright: "Hope.", Reversed: "Despair."},
	})
	require.NoError(t, err)
	if readings == nil {
		readings = map[string]domain.ReadingConfig{
			"three_card": {Method: "3 cards", Rule: "past, present, future", OutputFormat: `{"past":"","present":"","future":""}`},
		}
	}
	svc := app.NewTarotService(catalog, domain.NewRegistry(readings), app.NewInterpreter(gen, logger), zeroRNG{}, "m")

	e := echo.New()
	events := slackadapter.NewEventHandler(svc, msg, "", secret, logger)
	events.Register(e)
	return harness{e: e, events: events}
}

func send(e *echo.Echo, body string, header http.Header) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/slack/events", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	for k, v := range header {
		req.Header[k] = v
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func mentionPayload(text, botID string) string {
	event := map[string]any{
		"type":     "app_mention",
		"user":     "U123",
		"text":     text,
		"ts":       "1700000000.000100",
		"channel":  "C42",
		"event_ts": "1700000000.000100",
	}
	if botID != "" {
		event["bot_id"] = botID
	}
	b, _ := json.Marshal(map[string]any{
		"token":      "tok",
		"team_id":    "T1",
		"api_app_id": "A1",
		"type":       "event_callback",
		"event_id":   "Ev1",
		"event_time": 1700000000,
		"event":      event,
	})
	return string(b)
}

func TestURLVerification_EchoesChallenge(t *testing.T) {
	msg := &fakeMessenger{}
	e := newEcho(t, &stubGenerator{}, msg, "", nil)

	challenge := "3eZbrw1aBm2rZgRNFdxV2595E9CY3gmdALWMmHkvFXO7tYXAYM8P"
	rec := e.deliver(`{"token":"tok","challenge":"`+challenge+`","type":"url_verification"}`, nil)

	require.Equal(t, http.StatusOK, rec.Code)
	var got map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, challenge, got["challenge"])
	assert.Empty(t, msg.posts)
}

func TestMention_PostsReading(t *testing.T) {
	gen := &stubGenerator{out: "```json\n{\"past\":\"calm\",\"present\":\"bright\",\"future\":\"open\"}\n```"}
	msg := &fakeMessenger{}
	e := newEcho(t, gen, msg, "", nil)

	rec := e.deliver(mentionPayload("<@UBOT> I feel lost", ""), nil)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())

	require.Len(t, msg.posts, 1)
	assert.Equal(t, "C42", msg.posts[0].channel)
	text := msg.posts[0].text
	assert.Equal(t, 3, strings.Count(text, "• The Star (upright): Hope."))
	assert.Contains(t, text, "*Past*: calm")
	assert.Contains(t, text, "*Present*: bright")
	assert.Contains(t, text, "*Future*: open")

	require.Len(t, gen.prompts, 1)
	assert.Contains(t, gen.prompts[0], "I feel lost")
	assert.NotContains(t, gen.prompts[0], "<@UBOT>")
}

func TestMention_FromBotIgnored(t *testing.T) {
	gen := &stubGenerator{out: `{}`}
	msg := &fakeMessenger{}
	e := newEcho(t, gen, msg, "", nil)

	rec := e.deliver(mentionPayload("<@UBOT> hello", "B999"), nil)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, msg.posts)
	assert.Empty(t, gen.prompts)
}

func TestMention_RedeliverySkipped(t *testing.T) {
	gen := &stubGenerator{out: `{}`}
	msg := &fakeMessenger{}
	e := newEcho(t, gen, msg, "", nil)

	rec := e.deliver(mentionPayload("<@UBOT> hello", ""), http.Header{
		"X-Slack-Retry-Num":    {"1"},
		"X-Slack-Retry-Reason": {"http_timeout"},
	})

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, msg.posts)
}

func TestMention_RetryAfterFailedDeliveryAnswered(t *testing.T) {
	msg := &fakeMessenger{}
	e := newEcho(t, &stubGenerator{out: `{"past":"a"}`}, msg, "", nil)

	rec := e.deliver(mentionPayload("<@UBOT> hello", ""), http.Header{
		"X-Slack-Retry-Num":    {"1"},
		"X-Slack-Retry-Reason": {"http_error"},
	})

	require.Equal(t, http.StatusOK, rec.Code)
	require.Len(t, msg.posts, 1)
	assert.Contains(t, msg.posts[0].text, "*Past*: a")
}

func TestMention_AckedBeforeReading(t *testing.T) {
	gen := &stubGenerator{out: `{"past":"a"}`, release: make(chan struct{})}
	msg := &fakeMessenger{}
	e := newEcho(t, gen, msg, "", nil)

	rec := send(e.e, mentionPayload("<@UBOT> hello", ""), nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())

	msg.mu.Lock()
	assert.Empty(t, msg.posts)
	msg.mu.Unlock()

	close(gen.release)
	e.events.Wait()
	require.Len(t, msg.posts, 1)
	assert.Equal(t, "C42", msg.posts[0].channel)
}

func TestMention_MidSentence(t *testing.T) {
	gen := &stubGenerator{out: `{}`}
	e := newEcho(t, gen, &fakeMessenger{}, "", nil)

	e.deliver(mentionPayload("hey <@UBOT> will I find a job?", ""), nil)

	require.Len(t, gen.prompts, 1)
	assert.Contains(t, gen.prompts[0], "- Concern: will I find a job?")
	assert.NotContains(t, gen.prompts[0], "Concern: hey")
	assert.NotContains(t, gen.prompts[0], "<@UBOT>")
}

func TestMention_LogsModelAndLatency(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))
	e := newEchoWithLogger(t, &stubGenerator{out: `{"past":"a"}`}, &fakeMessenger{}, "", nil, logger)

	e.deliver(mentionPayload("<@UBOT> hello", ""), nil)

	logs := buf.String()
	assert.Contains(t, logs, "slack reading ready")
	assert.Contains(t, logs, "model=m")
	assert.Contains(t, logs, "latency_ms=")
}

func TestMention_ReadFailurePostsError(t *testing.T) {
	msg := &fakeMessenger{}
	// No three_card config: the read itself fails.
	e := newEcho(t, &stubGenerator{out: `{}`}, msg, "", map[string]domain.ReadingConfig{
		"one_card": {Method: "1 card"},
	})

	rec := e.deliver(mentionPayload("<@UBOT> hello", ""), nil)

	require.Equal(t, http.StatusOK, rec.Code)
	require.Len(t, msg.posts, 1)
	assert.Equal(t, "C42", msg.posts[0].channel)
	assert.Contains(t, msg.posts[0].text, "Sorry, something went wrong")
	assert.Contains(t, msg.posts[0].text, "invalid config_key")
}

func TestMention_PostFailureThenErrorPost(t *testing.T) {
	msg := &fakeMessenger{errs: []error{errors.New("channel_not_found")}}
	e := newEcho(t, &stubGenerator{out: `{"past":"a"}`}, msg, "", nil)

	rec := e.deliver(mentionPayload("<@UBOT> hi", ""), nil)

	require.Equal(t, http.StatusOK, rec.Code)
	require.Len(t, msg.posts, 2)
	assert.Contains(t, msg.posts[1].text, "channel_not_found")
}

func TestMention_DoubleFailureStillAcknowledged(t *testing.T) {
	msg := &fakeMessenger{errs: []error{errors.New("first"), errors.New("second")}}
	e := newEcho(t, &stubGenerator{out: `{"past":"a"}`}, msg, "", nil)

	rec := e.deliver(mentionPayload("<@UBOT> hi", ""), nil)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
	assert.Len(t, msg.posts, 2)
}

func TestUnknownEvent_Acknowledged(t *testing.T) {
	msg := &fakeMessenger{}
	e := newEcho(t, &stubGenerator{}, msg, "", nil)

	rec := e.deliver(`{"type":"app_rate_limited","token":"tok","team_id":"T1","minute_rate_limited":1518467820,"api_app_id":"A1"}`, nil)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
	assert.Empty(t, msg.posts)
}

func TestInvalidPayload(t *testing.T) {
	e := newEcho(t, &stubGenerator{}, &fakeMessenger{}, "", nil)

	rec := e.deliver(`not json`, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func sign(secret, body string, ts time.Time) http.Header {
	stamp := strconv.FormatInt(ts.Unix(), 10)
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte("v0:" + stamp + ":" + body))
	return http.Header{
		"X-Slack-Request-Timestamp": {stamp},
		"X-Slack-Signature":         {"v0=" + hex.EncodeToString(mac.Sum(nil))},
	}
}

func TestSignature(t *testing.T) {
	const secret = "s3cr3t"
	e := newEcho(t, &stubGenerator{}, &fakeMessenger{}, secret, nil)
	body := `{"token":"tok","challenge":"abc","type":"url_verification"}`

	rec := e.deliver(body, sign(secret, body, time.Now()))
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = e.deliver(body, sign("wrong", body, time.Now()))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = e.deliver(body, nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
