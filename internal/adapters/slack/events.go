// Package slack bridges Slack Events API webhooks to the tarot service.
package slack

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"sync"

	"github.com/labstack/echo/v4"
	"github.com/slack-go/slack"
	"github.com/slack-go/slack/slackevents"

	"github.com/randomtoy/tarotbot/internal/app"
	"github.com/randomtoy/tarotbot/internal/ports"
)

const (
	headerRetryNum    = "X-Slack-Retry-Num"
	headerRetryReason = "X-Slack-Retry-Reason"

	// Slack sends this reason when an earlier delivery was not acked in
	// time. That delivery was received and is already being answered.
	retryReasonTimeout = "http_timeout"
)

// DefaultConfigKey is the reading used for mentions.
const DefaultConfigKey = "three_card"

type eventKind int

const (
	kindUnknown eventKind = iota
	kindURLVerification
	kindMention
)

// inbound is a decoded webhook delivery.
type inbound struct {
	kind      eventKind
	eventType string
	challenge string
	mention   *slackevents.AppMentionEvent
}

type challengeResponse struct {
	Challenge string `json:"challenge"`
}

type statusResponse struct {
	Status string `json:"status"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// EventHandler answers app mentions with a tarot reading.
type EventHandler struct {
	svc           *app.TarotService
	messenger     ports.Messenger
	configKey     string
	signingSecret string
	logger        *slog.Logger

	inflight sync.WaitGroup
}

// NewEventHandler builds the webhook handler. An empty signingSecret
// disables request signature checks.
func NewEventHandler(svc *app.TarotService, messenger ports.Messenger, configKey, signingSecret string, logger *slog.Logger) *EventHandler {
	if configKey == "" {
		configKey = DefaultConfigKey
	}
	return &EventHandler{
		svc:           svc,
		messenger:     messenger,
		configKey:     configKey,
		signingSecret: signingSecret,
		logger:        logger,
	}
}

func (h *EventHandler) Register(e *echo.Echo) {
	e.POST("/slack/events", h.HandleEvents)
}

func (h *EventHandler) HandleEvents(c echo.Context) error {
	body, err := io.ReadAll(c.Request().Body)
	if err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse{Error: "invalid request body"})
	}
	if err := h.verify(c.Request().Header, body); err != nil {
		h.logger.Warn("slack signature rejected", "error", err)
		return c.JSON(http.StatusUnauthorized, errorResponse{Error: "invalid signature"})
	}

	in, err := decodeInbound(body)
	if err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse{Error: "invalid event payload"})
	}

	switch in.kind {
	case kindURLVerification:
		return c.JSON(http.StatusOK, challengeResponse{Challenge: in.challenge})
	case kindMention:
		header := c.Request().Header
		if header.Get(headerRetryReason) == retryReasonTimeout {
			h.logger.Info("skipping slack redelivery",
				"retry", header.Get(headerRetryNum), "channel", in.mention.Channel)
			break
		}
		// Ack within Slack's window; the reading outlives the request.
		ctx := context.WithoutCancel(c.Request().Context())
		h.inflight.Add(1)
		go func() {
			defer h.inflight.Done()
			h.handleMention(ctx, in.mention)
		}()
	default:
		h.logger.Debug("ignoring slack event", "type", in.eventType)
	}

	return c.JSON(http.StatusOK, statusResponse{Status: "ok"})
}

// Wait blocks until every accepted mention has been answered.
func (h *EventHandler) Wait() {
	h.inflight.Wait()
}

func (h *EventHandler) verify(header http.Header, body []byte) error {
	if h.signingSecret == "" {
		return nil
	}
	sv, err := slack.NewSecretsVerifier(header, h.signingSecret)
	if err != nil {
		return err
	}
	if _, err := sv.Write(body); err != nil {
		return err
	}
	return sv.Ensure()
}

func decodeInbound(body []byte) (inbound, error) {
	var envelope struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal(body, &envelope); err != nil {
		return inbound{}, err
	}

	switch envelope.Type {
	case slackevents.URLVerification:
		var ch slackevents.ChallengeResponse
		if err := json.Unmarshal(body, &ch); err != nil {
			return inbound{}, err
		}
		return inbound{kind: kindURLVerification, eventType: envelope.Type, challenge: ch.Challenge}, nil
	case slackevents.CallbackEvent:
		ev, err := slackevents.ParseEvent(json.RawMessage(body), slackevents.OptionNoVerifyToken())
		if err != nil {
			// Inner event types the library does not know are acknowledged and dropped.
			return inbound{kind: kindUnknown, eventType: envelope.Type}, nil
		}
		if m, ok := ev.InnerEvent.Data.(*slackevents.AppMentionEvent); ok {
			return inbound{kind: kindMention, eventType: ev.InnerEvent.Type, mention: m}, nil
		}
		return inbound{kind: kindUnknown, eventType: ev.InnerEvent.Type}, nil
	default:
		return inbound{kind: kindUnknown, eventType: envelope.Type}, nil
	}
}

func (h *EventHandler) handleMention(ctx context.Context, ev *slackevents.AppMentionEvent) {
	if ev.BotID != "" {
		return
	}

	err := h.reply(ctx, ev)
	if err == nil {
		return
	}
	h.logger.ErrorContext(ctx, "slack reading failed", "channel", ev.Channel, "error", err)

	// TODO: decide whether a failed error post should be retried or surfaced; today it is only logged.
	if postErr := h.messenger.PostMessage(ctx, ev.Channel, ErrorMessage(err)); postErr != nil {
		h.logger.ErrorContext(ctx, "failed to post error message", "channel", ev.Channel, "error", postErr)
	}
}

func (h *EventHandler) reply(ctx context.Context, ev *slackevents.AppMentionEvent) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
		}
	}()

	res, err := h.svc.Read(ctx, app.ReadRequest{
		Story:     StripMention(ev.Text),
		ConfigKey: h.configKey,
	})
	if err != nil {
		return fmt.Errorf("read: %w", err)
	}
	h.logger.InfoContext(ctx, "slack reading ready",
		"channel", ev.Channel,
		"config_key", h.configKey,
		"model", res.Model,
		"latency_ms", res.LatencyMS,
	)
	return h.messenger.PostMessage(ctx, ev.Channel, FormatMessage(res))
}
