package whatsapp

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/mamadbah2/household/internal/config"
	"github.com/mamadbah2/household/internal/domain/models"
	"github.com/mamadbah2/household/internal/service/commands"
	client "github.com/mamadbah2/household/pkg/clients/whatsapp"
)

// ErrDisabled is returned when outbound messaging is not configured.
var ErrDisabled = errors.New("whatsapp messaging is not configured")

// MessagingService describes the operations the HTTP layer and the scheduler perform.
type MessagingService interface {
	VerifyWebhookToken(mode, verifyToken, challenge string) (string, error)
	HandleWebhook(ctx context.Context, payload models.WebhookPayload) error
	SendOutbound(ctx context.Context, req models.OutboundMessageRequest) error
}

// MetaWhatsAppService is the production implementation backed by WhatsApp Cloud API.
type MetaWhatsAppService struct {
	cfg        config.WhatsAppConfig
	client     client.Client
	dispatcher commands.Dispatcher
	seen       *seenMessages
	logger     *zap.Logger
}

// NewMetaWhatsAppService wires a new service instance. client may be nil when
// outbound messaging is disabled; inbound commands are then applied without a reply.
func NewMetaWhatsAppService(cfg config.WhatsAppConfig, c client.Client, dispatcher commands.Dispatcher, logger *zap.Logger) *MetaWhatsAppService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &MetaWhatsAppService{
		cfg:        cfg,
		client:     c,
		dispatcher: dispatcher,
		seen:       newSeenMessages(time.Hour),
		logger:     logger,
	}
}

// VerifyWebhookToken validates the callback verification token.
func (s *MetaWhatsAppService) VerifyWebhookToken(mode, verifyToken, challenge string) (string, error) {
	if mode == "" || verifyToken == "" {
		return "", errors.New("missing mode or verify token")
	}
	if !strings.EqualFold(mode, "subscribe") {
		return "", fmt.Errorf("unsupported hub.mode %s", mode)
	}
	if s.cfg.VerifyToken == "" || verifyToken != s.cfg.VerifyToken {
		return "", errors.New("invalid verify token")
	}
	return challenge, nil
}

// HandleWebhook processes every inbound message of the payload and returns
// the first failure.
func (s *MetaWhatsAppService) HandleWebhook(ctx context.Context, payload models.WebhookPayload) error {
	var firstErr error

	for _, entry := range payload.Entry {
		for _, change := range entry.Changes {
			for _, msg := range change.Value.Messages {
				if err := s.handleInboundMessage(ctx, msg); err != nil {
					s.logger.Error("failed to handle inbound message", zap.Error(err), zap.String("message_id", msg.ID))
					if firstErr == nil {
						firstErr = err
					}
				}
			}
		}
	}

	return firstErr
}

func (s *MetaWhatsAppService) handleInboundMessage(ctx context.Context, msg models.InboundMessage) error {
	if !s.allowed(msg.From) {
		s.logger.Warn("ignoring message from unknown sender", zap.String("from", msg.From))
		return nil
	}
	// Meta redelivers callbacks it considers unacknowledged.
	if msg.ID != "" && !s.seen.markNew(msg.ID) {
		s.logger.Debug("duplicate message skipped", zap.String("message_id", msg.ID))
		return nil
	}

	text := msg.Body()
	if text == "" {
		return s.reply(ctx, msg.From, commands.Usage)
	}

	cmd := models.ParseCommand(text)
	s.logger.Info("parsed inbound command",
		zap.String("from", msg.From),
		zap.String("command", string(cmd.Type)),
		zap.Strings("args", cmd.Args))

	outbound, err := s.dispatcher.HandleCommand(ctx, cmd, msg.From)
	if err != nil {
		s.logger.Warn("command rejected", zap.String("command", string(cmd.Type)), zap.Error(err))
		outbound = commands.Reply(err)
	}

	return s.reply(ctx, msg.From, outbound)
}

func (s *MetaWhatsAppService) reply(ctx context.Context, to, body string) error {
	if s.client == nil {
		return nil
	}
	ctxWithTimeout, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	_, err := s.client.SendTextMessage(ctxWithTimeout, client.SendTextMessageRequest{To: to, Body: body})
	return err
}

func (s *MetaWhatsAppService) allowed(from string) bool {
	return len(s.cfg.AllowedSenders) == 0 || slices.Contains(s.cfg.AllowedSenders, from)
}

// SendOutbound pushes a notification, e.g. the daily reminder.
func (s *MetaWhatsAppService) SendOutbound(ctx context.Context, req models.OutboundMessageRequest) error {
	if s.client == nil {
		return ErrDisabled
	}
	ctxWithTimeout, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	_, err := s.client.SendTextMessage(ctxWithTimeout, client.SendTextMessageRequest{
		To:         req.To,
		Body:       req.Message,
		PreviewURL: req.PreviewURL,
	})
	return err
}
