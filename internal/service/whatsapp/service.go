package whatsapp

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/mamadbah2/breakeven/internal/config"
	"github.com/mamadbah2/breakeven/internal/domain/models"
	"github.com/mamadbah2/breakeven/internal/service/commands"
	"github.com/mamadbah2/breakeven/internal/service/reporting"
	client "github.com/mamadbah2/breakeven/pkg/clients/whatsapp"
)

const (
	sendTimeout = 10 * time.Second

	// seenWindow is how many inbound message ids are kept for redelivery checks.
	seenWindow = 512
)

// MessagingService describes the operations the HTTP layer can perform.
type MessagingService interface {
	VerifyWebhookToken(mode, verifyToken, challenge string) (string, error)
	HandleWebhook(ctx context.Context, payload models.WebhookPayload) error
	SendOutbound(ctx context.Context, req models.OutboundMessageRequest) error
}

// Translator turns free text into a bot command line.
type Translator interface {
	TranslateToCommand(ctx context.Context, input string) (string, error)
}

// MetaWhatsAppService is the production implementation backed by WhatsApp Cloud API.
type MetaWhatsAppService struct {
	cfg        config.WhatsAppConfig
	client     client.Client
	dispatcher commands.Dispatcher
	translator Translator
	seen       *recentIDs
	logger     *zap.Logger
}

// NewMetaWhatsAppService wires a new service instance. translator may be nil.
func NewMetaWhatsAppService(cfg config.WhatsAppConfig, client client.Client, dispatcher commands.Dispatcher, translator Translator, logger *zap.Logger) *MetaWhatsAppService {
	svc := &MetaWhatsAppService{
		cfg:        cfg,
		client:     client,
		dispatcher: dispatcher,
		translator: translator,
		seen:       newRecentIDs(seenWindow),
		logger:     logger,
	}
	if svc.logger == nil {
		svc.logger = zap.NewNop()
	}
	return svc
}

var commandUsage = map[models.CommandType]string{
	models.CommandPrice:      "Usage: /price <category> <raw cost> <margin%>, e.g. /price pizza 2.40 15",
	models.CommandAddCost:    "Usage: /cost <amount> <label>, e.g. /cost 1500 rent",
	models.CommandRemoveCost: "Usage: /uncost <id>, ids are listed by /costs",
	models.CommandTicket:     "Usage: /ticket <amount>, e.g. /ticket 18.50",
	models.CommandCovers:     "Usage: /covers <n>, e.g. /covers 1200",
}

// VerifyWebhookToken validates the callback verification token.
func (s *MetaWhatsAppService) VerifyWebhookToken(mode, verifyToken, challenge string) (string, error) {
	if mode == "" || verifyToken == "" {
		return "", errors.New("missing mode or verify token")
	}

	if !strings.EqualFold(mode, "subscribe") {
		return "", fmt.Errorf("unsupported hub.mode %s", mode)
	}

	if verifyToken != s.cfg.VerifyToken {
		return "", errors.New("invalid verify token")
	}

	return challenge, nil
}

// HandleWebhook processes inbound webhook payloads.
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
	if s.seen.markSeen(msg.ID) {
		s.logger.Debug("ignoring redelivered message", zap.String("message_id", msg.ID))
		return nil
	}

	text := extractMessageText(msg)
	if text == "" {
		s.logger.Debug("ignoring message without text", zap.String("message_id", msg.ID), zap.String("type", msg.Type))
		return nil
	}

	cmd := s.resolveCommand(ctx, text)

	s.logger.Info("parsed inbound command",
		zap.String("from", msg.From),
		zap.String("command", string(cmd.Type)),
		zap.Strings("args", cmd.Args))

	reply := s.reply(ctx, cmd, msg.From)
	return s.send(ctx, msg.From, reply, false)
}

// resolveCommand parses text, asking the translator when it is not a known command.
func (s *MetaWhatsAppService) resolveCommand(ctx context.Context, text string) models.Command {
	cmd := models.ParseCommand(text)
	if cmd.Type != models.CommandUnknown || s.translator == nil {
		return cmd
	}

	line, err := s.translator.TranslateToCommand(ctx, text)
	if err != nil {
		s.logger.Warn("command translation failed", zap.Error(err))
		return cmd
	}
	if line == "" {
		return cmd
	}

	translated := models.ParseCommand(line)
	s.logger.Debug("translated free text", zap.String("input", text), zap.String("command", line))
	return translated
}

func (s *MetaWhatsAppService) reply(ctx context.Context, cmd models.Command, sender string) string {
	if cmd.Type == models.CommandUnknown {
		return "Unknown command.\n" + commands.HelpText
	}

	out, err := s.dispatcher.HandleCommand(ctx, cmd, sender)
	switch {
	case err == nil:
		return out
	case errors.Is(err, commands.ErrInvalidArguments):
		if usage, ok := commandUsage[cmd.Type]; ok {
			return usage
		}
		return commands.HelpText
	case errors.Is(err, commands.ErrUnsupportedCommand):
		return "Unknown command.\n" + commands.HelpText
	default:
		s.logger.Warn("command failed", zap.String("command", string(cmd.Type)), zap.Error(err))
		return reporting.FormatError(err)
	}
}

// SendOutbound lets internal operators push quick notifications via HTTP.
func (s *MetaWhatsAppService) SendOutbound(ctx context.Context, req models.OutboundMessageRequest) error {
	return s.send(ctx, req.To, req.Message, req.PreviewURL)
}

func (s *MetaWhatsAppService) send(ctx context.Context, to, body string, preview bool) error {
	ctxWithTimeout, cancel := context.WithTimeout(ctx, sendTimeout)
	defer cancel()

	_, err := s.client.SendTextMessage(ctxWithTimeout, client.SendTextMessageRequest{
		To:         to,
		Body:       body,
		PreviewURL: preview,
	})
	return err
}

func extractMessageText(msg models.InboundMessage) string {
	if msg.Text != nil {
		return msg.Text.Body
	}

	if msg.Interactive != nil {
		if msg.Interactive.ButtonReply != nil {
			return msg.Interactive.ButtonReply.ID
		}
		if msg.Interactive.ListReply != nil {
			return msg.Interactive.ListReply.ID
		}
	}

	return ""
}
