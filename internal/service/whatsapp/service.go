package whatsapp

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	client "github.com/mamadbah2/boilerdesk/pkg/clients/whatsapp"
)

const sendTimeout = 10 * time.Second

// ErrNoRecipient is returned when no broadcast group is configured.
var ErrNoRecipient = errors.New("no whatsapp recipient configured")

// Summarizer renders the message for a day's rates.
type Summarizer interface {
	RatesSummary(ctx context.Context, date string) (string, error)
}

// BroadcastService pushes the day's rates to the configured group.
type BroadcastService struct {
	client     client.Client
	summarizer Summarizer
	groupID    string
	logger     *zap.Logger
}

// NewBroadcastService wires a new service instance.
func NewBroadcastService(groupID string, c client.Client, summarizer Summarizer, logger *zap.Logger) *BroadcastService {
	svc := &BroadcastService{
		client:     c,
		summarizer: summarizer,
		groupID:    groupID,
		logger:     logger,
	}
	if svc.logger == nil {
		svc.logger = zap.NewNop()
	}
	return svc
}

// SendDailyRates sends the summary of date and returns the message id.
func (s *BroadcastService) SendDailyRates(ctx context.Context, date string) (string, error) {
	if s.groupID == "" {
		return "", ErrNoRecipient
	}

	text, err := s.summarizer.RatesSummary(ctx, date)
	if err != nil {
		return "", err
	}

	ctxWithTimeout, cancel := context.WithTimeout(ctx, sendTimeout)
	defer cancel()

	id, err := s.client.SendText(ctxWithTimeout, s.groupID, text)
	if err != nil {
		s.logger.Error("daily rates broadcast failed", zap.String("date", date), zap.Error(err))
		return "", err
	}

	s.logger.Info("daily rates broadcast sent", zap.String("date", date), zap.String("message_id", id))
	return id, nil
}
