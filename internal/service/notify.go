package service

import (
	"context"
	"regexp"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/retailpulse/loyalty-analytics-go/internal/domain"
	"github.com/retailpulse/loyalty-analytics-go/internal/infra/observability"
	"github.com/retailpulse/loyalty-analytics-go/internal/infra/resilience"
	"github.com/retailpulse/loyalty-analytics-go/internal/port"
)

var mobilePattern = regexp.MustCompile(`^\+?\d{10,15}$`)

// NotifierService dispatches loyalty progress messages over SMS to
// customers who have not yet unlocked a reward. Dispatch is synchronous
// and batched: the caller gets one outcome per recipient.
type NotifierService struct {
	sender   port.SMSSender
	bulkhead *resilience.Bulkhead
	mockMode bool
	metrics  *observability.Metrics
	logger   *zap.Logger
}

// NewNotifierService wires the SMS dispatch path.
func NewNotifierService(sender port.SMSSender, bulkhead *resilience.Bulkhead, mockMode bool, metrics *observability.Metrics, logger *zap.Logger) *NotifierService {
	return &NotifierService{
		sender:   sender,
		bulkhead: bulkhead,
		mockMode: mockMode,
		metrics:  metrics,
		logger:   logger,
	}
}

// Dispatch sends each no-reward customer their progress message.
// Recipients with malformed mobile numbers are reported as
// invalid_number without touching the SMS provider. A failure for one
// recipient never aborts the rest of the batch.
func (s *NotifierService) Dispatch(ctx context.Context, datasetID string, rows []domain.AnalyzedCustomer, limit int) (*domain.NotificationBatch, error) {
	ctx, span := tracer.Start(ctx, "NotifierService.Dispatch")
	defer span.End()

	recipients := make([]domain.AnalyzedCustomer, 0)
	for _, r := range rows {
		if r.AssignedReward == domain.RewardNone {
			recipients = append(recipients, r)
		}
	}
	if limit > 0 && len(recipients) > limit {
		recipients = recipients[:limit]
	}
	if len(recipients) == 0 {
		return nil, &domain.ErrEmptyResult{Stage: "notify", Message: "no customers without a reward to notify"}
	}
	span.SetAttributes(attribute.Int("notify.recipients", len(recipients)))

	outcomes := make([]domain.NotificationOutcome, len(recipients))

	g, gctx := errgroup.WithContext(ctx)
	for i, r := range recipients {
		i, r := i, r
		g.Go(func() error {
			outcomes[i] = s.dispatchOne(gctx, r)
			return nil
		})
	}
	// Workers never return errors; Wait only propagates ctx cancellation.
	if err := g.Wait(); err != nil {
		return nil, err
	}

	batch := &domain.NotificationBatch{
		BatchID:      uuid.NewString(),
		DatasetID:    datasetID,
		Outcomes:     outcomes,
		DispatchedAt: time.Now(),
	}
	for _, o := range outcomes {
		s.metrics.IncrNotification(o.Status)
		switch o.Status {
		case domain.NotifySent, domain.NotifyMocked:
			batch.Sent++
		default:
			batch.Failed++
		}
	}

	s.logger.Info("notification batch dispatched",
		zap.String("batch_id", batch.BatchID),
		zap.String("dataset_id", datasetID),
		zap.Int("sent", batch.Sent),
		zap.Int("failed", batch.Failed),
	)
	return batch, nil
}

func (s *NotifierService) dispatchOne(ctx context.Context, r domain.AnalyzedCustomer) domain.NotificationOutcome {
	outcome := domain.NotificationOutcome{CustomerID: r.CustomerID, Mobile: r.Mobile}

	if !mobilePattern.MatchString(r.Mobile) {
		outcome.Status = domain.NotifyInvalidNumber
		outcome.Error = "mobile number is not a valid phone number"
		return outcome
	}

	if err := s.bulkhead.Acquire(ctx); err != nil {
		outcome.Status = domain.NotifyFailed
		outcome.Error = err.Error()
		return outcome
	}
	defer s.bulkhead.Release()

	if s.mockMode {
		s.logger.Info("mock SMS",
			zap.String("customer_id", r.CustomerID),
			zap.String("to", r.Mobile),
		)
		outcome.Status = domain.NotifyMocked
		return outcome
	}

	if err := s.sender.Send(ctx, r.Mobile, r.ProgressMessage); err != nil {
		s.logger.Warn("SMS send failed",
			zap.String("customer_id", r.CustomerID),
			zap.Error(err),
		)
		outcome.Status = domain.NotifyFailed
		outcome.Error = err.Error()
		return outcome
	}

	outcome.Status = domain.NotifySent
	return outcome
}
