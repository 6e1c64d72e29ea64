// Package sms delivers text messages through a Twilio-compatible REST API.
package sms

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/sony/gobreaker"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"

	"github.com/retailpulse/loyalty-analytics-go/internal/domain"
	"github.com/retailpulse/loyalty-analytics-go/internal/infra/resilience"
)

var tracer = otel.Tracer("infra/sms")

// Client sends SMS through the gateway's REST API with retry and a
// circuit breaker around each delivery.
type Client struct {
	httpClient *http.Client
	baseURL    string
	accountSID string
	authToken  string
	fromNumber string
	cb         *gobreaker.CircuitBreaker
	cfg        resilience.Config
}

// NewClient creates an SMS gateway client.
func NewClient(httpClient *http.Client, baseURL, accountSID, authToken, fromNumber string, cb *gobreaker.CircuitBreaker, cfg resilience.Config) *Client {
	return &Client{
		httpClient: httpClient,
		baseURL:    strings.TrimRight(baseURL, "/"),
		accountSID: accountSID,
		authToken:  authToken,
		fromNumber: fromNumber,
		cb:         cb,
		cfg:        cfg,
	}
}

// Send delivers one message. Gateway failures surface as external-service
// errors; an open breaker surfaces as a circuit-open error so the
// dispatcher can stop early.
func (c *Client) Send(ctx context.Context, toNumber, message string) error {
	ctx, span := tracer.Start(ctx, "SMSClient.Send")
	defer span.End()
	span.SetAttributes(attribute.String("sms.to", toNumber))

	_, err := c.cb.Execute(func() (any, error) {
		return nil, resilience.RetryWithBackoff(ctx, c.cfg, func() error {
			form := url.Values{}
			form.Set("To", toNumber)
			form.Set("From", c.fromNumber)
			form.Set("Body", message)

			endpoint := fmt.Sprintf("%s/2010-04-01/Accounts/%s/Messages.json", c.baseURL, c.accountSID)
			req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
			if err != nil {
				return err
			}
			req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
			req.SetBasicAuth(c.accountSID, c.authToken)

			resp, err := c.httpClient.Do(req)
			if err != nil {
				return err
			}
			defer resp.Body.Close()

			if resp.StatusCode >= 300 {
				return fmt.Errorf("sms gateway returned status %d", resp.StatusCode)
			}
			return nil
		})
	})

	if err != nil {
		if err == gobreaker.ErrOpenState || err == gobreaker.ErrTooManyRequests {
			return &domain.ErrCircuitOpen{Service: "sms"}
		}
		return &domain.ErrExternalService{Service: "sms", Err: err}
	}
	return nil
}

// MockSender logs messages instead of delivering them. Used in local
// development and tests where no gateway credentials exist.
type MockSender struct {
	logger *zap.Logger
}

// NewMockSender creates a logging-only sender.
func NewMockSender(logger *zap.Logger) *MockSender {
	return &MockSender{logger: logger}
}

// Send logs the message and always succeeds.
func (m *MockSender) Send(_ context.Context, toNumber, message string) error {
	m.logger.Info("mock sms",
		zap.String("to", toNumber),
		zap.String("message", message),
	)
	return nil
}
