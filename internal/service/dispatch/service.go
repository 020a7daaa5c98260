package dispatch

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/matt11seven/fuelogic-enterprise-control-sub000/internal/model"
	"github.com/matt11seven/fuelogic-enterprise-control-sub000/internal/repository"
	"github.com/matt11seven/fuelogic-enterprise-control-sub000/pkg/logger"
	"github.com/matt11seven/fuelogic-enterprise-control-sub000/pkg/messaging"
	"github.com/matt11seven/fuelogic-enterprise-control-sub000/pkg/metrics"
	"github.com/matt11seven/fuelogic-enterprise-control-sub000/pkg/validator"
)

// Config carries dispatch defaults applied when a target leaves a policy
// field unset, plus the contact gateway endpoint.
type Config struct {
	GatewayURL         string
	DefaultTimeout     time.Duration
	DefaultMaxAttempts int
	DefaultRetryDelay  time.Duration
}

// Service runs the end-to-end dispatch protocol: resolve recipients,
// format the payload once, deliver to every recipient concurrently with
// per-recipient retry sequences, log every physical attempt, and report an
// aggregate result.
type Service struct {
	resolver  *Resolver
	formatter *Formatter
	channel   *Channel
	scheduler *Scheduler
	log       repository.DeliveryLogRepository
	targets   repository.WebhookTargetRepository
	broker    messaging.Broker
	metrics   *metrics.Metrics
	logger    *logger.Logger
	cfg       Config
}

// Option tweaks optional service collaborators.
type Option func(*Service)

func WithBroker(broker messaging.Broker) Option {
	return func(s *Service) { s.broker = broker }
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

func WithScheduler(sched *Scheduler) Option {
	return func(s *Service) { s.scheduler = sched }
}

func WithFormatter(f *Formatter) Option {
	return func(s *Service) { s.formatter = f }
}

func NewService(
	contacts ContactDirectory,
	targets repository.WebhookTargetRepository,
	log repository.DeliveryLogRepository,
	cfg Config,
	lg *logger.Logger,
	opts ...Option,
) *Service {
	if cfg.DefaultTimeout <= 0 {
		cfg.DefaultTimeout = defaultTimeout
	}
	if cfg.DefaultMaxAttempts <= 0 {
		cfg.DefaultMaxAttempts = 3
	}
	if cfg.DefaultRetryDelay < 0 {
		cfg.DefaultRetryDelay = 0
	}

	s := &Service{
		resolver:  NewResolver(contacts, lg),
		formatter: NewFormatter(),
		channel:   NewChannel(),
		scheduler: NewScheduler(),
		log:       log,
		targets:   targets,
		logger:    lg,
		cfg:       cfg,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// DispatchEvent fans one logical event out to every active target
// configured for its event type. A configuration error on one target does
// not abort the others.
func (s *Service) DispatchEvent(ctx context.Context, eventType model.EventType, data interface{}, referenceID string) []*model.DispatchResult {
	targets, err := s.targets.ListByEventType(ctx, eventType)
	if err != nil {
		s.logger.Error(err, "failed to load targets", "event_type", string(eventType))
		return nil
	}

	var results []*model.DispatchResult
	for _, target := range targets {
		result, err := s.Dispatch(ctx, target, eventType, data, referenceID)
		if err != nil {
			s.logger.Error(err, "dispatch aborted",
				"target", target.Name, "event_type", string(eventType))
			continue
		}
		results = append(results, result)
	}
	return results
}

// Dispatch delivers one event to one target. It returns an error only for
// configuration problems detected before any network activity; delivery
// failures after that are reported through the result and the delivery
// log, never as an error.
func (s *Service) Dispatch(ctx context.Context, target *model.WebhookTarget, eventType model.EventType, data interface{}, referenceID string) (*model.DispatchResult, error) {
	if err := validator.Struct(target); err != nil {
		return nil, configErrorf("target %s is invalid: %v", target.Name, err)
	}
	if target.Kind == model.IntegrationContactFanout && s.cfg.GatewayURL == "" {
		return nil, configErrorf("contact gateway URL is not configured")
	}

	addresses, skipped, err := s.resolver.Resolve(ctx, target)
	if err != nil {
		return nil, err
	}

	envelope := s.formatter.Format(eventType, data)

	result := &model.DispatchResult{
		TargetID:  target.ID,
		EventType: eventType,
		Failed:    len(skipped),
	}

	maxAttempts := target.MaxAttempts
	if maxAttempts <= 0 {
		maxAttempts = s.cfg.DefaultMaxAttempts
	}
	delay := target.RetryDelay()
	if target.RetryDelaySeconds <= 0 {
		delay = s.cfg.DefaultRetryDelay
	}
	timeout := target.Timeout()
	if target.TimeoutSeconds <= 0 {
		timeout = s.cfg.DefaultTimeout
	}

	var mu sync.Mutex
	var wg sync.WaitGroup
	for _, addr := range addresses {
		wg.Add(1)
		go func(addr RecipientAddress) {
			defer wg.Done()

			body, err := s.recipientBody(envelope, addr)
			if err != nil {
				s.logger.Error(err, "failed to marshal payload",
					"target", target.Name, "recipient", addr.Key())
				mu.Lock()
				result.Failed++
				mu.Unlock()
				return
			}

			res := s.scheduler.Run(ctx, maxAttempts, delay, func(ctx context.Context, attempt int) model.DeliveryOutcome {
				return s.attempt(ctx, target, addr, eventType, referenceID, attempt, body, timeout)
			})

			mu.Lock()
			result.Attempts += res.Attempts
			if res.State == RetrySucceeded {
				result.Succeeded++
			} else {
				result.Failed++
			}
			mu.Unlock()

			if res.State == RetryExhausted {
				if s.metrics != nil {
					s.metrics.DispatchesExhausted.WithLabelValues(string(eventType)).Inc()
				}
				s.logger.Warn("delivery exhausted retry budget",
					"target", target.Name,
					"recipient", addr.Key(),
					"attempts", res.Attempts,
					"last_status", res.Last.StatusCode)
			}
		}(addr)
	}
	wg.Wait()

	result.Delivered = result.Succeeded > 0
	s.publishResult(ctx, result)
	return result, nil
}

// recipientBody serializes the envelope for one recipient. Contact
// fan-out injects the resolved phone number as "numero", overriding any
// same-named field the formatter produced.
func (s *Service) recipientBody(envelope Envelope, addr RecipientAddress) ([]byte, error) {
	if addr.Phone == "" {
		return json.Marshal(envelope)
	}

	personalized := make(Envelope, len(envelope)+2)
	for k, v := range envelope {
		personalized[k] = v
	}
	personalized["numero"] = addr.Phone
	if addr.Name != "" {
		personalized["nome"] = addr.Name
	}
	return json.Marshal(personalized)
}

// attempt performs one physical delivery and records its audit row.
func (s *Service) attempt(ctx context.Context, target *model.WebhookTarget, addr RecipientAddress, eventType model.EventType, referenceID string, attemptNumber int, body []byte, timeout time.Duration) model.DeliveryOutcome {
	url := addr.URL
	if url == "" {
		url = s.cfg.GatewayURL
	}

	var timer *prometheus.Timer
	if s.metrics != nil {
		timer = prometheus.NewTimer(s.metrics.DeliveryLatency.WithLabelValues(string(eventType)))
		if attemptNumber > 1 {
			s.metrics.DeliveryRetries.WithLabelValues(string(eventType)).Inc()
		}
	}

	outcome := s.channel.Deliver(ctx, Request{
		URL:     url,
		Method:  target.HTTPMethod(),
		Headers: target.Headers,
		Auth:    target.Auth(),
		Body:    body,
		Timeout: timeout,
	})

	if timer != nil {
		timer.ObserveDuration()
		s.metrics.DeliveryAttempts.WithLabelValues(string(eventType), outcomeLabel(outcome)).Inc()
	}

	s.recordAttempt(ctx, target, addr, eventType, referenceID, attemptNumber, body, outcome)
	return outcome
}

// recordAttempt writes the audit row. A log write failure never cancels
// or fails the delivery it describes; it is swallowed and surfaced on the
// process log and the failure counter instead.
func (s *Service) recordAttempt(ctx context.Context, target *model.WebhookTarget, addr RecipientAddress, eventType model.EventType, referenceID string, attemptNumber int, body []byte, outcome model.DeliveryOutcome) {
	response := outcome.Body
	if !outcome.Responded() {
		response = outcome.Error
	}

	row := &model.DeliveryAttempt{
		ID:            uuid.New(),
		TargetID:      target.ID,
		Recipient:     addr.Key(),
		ReferenceID:   referenceID,
		EventType:     eventType,
		AttemptNumber: attemptNumber,
		Success:       outcome.Success,
		StatusCode:    outcome.StatusCode,
		RequestBody:   string(body),
		ResponseBody:  response,
		CreatedAt:     time.Now(),
	}

	if err := s.log.Create(ctx, row); err != nil {
		if s.metrics != nil {
			s.metrics.LogWriteFailures.Inc()
		}
		s.logger.Error(err, "failed to write delivery attempt",
			"target", target.Name, "recipient", addr.Key())
	}
}

func (s *Service) publishResult(ctx context.Context, result *model.DispatchResult) {
	if s.broker == nil {
		return
	}
	err := s.broker.Publish(ctx, messaging.ChannelDispatchResults, result)
	if s.metrics != nil {
		status := "success"
		if err != nil {
			status = "error"
		}
		s.metrics.BrokerPublishes.WithLabelValues(messaging.ChannelDispatchResults, status).Inc()
	}
	if err != nil {
		s.logger.Error(err, "failed to publish dispatch result")
	}
}

func outcomeLabel(outcome model.DeliveryOutcome) string {
	switch {
	case outcome.Success:
		return "success"
	case outcome.Responded():
		return "rejected"
	default:
		return "transport_error"
	}
}
