package dispatch

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sort"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matt11seven/fuelogic-enterprise-control-sub000/internal/model"
	"github.com/matt11seven/fuelogic-enterprise-control-sub000/internal/repository"
	"github.com/matt11seven/fuelogic-enterprise-control-sub000/pkg/logger"
)

type memLog struct {
	mu      sync.Mutex
	rows    []*model.DeliveryAttempt
	failing bool
}

func (l *memLog) Create(_ context.Context, attempt *model.DeliveryAttempt) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.failing {
		return errors.New("log storage unavailable")
	}
	l.rows = append(l.rows, attempt)
	return nil
}

func (l *memLog) List(context.Context, repository.DeliveryLogFilter) ([]*model.DeliveryAttempt, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]*model.DeliveryAttempt(nil), l.rows...), nil
}

func (l *memLog) byRecipient(recipient string) []*model.DeliveryAttempt {
	l.mu.Lock()
	defer l.mu.Unlock()
	var out []*model.DeliveryAttempt
	for _, r := range l.rows {
		if r.Recipient == recipient {
			out = append(out, r)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].AttemptNumber < out[j].AttemptNumber })
	return out
}

func (l *memLog) count() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.rows)
}

type fakeTargets struct {
	targets []*model.WebhookTarget
}

func (f *fakeTargets) Get(_ context.Context, id uuid.UUID) (*model.WebhookTarget, error) {
	for _, t := range f.targets {
		if t.ID == id {
			return t, nil
		}
	}
	return nil, errors.New("not found")
}

func (f *fakeTargets) List(context.Context) ([]*model.WebhookTarget, error) {
	return f.targets, nil
}

func (f *fakeTargets) ListByEventType(_ context.Context, eventType model.EventType) ([]*model.WebhookTarget, error) {
	var out []*model.WebhookTarget
	for _, t := range f.targets {
		if t.EventType == eventType {
			out = append(out, t)
		}
	}
	return out, nil
}

func newTestService(t *testing.T, log *memLog, targets []*model.WebhookTarget, gatewayURL string) *Service {
	t.Helper()
	return NewService(
		testDirectory(),
		&fakeTargets{targets: targets},
		log,
		Config{GatewayURL: gatewayURL, DefaultMaxAttempts: 3},
		logger.Nop(),
		WithScheduler(instantScheduler()),
	)
}

func genericTarget(url string, maxAttempts int) *model.WebhookTarget {
	return &model.WebhookTarget{
		ID:          uuid.New(),
		Name:        "erp-sync",
		EventType:   model.EventOrderPlaced,
		Kind:        model.IntegrationGeneric,
		URL:         url,
		MaxAttempts: maxAttempts,
		Active:      true,
	}
}

func TestDispatchExhaustsRetryBudgetAndLogsEveryAttempt(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "rejected", http.StatusInternalServerError)
	}))
	defer srv.Close()

	log := &memLog{}
	svc := newTestService(t, log, nil, "")
	target := genericTarget(srv.URL, 3)

	result, err := svc.Dispatch(context.Background(), target, model.EventOrderPlaced, sampleOrder(), "ref-1")
	require.NoError(t, err)

	assert.False(t, result.Delivered)
	assert.Equal(t, 0, result.Succeeded)
	assert.Equal(t, 1, result.Failed)
	assert.Equal(t, 3, result.Attempts)

	rows := log.byRecipient(srv.URL)
	require.Len(t, rows, 3)
	for i, row := range rows {
		assert.Equal(t, i+1, row.AttemptNumber)
		assert.False(t, row.Success)
		assert.Equal(t, http.StatusInternalServerError, row.StatusCode)
		assert.Equal(t, "ref-1", row.ReferenceID)
		assert.Equal(t, target.ID, row.TargetID)
		assert.Contains(t, row.ResponseBody, "rejected")
	}
}

func TestDispatchFanoutPartialSuccess(t *testing.T) {
	// The gateway accepts only Maria's number; everyone else is rejected.
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		var payload map[string]interface{}
		_ = json.Unmarshal(body, &payload)
		if payload["numero"] == "+5511988880001" {
			w.WriteHeader(http.StatusOK)
			return
		}
		http.Error(w, "unknown subscriber", http.StatusBadGateway)
	}))
	defer srv.Close()

	log := &memLog{}
	svc := newTestService(t, log, nil, srv.URL)

	target := fanoutTarget(`["3", "9", "12"]`)
	target.ID = uuid.New()
	target.MaxAttempts = 2

	result, err := svc.Dispatch(context.Background(), target, model.EventOrderPlaced, sampleOrder(), "ref-2")
	require.NoError(t, err)

	assert.True(t, result.Delivered)
	assert.Equal(t, 1, result.Succeeded)
	assert.Equal(t, 2, result.Failed)
	assert.Equal(t, 5, result.Attempts)

	// One row for the success, two per exhausted recipient.
	assert.Equal(t, 5, log.count())
	require.Len(t, log.byRecipient("+5511988880001"), 1)
	require.Len(t, log.byRecipient("+5511988880002"), 2)
	require.Len(t, log.byRecipient("+5511988880003"), 2)
}

func TestDispatchFanoutPersonalizesBody(t *testing.T) {
	var mu sync.Mutex
	var payloads []map[string]interface{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		var payload map[string]interface{}
		_ = json.Unmarshal(body, &payload)
		mu.Lock()
		payloads = append(payloads, payload)
		mu.Unlock()
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	log := &memLog{}
	svc := newTestService(t, log, nil, srv.URL)

	target := fanoutTarget(`["3"]`)
	target.ID = uuid.New()

	result, err := svc.Dispatch(context.Background(), target, model.EventOrderPlaced, sampleOrder(), "ref-3")
	require.NoError(t, err)
	require.True(t, result.Delivered)

	require.Len(t, payloads, 1)
	assert.Equal(t, "+5511988880001", payloads[0]["numero"])
	assert.Equal(t, "Maria", payloads[0]["nome"])
	assert.Equal(t, "order_placed", payloads[0]["event_type"])

	rows := log.byRecipient("+5511988880001")
	require.Len(t, rows, 1)
	assert.Contains(t, rows[0].RequestBody, `"numero":"+5511988880001"`)
}

func TestDispatchSkippedContactsCountAsFailedWithoutRows(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	log := &memLog{}
	svc := newTestService(t, log, nil, srv.URL)

	// Contact 15 has no phone number.
	target := fanoutTarget(`["3", "15"]`)
	target.ID = uuid.New()

	result, err := svc.Dispatch(context.Background(), target, model.EventOrderPlaced, sampleOrder(), "ref-4")
	require.NoError(t, err)

	assert.True(t, result.Delivered)
	assert.Equal(t, 1, result.Succeeded)
	assert.Equal(t, 1, result.Failed)
	assert.Equal(t, 1, log.count())
}

func TestDispatchConfigurationErrorsMakeNoAttempts(t *testing.T) {
	log := &memLog{}
	svc := newTestService(t, log, nil, "")

	cases := map[string]*model.WebhookTarget{
		"invalid target": {
			ID:        uuid.New(),
			EventType: model.EventOrderPlaced,
			Kind:      model.IntegrationGeneric,
			URL:       "https://example.com/hook",
		},
		"generic without url": {
			ID:        uuid.New(),
			Name:      "erp",
			EventType: model.EventOrderPlaced,
			Kind:      model.IntegrationGeneric,
		},
		"fanout without gateway": func() *model.WebhookTarget {
			target := fanoutTarget(`["3"]`)
			target.ID = uuid.New()
			return target
		}(),
	}

	for name, target := range cases {
		t.Run(name, func(t *testing.T) {
			result, err := svc.Dispatch(context.Background(), target, model.EventOrderPlaced, sampleOrder(), "ref-5")
			require.Error(t, err)
			assert.True(t, IsConfigurationError(err))
			assert.Nil(t, result)
		})
	}
	assert.Equal(t, 0, log.count())
}

func TestDispatchSwallowsLogWriteFailures(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	log := &memLog{failing: true}
	svc := newTestService(t, log, nil, "")

	result, err := svc.Dispatch(context.Background(), genericTarget(srv.URL, 1), model.EventOrderPlaced, sampleOrder(), "ref-6")
	require.NoError(t, err)
	assert.True(t, result.Delivered)
	assert.Equal(t, 1, result.Succeeded)
}

func TestDispatchEventContinuesPastMisconfiguredTargets(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	broken := genericTarget("", 1) // no endpoint URL
	working := genericTarget(srv.URL, 1)
	other := genericTarget(srv.URL, 1)
	other.EventType = model.EventInspectionAlert

	log := &memLog{}
	svc := newTestService(t, log, []*model.WebhookTarget{broken, working, other}, "")

	results := svc.DispatchEvent(context.Background(), model.EventOrderPlaced, sampleOrder(), "ref-7")

	require.Len(t, results, 1)
	assert.Equal(t, working.ID, results[0].TargetID)
	assert.True(t, results[0].Delivered)
	assert.Equal(t, 1, log.count())
}
