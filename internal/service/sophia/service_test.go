package sophia

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matt11seven/fuelogic-enterprise-control-sub000/internal/model"
	"github.com/matt11seven/fuelogic-enterprise-control-sub000/internal/repository"
	"github.com/matt11seven/fuelogic-enterprise-control-sub000/internal/service/aggregate"
	"github.com/matt11seven/fuelogic-enterprise-control-sub000/internal/service/dispatch"
	"github.com/matt11seven/fuelogic-enterprise-control-sub000/pkg/logger"
)

type fakeOrders struct {
	mu       sync.Mutex
	pending  []*model.Order
	notified []uuid.UUID
}

func (r *fakeOrders) Create(context.Context, *model.Order) error        { return nil }
func (r *fakeOrders) CreateBatch(context.Context, []*model.Order) error { return nil }
func (r *fakeOrders) Get(context.Context, uuid.UUID) (*model.Order, error) {
	return nil, errors.New("not found")
}

func (r *fakeOrders) ListPendingUnnotified(_ context.Context, limit int) ([]*model.Order, error) {
	if len(r.pending) > limit {
		return r.pending[:limit], nil
	}
	return r.pending, nil
}

func (r *fakeOrders) MarkNotified(_ context.Context, ids []uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.notified = append(r.notified, ids...)
	return nil
}

type fakeStations struct {
	stations map[uuid.UUID]*model.Station
}

func (f *fakeStations) GetByIDs(_ context.Context, ids []uuid.UUID) (map[uuid.UUID]*model.Station, error) {
	result := make(map[uuid.UUID]*model.Station)
	for _, id := range ids {
		if s, ok := f.stations[id]; ok {
			result[id] = s
		}
	}
	return result, nil
}

type staticTargets struct {
	targets []*model.WebhookTarget
}

func (f *staticTargets) Get(context.Context, uuid.UUID) (*model.WebhookTarget, error) {
	return nil, errors.New("not found")
}

func (f *staticTargets) List(context.Context) ([]*model.WebhookTarget, error) {
	return f.targets, nil
}

func (f *staticTargets) ListByEventType(_ context.Context, eventType model.EventType) ([]*model.WebhookTarget, error) {
	var out []*model.WebhookTarget
	for _, t := range f.targets {
		if t.EventType == eventType {
			out = append(out, t)
		}
	}
	return out, nil
}

type nullLog struct{}

func (nullLog) Create(context.Context, *model.DeliveryAttempt) error { return nil }
func (nullLog) List(context.Context, repository.DeliveryLogFilter) ([]*model.DeliveryAttempt, error) {
	return nil, nil
}

type emptyContacts struct{}

func (emptyContacts) GetByIDs(context.Context, []string) (map[string]*model.Contact, error) {
	return map[string]*model.Contact{}, nil
}

func pendingOrder(station uuid.UUID, product string, quantity float64) *model.Order {
	return &model.Order{
		ID:          uuid.New(),
		StationID:   station,
		TankID:      uuid.New(),
		ProductType: product,
		Quantity:    quantity,
		Status:      model.OrderStatusPending,
	}
}

func newService(orders *fakeOrders, stations *fakeStations, targets ...*model.WebhookTarget) *Service {
	dispatcher := dispatch.NewService(
		emptyContacts{},
		&staticTargets{targets: targets},
		nullLog{},
		dispatch.Config{},
		logger.Nop(),
		dispatch.WithScheduler(dispatch.NewSchedulerWithWait(func(context.Context, time.Duration) {})),
	)
	aggregator := aggregate.NewService(stations, logger.Nop())
	return NewService(orders, aggregator, dispatcher, 100, logger.Nop())
}

func sophiaTarget(url string) *model.WebhookTarget {
	return &model.WebhookTarget{
		ID:        uuid.New(),
		Name:      "sophia-ai",
		EventType: model.EventSophiaAIOrder,
		Kind:      model.IntegrationSophia,
		URL:       url,
		Active:    true,
	}
}

func TestSendPendingOrdersAggregatesAndMarksNotified(t *testing.T) {
	var payload map[string]interface{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(body, &payload)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	station := uuid.New()
	orders := &fakeOrders{pending: []*model.Order{
		pendingOrder(station, "gasolina_comum", 5000),
		pendingOrder(station, "diesel_s10", 3000),
	}}
	stations := &fakeStations{stations: map[uuid.UUID]*model.Station{
		station: {ID: station, Name: "Posto Centro", CNPJ: "12.345.678/0001-90"},
	}}

	report, err := newService(orders, stations, sophiaTarget(srv.URL)).SendPendingOrders(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 2, report.Orders)
	assert.Equal(t, 1, report.Stations)
	require.Len(t, report.Results, 1)
	assert.True(t, report.Results[0].Delivered)
	assert.Len(t, orders.notified, 2)

	pedido, ok := payload["pedido"].(map[string]interface{})
	require.True(t, ok)
	postos, ok := pedido["postos"].([]interface{})
	require.True(t, ok)
	require.Len(t, postos, 1)
	posto := postos[0].(map[string]interface{})
	assert.Equal(t, "Posto Centro", posto["nome"])
	assert.Len(t, posto["pedidos"], 2)
}

func TestSendPendingOrdersNothingPending(t *testing.T) {
	report, err := newService(&fakeOrders{}, &fakeStations{}).SendPendingOrders(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 0, report.Orders)
	assert.Empty(t, report.Results)
}

func TestSendPendingOrdersRejectedPayloadLeavesOrdersPending(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "model overloaded", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	orders := &fakeOrders{pending: []*model.Order{
		pendingOrder(uuid.New(), "etanol", 1000),
	}}
	target := sophiaTarget(srv.URL)
	target.MaxAttempts = 2

	report, err := newService(orders, &fakeStations{}, target).SendPendingOrders(context.Background())
	require.NoError(t, err)

	require.Len(t, report.Results, 1)
	assert.False(t, report.Results[0].Delivered)
	assert.Equal(t, 2, report.Results[0].Attempts)
	assert.Empty(t, orders.notified)
}
