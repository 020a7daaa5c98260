package inspection

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matt11seven/fuelogic-enterprise-control-sub000/internal/config"
	"github.com/matt11seven/fuelogic-enterprise-control-sub000/internal/model"
	"github.com/matt11seven/fuelogic-enterprise-control-sub000/internal/repository"
	"github.com/matt11seven/fuelogic-enterprise-control-sub000/internal/service/dispatch"
	"github.com/matt11seven/fuelogic-enterprise-control-sub000/pkg/logger"
)

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

func newService(stations *fakeStations, cfg config.InspectionConfig, targets ...*model.WebhookTarget) *Service {
	dispatcher := dispatch.NewService(
		emptyContacts{},
		&staticTargets{targets: targets},
		nullLog{},
		dispatch.Config{},
		logger.Nop(),
	)
	return NewService(stations, dispatcher, cfg, logger.Nop())
}

func reading(station uuid.UUID, tank string, water float64) model.TankReading {
	return model.TankReading{
		TankID:        uuid.New(),
		StationID:     station,
		TankLabel:     tank,
		ProductType:   "diesel_s10",
		WaterQuantity: water,
		MeasuredAt:    time.Date(2026, 3, 14, 8, 0, 0, 0, time.UTC),
	}
}

func TestReportWaterReadingsFiltersBelowThreshold(t *testing.T) {
	station := uuid.New()
	svc := newService(
		&fakeStations{stations: map[uuid.UUID]*model.Station{
			station: {ID: station, Name: "Rede Exemplo", City: "Posto Centro"},
		}},
		config.InspectionConfig{WaterThreshold: 2.0, CriticalThreshold: 10.0},
	)

	alert, results, err := svc.ReportWaterReadings(context.Background(), []model.TankReading{
		reading(station, "TQ-01", 1.5),
		reading(station, "TQ-02", 4.0),
		reading(station, "TQ-03", 2.0),
	})
	require.NoError(t, err)
	require.NotNil(t, alert)

	require.Len(t, alert.Alerts, 1)
	assert.Equal(t, "TQ-02", alert.Alerts[0].Tanque)
	assert.Equal(t, "Rede Exemplo", alert.Alerts[0].Cliente)
	assert.Equal(t, "warning", alert.Severity)
	assert.Equal(t, "Água detectada em 1 tanque(s)", alert.Description)
	// No inspection targets configured.
	assert.Empty(t, results)
}

func TestReportWaterReadingsCriticalSeverity(t *testing.T) {
	station := uuid.New()
	svc := newService(
		&fakeStations{stations: map[uuid.UUID]*model.Station{}},
		config.InspectionConfig{WaterThreshold: 2.0, CriticalThreshold: 10.0},
	)

	alert, _, err := svc.ReportWaterReadings(context.Background(), []model.TankReading{
		reading(station, "TQ-01", 3.0),
		reading(station, "TQ-02", 15.0),
	})
	require.NoError(t, err)
	require.NotNil(t, alert)

	assert.Equal(t, "critical", alert.Severity)
	assert.Len(t, alert.Alerts, 2)
	// Unknown station falls back to the placeholder.
	assert.Equal(t, "Posto não identificado", alert.Alerts[0].Cliente)
}

func TestReportWaterReadingsNothingAboveThreshold(t *testing.T) {
	svc := newService(&fakeStations{}, config.InspectionConfig{WaterThreshold: 2.0, CriticalThreshold: 10.0})

	alert, results, err := svc.ReportWaterReadings(context.Background(), []model.TankReading{
		reading(uuid.New(), "TQ-01", 0.5),
	})
	require.NoError(t, err)
	assert.Nil(t, alert)
	assert.Nil(t, results)
}

func TestReportWaterReadingsDispatchesAlert(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	station := uuid.New()
	svc := newService(
		&fakeStations{stations: map[uuid.UUID]*model.Station{
			station: {ID: station, Name: "Rede Exemplo"},
		}},
		config.InspectionConfig{WaterThreshold: 2.0, CriticalThreshold: 10.0},
		&model.WebhookTarget{
			ID:        uuid.New(),
			Name:      "inspection-hook",
			EventType: model.EventInspectionAlert,
			Kind:      model.IntegrationGeneric,
			URL:       srv.URL,
			Active:    true,
		},
	)

	_, results, err := svc.ReportWaterReadings(context.Background(), []model.TankReading{
		reading(station, "TQ-01", 5.0),
	})
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.True(t, results[0].Delivered)
}
