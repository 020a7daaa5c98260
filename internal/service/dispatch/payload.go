package dispatch

import (
	"fmt"
	"time"

	"github.com/matt11seven/fuelogic-enterprise-control-sub000/internal/model"
)

const (
	sourceSystem  = "fuelogic-dashboard"
	formatVersion = "1.0"
)

// Envelope is a JSON-serializable notification payload. Marshaling sorts
// keys, so two envelopes built from the same data and clock are
// byte-identical.
type Envelope map[string]interface{}

// SophiaOrderData feeds the aggregated procurement payload.
type SophiaOrderData struct {
	Groups  []*model.AggregatedGroup
	Summary *model.AggregationSummary
}

// Formatter builds canonical envelopes per event type. It is pure except
// for the clock used for timestamps and event ids.
type Formatter struct {
	now func() time.Time
}

func NewFormatter() *Formatter {
	return &Formatter{now: time.Now}
}

// NewFormatterWithClock pins the clock. Used by tests.
func NewFormatterWithClock(now func() time.Time) *Formatter {
	return &Formatter{now: now}
}

// Format maps a domain event to its envelope. It always succeeds: an
// unrecognized event type gets a generic envelope wrapping the raw data.
func (f *Formatter) Format(eventType model.EventType, data interface{}) Envelope {
	ts := f.now().UTC()

	env := Envelope{
		"event_id":   fmt.Sprintf("%s_%d", eventType, ts.UnixNano()),
		"event_type": string(eventType),
		"timestamp":  ts.Format(time.RFC3339),
		"metadata": map[string]interface{}{
			"source_system":  sourceSystem,
			"format_version": formatVersion,
		},
	}

	switch eventType {
	case model.EventOrderPlaced:
		if order, ok := data.(*model.Order); ok {
			env["order"] = orderBody(order)
			return env
		}
	case model.EventInspectionAlert:
		if alert, ok := data.(*model.InspectionAlert); ok {
			env["inspection"] = inspectionBody(alert)
			return env
		}
	case model.EventSophiaAIOrder:
		if sophia, ok := data.(*SophiaOrderData); ok {
			env["pedido"] = sophiaBody(sophia, ts)
			return env
		}
	}

	env["data"] = data
	return env
}

func orderBody(order *model.Order) map[string]interface{} {
	body := map[string]interface{}{
		"id":           order.ID.String(),
		"station_id":   order.StationID.String(),
		"tank_id":      order.TankID.String(),
		"product_type": order.ProductType,
		"quantity":     order.Quantity,
		"status":       string(order.Status),
		"notes":        order.Notes,
	}
	if order.ScheduledDate != nil {
		body["scheduled_date"] = order.ScheduledDate.UTC().Format(time.RFC3339)
	} else {
		body["scheduled_date"] = nil
	}
	return body
}

func inspectionBody(alert *model.InspectionAlert) map[string]interface{} {
	alertas := make([]map[string]interface{}, 0, len(alert.Alerts))
	for _, a := range alert.Alerts {
		alertas = append(alertas, map[string]interface{}{
			"cliente":         a.Cliente,
			"unidade":         a.Unidade,
			"tanque":          a.Tanque,
			"produto":         a.Produto,
			"quantidade_agua": a.QuantidadeAgua,
			"data_medicao":    a.DataMedicao.UTC().Format(time.RFC3339),
		})
	}
	return map[string]interface{}{
		"id":          alert.ID.String(),
		"description": alert.Description,
		"severity":    alert.Severity,
		"alertas":     alertas,
	}
}

func sophiaBody(data *SophiaOrderData, ts time.Time) map[string]interface{} {
	postos := make([]map[string]interface{}, 0, len(data.Groups))
	for _, group := range data.Groups {
		pedidos := make([]map[string]interface{}, 0, len(group.Orders))
		for _, order := range group.Orders {
			pedidos = append(pedidos, map[string]interface{}{
				"id":          order.ID.String(),
				"tanque":      order.TankID.String(),
				"produto":     order.ProductType,
				"quantidade":  order.Quantity,
				"status":      string(order.Status),
				"observacoes": order.Notes,
			})
		}
		postos = append(postos, map[string]interface{}{
			"nome":                   group.Station.Name,
			"cnpj":                   group.Station.CNPJ,
			"endereco":               group.Station.Address,
			"cidade":                 group.Station.City,
			"estado":                 group.Station.State,
			"telefone":               group.Station.Phone,
			"pedidos":                pedidos,
			"totais_por_combustivel": group.FuelTotals,
		})
	}

	summary := data.Summary
	if summary == nil {
		summary = &model.AggregationSummary{FuelTotals: model.NewFuelTotals()}
	}

	return map[string]interface{}{
		"data_solicitacao": ts.Format(time.RFC3339),
		"status":           "pendente",
		"postos":           postos,
		"resumo_geral": map[string]interface{}{
			"total_postos":        summary.TotalStations,
			"total_pedidos":       summary.TotalOrders,
			"totais_combustiveis": summary.FuelTotals,
		},
	}
}
