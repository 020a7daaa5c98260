package model

import (
	"time"

	"github.com/google/uuid"
)

// DeliveryOutcome is the normalized result of a single delivery attempt.
// Any received HTTP status is a completed attempt; StatusCode is zero only
// when no response was obtained at all.
type DeliveryOutcome struct {
	Success    bool
	StatusCode int
	Body       string
	Error      string
}

// Responded reports whether the remote produced any HTTP response.
func (o DeliveryOutcome) Responded() bool {
	return o.StatusCode != 0
}

// DeliveryAttempt is one append-only audit row. Every physical try,
// including each retry, writes its own row; rows are never updated.
type DeliveryAttempt struct {
	ID            uuid.UUID `db:"id" json:"id"`
	TargetID      uuid.UUID `db:"target_id" json:"target_id"`
	Recipient     string    `db:"recipient" json:"recipient"`
	ReferenceID   string    `db:"reference_id" json:"reference_id"`
	EventType     EventType `db:"event_type" json:"event_type"`
	AttemptNumber int       `db:"attempt_number" json:"attempt_number"`
	Success       bool      `db:"success" json:"success"`
	StatusCode    int       `db:"status_code" json:"status_code"`
	RequestBody   string    `db:"request_body" json:"request_body"`
	ResponseBody  string    `db:"response_body" json:"response_body"`
	CreatedAt     time.Time `db:"created_at" json:"created_at"`
}

// DispatchResult summarizes one logical dispatch to a target. Delivered
// follows the partial-success policy: true when at least one recipient
// succeeded.
type DispatchResult struct {
	TargetID  uuid.UUID `json:"target_id"`
	EventType EventType `json:"event_type"`
	Delivered bool      `json:"delivered"`
	Succeeded int       `json:"succeeded"`
	Failed    int       `json:"failed"`
	Attempts  int       `json:"attempts"`
}
