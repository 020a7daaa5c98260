package model

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

type EventType string

const (
	EventOrderPlaced     EventType = "order_placed"
	EventInspectionAlert EventType = "inspection_alert"
	EventSophiaAIOrder   EventType = "sophia_ai_order"
)

type IntegrationKind string

const (
	IntegrationGeneric       IntegrationKind = "generic"
	IntegrationContactFanout IntegrationKind = "contact_fanout"
	IntegrationSophia        IntegrationKind = "sophia"
)

type AuthKind string

const (
	AuthNone   AuthKind = "none"
	AuthBasic  AuthKind = "basic"
	AuthBearer AuthKind = "bearer"
)

// AuthConfig describes how outgoing requests to a target authenticate.
type AuthConfig struct {
	Kind     AuthKind `json:"kind"`
	Username string   `json:"username,omitempty"`
	Password string   `json:"password,omitempty"`
	Token    string   `json:"token,omitempty"`
}

// HeaderMap is a jsonb-backed string map for static target headers.
type HeaderMap map[string]string

func (m HeaderMap) Value() (driver.Value, error) {
	if m == nil {
		return nil, nil
	}
	return json.Marshal(m)
}

func (m *HeaderMap) Scan(src interface{}) error {
	if src == nil {
		*m = nil
		return nil
	}
	b, ok := src.([]byte)
	if !ok {
		return fmt.Errorf("cannot scan %T into HeaderMap", src)
	}
	return json.Unmarshal(b, m)
}

// RawSelection holds the recipient selection exactly as configured upstream.
// Three encodings are accepted (id list, id→bool map, embedded contact
// objects); normalization happens at the fan-out boundary, never here.
type RawSelection []byte

func (s RawSelection) Value() (driver.Value, error) {
	if len(s) == 0 {
		return nil, nil
	}
	return []byte(s), nil
}

func (s *RawSelection) Scan(src interface{}) error {
	if src == nil {
		*s = nil
		return nil
	}
	b, ok := src.([]byte)
	if !ok {
		return fmt.Errorf("cannot scan %T into RawSelection", src)
	}
	*s = append((*s)[:0], b...)
	return nil
}

func (s RawSelection) MarshalJSON() ([]byte, error) {
	if len(s) == 0 {
		return []byte("null"), nil
	}
	return []byte(s), nil
}

func (s *RawSelection) UnmarshalJSON(b []byte) error {
	*s = append((*s)[:0], b...)
	return nil
}

// WebhookTarget is a configured notification destination plus its delivery
// policy. Rows are owned by the configuration store and read-only here.
type WebhookTarget struct {
	ID                uuid.UUID       `db:"id" json:"id"`
	Name              string          `db:"name" json:"name" validate:"required"`
	EventType         EventType       `db:"event_type" json:"event_type" validate:"required,oneof=order_placed inspection_alert sophia_ai_order"`
	Kind              IntegrationKind `db:"kind" json:"kind" validate:"required,oneof=generic contact_fanout sophia"`
	URL               string          `db:"url" json:"url" validate:"omitempty,url"`
	Method            string          `db:"method" json:"method" validate:"omitempty,oneof=POST PUT PATCH"`
	Headers           HeaderMap       `db:"headers" json:"headers,omitempty"`
	AuthKind          AuthKind        `db:"auth_kind" json:"auth_kind" validate:"omitempty,oneof=none basic bearer"`
	AuthUsername      string          `db:"auth_username" json:"auth_username,omitempty"`
	AuthPassword      string          `db:"auth_password" json:"-"`
	AuthToken         string          `db:"auth_token" json:"-"`
	TimeoutSeconds    int             `db:"timeout_seconds" json:"timeout_seconds" validate:"min=0,max=300"`
	MaxAttempts       int             `db:"max_attempts" json:"max_attempts" validate:"min=0,max=10"`
	RetryDelaySeconds int             `db:"retry_delay_seconds" json:"retry_delay_seconds" validate:"min=0"`
	Recipients        RawSelection    `db:"recipients" json:"recipients,omitempty"`
	Active            bool            `db:"active" json:"active"`
	CreatedAt         time.Time       `db:"created_at" json:"created_at"`
	UpdatedAt         time.Time       `db:"updated_at" json:"updated_at"`
}

func (t *WebhookTarget) Auth() AuthConfig {
	return AuthConfig{
		Kind:     t.AuthKind,
		Username: t.AuthUsername,
		Password: t.AuthPassword,
		Token:    t.AuthToken,
	}
}

func (t *WebhookTarget) Timeout() time.Duration {
	return time.Duration(t.TimeoutSeconds) * time.Second
}

func (t *WebhookTarget) RetryDelay() time.Duration {
	return time.Duration(t.RetryDelaySeconds) * time.Second
}

func (t *WebhookTarget) HTTPMethod() string {
	if t.Method == "" {
		return "POST"
	}
	return t.Method
}
