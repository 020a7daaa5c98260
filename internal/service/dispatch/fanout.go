package dispatch

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"

	"github.com/matt11seven/fuelogic-enterprise-control-sub000/internal/model"
	"github.com/matt11seven/fuelogic-enterprise-control-sub000/pkg/logger"
)

// RecipientAddress is one physical delivery destination. Either URL is set
// (generic/sophia) or Phone+Name are (contact fan-out).
type RecipientAddress struct {
	URL   string
	Phone string
	Name  string
}

// Key identifies the address in log rows.
func (a RecipientAddress) Key() string {
	if a.Phone != "" {
		return a.Phone
	}
	return a.URL
}

// SkippedRecipient is a contact that was selected but cannot be delivered
// to. It counts as a failed recipient without producing network attempts.
type SkippedRecipient struct {
	ContactID string
	Reason    string
}

// ContactDirectory resolves contact records by id.
type ContactDirectory interface {
	GetByIDs(ctx context.Context, ids []string) (map[string]*model.Contact, error)
}

// Resolver expands one notification target into zero-or-more physical
// recipient addresses.
type Resolver struct {
	contacts ContactDirectory
	logger   *logger.Logger
}

func NewResolver(contacts ContactDirectory, logger *logger.Logger) *Resolver {
	return &Resolver{
		contacts: contacts,
		logger:   logger,
	}
}

// Resolve returns the addresses for target. For contact fan-out it
// normalizes the configured selection, drops unknown ids with a log line,
// and returns phone-less contacts as skipped entries. A ConfigurationError
// means nothing can be delivered and no attempt may be made.
func (r *Resolver) Resolve(ctx context.Context, target *model.WebhookTarget) ([]RecipientAddress, []SkippedRecipient, error) {
	switch target.Kind {
	case model.IntegrationGeneric, model.IntegrationSophia:
		if target.URL == "" {
			return nil, nil, configErrorf("target %s has no endpoint URL", target.Name)
		}
		return []RecipientAddress{{URL: target.URL}}, nil, nil

	case model.IntegrationContactFanout:
		return r.resolveContacts(ctx, target)

	default:
		return nil, nil, configErrorf("unknown integration kind %q", target.Kind)
	}
}

func (r *Resolver) resolveContacts(ctx context.Context, target *model.WebhookTarget) ([]RecipientAddress, []SkippedRecipient, error) {
	ids, err := normalizeSelection(target.Recipients)
	if err != nil {
		return nil, nil, configErrorf("target %s has an invalid recipient selection: %v", target.Name, err)
	}
	if len(ids) == 0 {
		return nil, nil, configErrorf("target %s selects no recipients", target.Name)
	}

	contacts, err := r.contacts.GetByIDs(ctx, ids)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to resolve contacts: %w", err)
	}

	var addresses []RecipientAddress
	var skipped []SkippedRecipient
	for _, id := range ids {
		contact, ok := contacts[id]
		if !ok {
			r.logger.Warn("selected contact not found, skipping",
				"target", target.Name, "contact_id", id)
			continue
		}
		if contact.Phone == "" {
			r.logger.Warn("selected contact has no phone number, skipping",
				"target", target.Name, "contact_id", id)
			skipped = append(skipped, SkippedRecipient{
				ContactID: id,
				Reason:    "contact has no phone number",
			})
			continue
		}
		addresses = append(addresses, RecipientAddress{
			Phone: contact.Phone,
			Name:  contact.Name,
		})
	}

	if len(addresses) == 0 {
		return nil, skipped, configErrorf("target %s has no valid recipients", target.Name)
	}
	return addresses, skipped, nil
}

// normalizeSelection accepts the three upstream encodings and returns a
// canonical id list preserving document order:
//
//	["3", "9"] or [3, 9]      — explicit id list
//	{"3": true, "9": false}   — id→bool selection map
//	[{"id": "3", ...}, ...]   — embedded contact objects
func normalizeSelection(raw model.RawSelection) ([]string, error) {
	if len(raw) == 0 {
		return nil, nil
	}

	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()

	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}

	delim, ok := tok.(json.Delim)
	if !ok {
		return nil, fmt.Errorf("selection must be an array or object")
	}

	switch delim {
	case '[':
		return normalizeList(dec)
	case '{':
		return normalizeBoolMap(dec)
	default:
		return nil, fmt.Errorf("selection must be an array or object")
	}
}

func normalizeList(dec *json.Decoder) ([]string, error) {
	var ids []string
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, err
		}
		switch v := tok.(type) {
		case string:
			ids = append(ids, v)
		case json.Number:
			ids = append(ids, v.String())
		case json.Delim:
			if v != '{' {
				return nil, fmt.Errorf("unexpected %v in selection list", v)
			}
			id, err := embeddedContactID(dec)
			if err != nil {
				return nil, err
			}
			if id != "" {
				ids = append(ids, id)
			}
		default:
			return nil, fmt.Errorf("unexpected %T in selection list", tok)
		}
	}
	// consume closing ']'
	_, err := dec.Token()
	return ids, err
}

// embeddedContactID reads the remainder of an object token stream and
// returns its "id" value.
func embeddedContactID(dec *json.Decoder) (string, error) {
	var id string
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return "", err
		}
		key, _ := keyTok.(string)

		var value json.RawMessage
		if err := dec.Decode(&value); err != nil {
			return "", err
		}
		if key != "id" {
			continue
		}

		var s string
		if err := json.Unmarshal(value, &s); err == nil {
			id = s
			continue
		}
		var n json.Number
		if err := json.Unmarshal(value, &n); err == nil {
			id = n.String()
		}
	}
	_, err := dec.Token()
	return id, err
}

// normalizeBoolMap walks object keys in document order so the resulting
// list is stable for a given configuration document.
func normalizeBoolMap(dec *json.Decoder) ([]string, error) {
	var ids []string
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return nil, err
		}
		key, ok := keyTok.(string)
		if !ok {
			return nil, fmt.Errorf("unexpected key %v in selection map", keyTok)
		}

		var selected bool
		if err := dec.Decode(&selected); err != nil {
			return nil, fmt.Errorf("selection map value for %q must be a boolean", key)
		}
		if selected {
			ids = append(ids, key)
		}
	}
	_, err := dec.Token()
	return ids, err
}
