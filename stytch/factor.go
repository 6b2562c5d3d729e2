package stytch

import (
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"
)

// Wire keys tagging each factor variant
const (
	EmailFactorKey       = "email_factor"
	PhoneNumberFactorKey = "phone_number_factor"
)

// ErrNoFactor is returned when an authentication factor object carries no factor
var ErrNoFactor = errors.New("authentication factor has no factor fields")

// Factor is one verified means of authenticating a session.
// Implementations are EmailFactor, PhoneNumberFactor and UnknownFactor.
type Factor interface {
	// FactorKey is the sibling key the factor is encoded under
	FactorKey() string
	isFactor()
}

// EmailFactor is a factor proven by an email address
type EmailFactor struct {
	ID      string `json:"email_id"`
	Address string `json:"email_address"`
}

// PhoneNumberFactor is a factor proven by a phone number
type PhoneNumberFactor struct {
	ID     string `json:"phone_id"`
	Number string `json:"phone_number"`
}

// UnknownFactor keeps a factor variant this client does not model, so that it
// re-encodes exactly as received. Fields is nil when the variant object is empty.
type UnknownFactor struct {
	Key    string
	Fields map[string]json.RawMessage
}

func (EmailFactor) FactorKey() string       { return EmailFactorKey }
func (PhoneNumberFactor) FactorKey() string { return PhoneNumberFactorKey }
func (u UnknownFactor) FactorKey() string   { return u.Key }

func (EmailFactor) isFactor()       {}
func (PhoneNumberFactor) isFactor() {}
func (UnknownFactor) isFactor()     {}

// AuthenticationFactor describes how and when a factor was last used.
// Its Factor is encoded as a sibling key of the other fields, for example
//
//	{"delivery_method": "email", "type": "magic_link", "last_authenticated_at": "...",
//	 "email_factor": {"email_id": "...", "email_address": "..."}}
type AuthenticationFactor struct {
	DeliveryMethod      string
	Type                string
	LastAuthenticatedAt time.Time

	Factor Factor
}

// factorSiblings are the non-factor fields of an AuthenticationFactor
type factorSiblings struct {
	DeliveryMethod      string    `json:"delivery_method"`
	Type                string    `json:"type"`
	LastAuthenticatedAt time.Time `json:"last_authenticated_at"`
}

// knownFactor describes how to recognise one modeled variant
type knownFactor struct {
	key    string
	fields []string
	decode func(json.RawMessage) (Factor, error)
}

var knownFactors = []knownFactor{
	{
		key:    EmailFactorKey,
		fields: []string{"email_id", "email_address"},
		decode: func(raw json.RawMessage) (Factor, error) {
			var f EmailFactor
			err := json.Unmarshal(raw, &f)
			return f, err
		},
	},
	{
		key:    PhoneNumberFactorKey,
		fields: []string{"phone_id", "phone_number"},
		decode: func(raw json.RawMessage) (Factor, error) {
			var f PhoneNumberFactor
			err := json.Unmarshal(raw, &f)
			return f, err
		},
	},
}

var siblingKeys = []string{"delivery_method", "type", "last_authenticated_at"}

// MarshalJSON merges the factor into the sibling fields
func (a AuthenticationFactor) MarshalJSON() ([]byte, error) {
	if a.Factor == nil {
		return nil, ErrNoFactor
	}

	obj := map[string]any{
		"delivery_method":       a.DeliveryMethod,
		"type":                  a.Type,
		"last_authenticated_at": a.LastAuthenticatedAt,
	}
	switch f := a.Factor.(type) {
	case UnknownFactor:
		obj[f.Key] = unknownFields(f.Fields)
	case *UnknownFactor:
		obj[f.Key] = unknownFields(f.Fields)
	default:
		obj[f.FactorKey()] = f
	}
	return json.Marshal(obj)
}

func unknownFields(fields map[string]json.RawMessage) map[string]json.RawMessage {
	if fields == nil {
		return map[string]json.RawMessage{}
	}
	return fields
}

// UnmarshalJSON splits the merged object back into siblings and Factor.
//
// The variant is chosen by which tag key is present. A tag key holds an object
// with the variant's fields; the fully flattened form, with the variant fields
// directly among the siblings, is accepted as well. A tag key holding null is
// treated as absent. Objects under any other "*_factor" key become an
// UnknownFactor.
func (a *AuthenticationFactor) UnmarshalJSON(data []byte) error {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return fmt.Errorf("decode authentication factor: %w", err)
	}

	factor, err := extractFactor(fields)
	if err != nil {
		return err
	}

	var siblings factorSiblings
	if err := json.Unmarshal(data, &siblings); err != nil {
		return fmt.Errorf("decode authentication factor: %w", err)
	}

	*a = AuthenticationFactor{
		DeliveryMethod:      siblings.DeliveryMethod,
		Type:                siblings.Type,
		LastAuthenticatedAt: siblings.LastAuthenticatedAt,
		Factor:              factor,
	}
	return nil
}

func extractFactor(fields map[string]json.RawMessage) (Factor, error) {
	var matches []Factor

	for _, kf := range knownFactors {
		raw, tagged := fields[kf.key]
		if tagged && isNull(raw) {
			tagged = false
		}
		if !tagged {
			if !hasKeys(fields, kf.fields) {
				continue
			}
			// flattened form
			flat := make(map[string]json.RawMessage, len(kf.fields))
			for _, name := range kf.fields {
				flat[name] = fields[name]
			}
			b, err := json.Marshal(flat)
			if err != nil {
				return nil, err
			}
			raw = b
		} else {
			var inner map[string]json.RawMessage
			if err := json.Unmarshal(raw, &inner); err != nil {
				return nil, fmt.Errorf("decode %s: %w", kf.key, err)
			}
			if !hasKeys(inner, kf.fields) {
				return nil, fmt.Errorf("decode %s: requires fields %s", kf.key, strings.Join(kf.fields, ", "))
			}
		}

		f, err := kf.decode(raw)
		if err != nil {
			return nil, fmt.Errorf("decode %s: %w", kf.key, err)
		}
		matches = append(matches, f)
	}

	if len(matches) == 0 {
		matches = extractUnknownFactors(fields)
	}

	switch len(matches) {
	case 0:
		return nil, ErrNoFactor
	case 1:
		return matches[0], nil
	default:
		keys := make([]string, len(matches))
		for i, m := range matches {
			keys[i] = m.FactorKey()
		}
		return nil, fmt.Errorf("authentication factor is ambiguous: %s", strings.Join(keys, ", "))
	}
}

func extractUnknownFactors(fields map[string]json.RawMessage) []Factor {
	var found []Factor
	for key, raw := range fields {
		if slices.Contains(siblingKeys, key) || !strings.HasSuffix(key, "_factor") {
			continue
		}
		var inner map[string]json.RawMessage
		if err := json.Unmarshal(raw, &inner); err != nil || inner == nil {
			continue
		}
		if len(inner) == 0 {
			inner = nil
		}
		found = append(found, UnknownFactor{Key: key, Fields: inner})
	}
	slices.SortFunc(found, func(a, b Factor) int {
		return strings.Compare(a.FactorKey(), b.FactorKey())
	})
	return found
}

func hasKeys(fields map[string]json.RawMessage, keys []string) bool {
	for _, k := range keys {
		if _, ok := fields[k]; !ok {
			return false
		}
	}
	return true
}
