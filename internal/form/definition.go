// Package form is the form-binding core shared by every back office screen.
//
// A Definition declares the fields of one record type, their validation
// rules, any dependent (derived) fields, and the Adapter that persists the
// record. A Controller owns the editable state of one record: it seeds a
// Registry from the record, routes edits through the Resolver, and drives the
// submission state machine
//
//	idle -> saving -> idle (failure, values kept)
//	              \-> success
//
// The Controller never performs I/O on the caller's goroutine. Submit and
// Delete return an Operation whose Run method does the network call; the
// result is handed back with Finish. This keeps the controller usable from a
// single-threaded event loop such as a Bubble Tea Update function:
//
//	op, err := ctrl.Submit()
//	if err != nil {
//	    return m, nil // validation failed or already saving
//	}
//	return m, func() tea.Msg { return resultMsg{op.Run(ctx)} }
//
//	// later, in Update:
//	outcome, applied := ctrl.Finish(msg.result)
package form

import (
	"encoding/json"
	"fmt"
	"strconv"
)

// Kind controls how a field's string value is converted into the payload.
type Kind int

const (
	// KindText is free text, sent as a trimmed string.
	KindText Kind = iota
	// KindNumber is a decimal number, sent as a JSON number.
	KindNumber
	// KindDate is a YYYY-MM-DD date, sent as a string.
	KindDate
	// KindSelect holds the Value of an Option from an OptionSet or a fixed
	// Choices list.
	KindSelect
)

func (k Kind) String() string {
	switch k {
	case KindText:
		return "text"
	case KindNumber:
		return "number"
	case KindDate:
		return "date"
	case KindSelect:
		return "select"
	default:
		return "unknown"
	}
}

// Field declares one editable unit of a record.
type Field struct {
	Name     string // Record key and payload key
	Label    string
	Hint     string
	Kind     Kind
	Initial  string // Value used for new records
	Optional bool   // Blank optional values are sent as null
	ReadOnly bool   // Derived fields: rendered, submitted, never typed into
	Rules    []Rule

	// OptionSet names the option source of a KindSelect field.
	OptionSet string
	// Choices is a fixed option list for a KindSelect field with no OptionSet.
	Choices []Option
	// Numeric selects hold numeric ids and are sent as JSON numbers.
	Numeric bool
}

// Definition is everything a concrete form supplies to the core.
type Definition struct {
	Name       string // Short identifier, e.g. "contact"
	Title      string
	Collection string // REST collection the adapter is bound to, e.g. "contacts"
	Fields     []Field

	Dependencies []DependencyRule
	Computed     []ComputedRule

	// CreateOnly forms have no edit/delete path (e.g. the markup calculator).
	CreateOnly bool

	Adapter Adapter
}

// Field returns the field with the given name.
func (d Definition) Field(name string) (Field, bool) {
	for _, f := range d.Fields {
		if f.Name == name {
			return f, true
		}
	}
	return Field{}, false
}

// OptionSets returns the distinct option set keys used by the definition, in
// field order.
func (d Definition) OptionSets() []string {
	seen := make(map[string]bool)
	var keys []string
	add := func(k string) {
		if k != "" && !seen[k] {
			seen[k] = true
			keys = append(keys, k)
		}
	}
	for _, f := range d.Fields {
		add(f.OptionSet)
	}
	for _, dep := range d.Dependencies {
		add(dep.OptionSet)
	}
	return keys
}

// Record is an entity as returned by the API: a decoded JSON object.
type Record map[string]any

// IDField is the identity key of every record.
const IDField = "id"

// ID returns the record identity as a string, or "" for new records.
func (r Record) ID() string {
	if r == nil {
		return ""
	}
	s, err := stringValue(r[IDField])
	if err != nil {
		return ""
	}
	return s
}

// stringValue renders a decoded JSON scalar as the string a field holds.
// nil becomes "", objects and arrays are rejected.
func stringValue(v any) (string, error) {
	switch val := v.(type) {
	case nil:
		return "", nil
	case string:
		return val, nil
	case json.Number:
		return val.String(), nil
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64), nil
	case float32:
		return strconv.FormatFloat(float64(val), 'f', -1, 32), nil
	case int:
		return strconv.Itoa(val), nil
	case int64:
		return strconv.FormatInt(val, 10), nil
	case bool:
		return strconv.FormatBool(val), nil
	default:
		return "", fmt.Errorf("unsupported value type %T", v)
	}
}

// InitialValues derives the field values a form opens with: the record's
// values for an existing record, field Initial values (overlaid with ctx) for
// a new one.
func (d Definition) InitialValues(rec Record, ctx map[string]string) (map[string]string, error) {
	values := make(map[string]string, len(d.Fields))
	for _, f := range d.Fields {
		if rec == nil {
			values[f.Name] = f.Initial
			if v, ok := ctx[f.Name]; ok {
				values[f.Name] = v
			}
			continue
		}
		s, err := stringValue(rec[f.Name])
		if err != nil {
			return nil, fmt.Errorf("field %q: %w", f.Name, err)
		}
		values[f.Name] = s
	}
	return values, nil
}
