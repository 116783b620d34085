// Package forms declares the concrete back office forms. Each constructor
// takes the adapter that persists its records, so the same definitions run
// against the production API, the devserver, or a test fake.
package forms

import (
	"sort"

	"github.com/zjrosen/backoffice/internal/form"
	"github.com/zjrosen/backoffice/internal/options"
)

// Form is a definition plus how the app lists its records.
type Form struct {
	form.Definition

	// Columns shown on the record list screen.
	Columns []Column
	// StayOpen resets a new-record form after each create instead of closing.
	StayOpen bool
}

// Column is one record list column.
type Column struct {
	Field     string
	Title     string
	Width     int
	Money     bool   // format as a currency amount
	OptionSet string // show the option label instead of the raw value
}

// AdapterFor returns the adapter bound to a collection.
type AdapterFor func(collection string) form.Adapter

// Option set keys.
const (
	OptionEmployees   = "employees"
	OptionDepartments = "departments"
)

// Sources returns the option sources every form draws from.
func Sources() []options.Source {
	return []options.Source{
		{
			Key:        OptionEmployees,
			Collection: "employees",
			Attrs:      []string{"division", "city"},
		},
		{
			Key:        OptionDepartments,
			Collection: "departments",
			ValueField: "name",
		},
	}
}

// All returns every form, in menu order.
func All(adapterFor AdapterFor) []Form {
	return []Form{
		Contact(adapterFor("contacts")),
		Employee(adapterFor("employees")),
		Cleaning(adapterFor("cleanings")),
		Ledger(adapterFor("ledger")),
		Markup(adapterFor("markups")),
	}
}

// Names returns the names of forms, sorted.
func Names(all []Form) []string {
	names := make([]string, len(all))
	for i, f := range all {
		names[i] = f.Name
	}
	sort.Strings(names)
	return names
}

// Find returns the form called name.
func Find(all []Form, name string) (Form, bool) {
	for _, f := range all {
		if f.Name == name {
			return f, true
		}
	}
	return Form{}, false
}
