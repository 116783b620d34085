package form

import (
	"context"
	"encoding/json"
	"errors"
)

// fakeAdapter records calls and returns canned results.
type fakeAdapter struct {
	creates  []Payload
	updates  []Payload
	updateID []string
	removes  []string

	record Record
	err    error
}

func (a *fakeAdapter) Create(ctx context.Context, payload Payload) (Record, error) {
	a.creates = append(a.creates, payload)
	if a.err != nil {
		return nil, a.err
	}
	return a.record, nil
}

func (a *fakeAdapter) Update(ctx context.Context, id string, payload Payload) (Record, error) {
	a.updates = append(a.updates, payload)
	a.updateID = append(a.updateID, id)
	if a.err != nil {
		return nil, a.err
	}
	return a.record, nil
}

func (a *fakeAdapter) Remove(ctx context.Context, id string) (string, error) {
	a.removes = append(a.removes, id)
	if a.err != nil {
		return "", a.err
	}
	return id, nil
}

func (a *fakeAdapter) calls() int {
	return len(a.creates) + len(a.updates) + len(a.removes)
}

// serverError mimics the API client error carrying a server detail.
type serverError struct {
	detail string
	msg    string
}

func (e *serverError) Error() string        { return e.msg }
func (e *serverError) ServerDetail() string { return e.detail }

// json7 is an id as the API client decodes it.
var json7 = json.Number("7")

var errTransport = errors.New("dial tcp 127.0.0.1:8080: connection refused")

func contactDefinition(a Adapter) Definition {
	return Definition{
		Name:       "contact",
		Title:      "Contact",
		Collection: "contacts",
		Fields: []Field{
			{Name: "department", Label: "Department", Rules: []Rule{Required()}},
			{Name: "email", Label: "Email", Rules: []Rule{Required(), Email()}},
			{Name: "phone", Label: "Phone", Optional: true, Rules: []Rule{MaxLength(20)}},
		},
		Adapter: a,
	}
}

func cleaningDefinition(a Adapter) Definition {
	return Definition{
		Name:       "cleaning",
		Title:      "Cleaning",
		Collection: "cleanings",
		Fields: []Field{
			{Name: "employee", Label: "Employee", Kind: KindSelect, OptionSet: "employees", Optional: true},
			{Name: "division", Label: "Division", ReadOnly: true, Optional: true},
			{Name: "city", Label: "City", ReadOnly: true, Optional: true},
			{Name: "status", Label: "Status", Kind: KindSelect, Initial: "pending", Rules: []Rule{Required()}, Choices: []Option{
				{Value: "pending", Label: "Pending"},
				{Value: "done", Label: "Done"},
			}},
			{Name: "hours", Label: "Hours", Kind: KindNumber, Optional: true, Rules: []Rule{NumberRange(0, 24)}},
		},
		Dependencies: []DependencyRule{{
			Source:    "employee",
			OptionSet: "employees",
			Targets:   []string{"division", "city"},
			Resolve:   CopyAttrs(map[string]string{"division": "division", "city": "city"}),
		}},
		Adapter: a,
	}
}

var employeeOptions = []Option{
	{Value: "4", Label: "Ana Reyes", Attrs: map[string]string{"division": "D", "city": "C"}},
	{Value: "5", Label: "Bo Lind", Attrs: map[string]string{"division": "North", "city": "Oslo"}},
}
