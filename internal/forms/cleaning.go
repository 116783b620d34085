package forms

import "github.com/zjrosen/backoffice/internal/form"

// CleaningStatuses are the states of a housekeeping record.
var CleaningStatuses = []form.Option{
	{Value: "pending", Label: "Pending"},
	{Value: "done", Label: "Done"},
	{Value: "inspected", Label: "Inspected"},
}

// Cleaning is a housekeeping record. Choosing the employee fills in their
// division and city; the version field carries the optimistic lock.
func Cleaning(a form.Adapter) Form {
	return Form{
		Definition: form.Definition{
			Name:       "cleaning",
			Title:      "Cleaning",
			Collection: "cleanings",
			Fields: []form.Field{
				{Name: "employee", Label: "Employee", Kind: form.KindSelect, OptionSet: OptionEmployees, Numeric: true, Rules: []form.Rule{form.Required()}},
				{Name: "division", Label: "Division", ReadOnly: true, Optional: true},
				{Name: "city", Label: "City", ReadOnly: true, Optional: true},
				{Name: "unit", Label: "Unit", Rules: []form.Rule{form.Required(), form.MaxLength(12)}},
				{Name: "date", Label: "Date", Kind: form.KindDate, Hint: "YYYY-MM-DD", Rules: []form.Rule{form.Required(), form.Date()}},
				{Name: "status", Label: "Status", Kind: form.KindSelect, Initial: "pending", Choices: CleaningStatuses, Rules: []form.Rule{form.Required()}},
				{Name: "hours", Label: "Hours", Kind: form.KindNumber, Optional: true, Rules: []form.Rule{form.NumberRange(0, 24)}},
				{Name: "version", Label: "Version", Kind: form.KindNumber, ReadOnly: true, Optional: true},
			},
			Dependencies: []form.DependencyRule{{
				Source:    "employee",
				OptionSet: OptionEmployees,
				Targets:   []string{"division", "city"},
				Resolve:   form.CopyAttrs(map[string]string{"division": "division", "city": "city"}),
			}},
			Adapter: a,
		},
		Columns: []Column{
			{Field: "date", Title: "Date", Width: 12},
			{Field: "unit", Title: "Unit", Width: 8},
			{Field: "employee", Title: "Employee", Width: 20, OptionSet: OptionEmployees},
			{Field: "city", Title: "City", Width: 12},
			{Field: "status", Title: "Status", Width: 10},
		},
	}
}
