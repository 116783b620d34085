package forms

import "github.com/zjrosen/backoffice/internal/form"

// Divisions an employee can belong to.
var Divisions = []form.Option{
	{Value: "Housekeeping", Label: "Housekeeping"},
	{Value: "Maintenance", Label: "Maintenance"},
	{Value: "Front desk", Label: "Front desk"},
}

// Employee is an HR record.
func Employee(a form.Adapter) Form {
	return Form{
		Definition: form.Definition{
			Name:       "employee",
			Title:      "Employee",
			Collection: "employees",
			Fields: []form.Field{
				{Name: "name", Label: "Name", Rules: []form.Rule{form.Required(), form.MaxLength(80)}},
				{Name: "division", Label: "Division", Kind: form.KindSelect, Choices: Divisions, Rules: []form.Rule{form.Required()}},
				{Name: "city", Label: "City", Rules: []form.Rule{form.Required(), form.MaxLength(40)}},
				{Name: "hired_on", Label: "Hired on", Kind: form.KindDate, Hint: "YYYY-MM-DD", Optional: true, Rules: []form.Rule{form.Date()}},
				{Name: "hourly_rate", Label: "Hourly rate", Kind: form.KindNumber, Optional: true, Rules: []form.Rule{form.NumberRange(0, 1000)}},
			},
			Adapter: a,
		},
		Columns: []Column{
			{Field: "name", Title: "Name", Width: 22},
			{Field: "division", Title: "Division", Width: 14},
			{Field: "city", Title: "City", Width: 14},
			{Field: "hourly_rate", Title: "Rate", Width: 12, Money: true},
		},
	}
}
