package forms

import "github.com/zjrosen/backoffice/internal/form"

// Contact is a person the office corresponds with.
func Contact(a form.Adapter) Form {
	return Form{
		Definition: form.Definition{
			Name:       "contact",
			Title:      "Contact",
			Collection: "contacts",
			Fields: []form.Field{
				{Name: "name", Label: "Name", Rules: []form.Rule{form.Required(), form.MaxLength(80)}},
				{Name: "department", Label: "Department", Kind: form.KindSelect, OptionSet: OptionDepartments, Rules: []form.Rule{form.Required()}},
				{Name: "email", Label: "Email", Rules: []form.Rule{form.Required(), form.Email()}},
				{Name: "phone", Label: "Phone", Hint: "optional", Optional: true, Rules: []form.Rule{form.MaxLength(20)}},
			},
			Adapter: a,
		},
		Columns: []Column{
			{Field: "name", Title: "Name", Width: 22},
			{Field: "department", Title: "Department", Width: 14},
			{Field: "email", Title: "Email", Width: 26},
			{Field: "phone", Title: "Phone", Width: 14},
		},
	}
}
