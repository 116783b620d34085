package forms

import "github.com/zjrosen/backoffice/internal/form"

// LedgerDirections distinguish money received from money paid out.
var LedgerDirections = []form.Option{
	{Value: "in", Label: "In"},
	{Value: "out", Label: "Out"},
}

// Ledger is a cash ledger entry.
func Ledger(a form.Adapter) Form {
	return Form{
		Definition: form.Definition{
			Name:       "ledger",
			Title:      "Cash ledger entry",
			Collection: "ledger",
			Fields: []form.Field{
				{Name: "date", Label: "Date", Kind: form.KindDate, Hint: "YYYY-MM-DD", Rules: []form.Rule{form.Required(), form.Date()}},
				{Name: "description", Label: "Description", Rules: []form.Rule{form.Required(), form.MaxLength(120)}},
				{Name: "direction", Label: "Direction", Kind: form.KindSelect, Initial: "out", Choices: LedgerDirections, Rules: []form.Rule{form.Required()}},
				{Name: "amount", Label: "Amount", Kind: form.KindNumber, Rules: []form.Rule{form.Required(), form.NumberRange(0.01, 1_000_000_000)}},
				{Name: "category", Label: "Category", Optional: true, Rules: []form.Rule{form.MaxLength(40)}},
			},
			Adapter: a,
		},
		Columns: []Column{
			{Field: "date", Title: "Date", Width: 12},
			{Field: "description", Title: "Description", Width: 30},
			{Field: "direction", Title: "Dir", Width: 5},
			{Field: "amount", Title: "Amount", Width: 14, Money: true},
		},
	}
}
