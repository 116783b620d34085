package forms

import (
	"strconv"
	"strings"

	"github.com/zjrosen/backoffice/internal/form"
)

// Markup is the markup calculator: enter cost and markup percentage, the
// price is derived. It only creates records and stays open between entries.
func Markup(a form.Adapter) Form {
	return Form{
		Definition: form.Definition{
			Name:       "markup",
			Title:      "Markup calculator",
			Collection: "markups",
			Fields: []form.Field{
				{Name: "item", Label: "Item", Rules: []form.Rule{form.Required(), form.MaxLength(60)}},
				{Name: "cost", Label: "Cost", Kind: form.KindNumber, Rules: []form.Rule{form.Required(), form.NumberRange(0, 1_000_000_000)}},
				{Name: "markup_pct", Label: "Markup %", Kind: form.KindNumber, Initial: "30", Rules: []form.Rule{form.Required(), form.NumberRange(0, 1000)}},
				{Name: "price", Label: "Price", Kind: form.KindNumber, ReadOnly: true, Optional: true},
			},
			Computed: []form.ComputedRule{{
				Sources: []string{"cost", "markup_pct"},
				Target:  "price",
				Compute: MarkupPrice,
			}},
			CreateOnly: true,
			Adapter:    a,
		},
		Columns: []Column{
			{Field: "item", Title: "Item", Width: 24},
			{Field: "cost", Title: "Cost", Width: 14, Money: true},
			{Field: "markup_pct", Title: "Markup %", Width: 9},
			{Field: "price", Title: "Price", Width: 14, Money: true},
		},
		StayOpen: true,
	}
}

// MarkupPrice computes cost * (1 + markup_pct/100) rounded to cents, or ""
// while either input is not a number.
func MarkupPrice(values map[string]string) string {
	cost, err := form.ParseNumber(strings.TrimSpace(values["cost"]))
	if err != nil {
		return ""
	}
	pct, err := form.ParseNumber(strings.TrimSpace(values["markup_pct"]))
	if err != nil {
		return ""
	}
	return strconv.FormatFloat(cost*(1+pct/100), 'f', 2, 64)
}
