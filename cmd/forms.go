package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/zjrosen/backoffice/internal/form"
	"github.com/zjrosen/backoffice/internal/forms"
	"github.com/zjrosen/backoffice/internal/presentation"
)

var formsCmd = &cobra.Command{
	Use:   "forms [name...]",
	Short: "List the form definitions as JSON",
	Long: `List every form with its fields, option sets, derived fields and the
endpoint it submits to, as JSON. Pass form names to show only those.

Examples:
  # List all forms
  backoffice forms

  # Only the cleaning form
  backoffice forms cleaning

  # Endpoints only
  backoffice forms | jq '.[].endpoint'`,
	RunE: func(cmd *cobra.Command, args []string) error {
		all := forms.All(func(string) form.Adapter { return nil })
		selected, err := selectForms(all, args)
		if err != nil {
			return err
		}

		formatter := presentation.NewFormatter(os.Stdout)
		dtos := presentation.FromForms(selected, cfg.API.BaseURL, cfg.StayOpen)

		return formatter.FormatForms(dtos)
	},
}

func init() {
	rootCmd.AddCommand(formsCmd)
}

// selectForms returns the forms named in names, in the order given. No
// names selects every form.
func selectForms(all []forms.Form, names []string) ([]forms.Form, error) {
	if len(names) == 0 {
		return all, nil
	}
	selected := make([]forms.Form, 0, len(names))
	for _, name := range names {
		f, ok := forms.Find(all, name)
		if !ok {
			return nil, fmt.Errorf("unknown form %q (known: %s)", name, strings.Join(forms.Names(all), ", "))
		}
		selected = append(selected, f)
	}
	return selected, nil
}
