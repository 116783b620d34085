package presentation

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/zjrosen/backoffice/internal/form"
	"github.com/zjrosen/backoffice/internal/forms"
)

func allForms() []forms.Form {
	return forms.All(func(string) form.Adapter { return nil })
}

func TestFromForm_Cleaning(t *testing.T) {
	f, ok := forms.Find(allForms(), "cleaning")
	require.True(t, ok)

	dto := FromForm(f, "http://localhost:8484", false)
	require.Equal(t, "http://localhost:8484/cleanings", dto.Endpoint)

	var employee FieldDTO
	for _, fd := range dto.Fields {
		if fd.Name == "employee" {
			employee = fd
		}
	}
	require.Equal(t, "select", employee.Kind)
	require.Equal(t, forms.OptionEmployees, employee.OptionSet)

	var targets []string
	for _, d := range dto.Derived {
		if d.OptionSet == forms.OptionEmployees {
			require.Equal(t, []string{"employee"}, d.From)
			targets = append(targets, d.Target)
		}
	}
	require.ElementsMatch(t, []string{"division", "city"}, targets)
}

func TestFromForms_StayOpenOverride(t *testing.T) {
	dtos := FromForms(allForms(), "", func(name string, def bool) bool {
		return name == "contact" || def
	})

	byName := make(map[string]FormDTO, len(dtos))
	for _, d := range dtos {
		byName[d.Name] = d
	}
	require.True(t, byName["contact"].StayOpen)
	require.True(t, byName["markup"].CreateOnly)
}

func TestFormatForms_IndentedJSON(t *testing.T) {
	var buf bytes.Buffer
	dto := FromForm(forms.Contact(nil), "", false)

	require.NoError(t, NewFormatter(&buf).FormatForms([]FormDTO{dto}))
	require.Contains(t, buf.String(), "\n  {\n    \"name\": \"contact\"")

	var decoded []FormDTO
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	require.Equal(t, dto, decoded[0])
}
