package presentation

import (
	"github.com/zjrosen/backoffice/internal/forms"
)

// FormDTO describes a form for presentation.
type FormDTO struct {
	Name       string       `json:"name"`
	Title      string       `json:"title"`
	Collection string       `json:"collection"`
	Endpoint   string       `json:"endpoint"`
	CreateOnly bool         `json:"create_only"`
	StayOpen   bool         `json:"stay_open"`
	Fields     []FieldDTO   `json:"fields"`
	Derived    []DerivedDTO `json:"derived,omitempty"`
}

// FieldDTO represents one form field.
type FieldDTO struct {
	Name      string   `json:"name"`
	Label     string   `json:"label"`
	Kind      string   `json:"kind"`
	Optional  bool     `json:"optional"`
	ReadOnly  bool     `json:"read_only"`
	OptionSet string   `json:"option_set,omitempty"`
	Choices   []string `json:"choices,omitempty"`
}

// DerivedDTO describes a field filled from other fields, either from the
// attributes of a selected option or by computation.
type DerivedDTO struct {
	Target    string   `json:"target"`
	From      []string `json:"from"`
	OptionSet string   `json:"option_set,omitempty"`
}

// FromForm converts a form to a DTO. baseURL prefixes the endpoint.
func FromForm(f forms.Form, baseURL string, stayOpen bool) FormDTO {
	dto := FormDTO{
		Name:       f.Name,
		Title:      f.Title,
		Collection: f.Collection,
		Endpoint:   baseURL + "/" + f.Collection,
		CreateOnly: f.CreateOnly,
		StayOpen:   stayOpen,
		Fields:     make([]FieldDTO, 0, len(f.Fields)),
	}

	for _, field := range f.Fields {
		fd := FieldDTO{
			Name:      field.Name,
			Label:     field.Label,
			Kind:      field.Kind.String(),
			Optional:  field.Optional,
			ReadOnly:  field.ReadOnly,
			OptionSet: field.OptionSet,
		}
		for _, c := range field.Choices {
			fd.Choices = append(fd.Choices, c.Value)
		}
		dto.Fields = append(dto.Fields, fd)
	}

	for _, dep := range f.Dependencies {
		for _, target := range dep.Targets {
			dto.Derived = append(dto.Derived, DerivedDTO{
				Target:    target,
				From:      []string{dep.Source},
				OptionSet: dep.OptionSet,
			})
		}
	}
	for _, rule := range f.Computed {
		dto.Derived = append(dto.Derived, DerivedDTO{Target: rule.Target, From: rule.Sources})
	}
	return dto
}

// FromForms converts forms to DTOs, resolving stay-open per form name.
func FromForms(all []forms.Form, baseURL string, stayOpen func(name string, def bool) bool) []FormDTO {
	dtos := make([]FormDTO, len(all))
	for i, f := range all {
		dtos[i] = FromForm(f, baseURL, stayOpen(f.Name, f.StayOpen))
	}
	return dtos
}
