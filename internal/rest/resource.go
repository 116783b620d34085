// Package rest binds form definitions to REST collections.
package rest

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"

	"github.com/zjrosen/backoffice/internal/api"
	"github.com/zjrosen/backoffice/internal/form"
)

// Resource is one REST collection, e.g. /contacts. It implements form.Adapter:
//
//	POST   /contacts        create
//	PATCH  /contacts/{id}   update
//	DELETE /contacts/{id}   remove
type Resource struct {
	Client *api.Client
	Path   string
}

// New returns the resource at path.
func New(client *api.Client, path string) *Resource {
	return &Resource{Client: client, Path: "/" + strings.Trim(path, "/")}
}

var _ form.Adapter = (*Resource)(nil)

func (r *Resource) item(id string) string {
	return r.Path + "/" + url.PathEscape(id)
}

// Create posts a new record and returns the stored record.
func (r *Resource) Create(ctx context.Context, payload form.Payload) (form.Record, error) {
	resp, err := r.Client.Post(ctx, r.Path, payload)
	if err != nil {
		return nil, err
	}
	return decodeRecord(resp)
}

// Update patches the record with the given id.
func (r *Resource) Update(ctx context.Context, id string, payload form.Payload) (form.Record, error) {
	resp, err := r.Client.Patch(ctx, r.item(id), payload)
	if err != nil {
		return nil, err
	}
	return decodeRecord(resp)
}

// Remove deletes the record and returns the identity the server confirmed,
// or id when the response has no body.
func (r *Resource) Remove(ctx context.Context, id string) (string, error) {
	resp, err := r.Client.Delete(ctx, r.item(id))
	if err != nil {
		return "", err
	}
	if len(strings.TrimSpace(string(resp.Data))) == 0 {
		return id, nil
	}
	rec, err := decodeRecord(resp)
	if err != nil {
		return id, nil
	}
	if confirmed := rec.ID(); confirmed != "" {
		return confirmed, nil
	}
	return id, nil
}

// Get fetches one record.
func (r *Resource) Get(ctx context.Context, id string) (form.Record, error) {
	resp, err := r.Client.Get(ctx, r.item(id))
	if err != nil {
		return nil, err
	}
	return decodeRecord(resp)
}

// List fetches the collection. Both a bare array and an envelope with a
// "data", "items" or "results" array are accepted.
func (r *Resource) List(ctx context.Context) ([]form.Record, error) {
	resp, err := r.Client.Get(ctx, r.Path)
	if err != nil {
		return nil, err
	}
	var raw json.RawMessage
	if err := resp.Decode(&raw); err != nil {
		return nil, fmt.Errorf("list %s: %w", r.Path, err)
	}

	var recs []form.Record
	if strings.HasPrefix(strings.TrimSpace(string(raw)), "[") {
		if err := (&api.Response{Data: raw}).Decode(&recs); err != nil {
			return nil, fmt.Errorf("list %s: %w", r.Path, err)
		}
		return recs, nil
	}

	var envelope struct {
		Data    []form.Record `json:"data"`
		Items   []form.Record `json:"items"`
		Results []form.Record `json:"results"`
	}
	if err := (&api.Response{Data: raw}).Decode(&envelope); err != nil {
		return nil, fmt.Errorf("list %s: %w", r.Path, err)
	}
	switch {
	case envelope.Data != nil:
		return envelope.Data, nil
	case envelope.Items != nil:
		return envelope.Items, nil
	}
	return envelope.Results, nil
}

func decodeRecord(resp *api.Response) (form.Record, error) {
	var rec form.Record
	if err := resp.Decode(&rec); err != nil {
		return nil, err
	}
	return rec, nil
}
