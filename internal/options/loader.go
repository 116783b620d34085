// Package options loads the option sets select fields draw from. Lists are
// fetched from the API and kept in a read-through cache so reopening a form
// does not refetch them.
package options

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/zjrosen/backoffice/internal/cachemanager"
	"github.com/zjrosen/backoffice/internal/form"
	"github.com/zjrosen/backoffice/internal/log"
	"github.com/zjrosen/backoffice/internal/rest"
)

// Source describes where an option set comes from.
type Source struct {
	Key        string   // option set key referenced by form fields
	Collection string   // REST collection listed for the options
	ValueField string   // record key used as the option value (default "id")
	LabelField string   // record key shown to the operator (default "name")
	Attrs      []string // record keys copied into Option.Attrs
}

// Lister lists the records of a collection.
type Lister interface {
	List(ctx context.Context) ([]form.Record, error)
}

// Loader resolves option set keys to options.
type Loader struct {
	sources map[string]Source
	listers map[string]Lister
	cache   *cachemanager.ReadThroughCache[[]form.Option, Source]
	ttl     time.Duration
}

// NewLoader returns a loader whose collections are listed with listerFor.
// A ttl of zero disables caching.
func NewLoader(listerFor func(collection string) Lister, cache cachemanager.CacheManager[[]form.Option], ttl time.Duration, sources ...Source) *Loader {
	l := &Loader{
		sources: make(map[string]Source, len(sources)),
		listers: make(map[string]Lister),
		ttl:     ttl,
	}
	for _, src := range sources {
		if src.ValueField == "" {
			src.ValueField = form.IDField
		}
		if src.LabelField == "" {
			src.LabelField = "name"
		}
		l.sources[src.Key] = src
		if _, ok := l.listers[src.Collection]; !ok {
			l.listers[src.Collection] = listerFor(src.Collection)
		}
	}
	l.cache = cachemanager.NewReadThroughCache(cache, l.fetch, ttl <= 0)
	return l
}

// NewRESTLoader is NewLoader over rest resources of one client.
func NewRESTLoader(res func(collection string) *rest.Resource, cache cachemanager.CacheManager[[]form.Option], ttl time.Duration, sources ...Source) *Loader {
	return NewLoader(func(collection string) Lister { return res(collection) }, cache, ttl, sources...)
}

// Keys returns the configured option set keys, sorted.
func (l *Loader) Keys() []string {
	keys := make([]string, 0, len(l.sources))
	for k := range l.sources {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Load returns the options for key.
func (l *Loader) Load(ctx context.Context, key string) ([]form.Option, error) {
	src, ok := l.sources[key]
	if !ok {
		return nil, fmt.Errorf("unknown option set %q", key)
	}
	return l.cache.Get(ctx, key, src, l.ttl)
}

// InvalidateCollection drops cached option sets built from collection, so
// edits made in one form show up in another's selects.
func (l *Loader) InvalidateCollection(ctx context.Context, collection string) {
	var keys []string
	for key, src := range l.sources {
		if src.Collection == collection {
			keys = append(keys, key)
		}
	}
	if len(keys) == 0 {
		return
	}
	if err := l.cache.Invalidate(ctx, keys...); err != nil {
		log.ErrorErr(log.CatOptions, "invalidate option sets", err, "collection", collection)
		return
	}
	log.Debug(log.CatOptions, "option sets invalidated", "collection", collection, "keys", strings.Join(keys, ","))
}

func (l *Loader) fetch(ctx context.Context, src Source) ([]form.Option, error) {
	lister, ok := l.listers[src.Collection]
	if !ok || lister == nil {
		return nil, fmt.Errorf("no lister for collection %q", src.Collection)
	}
	recs, err := lister.List(ctx)
	if err != nil {
		return nil, err
	}
	return ToOptions(src, recs), nil
}

// ToOptions maps records to options. Records without a value are skipped;
// a missing label falls back to the value.
func ToOptions(src Source, recs []form.Record) []form.Option {
	valueField, labelField := src.ValueField, src.LabelField
	if valueField == "" {
		valueField = form.IDField
	}
	if labelField == "" {
		labelField = "name"
	}

	opts := make([]form.Option, 0, len(recs))
	for _, rec := range recs {
		value := scalar(rec[valueField])
		if value == "" {
			continue
		}
		label := scalar(rec[labelField])
		if label == "" {
			label = value
		}
		opt := form.Option{Value: value, Label: label}
		if len(src.Attrs) > 0 {
			opt.Attrs = make(map[string]string, len(src.Attrs))
			for _, attr := range src.Attrs {
				opt.Attrs[attr] = scalar(rec[attr])
			}
		}
		opts = append(opts, opt)
	}
	return opts
}

func scalar(v any) string {
	if v == nil {
		return ""
	}
	switch v.(type) {
	case map[string]any, []any:
		return ""
	}
	return strings.TrimSpace(fmt.Sprint(v))
}
