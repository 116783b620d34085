package app

import (
	"github.com/zjrosen/backoffice/internal/api"
	"github.com/zjrosen/backoffice/internal/cachemanager"
	"github.com/zjrosen/backoffice/internal/config"
	"github.com/zjrosen/backoffice/internal/form"
	"github.com/zjrosen/backoffice/internal/forms"
	"github.com/zjrosen/backoffice/internal/options"
	"github.com/zjrosen/backoffice/internal/rest"
)

// Remote returns Deps whose forms, record lists and option sets all go
// through the REST API behind client.
func Remote(cfg config.Config, client *api.Client) Deps {
	resource := func(collection string) *rest.Resource { return rest.New(client, collection) }

	ttl := cfg.Options.CacheTTL
	cache := cachemanager.NewInMemoryCacheManager[[]form.Option]("options", ttl, cachemanager.DefaultCleanupInterval)
	loader := options.NewRESTLoader(resource, cache, ttl, forms.Sources()...)

	return Deps{
		Config:  cfg,
		Forms:   forms.All(func(c string) form.Adapter { return resource(c) }),
		Records: func(c string) options.Lister { return resource(c) },
		Options: loader,
	}
}
