package config

import (
	"fmt"
	"log/slog"

	"github.com/coolbeans/gesetze/pkg/library"
	"github.com/coolbeans/gesetze/pkg/linker"
	"github.com/coolbeans/gesetze/pkg/provider"
)

// NewProviders creates all providers, loading overridden indexes from disk.
func (c *Config) NewProviders() ([]provider.Provider, error) {
	providers := make([]provider.Provider, 0, len(provider.DefaultOrder))
	for _, id := range provider.DefaultOrder {
		var opts []provider.Option
		if path, ok := c.Libraries[id]; ok {
			opts = append(opts, provider.WithLibraryFile(path))
		}
		p, err := provider.New(id, opts...)
		if err != nil {
			return nil, err
		}
		providers = append(providers, p)
	}
	return providers, nil
}

// NewResolver creates the resolver described by the configuration.
func (c *Config) NewResolver() (*linker.Resolver, error) {
	providers, err := c.NewProviders()
	if err != nil {
		return nil, err
	}
	return linker.NewResolver(providers, c.ResolverConfig(), linker.WithCacheSize(c.CacheSize))
}

// WatchLibraries reloads overridden indexes into the resolver when their files
// change. It returns a nil watcher when there is nothing to watch.
func (c *Config) WatchLibraries(resolver *linker.Resolver, logger *slog.Logger) (*library.Watcher, error) {
	if len(c.Libraries) == 0 {
		return nil, nil
	}
	if logger == nil {
		logger = slog.Default()
	}

	watcher := library.NewWatcher(logger)
	for id, path := range c.Libraries {
		opts, err := provider.LoadOptions(id)
		if err != nil {
			return nil, err
		}

		onReload := func(path string, lib *library.Library) {
			reloaded, err := provider.New(id, provider.WithLibrary(lib))
			if err != nil {
				logger.Error("provider rebuild failed", "provider", id, "error", err)
				return
			}
			if err := resolver.ReplaceProvider(reloaded); err != nil {
				logger.Error("provider swap failed", "provider", id, "error", err)
				return
			}
			logger.Info("provider index swapped", "provider", id, "path", path, "laws", lib.Len())
		}
		if err := watcher.Add(path, onReload, opts...); err != nil {
			return nil, fmt.Errorf("watch %s library: %w", id, err)
		}
	}

	if err := watcher.Start(); err != nil {
		return nil, err
	}
	return watcher, nil
}
