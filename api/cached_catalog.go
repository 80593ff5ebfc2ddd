package api

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	repositorycache "github.com/goliatone/go-repository-cache/cache"
	"github.com/goliatone/go-session/core"
)

const catalogCacheKeyPrefix = "go-session::catalog::v1"

// CachedCatalog is a read-through cache over the public catalog reads.
type CachedCatalog struct {
	base  Catalog
	cache repositorycache.CacheService
}

func NewCachedCatalog(base Catalog, cacheService repositorycache.CacheService) (*CachedCatalog, error) {
	if base == nil {
		return nil, core.NewBadInputError("api: base catalog is required", nil)
	}
	if cacheService == nil {
		return nil, core.NewBadInputError("api: catalog cache service is required", nil)
	}
	return &CachedCatalog{base: base, cache: cacheService}, nil
}

// CatalogCacheKey returns go-session::catalog::v1::<resource>[::<id>] with
// the id URL-path escaped.
func CatalogCacheKey(resource string, id string) string {
	segments := []string{catalogCacheKeyPrefix, strings.TrimSpace(resource)}
	if id = strings.TrimSpace(id); id != "" {
		segments = append(segments, url.PathEscape(id))
	}
	return strings.Join(segments, "::")
}

func (c *CachedCatalog) ListServices(ctx context.Context) ([]ServiceItem, error) {
	if err := c.ready(); err != nil {
		return nil, err
	}
	items, err := repositorycache.GetOrFetch(ctx, c.cache, CatalogCacheKey("services", ""), func(ctx context.Context) ([]ServiceItem, error) {
		return c.base.ListServices(ctx)
	})
	if err != nil {
		return nil, err
	}
	return cloneServices(items), nil
}

func (c *CachedCatalog) GetService(ctx context.Context, id string) (ServiceItem, error) {
	if err := c.ready(); err != nil {
		return ServiceItem{}, err
	}
	id = strings.TrimSpace(id)
	if id == "" {
		return ServiceItem{}, core.NewBadInputError("api: service id is required", map[string]any{"operation": "get_service"})
	}
	item, err := repositorycache.GetOrFetch(ctx, c.cache, CatalogCacheKey("service", id), func(ctx context.Context) (ServiceItem, error) {
		return c.base.GetService(ctx, id)
	})
	if err != nil {
		return ServiceItem{}, err
	}
	return cloneService(item), nil
}

func (c *CachedCatalog) GetServiceContent(ctx context.Context, serviceID string) ([]ContentItem, error) {
	if err := c.ready(); err != nil {
		return nil, err
	}
	serviceID = strings.TrimSpace(serviceID)
	if serviceID == "" {
		return nil, core.NewBadInputError("api: service id is required", map[string]any{"operation": "get_service_content"})
	}
	items, err := repositorycache.GetOrFetch(ctx, c.cache, CatalogCacheKey("service_content", serviceID), func(ctx context.Context) ([]ContentItem, error) {
		return c.base.GetServiceContent(ctx, serviceID)
	})
	if err != nil {
		return nil, err
	}
	return cloneContent(items), nil
}

// Invalidate drops the cached entries of one service, or the service list
// when serviceID is empty.
func (c *CachedCatalog) Invalidate(ctx context.Context, serviceID string) error {
	if err := c.ready(); err != nil {
		return err
	}
	keys := []string{CatalogCacheKey("services", "")}
	if serviceID = strings.TrimSpace(serviceID); serviceID != "" {
		keys = append(keys, CatalogCacheKey("service", serviceID), CatalogCacheKey("service_content", serviceID))
	}
	for _, key := range keys {
		if err := c.cache.Delete(ctx, key); err != nil {
			return fmt.Errorf("api: invalidate %s: %w", key, err)
		}
	}
	return nil
}

func (c *CachedCatalog) ready() error {
	if c == nil || c.base == nil || c.cache == nil {
		return core.NewInternalError("api: cached catalog is not configured", nil)
	}
	return nil
}

func cloneServices(items []ServiceItem) []ServiceItem {
	out := make([]ServiceItem, 0, len(items))
	for _, item := range items {
		out = append(out, cloneService(item))
	}
	return out
}

func cloneService(item ServiceItem) ServiceItem {
	cloned := item
	cloned.ImageURLs = append([]string(nil), item.ImageURLs...)
	return cloned
}

func cloneContent(items []ContentItem) []ContentItem {
	out := make([]ContentItem, 0, len(items))
	for _, item := range items {
		cloned := item
		cloned.ImageURLs = append([]string(nil), item.ImageURLs...)
		out = append(out, cloned)
	}
	return out
}

var _ Catalog = (*CachedCatalog)(nil)
