package api

import (
	"context"
	"net/http"
	"strings"

	"github.com/goliatone/go-session/core"
)

// Catalog is the read side shared by Client and CachedCatalog.
type Catalog interface {
	ListServices(ctx context.Context) ([]ServiceItem, error)
	GetService(ctx context.Context, id string) (ServiceItem, error)
	GetServiceContent(ctx context.Context, serviceID string) ([]ContentItem, error)
}

func (c *Client) ListServices(ctx context.Context) ([]ServiceItem, error) {
	res, err := c.public(ctx, "list_services", http.MethodGet, c.endpoint(c.config.Endpoints.Services), nil, nil)
	if err != nil {
		return nil, err
	}
	items, err := decodeList("list_services", res.Body)
	if err != nil {
		return nil, err
	}
	out := make([]ServiceItem, 0, len(items))
	for _, item := range items {
		out = append(out, serviceFromMap(item, c.session.ExtractImageURLs(item)))
	}
	return out, nil
}

func (c *Client) GetService(ctx context.Context, id string) (ServiceItem, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return ServiceItem{}, core.NewBadInputError("api: service id is required", map[string]any{"operation": "get_service"})
	}
	res, err := c.public(ctx, "get_service", http.MethodGet, c.endpoint(c.config.Endpoints.Services, id), nil, nil)
	if err != nil {
		return ServiceItem{}, err
	}
	raw, err := decodeObject("get_service", res.Body)
	if err != nil {
		return ServiceItem{}, err
	}
	return serviceFromMap(raw, c.session.ExtractImageURLs(raw)), nil
}

// GetServiceContent lists the content entries of a service. Every entry
// carries at least one display image.
func (c *Client) GetServiceContent(ctx context.Context, serviceID string) ([]ContentItem, error) {
	serviceID = strings.TrimSpace(serviceID)
	if serviceID == "" {
		return nil, core.NewBadInputError("api: service id is required", map[string]any{"operation": "get_service_content"})
	}
	res, err := c.public(ctx, "get_service_content", http.MethodGet, c.endpoint(c.config.Endpoints.ServiceContent), map[string]string{
		"service": serviceID,
	}, nil)
	if err != nil {
		return nil, err
	}
	items, err := decodeList("get_service_content", res.Body)
	if err != nil {
		return nil, err
	}
	out := make([]ContentItem, 0, len(items))
	for _, item := range items {
		content := contentFromMap(item, c.session.ExtractImageURLs(item))
		if content.ServiceID == "" {
			content.ServiceID = serviceID
		}
		out = append(out, content)
	}
	return out, nil
}

var _ Catalog = (*Client)(nil)
