package query

import (
	"context"

	"github.com/goliatone/go-session/api"
)

type ProfileReader interface {
	Profile(ctx context.Context) (api.Profile, error)
}

// CatalogReader matches api.Catalog so a CachedCatalog can serve the catalog
// queries.
type CatalogReader interface {
	ListServices(ctx context.Context) ([]api.ServiceItem, error)
	GetService(ctx context.Context, id string) (api.ServiceItem, error)
	GetServiceContent(ctx context.Context, serviceID string) ([]api.ContentItem, error)
}

type BookingReader interface {
	ListBookings(ctx context.Context) ([]api.Booking, error)
}

type ProfileQuery struct {
	reader ProfileReader
}

func NewProfileQuery(reader ProfileReader) *ProfileQuery {
	return &ProfileQuery{reader: reader}
}

func (q *ProfileQuery) Query(ctx context.Context, _ ProfileMessage) (api.Profile, error) {
	if q == nil || q.reader == nil {
		return api.Profile{}, queryDependencyError("query: profile reader is required")
	}
	return q.reader.Profile(ctx)
}

type ListServicesQuery struct {
	reader CatalogReader
}

func NewListServicesQuery(reader CatalogReader) *ListServicesQuery {
	return &ListServicesQuery{reader: reader}
}

func (q *ListServicesQuery) Query(ctx context.Context, _ ListServicesMessage) ([]api.ServiceItem, error) {
	if q == nil || q.reader == nil {
		return nil, queryDependencyError("query: catalog reader is required")
	}
	return q.reader.ListServices(ctx)
}

type GetServiceQuery struct {
	reader CatalogReader
}

func NewGetServiceQuery(reader CatalogReader) *GetServiceQuery {
	return &GetServiceQuery{reader: reader}
}

func (q *GetServiceQuery) Query(ctx context.Context, msg GetServiceMessage) (api.ServiceItem, error) {
	if q == nil || q.reader == nil {
		return api.ServiceItem{}, queryDependencyError("query: catalog reader is required")
	}
	if err := msg.Validate(); err != nil {
		return api.ServiceItem{}, err
	}
	return q.reader.GetService(ctx, msg.ID)
}

type GetServiceContentQuery struct {
	reader CatalogReader
}

func NewGetServiceContentQuery(reader CatalogReader) *GetServiceContentQuery {
	return &GetServiceContentQuery{reader: reader}
}

func (q *GetServiceContentQuery) Query(ctx context.Context, msg GetServiceContentMessage) ([]api.ContentItem, error) {
	if q == nil || q.reader == nil {
		return nil, queryDependencyError("query: catalog reader is required")
	}
	if err := msg.Validate(); err != nil {
		return nil, err
	}
	return q.reader.GetServiceContent(ctx, msg.ServiceID)
}

type ListBookingsQuery struct {
	reader BookingReader
}

func NewListBookingsQuery(reader BookingReader) *ListBookingsQuery {
	return &ListBookingsQuery{reader: reader}
}

func (q *ListBookingsQuery) Query(ctx context.Context, _ ListBookingsMessage) ([]api.Booking, error) {
	if q == nil || q.reader == nil {
		return nil, queryDependencyError("query: booking reader is required")
	}
	return q.reader.ListBookings(ctx)
}
