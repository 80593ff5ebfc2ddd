package query

import (
	gocmd "github.com/goliatone/go-command"
	"github.com/goliatone/go-session/api"
)

var (
	_ gocmd.Querier[ProfileMessage, api.Profile]                 = (*ProfileQuery)(nil)
	_ gocmd.Querier[ListServicesMessage, []api.ServiceItem]      = (*ListServicesQuery)(nil)
	_ gocmd.Querier[GetServiceMessage, api.ServiceItem]          = (*GetServiceQuery)(nil)
	_ gocmd.Querier[GetServiceContentMessage, []api.ContentItem] = (*GetServiceContentQuery)(nil)
	_ gocmd.Querier[ListBookingsMessage, []api.Booking]          = (*ListBookingsQuery)(nil)
	_ CatalogReader                                              = (api.Catalog)(nil)
)
