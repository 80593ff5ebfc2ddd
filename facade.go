package session

import (
	"fmt"

	sessioncommand "github.com/goliatone/go-session/command"
	sessionquery "github.com/goliatone/go-session/query"
)

type CommandQueryService interface {
	sessioncommand.MutatingService
	sessionquery.ProfileReader
	sessionquery.CatalogReader
	sessionquery.BookingReader
}

type Commands struct {
	Login                *sessioncommand.LoginCommand
	Logout               *sessioncommand.LogoutCommand
	Register             *sessioncommand.RegisterCommand
	Activate             *sessioncommand.ActivateCommand
	RequestPasswordReset *sessioncommand.RequestPasswordResetCommand
	ConfirmPasswordReset *sessioncommand.ConfirmPasswordResetCommand
	DeleteAccount        *sessioncommand.DeleteAccountCommand
	CreateBooking        *sessioncommand.CreateBookingCommand
}

type Queries struct {
	Profile           *sessionquery.ProfileQuery
	ListServices      *sessionquery.ListServicesQuery
	GetService        *sessionquery.GetServiceQuery
	GetServiceContent *sessionquery.GetServiceContentQuery
	ListBookings      *sessionquery.ListBookingsQuery
}

type Facade struct {
	service  CommandQueryService
	commands Commands
	queries  Queries
}

type FacadeOption func(*facadeOptions)

type facadeOptions struct {
	catalogReader sessionquery.CatalogReader
}

// WithCatalogReader serves the catalog queries from reader, typically an
// api.CachedCatalog, instead of the service.
func WithCatalogReader(reader sessionquery.CatalogReader) FacadeOption {
	return func(options *facadeOptions) {
		options.catalogReader = reader
	}
}

func NewFacade(service CommandQueryService, opts ...FacadeOption) (*Facade, error) {
	if service == nil {
		return nil, fmt.Errorf("session: command/query service is required")
	}
	cfg := facadeOptions{}
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		opt(&cfg)
	}

	catalog := cfg.catalogReader
	if catalog == nil {
		catalog = service
	}

	facade := &Facade{service: service}
	facade.commands = Commands{
		Login:                sessioncommand.NewLoginCommand(service),
		Logout:               sessioncommand.NewLogoutCommand(service),
		Register:             sessioncommand.NewRegisterCommand(service),
		Activate:             sessioncommand.NewActivateCommand(service),
		RequestPasswordReset: sessioncommand.NewRequestPasswordResetCommand(service),
		ConfirmPasswordReset: sessioncommand.NewConfirmPasswordResetCommand(service),
		DeleteAccount:        sessioncommand.NewDeleteAccountCommand(service),
		CreateBooking:        sessioncommand.NewCreateBookingCommand(service),
	}
	facade.queries = Queries{
		Profile:           sessionquery.NewProfileQuery(service),
		ListServices:      sessionquery.NewListServicesQuery(catalog),
		GetService:        sessionquery.NewGetServiceQuery(catalog),
		GetServiceContent: sessionquery.NewGetServiceContentQuery(catalog),
		ListBookings:      sessionquery.NewListBookingsQuery(service),
	}

	return facade, nil
}

func (f *Facade) Commands() Commands {
	if f == nil {
		return Commands{}
	}
	return f.commands
}

func (f *Facade) Queries() Queries {
	if f == nil {
		return Queries{}
	}
	return f.queries
}

func (f *Facade) Service() CommandQueryService {
	if f == nil {
		return nil
	}
	return f.service
}

var _ CommandQueryService = (*Client)(nil)
