package query

import "strings"

const (
	TypeProfile           = "session.query.profile"
	TypeListServices      = "session.query.services.list"
	TypeGetService        = "session.query.services.get"
	TypeGetServiceContent = "session.query.service_content.list"
	TypeListBookings      = "session.query.bookings.list"
)

type ProfileMessage struct{}

func (ProfileMessage) Type() string { return TypeProfile }

func (ProfileMessage) Validate() error { return nil }

type ListServicesMessage struct{}

func (ListServicesMessage) Type() string { return TypeListServices }

func (ListServicesMessage) Validate() error { return nil }

type GetServiceMessage struct {
	ID string
}

func (GetServiceMessage) Type() string { return TypeGetService }

func (m GetServiceMessage) Validate() error {
	if strings.TrimSpace(m.ID) == "" {
		return queryValidationError("id", "service id is required")
	}
	return nil
}

type GetServiceContentMessage struct {
	ServiceID string
}

func (GetServiceContentMessage) Type() string { return TypeGetServiceContent }

func (m GetServiceContentMessage) Validate() error {
	if strings.TrimSpace(m.ServiceID) == "" {
		return queryValidationError("service_id", "service id is required")
	}
	return nil
}

type ListBookingsMessage struct{}

func (ListBookingsMessage) Type() string { return TypeListBookings }

func (ListBookingsMessage) Validate() error { return nil }
