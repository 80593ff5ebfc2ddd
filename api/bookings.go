package api

import (
	"context"
	"net/http"
	"strings"

	goerrors "github.com/goliatone/go-errors"
)

func (c *Client) ListBookings(ctx context.Context) ([]Booking, error) {
	res, err := c.authenticated(ctx, "list_bookings", http.MethodGet, c.endpoint(c.config.Endpoints.Bookings), nil, nil)
	if err != nil {
		return nil, err
	}
	items, err := decodeList("list_bookings", res.Body)
	if err != nil {
		return nil, err
	}
	out := make([]Booking, 0, len(items))
	for _, item := range items {
		out = append(out, bookingFromMap(item))
	}
	return out, nil
}

func (c *Client) CreateBooking(ctx context.Context, input BookingInput) (Booking, error) {
	fields := goerrors.ValidationErrors{}
	requireField(&fields, "service", input.ServiceID)
	requireField(&fields, "date", input.Date)
	if err := validationError("create_booking", fields); err != nil {
		return Booking{}, err
	}
	payload := map[string]any{
		"service": strings.TrimSpace(input.ServiceID),
		"date":    strings.TrimSpace(input.Date),
	}
	if notes := strings.TrimSpace(input.Notes); notes != "" {
		payload["notes"] = notes
	}
	payload = withExtra(payload, input.Extra)

	res, err := c.authenticated(ctx, "create_booking", http.MethodPost, c.endpoint(c.config.Endpoints.Bookings), nil, payload)
	if err != nil {
		return Booking{}, err
	}
	raw, err := decodeObject("create_booking", res.Body)
	if err != nil {
		return Booking{}, err
	}
	return bookingFromMap(raw), nil
}
