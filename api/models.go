package api

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
)

type Profile struct {
	ID         string         `json:"id"`
	Email      string         `json:"email"`
	Username   string         `json:"username"`
	FirstName  string         `json:"first_name"`
	LastName   string         `json:"last_name"`
	Attributes map[string]any `json:"attributes,omitempty"`
}

type RegistrationInput struct {
	Email      string
	Username   string
	Password   string
	RePassword string
	FirstName  string
	LastName   string
	Extra      map[string]any
}

type ServiceItem struct {
	ID          string         `json:"id"`
	Name        string         `json:"name"`
	Description string         `json:"description"`
	Price       string         `json:"price"`
	ImageURLs   []string       `json:"image_urls"`
	Attributes  map[string]any `json:"attributes,omitempty"`
}

type ContentItem struct {
	ID         string         `json:"id"`
	ServiceID  string         `json:"service_id"`
	Title      string         `json:"title"`
	Body       string         `json:"body"`
	ImageURLs  []string       `json:"image_urls"`
	Attributes map[string]any `json:"attributes,omitempty"`
}

type Booking struct {
	ID         string         `json:"id"`
	ServiceID  string         `json:"service_id"`
	Date       string         `json:"date"`
	Status     string         `json:"status"`
	Notes      string         `json:"notes"`
	Attributes map[string]any `json:"attributes,omitempty"`
}

type BookingInput struct {
	ServiceID string
	Date      string
	Notes     string
	Extra     map[string]any
}

func profileFromMap(raw map[string]any) Profile {
	return Profile{
		ID:         readID(raw, "id", "pk"),
		Email:      readText(raw, "email"),
		Username:   readText(raw, "username"),
		FirstName:  readText(raw, "first_name"),
		LastName:   readText(raw, "last_name"),
		Attributes: raw,
	}
}

func serviceFromMap(raw map[string]any, images []string) ServiceItem {
	return ServiceItem{
		ID:          readID(raw, "id", "pk"),
		Name:        readText(raw, "name", "title"),
		Description: readText(raw, "description"),
		Price:       readText(raw, "price"),
		ImageURLs:   images,
		Attributes:  raw,
	}
}

func contentFromMap(raw map[string]any, images []string) ContentItem {
	return ContentItem{
		ID:         readID(raw, "id", "pk"),
		ServiceID:  readID(raw, "service", "service_id"),
		Title:      readText(raw, "title", "name"),
		Body:       readText(raw, "body", "content", "description"),
		ImageURLs:  images,
		Attributes: raw,
	}
}

func bookingFromMap(raw map[string]any) Booking {
	return Booking{
		ID:         readID(raw, "id", "pk"),
		ServiceID:  readID(raw, "service", "service_id"),
		Date:       readText(raw, "date", "booking_date", "scheduled_for"),
		Status:     readText(raw, "status"),
		Notes:      readText(raw, "notes"),
		Attributes: raw,
	}
}

// readID accepts numeric and string identifiers, and nested objects carrying
// an id.
func readID(raw map[string]any, keys ...string) string {
	for _, key := range keys {
		switch typed := raw[key].(type) {
		case string:
			if trimmed := strings.TrimSpace(typed); trimmed != "" {
				return trimmed
			}
		case float64:
			if typed == math.Trunc(typed) {
				return strconv.FormatInt(int64(typed), 10)
			}
			return strconv.FormatFloat(typed, 'f', -1, 64)
		case json.Number:
			return typed.String()
		case map[string]any:
			if nested := readID(typed, "id", "pk"); nested != "" {
				return nested
			}
		}
	}
	return ""
}

func readText(raw map[string]any, keys ...string) string {
	for _, key := range keys {
		switch typed := raw[key].(type) {
		case string:
			if trimmed := strings.TrimSpace(typed); trimmed != "" {
				return trimmed
			}
		case float64, bool, json.Number:
			return fmt.Sprint(typed)
		}
	}
	return ""
}
