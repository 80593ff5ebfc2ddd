package gocommand

import (
	"context"
	"errors"
	"testing"

	"github.com/goliatone/go-command"
	session "github.com/goliatone/go-session"
	"github.com/goliatone/go-session/api"
	sessioncommand "github.com/goliatone/go-session/command"
	"github.com/goliatone/go-session/core"
	sessionquery "github.com/goliatone/go-session/query"
)

type okMessage struct{}

func (okMessage) Type() string { return "session.test.ok" }

type invalidMessage struct{}

func (invalidMessage) Type() string { return "" }

type failingMessage struct{}

func (failingMessage) Type() string { return "session.test.fail" }

func (failingMessage) Validate() error { return errors.New("invalid payload") }

type dispatchMessage struct {
	ID string
}

func (dispatchMessage) Type() string { return "session.test.dispatch" }

func TestValidateMessageContract(t *testing.T) {
	if err := ValidateMessageContract(okMessage{}); err != nil {
		t.Fatalf("expected valid message, got %v", err)
	}
	if err := ValidateMessageContract(invalidMessage{}); err == nil {
		t.Fatalf("expected empty type to fail contract validation")
	}
	if err := ValidateMessageContract(failingMessage{}); err == nil {
		t.Fatalf("expected Validate() failure to bubble")
	}
	if err := ValidateMessageContract(sessionquery.GetServiceMessage{}); err == nil {
		t.Fatalf("expected missing service id to fail contract validation")
	}
	if err := ValidateMessageContract(sessionquery.GetServiceMessage{ID: "1"}); err != nil {
		t.Fatalf("expected service message to pass, got %v", err)
	}
}

func TestRegistryAndDispatchWiring(t *testing.T) {
	adapter := NewRegistryAdapter(command.NewRegistry())
	executed := 0
	customResolverCalled := 0

	cmd := command.CommandFunc[dispatchMessage](func(context.Context, dispatchMessage) error {
		executed++
		return nil
	})

	subscription, err := RegisterAndSubscribe(adapter, cmd)
	if err != nil {
		t.Fatalf("register and subscribe: %v", err)
	}
	t.Cleanup(subscription.Unsubscribe)
	if err := adapter.AddResolver("custom", func(any, command.CommandMeta, *command.Registry) error {
		customResolverCalled++
		return nil
	}); err != nil {
		t.Fatalf("add resolver: %v", err)
	}
	if !adapter.HasResolver("custom") {
		t.Fatalf("expected custom resolver to be registered")
	}
	if err := adapter.Initialize(); err != nil {
		t.Fatalf("initialize registry: %v", err)
	}
	if customResolverCalled == 0 {
		t.Fatalf("expected resolver hook to run during initialization")
	}

	if err := Dispatch(context.Background(), dispatchMessage{ID: "m1"}); err != nil {
		t.Fatalf("dispatch: %v", err)
	}
	if executed != 1 {
		t.Fatalf("expected command execution count=1, got %d", executed)
	}
}

func TestRegisterFacadeDispatchesSessionMessages(t *testing.T) {
	svc := &stubSessionService{}
	facade, err := session.NewFacade(svc)
	if err != nil {
		t.Fatalf("new facade: %v", err)
	}
	adapter := NewRegistryAdapter(nil)
	subscriptions, err := RegisterFacade(adapter, facade)
	if err != nil {
		t.Fatalf("register facade: %v", err)
	}
	t.Cleanup(subscriptions.Unsubscribe)
	if len(subscriptions) != 13 {
		t.Fatalf("expected 13 subscriptions, got %d", len(subscriptions))
	}
	if err := adapter.Initialize(); err != nil {
		t.Fatalf("initialize registry: %v", err)
	}

	ctx := context.Background()
	if err := Dispatch(ctx, sessioncommand.RequestPasswordResetMessage{Email: "ana@example.com"}); err != nil {
		t.Fatalf("dispatch password reset: %v", err)
	}
	if svc.resetEmail != "ana@example.com" {
		t.Fatalf("expected password reset delegation, got %q", svc.resetEmail)
	}

	profile, err := Query[sessionquery.ProfileMessage, api.Profile](ctx, sessionquery.ProfileMessage{})
	if err != nil {
		t.Fatalf("query profile: %v", err)
	}
	if profile.Email != "ana@example.com" {
		t.Fatalf("unexpected profile: %#v", profile)
	}

	items, err := Query[sessionquery.ListServicesMessage, []api.ServiceItem](ctx, sessionquery.ListServicesMessage{})
	if err != nil {
		t.Fatalf("query services: %v", err)
	}
	if len(items) != 1 || items[0].ID != "1" {
		t.Fatalf("unexpected services: %#v", items)
	}
}

func TestRegisterFacadeRequiresCollaborators(t *testing.T) {
	if _, err := RegisterFacade(NewRegistryAdapter(nil), nil); err == nil {
		t.Fatalf("expected nil facade error")
	}
	facade, err := session.NewFacade(&stubSessionService{})
	if err != nil {
		t.Fatalf("new facade: %v", err)
	}
	var adapter *RegistryAdapter
	if _, err := RegisterFacade(adapter, facade); err == nil {
		t.Fatalf("expected unconfigured registry error")
	}
}

type stubSessionService struct {
	resetEmail string
}

func (s *stubSessionService) Login(context.Context, core.LoginRequest) (core.Credential, error) {
	return core.Credential{AccessToken: "a1", RefreshToken: "r1"}, nil
}

func (s *stubSessionService) Logout(context.Context) error { return nil }

func (s *stubSessionService) Register(_ context.Context, input api.RegistrationInput) (api.Profile, error) {
	return api.Profile{Email: input.Email}, nil
}

func (s *stubSessionService) Activate(context.Context, string, string) error { return nil }

func (s *stubSessionService) RequestPasswordReset(_ context.Context, email string) error {
	s.resetEmail = email
	return nil
}

func (s *stubSessionService) ConfirmPasswordReset(context.Context, string, string, string) error {
	return nil
}

func (s *stubSessionService) DeleteAccount(context.Context, string) error { return nil }

func (s *stubSessionService) CreateBooking(_ context.Context, input api.BookingInput) (api.Booking, error) {
	return api.Booking{ServiceID: input.ServiceID}, nil
}

func (s *stubSessionService) Profile(context.Context) (api.Profile, error) {
	return api.Profile{ID: "7", Email: "ana@example.com"}, nil
}

func (s *stubSessionService) ListServices(context.Context) ([]api.ServiceItem, error) {
	return []api.ServiceItem{{ID: "1", Name: "Haircut"}}, nil
}

func (s *stubSessionService) GetService(_ context.Context, id string) (api.ServiceItem, error) {
	return api.ServiceItem{ID: id}, nil
}

func (s *stubSessionService) GetServiceContent(context.Context, string) ([]api.ContentItem, error) {
	return nil, nil
}

func (s *stubSessionService) ListBookings(context.Context) ([]api.Booking, error) {
	return nil, nil
}
