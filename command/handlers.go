package command

import (
	"context"
	"time"

	gocmd "github.com/goliatone/go-command"
	"github.com/goliatone/go-session/api"
	"github.com/goliatone/go-session/core"
)

// MutatingService is the write side of a session client.
type MutatingService interface {
	Login(ctx context.Context, req core.LoginRequest) (core.Credential, error)
	Logout(ctx context.Context) error
	Register(ctx context.Context, input api.RegistrationInput) (api.Profile, error)
	Activate(ctx context.Context, uid string, token string) error
	RequestPasswordReset(ctx context.Context, email string) error
	ConfirmPasswordReset(ctx context.Context, uid string, token string, newPassword string) error
	DeleteAccount(ctx context.Context, currentPassword string) error
	CreateBooking(ctx context.Context, input api.BookingInput) (api.Booking, error)
}

// LoginResult is what a login command publishes; tokens stay in the store.
type LoginResult struct {
	Authenticated bool
	TokenType     string
	IssuedAt      *time.Time
}

type LoginCommand struct {
	service MutatingService
}

func NewLoginCommand(service MutatingService) *LoginCommand {
	return &LoginCommand{service: service}
}

func (c *LoginCommand) Execute(ctx context.Context, msg LoginMessage) error {
	if c == nil || c.service == nil {
		return commandDependencyError("command: login service is required")
	}
	credential, err := c.service.Login(ctx, msg.Request)
	if err != nil {
		return err
	}
	result := LoginResult{
		Authenticated: credential.AccessToken != "",
		TokenType:     credential.TokenType,
		IssuedAt:      credential.IssuedAt,
	}
	storeResult(ctx, result)
	return nil
}

type LogoutCommand struct {
	service MutatingService
}

func NewLogoutCommand(service MutatingService) *LogoutCommand {
	return &LogoutCommand{service: service}
}

func (c *LogoutCommand) Execute(ctx context.Context, _ LogoutMessage) error {
	if c == nil || c.service == nil {
		return commandDependencyError("command: logout service is required")
	}
	return c.service.Logout(ctx)
}

type RegisterCommand struct {
	service MutatingService
}

func NewRegisterCommand(service MutatingService) *RegisterCommand {
	return &RegisterCommand{service: service}
}

func (c *RegisterCommand) Execute(ctx context.Context, msg RegisterMessage) error {
	if c == nil || c.service == nil {
		return commandDependencyError("command: register service is required")
	}
	out, err := c.service.Register(ctx, msg.Input)
	if err != nil {
		return err
	}
	storeResult(ctx, out)
	return nil
}

type ActivateCommand struct {
	service MutatingService
}

func NewActivateCommand(service MutatingService) *ActivateCommand {
	return &ActivateCommand{service: service}
}

func (c *ActivateCommand) Execute(ctx context.Context, msg ActivateMessage) error {
	if c == nil || c.service == nil {
		return commandDependencyError("command: activation service is required")
	}
	return c.service.Activate(ctx, msg.UID, msg.Token)
}

type RequestPasswordResetCommand struct {
	service MutatingService
}

func NewRequestPasswordResetCommand(service MutatingService) *RequestPasswordResetCommand {
	return &RequestPasswordResetCommand{service: service}
}

func (c *RequestPasswordResetCommand) Execute(ctx context.Context, msg RequestPasswordResetMessage) error {
	if c == nil || c.service == nil {
		return commandDependencyError("command: password reset service is required")
	}
	return c.service.RequestPasswordReset(ctx, msg.Email)
}

type ConfirmPasswordResetCommand struct {
	service MutatingService
}

func NewConfirmPasswordResetCommand(service MutatingService) *ConfirmPasswordResetCommand {
	return &ConfirmPasswordResetCommand{service: service}
}

func (c *ConfirmPasswordResetCommand) Execute(ctx context.Context, msg ConfirmPasswordResetMessage) error {
	if c == nil || c.service == nil {
		return commandDependencyError("command: password reset service is required")
	}
	return c.service.ConfirmPasswordReset(ctx, msg.UID, msg.Token, msg.NewPassword)
}

type DeleteAccountCommand struct {
	service MutatingService
}

func NewDeleteAccountCommand(service MutatingService) *DeleteAccountCommand {
	return &DeleteAccountCommand{service: service}
}

func (c *DeleteAccountCommand) Execute(ctx context.Context, msg DeleteAccountMessage) error {
	if c == nil || c.service == nil {
		return commandDependencyError("command: account service is required")
	}
	return c.service.DeleteAccount(ctx, msg.CurrentPassword)
}

type CreateBookingCommand struct {
	service MutatingService
}

func NewCreateBookingCommand(service MutatingService) *CreateBookingCommand {
	return &CreateBookingCommand{service: service}
}

func (c *CreateBookingCommand) Execute(ctx context.Context, msg CreateBookingMessage) error {
	if c == nil || c.service == nil {
		return commandDependencyError("command: booking service is required")
	}
	out, err := c.service.CreateBooking(ctx, msg.Input)
	if err != nil {
		return err
	}
	storeResult(ctx, out)
	return nil
}

func storeResult[T any](ctx context.Context, value T) {
	collector := gocmd.ResultFromContext[T](ctx)
	if collector == nil {
		return
	}
	collector.Store(value)
}
