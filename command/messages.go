package command

import (
	"strings"

	"github.com/goliatone/go-session/api"
	"github.com/goliatone/go-session/core"
)

const (
	TypeLogin                = "session.command.login"
	TypeLogout               = "session.command.logout"
	TypeRegister             = "session.command.account.register"
	TypeActivate             = "session.command.account.activate"
	TypeRequestPasswordReset = "session.command.password_reset.request"
	TypeConfirmPasswordReset = "session.command.password_reset.confirm"
	TypeDeleteAccount        = "session.command.account.delete"
	TypeCreateBooking        = "session.command.booking.create"
)

type LoginMessage struct {
	Request core.LoginRequest
}

func (LoginMessage) Type() string { return TypeLogin }

func (m LoginMessage) Validate() error {
	if strings.TrimSpace(m.Request.Email) == "" && strings.TrimSpace(m.Request.Username) == "" {
		return commandValidationError("email", "email or username is required")
	}
	if m.Request.Password == "" {
		return commandValidationError("password", "password is required")
	}
	return nil
}

type LogoutMessage struct{}

func (LogoutMessage) Type() string { return TypeLogout }

func (LogoutMessage) Validate() error { return nil }

type RegisterMessage struct {
	Input api.RegistrationInput
}

func (RegisterMessage) Type() string { return TypeRegister }

func (m RegisterMessage) Validate() error {
	if strings.TrimSpace(m.Input.Email) == "" {
		return commandValidationError("email", "email is required")
	}
	if m.Input.Password == "" {
		return commandValidationError("password", "password is required")
	}
	if m.Input.RePassword != "" && m.Input.RePassword != m.Input.Password {
		return commandValidationError("re_password", "does not match password")
	}
	return nil
}

type ActivateMessage struct {
	UID   string
	Token string
}

func (ActivateMessage) Type() string { return TypeActivate }

func (m ActivateMessage) Validate() error {
	if strings.TrimSpace(m.UID) == "" {
		return commandValidationError("uid", "uid is required")
	}
	if strings.TrimSpace(m.Token) == "" {
		return commandValidationError("token", "token is required")
	}
	return nil
}

type RequestPasswordResetMessage struct {
	Email string
}

func (RequestPasswordResetMessage) Type() string { return TypeRequestPasswordReset }

func (m RequestPasswordResetMessage) Validate() error {
	if strings.TrimSpace(m.Email) == "" {
		return commandValidationError("email", "email is required")
	}
	return nil
}

type ConfirmPasswordResetMessage struct {
	UID         string
	Token       string
	NewPassword string
}

func (ConfirmPasswordResetMessage) Type() string { return TypeConfirmPasswordReset }

func (m ConfirmPasswordResetMessage) Validate() error {
	if strings.TrimSpace(m.UID) == "" {
		return commandValidationError("uid", "uid is required")
	}
	if strings.TrimSpace(m.Token) == "" {
		return commandValidationError("token", "token is required")
	}
	if m.NewPassword == "" {
		return commandValidationError("new_password", "new password is required")
	}
	return nil
}

type DeleteAccountMessage struct {
	CurrentPassword string
}

func (DeleteAccountMessage) Type() string { return TypeDeleteAccount }

func (m DeleteAccountMessage) Validate() error {
	if m.CurrentPassword == "" {
		return commandValidationError("current_password", "current password is required")
	}
	return nil
}

type CreateBookingMessage struct {
	Input api.BookingInput
}

func (CreateBookingMessage) Type() string { return TypeCreateBooking }

func (m CreateBookingMessage) Validate() error {
	if strings.TrimSpace(m.Input.ServiceID) == "" {
		return commandValidationError("service", "service id is required")
	}
	if strings.TrimSpace(m.Input.Date) == "" {
		return commandValidationError("date", "date is required")
	}
	return nil
}
