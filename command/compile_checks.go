package command

import gocmd "github.com/goliatone/go-command"

var (
	_ gocmd.Commander[LoginMessage]                = (*LoginCommand)(nil)
	_ gocmd.Commander[LogoutMessage]               = (*LogoutCommand)(nil)
	_ gocmd.Commander[RegisterMessage]             = (*RegisterCommand)(nil)
	_ gocmd.Commander[ActivateMessage]             = (*ActivateCommand)(nil)
	_ gocmd.Commander[RequestPasswordResetMessage] = (*RequestPasswordResetCommand)(nil)
	_ gocmd.Commander[ConfirmPasswordResetMessage] = (*ConfirmPasswordResetCommand)(nil)
	_ gocmd.Commander[DeleteAccountMessage]        = (*DeleteAccountCommand)(nil)
	_ gocmd.Commander[CreateBookingMessage]        = (*CreateBookingCommand)(nil)
)
