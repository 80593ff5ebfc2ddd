package api

import (
	"context"
	"net/http"
	"strings"

	goerrors "github.com/goliatone/go-errors"
)

func (c *Client) Register(ctx context.Context, input RegistrationInput) (Profile, error) {
	fields := goerrors.ValidationErrors{}
	requireField(&fields, "email", input.Email)
	requireField(&fields, "password", input.Password)
	if input.RePassword != "" && input.RePassword != input.Password {
		fields = append(fields, goerrors.FieldError{Field: "re_password", Message: "does not match password"})
	}
	if err := validationError("register", fields); err != nil {
		return Profile{}, err
	}

	payload := map[string]any{
		"email":    strings.TrimSpace(input.Email),
		"password": input.Password,
	}
	if input.RePassword != "" {
		payload["re_password"] = input.RePassword
	}
	if username := strings.TrimSpace(input.Username); username != "" {
		payload["username"] = username
	}
	if first := strings.TrimSpace(input.FirstName); first != "" {
		payload["first_name"] = first
	}
	if last := strings.TrimSpace(input.LastName); last != "" {
		payload["last_name"] = last
	}
	payload = withExtra(payload, input.Extra)

	res, err := c.public(ctx, "register", http.MethodPost, c.endpoint(c.config.Endpoints.Register), nil, payload)
	if err != nil {
		return Profile{}, err
	}
	raw, err := decodeObject("register", res.Body)
	if err != nil {
		return Profile{}, err
	}
	return profileFromMap(raw), nil
}

// Activate confirms an account with the uid and token from the activation
// email.
func (c *Client) Activate(ctx context.Context, uid string, token string) error {
	fields := goerrors.ValidationErrors{}
	requireField(&fields, "uid", uid)
	requireField(&fields, "token", token)
	if err := validationError("activate", fields); err != nil {
		return err
	}
	_, err := c.public(ctx, "activate", http.MethodPost, c.endpoint(c.config.Endpoints.Activation), nil, map[string]any{
		"uid":   strings.TrimSpace(uid),
		"token": strings.TrimSpace(token),
	})
	return err
}

func (c *Client) RequestPasswordReset(ctx context.Context, email string) error {
	fields := goerrors.ValidationErrors{}
	requireField(&fields, "email", email)
	if err := validationError("request_password_reset", fields); err != nil {
		return err
	}
	_, err := c.public(ctx, "request_password_reset", http.MethodPost, c.endpoint(c.config.Endpoints.PasswordReset), nil, map[string]any{
		"email": strings.TrimSpace(email),
	})
	return err
}

func (c *Client) ConfirmPasswordReset(ctx context.Context, uid string, token string, newPassword string) error {
	fields := goerrors.ValidationErrors{}
	requireField(&fields, "uid", uid)
	requireField(&fields, "token", token)
	requireField(&fields, "new_password", newPassword)
	if err := validationError("confirm_password_reset", fields); err != nil {
		return err
	}
	_, err := c.public(ctx, "confirm_password_reset", http.MethodPost, c.endpoint(c.config.Endpoints.PasswordResetConfirm), nil, map[string]any{
		"uid":             strings.TrimSpace(uid),
		"token":           strings.TrimSpace(token),
		"new_password":    newPassword,
		"re_new_password": newPassword,
	})
	return err
}

func (c *Client) Profile(ctx context.Context) (Profile, error) {
	res, err := c.authenticated(ctx, "profile", http.MethodGet, c.endpoint(c.config.Endpoints.Profile), nil, nil)
	if err != nil {
		return Profile{}, err
	}
	raw, err := decodeObject("profile", res.Body)
	if err != nil {
		return Profile{}, err
	}
	return profileFromMap(raw), nil
}

// DeleteAccount removes the signed-in account and ends the local session.
func (c *Client) DeleteAccount(ctx context.Context, currentPassword string) error {
	fields := goerrors.ValidationErrors{}
	requireField(&fields, "current_password", currentPassword)
	if err := validationError("delete_account", fields); err != nil {
		return err
	}
	if _, err := c.authenticated(ctx, "delete_account", http.MethodDelete, c.endpoint(c.config.Endpoints.Profile), nil, map[string]any{
		"current_password": currentPassword,
	}); err != nil {
		return err
	}
	return c.session.Logout(ctx)
}
