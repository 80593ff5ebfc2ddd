package core

import (
	"fmt"
	"strings"
)

// BearerTokenSigner attaches "Authorization: <scheme> <access token>" to a copy
// of the descriptor.
type BearerTokenSigner struct {
	Scheme string
}

func (s BearerTokenSigner) Sign(req RequestDescriptor, credential Credential) (RequestDescriptor, error) {
	token := strings.TrimSpace(credential.AccessToken)
	if token == "" {
		return RequestDescriptor{}, fmt.Errorf("core: access token is required for bearer signing")
	}
	scheme := strings.TrimSpace(s.Scheme)
	if scheme == "" {
		scheme = DefaultAuthScheme
	}
	return req.WithHeader(HeaderAuthorization, scheme+" "+token), nil
}
