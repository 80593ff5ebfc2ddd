package sqlstore

import "github.com/goliatone/go-session/core"

var (
	_ core.CredentialStore = (*CredentialStore)(nil)
	_ core.CredentialStore = (*CachedCredentialStore)(nil)

	_ checkedCredentialLoader = (*CredentialStore)(nil)
)
