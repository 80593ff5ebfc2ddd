package sqlstore

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	repositorycache "github.com/goliatone/go-repository-cache/cache"
	"github.com/goliatone/go-session/core"
)

const credentialCacheKeyPrefix = "go-session::credential::v1"

// CachedCredentialStore serves Load from a cache and invalidates on Save and
// Clear. Absence is cached too, as a zero credential, unless the base store
// reports it through LoadChecked as a read failure.
type CachedCredentialStore struct {
	base      core.CredentialStore
	cache     repositorycache.CacheService
	namespace string
}

type checkedCredentialLoader interface {
	LoadChecked(ctx context.Context) (core.Credential, bool, error)
}

type cachedCredential struct {
	Credential core.Credential
	Present    bool
}

func NewCachedCredentialStore(
	base core.CredentialStore,
	cacheService repositorycache.CacheService,
	namespace string,
) (*CachedCredentialStore, error) {
	if base == nil {
		return nil, fmt.Errorf("sqlstore: base credential store is required")
	}
	if cacheService == nil {
		return nil, fmt.Errorf("sqlstore: credential cache service is required")
	}
	if strings.TrimSpace(namespace) == "" {
		if named, ok := base.(interface{ Namespace() string }); ok {
			namespace = named.Namespace()
		}
	}
	if strings.TrimSpace(namespace) == "" {
		namespace = core.DefaultConfig().Storage.Namespace
	}
	return &CachedCredentialStore{base: base, cache: cacheService, namespace: strings.TrimSpace(namespace)}, nil
}

// CredentialCacheKey returns go-session::credential::v1::<namespace> with the
// namespace URL-path escaped.
func CredentialCacheKey(namespace string) string {
	return credentialCacheKeyPrefix + "::" + url.PathEscape(strings.TrimSpace(namespace))
}

func (s *CachedCredentialStore) Save(ctx context.Context, credential core.Credential) error {
	if s == nil || s.base == nil || s.cache == nil {
		return core.NewInternalError("sqlstore: cached credential store is not configured", nil)
	}
	before := s.invalidate(ctx)
	if err := s.base.Save(ctx, credential); err != nil {
		return err
	}
	return s.invalidateAfter(ctx, before)
}

func (s *CachedCredentialStore) Load(ctx context.Context) (core.Credential, bool) {
	if s == nil || s.base == nil || s.cache == nil {
		return core.Credential{}, false
	}
	var readErr error
	entry, err := repositorycache.GetOrFetch(ctx, s.cache, CredentialCacheKey(s.namespace), func(ctx context.Context) (cachedCredential, error) {
		if checked, ok := s.base.(checkedCredentialLoader); ok {
			credential, present, loadErr := checked.LoadChecked(ctx)
			if loadErr != nil {
				readErr = loadErr
				return cachedCredential{}, loadErr
			}
			return cachedCredential{Credential: credential, Present: present}, nil
		}
		credential, ok := s.base.Load(ctx)
		return cachedCredential{Credential: credential, Present: ok}, nil
	})
	if readErr != nil {
		return core.Credential{}, false
	}
	if err != nil {
		return s.base.Load(ctx)
	}
	if !entry.Present {
		return core.Credential{}, false
	}
	return cloneCredential(entry.Credential), true
}

func (s *CachedCredentialStore) Clear(ctx context.Context) error {
	if s == nil || s.base == nil || s.cache == nil {
		return core.NewInternalError("sqlstore: cached credential store is not configured", nil)
	}
	before := s.invalidate(ctx)
	if err := s.base.Clear(ctx); err != nil {
		return err
	}
	return s.invalidateAfter(ctx, before)
}

func (s *CachedCredentialStore) invalidate(ctx context.Context) error {
	return s.cache.Delete(ctx, CredentialCacheKey(s.namespace))
}

// invalidateAfter drops the entry again once the base write landed. It fails
// only when neither delete went through, which is when a stale entry can
// survive the write.
func (s *CachedCredentialStore) invalidateAfter(ctx context.Context, before error) error {
	after := s.invalidate(ctx)
	if after != nil && before != nil {
		return fmt.Errorf("sqlstore: invalidate cached credential: %w", after)
	}
	return nil
}

func cloneCredential(credential core.Credential) core.Credential {
	cloned := credential
	if credential.IssuedAt != nil {
		issuedAt := credential.IssuedAt.UTC()
		cloned.IssuedAt = &issuedAt
	}
	return cloned
}
