package sqlstore

import (
	"context"
	"fmt"
	"strings"
	"time"

	glog "github.com/goliatone/go-logger/glog"
	repository "github.com/goliatone/go-repository-bun"
	"github.com/goliatone/go-session/core"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// CredentialStore persists the credential pair of one namespace. Save
// replaces the row inside a transaction so readers see either the previous
// pair or the new one.
type CredentialStore struct {
	db        *bun.DB
	repo      repository.Repository[*credentialRecord]
	namespace string
	codec     core.CredentialCodec
	secrets   core.SecretProvider
	keyID     string
	logger    core.Logger
	nowFn     func() time.Time
}

type CredentialStoreOption func(*CredentialStore)

func WithNamespace(namespace string) CredentialStoreOption {
	return func(s *CredentialStore) {
		if trimmed := strings.TrimSpace(namespace); trimmed != "" {
			s.namespace = trimmed
		}
	}
}

func WithCodec(codec core.CredentialCodec) CredentialStoreOption {
	return func(s *CredentialStore) {
		if codec != nil {
			s.codec = codec
		}
	}
}

// WithSecretProvider seals payloads before they are written.
func WithSecretProvider(provider core.SecretProvider) CredentialStoreOption {
	return func(s *CredentialStore) {
		s.secrets = provider
		if keyed, ok := provider.(interface{ KeyID() string }); ok {
			s.keyID = keyed.KeyID()
		}
	}
}

func WithLogger(logger core.Logger) CredentialStoreOption {
	return func(s *CredentialStore) {
		if logger != nil {
			s.logger = logger
		}
	}
}

func WithClock(now func() time.Time) CredentialStoreOption {
	return func(s *CredentialStore) {
		if now != nil {
			s.nowFn = now
		}
	}
}

// NewCredentialStore accepts a *bun.DB or anything exposing DB() *bun.DB,
// such as a go-persistence-bun client.
func NewCredentialStore(persistenceClient any, opts ...CredentialStoreOption) (*CredentialStore, error) {
	db, err := resolveBunDB(persistenceClient)
	if err != nil {
		return nil, err
	}
	repo := repository.NewRepository[*credentialRecord](db, credentialHandlers())
	if validator, ok := repo.(repository.Validator); ok {
		if err := validator.Validate(); err != nil {
			return nil, fmt.Errorf("sqlstore: invalid credential repository wiring: %w", err)
		}
	}

	store := &CredentialStore{
		db:        db,
		repo:      repo,
		namespace: core.DefaultConfig().Storage.Namespace,
		codec:     core.JSONCredentialCodec{},
		logger:    glog.Nop(),
		nowFn:     func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		opt(store)
	}
	return store, nil
}

func (s *CredentialStore) Namespace() string {
	if s == nil {
		return ""
	}
	return s.namespace
}

func (s *CredentialStore) Save(ctx context.Context, credential core.Credential) error {
	if s == nil || s.db == nil || s.repo == nil {
		return core.NewInternalError("sqlstore: credential store is not configured", nil)
	}
	if strings.TrimSpace(credential.AccessToken) == "" {
		return core.NewBadInputError("sqlstore: access token is required", nil)
	}
	payload, err := s.codec.Encode(credential)
	if err != nil {
		return err
	}
	if s.secrets != nil {
		payload, err = s.secrets.Encrypt(ctx, payload)
		if err != nil {
			return fmt.Errorf("sqlstore: seal credential payload: %w", err)
		}
	}

	now := s.nowFn()
	record := &credentialRecord{
		ID:             uuid.NewString(),
		Namespace:      s.namespace,
		Payload:        payload,
		PayloadFormat:  s.codec.Format(),
		PayloadVersion: s.codec.Version(),
		KeyID:          s.keyID,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	return s.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		if _, err := tx.NewDelete().
			Model((*credentialRecord)(nil)).
			Where("namespace = ?", s.namespace).
			Exec(ctx); err != nil {
			return err
		}
		_, err := s.repo.CreateTx(ctx, tx, record)
		return err
	})
}

// Load reports absent for a missing row and for any row it cannot open or
// decode.
func (s *CredentialStore) Load(ctx context.Context) (core.Credential, bool) {
	if s == nil || s.repo == nil {
		return core.Credential{}, false
	}
	credential, ok, err := s.LoadChecked(ctx)
	if err != nil {
		s.logger.Error("sqlstore: load credential failed", "namespace", s.namespace, "error", err)
		return core.Credential{}, false
	}
	return credential, ok
}

// LoadChecked is Load with query failures returned instead of read as
// absent. Unreadable rows are still absent.
func (s *CredentialStore) LoadChecked(ctx context.Context) (core.Credential, bool, error) {
	if s == nil || s.repo == nil {
		return core.Credential{}, false, core.NewInternalError("sqlstore: credential store is not configured", nil)
	}
	records, _, err := s.repo.List(ctx,
		repository.SelectBy("namespace", "=", s.namespace),
		repository.SelectPaginate(1, 0),
	)
	if err != nil {
		return core.Credential{}, false, err
	}
	if len(records) == 0 || records[0] == nil {
		return core.Credential{}, false, nil
	}
	credential, err := s.decode(ctx, records[0])
	if err != nil {
		s.logger.Warn("sqlstore: stored credential is unreadable", "namespace", s.namespace, "error", err)
		return core.Credential{}, false, nil
	}
	return credential, true, nil
}

func (s *CredentialStore) Clear(ctx context.Context) error {
	if s == nil || s.db == nil {
		return core.NewInternalError("sqlstore: credential store is not configured", nil)
	}
	_, err := s.db.NewDelete().
		Model((*credentialRecord)(nil)).
		Where("namespace = ?", s.namespace).
		Exec(ctx)
	return err
}

func (s *CredentialStore) decode(ctx context.Context, record *credentialRecord) (core.Credential, error) {
	if record.PayloadFormat != s.codec.Format() || record.PayloadVersion != s.codec.Version() {
		return core.Credential{}, fmt.Errorf(
			"sqlstore: payload %s/%d does not match codec %s/%d",
			record.PayloadFormat, record.PayloadVersion, s.codec.Format(), s.codec.Version(),
		)
	}
	payload := record.Payload
	if s.secrets != nil {
		opened, err := s.secrets.Decrypt(ctx, payload)
		if err != nil {
			return core.Credential{}, err
		}
		payload = opened
	}
	return s.codec.Decode(payload)
}
