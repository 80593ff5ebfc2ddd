package sqlstore

import (
	"time"

	"github.com/uptrace/bun"
)

// credentialRecord holds one encoded credential pair per namespace.
type credentialRecord struct {
	bun.BaseModel `bun:"table:session_credentials,alias:scr"`

	ID             string    `bun:"id,pk"`
	Namespace      string    `bun:"namespace,notnull"`
	Payload        []byte    `bun:"payload,notnull"`
	PayloadFormat  string    `bun:"payload_format,notnull"`
	PayloadVersion int       `bun:"payload_version,notnull"`
	KeyID          string    `bun:"key_id,notnull"`
	CreatedAt      time.Time `bun:"created_at,nullzero,notnull,default:current_timestamp"`
	UpdatedAt      time.Time `bun:"updated_at,nullzero,notnull,default:current_timestamp"`
}
