// Package core contains the session contracts, the credential lifecycle and the
// authenticated request executor. Transport, persistence and token endpoint
// adapters depend on this package; core must not depend on them.
package core
