// Package api is the account, catalog and booking client built on a
// core.Service session. Authenticated calls go through the session executor
// and inherit its single refresh-and-retry contract; public calls use the
// transport directly.
package api
