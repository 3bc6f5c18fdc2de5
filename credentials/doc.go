// Package credentials produces the authentication headers attached to
// outbound requests and the refresh hooks invoked when an upstream rejects
// them.
//
// A Source yields a header set (typically an Authorization bearer token); a
// RefreshFunc is the hook the HTTP client calls after a 401 to obtain
// replacement headers. RenewingBearer bridges the two for JWT-style tokens:
// it caches the token, renews it before the exp claim passes, and collapses
// concurrent renewals into a single fetch.
//
// Header values configured statically may reference environment variables
// with ${VAR} syntax; expansion is strict so a missing credential fails at
// construction instead of producing an empty header in production.
package credentials
