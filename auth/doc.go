// Package auth authenticates callers of the trackerhealth HTTP API.
//
// Two methods are supported: HMAC-signed JWT bearer tokens and static API
// keys. A CompositeAuthenticator tries each in turn, and Middleware rejects
// unauthenticated requests with 401 before they reach a handler.
package auth
