// Package client is the CLI's view of the persistence service.
//
// The Client interface mirrors the REST contract: Ping plus list, create,
// update and delete of boxes and baits, and AddLog for management logs.
// RESTClient implements it over net/http and JSON.
//
// # Error Handling
//
// Failures are mapped to sentinel errors that callers match with errors.Is:
//
//   - ErrUnavailable: transport failure, 502/503/504, or a context deadline.
//   - ErrUnauthorized: 401 or 403.
//   - ErrNotFound: 404.
//   - ErrRejected: 400, the server refused the payload.
//
// Any other non-2xx status is returned as a *StatusError.
//
// # Auth
//
// When a secret is configured every request carries a freshly minted HS256
// bearer token valid for one minute.
package client
