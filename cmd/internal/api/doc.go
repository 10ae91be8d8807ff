// Package api is the resilient HTTP executor for the 4ON4 REST API.
//
// Every call attaches the current bearer token and, on an authorization
// failure, transparently performs exactly one token refresh followed by
// exactly one retry of the original request. The retried call never
// refreshes again; there are no retry loops. Network-level failures are a
// distinct error class and are never retried here.
//
// Typed endpoint wrappers (auth, profile, vehicle) decode the server's
// uniform {ok, data, message} envelope and surface the server's own message
// on business failures.
package api
