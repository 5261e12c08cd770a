// Package services implements the gateway client for the filmhub REST API.
//
// # Client
//
// [Client] wraps every endpoint the terminal client uses: login and registration, the movie catalog and search,
// ratings, recommendations, and the watch list and watched collections.
//
// Every request carries Content-Type: application/json. Authenticated calls also carry
// "Authorization: Token <token>", where the token is read from the [TokenSource] when the request is built,
// so a login or logout is seen by the very next call.
//
// # Failures
//
// Non-2xx responses become [*APIError] values whose message is what a user should see: the server's
// "error" field when present, otherwise a fixed message per operation. They unwrap to [shared.ErrAPIRequest].
// Network failures, rate limiter rejections and an open circuit wrap [shared.ErrServiceUnavailable].
//
// Login and register are the exception: their bodies are decoded and returned whatever the HTTP status,
// and the caller checks LoginResponse.Err.
//
// # Rate-or-update
//
// [Client.RateOrUpdate] validates the score locally, tries to create the rating, and only when the create
// failure's message contains "already exists" issues a single PATCH. Any other failure is returned as is.
//
// # Transport
//
// [NewHTTPClient] builds the round tripper chain: request ids and debug logging, then a token bucket
// limiter, then a circuit breaker that counts only network errors and 5xx responses.
// Nothing in the chain retries.
package services
