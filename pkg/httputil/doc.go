// Package httputil provides retry infrastructure for the external
// chemistry database clients.
//
// [Retry] re-runs operations that fail with a [RetryableError] (network
// errors, 5xx responses, rate limiting), doubling the delay after each
// attempt. Other errors return immediately. Response caching lives in
// pkg/cache, which backs the chemistry clients with the same file, Redis,
// or null backends used by the analysis pipeline.
package httputil
