// Package deezer talks to the Deezer API, the external metadata provider.
// Payloads are validated at this boundary so undefined shapes never travel
// into the resolver; calls carry a bounded retry policy and per-request
// timeout and are treated as best-effort throughout.
package deezer
