// Package relay provides an HTTP implementation of the domain.RelayClient
// interface used by cipherpost.
//
// The relay acts as a store-and-forward service for encrypted envelopes and
// published device key material. This package offers a concrete HTTP client
// for interacting with such a relay server.
//
// Supported operations include:
//   - Publishing this device's bundle to the relay.
//   - Fetching a peer's device list and per-device bundles.
//   - Sending envelopes to a peer via the relay.
//   - Fetching pending envelopes for an address.
//   - Acknowledging received envelopes.
//   - Announcing presence and fetching the roster.
//
// All requests are JSON over HTTP and accept a context for cancellation and
// deadlines. Non-2xx statuses are returned as errors with the HTTP method,
// path, and status text to aid diagnostics; a 404 on a bundle fetch maps to
// domain.ErrBundleNotFound so callers can tell "no keys" from "relay down".
package relay
