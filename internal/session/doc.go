// Package session provides the logged-in relay session handle used by the
// send and receive workflows.
//
// Open announces presence and fetches the roster, mirroring what a chat
// client does right after authentication. Close is idempotent: however many
// exit paths call it, the session is released exactly once. SendPlain is a
// deliberately best-effort advisory channel; its failures are logged at
// debug level and never surfaced.
package session
