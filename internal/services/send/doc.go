// Package send drives the encrypted one-shot delivery workflow.
//
// A Workflow owns one delivery attempt from open session to guaranteed
// close. Encryption failures are dispatched by type: undecided trust goes
// to the configured policy and the attempt retries; devices with missing
// key bundles are announced to the recipient in plaintext, excluded, and
// the attempt retries; device-list fetch failures abort cleanly; anything
// else is fatal. Retries are bounded so a pathological provider cannot
// spin forever.
package send
