// Package commands defines the cipherpost CLI and wires dependencies for
// subcommands.
//
// Commands
//
//   - init           Create the local identity and device
//   - fingerprint    Print the identity fingerprint
//   - register       Publish your device bundle to the relay
//   - send           Encrypt and send a one-shot message
//   - recv           Fetch and decrypt queued messages
//   - trust          Inspect and record trust decisions
//
// # Implementation
//
// The root command loads config.toml from the data directory, applies flag
// overrides, and builds a shared app context (stores, services, relay
// client) before any subcommand runs.
package commands
