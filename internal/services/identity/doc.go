// Package identity manages the local device identity: key generation with a
// passphrase strength policy, encrypted persistence, and fingerprints for
// display.
package identity
