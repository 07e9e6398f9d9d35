// Package message fetches queued envelopes from the relay and decrypts the
// ones addressed to this device. Plaintext advisory envelopes pass through
// unchanged; encrypted ones are opened by the encryption provider.
package message
