// Package prekey generates signed and one-time pre-keys and assembles the
// device bundle other peers fetch before encrypting to this device.
package prekey
