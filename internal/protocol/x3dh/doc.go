// Package x3dh implements the Extended Triple Diffie-Hellman key agreement
// used to bootstrap a shared root key with one peer device.
//
// The initiator derives the root from the peer's published device bundle
// (InitiatorRoot); the responder recomputes it from the PreKeyMessage carried
// by the first wrapped key it receives (ResponderRoot). Signed pre-key
// signatures are verified before any secret is derived.
package x3dh
