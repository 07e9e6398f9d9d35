// Package omemo implements cipherpost's multi-device encryption provider.
//
// One plaintext is sealed once under a random message key; the key is then
// wrapped for every trusted device of every recipient under that device's
// Double Ratchet session, bootstrapped via X3DH on first contact. The
// provider owns device discovery, bundle fetching, signature verification
// and trust lookups; callers drive retries off the typed errors it returns:
//
//   - *TrustUndecidedError: a device has no recorded trust decision. Record
//     one (SetTrust) and retry.
//   - *PrepareFailedError: per-device problems were accumulated; missing
//     bundles can be excluded on the next attempt.
//   - *FetchError: the relay could not be reached while fetching recipient
//     device information.
//   - ErrNoEligibleDevices: after exclusions and distrust decisions nothing
//     is left to encrypt to.
package omemo
