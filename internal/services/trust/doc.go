// Package trust supplies the trust-decision strategies the send workflow
// consults when it hits a device with no recorded decision.
//
// Two policies ship with cipherpost: AutoTrust (trust-on-first-use, the
// permissive default) and DenyAll (strict; undecided devices are
// distrusted until the user records a decision with the trust command).
package trust
