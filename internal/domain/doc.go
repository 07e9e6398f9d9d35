// Package domain re-exports the shared data model and service contracts so
// the rest of the codebase imports a single package. The concrete
// definitions live in the types and interfaces subpackages.
package domain
