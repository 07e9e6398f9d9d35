// Package app loads configuration and assembles the stores, relay client,
// and services the command layer needs. Commands describe what the user
// asked for; app decides how the pieces fit together.
package app
