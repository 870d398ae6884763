// Package app contains the core application logic. It defines the main App
// struct, its configuration, and the run and serve lifecycles, decoupled
// from any specific entrypoint like a CLI.
//
// App is the composition root: it owns the loader.Registry, the transports
// registered with it, and every observer of resource transitions.
package app
