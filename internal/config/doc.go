// Package config defines the format-agnostic manifest model for the
// application and the Loader interface that produces it.
//
// The `config.Model` is the single source of truth for the app package when
// it declares profiles and configures transports. Concrete loaders, such as
// the HCL one, live in separate packages.
package config
