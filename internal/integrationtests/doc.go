// Package integration_tests exercises the application end to end: manifests
// on disk, real transports against local servers, and the HTTP API.
package integration_tests
