// Package commands defines the logostamp CLI: stamping files into an
// archive, watching a directory, and running the HTTP service.
package commands
