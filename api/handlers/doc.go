// Package handlers implements the HTTP handlers of the dispatchd
// inventory service.
package handlers
