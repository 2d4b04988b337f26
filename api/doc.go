// Package api defines the request and response types of the dispatchd
// HTTP surface.
package api
