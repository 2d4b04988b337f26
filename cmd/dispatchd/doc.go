// Command dispatchd runs the extension inventory and dispatch service.
package main
