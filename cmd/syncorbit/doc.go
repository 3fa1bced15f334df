// Command syncorbit is the operator CLI. It talks to a running syncorbitd
// instance over its HTTP API.
package main
