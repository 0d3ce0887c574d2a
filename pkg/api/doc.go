// Package api defines the wire types and error taxonomy for the gigbuddy
// server: user payloads, registration and login requests, and the
// structured APIError returned on every failure path.
package api
