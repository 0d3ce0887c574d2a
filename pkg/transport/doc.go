// Package transport provides HTTP-level cross-cutting middleware
// (request IDs, structured logging, panic recovery) and the JSON error
// writer shared by all handlers.
package transport
