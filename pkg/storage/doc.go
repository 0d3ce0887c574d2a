// Package storage defines the persistence interfaces consumed by the
// auth pipeline: UserStore for account lookup and CounterStore for the
// per-path request counter. It also holds the sentinel errors shared by
// the memory and postgres adapters.
package storage
