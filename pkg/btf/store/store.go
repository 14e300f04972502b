// Package store defines the capability set the facade needs from either
// storage strategy, so the facade holds one of two concrete
// implementations without being generic over which.
package store

import "github.com/go-btf/gobtf/pkg/btf/rawtype"

// Backend is implemented by both the eager cache backend and the lazy
// mmap backend. Ids here are always local to the blob the backend was
// built from; rebasing against a base is the facade's job, not the
// backend's.
type Backend interface {
	// TypeByID returns the decoded type for a local id in 1..=MaxID.
	TypeByID(id rawtype.ID) (rawtype.Type, error)
	// IDsByName returns the local ids of every type whose name resolves
	// to name, in the order they were encountered during construction.
	IDsByName(name string) []rawtype.ID
	// Names returns every indexed name, for regex scans. Order is
	// unspecified.
	Names() []string
	// MaxID returns the highest local id this backend holds (0 if empty).
	MaxID() rawtype.ID
	// NumTypes returns the number of decodable type records.
	NumTypes() int
	// Strings returns the backend's string resolver, needed by the facade
	// to resolve names on types, members, parameters and enum values.
	Strings() StringResolver
}

// StringResolver is the subset of *strtab.Table the facade depends on,
// kept as an interface here so store has no import-cycle dependency on a
// concrete string-table implementation.
type StringResolver interface {
	Resolve(offset uint32) (string, error)
}
