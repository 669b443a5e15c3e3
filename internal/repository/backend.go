package repository

import "context"

// DefaultCollectionKey names the collection holding every issue record.
const DefaultCollectionKey = "np_issues"

// emptyCollection is the document an absent collection is initialized to.
var emptyCollection = []byte("[]")

// Backend is durable storage addressed by collection key. Each collection
// is one opaque document that is always read and written as a whole.
type Backend interface {
	// Open creates the collection as an empty document if it does not exist.
	Open(ctx context.Context, key string) error
	// Read returns the whole document, or nil if the collection does not exist.
	Read(ctx context.Context, key string) ([]byte, error)
	// Write replaces the whole document.
	Write(ctx context.Context, key string, doc []byte) error
}

// Transactor is implemented by backends that can run a read-modify-write
// cycle atomically with respect to other processes. If fn returns an error
// nothing is written.
type Transactor interface {
	Update(ctx context.Context, key string, fn func(doc []byte) ([]byte, error)) error
}

// Pinger is implemented by backends with a reachable remote dependency.
type Pinger interface {
	Ping(ctx context.Context) error
}
