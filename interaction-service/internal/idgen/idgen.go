// Package idgen allocates entity ids on the client so the same id can be
// written to the cache and to the durable store.
package idgen

import "go.mongodb.org/mongo-driver/bson/primitive"

// New returns a fresh 96-bit id as 24 hex characters.
func New() string {
	return primitive.NewObjectID().Hex()
}

// Valid reports whether id has the shape produced by New.
func Valid(id string) bool {
	return primitive.IsValidObjectID(id)
}
