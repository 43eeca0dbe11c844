// Package idgen provides the UUID-backed identifier generator.
package idgen

import "github.com/google/uuid"

// UUID generates RFC 4122 v4 identifiers.
type UUID struct{}

// NewID implements service.IDGenerator.
func (UUID) NewID() string {
	return uuid.NewString()
}
