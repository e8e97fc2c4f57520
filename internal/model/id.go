package model

import "github.com/oklog/ulid/v2"

// NewID returns a fresh task identifier. ULIDs carry 80 bits of randomness
// per millisecond, so ids generated by concurrent submitters never collide.
func NewID() string {
	return ulid.Make().String()
}
