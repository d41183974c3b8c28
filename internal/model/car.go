package model

import (
	"slices"
	"time"
)

// MaxCarImages is the upper bound on image references per listing.
const MaxCarImages = 10

// Car is a listing owned by exactly one user.
type Car struct {
	ID          string    `json:"_id"`
	OwnerID     string    `json:"owner"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Images      []string  `json:"images"`
	Tags        []string  `json:"tags"`
	CreatedAt   time.Time `json:"createdAt"`
}

// CarPatch carries the mutable fields of a partial update.
// Zero values (empty string, empty or nil slice) mean "keep the stored value".
type CarPatch struct {
	Title       string
	Description string
	Images      []string
	Tags        []string
}

// OwnedBy reports whether userID is the recorded owner.
func (c *Car) OwnedBy(userID string) bool {
	return c.OwnerID == userID
}

// Apply overwrites each field for which the patch carries a non-empty value.
// An explicit "" or [] never clears a field. Owner and CreatedAt are untouched.
func (c *Car) Apply(p CarPatch) {
	if p.Title != "" {
		c.Title = p.Title
	}
	if p.Description != "" {
		c.Description = p.Description
	}
	if len(p.Images) > 0 {
		c.Images = p.Images
	}
	if len(p.Tags) > 0 {
		c.Tags = p.Tags
	}
}

// Clone returns a deep copy so stores can hand out values callers may mutate.
func (c *Car) Clone() *Car {
	cp := *c
	cp.Images = slices.Clone(c.Images)
	cp.Tags = slices.Clone(c.Tags)
	return &cp
}
