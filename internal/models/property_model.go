package models

import "time"

// Property is the top-level aggregate: one seller's property and everything
// attached to it. A property is owned by exactly one user; deleting it
// cascades to its sections, documents, images and notes.
type Property struct {
	ID          string    `json:"id" firestore:"-"` // Document ID, auto-generated
	OwnerID     string    `json:"ownerId" firestore:"ownerId"`
	Address     string    `json:"address" firestore:"address"`
	Description string    `json:"description,omitempty" firestore:"description,omitempty"`
	CreatedAt   time.Time `json:"createdAt" firestore:"createdAt"`
}

// Section is a user-defined grouping of a property's documents, images and
// notes (e.g. "Roof", "Renovations"). Sections are ordered by creation time
// in the exported report.
type Section struct {
	ID         string    `json:"id" firestore:"-"`
	PropertyID string    `json:"propertyId" firestore:"propertyId"`
	Title      string    `json:"title" firestore:"title"`
	CreatedAt  time.Time `json:"createdAt" firestore:"createdAt"`
}
