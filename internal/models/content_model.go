package models

import "time"

// Document is an uploaded file attached to a property, optionally tagged to
// a section. SectionID, when set, must reference a section of the same
// property; that invariant is enforced at write time by the content service.
type Document struct {
	ID         string    `json:"id" firestore:"-"`
	PropertyID string    `json:"propertyId" firestore:"propertyId"`
	SectionID  string    `json:"sectionId,omitempty" firestore:"sectionId,omitempty"`
	FileName   string    `json:"fileName" firestore:"fileName"` // stored object path, e.g. "documents/<uuid>.pdf"
	URL        string    `json:"url" firestore:"url"`
	Size       int64     `json:"size" firestore:"size"`
	UploadedAt time.Time `json:"uploadedAt" firestore:"uploadedAt"`
}

// Image is an uploaded photo attached to a property.
type Image struct {
	ID         string    `json:"id" firestore:"-"`
	PropertyID string    `json:"propertyId" firestore:"propertyId"`
	SectionID  string    `json:"sectionId,omitempty" firestore:"sectionId,omitempty"`
	FileName   string    `json:"fileName" firestore:"fileName"`
	URL        string    `json:"url" firestore:"url"`
	Size       int64     `json:"size" firestore:"size"`
	UploadedAt time.Time `json:"uploadedAt" firestore:"uploadedAt"`
}

// Note is a free-text annotation attached to a property.
type Note struct {
	ID         string    `json:"id" firestore:"-"`
	PropertyID string    `json:"propertyId" firestore:"propertyId"`
	SectionID  string    `json:"sectionId,omitempty" firestore:"sectionId,omitempty"`
	Content    string    `json:"content" firestore:"content"`
	CreatedAt  time.Time `json:"createdAt" firestore:"createdAt"`
}
