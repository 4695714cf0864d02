package models

// CreatePropertyRequest is the payload for creating a property.
type CreatePropertyRequest struct {
	Address     string `json:"address" binding:"required"`
	Description string `json:"description"`
}

// UpdatePropertyRequest is the payload for updating a property. Pointer
// fields distinguish "not provided" from "set to empty".
type UpdatePropertyRequest struct {
	Address     *string `json:"address,omitempty"`
	Description *string `json:"description,omitempty"`
}

// CreateSectionRequest is the payload for adding a section to a property.
type CreateSectionRequest struct {
	PropertyID string `json:"propertyId" binding:"required"`
	Title      string `json:"title" binding:"required"`
}

// CreateNoteRequest is the payload for adding a note to a property.
type CreateNoteRequest struct {
	PropertyID string `json:"propertyId" binding:"required"`
	SectionID  string `json:"sectionId"`
	Content    string `json:"content" binding:"required"`
}

// CreatePaymentIntentRequest is the payload for starting a pay-per-export
// payment. Amount is in cents.
type CreatePaymentIntentRequest struct {
	PropertyID  string `json:"propertyId" binding:"required"`
	AmountCents int64  `json:"amountCents" binding:"required"`
}

// ConfirmPaymentRequest is the payload for confirming a completed payment.
type ConfirmPaymentRequest struct {
	PaymentIntentID string `json:"paymentIntentId" binding:"required"`
	PropertyID      string `json:"propertyId" binding:"required"`
}

// MakeAdminRequest is the payload for the admin role-grant endpoint.
type MakeAdminRequest struct {
	UserID string `json:"userId"`
	Email  string `json:"email"`
}
