package models

import "time"

// Role values for UserProfile.Role.
const (
	RoleIndividual = "individual"
	RoleAgent      = "agent"
	RoleClient     = "client"
	RoleAdmin      = "admin"
)

// Subscription status values. Provider statuses other than "active" are
// stored as delivered (e.g. "past_due", "canceled"), so these constants only
// cover the values the backend itself assigns or branches on.
const (
	SubscriptionNone      = "none"
	SubscriptionActive    = "active"
	SubscriptionCancelled = "cancelled"
	SubscriptionPastDue   = "past_due"
)

// Subscription tier values, derived from the Stripe price identifier.
const (
	TierStarter      = "starter"
	TierProfessional = "professional"
	TierTeam         = "team"
)

// UserProfile represents a user's backend profile. The document ID is the
// Firebase Auth UID. Profiles are created lazily on first access and are
// never deleted.
type UserProfile struct {
	ID          string `json:"id" firestore:"-"` // Firebase Auth UID, used as the document ID
	Email       string `json:"email" firestore:"email"`
	DisplayName string `json:"displayName,omitempty" firestore:"displayName,omitempty"`

	// Role determines entitlement shortcuts (admins always export for free)
	// and access to the admin endpoints.
	Role string `json:"role" firestore:"role"`

	// ParentID optionally links a client to the agent (or individual) account
	// that invited them. The link is a single hop and is never followed
	// transitively.
	ParentID string `json:"parentId,omitempty" firestore:"parentId,omitempty"`

	SubscriptionStatus string `json:"subscriptionStatus" firestore:"subscriptionStatus"`
	SubscriptionTier   string `json:"subscriptionTier,omitempty" firestore:"subscriptionTier,omitempty"`

	StripeCustomerID     string `json:"stripeCustomerId,omitempty" firestore:"stripeCustomerId,omitempty"`
	StripeSubscriptionID string `json:"stripeSubscriptionId,omitempty" firestore:"stripeSubscriptionId,omitempty"`

	// PropertiesExported tracks lifetime export consumption. It is bumped on
	// the first free export and on every confirmed payment; it is never used
	// as a cap, only as a "has exported before" flag.
	PropertiesExported int `json:"propertiesExported" firestore:"propertiesExported"`

	CreatedAt time.Time `json:"createdAt" firestore:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt" firestore:"updatedAt"`
}

// IsAdmin reports whether the profile has the admin role.
func (u *UserProfile) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// HasActiveSubscription reports whether the profile's own subscription is active.
func (u *UserProfile) HasActiveSubscription() bool {
	return u.SubscriptionStatus == SubscriptionActive
}
