package domain

import "time"

// ExternalIdentity binds one third-party credential to a User. The pair
// (Provider, SubjectID) is unique system-wide; the store enforces it and the
// reconciler treats an insert conflict as "already linked".
type ExternalIdentity struct {
	ID           string
	UserID       string
	Provider     string
	SubjectID    string
	AccessToken  string // provider-issued, opaque to this core
	RefreshToken string // provider-issued, opaque to this core
	SessionState string // optional provider session blob
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// CanonicalIdentity is the normalized result of a third-party sign-in,
// independent of the provider's response shape.
type CanonicalIdentity struct {
	Provider       string
	SubjectID      string
	Email          string
	ProposedName   string
	ProposedAvatar string

	// Provider tokens carried through for storage on the linked identity.
	AccessToken  string
	RefreshToken string
	SessionState string
}
