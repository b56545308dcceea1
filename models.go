package account

import (
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// SubscriptionTier is the account's plan
type SubscriptionTier = string

const (
	// SubscriptionStarter is the default tier assigned at registration
	SubscriptionStarter SubscriptionTier = "starter"
	// SubscriptionPro is a paid tier
	SubscriptionPro SubscriptionTier = "pro"
	// SubscriptionBusiness is the top tier
	SubscriptionBusiness SubscriptionTier = "business"
)

// User is the account model. Secrets (password hash, session token,
// verification token) are excluded from JSON so handlers can serialize the
// record directly as the public projection.
type User struct {
	bun.BaseModel     `bun:"table:users,alias:usr"`
	ID                uuid.UUID        `bun:"id,pk,nullzero,type:uuid" json:"id,omitempty"`
	Email             string           `bun:"email,notnull,unique" json:"email,omitempty"`
	PasswordHash      string           `bun:"password_hash,notnull" json:"-"`
	AvatarURL         string           `bun:"avatar_url,notnull" json:"avatar_url,omitempty"`
	Subscription      SubscriptionTier `bun:"subscription,notnull" json:"subscription,omitempty"`
	VerificationToken string           `bun:"verification_token" json:"-"`
	EmailVerified     bool             `bun:"is_email_verified" json:"is_email_verified"`
	SessionToken      string           `bun:"session_token" json:"-"`
	CreatedAt         *time.Time       `bun:"created_at,nullzero,default:current_timestamp" json:"created_at,omitempty"`
	UpdatedAt         *time.Time       `bun:"updated_at,nullzero,default:current_timestamp" json:"updated_at,omitempty"`
}

// Profile is the current-user projection: email and subscription only.
type Profile struct {
	Email        string           `json:"email"`
	Subscription SubscriptionTier `json:"subscription"`
}

// Profile returns the read-only view served to an authenticated user.
func (u *User) Profile() Profile {
	return Profile{
		Email:        u.Email,
		Subscription: u.Subscription,
	}
}
