package domain

import "time"

type User struct {
	ID            int64      `json:"id"`
	Email         string     `json:"email"`
	Name          string     `json:"name,omitempty"`
	PasswordHash  string     `json:"-"` // empty for google-only accounts
	GoogleID      string     `json:"-"`
	ProfileImage  string     `json:"profileImage,omitempty"`
	Phone         string     `json:"phone,omitempty"`
	City          string     `json:"city,omitempty"`
	Country       string     `json:"country,omitempty"`
	BirthDate     *time.Time `json:"birthDate,omitempty"`
	FoodInterests string     `json:"foodInterests,omitempty"`

	// Single mutable reset-token slot: at most one valid token per user,
	// every new request overwrites the previous one.
	ResetToken       string     `json:"-"`
	ResetTokenExpiry *time.Time `json:"-"`

	CreatedAt time.Time `json:"createdAt"`
}

// GoogleIdentity is the verified payload of a Google ID token.
type GoogleIdentity struct {
	Subject string
	Email   string
	Name    string
}
