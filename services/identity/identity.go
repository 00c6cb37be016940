package identity

import (
	"strings"
)

// DefaultGuestName is used when the payment carries no display name.
const DefaultGuestName = "Student"

// Identity is either an AuthenticatedBuyer or a GuestBuyer.
type Identity interface {
	isIdentity()
}

type AuthenticatedBuyer struct {
	UserID string
}

func (AuthenticatedBuyer) isIdentity() {}

type GuestBuyer struct {
	Email string
	Name  string
}

func (GuestBuyer) isIdentity() {}

// Assignable reports whether a purchase by this guest can be tied to an account.
func (g GuestBuyer) Assignable() bool {
	return g.Email != ""
}

// FromCheckout derives the buyer as claimed by the storefront when a session is created.
func FromCheckout(userID string, email string) Identity {
	userID = strings.TrimSpace(userID)
	if userID != "" {
		return AuthenticatedBuyer{UserID: userID}
	}
	return GuestBuyer{Email: strings.TrimSpace(email)}
}

// FromEvent derives the buyer from a completed payment: the buyer reference wins over the email.
func FromEvent(buyerReference string, email string, name string) Identity {
	buyerReference = strings.TrimSpace(buyerReference)
	if buyerReference != "" {
		return AuthenticatedBuyer{UserID: buyerReference}
	}
	name = strings.TrimSpace(name)
	if name == "" {
		name = DefaultGuestName
	}
	return GuestBuyer{Email: strings.TrimSpace(email), Name: name}
}
