package accounts

import (
	"context"
	"errors"
)

// ErrAccountExists is returned when the directory already knows the email address.
var ErrAccountExists = errors.New("account already exists")

type Attributes struct {
	FullName string `json:"full_name,omitempty"`
}

type Account struct {
	ID    string
	Email string
}

//go:generate mockgen -source=api.go -package accounts -destination directory_mock.go Directory
type Directory interface {
	// Invite creates an account and sends the owner an invitation to set a password.
	Invite(c context.Context, email string, attributes Attributes) (Account, error)
}
