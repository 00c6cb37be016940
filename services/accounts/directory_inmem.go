package accounts

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/MarcGrol/courseshop/lib/mytime"
	"github.com/MarcGrol/courseshop/lib/myuuid"
	"github.com/MarcGrol/courseshop/services/profiles"
)

// InMemoryDirectory creates accounts locally. Like the hosted backend, it creates the profile
// of a fresh account.
type InMemoryDirectory struct {
	sync.Mutex
	uuider   myuuid.UUIDer
	nower    mytime.Nower
	profiles profiles.Store
	accounts map[string]Account
}

func NewInMemoryDirectory(uuider myuuid.UUIDer, nower mytime.Nower, profileStore profiles.Store) *InMemoryDirectory {
	return &InMemoryDirectory{
		uuider:   uuider,
		nower:    nower,
		profiles: profileStore,
		accounts: map[string]Account{},
	}
}

func (d *InMemoryDirectory) Invite(c context.Context, email string, attributes Attributes) (Account, error) {
	d.Lock()
	defer d.Unlock()

	key := strings.ToLower(strings.TrimSpace(email))
	if key == "" {
		return Account{}, fmt.Errorf("cannot invite without email")
	}
	if _, exists := d.accounts[key]; exists {
		return Account{}, fmt.Errorf("error inviting %s: %w", email, ErrAccountExists)
	}

	account := Account{ID: d.uuider.Create(), Email: email}

	if d.profiles != nil {
		_, err := d.profiles.Upsert(c, profiles.Profile{
			ID:        account.ID,
			Email:     email,
			FullName:  attributes.FullName,
			UpdatedAt: d.nower.Now(),
		})
		if err != nil {
			return Account{}, fmt.Errorf("error creating profile for %s: %s", email, err)
		}
	}
	d.accounts[key] = account

	return account, nil
}
