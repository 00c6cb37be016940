package profiles

import (
	"context"
	"fmt"

	"github.com/MarcGrol/courseshop/lib/mystore"
)

type storeProfiles struct {
	store mystore.Store[Profile]
}

func NewStoreProfiles(store mystore.Store[Profile]) Store {
	return &storeProfiles{
		store: store,
	}
}

func (s *storeProfiles) Get(c context.Context, id string) (Profile, bool, error) {
	return s.store.Get(c, id)
}

func (s *storeProfiles) GetByEmail(c context.Context, email string) (Profile, bool, error) {
	key := normalizeEmail(email)
	if key == "" {
		return Profile{}, false, nil
	}
	found, err := s.store.Query(c, []mystore.Filter{{Field: "EmailKey", Compare: "=", Value: key}}, "UpdatedAt")
	if err != nil {
		return Profile{}, false, fmt.Errorf("error querying profile by email: %s", err)
	}
	if len(found) == 0 {
		return Profile{}, false, nil
	}
	return found[0], true, nil
}

func (s *storeProfiles) Upsert(c context.Context, profile Profile) (Profile, error) {
	if profile.ID == "" {
		return Profile{}, fmt.Errorf("profile without id")
	}

	var merged Profile
	err := s.store.RunInTransaction(c, func(c context.Context) error {
		existing, _, err := s.store.Get(c, profile.ID)
		if err != nil {
			return fmt.Errorf("error fetching profile %s: %s", profile.ID, err)
		}
		merged = merge(existing, profile)

		err = s.store.Put(c, merged.ID, merged)
		if err != nil {
			return fmt.Errorf("error storing profile %s: %s", profile.ID, err)
		}
		return nil
	})
	if err != nil {
		return Profile{}, err
	}
	return merged, nil
}
