package ledger

import (
	"context"
	"fmt"

	"github.com/MarcGrol/courseshop/lib/mystore"
)

type storeLedger struct {
	store mystore.Store[Purchase]
}

func NewStoreLedger(store mystore.Store[Purchase]) Ledger {
	return &storeLedger{
		store: store,
	}
}

func (l *storeLedger) CountForUser(c context.Context, userID string) (int, error) {
	purchases, err := l.ListForUser(c, userID)
	if err != nil {
		return 0, err
	}
	return len(purchases), nil
}

func (l *storeLedger) Upsert(c context.Context, purchases []Purchase) (int, error) {
	for _, p := range purchases {
		err := p.validate()
		if err != nil {
			return 0, err
		}
	}

	inserted := 0
	err := l.store.RunInTransaction(c, func(c context.Context) error {
		inserted = 0
		for _, p := range purchases {
			_, exists, err := l.store.Get(c, p.key())
			if err != nil {
				return fmt.Errorf("error fetching purchase %s: %s", p.key(), err)
			}
			if exists {
				continue
			}
			err = l.store.Put(c, p.key(), p)
			if err != nil {
				return fmt.Errorf("error storing purchase %s: %s", p.key(), err)
			}
			inserted++
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return inserted, nil
}

func (l *storeLedger) ListForUser(c context.Context, userID string) ([]Purchase, error) {
	purchases, err := l.store.Query(c, []mystore.Filter{{Field: "UserID", Compare: "=", Value: userID}}, "CreatedAt")
	if err != nil {
		return nil, fmt.Errorf("error listing purchases of user %s: %s", userID, err)
	}
	return purchases, nil
}
