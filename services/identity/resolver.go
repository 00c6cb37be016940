package identity

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/avast/retry-go"
	"golang.org/x/sync/singleflight"

	"github.com/MarcGrol/courseshop/lib/mylog"
	"github.com/MarcGrol/courseshop/services/accounts"
	"github.com/MarcGrol/courseshop/services/profiles"
)

// ErrIdentityResolution means an account exists for the email but its id could not be found.
var ErrIdentityResolution = errors.New("identity resolution failed")

var errProfileNotFound = errors.New("profile not found")

type Resolver struct {
	directory      accounts.Directory
	profiles       profiles.Store
	logger         mylog.Logger
	group          singleflight.Group
	lookupAttempts uint
	lookupDelay    time.Duration
}

func NewResolver(directory accounts.Directory, profileStore profiles.Store) *Resolver {
	return &Resolver{
		directory:      directory,
		profiles:       profileStore,
		logger:         mylog.New("identity"),
		lookupAttempts: 3,
		lookupDelay:    200 * time.Millisecond,
	}
}

// ResolveOrCreateAccount returns the account id for email, inviting the owner when no account exists.
// Concurrent calls for the same email share one resolution.
func (r *Resolver) ResolveOrCreateAccount(c context.Context, email string, name string) (string, error) {
	key := strings.ToLower(strings.TrimSpace(email))
	if key == "" {
		return "", fmt.Errorf("%w: no email", ErrIdentityResolution)
	}

	userID, err, shared := r.group.Do(key, func() (any, error) {
		return r.resolve(c, key, name)
	})
	if err != nil {
		return "", err
	}
	if shared {
		r.logger.Log(c, key, mylog.SeverityDebug, "Resolution of %s shared with concurrent caller", key)
	}

	return userID.(string), nil
}

func (r *Resolver) resolve(c context.Context, email string, name string) (string, error) {
	account, err := r.directory.Invite(c, email, accounts.Attributes{FullName: name})
	if err == nil {
		r.logger.Log(c, email, mylog.SeverityInfo, "Invited %s as account %s", email, account.ID)
		return account.ID, nil
	}
	if !errors.Is(err, accounts.ErrAccountExists) {
		return "", fmt.Errorf("%w: %s", ErrIdentityResolution, err)
	}

	userID := ""
	err = retry.Do(
		func() error {
			profile, found, err := r.profiles.GetByEmail(c, email)
			if err != nil {
				return err
			}
			if !found {
				return errProfileNotFound
			}
			userID = profile.ID
			return nil
		},
		retry.Attempts(r.lookupAttempts),
		retry.Delay(r.lookupDelay),
		retry.Context(c),
		retry.LastErrorOnly(true),
	)
	if err != nil {
		return "", fmt.Errorf("%w: account for %s exists but lookup failed: %s", ErrIdentityResolution, email, err)
	}

	r.logger.Log(c, email, mylog.SeverityInfo, "Found existing account %s for %s", userID, email)

	return userID, nil
}
