// Package accounts implements the account lifecycle service: registration
// validation, credential checks and existence lookups.
package accounts

import (
	"context"
	"errors"

	"github.com/microblog/service_layer/internal/app/domain/account"
	"github.com/microblog/service_layer/internal/app/fault"
	"github.com/microblog/service_layer/internal/app/storage"
	"github.com/microblog/service_layer/pkg/logger"
)

// Service manages account records.
type Service struct {
	store storage.AccountStore
	log   *logger.Logger
}

// New constructs an account service over the given persistence gateway.
func New(store storage.AccountStore, log *logger.Logger) *Service {
	if log == nil {
		log = logger.NewDefault("accounts")
	}
	return &Service{store: store, log: log}
}

// Register validates and creates an account. Preconditions are checked in
// order: username non-empty, password length, username not taken. The first
// failure returns a validation fault before any write is attempted.
func (s *Service) Register(ctx context.Context, candidate account.Account) (account.Account, error) {
	if candidate.Username == "" {
		return account.Account{}, fault.Validationf("username must not be blank")
	}
	if len(candidate.Password) < account.MinPasswordLength {
		return account.Account{}, fault.Validationf("password must be at least %d characters", account.MinPasswordLength)
	}

	taken, err := s.UsernameExists(ctx, candidate.Username)
	if err != nil {
		return account.Account{}, err
	}
	if taken {
		return account.Account{}, fault.Validationf("username %q is already registered", candidate.Username)
	}

	created, err := s.store.InsertAccount(ctx, candidate)
	if err != nil {
		// The losing side of a concurrent duplicate registration hits the
		// store's unique constraint; report it like the pre-check would have.
		if errors.Is(err, storage.ErrDuplicate) {
			return account.Account{}, fault.Validationf("username %q is already registered", candidate.Username)
		}
		return account.Account{}, fault.Persistencef("insert account", err)
	}
	s.log.WithField("account_id", created.ID).
		WithField("username", created.Username).
		Info("account registered")
	return created, nil
}

// Authenticate returns the account matching both username and password
// exactly. A mismatch in either field yields the same not-found fault, so
// callers cannot tell which one was wrong.
func (s *Service) Authenticate(ctx context.Context, username, password string) (account.Account, error) {
	acct, err := s.store.GetAccountByCredentials(ctx, username, password)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return account.Account{}, fault.NotFoundf("invalid credentials")
		}
		return account.Account{}, fault.Persistencef("lookup credentials", err)
	}
	return acct, nil
}

// Get retrieves an account by id.
func (s *Service) Get(ctx context.Context, id int64) (account.Account, error) {
	acct, err := s.store.GetAccountByID(ctx, id)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return account.Account{}, fault.NotFoundf("account %d", id)
		}
		return account.Account{}, fault.Persistencef("lookup account", err)
	}
	return acct, nil
}

// UsernameExists reports whether an account with the username is present.
func (s *Service) UsernameExists(ctx context.Context, username string) (bool, error) {
	_, err := s.store.GetAccountByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return false, nil
		}
		return false, fault.Persistencef("lookup username", err)
	}
	return true, nil
}
