package accounts

import (
	"context"
	"errors"
	"testing"

	"github.com/microblog/service_layer/internal/app/domain/account"
	"github.com/microblog/service_layer/internal/app/fault"
	"github.com/microblog/service_layer/internal/app/storage"
	"github.com/microblog/service_layer/internal/app/storage/memory"
)

// racingStore answers the pre-check with "absent" but rejects the insert with
// the unique-constraint error, like a store where a concurrent registration
// landed between the two calls.
type racingStore struct {
	storage.AccountStore
}

func (racingStore) GetAccountByUsername(context.Context, string) (account.Account, error) {
	return account.Account{}, storage.ErrNotFound
}

func (racingStore) InsertAccount(context.Context, account.Account) (account.Account, error) {
	return account.Account{}, storage.ErrDuplicate
}

func TestRegister(t *testing.T) {
	svc := New(memory.New(), nil)
	ctx := context.Background()

	acct, err := svc.Register(ctx, account.Account{Username: "bob", Password: "pass1"})
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if acct.ID == 0 {
		t.Fatalf("expected id to be generated")
	}

	_, err = svc.Register(ctx, account.Account{Username: "bob", Password: "other5"})
	if !errors.Is(err, fault.ErrValidation) {
		t.Fatalf("duplicate username should be a validation fault, got %v", err)
	}
}

func TestRegisterLosesDuplicateRace(t *testing.T) {
	svc := New(racingStore{}, nil)

	_, err := svc.Register(context.Background(), account.Account{Username: "bob", Password: "pass1"})
	if !errors.Is(err, fault.ErrValidation) {
		t.Fatalf("raced duplicate insert should read as a validation fault, got %v", err)
	}
}

func TestRegisterValidationOrder(t *testing.T) {
	store := memory.New()
	svc := New(store, nil)
	ctx := context.Background()

	// Blank username is rejected before the password is even considered.
	_, err := svc.Register(ctx, account.Account{Username: "", Password: "x"})
	if !errors.Is(err, fault.ErrValidation) {
		t.Fatalf("blank username: %v", err)
	}

	// Short password is rejected regardless of username validity.
	_, err = svc.Register(ctx, account.Account{Username: "carol", Password: "abc"})
	if !errors.Is(err, fault.ErrValidation) {
		t.Fatalf("short password: %v", err)
	}

	// No write happened for any rejected candidate.
	if exists, _ := svc.UsernameExists(ctx, "carol"); exists {
		t.Fatalf("rejected registration must not insert a row")
	}
}

func TestAuthenticate(t *testing.T) {
	svc := New(memory.New(), nil)
	ctx := context.Background()

	registered, err := svc.Register(ctx, account.Account{Username: "bob", Password: "pass1"})
	if err != nil {
		t.Fatalf("register: %v", err)
	}

	acct, err := svc.Authenticate(ctx, "bob", "pass1")
	if err != nil {
		t.Fatalf("authenticate: %v", err)
	}
	if acct.ID != registered.ID {
		t.Fatalf("expected account %d, got %d", registered.ID, acct.ID)
	}

	// Wrong password and wrong username both produce the same fault.
	_, badPass := svc.Authenticate(ctx, "bob", "wrong")
	_, badUser := svc.Authenticate(ctx, "alice", "pass1")
	if !errors.Is(badPass, fault.ErrNotFound) || !errors.Is(badUser, fault.ErrNotFound) {
		t.Fatalf("expected not-found faults, got %v / %v", badPass, badUser)
	}
	if badPass.Error() != badUser.Error() {
		t.Fatalf("authentication failures must not reveal which field was wrong")
	}
}

func TestGetAbsentAccount(t *testing.T) {
	svc := New(memory.New(), nil)

	_, err := svc.Get(context.Background(), 42)
	if !errors.Is(err, fault.ErrNotFound) {
		t.Fatalf("expected not-found fault, got %v", err)
	}
}
