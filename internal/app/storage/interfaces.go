// Package storage declares the persistence gateway consumed by the lifecycle
// services. Implementations own transaction boundaries for the compound
// message operations; services never manage transactions themselves.
package storage

import (
	"context"
	"errors"

	"github.com/microblog/service_layer/internal/app/domain/account"
	"github.com/microblog/service_layer/internal/app/domain/message"
)

// ErrNotFound signals an absent row. Any other error from a store is an
// unexpected persistence failure.
var ErrNotFound = errors.New("storage: not found")

// ErrDuplicate signals an insert stopped by the unique username constraint.
// Services treat it like any other persistence failure; it exists so the
// losing side of a duplicate-registration race is identifiable in logs.
var ErrDuplicate = errors.New("storage: duplicate key")

// AccountStore persists account records.
type AccountStore interface {
	InsertAccount(ctx context.Context, acct account.Account) (account.Account, error)
	GetAccountByUsername(ctx context.Context, username string) (account.Account, error)
	GetAccountByCredentials(ctx context.Context, username, password string) (account.Account, error)
	GetAccountByID(ctx context.Context, id int64) (account.Account, error)
}

// MessageStore persists message records. DeleteMessage and UpdateMessageText
// each execute as a single transaction so no partial state is observable.
type MessageStore interface {
	InsertMessage(ctx context.Context, msg message.Message) (message.Message, error)
	ListMessages(ctx context.Context) ([]message.Message, error)
	GetMessageByID(ctx context.Context, id int64) (message.Message, error)
	ListMessagesByAccount(ctx context.Context, accountID int64) ([]message.Message, error)

	// DeleteMessage reads and removes the row as one unit, returning the
	// prior value only if the delete actually happened.
	DeleteMessage(ctx context.Context, id int64) (message.Message, error)

	// UpdateMessageText updates the text and re-reads the row as one unit,
	// returning the fresh entity.
	UpdateMessageText(ctx context.Context, id int64, text string) (message.Message, error)
}
