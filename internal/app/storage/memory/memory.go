package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/microblog/service_layer/internal/app/domain/account"
	"github.com/microblog/service_layer/internal/app/domain/message"
	"github.com/microblog/service_layer/internal/app/storage"
)

// Store is an in-memory implementation of the storage interfaces. It is safe
// for concurrent use and is primarily intended for tests and local development.
type Store struct {
	mu            sync.RWMutex
	nextAccountID int64
	nextMessageID int64
	accounts      map[int64]account.Account
	byUsername    map[string]int64
	messages      map[int64]message.Message
}

var _ storage.AccountStore = (*Store)(nil)
var _ storage.MessageStore = (*Store)(nil)

// New creates an empty store.
func New() *Store {
	return &Store{
		nextAccountID: 1,
		nextMessageID: 1,
		accounts:      make(map[int64]account.Account),
		byUsername:    make(map[string]int64),
		messages:      make(map[int64]message.Message),
	}
}

// --- AccountStore -----------------------------------------------------------

func (s *Store) InsertAccount(ctx context.Context, acct account.Account) (account.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, taken := s.byUsername[acct.Username]; taken {
		// Mirrors the database unique constraint on username.
		return account.Account{}, storage.ErrDuplicate
	}

	acct.ID = s.nextAccountID
	s.nextAccountID++
	s.accounts[acct.ID] = acct
	s.byUsername[acct.Username] = acct.ID
	return acct, nil
}

func (s *Store) GetAccountByUsername(ctx context.Context, username string) (account.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	id, ok := s.byUsername[username]
	if !ok {
		return account.Account{}, storage.ErrNotFound
	}
	return s.accounts[id], nil
}

func (s *Store) GetAccountByCredentials(ctx context.Context, username, password string) (account.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	id, ok := s.byUsername[username]
	if !ok || s.accounts[id].Password != password {
		return account.Account{}, storage.ErrNotFound
	}
	return s.accounts[id], nil
}

func (s *Store) GetAccountByID(ctx context.Context, id int64) (account.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	acct, ok := s.accounts[id]
	if !ok {
		return account.Account{}, storage.ErrNotFound
	}
	return acct, nil
}

// --- MessageStore -----------------------------------------------------------

func (s *Store) InsertMessage(ctx context.Context, msg message.Message) (message.Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	msg.ID = s.nextMessageID
	s.nextMessageID++
	s.messages[msg.ID] = msg
	return msg, nil
}

func (s *Store) ListMessages(ctx context.Context) ([]message.Message, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.collect(func(message.Message) bool { return true }), nil
}

func (s *Store) GetMessageByID(ctx context.Context, id int64) (message.Message, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	msg, ok := s.messages[id]
	if !ok {
		return message.Message{}, storage.ErrNotFound
	}
	return msg, nil
}

func (s *Store) ListMessagesByAccount(ctx context.Context, accountID int64) ([]message.Message, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.collect(func(m message.Message) bool { return m.PostedBy == accountID }), nil
}

func (s *Store) DeleteMessage(ctx context.Context, id int64) (message.Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	msg, ok := s.messages[id]
	if !ok {
		return message.Message{}, storage.ErrNotFound
	}
	delete(s.messages, id)
	return msg, nil
}

func (s *Store) UpdateMessageText(ctx context.Context, id int64, text string) (message.Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	msg, ok := s.messages[id]
	if !ok {
		return message.Message{}, storage.ErrNotFound
	}
	msg.Text = text
	s.messages[id] = msg
	return msg, nil
}

// collect returns matching messages in id order, which for this store is
// insertion order.
func (s *Store) collect(match func(message.Message) bool) []message.Message {
	result := make([]message.Message, 0)
	for _, msg := range s.messages {
		if match(msg) {
			result = append(result, msg)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result
}
