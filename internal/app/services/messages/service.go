// Package messages implements the message lifecycle service. Compound
// operations (update, delete) rely on the persistence gateway executing each
// as a single transaction; this layer never observes partial writes.
package messages

import (
	"context"
	"errors"

	"github.com/microblog/service_layer/internal/app/domain/message"
	"github.com/microblog/service_layer/internal/app/fault"
	"github.com/microblog/service_layer/internal/app/services/accounts"
	"github.com/microblog/service_layer/internal/app/storage"
	"github.com/microblog/service_layer/pkg/logger"
)

// Service manages message records.
type Service struct {
	accounts *accounts.Service
	store    storage.MessageStore
	log      *logger.Logger
}

// New constructs a message service. The account service enforces authorship
// existence on post.
func New(accounts *accounts.Service, store storage.MessageStore, log *logger.Logger) *Service {
	if log == nil {
		log = logger.NewDefault("messages")
	}
	return &Service{accounts: accounts, store: store, log: log}
}

// Post validates and creates a message. Both preconditions (text length,
// author existence) hold before any write. The caller-supplied epoch is
// persisted unmodified.
func (s *Service) Post(ctx context.Context, candidate message.Message) (message.Message, error) {
	if !message.TextValid(candidate.Text) {
		return message.Message{}, fault.Validationf("message text must be 1-%d characters", message.MaxTextLength)
	}
	if _, err := s.accounts.Get(ctx, candidate.PostedBy); err != nil {
		if errors.Is(err, fault.ErrNotFound) {
			return message.Message{}, fault.Validationf("posted_by %d does not reference an account", candidate.PostedBy)
		}
		return message.Message{}, err
	}

	created, err := s.store.InsertMessage(ctx, candidate)
	if err != nil {
		return message.Message{}, fault.Persistencef("insert message", err)
	}
	s.log.WithField("message_id", created.ID).
		WithField("posted_by", created.PostedBy).
		Info("message posted")
	return created, nil
}

// ListAll returns every message in storage iteration order.
func (s *Service) ListAll(ctx context.Context) ([]message.Message, error) {
	msgs, err := s.store.ListMessages(ctx)
	if err != nil {
		return nil, fault.Persistencef("list messages", err)
	}
	return msgs, nil
}

// Get retrieves a message by id.
func (s *Service) Get(ctx context.Context, id int64) (message.Message, error) {
	msg, err := s.store.GetMessageByID(ctx, id)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return message.Message{}, fault.NotFoundf("message %d", id)
		}
		return message.Message{}, fault.Persistencef("lookup message", err)
	}
	return msg, nil
}

// Exists reports whether a message with the id is present.
func (s *Service) Exists(ctx context.Context, id int64) (bool, error) {
	_, err := s.Get(ctx, id)
	if err != nil {
		if errors.Is(err, fault.ErrNotFound) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// ListByAccount returns the messages posted by an account. An unknown account
// yields an empty slice, not an error.
func (s *Service) ListByAccount(ctx context.Context, accountID int64) ([]message.Message, error) {
	msgs, err := s.store.ListMessagesByAccount(ctx, accountID)
	if err != nil {
		return nil, fault.Persistencef("list messages by account", err)
	}
	return msgs, nil
}

// Delete removes a message and returns its prior value. The gateway performs
// the read and delete atomically, so the returned entity is guaranteed to
// have been removed. Absent ids are a not-found fault with no side effect.
func (s *Service) Delete(ctx context.Context, id int64) (message.Message, error) {
	msg, err := s.store.DeleteMessage(ctx, id)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return message.Message{}, fault.NotFoundf("message %d", id)
		}
		return message.Message{}, fault.Persistencef("delete message", err)
	}
	s.log.WithField("message_id", id).Info("message deleted")
	return msg, nil
}

// Update replaces the message text and returns the stored entity as re-read
// by the gateway within the same transaction. The text is re-validated here
// even when the boundary already checked it. A row that vanished between the
// existence check and the update surfaces as a not-found fault, never as an
// empty success.
func (s *Service) Update(ctx context.Context, id int64, text string) (message.Message, error) {
	if !message.TextValid(text) {
		return message.Message{}, fault.Validationf("message text must be 1-%d characters", message.MaxTextLength)
	}

	exists, err := s.Exists(ctx, id)
	if err != nil {
		return message.Message{}, err
	}
	if !exists {
		return message.Message{}, fault.NotFoundf("message %d", id)
	}

	updated, err := s.store.UpdateMessageText(ctx, id, text)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return message.Message{}, fault.NotFoundf("message %d", id)
		}
		return message.Message{}, fault.Persistencef("update message", err)
	}
	s.log.WithField("message_id", id).Info("message updated")
	return updated, nil
}
