package postgres

import (
	"context"
	"database/sql"
	"errors"

	"github.com/lib/pq"

	"github.com/microblog/service_layer/internal/app/domain/account"
	"github.com/microblog/service_layer/internal/app/domain/message"
	"github.com/microblog/service_layer/internal/app/storage"
	"github.com/microblog/service_layer/pkg/logger"
)

// Store implements the storage interfaces backed by PostgreSQL.
type Store struct {
	db  *sql.DB
	log *logger.Logger
}

var _ storage.AccountStore = (*Store)(nil)
var _ storage.MessageStore = (*Store)(nil)

// New creates a Store using the provided database handle.
func New(db *sql.DB, log *logger.Logger) *Store {
	if log == nil {
		log = logger.NewDefault("postgres")
	}
	return &Store{db: db, log: log}
}

// --- AccountStore -----------------------------------------------------------

func (s *Store) InsertAccount(ctx context.Context, acct account.Account) (account.Account, error) {
	err := s.db.QueryRowContext(ctx, `
		INSERT INTO account (username, password)
		VALUES ($1, $2)
		RETURNING account_id
	`, acct.Username, acct.Password).Scan(&acct.ID)
	if err != nil {
		if isUniqueViolation(err) {
			return account.Account{}, storage.ErrDuplicate
		}
		s.log.WithError(err).Error("insert account failed")
		return account.Account{}, err
	}
	return acct, nil
}

func (s *Store) GetAccountByUsername(ctx context.Context, username string) (account.Account, error) {
	return s.scanAccount(s.db.QueryRowContext(ctx, `
		SELECT account_id, username, password
		FROM account
		WHERE username = $1
	`, username))
}

func (s *Store) GetAccountByCredentials(ctx context.Context, username, password string) (account.Account, error) {
	return s.scanAccount(s.db.QueryRowContext(ctx, `
		SELECT account_id, username, password
		FROM account
		WHERE username = $1 AND password = $2
	`, username, password))
}

func (s *Store) GetAccountByID(ctx context.Context, id int64) (account.Account, error) {
	return s.scanAccount(s.db.QueryRowContext(ctx, `
		SELECT account_id, username, password
		FROM account
		WHERE account_id = $1
	`, id))
}

func (s *Store) scanAccount(row *sql.Row) (account.Account, error) {
	var acct account.Account
	if err := row.Scan(&acct.ID, &acct.Username, &acct.Password); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return account.Account{}, storage.ErrNotFound
		}
		s.log.WithError(err).Error("scan account failed")
		return account.Account{}, err
	}
	return acct, nil
}

// --- MessageStore -----------------------------------------------------------

func (s *Store) InsertMessage(ctx context.Context, msg message.Message) (message.Message, error) {
	err := s.db.QueryRowContext(ctx, `
		INSERT INTO message (posted_by, message_text, time_posted_epoch)
		VALUES ($1, $2, $3)
		RETURNING message_id
	`, msg.PostedBy, msg.Text, msg.PostedEpoch).Scan(&msg.ID)
	if err != nil {
		s.log.WithError(err).Error("insert message failed")
		return message.Message{}, err
	}
	return msg, nil
}

func (s *Store) ListMessages(ctx context.Context) ([]message.Message, error) {
	return s.queryMessages(ctx, `
		SELECT message_id, posted_by, message_text, time_posted_epoch
		FROM message
		ORDER BY message_id
	`)
}

func (s *Store) GetMessageByID(ctx context.Context, id int64) (message.Message, error) {
	return s.scanMessage(s.db.QueryRowContext(ctx, `
		SELECT message_id, posted_by, message_text, time_posted_epoch
		FROM message
		WHERE message_id = $1
	`, id))
}

func (s *Store) ListMessagesByAccount(ctx context.Context, accountID int64) ([]message.Message, error) {
	return s.queryMessages(ctx, `
		SELECT message_id, posted_by, message_text, time_posted_epoch
		FROM message
		WHERE posted_by = $1
		ORDER BY message_id
	`, accountID)
}

// DeleteMessage selects the row and deletes it inside one transaction. The
// prior value is returned only when the delete committed; any failure after
// the select rolls back.
func (s *Store) DeleteMessage(ctx context.Context, id int64) (message.Message, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		s.log.WithError(err).Error("begin delete transaction failed")
		return message.Message{}, err
	}
	defer func() { _ = tx.Rollback() }()

	msg, err := s.scanMessage(tx.QueryRowContext(ctx, `
		SELECT message_id, posted_by, message_text, time_posted_epoch
		FROM message
		WHERE message_id = $1
	`, id))
	if err != nil {
		return message.Message{}, err
	}

	result, err := tx.ExecContext(ctx, `
		DELETE FROM message WHERE message_id = $1
	`, id)
	if err != nil {
		s.log.WithError(err).Error("delete message failed")
		return message.Message{}, err
	}
	if rows, _ := result.RowsAffected(); rows == 0 {
		return message.Message{}, storage.ErrNotFound
	}

	if err := tx.Commit(); err != nil {
		s.log.WithError(err).Error("commit delete failed")
		return message.Message{}, err
	}
	return msg, nil
}

// UpdateMessageText updates the text and re-reads the row inside one
// transaction so the caller observes exactly the committed state.
func (s *Store) UpdateMessageText(ctx context.Context, id int64, text string) (message.Message, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		s.log.WithError(err).Error("begin update transaction failed")
		return message.Message{}, err
	}
	defer func() { _ = tx.Rollback() }()

	result, err := tx.ExecContext(ctx, `
		UPDATE message SET message_text = $2 WHERE message_id = $1
	`, id, text)
	if err != nil {
		s.log.WithError(err).Error("update message failed")
		return message.Message{}, err
	}
	if rows, _ := result.RowsAffected(); rows == 0 {
		return message.Message{}, storage.ErrNotFound
	}

	msg, err := s.scanMessage(tx.QueryRowContext(ctx, `
		SELECT message_id, posted_by, message_text, time_posted_epoch
		FROM message
		WHERE message_id = $1
	`, id))
	if err != nil {
		return message.Message{}, err
	}

	if err := tx.Commit(); err != nil {
		s.log.WithError(err).Error("commit update failed")
		return message.Message{}, err
	}
	return msg, nil
}

func (s *Store) scanMessage(row *sql.Row) (message.Message, error) {
	var msg message.Message
	if err := row.Scan(&msg.ID, &msg.PostedBy, &msg.Text, &msg.PostedEpoch); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return message.Message{}, storage.ErrNotFound
		}
		s.log.WithError(err).Error("scan message failed")
		return message.Message{}, err
	}
	return msg, nil
}

func (s *Store) queryMessages(ctx context.Context, query string, args ...interface{}) ([]message.Message, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		s.log.WithError(err).Error("query messages failed")
		return nil, err
	}
	defer rows.Close()

	result := make([]message.Message, 0)
	for rows.Next() {
		var msg message.Message
		if err := rows.Scan(&msg.ID, &msg.PostedBy, &msg.Text, &msg.PostedEpoch); err != nil {
			return nil, err
		}
		result = append(result, msg)
	}
	return result, rows.Err()
}

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == "23505"
}
