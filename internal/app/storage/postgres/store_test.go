package postgres

import (
	"context"
	"database/sql"
	"errors"
	"os"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	_ "github.com/lib/pq"
	"github.com/stretchr/testify/require"

	"github.com/microblog/service_layer/internal/app/domain/account"
	"github.com/microblog/service_layer/internal/app/domain/message"
	"github.com/microblog/service_layer/internal/app/storage"
)

func newMockStore(t *testing.T) (*Store, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return New(db, nil), mock
}

func TestInsertAccountReturnsGeneratedID(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectQuery(`INSERT INTO account`).
		WithArgs("bob", "pass1").
		WillReturnRows(sqlmock.NewRows([]string{"account_id"}).AddRow(int64(3)))

	acct, err := store.InsertAccount(context.Background(), account.Account{Username: "bob", Password: "pass1"})
	require.NoError(t, err)
	require.Equal(t, int64(3), acct.ID)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestGetAccountByUsernameAbsent(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectQuery(`SELECT account_id, username, password`).
		WithArgs("nobody").
		WillReturnError(sql.ErrNoRows)

	_, err := store.GetAccountByUsername(context.Background(), "nobody")
	require.ErrorIs(t, err, storage.ErrNotFound)
}

func TestDeleteMessageCommitsSelectAndDelete(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT message_id, posted_by, message_text, time_posted_epoch`).
		WithArgs(int64(9)).
		WillReturnRows(sqlmock.NewRows([]string{"message_id", "posted_by", "message_text", "time_posted_epoch"}).
			AddRow(int64(9), int64(1), "hi", int64(1000)))
	mock.ExpectExec(`DELETE FROM message`).
		WithArgs(int64(9)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	msg, err := store.DeleteMessage(context.Background(), 9)
	require.NoError(t, err)
	require.Equal(t, message.Message{ID: 9, PostedBy: 1, Text: "hi", PostedEpoch: 1000}, msg)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestDeleteMessageAbsentRowRollsBack(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT message_id, posted_by, message_text, time_posted_epoch`).
		WithArgs(int64(404)).
		WillReturnError(sql.ErrNoRows)
	mock.ExpectRollback()

	_, err := store.DeleteMessage(context.Background(), 404)
	require.ErrorIs(t, err, storage.ErrNotFound)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestDeleteMessageFailureAfterSelectRollsBack(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT message_id, posted_by, message_text, time_posted_epoch`).
		WithArgs(int64(9)).
		WillReturnRows(sqlmock.NewRows([]string{"message_id", "posted_by", "message_text", "time_posted_epoch"}).
			AddRow(int64(9), int64(1), "hi", int64(1000)))
	mock.ExpectExec(`DELETE FROM message`).
		WithArgs(int64(9)).
		WillReturnError(errors.New("connection reset"))
	mock.ExpectRollback()

	_, err := store.DeleteMessage(context.Background(), 9)
	require.Error(t, err)
	require.NotErrorIs(t, err, storage.ErrNotFound)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateMessageTextRereadsInsideTransaction(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectBegin()
	mock.ExpectExec(`UPDATE message SET message_text`).
		WithArgs(int64(5), "edited").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery(`SELECT message_id, posted_by, message_text, time_posted_epoch`).
		WithArgs(int64(5)).
		WillReturnRows(sqlmock.NewRows([]string{"message_id", "posted_by", "message_text", "time_posted_epoch"}).
			AddRow(int64(5), int64(2), "edited", int64(2000)))
	mock.ExpectCommit()

	msg, err := store.UpdateMessageText(context.Background(), 5, "edited")
	require.NoError(t, err)
	require.Equal(t, "edited", msg.Text)
	require.Equal(t, int64(2), msg.PostedBy)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateMessageTextZeroRowsIsNotFound(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectBegin()
	mock.ExpectExec(`UPDATE message SET message_text`).
		WithArgs(int64(77), "edited").
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectRollback()

	_, err := store.UpdateMessageText(context.Background(), 77, "edited")
	require.ErrorIs(t, err, storage.ErrNotFound)
	require.NoError(t, mock.ExpectationsWereMet())
}

// Against a live database when TEST_POSTGRES_DSN is set; exercises the real
// unique constraint and transaction paths.
func TestStoreIntegration(t *testing.T) {
	dsn := os.Getenv("TEST_POSTGRES_DSN")
	if dsn == "" {
		t.Skip("TEST_POSTGRES_DSN not set; skipping postgres integration test")
	}

	db, err := sql.Open("postgres", dsn)
	require.NoError(t, err)
	defer db.Close()

	store := New(db, nil)
	ctx := context.Background()

	acct, err := store.InsertAccount(ctx, account.Account{Username: "it-user", Password: "pass1"})
	require.NoError(t, err)

	_, err = store.InsertAccount(ctx, account.Account{Username: "it-user", Password: "other"})
	require.ErrorIs(t, err, storage.ErrDuplicate)

	msg, err := store.InsertMessage(ctx, message.Message{PostedBy: acct.ID, Text: "hello", PostedEpoch: 1000})
	require.NoError(t, err)

	deleted, err := store.DeleteMessage(ctx, msg.ID)
	require.NoError(t, err)
	require.Equal(t, msg, deleted)

	_, err = store.GetMessageByID(ctx, msg.ID)
	require.ErrorIs(t, err, storage.ErrNotFound)
}
