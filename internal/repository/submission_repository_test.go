package repository

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/momentumgaming/backend/internal/changefeed"
	"github.com/momentumgaming/backend/internal/model"
	"github.com/momentumgaming/backend/internal/remotestore"

	_ "modernc.org/sqlite"
)

const sqliteSubmissions = `CREATE TABLE contact_submissions (
	id           TEXT PRIMARY KEY,
	created_at   TIMESTAMP NOT NULL,
	name         TEXT NOT NULL,
	email        TEXT NOT NULL,
	company      TEXT,
	inquiry_type TEXT,
	subject      TEXT,
	message      TEXT NOT NULL,
	status       TEXT
)`

func newSQLiteSubmissionRepo(t *testing.T) (*StoreSubmissionRepository, *remotestore.Client, *changefeed.Hub) {
	t.Helper()
	ctx := context.Background()
	hub := changefeed.NewHub()
	store, err := remotestore.Open(ctx, remotestore.DriverSQLite, ":memory:", remotestore.WithFeed(hub))
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	_, err = store.DB().ExecContext(ctx, sqliteSubmissions)
	require.NoError(t, err)
	return NewStoreSubmissionRepository(store), store, hub
}

func seed(t *testing.T, repo *StoreSubmissionRepository, name string, at time.Time, status model.SubmissionStatus) *model.Submission {
	t.Helper()
	s := &model.Submission{
		CreatedAt: at,
		Name:      name,
		Email:     name + "@example.com",
		Message:   "hello from " + name,
		Status:    status,
	}
	require.NoError(t, repo.Create(context.Background(), s))
	require.NotEmpty(t, s.ID)
	return s
}

func TestStoreSubmissionRepository_ListNewestFirst(t *testing.T) {
	repo, _, _ := newSQLiteSubmissionRepo(t)
	t1 := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)

	older := seed(t, repo, "ann", t1, model.StatusRead)
	newer := seed(t, repo, "bo", t1.Add(time.Minute), "")

	list, err := repo.List(context.Background())
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, newer.ID, list[0].ID)
	assert.Equal(t, model.StatusNew, list[0].Status, "empty status defaults to new")
	assert.Equal(t, older.ID, list[1].ID)
	assert.Equal(t, model.StatusRead, list[1].Status)
	assert.True(t, list[1].CreatedAt.Equal(t1))
}

func TestStoreSubmissionRepository_NullStatusReadsAsNew(t *testing.T) {
	repo, store, _ := newSQLiteSubmissionRepo(t)
	ctx := context.Background()

	_, err := store.DB().ExecContext(ctx,
		`INSERT INTO contact_submissions (id, created_at, name, email, message) VALUES (?, ?, ?, ?, ?)`,
		"legacy", time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC), "Old", "old@example.com", "hi")
	require.NoError(t, err)

	list, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, model.StatusNew, list[0].Status)

	n, err := repo.CountUnread(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
}

func TestStoreSubmissionRepository_UpdateStatusAndCountUnread(t *testing.T) {
	repo, _, _ := newSQLiteSubmissionRepo(t)
	ctx := context.Background()
	now := time.Now().UTC()

	a := seed(t, repo, "ann", now, model.StatusNew)
	seed(t, repo, "bo", now.Add(time.Second), model.StatusNew)

	n, err := repo.CountUnread(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	require.NoError(t, repo.UpdateStatus(ctx, a.ID, model.StatusReplied))

	n, err = repo.CountUnread(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	// last write wins
	require.NoError(t, repo.UpdateStatus(ctx, a.ID, model.StatusNew))
	n, err = repo.CountUnread(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)
}

func TestStoreSubmissionRepository_UpdateStatusRejectsUnknownStatus(t *testing.T) {
	repo, _, _ := newSQLiteSubmissionRepo(t)

	err := repo.UpdateStatus(context.Background(), "x", model.SubmissionStatus("archived"))
	assert.ErrorIs(t, err, ErrUpdateStatusFailed)
	assert.ErrorIs(t, err, ErrInvalidStatus)
}

func TestStoreSubmissionRepository_DeleteIsIdempotent(t *testing.T) {
	repo, _, _ := newSQLiteSubmissionRepo(t)
	ctx := context.Background()
	s := seed(t, repo, "ann", time.Now().UTC(), model.StatusNew)

	require.NoError(t, repo.Delete(ctx, s.ID))
	require.NoError(t, repo.Delete(ctx, s.ID))

	list, err := repo.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestStoreSubmissionRepository_SubscribeSeesWrites(t *testing.T) {
	repo, _, hub := newSQLiteSubmissionRepo(t)
	ctx := context.Background()

	var ops []changefeed.Op
	sub, err := repo.Subscribe(ctx, changefeed.All, func(ev changefeed.Event) {
		ops = append(ops, ev.Op)
	})
	require.NoError(t, err)

	s := seed(t, repo, "ann", time.Now().UTC(), model.StatusNew)
	require.NoError(t, repo.UpdateStatus(ctx, s.ID, model.StatusRead))
	require.NoError(t, repo.Delete(ctx, s.ID))

	assert.Equal(t, []changefeed.Op{changefeed.OpInsert, changefeed.OpUpdate, changefeed.OpDelete}, ops)

	repo.Unsubscribe(sub)
	assert.Equal(t, 0, hub.Subscribers())
}

func TestStoreSubmissionRepository_ErrorKinds(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	store, err := remotestore.New(db, remotestore.DriverPostgres)
	require.NoError(t, err)
	repo := NewStoreSubmissionRepository(store)
	ctx := context.Background()
	boom := errors.New("network unreachable")

	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, created_at, name, email")).WillReturnError(boom)
	_, err = repo.List(ctx)
	assert.ErrorIs(t, err, ErrFetchFailed)
	assert.ErrorIs(t, err, boom)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT count(*) FROM contact_submissions WHERE (status = $1 OR status IS NULL)")).
		WithArgs("new").
		WillReturnError(boom)
	_, err = repo.CountUnread(ctx)
	assert.ErrorIs(t, err, ErrFetchFailed)

	mock.ExpectExec(regexp.QuoteMeta("UPDATE contact_submissions SET status = $1 WHERE id = $2")).
		WithArgs("read", "a").
		WillReturnError(boom)
	err = repo.UpdateStatus(ctx, "a", model.StatusRead)
	assert.ErrorIs(t, err, ErrUpdateStatusFailed)
	assert.ErrorIs(t, err, boom)

	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM contact_submissions WHERE id = $1")).
		WithArgs("a").
		WillReturnError(boom)
	err = repo.Delete(ctx, "a")
	assert.ErrorIs(t, err, ErrDeleteFailed)
	assert.NotErrorIs(t, err, ErrFetchFailed)

	var opErr *OpError
	require.ErrorAs(t, err, &opErr)
	assert.Equal(t, "delete submission", opErr.Op)

	assert.NoError(t, mock.ExpectationsWereMet())
}
