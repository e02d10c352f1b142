package repository

import (
	"context"
	"fmt"

	sq "github.com/Masterminds/squirrel"

	"github.com/momentumgaming/backend/internal/changefeed"
	"github.com/momentumgaming/backend/internal/model"
	"github.com/momentumgaming/backend/internal/remotestore"
)

// SubmissionsTable is the table holding contact form submissions.
const SubmissionsTable = "contact_submissions"

// SubmissionRepository is the domain view of the contact_submissions table.
// Errors carry one of ErrFetchFailed, ErrDeleteFailed or ErrUpdateStatusFailed.
type SubmissionRepository interface {
	List(ctx context.Context) ([]*model.Submission, error)
	UpdateStatus(ctx context.Context, id string, status model.SubmissionStatus) error
	Delete(ctx context.Context, id string) error
	CountUnread(ctx context.Context) (int64, error)
	Create(ctx context.Context, s *model.Submission) error
	Subscribe(ctx context.Context, mask changefeed.Mask, fn changefeed.Handler) (changefeed.Subscription, error)
	Unsubscribe(sub changefeed.Subscription)
}

// StoreSubmissionRepository implements SubmissionRepository on the remote store.
type StoreSubmissionRepository struct {
	store *remotestore.Client
}

// NewStoreSubmissionRepository creates a StoreSubmissionRepository.
func NewStoreSubmissionRepository(store *remotestore.Client) *StoreSubmissionRepository {
	return &StoreSubmissionRepository{store: store}
}

var _ SubmissionRepository = (*StoreSubmissionRepository)(nil)

var submissionColumns = []string{
	"id",
	"created_at",
	"name",
	"email",
	"COALESCE(company, '')",
	"COALESCE(inquiry_type, '')",
	"COALESCE(subject, '')",
	"message",
	// 未設定のステータスは未読として扱う
	"COALESCE(status, 'new')",
}

// unreadFilter matches rows counted by the unread badge.
var unreadFilter = sq.Or{
	sq.Eq{"status": string(model.StatusNew)},
	sq.Eq{"status": nil},
}

// List returns every submission, newest first.
func (r *StoreSubmissionRepository) List(ctx context.Context) ([]*model.Submission, error) {
	var out []*model.Submission
	err := r.store.Select(ctx, remotestore.Query{
		Table:   SubmissionsTable,
		Columns: submissionColumns,
		OrderBy: []string{"created_at DESC"},
	}, func(row remotestore.Row) error {
		var s model.Submission
		var status string
		if err := row.Scan(&s.ID, &s.CreatedAt, &s.Name, &s.Email, &s.Company, &s.InquiryType, &s.Subject, &s.Message, &status); err != nil {
			return err
		}
		s.Status = model.SubmissionStatus(status)
		out = append(out, &s)
		return nil
	})
	if err != nil {
		return nil, opError(ErrFetchFailed, "list submissions", err)
	}
	return out, nil
}

// UpdateStatus sets the status of one submission. Concurrent writers are
// last-write-wins. An unknown id is not an error.
func (r *StoreSubmissionRepository) UpdateStatus(ctx context.Context, id string, status model.SubmissionStatus) error {
	if !status.Valid() {
		return opError(ErrUpdateStatusFailed, "update status", fmt.Errorf("%w: %q", ErrInvalidStatus, status))
	}
	if _, err := r.store.Update(ctx, SubmissionsTable, id, map[string]any{"status": string(status)}); err != nil {
		return opError(ErrUpdateStatusFailed, "update status", err)
	}
	return nil
}

// Delete removes one submission. Deleting an id that is already gone
// succeeds.
func (r *StoreSubmissionRepository) Delete(ctx context.Context, id string) error {
	if _, err := r.store.Delete(ctx, SubmissionsTable, id); err != nil {
		return opError(ErrDeleteFailed, "delete submission", err)
	}
	return nil
}

// CountUnread counts submissions whose status is new or unset.
func (r *StoreSubmissionRepository) CountUnread(ctx context.Context) (int64, error) {
	n, err := r.store.Count(ctx, SubmissionsTable, unreadFilter)
	if err != nil {
		return 0, opError(ErrFetchFailed, "count unread", err)
	}
	return n, nil
}

// Create inserts s and fills in its ID. Status defaults to new.
func (r *StoreSubmissionRepository) Create(ctx context.Context, s *model.Submission) error {
	if s.Status == "" {
		s.Status = model.StatusNew
	}
	id, err := r.store.Insert(ctx, SubmissionsTable, map[string]any{
		"created_at":   s.CreatedAt,
		"name":         s.Name,
		"email":        s.Email,
		"company":      s.Company,
		"inquiry_type": s.InquiryType,
		"subject":      s.Subject,
		"message":      s.Message,
		"status":       string(s.Status),
	})
	if err != nil {
		return fmt.Errorf("create submission: %w", err)
	}
	s.ID = id
	return nil
}

// Subscribe registers fn for changes to the submissions table.
func (r *StoreSubmissionRepository) Subscribe(ctx context.Context, mask changefeed.Mask, fn changefeed.Handler) (changefeed.Subscription, error) {
	return r.store.SubscribeToChanges(ctx, SubmissionsTable, mask, fn)
}

// Unsubscribe releases a subscription returned by Subscribe.
func (r *StoreSubmissionRepository) Unsubscribe(sub changefeed.Subscription) {
	r.store.Unsubscribe(sub)
}
