package service

import (
	"context"

	"github.com/momentumgaming/backend/internal/model"
)

// ContactService defines the business logic for contact form submissions.
type ContactService interface {
	// Submit validates the form and stores it as a new submission.
	Submit(ctx context.Context, in model.ContactInput) (*model.Submission, error)
}
