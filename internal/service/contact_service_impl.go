package service

import (
	"context"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/mcnijman/go-emailaddress"

	"github.com/momentumgaming/backend/internal/metrics"
	"github.com/momentumgaming/backend/internal/model"
)

// MaxMessageLength is the longest accepted message, in characters.
const MaxMessageLength = 5000

// SubmissionCreator persists new contact submissions.
type SubmissionCreator interface {
	Create(ctx context.Context, s *model.Submission) error
}

// contactServiceImpl is the production implementation of ContactService.
type contactServiceImpl struct {
	repo    SubmissionCreator
	metrics *metrics.Site
	now     func() time.Time
}

// NewContactService creates a ContactService backed by the given repository.
// m may be nil.
func NewContactService(repo SubmissionCreator, m *metrics.Site) ContactService {
	return &contactServiceImpl{repo: repo, metrics: m, now: time.Now}
}

// Submit validates the input, sets the status to "new" and persists it.
func (s *contactServiceImpl) Submit(ctx context.Context, in model.ContactInput) (*model.Submission, error) {
	sub, err := normalizeContact(in)
	if err != nil {
		s.metrics.ContactSubmitted(false)
		return nil, err
	}
	sub.Status = model.StatusNew
	sub.CreatedAt = s.now().UTC()

	if err := s.repo.Create(ctx, sub); err != nil {
		s.metrics.ContactSubmitted(false)
		return nil, fmt.Errorf("submit contact: %w", err)
	}
	s.metrics.ContactSubmitted(true)
	return sub, nil
}

func normalizeContact(in model.ContactInput) (*model.Submission, error) {
	sub := &model.Submission{
		Name:        strings.TrimSpace(in.Name),
		Email:       strings.TrimSpace(in.Email),
		Company:     strings.TrimSpace(in.Company),
		InquiryType: strings.ToLower(strings.TrimSpace(in.InquiryType)),
		Subject:     strings.TrimSpace(in.Subject),
		Message:     strings.TrimSpace(in.Message),
	}
	switch {
	case sub.Name == "":
		return nil, &ValidationError{Field: "name", Reason: "required"}
	case sub.Email == "":
		return nil, &ValidationError{Field: "email", Reason: "required"}
	case sub.Message == "":
		return nil, &ValidationError{Field: "message", Reason: "required"}
	}
	if _, err := emailaddress.Parse(sub.Email); err != nil {
		return nil, &ValidationError{Field: "email", Reason: "invalid"}
	}
	if utf8.RuneCountInString(sub.Message) > MaxMessageLength {
		return nil, &ValidationError{Field: "message", Reason: "too_long"}
	}
	if sub.InquiryType == "" {
		sub.InquiryType = model.InquiryTournament
	} else if !model.ValidInquiryType(sub.InquiryType) {
		return nil, &ValidationError{Field: "inquiryType", Reason: "invalid"}
	}
	return sub, nil
}
