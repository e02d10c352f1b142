package model

import (
	"strings"
	"time"
)

// SubmissionStatus is the review state of a contact submission.
// Any status may move to any other.
type SubmissionStatus string

const (
	StatusNew     SubmissionStatus = "new"
	StatusRead    SubmissionStatus = "read"
	StatusReplied SubmissionStatus = "replied"
)

// Valid reports whether s is one of the known statuses.
func (s SubmissionStatus) Valid() bool {
	switch s {
	case StatusNew, StatusRead, StatusReplied:
		return true
	}
	return false
}

// Inquiry types offered by the contact form.
const (
	InquiryTournament = "tournament"
	InquiryBroadcast  = "broadcast"
	InquiryBrand      = "brand"
	InquiryOther      = "other"
)

// ValidInquiryType reports whether t is an inquiry type the form offers.
func ValidInquiryType(t string) bool {
	switch t {
	case InquiryTournament, InquiryBroadcast, InquiryBrand, InquiryOther:
		return true
	}
	return false
}

// Submission is a message sent through the public contact form.
type Submission struct {
	ID          string           `json:"id"`
	CreatedAt   time.Time        `json:"created_at"`
	Name        string           `json:"name"`
	Email       string           `json:"email"`
	Company     string           `json:"company,omitempty"`
	InquiryType string           `json:"inquiry_type,omitempty"`
	Subject     string           `json:"subject,omitempty"`
	Message     string           `json:"message"`
	Status      SubmissionStatus `json:"status"`
}

// Matches reports whether the case-insensitive term occurs in the name,
// email or subject. An empty term matches everything.
func (s *Submission) Matches(term string) bool {
	term = strings.ToLower(strings.TrimSpace(term))
	if term == "" {
		return true
	}
	return strings.Contains(strings.ToLower(s.Name), term) ||
		strings.Contains(strings.ToLower(s.Email), term) ||
		strings.Contains(strings.ToLower(s.Subject), term)
}

// ContactInput is the payload of the public contact form.
type ContactInput struct {
	Name        string `json:"name"`
	Email       string `json:"email"`
	Company     string `json:"company"`
	InquiryType string `json:"inquiryType"`
	Subject     string `json:"subject"`
	Message     string `json:"message"`
}
