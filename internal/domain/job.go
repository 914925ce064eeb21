package domain

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

// Status represents where the user is in the application flow for a job.
type Status string

const (
	StatusSaved     Status = "Saved"
	StatusApplied   Status = "Applied"
	StatusInterview Status = "Interview"
	StatusOffer     Status = "Offer"
	StatusRejected  Status = "Rejected"
)

// Statuses lists every known status in flow order.
var Statuses = []Status{StatusSaved, StatusApplied, StatusInterview, StatusOffer, StatusRejected}

// ParseStatus matches s case-insensitively against the known statuses.
func ParseStatus(s string) (Status, error) {
	s = strings.TrimSpace(s)
	for _, st := range Statuses {
		if strings.EqualFold(s, string(st)) {
			return st, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidStatus, s)
}

// Outcome tags which extraction stage produced a record.
type Outcome string

const (
	OutcomeStructured Outcome = "structured"
	OutcomeFallback   Outcome = "fallback"
	OutcomeEmpty      Outcome = "empty"
)

// JobColumns names the stored job fields in table order.
var JobColumns = []string{
	"id", "source", "url", "company", "title", "location", "salary",
	"posted_date", "deadline", "job_type", "experience_level", "notes",
	"status", "created_at",
}

// Job is a tracked job posting. Empty strings mean the field is absent.
type Job struct {
	ID              int64
	Source          string
	URL             string
	Company         string
	Title           string
	Location        string
	Salary          string
	PostedDate      string
	Deadline        string
	JobType         string
	ExperienceLevel string
	Notes           string
	Status          Status
	// CreatedAt is the store's CURRENT_TIMESTAMP text, kept as written.
	CreatedAt string
}

const (
	maxNotesLen = 5000
	maxFieldLen = 500
)

// Sanitize strips control characters, trims whitespace and caps field lengths.
func (j *Job) Sanitize() {
	for _, f := range []*string{
		&j.Source, &j.Company, &j.Title, &j.Location, &j.Salary,
		&j.PostedDate, &j.Deadline, &j.JobType, &j.ExperienceLevel,
	} {
		*f = clean(*f, maxFieldLen)
	}
	j.URL = clean(j.URL, 0)
	j.Notes = clean(j.Notes, maxNotesLen)
}

func clean(s string, limit int) string {
	s = strings.Map(func(r rune) rune {
		if r < 0x20 && r != '\t' && r != '\n' && r != '\r' {
			return -1
		}
		if r == utf8.RuneError {
			return -1
		}
		return r
	}, s)
	s = strings.TrimSpace(s)
	if limit > 0 && utf8.RuneCountInString(s) > limit {
		s = strings.TrimSpace(string([]rune(s)[:limit]))
	}
	return s
}

// Filter narrows a listing. Zero values match everything.
type Filter struct {
	// Search matches a substring of company, title or URL.
	Search          string
	Statuses        []Status
	Source          string
	Company         string
	Title           string
	Location        string
	JobType         string
	ExperienceLevel string
}

// Page is a fetched document.
type Page struct {
	URL         string
	StatusCode  int
	ContentType string
	Body        []byte
}

// Extraction is the pipeline's result for one submission.
type Extraction struct {
	Job     Job
	Outcome Outcome
}

// SubmitResult reports what happened to a submitted URL.
type SubmitResult struct {
	Job      *Job
	Inserted bool
	Outcome  Outcome
}
