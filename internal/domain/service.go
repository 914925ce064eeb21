package domain

import (
	"context"
	"fmt"
	"net/url"
	"strings"
)

// JobService orchestrates job operations.
type JobService struct {
	repo      JobRepository
	extractor Extractor
}

// NewJobService creates a new JobService.
func NewJobService(repo JobRepository, extractor Extractor) *JobService {
	return &JobService{repo: repo, extractor: extractor}
}

// ValidateURL reports whether rawURL is an absolute http(s) URL.
func ValidateURL(rawURL string) error {
	u, err := url.ParseRequestURI(rawURL)
	if err != nil || u.Host == "" {
		return ErrInvalidURL
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return ErrInvalidURL
	}
	return nil
}

// Submit extracts the posting at rawURL and stores it. Re-submitting a
// tracked URL leaves the stored row untouched and returns it with
// Inserted == false.
func (s *JobService) Submit(ctx context.Context, rawURL, notes string) (*SubmitResult, error) {
	rawURL = strings.TrimSpace(rawURL)
	if err := ValidateURL(rawURL); err != nil {
		return nil, err
	}

	ext, err := s.extractor.Run(ctx, rawURL)
	if err != nil {
		return nil, err
	}

	job := ext.Job
	job.URL = rawURL
	job.Notes = notes
	job.Status = ""
	job.Sanitize()

	inserted, err := s.repo.Put(ctx, &job)
	if err != nil {
		return nil, fmt.Errorf("store job: %w", err)
	}
	if !inserted {
		existing, err := s.repo.GetByURL(ctx, job.URL)
		if err != nil {
			return nil, fmt.Errorf("load duplicate: %w", err)
		}
		return &SubmitResult{Job: existing, Inserted: false, Outcome: ext.Outcome}, nil
	}
	return &SubmitResult{Job: &job, Inserted: true, Outcome: ext.Outcome}, nil
}

// Get retrieves a job by ID.
func (s *JobService) Get(ctx context.Context, id int64) (*Job, error) {
	return s.repo.Get(ctx, id)
}

// List returns the jobs matching filter.
func (s *JobService) List(ctx context.Context, filter Filter) ([]Job, error) {
	return s.repo.List(ctx, filter)
}

// Count returns the number of stored jobs.
func (s *JobService) Count(ctx context.Context) (int64, error) {
	return s.repo.Count(ctx)
}

// SetStatus moves a job to the named status.
func (s *JobService) SetStatus(ctx context.Context, id int64, status string) (Status, error) {
	st, err := ParseStatus(status)
	if err != nil {
		return "", err
	}
	return st, s.repo.UpdateStatus(ctx, id, st)
}

// SetNotes replaces a job's notes.
func (s *JobService) SetNotes(ctx context.Context, id int64, notes string) error {
	return s.repo.UpdateNotes(ctx, id, clean(notes, maxNotesLen))
}

// Delete removes a job.
func (s *JobService) Delete(ctx context.Context, id int64) error {
	return s.repo.Delete(ctx, id)
}
