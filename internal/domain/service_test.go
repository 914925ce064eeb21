package domain

import (
	"context"
	"errors"
	"strings"
	"testing"
)

// mockRepo implements JobRepository for testing.
type mockRepo struct {
	jobs   map[int64]*Job
	nextID int64
	putErr error
}

func newMockRepo() *mockRepo {
	return &mockRepo{jobs: make(map[int64]*Job), nextID: 1}
}

func (m *mockRepo) Put(ctx context.Context, job *Job) (bool, error) {
	if m.putErr != nil {
		return false, m.putErr
	}
	for _, existing := range m.jobs {
		if existing.URL == job.URL {
			return false, nil
		}
	}
	job.ID = m.nextID
	job.Status = StatusSaved
	job.CreatedAt = "2026-01-02 03:04:05"
	stored := *job
	m.jobs[m.nextID] = &stored
	m.nextID++
	return true, nil
}

func (m *mockRepo) Get(ctx context.Context, id int64) (*Job, error) {
	job, ok := m.jobs[id]
	if !ok {
		return nil, ErrJobNotFound
	}
	copy := *job
	return &copy, nil
}

func (m *mockRepo) GetByURL(ctx context.Context, url string) (*Job, error) {
	for _, job := range m.jobs {
		if job.URL == url {
			copy := *job
			return &copy, nil
		}
	}
	return nil, ErrJobNotFound
}

func (m *mockRepo) List(ctx context.Context, filter Filter) ([]Job, error) {
	var result []Job
	for _, job := range m.jobs {
		result = append(result, *job)
	}
	return result, nil
}

func (m *mockRepo) Count(ctx context.Context) (int64, error) {
	return int64(len(m.jobs)), nil
}

func (m *mockRepo) UpdateStatus(ctx context.Context, id int64, status Status) error {
	job, ok := m.jobs[id]
	if !ok {
		return ErrJobNotFound
	}
	job.Status = status
	return nil
}

func (m *mockRepo) UpdateNotes(ctx context.Context, id int64, notes string) error {
	job, ok := m.jobs[id]
	if !ok {
		return ErrJobNotFound
	}
	job.Notes = notes
	return nil
}

func (m *mockRepo) Delete(ctx context.Context, id int64) error {
	if _, ok := m.jobs[id]; !ok {
		return ErrJobNotFound
	}
	delete(m.jobs, id)
	return nil
}

// mockExtractor returns a canned extraction per URL.
type mockExtractor struct {
	results map[string]Extraction
	err     error
	calls   int
}

func (m *mockExtractor) Run(ctx context.Context, url string) (*Extraction, error) {
	m.calls++
	if m.err != nil {
		return nil, m.err
	}
	ext, ok := m.results[url]
	if !ok {
		return &Extraction{Job: Job{URL: url, Source: "example.com"}, Outcome: OutcomeEmpty}, nil
	}
	return &ext, nil
}

func TestJobService_Submit(t *testing.T) {
	tests := []struct {
		name    string
		url     string
		wantErr error
	}{
		{
			name:    "valid URL",
			url:     "https://example.com/jobs/1",
			wantErr: nil,
		},
		{
			name:    "invalid URL",
			url:     "not a url",
			wantErr: ErrInvalidURL,
		},
		{
			name:    "empty URL",
			url:     "",
			wantErr: ErrInvalidURL,
		},
		{
			name:    "unsupported scheme",
			url:     "ftp://example.com/jobs",
			wantErr: ErrInvalidURL,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := newMockRepo()
			svc := NewJobService(repo, &mockExtractor{})

			res, err := svc.Submit(context.Background(), tt.url, "")

			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Submit() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr == nil && res == nil {
				t.Fatal("Submit() returned nil result for valid URL")
			}
			if tt.wantErr == nil && res.Job.URL != tt.url {
				t.Errorf("Submit() job.URL = %q, want %q", res.Job.URL, tt.url)
			}
		})
	}
}

func TestJobService_Submit_Duplicate(t *testing.T) {
	repo := newMockRepo()
	ext := &mockExtractor{results: map[string]Extraction{
		"https://example.com/jobs/1": {
			Job:     Job{Title: "Engineer", Company: "Acme"},
			Outcome: OutcomeStructured,
		},
	}}
	svc := NewJobService(repo, ext)
	ctx := context.Background()

	first, err := svc.Submit(ctx, "https://example.com/jobs/1", "referral")
	if err != nil {
		t.Fatalf("Submit() error = %v", err)
	}
	if !first.Inserted {
		t.Fatal("first Submit() Inserted = false, want true")
	}

	// Same URL, different extraction result
	ext.results["https://example.com/jobs/1"] = Extraction{Job: Job{Title: "Changed"}, Outcome: OutcomeFallback}

	second, err := svc.Submit(ctx, "https://example.com/jobs/1", "other")
	if err != nil {
		t.Fatalf("second Submit() error = %v", err)
	}
	if second.Inserted {
		t.Error("second Submit() Inserted = true, want false")
	}
	if second.Job.ID != first.Job.ID {
		t.Errorf("duplicate job.ID = %d, want %d", second.Job.ID, first.Job.ID)
	}
	if second.Job.Title != "Engineer" || second.Job.Notes != "referral" {
		t.Errorf("duplicate overwrote stored row: %+v", second.Job)
	}
	if n, _ := repo.Count(ctx); n != 1 {
		t.Errorf("Count() = %d, want 1", n)
	}
}

func TestJobService_Submit_FetchError(t *testing.T) {
	repo := newMockRepo()
	fetchErr := &FetchError{URL: "https://example.com/jobs/1", StatusCode: 500, Err: errors.New("Internal Server Error")}
	svc := NewJobService(repo, &mockExtractor{err: fetchErr})

	_, err := svc.Submit(context.Background(), "https://example.com/jobs/1", "")

	var fe *FetchError
	if !errors.As(err, &fe) {
		t.Fatalf("Submit() error = %v, want *FetchError", err)
	}
	if len(repo.jobs) != 0 {
		t.Errorf("repo has %d jobs after fetch failure, want 0", len(repo.jobs))
	}
}

func TestJobService_Submit_StoreError(t *testing.T) {
	repo := newMockRepo()
	repo.putErr = errors.New("disk I/O error")
	svc := NewJobService(repo, &mockExtractor{})

	_, err := svc.Submit(context.Background(), "https://example.com/jobs/1", "")
	if err == nil || !strings.Contains(err.Error(), "disk I/O error") {
		t.Errorf("Submit() error = %v, want wrapped store error", err)
	}
}

func TestJobService_Submit_IgnoresExtractedStatus(t *testing.T) {
	repo := newMockRepo()
	ext := &mockExtractor{results: map[string]Extraction{
		"https://example.com/jobs/1": {Job: Job{Title: "Engineer", Status: StatusOffer, Notes: "scraped"}},
	}}
	svc := NewJobService(repo, ext)

	res, err := svc.Submit(context.Background(), " https://example.com/jobs/1 ", "")
	if err != nil {
		t.Fatalf("Submit() error = %v", err)
	}
	stored, _ := repo.Get(context.Background(), res.Job.ID)
	if stored.Status != StatusSaved {
		t.Errorf("Status = %q, want %q", stored.Status, StatusSaved)
	}
	if stored.Notes != "" {
		t.Errorf("Notes = %q, want empty", stored.Notes)
	}
	if stored.URL != "https://example.com/jobs/1" {
		t.Errorf("URL = %q, want trimmed input", stored.URL)
	}
}

func TestJobService_Get(t *testing.T) {
	repo := newMockRepo()
	svc := NewJobService(repo, &mockExtractor{})
	ctx := context.Background()

	created, _ := svc.Submit(ctx, "https://example.com", "")

	job, err := svc.Get(ctx, created.Job.ID)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if job.ID != created.Job.ID {
		t.Errorf("Get() job.ID = %d, want %d", job.ID, created.Job.ID)
	}

	_, err = svc.Get(ctx, 999)
	if !errors.Is(err, ErrJobNotFound) {
		t.Errorf("Get() error = %v, want %v", err, ErrJobNotFound)
	}
}

func TestJobService_SetStatus(t *testing.T) {
	repo := newMockRepo()
	svc := NewJobService(repo, &mockExtractor{})
	ctx := context.Background()

	created, _ := svc.Submit(ctx, "https://example.com/jobs/1", "")

	st, err := svc.SetStatus(ctx, created.Job.ID, "interview")
	if err != nil {
		t.Fatalf("SetStatus() error = %v", err)
	}
	if st != StatusInterview {
		t.Errorf("SetStatus() = %q, want %q", st, StatusInterview)
	}
	if repo.jobs[created.Job.ID].Status != StatusInterview {
		t.Errorf("stored status = %q, want %q", repo.jobs[created.Job.ID].Status, StatusInterview)
	}

	if _, err := svc.SetStatus(ctx, created.Job.ID, "hired?"); !errors.Is(err, ErrInvalidStatus) {
		t.Errorf("SetStatus() error = %v, want %v", err, ErrInvalidStatus)
	}
	if _, err := svc.SetStatus(ctx, 999, "Applied"); !errors.Is(err, ErrJobNotFound) {
		t.Errorf("SetStatus() error = %v, want %v", err, ErrJobNotFound)
	}
}

func TestJobService_SetNotesAndDelete(t *testing.T) {
	repo := newMockRepo()
	svc := NewJobService(repo, &mockExtractor{})
	ctx := context.Background()

	created, _ := svc.Submit(ctx, "https://example.com/jobs/1", "")

	if err := svc.SetNotes(ctx, created.Job.ID, "  call back friday\x00 "); err != nil {
		t.Fatalf("SetNotes() error = %v", err)
	}
	if got := repo.jobs[created.Job.ID].Notes; got != "call back friday" {
		t.Errorf("Notes = %q, want %q", got, "call back friday")
	}

	if err := svc.Delete(ctx, created.Job.ID); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if err := svc.Delete(ctx, created.Job.ID); !errors.Is(err, ErrJobNotFound) {
		t.Errorf("second Delete() error = %v, want %v", err, ErrJobNotFound)
	}
}
