package domain

import "context"

// JobRepository is the driven port for job persistence.
type JobRepository interface {
	// Put inserts job unless its URL is already stored. A duplicate is
	// reported as inserted == false with a nil error.
	Put(ctx context.Context, job *Job) (inserted bool, err error)
	Get(ctx context.Context, id int64) (*Job, error)
	GetByURL(ctx context.Context, url string) (*Job, error)
	List(ctx context.Context, filter Filter) ([]Job, error)
	Count(ctx context.Context) (int64, error)
	UpdateStatus(ctx context.Context, id int64, status Status) error
	UpdateNotes(ctx context.Context, id int64, notes string) error
	Delete(ctx context.Context, id int64) error
}

// Fetcher is the driven port for retrieving a page.
type Fetcher interface {
	Fetch(ctx context.Context, url string) (*Page, error)
}

// Extractor turns a URL into a job record.
type Extractor interface {
	Run(ctx context.Context, url string) (*Extraction, error)
}
