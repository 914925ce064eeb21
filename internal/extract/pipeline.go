package extract

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"go.uber.org/zap"

	"github.com/cwygoda/jobtrack/internal/adapter/platform"
	"github.com/cwygoda/jobtrack/internal/domain"
	"github.com/cwygoda/jobtrack/internal/metrics"
)

// Pipeline fetches a posting and runs the extraction stages over it.
type Pipeline struct {
	fetcher   domain.Fetcher
	platforms *platform.Registry
	metrics   *metrics.Metrics
	log       *zap.Logger
}

// NewPipeline creates a pipeline. platforms and m may be nil.
func NewPipeline(fetcher domain.Fetcher, platforms *platform.Registry, m *metrics.Metrics, log *zap.Logger) *Pipeline {
	if platforms == nil {
		platforms = platform.NewRegistry()
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Pipeline{
		fetcher:   fetcher,
		platforms: platforms,
		metrics:   m,
		log:       log,
	}
}

// Run fetches rawURL and extracts a job from it. A failed fetch returns a
// *domain.FetchError; every other shortfall is reported through the outcome.
func (p *Pipeline) Run(ctx context.Context, rawURL string) (*domain.Extraction, error) {
	rawURL = strings.TrimSpace(rawURL)
	log := p.log.With(zap.String("url", rawURL))

	start := time.Now()
	page, err := p.fetcher.Fetch(ctx, rawURL)
	p.metrics.ObserveFetch(time.Since(start), err)
	if err != nil {
		var fe *domain.FetchError
		if !errors.As(err, &fe) {
			err = &domain.FetchError{URL: rawURL, Err: err}
		}
		log.Warn("fetch failed", zap.Error(err))
		return nil, err
	}

	job, outcome := Extract(page.Body)
	job.URL = rawURL

	finalURL := page.URL
	if finalURL == "" {
		finalURL = rawURL
	}
	job.Source = p.platforms.Source(finalURL)

	p.metrics.ObserveExtraction(outcome)
	log.Debug("extracted",
		zap.String("outcome", string(outcome)),
		zap.String("source", job.Source),
		zap.String("title", job.Title),
		zap.Int("status_code", page.StatusCode),
		zap.Duration("elapsed", time.Since(start)),
	)

	return &domain.Extraction{Job: job, Outcome: outcome}, nil
}

// Extract runs the structured and fallback stages over an HTML body and
// fills inferable fields. It sets neither URL nor Source.
func Extract(body []byte) (domain.Job, domain.Outcome) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return domain.Job{}, domain.OutcomeEmpty
	}

	job, _ := Structured(doc)
	outcome := domain.OutcomeStructured
	if job.Title == "" {
		job = Fallback(doc, job)
		outcome = domain.OutcomeFallback
		if isEmpty(job) {
			outcome = domain.OutcomeEmpty
		}
	}

	fill(&job.ExperienceLevel, InferExperienceLevel(job.Title))
	fill(&job.JobType, InferJobType(job.Title))
	job.PostedDate = NormalizeDate(job.PostedDate)
	job.Deadline = NormalizeDate(job.Deadline)
	return job, outcome
}

func isEmpty(j domain.Job) bool {
	return j.Title == "" && j.Company == "" && j.Location == "" && j.Salary == "" &&
		j.PostedDate == "" && j.Deadline == "" && j.JobType == "" && j.ExperienceLevel == ""
}
