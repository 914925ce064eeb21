// Package worker runs batches of submissions through the job service.
package worker

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/cwygoda/jobtrack/internal/domain"
	"github.com/cwygoda/jobtrack/internal/metrics"
)

// Summary counts the results of one import run.
type Summary struct {
	RunID      string
	Inserted   int
	Duplicates int
	Failed     int
}

// Importer submits URLs one at a time.
type Importer struct {
	svc     *domain.JobService
	metrics *metrics.Metrics
	log     *zap.Logger
}

// New creates an importer. m may be nil.
func New(svc *domain.JobService, m *metrics.Metrics, log *zap.Logger) *Importer {
	if log == nil {
		log = zap.NewNop()
	}
	return &Importer{svc: svc, metrics: m, log: log}
}

// Submit tracks a single URL, recording the result.
func (w *Importer) Submit(ctx context.Context, rawURL, notes string) (*domain.SubmitResult, error) {
	return w.submit(ctx, w.log, rawURL, notes)
}

// Run submits urls in order, skipping blank lines and # comments. An invalid
// URL or a failed fetch is counted and the batch continues. Any other error,
// such as a storage failure or cancellation, stops the run and is returned
// with the partial summary.
func (w *Importer) Run(ctx context.Context, urls []string) (Summary, error) {
	s := Summary{RunID: uuid.NewString()}
	log := w.log.With(zap.String("run_id", s.RunID))
	log.Info("import started", zap.Int("lines", len(urls)))

	for _, line := range urls {
		if err := ctx.Err(); err != nil {
			log.Warn("import interrupted", zap.Error(err))
			return s, err
		}
		rawURL := strings.TrimSpace(line)
		if rawURL == "" || strings.HasPrefix(rawURL, "#") {
			continue
		}

		res, err := w.submit(ctx, log, rawURL, "")
		switch {
		case err != nil && perURL(err):
			s.Failed++
		case err != nil:
			log.Error("import aborted", zap.Error(err))
			return s, fmt.Errorf("import %s: %w", rawURL, err)
		case res.Inserted:
			s.Inserted++
		default:
			s.Duplicates++
		}
	}

	log.Info("import finished",
		zap.Int("inserted", s.Inserted),
		zap.Int("duplicates", s.Duplicates),
		zap.Int("failed", s.Failed),
	)
	return s, nil
}

func (w *Importer) submit(ctx context.Context, log *zap.Logger, rawURL, notes string) (*domain.SubmitResult, error) {
	log = log.With(zap.String("url", rawURL))

	res, err := w.svc.Submit(ctx, rawURL, notes)
	if err != nil {
		w.metrics.ObserveSubmission(metrics.ResultFailed)
		var fe *domain.FetchError
		switch {
		case errors.As(err, &fe):
			log.Warn("fetch failed", zap.Int("status_code", fe.StatusCode), zap.Error(fe.Err))
		default:
			log.Warn("submit failed", zap.Error(err))
		}
		return nil, err
	}

	if !res.Inserted {
		w.metrics.ObserveSubmission(metrics.ResultDuplicate)
		log.Info("already tracked", zap.Int64("id", res.Job.ID))
		return res, nil
	}

	w.metrics.ObserveSubmission(metrics.ResultInserted)
	log.Info("tracked",
		zap.Int64("id", res.Job.ID),
		zap.String("title", res.Job.Title),
		zap.String("company", res.Job.Company),
		zap.String("outcome", string(res.Outcome)),
	)
	return res, nil
}

// perURL reports whether err concerns only the submitted URL.
func perURL(err error) bool {
	var fe *domain.FetchError
	return errors.As(err, &fe) || errors.Is(err, domain.ErrInvalidURL)
}

// ReadURLs reads one URL per line from r.
func ReadURLs(r io.Reader) ([]string, error) {
	var urls []string
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		urls = append(urls, scanner.Text())
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read urls: %w", err)
	}
	return urls, nil
}
