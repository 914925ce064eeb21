// Package collyfetcher implements domain.Fetcher using gocolly.
package collyfetcher

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/gocolly/colly/v2"
	"go.uber.org/zap"

	"github.com/cwygoda/jobtrack/internal/domain"
)

const defaultTimeout = 10 * time.Second

// Config controls collector behavior.
type Config struct {
	UserAgent     string
	RespectRobots bool
	Timeout       time.Duration
}

// Fetcher retrieves a single page per call with a Colly collector.
type Fetcher struct {
	cfg           Config
	baseCollector *colly.Collector
	log           *zap.Logger
}

type collectorHooks interface {
	OnResponse(colly.ResponseCallback)
	OnError(colly.ErrorCallback)
}

// New builds a Fetcher.
func New(cfg Config, log *zap.Logger) *Fetcher {
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}
	if log == nil {
		log = zap.NewNop()
	}

	// Status handling happens in Fetch so every non-2xx code is reported.
	c := colly.NewCollector(
		colly.Async(false),
		colly.AllowURLRevisit(),
		colly.DetectCharset(),
		colly.ParseHTTPErrorResponse(),
	)
	c.WithTransport(newHTTPTransport())
	c.SetRequestTimeout(cfg.Timeout)
	c.IgnoreRobotsTxt = !cfg.RespectRobots
	if cfg.UserAgent != "" {
		c.UserAgent = cfg.UserAgent
	}

	return &Fetcher{
		cfg:           cfg,
		baseCollector: c,
		log:           log,
	}
}

// Fetch performs one GET of rawURL. Transport failures, timeouts and non-2xx
// statuses are returned as *domain.FetchError.
func (f *Fetcher) Fetch(ctx context.Context, rawURL string) (*domain.Page, error) {
	ctx, cancel := context.WithTimeout(ctx, f.cfg.Timeout)
	defer cancel()

	var (
		page     domain.Page
		fetchErr error
	)
	start := time.Now()
	collector := f.buildCollector(ctx, &page, &fetchErr)

	if err := f.runCollector(ctx, collector, rawURL, &fetchErr); err != nil {
		f.log.Debug("fetch failed",
			zap.String("url", rawURL),
			zap.Int("status_code", page.StatusCode),
			zap.Duration("elapsed", time.Since(start)),
			zap.Error(err),
		)
		return nil, &domain.FetchError{URL: rawURL, StatusCode: page.StatusCode, Err: err}
	}

	if page.StatusCode < 200 || page.StatusCode > 299 {
		return nil, &domain.FetchError{
			URL:        rawURL,
			StatusCode: page.StatusCode,
			Err:        fmt.Errorf("unexpected status %s", http.StatusText(page.StatusCode)),
		}
	}

	f.log.Debug("fetched",
		zap.String("url", rawURL),
		zap.String("final_url", page.URL),
		zap.Int("status_code", page.StatusCode),
		zap.Int("bytes", len(page.Body)),
		zap.Duration("elapsed", time.Since(start)),
	)
	return &page, nil
}

func (f *Fetcher) buildCollector(ctx context.Context, page *domain.Page, fetchErr *error) *colly.Collector {
	collector := f.baseCollector.Clone()
	collector.Context = ctx
	f.configureCollectorHooks(collector, page, fetchErr)
	return collector
}

func (f *Fetcher) configureCollectorHooks(hooks collectorHooks, page *domain.Page, fetchErr *error) {
	hooks.OnResponse(func(r *colly.Response) {
		*page = domain.Page{
			URL:         r.Request.URL.String(),
			StatusCode:  r.StatusCode,
			ContentType: r.Headers.Get("Content-Type"),
			Body:        append([]byte(nil), r.Body...),
		}
	})

	hooks.OnError(func(r *colly.Response, err error) {
		if r != nil {
			page.StatusCode = r.StatusCode
		}
		*fetchErr = err
	})
}

func (f *Fetcher) runCollector(ctx context.Context, collector *colly.Collector, url string, fetchErr *error) error {
	done := make(chan error, 1)
	go func() {
		done <- collector.Visit(url)
	}()

	select {
	case <-ctx.Done():
		// The request carries ctx, so Visit returns promptly.
		<-done
		return fmt.Errorf("colly fetch canceled: %w", ctx.Err())
	case err := <-done:
		if err != nil {
			return fmt.Errorf("colly visit failed: %w", err)
		}
		if *fetchErr != nil {
			return fmt.Errorf("colly response failed: %w", *fetchErr)
		}
		return nil
	}
}

func newHTTPTransport() *http.Transport {
	return &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout:   10 * time.Second,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		TLSHandshakeTimeout:   15 * time.Second,
		ExpectContinueTimeout: 1 * time.Second,
		MaxIdleConns:          10,
		IdleConnTimeout:       90 * time.Second,
	}
}
