// Package platform names the job board a posting URL belongs to.
package platform

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"

	"github.com/cwygoda/jobtrack/internal/config"
)

// Unknown is the source recorded when a URL has no usable host.
const Unknown = "unknown"

// Platform matches URLs of one job board.
type Platform struct {
	name    string
	pattern *regexp.Regexp
}

// New creates a platform from config.
func New(pc config.PlatformConfig) (*Platform, error) {
	re, err := regexp.Compile(pc.Pattern)
	if err != nil {
		return nil, fmt.Errorf("invalid pattern %q: %w", pc.Pattern, err)
	}
	return &Platform{name: pc.Name, pattern: re}, nil
}

// Name returns the platform name.
func (p *Platform) Name() string {
	return p.name
}

// Match reports whether rawURL belongs to the platform.
func (p *Platform) Match(rawURL string) bool {
	return p.pattern.MatchString(strings.ToLower(rawURL))
}

var builtins = []config.PlatformConfig{
	{Name: "lever", Pattern: `^https?://([a-z0-9-]+\.)*lever\.co/`},
	{Name: "greenhouse", Pattern: `^https?://([a-z0-9-]+\.)*greenhouse\.io/`},
	{Name: "workday", Pattern: `^https?://([a-z0-9-]+\.)*(myworkdayjobs\.com|workday\.com)/`},
	{Name: "ashby", Pattern: `^https?://([a-z0-9-]+\.)*ashbyhq\.com/`},
	{Name: "smartrecruiters", Pattern: `^https?://([a-z0-9-]+\.)*smartrecruiters\.com/`},
	{Name: "linkedin", Pattern: `^https?://([a-z0-9-]+\.)*linkedin\.com/`},
	{Name: "indeed", Pattern: `^https?://([a-z0-9-]+\.)*indeed\.[a-z.]+/`},
}

// Registry holds known platforms in match order.
type Registry struct {
	platforms []*Platform
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{}
}

// NewDefaultRegistry returns a registry with the configured platforms
// followed by the built-in job boards, so configuration wins on overlap.
func NewDefaultRegistry(extra []config.PlatformConfig) (*Registry, error) {
	r := NewRegistry()
	for _, pc := range append(append([]config.PlatformConfig{}, extra...), builtins...) {
		p, err := New(pc)
		if err != nil {
			return nil, fmt.Errorf("platform %s: %w", pc.Name, err)
		}
		r.Register(p)
	}
	return r, nil
}

// Register adds a platform to the registry.
func (r *Registry) Register(p *Platform) {
	r.platforms = append(r.platforms, p)
}

// Match returns the first platform that matches the URL, or nil.
func (r *Registry) Match(rawURL string) *Platform {
	for _, p := range r.platforms {
		if p.Match(rawURL) {
			return p
		}
	}
	return nil
}

// Source names where rawURL came from: a registered platform, else the
// host without a leading "www.", else Unknown.
func (r *Registry) Source(rawURL string) string {
	if p := r.Match(rawURL); p != nil {
		return p.Name()
	}
	u, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil || u.Hostname() == "" {
		return Unknown
	}
	return strings.TrimPrefix(strings.ToLower(u.Hostname()), "www.")
}
