package extract

import (
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/cwygoda/jobtrack/internal/domain"
)

// titleSuffixes separate a posting title from a trailing company name.
var titleSuffixes = []string{" - ", " | ", " at ", " – ", " — "}

// Fallback recovers fields from page metadata and returns partial with its
// empty fields filled. Non-empty fields of partial are never overwritten.
func Fallback(doc *goquery.Document, partial domain.Job) domain.Job {
	out := partial

	pageTitle := metaContent(doc, "og:title")
	if pageTitle == "" {
		pageTitle = collapseSpace(doc.Find("title").First().Text())
	}
	title, company := splitTitle(pageTitle, metaContent(doc, "og:site_name"))

	desc := metaContent(doc, "description")
	if desc == "" {
		desc = metaContent(doc, "og:description")
	}

	fill(&out.Title, title)
	fill(&out.Company, company)
	fill(&out.Salary, ExtractSalary(desc))
	fill(&out.JobType, InferJobType(desc))
	return out
}

// metaContent reads the content of the first <meta> whose property or name
// attribute equals key.
func metaContent(doc *goquery.Document, key string) string {
	sel := fmt.Sprintf(`meta[property=%q], meta[name=%q]`, key, key)
	var content string
	doc.Find(sel).EachWithBreak(func(_ int, s *goquery.Selection) bool {
		content = collapseSpace(s.AttrOr("content", ""))
		return content == ""
	})
	return content
}

// splitTitle separates a page title into posting title and company. With a
// known site name only a matching suffix is stripped; without one the last
// " - " segment is taken as the company.
func splitTitle(title, site string) (string, string) {
	if site != "" {
		for _, sep := range titleSuffixes {
			suffix := sep + site
			if len(title) > len(suffix) && strings.EqualFold(title[len(title)-len(suffix):], suffix) {
				return strings.TrimSpace(title[:len(title)-len(suffix)]), site
			}
		}
		return title, site
	}
	if i := strings.LastIndex(title, " - "); i > 0 {
		if company := strings.TrimSpace(title[i+3:]); company != "" {
			return strings.TrimSpace(title[:i]), company
		}
	}
	return title, ""
}

func fill(dst *string, v string) {
	if *dst == "" {
		*dst = v
	}
}
