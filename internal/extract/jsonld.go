// Package extract turns fetched job-posting pages into job records.
//
// Extraction runs in two stages. Structured reads the schema.org JobPosting
// block that job boards embed as JSON-LD for search engines. When that yields
// no title, Fallback fills the gaps from the page title and Open Graph tags.
// Neither stage fails: a shape mismatch simply produces fewer fields.
package extract

import (
	"encoding/json"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/cwygoda/jobtrack/internal/domain"
)

// Structured maps the first JSON-LD JobPosting in doc onto a job. The bool
// is false when the page carries no parseable JobPosting.
func Structured(doc *goquery.Document) (domain.Job, bool) {
	posting := findJobPosting(doc)
	if posting == nil {
		return domain.Job{}, false
	}
	return mapJobPosting(posting), true
}

func findJobPosting(doc *goquery.Document) map[string]any {
	var found map[string]any
	doc.Find("script[type]").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		typ, _ := s.Attr("type")
		if !strings.Contains(strings.ToLower(typ), "ld+json") {
			return true
		}
		tree, ok := decodeJSON(s.Text())
		if !ok {
			return true
		}
		found = jobPostingIn(tree)
		return found == nil
	})
	return found
}

func decodeJSON(raw string) (any, bool) {
	dec := json.NewDecoder(strings.NewReader(strings.TrimSpace(raw)))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, false
	}
	return v, true
}

// jobPostingIn searches a top-level object, a top-level array and any
// @graph array for a JobPosting node.
func jobPostingIn(v any) map[string]any {
	var candidates []any
	switch t := v.(type) {
	case []any:
		candidates = t
	case map[string]any:
		candidates = []any{t}
	}
	for _, c := range candidates {
		obj, ok := c.(map[string]any)
		if !ok {
			continue
		}
		if isJobPosting(obj) {
			return obj
		}
		graph, _ := obj["@graph"].([]any)
		for _, g := range graph {
			if node, ok := g.(map[string]any); ok && isJobPosting(node) {
				return node
			}
		}
	}
	return nil
}

func isJobPosting(obj map[string]any) bool {
	switch t := obj["@type"].(type) {
	case string:
		return isJobPostingType(t)
	case []any:
		for _, e := range t {
			if s, ok := e.(string); ok && isJobPostingType(s) {
				return true
			}
		}
	}
	return false
}

// isJobPostingType accepts bare and prefixed forms such as schema:JobPosting.
func isJobPostingType(t string) bool {
	return t == "JobPosting" || strings.HasSuffix(t, ":JobPosting") || strings.HasSuffix(t, "/JobPosting")
}

func mapJobPosting(p map[string]any) domain.Job {
	title := text(p["title"])
	if title == "" {
		title = text(p["name"])
	}
	return domain.Job{
		Title:           title,
		Company:         nameOrText(p["hiringOrganization"]),
		Location:        location(p),
		Salary:          salary(p["baseSalary"]),
		PostedDate:      NormalizeDate(text(p["datePosted"])),
		Deadline:        NormalizeDate(text(p["validThrough"])),
		JobType:         employmentType(p["employmentType"]),
		ExperienceLevel: firstText(p["experienceLevel"], p["experienceRequirements"]),
	}
}

func location(p map[string]any) string {
	loc := p["jobLocation"]
	if list, ok := loc.([]any); ok {
		loc = nil
		if len(list) > 0 {
			loc = list[0]
		}
	}

	if m, ok := loc.(map[string]any); ok {
		if addr, ok := m["address"].(map[string]any); ok {
			parts := nonEmpty(
				text(addr["addressLocality"]),
				text(addr["addressRegion"]),
				nameOrText(addr["addressCountry"]),
			)
			if len(parts) > 0 {
				return strings.Join(parts, ", ")
			}
		}
		if s := firstText(m["address"], m["name"]); s != "" {
			return s
		}
	} else if s := text(loc); s != "" {
		return s
	}

	if strings.EqualFold(text(p["jobLocationType"]), "TELECOMMUTE") {
		return "Remote"
	}
	return ""
}

// salary renders baseSalary as "<currency> <amount> <unit>", amount being a
// single value or a min-max range.
func salary(v any) string {
	pay, ok := v.(map[string]any)
	if !ok {
		return text(v)
	}

	currency := text(pay["currency"])
	unit := text(pay["unitText"])
	var amount string
	switch val := pay["value"].(type) {
	case map[string]any:
		amount = amountText(val)
		if u := text(val["unitText"]); u != "" {
			unit = u
		}
		if currency == "" {
			currency = text(val["currency"])
		}
	default:
		amount = text(val)
	}

	if amount == "" {
		return currency
	}
	return strings.Join(nonEmpty(currency, amount, unit), " ")
}

func amountText(v map[string]any) string {
	if s := text(v["value"]); s != "" {
		return s
	}
	lo, hi := text(v["minValue"]), text(v["maxValue"])
	switch {
	case lo != "" && hi != "" && lo != hi:
		return lo + "-" + hi
	case lo != "":
		return lo
	default:
		return hi
	}
}

var employmentTypes = map[string]string{
	"FULL_TIME":  "Full-time",
	"PART_TIME":  "Part-time",
	"CONTRACTOR": "Contract",
	"CONTRACT":   "Contract",
	"TEMPORARY":  "Temporary",
	"INTERN":     "Internship",
	"INTERNSHIP": "Internship",
	"VOLUNTEER":  "Volunteer",
	"PER_DIEM":   "Per diem",
	"OTHER":      "Other",
}

// employmentType maps schema.org enum values to the labels used by
// InferJobType and passes anything else through.
func employmentType(v any) string {
	var raw []any
	switch t := v.(type) {
	case []any:
		raw = t
	default:
		raw = []any{t}
	}
	var out []string
	for _, r := range raw {
		s := text(r)
		if s == "" {
			continue
		}
		if label, ok := employmentTypes[strings.ToUpper(strings.ReplaceAll(s, "-", "_"))]; ok {
			s = label
		}
		out = append(out, s)
	}
	return strings.Join(out, ", ")
}

// text coerces a JSON-LD value to a string: strings are trimmed and
// otherwise kept as written, numbers too, lists of scalars joined with ", ".
// Objects and booleans yield "".
func text(v any) string {
	switch t := v.(type) {
	case string:
		return strings.TrimSpace(t)
	case json.Number:
		return t.String()
	case []any:
		var parts []string
		for _, e := range t {
			switch e.(type) {
			case string, json.Number:
				if s := text(e); s != "" {
					parts = append(parts, s)
				}
			}
		}
		return strings.Join(parts, ", ")
	default:
		return ""
	}
}

// nameOrText reads the name of an embedded object, or the value itself.
func nameOrText(v any) string {
	if m, ok := v.(map[string]any); ok {
		return text(m["name"])
	}
	return text(v)
}

func firstText(vs ...any) string {
	for _, v := range vs {
		if s := text(v); s != "" {
			return s
		}
	}
	return ""
}

func nonEmpty(vs ...string) []string {
	out := vs[:0:0]
	for _, v := range vs {
		if v != "" {
			out = append(out, v)
		}
	}
	return out
}

func collapseSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
