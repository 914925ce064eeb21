package extract

import (
	"regexp"
	"strings"
	"time"
)

var dateLayouts = []string{
	"Jan 2, 2006",
	"January 2, 2006",
	"2 Jan 2006",
	"2 January 2006",
	"Mon, 02 Jan 2006 15:04:05 MST",
}

var isoDatePrefix = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}`)

// NormalizeDate renders a posting date as YYYY-MM-DD. ISO 8601 dates and
// timestamps keep their calendar date as written, ignoring any offset.
// Unparseable input yields "".
func NormalizeDate(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}
	if prefix := isoDatePrefix.FindString(s); prefix != "" {
		if _, err := time.Parse(time.DateOnly, prefix); err == nil {
			return prefix
		}
		return ""
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.Format(time.DateOnly)
		}
	}
	return ""
}

var salaryPattern = regexp.MustCompile(
	`(?i)(?:[$£€]\s?\d{1,3}(?:,\d{3})*(?:\.\d+)?k?(?:\s*(?:-|–|to)\s*[$£€]?\s?\d{1,3}(?:,\d{3})*(?:\.\d+)?k?)?` +
		`|\b\d{2,3}k(?:\s*(?:-|–|to)\s*\d{2,3}k)?\b)` +
		`(?:\s*(?:/\s?(?:yr|year|hr|hour)|per (?:year|hour|annum)|annually|an hour|a year)\b)?`)

// ExtractSalary returns the first pay figure or range mentioned in text.
// Bare numbers without a currency symbol or "k" are ignored.
func ExtractSalary(text string) string {
	return strings.TrimSpace(salaryPattern.FindString(text))
}

type rule struct {
	label   string
	pattern *regexp.Regexp
}

// Order matters: the first matching rule wins.
var jobTypeRules = []rule{
	{"Full-time", regexp.MustCompile(`(?i)\bfull[- ]?time\b`)},
	{"Part-time", regexp.MustCompile(`(?i)\bpart[- ]?time\b`)},
	{"Contract", regexp.MustCompile(`(?i)\bcontract(or)?\b`)},
	{"Internship", regexp.MustCompile(`(?i)\b(interns?|internship)\b`)},
	{"Temporary", regexp.MustCompile(`(?i)\btemporary\b`)},
}

var experienceRules = []rule{
	{"Intern", regexp.MustCompile(`(?i)\b(interns?|internship|co-?op|co op)\b`)},
	{"New Grad", regexp.MustCompile(`(?i)\b(new[- ]grad(uate)?|graduate program)\b`)},
	{"Entry", regexp.MustCompile(`(?i)(\bentry[- ]level\b|\bjunior\b|\bjr\.)`)},
	{"Senior+", regexp.MustCompile(`(?i)(\b(senior|staff|principal|lead)\b|\bsr\.)`)},
}

// InferJobType guesses the employment type from free text.
func InferJobType(text string) string {
	return firstRule(jobTypeRules, text)
}

// InferExperienceLevel guesses the seniority of a posting from its title.
func InferExperienceLevel(title string) string {
	return firstRule(experienceRules, title)
}

func firstRule(rules []rule, text string) string {
	if text == "" {
		return ""
	}
	for _, r := range rules {
		if r.pattern.MatchString(text) {
			return r.label
		}
	}
	return ""
}
