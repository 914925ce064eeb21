package extract

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNormalizeDate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   string
		want string
	}{
		{"2026-03-01", "2026-03-01"},
		{" 2026-03-01 ", "2026-03-01"},
		{"2026-03-01T09:00:00Z", "2026-03-01"},
		{"2026-03-01T23:30:00-05:00", "2026-03-01"},
		{"2026-03-01 08:00", "2026-03-01"},
		{"Mar 5, 2026", "2026-03-05"},
		{"March 5, 2026", "2026-03-05"},
		{"5 March 2026", "2026-03-05"},
		{"2026-13-01", ""},
		{"soon", ""},
		{"", ""},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			require.Equal(t, tt.want, NormalizeDate(tt.in))
		})
	}
}

func TestExtractSalary(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   string
		want string
	}{
		{"Pay: $80,000 - $95,000 per year.", "$80,000 - $95,000 per year"},
		{"Compensation $40–50/hr depending on experience", "$40–50/hr"},
		{"Base 120k-150k annually plus equity", "120k-150k annually"},
		{"Salary 130K", "130K"},
		{"€55,000 a year", "€55,000 a year"},
		{"$65.50 per hour", "$65.50 per hour"},
		{"We are a team of 250 people founded in 2009", ""},
		{"", ""},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			require.Equal(t, tt.want, ExtractSalary(tt.in))
		})
	}
}

func TestInferJobType(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   string
		want string
	}{
		{"Full-time Software Engineer", "Full-time"},
		{"Fulltime role", "Full-time"},
		{"Part time barista", "Part-time"},
		{"Contract DevOps Engineer", "Contract"},
		{"Summer Intern", "Internship"},
		{"Temporary warehouse help", "Temporary"},
		{"Internal Tools Engineer", ""},
		{"Software Engineer", ""},
		{"", ""},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			require.Equal(t, tt.want, InferJobType(tt.in))
		})
	}
}

func TestInferExperienceLevel(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   string
		want string
	}{
		{"Software Engineering Intern", "Intern"},
		{"Co-op Student, Firmware", "Intern"},
		{"New Grad Software Engineer", "New Grad"},
		{"Graduate Program - Finance", "New Grad"},
		{"Entry-Level Analyst", "Entry"},
		{"Junior Developer", "Entry"},
		{"Jr. Developer", "Entry"},
		{"Senior Backend Engineer", "Senior+"},
		{"Sr. Data Scientist", "Senior+"},
		{"Staff Engineer", "Senior+"},
		{"Tech Lead, Payments", "Senior+"},
		{"Internal Tools Engineer", ""},
		{"Leadership Coach", ""},
		{"Software Engineer", ""},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			require.Equal(t, tt.want, InferExperienceLevel(tt.in))
		})
	}
}
