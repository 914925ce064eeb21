// Package export writes tracked jobs to portable formats.
package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/cwygoda/jobtrack/internal/domain"
)

// WriteCSV writes jobs as CSV with a header row of domain.JobColumns.
// Values are written as stored; absent fields are empty cells.
func WriteCSV(w io.Writer, jobs []domain.Job) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(domain.JobColumns); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for _, j := range jobs {
		if err := cw.Write(record(j)); err != nil {
			return fmt.Errorf("write job %d: %w", j.ID, err)
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("flush csv: %w", err)
	}
	return nil
}

func record(j domain.Job) []string {
	return []string{
		strconv.FormatInt(j.ID, 10),
		j.Source,
		j.URL,
		j.Company,
		j.Title,
		j.Location,
		j.Salary,
		j.PostedDate,
		j.Deadline,
		j.JobType,
		j.ExperienceLevel,
		j.Notes,
		string(j.Status),
		j.CreatedAt,
	}
}
