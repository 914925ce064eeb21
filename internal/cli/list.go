package cli

import (
	"fmt"
	"io"
	"os"
	"text/tabwriter"
	"unicode/utf8"

	"github.com/spf13/cobra"

	"github.com/cwygoda/jobtrack/internal/domain"
	"github.com/cwygoda/jobtrack/internal/export"
)

type filterFlags struct {
	search   string
	statuses []string
	source   string
	company  string
	jobType  string
	level    string
}

func (f *filterFlags) register(cmd *cobra.Command) {
	flags := cmd.Flags()
	flags.StringVarP(&f.search, "search", "s", "", "substring of company, title or URL")
	flags.StringSliceVar(&f.statuses, "status", nil, "only these statuses (repeatable)")
	flags.StringVar(&f.source, "source", "", "only this source, e.g. greenhouse")
	flags.StringVar(&f.company, "company", "", "only this company")
	flags.StringVar(&f.jobType, "job-type", "", "only this job type")
	flags.StringVar(&f.level, "level", "", "only this experience level")
}

func (f *filterFlags) filter() (domain.Filter, error) {
	filter := domain.Filter{
		Search:          f.search,
		Source:          f.source,
		Company:         f.company,
		JobType:         f.jobType,
		ExperienceLevel: f.level,
	}
	for _, s := range f.statuses {
		st, err := domain.ParseStatus(s)
		if err != nil {
			return domain.Filter{}, err
		}
		filter.Statuses = append(filter.Statuses, st)
	}
	return filter, nil
}

func newListCmd() *cobra.Command {
	var ff filterFlags
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List tracked jobs, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			app, err := resolveApp(cmd.Context())
			if err != nil {
				return err
			}
			filter, err := ff.filter()
			if err != nil {
				return err
			}
			jobs, err := app.Service.List(cmd.Context(), filter)
			if err != nil {
				return err
			}
			return printJobs(cmd.OutOrStdout(), jobs)
		},
	}
	ff.register(cmd)
	return cmd
}

func printJobs(w io.Writer, jobs []domain.Job) error {
	if len(jobs) == 0 {
		_, err := fmt.Fprintln(w, "No jobs found.")
		return err
	}
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tSTATUS\tSOURCE\tCOMPANY\tTITLE\tLOCATION\tSALARY\tPOSTED\tADDED")
	for _, j := range jobs {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
			j.ID, j.Status, j.Source,
			cell(j.Company, 24), cell(j.Title, 48), cell(j.Location, 24),
			cell(j.Salary, 24), cell(j.PostedDate, 10), j.CreatedAt)
	}
	return tw.Flush()
}

// cell renders an optional value for the table, shortened to width runes.
func cell(s string, width int) string {
	if s == "" {
		return "-"
	}
	if utf8.RuneCountInString(s) > width {
		return string([]rune(s)[:width-1]) + "…"
	}
	return s
}

func newExportCmd() *cobra.Command {
	var (
		ff  filterFlags
		out string
	)
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write tracked jobs as CSV",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			app, err := resolveApp(cmd.Context())
			if err != nil {
				return err
			}
			filter, err := ff.filter()
			if err != nil {
				return err
			}
			jobs, err := app.Service.List(cmd.Context(), filter)
			if err != nil {
				return err
			}

			if out == "" || out == "-" {
				return export.WriteCSV(cmd.OutOrStdout(), jobs)
			}
			f, err := os.Create(out)
			if err != nil {
				return fmt.Errorf("create export file: %w", err)
			}
			if err := export.WriteCSV(f, jobs); err != nil {
				f.Close()
				return err
			}
			if err := f.Close(); err != nil {
				return fmt.Errorf("close export file: %w", err)
			}
			fmt.Fprintf(cmd.ErrOrStderr(), "Exported %d jobs to %s\n", len(jobs), out)
			return nil
		},
	}
	ff.register(cmd)
	cmd.Flags().StringVarP(&out, "out", "o", "", "output file (default stdout)")
	return cmd
}
