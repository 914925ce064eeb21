package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/cwygoda/jobtrack/internal/domain"
	"github.com/cwygoda/jobtrack/internal/worker"
)

func newAddCmd() *cobra.Command {
	var notes string
	cmd := &cobra.Command{
		Use:   "add URL",
		Short: "Fetch a job posting and start tracking it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := resolveApp(cmd.Context())
			if err != nil {
				return err
			}
			res, err := app.Importer.Submit(cmd.Context(), args[0], notes)
			if err != nil {
				return err
			}
			printSubmit(cmd.OutOrStdout(), res)
			return nil
		},
	}
	cmd.Flags().StringVar(&notes, "notes", "", "notes to store with the job")
	return cmd
}

func printSubmit(w io.Writer, res *domain.SubmitResult) {
	j := res.Job
	if !res.Inserted {
		fmt.Fprintf(w, "Already tracked as #%d: %s\n", j.ID, describe(j))
		return
	}
	fmt.Fprintf(w, "Saved #%d: %s\n", j.ID, describe(j))
	if res.Outcome == domain.OutcomeEmpty {
		fmt.Fprintln(w, "No job details found on the page; only the URL was saved.")
	}
}

func describe(j *domain.Job) string {
	title := j.Title
	if title == "" {
		title = j.URL
	}
	if j.Company != "" {
		return fmt.Sprintf("%s at %s", title, j.Company)
	}
	return title
}

func newImportCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "import FILE",
		Short: "Track every URL listed in FILE, one per line (- for stdin)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := resolveApp(cmd.Context())
			if err != nil {
				return err
			}

			var r io.Reader = cmd.InOrStdin()
			if args[0] != "-" {
				f, err := os.Open(args[0])
				if err != nil {
					return fmt.Errorf("open url list: %w", err)
				}
				defer f.Close()
				r = f
			}

			urls, err := worker.ReadURLs(r)
			if err != nil {
				return err
			}
			summary, err := app.Importer.Run(cmd.Context(), urls)
			fmt.Fprintf(cmd.OutOrStdout(), "Imported %d, %d already tracked, %d failed\n",
				summary.Inserted, summary.Duplicates, summary.Failed)
			return err
		},
	}
}
