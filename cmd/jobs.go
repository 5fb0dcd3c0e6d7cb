package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/sells-group/prospect-cli/internal/model"
)

var jobsCmd = &cobra.Command{
	Use:   "jobs",
	Short: "Inspect research job history",
	Long:  "Commands for listing and viewing research jobs and their stage payloads.",
}

// -- jobs list --

var jobsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List research jobs",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck
		if err := st.Migrate(ctx); err != nil {
			return err
		}

		status, _ := cmd.Flags().GetString("status")
		client, _ := cmd.Flags().GetString("client")
		limit, _ := cmd.Flags().GetInt("limit")

		jobs, err := st.ListJobs(ctx, model.JobFilter{
			Status:     model.JobStatus(status),
			ClientName: client,
			Limit:      limit,
		})
		if err != nil {
			return eris.Wrap(err, "jobs list")
		}

		if len(jobs) == 0 {
			fmt.Fprintln(os.Stderr, "No jobs found.")
			return nil
		}

		formatJobsList(os.Stdout, jobs)
		return nil
	},
}

// -- jobs show --

var jobsShowCmd = &cobra.Command{
	Use:   "show <job-id>",
	Short: "Show full details of a job including stage payloads",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck
		if err := st.Migrate(ctx); err != nil {
			return err
		}

		jobID := args[0]
		job, err := st.GetJob(ctx, jobID)
		if err != nil {
			return eris.Wrap(err, "jobs show")
		}

		report, err := st.GetReport(ctx, jobID)
		if err != nil {
			return err
		}
		gaps, err := st.GetGapAnalysis(ctx, jobID)
		if err != nil {
			return err
		}
		ops, err := st.GetInternalOps(ctx, jobID)
		if err != nil {
			return err
		}
		studies, err := st.ListCaseStudies(ctx, jobID)
		if err != nil {
			return err
		}
		correlations, err := st.ListCorrelations(ctx, jobID)
		if err != nil {
			return err
		}

		out := struct {
			Job          *model.ResearchJob          `json:"job"`
			Report       *model.ResearchReport       `json:"report,omitempty"`
			GapAnalysis  *model.GapAnalysis          `json:"gap_analysis,omitempty"`
			InternalOps  *model.InternalOpsIntel     `json:"internal_ops,omitempty"`
			CaseStudies  []model.CompetitorCaseStudy `json:"case_studies,omitempty"`
			Correlations []model.GapCorrelation      `json:"correlations,omitempty"`
		}{job, report, gaps, ops, studies, correlations}

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(out)
	},
}

func init() {
	jobsListCmd.Flags().String("status", "", "filter by job status (pending, researching, completed, failed, ...)")
	jobsListCmd.Flags().String("client", "", "filter by client name")
	jobsListCmd.Flags().Int("limit", 50, "max number of jobs to display")

	jobsCmd.AddCommand(jobsListCmd)
	jobsCmd.AddCommand(jobsShowCmd)
	rootCmd.AddCommand(jobsCmd)
}

// formatJobsList writes a tabular list of jobs to w.
func formatJobsList(out io.Writer, jobs []model.ResearchJob) {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "ID\tCLIENT\tSTATUS\tVERTICAL\tCREATED")
	_, _ = fmt.Fprintln(w, "--\t------\t------\t--------\t-------")

	for _, j := range jobs {
		client := j.ClientName
		if len(client) > 30 {
			client = client[:27] + "..."
		}

		_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
			truncateID(j.ID),
			client,
			j.Status,
			j.Vertical,
			j.CreatedAt.Format("2006-01-02 15:04"),
		)
	}
	_ = w.Flush()
}

// truncateID shortens a UUID for display.
func truncateID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
