package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/prospect-cli/internal/pipeline"
)

var (
	researchClient       string
	researchSalesHistory string
	researchPrompt       string
	researchJSON         bool
)

var researchCmd = &cobra.Command{
	Use:   "research",
	Short: "Run the research pipeline for a single prospect",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		env, err := initEnv(ctx)
		if err != nil {
			return err
		}
		defer env.Close()

		job, err := env.Store.CreateJob(ctx, researchClient, researchSalesHistory, researchPrompt)
		if err != nil {
			return err
		}

		state := env.Pipeline.Run(ctx, pipeline.JobInput{
			ClientName:     researchClient,
			SalesHistory:   researchSalesHistory,
			PromptOverride: researchPrompt,
			JobID:          job.ID,
		})

		if state.Failed() {
			zap.L().Error("research failed",
				zap.String("job_id", job.ID),
				zap.String("client", researchClient),
				zap.String("error", state.Error),
			)
			return fmt.Errorf("research failed: %s", state.Error)
		}

		zap.L().Info("research complete",
			zap.String("job_id", job.ID),
			zap.String("client", researchClient),
			zap.String("vertical", state.Vertical),
			zap.Int("case_studies", len(state.CaseStudies)),
			zap.Int("correlations", len(state.Correlations)),
		)

		if researchJSON {
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(state)
		}

		if state.Report != nil {
			fmt.Println(state.Report.FormatText())
		}
		return nil
	},
}

func init() {
	researchCmd.Flags().StringVar(&researchClient, "client", "", "client company name (required)")
	researchCmd.Flags().StringVar(&researchSalesHistory, "sales-history", "", "prior sales interaction notes")
	researchCmd.Flags().StringVar(&researchPrompt, "prompt", "", "replace the deep research prompt entirely")
	researchCmd.Flags().BoolVar(&researchJSON, "json", false, "print the full workflow state as JSON")
	_ = researchCmd.MarkFlagRequired("client")
	rootCmd.AddCommand(researchCmd)
}
