package main

import (
	"encoding/json"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var ideateJob string

var ideateCmd = &cobra.Command{
	Use:   "ideate",
	Short: "Generate AI use cases from a completed research job",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		env, err := initEnv(ctx)
		if err != nil {
			return err
		}
		defer env.Close()

		cases, err := env.Pipeline.Ideate(ctx, ideateJob)
		if err != nil {
			return err
		}

		zap.L().Info("ideation complete", zap.String("job_id", ideateJob), zap.Int("use_cases", len(cases)))

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(cases)
	},
}

func init() {
	ideateCmd.Flags().StringVar(&ideateJob, "job", "", "research job ID (required)")
	_ = ideateCmd.MarkFlagRequired("job")
	rootCmd.AddCommand(ideateCmd)
}
