package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/prospect-cli/internal/store"
)

var (
	iterateProject      string
	iterateName         string
	iterateSalesHistory string
	iteratePrompt       string
)

var iterateCmd = &cobra.Command{
	Use:   "iterate",
	Short: "Create and run the next iteration of a project",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		env, err := initEnv(ctx)
		if err != nil {
			return err
		}
		defer env.Close()

		iter, err := env.Workspace.CreateIteration(ctx, iterateProject, store.NewIteration{
			Name:           iterateName,
			SalesHistory:   iterateSalesHistory,
			PromptOverride: iteratePrompt,
		})
		if err != nil {
			return err
		}

		zap.L().Info("iteration created",
			zap.String("iteration_id", iter.ID),
			zap.Int("sequence", iter.Sequence),
			zap.Bool("inherited_context", iter.InheritedContext != nil),
		)

		iter, state, err := env.Workspace.RunIteration(ctx, iter.ID)
		if err != nil {
			return err
		}

		if state.Failed() {
			zap.L().Error("iteration failed",
				zap.String("iteration_id", iter.ID),
				zap.String("error", state.Error),
			)
			return fmt.Errorf("iteration %d failed: %s", iter.Sequence, state.Error)
		}

		zap.L().Info("iteration complete",
			zap.String("iteration_id", iter.ID),
			zap.Int("sequence", iter.Sequence),
			zap.String("job_id", iter.JobID),
			zap.String("vertical", state.Vertical),
		)

		if state.Report != nil {
			fmt.Println(state.Report.FormatText())
		}
		return nil
	},
}

func init() {
	iterateCmd.Flags().StringVar(&iterateProject, "project", "", "project ID (required)")
	iterateCmd.Flags().StringVar(&iterateName, "name", "", "iteration name")
	iterateCmd.Flags().StringVar(&iterateSalesHistory, "sales-history", "", "prior sales interaction notes")
	iterateCmd.Flags().StringVar(&iteratePrompt, "prompt", "", "replace the deep research prompt entirely")
	_ = iterateCmd.MarkFlagRequired("project")
	rootCmd.AddCommand(iterateCmd)
}
