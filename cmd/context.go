package main

import (
	"encoding/json"
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/sells-group/prospect-cli/internal/model"
)

var (
	contextProject    string
	contextIteration  int
	contextCumulative bool
)

var contextCmd = &cobra.Command{
	Use:   "context",
	Short: "Show the context an iteration inherits from its predecessors",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		env, err := initEnv(ctx)
		if err != nil {
			return err
		}
		defer env.Close()

		proj, err := env.Store.GetProject(ctx, contextProject)
		if err != nil {
			return err
		}

		var iter *model.Iteration
		if contextIteration > 0 {
			iter, err = iterationBySequence(ctx, env.Store, contextProject, contextIteration)
			if err != nil {
				return err
			}
		} else {
			// Preview for the next iteration to be created.
			iters, err := env.Store.ListIterationsBefore(ctx, contextProject, 1<<30)
			if err != nil {
				return err
			}
			iter = &model.Iteration{ProjectID: proj.ID, Sequence: len(iters) + 1}
		}

		var bundle *model.ContextBundle
		if contextCumulative {
			bundle, err = env.Accumulator.CumulativeContext(ctx, proj, iter)
		} else {
			bundle, err = env.Accumulator.BuildContext(ctx, proj, iter)
		}
		if err != nil {
			return err
		}
		if bundle == nil {
			return eris.New("no context available")
		}

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(bundle)
	},
}

func init() {
	contextCmd.Flags().StringVar(&contextProject, "project", "", "project ID (required)")
	contextCmd.Flags().IntVar(&contextIteration, "iteration", 0, "iteration sequence (default: preview the next iteration)")
	contextCmd.Flags().BoolVar(&contextCumulative, "cumulative", false, "merge findings from all completed iterations")
	_ = contextCmd.MarkFlagRequired("project")
	rootCmd.AddCommand(contextCmd)
}
