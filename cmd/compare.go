package main

import (
	"context"
	"encoding/json"
	"os"
	"strconv"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/sells-group/prospect-cli/internal/model"
	"github.com/sells-group/prospect-cli/internal/store"
)

var compareProject string

var compareCmd = &cobra.Command{
	Use:   "compare <sequence-a> <sequence-b>",
	Short: "Compare two iterations of a project",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		seqA, err := strconv.Atoi(args[0])
		if err != nil {
			return eris.Errorf("invalid sequence number %q", args[0])
		}
		seqB, err := strconv.Atoi(args[1])
		if err != nil {
			return eris.Errorf("invalid sequence number %q", args[1])
		}

		env, err := initEnv(ctx)
		if err != nil {
			return err
		}
		defer env.Close()

		a, err := iterationBySequence(ctx, env.Store, compareProject, seqA)
		if err != nil {
			return err
		}
		b, err := iterationBySequence(ctx, env.Store, compareProject, seqB)
		if err != nil {
			return err
		}

		comparison, err := env.Comparator.Compare(ctx, a, b)
		if err != nil {
			return err
		}

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(comparison)
	},
}

func iterationBySequence(ctx context.Context, st store.Store, projectID string, seq int) (*model.Iteration, error) {
	iters, err := st.ListIterationsBefore(ctx, projectID, seq+1)
	if err != nil {
		return nil, err
	}
	for i := range iters {
		if iters[i].Sequence == seq {
			return &iters[i], nil
		}
	}
	return nil, eris.Errorf("no iteration with sequence %d in project %s", seq, projectID)
}

func init() {
	compareCmd.Flags().StringVar(&compareProject, "project", "", "project ID (required)")
	_ = compareCmd.MarkFlagRequired("project")
	rootCmd.AddCommand(compareCmd)
}
