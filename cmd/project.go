package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/sells-group/prospect-cli/internal/model"
	"github.com/sells-group/prospect-cli/internal/store"
)

var (
	projectName        string
	projectClient      string
	projectDescription string
	projectContextMode string
	projectListLimit   int
)

var projectCmd = &cobra.Command{
	Use:   "project",
	Short: "Manage research projects",
}

var projectCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Create a new research project",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		mode := model.ContextMode(projectContextMode)
		if mode != model.ContextModeAccumulate && mode != model.ContextModeFresh {
			return eris.Errorf("invalid context mode %q (want accumulate or fresh)", projectContextMode)
		}

		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close()

		if err := st.Migrate(ctx); err != nil {
			return eris.Wrap(err, "migrate store")
		}

		proj, err := st.CreateProject(ctx, store.NewProject{
			Name:        projectName,
			ClientName:  projectClient,
			Description: projectDescription,
			ContextMode: mode,
		})
		if err != nil {
			return err
		}

		fmt.Printf("created project %s (%s)\n", proj.ID, proj.Name)
		return nil
	},
}

var projectListCmd = &cobra.Command{
	Use:   "list",
	Short: "List research projects",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close()

		if err := st.Migrate(ctx); err != nil {
			return eris.Wrap(err, "migrate store")
		}

		projects, err := st.ListProjects(ctx, projectListLimit)
		if err != nil {
			return err
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tNAME\tCLIENT\tMODE\tCREATED")
		for _, p := range projects {
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
				p.ID, p.Name, p.ClientName, p.ContextMode, p.CreatedAt.Format("2006-01-02 15:04"))
		}
		return w.Flush()
	},
}

func init() {
	projectCreateCmd.Flags().StringVar(&projectName, "name", "", "project name (required)")
	projectCreateCmd.Flags().StringVar(&projectClient, "client", "", "client company name (required)")
	projectCreateCmd.Flags().StringVar(&projectDescription, "description", "", "project description")
	projectCreateCmd.Flags().StringVar(&projectContextMode, "context-mode", "accumulate", "context inheritance mode (accumulate or fresh)")
	_ = projectCreateCmd.MarkFlagRequired("name")
	_ = projectCreateCmd.MarkFlagRequired("client")

	projectListCmd.Flags().IntVar(&projectListLimit, "limit", 50, "maximum projects to list")

	projectCmd.AddCommand(projectCreateCmd)
	projectCmd.AddCommand(projectListCmd)
	rootCmd.AddCommand(projectCmd)
}
