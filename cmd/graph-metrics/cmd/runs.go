package cmd

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/graph-metrics/internal/repository"
	"github.com/graph-metrics/pkg/config"
	"github.com/graph-metrics/pkg/errors"
)

var (
	runsLimit  int
	nodesLimit int
	nodesSkip  int
)

// runsCmd groups commands that read run bookkeeping.
var runsCmd = &cobra.Command{
	Use:   "runs",
	Short: "Inspect runs recorded in the database",
}

var runsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List recent runs",
	RunE:  runRunsList,
}

var runsShowCmd = &cobra.Command{
	Use:   "show <run-id>",
	Short: "Show one run and a page of its node metrics",
	Args:  cobra.ExactArgs(1),
	RunE:  runRunsShow,
}

func init() {
	rootCmd.AddCommand(runsCmd)
	runsCmd.AddCommand(runsListCmd, runsShowCmd)

	runsListCmd.Flags().IntVarP(&runsLimit, "limit", "n", 20, "Number of runs to list")
	runsShowCmd.Flags().IntVar(&nodesLimit, "nodes", 10, "Number of node metrics to print")
	runsShowCmd.Flags().IntVar(&nodesSkip, "skip", 0, "Node metrics to skip")
}

func openRepositories() (*repository.Repositories, error) {
	var (
		cfg *config.Config
		err error
	)
	if configPath != "" {
		cfg, err = config.Load(configPath)
	} else {
		cfg, err = config.Default()
	}
	if err != nil {
		return nil, err
	}
	if !cfg.Database.Enabled {
		return nil, errors.New(errors.CodeConfigError, "database is not enabled in the configuration")
	}

	db, err := repository.NewGormDB(&repository.DBConfig{
		Type:     cfg.Database.Type,
		Host:     cfg.Database.Host,
		Port:     cfg.Database.Port,
		Database: cfg.Database.Database,
		User:     cfg.Database.User,
		Password: cfg.Database.Password,
		Path:     cfg.Database.Path,
		MaxConns: cfg.Database.MaxConns,
	})
	if err != nil {
		return nil, err
	}
	return repository.NewRepositories(db), nil
}

func runRunsList(cmd *cobra.Command, args []string) error {
	repos, err := openRepositories()
	if err != nil {
		return err
	}
	defer repos.Close()

	runs, err := repos.Run.ListRuns(cmd.Context(), runsLimit)
	if err != nil {
		return err
	}

	tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "RUN\tALGORITHM\tSTATUS\tNODES\tTRIANGLES\tCREATED")
	for _, r := range runs {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t%d\t%s\n",
			r.RunID, r.Algorithm, r.Status, r.NodeCount, r.GlobalTriangleCount, r.CreateTime.Format("2006-01-02 15:04:05"))
	}
	return tw.Flush()
}

func runRunsShow(cmd *cobra.Command, args []string) error {
	repos, err := openRepositories()
	if err != nil {
		return err
	}
	defer repos.Close()

	ctx := cmd.Context()
	run, err := repos.Run.GetRun(ctx, args[0])
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Run:            %s (%s)\n", run.RunID, run.Status)
	if run.StatusInfo != "" {
		fmt.Fprintf(out, "Info:           %s\n", run.StatusInfo)
	}
	fmt.Fprintf(out, "Algorithm:      %s\n", run.Algorithm)
	fmt.Fprintf(out, "Input:          %s\n", run.InputPath)
	fmt.Fprintf(out, "Nodes:          %d\n", run.NodeCount)
	fmt.Fprintf(out, "Triangles:      %d\n", run.GlobalTriangleCount)
	if run.AverageCoefficient != nil {
		fmt.Fprintf(out, "Average LCC:    %.6f\n", *run.AverageCoefficient)
	}
	fmt.Fprintf(out, "Result file:    %s\n", run.ResultFile)

	metrics, err := repos.Metric.GetNodeMetrics(ctx, run.RunID, nodesSkip, nodesLimit)
	if err != nil {
		return err
	}
	if len(metrics) == 0 {
		return nil
	}
	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintf(tw, "\nNODE\tTRIANGLES\t%s\n", run.Algorithm.MetricName())
	for _, m := range metrics {
		fmt.Fprintf(tw, "%d\t%d\t%g\n", m.NodeID, m.Triangles, m.Value)
	}
	return tw.Flush()
}
