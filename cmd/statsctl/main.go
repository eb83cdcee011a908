// Package main provides an operator CLI over the grid statistics store.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/vytor/mathdoku/internal/config"
	"github.com/vytor/mathdoku/internal/db"
	"github.com/vytor/mathdoku/internal/logger"
	"github.com/vytor/mathdoku/internal/models"
	"github.com/vytor/mathdoku/internal/repository/sqlite"
	"github.com/vytor/mathdoku/internal/services"
)

var (
	dbPath   string
	logLevel string

	reportMin  int
	reportMax  int
	reportJSON bool

	historicSeries string
)

func main() {
	rootCmd := newRootCmd()
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	cfg := config.Load()

	rootCmd := &cobra.Command{
		Use:           "statsctl",
		Short:         "Inspect and maintain MathDoku grid statistics",
		SilenceUsage:  true,
		SilenceErrors: false,
	}

	rootCmd.PersistentFlags().StringVar(&dbPath, "db", cfg.DBPath, "database path (default: DB_PATH)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "WARN", "log level")

	rootCmd.AddCommand(newCumulativeCmd(cfg))
	rootCmd.AddCommand(newHistoricCmd(cfg))
	rootCmd.AddCommand(newIncludeCmd())

	return rootCmd
}

func addRangeFlags(cmd *cobra.Command, cfg config.Config) {
	cmd.Flags().IntVar(&reportMin, "min", cfg.StatsMinGridSize, "smallest grid size to report on")
	cmd.Flags().IntVar(&reportMax, "max", cfg.StatsMaxGridSize, "largest grid size to report on")
	cmd.Flags().BoolVar(&reportJSON, "json", false, "print JSON instead of a table")
}

func newCumulativeCmd(cfg config.Config) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cumulative",
		Short: "Print aggregated statistics of the included attempts",
		Args:  cobra.NoArgs,
		RunE:  runCumulativeCmd,
	}
	addRangeFlags(cmd, cfg)
	return cmd
}

func newHistoricCmd(cfg config.Config) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "historic",
		Short: "Print one row per included attempt",
		Args:  cobra.NoArgs,
		RunE:  runHistoricCmd,
	}
	addRangeFlags(cmd, cfg)
	cmd.Flags().StringVar(&historicSeries, "series", "", "only print rows of this series (UNFINISHED, SOLUTION_REVEALED, SOLVED)")
	return cmd
}

func newIncludeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "include GRID_ID STATISTICS_ID",
		Short: "Make STATISTICS_ID the attempt of GRID_ID that counts in reports",
		Args:  cobra.ExactArgs(2),
		RunE:  runIncludeCmd,
	}
}

// withService opens the store, runs fn and closes the store again.
func withService(cmd *cobra.Command, fn func(context.Context, services.StatisticsService) error) error {
	level, ok := logger.LookupLevel(logLevel)
	if !ok {
		return fmt.Errorf("invalid log level %q", logLevel)
	}
	log := logger.New(logger.WithLevel(level), logger.WithOutput(cmd.ErrOrStderr()), logger.WithColors(false))
	logger.SetDefault(log)

	database, err := db.Open(dbPath)
	if err != nil {
		return fmt.Errorf("failed to open db: %w", err)
	}
	defer func() {
		if cerr := database.Close(); cerr != nil {
			log.Error("failed to close db: %v", cerr)
		}
	}()

	svc := services.NewStatisticsService(
		sqlite.NewStatisticsRepository(database.DB),
		sqlite.NewSolvingAttemptRepository(database.DB),
	)
	ctx := logger.NewContext(cmd.Context(), log)
	return fn(ctx, svc)
}

func runCumulativeCmd(cmd *cobra.Command, _ []string) error {
	return withService(cmd, func(ctx context.Context, svc services.StatisticsService) error {
		stats, err := svc.GetCumulativeStatistics(ctx, reportMin, reportMax)
		if err != nil {
			return err
		}
		if reportJSON {
			return writeJSON(cmd.OutOrStdout(), stats)
		}
		return writeCumulative(cmd.OutOrStdout(), stats)
	})
}

func runHistoricCmd(cmd *cobra.Command, _ []string) error {
	var series models.Series
	if historicSeries != "" {
		s, err := models.ParseSeries(historicSeries)
		if err != nil {
			return err
		}
		series = s
	}

	return withService(cmd, func(ctx context.Context, svc services.StatisticsService) error {
		stats, err := svc.GetHistoricStatistics(ctx, reportMin, reportMax)
		if err != nil {
			return err
		}

		rows := stats.All()
		if series != "" {
			rows = stats.Series(series)
		}
		if reportJSON {
			var out []models.HistoricRow
			for row := range rows {
				out = append(out, row)
			}
			if out == nil {
				out = []models.HistoricRow{}
			}
			return writeJSON(cmd.OutOrStdout(), out)
		}

		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tGRID\tSIZE\tSERIES\tPLAYED_MS\tPENALTY_MS")
		for row := range rows {
			fmt.Fprintf(w, "%d\t%d\t%d\t%s\t%d\t%d\n", row.StatisticsID, row.GridID, row.GridSize,
				row.Series, row.ElapsedTimeExcludingCheatPenalty, row.CheatPenaltyTime)
		}
		return w.Flush()
	})
}

func runIncludeCmd(cmd *cobra.Command, args []string) error {
	gridID, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		return fmt.Errorf("invalid grid id %q", args[0])
	}
	statisticsID, err := strconv.ParseInt(args[1], 10, 64)
	if err != nil {
		return fmt.Errorf("invalid statistics id %q", args[1])
	}

	return withService(cmd, func(ctx context.Context, svc services.StatisticsService) error {
		if err := svc.SetIncludedAttempt(ctx, gridID, statisticsID); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "grid %d now counts attempt %d\n", gridID, statisticsID)
		return nil
	})
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func writeCumulative(out io.Writer, c *models.CumulativeStatistics) error {
	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintf(w, "grid sizes\t%d-%d\n", c.MinGridSize, c.MaxGridSize)
	fmt.Fprintf(w, "first move\t%s\n", c.MinFirstMove.Format("2006-01-02 15:04:05"))
	fmt.Fprintf(w, "last move\t%s\n", c.MaxLastMove.Format("2006-01-02 15:04:05"))
	fmt.Fprintf(w, "started\t%d\n", c.CountStarted)
	fmt.Fprintf(w, "finished\t%d\n", c.CountFinished)
	fmt.Fprintf(w, "unfinished\t%d\n", c.CountUnfinished())
	fmt.Fprintf(w, "solved manually\t%d\n", c.CountSolvedManually)
	fmt.Fprintf(w, "solution revealed\t%d\n", c.CountSolutionRevealed)
	fmt.Fprintf(w, "elapsed ms (sum/min/avg/max)\t%d/%d/%.1f/%d\n",
		c.SumElapsedTime, c.MinElapsedTime, c.AvgElapsedTime, c.MaxElapsedTime)
	fmt.Fprintf(w, "cheat penalty ms (sum/min/avg/max)\t%d/%d/%.1f/%d\n",
		c.SumCheatPenaltyTime, c.MinCheatPenaltyTime, c.AvgCheatPenaltyTime, c.MaxCheatPenaltyTime)
	fmt.Fprintf(w, "undos\t%d\n", c.SumActionUndos)
	fmt.Fprintf(w, "possibles\t%d\n", c.SumPossibles)
	fmt.Fprintf(w, "cells revealed\t%d\n", c.SumActionRevealCell)
	fmt.Fprintf(w, "operators revealed\t%d\n", c.SumActionRevealOperator)
	fmt.Fprintf(w, "progress checks\t%d (%d invalid cells)\n", c.SumActionCheckProgress, c.SumCheckProgressInvalidCellsFound)
	return w.Flush()
}
