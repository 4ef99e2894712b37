package cli

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/yannaql/yannaql/internal/database"
	"github.com/yannaql/yannaql/internal/evaluator"
	"github.com/yannaql/yannaql/internal/parser"
	"github.com/yannaql/yannaql/internal/util"
)

type runConfig struct {
	dataDir     string
	inputPath   string
	postgresURL string
}

func newRunCommand() *cobra.Command {
	cfg := &runConfig{}

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Evaluate every query in an input file against the beer dataset",
		Long: `run reads a file of one query per nonempty line, evaluates each against
the fixed five-relation dataset, and prints per query: its 1-based id,
whether it is acyclic, its boolean answer if it has no head variables, and
up to four answer columns otherwise.`,
		Example: `  # Evaluate against the shipped CSVs
  yannaql run --input input.txt --data ./data

  # Evaluate against a live Postgres instance instead
  yannaql run --input input.txt --postgres postgres://localhost/beerdb`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runQueries(cmd.Context(), cfg)
		},
	}

	cmd.Flags().StringVar(&cfg.inputPath, "input", "input.txt", "Path to the query input file")
	cmd.Flags().StringVar(&cfg.dataDir, "data", "data", "Directory holding the relation CSVs")
	cmd.Flags().StringVar(&cfg.postgresURL, "postgres", "", "Postgres connection URL to load tables from instead of CSV")

	return cmd
}

func runQueries(ctx context.Context, cfg *runConfig) error {
	db, err := loadDatabase(ctx, cfg.dataDir, cfg.postgresURL)
	if err != nil {
		return err
	}

	result, err := parser.ParseFile(cfg.inputPath)
	if err != nil {
		return util.WrapError("read "+cfg.inputPath, err)
	}

	for _, parseErr := range result.Errors {
		fmt.Fprintf(os.Stderr, "skipping invalid query: %v\n", parseErr)
	}

	eval := evaluator.New(nil)

	for i, query := range result.Queries {
		res, err := eval.Evaluate(query, db)
		if err != nil {
			return util.WrapError(fmt.Sprintf("evaluate query %d", i+1), err)
		}

		printResult(i+1, query.IsBoolean(), res)
	}

	return nil
}

func printResult(id int, boolean bool, res evaluator.Result) {
	fmt.Printf("%d: acyclic=%t", id, res.Acyclic)

	if boolean {
		answer := false
		if res.Boolean != nil {
			answer = *res.Boolean
		}

		fmt.Printf(" answer=%t\n", answer)

		return
	}

	fmt.Println()

	names := []string{"x", "y", "z", "w"}

	for n := 0; n < res.Answer.NumRows(); n++ {
		row := res.Answer.Row(n)

		cols := make([]string, 0, len(row))

		for c, v := range row {
			label := fmt.Sprintf("col%d", c)
			if c < len(names) {
				label = names[c]
			}

			cols = append(cols, fmt.Sprintf("%s=%s", label, v))
		}

		fmt.Printf("  %s\n", strings.Join(cols, " "))
	}
}

func loadDatabase(ctx context.Context, dataDir, postgresURL string) (*database.Database, error) {
	if postgresURL != "" {
		return database.LoadPostgres(ctx, postgresURL)
	}

	return database.LoadCSV(dataDir)
}
