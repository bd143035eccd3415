package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/spf13/cobra"
	"trivia-quiz-service/internal/app"
	"trivia-quiz-service/internal/config"
	"trivia-quiz-service/internal/domain"
	pgloader "trivia-quiz-service/internal/infra/postgres"
)

// NewExportCmd dumps a stored quiz set to a JSON file.
func NewExportCmd(configPath *string) *cobra.Command {
	var setName, outPath string
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export a quiz set to a JSON file",
		RunE: func(cmd *cobra.Command, args []string) error {
			return exportSet(cmd.Context(), *configPath, setName, outPath)
		},
	}
	cmd.Flags().StringVar(&setName, "set", "general", "quiz set name")
	cmd.Flags().StringVar(&outPath, "out", "quiz-sets.json", "output file")
	return cmd
}

// NewImportCmd loads quiz sets from a JSON file into Postgres.
func NewImportCmd(configPath *string) *cobra.Command {
	var inPath string
	cmd := &cobra.Command{
		Use:   "import",
		Short: "Import quiz sets from a JSON file",
		RunE: func(cmd *cobra.Command, args []string) error {
			return importSets(cmd.Context(), *configPath, inPath)
		},
	}
	cmd.Flags().StringVar(&inPath, "file", "quiz-sets.json", "input file")
	return cmd
}

func exportSet(ctx context.Context, configPath, setName, outPath string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	if cfg.Postgres.URL == "" {
		return fmt.Errorf("postgres url not configured")
	}

	pool, err := pgxpool.Connect(ctx, cfg.Postgres.URL)
	if err != nil {
		return err
	}
	defer pool.Close()

	set, err := pgloader.NewSetLoader(pool).LoadSet(ctx, setName)
	if err != nil {
		return err
	}

	bank := app.NewBank()
	bank.Replace([]domain.QuizSet{set})
	if err := bank.ExportFile(outPath); err != nil {
		return err
	}
	log.Printf("exported quiz set %q to %s", setName, outPath)
	return nil
}

func importSets(ctx context.Context, configPath, inPath string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	if cfg.Postgres.URL == "" {
		return fmt.Errorf("postgres url not configured")
	}

	// Validate through the bank first so a malformed payload is rejected
	// before anything touches the database.
	bank := app.NewBank()
	if err := bank.ImportFile(inPath); err != nil {
		return err
	}

	pool, err := pgxpool.Connect(ctx, cfg.Postgres.URL)
	if err != nil {
		return err
	}
	defer pool.Close()

	for _, set := range bank.Sets() {
		data, err := json.Marshal(set)
		if err != nil {
			return err
		}
		if _, err := pool.Exec(ctx,
			`INSERT INTO quiz_sets (name, data) VALUES ($1, $2::jsonb)
			 ON CONFLICT (name) DO UPDATE SET data=EXCLUDED.data`,
			set.Name, string(data)); err != nil {
			return fmt.Errorf("upsert quiz set %q: %w", set.Name, err)
		}
		log.Printf("imported quiz set %q (%d questions)", set.Name, len(set.Questions))
	}
	return nil
}
