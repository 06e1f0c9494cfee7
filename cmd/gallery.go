package cmd

import (
	"context"
	"errors"
	"fmt"

	"github.com/aseyam/attendsystem/internal/config"
	"github.com/aseyam/attendsystem/internal/database"
	"github.com/aseyam/attendsystem/internal/database/postgres"
	"github.com/aseyam/attendsystem/internal/embedding"
	"github.com/aseyam/attendsystem/internal/gallery"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"
)

var galleryCmd = &cobra.Command{
	Use:   "gallery",
	Short: "Face gallery management commands",
	Long:  `Commands for managing the enrolled face gallery in PostgreSQL.`,
}

var gallerySyncCmd = &cobra.Command{
	Use:   "sync [encodings.json]",
	Short: "Import an offline-trainer encodings file into the gallery",
	Long: `Import a face encodings file produced by the offline trainer into the
PostgreSQL gallery. The file holds parallel name and embedding arrays, with
names following the "First Last - 20225389" labeling convention.

Existing students are updated in place; the first occurrence wins when a
student id appears more than once in the file.

Examples:
  # Preview what would be imported
  attendsystem gallery sync encodings.json --dry-run

  # Import
  attendsystem gallery sync encodings.json`,
	Args: cobra.ExactArgs(1),
	RunE: runGallerySync,
}

var galleryShowCmd = &cobra.Command{
	Use:   "show",
	Short: "List enrolled students",
	RunE:  runGalleryShow,
}

func init() {
	rootCmd.AddCommand(galleryCmd)
	galleryCmd.AddCommand(gallerySyncCmd)
	galleryCmd.AddCommand(galleryShowCmd)

	gallerySyncCmd.Flags().Bool("dry-run", false, "Parse and validate the file without writing to PostgreSQL")
}

func openStudentRepository(ctx context.Context) (*postgres.StudentRepository, *postgres.Pool, error) {
	cfg := config.Load()
	if cfg.Database.URL == "" {
		return nil, nil, errors.New("DATABASE_URL environment variable is required")
	}

	pool, err := postgres.NewPool(&cfg.Database)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to initialize PostgreSQL: %w", err)
	}
	if err := pool.Migrate(ctx); err != nil {
		pool.Close()
		return nil, nil, fmt.Errorf("running migrations: %w", err)
	}
	return postgres.NewStudentRepository(pool), pool, nil
}

func runGallerySync(cmd *cobra.Command, args []string) error {
	dryRun := mustGetBool(cmd, "dry-run")

	cfg := config.Load()
	entries, err := gallery.LoadEncodingsFile(args[0])
	if err != nil {
		return fmt.Errorf("loading encodings file: %w", err)
	}
	fmt.Printf("Parsed %d students from %s\n", len(entries), args[0])

	for _, e := range entries {
		if len(e.Embedding) != cfg.Extractor.Dim {
			return fmt.Errorf("student %s: %d-dim embedding, expected %d",
				e.StudentID, len(e.Embedding), cfg.Extractor.Dim)
		}
	}

	if dryRun {
		for _, e := range entries {
			fmt.Printf("  would import %s (%s)\n", e.DisplayName, e.StudentID)
		}
		fmt.Println("\nDry run, nothing written")
		return nil
	}

	ctx := context.Background()
	students, pool, err := openStudentRepository(ctx)
	if err != nil {
		return err
	}
	defer pool.Close()

	bar := progressbar.NewOptions(len(entries),
		progressbar.OptionSetDescription("Importing students"),
		progressbar.OptionShowCount(),
		progressbar.OptionShowIts(),
		progressbar.OptionSetItsString("students"),
		progressbar.OptionShowElapsedTimeOnFinish(),
		progressbar.OptionFullWidth(),
	)

	for _, e := range entries {
		encoding, err := embedding.Normalize(e.Embedding)
		if err != nil {
			return fmt.Errorf("student %s: %w", e.StudentID, err)
		}
		err = students.UpsertStudent(ctx, database.Student{
			ID:          e.StudentID,
			DisplayName: e.DisplayName,
			Encoding:    encoding,
		})
		if err != nil {
			return fmt.Errorf("importing student %s: %w", e.StudentID, err)
		}
		bar.Add(1)
	}
	fmt.Println()

	fmt.Printf("\nImported %d students\n", len(entries))
	return nil
}

func runGalleryShow(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	students, pool, err := openStudentRepository(ctx)
	if err != nil {
		return err
	}
	defer pool.Close()

	entries, err := students.ListStudents(ctx)
	if err != nil {
		return fmt.Errorf("listing students: %w", err)
	}

	for _, e := range entries {
		fmt.Printf("%-12s %s\n", e.StudentID, e.DisplayName)
	}
	fmt.Printf("\nTotal: %d students\n", len(entries))
	return nil
}
