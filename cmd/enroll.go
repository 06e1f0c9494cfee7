package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/aseyam/attendsystem/internal/config"
	"github.com/aseyam/attendsystem/internal/database"
	"github.com/aseyam/attendsystem/internal/database/postgres"
	"github.com/aseyam/attendsystem/internal/embedding"
	"github.com/aseyam/attendsystem/internal/gallery"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"
)

var enrollCmd = &cobra.Command{
	Use:   "enroll [image]",
	Short: "Enroll students into the face gallery",
	Long: `Enroll students into the face gallery from reference photos.

A single photo is enrolled with explicit --id and --name flags. With --dir,
every image in the directory is enrolled and the student is read from the
filename, which must follow the "First Last - 20225389.jpg" convention.

Each photo must contain exactly one face. Photos with no face or with
multiple faces are rejected.

Examples:
  # Enroll one student
  attendsystem enroll photo.jpg --id 20225389 --name "Abdulrahman Seyam"

  # Enroll a directory of labeled reference photos
  attendsystem enroll --dir ./reference-photos`,
	RunE: runEnroll,
}

func init() {
	rootCmd.AddCommand(enrollCmd)

	enrollCmd.Flags().String("id", "", "Student id for single-photo enrollment")
	enrollCmd.Flags().String("name", "", "Student display name for single-photo enrollment")
	enrollCmd.Flags().String("dir", "", "Directory of labeled reference photos")
	enrollCmd.Flags().Int("concurrency", 4, "Number of photos to process in parallel")
}

var imageExtensions = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
}

func runEnroll(cmd *cobra.Command, args []string) error {
	dir := mustGetString(cmd, "dir")
	if dir == "" && len(args) != 1 {
		return errors.New("provide an image path or --dir")
	}

	cfg := config.Load()
	if cfg.Database.URL == "" {
		return errors.New("DATABASE_URL environment variable is required")
	}

	pool, err := postgres.NewPool(&cfg.Database)
	if err != nil {
		return fmt.Errorf("failed to initialize PostgreSQL: %w", err)
	}
	defer pool.Close()

	ctx := context.Background()
	if err := pool.Migrate(ctx); err != nil {
		return fmt.Errorf("running migrations: %w", err)
	}

	students := postgres.NewStudentRepository(pool)
	extractor := embedding.NewExtractor(cfg.Extractor.URL)

	if dir != "" {
		concurrency := mustGetInt(cmd, "concurrency")
		return enrollDirectory(ctx, dir, concurrency, cfg.Extractor.Dim, extractor, students)
	}

	studentID := mustGetString(cmd, "id")
	name := mustGetString(cmd, "name")
	if studentID == "" || name == "" {
		return errors.New("--id and --name are required for single-photo enrollment")
	}

	if err := enrollOne(ctx, args[0], studentID, name, cfg.Extractor.Dim, extractor, students); err != nil {
		return err
	}
	fmt.Printf("Enrolled %s (%s)\n", gallery.NormalizeDisplayName(name), studentID)
	return nil
}

// enrollOne extracts the single-face embedding from a photo and upserts the
// student record with a unit-normalized encoding.
func enrollOne(
	ctx context.Context, path, studentID, name string, dim int,
	extractor *embedding.Extractor, students *postgres.StudentRepository,
) error {
	imageData, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading %s: %w", path, err)
	}

	vec, err := extractor.ExtractSingle(ctx, imageData)
	if err != nil {
		return fmt.Errorf("extracting face from %s: %w", path, err)
	}
	if len(vec) != dim {
		return fmt.Errorf("%s: extractor returned %d-dim embedding, expected %d", path, len(vec), dim)
	}
	encoding, err := embedding.Normalize(vec)
	if err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}

	return students.UpsertStudent(ctx, database.Student{
		ID:          studentID,
		DisplayName: gallery.NormalizeDisplayName(name),
		Encoding:    encoding,
	})
}

func enrollDirectory(
	ctx context.Context, dir string, concurrency, dim int,
	extractor *embedding.Extractor, students *postgres.StudentRepository,
) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return fmt.Errorf("reading directory %s: %w", dir, err)
	}

	var photos []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if imageExtensions[strings.ToLower(filepath.Ext(e.Name()))] {
			photos = append(photos, e.Name())
		}
	}
	if len(photos) == 0 {
		fmt.Println("No images found")
		return nil
	}

	fmt.Printf("Photos to enroll: %d\n\n", len(photos))

	bar := progressbar.NewOptions(len(photos),
		progressbar.OptionSetDescription("Enrolling students"),
		progressbar.OptionShowCount(),
		progressbar.OptionShowIts(),
		progressbar.OptionSetItsString("photos"),
		progressbar.OptionShowElapsedTimeOnFinish(),
		progressbar.OptionSetPredictTime(true),
		progressbar.OptionFullWidth(),
	)

	var successCount, errorCount int
	var failures []string
	var mu sync.Mutex

	sem := make(chan struct{}, concurrency)
	var wg sync.WaitGroup

	for _, name := range photos {
		wg.Add(1)
		go func(filename string) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()
			defer bar.Add(1)

			label := strings.TrimSuffix(filename, filepath.Ext(filename))
			displayName, studentID := gallery.SplitLabel(label)
			if studentID == "" {
				mu.Lock()
				errorCount++
				failures = append(failures, fmt.Sprintf("%s: filename missing student id", filename))
				mu.Unlock()
				return
			}

			err := enrollOne(ctx, filepath.Join(dir, filename), studentID, displayName, dim, extractor, students)
			mu.Lock()
			if err != nil {
				errorCount++
				failures = append(failures, err.Error())
			} else {
				successCount++
			}
			mu.Unlock()
		}(name)
	}
	wg.Wait()
	fmt.Println()

	fmt.Printf("\nEnrolled: %d, failed: %d\n", successCount, errorCount)
	for _, f := range failures {
		fmt.Printf("  %s\n", f)
	}
	if errorCount > 0 {
		return fmt.Errorf("%d photos failed to enroll", errorCount)
	}
	return nil
}
