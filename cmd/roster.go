package cmd

import (
	"errors"
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/kozaktomas/face-attendance/internal/config"
	"github.com/kozaktomas/face-attendance/internal/database"
	"github.com/kozaktomas/face-attendance/internal/database/postgres"
	"github.com/kozaktomas/face-attendance/internal/database/sis"
	"github.com/kozaktomas/face-attendance/internal/gallery"
)

var rosterCmd = &cobra.Command{
	Use:   "roster",
	Short: "Manage classroom rosters",
}

var rosterImportCmd = &cobra.Command{
	Use:   "import",
	Short: "Import a roster from the student information system",
	Long: `Import the enrollments of a course from the upstream student
information system into a classroom. Students already on the roster are
skipped; new students get an empty reference folder that must be filled
with reference images before face matching can recognize them.

Example:
  face-attendance roster import --class 3 --course CS101 --batch 2026`,
	RunE: runRosterImport,
}

func init() {
	rootCmd.AddCommand(rosterCmd)
	rosterCmd.AddCommand(rosterImportCmd)

	rosterImportCmd.Flags().Int("class", 0, "Target classroom ID (required)")
	rosterImportCmd.Flags().String("course", "", "Course code in the SIS (required)")
	rosterImportCmd.Flags().String("batch", "", "Batch in the SIS (required)")
}

func runRosterImport(cmd *cobra.Command, args []string) error {
	cfg := config.Load()

	classID := int64(mustGetInt(cmd, "class"))
	course := mustGetString(cmd, "course")
	batch := mustGetString(cmd, "batch")
	if classID == 0 || course == "" || batch == "" {
		return errors.New("--class, --course, and --batch are required")
	}

	if cfg.SIS.DSN == "" {
		return errors.New("SIS_DATABASE_URL environment variable is required")
	}
	if cfg.Database.URL == "" {
		return errors.New("DATABASE_URL environment variable is required")
	}

	pool, err := postgres.Initialize(&cfg.Database)
	if err != nil {
		return fmt.Errorf("failed to initialize PostgreSQL: %w", err)
	}
	defer pool.Close()

	sisPool, err := sis.NewPool(cfg.SIS.DSN)
	if err != nil {
		return fmt.Errorf("failed to connect to SIS: %w", err)
	}
	defer sisPool.Close()

	ctx := cmd.Context()

	class, err := postgres.NewClassRepository(pool).Get(ctx, classID)
	if err != nil {
		return err
	}
	if class == nil {
		return fmt.Errorf("class %d not found", classID)
	}

	enrollments, err := sisPool.ListEnrollments(ctx, course, batch)
	if err != nil {
		return fmt.Errorf("loading enrollments: %w", err)
	}
	if len(enrollments) == 0 {
		return fmt.Errorf("no enrollments found for %s %s", course, batch)
	}

	roster := postgres.NewRosterRepository(pool)
	store := gallery.NewFSStore()

	imported, skipped := 0, 0
	for _, e := range enrollments {
		existing, err := roster.GetStudentByRoll(ctx, classID, e.RollNumber)
		if err != nil {
			return err
		}
		if existing != nil {
			skipped++
			continue
		}

		folder := filepath.Join(class.FolderPath, gallery.StudentFolderName(e.RollNumber))
		if err := store.EnsureFolder(ctx, folder); err != nil {
			return err
		}

		student := &database.Student{
			RollNumber:  e.RollNumber,
			Name:        e.Name,
			ClassroomID: classID,
			FolderPath:  folder,
		}
		if err := roster.CreateStudent(ctx, student); err != nil {
			return err
		}
		imported++
	}

	fmt.Printf("Imported %d students (%d already enrolled) into %s (%s)\n",
		imported, skipped, class.Name, class.Batch)
	return nil
}
