package cmd

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/kozaktomas/face-attendance/internal/attendance"
	"github.com/kozaktomas/face-attendance/internal/config"
	"github.com/kozaktomas/face-attendance/internal/database/postgres"
)

var attendanceCmd = &cobra.Command{
	Use:   "attendance",
	Short: "Print the reconciled attendance of a classroom for one date",
	Long: `Print the daily attendance view of a classroom: every roster member
with their reconciled status, method, and alert, derived from the raw match
events.

Examples:
  # Today's attendance for class 3
  face-attendance attendance --class 3

  # A past date
  face-attendance attendance --class 3 --date 2026-03-15

  # Also write a CSV into the export folder
  face-attendance attendance --class 3 --export`,
	RunE: runAttendance,
}

func init() {
	rootCmd.AddCommand(attendanceCmd)
	attendanceCmd.Flags().Int("class", 0, "Classroom ID (required)")
	attendanceCmd.Flags().String("date", "", "Date (YYYY-MM-DD), defaults to today")
	attendanceCmd.Flags().Bool("export", false, "Write a CSV into the export folder (EXPORT_DIR)")
}

func runAttendance(cmd *cobra.Command, args []string) error {
	cfg := config.Load()

	classID := int64(mustGetInt(cmd, "class"))
	if classID == 0 {
		return errors.New("--class is required")
	}

	date := mustGetString(cmd, "date")
	if date == "" {
		date = attendance.Today()
	} else if _, err := time.Parse(attendance.DateFormat, date); err != nil {
		return fmt.Errorf("invalid date %q, expected YYYY-MM-DD", date)
	}

	if cfg.Database.URL == "" {
		return errors.New("DATABASE_URL environment variable is required")
	}
	pool, err := postgres.Initialize(&cfg.Database)
	if err != nil {
		return fmt.Errorf("failed to initialize PostgreSQL: %w", err)
	}
	defer pool.Close()

	ctx := cmd.Context()

	class, err := postgres.NewClassRepository(pool).Get(ctx, classID)
	if err != nil {
		return err
	}
	if class == nil {
		return fmt.Errorf("class %d not found", classID)
	}

	students, err := postgres.NewRosterRepository(pool).ListStudents(ctx, classID)
	if err != nil {
		return err
	}

	events, err := postgres.NewEventRepository(pool).QueryDay(ctx, classID, date)
	if err != nil {
		return err
	}

	roster := make([]attendance.RosterEntry, 0, len(students))
	for _, s := range students {
		roster = append(roster, attendance.RosterEntry{StudentID: s.ID, Roll: s.RollNumber, Name: s.Name})
	}
	records := attendance.BuildView(roster, events)

	fmt.Printf("%s (%s) - %s\n\n", class.Name, class.Batch, date)

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ROLL\tNAME\tSTATUS\tMETHOD\tALERT")
	present := 0
	for _, rec := range records {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n", rec.Roll, rec.Name, rec.Status, rec.Method, rec.Alert)
		if rec.IsPresent {
			present++
		}
	}
	w.Flush()

	fmt.Printf("\n%d of %d present\n", present, len(records))

	if export, _ := cmd.Flags().GetBool("export"); export {
		path, err := exportCSV(cfg.Gallery.ExportDir, date, records)
		if err != nil {
			return fmt.Errorf("writing CSV: %w", err)
		}
		fmt.Printf("CSV written to %s\n", path)
	}
	return nil
}

// exportCSV writes the reconciled records into the export folder and returns
// the written path.
func exportCSV(dir, date string, records []attendance.Record) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}
	path := filepath.Join(dir, fmt.Sprintf("attendance_%s.csv", date))
	f, err := os.Create(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	if err := attendance.WriteCSV(f, records); err != nil {
		return "", err
	}
	return path, nil
}
