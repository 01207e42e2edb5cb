package cmd

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/kozaktomas/face-attendance/internal/config"
	"github.com/kozaktomas/face-attendance/internal/gallery"
	"github.com/kozaktomas/face-attendance/internal/match"
	"github.com/kozaktomas/face-attendance/internal/recognizer"
	"github.com/kozaktomas/face-attendance/pkg/logger"
)

var classPhotoCmd = &cobra.Command{
	Use:   "classphoto <photo> <class-folder>",
	Short: "Scan a class photo against a class reference folder",
	Long: `Scan a class photo against every student folder of a class without
touching the attendance database. Each detected face is matched against the
bounded per-student reference sets; recognized roll numbers are printed.

Examples:
  # Scan a photo against a class folder
  face-attendance classphoto photo.jpg student_db/Class_A_2026

  # Loosen the matching threshold
  face-attendance classphoto photo.jpg student_db/Class_A_2026 --threshold 0.6`,
	Args: cobra.ExactArgs(2),
	RunE: runClassPhoto,
}

func init() {
	rootCmd.AddCommand(classPhotoCmd)
	classPhotoCmd.Flags().Float64("threshold", 0, "Override the group matching distance threshold")
}

func runClassPhoto(cmd *cobra.Command, args []string) error {
	cfg := config.Load()
	log := logger.New(cfg.LogLevel)

	threshold := cfg.Matching.GroupThreshold
	if v, err := cmd.Flags().GetFloat64("threshold"); err == nil && v > 0 {
		threshold = v
	}

	photo, err := os.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("reading class photo: %w", err)
	}

	client := recognizer.New(cfg.Recognizer.URL, cfg.Recognizer.Model)
	loader := gallery.NewLoader(gallery.NewFSStore(), client)

	refs, err := loader.ClassFolder(cmd.Context(), args[1], cfg.Matching.MaxGroupRefs)
	if err != nil {
		return fmt.Errorf("loading class folder: %w", err)
	}
	if len(refs) == 0 {
		return fmt.Errorf("no student folders found in %s", args[1])
	}

	matcher := match.NewGroupPhotoMatcher(client, threshold, cfg.Matching.FaceEdge, log)
	recognized, err := matcher.Match(cmd.Context(), photo, refs)
	if err != nil {
		return fmt.Errorf("scanning class photo: %w", err)
	}

	seen := make(map[string]bool, len(recognized))
	for _, roll := range recognized {
		seen[roll] = true
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ROLL\tRECOGNIZED")
	for _, ref := range refs {
		status := "no"
		if seen[ref.Roll] {
			status = "yes"
		}
		fmt.Fprintf(w, "%s\t%s\n", ref.Roll, status)
	}
	w.Flush()

	fmt.Printf("\n%d of %d students recognized\n", len(recognized), len(refs))
	return nil
}
