package cmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/kozaktomas/face-attendance/internal/config"
	"github.com/kozaktomas/face-attendance/internal/gallery"
	"github.com/kozaktomas/face-attendance/internal/match"
	"github.com/kozaktomas/face-attendance/internal/recognizer"
)

var verifyCmd = &cobra.Command{
	Use:   "verify <selfie-image> <student-folder>",
	Short: "Verify a selfie against a student's reference gallery",
	Long: `Verify a selfie against a student's reference images without touching
the attendance database. Useful for tuning thresholds and debugging
reference galleries.

Examples:
  # Verify a selfie against one student's folder
  face-attendance verify selfie.jpg student_db/Class_A_2026/stu_A01

  # Try a stricter threshold
  face-attendance verify selfie.jpg student_db/Class_A_2026/stu_A01 --threshold 0.3`,
	Args: cobra.ExactArgs(2),
	RunE: runVerify,
}

func init() {
	rootCmd.AddCommand(verifyCmd)
	verifyCmd.Flags().Float64("threshold", 0, "Override the selfie distance threshold")
}

func runVerify(cmd *cobra.Command, args []string) error {
	cfg := config.Load()

	threshold := cfg.Matching.SelfieThreshold
	if v, err := cmd.Flags().GetFloat64("threshold"); err == nil && v > 0 {
		threshold = v
	}

	image, err := os.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("reading selfie: %w", err)
	}

	client := recognizer.New(cfg.Recognizer.URL, cfg.Recognizer.Model)
	loader := gallery.NewLoader(gallery.NewFSStore(), client)
	verifier := match.NewSelfieVerifier(client, loader, threshold)

	result, err := verifier.Verify(cmd.Context(), image, args[1])
	if err != nil {
		if errors.Is(err, recognizer.ErrNoFaceDetected) {
			fmt.Println("NO MATCH: no face detected in the selfie")
			return nil
		}
		return fmt.Errorf("verification failed: %w", err)
	}

	if result.Match {
		fmt.Printf("MATCH (distance %.4f, threshold %.2f, %d references)\n",
			result.Distance, threshold, result.References)
	} else {
		fmt.Printf("NO MATCH (distance %.4f, threshold %.2f, %d references)\n",
			result.Distance, threshold, result.References)
	}
	return nil
}
