package cmd

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "face-attendance",
	Short: "Classroom attendance tracking with face recognition",
	Long: `Face Attendance tracks classroom attendance from two channels of
photographic evidence: student selfie check-ins and professor class photos.
Both are matched against per-student reference galleries by a face
recognition service, reconciled into a daily attendance view, and exported
as CSV.`,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)
}

func initConfig() {
	// .env file is optional, don't fail if not found
	_ = godotenv.Load()
}
