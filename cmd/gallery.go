package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"text/tabwriter"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"github.com/kozaktomas/face-attendance/internal/config"
	"github.com/kozaktomas/face-attendance/internal/gallery"
	"github.com/kozaktomas/face-attendance/internal/recognizer"
)

var galleryCmd = &cobra.Command{
	Use:   "gallery",
	Short: "Manage reference image galleries",
}

var galleryCheckCmd = &cobra.Command{
	Use:   "check <class-folder>",
	Short: "Check which reference images produce usable embeddings",
	Long: `Run every reference image of a class folder through the recognizer and
report images that fail to embed. Broken references silently weaken both
selfie verification and class photo scans, so this is worth running after
bulk-importing student photos.

Example:
  face-attendance gallery check student_db/Class_A_2026`,
	Args: cobra.ExactArgs(1),
	RunE: runGalleryCheck,
}

func init() {
	rootCmd.AddCommand(galleryCmd)
	galleryCmd.AddCommand(galleryCheckCmd)
}

type galleryIssue struct {
	roll  string
	image string
	err   error
}

func runGalleryCheck(cmd *cobra.Command, args []string) error {
	cfg := config.Load()
	classFolder := args[0]

	client := recognizer.New(cfg.Recognizer.URL, cfg.Recognizer.Model)
	store := gallery.NewFSStore()
	ctx := cmd.Context()

	folders, err := store.ListStudentFolders(ctx, classFolder)
	if err != nil {
		return fmt.Errorf("listing class folder: %w", err)
	}
	if len(folders) == 0 {
		return fmt.Errorf("no student folders found in %s", classFolder)
	}

	type imageRef struct {
		roll string
		name string
		data []byte
	}
	var images []imageRef
	for _, folder := range folders {
		imgs, err := store.ListImages(ctx, filepath.Join(classFolder, folder))
		if err != nil {
			return err
		}
		roll := gallery.RollFromFolderName(folder)
		for _, img := range imgs {
			images = append(images, imageRef{roll: roll, name: img.Name, data: img.Data})
		}
	}
	if len(images) == 0 {
		return fmt.Errorf("no reference images found in %s", classFolder)
	}

	bar := progressbar.NewOptions(len(images),
		progressbar.OptionSetDescription("Checking references"),
		progressbar.OptionShowCount(),
		progressbar.OptionShowIts(),
		progressbar.OptionSetItsString("images"),
		progressbar.OptionShowElapsedTimeOnFinish(),
		progressbar.OptionFullWidth(),
	)

	var issues []galleryIssue
	for _, img := range images {
		if _, err := client.Represent(ctx, img.data, false); err != nil {
			issues = append(issues, galleryIssue{roll: img.roll, image: img.name, err: err})
		}
		bar.Add(1)
	}
	fmt.Println()

	if len(issues) == 0 {
		fmt.Printf("All %d reference images across %d students embed cleanly\n", len(images), len(folders))
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ROLL\tIMAGE\tPROBLEM")
	for _, issue := range issues {
		fmt.Fprintf(w, "%s\t%s\t%v\n", issue.roll, issue.image, issue.err)
	}
	w.Flush()

	fmt.Printf("\n%d of %d reference images failed\n", len(issues), len(images))
	return nil
}
