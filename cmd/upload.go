package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ziadkadry99/netviz/internal/category"
	"github.com/ziadkadry99/netviz/internal/history"
	"github.com/ziadkadry99/netviz/internal/inference"
	"github.com/ziadkadry99/netviz/internal/progress"
	"github.com/ziadkadry99/netviz/internal/samples"
	"github.com/ziadkadry99/netviz/internal/ui"
)

var uploadCmd = &cobra.Command{
	Use:   "upload [image]",
	Short: "Upload labelled training images",
	Long: `Uploads one JPEG image with a label, or a whole directory with --dir.

In directory mode each image is labelled by the first directory below the
root (dir/cats/a.jpg is a "cats" sample) unless --label is given. Without
--label for a single image, you pick one of the configured categories.`,
	Example: `  netviz upload photo.jpg --label cats
  netviz upload --dir ./samples
  netviz upload --dir ./dogs --label dogs --dry-run`,
	Args: cobra.MaximumNArgs(1),
	RunE: runUpload,
}

func init() {
	addCategoryFlag(uploadCmd)
	uploadCmd.Flags().StringP("label", "l", "", "label to attach to the uploaded images")
	uploadCmd.Flags().String("dir", "", "upload every image under this directory")
	uploadCmd.Flags().StringSlice("include", nil, "glob patterns to include (directory mode)")
	uploadCmd.Flags().StringSlice("exclude", nil, "glob patterns to exclude (directory mode)")
	uploadCmd.Flags().Bool("dry-run", false, "list what would be uploaded without sending anything")
	uploadCmd.Flags().Int("rate", 0, "max uploads per minute in directory mode (0 = unlimited)")
	rootCmd.AddCommand(uploadCmd)
}

func runUpload(cmd *cobra.Command, args []string) error {
	dir, _ := cmd.Flags().GetString("dir")
	if (dir == "") == (len(args) == 0) {
		return errors.New("give either an image path or --dir")
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	logger, err := newLogger(cfg, true)
	if err != nil {
		return err
	}
	defer logger.Sync()

	label, _ := cmd.Flags().GetString("label")

	if dir != "" {
		include, _ := cmd.Flags().GetStringSlice("include")
		exclude, _ := cmd.Flags().GetStringSlice("exclude")
		found, err := samples.Walk(samples.Config{
			RootDir: dir,
			Label:   label,
			Include: append(cfg.Samples.Include, include...),
			Exclude: append(cfg.Samples.Exclude, exclude...),
		})
		if err != nil {
			return fmt.Errorf("scanning %s: %w", dir, err)
		}
		if len(found) == 0 {
			return fmt.Errorf("no images found under %s", dir)
		}
		if dryRun, _ := cmd.Flags().GetBool("dry-run"); dryRun {
			printSampleSummary(found)
			return nil
		}

		hist, closeDB, err := openHistory(cfg)
		if err != nil {
			return err
		}
		defer closeDB()
		rate, _ := cmd.Flags().GetInt("rate")
		client := inference.NewRateLimited(newClient(cfg, logger, nil), rate)
		return uploadBatch(cmd.Context(), client, hist, logger, found)
	}

	if label == "" {
		store, err := newCategoryStore(cmd, cfg)
		if err != nil {
			return err
		}
		if label, err = promptLabel(store.Get()); err != nil {
			return err
		}
	}

	hist, closeDB, err := openHistory(cfg)
	if err != nil {
		return err
	}
	defer closeDB()

	image, f, err := openImage(args[0])
	if err != nil {
		return err
	}
	defer f.Close()

	ctx := cmd.Context()
	client := newClient(cfg, logger, nil)
	res, err := client.Upload(ctx, image, label)
	recordHistory(ctx, hist, logger, uploadEntry(image.Name, label, res), err)
	if err != nil {
		return err
	}
	fmt.Fprintf(os.Stderr, "%s Uploaded %s as %q (%s)\n", ui.StatusIcon(true), image.Name, label, res.Path)
	return nil
}

// promptLabel asks the user to pick one of cats.
func promptLabel(cats []category.Category) (string, error) {
	if len(cats) == 0 {
		return "", category.ErrNoSelection
	}
	prompt := promptui.Select{
		Label: "Label for this image",
		Items: category.Labels(cats),
	}
	_, label, err := prompt.Run()
	if err != nil {
		return "", fmt.Errorf("label selection: %w", err)
	}
	return label, nil
}

// uploadBatch sends every sample in order. A server rejection is reported
// and skipped; a transport failure stops the batch because the remaining
// uploads would fail the same way.
func uploadBatch(ctx context.Context, client inference.Service, hist *history.Store, logger *zap.Logger, found []samples.Sample) error {
	start := time.Now()
	reporter := progress.NewReporter("Uploading samples")
	reporter.Start(len(found))

	var uploaded, failed int
	var failures [][]string
	for i, s := range found {
		err := uploadSample(ctx, client, hist, logger, s)
		reporter.Update(i+1, s.RelPath)
		if err == nil {
			uploaded++
			continue
		}
		failed++
		failures = append(failures, []string{s.RelPath, s.Label, err.Error()})

		var transportErr *inference.TransportError
		if errors.As(err, &transportErr) {
			reporter.Finish()
			return fmt.Errorf("stopped after %d of %d uploads: %w", i+1, len(found), err)
		}
	}
	reporter.Finish()

	fmt.Fprintf(os.Stderr, "\n%s Uploaded %d images in %s\n", ui.StatusIcon(failed == 0), uploaded, time.Since(start).Round(time.Millisecond))
	if failed > 0 {
		ui.Warn.Fprintf(os.Stderr, "  %d uploads were rejected:\n", failed)
		ui.Table(os.Stderr, []string{"FILE", "LABEL", "ERROR"}, failures)
		return fmt.Errorf("%d of %d uploads failed", failed, len(found))
	}
	return nil
}

func uploadSample(ctx context.Context, client inference.Service, hist *history.Store, logger *zap.Logger, s samples.Sample) error {
	rc, err := s.Open()
	if err != nil {
		return err
	}
	defer rc.Close()

	res, err := client.Upload(ctx, inference.Image{Name: s.Name(), Data: rc}, s.Label)
	recordHistory(ctx, hist, logger, uploadEntry(s.Name(), s.Label, res), err)
	if err != nil {
		logger.Debug("upload failed", zap.String("path", s.RelPath), zap.Error(err))
	}
	return err
}

func uploadEntry(name, label string, res *inference.UploadResult) history.Entry {
	entry := history.Entry{
		Action:  history.ActionUpload,
		Label:   label,
		Summary: "uploaded " + name,
	}
	if res != nil {
		entry.Detail = res.Path
	}
	return entry
}

func printSampleSummary(found []samples.Sample) {
	groups := samples.GroupByLabel(found)
	var rows [][]string
	for _, label := range samples.Labels(found) {
		var size int64
		for _, s := range groups[label] {
			size += s.Size
		}
		rows = append(rows, []string{label, strconv.Itoa(len(groups[label])), fmt.Sprintf("%.1f KB", float64(size)/1024)})
	}
	ui.Table(os.Stdout, []string{"LABEL", "IMAGES", "SIZE"}, rows)
	fmt.Printf("\n%d images would be uploaded\n", len(found))
}
