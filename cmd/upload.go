package cmd

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"sync/atomic"

	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/huh/spinner"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"tubeup/internal/app"
	"tubeup/internal/upload"
	"tubeup/pkg/config"
)

var (
	uploadTitle       string
	uploadDescription string
	uploadCategory    string
	uploadPrivacy     string
	uploadTags        []string
	uploadSuggestTags bool
	uploadADC         bool
)

var uploadCmd = &cobra.Command{
	Use:   "upload FILE",
	Short: "Upload a video file",
	Long: `Upload a local file or a gs://bucket/object path to YouTube.
Missing title or description are prompted for when running in a terminal.`,
	Args: cobra.ExactArgs(1),
	RunE: runUpload,
}

func init() {
	uploadCmd.Flags().StringVarP(&uploadTitle, "title", "t", "", "Video title (max 100 characters)")
	uploadCmd.Flags().StringVarP(&uploadDescription, "description", "d", "", "Video description (max 5000 characters)")
	uploadCmd.Flags().StringVarP(&uploadCategory, "category", "c", "", "YouTube category id (default from config, 22)")
	uploadCmd.Flags().StringVarP(&uploadPrivacy, "privacy", "p", "", "Privacy status: private, unlisted or public (default from config, private)")
	uploadCmd.Flags().StringSliceVar(&uploadTags, "tags", nil, "Comma-separated keywords")
	uploadCmd.Flags().BoolVar(&uploadSuggestTags, "suggest-tags", false, "Suggest tags with Groq when none are given")
	uploadCmd.Flags().BoolVar(&uploadADC, "adc", false, "Authenticate with application default credentials")
	rootCmd.AddCommand(uploadCmd)
}

func runUpload(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	cfg, err := config.Load()
	if err != nil {
		return err
	}

	input := app.UploadInput{
		FilePath:    args[0],
		Title:       strings.TrimSpace(uploadTitle),
		Description: uploadDescription,
		Category:    uploadCategory,
		Privacy:     uploadPrivacy,
		Keywords:    uploadTags,
		SuggestTags: uploadSuggestTags,
	}

	interactive := term.IsTerminal(int(os.Stdin.Fd()))
	if interactive && (input.Title == "" || input.Description == "") {
		if err := promptMetadata(&input); err != nil {
			return err
		}
	}

	built, err := app.Build(ctx, cfg, app.BuildOptions{
		ApplicationDefault: uploadADC,
		SuggestTags:        uploadSuggestTags,
	})
	if err != nil {
		return err
	}
	defer func() { _ = built.Close() }()

	var state upload.State
	run := func() { state = built.Service.Upload(ctx, input) }

	if interactive && !verbose {
		runWithProgress("Uploading "+input.FilePath, run)
	} else {
		run()
	}

	printResult(os.Stdout, state)
	return resultError(state)
}

// runWithProgress runs fn behind a spinner. If the spinner cannot start, fn
// runs without it. fn runs at most once and has finished when this returns.
func runWithProgress(title string, fn func()) {
	action, wait := onceAction(fn)
	if err := spinner.New().Title(title).Action(action).Run(); err != nil {
		slog.Debug("Spinner unavailable, running without it", "error", err)
	}
	action()
	wait()
}

func onceAction(fn func()) (action func(), wait func()) {
	var started atomic.Bool
	done := make(chan struct{})

	action = func() {
		if !started.CompareAndSwap(false, true) {
			return
		}
		defer close(done)
		fn()
	}
	wait = func() { <-done }
	return action, wait
}

func resultError(state upload.State) error {
	if state.Status != upload.StatusCompleted {
		return errors.New("upload failed")
	}
	return nil
}

func promptMetadata(input *app.UploadInput) error {
	form := huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Title").
				CharLimit(upload.MaxTitleLength).
				Value(&input.Title).
				Validate(required("Title")),
			huh.NewText().
				Title("Description").
				CharLimit(upload.MaxDescriptionLength).
				Value(&input.Description).
				Validate(required("Description")),
		),
	)
	return form.Run()
}

func printResult(w io.Writer, state upload.State) {
	_, _ = fmt.Fprintln(w)
	switch state.Status {
	case upload.StatusCompleted:
		_, _ = fmt.Fprintln(w, successStyle.Render("✓ Uploaded: "+state.Title))
		_, _ = fmt.Fprintln(w, infoStyle.Render("  Video ID: "+state.VideoID))
		_, _ = fmt.Fprintln(w, infoStyle.Render("  URL: "+state.URL()))
	case upload.StatusFailed:
		_, _ = fmt.Fprintln(w, errorStyle.Render(fmt.Sprintf("✗ Upload failed (%s)", strings.ToLower(string(state.Err.Kind)))))
		_, _ = fmt.Fprintln(w, errorStyle.Render("  "+state.ErrorMessage()))
		if errors.Is(state.Err, upload.ErrCredential) {
			_, _ = fmt.Fprintln(w, infoStyle.Render("  Run: tubeup auth youtube"))
		}
	default:
		_, _ = fmt.Fprintln(w, warnStyle.Render(fmt.Sprintf("Upload stopped in state %q", state.Status)))
	}
}

func required(field string) func(string) error {
	return func(s string) error {
		if strings.TrimSpace(s) == "" {
			return fmt.Errorf("%s is required", field)
		}
		return nil
	}
}
