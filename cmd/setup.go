package cmd

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"strings"

	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/huh/spinner"
	"github.com/spf13/cobra"

	"tubeup/internal/youtube"
)

const envTokenPath = "./youtube_token.json"

var setupCmd = &cobra.Command{
	Use:   "setup",
	Short: "Interactive setup wizard",
	Long:  `Configure the Google Cloud project, YouTube OAuth client and optional Groq key.`,
	RunE:  runSetup,
}

func init() {
	rootCmd.AddCommand(setupCmd)
}

func runSetup(cmd *cobra.Command, args []string) error {
	fmt.Println(titleStyle.Render("Tubeup Setup"))

	if _, err := os.Stat(".env"); err == nil {
		var overwrite bool
		if err := huh.NewConfirm().
			Title("Found existing .env file").
			Description("Overwrite?").
			Value(&overwrite).
			Run(); err != nil {
			return err
		}
		if !overwrite {
			fmt.Println(infoStyle.Render("Kept existing .env"))
			return nil
		}
	}

	env := make(map[string]string)

	steps := []struct {
		name string
		fn   func(map[string]string) error
	}{
		{"Configuring Google Cloud", configureGCP},
		{"Configuring YouTube OAuth", configureYouTube},
		{"Configuring Groq", configureGroq},
	}

	for _, step := range steps {
		if err := step.fn(env); err != nil {
			return fmt.Errorf("%s: %w", step.name, err)
		}
	}

	if err := writeEnvFile(env); err != nil {
		return err
	}

	return maybeAuthenticate(cmd.Context(), env)
}

func configureGCP(env map[string]string) error {
	var setupGCP bool
	if err := huh.NewConfirm().
		Title("Setup Google Cloud?").
		Description("Enables the YouTube API, and optionally Secret Manager and Cloud Storage").
		Value(&setupGCP).
		Run(); err != nil {
		return err
	}

	if !setupGCP {
		return nil
	}

	if !commandExists("gcloud") {
		fmt.Println(warnStyle.Render("gcloud CLI not found - install from https://cloud.google.com/sdk/docs/install"))
		return nil
	}

	project, err := chooseGCPProject()
	if err != nil {
		fmt.Println(warnStyle.Render(fmt.Sprintf("GCP setup skipped: %v", err)))
		return nil
	}
	if project == "" {
		return nil
	}

	env["GOOGLE_CLOUD_PROJECT"] = project

	if err := enableGCPAPIs(project); err != nil {
		fmt.Println(warnStyle.Render(fmt.Sprintf("API enablement failed: %v", err)))
	}

	return nil
}

func chooseGCPProject() (string, error) {
	existing := activeProject()

	var choice string
	var options []huh.Option[string]
	if existing != "" {
		options = append(options, huh.NewOption(fmt.Sprintf("Use current: %s", existing), existing))
	}
	options = append(options, huh.NewOption("Enter project ID manually", "manual"))

	if err := huh.NewSelect[string]().
		Title("Google Cloud Project").
		Options(options...).
		Value(&choice).
		Run(); err != nil {
		return "", err
	}

	if choice != "manual" {
		return choice, nil
	}

	var projectID string
	if err := huh.NewInput().
		Title("Project ID").
		Value(&projectID).
		Run(); err != nil {
		return "", err
	}
	return strings.TrimSpace(projectID), nil
}

func activeProject() string {
	out, err := exec.Command("gcloud", "config", "get-value", "project").Output()
	if err != nil {
		return ""
	}
	return strings.TrimSpace(string(out))
}

func enableGCPAPIs(project string) error {
	apis := []string{
		"youtube.googleapis.com",
		"secretmanager.googleapis.com",
		"storage.googleapis.com",
	}

	return runWithSpinner("Enabling APIs", func() error {
		args := append([]string{"services", "enable"}, apis...)
		args = append(args, "--project", project)
		return runSetupCmd("gcloud", args...)
	})
}

func configureYouTube(env map[string]string) error {
	fmt.Println(infoStyle.Render(`
To create OAuth credentials:
1. Go to https://console.cloud.google.com/apis/credentials
2. Click "Create Credentials" → "OAuth client ID"
3. Choose "Desktop app" as application type
4. Add ` + youtube.DefaultRedirectURL + ` as an authorized redirect URI
5. Copy the Client ID and Client Secret
`))

	var clientID, clientSecret string
	form := huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("YouTube Client ID").
				Value(&clientID).
				Validate(required("Client ID")),
			huh.NewInput().
				Title("YouTube Client Secret").
				Description("Leave empty to read it from Secret Manager").
				EchoMode(huh.EchoModePassword).
				Value(&clientSecret),
		),
	)

	if err := form.Run(); err != nil {
		return err
	}

	env["YOUTUBE_CLIENT_ID"] = strings.TrimSpace(clientID)
	if s := strings.TrimSpace(clientSecret); s != "" {
		env["YOUTUBE_CLIENT_SECRET"] = s
	}
	return nil
}

func configureGroq(env map[string]string) error {
	var groqKey string
	if err := huh.NewInput().
		Title("Groq API Key (optional)").
		Description("Used by --suggest-tags. https://console.groq.com/keys").
		EchoMode(huh.EchoModePassword).
		Value(&groqKey).
		Run(); err != nil {
		return err
	}

	if k := strings.TrimSpace(groqKey); k != "" {
		env["GROQ_API_KEY"] = k
	}
	return nil
}

func writeEnvFile(env map[string]string) error {
	f, err := os.OpenFile(".env", os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
	if err != nil {
		return err
	}
	defer func() { _ = f.Close() }()

	order := []string{
		"GOOGLE_CLOUD_PROJECT",
		"YOUTUBE_CLIENT_ID",
		"YOUTUBE_CLIENT_SECRET",
		"GROQ_API_KEY",
	}

	for _, key := range order {
		if val, ok := env[key]; ok && val != "" {
			if _, err := fmt.Fprintf(f, "%s=%s\n", key, val); err != nil {
				return fmt.Errorf("write .env: %w", err)
			}
		}
	}

	fmt.Println(successStyle.Render("✓ Created .env file"))
	return nil
}

func maybeAuthenticate(ctx context.Context, env map[string]string) error {
	clientID, clientSecret := env["YOUTUBE_CLIENT_ID"], env["YOUTUBE_CLIENT_SECRET"]
	if clientID == "" || clientSecret == "" {
		printNextSteps()
		return nil
	}

	var authenticate bool
	if err := huh.NewConfirm().
		Title("Authenticate with YouTube now?").
		Description("Opens browser to complete OAuth flow").
		Value(&authenticate).
		Run(); err != nil {
		return err
	}

	if authenticate {
		auth := youtube.NewAuth(clientID, clientSecret, envTokenPath)
		if err := runYouTubeAuth(ctx, auth); err != nil {
			fmt.Println(warnStyle.Render(fmt.Sprintf("OAuth flow failed: %v", err)))
			fmt.Println(infoStyle.Render("You can retry later with: tubeup auth youtube"))
		}
	}

	printNextSteps()
	return nil
}

func printNextSteps() {
	fmt.Println()
	fmt.Println(titleStyle.Render("Next steps:"))
	fmt.Println("  1. Check credentials: tubeup auth status")
	fmt.Println("  2. Upload: tubeup upload video.mp4 -t \"Title\" -d \"Description\"")
}

func commandExists(name string) bool {
	_, err := exec.LookPath(name)
	return err == nil
}

func runSetupCmd(name string, args ...string) error {
	cmd := exec.Command(name, args...)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("%s: %s", err, stderr.String())
	}
	return nil
}

func runWithSpinner(title string, fn func() error) error {
	var err error
	_ = spinner.New().
		Title(title).
		Action(func() { err = fn() }).
		Run()
	if err != nil {
		return err
	}
	fmt.Println(successStyle.Render("✓ " + title))
	return nil
}
