package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/locotek/presskit/services/presskit-service/internal/form"
)

type downloadOptions struct {
	endpoint   string
	email      string
	outDir     string
	timeout    time.Duration
	resetDelay time.Duration
}

var downloadOpts downloadOptions

var downloadCmd = &cobra.Command{
	Use:   "download",
	Short: "Request the press kit the way the site form does",
	Long:  "Submits an email to a running press-kit service and saves the archive it returns",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runDownload(cmd.Context(), os.Stderr, downloadOpts)
	},
}

// runDownload drives one form submission and reports each state on w.
func runDownload(ctx context.Context, w io.Writer, opts downloadOptions) error {
	if ctx == nil {
		ctx = context.Background()
	}

	client, err := form.NewClient(opts.endpoint, opts.timeout)
	if err != nil {
		return err
	}

	view := form.NewView(nil)
	view.Open()

	c := form.NewController(client, view,
		form.WithOutputDir(opts.outDir),
		form.WithResetDelay(opts.resetDelay),
	)
	c.OnChange(func(s form.State) {
		fmt.Fprintf(w, "state: %s\n", s)
	})

	if err := c.Submit(ctx, opts.email); err != nil {
		var se *form.SubmitError
		if errors.As(err, &se) {
			return fmt.Errorf("press kit request failed: %s", se.Message)
		}
		// the request was accepted; only saving the archive failed
		_ = c.WaitReset(ctx)
		return fmt.Errorf("press kit download failed: %w", err)
	}

	fmt.Fprintf(w, "saved %s\n", c.SavedPath())
	return c.WaitReset(ctx)
}

func init() {
	downloadCmd.Flags().StringVar(&downloadOpts.endpoint, "endpoint", "http://localhost:3000", "Origin of the press-kit site")
	downloadCmd.Flags().StringVar(&downloadOpts.email, "email", "", "Email address to submit")
	downloadCmd.Flags().StringVar(&downloadOpts.outDir, "out", ".", "Directory the archive is saved to")
	downloadCmd.Flags().DurationVar(&downloadOpts.timeout, "timeout", 30*time.Second, "HTTP timeout")
	downloadCmd.Flags().DurationVar(&downloadOpts.resetDelay, "reset-delay", 0, "How long the success state is held")
	downloadCmd.MarkFlagRequired("email")

	rootCmd.AddCommand(downloadCmd)
}
