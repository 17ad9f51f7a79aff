package cli

import (
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/lk2023060901/grok-bridge/internal/render"
	"github.com/lk2023060901/grok-bridge/internal/xai"
)

func newVideoCommand(app *App) *cobra.Command {
	var (
		duration                  int
		resolution, aspect, image string
		output, model             string
		wait                      bool
		pollInterval, pollTimeout time.Duration
	)

	cmd := &cobra.Command{
		Use:   "video <prompt>",
		Short: "Start a video generation, optionally waiting for the result",
		Args:  requireArg("prompt"),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			job, err := app.deps.Backend.GenerateVideo(ctx, &xai.VideoRequest{
				Prompt:      args[0],
				Model:       model,
				Duration:    duration,
				Resolution:  resolution,
				AspectRatio: aspect,
				Image:       image,
			})
			if err != nil {
				return err
			}
			app.printf("Video generation started. Request ID: %s\n", job.RequestID)

			if !wait && output == "" {
				app.printf("Check status: grok video-status %s\n", job.RequestID)
				return nil
			}

			app.println("Waiting for completion...")
			status, err := app.deps.Backend.WaitForVideo(ctx, job.RequestID, &xai.PollOptions{
				Interval: pollInterval,
				Timeout:  pollTimeout,
				OnStatus: func(poll int, s *xai.VideoStatus) {
					app.log.Info("video poll", zap.Int("poll", poll), zap.String("status", s.Status))
				},
			})
			if err != nil {
				return err
			}

			app.printf("Status: %s\n", status.Status)
			if status.URL == "" {
				return nil
			}
			if output == "" {
				app.printf("URL: %s\n", status.URL)
				return nil
			}

			loc, err := app.deps.Saver.SaveURL(ctx, status.URL, output)
			if err != nil {
				return err
			}
			app.printf("Saved to %s\n", loc)
			return nil
		},
	}

	cmd.Flags().IntVar(&duration, "duration", xai.DefaultDuration, "length in seconds (1-15)")
	cmd.Flags().StringVar(&resolution, "resolution", xai.Resolution720p, "480p or 720p")
	cmd.Flags().StringVar(&aspect, "aspect", "", "aspect ratio, e.g. 16:9")
	cmd.Flags().StringVar(&image, "image", "", "seed image URL for image-to-video")
	cmd.Flags().BoolVar(&wait, "wait", false, "wait until the video is ready")
	cmd.Flags().StringVar(&output, "output", "", "save to a file or s3://bucket/key (implies --wait)")
	cmd.Flags().StringVar(&model, "model", "", "override the video model")
	cmd.Flags().DurationVar(&pollInterval, "poll-interval", 0, "delay between status checks (default from config)")
	cmd.Flags().DurationVar(&pollTimeout, "timeout", 0, "give up waiting after this long (default from config)")

	return cmd
}

func newVideoStatusCommand(app *App) *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "video-status <request_id>",
		Short: "Print the current status of a video generation",
		Args:  requireArg("request_id"),
		RunE: func(cmd *cobra.Command, args []string) error {
			status, err := app.deps.Backend.PollVideo(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return render.Write(app.out, format, status)
		},
	}

	cmd.Flags().StringVar(&format, "format", render.FormatJSON, "output format: json or yaml")

	return cmd
}
