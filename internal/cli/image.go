package cli

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/lk2023060901/grok-bridge/internal/xai"
)

func newImagineCommand(app *App) *cobra.Command {
	var (
		n                      int
		aspect, format, output string
		model                  string
	)

	cmd := &cobra.Command{
		Use:   "imagine <prompt>",
		Short: "Generate images from a text prompt",
		Args:  requireArg("prompt"),
		RunE: func(cmd *cobra.Command, args []string) error {
			result, err := app.deps.Backend.GenerateImage(cmd.Context(), &xai.ImageRequest{
				Prompt:         args[0],
				Model:          model,
				N:              n,
				ResponseFormat: format,
				AspectRatio:    aspect,
			})
			if err != nil {
				return err
			}
			return app.printImages(cmd.Context(), result, output)
		},
	}

	cmd.Flags().IntVar(&n, "n", 1, "number of images (1-10)")
	cmd.Flags().StringVar(&aspect, "aspect", "", "aspect ratio, e.g. 16:9")
	cmd.Flags().StringVar(&format, "format", "url", "response format: url or b64_json")
	cmd.Flags().StringVar(&output, "output", "", "save to a file or s3://bucket/key")
	cmd.Flags().StringVar(&model, "model", "", "override the image model")

	return cmd
}

func newEditCommand(app *App) *cobra.Command {
	var (
		images         []string
		n              int
		format, output string
		model          string
	)

	cmd := &cobra.Command{
		Use:   "edit <prompt>",
		Short: "Edit an image with a natural-language instruction",
		Args:  requireArg("prompt"),
		RunE: func(cmd *cobra.Command, args []string) error {
			result, err := app.deps.Backend.EditImage(cmd.Context(), &xai.ImageEditRequest{
				Prompt:         args[0],
				Images:         images,
				Model:          model,
				N:              n,
				ResponseFormat: format,
			})
			if err != nil {
				return err
			}
			return app.printImages(cmd.Context(), result, output)
		},
	}

	cmd.Flags().StringArrayVar(&images, "image", nil, "source image: URL, data URI or local file (repeat up to 3 times)")
	cmd.Flags().IntVar(&n, "n", 1, "number of images (1-10)")
	cmd.Flags().StringVar(&format, "format", "url", "response format: url or b64_json")
	cmd.Flags().StringVar(&output, "output", "", "save to a file or s3://bucket/key")
	cmd.Flags().StringVar(&model, "model", "", "override the image model")

	return cmd
}

// printImages saves the batch when output is set, otherwise prints each URL
func (a *App) printImages(ctx context.Context, result *xai.ImageResult, output string) error {
	var saved []string
	if output != "" {
		var err error
		if saved, err = a.deps.Saver.SaveImages(ctx, result.Images, output); err != nil {
			return err
		}
	}

	for i, img := range result.Images {
		switch {
		case saved != nil:
			a.printf("Saved to %s\n", saved[i])
		case img.URL != "":
			a.println(img.URL)
		default:
			a.println("[base64 data]")
		}

		if img.RevisedPrompt != "" {
			a.printf("Revised prompt: %s\n", img.RevisedPrompt)
		}
	}
	return nil
}
