package cli

import (
	"github.com/spf13/cobra"

	"github.com/lk2023060901/grok-bridge/internal/render"
	"github.com/lk2023060901/grok-bridge/internal/xai"
)

const sourcesIndent = "  "

func newSearchWebCommand(app *App) *cobra.Command {
	var (
		images bool
		model  string
	)

	cmd := &cobra.Command{
		Use:   "search-web <query>",
		Short: "Search the web and print a synthesized answer with sources",
		Args:  requireArg("query"),
		RunE: func(cmd *cobra.Command, args []string) error {
			result, err := app.deps.Backend.SearchWeb(cmd.Context(), &xai.SearchWebRequest{
				Query:                    args[0],
				Model:                    model,
				AllowedDomains:           changedSlice(cmd, "domains"),
				ExcludedDomains:          changedSlice(cmd, "exclude"),
				EnableImageUnderstanding: images,
			})
			if err != nil {
				return err
			}
			app.println(render.SearchText(result, sourcesIndent))
			return nil
		},
	}

	cmd.Flags().StringSlice("domains", nil, "only use these domains (max 5)")
	cmd.Flags().StringSlice("exclude", nil, "never use these domains (max 5)")
	cmd.Flags().BoolVar(&images, "images", false, "let the model look at images")
	cmd.Flags().StringVar(&model, "model", "", "override the search model")

	return cmd
}

func newSearchXCommand(app *App) *cobra.Command {
	var (
		from, to       string
		images, videos bool
		model          string
	)

	cmd := &cobra.Command{
		Use:   "search-x <query>",
		Short: "Search X posts and print a synthesized summary with sources",
		Args:  requireArg("query"),
		RunE: func(cmd *cobra.Command, args []string) error {
			result, err := app.deps.Backend.SearchX(cmd.Context(), &xai.SearchXRequest{
				Query:                    args[0],
				Model:                    model,
				AllowedHandles:           changedSlice(cmd, "handles"),
				ExcludedHandles:          changedSlice(cmd, "exclude-handles"),
				FromDate:                 from,
				ToDate:                   to,
				EnableImageUnderstanding: images,
				EnableVideoUnderstanding: videos,
			})
			if err != nil {
				return err
			}
			app.println(render.SearchText(result, sourcesIndent))
			return nil
		},
	}

	cmd.Flags().StringSlice("handles", nil, "only these accounts, without @ (max 10)")
	cmd.Flags().StringSlice("exclude-handles", nil, "skip these accounts, without @ (max 10)")
	cmd.Flags().StringVar(&from, "from", "", "start date YYYY-MM-DD")
	cmd.Flags().StringVar(&to, "to", "", "end date YYYY-MM-DD")
	cmd.Flags().BoolVar(&images, "images", false, "let the model look at images in posts")
	cmd.Flags().BoolVar(&videos, "videos", false, "let the model look at videos in posts")
	cmd.Flags().StringVar(&model, "model", "", "override the search model")

	return cmd
}
