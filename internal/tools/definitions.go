package tools

import (
	"context"

	"github.com/lk2023060901/grok-bridge/internal/render"
	"github.com/lk2023060901/grok-bridge/internal/xai"
)

// Tool names
const (
	NameSearchWeb     = "grok_search_web"
	NameSearchX       = "grok_search_x"
	NameImagine       = "grok_imagine"
	NameEditImage     = "grok_edit_image"
	NameGenerateVideo = "grok_generate_video"
	NamePollVideo     = "grok_poll_video"
)

var modelParam = Param{Name: "model", Type: TypeString, Description: "Override the default model"}

func definitions(b Backend) []Tool {
	return []Tool{
		{
			Name:        NameSearchWeb,
			Description: "Search the web using xAI Grok. Returns AI-synthesized answer with citations. Use for current events, documentation, real-time data.",
			Params: []Param{
				{Name: "query", Type: TypeString, Description: "Search query", Required: true},
				{Name: "allowed_domains", Type: TypeArray, Description: "Restrict to these domains (max 5)"},
				{Name: "excluded_domains", Type: TypeArray, Description: "Exclude these domains (max 5)"},
				{Name: "enable_image_understanding", Type: TypeBoolean, Description: "Let the model look at images on visited pages"},
				modelParam,
			},
			Handler: func(ctx context.Context, args Args) (string, error) {
				return searchWeb(ctx, b, args)
			},
		},
		{
			Name:        NameSearchX,
			Description: "Search X (Twitter) using xAI Grok. Returns AI-synthesized summary of what people are saying. Use for social sentiment, trending discussions.",
			Params: []Param{
				{Name: "query", Type: TypeString, Description: "Search query", Required: true},
				{Name: "allowed_x_handles", Type: TypeArray, Description: "Only these accounts (max 10, no @)"},
				{Name: "excluded_x_handles", Type: TypeArray, Description: "Exclude these accounts (max 10, no @)"},
				{Name: "from_date", Type: TypeString, Description: "Start date (YYYY-MM-DD)"},
				{Name: "to_date", Type: TypeString, Description: "End date (YYYY-MM-DD)"},
				{Name: "enable_image_understanding", Type: TypeBoolean, Description: "Let the model look at images in posts"},
				{Name: "enable_video_understanding", Type: TypeBoolean, Description: "Let the model look at videos in posts"},
				modelParam,
			},
			Handler: func(ctx context.Context, args Args) (string, error) {
				return searchX(ctx, b, args)
			},
		},
		{
			Name:        NameImagine,
			Description: "Generate images from text using Grok Imagine. Returns temporary URL (download promptly).",
			Params: []Param{
				{Name: "prompt", Type: TypeString, Description: "Text description of desired image (max 8000 chars)", Required: true},
				{Name: "n", Type: TypeNumber, Description: "Number of images (1-10, default: 1)"},
				{Name: "aspect_ratio", Type: TypeString, Description: "Aspect ratio: 1:1, 16:9, 9:16, 4:3, 3:2, etc."},
				{Name: "response_format", Type: TypeString, Description: `"url" or "b64_json" (default: "url")`},
				modelParam,
			},
			Handler: func(ctx context.Context, args Args) (string, error) {
				return imagine(ctx, b, args)
			},
		},
		{
			Name:        NameEditImage,
			Description: "Edit images using natural language with Grok Imagine. Provide source image URL and edit instruction.",
			Params: []Param{
				{Name: "prompt", Type: TypeString, Description: "Edit instruction", Required: true},
				{Name: "image", Type: TypeString, Description: "Source image URL or base64 data URI", Required: true},
				{Name: "images", Type: TypeArray, Description: "Additional source images (max 3 in total, only the first is sent)"},
				{Name: "n", Type: TypeNumber, Description: "Number of images (1-10, default: 1)"},
				{Name: "response_format", Type: TypeString, Description: `"url" or "b64_json" (default: "url")`},
				modelParam,
			},
			Handler: func(ctx context.Context, args Args) (string, error) {
				return editImage(ctx, b, args)
			},
		},
		{
			Name:        NameGenerateVideo,
			Description: "Start async video generation with Grok Imagine. Returns request_id. Use grok_poll_video to check status. 1-15 seconds, 480p or 720p.",
			Params: []Param{
				{Name: "prompt", Type: TypeString, Description: "Text description of desired video", Required: true},
				{Name: "duration", Type: TypeNumber, Description: "Duration in seconds (1-15, default: 5)"},
				{Name: "resolution", Type: TypeString, Description: `"480p" or "720p" (default: "720p")`},
				{Name: "aspect_ratio", Type: TypeString, Description: "Aspect ratio: 16:9, 9:16, 1:1, etc."},
				{Name: "image", Type: TypeString, Description: "Seed image URL for image-to-video (optional)"},
				modelParam,
			},
			Handler: func(ctx context.Context, args Args) (string, error) {
				return generateVideo(ctx, b, args)
			},
		},
		{
			Name:        NamePollVideo,
			Description: "Check status of a video generation request. Returns status, video URL when complete.",
			Params: []Param{
				{Name: "request_id", Type: TypeString, Description: "Request ID from grok_generate_video", Required: true},
			},
			Handler: func(ctx context.Context, args Args) (string, error) {
				id, err := args.String("request_id")
				if err != nil {
					return "", err
				}
				status, err := b.PollVideo(ctx, id)
				if err != nil {
					return "", err
				}
				return render.JSON(status)
			},
		},
	}
}

func searchWeb(ctx context.Context, b Backend, args Args) (string, error) {
	var (
		req xai.SearchWebRequest
		err error
	)
	if req.Query, err = args.String("query"); err != nil {
		return "", err
	}
	if req.AllowedDomains, err = args.Strings("allowed_domains"); err != nil {
		return "", err
	}
	if req.ExcludedDomains, err = args.Strings("excluded_domains"); err != nil {
		return "", err
	}
	if req.EnableImageUnderstanding, err = args.Bool("enable_image_understanding"); err != nil {
		return "", err
	}
	if req.Model, err = args.String("model"); err != nil {
		return "", err
	}

	result, err := b.SearchWeb(ctx, &req)
	if err != nil {
		return "", err
	}
	return render.SearchText(result, ""), nil
}

func searchX(ctx context.Context, b Backend, args Args) (string, error) {
	var (
		req xai.SearchXRequest
		err error
	)
	if req.Query, err = args.String("query"); err != nil {
		return "", err
	}
	if req.AllowedHandles, err = args.Strings("allowed_x_handles"); err != nil {
		return "", err
	}
	if req.ExcludedHandles, err = args.Strings("excluded_x_handles"); err != nil {
		return "", err
	}
	if req.FromDate, err = args.String("from_date"); err != nil {
		return "", err
	}
	if req.ToDate, err = args.String("to_date"); err != nil {
		return "", err
	}
	if req.EnableImageUnderstanding, err = args.Bool("enable_image_understanding"); err != nil {
		return "", err
	}
	if req.EnableVideoUnderstanding, err = args.Bool("enable_video_understanding"); err != nil {
		return "", err
	}
	if req.Model, err = args.String("model"); err != nil {
		return "", err
	}

	result, err := b.SearchX(ctx, &req)
	if err != nil {
		return "", err
	}
	return render.SearchText(result, ""), nil
}

func imagine(ctx context.Context, b Backend, args Args) (string, error) {
	var (
		req xai.ImageRequest
		err error
	)
	if req.Prompt, err = args.String("prompt"); err != nil {
		return "", err
	}
	if req.N, err = args.Int("n", 1); err != nil {
		return "", err
	}
	if req.AspectRatio, err = args.String("aspect_ratio"); err != nil {
		return "", err
	}
	if req.ResponseFormat, err = args.String("response_format"); err != nil {
		return "", err
	}
	if req.Model, err = args.String("model"); err != nil {
		return "", err
	}

	result, err := b.GenerateImage(ctx, &req)
	if err != nil {
		return "", err
	}
	return render.JSON(result)
}

func editImage(ctx context.Context, b Backend, args Args) (string, error) {
	var (
		req xai.ImageEditRequest
		err error
	)
	if req.Prompt, err = args.String("prompt"); err != nil {
		return "", err
	}

	first, err := args.String("image")
	if err != nil {
		return "", err
	}
	more, err := args.Strings("images")
	if err != nil {
		return "", err
	}
	if first != "" {
		req.Images = append(req.Images, first)
	}
	req.Images = append(req.Images, more...)

	if req.N, err = args.Int("n", 1); err != nil {
		return "", err
	}
	if req.ResponseFormat, err = args.String("response_format"); err != nil {
		return "", err
	}
	if req.Model, err = args.String("model"); err != nil {
		return "", err
	}

	result, err := b.EditImage(ctx, &req)
	if err != nil {
		return "", err
	}
	return render.JSON(result)
}

func generateVideo(ctx context.Context, b Backend, args Args) (string, error) {
	var (
		req xai.VideoRequest
		err error
	)
	if req.Prompt, err = args.String("prompt"); err != nil {
		return "", err
	}
	if req.Duration, err = args.Int("duration", xai.DefaultDuration); err != nil {
		return "", err
	}
	if req.Resolution, err = args.String("resolution"); err != nil {
		return "", err
	}
	if req.AspectRatio, err = args.String("aspect_ratio"); err != nil {
		return "", err
	}
	if req.Image, err = args.String("image"); err != nil {
		return "", err
	}
	if req.Model, err = args.String("model"); err != nil {
		return "", err
	}

	job, err := b.GenerateVideo(ctx, &req)
	if err != nil {
		return "", err
	}
	return render.JSON(job)
}
