package tools

import (
	"context"
	"sort"

	"go.uber.org/zap"

	"github.com/lk2023060901/grok-bridge/internal/pkg/logger"
	"github.com/lk2023060901/grok-bridge/internal/xai"
)

// Backend the operations tools dispatch to. *xai.Client satisfies it.
type Backend interface {
	SearchWeb(ctx context.Context, req *xai.SearchWebRequest) (*xai.SearchResult, error)
	SearchX(ctx context.Context, req *xai.SearchXRequest) (*xai.SearchResult, error)
	GenerateImage(ctx context.Context, req *xai.ImageRequest) (*xai.ImageResult, error)
	EditImage(ctx context.Context, req *xai.ImageEditRequest) (*xai.ImageResult, error)
	GenerateVideo(ctx context.Context, req *xai.VideoRequest) (*xai.VideoJob, error)
	PollVideo(ctx context.Context, requestID string) (*xai.VideoStatus, error)
}

// ParamType JSON schema type of a tool parameter
type ParamType string

const (
	TypeString  ParamType = "string"
	TypeNumber  ParamType = "number"
	TypeBoolean ParamType = "boolean"
	TypeArray   ParamType = "array" // of strings
)

// Param one declared input field
type Param struct {
	Name        string
	Type        ParamType
	Description string
	Required    bool
}

// Handler runs a tool and returns its text output
type Handler func(ctx context.Context, args Args) (string, error)

// Tool a named operation with a declared input schema
type Tool struct {
	Name        string
	Description string
	Params      []Param
	Handler     Handler
}

// InputSchema returns the JSON schema object for the tool's arguments
func (t Tool) InputSchema() map[string]any {
	props := make(map[string]any, len(t.Params))
	required := make([]string, 0)
	for _, p := range t.Params {
		prop := map[string]any{
			"type":        string(p.Type),
			"description": p.Description,
		}
		if p.Type == TypeArray {
			prop["items"] = map[string]any{"type": "string"}
		}
		props[p.Name] = prop
		if p.Required {
			required = append(required, p.Name)
		}
	}
	sort.Strings(required)

	return map[string]any{
		"type":       "object",
		"properties": props,
		"required":   required,
	}
}

// Result what a tool call produced. IsError results carry the message
// instead of output.
type Result struct {
	Text    string
	IsError bool
}

// Registry dispatches tool calls by name
type Registry struct {
	tools  []Tool
	byName map[string]Tool
	logger *logger.Logger
}

// NewRegistry builds the registry with every tool bound to backend
func NewRegistry(backend Backend, log *logger.Logger) *Registry {
	if log == nil {
		log = logger.Nop()
	}

	r := &Registry{
		byName: make(map[string]Tool),
		logger: log.Named("tools"),
	}
	for _, t := range definitions(backend) {
		r.tools = append(r.tools, t)
		r.byName[t.Name] = t
	}

	return r
}

// Tools returns the tools in declaration order
func (r *Registry) Tools() []Tool {
	return append([]Tool(nil), r.tools...)
}

// Lookup finds a tool by name
func (r *Registry) Lookup(name string) (Tool, bool) {
	t, ok := r.byName[name]
	return t, ok
}

// Call runs the named tool. Failures never escape as Go errors: they come
// back as IsError results.
func (r *Registry) Call(ctx context.Context, name string, args map[string]any) Result {
	if logger.GetRequestID(ctx) == "" {
		ctx = logger.NewRequestContext(ctx)
	}
	ctx = logger.WithTool(ctx, name)
	log := r.logger.WithContext(ctx)

	tool, ok := r.Lookup(name)
	if !ok {
		log.Warn("unknown tool")
		return Result{Text: "Unknown tool: " + name, IsError: true}
	}

	log.Debug("tool call", zap.Int("args", len(args)))

	text, err := tool.Handler(ctx, Args(args))
	if err != nil {
		log.Warn("tool failed", zap.Error(err))
		return Result{Text: "Error: " + err.Error(), IsError: true}
	}

	return Result{Text: text}
}
