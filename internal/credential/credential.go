package credential

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/lk2023060901/grok-bridge/internal/pkg/logger"
)

const (
	// DefaultEnvVar environment variable holding the API key
	DefaultEnvVar = "XAI_API_KEY"

	// DefaultSecretRef 1Password reference read when the env var is empty
	DefaultSecretRef = "op://Agent Secrets/X API/api key"

	// DefaultTimeout bound on the secret manager call
	DefaultTimeout = 10 * time.Second
)

// ErrMissingCredential no API key could be found
var ErrMissingCredential = errors.New("credential: missing api key")

// MissingCredentialError lists the ways to provide a key
type MissingCredentialError struct {
	EnvVar    string
	SecretRef string
}

func (e *MissingCredentialError) Error() string {
	return fmt.Sprintf("%s not found. Set it via:\n"+
		"  1. 1Password: op item edit \"X API\" --vault \"Agent Secrets\" \"api key=your-key\" (read from %s)\n"+
		"  2. Environment: export %s=\"your-key\"\n"+
		"  Get your key from https://console.x.ai/",
		e.EnvVar, e.SecretRef, e.EnvVar)
}

func (e *MissingCredentialError) Is(target error) bool {
	return target == ErrMissingCredential
}

// Runner executes an external command and returns its stdout
type Runner func(ctx context.Context, name string, args ...string) ([]byte, error)

func execRunner(ctx context.Context, name string, args ...string) ([]byte, error) {
	return exec.CommandContext(ctx, name, args...).Output()
}

// Resolver finds the API key. Order: a statically configured key, the
// environment variable, then the secret manager CLI.
type Resolver struct {
	static    string
	envVar    string
	secretRef string
	timeout   time.Duration
	run       Runner
	lookupEnv func(string) (string, bool)
	logger    *logger.Logger
}

// Option customizes a Resolver
type Option func(*Resolver)

// WithStatic uses key before anything else when non-empty
func WithStatic(key string) Option {
	return func(r *Resolver) {
		r.static = key
	}
}

// WithEnvVar changes the environment variable consulted
func WithEnvVar(name string) Option {
	return func(r *Resolver) {
		if name != "" {
			r.envVar = name
		}
	}
}

// WithSecretRef changes the secret manager reference. An empty ref disables
// the secret manager fallback.
func WithSecretRef(ref string) Option {
	return func(r *Resolver) {
		r.secretRef = ref
	}
}

// WithTimeout bounds the secret manager call
func WithTimeout(d time.Duration) Option {
	return func(r *Resolver) {
		if d > 0 {
			r.timeout = d
		}
	}
}

// WithRunner replaces the command runner
func WithRunner(run Runner) Option {
	return func(r *Resolver) {
		r.run = run
	}
}

// WithLookupEnv replaces os.LookupEnv
func WithLookupEnv(fn func(string) (string, bool)) Option {
	return func(r *Resolver) {
		r.lookupEnv = fn
	}
}

// NewResolver creates a resolver with the default sources
func NewResolver(log *logger.Logger, opts ...Option) *Resolver {
	if log == nil {
		log = logger.Nop()
	}

	r := &Resolver{
		envVar:    DefaultEnvVar,
		secretRef: DefaultSecretRef,
		timeout:   DefaultTimeout,
		run:       execRunner,
		lookupEnv: os.LookupEnv,
		logger:    log.Named("credential"),
	}
	for _, opt := range opts {
		opt(r)
	}

	return r
}

// Resolve returns the first non-empty key. Secret manager failures are
// logged at debug level and end in *MissingCredentialError.
func (r *Resolver) Resolve(ctx context.Context) (string, error) {
	if key := strings.TrimSpace(r.static); key != "" {
		r.logger.Debug("api key from configuration")
		return key, nil
	}

	if key, ok := r.lookupEnv(r.envVar); ok && strings.TrimSpace(key) != "" {
		r.logger.Debug("api key from environment", zap.String("env", r.envVar))
		return strings.TrimSpace(key), nil
	}

	if r.secretRef != "" {
		key, err := r.readSecret(ctx)
		if err == nil && key != "" {
			r.logger.Debug("api key from secret manager")
			return key, nil
		}
		r.logger.Debug("secret manager unavailable", zap.Error(err))
	}

	return "", &MissingCredentialError{EnvVar: r.envVar, SecretRef: r.secretRef}
}

func (r *Resolver) readSecret(ctx context.Context) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	out, err := r.run(ctx, "op", "read", r.secretRef)
	if err != nil {
		return "", fmt.Errorf("op read: %w", err)
	}

	return strings.TrimSpace(string(out)), nil
}
