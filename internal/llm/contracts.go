package llm

import (
	"context"
	"fmt"

	"github.com/joseph-ayodele/label-approvals/internal/common"
)

// Media is the image attached to a vision prompt. Exactly one of Path, Base64 or URL is set.
type Media struct {
	Path        string
	Base64      string // bare base64 or a data URI
	URL         string
	ContentType string // optional; detected from the path or data URI when empty
}

// Validate checks that exactly one source is set.
func (m Media) Validate() error {
	n := 0
	for _, s := range []string{m.Path, m.Base64, m.URL} {
		if s != "" {
			n++
		}
	}
	if n != 1 {
		return common.NewAppError("INVALID_MEDIA", "provide exactly one of: media path, base64 or url", common.ErrInvalidInput)
	}
	return nil
}

// Options tune a single completion call. Zero values fall back to the provider's config.
type Options struct {
	Model        string
	Temperature  *float32
	MaxTokens    int
	SystemPrompt string
}

type Option func(*Options)

func WithModel(model string) Option { return func(o *Options) { o.Model = model } }

func WithTemperature(t float32) Option { return func(o *Options) { o.Temperature = &t } }

func WithMaxTokens(n int) Option { return func(o *Options) { o.MaxTokens = n } }

func WithSystemPrompt(s string) Option { return func(o *Options) { o.SystemPrompt = s } }

// ApplyOptions folds opts into an Options value.
func ApplyOptions(opts []Option) Options {
	var o Options
	for _, fn := range opts {
		if fn != nil {
			fn(&o)
		}
	}
	return o
}

// Provider is a chat-completion backend. Both calls return the raw assistant text,
// which is expected to contain a JSON object.
type Provider interface {
	CompletePrompt(ctx context.Context, prompt string, opts ...Option) (string, error)
	CompletePromptWithMedia(ctx context.Context, prompt string, media Media, opts ...Option) (string, error)
}

// ProviderError wraps a transport or API failure from an LLM backend.
type ProviderError struct {
	Provider string
	Status   int
	Err      error
}

func (e *ProviderError) Error() string {
	if e.Status > 0 {
		return fmt.Sprintf("llm provider %s (status %d): %v", e.Provider, e.Status, e.Err)
	}
	return fmt.Sprintf("llm provider %s: %v", e.Provider, e.Err)
}

func (e *ProviderError) Unwrap() error { return e.Err }

func (e *ProviderError) Is(target error) bool { return target == common.ErrProvider }
