package openai

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/joseph-ayodele/label-approvals/constants"
	"github.com/joseph-ayodele/label-approvals/internal/common"
	"github.com/joseph-ayodele/label-approvals/internal/llm"
	"github.com/joseph-ayodele/label-approvals/internal/media"
)

const providerName = "openai"

var _ llm.Provider = (*Client)(nil)

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Usage struct {
		PromptTokens     int `json:"prompt_tokens"`
		CompletionTokens int `json:"completion_tokens"`
		TotalTokens      int `json:"total_tokens"`
	} `json:"usage"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

// CompletePrompt sends a text-only chat completion and returns the assistant text.
func (c *Client) CompletePrompt(ctx context.Context, prompt string, opts ...llm.Option) (string, error) {
	return c.complete(ctx, "prompt", prompt, nil, llm.ApplyOptions(opts))
}

// CompletePromptWithMedia sends the prompt together with one image or PDF.
func (c *Client) CompletePromptWithMedia(ctx context.Context, prompt string, m llm.Media, opts ...llm.Option) (string, error) {
	if err := m.Validate(); err != nil {
		return "", err
	}
	part, err := mediaContent(m)
	if err != nil {
		c.logger.Error("llm.openai.media_invalid", "error", err)
		return "", err
	}
	return c.complete(ctx, "media", prompt, part, llm.ApplyOptions(opts))
}

func (c *Client) complete(ctx context.Context, kind, prompt string, mediaPart map[string]any, o llm.Options) (string, error) {
	rid := common.RequestIDFromContext(ctx)
	if rid == "" {
		rid = uuid.New().String()
		ctx = common.WithRequestID(ctx, rid)
	}
	start := time.Now()

	model := c.cfg.Model
	if o.Model != "" {
		model = o.Model
	}
	temp := c.cfg.Temperature
	if o.Temperature != nil {
		temp = *o.Temperature
	}
	maxTokens := c.cfg.MaxTokens
	if o.MaxTokens > 0 {
		maxTokens = o.MaxTokens
	}

	messages := make([]map[string]any, 0, 2)
	if o.SystemPrompt != "" {
		messages = append(messages, map[string]any{"role": "system", "content": o.SystemPrompt})
	}
	if mediaPart != nil {
		messages = append(messages, map[string]any{
			"role": "user",
			"content": []map[string]any{
				{"type": "text", "text": prompt},
				mediaPart,
			},
		})
	} else {
		messages = append(messages, map[string]any{"role": "user", "content": prompt})
	}

	body := map[string]any{
		"model":                 model,
		"temperature":           temp,
		"max_completion_tokens": maxTokens,
		"messages":              messages,
	}

	c.logger.Info("llm.complete.start",
		"req_id", rid,
		"kind", kind,
		"model", model,
		"temp", temp,
		"prompt_len", len(prompt),
	)

	if err := c.limiter.Wait(ctx); err != nil {
		return "", &llm.ProviderError{Provider: providerName, Err: fmt.Errorf("rate limit wait: %w", err)}
	}

	endpoint := strings.TrimRight(c.cfg.BaseURL, "/") + "/chat/completions"
	headers := map[string]string{"Authorization": "Bearer " + c.cfg.APIKey}
	raw, status, err := llm.SendJSON(ctx, c.http, endpoint, body, headers, c.logger)
	if err != nil {
		c.logger.Error("llm.complete.http_error",
			"req_id", rid, "status", status, "error", err, "body", common.Truncate(string(raw), 512, "…"),
			"elapsed_ms", time.Since(start).Milliseconds(),
		)
		return "", &llm.ProviderError{Provider: providerName, Status: status, Err: apiError(raw, err)}
	}

	var cc chatResponse
	if err := json.Unmarshal(raw, &cc); err != nil {
		c.logger.Error("llm.complete.decode_error", "req_id", rid, "error", err, "raw_bytes", len(raw))
		return "", &llm.ProviderError{Provider: providerName, Status: status, Err: fmt.Errorf("decode openai response: %w", err)}
	}
	if len(cc.Choices) == 0 {
		c.logger.Error("llm.complete.no_choices", "req_id", rid, "raw", common.Truncate(string(raw), 512, "…"))
		return "", &llm.ProviderError{Provider: providerName, Status: status, Err: errors.New("no choices in openai response")}
	}

	content := strings.TrimSpace(cc.Choices[0].Message.Content)
	c.logger.Info("llm.complete.usage",
		"req_id", rid,
		"kind", kind,
		"total_tokens", cc.Usage.TotalTokens,
		"prompt_tokens", cc.Usage.PromptTokens,
		"completion_tokens", cc.Usage.CompletionTokens,
		"response", common.Truncate(content, 500, "…"),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return content, nil
}

// mediaContent builds the image_url content part. Base64 and file payloads are sent as data URIs.
func mediaContent(m llm.Media) (map[string]any, error) {
	var url string
	switch {
	case m.URL != "":
		url = m.URL
	case m.Base64 != "":
		b64, ct := media.StripDataURIPrefix(m.Base64)
		if m.ContentType != "" {
			ct = m.ContentType
		}
		ct = media.NormalizeContentType(ct)
		if ct == "" {
			ct = constants.DefaultMediaType
		}
		if err := checkSupported(ct); err != nil {
			return nil, err
		}
		url = "data:" + ct + ";base64," + b64
	case m.Path != "":
		ct := media.NormalizeContentType(m.ContentType)
		if ct == "" {
			ct = constants.MediaTypeForExt(filepath.Ext(m.Path))
		}
		if ct == "" {
			return nil, common.NewAppError("INVALID_MEDIA", "could not determine media type for "+m.Path, common.ErrInvalidInput)
		}
		if err := checkSupported(ct); err != nil {
			return nil, err
		}
		b, err := os.ReadFile(m.Path)
		if err != nil {
			return nil, fmt.Errorf("read media file: %w", err)
		}
		url = media.EncodeDataURI(b, ct)
	}
	return map[string]any{
		"type":      "image_url",
		"image_url": map[string]any{"url": url},
	}, nil
}

func checkSupported(ct string) error {
	if _, ok := constants.SupportedMediaTypes[ct]; !ok {
		return common.NewAppError("UNSUPPORTED_MEDIA", "unsupported media type: "+ct, common.ErrInvalidInput)
	}
	return nil
}

func apiError(raw []byte, err error) error {
	var cc chatResponse
	if json.Unmarshal(raw, &cc) == nil && cc.Error != nil && cc.Error.Message != "" {
		return fmt.Errorf("%w: %s", err, cc.Error.Message)
	}
	return err
}
