package extract

import (
	"context"
	"sync/atomic"

	"github.com/joseph-ayodele/label-approvals/internal/llm"
	"github.com/joseph-ayodele/label-approvals/internal/media"
	"github.com/joseph-ayodele/label-approvals/internal/ocr"
)

type fakeEngine struct {
	res   ocr.Result
	calls int
}

func (f *fakeEngine) ExtractText(_ context.Context, _ media.Payload) ocr.Result {
	f.calls++
	return f.res
}

type fakeProvider struct {
	reply string
	err   error
	media llm.Media
	calls atomic.Int32
}

func (f *fakeProvider) CompletePrompt(context.Context, string, ...llm.Option) (string, error) {
	f.calls.Add(1)
	return f.reply, f.err
}

func (f *fakeProvider) CompletePromptWithMedia(_ context.Context, _ string, m llm.Media, _ ...llm.Option) (string, error) {
	f.calls.Add(1)
	f.media = m
	return f.reply, f.err
}
