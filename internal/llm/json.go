package llm

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/joseph-ayodele/label-approvals/internal/common"
)

var (
	reFencedObject = regexp.MustCompile("(?s)```(?:json)?\\s*(\\{.*?\\})\\s*```")
	reBareObject   = regexp.MustCompile(`(?s)\{.*\}`)
)

// ParseError is returned when a model response holds no decodable JSON object.
type ParseError struct {
	Raw string
	Err error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse llm response: %v", e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

func (e *ParseError) Is(target error) bool { return target == common.ErrParse }

// ExtractJSON pulls the JSON object out of a model response. A fenced ```json block wins,
// then the widest {...} span, then the trimmed response as-is.
func ExtractJSON(resp string) string {
	if m := reFencedObject.FindStringSubmatch(resp); m != nil {
		return m[1]
	}
	if m := reBareObject.FindString(resp); m != "" {
		return m
	}
	return strings.TrimSpace(resp)
}
