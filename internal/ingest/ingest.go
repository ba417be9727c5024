// Package ingest turns submission manifests dropped into an inbox directory into label approval jobs.
package ingest

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/joseph-ayodele/label-approvals/internal/entity"
	"github.com/joseph-ayodele/label-approvals/internal/media"
	"github.com/joseph-ayodele/label-approvals/internal/services/jobs"
	"github.com/joseph-ayodele/label-approvals/internal/utils"
)

const (
	ManifestExt   = ".json"
	DoneSuffix    = ".done"
	FailedSuffix  = ".failed"
	maxManifestSz = 1 << 20
)

// JobCreator is the slice of the jobs service the ingestor needs.
type JobCreator interface {
	Create(ctx context.Context, in jobs.CreateJobInput) (*entity.Job, error)
}

// Result is the per-manifest ingest outcome.
type Result struct {
	SourcePath string `json:"source_path"`
	MovedTo    string `json:"moved_to,omitempty"`
	JobID      string `json:"job_id,omitempty"`
	Status     string `json:"status,omitempty"`
	Err        string `json:"error,omitempty"`
}

// DirStats summarizes a directory ingest.
type DirStats struct {
	Scanned   uint32 `json:"scanned"`
	Matched   uint32 `json:"matched"`
	Succeeded uint32 `json:"succeeded"`
	Failed    uint32 `json:"failed"`
}

// Manifest is the on-disk shape of a submission. Image is resolved relative to the manifest file;
// label_image_base64 may be given inline instead.
type Manifest struct {
	utils.CreateJobRequest
	Image string `json:"image"`
}

// IsManifest reports whether path names a visible *.json file.
func IsManifest(path string) bool {
	base := filepath.Base(path)
	return !IsHidden(base) && strings.EqualFold(filepath.Ext(base), ManifestExt)
}

// IsHidden reports whether a file or directory name starts with '.'.
func IsHidden(path string) bool {
	return strings.HasPrefix(filepath.Base(path), ".")
}

// LoadManifest reads a manifest and builds the job input, loading the referenced image as a data URI.
func LoadManifest(path string) (jobs.CreateJobInput, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return jobs.CreateJobInput{}, err
	}
	if len(raw) > maxManifestSz {
		return jobs.CreateJobInput{}, fmt.Errorf("manifest larger than %d bytes", maxManifestSz)
	}

	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.DisallowUnknownFields()
	var m Manifest
	if err := dec.Decode(&m); err != nil {
		return jobs.CreateJobInput{}, fmt.Errorf("decode manifest: %w", err)
	}

	if img := strings.TrimSpace(m.Image); img != "" {
		if !filepath.IsAbs(img) {
			img = filepath.Join(filepath.Dir(path), img)
		}
		uri, err := media.ReadFileAsDataURI(img)
		if err != nil {
			return jobs.CreateJobInput{}, fmt.Errorf("load image %s: %w", m.Image, err)
		}
		m.LabelImageBase64 = &uri
	}
	return m.ToInput(), nil
}
