package ingest

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/png"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joseph-ayodele/label-approvals/constants"
	"github.com/joseph-ayodele/label-approvals/internal/common"
	"github.com/joseph-ayodele/label-approvals/internal/entity"
	"github.com/joseph-ayodele/label-approvals/internal/services/jobs"
)

type fakeCreator struct {
	mu     sync.Mutex
	inputs []jobs.CreateJobInput
	actors []entity.Actor
	err    error
}

func (f *fakeCreator) Create(ctx context.Context, in jobs.CreateJobInput) (*entity.Job, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.inputs = append(f.inputs, in)
	f.actors = append(f.actors, jobs.ActorFromContext(ctx))
	if f.err != nil {
		return nil, f.err
	}
	return &entity.Job{ID: uuid.New(), BrandName: in.BrandName, Status: constants.JobStatusPending}, nil
}

func (f *fakeCreator) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.inputs)
}

func writePNG(t *testing.T, path string) {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 3, 2))
	img.Set(0, 0, color.White)
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, buf.Bytes(), 0o644))
}

func writeFile(t *testing.T, path, body string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
}

const manifestBody = `{
  "brand_name": "Old Tom Distillery",
  "product_class": "Kentucky Straight Bourbon Whiskey",
  "alcohol_content_abv": "45%",
  "net_contents": "750 mL",
  "analysis_mode": "pytesseract",
  "image": "label.png"
}`

func TestLoadManifest(t *testing.T) {
	dir := t.TempDir()
	writePNG(t, filepath.Join(dir, "label.png"))

	t.Run("relative image", func(t *testing.T) {
		path := filepath.Join(dir, "bourbon.json")
		writeFile(t, path, manifestBody)

		in, err := LoadManifest(path)
		require.NoError(t, err)
		assert.Equal(t, "Old Tom Distillery", in.BrandName)
		assert.Equal(t, "45%", *in.AlcoholContentABV)
		require.NotNil(t, in.AnalysisMode)
		assert.Equal(t, constants.AnalysisModeOCR, *in.AnalysisMode)
		require.NotNil(t, in.LabelImageBase64)
		assert.True(t, strings.HasPrefix(*in.LabelImageBase64, "data:image/png;base64,"))
	})

	t.Run("inline image", func(t *testing.T) {
		path := filepath.Join(dir, "inline.json")
		writeFile(t, path, `{"brand_name":"A","product_class":"Vodka","label_image_base64":"data:image/png;base64,AAAA"}`)

		in, err := LoadManifest(path)
		require.NoError(t, err)
		assert.Equal(t, "data:image/png;base64,AAAA", *in.LabelImageBase64)
		assert.Nil(t, in.AnalysisMode)
	})

	t.Run("unknown field", func(t *testing.T) {
		path := filepath.Join(dir, "typo.json")
		writeFile(t, path, `{"brand":"A"}`)
		_, err := LoadManifest(path)
		assert.Error(t, err)
	})

	t.Run("missing image", func(t *testing.T) {
		path := filepath.Join(dir, "noimg.json")
		writeFile(t, path, `{"brand_name":"A","product_class":"Vodka","image":"nope.png"}`)
		_, err := LoadManifest(path)
		assert.ErrorIs(t, err, fs.ErrNotExist)
	})
}

func TestIngestor_IngestPath(t *testing.T) {
	t.Run("success moves manifest to done", func(t *testing.T) {
		dir := t.TempDir()
		writePNG(t, filepath.Join(dir, "label.png"))
		path := filepath.Join(dir, "bourbon.json")
		writeFile(t, path, manifestBody)

		creator := &fakeCreator{}
		res, err := NewIngestor(creator, nil).IngestPath(context.Background(), path)
		require.NoError(t, err)

		assert.NotEmpty(t, res.JobID)
		assert.Equal(t, "pending", res.Status)
		assert.Equal(t, path+DoneSuffix, res.MovedTo)
		assert.FileExists(t, path+DoneSuffix)
		assert.NoFileExists(t, path)

		require.Len(t, creator.actors, 1)
		assert.Equal(t, entity.Actor{Entity: "inbox", EntityID: "bourbon.json", EntityDomain: "ingest"}, creator.actors[0])
	})

	t.Run("create failure moves manifest to failed", func(t *testing.T) {
		dir := t.TempDir()
		writePNG(t, filepath.Join(dir, "label.png"))
		path := filepath.Join(dir, "bourbon.json")
		writeFile(t, path, manifestBody)

		creator := &fakeCreator{err: common.NewAppError("VALIDATION_ERROR", "brand_name is required", common.ErrValidation)}
		res, err := NewIngestor(creator, nil).IngestPath(context.Background(), path)
		require.Error(t, err)
		assert.ErrorIs(t, err, common.ErrValidation)
		assert.Contains(t, res.Err, "brand_name")
		assert.FileExists(t, path+FailedSuffix)
		assert.NoFileExists(t, path)
	})

	t.Run("bad manifest is invalid input", func(t *testing.T) {
		dir := t.TempDir()
		path := filepath.Join(dir, "broken.json")
		writeFile(t, path, `{not json`)

		creator := &fakeCreator{}
		_, err := NewIngestor(creator, nil).IngestPath(context.Background(), path)
		assert.ErrorIs(t, err, common.ErrInvalidInput)
		assert.FileExists(t, path+FailedSuffix)
		assert.Zero(t, creator.count())
	})

	t.Run("not a manifest is left alone", func(t *testing.T) {
		dir := t.TempDir()
		path := filepath.Join(dir, "label.png")
		writePNG(t, path)

		_, err := NewIngestor(&fakeCreator{}, nil).IngestPath(context.Background(), path)
		assert.ErrorIs(t, err, common.ErrInvalidInput)
		assert.FileExists(t, path)
	})

	t.Run("vanished manifest", func(t *testing.T) {
		_, err := NewIngestor(&fakeCreator{}, nil).IngestPath(context.Background(), filepath.Join(t.TempDir(), "gone.json"))
		assert.True(t, errors.Is(err, fs.ErrNotExist))
	})
}

func TestIngestor_IngestDirectory(t *testing.T) {
	root := t.TempDir()
	writePNG(t, filepath.Join(root, "label.png"))
	writeFile(t, filepath.Join(root, "a.json"), manifestBody)
	writePNG(t, filepath.Join(root, "nested", "label.png"))
	writeFile(t, filepath.Join(root, "nested", "b.json"), manifestBody)
	writeFile(t, filepath.Join(root, "nested", "c.json"), `{"brand_name": 1}`)
	writeFile(t, filepath.Join(root, ".hidden", "d.json"), manifestBody)
	writeFile(t, filepath.Join(root, "notes.txt"), "ignore me")

	creator := &fakeCreator{}
	results, stats, err := NewIngestor(creator, nil).IngestDirectory(context.Background(), root, true)
	require.NoError(t, err)

	assert.Equal(t, uint32(3), stats.Matched)
	assert.Equal(t, uint32(2), stats.Succeeded)
	assert.Equal(t, uint32(1), stats.Failed)
	assert.Equal(t, uint32(6), stats.Scanned)
	assert.Len(t, results, 3)
	assert.Equal(t, 2, creator.count())

	assert.FileExists(t, filepath.Join(root, "a.json"+DoneSuffix))
	assert.FileExists(t, filepath.Join(root, "nested", "b.json"+DoneSuffix))
	assert.FileExists(t, filepath.Join(root, "nested", "c.json"+FailedSuffix))
	assert.FileExists(t, filepath.Join(root, ".hidden", "d.json"))

	_, _, err = NewIngestor(creator, nil).IngestDirectory(context.Background(), filepath.Join(root, "missing"), true)
	assert.ErrorIs(t, err, fs.ErrNotExist)
}

func TestIsManifest(t *testing.T) {
	assert.True(t, IsManifest("/inbox/a.json"))
	assert.True(t, IsManifest("/inbox/A.JSON"))
	assert.False(t, IsManifest("/inbox/.a.json"))
	assert.False(t, IsManifest("/inbox/a.json.done"))
	assert.False(t, IsManifest("/inbox/a.png"))
}
