package httpapi

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"image"
	"image/color"
	"image/png"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/joseph-ayodele/label-approvals/constants"
	"github.com/joseph-ayodele/label-approvals/internal/common"
	"github.com/joseph-ayodele/label-approvals/internal/entity"
	"github.com/joseph-ayodele/label-approvals/internal/export"
	"github.com/joseph-ayodele/label-approvals/internal/repository"
	"github.com/joseph-ayodele/label-approvals/internal/services/jobs"
	"github.com/joseph-ayodele/label-approvals/internal/utils"
)

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	os.Exit(m.Run())
}

type recordingAnalyzer struct {
	overrides []*constants.AnalysisMode
}

func (r *recordingAnalyzer) Analyze(_ context.Context, _ *entity.Job, override *constants.AnalysisMode) (*entity.Job, bool) {
	r.overrides = append(r.overrides, override)
	return nil, false
}

func setupTestRouter(t *testing.T, health HealthFunc) (*gin.Engine, *recordingAnalyzer) {
	t.Helper()
	ctx := context.Background()
	db, err := repository.Open(ctx, repository.Config{DSN: ":memory:"}, nil)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close(nil) })
	require.NoError(t, repository.Migrate(ctx, db, nil))

	an := &recordingAnalyzer{}
	js := jobs.NewService(repository.NewJobRepository(db, nil), an, nil)
	h := NewHandler(js, export.NewService(js, nil), nil, health, nil)
	return SetupRouter(Config{AllowedOrigins: []string{"http://localhost:3000"}}, h, nil), an
}

func do(t *testing.T, r http.Handler, method, path string, body any, headers ...string) *httptest.ResponseRecorder {
	t.Helper()
	var rd *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		rd = bytes.NewReader(raw)
	} else {
		rd = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, rd)
	req.Header.Set("Content-Type", "application/json")
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decodeJob(t *testing.T, w *httptest.ResponseRecorder) *utils.JobDTO {
	t.Helper()
	var resp utils.JobResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp), w.Body.String())
	require.NotNil(t, resp.Job)
	return resp.Job
}

func pngDataURI(t *testing.T) string {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 5, 5))
	img.Set(1, 1, color.White)
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(buf.Bytes())
}

func TestHealthCheckEndpoint(t *testing.T) {
	t.Run("returns healthy status", func(t *testing.T) {
		r, _ := setupTestRouter(t, func(context.Context) error { return nil })
		w := do(t, r, http.MethodGet, "/health", nil)
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), `"healthy"`)
		assert.NotEmpty(t, w.Header().Get(HeaderRequestID))
	})

	t.Run("reports database failure", func(t *testing.T) {
		r, _ := setupTestRouter(t, func(context.Context) error { return errors.New("db down") })
		w := do(t, r, http.MethodGet, "/health", nil)
		assert.Equal(t, http.StatusServiceUnavailable, w.Code)
		assert.Contains(t, w.Body.String(), "db down")
	})
}

func TestMetricsEndpoint(t *testing.T) {
	r, _ := setupTestRouter(t, nil)
	w := do(t, r, http.MethodGet, "/metrics", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "go_goroutines")
}

func TestJobRoutes(t *testing.T) {
	r, an := setupTestRouter(t, nil)

	w := do(t, r, http.MethodPost, "/api/v1/jobs", map[string]any{
		"brand_name":          "Stone Creek",
		"product_class":       "Bourbon",
		"alcohol_content_abv": "45%",
		"net_contents":        "1 L",
		"label_image_base64":  pngDataURI(t),
		"analysis_mode":       "pytesseract",
	}, HeaderReviewerID, "alice")
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	job := decodeJob(t, w)
	assert.Equal(t, "alice", job.CreatedBy.EntityID)
	assert.Equal(t, "http", job.CreatedBy.EntityDomain)
	require.NotNil(t, job.JobMetadata.AnalysisMode)
	assert.Equal(t, constants.AnalysisModeOCR, *job.JobMetadata.AnalysisMode)

	w = do(t, r, http.MethodGet, "/api/v1/jobs/"+job.ID, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, job.ID, decodeJob(t, w).ID)

	w = do(t, r, http.MethodGet, "/api/v1/jobs?brand_name=stone&limit=10", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var list utils.ListJobsResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &list))
	assert.Equal(t, 1, list.TotalCount)
	assert.Equal(t, 10, list.Limit)

	w = do(t, r, http.MethodPost, "/api/v1/jobs/"+job.ID+"/analyze?analysis_mode=llm", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	w = do(t, r, http.MethodPost, "/api/v1/jobs/"+job.ID+"/analyze", map[string]any{"analysis_mode": "ocr"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	require.Len(t, an.overrides, 3)
	assert.Nil(t, an.overrides[0])
	assert.Equal(t, constants.AnalysisModeLLM, *an.overrides[1])
	assert.Equal(t, constants.AnalysisModeOCR, *an.overrides[2])

	w = do(t, r, http.MethodPost, "/api/v1/jobs/"+job.ID+"/status", map[string]any{"status": "rejected", "comment": "warning missing"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	rejected := decodeJob(t, w)
	assert.Equal(t, "rejected", rejected.Status)
	assert.Contains(t, rejected.JobMetadata.ReviewComments, "warning missing")

	w = do(t, r, http.MethodPost, "/api/v1/jobs/"+job.ID+"/comments", map[string]any{"comment": "resubmit requested"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = do(t, r, http.MethodGet, "/api/v1/jobs/export.xlsx?status=rejected", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, utils.XLSXContentType, w.Header().Get("Content-Type"))
	assert.True(t, strings.HasPrefix(w.Header().Get("Content-Disposition"), `attachment; filename="label_reviews_`))

	f, err := excelize.OpenReader(bytes.NewReader(w.Body.Bytes()))
	require.NoError(t, err)
	defer f.Close()
	rows, err := f.GetRows(export.SheetName)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "Stone Creek", rows[1][2])
}

func TestJobRoutes_Errors(t *testing.T) {
	r, _ := setupTestRouter(t, nil)

	tests := []struct {
		name   string
		method string
		path   string
		body   any
		want   int
	}{
		{"missing brand", http.MethodPost, "/api/v1/jobs", map[string]any{"product_class": "Gin"}, http.StatusBadRequest},
		{"bad abv", http.MethodPost, "/api/v1/jobs", map[string]any{"brand_name": "A", "product_class": "Gin", "alcohol_content_abv": "140%"}, http.StatusBadRequest},
		{"bad id", http.MethodGet, "/api/v1/jobs/nope", nil, http.StatusBadRequest},
		{"unknown job", http.MethodGet, "/api/v1/jobs/" + uuid.NewString(), nil, http.StatusNotFound},
		{"bad status filter", http.MethodGet, "/api/v1/jobs?status=shipped", nil, http.StatusBadRequest},
		{"bad mode", http.MethodPost, "/api/v1/jobs/" + uuid.NewString() + "/analyze?analysis_mode=vision", nil, http.StatusBadRequest},
		{"status required", http.MethodPost, "/api/v1/jobs/" + uuid.NewString() + "/status", map[string]any{}, http.StatusBadRequest},
		{"unknown status", http.MethodPost, "/api/v1/jobs/" + uuid.NewString() + "/status", map[string]any{"status": "maybe"}, http.StatusBadRequest},
		{"ingest disabled", http.MethodPost, "/api/v1/ingest/directory", map[string]any{"root_path": "/tmp"}, http.StatusServiceUnavailable},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := do(t, r, tt.method, tt.path, tt.body)
			assert.Equal(t, tt.want, w.Code, w.Body.String())
		})
	}
}

func TestCORS(t *testing.T) {
	r, _ := setupTestRouter(t, nil)

	req := httptest.NewRequest(http.MethodOptions, "/api/v1/jobs", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, "http://localhost:3000", w.Header().Get("Access-Control-Allow-Origin"))

	assert.Nil(t, CORSMiddleware(nil))
	assert.Nil(t, CORSMiddleware([]string{" "}))
	assert.NotNil(t, CORSMiddleware([]string{"*"}))
}

func TestStatusFor(t *testing.T) {
	assert.Equal(t, http.StatusNotFound, StatusFor(common.NewAppError("NOT_FOUND", "x", common.ErrNotFound)))
	assert.Equal(t, http.StatusBadRequest, StatusFor(common.NewAppError("VALIDATION_ERROR", "x", common.ErrValidation)))
	assert.Equal(t, http.StatusBadGateway, StatusFor(common.ErrProvider))
	assert.Equal(t, http.StatusInternalServerError, StatusFor(errors.New("boom")))
}
