package export

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/joseph-ayodele/label-approvals/constants"
	"github.com/joseph-ayodele/label-approvals/internal/entity"
	"github.com/joseph-ayodele/label-approvals/internal/repository"
)

type pagedLister struct {
	jobs    []*entity.Job
	filters []repository.ListFilter
	err     error
}

func (p *pagedLister) List(_ context.Context, f repository.ListFilter) ([]*entity.Job, int, error) {
	p.filters = append(p.filters, f)
	if p.err != nil {
		return nil, 0, p.err
	}
	// small pages to exercise paging
	const page = 2
	end := f.Offset + page
	if end > len(p.jobs) {
		end = len(p.jobs)
	}
	if f.Offset >= len(p.jobs) {
		return nil, len(p.jobs), nil
	}
	return p.jobs[f.Offset:end], len(p.jobs), nil
}

func job(brand string, res *entity.AnalysisResult) *entity.Job {
	mode := constants.AnalysisModeOCR
	return &entity.Job{
		ID:           uuid.New(),
		BrandName:    brand,
		ProductClass: "Gin",
		Status:       constants.JobStatusPending,
		CreatedAt:    time.Date(2026, 3, 4, 5, 6, 0, 0, time.UTC),
		Metadata: entity.JobMetadata{
			ReviewComments: []string{"Review initiated", "checked"},
			AnalysisMode:   &mode,
			ProductInfo: &entity.BrandData{
				BrandName: entity.Ptr(brand),
				Products: []entity.ProductInfo{{
					AlcoholContentABV: entity.Ptr("47%"),
					NetContents:       entity.Ptr("750 mL"),
				}},
			},
			LabelImages: []entity.LabelImage{{AnalysisResult: res}},
		},
	}
}

func TestExportJobsXLSX(t *testing.T) {
	res := &entity.AnalysisResult{
		BrandNameFound:              true,
		BrandNameFoundReasoning:     entity.Ptr("found"),
		NetContentsFound:            false,
		HealthWarningFound:          nil,
		HealthWarningFoundReasoning: entity.Ptr("Not applicable - no warnings provided in the form."),
	}
	lister := &pagedLister{jobs: []*entity.Job{job("Old Tom", res), job("Stone Creek", nil), job("Third", nil)}}
	svc := NewService(lister, nil)

	b, err := svc.ExportJobsXLSX(context.Background(), repository.ListFilter{BrandNameLike: "o", Offset: 7, Limit: 1})
	require.NoError(t, err)
	require.Len(t, lister.filters, 2, "pages until total is reached")
	assert.Equal(t, 0, lister.filters[0].Offset)
	assert.Equal(t, 2, lister.filters[1].Offset)
	assert.Equal(t, "o", lister.filters[1].BrandNameLike)

	f, err := excelize.OpenReader(bytes.NewReader(b))
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows(SheetName)
	require.NoError(t, err)
	require.Len(t, rows, 4)
	assert.Equal(t, headers, rows[0])

	first := rows[1]
	assert.Equal(t, "Old Tom", first[2])
	assert.Equal(t, "47%", first[5])
	assert.Equal(t, "750 mL", first[6])
	assert.Equal(t, "pytesseract", first[7])
	assert.Equal(t, "Yes", first[8])
	assert.Equal(t, "found", first[9])
	assert.Equal(t, "No", first[14])
	assert.Equal(t, "N/A", first[16])
	assert.Equal(t, "Review initiated\nchecked", first[18])

	assert.Equal(t, "Stone Creek", rows[2][2])
	assert.Equal(t, "", rows[2][8])
}

func TestExportJobsXLSX_ListError(t *testing.T) {
	svc := NewService(&pagedLister{err: errors.New("db down")}, nil)
	_, err := svc.ExportJobsXLSX(context.Background(), repository.ListFilter{})
	assert.Error(t, err)
}

func TestRow_Width(t *testing.T) {
	assert.Len(t, Row(job("x", nil)), len(headers))
	assert.Len(t, Row(job("x", &entity.AnalysisResult{})), len(headers))
}

func TestTruncate_CountsCharacters(t *testing.T) {
	assert.Equal(t, "Süß", truncate("Süß", 3))
	assert.Equal(t, "Sü…", truncate("Süße", 3))
	assert.Equal(t, "日本…", truncate("日本酒です", 3))
	assert.Equal(t, "a", truncate("abc", 1))
	assert.Equal(t, "abc", truncate("abc", 0))
}
