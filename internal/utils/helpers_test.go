package utils

import (
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joseph-ayodele/label-approvals/constants"
	"github.com/joseph-ayodele/label-approvals/internal/common"
	"github.com/joseph-ayodele/label-approvals/internal/entity"
	"github.com/joseph-ayodele/label-approvals/internal/repository"
)

func TestCreateJobRequest_ToInput(t *testing.T) {
	in := CreateJobRequest{
		BrandName:    "Old Tom",
		ProductClass: "Gin",
		AnalysisMode: entity.Ptr("pytesseract"),
		Status:       entity.Ptr(""),
	}.ToInput()
	assert.Equal(t, "Old Tom", in.BrandName)
	require.NotNil(t, in.AnalysisMode)
	assert.Equal(t, constants.AnalysisModeOCR, *in.AnalysisMode)
	assert.Nil(t, in.Status)
}

func TestToJobDTO(t *testing.T) {
	assert.Nil(t, ToJobDTO(nil))
	id := uuid.New()
	dto := ToJobDTO(&entity.Job{
		ID:        id,
		Status:    constants.JobStatusRejected,
		CreatedAt: time.Date(2026, 5, 6, 7, 8, 9, 0, time.FixedZone("x", 3600)),
	})
	assert.Equal(t, id.String(), dto.ID)
	assert.Equal(t, "rejected", dto.Status)
	assert.Equal(t, "2026-05-06T06:08:09Z", dto.CreatedAt)
}

func TestParsers(t *testing.T) {
	_, err := ParseJobID("nope")
	assert.True(t, errors.Is(err, common.ErrInvalidInput))
	assert.Contains(t, err.Error(), "job_id must be a valid UUID")
	id, err := ParseJobID(" 4f1c2a7e-6f3b-4f43-9d1e-0c8a3b1f2e55 ")
	require.NoError(t, err)
	assert.Equal(t, "4f1c2a7e-6f3b-4f43-9d1e-0c8a3b1f2e55", id.String())
	_, err = ParseJobID("")
	assert.True(t, errors.Is(err, common.ErrInvalidInput))

	m, err := ParseMode("")
	require.NoError(t, err)
	assert.Nil(t, m)
	m, err = ParseMode("ocr")
	require.NoError(t, err)
	assert.Equal(t, constants.AnalysisModeOCR, *m)
	_, err = ParseMode("vision")
	assert.True(t, errors.Is(err, common.ErrInvalidInput))

	f, err := ParseListFilter(" stone ", "APPROVED", 5, 5000)
	require.NoError(t, err)
	assert.Equal(t, "stone", f.BrandNameLike)
	assert.Equal(t, constants.JobStatusApproved, *f.Status)
	assert.Equal(t, 1000, f.Limit)

	_, err = ParseListFilter("", "shipped", 0, 0)
	assert.True(t, errors.Is(err, common.ErrInvalidInput))
	_, err = ParseListFilter("", "", -1, 0)
	assert.True(t, errors.Is(err, common.ErrInvalidInput))
}

func TestListJobsRequest_Filter(t *testing.T) {
	f, err := ListJobsRequest{BrandName: "Stone", Offset: 10}.Filter()
	require.NoError(t, err)
	assert.Equal(t, repository.DefaultListLimit, f.Limit)
	assert.Equal(t, 10, f.Offset)
	assert.Nil(t, f.Status)

	resp := NewListJobsResponse(nil, 42, f)
	assert.Equal(t, 42, resp.TotalCount)
	assert.NotNil(t, resp.Jobs)
	assert.Equal(t, repository.DefaultListLimit, resp.Limit)

	_, err = ListJobsRequest{Status: "maybe"}.Filter()
	assert.True(t, errors.Is(err, common.ErrInvalidInput))
}

func TestExportFilename(t *testing.T) {
	at := time.Date(2026, 1, 2, 3, 4, 5, 0, time.FixedZone("x", 3600))
	assert.Equal(t, "label_reviews_20260102_020405.xlsx", ExportFilename(at))
}
