package entity

import (
	"time"

	"github.com/google/uuid"

	"github.com/joseph-ayodele/label-approvals/constants"
)

// LabelImage is one uploaded label plus what the analysis produced for it.
// Exactly one of ImageURL or Base64 is normally set.
type LabelImage struct {
	ImageURL             *string         `json:"image_url"`
	ImageContentType     *string         `json:"image_content_type"`
	Base64               *string         `json:"base64"`
	UploadDate           *time.Time      `json:"upload_date"`
	Approved             *bool           `json:"approved"`
	ApprovedDate         *time.Time      `json:"approved_date"`
	Rejected             *bool           `json:"rejected"`
	RejectedDate         *time.Time      `json:"rejected_date"`
	ExtractedProductInfo *BrandData      `json:"extracted_product_info"`
	AnalysisResult       *AnalysisResult `json:"analysis_result"`
}

// Clone returns a deep copy.
func (l LabelImage) Clone() LabelImage {
	return LabelImage{
		ImageURL:             clonePtr(l.ImageURL),
		ImageContentType:     clonePtr(l.ImageContentType),
		Base64:               clonePtr(l.Base64),
		UploadDate:           clonePtr(l.UploadDate),
		Approved:             clonePtr(l.Approved),
		ApprovedDate:         clonePtr(l.ApprovedDate),
		Rejected:             clonePtr(l.Rejected),
		RejectedDate:         clonePtr(l.RejectedDate),
		ExtractedProductInfo: l.ExtractedProductInfo.Clone(),
		AnalysisResult:       l.AnalysisResult.Clone(),
	}
}

// JobMetadata is the JSON document stored in the job's metadata column.
type JobMetadata struct {
	ReviewerID     *string                 `json:"reviewer_id"`
	ReviewerName   *string                 `json:"reviewer_name"`
	ReviewComments []string                `json:"review_comments"`
	AnalysisMode   *constants.AnalysisMode `json:"analysis_mode"`
	ProductInfo    *BrandData              `json:"product_info"`
	LabelImages    []LabelImage            `json:"label_images"`
}

// Clone returns a deep copy.
func (m JobMetadata) Clone() JobMetadata {
	out := JobMetadata{
		ReviewerID:   clonePtr(m.ReviewerID),
		ReviewerName: clonePtr(m.ReviewerName),
		AnalysisMode: clonePtr(m.AnalysisMode),
		ProductInfo:  m.ProductInfo.Clone(),
	}
	if m.ReviewComments != nil {
		out.ReviewComments = append([]string(nil), m.ReviewComments...)
	}
	if m.LabelImages != nil {
		out.LabelImages = make([]LabelImage, len(m.LabelImages))
		for i, img := range m.LabelImages {
			out.LabelImages[i] = img.Clone()
		}
	}
	return out
}

// DeclaredProduct is the first product the merchant declared, or nil.
func (m JobMetadata) DeclaredProduct() *ProductInfo {
	return m.ProductInfo.FirstProduct()
}

// Actor identifies who created or last touched a job.
type Actor struct {
	Entity       string `json:"entity"`
	EntityID     string `json:"entity_id"`
	EntityDomain string `json:"entity_domain"`
}

// SystemActor is recorded for changes made by the service itself.
var SystemActor = Actor{Entity: "system", EntityID: "label-approvals", EntityDomain: "internal"}

// Job is a label approval job.
type Job struct {
	ID           uuid.UUID           `json:"id"`
	BrandName    string              `json:"brand_name"`
	ProductClass string              `json:"product_class"`
	Status       constants.JobStatus `json:"status"`
	Metadata     JobMetadata         `json:"job_metadata"`
	CreatedAt    time.Time           `json:"created_at"`
	UpdatedAt    time.Time           `json:"updated_at"`
	CreatedBy    Actor               `json:"created_by"`
	UpdatedBy    Actor               `json:"updated_by"`
}

// Clone returns a deep copy.
func (j *Job) Clone() *Job {
	if j == nil {
		return nil
	}
	out := *j
	out.Metadata = j.Metadata.Clone()
	return &out
}

// WithAnalysis returns a new job whose image at index carries extracted and result.
// Only the path from the job to that image is copied; the image itself is deep-copied,
// so the receiver is never modified. It returns nil if index is out of range.
func (j *Job) WithAnalysis(index int, extracted *BrandData, result *AnalysisResult) *Job {
	if j == nil || index < 0 || index >= len(j.Metadata.LabelImages) {
		return nil
	}
	img := j.Metadata.LabelImages[index].Clone()
	img.ExtractedProductInfo = extracted.Clone()
	img.AnalysisResult = result.Clone()

	images := make([]LabelImage, len(j.Metadata.LabelImages))
	copy(images, j.Metadata.LabelImages)
	images[index] = img

	out := *j
	out.Metadata.LabelImages = images
	return &out
}
