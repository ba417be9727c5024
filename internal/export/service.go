package export

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/xuri/excelize/v2"

	"github.com/joseph-ayodele/label-approvals/internal/entity"
	"github.com/joseph-ayodele/label-approvals/internal/repository"
)

// JobLister pages through stored jobs.
type JobLister interface {
	List(ctx context.Context, filter repository.ListFilter) ([]*entity.Job, int, error)
}

// Service produces XLSX review reports.
type Service struct {
	jobs   JobLister
	logger *slog.Logger
}

func NewService(jobs JobLister, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{jobs: jobs, logger: logger}
}

// SheetName is the worksheet holding the review rows.
const SheetName = "Label Reviews"

var headers = []string{
	"Job ID",
	"Created",
	"Brand Name",
	"Product Class",
	"Status",
	"Declared ABV",
	"Declared Net Contents",
	"Analysis Mode",
	"Brand Name Found",
	"Brand Name Reasoning",
	"Product Class Found",
	"Product Class Reasoning",
	"Alcohol Content Found",
	"Alcohol Content Reasoning",
	"Net Contents Found",
	"Net Contents Reasoning",
	"Health Warning Found",
	"Health Warning Reasoning",
	"Review Comments",
}

// ExportJobsXLSX returns a workbook with one row per job matching filter. Offset and
// Limit in filter are ignored; every matching job is exported.
func (s *Service) ExportJobsXLSX(ctx context.Context, filter repository.ListFilter) ([]byte, error) {
	start := time.Now()

	jobs, err := s.collect(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("query jobs: %w", err)
	}

	f := excelize.NewFile()
	defer func() { _ = f.Close() }()
	if err := f.SetSheetName("Sheet1", SheetName); err != nil {
		return nil, err
	}
	activeIndex, _ := f.GetSheetIndex(SheetName)
	f.SetActiveSheet(activeIndex)

	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		_ = f.SetCellValue(SheetName, cell, h)
	}
	if style, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}}); err == nil {
		end, _ := excelize.CoordinatesToCellName(len(headers), 1)
		_ = f.SetCellStyle(SheetName, "A1", end, style)
	}
	_ = f.SetPanes(SheetName, &excelize.Panes{Freeze: true, YSplit: 1, TopLeftCell: "A2", ActivePane: "bottomLeft"})

	for i, j := range jobs {
		row := i + 2
		write := func(col int, v any) {
			cell, _ := excelize.CoordinatesToCellName(col, row)
			_ = f.SetCellValue(SheetName, cell, v)
		}
		for col, v := range Row(j) {
			write(col+1, v)
		}
	}

	_ = f.SetColWidth(SheetName, "A", "A", 38) // id
	_ = f.SetColWidth(SheetName, "B", "B", 20) // created
	_ = f.SetColWidth(SheetName, "C", "D", 24)
	_ = f.SetColWidth(SheetName, "E", "H", 14)
	_ = f.SetColWidth(SheetName, "I", "R", 18)
	_ = f.SetColWidth(SheetName, "S", "S", 48)
	if len(jobs) > 0 {
		end, _ := excelize.CoordinatesToCellName(len(headers), len(jobs)+1)
		_ = f.AutoFilter(SheetName, "A1:"+end, nil)
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("xlsx write: %w", err)
	}

	s.logger.Info("export.xlsx.ok",
		"rows", len(jobs),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return buf.Bytes(), nil
}

func (s *Service) collect(ctx context.Context, filter repository.ListFilter) ([]*entity.Job, error) {
	filter.Offset, filter.Limit = 0, repository.DefaultListLimit
	var out []*entity.Job
	for {
		page, total, err := s.jobs.List(ctx, filter)
		if err != nil {
			return nil, err
		}
		out = append(out, page...)
		if len(page) == 0 || len(out) >= total {
			return out, nil
		}
		filter.Offset += len(page)
	}
}

// Row renders one job in header order.
func Row(j *entity.Job) []any {
	p := j.Metadata.DeclaredProduct()
	mode := ""
	if j.Metadata.AnalysisMode != nil {
		mode = string(*j.Metadata.AnalysisMode)
	}
	row := []any{
		j.ID.String(),
		j.CreatedAt.UTC().Format("2006-01-02 15:04"),
		j.BrandName,
		j.ProductClass,
		string(j.Status),
		declared(p, func(p *entity.ProductInfo) *string { return p.AlcoholContentABV }),
		declared(p, func(p *entity.ProductInfo) *string { return p.NetContents }),
		mode,
	}

	var res *entity.AnalysisResult
	if len(j.Metadata.LabelImages) > 0 {
		res = j.Metadata.LabelImages[0].AnalysisResult
	}
	if res == nil {
		for i := 0; i < 10; i++ {
			row = append(row, "")
		}
	} else {
		row = append(row,
			yesNo(res.BrandNameFound), truncate(entity.Deref(res.BrandNameFoundReasoning), 500),
			yesNo(res.ProductClassFound), truncate(entity.Deref(res.ProductClassFoundReasoning), 500),
			yesNo(res.AlcoholContentFound), truncate(entity.Deref(res.AlcoholContentFoundReasoning), 500),
			yesNo(res.NetContentsFound), truncate(entity.Deref(res.NetContentsFoundReasoning), 500),
			optionalYesNo(res.HealthWarningFound), truncate(entity.Deref(res.HealthWarningFoundReasoning), 500),
		)
	}
	return append(row, joinComments(j.Metadata.ReviewComments))
}

func declared(p *entity.ProductInfo, get func(*entity.ProductInfo) *string) string {
	if p == nil {
		return ""
	}
	return entity.Deref(get(p))
}

func yesNo(b bool) string {
	if b {
		return "Yes"
	}
	return "No"
}

func optionalYesNo(b *bool) string {
	if b == nil {
		return "N/A"
	}
	return yesNo(*b)
}

func joinComments(c []string) string {
	return truncate(strings.Join(c, "\n"), 1000)
}

// truncate caps s at n characters, the last one an ellipsis.
func truncate(s string, n int) string {
	if n <= 0 || utf8.RuneCountInString(s) <= n {
		return s
	}
	r := []rune(s)
	if n == 1 {
		return string(r[:1])
	}
	return string(r[:n-1]) + "…"
}
