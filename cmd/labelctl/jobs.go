package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/joseph-ayodele/label-approvals/internal/media"
	ingestsvc "github.com/joseph-ayodele/label-approvals/internal/services/ingest"
	"github.com/joseph-ayodele/label-approvals/internal/utils"
)

var createCmd = &cobra.Command{
	Use:   "create",
	Short: "Submit a label for review",
	Long: `Create a label approval job from declared fields and an optional label image.

The image file is sent as a data URI; a .jpeg extension is reported as jpg.`,
	RunE: runCreate,
}

var getCmd = &cobra.Command{
	Use:   "get <job-id>",
	Short: "Show a job",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		c, ctx, done, err := connect(cmd.Context())
		if err != nil {
			return err
		}
		defer done()
		job, err := c.GetJob(ctx, args[0])
		if err != nil {
			return err
		}
		return printJSON(job)
	},
}

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List jobs, newest first",
	RunE: func(cmd *cobra.Command, args []string) error {
		req, err := listRequest(cmd)
		if err != nil {
			return err
		}
		c, ctx, done, err := connect(cmd.Context())
		if err != nil {
			return err
		}
		defer done()
		resp, err := c.ListJobs(ctx, req)
		if err != nil {
			return err
		}
		return printJSON(resp)
	},
}

var analyzeCmd = &cobra.Command{
	Use:   "analyze <job-id>",
	Short: "Re-run label analysis for a job",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		mode, _ := cmd.Flags().GetString("mode")
		c, ctx, done, err := connect(cmd.Context())
		if err != nil {
			return err
		}
		defer done()
		job, err := c.AnalyzeJob(ctx, utils.AnalyzeJobRequest{ID: args[0], AnalysisMode: mode})
		if err != nil {
			return err
		}
		return printJSON(job)
	},
}

var statusCmd = &cobra.Command{
	Use:   "status <job-id> <pending|approved|rejected>",
	Short: "Record a review decision",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		req := utils.SetJobStatusRequest{ID: args[0], Status: args[1]}
		if cmd.Flags().Changed("comment") {
			comment, _ := cmd.Flags().GetString("comment")
			req.Comment = &comment
		}
		c, ctx, done, err := connect(cmd.Context())
		if err != nil {
			return err
		}
		defer done()
		job, err := c.SetJobStatus(ctx, req)
		if err != nil {
			return err
		}
		return printJSON(job)
	},
}

var commentCmd = &cobra.Command{
	Use:   "comment <job-id> <text>",
	Short: "Add a review comment",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		c, ctx, done, err := connect(cmd.Context())
		if err != nil {
			return err
		}
		defer done()
		job, err := c.AddReviewComment(ctx, utils.AddReviewCommentRequest{ID: args[0], Comment: args[1]})
		if err != nil {
			return err
		}
		return printJSON(job)
	},
}

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Download the XLSX review report",
	RunE: func(cmd *cobra.Command, args []string) error {
		req, err := listRequest(cmd)
		if err != nil {
			return err
		}
		out, _ := cmd.Flags().GetString("out")
		c, ctx, done, err := connect(cmd.Context())
		if err != nil {
			return err
		}
		defer done()
		resp, err := c.ExportJobs(ctx, req)
		if err != nil {
			return err
		}
		if out == "" {
			out = resp.Filename
		}
		if err := os.WriteFile(out, resp.Data, 0o644); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "wrote %s (%d bytes)\n", out, len(resp.Data))
		return nil
	},
}

var ingestCmd = &cobra.Command{
	Use:   "ingest <dir>",
	Short: "Ingest every manifest under a directory on the server host",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		hidden, _ := cmd.Flags().GetBool("include-hidden")
		skip := !hidden
		c, ctx, done, err := connect(cmd.Context())
		if err != nil {
			return err
		}
		defer done()
		res, err := c.IngestDirectory(ctx, ingestsvc.DirectoryIngestRequest{RootPath: args[0], SkipHidden: &skip})
		if err != nil {
			return err
		}
		return printJSON(res)
	},
}

func init() {
	rootCmd.AddCommand(createCmd, getCmd, listCmd, analyzeCmd, statusCmd, commentCmd, exportCmd, ingestCmd)

	createCmd.Flags().String("brand", "", "brand name (required)")
	createCmd.Flags().String("class", "", "product class/type (required)")
	createCmd.Flags().String("abv", "", "declared alcohol content, e.g. 45%")
	createCmd.Flags().String("net", "", "declared net contents, e.g. 750 mL")
	createCmd.Flags().String("bottler", "", "bottler information")
	createCmd.Flags().String("manufacturer", "", "manufacturer")
	createCmd.Flags().String("warnings", "", "declared health warning text")
	createCmd.Flags().String("image", "", "label image file (jpg, jpeg, png, gif)")
	createCmd.Flags().String("mode", "", "analysis mode: using_llm or pytesseract")
	_ = createCmd.MarkFlagRequired("brand")
	_ = createCmd.MarkFlagRequired("class")

	for _, c := range []*cobra.Command{listCmd, exportCmd} {
		c.Flags().String("brand", "", "brand name contains (case-insensitive)")
		c.Flags().String("status", "", "pending, approved or rejected")
	}
	listCmd.Flags().Int("offset", 0, "rows to skip")
	listCmd.Flags().Int("limit", 0, "page size (default 100, max 1000)")
	exportCmd.Flags().String("out", "", "output file (default: server-chosen name)")

	analyzeCmd.Flags().String("mode", "", "override the analysis mode for this run")
	statusCmd.Flags().String("comment", "", "review comment to append")
	ingestCmd.Flags().Bool("include-hidden", false, "also ingest hidden files and directories")
}

func runCreate(cmd *cobra.Command, args []string) error {
	str := func(name string) *string {
		if !cmd.Flags().Changed(name) {
			return nil
		}
		v, _ := cmd.Flags().GetString(name)
		return &v
	}
	brand, _ := cmd.Flags().GetString("brand")
	class, _ := cmd.Flags().GetString("class")

	req := utils.CreateJobRequest{
		BrandName:         brand,
		ProductClass:      class,
		AlcoholContentABV: str("abv"),
		NetContents:       str("net"),
		BottlerInfo:       str("bottler"),
		Manufacturer:      str("manufacturer"),
		Warnings:          str("warnings"),
		AnalysisMode:      str("mode"),
	}
	if img := str("image"); img != nil {
		uri, err := media.ReadFileAsDataURI(*img)
		if err != nil {
			return fmt.Errorf("read image: %w", err)
		}
		req.LabelImageBase64 = &uri
	}

	c, ctx, done, err := connect(cmd.Context())
	if err != nil {
		return err
	}
	defer done()
	job, err := c.CreateJob(ctx, req)
	if err != nil {
		return err
	}
	return printJSON(job)
}

func listRequest(cmd *cobra.Command) (utils.ListJobsRequest, error) {
	var req utils.ListJobsRequest
	req.BrandName, _ = cmd.Flags().GetString("brand")
	req.Status, _ = cmd.Flags().GetString("status")
	if f := cmd.Flags().Lookup("offset"); f != nil {
		req.Offset, _ = cmd.Flags().GetInt("offset")
		req.Limit, _ = cmd.Flags().GetInt("limit")
	}
	if _, err := req.Filter(); err != nil {
		return req, err
	}
	return req, nil
}
