// Command labelctl is the operator CLI for the label approval service.
//
// Usage:
//
//	labelctl create --brand "Stone Creek" --class Bourbon --abv 45% --net 750 --image label.png
//	labelctl list --status pending
//	labelctl analyze <job-id> --mode ocr
//	labelctl status <job-id> approved --comment "matches"
//	labelctl export --out reviews.xlsx
//	labelctl ocr label.png
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/spf13/cobra"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/metadata"

	"github.com/joseph-ayodele/label-approvals/internal/server"
)

var (
	serverAddr string
	timeout    time.Duration
	reviewerID string
	verbose    bool
)

var rootCmd = &cobra.Command{
	Use:           "labelctl",
	Short:         "Operate the label approval service",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		level := slog.LevelWarn
		if verbose {
			level = slog.LevelDebug
		}
		slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: level})))
	},
}

func init() {
	addr := os.Getenv("LABELS_ADDR")
	if addr == "" {
		addr = "localhost:8080"
	}
	rootCmd.PersistentFlags().StringVar(&serverAddr, "addr", addr, "gRPC address of labelsd (env LABELS_ADDR)")
	rootCmd.PersistentFlags().DurationVar(&timeout, "timeout", 3*time.Minute, "per-command timeout")
	rootCmd.PersistentFlags().StringVar(&reviewerID, "reviewer", os.Getenv("LABELS_REVIEWER"), "reviewer id recorded on changes (env LABELS_REVIEWER)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "debug logging to stderr")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

// connect dials labelsd and returns a client plus a context carrying the reviewer id.
func connect(parent context.Context) (*server.Client, context.Context, func(), error) {
	conn, err := grpc.NewClient(serverAddr, grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		return nil, nil, nil, fmt.Errorf("dial %s: %w", serverAddr, err)
	}
	ctx, cancel := context.WithTimeout(parent, timeout)
	if reviewerID != "" {
		ctx = metadata.AppendToOutgoingContext(ctx, server.HeaderReviewerID, reviewerID)
	}
	closeFn := func() {
		cancel()
		_ = conn.Close()
	}
	return server.NewClient(conn), ctx, closeFn, nil
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
