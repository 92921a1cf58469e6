package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"resume-analyzer/internal/analyses"
	"resume-analyzer/internal/bootstrap"
	"resume-analyzer/internal/extract"
	"resume-analyzer/internal/shared/config"
	"resume-analyzer/internal/shared/telemetry"
)

const (
	app = "analyze"
	// stdout carries the JSON result only.
	logOutput = "stderr"
)

var rootCmd = &cobra.Command{
	Use:          app + " [flags] <resume-file>",
	Short:        "Extract a resume file and print its analysis as JSON",
	Args:         cobra.ExactArgs(1),
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := config.Load()
		applyFlags(&cfg)
		if err := telemetry.InitTo(logOutput, viper.GetBool("json"), viper.GetBool("debug")); err != nil {
			return err
		}
		defer telemetry.Sync()

		ctx := cmd.Context()
		a := &bootstrap.App{Config: cfg}
		defer a.Close()
		svc, err := bootstrap.BuildAnalysisService(ctx, a)
		if err != nil {
			return err
		}
		return runAnalyze(ctx, cmd.OutOrStdout(), svc, args[0], viper.GetString("job-description-file"), cfg.ExtractTimeout)
	},
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.ExecuteContext(context.Background())
}

func init() {
	flags := rootCmd.Flags()
	flags.String("job-description-file", "", "optional file holding the job description to target")
	flags.String("provider", "", "LLM provider override (openai, gemini, none)")
	flags.String("model", "", "LLM model override")
	flags.Duration("ai-timeout", 0, "AI analysis timeout override")
	flags.BoolP("debug", "d", false, "verbose/debug output")
	flags.BoolP("json", "j", false, "json format for logging")

	for _, name := range []string{"job-description-file", "provider", "model", "ai-timeout", "debug", "json"} {
		_ = viper.BindPFlag(name, flags.Lookup(name))
	}
}

func applyFlags(cfg *config.Config) {
	if p := viper.GetString("provider"); p != "" {
		cfg.LLMProvider = p
	}
	if m := viper.GetString("model"); m != "" {
		cfg.LLMModel = m
	}
	if d := viper.GetDuration("ai-timeout"); d > 0 {
		cfg.AITimeout = d
	}
}

type output struct {
	FileName string `json:"fileName"`
	analyses.Analysis
	IsDemo bool `json:"isDemo"`
}

func runAnalyze(ctx context.Context, w io.Writer, svc *analyses.Service, resumePath, jdPath string, extractTimeout time.Duration) error {
	data, err := os.ReadFile(resumePath)
	if err != nil {
		return fmt.Errorf("read resume: %w", err)
	}
	fileName := filepath.Base(resumePath)

	extractCtx := ctx
	if extractTimeout > 0 {
		var cancel context.CancelFunc
		extractCtx, cancel = context.WithTimeout(ctx, extractTimeout)
		defer cancel()
	}
	text, err := extract.ExtractText(extractCtx, data, fileName)
	if err != nil {
		return fmt.Errorf("extract %s: %w", fileName, err)
	}

	in := analyses.RunInput{ResumeText: text}
	if jdPath != "" {
		jd, err := os.ReadFile(jdPath)
		if err != nil {
			return fmt.Errorf("read job description: %w", err)
		}
		s := string(jd)
		in.JobDescription = &s
	}

	res, err := svc.Run(ctx, in)
	if err != nil {
		return err
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(output{FileName: fileName, Analysis: res.Analysis, IsDemo: res.IsDemo})
}
