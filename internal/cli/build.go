package cli

import (
	"context"
	"encoding/json"
	"fmt"

	"resumeforge/internal/ai"
	"resumeforge/internal/assemble"
	"resumeforge/internal/build"
	"resumeforge/internal/common"
	"resumeforge/internal/formalize"
	"resumeforge/internal/types"

	"github.com/spf13/cobra"
)

var buildCmd = &cobra.Command{
	Use:   "build [form-file]",
	Short: "Build a resume or cover letter from form data",
	Long: `Build a formatted document from a JSON form file.
The form file holds the same fields the web client submits: contact
details, experience, education, skills, and the rest. With an AI
provider configured the content is formalized through it; without one
the deterministic local pipeline is used.`,
	Args: cobra.ExactArgs(1),
	PreRunE: func(cmd *cobra.Command, args []string) error {
		cfg := getConfigFromContext(cmd.Context())
		// Apply default format if not specified
		if buildConfig.OutputFormat == "" {
			buildConfig.OutputFormat = cfg.App.DefaultFormat
		}
		if buildDocType != "resume" && buildDocType != "cover" {
			return fmt.Errorf(`invalid document type %q: must be "resume" or "cover"`, buildDocType)
		}
		// Validate format against supported formats
		return common.ValidateOutputFormat(buildConfig.OutputFormat, cfg.App.SupportedFormats)
	},
	RunE: runBuild,
}

var (
	buildConfig  common.CommandConfig
	buildDocType string
	buildMode    string
)

func init() {
	buildCmd.Flags().StringVarP(&buildConfig.OutputFile, "output", "o", "", "Output file path (default: stdout)")
	buildCmd.Flags().StringVar(&buildConfig.OutputFormat, "format", "", "Output format: json, text, or markdown")
	buildCmd.Flags().StringVarP(&buildDocType, "type", "t", "resume", `Document type: "resume" or "cover"`)
	buildCmd.Flags().StringVar(&buildMode, "mode", "", `Build mode: "formalize" (default), "rewrite", or "generate"`)

	// Add completion for format flag
	_ = buildCmd.RegisterFlagCompletionFunc("format", func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
		cfg := getConfigFromContext(cmd.Context())
		return common.GetSupportedFormats(cfg.App.SupportedFormats), cobra.ShellCompDirectiveNoFileComp
	})
	_ = buildCmd.RegisterFlagCompletionFunc("type", func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
		return []string{"resume", "cover"}, cobra.ShellCompDirectiveNoFileComp
	})
}

func runBuild(cmd *cobra.Command, args []string) error {
	cfg := getConfigFromContext(cmd.Context())
	logger := getLoggerFromContext(cmd.Context())

	// An oracle is optional here. When provider creation fails the build
	// still runs on the local pipeline.
	var oracle ai.Oracle
	var cleanup func()
	if cfg.HasOracle() {
		router, err := ai.NewRouter(cfg, logger)
		if err != nil {
			logger.LogError(err, "Failed to create oracle providers, building without oracle")
		} else {
			oracle = router
			cleanup = func() { _ = router.Close() }
		}
	}
	if cleanup != nil {
		defer cleanup()
	}

	var templates *assemble.TemplateStore
	if cfg.Templates.Dir != "" {
		templates = assemble.NewTemplateStore(cfg.Templates.Dir, logger)
	}

	builder := build.New(formalize.New(oracle, logger), oracle, templates, nil, logger)

	createInput := func(contents []string) (*types.ResumeForm, error) {
		if len(contents) != 1 {
			return nil, fmt.Errorf("expected 1 file path, got %d", len(contents))
		}
		var form types.ResumeForm
		if err := json.Unmarshal([]byte(contents[0]), &form); err != nil {
			return nil, fmt.Errorf("invalid form JSON: %w", err)
		}
		return &form, nil
	}

	logDetails := func(form *types.ResumeForm, cfg common.CommandConfig) {
		logger.Info("Starting document build",
			"type", buildDocType,
			"mode", buildMode,
			"oracle", oracle != nil,
			"output_format", cfg.OutputFormat)
	}

	buildOperation := func(ctx context.Context, form *types.ResumeForm) (*types.BuildResult, *ai.TokenUsage, error) {
		var result *types.BuildResult
		var err error
		if buildDocType == "cover" {
			result, err = builder.BuildCover(ctx, form, types.BuildOptions{Signoff: form.Signoff})
		} else {
			result, err = builder.BuildResume(ctx, form, buildMode)
		}
		return result, nil, err
	}

	err := common.RunAICommand(
		cmd.Context(),
		logger,
		buildConfig,
		args,
		createInput,
		buildOperation,
		logDetails,
	)

	if err != nil {
		return fmt.Errorf("failed to build document: %w", err)
	}
	logger.Info("Document build completed successfully")
	return nil
}
