package cli

import (
	"fmt"
	"strings"

	"resumeforge/internal/ai"
	"resumeforge/internal/formalize"
	"resumeforge/internal/types"

	"github.com/spf13/cobra"
)

var formalizeCategories = []string{
	string(types.CategoryEducation),
	string(types.CategoryExperience),
	string(types.CategorySkills),
	string(types.CategoryCertifications),
	string(types.CategoryHobbies),
}

var formalizeCmd = &cobra.Command{
	Use:   "formalize [items...]",
	Short: "Formalize shorthand resume lines into professional phrasing",
	Long: `Formalize a list of shorthand resume lines for one content category.
Each argument is one line. With an AI provider configured the lines are
rewritten contextually; without one the deterministic normalizer runs.
Formalized lines are printed one per line, in input order.`,
	Args: cobra.MinimumNArgs(1),
	PreRunE: func(cmd *cobra.Command, args []string) error {
		for _, c := range formalizeCategories {
			if formalizeCategory == c {
				return nil
			}
		}
		return fmt.Errorf("invalid category %q: must be one of %s",
			formalizeCategory, strings.Join(formalizeCategories, ", "))
	},
	RunE: runFormalize,
}

var (
	formalizeCategory string
	formalizeCity     string
	formalizeState    string
)

func init() {
	formalizeCmd.Flags().StringVarP(&formalizeCategory, "category", "c", "skills",
		"Content category: "+strings.Join(formalizeCategories, ", "))
	formalizeCmd.Flags().StringVar(&formalizeCity, "city", "", "User city for location-aware cleanup")
	formalizeCmd.Flags().StringVar(&formalizeState, "state", "", "User state for location-aware cleanup")

	_ = formalizeCmd.RegisterFlagCompletionFunc("category", func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
		return formalizeCategories, cobra.ShellCompDirectiveNoFileComp
	})
}

func runFormalize(cmd *cobra.Command, args []string) error {
	cfg := getConfigFromContext(cmd.Context())
	logger := getLoggerFromContext(cmd.Context())

	var oracle ai.Oracle
	if cfg.HasOracle() {
		router, err := ai.NewRouter(cfg, logger)
		if err != nil {
			logger.LogError(err, "Failed to create oracle providers, formalizing locally")
		} else {
			oracle = router
			defer func() { _ = router.Close() }()
		}
	}

	formalizer := formalize.New(oracle, logger)
	outcome := formalizer.FormalizeList(cmd.Context(), args,
		types.ContentCategory(formalizeCategory), formalizeCity, formalizeState)

	logger.Info("Formalization completed",
		"category", formalizeCategory,
		"lines", len(outcome.Lines),
		"source", outcome.Source)
	if outcome.Usage != nil {
		logger.Info("Token usage",
			"input_tokens", outcome.Usage.InputTokens,
			"output_tokens", outcome.Usage.OutputTokens,
			"total_tokens", outcome.Usage.TotalTokens)
	}

	for _, line := range outcome.Lines {
		fmt.Println(line)
	}
	return nil
}
