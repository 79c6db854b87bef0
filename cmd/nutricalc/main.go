// Command nutricalc runs the nutrition engine offline against the bundled
// dataset or a local dataset file.
package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/manmaru/backend/config"
	"github.com/manmaru/backend/internal/domain"
	"github.com/manmaru/backend/internal/infrastructure/fooddata"
	"github.com/manmaru/backend/internal/pkg/logger"
	"github.com/manmaru/backend/internal/usecase"
)

// globalOptions are shared by every subcommand
type globalOptions struct {
	dataset  string
	logLevel string
	asJSON   bool
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	opts := &globalOptions{}

	rootCmd := &cobra.Command{
		Use:          "nutricalc",
		Short:        "Estimate meal nutrition from food names and quantities",
		SilenceUsage: true,
	}

	rootCmd.PersistentFlags().StringVar(&opts.dataset, "dataset", "", "dataset JSON file (default: bundled dataset)")
	rootCmd.PersistentFlags().StringVar(&opts.logLevel, "log-level", "warn", "log level")
	rootCmd.PersistentFlags().BoolVar(&opts.asJSON, "json", false, "print JSON instead of text")

	rootCmd.AddCommand(parseCmd(opts))
	rootCmd.AddCommand(matchCmd(opts))
	rootCmd.AddCommand(searchCmd(opts))
	rootCmd.AddCommand(calcCmd(opts))

	return rootCmd
}

// service builds the engine for one invocation
func (o *globalOptions) service() *usecase.NutritionService {
	log := logger.New(o.logLevel, logger.FormatConsole, "nutricalc")

	var source domain.FoodDataSource = fooddata.NewEmbeddedSource(log)
	if o.dataset != "" {
		source = fooddata.NewFileSource(o.dataset, log)
	}

	parser := usecase.NewQuantityParser(nil, log)
	matcher := usecase.NewFoodMatcher(usecase.NewFoodRepository(source, log), nil, usecase.MatchConfig{}, log)
	return usecase.NewNutritionService(
		matcher,
		parser,
		usecase.NewNutritionAggregator(parser, log),
		usecase.NutritionServiceConfig{CountUnmatched: config.DefaultCountUnmatched},
		log,
	)
}

func parseCmd(opts *globalOptions) *cobra.Command {
	var foodName, category string

	cmd := &cobra.Command{
		Use:   "parse [quantity text]",
		Short: "Parse quantity text and estimate grams",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			text := strings.Join(args, " ")
			svc := opts.service()

			cat := domain.FoodCategory("")
			if category != "" {
				cat = domain.ParseCategory(category)
			} else if foodName != "" {
				idx, err := svc.Matcher().Repository().Index(cmd.Context())
				if err != nil {
					return err
				}
				if food := idx.ExactMatch(foodName); food != nil {
					cat = food.Category
				}
			}

			parsed, grams, err := svc.Parser().Estimate(text, foodName, cat)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if opts.asJSON {
				return printJSON(out, map[string]any{"parsed": parsed, "grams": grams})
			}
			fmt.Fprintf(out, "%s -> %g %s (confidence %.2f)\n",
				text, parsed.Quantity.Value, parsed.Quantity.Unit, parsed.Confidence)
			fmt.Fprintf(out, "%.1f g via %s (confidence %.2f)\n", grams.Grams, grams.Source, grams.Confidence)
			return nil
		},
	}

	cmd.Flags().StringVar(&foodName, "food", "", "food name used for unit overrides")
	cmd.Flags().StringVar(&category, "category", "", "food category (e.g. 穀類)")
	return cmd
}

func matchCmd(opts *globalOptions) *cobra.Command {
	var minSimilarity float64

	cmd := &cobra.Command{
		Use:   "match [food name...]",
		Short: "Match food names to dataset foods",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			matches, err := opts.service().Matcher().MatchFoods(cmd.Context(), args, usecase.MatchOptions{
				MinSimilarity: minSimilarity,
			})
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if opts.asJSON {
				return printJSON(out, matches)
			}
			for i, m := range matches {
				if m == nil {
					fmt.Fprintf(out, "%s -> (no match)\n", args[i])
					continue
				}
				fmt.Fprintf(out, "%s -> %s [%s] %.2f %s\n",
					m.InputName, m.MatchedFood.Name, m.MatchedFood.ID, m.Similarity, m.Tier)
			}
			return nil
		},
	}

	cmd.Flags().Float64Var(&minSimilarity, "min-similarity", 0, "similarity below which matches are flagged")
	return cmd
}

func searchCmd(opts *globalOptions) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "search [query]",
		Short: "List ranked dataset candidates for a name",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			query := strings.Join(args, " ")
			results, err := opts.service().Matcher().Search(cmd.Context(), query, limit)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if opts.asJSON {
				return printJSON(out, results)
			}
			if len(results) == 0 {
				fmt.Fprintf(out, "No foods match %q.\n", query)
				return nil
			}
			for _, r := range results {
				fmt.Fprintf(out, "%.2f  %s  %s (%s)\n", r.Similarity, r.MatchedFood.ID, r.MatchedFood.Name, r.MatchedFood.Category)
			}
			return nil
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 10, "number of candidates to show")
	return cmd
}

func calcCmd(opts *globalOptions) *cobra.Command {
	var servings float64
	var pregnancy bool

	cmd := &cobra.Command{
		Use:   "calc [food=quantity...]",
		Short: "Calculate the nutrition of a meal",
		Long:  "Each argument is a food name, optionally followed by '=' and its quantity: ご飯=1杯 豆腐=150g",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			items := make([]domain.ParsedFoodItem, len(args))
			for i, arg := range args {
				items[i] = parseItemArg(arg)
			}

			calc, err := opts.service().Calculate(cmd.Context(), items, usecase.CalculateOptions{
				Servings:         servings,
				IncludePregnancy: pregnancy,
			})
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if opts.asJSON {
				return printJSON(out, calc)
			}
			printCalculation(out, calc)
			return nil
		},
	}

	cmd.Flags().Float64Var(&servings, "servings", 0, "also show values per serving")
	cmd.Flags().BoolVar(&pregnancy, "pregnancy", false, "show percentages of pregnancy targets")
	return cmd
}

// parseItemArg splits "name=quantity"; a full-width ＝ is accepted too
func parseItemArg(arg string) domain.ParsedFoodItem {
	arg = strings.ReplaceAll(arg, "＝", "=")
	name, quantity, _ := strings.Cut(arg, "=")
	return domain.ParsedFoodItem{
		FoodName:     strings.TrimSpace(name),
		QuantityText: strings.TrimSpace(quantity),
	}
}

func printCalculation(out io.Writer, calc *domain.NutritionCalculation) {
	n := calc.Nutrition
	fmt.Fprintf(out, "Total: %.1f kcal\n", n.TotalCalories)
	for _, item := range n.FoodItems {
		fmt.Fprintf(out, "  %s -> %s  %.1f g  %.1f kcal  (confidence %.2f)\n",
			item.Name, item.MatchedName, item.Grams, item.Calories, item.Confidence)
	}

	fmt.Fprintln(out, "Nutrients:")
	for _, nutrient := range n.TotalNutrients {
		fmt.Fprintf(out, "  %-12s %8.2f %s\n", nutrient.Name, nutrient.Value, nutrient.Unit)
	}

	if r := n.Reliability; r != nil {
		fmt.Fprintf(out, "Confidence: %.2f", r.Confidence)
		if r.BalanceScore != nil {
			fmt.Fprintf(out, "  balance: %.2f", *r.BalanceScore)
		}
		if r.Completeness != nil {
			fmt.Fprintf(out, "  completeness: %.2f", *r.Completeness)
		}
		fmt.Fprintln(out)
	}

	if p := n.PregnancySpecific; p != nil {
		fmt.Fprintf(out, "Pregnancy targets: folate %.0f%%  iron %.0f%%  calcium %.0f%%  vitamin D %.0f%%  protein %.0f%%\n",
			p.FolatePercentage, p.IronPercentage, p.CalciumPercentage, p.VitaminDPercentage, p.ProteinPercentage)
	}
	if calc.PerServing != nil {
		fmt.Fprintf(out, "Per serving (%g): %.1f kcal\n", calc.Servings, calc.PerServing.TotalCalories)
	}

	if len(calc.Unmatched) > 0 {
		fmt.Fprintf(out, "Unmatched: %s\n", strings.Join(calc.Unmatched, ", "))
	}
	for _, w := range calc.Warnings {
		fmt.Fprintf(out, "Warning: %s\n", w)
	}
}

func printJSON(out io.Writer, v any) error {
	enc := json.NewEncoder(out)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
