package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	_ "github.com/joho/godotenv/autoload"

	"github.com/fdg312/curo/internal/ai"
	"github.com/fdg312/curo/internal/config"
	"github.com/fdg312/curo/internal/consultation"
	"github.com/fdg312/curo/internal/credentials"
	"github.com/fdg312/curo/internal/storage/memory"
	"github.com/fdg312/curo/internal/theme"
)

const localClientID = "local"

var (
	apiKey          string
	includeDiet     bool
	includeExercise bool
	jsonOutput      bool
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "consult",
		Short: "Get health advice for your symptoms",
		Long: `Describe your symptoms and get a severity category, relief steps and
optional diet and exercise tips.

Without arguments an interactive form opens. The completion key comes from
--api-key or OPENAI_API_KEY; AI_MODE=mock answers offline.

Examples:
  consult
  consult ask "I have a mild headache"
  consult ask --diet --exercise --json "sore throat and a cough"`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          runInteractive,
	}
	rootCmd.PersistentFlags().StringVar(&apiKey, "api-key", "", "OpenAI API key (overrides OPENAI_API_KEY)")

	askCmd := &cobra.Command{
		Use:   "ask [symptoms]",
		Short: "Run one consultation and print the result",
		Args:  cobra.MinimumNArgs(1),
		RunE:  runAsk,
	}
	askCmd.Flags().BoolVarP(&includeDiet, "diet", "d", false, "Include diet tips")
	askCmd.Flags().BoolVarP(&includeExercise, "exercise", "e", false, "Include exercise tips")
	askCmd.Flags().BoolVar(&jsonOutput, "json", false, "Print the result as JSON")
	rootCmd.AddCommand(askCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// newController builds a local controller on the process-wide document.
// Callers must Close it.
func newController(ctx context.Context, doc *theme.Document) (*consultation.Controller, error) {
	cfg := config.Load()
	creds := credentials.NewService(memory.New(), cfg.OpenAIAPIKey)
	if strings.TrimSpace(apiKey) != "" {
		if _, err := creds.Save(ctx, localClientID, apiKey); err != nil {
			return nil, fmt.Errorf("--api-key: %w", err)
		}
	}
	return consultation.NewController(localClientID, ai.NewProvider(cfg), creds, doc), nil
}

func runInteractive(cmd *cobra.Command, args []string) error {
	ctrl, err := newController(cmd.Context(), theme.NewDocument())
	if err != nil {
		return err
	}
	defer ctrl.Close()

	if _, err := tea.NewProgram(newModel(ctrl), tea.WithAltScreen()).Run(); err != nil {
		return err
	}
	return nil
}

func runAsk(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	ctrl, err := newController(ctx, theme.NewDocument())
	if err != nil {
		return err
	}
	defer ctrl.Close()

	symptoms := strings.Join(args, " ")
	if _, err := ctrl.Update(consultation.Patch{
		Symptoms:        &symptoms,
		IncludeDiet:     &includeDiet,
		IncludeExercise: &includeExercise,
	}); err != nil {
		return err
	}

	snap, err := ctrl.Submit(ctx)
	if err != nil {
		if snap.Notice != nil && !errors.Is(err, consultation.ErrAdviceUnavailable) {
			return errors.New(renderNotice(snap.Notice))
		}
		return err
	}

	out := cmd.OutOrStdout()
	if jsonOutput {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(snap)
	}
	fmt.Fprintln(out, renderAdvice(snap, false))
	return nil
}
