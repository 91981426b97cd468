package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/custodia-labs/tutorforge/internal/adapters/driving/tui"
	"github.com/custodia-labs/tutorforge/internal/core/domain"
	"github.com/custodia-labs/tutorforge/internal/core/ports/driven"
)

var (
	convertStyle   string
	convertPrompt  string
	convertOptions []string
	convertTitle   string
	convertText    string
	convertTUI     bool
	convertJSON    bool
)

var convertCmd = &cobra.Command{
	Use:   "convert [source]",
	Short: "Convert a document into a tutorial",
	Long: `Convert a document into a tutorial for the chosen audience.

The source may be a URL, a local .txt, .md, .html or .pdf file, or a GitHub
reference of the form github:owner/repo/path[@ref]. Use "-" to read text
from stdin, or --text to pass it inline.

Styles:
  kids, highschool, undergrad, pro (default), executive

Options (repeatable or comma separated):
  code_examples, summary_table, key_takeaways, glossary

Examples:
  tutorforge convert https://example.com/article --style kids
  tutorforge convert notes.pdf -s executive -o summary_table,key_takeaways
  tutorforge convert github:golang/go/doc/go_mem.html --tui`,
	Args: cobra.MaximumNArgs(1),
	RunE: runConvert,
}

func init() {
	convertCmd.Flags().StringVarP(&convertStyle, "style", "s", domain.DefaultStyle.String(), "target audience")
	convertCmd.Flags().StringVarP(&convertPrompt, "prompt", "p", "", "extra instructions for the writer")
	convertCmd.Flags().StringSliceVarP(&convertOptions, "option", "o", nil, "optional sections to include")
	convertCmd.Flags().StringVarP(&convertTitle, "title", "t", "", "title of the tutorial")
	convertCmd.Flags().StringVar(&convertText, "text", "", "convert this text instead of a source")
	convertCmd.Flags().BoolVar(&convertTUI, "tui", false, "show an interactive progress view")
	convertCmd.Flags().BoolVar(&convertJSON, "json", false, "output the result as JSON")
	rootCmd.AddCommand(convertCmd)
}

func runConvert(cmd *cobra.Command, args []string) error {
	req, err := buildConvertRequest(cmd, args)
	if err != nil {
		return err
	}

	rt, err := loadRuntime(cmd.Context())
	if err != nil {
		return err
	}

	var result *domain.ConvertResult
	if convertTUI && !convertJSON {
		result, err = tui.Run(cmd.Context(), &tui.Ports{Convert: rt.Convert}, req,
			tea.WithInput(cmd.InOrStdin()), tea.WithOutput(cmd.OutOrStdout()))
		if errors.Is(err, tui.ErrCancelled) {
			cmd.Println("Conversion cancelled.")
			return nil
		}
	} else {
		var progress driven.ProgressSink
		if !convertJSON {
			progress = stagePrinter(cmd.ErrOrStderr())
		}
		result, err = rt.Convert.Convert(cmd.Context(), req, progress)
	}
	if err != nil {
		return fmt.Errorf("conversion failed: %w", err)
	}

	if convertJSON {
		return outputConvertJSON(cmd, result)
	}
	if !convertTUI {
		outputConvertSummary(cmd, result)
	}
	return nil
}

func buildConvertRequest(cmd *cobra.Command, args []string) (domain.ConvertRequest, error) {
	style := domain.Style(strings.ToLower(strings.TrimSpace(convertStyle)))
	if !style.IsValid() {
		return domain.ConvertRequest{}, fmt.Errorf("%w: unknown style %q (choose from %s)",
			domain.ErrInvalidArgument, convertStyle, joinStyles())
	}

	req := domain.ConvertRequest{
		Content:       convertText,
		Title:         convertTitle,
		Style:         style,
		CustomPrompt:  convertPrompt,
		OutputOptions: domain.ParseOutputOptions(convertOptions),
	}

	switch {
	case len(args) == 1 && args[0] == "-":
		data, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return domain.ConvertRequest{}, fmt.Errorf("reading stdin: %w", err)
		}
		req.Content = string(data)
	case len(args) == 1:
		req.Source = args[0]
	}

	if req.Source == "" && strings.TrimSpace(req.Content) == "" {
		return domain.ConvertRequest{}, errors.New("a source or --text is required")
	}
	return req, nil
}

// stagePrinter reports pipeline stages as they start.
func stagePrinter(w io.Writer) driven.ProgressSink {
	return driven.ProgressFunc(func(e domain.StageEvent) {
		if e.Stage == domain.StageDone {
			return
		}
		line := "→ " + string(e.Stage)
		if e.Iteration > 0 {
			line += fmt.Sprintf(" (iteration %d)", e.Iteration)
		}
		if e.Message != "" {
			line += ": " + e.Message
		}
		fmt.Fprintln(w, line)
	})
}

func outputConvertJSON(cmd *cobra.Command, result *domain.ConvertResult) error {
	data, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal result: %w", err)
	}
	cmd.Println(string(data))
	return nil
}

func outputConvertSummary(cmd *cobra.Command, result *domain.ConvertResult) {
	cmd.Printf("Tutorial: %s (%s)\n", result.Title, result.Style)
	cmd.Printf("Status:   %s after %d iteration(s)\n", result.Status, result.Iterations)
	if result.Status == domain.RunStatusMaxIterations {
		cmd.Println("          the critic did not approve; the last draft was kept")
	}
	if result.GlossarySize > 0 {
		cmd.Printf("Glossary: %d term(s)\n", result.GlossarySize)
	}
	if result.Images > 0 {
		cmd.Printf("Images:   %d\n", result.Images)
	}
	for _, f := range []struct{ label, path string }{
		{"Markdown", result.MarkdownPath},
		{"HTML", result.HTMLPath},
		{"PDF", result.PDFPath},
	} {
		if f.path != "" {
			cmd.Printf("%-9s %s\n", f.label+":", f.path)
		}
	}
}

func joinStyles() string {
	styles := domain.AllStyles()
	names := make([]string, len(styles))
	for i, s := range styles {
		names[i] = s.String()
	}
	return strings.Join(names, ", ")
}
