package cli

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/tutorforge/internal/core/domain"
)

var (
	knowledgeLimit int
	knowledgeType  string
	knowledgeJSON  bool
)

var knowledgeCmd = &cobra.Command{
	Use:   "knowledge",
	Short: "Inspect the knowledge base",
	Long:  `Query and count the glossary terms and reference documents stored in the knowledge base.`,
}

var knowledgeQueryCmd = &cobra.Command{
	Use:   "query [text]",
	Short: "Search the knowledge base",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runKnowledgeQuery,
}

var knowledgeCountCmd = &cobra.Command{
	Use:   "count",
	Short: "Show the number of stored items",
	Args:  cobra.NoArgs,
	RunE:  runKnowledgeCount,
}

func init() {
	knowledgeQueryCmd.Flags().IntVarP(&knowledgeLimit, "limit", "n", 5, "maximum number of results")
	knowledgeQueryCmd.Flags().StringVar(&knowledgeType, "type", "",
		fmt.Sprintf("only return items of this type (%s or %s)", domain.KnowledgeTypeGlossary, domain.KnowledgeTypeRAGDocument))
	knowledgeQueryCmd.Flags().BoolVar(&knowledgeJSON, "json", false, "output results as JSON")
	knowledgeCmd.AddCommand(knowledgeQueryCmd)
	knowledgeCmd.AddCommand(knowledgeCountCmd)
	rootCmd.AddCommand(knowledgeCmd)
}

func runKnowledgeQuery(cmd *cobra.Command, args []string) error {
	rt, err := loadRuntime(cmd.Context())
	if err != nil {
		return err
	}

	hits, err := rt.Knowledge.Query(cmd.Context(), strings.Join(args, " "), knowledgeLimit, knowledgeType)
	if err != nil {
		return fmt.Errorf("query failed: %w", err)
	}

	if knowledgeJSON {
		data, err := json.MarshalIndent(hits, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal results: %w", err)
		}
		cmd.Println(string(data))
		return nil
	}

	if len(hits) == 0 {
		cmd.Println("No results found.")
		return nil
	}
	for i, hit := range hits {
		label := hit.Item.Metadata[domain.MetaType]
		if src := hit.Item.Metadata[domain.MetaSource]; src != "" {
			label += " · " + src
		}
		cmd.Printf("  [%d] %s (%.2f)\n", i+1, hit.Item.ID, hit.Score)
		if label != "" {
			cmd.Printf("      %s\n", label)
		}
		cmd.Printf("      %s\n\n", snippet(hit.Item.Text, 160))
	}
	return nil
}

func runKnowledgeCount(cmd *cobra.Command, _ []string) error {
	rt, err := loadRuntime(cmd.Context())
	if err != nil {
		return err
	}

	n, err := rt.Knowledge.Count(cmd.Context())
	if err != nil {
		return fmt.Errorf("count failed: %w", err)
	}
	cmd.Printf("%d item(s) in the knowledge base\n", n)
	return nil
}

// snippet flattens text to one line of at most n runes.
func snippet(text string, n int) string {
	flat := strings.Join(strings.Fields(text), " ")
	runes := []rune(flat)
	if len(runes) <= n {
		return flat
	}
	return string(runes[:n]) + "..."
}
