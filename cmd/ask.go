package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ziadkadry99/ai-tutor/internal/tutor"
)

var askCmd = &cobra.Command{
	Use:   "ask [question]",
	Short: "Answer one question from the indexed document",
	Long:  `Runs a question through retrieval and generation and prints the tagged answer followed by the passages it was grounded on.`,
	Args:  cobra.MinimumNArgs(1),
	RunE:  runAsk,
}

func init() {
	askCmd.Flags().Bool("json", false, "output the full response as JSON")
	rootCmd.AddCommand(askCmd)
}

func runAsk(cmd *cobra.Command, args []string) error {
	jsonOutput, _ := cmd.Flags().GetBool("json")
	quietLogs()

	a, err := buildApp()
	if err != nil {
		return err
	}
	defer a.close()

	resp, err := a.service.Answer(context.Background(), strings.Join(args, " "))
	if err != nil {
		return fmt.Errorf("%s", tutor.AsError(err).Message)
	}

	if jsonOutput {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(resp)
	}

	fmt.Println(resp.AIResponse)
	if len(resp.Results) > 0 {
		fmt.Printf("\nRetrieved %d passage(s):\n\n", len(resp.Results))
		for i, r := range resp.Results {
			fmt.Printf("  %d. chunk %s\n", i+1, r.ChunkNumber)
			fmt.Printf("     %s\n\n", truncate(strings.ReplaceAll(r.Text, "\n", " "), 160))
		}
	}
	return nil
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max] + "..."
}
