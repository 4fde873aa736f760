package cmd

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ziadkadry99/ai-tutor/internal/answer"
	"github.com/ziadkadry99/ai-tutor/internal/progress"
	"github.com/ziadkadry99/ai-tutor/internal/tutor"
)

var batchCmd = &cobra.Command{
	Use:   "batch [questions-file]",
	Short: "Answer every question in a file",
	Long: `Reads one question per line (blank lines and lines starting with # are
skipped), answers each in turn and writes one JSON object per question.
A per-source summary is printed to stderr at the end.`,
	Args: cobra.ExactArgs(1),
	RunE: runBatch,
}

func init() {
	batchCmd.Flags().StringP("out", "o", "", "write JSON lines to this file instead of stdout")
	rootCmd.AddCommand(batchCmd)
}

// batchRecord is one line of batch output.
type batchRecord struct {
	Query  string         `json:"query"`
	Source string         `json:"source,omitempty"`
	Error  string         `json:"error,omitempty"`
	Result *tutor.Response `json:"result,omitempty"`
}

func runBatch(cmd *cobra.Command, args []string) error {
	outPath, _ := cmd.Flags().GetString("out")
	quietLogs()

	questions, err := readQuestions(args[0])
	if err != nil {
		return err
	}
	if len(questions) == 0 {
		fmt.Fprintln(os.Stderr, "No questions found.")
		return nil
	}

	a, err := buildApp()
	if err != nil {
		return err
	}
	defer a.close()

	var out io.Writer = os.Stdout
	if outPath != "" {
		f, err := os.Create(outPath)
		if err != nil {
			return fmt.Errorf("creating %s: %w", outPath, err)
		}
		defer f.Close()
		out = f
	}

	counts, err := answerAll(cmd.Context(), a.service, questions, out, progress.NewReporter())
	if err != nil {
		return err
	}

	fmt.Fprintf(os.Stderr, "\nAnswered %d question(s):\n", len(questions))
	for _, src := range answer.Sources {
		fmt.Fprintf(os.Stderr, "  %-45s %d\n", src.Tag(), counts[string(src)])
	}
	if n := counts[""]; n > 0 {
		fmt.Fprintf(os.Stderr, "  %-45s %d\n", "rejected", n)
	}
	return nil
}

// answerAll answers questions in order, writing one JSON line each, and
// returns how many answers carried each source. Rejected questions count
// under the empty key.
func answerAll(ctx context.Context, svc *tutor.Service, questions []string, out io.Writer, reporter progress.Reporter) (map[string]int, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	enc := json.NewEncoder(out)
	counts := make(map[string]int)

	reporter.Start(len(questions))
	defer reporter.Finish()

	for i, q := range questions {
		rec := batchRecord{Query: q}
		resp, err := svc.Answer(ctx, q)
		if err != nil {
			rec.Error = tutor.AsError(err).Message
		} else {
			rec.Result = resp
			if src, _, ok := answer.Parse(resp.AIResponse); ok {
				rec.Source = string(src)
			}
		}
		counts[rec.Source]++

		if err := enc.Encode(rec); err != nil {
			return counts, fmt.Errorf("writing result %d: %w", i+1, err)
		}
		reporter.Update(i+1, truncate(q, 40))
	}
	return counts, nil
}

// readQuestions loads the non-blank, non-comment lines of path.
func readQuestions(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()

	var questions []string
	sc := bufio.NewScanner(f)
	sc.Buffer(make([]byte, 0, 64*1024), 1<<20)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		questions = append(questions, line)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	return questions, nil
}
