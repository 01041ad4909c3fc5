package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"time"

	"github.com/spf13/cobra"

	"github.com/ppiankov/medqa/internal/model"
	"github.com/ppiankov/medqa/internal/worker"
)

var (
	concurrency  int
	outputFile   string
	batchTimeout time.Duration
)

// batchCmd represents the batch command
var batchCmd = &cobra.Command{
	Use:   "batch <file>",
	Short: "Answer questions from a file in parallel",
	Long: `Batch answers many questions concurrently:
- Read questions from the input file (one per line, # starts a comment)
- Skip duplicate questions
- Answer with a bounded worker pool; questions share no context
- Write one JSON object per question, in input order

Example:
  medqa batch questions.txt
  medqa batch questions.txt --concurrency 8 --output answers.jsonl`,
	Args: cobra.ExactArgs(1),
	RunE: runBatch,
}

func init() {
	rootCmd.AddCommand(batchCmd)

	batchCmd.Flags().IntVar(&concurrency, "concurrency", 0, "number of concurrent workers (default: concurrency.batch_workers)")
	batchCmd.Flags().StringVarP(&outputFile, "output", "o", "", "write JSON lines here instead of stdout")
	batchCmd.Flags().DurationVar(&batchTimeout, "timeout", 10*time.Minute, "total timeout for batch processing")
}

// batchRecord is one line of batch output
type batchRecord struct {
	Index    int              `json:"index"`
	Question string           `json:"question"`
	Result   model.ChatResult `json:"result"`
}

func runBatch(cmd *cobra.Command, args []string) (err error) {
	file := args[0]
	ctx, cancel := context.WithTimeout(cmd.Context(), batchTimeout)
	defer cancel()

	a, err := newApp(ctx, cmd)
	if err != nil {
		return err
	}
	defer a.shutdown(context.Background())

	workers := concurrency
	if workers <= 0 {
		workers = a.cfg.Concurrency.BatchWorkers
	}

	fmt.Fprintf(os.Stderr, "\n")
	fmt.Fprintf(os.Stderr, "═══════════════════════════════════════════════════════════\n")
	fmt.Fprintf(os.Stderr, "  medqa Batch Processing\n")
	fmt.Fprintf(os.Stderr, "═══════════════════════════════════════════════════════════\n")
	fmt.Fprintf(os.Stderr, "\n")
	fmt.Fprintf(os.Stderr, "  Input file:   %s\n", file)
	fmt.Fprintf(os.Stderr, "  Workers:      %d\n", workers)
	fmt.Fprintf(os.Stderr, "  Timeout:      %v\n", batchTimeout)
	fmt.Fprintf(os.Stderr, "\n")

	start := time.Now()
	processor := worker.NewBatchProcessor(a.pipeline, workers)
	results, err := processor.ProcessFile(ctx, file)
	if err != nil {
		return fmt.Errorf("process file: %w", err)
	}

	out := cmd.OutOrStdout()
	if outputFile != "" {
		f, createErr := os.Create(outputFile)
		if createErr != nil {
			return fmt.Errorf("create output: %w", createErr)
		}
		defer func() {
			if closeErr := f.Close(); closeErr != nil && err == nil {
				err = fmt.Errorf("close output: %w", closeErr)
			}
		}()
		out = f
	}

	enc := json.NewEncoder(out)
	enc.SetEscapeHTML(false)
	outcomes := make(map[model.Outcome]int)
	failures := 0
	for _, r := range results {
		outcomes[r.Result.Process.Outcome]++
		if r.Error != nil {
			failures++
			fmt.Fprintf(os.Stderr, "✗ %s: %v\n", r.Question, r.Error)
		}
		if err := enc.Encode(batchRecord{Index: r.Index, Question: r.Question, Result: r.Result}); err != nil {
			return fmt.Errorf("write result: %w", err)
		}
	}

	// Summary
	fmt.Fprintf(os.Stderr, "\n")
	fmt.Fprintf(os.Stderr, "═══════════════════════════════════════════════════════════\n")
	fmt.Fprintf(os.Stderr, "  Batch Complete\n")
	fmt.Fprintf(os.Stderr, "═══════════════════════════════════════════════════════════\n")
	fmt.Fprintf(os.Stderr, "\n")
	fmt.Fprintf(os.Stderr, "  Total:     %d questions\n", len(results))
	for _, o := range sortedOutcomes(outcomes) {
		fmt.Fprintf(os.Stderr, "  %-12s %d\n", o+":", outcomes[model.Outcome(o)])
	}
	fmt.Fprintf(os.Stderr, "  Errors:    %d\n", failures)
	fmt.Fprintf(os.Stderr, "  Elapsed:   %v\n", time.Since(start).Round(time.Millisecond))
	fmt.Fprintf(os.Stderr, "\n")

	return nil
}

func sortedOutcomes(m map[model.Outcome]int) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, string(k))
	}
	sort.Strings(keys)
	return keys
}
