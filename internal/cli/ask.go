package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/ppiankov/medqa/internal/model"
	"github.com/ppiankov/medqa/internal/pipeline"
)

var (
	askLLM     bool
	askJSON    bool
	askTimeout time.Duration
)

// askCmd represents the ask command
var askCmd = &cobra.Command{
	Use:   "ask <question>",
	Short: "Answer a single question",
	Long: `Ask answers one question from the knowledge graph:
- Rewrite colloquial phrasing into standard wording
- Run a multi-hop reasoning chain for compound questions
- Otherwise classify the question and query the graph per question type
- With --llm, ground an LLM answer in the retrieved graph facts

Example:
  medqa ask 糖尿病有什么症状
  medqa ask 高血压的并发症有哪些症状
  medqa ask 感冒吃啥药 --llm
  medqa ask 头痛怎么办 --json`,
	Args: cobra.MinimumNArgs(1),
	RunE: runAsk,
}

func init() {
	rootCmd.AddCommand(askCmd)

	askCmd.Flags().BoolVar(&askLLM, "llm", false, "answer with the LLM grounded in graph facts")
	askCmd.Flags().BoolVar(&askJSON, "json", false, "print the full result as JSON")
	askCmd.Flags().DurationVar(&askTimeout, "timeout", 2*time.Minute, "overall timeout")
}

func runAsk(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithTimeout(cmd.Context(), askTimeout)
	defer cancel()

	a, err := newApp(ctx, cmd)
	if err != nil {
		return err
	}
	defer a.shutdown(context.Background())

	question := strings.Join(args, " ")
	var res model.ChatResult
	if askLLM {
		res = a.pipeline.Ask(ctx, question, nil)
	} else {
		res = a.pipeline.Chat(ctx, question, nil)
	}

	if verbose {
		printProcess(os.Stderr, res.Process)
	}
	return printResult(cmd.OutOrStdout(), res, askJSON)
}

// printResult writes the rendered answer, or the whole result as JSON
func printResult(w io.Writer, res model.ChatResult, asJSON bool) error {
	if asJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		enc.SetEscapeHTML(false)
		if err := enc.Encode(res); err != nil {
			return fmt.Errorf("encode result: %w", err)
		}
		return nil
	}
	_, err := fmt.Fprintln(w, pipeline.Render(res))
	return err
}

func printProcess(w io.Writer, p model.ProcessInfo) {
	fmt.Fprintf(w, "request:  %s\n", p.RequestID)
	fmt.Fprintf(w, "method:   %s\n", p.Method)
	fmt.Fprintf(w, "outcome:  %s\n", p.Outcome)
	if p.Error != model.ErrorNone {
		fmt.Fprintf(w, "error:    %s (%s)\n", p.Error, p.ErrorDetail)
	}
	if p.Rewrite != nil {
		for _, r := range p.Rewrite.Rules {
			fmt.Fprintf(w, "rewrite:  %s\n", r)
		}
	}
	fmt.Fprintln(w)
}
