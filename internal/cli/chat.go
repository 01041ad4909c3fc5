package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ppiankov/medqa/internal/dialog"
	"github.com/ppiankov/medqa/internal/model"
)

var chatLLM bool

// chatCmd represents the interactive chat command
var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Interactive question answering with conversation context",
	Long: `Chat answers questions one line at a time and remembers the last
disease and symptom discussed, so follow-ups like "它怎么治疗" or
"这些并发症有什么症状" refer to the earlier subject.

Commands:
  /llm     toggle LLM answers
  /reset   forget the conversation and return to the starting answer mode
  /exit    quit (also: exit, quit, 退出)`,
	Args: cobra.NoArgs,
	RunE: runChat,
}

func init() {
	rootCmd.AddCommand(chatCmd)
	chatCmd.Flags().BoolVar(&chatLLM, "llm", false, "start with LLM answers enabled")
}

// answerer is the part of the pipeline a chat session uses
type answerer interface {
	Chat(ctx context.Context, question string, conv *model.ConversationContext) model.ChatResult
	Ask(ctx context.Context, question string, conv *model.ConversationContext) model.ChatResult
}

func runChat(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	a, err := newApp(ctx, cmd)
	if err != nil {
		return err
	}
	defer a.shutdown(context.Background())

	return chatLoop(ctx, a.pipeline, cmd.InOrStdin(), cmd.OutOrStdout(), chatLLM)
}

// chatLoop reads questions from in until EOF or an exit command
func chatLoop(ctx context.Context, engine answerer, in io.Reader, out io.Writer, useLLM bool) error {
	var conv model.ConversationContext
	startLLM := useLLM
	scanner := bufio.NewScanner(in)

	fmt.Fprintln(out, "🏥 medqa 医疗问答 (输入 /exit 退出)")
	for {
		fmt.Fprint(out, "\n> ")
		if !scanner.Scan() {
			break
		}
		line := strings.TrimSpace(scanner.Text())

		switch line {
		case "":
			continue
		case "/exit", "exit", "quit", "退出":
			return nil
		case "/reset":
			conv = model.ConversationContext{}
			useLLM = startLLM
			fmt.Fprintln(out, "对话已重置")
			continue
		case "/llm":
			useLLM = !useLLM
			fmt.Fprintf(out, "LLM 回答: %v\n", useLLM)
			continue
		}

		var res model.ChatResult
		if useLLM {
			res = engine.Ask(ctx, line, &conv)
		} else {
			res = engine.Chat(ctx, line, &conv)
		}
		conv = dialog.Record(conv, line, res)

		if err := printResult(out, res, false); err != nil {
			return err
		}
		if err := ctx.Err(); err != nil {
			return err
		}
	}

	if err := scanner.Err(); err != nil {
		return fmt.Errorf("read input: %w", err)
	}
	return nil
}
