package worker

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/ppiankov/medqa/internal/model"
)

// Asker answers a single question
type Asker interface {
	Chat(ctx context.Context, question string, conv *model.ConversationContext) model.ChatResult
}

// AskJob represents one question in a batch
type AskJob struct {
	Index    int
	Question string
	Asker    Asker
}

// Execute executes the ask job. Questions in a batch are independent, so no
// conversation context is carried between them.
func (j *AskJob) Execute(ctx context.Context) Result {
	res := j.Asker.Chat(ctx, j.Question, nil)

	out := &AskResult{
		Index:    j.Index,
		Question: j.Question,
		Result:   res,
	}
	if res.Process.Error != model.ErrorNone {
		out.Error = fmt.Errorf("%s: %s", res.Process.Error, res.Process.ErrorDetail)
	}
	return out
}

// AskResult represents the result of an ask job
type AskResult struct {
	Index    int
	Question string
	Result   model.ChatResult
	Error    error
}

// GetError returns the collaborator error reported for the question, if any
func (r *AskResult) GetError() error {
	return r.Error
}

// BatchProcessor answers many questions concurrently
type BatchProcessor struct {
	asker       Asker
	concurrency int
}

// NewBatchProcessor creates a new batch processor
func NewBatchProcessor(asker Asker, concurrency int) *BatchProcessor {
	return &BatchProcessor{
		asker:       asker,
		concurrency: concurrency,
	}
}

// ProcessQuestions answers questions concurrently; results keep input order
func (b *BatchProcessor) ProcessQuestions(ctx context.Context, questions []string) []*AskResult {
	if len(questions) == 0 {
		return []*AskResult{}
	}

	pool := NewPoolWithContext(ctx, b.concurrency)
	pool.Start()

	for i, q := range questions {
		pool.Submit(&AskJob{
			Index:    i,
			Question: q,
			Asker:    b.asker,
		})
	}

	results := pool.Wait()

	askResults := make([]*AskResult, len(results))
	for i, result := range results {
		askResults[i] = result.(*AskResult)
	}
	sort.Slice(askResults, func(i, j int) bool { return askResults[i].Index < askResults[j].Index })

	return askResults
}

// ProcessFile reads questions from a file and answers them concurrently
func (b *BatchProcessor) ProcessFile(ctx context.Context, filePath string) ([]*AskResult, error) {
	questions, err := ReadQuestionsFromFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("read questions: %w", err)
	}

	return b.ProcessQuestions(ctx, questions), nil
}

// ReadQuestionsFromFile reads questions from a file (one per line)
func ReadQuestionsFromFile(filePath string) ([]string, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("open file: %w", err)
	}
	defer func() { _ = file.Close() }()

	var questions []string
	seen := make(map[string]bool)

	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())

		// Skip empty lines and comments
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		if !seen[line] {
			seen[line] = true
			questions = append(questions, line)
		}
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scan file: %w", err)
	}

	return questions, nil
}
