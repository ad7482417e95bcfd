// Package ai simulates program execution with a chat-completion model. It is
// the fallback for hosts without a toolchain and never touches the
// filesystem or spawns processes.
package ai

import (
	"context"
	"log/slog"
	"regexp"
	"strings"
	"time"

	"github.com/sashabaranov/go-openai"

	"github.com/sakif/interview-runner/internal/apperror"
	"github.com/sakif/interview-runner/internal/executor"
)

// NoOutput is reported when the model says nothing, and is the convention
// the prompt asks the model to use for a silent program.
const NoOutput = "No output"

const systemMessage = "You are a precise code execution simulator that only shows program output."

// MissingKeyMessage is returned when no model client is configured.
const MissingKeyMessage = "OpenAI API key is not configured. Please set the OPENAI_API_KEY environment variable."

// ChatClient is the subset of *openai.Client the simulator needs.
type ChatClient interface {
	CreateChatCompletion(ctx context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error)
}

// Config tunes the completion call.
type Config struct {
	Model       string
	Temperature float32
	MaxTokens   int
}

// DefaultConfig favours deterministic, bounded replies.
func DefaultConfig() Config {
	return Config{
		Model:       openai.GPT3Dot5Turbo,
		Temperature: 0.2,
		MaxTokens:   1500,
	}
}

// NewOpenAIClient builds a client for apiKey. baseURL may be empty.
func NewOpenAIClient(apiKey, baseURL string) *openai.Client {
	cfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}
	return openai.NewClientWithConfig(cfg)
}

// Simulator implements executor.Executor by asking a model what the program
// would print.
type Simulator struct {
	client ChatClient
	cfg    Config
	logger *slog.Logger
}

// New creates a Simulator. A nil client is allowed: every call then fails
// with apperror.ErrConfig.
func New(client ChatClient, cfg Config, logger *slog.Logger) *Simulator {
	return &Simulator{client: client, cfg: cfg, logger: logger}
}

// Configured reports whether a model client is available.
func (s *Simulator) Configured() bool {
	return s.client != nil
}

// Execute sends the prompt for req and returns the extracted output.
func (s *Simulator) Execute(ctx context.Context, req executor.ExecutionRequest) (*executor.ExecutionResult, error) {
	if req.Code == "" || req.Language == "" {
		return nil, apperror.ValidationFailed("code", "Code and language are required")
	}
	if s.client == nil {
		return nil, apperror.Config(MissingKeyMessage)
	}

	start := time.Now()
	resp, err := s.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: s.cfg.Model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemMessage},
			{Role: openai.ChatMessageRoleUser, Content: BuildPrompt(req.Language, req.Code)},
		},
		Temperature: s.cfg.Temperature,
		MaxTokens:   s.cfg.MaxTokens,
	})
	if err != nil {
		s.logger.Error("model completion failed",
			slog.String("language", req.Language),
			slog.String("error", err.Error()),
		)
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		return nil, apperror.Upstream(err)
	}

	var content string
	if len(resp.Choices) > 0 {
		content = resp.Choices[0].Message.Content
	}

	s.logger.Info("ai execution finished",
		slog.String("language", req.Language),
		slog.Int("completionTokens", resp.Usage.CompletionTokens),
		slog.Duration("duration", time.Since(start)),
	)

	return &executor.ExecutionResult{
		Output:   ExtractOutput(content),
		Language: req.Language,
		Source:   executor.SourceAI,
	}, nil
}

// BuildPrompt is a pure function of language and code.
func BuildPrompt(lang, code string) string {
	var b strings.Builder
	b.WriteString("You are a " + lang + " code execution simulator. The following " + lang + " code was provided:\n\n")
	b.WriteString("```" + lang + "\n" + code + "\n```\n\n")
	b.WriteString("Execute this code precisely and show ONLY the output that would be produced when running this code.\n")
	b.WriteString("Do not include any explanations, comments, or preprocessing steps.\n")
	b.WriteString("If there would be compilation or runtime errors, format them exactly as they would appear in a terminal.\n")
	b.WriteString("If the code is syntactically correct and would run without producing output, respond with \"No output\".\n")

	switch lang {
	case "typescript":
		b.WriteString("\nFor TypeScript, assume that the code is transpiled to JavaScript with all type annotations removed.\n")
		b.WriteString("Consider TypeScript compilation errors where appropriate.\n")
		b.WriteString("Do not show the transpiled JavaScript, only the execution result.")
	case "cpp", "c":
		name, compiler := "C++", "g++"
		if lang == "c" {
			name, compiler = "C", "gcc"
		}
		b.WriteString("\nFor " + name + ", assume the code is compiled with " + compiler + " and then executed.\n")
		b.WriteString("Include any standard output and errors that would occur during compilation or execution.")
	}
	return b.String()
}

var (
	fencedBlockPattern = regexp.MustCompile("```(?:\\w+)?\\n([\\s\\S]+?)```")
	fenceMarkerPattern = regexp.MustCompile("```(?:\\w+)?\\n|```")
)

// ExtractOutput trims the model reply and unwraps a fenced code block.
func ExtractOutput(raw string) string {
	out := strings.TrimSpace(raw)
	if strings.HasPrefix(out, "```") {
		if m := fencedBlockPattern.FindStringSubmatch(out); m != nil {
			out = strings.TrimSpace(m[1])
		} else {
			out = strings.TrimSpace(fenceMarkerPattern.ReplaceAllString(out, ""))
		}
	}
	if out == "" {
		return NoOutput
	}
	return out
}
