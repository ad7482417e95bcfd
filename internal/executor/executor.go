package executor

import (
	"context"
	"fmt"
	"strings"
)

// Source tells the caller which path produced a result.
type Source string

const (
	SourceNative Source = "native"
	SourceAI     Source = "ai"
)

// ExecutionRequest is a snippet submitted for execution.
type ExecutionRequest struct {
	Code     string `json:"code"`
	Language string `json:"language"`
}

// ExecutionResult is what the caller sees. Output is stdout (or the model
// reply); Error is stderr, a timeout notice, or empty.
type ExecutionResult struct {
	Output   string `json:"output"`
	Error    string `json:"error"`
	Language string `json:"language"`
	Source   Source `json:"source"`
}

// Executor runs a snippet and returns its normalised result.
type Executor interface {
	Execute(ctx context.Context, req ExecutionRequest) (*ExecutionResult, error)
}

// Strategy selects which executor serves a request. Exactly one path is
// taken per request; with NativeWithAIFallback the AI path is used only when
// the native toolchain is missing.
type Strategy int

const (
	NativeOnly Strategy = iota
	AIOnly
	NativeWithAIFallback
)

func (s Strategy) String() string {
	switch s {
	case NativeOnly:
		return "native"
	case AIOnly:
		return "ai"
	case NativeWithAIFallback:
		return "native-with-ai-fallback"
	default:
		return fmt.Sprintf("Strategy(%d)", int(s))
	}
}

// ParseStrategy accepts the names produced by String.
func ParseStrategy(s string) (Strategy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "native":
		return NativeOnly, nil
	case "ai":
		return AIOnly, nil
	case "native-with-ai-fallback", "fallback":
		return NativeWithAIFallback, nil
	default:
		return NativeOnly, fmt.Errorf("unknown execution strategy %q", s)
	}
}
