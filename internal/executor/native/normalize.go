package native

import (
	"fmt"
	"strings"
	"time"

	"github.com/sakif/interview-runner/internal/executor"
	"github.com/sakif/interview-runner/internal/language"
)

const (
	javaClassHint = "\n\nNote: In Java, the file name must match the public class name. " +
		"Our system tried to handle this but encountered an issue."
	typeScriptExportHint = "\n\nNote: Remove any 'export' statements from your TypeScript code when running in this environment."
)

// TimeoutMessage is the error text reported when a run exceeds limit.
func TimeoutMessage(limit time.Duration) string {
	if limit%time.Second == 0 {
		return fmt.Sprintf("Execution timed out (limit: %d seconds).", int(limit/time.Second))
	}
	return fmt.Sprintf("Execution timed out (limit: %dms).", limit.Milliseconds())
}

// Normalize turns a raw outcome into the result returned to the caller.
// Known failure signatures get a short note appended to Error; the captured
// text itself is never rewritten.
func Normalize(lang language.ID, o Outcome, limit time.Duration) *executor.ExecutionResult {
	res := &executor.ExecutionResult{
		Language: string(lang),
		Source:   executor.SourceNative,
	}

	switch o.Kind {
	case OutcomeTimeout:
		res.Error = TimeoutMessage(limit)
		return res
	case OutcomeOK:
		res.Output = o.Stdout
		res.Error = o.Stderr
	default:
		res.Output = o.Stdout
		res.Error = o.Stderr
		if res.Error == "" {
			res.Error = o.Message
		}
	}

	res.Error += hintFor(lang, res.Error)
	return res
}

func hintFor(lang language.ID, errText string) string {
	switch lang {
	case language.Java:
		if strings.Contains(errText, "class") && strings.Contains(errText, "public") {
			return javaClassHint
		}
	case language.TypeScript:
		if strings.Contains(errText, "Unexpected token 'export'") {
			return typeScriptExportHint
		}
	case language.CPP, language.C:
		if strings.Contains(errText, "not recognized") || strings.Contains(errText, "not found") {
			compiler := "g++"
			if lang == language.C {
				compiler = "gcc"
			}
			return "\n\nNote: " + compiler + " compiler is not installed or not in the system PATH."
		}
	}
	return ""
}
