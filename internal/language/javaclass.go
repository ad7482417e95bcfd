package language

import "regexp"

// publicClassPattern is the whole grammar for finding a Java entry class:
//
//	public [final|abstract ...] class <Identifier>
//
// where Identifier is ASCII letters, digits and underscores, not starting
// with a digit. Generics, annotations between the keywords, and non-ASCII
// identifiers are not recognised. The first match wins.
var publicClassPattern = regexp.MustCompile(
	`\bpublic\s+(?:(?:final|abstract|strictfp)\s+)*class\s+([A-Za-z_][A-Za-z0-9_]*)`,
)

// ClassDecl locates the class name of a `public class` declaration.
// Start and End are byte offsets of the name in the original source.
type ClassDecl struct {
	Name       string
	Start, End int
}

// FindPublicClass returns the first public class declaration in code.
// Comments and string, char and text-block literals are ignored, so
// `// public class Foo` does not count.
func FindPublicClass(code string) (ClassDecl, bool) {
	masked := maskJavaNonCode(code)
	loc := publicClassPattern.FindStringSubmatchIndex(masked)
	if loc == nil {
		return ClassDecl{}, false
	}
	start, end := loc[2], loc[3]
	return ClassDecl{Name: code[start:end], Start: start, End: end}, true
}

// maskJavaNonCode replaces every byte inside comments and literals with a
// space, keeping newlines and byte offsets intact.
func maskJavaNonCode(code string) string {
	out := []byte(code)
	blank := func(from, to int) {
		for i := from; i < to && i < len(out); i++ {
			if out[i] != '\n' {
				out[i] = ' '
			}
		}
	}

	n := len(code)
	for i := 0; i < n; {
		switch {
		case hasPrefixAt(code, i, "//"):
			j := i
			for j < n && code[j] != '\n' {
				j++
			}
			blank(i, j)
			i = j
		case hasPrefixAt(code, i, "/*"):
			j := i + 2
			for j < n && !hasPrefixAt(code, j, "*/") {
				j++
			}
			j = min(j+2, n)
			blank(i, j)
			i = j
		case hasPrefixAt(code, i, `"""`):
			j := i + 3
			for j < n && !hasPrefixAt(code, j, `"""`) {
				if code[j] == '\\' {
					j++
				}
				j++
			}
			j = min(j+3, n)
			blank(i, j)
			i = j
		case code[i] == '"' || code[i] == '\'':
			quote := code[i]
			j := i + 1
			for j < n && code[j] != quote && code[j] != '\n' {
				if code[j] == '\\' {
					j++
				}
				j++
			}
			j = min(j+1, n)
			blank(i, j)
			i = j
		default:
			i++
		}
	}
	return string(out)
}

func hasPrefixAt(s string, i int, prefix string) bool {
	return len(s)-i >= len(prefix) && s[i:i+len(prefix)] == prefix
}
