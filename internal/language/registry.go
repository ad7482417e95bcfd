// Package language holds the static table of natively executable languages:
// how a source file is named, which command runs it, how to check that the
// toolchain is installed, and which source rewrite (if any) must happen first.
//
// The set of languages is closed. A Registry is built once at startup and is
// read-only afterwards, so it is safe for concurrent use without locking.
package language

import (
	"path/filepath"
	"sort"
	"strings"
)

// ID is a language identifier as it appears on the wire ("java", "cpp", ...).
type ID string

const (
	JavaScript ID = "javascript"
	TypeScript ID = "typescript"
	Python     ID = "python"
	Java       ID = "java"
	CPP        ID = "cpp"
	C          ID = "c"
)

// Command template placeholders.
const (
	PlaceholderFilename   = "{filename}"
	PlaceholderClassname  = "{classname}"
	PlaceholderExecutable = "{executable}"
)

// Resolved is what a preparer decided about the staged program. Every field
// is derived from generated identifiers or from a validated class name, never
// from raw request text.
type Resolved struct {
	FileName   string // source file name inside the staging directory
	ClassName  string // Java main class
	Executable string // absolute path of the compiled binary (C, C++)
}

// PrepareFunc rewrites the staged source at path before execution. id is the
// generated program identifier the file was named after.
type PrepareFunc func(path, id, code string) (Resolved, error)

// Spec is the execution recipe for one language.
type Spec struct {
	ID                 ID
	Name               string // display name, e.g. "C++"
	Extension          string
	Template           string // shell command with placeholders
	CheckCommand       string // optional; empty means no probe
	UnavailableMessage string
	Prepare            PrepareFunc // optional; nil means the source runs verbatim
}

// PrepareSource applies the language's preparer, or the identity transform
// when there is none.
func (s Spec) PrepareSource(path, id, code string) (Resolved, error) {
	if s.Prepare == nil {
		return Resolved{FileName: filepath.Base(path), ClassName: id}, nil
	}
	return s.Prepare(path, id, code)
}

// Render substitutes the resolved names into the command template. Every
// substituted value is single-quoted for the shell.
func (s Spec) Render(r Resolved) string {
	return strings.NewReplacer(
		PlaceholderFilename, shellQuote(r.FileName),
		PlaceholderClassname, shellQuote(r.ClassName),
		PlaceholderExecutable, shellQuote(r.Executable),
	).Replace(s.Template)
}

// Unavailable returns the remediation message for a missing toolchain.
func (s Spec) Unavailable() string {
	if s.UnavailableMessage != "" {
		return s.UnavailableMessage
	}
	return "Required tools for " + string(s.ID) + " are not available on the server."
}

// Registry maps language identifiers to their Spec.
type Registry struct {
	specs map[ID]Spec
}

// NewRegistry builds a registry from the given specs. Later specs with the
// same ID replace earlier ones.
func NewRegistry(specs ...Spec) *Registry {
	r := &Registry{specs: make(map[ID]Spec, len(specs))}
	for _, s := range specs {
		r.specs[s.ID] = s
	}
	return r
}

// Default returns the registry of the six natively supported languages.
func Default() *Registry {
	return NewRegistry(
		Spec{
			ID:        JavaScript,
			Name:      "JavaScript",
			Extension: "js",
			Template:  "node {filename}",
		},
		Spec{
			ID:                 TypeScript,
			Name:               "TypeScript",
			Extension:          "ts",
			Template:           `npx ts-node --compilerOptions '{"module":"commonjs"}' {filename}`,
			CheckCommand:       "npx ts-node --version",
			UnavailableMessage: "TypeScript execution requires ts-node. The server doesn't have it properly configured.",
			Prepare:            prepareTypeScript,
		},
		Spec{
			ID:                 Python,
			Name:               "Python",
			Extension:          "py",
			Template:           "python {filename}",
			CheckCommand:       "python --version",
			UnavailableMessage: "Python execution requires Python to be installed on the server.",
		},
		Spec{
			ID:                 Java,
			Name:               "Java",
			Extension:          "java",
			Template:           "javac {filename} && java {classname}",
			CheckCommand:       "javac -version",
			UnavailableMessage: "Java execution requires the Java Development Kit (JDK) to be installed on the server.",
			Prepare:            prepareJava,
		},
		Spec{
			ID:                 CPP,
			Name:               "C++",
			Extension:          "cpp",
			Template:           "g++ {filename} -o {executable} && {executable}",
			CheckCommand:       "g++ --version",
			UnavailableMessage: "C++ execution requires g++ compiler to be installed on the server.",
			Prepare:            prepareCompiled,
		},
		Spec{
			ID:                 C,
			Name:               "C",
			Extension:          "c",
			Template:           "gcc {filename} -o {executable} && {executable}",
			CheckCommand:       "gcc --version",
			UnavailableMessage: "C execution requires gcc compiler to be installed on the server.",
			Prepare:            prepareCompiled,
		},
	)
}

// Lookup returns the spec for id. The match is exact; callers normalise case
// before calling if they want to.
func (r *Registry) Lookup(id string) (Spec, bool) {
	s, ok := r.specs[ID(id)]
	return s, ok
}

// IDs returns the supported identifiers in sorted order.
func (r *Registry) IDs() []ID {
	ids := make([]ID, 0, len(r.specs))
	for id := range r.specs {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

func shellQuote(s string) string {
	return "'" + strings.ReplaceAll(s, "'", `'\''`) + "'"
}
