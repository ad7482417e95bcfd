package language

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"strings"
)

// exportListPattern matches `export { a, b };` on a single line.
var exportListPattern = regexp.MustCompile(`export\s+\{.*?\};?`)

// prepareTypeScript strips module export lists so the snippet runs as a
// plain CommonJS script.
func prepareTypeScript(path, id, code string) (Resolved, error) {
	stripped := exportListPattern.ReplaceAllString(code, "")
	if err := writeSource(path, stripped); err != nil {
		return Resolved{}, err
	}
	return Resolved{FileName: filepath.Base(path), ClassName: id}, nil
}

// prepareJava makes the file name agree with the public class name, which
// javac requires.
//
//   - no public class: the snippet becomes the body of main() in a class
//     named id, written to path;
//   - public class named differently: the source moves to <Name>.java and
//     path is removed;
//   - public class already named id: rewritten in place.
func prepareJava(path, id, code string) (Resolved, error) {
	decl, ok := FindPublicClass(code)
	if !ok {
		if err := writeSource(path, wrapJavaMain(id, code)); err != nil {
			return Resolved{}, err
		}
		return Resolved{FileName: id + ".java", ClassName: id}, nil
	}

	if decl.Name != id {
		renamed := filepath.Join(filepath.Dir(path), decl.Name+".java")
		if err := writeSource(renamed, code); err != nil {
			return Resolved{}, err
		}
		if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return Resolved{}, fmt.Errorf("removing %s: %w", filepath.Base(path), err)
		}
		return Resolved{FileName: decl.Name + ".java", ClassName: decl.Name}, nil
	}

	rewritten := code[:decl.Start] + id + code[decl.End:]
	if err := writeSource(path, rewritten); err != nil {
		return Resolved{}, err
	}
	return Resolved{FileName: id + ".java", ClassName: id}, nil
}

func wrapJavaMain(className, code string) string {
	lines := strings.Split(code, "\n")
	for i, line := range lines {
		lines[i] = "    " + line
	}

	var b strings.Builder
	b.WriteString("\npublic class ")
	b.WriteString(className)
	b.WriteString(" {\n  public static void main(String[] args) {\n")
	b.WriteString(strings.Join(lines, "\n"))
	b.WriteString("\n  }\n}")
	return b.String()
}

// prepareCompiled leaves the source alone and decides where the binary goes:
// next to the source, named after the program identifier.
func prepareCompiled(path, id, _ string) (Resolved, error) {
	return Resolved{
		FileName:   filepath.Base(path),
		ClassName:  id,
		Executable: filepath.Join(filepath.Dir(path), id),
	}, nil
}

func writeSource(path, code string) error {
	if err := os.WriteFile(path, []byte(code), 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", filepath.Base(path), err)
	}
	return nil
}
