package include

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
)

// DefaultMaxDepth bounds include nesting when no limit is configured.
const DefaultMaxDepth = 16

// includeRegex matches "\i path" or "\i path;" on a line of its own. The
// leading blanks are kept so that included lines can be indented to match.
var includeRegex = regexp.MustCompile(`^(\s*)\\i\s+([^\s;]+)\s*;?\s*$`)

// Origin is the file and 1-based line a line of merged text came from.
type Origin struct {
	File string
	Line int
}

// Source is the text of a program file with every include spliced in, and
// the origin of each of its lines.
type Source struct {
	Text    string
	origins []Origin
}

// Origin maps a 1-based line of the merged text back to where it was written.
// Out-of-range lines map to the zero Origin.
func (s *Source) Origin(line int) Origin {
	if line < 1 || line > len(s.origins) {
		return Origin{}
	}
	return s.origins[line-1]
}

// Files lists every file that contributed to the merged text, in first-use order.
func (s *Source) Files() []string {
	seen := make(map[string]bool)
	var files []string
	for _, o := range s.origins {
		if !seen[o.File] {
			seen[o.File] = true
			files = append(files, o.File)
		}
	}
	return files
}

// Processor handles program files with \i include directives
type Processor struct {
	baseDir  string
	maxDepth int
	visited  map[string]bool
}

// NewProcessor creates a new include processor for the given base directory
func NewProcessor(baseDir string) *Processor {
	return &Processor{
		baseDir:  baseDir,
		maxDepth: DefaultMaxDepth,
		visited:  make(map[string]bool),
	}
}

// WithMaxDepth sets how deeply includes may nest. Zero or less keeps the default.
func (p *Processor) WithMaxDepth(depth int) *Processor {
	if depth > 0 {
		p.maxDepth = depth
	}
	return p
}

// ProcessFile reads a program file and resolves all \i include directives
func (p *Processor) ProcessFile(filename string) (*Source, error) {
	// Reset visited map for each top-level file processing
	p.visited = make(map[string]bool)

	absPath, err := filepath.Abs(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to get absolute path for %s: %w", filename, err)
	}

	// Includes are confined to the directory of the top-level file
	p.baseDir = filepath.Dir(absPath)

	src := &Source{}
	var text strings.Builder
	if err := p.processFileRecursive(absPath, "", 0, &text, src); err != nil {
		return nil, err
	}
	src.Text = text.String()
	return src, nil
}

func (p *Processor) processFileRecursive(filename, indent string, depth int, out *strings.Builder, src *Source) error {
	if p.visited[filename] {
		return fmt.Errorf("circular dependency detected: %s", filename)
	}
	if depth > p.maxDepth {
		return fmt.Errorf("includes nested deeper than %d levels at %s", p.maxDepth, filename)
	}

	p.visited[filename] = true
	defer func() {
		// The same file may still be included from a different branch
		delete(p.visited, filename)
	}()

	content, err := os.ReadFile(filename)
	if err != nil {
		return fmt.Errorf("failed to read file %s: %w", filename, err)
	}

	if err := p.processIncludes(string(content), filename, indent, depth, out, src); err != nil {
		return fmt.Errorf("failed to process includes in %s: %w", filename, err)
	}
	return nil
}

// processIncludes copies content line by line, splicing in included files.
func (p *Processor) processIncludes(content, filename, indent string, depth int, out *strings.Builder, src *Source) error {
	currentDir := filepath.Dir(filename)
	lines := strings.Split(strings.TrimSuffix(content, "\n"), "\n")

	for i, line := range lines {
		matches := includeRegex.FindStringSubmatch(line)
		if matches == nil {
			if line != "" {
				out.WriteString(indent)
			}
			out.WriteString(line)
			out.WriteString("\n")
			src.origins = append(src.origins, Origin{File: filename, Line: i + 1})
			continue
		}

		includePath := matches[2]
		resolvedPath, err := p.resolveIncludePath(includePath, currentDir)
		if err != nil {
			return fmt.Errorf("line %d: failed to resolve include path %s: %w", i+1, includePath, err)
		}
		if err := p.processFileRecursive(resolvedPath, indent+matches[1], depth+1, out, src); err != nil {
			return fmt.Errorf("line %d: failed to process included file %s: %w", i+1, resolvedPath, err)
		}
	}
	return nil
}

// resolveIncludePath resolves an include path relative to the current directory
// Only allows files within the base directory and its subdirectories
func (p *Processor) resolveIncludePath(includePath string, currentDir string) (string, error) {
	cleanPath := filepath.Clean(includePath)

	if strings.Contains(cleanPath, "..") {
		return "", fmt.Errorf("directory traversal not allowed: %s", includePath)
	}

	absPath, err := filepath.Abs(filepath.Join(currentDir, cleanPath))
	if err != nil {
		return "", fmt.Errorf("failed to get absolute path: %w", err)
	}

	baseAbs, err := filepath.Abs(p.baseDir)
	if err != nil {
		return "", fmt.Errorf("failed to get absolute base path: %w", err)
	}

	relPath, err := filepath.Rel(baseAbs, absPath)
	if err != nil || strings.HasPrefix(relPath, "..") {
		return "", fmt.Errorf("include path %s is outside the base directory %s", includePath, p.baseDir)
	}

	if _, err := os.Stat(absPath); os.IsNotExist(err) {
		return "", fmt.Errorf("included file does not exist: %s", absPath)
	}

	return absPath, nil
}
