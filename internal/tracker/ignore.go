package tracker

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// LoadIgnoreFile reads an ignore list: one application name per line, lines
// starting with # are comments. A missing file is an empty list.
func LoadIgnoreFile(path string) (map[string]bool, error) {
	ignored := make(map[string]bool)

	file, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return ignored, nil
		}
		return nil, fmt.Errorf("failed to open ignore file: %w", err)
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		// Skip empty lines and comments
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		ignored[line] = true
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("error reading ignore file: %w", err)
	}
	return ignored, nil
}

// SaveIgnoreFile writes the ignore list sorted by name.
func SaveIgnoreFile(path string, ignored map[string]bool) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create ignore file directory: %w", err)
	}

	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create ignore file: %w", err)
	}
	defer file.Close()

	writer := bufio.NewWriter(file)

	// Write header
	fmt.Fprintln(writer, "# active-window ignored applications")
	fmt.Fprintln(writer, "# One application name per line")
	fmt.Fprintln(writer, "# Lines starting with # are comments")
	fmt.Fprintln(writer, "")

	for _, name := range SortedNames(ignored) {
		fmt.Fprintln(writer, name)
	}

	return writer.Flush()
}

// SortedNames returns the names set to true, sorted.
func SortedNames(ignored map[string]bool) []string {
	names := make([]string, 0, len(ignored))
	for name, ok := range ignored {
		if ok {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names
}
