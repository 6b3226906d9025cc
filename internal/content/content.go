package content

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// ErrNotFound is returned when a category entry or direction file is absent.
var ErrNotFound = errors.New("not found")

// Kind selects one of the flat content directories.
type Kind string

const (
	KindBooks    Kind = "books"
	KindInfo     Kind = "useful_info"
	KindLectures Kind = "lections"
)

// Config holds content repository settings.
type Config struct {
	BaseDir string `yaml:"base_dir" envconfig:"CONTENT_BASE_DIR" default:"content"`
}

// Info is the result of an info lookup: either inline text or a path to a
// PDF on disk. Exactly one of the fields is set.
type Info struct {
	Text    string
	PDFPath string
}

// Repository reads menu content from flat per-category directories.
type Repository struct {
	baseDir string
}

func NewRepository(cfg Config) *Repository {
	base := strings.TrimSpace(cfg.BaseDir)
	if base == "" {
		base = "content"
	}
	return &Repository{baseDir: base}
}

func (r *Repository) dir(kind Kind) string {
	return filepath.Join(r.baseDir, string(kind))
}

// Categories lists base names (extension stripped) of files under the kind's
// directory, sorted. The directory is created if absent.
func (r *Repository) Categories(kind Kind) ([]string, error) {
	dir := r.dir(kind)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("content: create %s: %w", dir, err)
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("content: list %s: %w", dir, err)
	}
	seen := make(map[string]struct{}, len(entries))
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		name := strings.TrimSuffix(e.Name(), filepath.Ext(e.Name()))
		if name == "" {
			continue
		}
		if _, dup := seen[name]; dup {
			continue
		}
		seen[name] = struct{}{}
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}

// BookLink reads books/{name}.txt and renders its single line as an https URL.
func (r *Repository) BookLink(name string) (string, error) {
	data, err := os.ReadFile(filepath.Join(r.dir(KindBooks), name+".txt"))
	if err != nil {
		if os.IsNotExist(err) {
			return "", fmt.Errorf("book %q: %w", name, ErrNotFound)
		}
		return "", fmt.Errorf("content: read book %q: %w", name, err)
	}
	return "https://" + strings.TrimSpace(string(data)), nil
}

// Info returns the text of useful_info/{name}.txt, or the path of the .pdf
// variant when no .txt exists. A .txt file always wins over a .pdf.
func (r *Repository) Info(name string) (Info, error) {
	txtPath := filepath.Join(r.dir(KindInfo), name+".txt")
	data, err := os.ReadFile(txtPath)
	if err == nil {
		return Info{Text: strings.TrimSpace(string(data))}, nil
	}
	if !os.IsNotExist(err) {
		return Info{}, fmt.Errorf("content: read info %q: %w", name, err)
	}
	pdfPath := filepath.Join(r.dir(KindInfo), name+".pdf")
	if _, err := os.Stat(pdfPath); err != nil {
		if os.IsNotExist(err) {
			return Info{}, fmt.Errorf("info %q: %w", name, ErrNotFound)
		}
		return Info{}, fmt.Errorf("content: stat info %q: %w", name, err)
	}
	return Info{PDFPath: pdfPath}, nil
}

// LectureRoster reads the non-empty trimmed lines of lections/{direction}.txt.
// Line position (1-based) is the index users type to book a lecture.
func (r *Repository) LectureRoster(direction string) ([]string, error) {
	data, err := os.ReadFile(filepath.Join(r.dir(KindLectures), direction+".txt"))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("direction %q: %w", direction, ErrNotFound)
		}
		return nil, fmt.Errorf("content: read roster %q: %w", direction, err)
	}
	lines := strings.Split(string(data), "\n")
	roster := make([]string, 0, len(lines))
	for _, line := range lines {
		line = strings.TrimSpace(line)
		if line != "" {
			roster = append(roster, line)
		}
	}
	return roster, nil
}

// RemoveLectureLine rewrites the roster file omitting the first exact
// trimmed match of lecture. Removing an absent line is a no-op.
func (r *Repository) RemoveLectureLine(direction, lecture string) error {
	path := filepath.Join(r.dir(KindLectures), direction+".txt")
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("content: read roster %q: %w", direction, err)
	}
	target := strings.TrimSpace(lecture)
	kept := make([]string, 0, 8)
	removed := false
	for _, line := range strings.Split(string(data), "\n") {
		trimmed := strings.TrimSpace(line)
		if !removed && trimmed == target {
			removed = true
			continue
		}
		if trimmed != "" {
			kept = append(kept, trimmed)
		}
	}
	if !removed {
		return nil
	}
	out := strings.Join(kept, "\n")
	if out != "" {
		out += "\n"
	}
	if err := os.WriteFile(path, []byte(out), 0o644); err != nil {
		return fmt.Errorf("content: rewrite roster %q: %w", direction, err)
	}
	return nil
}
