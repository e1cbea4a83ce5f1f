package document

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

const sidecarVersion = 1

// sidecar is the on-disk layout of <file>.annotations.yaml.
type sidecar struct {
	Version     int         `yaml:"version"`
	Annotations Annotations `yaml:"annotations"`
}

// SidecarPath returns the annotations file that accompanies path.
func SidecarPath(path string) string {
	return path + ".annotations.yaml"
}

// Load reads the text at path and, when present, its annotations sidecar.
// A missing file yields an empty document bound to path.
func Load(path, author string) (*Document, error) {
	d := &Document{path: path, author: author}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return d, nil
		}
		return nil, fmt.Errorf("read document %s: %w", path, err)
	}
	d.text = string(data)

	raw, err := os.ReadFile(SidecarPath(path))
	if err != nil {
		if os.IsNotExist(err) {
			return d, nil
		}
		return nil, fmt.Errorf("read annotations %s: %w", SidecarPath(path), err)
	}

	var sc sidecar
	if err := yaml.Unmarshal(raw, &sc); err != nil {
		slog.Warn("document: ignoring unreadable annotations", "path", SidecarPath(path), "err", err)
		return d, nil
	}
	d.ann = sc.Annotations.within(len(d.text))
	return d, nil
}

// Save writes the text and its annotations sidecar to the document's path.
func (d *Document) Save() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.path == "" {
		return fmt.Errorf("document has no path")
	}
	if err := os.MkdirAll(filepath.Dir(d.path), 0o755); err != nil {
		return fmt.Errorf("create document dir: %w", err)
	}
	if err := os.WriteFile(d.path, []byte(d.text), 0o644); err != nil {
		return fmt.Errorf("write document %s: %w", d.path, err)
	}

	data, err := yaml.Marshal(sidecar{Version: sidecarVersion, Annotations: d.ann})
	if err != nil {
		return fmt.Errorf("marshal annotations: %w", err)
	}
	if err := os.WriteFile(SidecarPath(d.path), data, 0o644); err != nil {
		return fmt.Errorf("write annotations %s: %w", SidecarPath(d.path), err)
	}
	d.dirty = false
	return nil
}

// within drops annotations that fall outside a text of length n, which
// happens when the text file was edited by hand.
func (a Annotations) within(n int) Annotations {
	ok := func(s Span) bool { return s.Start >= 0 && s.Start <= s.End && s.End <= n }

	var out Annotations
	for _, h := range a.Highlights {
		if ok(h.Span) {
			out.Highlights = append(out.Highlights, h)
		}
	}
	for _, c := range a.Comments {
		if ok(c.Span) {
			out.Comments = append(out.Comments, c)
		}
	}
	for _, tc := range a.Changes {
		if ok(tc.Span) {
			out.Changes = append(out.Changes, tc)
		}
	}
	return out
}
