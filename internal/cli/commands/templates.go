package commands

import (
	"embed"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"slices"
)

//go:embed all:templates
var templateFS embed.FS

// Templates store dotfiles without the leading dot.
var dotfiles = map[string]string{
	"gitignore": ".gitignore",
}

// templateFile is one file of a project template, relative to the project
// directory. Kept is set when the file already existed and was left alone.
type templateFile struct {
	Path    string
	Dataset bool
	Kept    bool
}

// templateNames returns the embedded project templates.
func templateNames() []string {
	entries, _ := fs.ReadDir(templateFS, "templates")
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() {
			names = append(names, e.Name())
		}
	}
	return names
}

// scaffold writes template name into dir and reports every file in walk
// order. Existing files are kept unless force is set.
func scaffold(name, dir string, force bool) ([]templateFile, error) {
	if !slices.Contains(templateNames(), name) {
		return nil, fmt.Errorf("unknown template %q", name)
	}
	root := path.Join("templates", name)

	var files []templateFile
	err := fs.WalkDir(templateFS, root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		rel := projectPath(root, p)
		if rel == "" {
			return nil
		}
		target := filepath.Join(dir, filepath.FromSlash(rel))
		if d.IsDir() {
			return os.MkdirAll(target, 0750)
		}

		f := templateFile{Path: rel, Dataset: path.Dir(rel) == "data"}
		if _, statErr := os.Stat(target); statErr == nil && !force {
			f.Kept = true
			files = append(files, f)
			return nil
		}

		content, err := templateFS.ReadFile(p)
		if err != nil {
			return err
		}
		if err := os.WriteFile(target, content, 0600); err != nil {
			return fmt.Errorf("failed to write %s: %w", rel, err)
		}
		files = append(files, f)
		return nil
	})
	return files, err
}

// copyTemplate is scaffold without the file report.
func copyTemplate(name, dir string, force bool) error {
	_, err := scaffold(name, dir, force)
	return err
}

// projectPath maps an embedded path under root to its slash-separated
// path in the project, renaming dotfiles. The root itself maps to "".
func projectPath(root, p string) string {
	if p == root {
		return ""
	}
	rel := p[len(root)+1:]
	if dot, ok := dotfiles[path.Base(rel)]; ok {
		rel = path.Join(path.Dir(rel), dot)
	}
	return rel
}
