package samples

import (
	"os"
	"path/filepath"
	"sort"
	"testing"
)

var (
	jpegBytes = append([]byte{0xFF, 0xD8, 0xFF, 0xE0}, make([]byte, 64)...)
	pngBytes  = append([]byte("\x89PNG\r\n\x1a\n"), make([]byte, 64)...)
)

func writeFile(t *testing.T, root, rel string, data []byte) {
	t.Helper()
	path := filepath.Join(root, filepath.FromSlash(rel))
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatal(err)
	}
}

// dataset builds a small labelled tree with a few files that must be ignored.
func dataset(t *testing.T) string {
	t.Helper()
	root := t.TempDir()
	writeFile(t, root, "cats/a.jpg", jpegBytes)
	writeFile(t, root, "cats/b.png", pngBytes)
	writeFile(t, root, "dogs/c.jpeg", jpegBytes)
	writeFile(t, root, "dogs/notes.txt", []byte("not an image"))
	writeFile(t, root, "dogs/fake.jpg", []byte("plain text pretending"))
	writeFile(t, root, "dogs/.hidden.jpg", jpegBytes)
	writeFile(t, root, "loose.jpg", jpegBytes)
	writeFile(t, root, ".git/objects/x.jpg", jpegBytes)
	writeFile(t, root, "birds/empty.jpg", nil)
	return root
}

func relPaths(samples []Sample) []string {
	var out []string
	for _, s := range samples {
		out = append(out, s.RelPath)
	}
	sort.Strings(out)
	return out
}

func TestWalk_LabelDirectories(t *testing.T) {
	root := dataset(t)

	got, err := Walk(Config{RootDir: root})
	if err != nil {
		t.Fatalf("Walk() error: %v", err)
	}

	want := []string{"cats/a.jpg", "cats/b.png", "dogs/c.jpeg"}
	paths := relPaths(got)
	if len(paths) != len(want) {
		t.Fatalf("got %v, want %v", paths, want)
	}
	for i := range want {
		if paths[i] != want[i] {
			t.Errorf("paths[%d] = %q, want %q", i, paths[i], want[i])
		}
	}

	for _, s := range got {
		switch s.RelPath {
		case "cats/a.jpg":
			if s.Label != "cats" || s.ContentType != "image/jpeg" {
				t.Errorf("a.jpg = %+v", s)
			}
		case "cats/b.png":
			if s.ContentType != "image/png" {
				t.Errorf("b.png content type = %q", s.ContentType)
			}
		case "dogs/c.jpeg":
			if s.Label != "dogs" {
				t.Errorf("c.jpeg label = %q", s.Label)
			}
		}
		if !filepath.IsAbs(s.Path) {
			t.Errorf("Path %q is not absolute", s.Path)
		}
	}
}

func TestWalk_ExplicitLabel(t *testing.T) {
	root := dataset(t)

	got, err := Walk(Config{RootDir: root, Label: "Category 1"})
	if err != nil {
		t.Fatalf("Walk() error: %v", err)
	}
	// loose.jpg is now included because it does not need a label directory.
	if len(got) != 4 {
		t.Fatalf("got %v, want 4 samples", relPaths(got))
	}
	for _, s := range got {
		if s.Label != "Category 1" {
			t.Errorf("%s label = %q", s.RelPath, s.Label)
		}
	}
}

func TestWalk_IncludeExclude(t *testing.T) {
	root := dataset(t)

	pngs, err := Walk(Config{RootDir: root, Include: []string{"*.png"}})
	if err != nil {
		t.Fatalf("Walk() error: %v", err)
	}
	if len(pngs) != 1 || pngs[0].RelPath != "cats/b.png" {
		t.Errorf("include *.png = %v", relPaths(pngs))
	}

	noDogs, err := Walk(Config{RootDir: root, Exclude: []string{"dogs/**"}})
	if err != nil {
		t.Fatalf("Walk() error: %v", err)
	}
	for _, s := range noDogs {
		if s.Label == "dogs" {
			t.Errorf("excluded sample returned: %s", s.RelPath)
		}
	}
}

func TestWalk_MaxFileSize(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "big/huge.jpg", append(jpegBytes, make([]byte, 1024)...))
	writeFile(t, root, "big/small.jpg", jpegBytes)

	got, err := Walk(Config{RootDir: root, MaxFileSize: 512})
	if err != nil {
		t.Fatalf("Walk() error: %v", err)
	}
	if len(got) != 1 || got[0].Name() != "small.jpg" {
		t.Errorf("got %v", relPaths(got))
	}
}

func TestWalk_MissingRoot(t *testing.T) {
	if _, err := Walk(Config{RootDir: filepath.Join(t.TempDir(), "nope")}); err == nil {
		t.Error("expected error for missing root")
	}

	file := filepath.Join(t.TempDir(), "file.jpg")
	os.WriteFile(file, jpegBytes, 0o644)
	if _, err := Walk(Config{RootDir: file}); err == nil {
		t.Error("expected error when root is a file")
	}
}

func TestLabelsAndGroup(t *testing.T) {
	samples := []Sample{
		{RelPath: "b/1.jpg", Label: "b"},
		{RelPath: "a/1.jpg", Label: "a"},
		{RelPath: "b/2.jpg", Label: "b"},
	}

	labels := Labels(samples)
	if len(labels) != 2 || labels[0] != "b" || labels[1] != "a" {
		t.Errorf("Labels() = %v", labels)
	}

	groups := GroupByLabel(samples)
	if len(groups["b"]) != 2 || len(groups["a"]) != 1 {
		t.Errorf("GroupByLabel() = %v", groups)
	}
}

func TestMatchesIncludeExclude(t *testing.T) {
	tests := []struct {
		path     string
		patterns []string
		include  bool
		exclude  bool
	}{
		{"cats/a.jpg", nil, true, false},
		{"cats/a.jpg", []string{"cats/**"}, true, true},
		{"cats/a.jpg", []string{"*.jpg"}, true, true},
		{"cats/a.jpg", []string{"dogs/*"}, false, false},
	}
	for _, tt := range tests {
		if got := MatchesInclude(tt.path, tt.patterns); got != tt.include {
			t.Errorf("MatchesInclude(%q, %v) = %v, want %v", tt.path, tt.patterns, got, tt.include)
		}
		if got := MatchesExclude(tt.path, tt.patterns); got != tt.exclude {
			t.Errorf("MatchesExclude(%q, %v) = %v, want %v", tt.path, tt.patterns, got, tt.exclude)
		}
	}
}
