// Package samples discovers labelled training images on disk. A dataset is
// laid out as <root>/<label>/<image>; a flat directory can be given an
// explicit label instead.
package samples

import (
	"fmt"
	"io"
	"io/fs"
	"net/http"
	"os"
	"path/filepath"
	"strings"
)

// DefaultMaxFileSize is the largest image accepted (10 MB).
const DefaultMaxFileSize int64 = 10 << 20

// Sample is one image discovered during traversal.
type Sample struct {
	Path        string // Absolute path on disk.
	RelPath     string // Slash path relative to the root directory.
	Label       string // Category label the image belongs to.
	Size        int64
	ContentType string // Sniffed MIME type.
}

// Open opens the sample for reading.
func (s Sample) Open() (io.ReadCloser, error) {
	return os.Open(s.Path)
}

// Name returns the file name of the sample.
func (s Sample) Name() string {
	return filepath.Base(s.Path)
}

// Config controls the behaviour of Walk.
type Config struct {
	RootDir     string
	Label       string   // When set, every image under RootDir gets this label.
	Include     []string // Glob patterns; only matching files are kept.
	Exclude     []string // Glob patterns; matching files are dropped.
	MaxFileSize int64    // 0 means DefaultMaxFileSize.
}

// Walk traverses config.RootDir and returns every image that passes
// filtering, in lexical path order. Without an explicit label, files directly
// under the root are skipped because they have no label directory.
func Walk(config Config) ([]Sample, error) {
	root, err := filepath.Abs(config.RootDir)
	if err != nil {
		return nil, fmt.Errorf("samples: resolve root: %w", err)
	}
	info, err := os.Stat(root)
	if err != nil {
		return nil, fmt.Errorf("samples: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("samples: %s is not a directory", root)
	}

	maxSize := config.MaxFileSize
	if maxSize <= 0 {
		maxSize = DefaultMaxFileSize
	}
	label := strings.TrimSpace(config.Label)

	var found []Sample

	err = filepath.WalkDir(root, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return nil
		}

		name := d.Name()
		if d.IsDir() {
			if path != root && shouldExcludeDir(name) {
				return filepath.SkipDir
			}
			return nil
		}
		if !d.Type().IsRegular() || strings.HasPrefix(name, ".") {
			return nil
		}
		if !hasImageExtension(name) {
			return nil
		}

		relPath, err := filepath.Rel(root, path)
		if err != nil {
			return nil
		}
		relPath = filepath.ToSlash(relPath)

		if !MatchesInclude(relPath, config.Include) || MatchesExclude(relPath, config.Exclude) {
			return nil
		}

		sampleLabel := label
		if sampleLabel == "" {
			dir, _, ok := strings.Cut(relPath, "/")
			if !ok {
				return nil
			}
			sampleLabel = dir
		}

		fi, err := d.Info()
		if err != nil || fi.Size() == 0 || fi.Size() > maxSize {
			return nil
		}

		contentType, err := sniff(path)
		if err != nil || !isImageType(contentType) {
			return nil
		}

		found = append(found, Sample{
			Path:        path,
			RelPath:     relPath,
			Label:       sampleLabel,
			Size:        fi.Size(),
			ContentType: contentType,
		})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("samples: traversal: %w", err)
	}

	return found, nil
}

// Labels returns the distinct labels in order of first appearance.
func Labels(samples []Sample) []string {
	seen := make(map[string]bool)
	var labels []string
	for _, s := range samples {
		if !seen[s.Label] {
			seen[s.Label] = true
			labels = append(labels, s.Label)
		}
	}
	return labels
}

// GroupByLabel buckets samples by label.
func GroupByLabel(samples []Sample) map[string][]Sample {
	groups := make(map[string][]Sample)
	for _, s := range samples {
		groups[s.Label] = append(groups[s.Label], s)
	}
	return groups
}

// sniff reads the first 512 bytes and returns the detected content type.
func sniff(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	buf := make([]byte, 512)
	n, err := f.Read(buf)
	if err != nil && err != io.EOF {
		return "", err
	}
	return http.DetectContentType(buf[:n]), nil
}

func isImageType(contentType string) bool {
	return contentType == "image/jpeg" || contentType == "image/png"
}
