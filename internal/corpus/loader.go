// Package corpus enumerates corpus files and parses their token streams.
package corpus

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"github.com/hyperjump/tadoru/internal/models"
)

// FormatError reports an unusable corpus root: missing directory or no file
// matching the naming convention. Fatal; the run aborts.
type FormatError struct {
	Root   string
	Reason string
}

func (e *FormatError) Error() string {
	return fmt.Sprintf("corpus %s: %s", e.Root, e.Reason)
}

// Corpus file names carry the time bucket up front: 1850_fic.txt, 1920s-news.txt.
var fileNameRe = regexp.MustCompile(`^(\d{4}s?)(?:[_-]([A-Za-z0-9]+))?\.txt$`)

// Discover walks root and returns descriptors for every file matching the
// corpus naming convention, sorted by bucket then path. The time bucket is a
// pure function of the file name, so every token of a file lands in the same
// bucket. Files with a .txt extension that do not match the convention are
// ignored; if nothing matches at all, that is a FormatError.
func Discover(root string) ([]models.CorpusFile, error) {
	info, err := os.Stat(root)
	if err != nil {
		return nil, &FormatError{Root: root, Reason: fmt.Sprintf("cannot read root: %v", err)}
	}
	if !info.IsDir() {
		return nil, &FormatError{Root: root, Reason: "not a directory"}
	}

	var files []models.CorpusFile
	walkErr := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		name := d.Name()
		m := fileNameRe.FindStringSubmatch(name)
		if m == nil {
			return nil
		}
		files = append(files, models.CorpusFile{
			Path:   path,
			Name:   name,
			Bucket: m[1],
			Genre:  strings.ToLower(m[2]),
		})
		return nil
	})
	if walkErr != nil {
		return nil, &FormatError{Root: root, Reason: fmt.Sprintf("walk failed: %v", walkErr)}
	}
	if len(files) == 0 {
		return nil, &FormatError{Root: root, Reason: "no corpus files match the naming convention (NNNN[_genre].txt)"}
	}
	sort.Slice(files, func(i, j int) bool {
		if files[i].Bucket != files[j].Bucket {
			return files[i].Bucket < files[j].Bucket
		}
		return files[i].Path < files[j].Path
	})
	return files, nil
}
