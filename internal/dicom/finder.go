package dicom

import (
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// Extensions are recognized DICOM file extensions.
var Extensions = []string{".dcm", ".dicom"}

// excludedNames are filenames to skip during discovery.
var excludedNames = map[string]bool{
	"DICOMDIR":       true,
	".progress.json": true,
	".DS_Store":      true,
	"Thumbs.db":      true,
	"desktop.ini":    true,
}

// excludedDirs are directory names to skip entirely.
var excludedDirs = map[string]bool{
	".git":         true,
	"node_modules": true,
	"__pycache__":  true,
	".idea":        true,
	".vscode":      true,
}

// Find discovers all DICOM files under inputPath. Discovery runs as its
// own phase before any processing starts, so the batch total is known for
// progress reporting. Files without a recognized extension are accepted
// when they carry the DICM magic bytes.
func Find(inputPath string, recursive bool) ([]string, error) {
	var files []string
	seen := make(map[string]bool)

	walkFn := func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return nil // Skip files we can't access
		}

		if info.IsDir() {
			if excludedDirs[info.Name()] {
				return filepath.SkipDir
			}
			if !recursive && path != inputPath {
				return filepath.SkipDir
			}
			return nil
		}

		if excludedNames[info.Name()] {
			return nil
		}

		ext := strings.ToLower(filepath.Ext(path))
		isDicom := false
		for _, de := range Extensions {
			if ext == de {
				isDicom = true
				break
			}
		}

		if !isDicom && ext == "" {
			isDicom = hasMagicBytes(path)
		}

		if isDicom && !seen[path] {
			files = append(files, path)
			seen[path] = true
		}

		return nil
	}

	if err := filepath.Walk(inputPath, walkFn); err != nil {
		return nil, err
	}

	sort.Strings(files)
	return files, nil
}

// hasMagicBytes checks for "DICM" at byte offset 128.
func hasMagicBytes(path string) bool {
	file, err := os.Open(path)
	if err != nil {
		return false
	}
	defer file.Close()

	header := make([]byte, 132)
	if _, err := io.ReadFull(file, header); err != nil {
		return false
	}

	return string(header[128:132]) == "DICM"
}
