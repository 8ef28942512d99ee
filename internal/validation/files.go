package validation

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// SpreadsheetExtensions are the upload formats the import endpoint accepts.
var SpreadsheetExtensions = []string{".csv", ".xlsx", ".xls"}

// ValidateFilename validates a filename (not a full path) before it is
// sent as a multipart file name.
//
// Returns an error if the filename:
//   - Is empty
//   - Contains path separators (/ or \)
//   - Is ".."
//   - Contains null bytes
func ValidateFilename(filename string) error {
	if filename == "" {
		return fmt.Errorf("filename cannot be empty")
	}

	if strings.ContainsRune(filename, 0) {
		return fmt.Errorf("filename contains null byte: %s", filename)
	}

	if strings.ContainsRune(filename, '/') || strings.ContainsRune(filename, '\\') {
		return fmt.Errorf("filename cannot contain path separators: %s", filename)
	}

	if filename == ".." {
		return fmt.Errorf("filename cannot be '..': %s", filename)
	}

	return nil
}

// ValidateSpreadsheet checks that path is a readable regular file with a
// supported spreadsheet extension and returns its size.
func ValidateSpreadsheet(path string) (int64, error) {
	if err := ValidateFilename(filepath.Base(path)); err != nil {
		return 0, err
	}

	ext := strings.ToLower(filepath.Ext(path))
	supported := false
	for _, e := range SpreadsheetExtensions {
		if ext == e {
			supported = true
			break
		}
	}
	if !supported {
		return 0, fmt.Errorf("unsupported file type %q: use CSV, XLSX or XLS", ext)
	}

	info, err := os.Stat(path)
	if err != nil {
		return 0, fmt.Errorf("cannot read %s: %w", path, err)
	}
	if !info.Mode().IsRegular() {
		return 0, fmt.Errorf("%s is not a regular file", path)
	}
	if info.Size() == 0 {
		return 0, fmt.Errorf("%s is empty", path)
	}
	return info.Size(), nil
}
