// =============================================================================
// SAS7BDAT Converter - File Manager Utility
// =============================================================================
//
// This module provides the file system helpers used by the batch converter:
//   - Discovery of convertible files in a directory
//   - Output directory management
//   - Writing the YAML batch report
//
// DISCOVERY RULES:
//   - Only the top level of the directory is scanned
//   - Regular files ending in ".sas7bdat" or ".xpt" are kept
//   - Files are returned in lexical order, once, at batch start
//
// =============================================================================

package fileutil

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/ginjaninja78/sas7bdat-converter/internal/types"
)

// =============================================================================
// FILE DISCOVERY
// =============================================================================

// DiscoverConvertible lists the convertible files directly inside dir.
//
// PARAMETERS:
//   - dir: The directory to scan. Subdirectories are not descended.
//
// RETURNS:
//   - The full paths of the eligible files, sorted by name.
//   - An error if the directory cannot be read.
func DiscoverConvertible(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to scan directory %s: %w", dir, err)
	}

	var files []string
	for _, entry := range entries {
		// Skip directories, including ones named like data files.
		if entry.IsDir() {
			continue
		}
		if !entry.Type().IsRegular() {
			info, err := os.Stat(filepath.Join(dir, entry.Name()))
			if err != nil || !info.Mode().IsRegular() {
				continue
			}
		}
		if types.IsConvertible(entry.Name()) {
			files = append(files, filepath.Join(dir, entry.Name()))
		}
	}

	return files, nil
}

// =============================================================================
// DIRECTORY MANAGEMENT
// =============================================================================

// EnsureDir creates dir and any missing parents.
func EnsureDir(dir string) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", dir, err)
	}
	return nil
}

// =============================================================================
// REPORT GENERATION
// =============================================================================

// WriteYAML writes v to path as a YAML document, creating the parent
// directory when needed.
//
// PARAMETERS:
//   - path: The report file.
//   - v: The value to encode (a struct with yaml tags).
//
// RETURNS:
//   - An error if the file cannot be created or encoded.
func WriteYAML(path string, v interface{}) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := EnsureDir(dir); err != nil {
			return err
		}
	}

	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create report file: %w", err)
	}
	defer file.Close()

	writer := bufio.NewWriter(file)
	encoder := yaml.NewEncoder(writer)
	encoder.SetIndent(2)

	if err := encoder.Encode(v); err != nil {
		return fmt.Errorf("failed to encode report: %w", err)
	}
	if err := encoder.Close(); err != nil {
		return fmt.Errorf("failed to encode report: %w", err)
	}
	if err := writer.Flush(); err != nil {
		return fmt.Errorf("failed to flush report file: %w", err)
	}

	return file.Close()
}
