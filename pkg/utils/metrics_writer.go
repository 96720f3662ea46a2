/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: metrics_writer.go
Description: Utility for saving computation and sweep results. Writes indented JSON into a
per-kind subdirectory with timestamped, versioned file names and creates directories as needed.
*/

package utils

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// WriteResult writes a result under baseDir/kind with timestamp, kind and version in the name
// and returns the file path
func WriteResult(baseDir, kind, version string, result interface{}) (string, error) {
	if kind == "" {
		return "", fmt.Errorf("result kind must not be empty")
	}
	dir := filepath.Join(baseDir, kind)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create results directory: %w", err)
	}

	// 2026-06-11_01-30-00.123_compute_v1.0.0.json
	timestamp := time.Now().Format("2006-01-02_15-04-05.000")
	filePath := filepath.Join(dir, fmt.Sprintf("%s_%s_v%s.json", timestamp, kind, version))

	data, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to marshal result: %w", err)
	}

	if err := os.WriteFile(filePath, data, 0644); err != nil {
		return "", fmt.Errorf("failed to write result file: %w", err)
	}

	return filePath, nil
}
