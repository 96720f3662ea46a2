/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: utils.go
Description: Log file management for the SEMS tools. Compresses finished log files, enforces
the retention limit and summarizes log directories by level and inference event.
*/

package logging

import (
	"bufio"
	"compress/gzip"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"
)

const filePrefix = "sems_"

// LogManager applies retention and compression to a log directory
type LogManager struct {
	logDir   string
	maxFiles int
	compress bool
}

// NewLogManager creates a new log manager
func NewLogManager(logDir string, maxFiles int, compress bool) *LogManager {
	return &LogManager{
		logDir:   logDir,
		maxFiles: maxFiles,
		compress: compress,
	}
}

// CleanupOldLogs compresses finished logs when enabled and removes the oldest files
// beyond the retention limit
func (lm *LogManager) CleanupOldLogs() error {
	if lm.compress {
		plain, err := lm.files(".log")
		if err != nil {
			return err
		}
		for _, file := range plain {
			if err := compressFile(file); err != nil {
				return fmt.Errorf("failed to compress %s: %w", file, err)
			}
		}
	}

	files, err := lm.files(".log*")
	if err != nil {
		return err
	}
	if len(files) <= lm.maxFiles {
		return nil
	}

	sort.Slice(files, func(i, j int) bool {
		statI, errI := os.Stat(files[i])
		statJ, errJ := os.Stat(files[j])
		if errI != nil || errJ != nil {
			return files[i] < files[j]
		}
		return statI.ModTime().Before(statJ.ModTime())
	})

	for _, file := range files[:len(files)-lm.maxFiles] {
		if err := os.Remove(file); err != nil {
			return fmt.Errorf("failed to remove file %s: %w", file, err)
		}
	}
	return nil
}

func (lm *LogManager) files(suffix string) ([]string, error) {
	files, err := filepath.Glob(filepath.Join(lm.logDir, filePrefix+"*"+suffix))
	if err != nil {
		return nil, fmt.Errorf("failed to glob log files: %w", err)
	}
	return files, nil
}

// compressFile replaces a log file with its gzip-compressed copy
func compressFile(path string) error {
	source, err := os.Open(path)
	if err != nil {
		return err
	}
	defer source.Close()

	compressed, err := os.Create(path + ".gz")
	if err != nil {
		return err
	}

	gzipWriter := gzip.NewWriter(compressed)
	if _, err := io.Copy(gzipWriter, source); err != nil {
		compressed.Close()
		return err
	}
	if err := gzipWriter.Close(); err != nil {
		compressed.Close()
		return err
	}
	if err := compressed.Close(); err != nil {
		return err
	}

	source.Close()
	return os.Remove(path)
}

// GetLogStats returns statistics about log files
func (lm *LogManager) GetLogStats() (*LogStats, error) {
	files, err := lm.files(".log*")
	if err != nil {
		return nil, err
	}

	stats := &LogStats{TotalFiles: len(files)}
	for _, file := range files {
		stat, err := os.Stat(file)
		if err != nil {
			continue
		}

		stats.TotalSize += stat.Size()
		if stats.OldestFile.IsZero() || stat.ModTime().Before(stats.OldestFile) {
			stats.OldestFile = stat.ModTime()
		}
		if stat.ModTime().After(stats.NewestFile) {
			stats.NewestFile = stat.ModTime()
		}

		if strings.HasSuffix(file, ".gz") {
			stats.CompressedFiles++
		} else {
			stats.UncompressedFiles++
		}
	}

	return stats, nil
}

// LogStats holds statistics about log files
type LogStats struct {
	TotalFiles        int       `json:"total_files"`
	TotalSize         int64     `json:"total_size"`
	CompressedFiles   int       `json:"compressed_files"`
	UncompressedFiles int       `json:"uncompressed_files"`
	OldestFile        time.Time `json:"oldest_file"`
	NewestFile        time.Time `json:"newest_file"`
}

// AnalyzeLogs counts levels and inference events across the plain and compressed logs
func (lm *LogManager) AnalyzeLogs() (*LogAnalysis, error) {
	files, err := lm.files(".log*")
	if err != nil {
		return nil, err
	}

	analysis := &LogAnalysis{
		LogFiles: len(files),
		Events:   make(map[string]int64),
	}
	for _, file := range files {
		if err := analyzeFile(file, analysis); err != nil {
			return nil, fmt.Errorf("failed to analyze file %s: %w", file, err)
		}
	}
	return analysis, nil
}

func analyzeFile(path string, analysis *LogAnalysis) error {
	file, err := os.Open(path)
	if err != nil {
		return err
	}
	defer file.Close()

	var reader io.Reader = file
	if strings.HasSuffix(path, ".gz") {
		gz, err := gzip.NewReader(file)
		if err != nil {
			return err
		}
		defer gz.Close()
		reader = gz
	}

	scanner := bufio.NewScanner(reader)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)
	for scanner.Scan() {
		analysis.analyzeLine(scanner.Text())
	}
	return scanner.Err()
}

func (a *LogAnalysis) analyzeLine(line string) {
	a.TotalLines++

	upper := strings.ToUpper(line)
	switch {
	case strings.Contains(upper, "ERRO"):
		a.ErrorCount++
	case strings.Contains(upper, "WARN"):
		a.WarningCount++
	case strings.Contains(upper, "INFO"):
		a.InfoCount++
	case strings.Contains(upper, "DEBU"):
		a.DebugCount++
	}

	for _, msg := range []string{"Inference computed", "Input rejected", "Surface sweep completed", "Rule base loaded", "Report written"} {
		if strings.Contains(line, msg) {
			a.Events[EventTag(msg)]++
			return
		}
	}
}

// LogAnalysis holds the results of log analysis
type LogAnalysis struct {
	LogFiles     int              `json:"log_files"`
	TotalLines   int64            `json:"total_lines"`
	DebugCount   int64            `json:"debug_count"`
	InfoCount    int64            `json:"info_count"`
	WarningCount int64            `json:"warning_count"`
	ErrorCount   int64            `json:"error_count"`
	Events       map[string]int64 `json:"events"`
}

// GetLogSummary returns a summary of the log analysis
func (a *LogAnalysis) GetLogSummary() string {
	return fmt.Sprintf(
		"Log Analysis Summary:\n"+
			"  Files: %d\n"+
			"  Total Lines: %d\n"+
			"  Debug: %d\n"+
			"  Info: %d\n"+
			"  Warning: %d\n"+
			"  Error: %d\n"+
			"  Computations: %d\n"+
			"  Rejected Inputs: %d\n"+
			"  Sweeps: %d\n"+
			"  Rule Bases: %d\n"+
			"  Reports: %d",
		a.LogFiles, a.TotalLines, a.DebugCount, a.InfoCount, a.WarningCount, a.ErrorCount,
		a.Events["COMPUTE"], a.Events["INPUT"], a.Events["SWEEP"], a.Events["RULES"], a.Events["REPORT"],
	)
}
