// Package stats provides performance tracking for extraction runs.
// It captures timing for each phase, counters, and a memory snapshot.
package stats

import (
	"fmt"
	"runtime"
	"strings"
	"time"
)

// Stats holds performance metrics for one run.
type Stats struct {
	// Timing for each phase
	ScanStart    time.Time
	ScanEnd      time.Time
	ExtractStart time.Time
	ExtractEnd   time.Time
	OutputStart  time.Time
	OutputEnd    time.Time

	// Counts
	FilesScanned int
	FilesFailed  int
	Fragments    int
	LinksFound   int
	UniqueURLs   int
	Duplicates   int
	Ignored      int

	// Memory stats (captured by Finish)
	HeapAlloc    uint64
	TotalAlloc   uint64
	NumGC        uint32
	NumGoroutine int
}

// New creates a new Stats instance.
func New() *Stats {
	return &Stats{}
}

// StartScan marks the beginning of the file scanning phase.
func (s *Stats) StartScan() {
	s.ScanStart = time.Now()
}

// EndScan marks the end of the file scanning phase.
func (s *Stats) EndScan(filesFound int) {
	s.ScanEnd = time.Now()
	s.FilesScanned = filesFound
}

// StartExtract marks the beginning of the link extraction phase.
func (s *Stats) StartExtract() {
	s.ExtractStart = time.Now()
}

// EndExtract marks the end of the extraction phase.
func (s *Stats) EndExtract(linksFound, uniqueURLs, ignored, failed int) {
	s.ExtractEnd = time.Now()
	s.LinksFound = linksFound
	s.UniqueURLs = uniqueURLs
	s.Duplicates = max(linksFound-uniqueURLs, 0)
	s.Ignored = ignored
	s.FilesFailed = failed
}

// StartOutput marks the beginning of report or render output.
func (s *Stats) StartOutput() {
	s.OutputStart = time.Now()
}

// EndOutput marks the end of the output phase.
func (s *Stats) EndOutput(fragments int) {
	s.OutputEnd = time.Now()
	s.Fragments = fragments
}

// Finish captures memory statistics. Call it once all phases are done.
func (s *Stats) Finish() {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)
	s.HeapAlloc = m.HeapAlloc
	s.TotalAlloc = m.TotalAlloc
	s.NumGC = m.NumGC
	s.NumGoroutine = runtime.NumGoroutine()
}

func phase(start, end time.Time) time.Duration {
	if start.IsZero() || end.IsZero() {
		return 0
	}
	return end.Sub(start)
}

// ScanDuration returns the time spent scanning for files.
func (s *Stats) ScanDuration() time.Duration {
	return phase(s.ScanStart, s.ScanEnd)
}

// ExtractDuration returns the time spent extracting links from files.
func (s *Stats) ExtractDuration() time.Duration {
	return phase(s.ExtractStart, s.ExtractEnd)
}

// OutputDuration returns the time spent writing the report or rendering.
func (s *Stats) OutputDuration() time.Duration {
	return phase(s.OutputStart, s.OutputEnd)
}

// TotalDuration returns the time from the first recorded start to the last
// recorded end.
func (s *Stats) TotalDuration() time.Duration {
	var first, last time.Time
	for _, t := range []time.Time{s.ScanStart, s.ExtractStart, s.OutputStart} {
		if !t.IsZero() && (first.IsZero() || t.Before(first)) {
			first = t
		}
	}
	for _, t := range []time.Time{s.ScanEnd, s.ExtractEnd, s.OutputEnd} {
		if t.After(last) {
			last = t
		}
	}
	return phase(first, last)
}

// FilesPerSecond returns the extraction throughput in files.
func (s *Stats) FilesPerSecond() float64 {
	d := s.ExtractDuration()
	if d == 0 || s.FilesScanned == 0 {
		return 0
	}
	return float64(s.FilesScanned) / d.Seconds()
}

// LinksPerSecond returns the extraction throughput in links.
func (s *Stats) LinksPerSecond() float64 {
	d := s.ExtractDuration()
	if d == 0 || s.LinksFound == 0 {
		return 0
	}
	return float64(s.LinksFound) / d.Seconds()
}

// FormatDuration formats a duration for display.
func FormatDuration(d time.Duration) string {
	if d < time.Millisecond {
		return fmt.Sprintf("%dµs", d.Microseconds())
	}
	if d < time.Second {
		return fmt.Sprintf("%dms", d.Milliseconds())
	}
	if d < time.Minute {
		return fmt.Sprintf("%.1fs", d.Seconds())
	}
	return fmt.Sprintf("%dm%.1fs", int(d.Minutes()), d.Seconds()-float64(int(d.Minutes())*60))
}

// FormatBytes formats bytes for human-readable display.
func FormatBytes(bytes uint64) string {
	const (
		kb = 1024
		mb = kb * 1024
		gb = mb * 1024
	)

	switch {
	case bytes >= gb:
		return fmt.Sprintf("%.1f GB", float64(bytes)/gb)
	case bytes >= mb:
		return fmt.Sprintf("%.1f MB", float64(bytes)/mb)
	case bytes >= kb:
		return fmt.Sprintf("%.1f KB", float64(bytes)/kb)
	default:
		return fmt.Sprintf("%d B", bytes)
	}
}

// String returns a formatted string representation of the stats.
func (s *Stats) String() string {
	var b strings.Builder

	total := s.TotalDuration()
	writePhase := func(label string, d time.Duration) {
		b.WriteString(fmt.Sprintf("  %-14s %8s", label, FormatDuration(d)))
		if total > 0 {
			b.WriteString(fmt.Sprintf("  (%4.1f%%)", float64(d)/float64(total)*100))
		}
		b.WriteString("\n")
	}

	b.WriteString("\n=== Performance Statistics ===\n\n")

	b.WriteString("Timing:\n")
	writePhase("Scan files:", s.ScanDuration())
	writePhase("Extract links:", s.ExtractDuration())
	writePhase("Output:", s.OutputDuration())
	b.WriteString("  ─────────────────────────\n")
	b.WriteString(fmt.Sprintf("  %-14s %8s\n", "Total:", FormatDuration(total)))

	b.WriteString("\nThroughput:\n")
	b.WriteString(fmt.Sprintf("  Files scanned:     %5d\n", s.FilesScanned))
	if s.FilesFailed > 0 {
		b.WriteString(fmt.Sprintf("  Files failed:      %5d\n", s.FilesFailed))
	}
	b.WriteString(fmt.Sprintf("  Links found:       %5d\n", s.LinksFound))
	b.WriteString(fmt.Sprintf("  Unique URLs:       %5d\n", s.UniqueURLs))
	if s.Duplicates > 0 {
		b.WriteString(fmt.Sprintf("  Duplicates:        %5d\n", s.Duplicates))
	}
	if s.Ignored > 0 {
		b.WriteString(fmt.Sprintf("  Ignored:           %5d\n", s.Ignored))
	}
	if s.Fragments > 0 {
		b.WriteString(fmt.Sprintf("  Fragments:         %5d\n", s.Fragments))
	}
	b.WriteString(fmt.Sprintf("  Files/second:      %5.1f\n", s.FilesPerSecond()))
	b.WriteString(fmt.Sprintf("  Links/second:      %5.1f\n", s.LinksPerSecond()))

	b.WriteString("\nMemory:\n")
	b.WriteString(fmt.Sprintf("  Heap in use:   %8s\n", FormatBytes(s.HeapAlloc)))
	b.WriteString(fmt.Sprintf("  Total alloc:   %8s\n", FormatBytes(s.TotalAlloc)))
	b.WriteString(fmt.Sprintf("  GC cycles:     %8d\n", s.NumGC))
	b.WriteString(fmt.Sprintf("  Goroutines:    %8d\n", s.NumGoroutine))

	return b.String()
}

// ToJSON returns a map suitable for JSON or YAML serialization.
func (s *Stats) ToJSON() map[string]any {
	return map[string]any{
		"timing": map[string]any{
			"scan_ms":    s.ScanDuration().Milliseconds(),
			"extract_ms": s.ExtractDuration().Milliseconds(),
			"output_ms":  s.OutputDuration().Milliseconds(),
			"total_ms":   s.TotalDuration().Milliseconds(),
		},
		"throughput": map[string]any{
			"files_scanned":    s.FilesScanned,
			"files_failed":     s.FilesFailed,
			"links_found":      s.LinksFound,
			"unique_urls":      s.UniqueURLs,
			"duplicates":       s.Duplicates,
			"ignored":          s.Ignored,
			"fragments":        s.Fragments,
			"files_per_second": s.FilesPerSecond(),
			"links_per_second": s.LinksPerSecond(),
		},
		"memory": map[string]any{
			"heap_bytes":  s.HeapAlloc,
			"total_bytes": s.TotalAlloc,
			"gc_cycles":   s.NumGC,
			"goroutines":  s.NumGoroutine,
		},
	}
}
