package stats

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fixed returns stats with phases laid out at known offsets from a base time.
func fixed() *Stats {
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	return &Stats{
		ScanStart:    base,
		ScanEnd:      base.Add(100 * time.Millisecond),
		ExtractStart: base.Add(100 * time.Millisecond),
		ExtractEnd:   base.Add(2100 * time.Millisecond),
		OutputStart:  base.Add(2100 * time.Millisecond),
		OutputEnd:    base.Add(2500 * time.Millisecond),
		FilesScanned: 40,
		LinksFound:   200,
	}
}

func TestNew(t *testing.T) {
	t.Parallel()

	s := New()

	require.NotNil(t, s)
	assert.True(t, s.ScanStart.IsZero())
	assert.True(t, s.ExtractEnd.IsZero())
	assert.Zero(t, s.LinksFound)
	assert.Zero(t, s.TotalDuration())
}

func TestPhases(t *testing.T) {
	t.Parallel()

	t.Run("ScanRecordsFiles", func(t *testing.T) {
		t.Parallel()
		s := New()
		s.StartScan()
		assert.Zero(t, s.ScanDuration(), "duration is 0 before ending")

		time.Sleep(5 * time.Millisecond)
		s.EndScan(25)

		assert.Equal(t, 25, s.FilesScanned)
		assert.GreaterOrEqual(t, s.ScanDuration(), 5*time.Millisecond)
	})

	t.Run("ExtractRecordsCounts", func(t *testing.T) {
		t.Parallel()
		s := New()
		s.StartExtract()
		s.EndExtract(100, 80, 5, 2)

		assert.Equal(t, 100, s.LinksFound)
		assert.Equal(t, 80, s.UniqueURLs)
		assert.Equal(t, 20, s.Duplicates)
		assert.Equal(t, 5, s.Ignored)
		assert.Equal(t, 2, s.FilesFailed)
	})

	t.Run("OutputRecordsFragments", func(t *testing.T) {
		t.Parallel()
		s := New()
		s.StartOutput()
		s.EndOutput(17)
		assert.Equal(t, 17, s.Fragments)
	})

	t.Run("Durations", func(t *testing.T) {
		t.Parallel()
		s := fixed()
		assert.Equal(t, 100*time.Millisecond, s.ScanDuration())
		assert.Equal(t, 2*time.Second, s.ExtractDuration())
		assert.Equal(t, 400*time.Millisecond, s.OutputDuration())
		assert.Equal(t, 2500*time.Millisecond, s.TotalDuration())
	})

	t.Run("TotalWithoutOutputPhase", func(t *testing.T) {
		t.Parallel()
		s := fixed()
		s.OutputStart, s.OutputEnd = time.Time{}, time.Time{}
		assert.Equal(t, 2100*time.Millisecond, s.TotalDuration())
	})

	t.Run("FinishCapturesMemory", func(t *testing.T) {
		t.Parallel()
		s := New()
		s.Finish()
		assert.NotZero(t, s.TotalAlloc)
		assert.Positive(t, s.NumGoroutine)
	})
}

func TestThroughput(t *testing.T) {
	t.Parallel()

	t.Run("CalculatesCorrectly", func(t *testing.T) {
		t.Parallel()
		s := fixed()
		assert.InDelta(t, 20.0, s.FilesPerSecond(), 0.01)
		assert.InDelta(t, 100.0, s.LinksPerSecond(), 0.01)
	})

	t.Run("ReturnsZeroWithoutDuration", func(t *testing.T) {
		t.Parallel()
		s := New()
		s.FilesScanned = 10
		s.LinksFound = 100
		assert.Zero(t, s.FilesPerSecond())
		assert.Zero(t, s.LinksPerSecond())
	})
}

func TestFormatDuration(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		duration time.Duration
		expected string
	}{
		{
			name:     "Zero",
			duration: 0,
			expected: "0µs",
		},
		{
			name:     "Microseconds",
			duration: 500 * time.Microsecond,
			expected: "500µs",
		},
		{
			name:     "Milliseconds",
			duration: 500 * time.Millisecond,
			expected: "500ms",
		},
		{
			name:     "JustUnderSecond",
			duration: 999 * time.Millisecond,
			expected: "999ms",
		},
		{
			name:     "Seconds",
			duration: 2500 * time.Millisecond,
			expected: "2.5s",
		},
		{
			name:     "JustUnderMinute",
			duration: 59*time.Second + 500*time.Millisecond,
			expected: "59.5s",
		},
		{
			name:     "Minutes",
			duration: 65 * time.Second,
			expected: "1m5.0s",
		},
		{
			name:     "MultipleMinutes",
			duration: 125 * time.Second,
			expected: "2m5.0s",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			result := FormatDuration(tt.duration)
			assert.Equal(t, tt.expected, result)
		})
	}
}

func TestFormatBytes(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		bytes    uint64
		expected string
	}{
		{
			name:     "Zero",
			bytes:    0,
			expected: "0 B",
		},
		{
			name:     "Bytes",
			bytes:    500,
			expected: "500 B",
		},
		{
			name:     "JustUnderKB",
			bytes:    1023,
			expected: "1023 B",
		},
		{
			name:     "Kilobytes",
			bytes:    1536,
			expected: "1.5 KB",
		},
		{
			name:     "Megabytes",
			bytes:    1572864,
			expected: "1.5 MB",
		},
		{
			name:     "Gigabytes",
			bytes:    1610612736,
			expected: "1.5 GB",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			result := FormatBytes(tt.bytes)
			assert.Equal(t, tt.expected, result)
		})
	}
}

func TestString(t *testing.T) {
	t.Parallel()

	t.Run("ContainsAllSections", func(t *testing.T) {
		t.Parallel()
		output := fixed().String()

		for _, want := range []string{
			"Performance Statistics", "Timing:", "Scan files:", "Extract links:",
			"Output:", "Total:", "Throughput:", "Files scanned:", "Links found:",
			"Unique URLs:", "Files/second:", "Links/second:", "Memory:",
			"Heap in use:", "GC cycles:", "Goroutines:",
		} {
			assert.Contains(t, output, want)
		}
		assert.Contains(t, output, "2.5s")
	})

	t.Run("OptionalCounters", func(t *testing.T) {
		t.Parallel()
		s := New()
		output := s.String()
		assert.NotContains(t, output, "Duplicates:")
		assert.NotContains(t, output, "Ignored:")
		assert.NotContains(t, output, "Files failed:")
		assert.NotContains(t, output, "Fragments:")

		s.Duplicates, s.Ignored, s.FilesFailed, s.Fragments = 1, 2, 3, 4
		output = s.String()
		assert.Contains(t, output, "Duplicates:")
		assert.Contains(t, output, "Ignored:")
		assert.Contains(t, output, "Files failed:")
		assert.Contains(t, output, "Fragments:")
	})
}

func TestToJSON(t *testing.T) {
	t.Parallel()

	result := fixed().ToJSON()

	timing, ok := result["timing"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, int64(100), timing["scan_ms"])
	assert.Equal(t, int64(2000), timing["extract_ms"])
	assert.Equal(t, int64(2500), timing["total_ms"])

	throughput, ok := result["throughput"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, 40, throughput["files_scanned"])
	assert.Equal(t, 200, throughput["links_found"])
	assert.Contains(t, throughput, "links_per_second")

	memory, ok := result["memory"].(map[string]any)
	require.True(t, ok)
	assert.Contains(t, memory, "heap_bytes")
	assert.Contains(t, memory, "goroutines")
}
