package scanner

import (
	"fmt"

	"github.com/shirou/gopsutil/v3/mem"
)

const (
	// memoryPerWorkerMB is a rough ceiling for one parse worker: the raw
	// file bytes plus the decoded element tree for a large TEI document.
	memoryPerWorkerMB = 128

	// memoryBufferMB is reserved for the rest of the process and the OS.
	memoryBufferMB = 512

	maxRecommendedWorkers = 64
)

// calculateSafeWorkerCount recommends a worker count for the available
// memory. Always allows at least one worker.
func calculateSafeWorkerCount(availableMB float64) int {
	if availableMB < memoryBufferMB {
		return 1
	}

	recommended := int((availableMB - memoryBufferMB) / memoryPerWorkerMB)

	if recommended < 1 {
		return 1
	}
	if recommended > maxRecommendedWorkers {
		return maxRecommendedWorkers
	}

	return recommended
}

// checkMemoryPressure validates the worker count against available memory.
// Returns a warning message if the count may be too high, empty string if OK.
func checkMemoryPressure(workers int) string {
	v, err := mem.VirtualMemory()
	if err != nil {
		return "" // Can't check, assume OK
	}

	availableMB := float64(v.Available) / 1024 / 1024
	totalMB := float64(v.Total) / 1024 / 1024
	recommended := calculateSafeWorkerCount(availableMB)

	if workers > recommended {
		return fmt.Sprintf(
			"Worker count (%d) exceeds recommended (%d) for available memory (%.0f/%.0fMB). "+
				"Consider reducing workers to prevent memory pressure.",
			workers, recommended, totalMB-availableMB, totalMB)
	}

	return ""
}
