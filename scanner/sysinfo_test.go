package scanner

import (
	"testing"
)

func TestCalculateSafeWorkerCount(t *testing.T) {
	tests := []struct {
		availableMB float64
		expected    int
	}{
		{256, 1},    // Less than buffer
		{600, 1},    // 600MB - 512MB buffer = 88MB / 128MB = 0, floors to 1
		{640, 1},    // 640MB - 512MB = 128MB / 128MB = 1 worker
		{1024, 4},   // 1024MB - 512MB = 512MB / 128MB = 4 workers
		{4608, 32},  // 4608MB - 512MB = 4096MB / 128MB = 32 workers
		{16384, 64}, // 16GB caps at 64 workers
	}

	for _, tt := range tests {
		result := calculateSafeWorkerCount(tt.availableMB)
		if result != tt.expected {
			t.Errorf("calculateSafeWorkerCount(%.0fMB) = %d, expected %d",
				tt.availableMB, result, tt.expected)
		}
	}
}

func TestCheckMemoryPressure_ReasonableCount(t *testing.T) {
	// One worker fits any machine that can run the test
	if warning := checkMemoryPressure(1); warning != "" {
		t.Errorf("expected no warning for 1 worker, got %q", warning)
	}
}
