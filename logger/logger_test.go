package logger

import (
	"os"
	"path/filepath"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func TestInitialize(t *testing.T) {
	tests := []struct {
		name       string
		jsonOutput bool
		verbosity  int
		wantErr    bool
	}{
		{
			name:       "JSON output mode",
			jsonOutput: true,
			verbosity:  0,
			wantErr:    false,
		},
		{
			name:       "Console output mode",
			jsonOutput: false,
			verbosity:  0,
			wantErr:    false,
		},
		{
			name:       "Console output verbose",
			jsonOutput: false,
			verbosity:  2,
			wantErr:    false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Reset global logger
			Logger = nil
			JSONOutput = false

			err := Initialize(tt.jsonOutput, tt.verbosity)
			if (err != nil) != tt.wantErr {
				t.Errorf("Initialize() error = %v, wantErr %v", err, tt.wantErr)
				return
			}

			if !tt.wantErr {
				if Logger == nil {
					t.Error("Initialize() did not set global Logger")
				}
				if JSONOutput != tt.jsonOutput {
					t.Errorf("Initialize() JSONOutput = %v, want %v", JSONOutput, tt.jsonOutput)
				}
			}

			// Cleanup
			if Logger != nil {
				Logger.Sync()
				Logger = nil
			}
		})
	}
}

func TestInitializeWithFile(t *testing.T) {
	dir := t.TempDir()
	logPath := filepath.Join(dir, "xskel.log")

	if err := InitializeWithFile(false, 1, logPath); err != nil {
		t.Fatalf("InitializeWithFile() error = %v", err)
	}
	defer func() {
		Logger.Sync()
		Logger = nil
	}()

	Infow("scan completed", FieldFiles, 3)
	Logger.Sync()

	data, err := os.ReadFile(logPath)
	if err != nil {
		t.Fatalf("log file not created: %v", err)
	}
	if len(data) == 0 {
		t.Error("log file is empty after Infow + Sync")
	}
}

func TestInitializeWithFileBadPath(t *testing.T) {
	err := InitializeWithFile(false, 0, filepath.Join(t.TempDir(), "missing", "deep", "xskel.log"))
	if err == nil {
		t.Error("InitializeWithFile() with unreachable path should fail")
	}
}

func TestVerbosityToLevel(t *testing.T) {
	tests := []struct {
		verbosity int
		want      zapcore.Level
	}{
		{VerbosityUser, zapcore.WarnLevel},
		{VerbosityInfo, zapcore.InfoLevel},
		{VerbosityDebug, zapcore.DebugLevel},
		{VerbosityTrace, zapcore.DebugLevel},
		{VerbosityAll, zapcore.DebugLevel},
		{99, zapcore.DebugLevel},
	}

	for _, tt := range tests {
		if got := VerbosityToLevel(tt.verbosity); got != tt.want {
			t.Errorf("VerbosityToLevel(%d) = %v, want %v", tt.verbosity, got, tt.want)
		}
	}
}

func TestLevelVerbosity(t *testing.T) {
	tests := []struct {
		level  string
		want   int
		wantOK bool
	}{
		{"", VerbosityUser, true},
		{"error", VerbosityUser, true},
		{"warn", VerbosityUser, true},
		{"WARN", VerbosityUser, true},
		{"info", VerbosityInfo, true},
		{"debug", VerbosityDebug, true},
		{"trace", VerbosityTrace, true},
		{"loud", VerbosityUser, false},
	}

	for _, tt := range tests {
		got, ok := LevelVerbosity(tt.level)
		if got != tt.want || ok != tt.wantOK {
			t.Errorf("LevelVerbosity(%q) = (%d, %v), want (%d, %v)",
				tt.level, got, ok, tt.want, tt.wantOK)
		}
	}
}

func TestShouldOutput(t *testing.T) {
	tests := []struct {
		name      string
		verbosity int
		category  OutputCategory
		want      bool
	}{
		{"errors always shown", VerbosityUser, OutputErrors, true},
		{"progress hidden by default", VerbosityUser, OutputProgress, false},
		{"progress at -v", VerbosityInfo, OutputProgress, true},
		{"timing hidden at -v", VerbosityInfo, OutputTiming, false},
		{"timing at -vv", VerbosityDebug, OutputTiming, true},
		{"per-file at -vvv", VerbosityTrace, OutputPerFile, true},
		{"signature dump needs -vvvv", VerbosityTrace, OutputSignatureDump, false},
		{"signature dump at -vvvv", VerbosityAll, OutputSignatureDump, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ShouldOutput(tt.verbosity, tt.category); got != tt.want {
				t.Errorf("ShouldOutput(%d, %s) = %v, want %v",
					tt.verbosity, CategoryName(tt.category), got, tt.want)
			}
		})
	}
}

func TestFieldsFromContext(t *testing.T) {
	ctx := WithRunID(t.Context(), "run-123")
	ctx = WithComponent(ctx, "scanner")

	fields := FieldsFromContext(ctx)
	if len(fields) != 4 {
		t.Fatalf("expected 4 field elements, got %d: %v", len(fields), fields)
	}
	if fields[0] != FieldRunID || fields[1] != "run-123" {
		t.Errorf("run_id not extracted: %v", fields)
	}
	if fields[2] != FieldComponent || fields[3] != "scanner" {
		t.Errorf("component not extracted: %v", fields)
	}
}

func TestCleanup(t *testing.T) {
	Logger = newTestLogger(t)
	Cleanup()

	// Cleanup with nil logger must not panic
	Logger = nil
	Cleanup()
}

// newTestLogger creates a logger for testing without modifying global state
func newTestLogger(t *testing.T) *zap.SugaredLogger {
	t.Helper()

	config := zap.NewDevelopmentConfig()
	config.Level = zap.NewAtomicLevelAt(zap.InfoLevel)

	zapLogger, err := config.Build()
	if err != nil {
		t.Fatalf("Failed to create test logger: %v", err)
	}

	return zapLogger.Sugar()
}

// TestLoggingFunctions tests the package-level logging functions
func TestLoggingFunctions(t *testing.T) {
	// Initialize a test logger
	Logger = newTestLogger(t)
	defer func() {
		if Logger != nil {
			Logger.Sync()
			Logger = nil
		}
	}()

	// Test all logging functions (should not panic)
	t.Run("Info functions", func(t *testing.T) {
		Info("test")
		Infof("test %s", "format")
		Infow("test", "key", "value")
	})

	t.Run("Error functions", func(t *testing.T) {
		Error("test")
		Errorf("test %s", "format")
		Errorw("test", "key", "value")
	})

	t.Run("Warn functions", func(t *testing.T) {
		Warn("test")
		Warnf("test %s", "format")
		Warnw("test", "key", "value")
	})

	t.Run("Debug functions", func(t *testing.T) {
		Debug("test")
		Debugf("test %s", "format")
		Debugw("test", "key", "value")
	})

	t.Run("With nil logger (should not panic)", func(t *testing.T) {
		Logger = nil

		// All these should be safe to call with nil logger
		Info("test")
		Infof("test %s", "format")
		Infow("test", "key", "value")
		Error("test")
		Errorf("test %s", "format")
		Errorw("test", "key", "value")
		Warn("test")
		Warnf("test %s", "format")
		Warnw("test", "key", "value")
		Debug("test")
		Debugf("test %s", "format")
		Debugw("test", "key", "value")
	})
}

// Benchmark tests for logger performance

func BenchmarkInitialize(b *testing.B) {
	for i := 0; i < b.N; i++ {
		Initialize(false, 1)
	}
	Cleanup()
}

func BenchmarkInfow(b *testing.B) {
	Initialize(true, 1)
	defer Cleanup()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		Infow("benchmark message", FieldFiles, i, FieldPath, "corpus/a.xml")
	}
}

func BenchmarkParallelLogging(b *testing.B) {
	Initialize(true, 1)
	defer Cleanup()

	b.ResetTimer()
	b.RunParallel(func(pb *testing.PB) {
		for pb.Next() {
			Infow("parallel message", FieldCount, 1)
		}
	})
}
