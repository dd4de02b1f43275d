package logger

import (
	"regexp"
	"strings"
	"testing"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// stripANSI removes ANSI color codes from a string for testing
func stripANSI(str string) string {
	ansiRegex := regexp.MustCompile(`\x1b\[[0-9;]*m`)
	return ansiRegex.ReplaceAllString(str, "")
}

// TestMinimalEncoderNeverDiscardsFields ensures the minimal encoder
// NEVER silently discards log fields. Unknown keys must fall back to
// key=value rather than vanish.
func TestMinimalEncoderNeverDiscardsFields(t *testing.T) {
	encoder := newMinimalEncoder()

	entry := zapcore.Entry{
		Level:      zapcore.InfoLevel,
		Time:       time.Now(),
		LoggerName: "test",
		Message:    "Testing field preservation",
	}

	testFields := []struct {
		field    zapcore.Field
		mustFind string // What we must find in the output
	}{
		// Arbitrary keys must never be dropped
		{zap.String("extension", "tei"), "extension=tei"},
		{zap.Bool("pretty", true), "pretty=true"},
		{zap.Float64("ratio", 0.8), "ratio=0.8"},
		{zap.Strings("extensions", []string{"xml", "tei"}), "extensions"},
		{zap.String("random_field_xyz", "important_data"), "random_field_xyz=important_data"},
		{zap.Int("critical_count", 999), "critical_count=999"},
		{zap.String("error_details", "element closed by wrong tag"), "error_details=element closed by wrong tag"},

		// Edge-case key shapes
		{zap.String("field_with_underscores", "test"), "field_with_underscores=test"},
		{zap.String("field.with.dots", "test2"), "field.with.dots=test2"},

		// Numeric types
		{zap.Int32("int32_field", 42), "int32_field=42"},
		{zap.Int64("int64_field", 9999999), "int64_field=9999999"},
		{zap.Uint64("uint64_field", 5000000000), "uint64_field=5000000000"},

		{zap.Bool("success", false), "success=false"},

		// Error fields (critical for debugging!)
		{zap.Error(nil), ""}, // nil error shouldn't crash
		{zap.String("error", "something went wrong"), "error=something went wrong"},

		// Special-cased scan fields keep their compact forms
		{zap.Int(FieldDurationMS, 412), "412ms"},
		{zap.String(FieldPath, "corpus/a.xml"), "corpus/a.xml"},
		{zap.Int(FieldFiles, 249), "files=249"},
		{zap.Int(FieldGroups, 3), "groups=3"},
	}

	var allFields []zapcore.Field
	for _, tf := range testFields {
		allFields = append(allFields, tf.field)
	}

	buf, err := encoder.EncodeEntry(entry, allFields)
	if err != nil {
		t.Fatalf("Failed to encode entry: %v", err)
	}

	cleanOutput := stripANSI(buf.String())

	for _, tf := range testFields {
		if tf.mustFind != "" && !strings.Contains(cleanOutput, tf.mustFind) {
			t.Errorf("field silently discarded from log output: %s\noutput: %s", tf.mustFind, cleanOutput)
		}
	}
}

// TestMinimalEncoderFieldCount ensures that the NUMBER of fields in equals
// the number of fields that appear in the output
func TestMinimalEncoderFieldCount(t *testing.T) {
	encoder := newMinimalEncoder()

	entry := zapcore.Entry{
		Level:      zapcore.InfoLevel,
		Time:       time.Now(),
		LoggerName: "test",
		Message:    "Field count test",
	}

	fields := []zapcore.Field{
		zap.String("field1", "value1"),
		zap.String("field2", "value2"),
		zap.String("field3", "value3"),
		zap.Int("field4", 4),
		zap.Int("field5", 5),
		zap.Bool("field6", true),
		zap.Float64("field7", 7.7),
		zap.String("field8", "value8"),
	}

	buf, err := encoder.EncodeEntry(entry, fields)
	if err != nil {
		t.Fatalf("Failed to encode: %v", err)
	}

	output := stripANSI(buf.String())

	found := 0
	for i := 1; i <= len(fields); i++ {
		if strings.Contains(output, "field"+string(rune('0'+i))+"=") {
			found++
		}
	}

	if found != len(fields) {
		t.Errorf("Expected %d fields in output, but found %d. Output: %s", len(fields), found, output)
	}
}

// TestMinimalEncoderLevelBadges checks that only WARN and above render
// a level badge; INFO and DEBUG entries stay calm.
func TestMinimalEncoderLevelBadges(t *testing.T) {
	encoder := newMinimalEncoder()

	tests := []struct {
		level     zapcore.Level
		wantBadge string
	}{
		{zapcore.DebugLevel, ""},
		{zapcore.InfoLevel, ""},
		{zapcore.WarnLevel, "WARN"},
		{zapcore.ErrorLevel, "ERROR"},
	}

	for _, tt := range tests {
		entry := zapcore.Entry{
			Level:   tt.level,
			Time:    time.Now(),
			Message: "badge test",
		}
		buf, err := encoder.EncodeEntry(entry, nil)
		if err != nil {
			t.Fatalf("encode at %v: %v", tt.level, err)
		}
		output := stripANSI(buf.String())

		if tt.wantBadge == "" {
			if strings.Contains(output, "WARN") || strings.Contains(output, "ERROR") {
				t.Errorf("%v entry should have no badge, got: %s", tt.level, output)
			}
		} else if !strings.Contains(output, tt.wantBadge) {
			t.Errorf("%v entry missing %q badge: %s", tt.level, tt.wantBadge, output)
		}
	}
}

// TestUnknownFieldTypes tests that the encoder handles all possible field types
// without crashing or silently dropping them
func TestUnknownFieldTypes(t *testing.T) {
	encoder := newMinimalEncoder()

	entry := zapcore.Entry{
		Level:      zapcore.InfoLevel,
		Time:       time.Now(),
		LoggerName: "test",
		Message:    "Testing unknown field types",
	}

	fields := []zapcore.Field{
		zap.Complex128("complex", complex(1.0, 2.0)),
		zap.Duration("duration", 5*time.Second),
		zap.Time("timestamp", time.Now()),
		zap.Uint("uint", 100),
		zap.Uint8("uint8", 200),
		zap.Uint16("uint16", 30000),
		zap.Uint32("uint32", 4000000),
		zap.Uintptr("uintptr", 0xDEADBEEF),
		zap.ByteString("bytes", []byte("hello world")),
		zap.Binary("binary", []byte{0x01, 0x02, 0x03}),
	}

	buf, err := encoder.EncodeEntry(entry, fields)
	if err != nil {
		t.Fatalf("Failed to encode complex types: %v", err)
	}

	cleanOutput := stripANSI(buf.String())

	expectedSubstrings := []string{
		"complex",
		"duration",
		"timestamp",
		"uint",
		"bytes",
		"binary",
	}

	for _, expected := range expectedSubstrings {
		if !strings.Contains(cleanOutput, expected) {
			t.Errorf("Field with key '%s' was completely dropped from output: %s", expected, cleanOutput)
		}
	}
}

func TestAbbreviateName(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"scanner", "scanner"},
		{"scanner.pool", "s.pool"},
		{"history.store", "h.store"},
		{"a.b.c", "a.b.c"},
	}

	for _, tt := range tests {
		if got := abbreviateName(tt.in); got != tt.want {
			t.Errorf("abbreviateName(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
