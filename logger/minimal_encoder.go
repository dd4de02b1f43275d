package logger

import (
	"fmt"
	"math"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/mattn/go-isatty"
	"go.uber.org/zap"
	"go.uber.org/zap/buffer"
	"go.uber.org/zap/zapcore"
)

const (
	colorReset = "\x1b[0m"
	colorBold  = "\x1b[1m"
)

// Muted terminal palette (gruvbox-derived, easy on eyes during long scans)
type palette struct {
	fg       string
	aqua     string
	orange   string
	yellow   string
	green    string
	blue     string
	purple   string
	red      string
	redBg    string
	yellowBg string
}

var colors = palette{
	fg:       "\x1b[38;5;223m", // Soft cream (#ebdbb2)
	aqua:     "\x1b[38;5;108m", // Muted cyan-green (#8ec07c)
	orange:   "\x1b[38;5;208m", // Warm orange (#fe8019)
	yellow:   "\x1b[38;5;214m", // Soft yellow (#fabd2f)
	green:    "\x1b[38;5;142m", // Muted green (#b8bb26)
	blue:     "\x1b[38;5;109m", // Soft blue (#83a598)
	purple:   "\x1b[38;5;175m", // Muted purple (#d3869b)
	red:      "\x1b[38;5;167m", // Warm red (#fb4934)
	redBg:    "\x1b[48;5;88m",  // Dark red background
	yellowBg: "\x1b[48;5;58m",  // Dark yellow background
}

// colorEnabled is resolved once at startup. Honors NO_COLOR and
// suppresses color when stderr (the log stream) is not a terminal.
var colorEnabled = os.Getenv("NO_COLOR") == "" && isatty.IsTerminal(os.Stderr.Fd())

func paint(color, s string) string {
	if !colorEnabled {
		return s
	}
	return color + s + colorReset
}

// colorMessage applies a light semantic tint to the message text
func colorMessage(msg string) string {
	if !colorEnabled {
		return msg
	}
	lower := strings.ToLower(msg)
	switch {
	case strings.Contains(lower, "collision"):
		return paint(colors.red, msg)
	case strings.Contains(lower, "scan") || strings.Contains(lower, "group") ||
		strings.Contains(lower, "completed"):
		return paint(colors.green, msg)
	case strings.Contains(lower, "watch") || strings.Contains(lower, "config") ||
		strings.Contains(lower, "starting"):
		return paint(colors.orange, msg)
	default:
		return paint(colors.fg, msg)
	}
}

// minimalEncoder implements a calm, compact console encoder
// Format: "13:04:35  scanner  Scan completed  files=249 groups=3 412ms"
type minimalEncoder struct {
	zapcore.Encoder // Embed a base encoder for field serialization
	buf             *buffer.Buffer
}

func newMinimalEncoder() *minimalEncoder {
	// Create a base JSON encoder for field serialization (internal use only)
	baseEncoder := zapcore.NewJSONEncoder(zap.NewProductionEncoderConfig())

	return &minimalEncoder{
		Encoder: baseEncoder,
		buf:     buffer.NewPool().Get(),
	}
}

func (enc *minimalEncoder) Clone() zapcore.Encoder {
	return &minimalEncoder{
		Encoder: enc.Encoder.Clone(),
		buf:     buffer.NewPool().Get(),
	}
}

func (enc *minimalEncoder) EncodeEntry(ent zapcore.Entry, fields []zapcore.Field) (*buffer.Buffer, error) {
	final := buffer.NewPool().Get()

	final.AppendString(paint(colors.aqua, ent.Time.Format("15:04:05")))

	// Level: only show for WARN/ERROR with bold + background
	if ent.Level != zapcore.InfoLevel && ent.Level != zapcore.DebugLevel {
		final.AppendString("  ")
		final.AppendString(levelBadge(ent.Level))
	}

	// Component name (abbreviated) for visual grouping
	if ent.LoggerName != "" {
		final.AppendString("  ")
		final.AppendString(paint(colors.yellow, abbreviateName(ent.LoggerName)))
	}

	final.AppendString("  ")
	final.AppendString(colorMessage(ent.Message))

	if len(fields) > 0 {
		if rendered := renderFields(fields); rendered != "" {
			final.AppendString("  ")
			final.AppendString(rendered)
		}
	}

	final.AppendString("\n")
	return final, nil
}

// levelBadge returns bold + colored + background for WARN/ERROR
func levelBadge(level zapcore.Level) string {
	if !colorEnabled {
		return level.CapitalString()
	}
	switch level {
	case zapcore.WarnLevel:
		return colorBold + colors.yellowBg + colors.yellow + "WARN" + colorReset
	case zapcore.ErrorLevel:
		return colorBold + colors.redBg + colors.red + "ERROR" + colorReset
	case zapcore.DPanicLevel, zapcore.PanicLevel, zapcore.FatalLevel:
		return colorBold + colors.redBg + colors.red + level.CapitalString() + colorReset
	default:
		return ""
	}
}

// abbreviateName shortens component names: scanner -> scanner, scanner.pool -> s.pool
func abbreviateName(name string) string {
	parts := strings.Split(name, ".")
	if len(parts) > 1 {
		return string(parts[0][0]) + "." + strings.Join(parts[1:], ".")
	}
	return name
}

// fieldValue extracts a printable value from a zap field.
// Every field type must produce some representation; losing a field
// here means losing debugging information.
func fieldValue(f zapcore.Field) string {
	switch f.Type {
	case zapcore.StringType:
		return f.String
	case zapcore.BoolType:
		if f.Integer == 1 {
			return "true"
		}
		return "false"
	case zapcore.Int64Type, zapcore.Int32Type, zapcore.Int16Type, zapcore.Int8Type:
		return strconv.FormatInt(f.Integer, 10)
	case zapcore.Uint64Type, zapcore.Uint32Type, zapcore.Uint16Type,
		zapcore.Uint8Type, zapcore.UintptrType:
		return strconv.FormatUint(uint64(f.Integer), 10)
	case zapcore.Float64Type:
		return strconv.FormatFloat(math.Float64frombits(uint64(f.Integer)), 'g', -1, 64)
	case zapcore.Float32Type:
		return strconv.FormatFloat(float64(math.Float32frombits(uint32(f.Integer))), 'g', -1, 32)
	case zapcore.DurationType:
		return time.Duration(f.Integer).String()
	case zapcore.TimeType:
		t := time.Unix(0, f.Integer)
		if loc, ok := f.Interface.(*time.Location); ok && loc != nil {
			t = t.In(loc)
		}
		return t.Format(time.RFC3339)
	case zapcore.ByteStringType:
		if b, ok := f.Interface.([]byte); ok {
			return string(b)
		}
		return ""
	case zapcore.ErrorType:
		if err, ok := f.Interface.(error); ok && err != nil {
			return err.Error()
		}
		return ""
	default:
		if f.Interface != nil {
			return fmt.Sprintf("%v", f.Interface)
		}
		return f.String
	}
}

// renderFields renders structured fields compactly with theme colors.
// Known scan fields get special formatting; everything else falls back
// to key=value so no field is ever silently discarded.
func renderFields(fields []zapcore.Field) string {
	parts := make([]string, 0, len(fields))

	for _, f := range fields {
		if f.Type == zapcore.SkipType {
			continue
		}
		val := fieldValue(f)

		switch f.Key {
		case FieldDurationMS:
			parts = append(parts, paint(colors.purple, val+"ms"))
		case FieldPath, FieldFile, FieldRoot:
			parts = append(parts, paint(colors.blue, val))
		case FieldHash:
			parts = append(parts, f.Key+"="+paint(colors.aqua, val))
		case FieldFiles, FieldGroups, FieldUnique, FieldFailures,
			FieldCount, FieldTotalCount, FieldWorkers:
			parts = append(parts, f.Key+"="+paint(colors.purple, val))
		default:
			parts = append(parts, f.Key+"="+val)
		}
	}

	return strings.Join(parts, " ")
}
