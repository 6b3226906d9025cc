package logger

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"
	"sync"
	"time"
)

type logFormat string

const (
	formatJSON logFormat = "json"
	formatKV   logFormat = "kv"

	timeFormatMillis = "2006-01-02T15:04:05.000Z07:00"
)

// priorityKeys lead every log line in this exact order when present.
var priorityKeys = []string{"ts", "level", "component", "event", "status", "rid"}

type handlerConfig struct {
	level  slog.Leveler
	out    io.Writer
	format logFormat
}

// structuredHandler renders records as flat key=value or JSON lines with a
// stable leading key order, so lines stay grep-able across components.
type structuredHandler struct {
	cfg    handlerConfig
	mu     *sync.Mutex
	attrs  []slog.Attr
	groups []string
}

func newStructuredHandler(cfg handlerConfig) *structuredHandler {
	if cfg.level == nil {
		cfg.level = slog.LevelInfo
	}
	if cfg.format == "" {
		cfg.format = formatJSON
	}
	return &structuredHandler{cfg: cfg, mu: &sync.Mutex{}}
}

// Enabled reports whether the handler allows processing the provided level.
func (h *structuredHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.cfg.level.Level()
}

// Handle formats the record and writes one line to the configured output.
func (h *structuredHandler) Handle(ctx context.Context, r slog.Record) error {
	if h.cfg.out == nil {
		return fmt.Errorf("logger: output not initialized")
	}

	fields := newFieldSet()

	ts := r.Time
	if ts.IsZero() {
		ts = time.Now()
	}
	fields.put("ts", ts.UTC().Truncate(time.Millisecond).Format(timeFormatMillis))
	fields.put("level", strings.ToUpper(r.Level.String()))

	for _, a := range h.attrs {
		h.collect(fields, a)
	}
	r.Attrs(func(a slog.Attr) bool {
		h.collect(fields, a)
		return true
	})

	addContextFields(ctx, fields)

	if rid, ok := fields.str("rid"); ok && rid != "" {
		fields.put("rid", CompactRID(rid))
	}
	if event, ok := fields.str("event"); !ok || event == "" {
		if r.Message != "" {
			fields.put("event", r.Message)
		} else {
			fields.put("event", "unknown")
		}
	}
	if component, ok := fields.str("component"); !ok || component == "" {
		fields.put("component", "app")
	}

	line := fields.render(h.cfg.format)
	h.mu.Lock()
	defer h.mu.Unlock()
	_, err := h.cfg.out.Write(append(line, '\n'))
	return err
}

// WithAttrs returns a shallow copy of the handler enriched with attrs.
func (h *structuredHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	clone := *h
	clone.attrs = append(append([]slog.Attr(nil), h.attrs...), attrs...)
	return &clone
}

// WithGroup returns a shallow copy of the handler with an additional group prefix.
func (h *structuredHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	clone := *h
	clone.groups = append(append([]string(nil), h.groups...), name)
	return &clone
}

func (h *structuredHandler) collect(fields *fieldSet, attr slog.Attr) {
	key := attr.Key
	if key == "" {
		return
	}
	if len(h.groups) > 0 {
		key = strings.Join(h.groups, ".") + "." + key
	}
	v := attr.Value.Resolve()
	switch v.Kind() {
	case slog.KindGroup:
		for _, member := range v.Group() {
			h.collect(fields, slog.Attr{Key: key + "." + member.Key, Value: member.Value})
		}
	case slog.KindString:
		fields.put(key, v.String())
	case slog.KindInt64:
		fields.put(key, v.Int64())
	case slog.KindUint64:
		fields.put(key, v.Uint64())
	case slog.KindBool:
		fields.put(key, v.Bool())
	case slog.KindFloat64:
		fields.put(key, v.Float64())
	case slog.KindDuration:
		fields.put(key, RoundMS(v.Duration()).String())
	case slog.KindTime:
		fields.put(key, v.Time().UTC().Format(timeFormatMillis))
	default:
		fields.put(key, fmt.Sprint(v.Any()))
	}
}

func addContextFields(ctx context.Context, fields *fieldSet) {
	if ctx == nil {
		return
	}
	if rid := RIDFrom(ctx); rid != "" {
		fields.putMissing("rid", rid)
	}
	if handler := HandlerFrom(ctx); handler != "" {
		fields.putMissing("handler", handler)
	}
	if updateID, userID, chatID, ok := UpdateMetaFrom(ctx); ok {
		if updateID != 0 {
			fields.putMissing("update_id", int64(updateID))
		}
		if userID != 0 {
			fields.putMissing("user_id", userID)
		}
		if chatID != 0 {
			fields.putMissing("chat_id", chatID)
		}
	}
}

// fieldSet keeps values addressable by key while preserving insertion order.
type fieldSet struct {
	keys   []string
	values map[string]any
}

func newFieldSet() *fieldSet {
	return &fieldSet{values: make(map[string]any, 16)}
}

func (f *fieldSet) put(key string, value any) {
	if _, seen := f.values[key]; !seen {
		f.keys = append(f.keys, key)
	}
	f.values[key] = value
}

func (f *fieldSet) putMissing(key string, value any) {
	if _, seen := f.values[key]; seen {
		return
	}
	f.put(key, value)
}

func (f *fieldSet) str(key string) (string, bool) {
	v, ok := f.values[key]
	if !ok {
		return "", false
	}
	s, ok := v.(string)
	return s, ok
}

// ordered returns keys with the priority prefix first, the rest in insertion order.
func (f *fieldSet) ordered() []string {
	out := make([]string, 0, len(f.keys))
	inPriority := make(map[string]bool, len(priorityKeys))
	for _, k := range priorityKeys {
		inPriority[k] = true
		if _, ok := f.values[k]; ok {
			out = append(out, k)
		}
	}
	for _, k := range f.keys {
		if !inPriority[k] {
			out = append(out, k)
		}
	}
	return out
}

func (f *fieldSet) render(format logFormat) []byte {
	var b strings.Builder
	keys := f.ordered()
	if format == formatJSON {
		b.WriteByte('{')
		for i, k := range keys {
			if i > 0 {
				b.WriteByte(',')
			}
			keyJSON, _ := json.Marshal(k)
			valJSON, err := json.Marshal(f.values[k])
			if err != nil {
				valJSON, _ = json.Marshal(fmt.Sprint(f.values[k]))
			}
			b.Write(keyJSON)
			b.WriteByte(':')
			b.Write(valJSON)
		}
		b.WriteByte('}')
		return []byte(b.String())
	}

	for i, k := range keys {
		if i > 0 {
			b.WriteByte(' ')
		}
		b.WriteString(k)
		b.WriteByte('=')
		b.WriteString(kvValue(f.values[k]))
	}
	return []byte(b.String())
}

func kvValue(v any) string {
	s := fmt.Sprint(v)
	if s == "" || strings.ContainsAny(s, " \t\"=") {
		return strconv.Quote(s)
	}
	return s
}
