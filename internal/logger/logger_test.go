package logger

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"
)

func decodeLines(t *testing.T, buf *bytes.Buffer) []map[string]any {
	t.Helper()
	var entries []map[string]any
	for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		if line == "" {
			continue
		}
		var entry map[string]any
		if err := json.Unmarshal([]byte(line), &entry); err != nil {
			t.Fatalf("invalid JSON log line %q: %v", line, err)
		}
		entries = append(entries, entry)
	}
	return entries
}

// TestSetup_JSONShape はJSONの1行にtime、level、msg、service、属性が含まれることを検証する。
func TestSetup_JSONShape(t *testing.T) {
	var buf bytes.Buffer
	Setup(&buf, slog.LevelInfo).Warn("post created",
		slog.Int64("post_id", 7),
		slog.String("request_id", "req-1"),
	)

	entries := decodeLines(t, &buf)
	if len(entries) != 1 {
		t.Fatalf("got %d lines, want 1", len(entries))
	}
	e := entries[0]

	if _, ok := e["time"]; !ok {
		t.Error("missing time")
	}
	want := map[string]any{
		"level":      "WARN",
		"msg":        "post created",
		"service":    ServiceName,
		"post_id":    float64(7),
		"request_id": "req-1",
	}
	for k, v := range want {
		if e[k] != v {
			t.Errorf("%s = %v, want %v", k, e[k], v)
		}
	}
}

// TestSetup_RespectsMinLevel は最小レベル未満のログが出力されないことを検証する。
func TestSetup_RespectsMinLevel(t *testing.T) {
	var buf bytes.Buffer
	l := Setup(&buf, slog.LevelWarn)

	l.Debug("debug")
	l.Info("info")
	l.Error("error")

	entries := decodeLines(t, &buf)
	if len(entries) != 1 || entries[0]["msg"] != "error" {
		t.Errorf("entries = %v, want only the error line", entries)
	}
}

// TestSetupDefault_SetLevel はSetLevelがデフォルトロガーに即時反映されることを検証する。
func TestSetupDefault_SetLevel(t *testing.T) {
	prev := slog.Default()
	t.Cleanup(func() {
		slog.SetDefault(prev)
		SetLevel(slog.LevelInfo)
	})

	var buf bytes.Buffer
	SetupDefault(&buf)

	slog.Debug("hidden")
	SetLevel(slog.LevelDebug)
	slog.Debug("visible")

	entries := decodeLines(t, &buf)
	if len(entries) != 1 {
		t.Fatalf("got %d lines, want 1", len(entries))
	}
	if entries[0]["msg"] != "visible" || entries[0]["service"] != ServiceName {
		t.Errorf("entry = %v", entries[0])
	}
}

func TestMaskURI(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{
			name:  "パスワードが伏せられる",
			input: "postgres://app:secret@db:5432/postboard?sslmode=disable",
			want:  "postgres://app:xxxxx@db:5432/postboard?sslmode=disable",
		},
		{
			name:  "認証情報なしはそのまま",
			input: "sqlite:///var/lib/postboard/app.db",
			want:  "sqlite:///var/lib/postboard/app.db",
		},
		{
			name:  "解析できない場合は全体を伏せる",
			input: "postgres://app:se cret@db:%zz",
			want:  "***",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := MaskURI(tt.input); got != tt.want {
				t.Errorf("MaskURI(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}
