package projection

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
)

// ErrMalformedBody はリクエストボディがJSONオブジェクトとして解釈できないことを示す。
var ErrMalformedBody = errors.New("request body is not a JSON object")

// MissingFieldError は必須フィールドが欠けていることを示す。
type MissingFieldError struct {
	Field string
}

// Error はerrorインターフェースを実装する。
func (e *MissingFieldError) Error() string {
	return fmt.Sprintf("required field is missing: %s", e.Field)
}

// Render はレコードをビューのフィールドのみを含むマップに変換する。
// 関連は1階層だけ展開し、関連先は自身のカラムのみで描画する。
// 多対一の関連が未設定の場合はnil、一対多の関連が空の場合は空配列になる。
func (v View) Render(rec Record) map[string]any {
	values := rec.Values()

	out := make(map[string]any, len(v.Fields)+len(v.Nested))
	for _, f := range v.Fields {
		out[f] = values[f]
	}

	if v.MaxNestedDepth < 1 {
		return out
	}

	for _, n := range v.Nested {
		var related []Record
		if n.Relation.Get != nil {
			related = n.Relation.Get(rec)
		}

		if n.Relation.Many {
			list := make([]map[string]any, 0, len(related))
			for _, r := range related {
				list = append(list, pick(r.Values(), n.Fields))
			}
			out[n.Relation.Name] = list
			continue
		}

		if len(related) == 0 || related[0] == nil {
			out[n.Relation.Name] = nil
			continue
		}
		out[n.Relation.Name] = pick(related[0].Values(), n.Fields)
	}

	return out
}

// RenderAll は複数レコードをまとめて描画する。空の場合も空配列を返す。
func RenderAll[T Record](v View, recs []T) []map[string]any {
	out := make([]map[string]any, 0, len(recs))
	for _, r := range recs {
		out = append(out, v.Render(r))
	}
	return out
}

// Filter はJSONボディを解析し、ビューの自身のカラムに含まれるフィールドのみを返す。
// ビューに含まれないフィールド（createビューにおけるidなど）は無視する。
// partialビュー以外では、NULLを許容しないカラムが欠けているかnullの場合にエラーを返す。
func (v View) Filter(body []byte) (map[string]json.RawMessage, error) {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return nil, ErrMalformedBody
	}

	var raw map[string]json.RawMessage
	if err := json.Unmarshal(trimmed, &raw); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedBody, err)
	}

	out := make(map[string]json.RawMessage, len(v.Fields))
	for _, f := range v.Fields {
		if val, ok := raw[f]; ok {
			out[f] = val
		}
	}

	if v.Partial {
		return out, nil
	}

	for _, f := range v.Fields {
		if col, ok := v.column(f); ok && col.Nullable {
			continue
		}
		if val, ok := out[f]; ok && !bytes.Equal(bytes.TrimSpace(val), []byte("null")) {
			continue
		}
		return nil, &MissingFieldError{Field: f}
	}

	return out, nil
}

func pick(values map[string]any, fields []string) map[string]any {
	out := make(map[string]any, len(fields))
	for _, f := range fields {
		out[f] = values[f]
	}
	return out
}
