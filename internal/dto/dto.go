// Package dto はモデルごとのスキーマとビュー（one/partial/full/create）を定義し、
// リクエストボディからモデルへの変換を提供する。
package dto

import (
	"encoding/json"
	"fmt"

	"github.com/hitoshi/postboard/internal/model"
	"github.com/hitoshi/postboard/internal/projection"
)

// スキーマ定義。カラム名はテーブル定義と一致させる。
var (
	UserSchema = projection.Schema{
		Name:     "user",
		Identity: "id",
		Columns: []projection.Column{
			{Name: "id"},
			{Name: "name"},
		},
	}

	PostSchema = projection.Schema{
		Name:     "post",
		Identity: "id",
		Columns: []projection.Column{
			{Name: "id"},
			{Name: "title"},
			{Name: "user_id", Nullable: true},
			{Name: "box_id", Nullable: true},
		},
	}

	PostBoxSchema = projection.Schema{
		Name:     "post_box",
		Identity: "id",
		Columns: []projection.Column{
			{Name: "id"},
			{Name: "name"},
		},
	}
)

// 各モデルのビュー。
var (
	Users = projection.Build(UserSchema, projection.Relation{
		Name:   "posts",
		Schema: PostSchema,
		Many:   true,
		Get: func(rec projection.Record) []projection.Record {
			return postRecords(rec.(*model.User).Posts)
		},
	})

	Posts = projection.Build(PostSchema,
		projection.Relation{
			Name:   "user",
			Schema: UserSchema,
			Get: func(rec projection.Record) []projection.Record {
				if u := rec.(*model.Post).User; u != nil {
					return []projection.Record{u}
				}
				return nil
			},
		},
		projection.Relation{
			Name:   "box",
			Schema: PostBoxSchema,
			Get: func(rec projection.Record) []projection.Record {
				if b := rec.(*model.Post).Box; b != nil {
					return []projection.Record{b}
				}
				return nil
			},
		},
	)

	PostBoxes = projection.Build(PostBoxSchema, projection.Relation{
		Name:   "posts",
		Schema: PostSchema,
		Many:   true,
		Get: func(rec projection.Record) []projection.Record {
			return postRecords(rec.(*model.PostBox).Posts)
		},
	})
)

func postRecords(posts []*model.Post) []projection.Record {
	out := make([]projection.Record, len(posts))
	for i, p := range posts {
		out[i] = p
	}
	return out
}

// FieldError はフィールド値の型が不正であることを示す。
type FieldError struct {
	Field string
	Err   error
}

// Error はerrorインターフェースを実装する。
func (e *FieldError) Error() string {
	return fmt.Sprintf("invalid value for field %q: %v", e.Field, e.Err)
}

// Unwrap は元のエラーを返す。
func (e *FieldError) Unwrap() error {
	return e.Err
}

// DecodeUser はビューに従ってボディをUserに変換する。
// ビュー外のフィールド（createビューのidなど）は無視される。
func DecodeUser(view projection.View, body []byte) (*model.User, error) {
	fields, err := view.Filter(body)
	if err != nil {
		return nil, err
	}

	u := &model.User{}
	if err := decodeField(fields, "id", &u.ID); err != nil {
		return nil, err
	}
	if err := decodeField(fields, "name", &u.Name); err != nil {
		return nil, err
	}
	return u, nil
}

// DecodePost はビューに従ってボディをPostに変換する。
// 戻り値の2番目はボディに含まれていたフィールド名の集合。
func DecodePost(view projection.View, body []byte) (*model.Post, map[string]bool, error) {
	fields, err := view.Filter(body)
	if err != nil {
		return nil, nil, err
	}

	p := &model.Post{}
	if err := decodeField(fields, "id", &p.ID); err != nil {
		return nil, nil, err
	}
	if err := decodeField(fields, "title", &p.Title); err != nil {
		return nil, nil, err
	}
	if err := decodeField(fields, "user_id", &p.UserID); err != nil {
		return nil, nil, err
	}
	if err := decodeField(fields, "box_id", &p.BoxID); err != nil {
		return nil, nil, err
	}

	present := make(map[string]bool, len(fields))
	for k := range fields {
		present[k] = true
	}
	return p, present, nil
}

// DecodePostBox はビューに従ってボディをPostBoxに変換する。
func DecodePostBox(view projection.View, body []byte) (*model.PostBox, error) {
	fields, err := view.Filter(body)
	if err != nil {
		return nil, err
	}

	b := &model.PostBox{}
	if err := decodeField(fields, "id", &b.ID); err != nil {
		return nil, err
	}
	if err := decodeField(fields, "name", &b.Name); err != nil {
		return nil, err
	}
	return b, nil
}

// decodeField はフィールドが存在する場合のみdstにデコードする。
func decodeField(fields map[string]json.RawMessage, name string, dst any) error {
	raw, ok := fields[name]
	if !ok {
		return nil
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		return &FieldError{Field: name, Err: err}
	}
	return nil
}
