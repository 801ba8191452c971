// Package projection はエンティティのカラム定義から用途別のビュー（射影）を組み立てる。
//
// 1つのスキーマから次の4つのビューを導出する。
//
//   - one:     自身のカラムのみ。通常の読み取りレスポンス用。
//   - partial: 自身のカラムをすべて任意扱いにしたもの。部分更新リクエスト用。
//   - full:    自身のカラムに加え、関連エンティティのカラムを1階層だけ含むもの。
//   - create:  自身のカラムからサーバー採番のIDを除いたもの。作成リクエスト用。
//
// 関連エンティティのカラムは内部的に "relation.field" 形式の文字列で表現する。
package projection

import (
	"sort"
	"strings"
)

// Purpose はビューの用途を表す。
type Purpose string

const (
	PurposeOne     Purpose = "one"
	PurposePartial Purpose = "partial"
	PurposeFull    Purpose = "full"
	PurposeCreate  Purpose = "create"
)

// Column はスキーマ上の1カラムを表す。
type Column struct {
	Name     string
	Nullable bool
}

// Schema はエンティティのカラム構成を表す。
type Schema struct {
	Name     string
	Identity string
	Columns  []Column
}

// Record はビューで描画できるエンティティ。自身のカラム値を返す。
type Record interface {
	Values() map[string]any
}

// Relation は別エンティティへの関連を表す。
// Get は読み込み済みの関連レコードを返す。未設定の場合は空を返す。
type Relation struct {
	Name   string
	Schema Schema
	Many   bool
	Get    func(rec Record) []Record
}

// Nested はfullビューに含める関連とそのカラムの組。
type Nested struct {
	Relation Relation
	Fields   []string
}

// View は用途別に絞り込まれたフィールド集合。
type View struct {
	Purpose        Purpose
	Schema         Schema
	Fields         []string
	Nested         []Nested
	Partial        bool
	MaxNestedDepth int
}

// Set は1つのスキーマから導出した4つのビュー。
type Set struct {
	One     View
	Partial View
	Full    View
	Create  View
}

// ColumnNames はスキーマの「通常の」カラム名を返す。
// 先頭が "_" のカラムは実装内部用として除外する。
// include を追加した後に exclude を取り除くため、両方に同じ名前があれば除外が勝つ。
func ColumnNames(schema Schema, include, exclude []string) []string {
	names := make(map[string]struct{}, len(schema.Columns)+len(include))
	for _, c := range schema.Columns {
		if strings.HasPrefix(c.Name, "_") {
			continue
		}
		names[c.Name] = struct{}{}
	}
	for _, n := range include {
		names[n] = struct{}{}
	}
	for _, n := range exclude {
		delete(names, n)
	}

	out := make([]string, 0, len(names))
	for n := range names {
		out = append(out, n)
	}
	sort.Strings(out)
	return out
}

// Subattributes は関連名とカラム名から "path.field" 形式の名前を作る。
func Subattributes(path string, names []string) []string {
	out := make([]string, len(names))
	for i, n := range names {
		out[i] = path + "." + n
	}
	sort.Strings(out)
	return out
}

// Build はスキーマと関連から4つのビューを組み立てる。
// fullビューの関連は1階層に制限され、関連先の関連は含まれない。
func Build(schema Schema, relations ...Relation) Set {
	own := ColumnNames(schema, nil, nil)

	nested := make([]Nested, 0, len(relations))
	for _, rel := range relations {
		nested = append(nested, Nested{
			Relation: rel,
			Fields:   ColumnNames(rel.Schema, nil, nil),
		})
	}

	return Set{
		One: View{
			Purpose: PurposeOne,
			Schema:  schema,
			Fields:  own,
		},
		Partial: View{
			Purpose: PurposePartial,
			Schema:  schema,
			Fields:  own,
			Partial: true,
		},
		Full: View{
			Purpose:        PurposeFull,
			Schema:         schema,
			Fields:         own,
			Nested:         nested,
			MaxNestedDepth: 1,
		},
		Create: View{
			Purpose: PurposeCreate,
			Schema:  schema,
			Fields:  ColumnNames(schema, nil, []string{schema.Identity}),
		},
	}
}

// Include はビューに含まれる全フィールド名を返す。
// 関連のフィールドは "relation.field" 形式で含まれる。
func (v View) Include() []string {
	out := append([]string(nil), v.Fields...)
	if v.MaxNestedDepth > 0 {
		for _, n := range v.Nested {
			out = append(out, Subattributes(n.Relation.Name, n.Fields)...)
		}
	}
	sort.Strings(out)
	return out
}

// Has はビューが指定フィールドを自身のカラムとして含むかを返す。
func (v View) Has(field string) bool {
	for _, f := range v.Fields {
		if f == field {
			return true
		}
	}
	return false
}

func (v View) column(name string) (Column, bool) {
	for _, c := range v.Schema.Columns {
		if c.Name == name {
			return c, true
		}
	}
	return Column{}, false
}
