// Package model はドメインモデルを定義する。
package model

// User は投稿を所有するユーザーを表す。
type User struct {
	ID   int64
	Name string

	// Posts は展開取得時のみ読み込まれる。
	Posts []*Post
}

// Post はユーザーおよびポストボックスに属する投稿を表す。
// UserID、BoxIDは未設定を許容する。
type Post struct {
	ID     int64
	Title  string
	UserID *int64
	BoxID  *int64

	// User、Box は展開取得時のみ読み込まれる。
	User *User
	Box  *PostBox
}

// PostBox は投稿をまとめる入れ物を表す。
type PostBox struct {
	ID   int64
	Name string

	// Posts は展開取得時のみ読み込まれる。
	Posts []*Post
}

// Values はユーザー自身のカラム値を返す。
func (u *User) Values() map[string]any {
	return map[string]any{
		"id":   u.ID,
		"name": u.Name,
	}
}

// Values は投稿自身のカラム値を返す。未設定の外部キーはnilになる。
func (p *Post) Values() map[string]any {
	return map[string]any{
		"id":      p.ID,
		"title":   p.Title,
		"user_id": nullableID(p.UserID),
		"box_id":  nullableID(p.BoxID),
	}
}

// Values はポストボックス自身のカラム値を返す。
func (b *PostBox) Values() map[string]any {
	return map[string]any{
		"id":   b.ID,
		"name": b.Name,
	}
}

func nullableID(id *int64) any {
	if id == nil {
		return nil
	}
	return *id
}
