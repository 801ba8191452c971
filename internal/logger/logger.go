// Package logger はslogのJSON構造化ロガーを構成する。
package logger

import (
	"io"
	"log/slog"
	"net/url"
	"os"
)

// ServiceName は全ログに付与するサービス名。
const ServiceName = "postboard"

// level はSetupDefaultで設定したロガーの最小レベル。設定読み込み後にSetLevelで変更する。
var level = new(slog.LevelVar)

// Setup はwに書き出すJSONロガーを返す。全てのログにservice属性が付く。
func Setup(w io.Writer, minLevel slog.Leveler) *slog.Logger {
	handler := slog.NewJSONHandler(w, &slog.HandlerOptions{Level: minLevel})
	return slog.New(handler).With(slog.String("service", ServiceName))
}

// SetupDefault はSetupのロガーをslogのデフォルトに設定する。
// wがnilの場合はos.Stdoutに出力する。レベルは初期状態でINFO。
func SetupDefault(w io.Writer) {
	if w == nil {
		w = os.Stdout
	}
	slog.SetDefault(Setup(w, level))
}

// SetLevel はSetupDefaultで設定したロガーの最小レベルを変更する。
func SetLevel(l slog.Level) {
	level.Set(l)
}

// MaskURI は接続文字列のパスワードを伏せた文字列を返す。
// 解析できない場合は全体を伏せる。
func MaskURI(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return "***"
	}
	return u.Redacted()
}
