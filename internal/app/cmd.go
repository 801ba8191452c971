package app

// Command はbinaryの第1引数で選ぶ起動モード。
type Command string

const (
	CommandServe   Command = "serve"   // APIサーバー
	CommandMigrate Command = "migrate" // 未適用マイグレーションを適用して終了
	CommandReset   Command = "reset"   // スキーマを作り直しフィクスチャを投入して終了
	// CommandHealthcheck は起動中のサーバーの/healthを叩く。
	// シェルのないdistrolessイメージでHEALTHCHECKから使う。
	CommandHealthcheck Command = "healthcheck"
)

var knownCommands = map[string]Command{
	string(CommandServe):       CommandServe,
	string(CommandMigrate):     CommandMigrate,
	string(CommandReset):       CommandReset,
	string(CommandHealthcheck): CommandHealthcheck,
}

// ParseCommand はargs[0]をCommandに変換する。省略時と未知の値はCommandServe。
func ParseCommand(args []string) Command {
	if len(args) > 0 {
		if cmd, ok := knownCommands[args[0]]; ok {
			return cmd
		}
	}
	return CommandServe
}
