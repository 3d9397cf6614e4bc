package app

// Command はtaskdeckバイナリのサブコマンドを表す。
type Command string

const (
	// CommandServe はHTTP APIサーバーを起動する。
	CommandServe Command = "serve"
	// CommandMigrate はデータベーススキーマを最新化して終了する。
	CommandMigrate Command = "migrate"
	// CommandHealthcheck は稼働中サーバーの/healthzを確認して終了する。
	// distrolessコンテナにはcurlがないため、HEALTHCHECKから自バイナリで実行する。
	CommandHealthcheck Command = "healthcheck"
)

// knownCommands は引数文字列からサブコマンドへの対応表。
var knownCommands = map[string]Command{
	"serve":       CommandServe,
	"migrate":     CommandMigrate,
	"healthcheck": CommandHealthcheck,
}

// ParseCommand はコマンドライン引数の先頭要素をサブコマンドとして解釈する。
// 引数が空、または未知のコマンドの場合はCommandServeにフォールバックする。
func ParseCommand(args []string) Command {
	if len(args) == 0 {
		return CommandServe
	}
	if cmd, ok := knownCommands[args[0]]; ok {
		return cmd
	}
	return CommandServe
}
