// Command postboard はユーザー・投稿・ポストボックスのCRUD APIサーバー。
package main

import (
	"fmt"
	"os"

	"github.com/hitoshi/postboard/internal/app"
)

func main() {
	if err := app.Run(os.Stdout, os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "postboard: %v\n", err)
		os.Exit(1)
	}
}
