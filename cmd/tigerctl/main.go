// tigerctl 是 TigersAI 的运维命令行，HTTP 上不开放注册，用户由这里创建。
package main

import (
	"fmt"
	"os"

	"tigersai/internal/cli"
)

func main() {
	if err := cli.NewRootCmd(cli.OpenDatabase).Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
