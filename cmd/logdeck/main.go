package main

import (
	"fmt"
	"os"

	"github.com/logdeck/logdeck/pkg/cli"
	"github.com/logdeck/logdeck/pkg/logging"
	"github.com/logdeck/logdeck/pkg/types"
)

var version = "dev"

func main() {
	logging.InitConsoleStdErrLog()
	cliInstance := &types.CLI{}
	rootCmd := cli.NewRootCommand(cliInstance, version)

	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}
