package main

import (
	"fmt"
	"os"

	"github.com/urfave/cli"
)

func main() {
	if err := newApp().Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newApp() *cli.App {
	app := cli.NewApp()
	app.Name = "ingestlog"
	app.Usage = "tagged logging to console, rotating file and a chat channel"
	app.Flags = globalFlags()
	app.Commands = []cli.Command{
		emitCommand(),
		forwardCommand(),
	}
	return app
}
