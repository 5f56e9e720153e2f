package main

import (
	"os"

	log "github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"
)

func main() {
	app := &cli.App{
		Name:  "storefront",
		Usage: "AIMS storefront checkout",
		Commands: []*cli.Command{
			serveCommand(),
			quoteFeeCommand(),
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}
