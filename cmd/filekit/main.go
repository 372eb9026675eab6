// Command filekit stores and serves files on the disks configured under
// filesystem.disks.
package main

import (
	"fmt"
	"os"

	"github.com/urfave/cli/v2"

	"github.com/kbukum/filekit/version"
)

var (
	flagConfig = &cli.StringFlag{
		Name:    "config",
		Aliases: []string{"c"},
		Usage:   "path to config.yml (searched in standard locations when empty)",
	}
	flagEnvFile = &cli.StringFlag{
		Name:  "env-file",
		Usage: "path to a .env file loaded before environment binding",
	}
	flagDisk = &cli.StringFlag{
		Name:    "disk",
		Aliases: []string{"d"},
		Usage:   "disk to operate on instead of filesystem.default",
	}
	flagLogLevel = &cli.StringFlag{
		Name:    "log-level",
		Usage:   "override logging.level (debug, info, warn, error)",
		EnvVars: []string{"FILEKIT_LOG_LEVEL"},
	}
)

func newApp() *cli.App {
	return &cli.App{
		Name:    serviceName,
		Usage:   "store, read and serve files on local, S3 and GCS disks",
		Version: version.Get().Version,
		Flags:   []cli.Flag{flagConfig, flagEnvFile, flagDisk, flagLogLevel},
		Commands: []*cli.Command{
			putCommand,
			putFileCommand,
			getCommand,
			existsCommand,
			missingCommand,
			urlCommand,
			tempURLCommand,
			deleteCommand,
			copyCommand,
			moveCommand,
			driversCommand,
			disksCommand,
			serveCommand,
			versionCommand,
		},
	}
}

func main() {
	if err := newApp().Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, "filekit:", err)
		os.Exit(1)
	}
}
