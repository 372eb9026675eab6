package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"

	"github.com/urfave/cli/v2"

	"github.com/kbukum/filekit/bootstrap"
	"github.com/kbukum/filekit/filesystem"
	"github.com/kbukum/filekit/filesystem/drivers"
	"github.com/kbukum/filekit/util"
	"github.com/kbukum/filekit/version"
)

// runTask binds the selected disk, runs task against it and shuts down.
func runTask(c *cli.Context, task func(ctx context.Context, s *filesystem.Storage) error) error {
	settings, cfg, err := loadSettings(c)
	if err != nil {
		return err
	}
	if disk := c.String(flagDisk.Name); disk != "" {
		settings.Set(filesystem.KeyDefaultDisk, disk)
	}

	app, err := bootstrap.NewApp(cfg, bootstrap.WithSummaryWriter(io.Discard))
	if err != nil {
		return err
	}
	fs := filesystem.NewComponent(filesystem.NewSettingsSource(settings),
		filesystem.WithRegistry(drivers.NewRegistry(nil)),
		filesystem.WithLogger(app.Logger.WithComponent("filesystem")),
	)
	if err := app.RegisterComponent(fs); err != nil {
		return err
	}
	return app.RunTask(c.Context, func(ctx context.Context) error {
		return task(ctx, fs.Storage())
	})
}

func requireArgs(c *cli.Context, n int) error {
	if c.NArg() != n {
		return cli.Exit(fmt.Sprintf("%s: expected %d argument(s), got %d", c.Command.Name, n, c.NArg()), 2)
	}
	return nil
}

var putCommand = &cli.Command{
	Name:      "put",
	Usage:     "store content at a path; fails if the path exists",
	ArgsUsage: "<path> [content]",
	Flags: []cli.Flag{
		&cli.StringFlag{Name: "from", Usage: "read content from this local file (- for stdin)"},
	},
	Action: func(c *cli.Context) error {
		if c.NArg() < 1 || c.NArg() > 2 {
			return cli.Exit("put: expected <path> [content]", 2)
		}
		content, err := readContent(c, c.Args().Get(1))
		if err != nil {
			return err
		}
		return runTask(c, func(ctx context.Context, s *filesystem.Storage) error {
			return s.Put(ctx, c.Args().First(), content)
		})
	},
}

func readContent(c *cli.Context, inline string) ([]byte, error) {
	switch from := c.String("from"); {
	case from == "-":
		return io.ReadAll(c.App.Reader)
	case from != "":
		return os.ReadFile(from)
	default:
		return []byte(inline), nil
	}
}

var putFileCommand = &cli.Command{
	Name:      "put-file",
	Usage:     "upload a local file into a folder under a generated name",
	ArgsUsage: "<folder> <local-file>",
	Action: func(c *cli.Context) error {
		if err := requireArgs(c, 2); err != nil {
			return err
		}
		local := c.Args().Get(1)
		content, err := os.ReadFile(local)
		if err != nil {
			return err
		}
		return runTask(c, func(ctx context.Context, s *filesystem.Storage) error {
			stored, err := s.PutFile(ctx, c.Args().First(), content, filepath.Ext(local))
			if err != nil {
				return err
			}
			fmt.Fprintln(c.App.Writer, stored)
			return nil
		})
	},
}

var getCommand = &cli.Command{
	Name:      "get",
	Usage:     "print the content at a path",
	ArgsUsage: "<path>",
	Flags: []cli.Flag{
		&cli.StringFlag{Name: "out", Aliases: []string{"o"}, Usage: "write to this local file instead of stdout"},
	},
	Action: func(c *cli.Context) error {
		if err := requireArgs(c, 1); err != nil {
			return err
		}
		return runTask(c, func(ctx context.Context, s *filesystem.Storage) error {
			content, err := s.Get(ctx, c.Args().First())
			if err != nil {
				return err
			}
			if out := c.String("out"); out != "" {
				return os.WriteFile(out, content, 0o644)
			}
			_, err = c.App.Writer.Write(content)
			return err
		})
	},
}

var existsCommand = &cli.Command{
	Name:      "exists",
	Usage:     "print whether a path exists",
	ArgsUsage: "<path>",
	Action: func(c *cli.Context) error {
		if err := requireArgs(c, 1); err != nil {
			return err
		}
		return runTask(c, func(ctx context.Context, s *filesystem.Storage) error {
			ok, err := s.Exists(ctx, c.Args().First())
			if err != nil {
				return err
			}
			fmt.Fprintln(c.App.Writer, ok)
			return nil
		})
	},
}

var missingCommand = &cli.Command{
	Name:      "missing",
	Usage:     "print whether a path is absent",
	ArgsUsage: "<path>",
	Action: func(c *cli.Context) error {
		if err := requireArgs(c, 1); err != nil {
			return err
		}
		return runTask(c, func(ctx context.Context, s *filesystem.Storage) error {
			missing, err := s.Missing(ctx, c.Args().First())
			if err != nil {
				return err
			}
			fmt.Fprintln(c.App.Writer, missing)
			return nil
		})
	},
}

var urlCommand = &cli.Command{
	Name:      "url",
	Usage:     "print the public URL of a path",
	ArgsUsage: "<path>",
	Action: func(c *cli.Context) error {
		if err := requireArgs(c, 1); err != nil {
			return err
		}
		return runTask(c, func(ctx context.Context, s *filesystem.Storage) error {
			u, err := s.URL(ctx, c.Args().First())
			if err != nil {
				return err
			}
			fmt.Fprintln(c.App.Writer, u)
			return nil
		})
	},
}

var tempURLCommand = &cli.Command{
	Name:      "temp-url",
	Usage:     "print a URL that stops working after --ttl",
	ArgsUsage: "<path>",
	Flags: []cli.Flag{
		&cli.DurationFlag{Name: "ttl", Value: filesystem.DefaultTemporaryURLTTL, Usage: "lifetime of the URL"},
	},
	Action: func(c *cli.Context) error {
		if err := requireArgs(c, 1); err != nil {
			return err
		}
		ttl := c.Duration("ttl")
		return runTask(c, func(ctx context.Context, s *filesystem.Storage) error {
			u, err := s.TemporaryURL(ctx, c.Args().First(), ttl)
			if err != nil {
				return err
			}
			fmt.Fprintln(c.App.Writer, u)
			return nil
		})
	},
}

var deleteCommand = &cli.Command{
	Name:      "delete",
	Usage:     "delete a path",
	ArgsUsage: "<path>",
	Flags: []cli.Flag{
		&cli.BoolFlag{Name: "force", Aliases: []string{"f"}, Usage: "succeed when the path does not exist"},
	},
	Action: func(c *cli.Context) error {
		if err := requireArgs(c, 1); err != nil {
			return err
		}
		return runTask(c, func(ctx context.Context, s *filesystem.Storage) error {
			return s.Delete(ctx, c.Args().First(), c.Bool("force"))
		})
	},
}

var copyCommand = &cli.Command{
	Name:      "copy",
	Usage:     "copy a path on the same disk",
	ArgsUsage: "<src> <dst>",
	Action: func(c *cli.Context) error {
		if err := requireArgs(c, 2); err != nil {
			return err
		}
		return runTask(c, func(ctx context.Context, s *filesystem.Storage) error {
			return s.Copy(ctx, c.Args().Get(0), c.Args().Get(1))
		})
	},
}

var moveCommand = &cli.Command{
	Name:      "move",
	Usage:     "move a path on the same disk",
	ArgsUsage: "<src> <dst>",
	Action: func(c *cli.Context) error {
		if err := requireArgs(c, 2); err != nil {
			return err
		}
		return runTask(c, func(ctx context.Context, s *filesystem.Storage) error {
			return s.Move(ctx, c.Args().Get(0), c.Args().Get(1))
		})
	},
}

var driversCommand = &cli.Command{
	Name:  "drivers",
	Usage: "list the built-in drivers",
	Action: func(c *cli.Context) error {
		for _, name := range drivers.NewRegistry(nil).Names() {
			fmt.Fprintln(c.App.Writer, name)
		}
		return nil
	},
}

var disksCommand = &cli.Command{
	Name:  "disks",
	Usage: "list configured disks with credentials masked",
	Action: func(c *cli.Context) error {
		settings, _, err := loadSettings(c)
		if err != nil {
			return err
		}
		source := filesystem.NewSettingsSource(settings)
		names := source.Disks()
		sort.Strings(names)
		for _, name := range names {
			disk, _ := source.Disk(name)
			marker := " "
			if name == source.DefaultDisk() {
				marker = "*"
			}
			opts := make(map[string]any, len(disk.Values))
			for k, v := range disk.Values {
				if k != "driver" {
					opts[k] = v
				}
			}
			fmt.Fprintf(c.App.Writer, "%s %s\t%s\t%s\n", marker, name, disk.Driver, util.FormatOptions(opts))
		}
		return nil
	},
}

var versionCommand = &cli.Command{
	Name:  "version",
	Usage: "print build information",
	Action: func(c *cli.Context) error {
		fmt.Fprintln(c.App.Writer, version.Get().String())
		return nil
	},
}
