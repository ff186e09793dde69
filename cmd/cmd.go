// submodule cmd contains command definitions
package main

import "github.com/urfave/cli/v3"

func (r *Runner) app() *cli.Command {
	return &cli.Command{
		Name:      "ytclone",
		Usage:     "Copy a YouTube playlist into a new playlist on your account",
		UsageText: "ytclone [options] <playlist-id>",
		Version:   "0.1.0",
		Flags: append([]cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to configuration file",
				Value:   "config.toml",
			},
			&cli.BoolFlag{
				Name:    "debug",
				Aliases: []string{"d"},
				Usage:   "Print a line per video and log every API request",
			},
		}, copyFlags()...),
		Arguments: []cli.Argument{
			&cli.StringArg{Name: "id", UsageText: "source playlist id"},
		},
		Before:   r.before,
		Action:   r.Copy,
		Commands: r.register(),
	}
}

// copyFlags are only meaningful for the root copy action.
func copyFlags() []cli.Flag {
	return []cli.Flag{
		&cli.BoolFlag{
			Name:    "batch",
			Aliases: []string{"b"},
			Usage:   "Send each round of inserts as a single batch request",
			Local:   true,
		},
		&cli.BoolFlag{
			Name:    "pretend",
			Aliases: []string{"p"},
			Usage:   "Read the source playlist but create and insert nothing",
			Local:   true,
		},
		&cli.StringFlag{
			Name:  "prefix",
			Usage: "Text prepended to the copied playlist title",
			Local: true,
		},
		&cli.IntFlag{
			Name:  "max-rounds",
			Usage: "Give up after this many insert rounds (0 retries until done)",
			Local: true,
			Value: -1,
		},
	}
}

// authCommand runs the OAuth authorization flow.
func authCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "auth",
		Usage: "Authorize access to your YouTube account and store the token",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "no-browser",
				Usage: "Print the consent URL instead of opening a browser",
			},
		},
		Action: r.Auth,
		Commands: []*cli.Command{
			{
				Name:   "logout",
				Usage:  "Forget the stored token",
				Action: r.Logout,
			},
		},
	}
}

// historyCommand lists previous copy runs.
func historyCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "history",
		Usage: "List previous copy jobs",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "source",
				Usage: "Only show copies of this playlist",
				Local: true,
			},
			&cli.IntFlag{
				Name:  "limit",
				Usage: "Maximum number of jobs to list",
				Value: 20,
				Local: true,
			},
			&cli.BoolFlag{
				Name:  "json",
				Usage: "Output JSON",
				Local: true,
			},
		},
		Action: r.History,
		Commands: []*cli.Command{
			{
				Name:  "show",
				Usage: "Show the per-video outcomes of a job",
				Arguments: []cli.Argument{
					&cli.StringArg{Name: "job", UsageText: "job id or sequence number"},
				},
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "json",
						Usage: "Output JSON",
					},
				},
				Action: r.HistoryShow,
			},
		},
	}
}

// setupCommand creates the config file and database.
func setupCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "setup",
		Usage: "Create a config file if missing and run database migrations",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "client-id",
				Usage: "OAuth client id to store in the config file",
				Local: true,
			},
			&cli.StringFlag{
				Name:  "client-secret",
				Usage: "OAuth client secret to store in the config file",
				Local: true,
			},
		},
		Action: r.Setup,
	}
}
