// submodule cmd contains command definitions
package main

import "github.com/urfave/cli/v3"

// newApp builds the root command around r.
func newApp(r *Runner) *cli.Command {
	return &cli.Command{
		Name:     "nmdb",
		Usage:    "Export the Nintendo Music catalog to CSV tables and workbooks",
		Version:  "0.1.0",
		Flags:    rootFlags(),
		Before:   r.Before,
		Commands: r.register(),
	}
}

func rootFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "config",
			Aliases: []string{"c"},
			Usage:   "Path to configuration file",
			Value:   "config.toml",
		},
		&cli.BoolFlag{
			Name:  "verbose",
			Usage: "Enable debug logging",
		},
	}
}

// exportCommand runs the full catalog export
func exportCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "export",
		Usage: "Fetch the catalog and write per-locale tables and workbooks",
		Flags: []cli.Flag{
			&cli.StringSliceFlag{
				Name:    "locale",
				Aliases: []string{"l"},
				Usage:   "Locale to export (repeatable, default: export.locales)",
			},
			&cli.BoolFlag{
				Name:    "parallel",
				Aliases: []string{"p"},
				Usage:   "Export locales concurrently",
			},
		},
		Action: r.Export,
	}
}

// updatesCommand writes the daily updated-tracks report
func updatesCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "updates",
		Usage: "Report recently updated tracks",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "locale",
				Aliases: []string{"l"},
				Usage:   "Locale used to resolve track names",
				Value:   "zh-CN",
			},
			&cli.StringFlag{
				Name:  "output-dir",
				Usage: "Directory that receives detect_update/",
				Value: ".",
			},
		},
		Action: r.Updates,
	}
}

// sectionsCommand manages the curated sections document
func sectionsCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "sections",
		Usage: "Curated sections document operations",
		Commands: []*cli.Command{
			{
				Name:  "pull",
				Usage: "Download the curated home sections with an account token",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "output",
						Aliases: []string{"o"},
						Usage:   "Output path (default: export.sections_path)",
					},
					&cli.StringFlag{
						Name:  "curl-file",
						Usage: "Path to a file containing a cURL command copied from the browser",
					},
					&cli.StringFlag{
						Name:  "user-id",
						Usage: "Account user ID (default: api.user_id)",
					},
					&cli.StringFlag{
						Name:    "locale",
						Aliases: []string{"l"},
						Usage:   "Locale of the section names",
						Value:   "zh-CN",
					},
				},
				Action: r.SectionsPull,
			},
		},
	}
}

// historyCommand lists recorded runs
func historyCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "history",
		Usage: "List recorded export runs, newest first",
		Flags: []cli.Flag{
			&cli.IntFlag{
				Name:  "limit",
				Usage: "Maximum number of runs to show (0 for all)",
				Value: 20,
			},
			&cli.StringFlag{
				Name:    "locale",
				Aliases: []string{"l"},
				Usage:   "Only show runs for this locale",
			},
			&cli.BoolFlag{
				Name:  "json",
				Usage: "Print runs as JSON",
			},
		},
		Action: r.History,
	}
}

// setupCommand handles setup operations for configuration and database.
func setupCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "setup",
		Usage: "Setup and configuration commands",
		Commands: []*cli.Command{
			{
				Name:   "config",
				Usage:  "Write the default configuration file",
				Action: r.SetupConfig,
			},
			{
				Name:   "database",
				Usage:  "Initialize the run ledger and run migrations",
				Action: r.SetupDatabase,
			},
		},
	}
}
