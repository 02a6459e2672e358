// submodule cmd contains command definitions
package main

import "github.com/urfave/cli/v3"

// configCommand handles configuration scaffolding and inspection.
func configCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "config",
		Usage: "Manage client configuration",
		Commands: []*cli.Command{
			{
				Name:  "init",
				Usage: "Write a starter config.toml",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "path",
						Aliases: []string{"p"},
						Usage:   "Destination for the config file",
						Value:   "config.toml",
					},
				},
				Action: r.ConfigInit,
			},
			{
				Name:  "show",
				Usage: "Print the effective configuration after overrides resolve",
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "json",
						Usage: "Output raw JSON",
					},
				},
				Action: r.ConfigShow,
			},
		},
	}
}

// statusCommand reports backend health and session state.
func statusCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:   "status",
		Usage:  "Check backend health and session state",
		Action: r.Status,
	}
}

// authCommand handles authentication operations
func authCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "auth",
		Usage: "Manage authentication",
		Commands: []*cli.Command{
			{
				Name:   "login",
				Usage:  "Open the browser login page and wait for the session",
				Action: r.AuthLogin,
			},
			{
				Name:   "logout",
				Usage:  "End the backend session and drop local session state",
				Action: r.AuthLogout,
			},
			{
				Name:  "whoami",
				Usage: "Show the current session and broker claims",
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "json",
						Usage: "Output raw JSON",
					},
				},
				Action: r.AuthWhoami,
			},
			{
				Name:   "broker",
				Usage:  "Sign in through the identity broker with a local callback server",
				Action: r.AuthBroker,
			},
			{
				Name:  "import",
				Usage: "Seed the session from a browser 'Copy as cURL' capture",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "curl",
						Usage: "cURL command from browser DevTools (Copy as cURL)",
					},
					&cli.StringFlag{
						Name:  "curl-file",
						Usage: "Path to a file containing the cURL command",
					},
				},
				Action: r.AuthImport,
			},
		},
	}
}

// moodCommand previews the mode classifier.
func moodCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "mood",
		Usage: "Preview which mode the classifier picks for a mood description",
		Arguments: []cli.Argument{
			&cli.StringArg{
				Name: "text",
			},
		},
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "goal",
				Aliases: []string{"g"},
				Usage:   "Goal mood to combine with the current mood",
			},
			&cli.BoolFlag{
				Name:  "json",
				Usage: "Output raw JSON",
			},
		},
		Action: r.Mood,
	}
}

// generateCommand runs the full submission flow from flags.
func generateCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "generate",
		Aliases: []string{"gen"},
		Usage:   "Generate a mood arc playlist",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "text",
				Aliases:  []string{"t"},
				Usage:    "How you feel right now",
				Required: true,
			},
			&cli.StringFlag{
				Name:     "goal",
				Aliases:  []string{"g"},
				Usage:    "How you want to feel",
				Required: true,
			},
			&cli.StringFlag{
				Name:    "mode",
				Aliases: []string{"m"},
				Usage:   "Override the classifier (uplift, focus, calm, gym, sleep, rage)",
			},
			&cli.IntFlag{
				Name:  "stages",
				Usage: "Number of arc stages (2-10)",
			},
			&cli.IntFlag{
				Name:  "tracks",
				Usage: "Number of tracks to request (10-60)",
			},
			&cli.BoolFlag{
				Name:  "json",
				Usage: "Output raw JSON",
			},
		},
		Action: r.Generate,
	}
}

// historyCommand browses and exports locally recorded generations.
func historyCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "history",
		Usage: "Browse locally recorded generations",
		Commands: []*cli.Command{
			{
				Name:  "list",
				Usage: "List recent recorded generations",
				Flags: []cli.Flag{
					&cli.IntFlag{
						Name:  "limit",
						Usage: "Maximum number of entries to show",
						Value: 20,
					},
					&cli.BoolFlag{
						Name:  "json",
						Usage: "Output raw JSON",
					},
				},
				Action: r.HistoryList,
			},
			{
				Name:  "show",
				Usage: "Show one recorded generation by its list number",
				Arguments: []cli.Argument{
					&cli.StringArg{
						Name: "seq",
					},
				},
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "json",
						Usage: "Output raw JSON",
					},
				},
				Action: r.HistoryShow,
			},
			{
				Name:  "export",
				Usage: "Export recorded generations to disk",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "format",
						Aliases: []string{"f"},
						Usage:   "Export format (csv, markdown, text, json)",
						Value:   "csv",
					},
					&cli.StringFlag{
						Name:    "output",
						Aliases: []string{"o"},
						Usage:   "Output path (base name for csv, directory for markdown)",
					},
					&cli.IntFlag{
						Name:  "seq",
						Usage: "Entry number for single-entry formats",
					},
				},
				Action: r.HistoryExport,
			},
			{
				Name:  "delete",
				Usage: "Remove one recorded generation by its list number",
				Arguments: []cli.Argument{
					&cli.StringArg{
						Name: "seq",
					},
				},
				Action: r.HistoryDelete,
			},
			{
				Name:  "clear",
				Usage: "Remove every recorded generation",
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:    "yes",
						Aliases: []string{"y"},
						Usage:   "Skip the confirmation prompt",
					},
				},
				Action: r.HistoryClear,
			},
		},
	}
}

// tuiCommand returns the top-level TUI command for interactive generation.
func tuiCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "tui",
		Aliases: []string{"interactive", "ui"},
		Usage:   "Launch the interactive mood arc form",
		Action:  r.TUI,
	}
}
