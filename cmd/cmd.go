// submodule cmd contains command definitions
package main

import (
	"github.com/urfave/cli/v3"

	"github.com/desertthunder/filmhub/internal/tasks"
)

// outputFlags are shared by every command that prints a movie or rating list.
func outputFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "format",
			Aliases: []string{"f"},
			Usage:   "Output format: txt, markdown, csv or json",
			Value:   "txt",
		},
		&cli.BoolFlag{
			Name:  "json",
			Usage: "Output JSON (same as --format json)",
		},
	}
}

// setupCommand handles first-run configuration
func setupCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "setup",
		Usage: "Setup and configuration commands",
		Commands: []*cli.Command{
			{
				Name:   "config",
				Usage:  "Write a default config.toml to the --config path",
				Action: r.SetupConfig,
			},
			{
				Name:  "database",
				Usage: "Initialize the local session database and run migrations",
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "rollback",
						Usage: "Roll back the most recent migration instead",
					},
				},
				Action: r.SetupDatabase,
			},
		},
	}
}

// authCommand handles login, registration and the saved session
func authCommand(r *Runner) *cli.Command {
	credentialFlags := func() []cli.Flag {
		return []cli.Flag{
			&cli.StringFlag{
				Name:    "username",
				Aliases: []string{"u"},
				Usage:   "Account username (prompted when omitted)",
			},
			&cli.StringFlag{
				Name:    "password",
				Aliases: []string{"p"},
				Usage:   "Account password (prompted when omitted)",
			},
		}
	}

	return &cli.Command{
		Name:  "auth",
		Usage: "Account and session commands",
		Commands: []*cli.Command{
			{
				Name:   "login",
				Usage:  "Log in and save the session locally",
				Flags:  credentialFlags(),
				Action: r.AuthLogin,
			},
			{
				Name:  "register",
				Usage: "Create a new account",
				Flags: append(credentialFlags(), &cli.StringFlag{
					Name:    "email",
					Aliases: []string{"e"},
					Usage:   "Account email address",
				}),
				Action: r.AuthRegister,
			},
			{
				Name:   "logout",
				Usage:  "Clear the saved session",
				Action: r.AuthLogout,
			},
			{
				Name:  "status",
				Usage: "Show the saved session",
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "json",
						Usage: "Output JSON",
					},
				},
				Action: r.AuthStatus,
			},
		},
	}
}

// moviesCommand handles catalog browsing and search
func moviesCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "movies",
		Aliases: []string{"m"},
		Usage:   "Browse and search the movie catalog",
		Commands: []*cli.Command{
			{
				Name:  "catalog",
				Usage: "List the catalog grouped by category",
				Flags: append(outputFlags(), &cli.StringFlag{
					Name:  "category",
					Usage: "Only list this category",
				}),
				Action: r.MoviesCatalog,
			},
			{
				Name:  "search",
				Usage: "Search the catalog",
				Arguments: []cli.Argument{
					&cli.StringArg{
						Name: "query",
					},
				},
				Flags: append(outputFlags(), &cli.StringFlag{
					Name:    "type",
					Aliases: []string{"t"},
					Usage:   "Field to match: title, director or genre",
					Value:   "title",
				}),
				Action: r.MoviesSearch,
			},
			{
				Name:  "genre",
				Usage: "List movies of a genre",
				Arguments: []cli.Argument{
					&cli.StringArg{
						Name: "genre",
					},
				},
				Flags:  outputFlags(),
				Action: r.MoviesGenre,
			},
			{
				Name:  "director",
				Usage: "List movies by a director",
				Arguments: []cli.Argument{
					&cli.StringArg{
						Name: "director",
					},
				},
				Flags:  outputFlags(),
				Action: r.MoviesDirector,
			},
			{
				Name:  "show",
				Usage: "Show one movie by external id",
				Arguments: []cli.Argument{
					&cli.StringArg{
						Name: "id",
					},
				},
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "json",
						Usage: "Output JSON",
					},
					&cli.StringFlag{
						Name:  "save-poster",
						Usage: "Download the poster to this path",
					},
					&cli.BoolFlag{
						Name:  "open",
						Usage: "Open the poster in the system browser",
					},
				},
				Action: r.MoviesShow,
			},
		},
	}
}

// ratingsCommand handles the user's ratings, including bulk import and export
func ratingsCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "ratings",
		Usage: "List, create and transfer your ratings",
		Commands: []*cli.Command{
			{
				Name:   "list",
				Usage:  "List your ratings",
				Flags:  outputFlags(),
				Action: r.RatingsList,
			},
			{
				Name:  "rate",
				Usage: "Rate a movie from 1 to 10, updating any existing rating",
				Arguments: []cli.Argument{
					&cli.StringArg{
						Name: "id",
					},
					&cli.StringArg{
						Name: "score",
					},
				},
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "comment",
						Usage: "Optional comment",
					},
				},
				Action: r.RatingsRate,
			},
			{
				Name:  "import",
				Usage: "Import ratings from a movie,score[,comment] CSV file",
				Arguments: []cli.Argument{
					&cli.StringArg{
						Name: "file",
					},
				},
				Flags: []cli.Flag{
					&cli.FloatFlag{
						Name:  "rate-limit",
						Usage: "Rating requests per second",
						Value: tasks.DefaultImportRate,
					},
				},
				Action: r.RatingsImport,
			},
			{
				Name:  "export",
				Usage: "Export your ratings to a file",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "format",
						Aliases: []string{"f"},
						Usage:   "Export format: csv, markdown, txt or json",
						Value:   "csv",
					},
					&cli.StringFlag{
						Name:    "output",
						Aliases: []string{"o"},
						Usage:   "Output file path (default: ratings_<timestamp>.<ext>)",
					},
				},
				Action: r.RatingsExport,
			},
		},
	}
}

// recommendationsCommand prints personalized recommendations
func recommendationsCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "recommendations",
		Aliases: []string{"recs"},
		Usage:   "Show movies recommended from your ratings",
		Flags:   outputFlags(),
		Action:  r.Recommendations,
	}
}

// watchListCommand handles the watch list collection
func watchListCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "watchlist",
		Usage: "Movies you want to watch",
		Commands: []*cli.Command{
			{
				Name:   "list",
				Usage:  "Show the watch list",
				Flags:  outputFlags(),
				Action: r.WatchListShow,
			},
			{
				Name:  "add",
				Usage: "Add a movie to the watch list",
				Arguments: []cli.Argument{
					&cli.StringArg{
						Name: "id",
					},
				},
				Action: r.WatchListAdd,
			},
		},
	}
}

// watchedCommand handles the watched movies collection
func watchedCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "watched",
		Usage: "Movies you have watched",
		Commands: []*cli.Command{
			{
				Name:   "list",
				Usage:  "Show watched movies",
				Flags:  outputFlags(),
				Action: r.WatchedShow,
			},
			{
				Name:  "add",
				Usage: "Mark a movie as watched",
				Arguments: []cli.Argument{
					&cli.StringArg{
						Name: "id",
					},
				},
				Action: r.WatchedAdd,
			},
		},
	}
}

// apiCommand handles direct API calls and the account dump
func apiCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "api",
		Usage: "Direct calls to the filmhub API",
		Commands: []*cli.Command{
			{
				Name:  "get",
				Usage: "Direct GET, prints the response body",
				Arguments: []cli.Argument{
					&cli.StringArg{
						Name: "path",
					},
				},
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "compact",
						Usage: "Print JSON without indentation",
					},
				},
				Action: r.APIGet,
			},
			{
				Name:  "post",
				Usage: "Direct POST with JSON body",
				Arguments: []cli.Argument{
					&cli.StringArg{
						Name: "path",
					},
				},
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "data",
						Aliases:  []string{"d"},
						Usage:    "JSON body to send",
						Required: true,
					},
				},
				Action: r.APIPost,
			},
			{
				Name:  "dump",
				Usage: "Dump catalog, ratings, recommendations and collections as JSON",
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "pretty",
						Usage: "Pretty-print output",
						Value: true,
					},
					&cli.StringFlag{
						Name:  "save",
						Usage: "Also write the dump to this file",
					},
				},
				Action: r.APIDump,
			},
		},
	}
}

// tuiCommand launches the interactive UI
func tuiCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "tui",
		Usage: "Interactive terminal UI",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "log-file",
				Usage: "Log file path (default from [ui] log_file)",
			},
		},
		Action: r.TUI,
	}
}
