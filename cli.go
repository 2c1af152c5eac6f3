package main

import (
	"context"

	"github.com/urfave/cli/v3"
)

// Applicator abstracts the application commands for cli testing.
type Applicator interface {
	Serve(ctx context.Context, cfgPath, sqlDir string) error
	InitDB(ctx context.Context, cfgPath, sqlDir string) error
}

// BuildCLI constructs the command line interface around an Applicator.
func BuildCLI(app Applicator) *cli.Command {
	return &cli.Command{
		Name:  "bizmanager",
		Usage: "business management web service",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Value:   "config.yaml",
				Usage:   "path to the yaml configuration file",
			},
			&cli.StringFlag{
				Name:  "sql-dir",
				Usage: "use on-disk sql files instead of the embedded ones",
			},
		},
		Commands: []*cli.Command{
			{
				Name:  "serve",
				Usage: "run the web server",
				Action: func(ctx context.Context, cmd *cli.Command) error {
					return app.Serve(ctx, cmd.String("config"), cmd.String("sql-dir"))
				},
			},
			{
				Name:  "init-db",
				Usage: "initialise the database file and schema",
				Action: func(ctx context.Context, cmd *cli.Command) error {
					return app.InitDB(ctx, cmd.String("config"), cmd.String("sql-dir"))
				},
			},
		},
	}
}
