package main

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"text/tabwriter"

	"github.com/urfave/cli/v2"
	"golang.org/x/crypto/bcrypt"

	"github.com/bhumeshparihar/e-matdaan-voting-system/internal/admin"
	"github.com/bhumeshparihar/e-matdaan-voting-system/internal/admin/adapters"
	ballotstore "github.com/bhumeshparihar/e-matdaan-voting-system/internal/ballot/store"
	identitystore "github.com/bhumeshparihar/e-matdaan-voting-system/internal/identity/store"
	"github.com/bhumeshparihar/e-matdaan-voting-system/internal/platform/config"
	"github.com/bhumeshparihar/e-matdaan-voting-system/internal/platform/postgres"
	registrystore "github.com/bhumeshparihar/e-matdaan-voting-system/internal/registry/store"
)

var flagDatabaseURL = &cli.StringFlag{
	Name:     "database-url",
	Usage:    "Postgres connection string",
	EnvVars:  []string{"DATABASE_URL"},
	Required: true,
}

var flagOutput = &cli.StringFlag{
	Name:  "output",
	Value: "-",
	Usage: "File to write the export to, - for stdout",
}

var flagCost = &cli.IntFlag{
	Name:  "cost",
	Value: bcrypt.DefaultCost,
	Usage: "bcrypt cost",
}

func main() {
	if err := config.LoadDotEnv(); err != nil {
		log.Fatal(err)
	}
	app := &cli.App{
		Name:  "matdaan-admin",
		Usage: "operate an e-matdaan postgres deployment",
		Commands: []*cli.Command{
			{
				Name:  "seed",
				Usage: "apply the schema and load the demo voter roll and ballot",
				Flags: []cli.Flag{flagDatabaseURL},
				Action: func(cCtx *cli.Context) error {
					db, err := open(cCtx)
					if err != nil {
						return err
					}
					defer db.Close()
					voters, err := registrystore.NewPostgres(db).Seed(cCtx.Context, registrystore.DefaultVoters())
					if err != nil {
						return err
					}
					parties, err := ballotstore.NewPostgres(db).Seed(cCtx.Context, ballotstore.DefaultParties())
					if err != nil {
						return err
					}
					fmt.Printf("added %d voters and %d parties\n", voters, parties)
					return nil
				},
			},
			{
				Name:  "tally",
				Usage: "print vote counts per party",
				Flags: []cli.Flag{flagDatabaseURL},
				Action: func(cCtx *cli.Context) error {
					db, err := open(cCtx)
					if err != nil {
						return err
					}
					defer db.Close()
					parties, err := ballotstore.NewPostgres(db).ListParties(cCtx.Context)
					if err != nil {
						return err
					}
					w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
					fmt.Fprintln(w, "PARTY\tCANDIDATE\tVOTES")
					for _, p := range parties {
						fmt.Fprintf(w, "%s\t%s\t%d\n", p.Name, p.Candidate, p.VoteCount)
					}
					return w.Flush()
				},
			},
			{
				Name:  "export",
				Usage: "dump identities, voters, parties and votes as JSON",
				Flags: []cli.Flag{flagDatabaseURL, flagOutput},
				Action: func(cCtx *cli.Context) error {
					db, err := open(cCtx)
					if err != nil {
						return err
					}
					defer db.Close()
					ledger := ballotstore.NewPostgres(db)
					svc, err := admin.NewService(
						adapters.NewIdentityStoreAdapter(identitystore.NewPostgres(db)),
						registrystore.NewPostgres(db),
						ledger,
					)
					if err != nil {
						return err
					}
					snap, err := svc.Export(cCtx.Context)
					if err != nil {
						return err
					}
					out := os.Stdout
					if path := cCtx.String(flagOutput.Name); path != "-" {
						f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o600)
						if err != nil {
							return err
						}
						defer f.Close()
						out = f
					}
					enc := json.NewEncoder(out)
					enc.SetIndent("", "  ")
					return enc.Encode(snap)
				},
			},
			{
				Name:      "hash-token",
				Usage:     "print the bcrypt hash to use as ADMIN_TOKEN_HASH",
				ArgsUsage: "<token>",
				Flags:     []cli.Flag{flagCost},
				Action: func(cCtx *cli.Context) error {
					token := cCtx.Args().First()
					if token == "" {
						return cli.Exit("token argument is required", 2)
					}
					hash, err := bcrypt.GenerateFromPassword([]byte(token), cCtx.Int(flagCost.Name))
					if err != nil {
						return err
					}
					fmt.Println(string(hash))
					return nil
				},
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func open(cCtx *cli.Context) (*sql.DB, error) {
	return openDB(cCtx.Context, cCtx.String(flagDatabaseURL.Name))
}

func openDB(ctx context.Context, url string) (*sql.DB, error) {
	db, err := postgres.Open(ctx, postgres.Config{URL: url})
	if err != nil {
		return nil, err
	}
	if err := postgres.Migrate(ctx, db); err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}
