package main

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"pokehub/internal/pokemon"
	"pokehub/pkg/config"
	"pokehub/pkg/database"
	"pokehub/pkg/logging"
)

var version = "dev"

// app holds what every subcommand shares once the root pre-run resolved it.
type app struct {
	v          *viper.Viper
	configFile string

	cfg  config.Config
	log  *logrus.Logger
	db   *sql.DB
	repo *pokemon.Repo
}

func (a *app) setup(cmd *cobra.Command) error {
	cfg, err := config.Load(a.v, a.configFile)
	if err != nil {
		return err
	}
	a.cfg = cfg

	log, err := logging.NewWithOutput(cmd.ErrOrStderr(), cfg.Log.Level, cfg.Log.Format)
	if err != nil {
		return err
	}
	a.log = log
	return nil
}

// openRepo opens the store lazily so commands that never touch it (watch)
// don't create a database file.
func (a *app) openRepo() (*pokemon.Repo, error) {
	if a.repo != nil {
		return a.repo, nil
	}
	db, err := database.OpenAndMigrate(database.Config{Path: a.cfg.DBPath})
	if err != nil {
		return nil, err
	}
	a.db = db
	a.repo = pokemon.NewRepo(db, nil, a.log)
	return a.repo, nil
}

func (a *app) close() {
	if a.db != nil {
		_ = a.db.Close()
	}
}

func newRootCmd() *cobra.Command {
	a := &app{v: viper.New()}

	root := &cobra.Command{
		Use:           "pokehub",
		Short:         "Fetch, store and score Pokémon from PokéAPI.",
		Long:          `pokehub syncs Pokémon from PokéAPI into a local SQLite store, lists and exports them, and scores them with the weighted scoring engine.`,
		Version:       version,
		SilenceErrors: true,
		SilenceUsage:  true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.setup(cmd)
		},
		PersistentPostRun: func(_ *cobra.Command, _ []string) {
			a.close()
		},
	}
	root.SetContext(context.Background())

	pf := root.PersistentFlags()
	pf.StringVar(&a.configFile, "config", "", "config file (default ./pokehub.yaml or ~/.pokehub/pokehub.yaml)")
	pf.String("db", "", "SQLite database path")
	pf.String("log-level", "", "log level (debug, info, warn, error)")
	if err := a.v.BindPFlag("db.path", pf.Lookup("db")); err != nil {
		panic(fmt.Sprintf("bind db flag: %v", err))
	}
	if err := a.v.BindPFlag("log.level", pf.Lookup("log-level")); err != nil {
		panic(fmt.Sprintf("bind log-level flag: %v", err))
	}

	root.AddCommand(
		newSyncCmd(a),
		newListCmd(a),
		newShowCmd(a),
		newScoreCmd(a),
		newExportCmd(a),
		newImportCmd(a),
		newWatchCmd(a),
	)
	return root
}
