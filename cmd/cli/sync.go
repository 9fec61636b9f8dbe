package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"pokehub/internal/fetcher"
	"pokehub/internal/pokeapi"
)

func (a *app) newClient() *pokeapi.Client {
	return pokeapi.NewClient(pokeapi.Options{
		BaseURL:  a.cfg.PokeAPI.BaseURL,
		Timeout:  a.cfg.PokeAPI.Timeout,
		RetryMax: a.cfg.PokeAPI.RetryMax,
		Logger:   a.log,
	})
}

func newSyncCmd(a *app) *cobra.Command {
	var (
		limit       int
		concurrency int
	)

	cmd := &cobra.Command{
		Use:   "sync",
		Short: "Fetch the first N Pokémon from PokéAPI and upsert them into the store.",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if limit < 0 {
				return fmt.Errorf("--limit must not be negative")
			}
			if !cmd.Flags().Changed("limit") {
				limit = a.cfg.Fetch.DefaultLimit
			}
			if !cmd.Flags().Changed("concurrency") {
				concurrency = a.cfg.Fetch.Concurrency
			}

			repo, err := a.openRepo()
			if err != nil {
				return err
			}

			orch := fetcher.NewOrchestrator(a.newClient(), concurrency, a.log)
			records := orch.FetchAll(cmd.Context(), limit)
			if limit > 0 && len(records) == 0 {
				return fmt.Errorf("no pokemon could be fetched")
			}

			res := repo.UpsertMany(cmd.Context(), records)
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Fetched %d, created %d, updated %d\n", len(records), res.Created, res.Updated)
			for _, e := range res.Errors {
				fmt.Fprintf(out, "  failed %s: %s\n", e.Name, e.Error)
			}
			return nil
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 25, "number of Pokémon to fetch")
	cmd.Flags().IntVarP(&concurrency, "concurrency", "c", 1, "parallel detail fetches")
	return cmd
}
