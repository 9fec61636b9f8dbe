package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"
	"github.com/spf13/cobra"

	"pokehub/internal/scoring"
	"pokehub/pkg/models"
)

func newScoreCmd(a *app) *cobra.Command {
	var remote bool

	cmd := &cobra.Command{
		Use:   "score NAME",
		Short: "Show the weighted score breakdown for a Pokémon.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			name := strings.ToLower(strings.TrimSpace(args[0]))

			var (
				p   models.Pokemon
				err error
			)
			if remote {
				p, err = a.newClient().Fetch(cmd.Context(), name)
			} else {
				p, err = a.lookup(cmd, name)
			}
			if err != nil {
				return err
			}

			in, err := scoring.FromPokemon(p)
			if err != nil {
				return err
			}
			engine := scoring.NewEngine()
			b, err := engine.Breakdown(in)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%s (#%d)\n", p.Name, p.PokemonID)

			w := engine.Weights
			f := func(x float64) string { return strconv.FormatFloat(x, 'f', 2, 64) }
			table := tablewriter.NewWriter(out)
			table.Header([]string{"Component", "Raw", "Weight", "Weighted"})
			table.Configure(func(cfg *tablewriter.Config) {
				cfg.Row.Alignment.Global = tw.AlignRight
			})
			rows := [][]string{
				{"types", f(b.Types), f(w.Types), f(b.Types * w.Types)},
				{"base stats", f(b.BaseStats), f(w.BaseStats), f(b.BaseStats * w.BaseStats)},
				{"abilities", f(b.Abilities), f(w.Abilities), f(b.Abilities * w.Abilities)},
				{"physical", f(b.Physical), f(w.Physical), f(b.Physical * w.Physical)},
				{"total", "", "", colorScore(b.Total)},
			}
			if err := table.Bulk(rows); err != nil {
				return err
			}
			return table.Render()
		},
	}

	cmd.Flags().BoolVar(&remote, "remote", false, "score live PokéAPI data instead of the store")
	return cmd
}
