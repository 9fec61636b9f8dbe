package main

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"
	"github.com/spf13/cobra"

	"pokehub/internal/pokemon"
	"pokehub/internal/scoring"
	"pokehub/pkg/models"
)

var (
	strongColor  = color.New(color.FgGreen, color.Bold)
	averageColor = color.New(color.FgYellow)
	weakColor    = color.New(color.FgHiBlack)
)

// colorScore renders a score tinted by how it compares to a fully evolved
// starter (~150) and a basic one (~100).
func colorScore(score float64) string {
	s := strconv.FormatFloat(score, 'f', 2, 64)
	switch {
	case score >= 150:
		return strongColor.Sprint(s)
	case score >= 100:
		return averageColor.Sprint(s)
	default:
		return weakColor.Sprint(s)
	}
}

func scoreCell(engine *scoring.Engine, p models.Pokemon) string {
	in, err := scoring.FromPokemon(p)
	if err != nil {
		return "-"
	}
	score, err := engine.Score(in)
	if err != nil {
		return "-"
	}
	return colorScore(score)
}

func printPokemonTable(w io.Writer, items []models.Pokemon) error {
	engine := scoring.NewEngine()
	table := tablewriter.NewWriter(w)
	table.Header([]string{"#", "Name", "Types", "Abilities", "Height", "Weight", "Score"})
	table.Configure(func(cfg *tablewriter.Config) {
		cfg.Row.Alignment.Global = tw.AlignRight
	})

	var data [][]string
	for _, p := range items {
		data = append(data, []string{
			strconv.Itoa(p.PokemonID),
			p.Name,
			strings.Join(p.Types, ", "),
			strings.Join(p.Abilities, ", "),
			strconv.Itoa(p.Height),
			strconv.Itoa(p.Weight),
			scoreCell(engine, p),
		})
	}

	if err := table.Bulk(data); err != nil {
		return err
	}
	return table.Render()
}

func newListCmd(a *app) *cobra.Command {
	var q pokemon.ListQuery

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List stored Pokémon with their scores.",
		RunE: func(cmd *cobra.Command, _ []string) error {
			repo, err := a.openRepo()
			if err != nil {
				return err
			}

			items, err := repo.List(cmd.Context(), q)
			if err != nil {
				return err
			}
			if len(items) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No Pokémon stored. Run `pokehub sync` first.")
				return nil
			}
			return printPokemonTable(cmd.OutOrStdout(), items)
		},
	}

	cmd.Flags().StringVarP(&q.Q, "query", "q", "", "name substring filter")
	cmd.Flags().StringVarP(&q.Type, "type", "t", "", "only Pokémon with this type")
	cmd.Flags().IntVarP(&q.Limit, "limit", "n", 20, "page size (max 100)")
	cmd.Flags().IntVar(&q.Offset, "offset", 0, "page offset")
	return cmd
}
