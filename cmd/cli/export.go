package main

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"pokehub/internal/scoring"
	"pokehub/pkg/models"
)

var csvHeader = []string{
	"pokemon_id", "name", "types", "abilities",
	"hp", "attack", "defense", "special_attack", "special_defense", "speed",
	"height", "weight", "sprite_url", "score",
}

func statCell(v *int) string {
	if v == nil {
		return ""
	}
	return strconv.Itoa(*v)
}

func writeCSV(w io.Writer, items []models.Pokemon) error {
	engine := scoring.NewEngine()
	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return err
	}

	for _, p := range items {
		score := ""
		if in, err := scoring.FromPokemon(p); err == nil {
			if s, err := engine.Score(in); err == nil {
				score = strconv.FormatFloat(s, 'f', 2, 64)
			}
		}
		s := p.BaseStats
		record := []string{
			strconv.Itoa(p.PokemonID),
			p.Name,
			strings.Join(p.Types, "|"),
			strings.Join(p.Abilities, "|"),
			statCell(s.HP),
			statCell(s.Attack),
			statCell(s.Defense),
			statCell(s.SpecialAttack),
			statCell(s.SpecialDefense),
			statCell(s.Speed),
			strconv.Itoa(p.Height),
			strconv.Itoa(p.Weight),
			p.SpriteURL,
			score,
		}
		if err := cw.Write(record); err != nil {
			return err
		}
	}

	cw.Flush()
	return cw.Error()
}

func writeJSON(w io.Writer, items []models.Pokemon) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(items)
}

func newExportCmd(a *app) *cobra.Command {
	var (
		outPath string
		format  string
	)

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export every stored Pokémon as CSV or JSON.",
		RunE: func(cmd *cobra.Command, _ []string) error {
			var write func(io.Writer, []models.Pokemon) error
			switch format {
			case "csv":
				write = writeCSV
			case "json":
				write = writeJSON
			default:
				return fmt.Errorf("unknown format %q (want csv or json)", format)
			}

			repo, err := a.openRepo()
			if err != nil {
				return err
			}
			items, err := repo.All(cmd.Context())
			if err != nil {
				return err
			}

			if outPath == "-" {
				return write(cmd.OutOrStdout(), items)
			}

			if err := os.MkdirAll(filepath.Dir(outPath), 0o755); err != nil {
				return err
			}
			f, err := os.Create(outPath)
			if err != nil {
				return err
			}
			defer f.Close()

			if err := write(f, items); err != nil {
				return err
			}
			fmt.Fprintf(cmd.ErrOrStderr(), "exported %d pokemon to %s\n", len(items), outPath)
			return nil
		},
	}

	cmd.Flags().StringVarP(&outPath, "out", "o", "data/pokemon.csv", "output path, - for stdout")
	cmd.Flags().StringVarP(&format, "format", "f", "csv", "csv or json")
	return cmd
}
