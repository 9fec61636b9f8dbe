package main

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"pokehub/pkg/models"
)

func splitList(s string) []string {
	out := []string{}
	for _, part := range strings.Split(s, "|") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func atoiOrZero(s string) (int, error) {
	if s = strings.TrimSpace(s); s == "" {
		return 0, nil
	}
	return strconv.Atoi(s)
}

// readCSV parses the layout written by writeCSV. The score column is
// ignored; it is always recomputed.
func readCSV(r io.Reader) ([]models.Pokemon, error) {
	cr := csv.NewReader(r)
	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}
	col := make(map[string]int, len(header))
	for i, h := range header {
		col[strings.TrimSpace(h)] = i
	}
	for _, want := range []string{"name", "pokemon_id"} {
		if _, ok := col[want]; !ok {
			return nil, fmt.Errorf("missing column %q", want)
		}
	}

	get := func(rec []string, name string) string {
		i, ok := col[name]
		if !ok || i >= len(rec) {
			return ""
		}
		return rec[i]
	}

	var items []models.Pokemon
	line := 1
	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		line++
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}

		p := models.Pokemon{
			Name:      strings.ToLower(strings.TrimSpace(get(rec, "name"))),
			Types:     splitList(get(rec, "types")),
			Abilities: splitList(get(rec, "abilities")),
			SpriteURL: strings.TrimSpace(get(rec, "sprite_url")),
		}
		ints := []struct {
			col string
			dst *int
		}{
			{"pokemon_id", &p.PokemonID},
			{"height", &p.Height},
			{"weight", &p.Weight},
		}
		for _, f := range ints {
			if *f.dst, err = atoiOrZero(get(rec, f.col)); err != nil {
				return nil, fmt.Errorf("line %d: %s: %w", line, f.col, err)
			}
		}
		for _, key := range models.StatKeys {
			raw := strings.TrimSpace(get(rec, strings.ReplaceAll(key, "-", "_")))
			if raw == "" {
				continue
			}
			v, err := strconv.Atoi(raw)
			if err != nil {
				return nil, fmt.Errorf("line %d: %s: %w", line, key, err)
			}
			p.BaseStats.Set(key, v)
		}
		items = append(items, p)
	}
	return items, nil
}

func newImportCmd(a *app) *cobra.Command {
	var inPath string

	cmd := &cobra.Command{
		Use:   "import",
		Short: "Upsert Pokémon from a CSV written by `pokehub export`.",
		RunE: func(cmd *cobra.Command, _ []string) error {
			f, err := os.Open(inPath)
			if err != nil {
				return err
			}
			defer f.Close()

			items, err := readCSV(f)
			if err != nil {
				return fmt.Errorf("%s: %w", inPath, err)
			}

			repo, err := a.openRepo()
			if err != nil {
				return err
			}
			res := repo.UpsertMany(cmd.Context(), items)

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Imported %d, created %d, updated %d\n", len(items), res.Created, res.Updated)
			for _, e := range res.Errors {
				fmt.Fprintf(out, "  failed %s: %s\n", e.Name, e.Error)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&inPath, "in", "i", "data/pokemon.csv", "input CSV path")
	return cmd
}
