package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"pokehub/pkg/apperr"
	"pokehub/pkg/models"
)

func newShowCmd(a *app) *cobra.Command {
	var remote bool

	cmd := &cobra.Command{
		Use:   "show NAME",
		Short: "Print one Pokémon as JSON, from the store or live from PokéAPI.",
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

			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(p)
		},
	}

	cmd.Flags().BoolVar(&remote, "remote", false, "fetch live from PokéAPI instead of the store")
	return cmd
}

func (a *app) lookup(cmd *cobra.Command, name string) (models.Pokemon, error) {
	repo, err := a.openRepo()
	if err != nil {
		return models.Pokemon{}, err
	}
	p, err := repo.GetByName(cmd.Context(), name)
	if errors.Is(err, apperr.ErrNotFound) {
		return models.Pokemon{}, fmt.Errorf("%q is not stored, try --remote or `pokehub sync`", name)
	}
	if err != nil {
		return models.Pokemon{}, err
	}
	return *p, nil
}
