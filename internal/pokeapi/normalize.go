package pokeapi

import (
	"fmt"
	"strings"

	"github.com/tidwall/gjson"

	"pokehub/pkg/apperr"
	"pokehub/pkg/models"
)

// Sprite lookup order: official artwork first, then the default front sprite.
var spritePaths = []string{
	"sprites.other.official-artwork.front_default",
	"sprites.front_default",
}

// Normalize maps a PokéAPI /pokemon/{name} payload to the canonical record.
// Missing optional fields leave zero values (or nil stats) behind; only a
// payload that is not a JSON object is rejected.
func Normalize(raw []byte) (models.Pokemon, error) {
	if !gjson.ValidBytes(raw) {
		return models.Pokemon{}, fmt.Errorf("normalize: invalid json: %w", apperr.ErrValidation)
	}
	doc := gjson.ParseBytes(raw)
	if !doc.IsObject() {
		return models.Pokemon{}, fmt.Errorf("normalize: payload is not an object: %w", apperr.ErrValidation)
	}

	p := models.Pokemon{
		Name:      doc.Get("name").String(),
		PokemonID: int(doc.Get("id").Int()),
		Types:     names(doc.Get("types"), "type.name"),
		Abilities: names(doc.Get("abilities"), "ability.name"),
		Height:    int(doc.Get("height").Int()),
		Weight:    int(doc.Get("weight").Int()),
		SpriteURL: sprite(doc),
	}

	doc.Get("stats").ForEach(func(_, stat gjson.Result) bool {
		v := stat.Get("base_stat")
		if v.Type == gjson.Number {
			// later entries for the same key overwrite earlier ones
			p.BaseStats.Set(stat.Get("stat.name").String(), int(v.Int()))
		}
		return true
	})

	return p, nil
}

func names(list gjson.Result, path string) []string {
	out := []string{}
	list.ForEach(func(_, item gjson.Result) bool {
		if n := item.Get(path); n.Type == gjson.String {
			out = append(out, n.String())
		}
		return true
	})
	return out
}

func sprite(doc gjson.Result) string {
	for _, path := range spritePaths {
		if s := strings.TrimSpace(doc.Get(path).String()); s != "" {
			return s
		}
	}
	return ""
}
