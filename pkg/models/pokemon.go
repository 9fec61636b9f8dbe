package models

import "time"

// Pokemon is the canonical record: produced by the normalizer from a
// PokéAPI payload, written by the upsert path, and read back for scoring.
type Pokemon struct {
	ID        string    `json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
	Name      string    `json:"name"`
	PokemonID int       `json:"pokemon_id"`
	Types     []string  `json:"types"`
	Abilities []string  `json:"abilities"`
	BaseStats BaseStats `json:"base_stats"`
	Height    int       `json:"height"`
	Weight    int       `json:"weight"`
	SpriteURL string    `json:"sprite_url"`
}
