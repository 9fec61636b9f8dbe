package events

import "time"

const (
	TypeCreated = "pokemon.created"
	TypeUpdated = "pokemon.updated"
	TypeDeleted = "pokemon.deleted"
)

// PokemonEvent is pushed to subscribers whenever a stored record changes.
type PokemonEvent struct {
	Type string    `json:"type"`
	ID   string    `json:"id"`
	Name string    `json:"name"`
	At   time.Time `json:"at"`
}

// Publisher is what the store depends on. A nil Publisher is allowed
// wherever one is accepted.
type Publisher interface {
	Publish(ev PokemonEvent)
}
