package pokemon

import (
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"pokehub/internal/events"
	"pokehub/pkg/database"
	"pokehub/pkg/logging"
	"pokehub/pkg/models"
)

type recordingPublisher struct {
	mu     sync.Mutex
	events []events.PokemonEvent
}

func (r *recordingPublisher) Publish(ev events.PokemonEvent) {
	r.mu.Lock()
	r.events = append(r.events, ev)
	r.mu.Unlock()
}

func (r *recordingPublisher) types() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, 0, len(r.events))
	for _, ev := range r.events {
		out = append(out, ev.Type)
	}
	return out
}

func newTestRepo(t *testing.T) (*Repo, *recordingPublisher) {
	t.Helper()
	db, err := database.OpenAndMigrate(database.Config{Path: filepath.Join(t.TempDir(), "test.db")})
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	pub := &recordingPublisher{}
	return NewRepo(db, pub, logging.Discard()), pub
}

func fullStats(hp, atk, def, spa, spd, spe int) models.BaseStats {
	return models.BaseStats{
		HP:             models.IntPtr(hp),
		Attack:         models.IntPtr(atk),
		Defense:        models.IntPtr(def),
		SpecialAttack:  models.IntPtr(spa),
		SpecialDefense: models.IntPtr(spd),
		Speed:          models.IntPtr(spe),
	}
}

func bulbasaur() models.Pokemon {
	return models.Pokemon{
		Name:      "bulbasaur",
		PokemonID: 1,
		Types:     []string{"grass", "poison"},
		Abilities: []string{"overgrow", "chlorophyll"},
		BaseStats: fullStats(45, 49, 49, 65, 65, 45),
		Height:    7,
		Weight:    69,
		SpriteURL: "https://img.example/1.png",
	}
}

func charmander() models.Pokemon {
	return models.Pokemon{
		Name:      "charmander",
		PokemonID: 4,
		Types:     []string{"fire"},
		Abilities: []string{"blaze", "solar-power"},
		BaseStats: fullStats(39, 52, 43, 60, 50, 65),
		Height:    6,
		Weight:    85,
	}
}
