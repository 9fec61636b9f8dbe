package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pokehub/pkg/apperr"
)

func bulbasaurStats() BaseStats {
	return BaseStats{
		HP:             IntPtr(45),
		Attack:         IntPtr(49),
		Defense:        IntPtr(49),
		SpecialAttack:  IntPtr(65),
		SpecialDefense: IntPtr(65),
		Speed:          IntPtr(45),
	}
}

func TestOrderedFollowsFixedKeyOrder(t *testing.T) {
	got, err := bulbasaurStats().Ordered()
	require.NoError(t, err)
	assert.Equal(t, []float64{45, 49, 49, 65, 65, 45}, got)
}

func TestOrderedIgnoresJSONKeyOrder(t *testing.T) {
	// keys deliberately shuffled
	raw := `{"speed":6,"special-defense":5,"hp":1,"special-attack":4,"defense":3,"attack":2}`
	var s BaseStats
	require.NoError(t, json.Unmarshal([]byte(raw), &s))

	got, err := s.Ordered()
	require.NoError(t, err)
	assert.Equal(t, []float64{1, 2, 3, 4, 5, 6}, got)
}

func TestOrderedUnsetStat(t *testing.T) {
	s := bulbasaurStats()
	s.Speed = nil

	_, err := s.Ordered()
	assert.ErrorIs(t, err, apperr.ErrValidation)
	assert.ErrorContains(t, err, "speed")
}

func TestSetAndGet(t *testing.T) {
	var s BaseStats
	assert.True(t, s.Set(StatSpecialAttack, 10))
	assert.True(t, s.Set(StatSpecialAttack, 12))
	assert.False(t, s.Set("accuracy", 1))

	v, ok := s.Get(StatSpecialAttack)
	assert.True(t, ok)
	assert.Equal(t, 12, v)

	_, ok = s.Get(StatHP)
	assert.False(t, ok)
}

func TestBaseStatsJSONKeepsNulls(t *testing.T) {
	s := BaseStats{HP: IntPtr(10)}
	b, err := json.Marshal(s)
	require.NoError(t, err)
	assert.JSONEq(t, `{"hp":10,"attack":null,"defense":null,"special-attack":null,"special-defense":null,"speed":null}`, string(b))
}
