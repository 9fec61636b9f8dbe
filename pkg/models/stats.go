package models

import (
	"fmt"

	"pokehub/pkg/apperr"
)

// Stat keys in the order scoring consumes them.
const (
	StatHP             = "hp"
	StatAttack         = "attack"
	StatDefense        = "defense"
	StatSpecialAttack  = "special-attack"
	StatSpecialDefense = "special-defense"
	StatSpeed          = "speed"
)

// StatKeys is the fixed projection order of BaseStats.
var StatKeys = [6]string{
	StatHP, StatAttack, StatDefense, StatSpecialAttack, StatSpecialDefense, StatSpeed,
}

// BaseStats holds the six base stats. A nil field is a stat the source did
// not report.
type BaseStats struct {
	HP             *int `json:"hp"`
	Attack         *int `json:"attack"`
	Defense        *int `json:"defense"`
	SpecialAttack  *int `json:"special-attack"`
	SpecialDefense *int `json:"special-defense"`
	Speed          *int `json:"speed"`
}

func (s *BaseStats) slot(key string) **int {
	switch key {
	case StatHP:
		return &s.HP
	case StatAttack:
		return &s.Attack
	case StatDefense:
		return &s.Defense
	case StatSpecialAttack:
		return &s.SpecialAttack
	case StatSpecialDefense:
		return &s.SpecialDefense
	case StatSpeed:
		return &s.Speed
	}
	return nil
}

// Set stores v under key and reports whether key is one of StatKeys.
func (s *BaseStats) Set(key string, v int) bool {
	p := s.slot(key)
	if p == nil {
		return false
	}
	*p = &v
	return true
}

// Get returns the stat under key and whether it is set.
func (s BaseStats) Get(key string) (int, bool) {
	p := s.slot(key)
	if p == nil || *p == nil {
		return 0, false
	}
	return **p, true
}

// Ordered projects the stats to a list in StatKeys order. An unset stat
// cannot be scored and fails with apperr.ErrValidation.
func (s BaseStats) Ordered() ([]float64, error) {
	out := make([]float64, 0, len(StatKeys))
	for _, key := range StatKeys {
		v, ok := s.Get(key)
		if !ok {
			return nil, fmt.Errorf("base stat %q is not set: %w", key, apperr.ErrValidation)
		}
		out = append(out, float64(v))
	}
	return out, nil
}

// IntPtr is a convenience for building BaseStats literals.
func IntPtr(v int) *int { return &v }
