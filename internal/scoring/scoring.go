// Package scoring computes the desirability score of a Pokémon from its
// types, base stats, abilities and physical measurements.
//
// The score is a weighted sum of four sub-scores. Three of them are capped
// at 100; the stats sub-score is the raw stat total and is not capped, so a
// record with high stats can push the final score well past 100.
package scoring

import (
	"fmt"
	"math"
	"strconv"

	"pokehub/pkg/apperr"
	"pokehub/pkg/models"
)

// Weights are the multipliers applied to each sub-score. They sum to 1.
type Weights struct {
	Types     float64 `json:"types"`
	BaseStats float64 `json:"base_stats"`
	Abilities float64 `json:"abilities"`
	Physical  float64 `json:"physical"`
}

var DefaultWeights = Weights{
	Types:     0.4,
	BaseStats: 0.3,
	Abilities: 0.2,
	Physical:  0.1,
}

const (
	pointsPerType    = 50
	pointsPerAbility = 33.33
	subScoreCap      = 100

	heightFactor  = 5
	weightDivisor = 20
	physicalCap   = 50
)

// Input is the scoring view of a record. BaseStats is positional:
// hp, attack, defense, special-attack, special-defense, speed.
type Input struct {
	Types     []string  `json:"types"`
	BaseStats []float64 `json:"base_stats"`
	Abilities []string  `json:"abilities"`
	Height    float64   `json:"height"`
	Weight    float64   `json:"weight"`
}

// Breakdown reports every sub-score next to the rounded total.
type Breakdown struct {
	Types     float64 `json:"types"`
	BaseStats float64 `json:"base_stats"`
	Abilities float64 `json:"abilities"`
	Physical  float64 `json:"physical"`
	Total     float64 `json:"total"`
}

type Engine struct {
	Weights Weights
}

func NewEngine() *Engine {
	return &Engine{Weights: DefaultWeights}
}

// Score returns the final score rounded to two decimals.
func (e *Engine) Score(in Input) (float64, error) {
	b, err := e.Breakdown(in)
	if err != nil {
		return 0, err
	}
	return b.Total, nil
}

// Breakdown validates in and computes each sub-score. The only failure is
// a malformed stat list, reported before anything else is computed.
func (e *Engine) Breakdown(in Input) (Breakdown, error) {
	if err := validateStats(in.BaseStats); err != nil {
		return Breakdown{}, err
	}

	b := Breakdown{
		Types:     TypeScore(in.Types),
		BaseStats: StatsScore(in.BaseStats),
		Abilities: AbilitiesScore(in.Abilities),
		Physical:  PhysicalScore(in.Height, in.Weight),
	}

	// summed left to right in this order; rounding parity depends on it
	total := 0.0
	total += b.Types * e.Weights.Types
	total += b.BaseStats * e.Weights.BaseStats
	total += b.Abilities * e.Weights.Abilities
	total += b.Physical * e.Weights.Physical

	b.Total = Round2(total)
	return b, nil
}

func TypeScore(types []string) float64 {
	return math.Min(float64(len(types)*pointsPerType), subScoreCap)
}

// StatsScore is the plain stat total. Callers must validate first.
func StatsScore(stats []float64) float64 {
	total := 0.0
	for _, s := range stats {
		total += s
	}
	return total
}

func AbilitiesScore(abilities []string) float64 {
	return math.Min(float64(len(abilities))*pointsPerAbility, subScoreCap)
}

func PhysicalScore(height, weight float64) float64 {
	return math.Min(height*heightFactor, physicalCap) + math.Min(weight/weightDivisor, physicalCap)
}

func validateStats(stats []float64) error {
	if stats == nil {
		return fmt.Errorf("base_stats must be a list of integers: %w", apperr.ErrValidation)
	}
	for i, s := range stats {
		if math.IsNaN(s) || math.IsInf(s, 0) || s != math.Trunc(s) {
			return fmt.Errorf("base_stats[%d] = %v is not an integer: %w", i, s, apperr.ErrValidation)
		}
	}
	return nil
}

// Round2 rounds x to two decimal places using the shortest correctly
// rounded decimal of its binary value, ties to even.
func Round2(x float64) float64 {
	r, err := strconv.ParseFloat(strconv.FormatFloat(x, 'f', 2, 64), 64)
	if err != nil {
		return x
	}
	return r
}

// FromPokemon builds the scoring input of a stored record, projecting its
// stats in the fixed key order.
func FromPokemon(p models.Pokemon) (Input, error) {
	stats, err := p.BaseStats.Ordered()
	if err != nil {
		return Input{}, fmt.Errorf("score %s: %w", p.Name, err)
	}
	return Input{
		Types:     p.Types,
		BaseStats: stats,
		Abilities: p.Abilities,
		Height:    float64(p.Height),
		Weight:    float64(p.Weight),
	}, nil
}
