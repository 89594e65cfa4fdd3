package combat

import (
	"math"
	"math/rand"
	"time"

	"github.com/questforge/questforge/internal/core/character"
)

// Source supplies uniform randomness in [0, 1). *rand.Rand satisfies it;
// tests inject a deterministic implementation.
type Source interface {
	Float64() float64
}

// Result describes one resolved attack.
type Result struct {
	Hit      bool
	Damage   int
	Critical bool
}

// Balance constants for attack resolution.
const (
	baseHitChance      = 0.5
	hitChancePerDex    = 0.01
	maxHitChance       = 0.95
	critDexDivisor     = 100.0
	critMultiplier     = 1.5
	defenseFactor      = 0.5
	damageVariance     = 0.1
	baseExperience     = 50.0
	levelBonusFactor   = 1.5
	rewardLevelPercent = 0.1
)

// Resolver computes attack outcomes from two character snapshots. It is
// stateless apart from its random source and safe to share across scenes as
// long as callers stay on the simulation goroutine.
type Resolver struct {
	rng Source
}

// NewResolver builds a Resolver. A nil source falls back to a time-seeded
// math/rand generator.
func NewResolver(rng Source) *Resolver {
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &Resolver{rng: rng}
}

// HitChance is 0.5 plus 1% per point of dexterity advantage, capped at 0.95.
// There is no lower clamp: a hopeless enough matchup misses every time.
func (r *Resolver) HitChance(attacker, defender *character.Character) float64 {
	chance := baseHitChance + hitChancePerDex*float64(attacker.Attributes.Dexterity-defender.Attributes.Dexterity)
	return math.Min(maxHitChance, chance)
}

// PerformAttack resolves a single swing and applies the damage to the
// defender, which may publish the defender's death.
func (r *Resolver) PerformAttack(attacker, defender *character.Character) Result {
	if r.rng.Float64() > r.HitChance(attacker, defender) {
		return Result{}
	}

	// attacker dexterity >= 100 guarantees a critical
	critical := r.rng.Float64() < float64(attacker.Attributes.Dexterity)/critDexDivisor
	multiplier := 1.0
	if critical {
		multiplier = critMultiplier
	}

	damage := r.damage(attacker, defender, multiplier)
	defender.TakeDamage(damage)
	return Result{Hit: true, Damage: damage, Critical: critical}
}

// damage applies the defense reduction and a ±10% variance, flooring at 1 so
// a landed hit always costs something.
func (r *Resolver) damage(attacker, defender *character.Character, multiplier float64) int {
	attackPower := float64(attacker.TotalAttack()) * multiplier
	defenseReduction := float64(defender.TotalDefense()) * defenseFactor
	variance := r.rng.Float64()*2*damageVariance - damageVariance
	raw := (attackPower - defenseReduction) * (1 + variance)
	return int(math.Round(math.Max(1, raw)))
}

// ExperienceReward is the experience granted for defeating a character,
// scaled by the reward level. Pure.
func ExperienceReward(defeated *character.Character, rewardLevel int) int {
	levelBonus := baseExperience * float64(defeated.Level-1) * levelBonusFactor
	reward := (baseExperience + levelBonus) * (1 + float64(rewardLevel)*rewardLevelPercent)
	return int(math.Round(reward))
}
