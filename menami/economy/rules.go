package economy

import "fmt"

// Rarity is the 0..4 star grade of a card.
type Rarity int

const (
	MinRarity Rarity = 0
	MaxRarity Rarity = 4
)

func (r Rarity) Valid() bool {
	return r >= MinRarity && r <= MaxRarity
}

func (r Rarity) Stars() string {
	if !r.Valid() {
		return "?"
	}
	out := ""
	for i := Rarity(0); i < MaxRarity; i++ {
		if i < r {
			out += "★"
		} else {
			out += "☆"
		}
	}
	return out
}

// Condition names, indexed by rarity.
var conditions = [...]string{"damaged", "poor", "good", "excellent", "mint"}

// Condition derives the quality name from the rarity.
func (r Rarity) Condition() string {
	if !r.Valid() {
		return conditions[0]
	}
	return conditions[r]
}

func Conditions() []string {
	return conditions[:]
}

// BurnRewardByRarity is the coin payout for burning a card.
var BurnRewardByRarity = map[Rarity]int64{
	0: 5,
	1: 10,
	2: 20,
	3: 40,
	4: 80,
}

type FailMode int

const (
	// FailStay keeps the card at its current rarity.
	FailStay FailMode = iota
	// FailDamaged drops the card to rarity 0.
	FailDamaged
)

func (f FailMode) String() string {
	if f == FailDamaged {
		return "damaged"
	}
	return "stay"
}

type UpgradeRule struct {
	To     Rarity
	Chance float64
	Gold   int64
	// Dust is paid in the target rarity's quality.
	Dust int64
	Fail FailMode
}

func (u UpgradeRule) DustCondition() string {
	return u.To.Condition()
}

// UpgradeRules has no entry for MaxRarity.
var UpgradeRules = map[Rarity]UpgradeRule{
	0: {To: 1, Chance: 0.80, Gold: 50, Dust: 1, Fail: FailStay},
	1: {To: 2, Chance: 0.60, Gold: 150, Dust: 2, Fail: FailStay},
	2: {To: 3, Chance: 0.40, Gold: 400, Dust: 3, Fail: FailDamaged},
	3: {To: 4, Chance: 0.20, Gold: 1000, Dust: 5, Fail: FailDamaged},
}

// RarityWeights validates a five-entry weight vector. A vector of the wrong
// length or with any non-positive entry is replaced by the uniform one.
func RarityWeights(w []float64) ([]float64, error) {
	n := int(MaxRarity) + 1
	uniform := make([]float64, n)
	for i := range uniform {
		uniform[i] = 1
	}
	if len(w) != n {
		return uniform, fmt.Errorf("%w: rarity weights need %d entries, got %d", ErrConfigDegraded, n, len(w))
	}
	for i, v := range w {
		if v <= 0 {
			return uniform, fmt.Errorf("%w: rarity weight %d is %v", ErrConfigDegraded, i, v)
		}
	}
	out := make([]float64, n)
	copy(out, w)
	return out, nil
}
