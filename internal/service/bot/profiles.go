package bot

import (
	"fmt"
)

// Strategy is the rule a profile uses to pick among safe columns.
type Strategy int

const (
	DeterministicSearch Strategy = iota + 1
	WeightedOffensive
	WeightedDefensive
	BalancedStrategic
	BiasedRandom
)

func (s Strategy) String() string {
	switch s {
	case DeterministicSearch:
		return "deterministic-search"
	case WeightedOffensive:
		return "weighted-offensive"
	case WeightedDefensive:
		return "weighted-defensive"
	case BalancedStrategic:
		return "balanced-strategic"
	case BiasedRandom:
		return "biased-random"
	default:
		return fmt.Sprintf("strategy(%d)", int(s))
	}
}

func (s Strategy) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// Profile is an immutable AI personality. Pass it by value.
//
// Randomness is interpreted per strategy: BiasedRandom plays the search move
// with probability 1-Randomness, BalancedStrategic samples by weight when it is
// above zero and plays the top weight otherwise. OffensiveWeight and
// DefensiveWeight are the pool weights of the weighted strategies and the
// score multipliers of BalancedStrategic.
type Profile struct {
	Name            string   `json:"name"`
	DisplayName     string   `json:"displayName"`
	Strategy        Strategy `json:"strategy"`
	SearchDepth     int      `json:"searchDepth"`
	Randomness      float64  `json:"randomness"`
	OffensiveWeight float64  `json:"offensiveWeight"`
	DefensiveWeight float64  `json:"defensiveWeight"`
}

// Deterministic reports whether the profile always answers a position with
// the same column, which makes its decisions cacheable.
func (p Profile) Deterministic() bool {
	return p.Strategy == DeterministicSearch && p.Randomness == 0
}

func (p Profile) Validate() error {
	switch {
	case p.Name == "":
		return fmt.Errorf("%w: missing name", ErrInvalidProfile)
	case p.Strategy < DeterministicSearch || p.Strategy > BiasedRandom:
		return fmt.Errorf("%w: %s has unknown strategy %d", ErrInvalidProfile, p.Name, p.Strategy)
	case p.SearchDepth < 1:
		return fmt.Errorf("%w: %s search depth must be at least 1", ErrInvalidProfile, p.Name)
	case p.Randomness < 0 || p.Randomness > 1:
		return fmt.Errorf("%w: %s randomness must be within [0,1]", ErrInvalidProfile, p.Name)
	case p.OffensiveWeight < 0 || p.DefensiveWeight < 0:
		return fmt.Errorf("%w: %s weights must not be negative", ErrInvalidProfile, p.Name)
	}
	return nil
}

const (
	ProfileEasy              = "easy"
	ProfileSmartRandom       = "smart-random"
	ProfileWeightedOffensive = "weighted-offensive"
	ProfileWeightedDefensive = "weighted-defensive"
	ProfileEnhancedSmart     = "enhanced-smart"
	ProfileHard              = "hard"
	ProfileExpert            = "expert"
)

var profiles = []Profile{
	{Name: ProfileEasy, DisplayName: "Alice", Strategy: BiasedRandom, SearchDepth: 2, Randomness: 0.7, OffensiveWeight: 1, DefensiveWeight: 1},
	{Name: ProfileSmartRandom, DisplayName: "Bob", Strategy: BiasedRandom, SearchDepth: 4, Randomness: 0.4, OffensiveWeight: 1, DefensiveWeight: 1},
	{Name: ProfileWeightedOffensive, DisplayName: "Blaze", Strategy: WeightedOffensive, SearchDepth: 2, Randomness: 1, OffensiveWeight: 2, DefensiveWeight: 1},
	{Name: ProfileWeightedDefensive, DisplayName: "Wall", Strategy: WeightedDefensive, SearchDepth: 2, Randomness: 1, OffensiveWeight: 1, DefensiveWeight: 2},
	{Name: ProfileEnhancedSmart, DisplayName: "Dana", Strategy: BalancedStrategic, SearchDepth: 4, Randomness: 0.25, OffensiveWeight: 1.2, DefensiveWeight: 1.5},
	{Name: ProfileHard, DisplayName: "Charles", Strategy: DeterministicSearch, SearchDepth: 6, Randomness: 0, OffensiveWeight: 1, DefensiveWeight: 1},
	{Name: ProfileExpert, DisplayName: "Eve", Strategy: DeterministicSearch, SearchDepth: 9, Randomness: 0, OffensiveWeight: 1, DefensiveWeight: 1},
}

// Profiles lists the shipped profiles. The search ladder easy, smart-random,
// enhanced-smart, hard, expert runs from weakest to strongest; the weighted
// profiles are play styles and sit outside it.
func Profiles() []Profile {
	out := make([]Profile, len(profiles))
	copy(out, profiles)
	return out
}

func ParseProfile(name string) (Profile, error) {
	for _, p := range profiles {
		if p.Name == name {
			return p, nil
		}
	}
	return Profile{}, fmt.Errorf("%w: %q", ErrUnknownProfile, name)
}
