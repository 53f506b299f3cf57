package facilitator

import "sort"

// RoundRobin gives tier i the facilitator at i mod n, walking tiers by
// position and facilitators in the order given.
func RoundRobin(tiers []Tier, facilitators []Facilitator) ([]Assignment, error) {
	if len(tiers) == 0 {
		return nil, ErrNoTiers
	}
	if len(facilitators) == 0 {
		return nil, ErrNoFacilitators
	}

	ordered := make([]Tier, len(tiers))
	copy(ordered, tiers)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].Position < ordered[j].Position
	})

	out := make([]Assignment, len(ordered))
	for i, t := range ordered {
		f := facilitators[i%len(facilitators)]
		out[i] = Assignment{
			TierID:        t.ID,
			Position:      t.Position,
			FacilitatorID: f.ID,
			Name:          f.Name,
		}
	}
	return out, nil
}
