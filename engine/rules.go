package engine

// HouseRules holds configurable game rule settings.
type HouseRules struct {
	HandSize       uint8 // cards dealt to each player
	KnockLimit     int   // maximum deadwood allowed to knock; 0 takes the default, GinOnly allows only gin
	GinBonus       int
	UndercutBonus  int
	StalemateStock uint8 // draw phase with fewer deck cards than this ends the hand
}

// GinOnly as KnockLimit permits knocking only with zero deadwood. Any
// negative limit behaves the same.
const GinOnly = -1

// DefaultHouseRules returns the standard two-player Gin Rummy rules.
func DefaultHouseRules() HouseRules {
	return HouseRules{
		HandSize:       10,
		KnockLimit:     10,
		GinBonus:       25,
		UndercutBonus:  25,
		StalemateStock: 2,
	}
}

// MaxKnockDeadwood returns the highest deadwood a knock may carry.
func (r HouseRules) MaxKnockDeadwood() int { return max(r.KnockLimit, 0) }

// normalized fills zero fields with defaults so a zero HouseRules is usable.
func (r HouseRules) normalized() HouseRules {
	d := DefaultHouseRules()
	if r.HandSize == 0 || r.HandSize >= MaxHandSize {
		r.HandSize = d.HandSize
	}
	if r.KnockLimit == 0 {
		r.KnockLimit = d.KnockLimit
	}
	if r.GinBonus == 0 {
		r.GinBonus = d.GinBonus
	}
	if r.UndercutBonus == 0 {
		r.UndercutBonus = d.UndercutBonus
	}
	if r.StalemateStock == 0 {
		r.StalemateStock = d.StalemateStock
	}
	return r
}
