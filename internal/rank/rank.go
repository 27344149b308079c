package rank

import "fmt"

// Tier is one named level of the community ladder.
type Tier struct {
	Name      string `json:"name" mapstructure:"name"`
	MinPoints int    `json:"min_points" mapstructure:"min_points"`
}

// Table is an ordered, validated tier ladder. It is immutable after
// construction and safe to share across requests.
type Table struct {
	tiers []Tier
}

// NewTable validates the ladder: at least one tier, the first starting at 0,
// and strictly increasing thresholds.
func NewTable(tiers []Tier) (Table, error) {
	if len(tiers) == 0 {
		return Table{}, fmt.Errorf("rank: empty tier table")
	}
	if tiers[0].MinPoints != 0 {
		return Table{}, fmt.Errorf("rank: first tier %q must start at 0 points, got %d", tiers[0].Name, tiers[0].MinPoints)
	}
	for i := 1; i < len(tiers); i++ {
		if tiers[i].MinPoints <= tiers[i-1].MinPoints {
			return Table{}, fmt.Errorf("rank: tier %q min points %d not above previous %d",
				tiers[i].Name, tiers[i].MinPoints, tiers[i-1].MinPoints)
		}
	}
	out := make([]Tier, len(tiers))
	copy(out, tiers)
	return Table{tiers: out}, nil
}

// DefaultTiers is the ladder the community has always run with.
func DefaultTiers() []Tier {
	return []Tier{
		{Name: "Novice", MinPoints: 0},
		{Name: "Active", MinPoints: 51},
		{Name: "Veteran", MinPoints: 201},
		{Name: "Legend", MinPoints: 501},
	}
}

// Tiers returns a copy of the ladder in ascending order.
func (t Table) Tiers() []Tier {
	out := make([]Tier, len(t.tiers))
	copy(out, t.tiers)
	return out
}

// Len is the number of tiers.
func (t Table) Len() int { return len(t.tiers) }

// level returns the 0-based index of the highest tier whose threshold is
// reached. Negative points fall through to the first tier.
func (t Table) level(points int) int {
	idx := 0
	for i := len(t.tiers) - 1; i >= 0; i-- {
		if points >= t.tiers[i].MinPoints {
			idx = i
			break
		}
	}
	return idx
}

// Name returns the name of the tier the points value falls into.
func (t Table) Name(points int) string {
	return t.tiers[t.level(points)].Name
}

// Level returns the 1-based ordinal of the tier the points value falls into.
func (t Table) Level(points int) int {
	return t.level(points) + 1
}

// Progress describes where a points value sits within the ladder.
// Next and PointsToNext are nil at the top tier, where Percent is 100.
type Progress struct {
	Current      Tier
	Next         *Tier
	PointsToNext *int
	Percent      int
}

// Progress computes the advance toward the next tier. Percent is
// floor(100 * earned / needed) within the current tier's span.
func (t Table) Progress(points int) Progress {
	idx := t.level(points)
	cur := t.tiers[idx]
	if idx == len(t.tiers)-1 {
		return Progress{Current: cur, Percent: 100}
	}
	next := t.tiers[idx+1]
	span := next.MinPoints - cur.MinPoints
	earned := points - cur.MinPoints
	if earned < 0 {
		earned = 0
	}
	toNext := next.MinPoints - points
	if toNext < 1 {
		toNext = 1
	}
	return Progress{
		Current:      cur,
		Next:         &next,
		PointsToNext: &toNext,
		Percent:      100 * earned / span,
	}
}

// Unlocked reports whether the points value reaches the tier at the given
// 1-based ordinal. An ordinal outside the table is a configuration error,
// never a silent grant or deny.
func (t Table) Unlocked(points, ordinal int) (bool, error) {
	if ordinal < 1 || ordinal > len(t.tiers) {
		return false, fmt.Errorf("rank: ordinal %d outside tier table of size %d", ordinal, len(t.tiers))
	}
	return points >= t.tiers[ordinal-1].MinPoints, nil
}
