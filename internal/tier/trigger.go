package tier

// ForTrigger returns the tiers a CI event routes to, in escalation order.
//
// The event selects every routable tier whose trigger matches, plus all
// lower routable tiers: the ladder guarantees that a higher tier's run also
// runs everything below it (L3 also runs L1 and L2). pre_release selects
// the full ladder.
func (c *Catalog) ForTrigger(ev Trigger) ([]Tier, error) {
	if _, err := ParseTrigger(string(ev)); err != nil {
		return nil, err
	}

	routable := c.Routable()
	if ev == TriggerPreRelease {
		return routable, nil
	}

	highest := -1
	for _, t := range routable {
		if t.Trigger == ev && c.rank(t.ID) > highest {
			highest = c.rank(t.ID)
		}
	}
	if highest < 0 {
		return nil, nil
	}

	out := make([]Tier, 0, len(routable))
	for _, t := range routable {
		if c.rank(t.ID) <= highest {
			out = append(out, t)
		}
	}
	return out, nil
}
