// SPDX-License-Identifier: MIT

package dispatch

import "github.com/katalvlaran/quikdel/core"

// Courier executes one itinerary. Between hops it is logically at Position
// and leaves at DepartAt; a hop completes at DepartAt + Step.Time.
type Courier struct {
	ID       int            `json:"id"`
	Position core.HotspotID `json:"position"`
	Carried  []*Request     `json:"-"`
	Path     []Step         `json:"-"`
	Next     int            `json:"-"`
	DepartAt float64        `json:"depart_at"`
	Distance float64        `json:"distance"`
	Merged   bool           `json:"merged"`
	Retired  bool           `json:"retired"`

	waitAt    core.HotspotID
	waitUntil float64
	decision  bool // reached a node since the last negotiation
}

func newCourier(id int, r *Request, at float64, steps []Step) *Courier {
	return &Courier{
		ID:       id,
		Position: r.Origin,
		Carried:  []*Request{r},
		Path:     steps,
		DepartAt: at,
		waitAt:   core.NoHotspot,
		decision: true,
	}
}

// Load returns the number of carried requests.
func (c *Courier) Load() int { return len(c.Carried) }

// NextStep returns the upcoming hop.
func (c *Courier) NextStep() (Step, bool) {
	if c.Retired || c.Next >= len(c.Path) {
		return Step{}, false
	}
	return c.Path[c.Next], true
}

// drop removes r from the carried set.
func (c *Courier) drop(r *Request) {
	for i, x := range c.Carried {
		if x == r {
			c.Carried = append(c.Carried[:i], c.Carried[i+1:]...)
			return
		}
	}
}

// advance completes every hop that ends by until. arrive is called after
// each hop with the arrival time. Idle couriers retire.
func (c *Courier) advance(until float64, arrive func(c *Courier, at float64)) {
	for !c.Retired && c.Next < len(c.Path) {
		s := c.Path[c.Next]
		at := c.DepartAt + s.Time
		if at > until {
			break
		}
		c.Position = s.To
		c.Distance += s.Distance
		c.DepartAt = at
		c.Next++
		c.decision = true
		if c.Position == c.waitAt {
			if c.waitUntil > c.DepartAt {
				c.DepartAt = c.waitUntil
			}
			c.waitAt = core.NoHotspot
		}
		arrive(c, at)
	}
	if c.Next >= len(c.Path) && len(c.Carried) == 0 {
		c.Retired = true
	}
}

// snapshot copies c for observers.
func (c *Courier) snapshot() Courier {
	cp := *c
	cp.Carried = append([]*Request(nil), c.Carried...)
	cp.Path = nil
	return cp
}
