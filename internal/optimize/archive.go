package optimize

import "sync"

// Archive collects evaluated candidates and maintains the non-dominated set.
type Archive struct {
	mu         sync.RWMutex
	candidates []*Candidate
	byID       map[string]*Candidate
}

// NewArchive creates an empty archive.
func NewArchive() *Archive {
	return &Archive{
		byID: make(map[string]*Candidate),
	}
}

// Add stores a candidate. Returns true when the candidate enters the current
// non-dominated set, i.e. no archived candidate dominates it.
func (a *Archive) Add(c *Candidate) bool {
	a.mu.Lock()
	defer a.mu.Unlock()

	nonDominated := true
	for _, existing := range a.candidates {
		if Dominates(existing, c) {
			nonDominated = false
			break
		}
	}
	a.candidates = append(a.candidates, c)
	a.byID[c.ID] = c
	return nonDominated
}

// Get fetches a candidate by id.
func (a *Archive) Get(id string) (*Candidate, bool) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	c, ok := a.byID[id]
	return c, ok
}

// Len returns the number of archived candidates.
func (a *Archive) Len() int {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return len(a.candidates)
}

// All returns the archived candidates in insertion order.
func (a *Archive) All() []*Candidate {
	a.mu.RLock()
	defer a.mu.RUnlock()
	out := make([]*Candidate, len(a.candidates))
	copy(out, a.candidates)
	return out
}

// Front returns the non-dominated candidates in insertion order.
func (a *Archive) Front() []*Candidate {
	a.mu.RLock()
	defer a.mu.RUnlock()

	var front []*Candidate
	for i, c := range a.candidates {
		dominated := false
		for j, other := range a.candidates {
			if i == j {
				continue
			}
			if Dominates(other, c) {
				dominated = true
				break
			}
		}
		if !dominated {
			front = append(front, c)
		}
	}
	return front
}
