package model

// ListParams are the query parameters shared by every list endpoint.
type ListParams struct {
	Search   string
	FilterID string
	Page     int
	Limit    int
}

// Pagination describes where a page sits in the full collection.
type Pagination struct {
	Page       int `json:"page"`
	Limit      int `json:"limit"`
	TotalPages int `json:"totalPages"`
	TotalItems int `json:"totalItems"`
}

// Resize adjusts TotalItems by delta and recomputes TotalPages.
// TotalPages never drops below 1 and TotalItems never below 0.
func (p Pagination) Resize(delta int) Pagination {
	p.TotalItems += delta
	if p.TotalItems < 0 {
		p.TotalItems = 0
	}
	if p.Limit > 0 {
		p.TotalPages = (p.TotalItems + p.Limit - 1) / p.Limit
	}
	if p.TotalPages < 1 {
		p.TotalPages = 1
	}
	return p
}

// Counters are aggregate statistics keyed by counter name, e.g. totalPlayers.
type Counters map[string]int64

// Clone returns an independent copy. A nil receiver yields nil.
func (c Counters) Clone() Counters {
	if c == nil {
		return nil
	}
	out := make(Counters, len(c))
	for k, v := range c {
		out[k] = v
	}
	return out
}

// Add returns a copy of c with delta applied to the keys c already has.
// Keys the server never reported stay absent.
func (c Counters) Add(delta Counters) Counters {
	if c == nil {
		return nil
	}
	out := c.Clone()
	for k, v := range delta {
		if _, ok := out[k]; ok {
			out[k] += v
		}
	}
	return out
}

// Sub returns a copy of c with delta subtracted.
func (c Counters) Sub(delta Counters) Counters {
	neg := make(Counters, len(delta))
	for k, v := range delta {
		neg[k] = -v
	}
	return c.Add(neg)
}

// ListResult is one page of a remote collection.
type ListResult[T any] struct {
	Items      []T         `json:"items"`
	Stats      Counters    `json:"stats,omitempty"`
	Pagination *Pagination `json:"pagination,omitempty"`
}
