package stats

import (
	"sort"

	"github.com/0xmhha/squad-console/pkg/model"
)

// Players counts every player, captains and the summed transfer cost.
func Players(p model.Player) model.Counters {
	c := model.Counters{
		KeyTotalPlayers: 1,
		KeyTotalCost:    p.Cost,
	}
	if p.IsCaptain {
		c[KeyTotalCaptains] = 1
	}
	return c
}

// Teams counts teams and the players assigned to them.
func Teams(t model.Team) model.Counters {
	return model.Counters{
		KeyTotalTeams:       1,
		KeyTotalTeamPlayers: int64(t.PlayerCount),
	}
}

// Members counts accounts and admins.
func Members(u model.User) model.Counters {
	c := model.Counters{KeyTotalMembers: 1}
	if u.IsAdmin {
		c[KeyTotalAdmins] = 1
	}
	return c
}

// Comments counts comments and the summed rating.
func Comments(c model.Comment) model.Counters {
	return model.Counters{
		KeyTotalComments: 1,
		KeyTotalRating:   int64(c.Rating),
	}
}

// Delta returns contribution(after) - contribution(before).
// A nil side contributes nothing, so Delta(p, nil, &x) is a create and
// Delta(p, &x, nil) is a delete.
func Delta[T any](p Policy[T], before, after *T) model.Counters {
	out := model.Counters{}
	if after != nil {
		for k, v := range p(*after) {
			out[k] += v
		}
	}
	if before != nil {
		for k, v := range p(*before) {
			out[k] -= v
		}
	}
	for k, v := range out {
		if v == 0 {
			delete(out, k)
		}
	}
	return out
}

// Aggregate sums the contributions of all items. Every key the policy can
// produce for an item is present in the result, zero or not.
func Aggregate[T any](p Policy[T], items []T) model.Counters {
	out := model.Counters{}
	for _, item := range items {
		for k, v := range p(item) {
			out[k] += v
		}
	}
	return out
}

// Top returns up to n items ordered by the given counter, descending.
// Ties keep their original order.
func Top[T any](p Policy[T], items []T, key string, n int) []T {
	sorted := make([]T, len(items))
	copy(sorted, items)

	sort.SliceStable(sorted, func(i, j int) bool {
		return p(sorted[i])[key] > p(sorted[j])[key]
	})

	if n > 0 && n < len(sorted) {
		sorted = sorted[:n]
	}
	return sorted
}
