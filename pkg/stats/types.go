// Package stats computes the aggregate counters shown above list screens.
//
// Each entity type has a Policy describing how much a single record
// contributes to each counter. Deltas between two versions of a record are
// what optimistic mutations add to the server-reported totals.
//
// Example usage:
//
//	counters := stats.Aggregate(stats.Players, players)
//	fmt.Printf("Captains: %d\n", counters[stats.KeyTotalCaptains])
//
//	// captain flag flipped on an edit
//	delta := stats.Delta(stats.Players, &before, &after)
package stats

import "github.com/0xmhha/squad-console/pkg/model"

// Counter keys as reported by the list endpoints.
const (
	KeyTotalPlayers     = "totalPlayers"
	KeyTotalCaptains    = "totalCaptains"
	KeyTotalCost        = "totalCost"
	KeyTotalTeams       = "totalTeams"
	KeyTotalTeamPlayers = "totalTeamPlayers"
	KeyTotalMembers     = "totalMembers"
	KeyTotalAdmins      = "totalAdmins"
	KeyTotalComments    = "totalComments"
	KeyTotalRating      = "totalRating"
)

// Policy returns the contribution of one record to the counters.
type Policy[T any] func(item T) model.Counters
