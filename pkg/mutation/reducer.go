package mutation

import (
	"github.com/0xmhha/squad-console/pkg/model"
	"github.com/0xmhha/squad-console/pkg/stats"
)

// ListState is the part of a list screen that mutations patch in place.
type ListState[T model.Entity] struct {
	Items      []T
	Stats      model.Counters
	Pagination *model.Pagination
}

// Clone returns a copy that shares nothing with s.
func (s ListState[T]) Clone() ListState[T] {
	out := ListState[T]{Stats: s.Stats.Clone()}
	if s.Items != nil {
		out.Items = make([]T, len(s.Items))
		copy(out.Items, s.Items)
	}
	if s.Pagination != nil {
		p := *s.Pagination
		out.Pagination = &p
	}
	return out
}

// IndexOf returns the position of the item with the given key, or -1.
func IndexOf[T model.Entity](items []T, key string) int {
	for i, item := range items {
		if item.Key() == key {
			return i
		}
	}
	return -1
}

// ApplyCreate inserts the entity the server returned for a create.
// The item is prepended or appended; stats and pagination grow by one item.
//
// If an item with the same key is already listed the call degrades to
// ApplyUpdate, so applying the same create twice changes nothing.
func ApplyCreate[T model.Entity](s ListState[T], created T, policy stats.Policy[T], prepend bool) ListState[T] {
	if IndexOf(s.Items, created.Key()) >= 0 {
		return ApplyUpdate(s, created, policy)
	}

	out := s.Clone()
	items := make([]T, 0, len(s.Items)+1)
	if prepend {
		items = append(items, created)
		items = append(items, s.Items...)
	} else {
		items = append(items, s.Items...)
		items = append(items, created)
	}
	out.Items = items
	out.Stats = s.Stats.Add(delta(policy, nil, &created))
	if out.Pagination != nil {
		p := out.Pagination.Resize(1)
		out.Pagination = &p
	}
	return out
}

// ApplyUpdate replaces the listed item that has updated's key and moves
// stats by the difference between the old and new versions.
// An unknown key leaves the state unchanged.
func ApplyUpdate[T model.Entity](s ListState[T], updated T, policy stats.Policy[T]) ListState[T] {
	i := IndexOf(s.Items, updated.Key())
	if i < 0 {
		return s
	}

	out := s.Clone()
	old := out.Items[i]
	out.Items[i] = updated
	out.Stats = s.Stats.Add(delta(policy, &old, &updated))
	return out
}

// ApplyDelete removes the item with the given key and subtracts its
// contribution from stats and pagination. An unknown key leaves the state
// unchanged.
func ApplyDelete[T model.Entity](s ListState[T], key string, policy stats.Policy[T]) ListState[T] {
	i := IndexOf(s.Items, key)
	if i < 0 {
		return s
	}

	out := s.Clone()
	removed := out.Items[i]
	out.Items = append(out.Items[:i], out.Items[i+1:]...)
	out.Stats = s.Stats.Add(delta(policy, &removed, nil))
	if out.Pagination != nil {
		p := out.Pagination.Resize(-1)
		out.Pagination = &p
	}
	return out
}

// ApplyUnlistedUpdate moves stats from before to updated when the entity
// is not on the loaded page. A listed key leaves the state unchanged;
// ApplyUpdate handles that case.
func ApplyUnlistedUpdate[T model.Entity](s ListState[T], before, updated T, policy stats.Policy[T]) ListState[T] {
	if IndexOf(s.Items, updated.Key()) >= 0 {
		return s
	}

	out := s.Clone()
	out.Stats = s.Stats.Add(delta(policy, &before, &updated))
	return out
}

// ApplyUnlistedDelete subtracts removed from stats and pagination when it is
// not on the loaded page. A listed key leaves the state unchanged;
// ApplyDelete handles that case.
func ApplyUnlistedDelete[T model.Entity](s ListState[T], removed T, policy stats.Policy[T]) ListState[T] {
	if IndexOf(s.Items, removed.Key()) >= 0 {
		return s
	}

	out := s.Clone()
	if policy != nil {
		out.Stats = s.Stats.Sub(policy(removed))
	}
	if out.Pagination != nil {
		p := out.Pagination.Resize(-1)
		out.Pagination = &p
	}
	return out
}

func delta[T any](policy stats.Policy[T], before, after *T) model.Counters {
	if policy == nil {
		return nil
	}
	return stats.Delta(policy, before, after)
}
