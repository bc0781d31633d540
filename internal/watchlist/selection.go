package watchlist

import "github.com/certwatch-io/certwatch/internal/core"

// selectionState is the multi-select session. It only ever holds ids
// of records that existed when they were selected; removals purge
// their id immediately so batch operations never see a stale target.
type selectionState struct {
	active bool
	ids    map[int64]struct{}
}

func (st *selectionState) enter() {
	st.active = true
	st.ids = make(map[int64]struct{})
}

func (st *selectionState) cancel() {
	st.active = false
	st.ids = nil
}

func (st *selectionState) remove(id int64) {
	delete(st.ids, id)
}

func (st *selectionState) pruneMissing(existing map[int64]struct{}) {
	for id := range st.ids {
		if _, ok := existing[id]; !ok {
			delete(st.ids, id)
		}
	}
}

// EnterBatchMode starts a selection session with nothing selected.
// Entering again resets the current selection.
func (s *Service) EnterBatchMode() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.selection.enter()
}

// CancelBatchMode ends the session and discards the selection.
func (s *Service) CancelBatchMode() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.selection.cancel()
}

// BatchModeActive reports whether a selection session is open.
func (s *Service) BatchModeActive() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.selection.active
}

// ToggleSelection flips one record in or out of the selection.
func (s *Service) ToggleSelection(id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.selection.active {
		return core.Validationf("batch mode is not active")
	}
	if s.findLocked(id) == nil {
		return core.ErrNotFound
	}

	if _, ok := s.selection.ids[id]; ok {
		delete(s.selection.ids, id)
	} else {
		s.selection.ids[id] = struct{}{}
	}
	return nil
}

// SelectAll replaces the selection with every record visible under
// cfg. Select-all is always scoped to the filtered view, never the
// whole store.
func (s *Service) SelectAll(cfg core.FilterConfig) (int, error) {
	visible := s.View(cfg)

	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.selection.active {
		return 0, core.Validationf("batch mode is not active")
	}

	s.selection.ids = make(map[int64]struct{}, len(visible))
	for _, r := range visible {
		s.selection.ids[r.ID] = struct{}{}
	}
	return len(s.selection.ids), nil
}

// ClearSelection empties the selection but keeps the session open.
func (s *Service) ClearSelection() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.selection.active {
		s.selection.ids = make(map[int64]struct{})
	}
}

// SelectedIDs returns the selection in ascending id order.
func (s *Service) SelectedIDs() []int64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	ids := make([]int64, 0, len(s.selection.ids))
	for id := range s.selection.ids {
		ids = append(ids, id)
	}
	sortIDs(ids)
	return ids
}

// SelectedRecords resolves the selection to records, insertion order.
func (s *Service) SelectedRecords() []core.WatchedDomain {
	s.mu.Lock()
	selected := make(map[int64]struct{}, len(s.selection.ids))
	for id := range s.selection.ids {
		selected[id] = struct{}{}
	}
	s.mu.Unlock()

	var out []core.WatchedDomain
	for _, r := range s.List() {
		if _, ok := selected[r.ID]; ok {
			out = append(out, r)
		}
	}
	return out
}
