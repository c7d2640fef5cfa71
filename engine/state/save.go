package state

// SaveContext accumulates the items granted directly to each world's save
// file, as opposed to items placed at locations.
type SaveContext struct {
	grants map[int]map[string]int
}

// NewSaveContext creates an empty save context.
func NewSaveContext() *SaveContext {
	return &SaveContext{grants: map[int]map[string]int{}}
}

// GiveItem grants count copies of an item to a world's save and marks them
// precollected for the search.
func (s *SaveContext) GiveItem(w *World, name string, count int) {
	if s.grants[w.ID] == nil {
		s.grants[w.ID] = map[string]int{}
	}
	s.grants[w.ID][name] += count
	w.Precollected[name] += count
}

// Count returns how many copies of an item a world's save has been granted.
func (s *SaveContext) Count(worldID int, name string) int {
	return s.grants[worldID][name]
}
