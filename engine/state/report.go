package state

import "github.com/nathoo/plando/types"

// Hint is one resolved gossip stone text.
type Hint struct {
	Text   string
	Colors []string
}

// Report carries the generator's post-fill results that populate the
// output-only sections of the distribution document. It is produced by the
// base generator after a successful fill and never read back as input.
type Report struct {
	FileHash []string

	// Playthrough maps sphere number to the locations collected in that
	// sphere of the win-condition path.
	Playthrough map[int][]*types.Location

	// EntrancePlaythrough maps sphere number to the entrances taken.
	EntrancePlaythrough map[int][]*types.Entrance

	// WOTH lists each world's required ("way of the hero") locations.
	WOTH [][]*types.Location

	// Goals maps, per world, goal category → goal → contributing locations.
	Goals []map[string]map[string][]*types.Location

	// Barren lists each world's regions holding no progression.
	Barren [][]string

	// Hints maps, per world, gossip stone text id → hint.
	Hints []map[int]Hint
}
