// Package types defines the shared data structures for the plando engine.
// This package contains only type definitions — no logic, no methods.
package types

// ItemInfo is the static definition of an item.
type ItemInfo struct {
	Name        string
	Type        string // "Item", "Song", "Shop", "DungeonReward", "BossKey", "GanonBossKey", "SilverRupee", "Drop", "Event", ...
	Advancement bool   // progression-relevant: placing it gates on reachability
	Priority    bool
	DungeonItem bool
	Trap        bool // eligible to be cloaked with a cosmetic model
	JunkWeight  int  // >0 if the item is junk filler; used as a selection weight
}

// LocationInfo is the static definition of a location.
type LocationInfo struct {
	Name    string
	Type    string // "Chest", "Boss", "Song", "Shop", "Collectable", ...
	Vanilla string // the item found here in an unshuffled game
	Dungeon string // owning dungeon name, empty for overworld locations
	Price   *int   // base shop price; nil for shop buy slots and non-shops
}

// Item is a concrete item instance owned by a world.
type Item struct {
	Name      string
	World     int // owning world id
	Info      *ItemInfo
	Location  *Location // where it ended up, nil while unplaced
	LooksLike string    // cosmetic model override, empty for none
	Price     *int
}

// Location is a concrete location instance in a world.
type Location struct {
	Name    string
	Type    string
	World   int
	Dungeon string
	Vanilla string
	Item    *Item
	Price   *int
	Skipped bool // excluded from fill by settings; its item is granted directly
}

// Entrance is one directed connection slot in the region graph.
type Entrance struct {
	Name            string
	Type            string // pool category: "Dungeon", "Interior", "Grotto", "Grave", "Overworld", ...
	World           int
	ParentRegion    string
	ConnectedRegion string    // empty while disconnected
	Replaces        *Entrance // original entrance a shuffled target stands in for
	Primary         bool
	Consumed        bool // set once a replacement is confirmed
}

// Dungeon describes one dungeon's key configuration within a world.
type Dungeon struct {
	Name             string
	BossKey          string // boss key item name, empty if the dungeon has none
	ShuffleSmallKeys string // "remove", "vanilla", "dungeon", "keysanity", ...
	ShuffleBossKeys  string
}

// Settings is the read-only configuration snapshot threaded through
// resolution. It is never mutated once a generation attempt starts.
type Settings struct {
	WorldCount int
	Seed       int64

	TriforceHunt bool
	TriforceGoal int

	ShuffleSongItems     string // "any", "song", "dungeon"
	ItemPoolValue        string // "minimal", "scarce", "balanced", "plentiful", "ludicrous"
	AdultTradeShuffle    bool
	AdultTradeStart      []string
	ShuffleChildTrade    []string
	BlueFireArrows       bool
	ZoraFountain         string
	StartWithRupees      bool
	StartWithConsumables bool
	StartingHearts       int

	KeyRings            []string
	KeyringGiveBossKey  bool
	ShuffleSmallKeys    string
	ShuffleBossKeys     string
	ShuffleGanonBossKey string
	ShuffleHideoutKeys  string
	ShuffleTCGKeys      string
	ShuffleSilverRupees string
	Tokensanity         string
	Bridge              string
	LACSCondition       string

	SkipChildZelda    bool
	GerudoFortress    string
	ShuffleGerudoCard bool
	EmptyDungeonsMode string
	DisabledLocations []string

	ShuffledEntranceTypes []string // entrance pool categories subject to shuffling

	EnableDistributionFile bool

	// StartingItems applies to every world; WorldStartingItems is keyed by
	// 1-based world number and takes precedence per item name.
	StartingItems      map[string]int
	WorldStartingItems map[int]map[string]int

	// Legacy list-based starting selections, folded into StartingItems
	// during document normalization.
	StartingEquipment []string
	StartingInventory []string
	StartingSongs     []string
}
