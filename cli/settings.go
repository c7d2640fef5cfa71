package cli

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/nathoo/plando/types"
)

// ParseSettings layers a document's "settings" section over a base
// configuration. Unknown keys are ignored so documents written for richer
// generators still load.
func ParseSettings(raw any, base *types.Settings) (*types.Settings, error) {
	s := *base
	if raw == nil {
		return &s, nil
	}
	section, ok := raw.(map[string]any)
	if !ok {
		return nil, fmt.Errorf(`"settings" must be an object, got %T`, raw)
	}

	for key, value := range section {
		var err error
		switch key {
		case "world_count":
			s.WorldCount, err = settingInt(key, value)
		case "seed":
			var n int
			n, err = settingInt(key, value)
			s.Seed = int64(n)
		case "triforce_hunt":
			s.TriforceHunt, err = settingBool(key, value)
		case "triforce_goal_per_world":
			s.TriforceGoal, err = settingInt(key, value)
		case "shuffle_song_items":
			s.ShuffleSongItems, err = settingString(key, value)
		case "item_pool_value":
			s.ItemPoolValue, err = settingString(key, value)
		case "adult_trade_shuffle":
			s.AdultTradeShuffle, err = settingBool(key, value)
		case "adult_trade_start":
			s.AdultTradeStart, err = settingStringList(key, value)
		case "shuffle_child_trade":
			s.ShuffleChildTrade, err = settingStringList(key, value)
		case "blue_fire_arrows":
			s.BlueFireArrows, err = settingBool(key, value)
		case "zora_fountain":
			s.ZoraFountain, err = settingString(key, value)
		case "start_with_rupees":
			s.StartWithRupees, err = settingBool(key, value)
		case "start_with_consumables":
			s.StartWithConsumables, err = settingBool(key, value)
		case "starting_hearts":
			s.StartingHearts, err = settingInt(key, value)
		case "key_rings":
			s.KeyRings, err = settingStringList(key, value)
		case "keyring_give_bk":
			s.KeyringGiveBossKey, err = settingBool(key, value)
		case "shuffle_smallkeys":
			s.ShuffleSmallKeys, err = settingString(key, value)
		case "shuffle_bosskeys":
			s.ShuffleBossKeys, err = settingString(key, value)
		case "shuffle_ganon_bosskey":
			s.ShuffleGanonBossKey, err = settingString(key, value)
		case "shuffle_hideoutkeys":
			s.ShuffleHideoutKeys, err = settingString(key, value)
		case "shuffle_tcgkeys":
			s.ShuffleTCGKeys, err = settingString(key, value)
		case "shuffle_silver_rupees":
			s.ShuffleSilverRupees, err = settingString(key, value)
		case "tokensanity":
			s.Tokensanity, err = settingString(key, value)
		case "bridge":
			s.Bridge, err = settingString(key, value)
		case "lacs_condition":
			s.LACSCondition, err = settingString(key, value)
		case "skip_child_zelda":
			s.SkipChildZelda, err = settingBool(key, value)
		case "gerudo_fortress":
			s.GerudoFortress, err = settingString(key, value)
		case "shuffle_gerudo_card":
			s.ShuffleGerudoCard, err = settingBool(key, value)
		case "empty_dungeons_mode":
			s.EmptyDungeonsMode, err = settingString(key, value)
		case "disabled_locations":
			s.DisabledLocations, err = settingStringList(key, value)
		case "shuffled_entrance_types":
			s.ShuffledEntranceTypes, err = settingStringList(key, value)
		case "enable_distribution_file":
			s.EnableDistributionFile, err = settingBool(key, value)
		case "starting_items":
			err = parseStartingItems(&s, value)
		case "starting_equipment":
			s.StartingEquipment, err = settingStringList(key, value)
		case "starting_inventory":
			s.StartingInventory, err = settingStringList(key, value)
		case "starting_songs":
			s.StartingSongs, err = settingStringList(key, value)
		}
		if err != nil {
			return nil, err
		}
	}

	if s.WorldCount < 1 {
		return nil, fmt.Errorf("world_count must be at least 1, got %d", s.WorldCount)
	}
	return &s, nil
}

// parseStartingItems splits the starting-item map into the shared counts and
// the "World N"-keyed per-world overrides.
func parseStartingItems(s *types.Settings, v any) error {
	raw, ok := v.(map[string]any)
	if !ok {
		return fmt.Errorf(`setting "starting_items" must be an object, got %T`, v)
	}
	shared := map[string]int{}
	perWorld := map[int]map[string]int{}
	for name, entry := range raw {
		if rest, isWorld := strings.CutPrefix(name, "World "); isWorld {
			world, err := strconv.Atoi(rest)
			if err == nil && world >= 1 {
				counts, err := settingCountMap("starting_items."+name, entry)
				if err != nil {
					return err
				}
				perWorld[world] = counts
				continue
			}
		}
		count, err := settingInt("starting_items."+name, entry)
		if err != nil {
			return err
		}
		shared[name] = count
	}
	s.StartingItems = shared
	if len(perWorld) > 0 {
		s.WorldStartingItems = perWorld
	}
	return nil
}

func settingInt(key string, v any) (int, error) {
	switch n := v.(type) {
	case int:
		return n, nil
	case int64:
		return int(n), nil
	case float64:
		return int(n), nil
	}
	return 0, fmt.Errorf("setting %q must be a number, got %T", key, v)
}

func settingBool(key string, v any) (bool, error) {
	b, ok := v.(bool)
	if !ok {
		return false, fmt.Errorf("setting %q must be a boolean, got %T", key, v)
	}
	return b, nil
}

func settingString(key string, v any) (string, error) {
	s, ok := v.(string)
	if !ok {
		return "", fmt.Errorf("setting %q must be a string, got %T", key, v)
	}
	return s, nil
}

func settingStringList(key string, v any) ([]string, error) {
	raw, ok := v.([]any)
	if !ok {
		return nil, fmt.Errorf("setting %q must be a list, got %T", key, v)
	}
	list := make([]string, 0, len(raw))
	for _, entry := range raw {
		s, ok := entry.(string)
		if !ok {
			return nil, fmt.Errorf("setting %q entries must be strings, got %T", key, entry)
		}
		list = append(list, s)
	}
	return list, nil
}

func settingCountMap(key string, v any) (map[string]int, error) {
	raw, ok := v.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("setting %q must be an object, got %T", key, v)
	}
	counts := make(map[string]int, len(raw))
	for name, entry := range raw {
		n, err := settingInt(key+"."+name, entry)
		if err != nil {
			return nil, err
		}
		counts[name] = n
	}
	return counts, nil
}
