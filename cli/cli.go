// Package cli drives the batch resolution pipeline: load a distribution
// document, resolve it against the game data tables, and write the resolved
// document back out.
package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/nathoo/plando/engine"
	"github.com/nathoo/plando/engine/state"
	"github.com/nathoo/plando/types"
)

// CLI runs the resolution pipeline against a fixed settings/tables pair.
type CLI struct {
	Settings *types.Settings
	Tables   *state.Tables
	In       io.Reader
	Out      io.Writer
	Err      io.Writer
}

// Options selects the input document, the output target, and what the
// resolved document includes.
type Options struct {
	DistributionPath string
	OutputPath       string // empty writes the resolved document to Out
	Spoiler          bool   // include per-world result sections
	IncludeOutput    bool   // keep ':'-prefixed output-only sections
	Validate         bool   // stop after loading and validating the document
}

// New creates a CLI wired to the standard streams.
func New(settings *types.Settings, tables *state.Tables) *CLI {
	return &CLI{
		Settings: settings,
		Tables:   tables,
		In:       os.Stdin,
		Out:      os.Stdout,
		Err:      os.Stderr,
	}
}

// load builds a distribution from a document file. A "settings" section in
// the document overrides the base settings.
func (c *CLI) load(path string) (*engine.Distribution, error) {
	doc, err := engine.LoadDocument(path)
	if err != nil {
		return nil, fmt.Errorf("loading distribution: %w", err)
	}
	settings, err := ParseSettings(doc["settings"], c.Settings)
	if err != nil {
		return nil, fmt.Errorf("loading distribution: %w", err)
	}
	d, err := engine.New(settings, c.Tables, state.RequirementSearch(), doc)
	if err != nil {
		return nil, fmt.Errorf("loading distribution: %w", err)
	}
	return d, nil
}

// Resolve loads a distribution document and runs the full resolution
// pipeline against fresh worlds.
func (c *CLI) Resolve(path string) (*engine.Distribution, error) {
	d, err := c.load(path)
	if err != nil {
		return nil, err
	}
	worlds := make([]*state.World, d.Settings.WorldCount)
	for id := range worlds {
		worlds[id] = state.NewWorld(id, d.Settings, c.Tables)
	}
	if err := c.resolve(d, worlds); err != nil {
		return nil, err
	}
	return d, nil
}

// Run loads the distribution document, resolves it, and emits the result.
func (c *CLI) Run(opts Options) error {
	if opts.Validate {
		d, err := c.load(opts.DistributionPath)
		if err != nil {
			return err
		}
		fmt.Fprintf(c.Out, "%s: valid distribution for %d world(s)\n",
			opts.DistributionPath, d.Settings.WorldCount)
		return nil
	}

	d, err := c.Resolve(opts.DistributionPath)
	if err != nil {
		return err
	}

	if opts.OutputPath != "" {
		if err := d.SaveDocument(opts.OutputPath, opts.IncludeOutput, opts.Spoiler); err != nil {
			return fmt.Errorf("writing resolved document: %w", err)
		}
		fmt.Fprintf(c.Out, "resolved document written to %s\n", opts.OutputPath)
		return nil
	}

	data, err := json.MarshalIndent(d.ToDocument(opts.IncludeOutput, opts.Spoiler), "", "    ")
	if err != nil {
		return fmt.Errorf("encoding resolved document: %w", err)
	}
	fmt.Fprintln(c.Out, string(data))
	return nil
}

// resolve runs every resolution stage in the pipeline order: structural
// overrides, pool alteration, entrances, boss rewards, fill, cosmetics,
// starting items, then the output report.
func (c *CLI) resolve(d *engine.Distribution, worlds []*state.World) error {
	settings := d.Settings

	if settings.TriforceHunt {
		if err := d.ConfigureTriforceHunt(worlds); err != nil {
			return fmt.Errorf("configuring triforce hunt: %w", err)
		}
	}

	for _, wd := range d.WorldDists {
		world := worlds[wd.ID]

		mqPool := c.dungeonNames()
		emptyPool := c.dungeonNames()
		if _, _, err := wd.ConfigureDungeons(world, &mqPool, &emptyPool); err != nil {
			return fmt.Errorf("configuring dungeons: %w", err)
		}

		// Without a base generator restricting it, every named trial is
		// eligible.
		trialPool := recordNames(wd.Trials)
		active, err := wd.ConfigureTrials(&trialPool)
		if err != nil {
			return fmt.Errorf("configuring trials: %w", err)
		}
		activeSet := map[string]bool{}
		for _, name := range active {
			activeSet[name] = true
		}
		for name, rec := range wd.Trials {
			if rec.Active != nil && !activeSet[name] {
				world.SkippedTrials[name] = true
			}
		}

		for song, notes := range wd.ConfigureSongs() {
			world.SongNotes[song] = notes
		}
	}

	// Pool alteration runs on the name pool; the layered instance pools are
	// built from the altered names.
	names := make([][]string, len(worlds))
	for _, wd := range d.WorldDists {
		world := worlds[wd.ID]
		pool := world.VanillaNames()
		if err := wd.AlterPool(world, &pool); err != nil {
			return fmt.Errorf("altering item pool for world %d: %w", wd.ID+1, err)
		}
		names[wd.ID] = pool
	}
	locationPools, itemPools := state.PoolsFromNames(worlds, names)

	var flatPool []*types.Item
	for _, p := range itemPools {
		flatPool = append(flatPool, *p...)
	}
	for _, wd := range d.WorldDists {
		entrancePools, targetPools := worlds[wd.ID].EntrancePools()
		if err := wd.SetShuffledEntrances(worlds, entrancePools, targetPools, flatPool); err != nil {
			return fmt.Errorf("overriding entrances: %w", err)
		}
	}

	for _, wd := range d.WorldDists {
		world := worlds[wd.ID]
		prizeLocations, prizePool := c.bossPools(world)
		if _, err := wd.FillBosses(world, &prizeLocations, &prizePool); err != nil {
			return fmt.Errorf("placing boss rewards: %w", err)
		}
	}

	if err := d.Fill(worlds, locationPools, itemPools); err != nil {
		return fmt.Errorf("filling locations: %w", err)
	}

	var cloakable []*types.Location
	var models []*types.Item
	for _, world := range worlds {
		for _, name := range c.Tables.LocationOrder {
			if loc := world.Locations[name]; loc.Item != nil {
				cloakable = append(cloakable, loc)
			}
		}
		models = append(models, world.ItemPool...)
	}
	if err := d.Cloak(worlds, []*[]*types.Location{&cloakable}, []*[]*types.Item{&models}); err != nil {
		return fmt.Errorf("cloaking items: %w", err)
	}

	save := state.NewSaveContext()
	for _, wd := range d.WorldDists {
		world := worlds[wd.ID]
		if err := wd.ConfigureEffectiveStartingItems(worlds, world); err != nil {
			return fmt.Errorf("configuring starting items: %w", err)
		}
		wd.GiveItems(world, save)
	}

	hints := make([]map[int]state.Hint, len(worlds))
	for _, wd := range d.WorldDists {
		// Each world draws from its own copy of the stone pool.
		stoneIDs := make([]int, 0, len(c.Tables.GossipOrder))
		for _, name := range c.Tables.GossipOrder {
			stoneIDs = append(stoneIDs, c.Tables.GossipStones[name])
		}
		worldHints, err := wd.ConfigureGossip(&stoneIDs)
		if err != nil {
			return fmt.Errorf("configuring gossip stones: %w", err)
		}
		hints[wd.ID] = worldHints
	}

	d.UpdateReport(worlds, &state.Report{Hints: hints}, true)
	for _, wd := range d.WorldDists {
		wd.SetCompleteItemPool(worlds[wd.ID].ItemPool)
	}
	return nil
}

func (c *CLI) dungeonNames() []string {
	names := make([]string, 0, len(c.Tables.Dungeons))
	for _, d := range c.Tables.Dungeons {
		names = append(names, d.Name)
	}
	return names
}

// bossPools collects a world's boss locations and their vanilla rewards.
func (c *CLI) bossPools(world *state.World) ([]*types.Location, []*types.Item) {
	var locations []*types.Location
	var rewards []*types.Item
	for _, name := range c.Tables.LocationOrder {
		loc := world.Locations[name]
		if loc.Type != "Boss" || loc.Skipped {
			continue
		}
		locations = append(locations, loc)
		if loc.Vanilla == "" {
			continue
		}
		if reward, err := c.Tables.ItemFactory(loc.Vanilla, world.ID); err == nil {
			rewards = append(rewards, reward)
		}
	}
	return locations, rewards
}

func recordNames[T any](records map[string]T) []string {
	names := make([]string, 0, len(records))
	for name := range records {
		names = append(names, name)
	}
	return names
}
