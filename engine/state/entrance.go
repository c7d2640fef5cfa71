package state

import (
	"fmt"

	"github.com/nathoo/plando/types"
)

// ShuffleError reports a proposed entrance connection that failed structural
// or reachability validation.
type ShuffleError struct {
	Reason string
}

func (e *ShuffleError) Error() string {
	return e.Reason
}

// CheckEntrancesCompatibility validates the structural compatibility of a
// proposed connection before it is applied.
func CheckEntrancesCompatibility(entrance, target *types.Entrance) error {
	if target.Replaces == nil {
		return &ShuffleError{Reason: fmt.Sprintf("%s is not a shuffle target", target.Name)}
	}
	if entrance.World != target.World {
		return &ShuffleError{Reason: fmt.Sprintf("%s and %s belong to different worlds", entrance.Name, target.Name)}
	}
	if (entrance.Type == "Overworld") != (target.Type == "Overworld") {
		return &ShuffleError{Reason: fmt.Sprintf("%s and %s are in incompatible pools", entrance.Name, target.Name)}
	}
	if target.Replaces == entrance && entrance.Type != "Overworld" {
		return &ShuffleError{Reason: fmt.Sprintf("%s cannot replace its own connection", entrance.Name)}
	}
	return nil
}

// ChangeConnections applies the proposed connection: the entrance takes over
// the target's region and records which original entrance it replaces. The
// returned restore func undoes the mutation exactly; nothing is final until
// ConfirmReplacement. This makes the mutation transactional at single-edge
// granularity.
func ChangeConnections(entrance, target *types.Entrance) (restore func()) {
	prevRegion := entrance.ConnectedRegion
	prevReplaces := entrance.Replaces
	entrance.ConnectedRegion = target.ConnectedRegion
	entrance.Replaces = target.Replaces
	return func() {
		entrance.ConnectedRegion = prevRegion
		entrance.Replaces = prevReplaces
	}
}

// ConfirmReplacement finalizes a validated connection, consuming both sides
// in their respective pools.
func ConfirmReplacement(entrance, target *types.Entrance) {
	entrance.Consumed = true
	target.Consumed = true
	target.ConnectedRegion = ""
}

// ValidateWorlds checks full-graph consistency after a mutation and that the
// game remains completable with the remaining pool.
func ValidateWorlds(worlds []*World, search Search, itemPool []*types.Item) error {
	for _, w := range worlds {
		for _, ent := range w.Entrances {
			if ent.ConnectedRegion != "" && ent.ConnectedRegion == ent.ParentRegion {
				return &ShuffleError{Reason: fmt.Sprintf("%s loops back into its own region", ent.Name)}
			}
		}
	}
	if search != nil && !search(worlds, itemPool) {
		return &ShuffleError{Reason: "world is not beatable with this connection"}
	}
	return nil
}
