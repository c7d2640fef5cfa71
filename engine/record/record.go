// Package record defines the typed, partially-specified override units that
// make up a plando document: each record has a canonical default and a
// lossless round-trip to and from its sparse document representation.
// A record at its default value serializes to the smallest form the document
// format allows; fields still at default are omitted.
package record

import "fmt"

// DungeonRecord selects a dungeon variant: random (default), master quest,
// or vanilla.
type DungeonRecord struct {
	MQ *bool // nil = random
}

// ParseDungeon accepts "random"/"mq"/"vanilla" or {"mq": bool|null}.
func ParseDungeon(v any) (*DungeonRecord, error) {
	r := &DungeonRecord{}
	switch val := v.(type) {
	case nil:
		return r, nil
	case string:
		switch val {
		case "mq":
			r.MQ = boolPtr(true)
		case "vanilla":
			r.MQ = boolPtr(false)
		}
		return r, nil
	default:
		m, ok := asMap(v)
		if !ok {
			return nil, fmt.Errorf("dungeon record must be a string or object, got %T", v)
		}
		if mq, present := m["mq"]; present && mq != nil {
			b, ok := asBool(mq)
			if !ok {
				return nil, fmt.Errorf("dungeon record mq must be a bool, got %T", mq)
			}
			r.MQ = &b
		}
		return r, nil
	}
}

// ToDocument returns "random", "mq", or "vanilla".
func (r *DungeonRecord) ToDocument() any {
	if r.MQ == nil {
		return "random"
	}
	if *r.MQ {
		return "mq"
	}
	return "vanilla"
}

// EmptyDungeonRecord flags a dungeon as empty (barren of progression).
type EmptyDungeonRecord struct {
	Empty *bool // nil = random
}

// ParseEmptyDungeon accepts "random", a bool, or {"empty": bool|null}.
func ParseEmptyDungeon(v any) (*EmptyDungeonRecord, error) {
	r := &EmptyDungeonRecord{}
	switch val := v.(type) {
	case nil:
		return r, nil
	case string:
		if val != "random" {
			return nil, fmt.Errorf("empty dungeon record must be \"random\" or a bool, got %q", val)
		}
		return r, nil
	case bool:
		r.Empty = &val
		return r, nil
	default:
		m, ok := asMap(v)
		if !ok {
			return nil, fmt.Errorf("empty dungeon record must be a string, bool, or object, got %T", v)
		}
		if e, present := m["empty"]; present && e != nil {
			b, ok := asBool(e)
			if !ok {
				return nil, fmt.Errorf("empty dungeon record empty must be a bool, got %T", e)
			}
			r.Empty = &b
		}
		return r, nil
	}
}

// ToDocument returns nil, true, or false.
func (r *EmptyDungeonRecord) ToDocument() any {
	if r.Empty == nil {
		return nil
	}
	return *r.Empty
}

// TrialRecord selects a trial's state: random (default), active, or inactive.
type TrialRecord struct {
	Active *bool // nil = random
}

// ParseTrial accepts "random"/"active"/"inactive" or {"active": bool|null}.
func ParseTrial(v any) (*TrialRecord, error) {
	r := &TrialRecord{}
	switch val := v.(type) {
	case nil:
		return r, nil
	case string:
		switch val {
		case "active":
			r.Active = boolPtr(true)
		case "inactive":
			r.Active = boolPtr(false)
		}
		return r, nil
	default:
		m, ok := asMap(v)
		if !ok {
			return nil, fmt.Errorf("trial record must be a string or object, got %T", v)
		}
		if a, present := m["active"]; present && a != nil {
			b, ok := asBool(a)
			if !ok {
				return nil, fmt.Errorf("trial record active must be a bool, got %T", a)
			}
			r.Active = &b
		}
		return r, nil
	}
}

// ToDocument returns "random", "active", or "inactive".
func (r *TrialRecord) ToDocument() any {
	if r.Active == nil {
		return "random"
	}
	if *r.Active {
		return "active"
	}
	return "inactive"
}

// SongRecord overrides a song's note sequence.
type SongRecord struct {
	Notes *string
}

// ParseSong accepts nil, a string, or {"notes": string}.
func ParseSong(v any) (*SongRecord, error) {
	r := &SongRecord{}
	switch val := v.(type) {
	case nil:
		return r, nil
	case string:
		r.Notes = &val
		return r, nil
	default:
		m, ok := asMap(v)
		if !ok {
			return nil, fmt.Errorf("song record must be a string or object, got %T", v)
		}
		if n, present := m["notes"]; present && n != nil {
			s, ok := asString(n)
			if !ok {
				return nil, fmt.Errorf("song record notes must be a string, got %T", n)
			}
			r.Notes = &s
		}
		return r, nil
	}
}

// ToDocument returns nil or the note string.
func (r *SongRecord) ToDocument() any {
	if r.Notes == nil {
		return nil
	}
	return *r.Notes
}

// ItemPoolRecord adjusts the count of a pool entry. The shorthand form is a
// bare integer, meaning {"type": "set", "count": n}.
type ItemPoolRecord struct {
	Type  string // "add", "remove", or "set"
	Count int
}

// ParseItemPool accepts an int or {"type": ..., "count": ...}.
func ParseItemPool(v any) (*ItemPoolRecord, error) {
	r := &ItemPoolRecord{Type: "set", Count: 1}
	if n, ok := asInt(v); ok {
		r.Count = n
	} else {
		m, ok := asMap(v)
		if !ok {
			return nil, fmt.Errorf("item pool record must be an int or object, got %T", v)
		}
		if t, present := m["type"]; present {
			s, ok := asString(t)
			if !ok {
				return nil, fmt.Errorf("item pool record type must be a string, got %T", t)
			}
			r.Type = s
		}
		if c, present := m["count"]; present {
			n, ok := asInt(c)
			if !ok {
				return nil, fmt.Errorf("item pool record count must be an int, got %T", c)
			}
			r.Count = n
		}
	}
	if r.Count < 0 {
		return nil, fmt.Errorf("count cannot be negative in an item pool record")
	}
	switch r.Type {
	case "add", "remove", "set":
	default:
		return nil, fmt.Errorf("item pool record type must be \"add\", \"remove\", or \"set\", got %q", r.Type)
	}
	return r, nil
}

// ToDocument returns the bare count for "set" records, else a sparse object.
func (r *ItemPoolRecord) ToDocument() any {
	if r.Type == "set" {
		return r.Count
	}
	doc := map[string]any{"type": r.Type}
	if r.Count != 1 {
		doc["count"] = r.Count
	}
	return doc
}

// ItemRef is an item reference: a single name or pattern, or an ordered list
// of candidate names.
type ItemRef struct {
	Name string
	List []string
}

// IsList reports whether the reference is an ordered candidate list.
func (r *ItemRef) IsList() bool {
	return r.List != nil
}

// ToDocument returns the list or the single name.
func (r *ItemRef) ToDocument() any {
	if r.IsList() {
		return append([]string(nil), r.List...)
	}
	return r.Name
}

func parseItemRef(v any) (*ItemRef, error) {
	if s, ok := asString(v); ok {
		return &ItemRef{Name: s}, nil
	}
	if list, ok := asStringList(v); ok {
		return &ItemRef{List: list}, nil
	}
	return nil, fmt.Errorf("item reference must be a string or list of strings, got %T", v)
}

// LocationRecord assigns an item to a location, optionally owned by another
// player and with cosmetic model and price overrides. The shorthand form is a
// bare item name; a bare list is an ordered candidate list.
type LocationRecord struct {
	Item   *ItemRef
	Player *int
	Price  *int
	Model  *string
}

// ParseLocation accepts a string, a list of strings, or an object with
// "item", "player", "price", and "model" keys.
func ParseLocation(v any) (*LocationRecord, error) {
	r := &LocationRecord{}
	if _, ok := asString(v); ok {
		item, err := parseItemRef(v)
		if err != nil {
			return nil, err
		}
		r.Item = item
		return r, nil
	}
	if _, ok := asStringList(v); ok {
		item, err := parseItemRef(v)
		if err != nil {
			return nil, err
		}
		r.Item = item
		return r, nil
	}
	m, ok := asMap(v)
	if !ok {
		return nil, fmt.Errorf("location record must be a string, list, or object, got %T", v)
	}
	if item, present := m["item"]; present && item != nil {
		ref, err := parseItemRef(item)
		if err != nil {
			return nil, err
		}
		r.Item = ref
	}
	if p, present := m["player"]; present && p != nil {
		n, ok := asInt(p)
		if !ok {
			return nil, fmt.Errorf("location record player must be an int, got %T", p)
		}
		r.Player = &n
	}
	if p, present := m["price"]; present && p != nil {
		n, ok := asInt(p)
		if !ok {
			return nil, fmt.Errorf("location record price must be an int, got %T", p)
		}
		r.Price = &n
	}
	if mod, present := m["model"]; present && mod != nil {
		s, ok := asString(mod)
		if !ok {
			return nil, fmt.Errorf("location record model must be a string, got %T", mod)
		}
		r.Model = &s
	}
	return r, nil
}

// ToDocument returns the shorthand name when only the item is set, else a
// sparse object.
func (r *LocationRecord) ToDocument() any {
	if r.Item != nil && !r.Item.IsList() && r.Player == nil && r.Price == nil && r.Model == nil {
		return r.Item.Name
	}
	doc := map[string]any{}
	if r.Item != nil {
		doc["item"] = r.Item.ToDocument()
	}
	if r.Player != nil {
		doc["player"] = *r.Player
	}
	if r.Price != nil {
		doc["price"] = *r.Price
	}
	if r.Model != nil {
		doc["model"] = *r.Model
	}
	return doc
}

// EntranceRecord connects an entrance to a target region, optionally
// constrained to targets whose original parent region matches "from". The
// shorthand form is a bare region name.
type EntranceRecord struct {
	Region *string
	Origin *string
}

// ParseEntrance accepts a string or {"region": ..., "from": ...}.
func ParseEntrance(v any) (*EntranceRecord, error) {
	r := &EntranceRecord{}
	if s, ok := asString(v); ok {
		r.Region = &s
		return r, nil
	}
	m, ok := asMap(v)
	if !ok {
		return nil, fmt.Errorf("entrance record must be a string or object, got %T", v)
	}
	if reg, present := m["region"]; present && reg != nil {
		s, ok := asString(reg)
		if !ok {
			return nil, fmt.Errorf("entrance record region must be a string, got %T", reg)
		}
		r.Region = &s
	}
	if from, present := m["from"]; present && from != nil {
		s, ok := asString(from)
		if !ok {
			return nil, fmt.Errorf("entrance record from must be a string, got %T", from)
		}
		r.Origin = &s
	}
	return r, nil
}

// ToDocument returns the shorthand region name when no origin constraint is
// set, else {"region": ..., "from": ...}.
func (r *EntranceRecord) ToDocument() any {
	if r.Region != nil && r.Origin == nil {
		return *r.Region
	}
	doc := map[string]any{}
	if r.Region != nil {
		doc["region"] = *r.Region
	}
	if r.Origin != nil {
		doc["from"] = *r.Origin
	}
	return doc
}

// StarterRecord is a starting-item count.
type StarterRecord struct {
	Count int
}

// ParseStarter accepts an int or {"count": n}.
func ParseStarter(v any) (*StarterRecord, error) {
	r := &StarterRecord{Count: 1}
	if n, ok := asInt(v); ok {
		r.Count = n
	} else {
		m, ok := asMap(v)
		if !ok {
			return nil, fmt.Errorf("starter record must be an int or object, got %T", v)
		}
		if c, present := m["count"]; present {
			n, ok := asInt(c)
			if !ok {
				return nil, fmt.Errorf("starter record count must be an int, got %T", c)
			}
			r.Count = n
		}
	}
	if r.Count < 0 {
		return nil, fmt.Errorf("count cannot be negative in a starter record")
	}
	return r, nil
}

// Copy returns an independent copy of the record.
func (r *StarterRecord) Copy() *StarterRecord {
	return &StarterRecord{Count: r.Count}
}

// ToDocument returns the bare count.
func (r *StarterRecord) ToDocument() any {
	return r.Count
}

// GossipRecord overrides a gossip stone's hint text.
type GossipRecord struct {
	Text            *string
	Colors          []string
	HintedLocations []string
	HintedItems     []string
}

// ParseGossip accepts a string (text shorthand) or an object with "text",
// "colors", "hinted_locations", and "hinted_items" keys.
func ParseGossip(v any) (*GossipRecord, error) {
	r := &GossipRecord{}
	if s, ok := asString(v); ok {
		r.Text = &s
		return r, nil
	}
	m, ok := asMap(v)
	if !ok {
		return nil, fmt.Errorf("gossip record must be a string or object, got %T", v)
	}
	if t, present := m["text"]; present && t != nil {
		s, ok := asString(t)
		if !ok {
			return nil, fmt.Errorf("gossip record text must be a string, got %T", t)
		}
		r.Text = &s
	}
	for key, dst := range map[string]*[]string{
		"colors":           &r.Colors,
		"hinted_locations": &r.HintedLocations,
		"hinted_items":     &r.HintedItems,
	} {
		if raw, present := m[key]; present && raw != nil {
			list, ok := asStringList(raw)
			if !ok {
				return nil, fmt.Errorf("gossip record %s must be a list of strings, got %T", key, raw)
			}
			*dst = list
		}
	}
	return r, nil
}

// ToDocument returns a sparse object omitting unset fields.
func (r *GossipRecord) ToDocument() any {
	doc := map[string]any{}
	if r.Text != nil {
		doc["text"] = *r.Text
	}
	if r.Colors != nil {
		doc["colors"] = append([]string(nil), r.Colors...)
	}
	if r.HintedLocations != nil {
		doc["hinted_locations"] = append([]string(nil), r.HintedLocations...)
	}
	if r.HintedItems != nil {
		doc["hinted_items"] = append([]string(nil), r.HintedItems...)
	}
	return doc
}
