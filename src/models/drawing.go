package models

// -----------------------------------------------------------------------------
// Serialized drawings: the unit shared between collaborators and cached
// locally per chart series. Identity is ID; IsDeleted is a tombstone kept
// through merges so deletion wins over any concurrent edit.
// -----------------------------------------------------------------------------

type MDrawingPoint struct {
	Time  int64   `json:"time"`
	Price float64 `json:"price"`
}

type MDrawing struct {
	ID        string         `json:"id"`
	Type      string         `json:"type"`
	Points    []MDrawingPoint `json:"points"`
	Options   map[string]any `json:"options,omitempty"`
	IsDeleted bool           `json:"isDeleted"`
}

// -----------------------------------------------------------------------------

// Clone returns a deep copy so reducer output never aliases reducer input.
func (d MDrawing) Clone() MDrawing {
	out := d
	out.Points = make([]MDrawingPoint, len(d.Points))
	copy(out.Points, d.Points)
	if d.Options != nil {
		out.Options = make(map[string]any, len(d.Options))
		for k, v := range d.Options {
			out.Options[k] = v
		}
	}
	return out
}

// -----------------------------------------------------------------------------

// CloneDrawings deep-copies a collection.
func CloneDrawings(in []MDrawing) []MDrawing {
	if in == nil {
		return nil
	}
	out := make([]MDrawing, len(in))
	for i, d := range in {
		out[i] = d.Clone()
	}
	return out
}
