package story

import "strings"

// Dotted-path access is deliberately narrow: it resolves only the shapes
// the document actually has (metadata fields, node fields, edge fields)
// instead of interpreting arbitrary nested paths. Unknown or out-of-range
// segments read as absent and refuse writes.

// PathValue reads a dotted path into the document. The second return is
// false when any segment is unset or unknown.
func (d *Document) PathValue(path string) (any, bool) {
	segs := strings.Split(path, ".")
	switch segs[0] {
	case "version":
		if len(segs) == 1 {
			return d.Version, true
		}
	case "metadata":
		if len(segs) == 2 {
			return d.metadataValue(segs[1])
		}
	case "nodes":
		if len(segs) == 3 {
			n, ok := d.Nodes.Get(segs[1])
			if !ok {
				return nil, false
			}
			return nodeField(n, segs[2])
		}
	case "edges":
		if len(segs) == 3 {
			e, ok := d.Edges.Get(segs[1])
			if !ok {
				return nil, false
			}
			return edgeField(e, segs[2])
		}
	}
	return nil, false
}

// SetPathValue writes a dotted path into the document. Unknown paths and
// type-mismatched values are refused without mutating. Writes to unknown
// metadata keys land in the metadata extension map, created on demand.
func (d *Document) SetPathValue(path string, v any) bool {
	segs := strings.Split(path, ".")
	switch segs[0] {
	case "metadata":
		if len(segs) == 2 {
			return d.setMetadataValue(segs[1], v)
		}
	case "nodes":
		if len(segs) == 3 {
			n, ok := d.Nodes.Get(segs[1])
			if !ok {
				return false
			}
			return setNodeField(n, segs[2], v)
		}
	case "edges":
		if len(segs) == 3 {
			e, ok := d.Edges.Get(segs[1])
			if !ok {
				return false
			}
			return setEdgeField(e, segs[2], v)
		}
	}
	return false
}

func (d *Document) metadataValue(field string) (any, bool) {
	switch field {
	case "title":
		return d.Metadata.Title, true
	case "description":
		return d.Metadata.Description, true
	case "createdAt":
		return d.Metadata.CreatedAt, true
	case "updatedAt":
		return d.Metadata.UpdatedAt, true
	default:
		v, ok := d.Metadata.Extra[field]
		return v, ok
	}
}

func (d *Document) setMetadataValue(field string, v any) bool {
	switch field {
	case "title":
		s, ok := v.(string)
		if !ok {
			return false
		}
		d.Metadata.Title = s
	case "description":
		s, ok := v.(string)
		if !ok {
			return false
		}
		d.Metadata.Description = s
	case "createdAt":
		s, ok := v.(string)
		if !ok {
			return false
		}
		d.Metadata.CreatedAt = s
	case "updatedAt":
		s, ok := v.(string)
		if !ok {
			return false
		}
		d.Metadata.UpdatedAt = s
	default:
		if d.Metadata.Extra == nil {
			d.Metadata.Extra = make(map[string]any)
		}
		d.Metadata.Extra[field] = v
	}
	return true
}

func nodeField(n Node, field string) (any, bool) {
	switch field {
	case "id":
		return n.Base().ID, true
	case "nodeType":
		return string(n.Type()), true
	case "name":
		return n.Base().Name, true
	case "posX":
		return n.Base().PosX, true
	case "posY":
		return n.Base().PosY, true
	}
	switch nn := n.(type) {
	case *SceneNode:
		if field == "locationId" {
			if nn.LocationID == "" {
				return nil, false
			}
			return nn.LocationID, true
		}
	case *EndNode:
		if field == "endingType" {
			if nn.EndingType == "" {
				return nil, false
			}
			return nn.EndingType, true
		}
	}
	return nil, false
}

func setNodeField(n Node, field string, v any) bool {
	switch field {
	case "name":
		s, ok := v.(string)
		if !ok {
			return false
		}
		n.Base().Name = s
		return true
	case "posX":
		f, ok := toFloat(v)
		if !ok {
			return false
		}
		n.Base().PosX = f
		return true
	case "posY":
		f, ok := toFloat(v)
		if !ok {
			return false
		}
		n.Base().PosY = f
		return true
	}
	switch nn := n.(type) {
	case *SceneNode:
		if field == "locationId" {
			s, ok := v.(string)
			if !ok {
				return false
			}
			nn.LocationID = s
			return true
		}
	case *EndNode:
		if field == "endingType" {
			s, ok := v.(string)
			if !ok {
				return false
			}
			nn.EndingType = s
			return true
		}
	}
	return false
}

func edgeField(e *Edge, field string) (any, bool) {
	switch field {
	case "id":
		return e.ID, true
	case "from":
		return e.From, true
	case "to":
		return e.To, true
	case "edgeType":
		return string(e.EdgeType), true
	case "choiceId":
		if e.ChoiceID == "" {
			return nil, false
		}
		return e.ChoiceID, true
	case "condition":
		if e.Condition == "" {
			return nil, false
		}
		return e.Condition, true
	case "priority":
		return e.Priority, true
	}
	return nil, false
}

func setEdgeField(e *Edge, field string, v any) bool {
	switch field {
	case "condition":
		s, ok := v.(string)
		if !ok {
			return false
		}
		e.Condition = s
		return true
	case "priority":
		f, ok := toFloat(v)
		if !ok {
			return false
		}
		e.Priority = int(f)
		return true
	}
	return false
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	default:
		return 0, false
	}
}
