package story

// Mutations are all-or-nothing: each validates its preconditions and
// returns false (or nil) without touching the document when they fail.
// Callers working through the cache are responsible for marking the
// owning document dirty and triggering a save.

// AddNode inserts a node. Fails if the node is nil, has an empty id, or
// the id is already taken.
func (d *Document) AddNode(n Node) bool {
	if n == nil || n.Base().ID == "" || d.Nodes.Has(n.Base().ID) {
		return false
	}
	d.Nodes.Set(n.Base().ID, n)
	return true
}

// CreateScene constructs a scene node from opts and inserts it. Returns
// nil if the (caller-supplied) id collides with an existing node.
func (d *Document) CreateScene(opts SceneOptions) *SceneNode {
	sn := NewSceneNode(opts)
	if !d.AddNode(sn) {
		return nil
	}
	return sn
}

// UpdateNode applies fn to the node with the given id. Returns false if
// the id is unknown.
func (d *Document) UpdateNode(id string, fn func(Node)) bool {
	n, ok := d.Nodes.Get(id)
	if !ok {
		return false
	}
	fn(n)
	return true
}

// DeleteNode removes a node and cascades to every edge incident on it.
// Deleting a start node is refused outright and leaves the document
// unchanged.
func (d *Document) DeleteNode(id string) bool {
	n, ok := d.Nodes.Get(id)
	if !ok {
		return false
	}
	if n.Type() == NodeStart {
		return false
	}
	d.Nodes.Delete(id)
	for _, eid := range d.Edges.IDs() {
		e, _ := d.Edges.Get(eid)
		if e.From == id || e.To == id {
			d.Edges.Delete(eid)
		}
	}
	return true
}

// CreateEdge constructs and inserts an edge. Returns nil, with no
// mutation, when either endpoint is not a node of this document or the
// (caller-supplied) edge id collides.
func (d *Document) CreateEdge(from, to string, opts EdgeOptions) *Edge {
	if !d.Nodes.Has(from) || !d.Nodes.Has(to) {
		return nil
	}
	e := NewEdge(from, to, opts)
	if _, exists := d.Edges.Get(e.ID); exists {
		return nil
	}
	d.Edges.Set(e.ID, e)
	return e
}

// DeleteEdge removes an edge by id.
func (d *Document) DeleteEdge(id string) bool {
	return d.Edges.Delete(id)
}

// AddDialogue appends a dialogue to a scene. An empty dialogue id is
// replaced with a generated one.
func (d *Document) AddDialogue(sceneID string, dl Dialogue) bool {
	sn := d.Scene(sceneID)
	if sn == nil {
		return false
	}
	if dl.ID == "" {
		dl.ID = GenerateID()
	}
	sn.Dialogues = append(sn.Dialogues, dl)
	return true
}

// UpdateDialogue applies fn to the identified dialogue within a scene.
func (d *Document) UpdateDialogue(sceneID, dialogueID string, fn func(*Dialogue)) bool {
	sn := d.Scene(sceneID)
	if sn == nil {
		return false
	}
	for i := range sn.Dialogues {
		if sn.Dialogues[i].ID == dialogueID {
			fn(&sn.Dialogues[i])
			return true
		}
	}
	return false
}

// RemoveDialogue removes the identified dialogue from a scene's sequence.
func (d *Document) RemoveDialogue(sceneID, dialogueID string) bool {
	sn := d.Scene(sceneID)
	if sn == nil {
		return false
	}
	for i := range sn.Dialogues {
		if sn.Dialogues[i].ID == dialogueID {
			sn.Dialogues = append(sn.Dialogues[:i], sn.Dialogues[i+1:]...)
			return true
		}
	}
	return false
}

// AddChoice appends a choice to a scene. An empty choice id is replaced
// with a generated one.
func (d *Document) AddChoice(sceneID string, c Choice) bool {
	sn := d.Scene(sceneID)
	if sn == nil {
		return false
	}
	if c.ID == "" {
		c.ID = GenerateID()
	}
	sn.Choices = append(sn.Choices, c)
	return true
}

// UpdateChoice applies fn to the identified choice within a scene.
func (d *Document) UpdateChoice(sceneID, choiceID string, fn func(*Choice)) bool {
	sn := d.Scene(sceneID)
	if sn == nil {
		return false
	}
	for i := range sn.Choices {
		if sn.Choices[i].ID == choiceID {
			fn(&sn.Choices[i])
			return true
		}
	}
	return false
}

// RemoveChoice removes the identified choice from a scene and cascades to
// every edge whose choiceId references it, so no dangling activation is
// left behind.
func (d *Document) RemoveChoice(sceneID, choiceID string) bool {
	sn := d.Scene(sceneID)
	if sn == nil {
		return false
	}
	for i := range sn.Choices {
		if sn.Choices[i].ID == choiceID {
			sn.Choices = append(sn.Choices[:i], sn.Choices[i+1:]...)
			for _, eid := range d.Edges.IDs() {
				e, _ := d.Edges.Get(eid)
				if e.ChoiceID == choiceID {
					d.Edges.Delete(eid)
				}
			}
			return true
		}
	}
	return false
}

// AddCharacter appends a character reference to a scene. A duplicate
// characterId is rejected without mutating.
func (d *Document) AddCharacter(sceneID string, ref CharacterRef) bool {
	sn := d.Scene(sceneID)
	if sn == nil || ref.CharacterID == "" {
		return false
	}
	for _, c := range sn.Characters {
		if c.CharacterID == ref.CharacterID {
			return false
		}
	}
	sn.Characters = append(sn.Characters, ref)
	return true
}

// RemoveCharacter removes the reference with the given characterId from a
// scene.
func (d *Document) RemoveCharacter(sceneID, characterID string) bool {
	sn := d.Scene(sceneID)
	if sn == nil {
		return false
	}
	for i := range sn.Characters {
		if sn.Characters[i].CharacterID == characterID {
			sn.Characters = append(sn.Characters[:i], sn.Characters[i+1:]...)
			return true
		}
	}
	return false
}

// ConnectLocation sets the scene's weak location reference.
func (d *Document) ConnectLocation(sceneID, locationID string) bool {
	sn := d.Scene(sceneID)
	if sn == nil || locationID == "" {
		return false
	}
	sn.LocationID = locationID
	return true
}

// DisconnectLocation clears the scene's location reference. Returns false
// when the scene is unknown or no location was set.
func (d *Document) DisconnectLocation(sceneID string) bool {
	sn := d.Scene(sceneID)
	if sn == nil || sn.LocationID == "" {
		return false
	}
	sn.LocationID = ""
	return true
}
