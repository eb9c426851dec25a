package story

import "testing"

// linearStory builds start -> scene -> end via two flow edges.
func linearStory() (*Document, *SceneNode, *EndNode) {
	doc := NewDocument()
	start := doc.StartNode()

	scene := NewSceneNode(SceneOptions{NodeOptions: NodeOptions{ID: "scene-a", Name: "Scene A"}})
	doc.AddNode(scene)
	end := NewEndNode(EndOptions{NodeOptions: NodeOptions{ID: "end-1"}})
	doc.AddNode(end)

	doc.CreateEdge(start.ID, scene.ID, EdgeOptions{ID: "e-start-a"})
	doc.CreateEdge(scene.ID, end.ID, EdgeOptions{ID: "e-a-end"})
	return doc, scene, end
}

// branchingStory builds a scene with two choices, each activating a choice
// edge to a distinct end node.
func branchingStory() (*Document, *SceneNode, *EndNode, *EndNode) {
	doc := NewDocument()
	start := doc.StartNode()

	scene := NewSceneNode(SceneOptions{NodeOptions: NodeOptions{ID: "scene-a", Name: "Crossroads"}})
	doc.AddNode(scene)
	doc.CreateEdge(start.ID, scene.ID, EdgeOptions{})

	doc.AddChoice(scene.ID, Choice{ID: "ch-left", Label: "Go left"})
	doc.AddChoice(scene.ID, Choice{ID: "ch-right", Label: "Go right"})

	good := NewEndNode(EndOptions{NodeOptions: NodeOptions{ID: "end-good"}, EndingType: "good"})
	bad := NewEndNode(EndOptions{NodeOptions: NodeOptions{ID: "end-bad"}, EndingType: "bad"})
	doc.AddNode(good)
	doc.AddNode(bad)

	doc.CreateEdge(scene.ID, good.ID, EdgeOptions{ID: "e-left", ChoiceID: "ch-left"})
	doc.CreateEdge(scene.ID, bad.ID, EdgeOptions{ID: "e-right", ChoiceID: "ch-right"})
	return doc, scene, good, bad
}

func TestTypedAccessors(t *testing.T) {
	doc, scene, end := linearStory()

	if doc.StartNode() == nil {
		t.Fatal("expected a start node")
	}
	scenes := doc.SceneNodes()
	if len(scenes) != 1 || scenes[0] != scene {
		t.Errorf("expected [scene-a], got %d scenes", len(scenes))
	}
	ends := doc.EndNodes()
	if len(ends) != 1 || ends[0] != end {
		t.Errorf("expected [end-1], got %d ends", len(ends))
	}
	if doc.Scene("end-1") != nil {
		t.Error("Scene should not return a non-scene node")
	}
	if doc.Scene("missing") != nil {
		t.Error("Scene should return nil for an unknown id")
	}
}

func TestFindEndNodesBranching(t *testing.T) {
	doc, scene, good, bad := branchingStory()

	ends := doc.EndNodes()
	if len(ends) != 2 {
		t.Fatalf("expected 2 end nodes, got %d", len(ends))
	}
	if ends[0] != good || ends[1] != bad {
		t.Error("expected both ending variants in insertion order")
	}
	if good.EndingType == bad.EndingType {
		t.Error("expected distinct ending types")
	}

	out := doc.OutgoingEdges(scene.ID)
	if len(out) != 2 {
		t.Fatalf("expected exactly the two choice edges, got %d", len(out))
	}
	for _, e := range out {
		if e.EdgeType != EdgeChoice {
			t.Errorf("edge %s: expected choice type, got %s", e.ID, e.EdgeType)
		}
	}
}

func TestIncomingOutgoingEdges(t *testing.T) {
	doc, scene, end := linearStory()
	start := doc.StartNode()

	if n := len(doc.OutgoingEdges(start.ID)); n != 1 {
		t.Errorf("expected 1 outgoing edge from start, got %d", n)
	}
	if n := len(doc.IncomingEdges(scene.ID)); n != 1 {
		t.Errorf("expected 1 incoming edge to scene, got %d", n)
	}
	if n := len(doc.IncomingEdges(end.ID)); n != 1 {
		t.Errorf("expected 1 incoming edge to end, got %d", n)
	}
	if n := len(doc.OutgoingEdges(end.ID)); n != 0 {
		t.Errorf("expected no outgoing edges from end, got %d", n)
	}
	if n := len(doc.IncomingEdges("missing")); n != 0 {
		t.Errorf("expected no edges for unknown node, got %d", n)
	}
}

func TestConnectedNodeIDs(t *testing.T) {
	doc, scene, end := linearStory()
	start := doc.StartNode()

	got := doc.ConnectedNodeIDs(scene.ID)
	if len(got) != 2 {
		t.Fatalf("expected 2 connected nodes, got %v", got)
	}
	want := map[string]bool{start.ID: true, end.ID: true}
	for _, id := range got {
		if !want[id] {
			t.Errorf("unexpected connected node %s", id)
		}
	}

	// A self-loop plus a duplicate path must still deduplicate.
	doc.CreateEdge(scene.ID, end.ID, EdgeOptions{ID: "e-dup"})
	if n := len(doc.ConnectedNodeIDs(scene.ID)); n != 2 {
		t.Errorf("expected deduplicated set of 2, got %d", n)
	}
}
