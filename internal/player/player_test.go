package player

import (
	"testing"

	"github.com/pajamadot/storyforge/internal/story"
)

func buildBranchingStory() *story.Document {
	doc := story.NewDocument()
	start := doc.StartNode()

	gate := story.NewSceneNode(story.SceneOptions{
		NodeOptions: story.NodeOptions{ID: "scene-gate", Name: "At the Gate"},
	})
	gate.Effects = []story.Effect{{Type: "setFlag", Target: "metGuard"}}
	doc.AddNode(gate)
	doc.AddDialogue(gate.ID, story.Dialogue{ID: "dl-1", Speaker: "Guard", Text: "Halt!"})
	doc.AddChoice(gate.ID, story.Choice{ID: "ch-bribe", Label: "Offer gold"})
	doc.AddChoice(gate.ID, story.Choice{ID: "ch-fight", Label: "Draw sword"})

	good := story.NewEndNode(story.EndOptions{NodeOptions: story.NodeOptions{ID: "end-good"}, EndingType: "good"})
	bad := story.NewEndNode(story.EndOptions{NodeOptions: story.NodeOptions{ID: "end-bad"}, EndingType: "bad"})
	doc.AddNode(good)
	doc.AddNode(bad)

	doc.CreateEdge(start.ID, gate.ID, story.EdgeOptions{ID: "e-intro"})
	doc.CreateEdge(gate.ID, good.ID, story.EdgeOptions{ID: "e-bribe", ChoiceID: "ch-bribe"})
	doc.CreateEdge(gate.ID, bad.ID, story.EdgeOptions{ID: "e-fight", ChoiceID: "ch-fight", Condition: "flag.armed"})
	return doc
}

func TestPlaythroughLinearWalk(t *testing.T) {
	doc := buildBranchingStory()
	p, err := New(doc)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	if p.Current().Type() != story.NodeStart {
		t.Fatalf("expected to begin at start, got %s", p.Current().Type())
	}
	if err := p.Advance(); err != nil {
		t.Fatalf("advance failed: %v", err)
	}
	scene := p.CurrentScene()
	if scene == nil || scene.ID != "scene-gate" {
		t.Fatalf("expected scene-gate, got %v", p.Current().Base().ID)
	}
	if len(scene.Dialogues) != 1 {
		t.Errorf("expected scene dialogue to surface, got %d", len(scene.Dialogues))
	}
	if !p.Flag("metGuard") {
		t.Error("scene entry effect did not set the flag")
	}
	if !p.Visited("scene-gate") {
		t.Error("scene not marked visited")
	}
}

func TestPlaythroughChoiceRouting(t *testing.T) {
	doc := buildBranchingStory()
	p, _ := New(doc)
	_ = p.Advance()

	// Only the unconditional bribe choice is available while unarmed.
	avail := p.AvailableChoices()
	if len(avail) != 1 || avail[0].ID != "ch-bribe" {
		t.Fatalf("expected only ch-bribe available, got %+v", avail)
	}
	if err := p.Choose("ch-fight"); err == nil {
		t.Fatal("condition-gated choice must be refused while unarmed")
	}

	p.SetFlag("armed", true)
	if len(p.AvailableChoices()) != 2 {
		t.Error("expected both choices once armed")
	}

	if err := p.Choose("ch-fight"); err != nil {
		t.Fatalf("choose failed: %v", err)
	}
	if !p.Ended() || p.EndingType() != "bad" {
		t.Errorf("expected the bad ending, got ended=%v type=%q", p.Ended(), p.EndingType())
	}
	if err := p.Choose("ch-bribe"); err == nil {
		t.Error("choosing after the end must fail")
	}
}

func TestPlaythroughChooseErrors(t *testing.T) {
	doc := buildBranchingStory()
	p, _ := New(doc)

	if err := p.Choose("ch-bribe"); err == nil {
		t.Error("choosing at a non-scene node must fail")
	}
	_ = p.Advance()
	if err := p.Choose("ch-missing"); err == nil {
		t.Error("unknown choice must fail")
	}

	// A choice with no activating edge is unusable.
	doc.AddChoice("scene-gate", story.Choice{ID: "ch-orphan", Label: "Wait"})
	if err := p.Choose("ch-orphan"); err == nil {
		t.Error("choice without an edge must fail")
	}
}

func TestAdvancePriorityTieBreak(t *testing.T) {
	doc := story.NewDocument()
	start := doc.StartNode()
	a := doc.CreateScene(story.SceneOptions{NodeOptions: story.NodeOptions{ID: "scene-a"}})
	b := doc.CreateScene(story.SceneOptions{NodeOptions: story.NodeOptions{ID: "scene-b"}})
	doc.CreateEdge(start.ID, a.ID, story.EdgeOptions{ID: "e-low", Priority: 1})
	doc.CreateEdge(start.ID, b.ID, story.EdgeOptions{ID: "e-high", Priority: 5})

	p, _ := New(doc)
	if err := p.Advance(); err != nil {
		t.Fatalf("advance failed: %v", err)
	}
	if p.Current().Base().ID != "scene-b" {
		t.Errorf("expected the higher-priority edge to win, landed on %s", p.Current().Base().ID)
	}
}

func TestAdvanceConditionGating(t *testing.T) {
	doc := story.NewDocument()
	start := doc.StartNode()
	locked := doc.CreateScene(story.SceneOptions{NodeOptions: story.NodeOptions{ID: "scene-locked"}})
	open := doc.CreateScene(story.SceneOptions{NodeOptions: story.NodeOptions{ID: "scene-open"}})
	doc.CreateEdge(start.ID, locked.ID, story.EdgeOptions{ID: "e-locked", Condition: "flag.hasKey", Priority: 9})
	doc.CreateEdge(start.ID, open.ID, story.EdgeOptions{ID: "e-open"})

	p, _ := New(doc)
	if err := p.Advance(); err != nil {
		t.Fatalf("advance failed: %v", err)
	}
	if p.Current().Base().ID != "scene-open" {
		t.Errorf("gated edge must lose while its condition fails, landed on %s", p.Current().Base().ID)
	}
}

func TestAdvanceWithNoEligibleEdge(t *testing.T) {
	doc := story.NewDocument()
	p, _ := New(doc)
	if err := p.Advance(); err == nil {
		t.Error("expected an error with no outgoing edges")
	}
}

func TestNewRequiresStartNode(t *testing.T) {
	doc := story.NewDocument()
	doc.Nodes.Delete(doc.StartNode().ID)
	if _, err := New(doc); err == nil {
		t.Error("expected an error for a document without a start node")
	}
}
