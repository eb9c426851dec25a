package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/pajamadot/storyforge/internal/cache"
	"github.com/pajamadot/storyforge/internal/storage/fsdir"
	"github.com/pajamadot/storyforge/internal/story"
)

const testDocID = "intro.storygraph.yaml"

func newTestServer(t *testing.T) (*Server, *httptest.Server) {
	t.Helper()
	storage, err := fsdir.New(t.TempDir())
	if err != nil {
		t.Fatalf("fsdir: %v", err)
	}
	srv := NewServer(cache.NewStore(storage), 0) // no auto-save in tests
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)
	return srv, ts
}

func doJSON(t *testing.T, method, url string, body any) (*http.Response, OpResponse) {
	t.Helper()
	var buf io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		buf = bytes.NewReader(b)
	}
	req, err := http.NewRequest(method, url, buf)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, url, err)
	}
	defer resp.Body.Close()
	var op OpResponse
	_ = json.NewDecoder(resp.Body).Decode(&op)
	return resp, op
}

func TestHealth(t *testing.T) {
	_, ts := newTestServer(t)
	resp, err := http.Get(ts.URL + "/health")
	if err != nil {
		t.Fatalf("get health: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("expected 200, got %d", resp.StatusCode)
	}
}

func TestDocumentLifecycle(t *testing.T) {
	srv, ts := newTestServer(t)
	base := ts.URL + "/documents/" + testDocID

	resp, op := doJSON(t, http.MethodPost, base, nil)
	if resp.StatusCode != http.StatusCreated || !op.OK {
		t.Fatalf("create: %d %+v", resp.StatusCode, op)
	}

	// Creating again conflicts.
	resp, _ = doJSON(t, http.MethodPost, base, nil)
	if resp.StatusCode != http.StatusConflict {
		t.Errorf("recreate: expected 409, got %d", resp.StatusCode)
	}

	// The serialized document is served back.
	getResp, err := http.Get(base)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	body, _ := io.ReadAll(getResp.Body)
	getResp.Body.Close()
	if getResp.StatusCode != http.StatusOK {
		t.Fatalf("get: expected 200, got %d", getResp.StatusCode)
	}
	if !strings.Contains(string(body), "nodeType: start") {
		t.Errorf("expected serialized start node, got:\n%s", body)
	}

	// A fresh document was saved on create, so it is clean.
	if srv.store.IsDirty(testDocID) {
		t.Error("expected clean document after create")
	}
}

func TestNonStoryGraphAssetsRejected(t *testing.T) {
	_, ts := newTestServer(t)
	resp, _ := doJSON(t, http.MethodPost, ts.URL+"/documents/guard.character.yaml", nil)
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("expected 400 for a non-storygraph asset, got %d", resp.StatusCode)
	}
}

func TestGraphEditingFlow(t *testing.T) {
	srv, ts := newTestServer(t)
	base := ts.URL + "/documents/" + testDocID
	doJSON(t, http.MethodPost, base, nil)

	// Build start -> scene -> end over the API.
	resp, sceneOp := doJSON(t, http.MethodPost, base+"/nodes",
		map[string]any{"nodeType": "scene", "name": "Gate", "posX": 200, "posY": 100})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("create scene: %d", resp.StatusCode)
	}
	_, endOp := doJSON(t, http.MethodPost, base+"/nodes",
		map[string]any{"nodeType": "end", "endingType": "good"})

	startID := srv.store.GetCached(testDocID).StartNode().ID
	resp, _ = doJSON(t, http.MethodPost, base+"/edges", map[string]any{"from": startID, "to": sceneOp.ID})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("create edge: %d", resp.StatusCode)
	}
	doJSON(t, http.MethodPost, base+"/edges", map[string]any{"from": sceneOp.ID, "to": endOp.ID})

	// Edge to a missing node is refused.
	resp, _ = doJSON(t, http.MethodPost, base+"/edges", map[string]any{"from": sceneOp.ID, "to": "ghost"})
	if resp.StatusCode != http.StatusConflict {
		t.Errorf("bad edge: expected 409, got %d", resp.StatusCode)
	}

	// Deleting the start node is refused.
	resp, _ = doJSON(t, http.MethodDelete, fmt.Sprintf("%s/nodes/%s", base, startID), nil)
	if resp.StatusCode != http.StatusConflict {
		t.Errorf("delete start: expected 409, got %d", resp.StatusCode)
	}

	// Scene content.
	resp, dlOp := doJSON(t, http.MethodPost, fmt.Sprintf("%s/scenes/%s/dialogues", base, sceneOp.ID),
		map[string]any{"speaker": "Guard", "text": "Halt!"})
	if resp.StatusCode != http.StatusCreated || dlOp.ID == "" {
		t.Fatalf("add dialogue: %d %+v", resp.StatusCode, dlOp)
	}
	doJSON(t, http.MethodPost, fmt.Sprintf("%s/scenes/%s/characters", base, sceneOp.ID),
		map[string]any{"characterId": "char-guard"})
	resp, _ = doJSON(t, http.MethodPost, fmt.Sprintf("%s/scenes/%s/characters", base, sceneOp.ID),
		map[string]any{"characterId": "char-guard"})
	if resp.StatusCode != http.StatusConflict {
		t.Errorf("duplicate character: expected 409, got %d", resp.StatusCode)
	}

	// The document validates clean.
	valResp, err := http.Get(base + "/validate")
	if err != nil {
		t.Fatalf("validate: %v", err)
	}
	defer valResp.Body.Close()
	var res story.Result
	if err := json.NewDecoder(valResp.Body).Decode(&res); err != nil {
		t.Fatalf("decode validate: %v", err)
	}
	if !res.Valid {
		t.Errorf("expected valid document, got %v", res.Errors)
	}

	// Summary reflects the edits.
	sumResp, err := http.Get(base + "/summary")
	if err != nil {
		t.Fatalf("summary: %v", err)
	}
	sum, _ := io.ReadAll(sumResp.Body)
	sumResp.Body.Close()
	if !strings.Contains(string(sum), "Scenes: 1") || !strings.Contains(string(sum), "Dialogues: 1") {
		t.Errorf("unexpected summary:\n%s", sum)
	}

	// Explicit save clears the dirty flag.
	if !srv.store.IsDirty(testDocID) {
		t.Error("expected dirty document before save")
	}
	resp, _ = doJSON(t, http.MethodPost, base+"/save", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("save: %d", resp.StatusCode)
	}
	if srv.store.IsDirty(testDocID) {
		t.Error("expected clean document after save")
	}
}

func TestPutDocument(t *testing.T) {
	_, ts := newTestServer(t)
	base := ts.URL + "/documents/" + testDocID

	text := `version: 1
metadata:
  title: Uploaded
  description: ""
  createdAt: "2025-03-01T10:00:00Z"
  updatedAt: "2025-03-01T10:00:00Z"
nodes:
  n1: {id: n1, nodeType: start, name: Start, posX: 0, posY: 0}
edges: {}
`
	req, _ := http.NewRequest(http.MethodPut, base, strings.NewReader(text))
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("put: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("put: expected 200, got %d", resp.StatusCode)
	}

	// Malformed text is reported as a parse failure, not stored.
	req, _ = http.NewRequest(http.MethodPut, base, strings.NewReader("nodes: [unclosed"))
	resp, err = http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("put malformed: %v", err)
	}
	var op OpResponse
	_ = json.NewDecoder(resp.Body).Decode(&op)
	resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("put malformed: expected 400, got %d", resp.StatusCode)
	}
	if !strings.Contains(op.Error, "parse error") {
		t.Errorf("expected a parse diagnostic, got %q", op.Error)
	}
}

func TestPlaythroughEndpoints(t *testing.T) {
	srv, ts := newTestServer(t)
	base := ts.URL + "/documents/" + testDocID
	doJSON(t, http.MethodPost, base, nil)

	_, sceneOp := doJSON(t, http.MethodPost, base+"/nodes", map[string]any{"nodeType": "scene", "name": "Gate"})
	_, endOp := doJSON(t, http.MethodPost, base+"/nodes", map[string]any{"nodeType": "end", "endingType": "good"})
	startID := srv.store.GetCached(testDocID).StartNode().ID
	doJSON(t, http.MethodPost, base+"/edges", map[string]any{"from": startID, "to": sceneOp.ID})
	doJSON(t, http.MethodPost, base+"/edges", map[string]any{"from": sceneOp.ID, "to": endOp.ID})

	resp, err := http.Post(base+"/playthroughs", "application/json", nil)
	if err != nil {
		t.Fatalf("start playthrough: %v", err)
	}
	var state playStateResponse
	if err := json.NewDecoder(resp.Body).Decode(&state); err != nil {
		t.Fatalf("decode state: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusCreated || state.PlayID == "" {
		t.Fatalf("start playthrough: %d %+v", resp.StatusCode, state)
	}
	if state.NodeType != "start" {
		t.Errorf("expected to begin at start, got %s", state.NodeType)
	}

	playBase := ts.URL + "/playthroughs/" + state.PlayID
	for _, wantType := range []string{"scene", "end"} {
		resp, err := http.Post(playBase+"/advance", "application/json", nil)
		if err != nil {
			t.Fatalf("advance: %v", err)
		}
		if err := json.NewDecoder(resp.Body).Decode(&state); err != nil {
			t.Fatalf("decode state: %v", err)
		}
		resp.Body.Close()
		if state.NodeType != wantType {
			t.Fatalf("expected %s, got %s", wantType, state.NodeType)
		}
	}
	if !state.Ended || state.EndingType != "good" {
		t.Errorf("expected the good ending, got %+v", state)
	}

	// Advancing past the end conflicts.
	resp, err = http.Post(playBase+"/advance", "application/json", nil)
	if err != nil {
		t.Fatalf("advance past end: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusConflict {
		t.Errorf("expected 409 after the end, got %d", resp.StatusCode)
	}
}
