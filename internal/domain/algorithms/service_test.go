package algorithms

import (
	"context"
	"sort"
	"strings"
	"testing"

	"github.com/google/uuid"
)

// ── Mock Repository ──

type mockRepo struct {
	algorithms map[int64]*Algorithm
	nodes      map[int64]*Node
	edges      map[int64]*Edge
	nextID     int64
}

func newMockRepo() *mockRepo {
	return &mockRepo{
		algorithms: make(map[int64]*Algorithm),
		nodes:      make(map[int64]*Node),
		edges:      make(map[int64]*Edge),
	}
}

func (m *mockRepo) id() int64 {
	m.nextID++
	return m.nextID
}

func (m *mockRepo) CreateAlgorithm(_ context.Context, a *Algorithm) error {
	a.ID = m.id()
	a.UUID = uuid.New()
	m.algorithms[a.ID] = a
	return nil
}

func (m *mockRepo) CreateNode(_ context.Context, n *Node) error {
	n.ID = m.id()
	n.UUID = uuid.New()
	m.nodes[n.ID] = n
	return nil
}

func (m *mockRepo) CreateEdge(_ context.Context, e *Edge) error {
	e.ID = m.id()
	e.UUID = uuid.New()
	if e.LineStyle == "" {
		e.LineStyle = "solid"
	}
	if e.Thickness == 0 {
		e.Thickness = 2
	}
	m.edges[e.ID] = e
	return nil
}

func (m *mockRepo) SetStartNode(_ context.Context, algorithmID, nodeID int64) error {
	a, ok := m.algorithms[algorithmID]
	if !ok {
		return ErrNotFound
	}
	a.StartNodeID = &nodeID
	return nil
}

// Reads return copies, the way row scans do, so counter updates are only
// visible through a fresh fetch.
func (m *mockRepo) GetByID(_ context.Context, id int64) (*Algorithm, error) {
	if a, ok := m.algorithms[id]; ok {
		cp := *a
		return &cp, nil
	}
	return nil, ErrNotFound
}

func (m *mockRepo) GetByUUID(_ context.Context, id uuid.UUID) (*Algorithm, error) {
	for _, a := range m.algorithms {
		if a.UUID == id {
			cp := *a
			return &cp, nil
		}
	}
	return nil, ErrNotFound
}

func (m *mockRepo) matches(a *Algorithm, f ListFilter) bool {
	if f.Category != nil && (a.Category == nil || !strings.Contains(strings.ToLower(*a.Category), strings.ToLower(*f.Category))) {
		return false
	}
	if f.Specialty != nil && (a.Specialty == nil || !strings.Contains(strings.ToLower(*a.Specialty), strings.ToLower(*f.Specialty))) {
		return false
	}
	if f.AlgorithmType != nil && a.AlgorithmType != *f.AlgorithmType {
		return false
	}
	if f.IsPublished != nil && a.IsPublished != *f.IsPublished {
		return false
	}
	if f.IsFeatured != nil && a.IsFeatured != *f.IsFeatured {
		return false
	}
	if f.CreatedByID != nil && a.CreatedByID != *f.CreatedByID {
		return false
	}
	return true
}

func (m *mockRepo) List(_ context.Context, f ListFilter, limit, offset int) ([]*Algorithm, int, error) {
	var out []*Algorithm
	for _, a := range m.algorithms {
		if m.matches(a, f) {
			out = append(out, a)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	total := len(out)
	if offset > len(out) {
		offset = len(out)
	}
	out = out[offset:]
	if limit < len(out) {
		out = out[:limit]
	}
	return out, total, nil
}

func (m *mockRepo) Search(_ context.Context, q string, f ListFilter, limit, offset int) ([]*Algorithm, int, error) {
	needle := strings.ToLower(q)
	hit := func(s *string) bool {
		return s != nil && strings.Contains(strings.ToLower(*s), needle)
	}
	var out []*Algorithm
	for _, a := range m.algorithms {
		if !m.matches(a, f) {
			continue
		}
		if strings.Contains(strings.ToLower(a.Title), needle) || hit(a.Description) || hit(a.Tags) {
			out = append(out, a)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, len(out), nil
}

func (m *mockRepo) ListFeatured(_ context.Context, limit, offset int) ([]*Algorithm, error) {
	var out []*Algorithm
	for _, a := range m.algorithms {
		if a.IsPublished && a.IsFeatured {
			out = append(out, a)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].UsageCount > out[j].UsageCount })
	return out, nil
}

func (m *mockRepo) CountAlgorithms(_ context.Context) (int, error) {
	return len(m.algorithms), nil
}

func (m *mockRepo) GetNode(_ context.Context, nodeID int64) (*Node, error) {
	if n, ok := m.nodes[nodeID]; ok {
		return n, nil
	}
	return nil, ErrNotFound
}

func (m *mockRepo) ListNodes(_ context.Context, algorithmID int64) ([]*Node, error) {
	var out []*Node
	for _, n := range m.nodes {
		if n.AlgorithmID == algorithmID && n.IsActive {
			out = append(out, n)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].OrderIndex < out[j].OrderIndex })
	return out, nil
}

func (m *mockRepo) FirstStartNode(_ context.Context, algorithmID int64) (*Node, error) {
	var best *Node
	for _, n := range m.nodes {
		if n.AlgorithmID != algorithmID || n.NodeType != NodeTypeStart || !n.IsActive {
			continue
		}
		if best == nil || n.OrderIndex < best.OrderIndex {
			best = n
		}
	}
	if best == nil {
		return nil, ErrNotFound
	}
	return best, nil
}

func (m *mockRepo) GetEdge(_ context.Context, edgeID int64) (*Edge, error) {
	if e, ok := m.edges[edgeID]; ok {
		return e, nil
	}
	return nil, ErrNotFound
}

func (m *mockRepo) edgesWhere(keep func(*Edge) bool) []*Edge {
	var out []*Edge
	for _, e := range m.edges {
		if e.IsActive && keep(e) {
			out = append(out, e)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].OrderIndex < out[j].OrderIndex })
	return out
}

func (m *mockRepo) ListEdges(_ context.Context, algorithmID int64) ([]*Edge, error) {
	return m.edgesWhere(func(e *Edge) bool { return e.AlgorithmID == algorithmID }), nil
}

func (m *mockRepo) OutgoingEdges(_ context.Context, nodeID int64) ([]*Edge, error) {
	return m.edgesWhere(func(e *Edge) bool { return e.FromNodeID == nodeID }), nil
}

func (m *mockRepo) IncomingEdges(_ context.Context, nodeID int64) ([]*Edge, error) {
	return m.edgesWhere(func(e *Edge) bool { return e.ToNodeID == nodeID }), nil
}

func (m *mockRepo) IncrementView(_ context.Context, algorithmID int64) error {
	a, ok := m.algorithms[algorithmID]
	if !ok {
		return ErrNotFound
	}
	a.ViewCount++
	return nil
}

func (m *mockRepo) IncrementUsage(_ context.Context, algorithmID int64) error {
	a, ok := m.algorithms[algorithmID]
	if !ok {
		return ErrNotFound
	}
	a.UsageCount++
	return nil
}

func (m *mockRepo) Delete(_ context.Context, algorithmID int64) error {
	if _, ok := m.algorithms[algorithmID]; !ok {
		return ErrNotFound
	}
	delete(m.algorithms, algorithmID)
	for id, n := range m.nodes {
		if n.AlgorithmID == algorithmID {
			delete(m.nodes, id)
		}
	}
	for id, e := range m.edges {
		if e.AlgorithmID == algorithmID {
			delete(m.edges, id)
		}
	}
	return nil
}

func newTestService() (*Service, *mockRepo) {
	repo := newMockRepo()
	return NewService(repo, nil), repo
}

// ── Tests ──

func TestCreateWithGraph(t *testing.T) {
	svc, repo := newTestService()
	ctx := context.Background()

	g, err := svc.CreateWithGraph(ctx, sampleInput(), 1)
	if err != nil {
		t.Fatalf("CreateWithGraph failed: %v", err)
	}
	if g.Algorithm.ID == 0 {
		t.Error("expected algorithm id to be assigned")
	}
	if g.Algorithm.UUID == uuid.Nil {
		t.Error("expected algorithm uuid to be assigned")
	}
	if len(g.Nodes) != 3 || len(g.Edges) != 2 {
		t.Fatalf("expected 3 nodes and 2 edges, got %d and %d", len(g.Nodes), len(g.Edges))
	}
	if g.Algorithm.StartNodeID == nil || *g.Algorithm.StartNodeID != g.Nodes[0].ID {
		t.Error("expected start_node_id to point at the first node")
	}
	for _, n := range g.Nodes {
		if n.AlgorithmID != g.Algorithm.ID {
			t.Errorf("node %d not owned by algorithm", n.ID)
		}
		if !n.IsActive {
			t.Errorf("node %d should be active", n.ID)
		}
	}
	for _, e := range g.Edges {
		if _, ok := repo.nodes[e.FromNodeID]; !ok {
			t.Errorf("edge %d references missing from node %d", e.ID, e.FromNodeID)
		}
		if _, ok := repo.nodes[e.ToNodeID]; !ok {
			t.Errorf("edge %d references missing to node %d", e.ID, e.ToNodeID)
		}
	}
}

func sampleInput() CreateInput {
	q := "¿Mejora el paciente?"
	start := 0
	return CreateInput{
		Title:         "Protocolo de ejemplo",
		AlgorithmType: TypeDecisionTree,
		IsPublished:   true,
		Nodes: []NodeInput{
			{NodeType: NodeTypeStart, Title: "Inicio", OrderIndex: 1},
			{NodeType: NodeTypeDecision, Title: "Evaluar", Question: &q, OrderIndex: 2},
			{NodeType: NodeTypeEnd, Title: "Fin", OrderIndex: 3},
		},
		Edges: []EdgeInput{
			{FromIndex: 0, ToIndex: 1, OrderIndex: 1},
			{FromIndex: 1, ToIndex: 2, OrderIndex: 2},
		},
		StartNodeIndex: &start,
	}
}

func TestCreateWithGraphInputNode(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	it := "number"
	in := sampleInput()
	in.Nodes = append(in.Nodes, NodeInput{
		NodeType:  NodeTypeInput,
		Title:     "Edad del paciente",
		InputType: &it,
	})
	in.Edges = append(in.Edges, EdgeInput{FromIndex: 1, ToIndex: 3, OrderIndex: 3})

	g, err := svc.CreateWithGraph(ctx, in, 1)
	if err != nil {
		t.Fatalf("CreateWithGraph failed: %v", err)
	}
	if len(g.Nodes) != 4 || len(g.Edges) != 3 {
		t.Fatalf("expected 4 nodes and 3 edges, got %d and %d", len(g.Nodes), len(g.Edges))
	}
	var found *Node
	for _, n := range g.Nodes {
		if n.NodeType == NodeTypeInput {
			found = n
		}
	}
	if found == nil {
		t.Fatal("expected an input node in the created graph")
	}
	if found.InputType == nil || *found.InputType != "number" {
		t.Errorf("expected input_type number, got %v", found.InputType)
	}
}

func TestCreateWithGraphValidation(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	cases := []struct {
		name   string
		mutate func(*CreateInput)
	}{
		{"missing title", func(in *CreateInput) { in.Title = "" }},
		{"invalid algorithm type", func(in *CreateInput) { in.AlgorithmType = "mindmap" }},
		{"invalid node type", func(in *CreateInput) { in.Nodes[1].NodeType = "loop" }},
		{"node missing title", func(in *CreateInput) { in.Nodes[2].Title = "" }},
		{"edge from out of range", func(in *CreateInput) { in.Edges[0].FromIndex = 7 }},
		{"edge to negative", func(in *CreateInput) { in.Edges[1].ToIndex = -1 }},
		{"start index out of range", func(in *CreateInput) { i := 9; in.StartNodeIndex = &i }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			in := sampleInput()
			tc.mutate(&in)
			if _, err := svc.CreateWithGraph(ctx, in, 1); err == nil {
				t.Error("expected validation error")
			}
		})
	}
}

func TestResolveStartNode(t *testing.T) {
	svc, repo := newTestService()
	ctx := context.Background()

	g, err := svc.CreateWithGraph(ctx, sampleInput(), 1)
	if err != nil {
		t.Fatalf("CreateWithGraph failed: %v", err)
	}

	n, err := svc.ResolveStartNode(ctx, g.Algorithm.ID)
	if err != nil {
		t.Fatalf("ResolveStartNode failed: %v", err)
	}
	if n.ID != g.Nodes[0].ID {
		t.Errorf("expected explicit start node %d, got %d", g.Nodes[0].ID, n.ID)
	}

	// Without an explicit assignment the first active start node wins.
	g.Algorithm.StartNodeID = nil
	n, err = svc.ResolveStartNode(ctx, g.Algorithm.ID)
	if err != nil {
		t.Fatalf("ResolveStartNode fallback failed: %v", err)
	}
	if n.NodeType != NodeTypeStart {
		t.Errorf("expected a start node, got type %s", n.NodeType)
	}

	// Deactivating every start node leaves nothing to resolve.
	for _, node := range repo.nodes {
		if node.NodeType == NodeTypeStart {
			node.IsActive = false
		}
	}
	if _, err := svc.ResolveStartNode(ctx, g.Algorithm.ID); err != ErrStartNodeNotFound {
		t.Errorf("expected ErrStartNodeNotFound, got %v", err)
	}
}

func TestResolveStartNodeDanglingReference(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	g, err := svc.CreateWithGraph(ctx, sampleInput(), 1)
	if err != nil {
		t.Fatalf("CreateWithGraph failed: %v", err)
	}

	missing := int64(999)
	g.Algorithm.StartNodeID = &missing

	n, err := svc.ResolveStartNode(ctx, g.Algorithm.ID)
	if err != nil {
		t.Fatalf("expected fallback to type-based lookup, got %v", err)
	}
	if n.NodeType != NodeTypeStart {
		t.Errorf("expected start node, got type %s", n.NodeType)
	}
}

func TestGetFullIncrementsUsage(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	created, err := svc.CreateWithGraph(ctx, sampleInput(), 1)
	if err != nil {
		t.Fatalf("CreateWithGraph failed: %v", err)
	}

	g, err := svc.GetFull(ctx, created.Algorithm.ID)
	if err != nil {
		t.Fatalf("GetFull failed: %v", err)
	}
	if g.Algorithm.UsageCount != 1 {
		t.Errorf("expected usage_count 1, got %d", g.Algorithm.UsageCount)
	}
	if len(g.Nodes) != 3 || len(g.Edges) != 2 {
		t.Errorf("expected full graph, got %d nodes %d edges", len(g.Nodes), len(g.Edges))
	}
	if g.StartNode == nil || g.StartNode.NodeType != NodeTypeStart {
		t.Error("expected resolved start node")
	}

	for i := 0; i < 4; i++ {
		if _, err := svc.GetFull(ctx, created.Algorithm.ID); err != nil {
			t.Fatalf("GetFull failed: %v", err)
		}
	}
	a, err := svc.GetAlgorithm(ctx, created.Algorithm.ID)
	if err != nil {
		t.Fatalf("GetAlgorithm failed: %v", err)
	}
	if a.UsageCount != 5 {
		t.Errorf("expected usage_count 5, got %d", a.UsageCount)
	}
}

func TestGetAndCountView(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	created, err := svc.CreateWithGraph(ctx, sampleInput(), 1)
	if err != nil {
		t.Fatalf("CreateWithGraph failed: %v", err)
	}

	a, err := svc.GetAndCountView(ctx, created.Algorithm.ID)
	if err != nil {
		t.Fatalf("GetAndCountView failed: %v", err)
	}
	if a.ViewCount != 1 {
		t.Errorf("expected view_count 1, got %d", a.ViewCount)
	}
	if a.UsageCount != 0 {
		t.Errorf("view must not touch usage_count, got %d", a.UsageCount)
	}
}

func TestNodeEdges(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	g, err := svc.CreateWithGraph(ctx, sampleInput(), 1)
	if err != nil {
		t.Fatalf("CreateWithGraph failed: %v", err)
	}

	out, err := svc.NodeEdges(ctx, g.Algorithm.ID, g.Nodes[0].ID, false)
	if err != nil {
		t.Fatalf("NodeEdges failed: %v", err)
	}
	if len(out) != 1 || out[0].ToNodeID != g.Nodes[1].ID {
		t.Errorf("expected one edge to node %d, got %v", g.Nodes[1].ID, out)
	}

	// The terminal node has no outgoing edges; empty, not an error.
	out, err = svc.NodeEdges(ctx, g.Algorithm.ID, g.Nodes[2].ID, false)
	if err != nil {
		t.Fatalf("NodeEdges on leaf failed: %v", err)
	}
	if len(out) != 0 {
		t.Errorf("expected no outgoing edges on leaf, got %d", len(out))
	}

	in, err := svc.NodeEdges(ctx, g.Algorithm.ID, g.Nodes[2].ID, true)
	if err != nil {
		t.Fatalf("incoming NodeEdges failed: %v", err)
	}
	if len(in) != 1 || in[0].FromNodeID != g.Nodes[1].ID {
		t.Errorf("expected one incoming edge from node %d", g.Nodes[1].ID)
	}

	// A node from another algorithm is invisible through this one.
	other, err := svc.CreateWithGraph(ctx, sampleInput(), 1)
	if err != nil {
		t.Fatalf("CreateWithGraph failed: %v", err)
	}
	if _, err := svc.NodeEdges(ctx, g.Algorithm.ID, other.Nodes[0].ID, false); err != ErrNotFound {
		t.Errorf("expected ErrNotFound for foreign node, got %v", err)
	}
}

func TestListByType(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	in := sampleInput()
	if _, err := svc.CreateWithGraph(ctx, in, 1); err != nil {
		t.Fatalf("CreateWithGraph failed: %v", err)
	}
	flow := sampleInput()
	flow.AlgorithmType = TypeFlowchart
	if _, err := svc.CreateWithGraph(ctx, flow, 1); err != nil {
		t.Fatalf("CreateWithGraph failed: %v", err)
	}
	draft := sampleInput()
	draft.IsPublished = false
	if _, err := svc.CreateWithGraph(ctx, draft, 1); err != nil {
		t.Fatalf("CreateWithGraph failed: %v", err)
	}

	items, total, err := svc.ListByType(ctx, TypeDecisionTree, 20, 0)
	if err != nil {
		t.Fatalf("ListByType failed: %v", err)
	}
	if total != 1 || len(items) != 1 {
		t.Fatalf("expected exactly one published decision tree, got %d", total)
	}
	if items[0].AlgorithmType != TypeDecisionTree {
		t.Errorf("unexpected type %s", items[0].AlgorithmType)
	}

	if _, _, err := svc.ListByType(ctx, "mindmap", 20, 0); err == nil {
		t.Error("expected error for unknown type")
	}
}

func TestSeedIsIdempotent(t *testing.T) {
	svc, repo := newTestService()
	ctx := context.Background()

	if err := svc.Seed(ctx, 1); err != nil {
		t.Fatalf("Seed failed: %v", err)
	}
	if len(repo.algorithms) != 1 {
		t.Fatalf("expected one seeded algorithm, got %d", len(repo.algorithms))
	}
	if len(repo.nodes) != 4 || len(repo.edges) != 3 {
		t.Errorf("expected 4 nodes and 3 edges, got %d and %d", len(repo.nodes), len(repo.edges))
	}

	if err := svc.Seed(ctx, 1); err != nil {
		t.Fatalf("second Seed failed: %v", err)
	}
	if len(repo.algorithms) != 1 {
		t.Errorf("seeding twice must not duplicate data, got %d algorithms", len(repo.algorithms))
	}

	var seeded *Algorithm
	for _, a := range repo.algorithms {
		seeded = a
	}
	if seeded.Title != "Manejo de Dolor Torácico" {
		t.Errorf("unexpected title %q", seeded.Title)
	}
	if seeded.StartNodeID == nil {
		t.Error("seeded algorithm must have a start node")
	}
}

func TestWalk(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	if err := svc.Seed(ctx, 1); err != nil {
		t.Fatalf("Seed failed: %v", err)
	}
	var algorithmID int64
	items, _, err := svc.List(ctx, ListFilter{}, 10, 0)
	if err != nil || len(items) == 0 {
		t.Fatalf("List failed: %v", err)
	}
	algorithmID = items[0].ID

	path, err := svc.Walk(ctx, algorithmID, 10)
	if err != nil {
		t.Fatalf("Walk failed: %v", err)
	}
	// start -> decision -> first branch (urgent management).
	if len(path) != 3 {
		t.Fatalf("expected 3-node path, got %d", len(path))
	}
	if path[0].NodeType != NodeTypeStart {
		t.Errorf("path must begin at the start node, got %s", path[0].NodeType)
	}
	if path[2].Title != "Manejo urgente" {
		t.Errorf("expected path to end at %q, got %q", "Manejo urgente", path[2].Title)
	}
}

func TestWalkStopsOnCycle(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	start := 0
	in := CreateInput{
		Title:         "Ciclo",
		AlgorithmType: TypeFlowchart,
		Nodes: []NodeInput{
			{NodeType: NodeTypeStart, Title: "A", OrderIndex: 1},
			{NodeType: NodeTypeAction, Title: "B", OrderIndex: 2},
		},
		Edges: []EdgeInput{
			{FromIndex: 0, ToIndex: 1, OrderIndex: 1},
			{FromIndex: 1, ToIndex: 0, OrderIndex: 2},
		},
		StartNodeIndex: &start,
	}
	g, err := svc.CreateWithGraph(ctx, in, 1)
	if err != nil {
		t.Fatalf("CreateWithGraph failed: %v", err)
	}

	path, err := svc.Walk(ctx, g.Algorithm.ID, 100)
	if err != nil {
		t.Fatalf("Walk failed: %v", err)
	}
	if len(path) != 2 {
		t.Errorf("walk must visit each node once, got %d steps", len(path))
	}
}

func TestSearch(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	if err := svc.Seed(ctx, 1); err != nil {
		t.Fatalf("Seed failed: %v", err)
	}

	items, total, err := svc.Search(ctx, "torácico", ListFilter{}, 20, 0)
	if err != nil {
		t.Fatalf("Search failed: %v", err)
	}
	if total != 1 || len(items) != 1 {
		t.Fatalf("expected one match, got %d", total)
	}

	_, total, err = svc.Search(ctx, "nefrología", ListFilter{}, 20, 0)
	if err != nil {
		t.Fatalf("Search failed: %v", err)
	}
	if total != 0 {
		t.Errorf("expected no matches, got %d", total)
	}
}
