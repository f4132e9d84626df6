package algorithms

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog/log"

	"github.com/crtormo/resicentral/internal/platform/db"
)

// CreateInput is the write shape for an algorithm and its full graph in one
// request. Nodes are referenced positionally: edge endpoints and the start
// node designation are indexes into Nodes, resolved to database ids during
// creation.
type CreateInput struct {
	Title         string  `json:"title"`
	Description   *string `json:"description"`
	Category      *string `json:"category"`
	Specialty     *string `json:"specialty"`
	AlgorithmType string  `json:"algorithm_type"`
	Tags          *string `json:"tags"`
	IsPublished   bool    `json:"is_published"`
	IsFeatured    bool    `json:"is_featured"`

	Nodes          []NodeInput `json:"nodes"`
	Edges          []EdgeInput `json:"edges"`
	StartNodeIndex *int        `json:"start_node_index"`
}

// NodeInput is one node of a CreateInput graph.
type NodeInput struct {
	NodeType          string  `json:"node_type"`
	Title             string  `json:"title"`
	Content           *string `json:"content"`
	Question          *string `json:"question"`
	ActionDescription *string `json:"action_description"`
	InputType         *string `json:"input_type"`
	InputOptions      *string `json:"input_options"`
	ValidationRules   *string `json:"validation_rules"`
	PositionX         float64 `json:"position_x"`
	PositionY         float64 `json:"position_y"`
	Color             *string `json:"color"`
	Icon              *string `json:"icon"`
	OrderIndex        int     `json:"order_index"`
}

// EdgeInput is one edge of a CreateInput graph. FromIndex and ToIndex point
// into CreateInput.Nodes.
type EdgeInput struct {
	FromIndex      int     `json:"from_index"`
	ToIndex        int     `json:"to_index"`
	Label          *string `json:"label"`
	ConditionType  *string `json:"condition_type"`
	ConditionValue *string `json:"condition_value"`
	Color          *string `json:"color"`
	LineStyle      string  `json:"line_style"`
	Thickness      int     `json:"thickness"`
	OrderIndex     int     `json:"order_index"`
}

// Service wraps the repository with graph-level rules: transactional
// creation, start-node resolution and usage accounting.
type Service struct {
	repo Repository
	pool *pgxpool.Pool
}

func NewService(repo Repository, pool *pgxpool.Pool) *Service {
	return &Service{repo: repo, pool: pool}
}

var validTypes = map[string]bool{
	TypeDecisionTree: true,
	TypeFlowchart:    true,
	TypeChecklist:    true,
}

var validNodeTypes = map[string]bool{
	NodeTypeStart:    true,
	NodeTypeDecision: true,
	NodeTypeAction:   true,
	NodeTypeInput:    true,
	NodeTypeEnd:      true,
}

func (in *CreateInput) validate() error {
	if in.Title == "" {
		return fmt.Errorf("title is required")
	}
	if !validTypes[in.AlgorithmType] {
		return fmt.Errorf("invalid algorithm_type %q", in.AlgorithmType)
	}
	for i, n := range in.Nodes {
		if n.Title == "" {
			return fmt.Errorf("node %d: title is required", i)
		}
		if !validNodeTypes[n.NodeType] {
			return fmt.Errorf("node %d: invalid node_type %q", i, n.NodeType)
		}
	}
	for i, e := range in.Edges {
		if e.FromIndex < 0 || e.FromIndex >= len(in.Nodes) {
			return fmt.Errorf("edge %d: from_index %d out of range", i, e.FromIndex)
		}
		if e.ToIndex < 0 || e.ToIndex >= len(in.Nodes) {
			return fmt.Errorf("edge %d: to_index %d out of range", i, e.ToIndex)
		}
	}
	if in.StartNodeIndex != nil {
		if *in.StartNodeIndex < 0 || *in.StartNodeIndex >= len(in.Nodes) {
			return fmt.Errorf("start_node_index %d out of range", *in.StartNodeIndex)
		}
	}
	return nil
}

// CreateWithGraph creates the algorithm together with its nodes and edges in
// a single transaction. Either the whole graph is persisted or nothing is.
func (s *Service) CreateWithGraph(ctx context.Context, in CreateInput, createdByID int64) (*Graph, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}

	var g Graph
	err := db.InTx(ctx, s.pool, func(ctx context.Context) error {
		a := &Algorithm{
			Title:         in.Title,
			Description:   in.Description,
			Category:      in.Category,
			Specialty:     in.Specialty,
			AlgorithmType: in.AlgorithmType,
			Tags:          in.Tags,
			IsPublished:   in.IsPublished,
			IsFeatured:    in.IsFeatured,
			CreatedByID:   createdByID,
		}
		if err := s.repo.CreateAlgorithm(ctx, a); err != nil {
			return fmt.Errorf("create algorithm: %w", err)
		}

		nodes := make([]*Node, 0, len(in.Nodes))
		for i, ni := range in.Nodes {
			n := &Node{
				AlgorithmID:       a.ID,
				NodeType:          ni.NodeType,
				Title:             ni.Title,
				Content:           ni.Content,
				Question:          ni.Question,
				ActionDescription: ni.ActionDescription,
				InputType:         ni.InputType,
				InputOptions:      ni.InputOptions,
				ValidationRules:   ni.ValidationRules,
				PositionX:         ni.PositionX,
				PositionY:         ni.PositionY,
				Color:             ni.Color,
				Icon:              ni.Icon,
				OrderIndex:        ni.OrderIndex,
				IsActive:          true,
			}
			if err := s.repo.CreateNode(ctx, n); err != nil {
				return fmt.Errorf("create node %d: %w", i, err)
			}
			nodes = append(nodes, n)
		}

		if in.StartNodeIndex != nil {
			start := nodes[*in.StartNodeIndex]
			if err := s.repo.SetStartNode(ctx, a.ID, start.ID); err != nil {
				return fmt.Errorf("set start node: %w", err)
			}
			a.StartNodeID = &start.ID
			g.StartNode = start
		}

		edges := make([]*Edge, 0, len(in.Edges))
		for i, ei := range in.Edges {
			e := &Edge{
				AlgorithmID:    a.ID,
				FromNodeID:     nodes[ei.FromIndex].ID,
				ToNodeID:       nodes[ei.ToIndex].ID,
				Label:          ei.Label,
				ConditionType:  ei.ConditionType,
				ConditionValue: ei.ConditionValue,
				Color:          ei.Color,
				LineStyle:      ei.LineStyle,
				Thickness:      ei.Thickness,
				OrderIndex:     ei.OrderIndex,
				IsActive:       true,
			}
			if err := s.repo.CreateEdge(ctx, e); err != nil {
				return fmt.Errorf("create edge %d: %w", i, err)
			}
			edges = append(edges, e)
		}

		g.Algorithm = a
		g.Nodes = nodes
		g.Edges = edges
		return nil
	})
	if err != nil {
		return nil, err
	}

	log.Info().
		Int64("algorithm_id", g.Algorithm.ID).
		Int("nodes", len(g.Nodes)).
		Int("edges", len(g.Edges)).
		Msg("Algorithm created")
	return &g, nil
}

func (s *Service) GetAlgorithm(ctx context.Context, id int64) (*Algorithm, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *Service) GetByUUID(ctx context.Context, id uuid.UUID) (*Algorithm, error) {
	return s.repo.GetByUUID(ctx, id)
}

func (s *Service) List(ctx context.Context, f ListFilter, limit, offset int) ([]*Algorithm, int, error) {
	return s.repo.List(ctx, f, limit, offset)
}

func (s *Service) Search(ctx context.Context, query string, f ListFilter, limit, offset int) ([]*Algorithm, int, error) {
	return s.repo.Search(ctx, query, f, limit, offset)
}

func (s *Service) ListFeatured(ctx context.Context, limit, offset int) ([]*Algorithm, error) {
	return s.repo.ListFeatured(ctx, limit, offset)
}

// ListByType lists published algorithms of one type.
func (s *Service) ListByType(ctx context.Context, algorithmType string, limit, offset int) ([]*Algorithm, int, error) {
	if !validTypes[algorithmType] {
		return nil, 0, fmt.Errorf("invalid algorithm_type %q", algorithmType)
	}
	published := true
	return s.repo.List(ctx, ListFilter{AlgorithmType: &algorithmType, IsPublished: &published}, limit, offset)
}

func (s *Service) ListNodes(ctx context.Context, algorithmID int64) ([]*Node, error) {
	if _, err := s.repo.GetByID(ctx, algorithmID); err != nil {
		return nil, err
	}
	return s.repo.ListNodes(ctx, algorithmID)
}

func (s *Service) ListEdges(ctx context.Context, algorithmID int64) ([]*Edge, error) {
	if _, err := s.repo.GetByID(ctx, algorithmID); err != nil {
		return nil, err
	}
	return s.repo.ListEdges(ctx, algorithmID)
}

// ResolveStartNode finds the entry point of an algorithm: the explicitly
// assigned start node when set, otherwise the first active node of type
// "start" by order_index. ErrStartNodeNotFound when neither exists.
func (s *Service) ResolveStartNode(ctx context.Context, algorithmID int64) (*Node, error) {
	a, err := s.repo.GetByID(ctx, algorithmID)
	if err != nil {
		return nil, err
	}
	return s.resolveStart(ctx, a)
}

func (s *Service) resolveStart(ctx context.Context, a *Algorithm) (*Node, error) {
	if a.StartNodeID != nil {
		n, err := s.repo.GetNode(ctx, *a.StartNodeID)
		if err == nil {
			return n, nil
		}
		if err != ErrNotFound {
			return nil, err
		}
		// Dangling start_node_id, fall through to type-based lookup.
	}
	n, err := s.repo.FirstStartNode(ctx, a.ID)
	if err == ErrNotFound {
		return nil, ErrStartNodeNotFound
	}
	return n, err
}

// NodeEdges returns the node's outgoing (or incoming) edges after verifying
// the node belongs to the given algorithm. A node with no matching edges
// yields an empty slice, not an error.
func (s *Service) NodeEdges(ctx context.Context, algorithmID, nodeID int64, incoming bool) ([]*Edge, error) {
	n, err := s.repo.GetNode(ctx, nodeID)
	if err != nil {
		return nil, err
	}
	if n.AlgorithmID != algorithmID {
		return nil, ErrNotFound
	}
	var edges []*Edge
	if incoming {
		edges, err = s.repo.IncomingEdges(ctx, nodeID)
	} else {
		edges, err = s.repo.OutgoingEdges(ctx, nodeID)
	}
	if err != nil {
		return nil, err
	}
	if edges == nil {
		edges = []*Edge{}
	}
	return edges, nil
}

// GetFull loads the algorithm with its complete graph and records one usage.
// A missing start node does not fail the load; StartNode is simply nil.
func (s *Service) GetFull(ctx context.Context, algorithmID int64) (*Graph, error) {
	a, err := s.repo.GetByID(ctx, algorithmID)
	if err != nil {
		return nil, err
	}
	nodes, err := s.repo.ListNodes(ctx, algorithmID)
	if err != nil {
		return nil, err
	}
	edges, err := s.repo.ListEdges(ctx, algorithmID)
	if err != nil {
		return nil, err
	}
	if nodes == nil {
		nodes = []*Node{}
	}
	if edges == nil {
		edges = []*Edge{}
	}

	start, err := s.resolveStart(ctx, a)
	if err != nil && err != ErrStartNodeNotFound {
		return nil, err
	}

	if err := s.repo.IncrementUsage(ctx, algorithmID); err != nil {
		return nil, err
	}
	a.UsageCount++

	return &Graph{Algorithm: a, Nodes: nodes, Edges: edges, StartNode: start}, nil
}

// GetAndCountView returns the algorithm after recording one view.
func (s *Service) GetAndCountView(ctx context.Context, algorithmID int64) (*Algorithm, error) {
	a, err := s.repo.GetByID(ctx, algorithmID)
	if err != nil {
		return nil, err
	}
	if err := s.repo.IncrementView(ctx, algorithmID); err != nil {
		return nil, err
	}
	a.ViewCount++
	return a, nil
}

func (s *Service) Delete(ctx context.Context, algorithmID int64) error {
	return s.repo.Delete(ctx, algorithmID)
}

// Walk traverses the graph from the start node following the first active
// outgoing edge of each node, up to maxSteps nodes. A visited set stops
// cycles. It is a smoke-test utility for seeded graphs, not an executor:
// real traversal picks edges by evaluating conditions against user answers.
func (s *Service) Walk(ctx context.Context, algorithmID int64, maxSteps int) ([]*Node, error) {
	start, err := s.ResolveStartNode(ctx, algorithmID)
	if err != nil {
		return nil, err
	}

	visited := make(map[int64]bool)
	path := []*Node{start}
	visited[start.ID] = true

	current := start
	for len(path) < maxSteps {
		edges, err := s.repo.OutgoingEdges(ctx, current.ID)
		if err != nil {
			return nil, err
		}
		if len(edges) == 0 {
			break
		}
		next, err := s.repo.GetNode(ctx, edges[0].ToNodeID)
		if err != nil {
			return nil, err
		}
		if visited[next.ID] {
			break
		}
		visited[next.ID] = true
		path = append(path, next)
		current = next
	}
	return path, nil
}
