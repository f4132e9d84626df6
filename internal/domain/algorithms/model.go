package algorithms

import (
	"time"

	"github.com/google/uuid"
)

// Algorithm type tags.
const (
	TypeDecisionTree = "decision_tree"
	TypeFlowchart    = "flowchart"
	TypeChecklist    = "checklist"
)

// Node type tags. The type determines which optional payload fields are
// meaningful; whether a node is terminal is decided by its outgoing edges,
// not by its declared type.
const (
	NodeTypeStart    = "start"
	NodeTypeDecision = "decision"
	NodeTypeAction   = "action"
	NodeTypeInput    = "input"
	NodeTypeEnd      = "end"
)

// Algorithm maps to the algorithms table. It owns its nodes and edges:
// they are deleted with it and never outlive it.
type Algorithm struct {
	ID            int64      `db:"id" json:"id"`
	UUID          uuid.UUID  `db:"uuid" json:"uuid"`
	Title         string     `db:"title" json:"title"`
	Description   *string    `db:"description" json:"description,omitempty"`
	Category      *string    `db:"category" json:"category,omitempty"`
	Specialty     *string    `db:"specialty" json:"specialty,omitempty"`
	AlgorithmType string     `db:"algorithm_type" json:"algorithm_type"`
	StartNodeID   *int64     `db:"start_node_id" json:"start_node_id,omitempty"`
	Tags          *string    `db:"tags" json:"tags,omitempty"`
	IsPublished   bool       `db:"is_published" json:"is_published"`
	IsFeatured    bool       `db:"is_featured" json:"is_featured"`
	ViewCount     int        `db:"view_count" json:"view_count"`
	UsageCount    int        `db:"usage_count" json:"usage_count"`
	CreatedByID   int64      `db:"created_by_id" json:"created_by_id"`
	UpdatedByID   *int64     `db:"updated_by_id" json:"updated_by_id,omitempty"`
	CreatedAt     time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt     time.Time  `db:"updated_at" json:"updated_at"`
}

// Node maps to the algorithm_nodes table: one step in the decision graph.
type Node struct {
	ID                int64     `db:"id" json:"id"`
	UUID              uuid.UUID `db:"uuid" json:"uuid"`
	AlgorithmID       int64     `db:"algorithm_id" json:"algorithm_id"`
	NodeType          string    `db:"node_type" json:"node_type"`
	Title             string    `db:"title" json:"title"`
	Content           *string   `db:"content" json:"content,omitempty"`
	Question          *string   `db:"question" json:"question,omitempty"`
	ActionDescription *string   `db:"action_description" json:"action_description,omitempty"`
	InputType         *string   `db:"input_type" json:"input_type,omitempty"`
	InputOptions      *string   `db:"input_options" json:"input_options,omitempty"`
	ValidationRules   *string   `db:"validation_rules" json:"validation_rules,omitempty"`
	PositionX         float64   `db:"position_x" json:"position_x"`
	PositionY         float64   `db:"position_y" json:"position_y"`
	Color             *string   `db:"color" json:"color,omitempty"`
	Icon              *string   `db:"icon" json:"icon,omitempty"`
	OrderIndex        int       `db:"order_index" json:"order_index"`
	IsActive          bool      `db:"is_active" json:"is_active"`
	CreatedAt         time.Time `db:"created_at" json:"created_at"`
	UpdatedAt         time.Time `db:"updated_at" json:"updated_at"`
}

// Edge maps to the algorithm_edges table: a directed, labeled transition
// between two nodes of the same algorithm. The condition descriptor is
// stored, not evaluated; an external executor matches it against a runtime
// answer to pick among a node's outgoing edges.
type Edge struct {
	ID             int64     `db:"id" json:"id"`
	UUID           uuid.UUID `db:"uuid" json:"uuid"`
	AlgorithmID    int64     `db:"algorithm_id" json:"algorithm_id"`
	FromNodeID     int64     `db:"from_node_id" json:"from_node_id"`
	ToNodeID       int64     `db:"to_node_id" json:"to_node_id"`
	Label          *string   `db:"label" json:"label,omitempty"`
	ConditionType  *string   `db:"condition_type" json:"condition_type,omitempty"`
	ConditionValue *string   `db:"condition_value" json:"condition_value,omitempty"`
	Color          *string   `db:"color" json:"color,omitempty"`
	LineStyle      string    `db:"line_style" json:"line_style"`
	Thickness      int       `db:"thickness" json:"thickness"`
	OrderIndex     int       `db:"order_index" json:"order_index"`
	IsActive       bool      `db:"is_active" json:"is_active"`
	CreatedAt      time.Time `db:"created_at" json:"created_at"`
	UpdatedAt      time.Time `db:"updated_at" json:"updated_at"`
}

// Graph is the composite shape an execution client loads in one round trip:
// the algorithm, its active nodes and edges in order, and the resolved start
// node (nil when none can be determined).
type Graph struct {
	Algorithm *Algorithm `json:"algorithm"`
	Nodes     []*Node    `json:"nodes"`
	Edges     []*Edge    `json:"edges"`
	StartNode *Node      `json:"start_node,omitempty"`
}

// ListFilter narrows algorithm listings. Nil fields are ignored.
// Publication visibility is a caller-supplied filter, not a rule enforced
// inside the model.
type ListFilter struct {
	Category      *string
	Specialty     *string
	AlgorithmType *string
	IsPublished   *bool
	IsFeatured    *bool
	CreatedByID   *int64
}
