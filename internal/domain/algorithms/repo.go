package algorithms

import (
	"context"
	"errors"

	"github.com/google/uuid"
)

// ErrNotFound is returned when an algorithm, node or edge does not exist.
var ErrNotFound = errors.New("not found")

// ErrStartNodeNotFound is returned when no start node can be resolved for an
// algorithm: neither an explicit start_node_id nor an active node of type
// "start". A well-formed algorithm always resolves one, but the model does
// not enforce this at write time.
var ErrStartNodeNotFound = errors.New("start node not found")

// Repository is the persistence surface of the algorithm graph model.
// Implementations must honor context-scoped transactions so that
// algorithm-with-graph creation is all-or-nothing.
type Repository interface {
	// CreateAlgorithm inserts the algorithm and populates its ID and UUID.
	CreateAlgorithm(ctx context.Context, a *Algorithm) error
	// CreateNode inserts a node and populates its ID and UUID.
	CreateNode(ctx context.Context, n *Node) error
	// CreateEdge inserts an edge and populates its ID and UUID.
	CreateEdge(ctx context.Context, e *Edge) error
	// SetStartNode assigns start_node_id on an existing algorithm.
	SetStartNode(ctx context.Context, algorithmID, nodeID int64) error

	GetByID(ctx context.Context, id int64) (*Algorithm, error)
	GetByUUID(ctx context.Context, id uuid.UUID) (*Algorithm, error)
	List(ctx context.Context, f ListFilter, limit, offset int) ([]*Algorithm, int, error)
	Search(ctx context.Context, query string, f ListFilter, limit, offset int) ([]*Algorithm, int, error)
	ListFeatured(ctx context.Context, limit, offset int) ([]*Algorithm, error)
	CountAlgorithms(ctx context.Context) (int, error)

	GetNode(ctx context.Context, nodeID int64) (*Node, error)
	ListNodes(ctx context.Context, algorithmID int64) ([]*Node, error)
	FirstStartNode(ctx context.Context, algorithmID int64) (*Node, error)

	GetEdge(ctx context.Context, edgeID int64) (*Edge, error)
	ListEdges(ctx context.Context, algorithmID int64) ([]*Edge, error)
	OutgoingEdges(ctx context.Context, nodeID int64) ([]*Edge, error)
	IncomingEdges(ctx context.Context, nodeID int64) ([]*Edge, error)

	// IncrementView and IncrementUsage apply atomic counter updates at the
	// storage layer; they must never be read-modify-write.
	IncrementView(ctx context.Context, algorithmID int64) error
	IncrementUsage(ctx context.Context, algorithmID int64) error

	Delete(ctx context.Context, algorithmID int64) error
}
