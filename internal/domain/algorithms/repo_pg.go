package algorithms

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/crtormo/resicentral/internal/platform/db"
)

type repoPG struct{ pool *pgxpool.Pool }

// NewRepoPG returns the PostgreSQL-backed Repository. When the context
// carries a transaction (db.InTx), all statements join it.
func NewRepoPG(pool *pgxpool.Pool) Repository { return &repoPG{pool: pool} }

func (r *repoPG) conn(ctx context.Context) db.Queryable {
	if c := db.ConnFromContext(ctx); c != nil {
		return c
	}
	return r.pool
}

const algorithmCols = `id, uuid, title, description, category, specialty, algorithm_type,
	start_node_id, tags, is_published, is_featured, view_count, usage_count,
	created_by_id, updated_by_id, created_at, updated_at`

func scanAlgorithm(row pgx.Row) (*Algorithm, error) {
	var a Algorithm
	err := row.Scan(&a.ID, &a.UUID, &a.Title, &a.Description, &a.Category, &a.Specialty,
		&a.AlgorithmType, &a.StartNodeID, &a.Tags, &a.IsPublished, &a.IsFeatured,
		&a.ViewCount, &a.UsageCount, &a.CreatedByID, &a.UpdatedByID, &a.CreatedAt, &a.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	return &a, err
}

func (r *repoPG) CreateAlgorithm(ctx context.Context, a *Algorithm) error {
	a.UUID = uuid.New()
	return r.conn(ctx).QueryRow(ctx, `
		INSERT INTO algorithms (uuid, title, description, category, specialty, algorithm_type,
			start_node_id, tags, is_published, is_featured, created_by_id)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11)
		RETURNING id, created_at, updated_at`,
		a.UUID, a.Title, a.Description, a.Category, a.Specialty, a.AlgorithmType,
		a.StartNodeID, a.Tags, a.IsPublished, a.IsFeatured, a.CreatedByID).
		Scan(&a.ID, &a.CreatedAt, &a.UpdatedAt)
}

const nodeCols = `id, uuid, algorithm_id, node_type, title, content, question,
	action_description, input_type, input_options, validation_rules,
	position_x, position_y, color, icon, order_index, is_active, created_at, updated_at`

func scanNode(row pgx.Row) (*Node, error) {
	var n Node
	err := row.Scan(&n.ID, &n.UUID, &n.AlgorithmID, &n.NodeType, &n.Title, &n.Content,
		&n.Question, &n.ActionDescription, &n.InputType, &n.InputOptions, &n.ValidationRules,
		&n.PositionX, &n.PositionY, &n.Color, &n.Icon, &n.OrderIndex, &n.IsActive,
		&n.CreatedAt, &n.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	return &n, err
}

func (r *repoPG) CreateNode(ctx context.Context, n *Node) error {
	n.UUID = uuid.New()
	return r.conn(ctx).QueryRow(ctx, `
		INSERT INTO algorithm_nodes (uuid, algorithm_id, node_type, title, content, question,
			action_description, input_type, input_options, validation_rules,
			position_x, position_y, color, icon, order_index, is_active)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16)
		RETURNING id, created_at, updated_at`,
		n.UUID, n.AlgorithmID, n.NodeType, n.Title, n.Content, n.Question,
		n.ActionDescription, n.InputType, n.InputOptions, n.ValidationRules,
		n.PositionX, n.PositionY, n.Color, n.Icon, n.OrderIndex, n.IsActive).
		Scan(&n.ID, &n.CreatedAt, &n.UpdatedAt)
}

const edgeCols = `id, uuid, algorithm_id, from_node_id, to_node_id, label,
	condition_type, condition_value, color, line_style, thickness,
	order_index, is_active, created_at, updated_at`

func scanEdge(row pgx.Row) (*Edge, error) {
	var e Edge
	err := row.Scan(&e.ID, &e.UUID, &e.AlgorithmID, &e.FromNodeID, &e.ToNodeID, &e.Label,
		&e.ConditionType, &e.ConditionValue, &e.Color, &e.LineStyle, &e.Thickness,
		&e.OrderIndex, &e.IsActive, &e.CreatedAt, &e.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	return &e, err
}

func (r *repoPG) CreateEdge(ctx context.Context, e *Edge) error {
	e.UUID = uuid.New()
	if e.LineStyle == "" {
		e.LineStyle = "solid"
	}
	if e.Thickness == 0 {
		e.Thickness = 2
	}
	return r.conn(ctx).QueryRow(ctx, `
		INSERT INTO algorithm_edges (uuid, algorithm_id, from_node_id, to_node_id, label,
			condition_type, condition_value, color, line_style, thickness, order_index, is_active)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12)
		RETURNING id, created_at, updated_at`,
		e.UUID, e.AlgorithmID, e.FromNodeID, e.ToNodeID, e.Label,
		e.ConditionType, e.ConditionValue, e.Color, e.LineStyle, e.Thickness,
		e.OrderIndex, e.IsActive).
		Scan(&e.ID, &e.CreatedAt, &e.UpdatedAt)
}

func (r *repoPG) SetStartNode(ctx context.Context, algorithmID, nodeID int64) error {
	tag, err := r.conn(ctx).Exec(ctx, `
		UPDATE algorithms SET start_node_id = $2, updated_at = NOW() WHERE id = $1`,
		algorithmID, nodeID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *repoPG) GetByID(ctx context.Context, id int64) (*Algorithm, error) {
	return scanAlgorithm(r.conn(ctx).QueryRow(ctx,
		`SELECT `+algorithmCols+` FROM algorithms WHERE id = $1`, id))
}

func (r *repoPG) GetByUUID(ctx context.Context, id uuid.UUID) (*Algorithm, error) {
	return scanAlgorithm(r.conn(ctx).QueryRow(ctx,
		`SELECT `+algorithmCols+` FROM algorithms WHERE uuid = $1`, id))
}

// filterClause appends the WHERE conditions of f to base and countBase,
// returning the accumulated args. Category and specialty match with ILIKE,
// the remaining filters match exactly.
func filterClause(f ListFilter, query, countQuery *string, args []interface{}) []interface{} {
	add := func(clause string, value interface{}) {
		args = append(args, value)
		cond := fmt.Sprintf(clause, len(args))
		*query += cond
		*countQuery += cond
	}

	if f.Category != nil {
		add(` AND category ILIKE '%%' || $%d || '%%'`, *f.Category)
	}
	if f.Specialty != nil {
		add(` AND specialty ILIKE '%%' || $%d || '%%'`, *f.Specialty)
	}
	if f.AlgorithmType != nil {
		add(` AND algorithm_type = $%d`, *f.AlgorithmType)
	}
	if f.IsPublished != nil {
		add(` AND is_published = $%d`, *f.IsPublished)
	}
	if f.IsFeatured != nil {
		add(` AND is_featured = $%d`, *f.IsFeatured)
	}
	if f.CreatedByID != nil {
		add(` AND created_by_id = $%d`, *f.CreatedByID)
	}
	return args
}

func (r *repoPG) collectAlgorithms(ctx context.Context, query string, args ...interface{}) ([]*Algorithm, error) {
	rows, err := r.conn(ctx).Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []*Algorithm
	for rows.Next() {
		a, err := scanAlgorithm(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, a)
	}
	return items, rows.Err()
}

func (r *repoPG) List(ctx context.Context, f ListFilter, limit, offset int) ([]*Algorithm, int, error) {
	query := `SELECT ` + algorithmCols + ` FROM algorithms WHERE 1=1`
	countQuery := `SELECT COUNT(*) FROM algorithms WHERE 1=1`
	args := filterClause(f, &query, &countQuery, nil)

	var total int
	if err := r.conn(ctx).QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query += fmt.Sprintf(` ORDER BY created_at DESC LIMIT $%d OFFSET $%d`, len(args)+1, len(args)+2)
	args = append(args, limit, offset)

	items, err := r.collectAlgorithms(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	return items, total, nil
}

func (r *repoPG) Search(ctx context.Context, q string, f ListFilter, limit, offset int) ([]*Algorithm, int, error) {
	query := `SELECT ` + algorithmCols + ` FROM algorithms
		WHERE (title ILIKE '%' || $1 || '%' OR description ILIKE '%' || $1 || '%' OR tags ILIKE '%' || $1 || '%')`
	countQuery := `SELECT COUNT(*) FROM algorithms
		WHERE (title ILIKE '%' || $1 || '%' OR description ILIKE '%' || $1 || '%' OR tags ILIKE '%' || $1 || '%')`
	args := filterClause(f, &query, &countQuery, []interface{}{q})

	var total int
	if err := r.conn(ctx).QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query += fmt.Sprintf(` ORDER BY created_at DESC LIMIT $%d OFFSET $%d`, len(args)+1, len(args)+2)
	args = append(args, limit, offset)

	items, err := r.collectAlgorithms(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	return items, total, nil
}

func (r *repoPG) ListFeatured(ctx context.Context, limit, offset int) ([]*Algorithm, error) {
	return r.collectAlgorithms(ctx, `SELECT `+algorithmCols+` FROM algorithms
		WHERE is_published = TRUE AND is_featured = TRUE
		ORDER BY usage_count DESC LIMIT $1 OFFSET $2`, limit, offset)
}

func (r *repoPG) CountAlgorithms(ctx context.Context) (int, error) {
	var total int
	err := r.conn(ctx).QueryRow(ctx, `SELECT COUNT(*) FROM algorithms`).Scan(&total)
	return total, err
}

func (r *repoPG) GetNode(ctx context.Context, nodeID int64) (*Node, error) {
	return scanNode(r.conn(ctx).QueryRow(ctx,
		`SELECT `+nodeCols+` FROM algorithm_nodes WHERE id = $1`, nodeID))
}

func (r *repoPG) ListNodes(ctx context.Context, algorithmID int64) ([]*Node, error) {
	rows, err := r.conn(ctx).Query(ctx, `SELECT `+nodeCols+` FROM algorithm_nodes
		WHERE algorithm_id = $1 AND is_active = TRUE ORDER BY order_index`, algorithmID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []*Node
	for rows.Next() {
		n, err := scanNode(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, n)
	}
	return items, rows.Err()
}

func (r *repoPG) FirstStartNode(ctx context.Context, algorithmID int64) (*Node, error) {
	return scanNode(r.conn(ctx).QueryRow(ctx, `SELECT `+nodeCols+` FROM algorithm_nodes
		WHERE algorithm_id = $1 AND node_type = 'start' AND is_active = TRUE
		ORDER BY order_index LIMIT 1`, algorithmID))
}

func (r *repoPG) GetEdge(ctx context.Context, edgeID int64) (*Edge, error) {
	return scanEdge(r.conn(ctx).QueryRow(ctx,
		`SELECT `+edgeCols+` FROM algorithm_edges WHERE id = $1`, edgeID))
}

func (r *repoPG) collectEdges(ctx context.Context, query string, args ...interface{}) ([]*Edge, error) {
	rows, err := r.conn(ctx).Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []*Edge
	for rows.Next() {
		e, err := scanEdge(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, e)
	}
	return items, rows.Err()
}

func (r *repoPG) ListEdges(ctx context.Context, algorithmID int64) ([]*Edge, error) {
	return r.collectEdges(ctx, `SELECT `+edgeCols+` FROM algorithm_edges
		WHERE algorithm_id = $1 AND is_active = TRUE ORDER BY order_index`, algorithmID)
}

func (r *repoPG) OutgoingEdges(ctx context.Context, nodeID int64) ([]*Edge, error) {
	return r.collectEdges(ctx, `SELECT `+edgeCols+` FROM algorithm_edges
		WHERE from_node_id = $1 AND is_active = TRUE ORDER BY order_index`, nodeID)
}

func (r *repoPG) IncomingEdges(ctx context.Context, nodeID int64) ([]*Edge, error) {
	return r.collectEdges(ctx, `SELECT `+edgeCols+` FROM algorithm_edges
		WHERE to_node_id = $1 AND is_active = TRUE ORDER BY order_index`, nodeID)
}

// Counter updates are single atomic statements so concurrent increments on
// the same algorithm never lose updates.

func (r *repoPG) IncrementView(ctx context.Context, algorithmID int64) error {
	tag, err := r.conn(ctx).Exec(ctx, `
		UPDATE algorithms SET view_count = view_count + 1, updated_at = NOW() WHERE id = $1`,
		algorithmID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *repoPG) IncrementUsage(ctx context.Context, algorithmID int64) error {
	tag, err := r.conn(ctx).Exec(ctx, `
		UPDATE algorithms SET usage_count = usage_count + 1, updated_at = NOW() WHERE id = $1`,
		algorithmID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete removes the algorithm; nodes and edges cascade at the schema level.
func (r *repoPG) Delete(ctx context.Context, algorithmID int64) error {
	tag, err := r.conn(ctx).Exec(ctx, `DELETE FROM algorithms WHERE id = $1`, algorithmID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
