package database

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"security_control_scheduler/internal/domain/control"
)

// Custom errors specific to the control repository.
var (
	ErrCategoryNotFound      = fmt.Errorf("control category not found")
	ErrControlPointNotFound  = fmt.Errorf("control point not found")
	ErrDuplicateCategory     = fmt.Errorf("duplicate category code within project")
	ErrDuplicateControlPoint = fmt.Errorf("duplicate control id within category")
)

type PostgresControlRepository struct {
	db *sql.DB
}

func NewPostgresControlRepository(db *sql.DB) *PostgresControlRepository {
	return &PostgresControlRepository{db: db}
}

// --- Category methods ---

const categoryColumns = `id, project_id, name, code, description, position, active, created_at, updated_at`

func (r *PostgresControlRepository) CreateCategory(ctx context.Context, c *control.Category) error {
	if err := c.Validate(); err != nil {
		return err
	}
	query := `INSERT INTO control_categories (project_id, name, code, description, position, active)
              VALUES ($1, $2, $3, $4, $5, $6)
              RETURNING id, created_at, updated_at`
	err := r.db.QueryRowContext(ctx, query,
		c.ProjectID, c.Name, c.Code, c.Description, c.Position, c.Active,
	).Scan(&c.ID, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err, "control_categories_code_unique") {
			return ErrDuplicateCategory
		}
		return fmt.Errorf("error creating category: %w", err)
	}
	return nil
}

func scanCategory(row *sql.Row) (*control.Category, error) {
	c := control.Category{}
	err := row.Scan(&c.ID, &c.ProjectID, &c.Name, &c.Code, &c.Description,
		&c.Position, &c.Active, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrCategoryNotFound
		}
		return nil, fmt.Errorf("error scanning category: %w", err)
	}
	return &c, nil
}

func (r *PostgresControlRepository) GetCategoryByID(ctx context.Context, id int64) (*control.Category, error) {
	query := `SELECT ` + categoryColumns + ` FROM control_categories WHERE id = $1`
	return scanCategory(r.db.QueryRowContext(ctx, query, id))
}

func (r *PostgresControlRepository) ListCategories(ctx context.Context, projectID int64) ([]*control.Category, error) {
	query := `SELECT ` + categoryColumns + ` FROM control_categories
              WHERE ($1 = 0 OR project_id = $1)
              ORDER BY position, id`
	rows, err := r.db.QueryContext(ctx, query, projectID)
	if err != nil {
		return nil, fmt.Errorf("error querying categories: %w", err)
	}
	defer rows.Close()

	categories := make([]*control.Category, 0)
	for rows.Next() {
		c := control.Category{}
		if err := rows.Scan(&c.ID, &c.ProjectID, &c.Name, &c.Code, &c.Description,
			&c.Position, &c.Active, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, fmt.Errorf("error scanning category row: %w", err)
		}
		categories = append(categories, &c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating category rows: %w", err)
	}
	return categories, nil
}

func (r *PostgresControlRepository) UpdateCategory(ctx context.Context, c *control.Category) error {
	if err := c.Validate(); err != nil {
		return err
	}
	query := `UPDATE control_categories
              SET name = $1, code = $2, description = $3, position = $4, active = $5, updated_at = NOW()
              WHERE id = $6
              RETURNING updated_at`
	err := r.db.QueryRowContext(ctx, query,
		c.Name, c.Code, c.Description, c.Position, c.Active, c.ID,
	).Scan(&c.UpdatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return ErrCategoryNotFound
		}
		if isUniqueViolation(err, "control_categories_code_unique") {
			return ErrDuplicateCategory
		}
		return fmt.Errorf("error updating category: %w", err)
	}
	return nil
}

// DeleteCategory removes the category; its control points and their
// schedules cascade away with it.
func (r *PostgresControlRepository) DeleteCategory(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM control_categories WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("error deleting category: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrCategoryNotFound
	}
	return nil
}

// --- ControlPoint methods ---

const controlPointColumns = `id, category_id, control_id, name, description, frequency, position, active, tracker_id, priority_id, assigned_to_id, created_at, updated_at`

func (r *PostgresControlRepository) CreateControlPoint(ctx context.Context, p *control.ControlPoint) error {
	if err := p.Validate(); err != nil {
		return err
	}
	query := `INSERT INTO control_points
              (category_id, control_id, name, description, frequency, position, active, tracker_id, priority_id, assigned_to_id)
              VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
              RETURNING id, created_at, updated_at`
	err := r.db.QueryRowContext(ctx, query,
		p.CategoryID, p.ControlID, p.Name, p.Description, p.Frequency, p.Position, p.Active,
		nullID(p.TrackerID), nullID(p.PriorityID), nullID(p.AssignedToID),
	).Scan(&p.ID, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err, "control_points_control_id_unique") {
			return ErrDuplicateControlPoint
		}
		return fmt.Errorf("error creating control point: %w", err)
	}
	return nil
}

func scanControlPointRow(scan func(dest ...any) error) (*control.ControlPoint, error) {
	p := control.ControlPoint{}
	var trackerID, priorityID, assignedToID sql.NullInt64
	err := scan(&p.ID, &p.CategoryID, &p.ControlID, &p.Name, &p.Description,
		&p.Frequency, &p.Position, &p.Active,
		&trackerID, &priorityID, &assignedToID, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, err
	}
	p.TrackerID = trackerID.Int64
	p.PriorityID = priorityID.Int64
	p.AssignedToID = assignedToID.Int64
	return &p, nil
}

func (r *PostgresControlRepository) GetControlPointByID(ctx context.Context, id int64) (*control.ControlPoint, error) {
	query := `SELECT ` + controlPointColumns + ` FROM control_points WHERE id = $1`
	p, err := scanControlPointRow(r.db.QueryRowContext(ctx, query, id).Scan)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrControlPointNotFound
		}
		return nil, fmt.Errorf("error getting control point by ID: %w", err)
	}
	return p, nil
}

func (r *PostgresControlRepository) listControlPoints(ctx context.Context, query string, args ...any) ([]*control.ControlPoint, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("error querying control points: %w", err)
	}
	defer rows.Close()

	points := make([]*control.ControlPoint, 0)
	for rows.Next() {
		p, err := scanControlPointRow(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("error scanning control point row: %w", err)
		}
		points = append(points, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating control point rows: %w", err)
	}
	return points, nil
}

func (r *PostgresControlRepository) ListControlPoints(ctx context.Context, categoryID int64) ([]*control.ControlPoint, error) {
	query := `SELECT ` + controlPointColumns + ` FROM control_points
              WHERE category_id = $1 ORDER BY position, id`
	return r.listControlPoints(ctx, query, categoryID)
}

func (r *PostgresControlRepository) ListActiveControlPoints(ctx context.Context, projectID int64) ([]*control.ControlPoint, error) {
	query := `SELECT cp.` + strings.ReplaceAll(controlPointColumns, ", ", ", cp.") + `
              FROM control_points cp
              JOIN control_categories cc ON cc.id = cp.category_id
              WHERE cp.active = TRUE AND cc.active = TRUE
                AND ($1 = 0 OR cc.project_id = $1)
              ORDER BY cc.position, cp.position, cp.id`
	return r.listControlPoints(ctx, query, projectID)
}

func (r *PostgresControlRepository) UpdateControlPoint(ctx context.Context, p *control.ControlPoint) error {
	if err := p.Validate(); err != nil {
		return err
	}
	query := `UPDATE control_points
              SET category_id = $1, control_id = $2, name = $3, description = $4, frequency = $5,
                  position = $6, active = $7, tracker_id = $8, priority_id = $9, assigned_to_id = $10,
                  updated_at = NOW()
              WHERE id = $11
              RETURNING updated_at`
	err := r.db.QueryRowContext(ctx, query,
		p.CategoryID, p.ControlID, p.Name, p.Description, p.Frequency,
		p.Position, p.Active, nullID(p.TrackerID), nullID(p.PriorityID), nullID(p.AssignedToID),
		p.ID,
	).Scan(&p.UpdatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return ErrControlPointNotFound
		}
		if isUniqueViolation(err, "control_points_control_id_unique") {
			return ErrDuplicateControlPoint
		}
		return fmt.Errorf("error updating control point: %w", err)
	}
	return nil
}

// DeleteControlPoint removes the control point; its schedules cascade
// away with it.
func (r *PostgresControlRepository) DeleteControlPoint(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM control_points WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("error deleting control point: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrControlPointNotFound
	}
	return nil
}

func (r *PostgresControlRepository) ListProjectIDs(ctx context.Context) ([]int64, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT DISTINCT project_id FROM control_categories ORDER BY project_id`)
	if err != nil {
		return nil, fmt.Errorf("error querying project ids: %w", err)
	}
	defer rows.Close()

	ids := make([]int64, 0)
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("error scanning project id: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating project ids: %w", err)
	}
	return ids, nil
}

// nullID maps the domain's zero-means-unset ids onto nullable columns.
func nullID(id int64) sql.NullInt64 {
	return sql.NullInt64{Int64: id, Valid: id != 0}
}
