package control

import "context"

// Repository defines persistence operations for categories and control
// points. A projectID of 0 widens list operations to the global scope.
type Repository interface {
	// Category methods
	CreateCategory(ctx context.Context, c *Category) error
	GetCategoryByID(ctx context.Context, id int64) (*Category, error)
	ListCategories(ctx context.Context, projectID int64) ([]*Category, error)
	UpdateCategory(ctx context.Context, c *Category) error
	DeleteCategory(ctx context.Context, id int64) error

	// ControlPoint methods
	CreateControlPoint(ctx context.Context, p *ControlPoint) error
	GetControlPointByID(ctx context.Context, id int64) (*ControlPoint, error)
	ListControlPoints(ctx context.Context, categoryID int64) ([]*ControlPoint, error)
	ListActiveControlPoints(ctx context.Context, projectID int64) ([]*ControlPoint, error)
	UpdateControlPoint(ctx context.Context, p *ControlPoint) error
	DeleteControlPoint(ctx context.Context, id int64) error

	// ListProjectIDs returns the distinct tracker projects that own at
	// least one category. Used to fan a global sweep out per scope.
	ListProjectIDs(ctx context.Context) ([]int64, error)
}
