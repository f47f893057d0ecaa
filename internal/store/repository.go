package store

import (
	"context"

	"github.com/launchpadhq/launchpad/internal/domain"
)

// UserRepository interface for account data access
type UserRepository interface {
	// Create inserts a new user
	Create(ctx context.Context, user *domain.SysUser) error

	// GetByID retrieves a user by ID
	GetByID(ctx context.Context, id int64) (*domain.SysUser, error)

	// GetByEmail retrieves a user by email
	GetByEmail(ctx context.Context, email string) (*domain.SysUser, error)

	// List retrieves all users, newest first
	List(ctx context.Context) ([]domain.SysUser, error)

	// Updates applies a partial field update
	Updates(ctx context.Context, id int64, values map[string]interface{}) error

	// TouchLogin records a successful login time
	TouchLogin(ctx context.Context, id int64) error
}

// ProductRepository handles product persistence. Every non-admin accessor
// applies the ownership filter; admin variants bypass it but not existence
// checks.
type ProductRepository interface {
	// Create inserts a new product
	Create(ctx context.Context, product *domain.Product) error

	// GetOwned retrieves a product enforcing ownership
	GetOwned(ctx context.Context, id, userID int64) (*domain.Product, error)

	// Get retrieves a product without the ownership filter (admin reads)
	Get(ctx context.Context, id int64) (*domain.Product, error)

	// ListByUser retrieves the light list projection for one owner
	ListByUser(ctx context.Context, userID int64) ([]domain.ProductListItem, error)

	// ListAll retrieves the light list projection across owners (admin)
	ListAll(ctx context.Context) ([]domain.ProductListItem, error)

	// CountByUser counts products owned by a user
	CountByUser(ctx context.Context, userID int64) (int64, error)

	// Rename updates the display name enforcing ownership
	Rename(ctx context.Context, id, userID int64, name string) error

	// PatchField updates a single whitelisted column enforcing ownership.
	// The write is a plain idempotent overwrite keyed by (product, column).
	PatchField(ctx context.Context, id, userID int64, column, value string) error

	// DeleteOwned removes a product enforcing ownership
	DeleteOwned(ctx context.Context, id, userID int64) error

	// Delete removes a product without the ownership filter (admin)
	Delete(ctx context.Context, id int64) error
}
