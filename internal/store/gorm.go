package store

import (
	"context"
	"errors"
	"time"

	"github.com/launchpadhq/launchpad/internal/domain"
	"github.com/launchpadhq/launchpad/internal/errs"
	"gorm.io/gorm"
)

// Columns a PatchField call may touch. Anything else is rejected before it
// reaches SQL.
var patchableColumns = map[string]bool{
	"market_analysis":      true,
	"product_page_content": true,
	"image_prompts":        true,
	"ad_copy":              true,
	"generated_images":     true,
	"image_base64":         true,
}

// GormUserRepository is the GORM implementation of UserRepository
type GormUserRepository struct {
	db *gorm.DB
}

// NewGormUserRepository creates a new GORM-based user repository
func NewGormUserRepository(db *gorm.DB) *GormUserRepository {
	return &GormUserRepository{db: db}
}

func (r *GormUserRepository) Create(ctx context.Context, user *domain.SysUser) error {
	return r.db.WithContext(ctx).Create(user).Error
}

func (r *GormUserRepository) GetByID(ctx context.Context, id int64) (*domain.SysUser, error) {
	var user domain.SysUser
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, errs.NotFound("user not found")
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *GormUserRepository) GetByEmail(ctx context.Context, email string) (*domain.SysUser, error) {
	var user domain.SysUser
	err := r.db.WithContext(ctx).Where("email = ?", email).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, errs.NotFound("user not found")
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *GormUserRepository) List(ctx context.Context) ([]domain.SysUser, error) {
	var users []domain.SysUser
	err := r.db.WithContext(ctx).Order("created_at DESC").Find(&users).Error
	return users, err
}

func (r *GormUserRepository) Updates(ctx context.Context, id int64, values map[string]interface{}) error {
	values["updated_at"] = time.Now()
	result := r.db.WithContext(ctx).Model(&domain.SysUser{}).Where("id = ?", id).Updates(values)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return errs.NotFound("user not found")
	}
	return nil
}

func (r *GormUserRepository) TouchLogin(ctx context.Context, id int64) error {
	return r.db.WithContext(ctx).Model(&domain.SysUser{}).
		Where("id = ?", id).
		UpdateColumn("last_login", time.Now()).Error
}

// GormProductRepository is the GORM implementation of ProductRepository
type GormProductRepository struct {
	db *gorm.DB
}

// NewGormProductRepository creates a new GORM-based product repository
func NewGormProductRepository(db *gorm.DB) *GormProductRepository {
	return &GormProductRepository{db: db}
}

func (r *GormProductRepository) Create(ctx context.Context, product *domain.Product) error {
	return r.db.WithContext(ctx).Create(product).Error
}

func (r *GormProductRepository) GetOwned(ctx context.Context, id, userID int64) (*domain.Product, error) {
	var product domain.Product
	err := r.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", id, userID).
		First(&product).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, errs.NotFound("product not found")
	}
	if err != nil {
		return nil, err
	}
	return &product, nil
}

func (r *GormProductRepository) Get(ctx context.Context, id int64) (*domain.Product, error) {
	var product domain.Product
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&product).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, errs.NotFound("product not found")
	}
	if err != nil {
		return nil, err
	}
	return &product, nil
}

func (r *GormProductRepository) ListByUser(ctx context.Context, userID int64) ([]domain.ProductListItem, error) {
	var items []domain.ProductListItem
	err := r.db.WithContext(ctx).Model(&domain.Product{}).
		Select("id", "user_id", "name", "created_at", "updated_at").
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&items).Error
	return items, err
}

func (r *GormProductRepository) ListAll(ctx context.Context) ([]domain.ProductListItem, error) {
	var items []domain.ProductListItem
	err := r.db.WithContext(ctx).Model(&domain.Product{}).
		Select("id", "user_id", "name", "created_at", "updated_at").
		Order("created_at DESC").
		Find(&items).Error
	return items, err
}

func (r *GormProductRepository) CountByUser(ctx context.Context, userID int64) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&domain.Product{}).
		Where("user_id = ?", userID).Count(&count).Error
	return count, err
}

func (r *GormProductRepository) Rename(ctx context.Context, id, userID int64, name string) error {
	result := r.db.WithContext(ctx).Model(&domain.Product{}).
		Where("id = ? AND user_id = ?", id, userID).
		Updates(map[string]interface{}{"name": name, "updated_at": time.Now()})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return errs.NotFound("product not found")
	}
	return nil
}

func (r *GormProductRepository) PatchField(ctx context.Context, id, userID int64, column, value string) error {
	if !patchableColumns[column] {
		return errs.Validation("field is not updatable: " + column)
	}
	result := r.db.WithContext(ctx).Model(&domain.Product{}).
		Where("id = ? AND user_id = ?", id, userID).
		Updates(map[string]interface{}{column: value, "updated_at": time.Now()})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return errs.NotFound("product not found")
	}
	return nil
}

func (r *GormProductRepository) DeleteOwned(ctx context.Context, id, userID int64) error {
	result := r.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", id, userID).
		Delete(&domain.Product{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return errs.NotFound("product not found")
	}
	return nil
}

func (r *GormProductRepository) Delete(ctx context.Context, id int64) error {
	result := r.db.WithContext(ctx).Where("id = ?", id).Delete(&domain.Product{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return errs.NotFound("product not found")
	}
	return nil
}
