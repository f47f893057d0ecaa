package store

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/launchpadhq/launchpad/internal/domain"
	"github.com/launchpadhq/launchpad/internal/errs"
	"github.com/launchpadhq/launchpad/pkg/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared",
		strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(domain.Tables...))
	return db
}

func seedProduct(t *testing.T, repo ProductRepository, userID int64, name string) *domain.Product {
	t.Helper()
	product := &domain.Product{
		ID:      common.UUIDint64(),
		UserId:  userID,
		Name:    name,
		RawText: "raw",
	}
	require.NoError(t, repo.Create(context.Background(), product))
	return product
}

func TestProductOwnershipIsolation(t *testing.T) {
	repo := NewGormProductRepository(newTestDB(t))
	ctx := context.Background()

	const alice, bob = int64(1), int64(2)
	owned := seedProduct(t, repo, alice, "alice widget")
	seedProduct(t, repo, bob, "bob widget")

	// Reads across the ownership boundary look identical to missing rows.
	_, err := repo.GetOwned(ctx, owned.ID, bob)
	assert.Equal(t, errs.KindNotFound, errs.KindOf(err))

	got, err := repo.GetOwned(ctx, owned.ID, alice)
	require.NoError(t, err)
	assert.Equal(t, "alice widget", got.Name)

	items, err := repo.ListByUser(ctx, alice)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, owned.ID, items[0].ID)

	// Writes across the boundary mutate nothing.
	err = repo.Rename(ctx, owned.ID, bob, "stolen")
	assert.Equal(t, errs.KindNotFound, errs.KindOf(err))
	err = repo.PatchField(ctx, owned.ID, bob, "ad_copy", "x")
	assert.Equal(t, errs.KindNotFound, errs.KindOf(err))
	err = repo.DeleteOwned(ctx, owned.ID, bob)
	assert.Equal(t, errs.KindNotFound, errs.KindOf(err))

	got, err = repo.GetOwned(ctx, owned.ID, alice)
	require.NoError(t, err)
	assert.Equal(t, "alice widget", got.Name)
	assert.Empty(t, got.AdCopy)
}

func TestPatchFieldWhitelist(t *testing.T) {
	repo := NewGormProductRepository(newTestDB(t))
	ctx := context.Background()
	product := seedProduct(t, repo, 1, "widget")

	require.NoError(t, repo.PatchField(ctx, product.ID, 1, "market_analysis", "analysis"))
	got, err := repo.GetOwned(ctx, product.ID, 1)
	require.NoError(t, err)
	assert.Equal(t, "analysis", got.MarketAnalysis)

	// Overwrite is idempotent.
	require.NoError(t, repo.PatchField(ctx, product.ID, 1, "market_analysis", "analysis"))
	got, err = repo.GetOwned(ctx, product.ID, 1)
	require.NoError(t, err)
	assert.Equal(t, "analysis", got.MarketAnalysis)

	for _, column := range []string{"name", "user_id", "raw_text", "credits"} {
		err := repo.PatchField(ctx, product.ID, 1, column, "x")
		assert.Equal(t, errs.KindValidation, errs.KindOf(err), column)
	}
}

func TestProductDelete(t *testing.T) {
	repo := NewGormProductRepository(newTestDB(t))
	ctx := context.Background()
	product := seedProduct(t, repo, 1, "widget")

	require.NoError(t, repo.DeleteOwned(ctx, product.ID, 1))
	_, err := repo.GetOwned(ctx, product.ID, 1)
	assert.Equal(t, errs.KindNotFound, errs.KindOf(err))

	// Admin delete bypasses ownership.
	other := seedProduct(t, repo, 2, "other widget")
	require.NoError(t, repo.Delete(ctx, other.ID))
	_, err = repo.Get(ctx, other.ID)
	assert.Equal(t, errs.KindNotFound, errs.KindOf(err))
}

func TestUserRepository(t *testing.T) {
	repo := NewGormUserRepository(newTestDB(t))
	ctx := context.Background()

	user := &domain.SysUser{
		ID:       common.UUIDint64(),
		Email:    "owner@example.com",
		Password: "hash",
		Role:     domain.RoleStandard,
		Credits:  2,
		Status:   common.ENABLED,
	}
	require.NoError(t, repo.Create(ctx, user))

	// The unique index rejects a second account on the same email.
	dup := &domain.SysUser{
		ID: common.UUIDint64(), Email: "owner@example.com",
		Password: "hash", Role: domain.RoleStandard, Status: common.ENABLED,
	}
	assert.Error(t, repo.Create(ctx, dup))

	byEmail, err := repo.GetByEmail(ctx, "owner@example.com")
	require.NoError(t, err)
	assert.Equal(t, user.ID, byEmail.ID)

	_, err = repo.GetByEmail(ctx, "nobody@example.com")
	assert.Equal(t, errs.KindNotFound, errs.KindOf(err))

	require.NoError(t, repo.Updates(ctx, user.ID, map[string]interface{}{"credits": int64(7)}))
	byID, err := repo.GetByID(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(7), byID.Credits)

	err = repo.Updates(ctx, user.ID+1, map[string]interface{}{"credits": int64(1)})
	assert.Equal(t, errs.KindNotFound, errs.KindOf(err))
}
