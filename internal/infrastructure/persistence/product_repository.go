package persistence

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/bookingplatform/backend/internal/domain/catalog"
	"github.com/bookingplatform/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormProductRepository implements catalog.ProductRepository using GORM
type GormProductRepository struct {
	db  *gorm.DB
	now func() time.Time
}

var _ catalog.ProductRepository = (*GormProductRepository)(nil)

// NewGormProductRepository creates a new GormProductRepository
func NewGormProductRepository(db *gorm.DB) *GormProductRepository {
	return &GormProductRepository{db: db, now: time.Now}
}

func (r *GormProductRepository) withChildren(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).
		Preload("Attributes", func(db *gorm.DB) *gorm.DB { return db.Order("id") }).
		Preload("Contents", func(db *gorm.DB) *gorm.DB { return db.Order("id") })
}

// FindByID finds a product by its ID
func (r *GormProductRepository) FindByID(ctx context.Context, id int64) (*catalog.Product, error) {
	var model models.ProductModel
	if err := r.withChildren(ctx).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: product %d", catalog.ErrNotFound, id)
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByNaturalKey finds a partner product by (OriginID, Provider)
func (r *GormProductRepository) FindByNaturalKey(ctx context.Context, key catalog.NaturalKey) (*catalog.Product, error) {
	var model models.ProductModel
	if err := r.withChildren(ctx).
		Where("origin_id = ? AND provider = ?", key.OriginID, key.Provider).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: product %s", catalog.ErrNotFound, key)
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindAll returns every stored product ordered by ID
func (r *GormProductRepository) FindAll(ctx context.Context) ([]catalog.Product, error) {
	return r.find(r.withChildren(ctx).Order("id"))
}

// FindInternal returns the locally owned products
func (r *GormProductRepository) FindInternal(ctx context.Context) ([]catalog.Product, error) {
	return r.find(r.withChildren(ctx).
		Where("provider = ? AND origin_id = ?", "", catalog.NoOrigin).
		Order("id"))
}

// FindByOwner returns the products of one owner
func (r *GormProductRepository) FindByOwner(ctx context.Context, owner int64) ([]catalog.Product, error) {
	return r.find(r.withChildren(ctx).Where("owner = ?", owner).Order("id"))
}

func (r *GormProductRepository) find(query *gorm.DB) ([]catalog.Product, error) {
	var rows []models.ProductModel
	if err := query.Find(&rows).Error; err != nil {
		return nil, err
	}
	products := make([]catalog.Product, 0, len(rows))
	for i := range rows {
		products = append(products, *rows[i].ToDomain())
	}
	return products, nil
}

// IsInternal evaluates the ownership rule against the stored row
func (r *GormProductRepository) IsInternal(ctx context.Context, id int64) (bool, error) {
	var model models.ProductModel
	if err := r.db.WithContext(ctx).
		Select("id", "provider", "origin_id").
		First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return false, fmt.Errorf("%w: product %d", catalog.ErrNotFound, id)
		}
		return false, err
	}
	p := catalog.Product{Provider: model.Provider, OriginID: model.OriginID}
	return p.IsInternal(), nil
}

// TryDecrement subtracts qty in a single guarded UPDATE so concurrent sales
// can never drive the stored quantity below zero.
func (r *GormProductRepository) TryDecrement(ctx context.Context, id int64, qty int) (bool, error) {
	if qty <= 0 {
		return false, catalog.ErrInvalidQuantity
	}
	result := r.db.WithContext(ctx).
		Model(&models.ProductModel{}).
		Where("id = ? AND available_quantity >= ?", id, qty).
		Updates(map[string]any{
			"available_quantity": gorm.Expr("available_quantity - ?", qty),
			"updated_at":         r.now(),
		})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected == 1, nil
}

// Create inserts a product together with its attributes and contents
func (r *GormProductRepository) Create(ctx context.Context, product *catalog.Product) error {
	now := r.now()
	if product.CreatedAt.IsZero() {
		product.CreatedAt = now
	}
	product.UpdatedAt = now
	product.EnsureCollections()

	model := models.ProductModelFromDomain(product)
	model.ID = 0
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.Create(model).Error
	})
	if err != nil {
		return err
	}
	product.ID = model.ID
	return nil
}

// ReplaceSnapshot persists the overwritten fields of an existing product and
// replaces every partner-tagged child in one transaction. Untagged children
// are left untouched.
func (r *GormProductRepository) ReplaceSnapshot(ctx context.Context, product *catalog.Product) error {
	if product.UpdatedAt.IsZero() {
		product.UpdatedAt = r.now()
	}

	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Model(&models.ProductModel{}).
			Where("id = ?", product.ID).
			Updates(map[string]any{
				"name":               product.Name,
				"description":        product.Description,
				"price":              product.Price,
				"currency":           product.Currency,
				"origin_id":          product.OriginID,
				"provider":           product.Provider,
				"available_quantity": product.AvailableQuantity,
				"owner":              product.Owner,
				"updated_at":         product.UpdatedAt,
			})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return fmt.Errorf("%w: product %d", catalog.ErrNotFound, product.ID)
		}

		if err := tx.Where("product_id = ? AND provider <> ?", product.ID, "").
			Delete(&models.ProductAttributeModel{}).Error; err != nil {
			return err
		}
		if err := tx.Where("product_id = ? AND provider <> ?", product.ID, "").
			Delete(&models.ProductContentModel{}).Error; err != nil {
			return err
		}

		var attrs []catalog.Attribute
		for _, a := range product.Attributes {
			if a.Provider != "" {
				attrs = append(attrs, a)
			}
		}
		if len(attrs) > 0 {
			rows := models.AttributeModelsFromDomain(product.ID, attrs)
			if err := tx.Create(&rows).Error; err != nil {
				return err
			}
		}

		var contents []catalog.Content
		for _, c := range product.Contents {
			if c.Provider != "" {
				contents = append(contents, c)
			}
		}
		if len(contents) > 0 {
			rows := models.ContentModelsFromDomain(product.ID, contents)
			if err := tx.Create(&rows).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

// Delete removes a product and its children
func (r *GormProductRepository) Delete(ctx context.Context, id int64) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("product_id = ?", id).Delete(&models.ProductAttributeModel{}).Error; err != nil {
			return err
		}
		if err := tx.Where("product_id = ?", id).Delete(&models.ProductContentModel{}).Error; err != nil {
			return err
		}
		result := tx.Delete(&models.ProductModel{}, "id = ?", id)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return fmt.Errorf("%w: product %d", catalog.ErrNotFound, id)
		}
		return nil
	})
}

// ListCategories returns every category ordered by ID
func (r *GormProductRepository) ListCategories(ctx context.Context) ([]catalog.Category, error) {
	var rows []models.CategoryModel
	if err := r.db.WithContext(ctx).Order("id").Find(&rows).Error; err != nil {
		return nil, err
	}
	categories := make([]catalog.Category, 0, len(rows))
	for i := range rows {
		categories = append(categories, rows[i].ToDomain())
	}
	return categories, nil
}
