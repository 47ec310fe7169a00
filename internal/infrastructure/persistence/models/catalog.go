package models

import (
	"time"

	"github.com/bookingplatform/backend/internal/domain/catalog"
	"github.com/shopspring/decimal"
)

// ProductModel is the persistence model for the Product domain entity.
// The (origin_id, provider) natural key is unique for partner rows only; the
// partial unique index lives in the SQL migrations.
type ProductModel struct {
	ID                int64                   `gorm:"primaryKey;autoIncrement"`
	OriginID          int64                   `gorm:"not null;default:-1;index:idx_products_natural_key,priority:1"`
	Provider          string                  `gorm:"type:varchar(50);not null;default:'';index:idx_products_natural_key,priority:2"`
	Name              string                  `gorm:"type:varchar(200);not null"`
	Description       string                  `gorm:"type:text"`
	AvailableQuantity int                     `gorm:"not null;default:0"`
	Price             decimal.Decimal         `gorm:"type:decimal(18,4);not null;default:0"`
	Currency          string                  `gorm:"type:varchar(3);not null;default:''"`
	Owner             int64                   `gorm:"not null;default:0;index"`
	CreatedBy         int64                   `gorm:"not null;default:0"`
	CategoryID        int64                   `gorm:"not null;default:0;index"`
	Attributes        []ProductAttributeModel `gorm:"foreignKey:ProductID;constraint:OnDelete:CASCADE"`
	Contents          []ProductContentModel   `gorm:"foreignKey:ProductID;constraint:OnDelete:CASCADE"`
	CreatedAt         time.Time               `gorm:"not null"`
	UpdatedAt         time.Time               `gorm:"not null"`
}

// TableName returns the table name for GORM
func (ProductModel) TableName() string {
	return "products"
}

// ToDomain converts the persistence model to a domain Product entity.
func (m *ProductModel) ToDomain() *catalog.Product {
	p := &catalog.Product{
		ID:                m.ID,
		OriginID:          m.OriginID,
		Provider:          m.Provider,
		Name:              m.Name,
		Description:       m.Description,
		AvailableQuantity: m.AvailableQuantity,
		Price:             m.Price,
		Currency:          m.Currency,
		Owner:             m.Owner,
		CreatedBy:         m.CreatedBy,
		CategoryID:        m.CategoryID,
		Attributes:        make([]catalog.Attribute, 0, len(m.Attributes)),
		Contents:          make([]catalog.Content, 0, len(m.Contents)),
		CreatedAt:         m.CreatedAt,
		UpdatedAt:         m.UpdatedAt,
	}
	for _, a := range m.Attributes {
		p.Attributes = append(p.Attributes, a.ToDomain())
	}
	for _, c := range m.Contents {
		p.Contents = append(p.Contents, c.ToDomain())
	}
	return p
}

// FromDomain populates the persistence model from a domain Product entity.
func (m *ProductModel) FromDomain(p *catalog.Product) {
	m.ID = p.ID
	m.OriginID = p.OriginID
	m.Provider = p.Provider
	m.Name = p.Name
	m.Description = p.Description
	m.AvailableQuantity = p.AvailableQuantity
	m.Price = p.Price
	m.Currency = p.Currency
	m.Owner = p.Owner
	m.CreatedBy = p.CreatedBy
	m.CategoryID = p.CategoryID
	m.CreatedAt = p.CreatedAt
	m.UpdatedAt = p.UpdatedAt
	m.Attributes = AttributeModelsFromDomain(p.ID, p.Attributes)
	m.Contents = ContentModelsFromDomain(p.ID, p.Contents)
}

// ProductModelFromDomain creates a new persistence model from a domain Product entity.
func ProductModelFromDomain(p *catalog.Product) *ProductModel {
	m := &ProductModel{}
	m.FromDomain(p)
	return m
}

// ProductAttributeModel is the persistence model for a product attribute.
type ProductAttributeModel struct {
	ID        int64  `gorm:"primaryKey;autoIncrement"`
	ProductID int64  `gorm:"not null;index:idx_product_attributes_product_provider,priority:1"`
	Key       string `gorm:"type:varchar(100);not null"`
	Value     string `gorm:"type:text"`
	Provider  string `gorm:"type:varchar(50);not null;default:'';index:idx_product_attributes_product_provider,priority:2"`
}

// TableName returns the table name for GORM
func (ProductAttributeModel) TableName() string {
	return "product_attributes"
}

// ToDomain converts the model to a domain Attribute
func (m *ProductAttributeModel) ToDomain() catalog.Attribute {
	return catalog.Attribute{Key: m.Key, Value: m.Value, Provider: m.Provider}
}

// AttributeModelsFromDomain maps domain attributes to rows owned by productID
func AttributeModelsFromDomain(productID int64, attrs []catalog.Attribute) []ProductAttributeModel {
	out := make([]ProductAttributeModel, 0, len(attrs))
	for _, a := range attrs {
		out = append(out, ProductAttributeModel{ProductID: productID, Key: a.Key, Value: a.Value, Provider: a.Provider})
	}
	return out
}

// ProductContentModel is the persistence model for a product content asset.
type ProductContentModel struct {
	ID          int64  `gorm:"primaryKey;autoIncrement"`
	ProductID   int64  `gorm:"not null;index:idx_product_contents_product_provider,priority:1"`
	ContentID   int64  `gorm:"not null;default:0"`
	Type        string `gorm:"type:varchar(50);not null;default:''"`
	URL         string `gorm:"column:url;type:text"`
	Description string `gorm:"type:text"`
	Provider    string `gorm:"type:varchar(50);not null;default:'';index:idx_product_contents_product_provider,priority:2"`
}

// TableName returns the table name for GORM
func (ProductContentModel) TableName() string {
	return "product_contents"
}

// ToDomain converts the model to a domain Content
func (m *ProductContentModel) ToDomain() catalog.Content {
	return catalog.Content{
		ContentID:   m.ContentID,
		Type:        m.Type,
		URL:         m.URL,
		Description: m.Description,
		Provider:    m.Provider,
	}
}

// ContentModelsFromDomain maps domain contents to rows owned by productID
func ContentModelsFromDomain(productID int64, contents []catalog.Content) []ProductContentModel {
	out := make([]ProductContentModel, 0, len(contents))
	for _, c := range contents {
		out = append(out, ProductContentModel{
			ProductID:   productID,
			ContentID:   c.ContentID,
			Type:        c.Type,
			URL:         c.URL,
			Description: c.Description,
			Provider:    c.Provider,
		})
	}
	return out
}

// CategoryModel is the persistence model for the Category domain entity.
type CategoryModel struct {
	ID          int64  `gorm:"primaryKey;autoIncrement"`
	Name        string `gorm:"type:varchar(100);not null"`
	Description string `gorm:"type:text"`
}

// TableName returns the table name for GORM
func (CategoryModel) TableName() string {
	return "product_categories"
}

// ToDomain converts the persistence model to a domain Category entity.
func (m *CategoryModel) ToDomain() catalog.Category {
	return catalog.Category{ID: m.ID, Name: m.Name, Description: m.Description}
}

// AllModels returns every model for AutoMigrate in tests and sqlite mode
func AllModels() []any {
	return []any{
		&CategoryModel{},
		&ProductModel{},
		&ProductAttributeModel{},
		&ProductContentModel{},
	}
}
