package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/storefront/commerce/internal/core/domain"
)

const collectionProducts = "products"

type ProductRepository struct {
	col *mongo.Collection
}

func NewProductRepository(db *mongo.Database) *ProductRepository {
	return &ProductRepository{col: db.Collection(collectionProducts)}
}

type productDoc struct {
	ID          primitive.ObjectID   `bson:"_id,omitempty"`
	Name        string               `bson:"name"`
	Slug        string               `bson:"slug"`
	Description string               `bson:"description"`
	Price       primitive.Decimal128 `bson:"price"`
	StockCount  int                  `bson:"stock_count"`
	Category    string               `bson:"category"`
	Tags        []string             `bson:"tags"`
	CreatedAt   time.Time            `bson:"created_at"`
	UpdatedAt   time.Time            `bson:"updated_at"`
	DeletedAt   *time.Time           `bson:"deleted_at,omitempty"`
}

func (d *productDoc) toDomain() *domain.Product {
	return &domain.Product{
		ID:          d.ID.Hex(),
		Name:        d.Name,
		Slug:        d.Slug,
		Description: d.Description,
		Price:       fromDecimal128(d.Price),
		StockCount:  d.StockCount,
		Category:    d.Category,
		Tags:        d.Tags,
		CreatedAt:   d.CreatedAt,
		UpdatedAt:   d.UpdatedAt,
		DeletedAt:   d.DeletedAt,
	}
}

// active matches documents that have not been soft-deleted.
func active(filter bson.M) bson.M {
	filter["deleted_at"] = nil
	return filter
}

func (r *ProductRepository) Create(ctx context.Context, p *domain.Product) (*domain.Product, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	price, err := toDecimal128(p.Price)
	if err != nil {
		return nil, err
	}
	doc := productDoc{
		ID:          primitive.NewObjectID(),
		Name:        p.Name,
		Slug:        p.Slug,
		Description: p.Description,
		Price:       price,
		StockCount:  p.StockCount,
		Category:    p.Category,
		Tags:        p.Tags,
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
	}
	if doc.Tags == nil {
		doc.Tags = []string{}
	}
	if _, err := r.col.InsertOne(ctx, doc); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, domain.ErrProductExists
		}
		return nil, fmt.Errorf("insert product: %w", err)
	}
	return doc.toDomain(), nil
}

func (r *ProductRepository) FindByID(ctx context.Context, id string) (*domain.Product, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, domain.ErrProductNotFound
	}
	return r.findOne(ctx, bson.M{"_id": oid})
}

func (r *ProductRepository) FindBySlug(ctx context.Context, slug string) (*domain.Product, error) {
	return r.findOne(ctx, bson.M{"slug": slug})
}

func (r *ProductRepository) findOne(ctx context.Context, filter bson.M) (*domain.Product, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var doc productDoc
	if err := r.col.FindOne(ctx, active(filter)).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrProductNotFound
		}
		return nil, fmt.Errorf("find product: %w", err)
	}
	return doc.toDomain(), nil
}

func (r *ProductRepository) Update(ctx context.Context, id string, patch domain.ProductPatch) (*domain.Product, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, domain.ErrProductNotFound
	}

	set := bson.M{"updated_at": time.Now().UTC()}
	if patch.Name != nil {
		set["name"] = *patch.Name
	}
	if patch.Slug != nil {
		set["slug"] = *patch.Slug
	}
	if patch.Description != nil {
		set["description"] = *patch.Description
	}
	if patch.Price != nil {
		price, err := toDecimal128(*patch.Price)
		if err != nil {
			return nil, err
		}
		set["price"] = price
	}
	if patch.StockCount != nil {
		set["stock_count"] = *patch.StockCount
	}
	if patch.Category != nil {
		set["category"] = *patch.Category
	}
	if len(patch.Tags) > 0 {
		set["tags"] = patch.Tags
	}

	doc, err := r.findOneAndUpdate(ctx, bson.M{"_id": oid}, bson.M{"$set": set})
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, domain.ErrProductExists
		}
		return nil, err
	}
	return doc, nil
}

func (r *ProductRepository) SoftDelete(ctx context.Context, id string) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return domain.ErrProductNotFound
	}
	now := time.Now().UTC()
	_, err = r.findOneAndUpdate(ctx, bson.M{"_id": oid}, bson.M{"$set": bson.M{"deleted_at": now, "updated_at": now}})
	return err
}

// AdjustStock applies $inc guarded by stock_count >= -delta, so the
// check and the decrement are a single atomic operation.
func (r *ProductRepository) AdjustStock(ctx context.Context, id string, delta int) (*domain.Product, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, domain.ErrProductNotFound
	}

	filter := bson.M{"_id": oid}
	if delta < 0 {
		filter["stock_count"] = bson.M{"$gte": -delta}
	}
	update := bson.M{
		"$inc": bson.M{"stock_count": delta},
		"$set": bson.M{"updated_at": time.Now().UTC()},
	}

	doc, err := r.findOneAndUpdate(ctx, filter, update)
	if errors.Is(err, domain.ErrProductNotFound) && delta < 0 {
		if _, findErr := r.FindByID(ctx, id); findErr == nil {
			return nil, domain.ErrInsufficientStock
		}
	}
	return doc, err
}

func (r *ProductRepository) findOneAndUpdate(ctx context.Context, filter, update bson.M) (*domain.Product, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var doc productDoc
	if err := r.col.FindOneAndUpdate(ctx, active(filter), update, opts).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrProductNotFound
		}
		return nil, fmt.Errorf("update product: %w", err)
	}
	return doc.toDomain(), nil
}

// EnsureIndexes creates the indexes the catalog relies on.
func (r *ProductRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	indexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "slug", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "category", Value: 1}}},
		{Keys: bson.D{{Key: "deleted_at", Value: 1}}},
	}

	_, err := r.col.Indexes().CreateMany(ctx, indexes)
	return err
}
