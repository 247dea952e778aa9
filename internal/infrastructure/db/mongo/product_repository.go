package mongo

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/storefront/storefront-api/internal/core/domain"
	"github.com/storefront/storefront-api/internal/core/ports"
)

type ProductRepository struct {
	coll *mongo.Collection
}

func NewProductRepository(db *mongo.Database) *ProductRepository {
	return &ProductRepository{coll: db.Collection(collectionProducts)}
}

type mongoProduct struct {
	ID           primitive.ObjectID `bson:"_id,omitempty"`
	Name         string             `bson:"name"`
	Description  string             `bson:"description"`
	Price        float64            `bson:"price"`
	Category     string             `bson:"category"`
	Seller       string             `bson:"seller"`
	Stock        int                `bson:"stock"`
	Images       []domain.Image     `bson:"images"`
	Ratings      float64            `bson:"ratings"`
	NumOfReviews int                `bson:"num_of_reviews"`
	CreatedAt    time.Time          `bson:"created_at"`
}

func newMongoProduct(p *domain.Product) *mongoProduct {
	images := p.Images
	if images == nil {
		images = []domain.Image{}
	}
	return &mongoProduct{
		ID:           primitive.NewObjectID(),
		Name:         p.Name,
		Description:  p.Description,
		Price:        p.Price,
		Category:     p.Category,
		Seller:       p.Seller,
		Stock:        p.Stock,
		Images:       images,
		Ratings:      p.Ratings,
		NumOfReviews: p.NumOfReviews,
		CreatedAt:    p.CreatedAt,
	}
}

func (m *mongoProduct) toDomain() *domain.Product {
	return &domain.Product{
		ID:           m.ID.Hex(),
		Name:         m.Name,
		Description:  m.Description,
		Price:        m.Price,
		Category:     m.Category,
		Seller:       m.Seller,
		Stock:        m.Stock,
		Images:       m.Images,
		Ratings:      m.Ratings,
		NumOfReviews: m.NumOfReviews,
		CreatedAt:    m.CreatedAt.UTC(),
	}
}

func (r *ProductRepository) Create(ctx context.Context, p *domain.Product) (*domain.Product, error) {
	ctx, cancel := opContext(ctx)
	defer cancel()

	doc := newMongoProduct(p)
	if _, err := r.coll.InsertOne(ctx, doc); err != nil {
		return nil, fmt.Errorf("insert product: %w", err)
	}
	return doc.toDomain(), nil
}

func (r *ProductRepository) FindByID(ctx context.Context, id string) (*domain.Product, error) {
	oid, ok := objectID(id)
	if !ok {
		return nil, domain.ErrProductNotFound
	}
	ctx, cancel := opContext(ctx)
	defer cancel()

	var doc mongoProduct
	if err := r.coll.FindOne(ctx, bson.M{"_id": oid}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrProductNotFound
		}
		return nil, fmt.Errorf("find product: %w", err)
	}
	return doc.toDomain(), nil
}

// productFilter builds the listing query: a case-insensitive substring match
// on name plus an exact category.
func productFilter(f ports.ListProductsFilter) bson.M {
	filter := bson.M{}
	if f.Keyword != "" {
		filter["name"] = primitive.Regex{Pattern: regexp.QuoteMeta(f.Keyword), Options: "i"}
	}
	if f.Category != "" {
		filter["category"] = f.Category
	}
	return filter
}

func (r *ProductRepository) List(ctx context.Context, f ports.ListProductsFilter) ([]*domain.Product, int64, error) {
	ctx, cancel := opContext(ctx)
	defer cancel()

	filter := productFilter(f)

	total, err := r.coll.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("count products: %w", err)
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}, {Key: "_id", Value: 1}}).
		SetSkip(int64((f.Page - 1) * f.Limit)).
		SetLimit(int64(f.Limit))

	cursor, err := r.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, 0, fmt.Errorf("list products: %w", err)
	}
	defer cursor.Close(ctx)

	var docs []mongoProduct
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, 0, fmt.Errorf("decode products: %w", err)
	}

	products := make([]*domain.Product, 0, len(docs))
	for i := range docs {
		products = append(products, docs[i].toDomain())
	}
	return products, total, nil
}

// ReplaceAll empties the collection and inserts products.
func (r *ProductRepository) ReplaceAll(ctx context.Context, products []*domain.Product) error {
	ctx, cancel := context.WithTimeout(ctx, indexTimeout)
	defer cancel()

	if _, err := r.coll.DeleteMany(ctx, bson.M{}); err != nil {
		return fmt.Errorf("clear products: %w", err)
	}
	if len(products) == 0 {
		return nil
	}

	docs := make([]interface{}, 0, len(products))
	for _, p := range products {
		docs = append(docs, newMongoProduct(p))
	}
	if _, err := r.coll.InsertMany(ctx, docs); err != nil {
		return fmt.Errorf("insert products: %w", err)
	}
	return nil
}

func (r *ProductRepository) EnsureIndexes(ctx context.Context) error {
	_, err := r.coll.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "category", Value: 1}}},
		{Keys: bson.D{{Key: "created_at", Value: -1}}},
	})
	if err != nil {
		return fmt.Errorf("product indexes: %w", err)
	}
	return nil
}
