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

	"github.com/storefront/storefront-api/internal/core/domain"
	"github.com/storefront/storefront-api/internal/core/ports"
)

type OrderRepository struct {
	client   *mongo.Client
	orders   *mongo.Collection
	products *mongo.Collection
}

func NewOrderRepository(db *mongo.Database) *OrderRepository {
	return &OrderRepository{
		client:   db.Client(),
		orders:   db.Collection(collectionOrders),
		products: db.Collection(collectionProducts),
	}
}

type mongoOrderItem struct {
	Product  primitive.ObjectID `bson:"product"`
	Name     string             `bson:"name"`
	Price    float64            `bson:"price"`
	Image    string             `bson:"image,omitempty"`
	Quantity int                `bson:"quantity"`
}

type mongoShippingInfo struct {
	Address string `bson:"address"`
	City    string `bson:"city"`
	PhoneNo string `bson:"phone_no"`
	ZipCode string `bson:"zip_code"`
	Country string `bson:"country"`
}

type mongoPaymentInfo struct {
	ID     string `bson:"id,omitempty"`
	Status string `bson:"status,omitempty"`
}

type mongoOrder struct {
	ID             primitive.ObjectID `bson:"_id,omitempty"`
	Items          []mongoOrderItem   `bson:"order_items"`
	ShippingInfo   mongoShippingInfo  `bson:"shipping_info"`
	ItemsPrice     float64            `bson:"items_price"`
	TaxAmount      float64            `bson:"tax_amount"`
	ShippingAmount float64            `bson:"shipping_amount"`
	TotalAmount    float64            `bson:"total_amount"`
	PaymentMethod  string             `bson:"payment_method"`
	PaymentInfo    mongoPaymentInfo   `bson:"payment_info"`
	Status         string             `bson:"order_status"`
	User           primitive.ObjectID `bson:"user"`
	StockDeducted  bool               `bson:"stock_deducted"`
	DeliveredAt    *time.Time         `bson:"delivered_at,omitempty"`
	CreatedAt      time.Time          `bson:"created_at"`
	UpdatedAt      time.Time          `bson:"updated_at"`
}

func newMongoOrder(o *domain.Order) (*mongoOrder, error) {
	user, ok := objectID(o.UserID)
	if !ok {
		return nil, domain.ErrUserNotFound
	}

	doc := &mongoOrder{
		Items: make([]mongoOrderItem, 0, len(o.Items)),
		ShippingInfo: mongoShippingInfo{
			Address: o.ShippingInfo.Address,
			City:    o.ShippingInfo.City,
			PhoneNo: o.ShippingInfo.PhoneNo,
			ZipCode: o.ShippingInfo.ZipCode,
			Country: o.ShippingInfo.Country,
		},
		ItemsPrice:     o.ItemsPrice,
		TaxAmount:      o.TaxAmount,
		ShippingAmount: o.ShippingAmount,
		TotalAmount:    o.TotalAmount,
		PaymentMethod:  o.PaymentMethod,
		PaymentInfo:    mongoPaymentInfo{ID: o.PaymentInfo.ID, Status: o.PaymentInfo.Status},
		Status:         string(o.Status),
		User:           user,
		StockDeducted:  o.StockDeducted,
		DeliveredAt:    o.DeliveredAt,
		CreatedAt:      o.CreatedAt,
		UpdatedAt:      o.UpdatedAt,
	}

	for _, it := range o.Items {
		product, ok := objectID(it.Product)
		if !ok {
			return nil, domain.Validationf("invalid product id %q", it.Product)
		}
		doc.Items = append(doc.Items, mongoOrderItem{
			Product:  product,
			Name:     it.Name,
			Price:    it.Price,
			Image:    it.Image,
			Quantity: it.Quantity,
		})
	}
	return doc, nil
}

func (m *mongoOrder) toDomain() *domain.Order {
	o := &domain.Order{
		ID:    m.ID.Hex(),
		Items: make([]domain.OrderItem, 0, len(m.Items)),
		ShippingInfo: domain.ShippingInfo{
			Address: m.ShippingInfo.Address,
			City:    m.ShippingInfo.City,
			PhoneNo: m.ShippingInfo.PhoneNo,
			ZipCode: m.ShippingInfo.ZipCode,
			Country: m.ShippingInfo.Country,
		},
		ItemsPrice:     m.ItemsPrice,
		TaxAmount:      m.TaxAmount,
		ShippingAmount: m.ShippingAmount,
		TotalAmount:    m.TotalAmount,
		PaymentMethod:  m.PaymentMethod,
		PaymentInfo:    domain.PaymentInfo{ID: m.PaymentInfo.ID, Status: m.PaymentInfo.Status},
		Status:         domain.OrderStatus(m.Status),
		UserID:         m.User.Hex(),
		StockDeducted:  m.StockDeducted,
		CreatedAt:      m.CreatedAt.UTC(),
		UpdatedAt:      m.UpdatedAt.UTC(),
	}
	if m.DeliveredAt != nil {
		t := m.DeliveredAt.UTC()
		o.DeliveredAt = &t
	}
	for _, it := range m.Items {
		o.Items = append(o.Items, domain.OrderItem{
			Product:  it.Product.Hex(),
			Name:     it.Name,
			Price:    it.Price,
			Image:    it.Image,
			Quantity: it.Quantity,
		})
	}
	return o
}

func (r *OrderRepository) Create(ctx context.Context, order *domain.Order) (*domain.Order, error) {
	doc, err := newMongoOrder(order)
	if err != nil {
		return nil, err
	}
	doc.ID = primitive.NewObjectID()

	ctx, cancel := opContext(ctx)
	defer cancel()

	if _, err := r.orders.InsertOne(ctx, doc); err != nil {
		return nil, fmt.Errorf("insert order: %w", err)
	}
	return doc.toDomain(), nil
}

func (r *OrderRepository) FindByID(ctx context.Context, id string) (*domain.Order, error) {
	oid, ok := objectID(id)
	if !ok {
		return nil, domain.ErrOrderNotFound
	}
	ctx, cancel := opContext(ctx)
	defer cancel()

	var doc mongoOrder
	if err := r.orders.FindOne(ctx, bson.M{"_id": oid}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrOrderNotFound
		}
		return nil, fmt.Errorf("find order: %w", err)
	}
	return doc.toDomain(), nil
}

func (r *OrderRepository) ListByUser(ctx context.Context, userID string) ([]*domain.Order, error) {
	oid, ok := objectID(userID)
	if !ok {
		return []*domain.Order{}, nil
	}
	return r.find(ctx, bson.M{"user": oid})
}

func (r *OrderRepository) List(ctx context.Context) ([]*domain.Order, error) {
	return r.find(ctx, bson.M{})
}

func (r *OrderRepository) find(ctx context.Context, filter bson.M) ([]*domain.Order, error) {
	ctx, cancel := opContext(ctx)
	defer cancel()

	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	cursor, err := r.orders.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}
	defer cursor.Close(ctx)

	var docs []mongoOrder
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode orders: %w", err)
	}

	orders := make([]*domain.Order, 0, len(docs))
	for i := range docs {
		orders = append(orders, docs[i].toDomain())
	}
	return orders, nil
}

func (r *OrderRepository) Delete(ctx context.Context, id string) error {
	oid, ok := objectID(id)
	if !ok {
		return domain.ErrOrderNotFound
	}
	ctx, cancel := opContext(ctx)
	defer cancel()

	res, err := r.orders.DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return fmt.Errorf("delete order: %w", err)
	}
	if res.DeletedCount == 0 {
		return domain.ErrOrderNotFound
	}
	return nil
}

// ApplyStatusChange claims the order and takes its stock in one
// multi-document transaction. It needs a replica set or sharded cluster.
// The order write goes first and is conditional on the status the caller
// read, so a retried or concurrent transaction cannot deduct stock twice.
func (r *OrderRepository) ApplyStatusChange(ctx context.Context, change domain.StatusChange) error {
	orderID, ok := objectID(change.OrderID)
	if !ok {
		return domain.ErrOrderNotFound
	}

	session, err := r.client.StartSession()
	if err != nil {
		return fmt.Errorf("start session: %w", err)
	}
	defer session.EndSession(ctx)

	_, err = session.WithTransaction(ctx, func(sc mongo.SessionContext) (interface{}, error) {
		if err := r.writeStatus(sc, orderID, change); err != nil {
			return nil, err
		}
		if change.DeductStock {
			for _, item := range change.Items {
				if err := r.decrementStock(sc, item); err != nil {
					return nil, err
				}
			}
		}
		return nil, nil
	})
	return err
}

// decrementStock takes item.Quantity units only if that many are on hand.
func (r *OrderRepository) decrementStock(ctx context.Context, item domain.OrderItem) error {
	productID, ok := objectID(item.Product)
	if !ok {
		return domain.ErrProductNotFound
	}

	res, err := r.products.UpdateOne(ctx,
		bson.M{"_id": productID, "stock": bson.M{"$gte": item.Quantity}},
		bson.M{"$inc": bson.M{"stock": -item.Quantity}},
	)
	if err != nil {
		return fmt.Errorf("decrement stock: %w", err)
	}
	if res.MatchedCount > 0 {
		return nil
	}

	n, err := r.products.CountDocuments(ctx, bson.M{"_id": productID})
	if err != nil {
		return fmt.Errorf("check product: %w", err)
	}
	if n == 0 {
		return domain.ErrProductNotFound
	}
	return domain.ErrInsufficientStock
}

// statusChangeFilter matches the order only in the state the change was
// computed from.
func statusChangeFilter(orderID primitive.ObjectID, change domain.StatusChange) bson.M {
	filter := bson.M{"_id": orderID, "order_status": string(change.From)}
	if change.DeductStock {
		filter["stock_deducted"] = bson.M{"$ne": true}
	}
	return filter
}

func statusChangeUpdate(change domain.StatusChange, now time.Time) bson.M {
	set := bson.M{
		"order_status": string(change.To),
		"updated_at":   now.UTC(),
	}
	if change.DeductStock {
		set["stock_deducted"] = true
	}
	if change.DeliveredAt != nil {
		set["delivered_at"] = change.DeliveredAt.UTC()
	}
	return bson.M{"$set": set}
}

func (r *OrderRepository) writeStatus(ctx context.Context, orderID primitive.ObjectID, change domain.StatusChange) error {
	res, err := r.orders.UpdateOne(ctx, statusChangeFilter(orderID, change), statusChangeUpdate(change, time.Now()))
	if err != nil {
		return fmt.Errorf("update order status: %w", err)
	}
	if res.MatchedCount > 0 {
		return nil
	}

	var current struct {
		Status string `bson:"order_status"`
	}
	err = r.orders.FindOne(ctx, bson.M{"_id": orderID},
		options.FindOne().SetProjection(bson.M{"order_status": 1}),
	).Decode(&current)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return domain.ErrOrderNotFound
	}
	if err != nil {
		return fmt.Errorf("check order: %w", err)
	}
	if current.Status == string(domain.OrderDelivered) {
		return domain.ErrOrderDelivered
	}
	return domain.ErrOrderStatusChanged
}

type salesBucket struct {
	Date      string  `bson:"_id"`
	Sales     float64 `bson:"sales"`
	NumOrders int     `bson:"num_orders"`
}

// dailySalesPipeline groups orders created in [from, to] by UTC calendar day.
func dailySalesPipeline(from, to time.Time) mongo.Pipeline {
	return mongo.Pipeline{
		{{Key: "$match", Value: bson.M{
			"created_at": bson.M{"$gte": from.UTC(), "$lte": to.UTC()},
		}}},
		{{Key: "$group", Value: bson.M{
			"_id": bson.M{"$dateToString": bson.M{
				"format":   "%Y-%m-%d",
				"date":     "$created_at",
				"timezone": "UTC",
			}},
			"sales":      bson.M{"$sum": "$total_amount"},
			"num_orders": bson.M{"$sum": 1},
		}}},
		{{Key: "$sort", Value: bson.M{"_id": 1}}},
	}
}

func (r *OrderRepository) DailySales(ctx context.Context, from, to time.Time) ([]ports.DailyBucket, error) {
	ctx, cancel := opContext(ctx)
	defer cancel()

	cursor, err := r.orders.Aggregate(ctx, dailySalesPipeline(from, to))
	if err != nil {
		return nil, fmt.Errorf("aggregate sales: %w", err)
	}
	defer cursor.Close(ctx)

	var rows []salesBucket
	if err := cursor.All(ctx, &rows); err != nil {
		return nil, fmt.Errorf("decode sales: %w", err)
	}

	buckets := make([]ports.DailyBucket, 0, len(rows))
	for _, row := range rows {
		buckets = append(buckets, ports.DailyBucket{Date: row.Date, Sales: row.Sales, NumOrders: row.NumOrders})
	}
	return buckets, nil
}

func (r *OrderRepository) EnsureIndexes(ctx context.Context) error {
	_, err := r.orders.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "user", Value: 1}, {Key: "created_at", Value: -1}}},
		{Keys: bson.D{{Key: "created_at", Value: 1}}},
	})
	if err != nil {
		return fmt.Errorf("order indexes: %w", err)
	}
	return nil
}
