package mongo

import (
	"testing"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/storefront/storefront-api/internal/core/domain"
	"github.com/storefront/storefront-api/internal/core/ports"
)

func TestObjectID(t *testing.T) {
	oid := primitive.NewObjectID()
	got, ok := objectID(oid.Hex())
	if !ok || got != oid {
		t.Fatalf("expected %s, got %s (%v)", oid.Hex(), got.Hex(), ok)
	}

	for _, bad := range []string{"", "123", "zzzzzzzzzzzzzzzzzzzzzzzz"} {
		if _, ok := objectID(bad); ok {
			t.Fatalf("%q should not parse", bad)
		}
	}
}

func TestMongoOrder_RoundTrip(t *testing.T) {
	user := primitive.NewObjectID()
	product := primitive.NewObjectID()
	delivered := time.Date(2024, 5, 2, 10, 0, 0, 0, time.UTC)

	in := &domain.Order{
		Items:        []domain.OrderItem{{Product: product.Hex(), Name: "Mouse", Price: 12.5, Quantity: 2}},
		ShippingInfo: domain.ShippingInfo{Address: "1 Main", City: "X", PhoneNo: "1", ZipCode: "2", Country: "US"},
		TotalAmount:  25,
		PaymentInfo:  domain.PaymentInfo{ID: "pi_1", Status: "succeeded"},
		Status:       domain.OrderShipped,
		UserID:       user.Hex(),
		DeliveredAt:  &delivered,
	}

	doc, err := newMongoOrder(in)
	if err != nil {
		t.Fatalf("newMongoOrder returned error: %v", err)
	}
	if doc.User != user || doc.Items[0].Product != product {
		t.Fatal("references must be stored as ObjectIDs")
	}

	out := doc.toDomain()
	if out.UserID != in.UserID || out.Items[0].Product != in.Items[0].Product {
		t.Fatalf("ids lost in conversion: %+v", out)
	}
	if out.PaymentInfo != in.PaymentInfo || out.Status != in.Status || !out.DeliveredAt.Equal(delivered) {
		t.Fatalf("fields lost in conversion: %+v", out)
	}
}

func TestMongoOrder_InvalidReferences(t *testing.T) {
	if _, err := newMongoOrder(&domain.Order{UserID: "nope"}); err == nil {
		t.Fatal("expected error for invalid user id")
	}

	_, err := newMongoOrder(&domain.Order{
		UserID: primitive.NewObjectID().Hex(),
		Items:  []domain.OrderItem{{Product: "nope", Quantity: 1}},
	})
	if err == nil {
		t.Fatal("expected error for invalid product id")
	}
}

func TestDailySalesPipeline(t *testing.T) {
	from := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2024, 1, 3, 23, 59, 59, 999_000_000, time.UTC)

	pipeline := dailySalesPipeline(from, to)
	if len(pipeline) != 3 {
		t.Fatalf("expected 3 stages, got %d", len(pipeline))
	}

	match := pipeline[0][0].Value.(bson.M)["created_at"].(bson.M)
	if match["$gte"] != from || match["$lte"] != to {
		t.Fatalf("unexpected range: %v", match)
	}

	group := pipeline[1][0].Value.(bson.M)
	day := group["_id"].(bson.M)["$dateToString"].(bson.M)
	if day["format"] != "%Y-%m-%d" || day["timezone"] != "UTC" {
		t.Fatalf("unexpected grouping: %v", day)
	}
}

func TestProductFilter(t *testing.T) {
	if len(productFilter(ports.ListProductsFilter{})) != 0 {
		t.Fatal("empty filter expected")
	}

	f := productFilter(ports.ListProductsFilter{Keyword: "usb (c)", Category: "Accessories"})
	re, ok := f["name"].(primitive.Regex)
	if !ok {
		t.Fatalf("expected regex on name, got %T", f["name"])
	}
	if re.Pattern != `usb \(c\)` || re.Options != "i" {
		t.Fatalf("keyword must be escaped and case-insensitive: %+v", re)
	}
	if f["category"] != "Accessories" {
		t.Fatalf("unexpected category filter: %v", f["category"])
	}
}

func TestMongoUser_ToDomain(t *testing.T) {
	id := primitive.NewObjectID()
	mu := mongoUser{ID: id, Name: "Alice", Email: "a@example.com", Password: "hash", Role: domain.RoleAdmin}

	u := mu.toDomain()
	if u.ID != id.Hex() || u.PasswordHash != "hash" || u.Role != domain.RoleAdmin {
		t.Fatalf("unexpected user: %+v", u)
	}
}

func TestResetTokenFilter(t *testing.T) {
	oid := primitive.NewObjectID()
	now := time.Date(2024, 3, 1, 12, 0, 0, 0, time.FixedZone("X", 3600))

	f := resetTokenFilter(oid, "hash", now)
	if f["_id"] != oid || f["reset_password_token"] != "hash" {
		t.Fatalf("unexpected filter: %v", f)
	}
	expire, ok := f["reset_password_expire"].(bson.M)
	if !ok || expire["$gt"] != now.UTC() {
		t.Fatalf("redeem must require an unexpired token: %v", f["reset_password_expire"])
	}
}

func TestStatusChangeFilter(t *testing.T) {
	oid := primitive.NewObjectID()

	f := statusChangeFilter(oid, domain.StatusChange{From: domain.OrderProcessing, To: domain.OrderShipped, DeductStock: true})
	if f["_id"] != oid || f["order_status"] != string(domain.OrderProcessing) {
		t.Fatalf("order must be matched in the status it was read in: %v", f)
	}
	if deducted, ok := f["stock_deducted"].(bson.M); !ok || deducted["$ne"] != true {
		t.Fatalf("deducting changes must require untouched stock: %v", f["stock_deducted"])
	}

	f = statusChangeFilter(oid, domain.StatusChange{From: domain.OrderShipped, To: domain.OrderDelivered})
	if _, ok := f["stock_deducted"]; ok {
		t.Fatalf("non-deducting changes do not constrain stock_deducted: %v", f)
	}
}

func TestStatusChangeUpdate(t *testing.T) {
	delivered := time.Date(2024, 5, 2, 10, 0, 0, 0, time.UTC)
	now := delivered.Add(time.Minute)

	set := statusChangeUpdate(domain.StatusChange{To: domain.OrderDelivered, DeductStock: true, DeliveredAt: &delivered}, now)["$set"].(bson.M)
	if set["order_status"] != string(domain.OrderDelivered) || set["stock_deducted"] != true || set["delivered_at"] != delivered {
		t.Fatalf("unexpected update: %v", set)
	}

	set = statusChangeUpdate(domain.StatusChange{To: domain.OrderShipped}, now)["$set"].(bson.M)
	if _, ok := set["delivered_at"]; ok {
		t.Fatalf("delivered_at is only set on delivery: %v", set)
	}
	if _, ok := set["stock_deducted"]; ok {
		t.Fatalf("stock_deducted is only set when stock is taken: %v", set)
	}
}
