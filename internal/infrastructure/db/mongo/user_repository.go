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
)

type UserRepository struct {
	coll *mongo.Collection
}

func NewUserRepository(db *mongo.Database) *UserRepository {
	return &UserRepository{coll: db.Collection(collectionUsers)}
}

type mongoUser struct {
	ID                  primitive.ObjectID `bson:"_id,omitempty"`
	Name                string             `bson:"name"`
	Email               string             `bson:"email"`
	Password            string             `bson:"password,omitempty"`
	Avatar              *domain.Avatar     `bson:"avatar,omitempty"`
	Role                string             `bson:"role"`
	ResetPasswordToken  string             `bson:"reset_password_token,omitempty"`
	ResetPasswordExpire *time.Time         `bson:"reset_password_expire,omitempty"`
	CreatedAt           time.Time          `bson:"created_at"`
	UpdatedAt           time.Time          `bson:"updated_at"`
}

// withoutPassword is the default projection; the hash only leaves the
// database through the *WithPassword lookups.
var withoutPassword = bson.M{"password": 0}

func (m *mongoUser) toDomain() *domain.User {
	return &domain.User{
		ID:                  m.ID.Hex(),
		Name:                m.Name,
		Email:               m.Email,
		PasswordHash:        m.Password,
		Avatar:              m.Avatar,
		Role:                m.Role,
		ResetPasswordToken:  m.ResetPasswordToken,
		ResetPasswordExpire: m.ResetPasswordExpire,
		CreatedAt:           m.CreatedAt.UTC(),
		UpdatedAt:           m.UpdatedAt.UTC(),
	}
}

func (r *UserRepository) Create(ctx context.Context, user *domain.User) (*domain.User, error) {
	ctx, cancel := opContext(ctx)
	defer cancel()

	doc := mongoUser{
		ID:        primitive.NewObjectID(),
		Name:      user.Name,
		Email:     user.Email,
		Password:  user.PasswordHash,
		Avatar:    user.Avatar,
		Role:      user.Role,
		CreatedAt: user.CreatedAt,
		UpdatedAt: user.UpdatedAt,
	}

	if _, err := r.coll.InsertOne(ctx, doc); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, domain.ErrUserExists
		}
		return nil, fmt.Errorf("insert user: %w", err)
	}
	return doc.toDomain(), nil
}

func (r *UserRepository) FindByID(ctx context.Context, id string) (*domain.User, error) {
	oid, ok := objectID(id)
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	return r.findOne(ctx, bson.M{"_id": oid}, false)
}

func (r *UserRepository) FindByIDWithPassword(ctx context.Context, id string) (*domain.User, error) {
	oid, ok := objectID(id)
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	return r.findOne(ctx, bson.M{"_id": oid}, true)
}

func (r *UserRepository) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	return r.findOne(ctx, bson.M{"email": email}, false)
}

func (r *UserRepository) FindByEmailWithPassword(ctx context.Context, email string) (*domain.User, error) {
	return r.findOne(ctx, bson.M{"email": email}, true)
}

func (r *UserRepository) findOne(ctx context.Context, filter bson.M, withPassword bool) (*domain.User, error) {
	ctx, cancel := opContext(ctx)
	defer cancel()

	opts := options.FindOne()
	if !withPassword {
		opts.SetProjection(withoutPassword)
	}

	var mu mongoUser
	if err := r.coll.FindOne(ctx, filter, opts).Decode(&mu); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrUserNotFound
		}
		return nil, fmt.Errorf("find user: %w", err)
	}
	return mu.toDomain(), nil
}

func (r *UserRepository) List(ctx context.Context) ([]*domain.User, error) {
	ctx, cancel := opContext(ctx)
	defer cancel()

	opts := options.Find().
		SetProjection(withoutPassword).
		SetSort(bson.D{{Key: "created_at", Value: -1}})

	cursor, err := r.coll.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	defer cursor.Close(ctx)

	var docs []mongoUser
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode users: %w", err)
	}

	users := make([]*domain.User, 0, len(docs))
	for i := range docs {
		users = append(users, docs[i].toDomain())
	}
	return users, nil
}

func (r *UserRepository) Update(ctx context.Context, user *domain.User) (*domain.User, error) {
	oid, ok := objectID(user.ID)
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	ctx, cancel := opContext(ctx)
	defer cancel()

	update := bson.M{
		"$set": bson.M{
			"name":       user.Name,
			"email":      user.Email,
			"role":       user.Role,
			"updated_at": user.UpdatedAt,
		},
	}
	if user.Avatar != nil {
		update["$set"].(bson.M)["avatar"] = user.Avatar
	} else {
		update["$unset"] = bson.M{"avatar": ""}
	}

	opts := options.FindOneAndUpdate().
		SetReturnDocument(options.After).
		SetProjection(withoutPassword)

	var mu mongoUser
	if err := r.coll.FindOneAndUpdate(ctx, bson.M{"_id": oid}, update, opts).Decode(&mu); err != nil {
		switch {
		case errors.Is(err, mongo.ErrNoDocuments):
			return nil, domain.ErrUserNotFound
		case mongo.IsDuplicateKeyError(err):
			return nil, domain.ErrUserExists
		}
		return nil, fmt.Errorf("update user: %w", err)
	}
	return mu.toDomain(), nil
}

func (r *UserRepository) UpdatePassword(ctx context.Context, id, passwordHash string) error {
	return r.updateByID(ctx, id, bson.M{
		"$set": bson.M{"password": passwordHash, "updated_at": time.Now().UTC()},
	})
}

func (r *UserRepository) Delete(ctx context.Context, id string) error {
	oid, ok := objectID(id)
	if !ok {
		return domain.ErrUserNotFound
	}
	ctx, cancel := opContext(ctx)
	defer cancel()

	res, err := r.coll.DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return fmt.Errorf("delete user: %w", err)
	}
	if res.DeletedCount == 0 {
		return domain.ErrUserNotFound
	}
	return nil
}

func (r *UserRepository) SetResetToken(ctx context.Context, id, tokenHash string, expire time.Time) error {
	return r.updateByID(ctx, id, bson.M{
		"$set": bson.M{"reset_password_token": tokenHash, "reset_password_expire": expire.UTC()},
	})
}

func (r *UserRepository) ClearResetToken(ctx context.Context, id string) error {
	return r.updateByID(ctx, id, unsetResetToken)
}

var unsetResetToken = bson.M{
	"$unset": bson.M{"reset_password_token": "", "reset_password_expire": ""},
}

func (r *UserRepository) FindByResetToken(ctx context.Context, tokenHash string, now time.Time) (*domain.User, error) {
	if tokenHash == "" {
		return nil, domain.ErrUserNotFound
	}
	return r.findOne(ctx, bson.M{
		"reset_password_token":  tokenHash,
		"reset_password_expire": bson.M{"$gt": now.UTC()},
	}, false)
}

// CompletePasswordReset matches on the token hash and its expiry as well as
// the id, so two concurrent redemptions of the same token cannot both succeed
// and a token that lapsed after lookup is not redeemed.
func (r *UserRepository) CompletePasswordReset(ctx context.Context, id, tokenHash, passwordHash string, now time.Time) error {
	oid, ok := objectID(id)
	if !ok {
		return domain.ErrUserNotFound
	}
	ctx, cancel := opContext(ctx)
	defer cancel()

	res, err := r.coll.UpdateOne(ctx,
		resetTokenFilter(oid, tokenHash, now),
		bson.M{
			"$set":   bson.M{"password": passwordHash, "updated_at": now.UTC()},
			"$unset": unsetResetToken["$unset"],
		},
	)
	if err != nil {
		return fmt.Errorf("complete password reset: %w", err)
	}
	if res.MatchedCount == 0 {
		return domain.ErrUserNotFound
	}
	return nil
}

func resetTokenFilter(oid primitive.ObjectID, tokenHash string, now time.Time) bson.M {
	return bson.M{
		"_id":                   oid,
		"reset_password_token":  tokenHash,
		"reset_password_expire": bson.M{"$gt": now.UTC()},
	}
}

func (r *UserRepository) updateByID(ctx context.Context, id string, update bson.M) error {
	oid, ok := objectID(id)
	if !ok {
		return domain.ErrUserNotFound
	}
	ctx, cancel := opContext(ctx)
	defer cancel()

	res, err := r.coll.UpdateOne(ctx, bson.M{"_id": oid}, update)
	if err != nil {
		return fmt.Errorf("update user: %w", err)
	}
	if res.MatchedCount == 0 {
		return domain.ErrUserNotFound
	}
	return nil
}

// EnsureIndexes creates the unique email index and the sparse reset token index.
func (r *UserRepository) EnsureIndexes(ctx context.Context) error {
	_, err := r.coll.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "email", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "reset_password_token", Value: 1}}, Options: options.Index().SetSparse(true)},
	})
	if err != nil {
		return fmt.Errorf("user indexes: %w", err)
	}
	return nil
}
