package mongo

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/healthgate/api-gateway/internal/core/domain"
	"github.com/healthgate/api-gateway/internal/core/ports"
)

const (
	usersCollection = "users"

	usernameIndex = "username_1"
	emailIndex    = "email_1"
)

// UserRepository implements ports.UserRepository on the users collection.
type UserRepository struct {
	coll *mongo.Collection
}

func NewUserRepository(db *mongo.Database) *UserRepository {
	return &UserRepository{coll: db.Collection(usersCollection)}
}

type mongoUser struct {
	ID           primitive.ObjectID `bson:"_id,omitempty"`
	Name         string             `bson:"name,omitempty"`
	Username     string             `bson:"username,omitempty"`
	Email        string             `bson:"email,omitempty"`
	Role         string             `bson:"role,omitempty"`
	PasswordHash string             `bson:"passwordHash,omitempty"`
	Phone        string             `bson:"phone,omitempty"`
	Address      string             `bson:"address,omitempty"`
	CreatedAt    time.Time          `bson:"createdAt,omitempty"`
	UpdatedAt    time.Time          `bson:"updatedAt,omitempty"`
}

func (m *mongoUser) toDomain() *domain.User {
	return &domain.User{
		ID:           m.ID.Hex(),
		Name:         m.Name,
		Username:     m.Username,
		Email:        m.Email,
		Role:         domain.Role(m.Role),
		PasswordHash: m.PasswordHash,
		Phone:        m.Phone,
		Address:      m.Address,
		CreatedAt:    m.CreatedAt.UTC(),
		UpdatedAt:    m.UpdatedAt.UTC(),
	}
}

// EnsureIndexes creates the unique indexes that arbitrate username and email collisions.
func (r *UserRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	indexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "username", Value: 1}}, Options: options.Index().SetName(usernameIndex).SetUnique(true)},
		{Keys: bson.D{{Key: "email", Value: 1}}, Options: options.Index().SetName(emailIndex).SetUnique(true)},
		{Keys: bson.D{{Key: "createdAt", Value: -1}}},
	}

	if _, err := r.coll.Indexes().CreateMany(ctx, indexes); err != nil {
		return fmt.Errorf("ensure user indexes: %w", err)
	}
	return nil
}

func (r *UserRepository) Create(ctx context.Context, user *domain.User) (*domain.User, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	doc := mongoUser{
		Name:         user.Name,
		Username:     user.Username,
		Email:        user.Email,
		Role:         string(user.Role),
		PasswordHash: user.PasswordHash,
		Phone:        user.Phone,
		Address:      user.Address,
		CreatedAt:    user.CreatedAt,
		UpdatedAt:    user.UpdatedAt,
	}

	res, err := r.coll.InsertOne(ctx, doc)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, duplicateKeyError(err)
		}
		return nil, fmt.Errorf("insert user: %w", err)
	}

	oid, ok := res.InsertedID.(primitive.ObjectID)
	if !ok {
		return nil, fmt.Errorf("insert user: unexpected id type %T", res.InsertedID)
	}
	doc.ID = oid
	return doc.toDomain(), nil
}

func (r *UserRepository) FindByID(ctx context.Context, id string) (*domain.User, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, domain.ErrUserNotFound
	}
	return r.findOne(ctx, bson.M{"_id": oid})
}

func (r *UserRepository) FindByIdentifier(ctx context.Context, identifier string) (*domain.User, error) {
	return r.findOne(ctx, bson.M{"$or": bson.A{
		bson.M{"email": identifier},
		bson.M{"username": identifier},
	}})
}

func (r *UserRepository) findOne(ctx context.Context, filter bson.M) (*domain.User, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var mu mongoUser
	if err := r.coll.FindOne(ctx, filter).Decode(&mu); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrUserNotFound
		}
		return nil, fmt.Errorf("find user: %w", err)
	}
	return mu.toDomain(), nil
}

func (r *UserRepository) Update(ctx context.Context, id string, patch domain.UserPatch) (*domain.User, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, domain.ErrUserNotFound
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var mu mongoUser
	err = r.coll.FindOneAndUpdate(ctx, bson.M{"_id": oid}, bson.M{"$set": patchSet(patch)}, opts).Decode(&mu)
	if err != nil {
		switch {
		case errors.Is(err, mongo.ErrNoDocuments):
			return nil, domain.ErrUserNotFound
		case mongo.IsDuplicateKeyError(err):
			return nil, duplicateKeyError(err)
		}
		return nil, fmt.Errorf("update user: %w", err)
	}
	return mu.toDomain(), nil
}

func (r *UserRepository) Delete(ctx context.Context, id string) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return domain.ErrUserNotFound
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
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

func (r *UserRepository) List(ctx context.Context, q ports.ListUsersQuery) ([]*domain.User, int64, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	filter := buildListFilter(q.Filters)

	total, err := r.coll.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("count users: %w", err)
	}

	opts := options.Find().
		SetSort(buildSort(q.Sort)).
		SetProjection(buildProjection(q.Fields)).
		SetSkip(int64(q.Page-1) * int64(q.Limit)).
		SetLimit(int64(q.Limit))

	cur, err := r.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, 0, fmt.Errorf("find users: %w", err)
	}
	defer cur.Close(ctx)

	var docs []mongoUser
	if err := cur.All(ctx, &docs); err != nil {
		return nil, 0, fmt.Errorf("decode users: %w", err)
	}

	users := make([]*domain.User, 0, len(docs))
	for i := range docs {
		users = append(users, docs[i].toDomain())
	}
	return users, total, nil
}

func patchSet(p domain.UserPatch) bson.M {
	set := bson.M{"updatedAt": p.UpdatedAt}
	if p.Name != nil {
		set["name"] = *p.Name
	}
	if p.Username != nil {
		set["username"] = *p.Username
	}
	if p.Email != nil {
		set["email"] = *p.Email
	}
	if p.Role != nil {
		set["role"] = string(*p.Role)
	}
	if p.Phone != nil {
		set["phone"] = *p.Phone
	}
	if p.Address != nil {
		set["address"] = *p.Address
	}
	if p.PasswordHash != nil {
		set["passwordHash"] = *p.PasswordHash
	}
	return set
}

// duplicateKeyError names the colliding field from the violated index. The
// driver message also echoes the colliding value, so only the index name is
// inspected.
func duplicateKeyError(err error) error {
	return domain.NewValidationError("Duplicate field value entered: " + duplicateField(err))
}

func duplicateField(err error) string {
	for _, msg := range duplicateKeyMessages(err) {
		switch violatedIndex(msg) {
		case usernameIndex:
			return "username"
		case emailIndex:
			return "email"
		}
	}
	return "value"
}

func duplicateKeyMessages(err error) []string {
	var we mongo.WriteException
	if errors.As(err, &we) {
		var msgs []string
		for _, e := range we.WriteErrors {
			if e.Code == 11000 {
				msgs = append(msgs, e.Message)
			}
		}
		return msgs
	}
	var ce mongo.CommandError
	if errors.As(err, &ce) {
		return []string{ce.Message}
	}
	return []string{err.Error()}
}

// violatedIndex extracts "<name>" from "... index: <name> dup key: ...".
func violatedIndex(msg string) string {
	_, rest, ok := strings.Cut(msg, "index: ")
	if !ok {
		return ""
	}
	name, _, _ := strings.Cut(rest, " ")
	return name
}
