package mongo

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/testtrack/scheduling-system/internal/core/domain"
	"github.com/testtrack/scheduling-system/internal/core/ports"
)

const usersCollection = "users"

// Mongo server error code for a document failing collection validation.
const codeDocumentValidationFailure = 121

// MongoUserRepository implements ports.UserRepository over a users
// collection. Emails are stored lowercased; uniqueness is enforced by the
// index created in EnsureIndexes, which is the authoritative guard against
// duplicate registration.
type MongoUserRepository struct {
	coll *mongo.Collection
}

func NewUserRepository(db *mongo.Database) *MongoUserRepository {
	return &MongoUserRepository{coll: db.Collection(usersCollection)}
}

type mongoUser struct {
	ID           primitive.ObjectID `bson:"_id,omitempty"`
	Name         string             `bson:"name"`
	Email        string             `bson:"email"`
	PasswordHash string             `bson:"password_hash"`
	Role         string             `bson:"role"`
	Status       string             `bson:"status"`
	Avatar       string             `bson:"avatar,omitempty"`
	CreatedAt    int64              `bson:"created_at"`
	UpdatedAt    int64              `bson:"updated_at"`
}

// EnsureIndexes creates the unique email index and the role/status query
// index. Call once at startup.
func (r *MongoUserRepository) EnsureIndexes(ctx context.Context) error {
	_, err := r.coll.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "email", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys: bson.D{{Key: "role", Value: 1}, {Key: "status", Value: 1}},
		},
	})
	if err != nil {
		return r.wrapErr("ensure indexes", err)
	}
	return nil
}

func (r *MongoUserRepository) FindOne(ctx context.Context, f ports.UserFilter) (*domain.User, error) {
	var mu mongoUser
	if err := r.coll.FindOne(ctx, filterDoc(f)).Decode(&mu); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ports.ErrNotFound
		}
		return nil, r.wrapErr("find user", err)
	}
	return mu.toDomain(), nil
}

func (r *MongoUserRepository) Create(ctx context.Context, user *domain.User) (*domain.User, error) {
	doc := mongoUser{
		Name:         user.Name,
		Email:        strings.ToLower(user.Email),
		PasswordHash: user.PasswordHash,
		Role:         string(user.Role),
		Status:       string(user.Status),
		Avatar:       user.Avatar,
		CreatedAt:    user.CreatedAt.Unix(),
		UpdatedAt:    user.UpdatedAt.Unix(),
	}

	res, err := r.coll.InsertOne(ctx, doc)
	if err != nil {
		return nil, r.wrapErr("insert user", err)
	}

	created := *user
	if oid, ok := res.InsertedID.(primitive.ObjectID); ok {
		created.ID = oid.Hex()
	}
	created.Email = doc.Email
	return &created, nil
}

func (r *MongoUserRepository) CountDocuments(ctx context.Context, f ports.UserFilter) (int64, error) {
	n, err := r.coll.CountDocuments(ctx, filterDoc(f))
	if err != nil {
		return 0, r.wrapErr("count users", err)
	}
	return n, nil
}

func filterDoc(f ports.UserFilter) bson.M {
	filter := bson.M{}
	if f.Email != "" {
		filter["email"] = strings.ToLower(f.Email)
	}
	if f.Status != "" {
		filter["status"] = string(f.Status)
	}
	return filter
}

// wrapErr classifies a driver failure into the typed causes the service layer
// switches on. Unrecognised failures stay CauseUnknown.
func (r *MongoUserRepository) wrapErr(op string, err error) *ports.RepositoryError {
	cause := ports.CauseUnknown
	switch {
	case mongo.IsDuplicateKeyError(err):
		cause = ports.CauseConstraintViolation
	case mongo.IsNetworkError(err), mongo.IsTimeout(err),
		errors.Is(err, context.DeadlineExceeded):
		cause = ports.CauseConnectivity
	case isSchemaViolation(err):
		cause = ports.CauseSchemaViolation
	}
	return &ports.RepositoryError{Cause: cause, Op: op, Err: err}
}

func isSchemaViolation(err error) bool {
	var we mongo.WriteException
	if errors.As(err, &we) {
		for _, e := range we.WriteErrors {
			if e.Code == codeDocumentValidationFailure {
				return true
			}
		}
	}
	return false
}

func (mu *mongoUser) toDomain() *domain.User {
	return &domain.User{
		ID:           mu.ID.Hex(),
		Name:         mu.Name,
		Email:        mu.Email,
		PasswordHash: mu.PasswordHash,
		Role:         domain.Role(mu.Role),
		Status:       domain.Status(mu.Status),
		Avatar:       mu.Avatar,
		CreatedAt:    unixToTime(mu.CreatedAt),
		UpdatedAt:    unixToTime(mu.UpdatedAt),
	}
}

func unixToTime(ts int64) time.Time {
	if ts == 0 {
		return time.Time{}
	}
	return time.Unix(ts, 0).UTC()
}
