package userdocs

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/5w1tchy/bookshelf-api/internal/models"
)

// DefaultCollection is the collection user documents live in.
const DefaultCollection = "Users"

// userDoc is the stored shape of a user document.
type userDoc struct {
	ID               primitive.ObjectID    `bson:"_id,omitempty"`
	FirstName        string                `bson:"firstName"`
	LastName         string                `bson:"lastName"`
	Email            string                `bson:"email"`
	Phone            string                `bson:"phone"`
	PasswordHash     string                `bson:"passwordHash"`
	ProfileImagePath string                `bson:"profileImagePath,omitempty"`
	Published        []models.BookSnapshot `bson:"publishedBook"`
	Wishlist         []models.BookSnapshot `bson:"wishlist"`
	Cart             []models.BookSnapshot `bson:"cart"`
	CreatedAt        time.Time             `bson:"createdAt"`
}

func (d userDoc) record() models.UserRecord {
	return models.UserRecord{
		ID:               d.ID.Hex(),
		FirstName:        d.FirstName,
		LastName:         d.LastName,
		Email:            d.Email,
		Phone:            d.Phone,
		PasswordHash:     d.PasswordHash,
		ProfileImagePath: d.ProfileImagePath,
		Published:        d.Published,
		Wishlist:         d.Wishlist,
		Cart:             d.Cart,
		CreatedAt:        d.CreatedAt,
	}
}

func listField(name models.ListName) (string, error) {
	switch name {
	case models.ListPublished:
		return "publishedBook", nil
	case models.ListWishlist:
		return "wishlist", nil
	case models.ListCart:
		return "cart", nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownList, name)
}

// MongoStore keeps user documents in a MongoDB collection.
type MongoStore struct {
	coll *mongo.Collection
}

func NewMongoStore(db *mongo.Database, collection string) *MongoStore {
	if collection == "" {
		collection = DefaultCollection
	}
	opts := options.Collection().SetRegistry(newRegistry())
	return &MongoStore{coll: db.Collection(collection, opts)}
}

// EnsureIndexes creates the unique phone index backing CreateUser.
func (s *MongoStore) EnsureIndexes(ctx context.Context) error {
	_, err := s.coll.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "phone", Value: 1}},
		Options: options.Index().SetUnique(true).SetName("users_phone_key"),
	})
	if err != nil {
		return fmt.Errorf("create phone index: %w", err)
	}
	return nil
}

// A malformed hex id cannot name any document, so it reads as absent.
func objectID(userID string) (primitive.ObjectID, bool) {
	oid, err := primitive.ObjectIDFromHex(userID)
	return oid, err == nil
}

func (s *MongoStore) FindUser(ctx context.Context, userID string) (models.UserRecord, error) {
	oid, ok := objectID(userID)
	if !ok {
		return models.UserRecord{}, ErrUserNotFound
	}
	var doc userDoc
	err := s.coll.FindOne(ctx, bson.D{{Key: "_id", Value: oid}}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return models.UserRecord{}, ErrUserNotFound
	}
	if err != nil {
		return models.UserRecord{}, fmt.Errorf("find user: %w", err)
	}
	rec := doc.record()
	emptyLists(&rec)
	return rec, nil
}

func (s *MongoStore) AppendSnapshot(ctx context.Context, userID string, list models.ListName, snap models.BookSnapshot) error {
	field, err := listField(list)
	if err != nil {
		return err
	}
	oid, ok := objectID(userID)
	if !ok {
		return ErrUserNotFound
	}
	res, err := s.coll.UpdateOne(ctx,
		bson.D{{Key: "_id", Value: oid}},
		bson.D{{Key: "$push", Value: bson.D{{Key: field, Value: snap}}}},
	)
	if err != nil {
		return fmt.Errorf("append %s snapshot: %w", list, err)
	}
	if res.MatchedCount == 0 {
		return ErrUserNotFound
	}
	return nil
}

// UpdatePublishedSnapshotFields sets fields on the first published element
// with the given isbn. Returns the matched count.
func (s *MongoStore) UpdatePublishedSnapshotFields(ctx context.Context, userID, isbn string, f models.BookFields) (int64, error) {
	set := positionalSet("publishedBook", f)
	if len(set) == 0 {
		return 0, ErrNoFields
	}
	oid, ok := objectID(userID)
	if !ok {
		return 0, nil
	}
	res, err := s.coll.UpdateOne(ctx,
		bson.D{{Key: "_id", Value: oid}, {Key: "publishedBook.isbn", Value: isbn}},
		bson.D{{Key: "$set", Value: set}},
	)
	if err != nil {
		return 0, fmt.Errorf("update published snapshot: %w", err)
	}
	return res.MatchedCount, nil
}

func (s *MongoStore) RemoveSnapshot(ctx context.Context, userID string, list models.ListName, isbn string) (int64, error) {
	field, err := listField(list)
	if err != nil {
		return 0, err
	}
	oid, ok := objectID(userID)
	if !ok {
		return 0, nil
	}
	res, err := s.coll.UpdateOne(ctx,
		bson.D{{Key: "_id", Value: oid}, {Key: field + ".isbn", Value: isbn}},
		bson.D{{Key: "$pull", Value: bson.D{{Key: field, Value: bson.D{{Key: "isbn", Value: isbn}}}}}},
	)
	if err != nil {
		return 0, fmt.Errorf("remove %s snapshot: %w", list, err)
	}
	return res.MatchedCount, nil
}

func (s *MongoStore) CreateUser(ctx context.Context, rec models.UserRecord) (string, error) {
	err := s.coll.FindOne(ctx, bson.D{{Key: "phone", Value: rec.Phone}}).Err()
	if err == nil {
		return "", ErrPhoneExists
	}
	if !errors.Is(err, mongo.ErrNoDocuments) {
		return "", fmt.Errorf("check phone: %w", err)
	}

	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now().UTC()
	}
	doc := userDoc{
		ID:               primitive.NewObjectID(),
		FirstName:        rec.FirstName,
		LastName:         rec.LastName,
		Email:            rec.Email,
		Phone:            rec.Phone,
		PasswordHash:     rec.PasswordHash,
		ProfileImagePath: rec.ProfileImagePath,
		Published:        []models.BookSnapshot{},
		Wishlist:         []models.BookSnapshot{},
		Cart:             []models.BookSnapshot{},
		CreatedAt:        rec.CreatedAt,
	}
	if _, err := s.coll.InsertOne(ctx, doc); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return "", ErrPhoneExists
		}
		return "", fmt.Errorf("insert user: %w", err)
	}
	return doc.ID.Hex(), nil
}

// positionalSet builds {"<field>.$.<name>": value} for every set field.
func positionalSet(field string, f models.BookFields) bson.D {
	p := field + ".$."
	var set bson.D
	add := func(name string, v any) { set = append(set, bson.E{Key: p + name, Value: v}) }
	if f.Title != nil {
		add("title", *f.Title)
	}
	if f.Author != nil {
		add("author", *f.Author)
	}
	if f.Genre != nil {
		add("genre", *f.Genre)
	}
	if f.Description != nil {
		add("description", *f.Description)
	}
	if f.Price != nil {
		add("price", *f.Price)
	}
	if f.StockQuantity != nil {
		add("stockQuantity", *f.StockQuantity)
	}
	if f.Trending != nil {
		add("trending", *f.Trending)
	}
	if f.Bestseller != nil {
		add("bestseller", *f.Bestseller)
	}
	if f.Publisher != nil {
		add("publisher", *f.Publisher)
	}
	if f.ImageLink != nil {
		add("imageLink", *f.ImageLink)
	}
	return set
}
