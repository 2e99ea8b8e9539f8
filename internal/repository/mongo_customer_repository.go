package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	appErrors "github.com/unclebandit/customer-service/internal/errors"
	"github.com/unclebandit/customer-service/internal/model"
)

const customersCollection = "customers"

// customerDocument is the stored shape of a customer.
type customerDocument struct {
	ID          primitive.ObjectID `bson:"_id,omitempty"`
	Name        string             `bson:"name"`
	DateOfBirth time.Time          `bson:"dateOfBirth"`
	Interests   string             `bson:"interests,omitempty"`
}

func toDocument(c *model.Customer) customerDocument {
	return customerDocument{
		Name:        c.Name,
		DateOfBirth: c.DateOfBirth.Time,
		Interests:   c.Interests,
	}
}

func (d *customerDocument) toModel() *model.Customer {
	return &model.Customer{
		ID:          d.ID.Hex(),
		Name:        d.Name,
		DateOfBirth: model.DateOf(d.DateOfBirth.UTC()),
		Interests:   d.Interests,
	}
}

// MongoCustomerRepository stores customers as documents in a single collection.
type MongoCustomerRepository struct {
	client *mongo.Client
	coll   *mongo.Collection
}

var _ CustomerRepositoryInterface = (*MongoCustomerRepository)(nil)

func NewMongoCustomerRepository(client *mongo.Client, database string) *MongoCustomerRepository {
	return &MongoCustomerRepository{
		client: client,
		coll:   client.Database(database).Collection(customersCollection),
	}
}

// EnsureIndexes creates the name index backing List's sort order.
func (r *MongoCustomerRepository) EnsureIndexes(ctx context.Context) error {
	_, err := r.coll.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "name", Value: 1}, {Key: "_id", Value: 1}},
		Options: options.Index().SetName("name_1__id_1"),
	})
	if err != nil {
		return fmt.Errorf("create name index: %w", err)
	}
	return nil
}

func (r *MongoCustomerRepository) List(ctx context.Context) ([]model.Customer, error) {
	opts := options.Find().SetSort(bson.D{{Key: "name", Value: 1}, {Key: "_id", Value: 1}})
	cur, err := r.coll.Find(ctx, bson.D{}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	customers := []model.Customer{}
	for cur.Next(ctx) {
		var doc customerDocument
		if err := cur.Decode(&doc); err != nil {
			return nil, fmt.Errorf("decode customer: %w", err)
		}
		customers = append(customers, *doc.toModel())
	}
	return customers, cur.Err()
}

func (r *MongoCustomerRepository) GetByID(ctx context.Context, id string) (*model.Customer, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, appErrors.NewCustomerNotFound(id)
	}
	return r.decodeOne(r.coll.FindOne(ctx, bson.M{"_id": oid}), id)
}

func (r *MongoCustomerRepository) Create(ctx context.Context, c *model.Customer) (*model.Customer, error) {
	doc := toDocument(c)
	doc.ID = primitive.NewObjectID()
	if _, err := r.coll.InsertOne(ctx, doc); err != nil {
		return nil, err
	}
	return doc.toModel(), nil
}

// Update swaps the whole document, so fields missing from c are cleared.
func (r *MongoCustomerRepository) Update(ctx context.Context, c *model.Customer) (*model.Customer, error) {
	oid, err := primitive.ObjectIDFromHex(c.ID)
	if err != nil {
		return nil, appErrors.NewCustomerNotFound(c.ID)
	}
	opts := options.FindOneAndReplace().SetReturnDocument(options.After)
	return r.decodeOne(r.coll.FindOneAndReplace(ctx, bson.M{"_id": oid}, toDocument(c), opts), c.ID)
}

func (r *MongoCustomerRepository) Delete(ctx context.Context, id string) (*model.Customer, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, appErrors.NewCustomerNotFound(id)
	}
	return r.decodeOne(r.coll.FindOneAndDelete(ctx, bson.M{"_id": oid}), id)
}

func (r *MongoCustomerRepository) Ping(ctx context.Context) error {
	return r.client.Ping(ctx, readpref.Primary())
}

func (r *MongoCustomerRepository) decodeOne(res *mongo.SingleResult, id string) (*model.Customer, error) {
	var doc customerDocument
	if err := res.Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, appErrors.NewCustomerNotFound(id)
		}
		return nil, err
	}
	return doc.toModel(), nil
}
