package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/fjod/rocketshoes-cart/internal/domain"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type cartDocument struct {
	Key       string             `bson:"_id"`
	Items     []lineItemDocument `bson:"items"`
	UpdatedAt time.Time          `bson:"updated_at"`
}

type lineItemDocument struct {
	ProductID int64   `bson:"product_id"`
	Title     string  `bson:"title"`
	Price     float64 `bson:"price"`
	Image     string  `bson:"image"`
	Amount    int     `bson:"amount"`
}

const mongoCollection = "carts"

// ConnectMongoDB connects and pings before handing back the database.
func ConnectMongoDB(ctx context.Context, uri, database string) (*mongo.Database, error) {
	client, err := mongo.Connect(ctx, options.Client().
		ApplyURI(uri).
		SetConnectTimeout(10*time.Second).
		SetServerSelectionTimeout(5*time.Second))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to MongoDB: %w", err)
	}

	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("failed to ping MongoDB: %w", err)
	}

	return client.Database(database), nil
}

// MongoRepository stores one document per cart key.
type MongoRepository struct {
	collection *mongo.Collection
}

func NewMongoRepository(db *mongo.Database) *MongoRepository {
	return &MongoRepository{
		collection: db.Collection(mongoCollection),
	}
}

func (m *MongoRepository) GetCart(ctx context.Context, key string) (domain.Cart, error) {
	var doc cartDocument

	err := m.collection.FindOne(ctx, bson.M{"_id": key}).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrCartNotFound
		}
		return nil, fmt.Errorf("failed to get cart: %w", err)
	}

	cart := make(domain.Cart, len(doc.Items))
	for i, item := range doc.Items {
		cart[i] = domain.LineItem{
			Product: domain.Product{
				ID:    item.ProductID,
				Title: item.Title,
				Price: item.Price,
				Image: item.Image,
			},
			Amount: item.Amount,
		}
	}
	if err := cart.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformedCart, err)
	}

	return cart, nil
}

func (m *MongoRepository) SaveCart(ctx context.Context, key string, cart domain.Cart) error {
	items := make([]lineItemDocument, len(cart))
	for i, item := range cart {
		items[i] = lineItemDocument{
			ProductID: item.ID,
			Title:     item.Title,
			Price:     item.Price,
			Image:     item.Image,
			Amount:    item.Amount,
		}
	}

	update := bson.M{"$set": bson.M{
		"items":      items,
		"updated_at": time.Now(),
	}}
	opts := options.Update().SetUpsert(true)

	_, err := m.collection.UpdateOne(ctx, bson.M{"_id": key}, update, opts)
	if err != nil {
		return fmt.Errorf("failed to upsert cart: %w", err)
	}

	return nil
}

func (m *MongoRepository) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return m.collection.Database().Client().Disconnect(ctx)
}
