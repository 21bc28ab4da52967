package db

import (
	"context"
	"fmt"

	"talk-catalog/pkg/domain"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Client wraps the MongoDB client and database connection
type Client struct {
	mongoClient *mongo.Client
	database    *mongo.Database
	collection  *mongo.Collection
}

// NewClient creates a new database client
func NewClient(connectionString, databaseName, collectionName string) *Client {
	clientOptions := options.Client().ApplyURI(connectionString)
	mongoClient, err := mongo.Connect(context.Background(), clientOptions)
	if err != nil {
		// Return client with nil - error will be caught during Connect()
		return &Client{}
	}

	database := mongoClient.Database(databaseName)
	collection := database.Collection(collectionName)

	return &Client{
		mongoClient: mongoClient,
		database:    database,
		collection:  collection,
	}
}

// Connect establishes connection to MongoDB
func (c *Client) Connect(ctx context.Context) error {
	if c.mongoClient == nil {
		return fmt.Errorf("mongo client not initialized")
	}
	return c.mongoClient.Ping(ctx, nil)
}

// Close closes the MongoDB connection
func (c *Client) Close(ctx context.Context) error {
	if c.mongoClient == nil {
		return nil
	}
	return c.mongoClient.Disconnect(ctx)
}

// SaveShow upserts a show, keyed by its URL, so repeated crawls
// overwrite the previous state of the same show.
func (c *Client) SaveShow(ctx context.Context, show *domain.Show) error {
	if c.collection == nil {
		return fmt.Errorf("collection not initialized")
	}

	filter := bson.M{"url": show.URL}
	update := bson.M{"$set": show}
	opts := options.Update().SetUpsert(true)

	_, err := c.collection.UpdateOne(ctx, filter, update, opts)
	return err
}

// SaveShows upserts every show of a catalogue snapshot.
func (c *Client) SaveShows(ctx context.Context, shows []domain.Show) error {
	for i := range shows {
		if err := c.SaveShow(ctx, &shows[i]); err != nil {
			return fmt.Errorf("save show %s: %w", shows[i].URL, err)
		}
	}
	return nil
}

// GetAllShows fetches the whole mirrored catalogue.
func (c *Client) GetAllShows(ctx context.Context) ([]domain.Show, error) {
	if c.collection == nil {
		return nil, fmt.Errorf("collection not initialized")
	}

	cursor, err := c.collection.Find(ctx, bson.M{})
	if err != nil {
		return nil, fmt.Errorf("failed to query shows: %w", err)
	}
	defer cursor.Close(ctx)

	var shows []domain.Show
	for cursor.Next(ctx) {
		var show domain.Show
		if err := cursor.Decode(&show); err != nil {
			continue // Skip invalid documents
		}
		shows = append(shows, show)
	}

	if err := cursor.Err(); err != nil {
		return nil, fmt.Errorf("cursor error: %w", err)
	}

	return shows, nil
}
