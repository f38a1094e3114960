package mongodb

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"

	"github.com/mamadbah2/household/internal/domain/models"
	"github.com/mamadbah2/household/internal/repository"
)

const (
	deliveriesCollection = "delivery_records"
	paymentsCollection   = "payments"
	ratesCollection      = "rates"
)

// MongoDBRepository implements repository.Store on top of MongoDB.
type MongoDBRepository struct {
	client *mongo.Client
	dbName string
	logger *zap.Logger
}

var _ repository.Store = (*MongoDBRepository)(nil)

// NewMongoDBRepository creates a new MongoDB repository.
func NewMongoDBRepository(ctx context.Context, uri string, dbName string, logger *zap.Logger) (*MongoDBRepository, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	clientOptions := options.Client().ApplyURI(uri)
	client, err := mongo.Connect(ctx, clientOptions)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to mongodb: %w", err)
	}

	// Ping the database to verify connection
	if err := client.Ping(ctx, nil); err != nil {
		return nil, fmt.Errorf("failed to ping mongodb: %w", err)
	}

	return &MongoDBRepository{
		client: client,
		dbName: dbName,
		logger: logger,
	}, nil
}

func (r *MongoDBRepository) collection(name string) *mongo.Collection {
	return r.client.Database(r.dbName).Collection(name)
}

// EnsureIndexes creates the date and item indexes used by list and purge queries.
func (r *MongoDBRepository) EnsureIndexes(ctx context.Context) error {
	indexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "date", Value: -1}}},
		{Keys: bson.D{{Key: "item", Value: 1}}},
	}
	for _, name := range []string{deliveriesCollection, paymentsCollection} {
		if _, err := r.collection(name).Indexes().CreateMany(ctx, indexes); err != nil {
			return fmt.Errorf("create indexes on %s: %w", name, err)
		}
	}
	return nil
}

// ListDeliveries returns every delivery, most recent first. Documents that do
// not describe a known service kind or status are skipped.
func (r *MongoDBRepository) ListDeliveries(ctx context.Context) ([]models.DeliveryEvent, error) {
	opts := options.Find().SetSort(bson.D{{Key: "date", Value: -1}})
	cursor, err := r.collection(deliveriesCollection).Find(ctx, bson.D{}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to query deliveries: %w", err)
	}

	var docs []deliveryDocument
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("failed to decode deliveries: %w", err)
	}

	events := make([]models.DeliveryEvent, 0, len(docs))
	for _, doc := range docs {
		event, err := doc.toModel()
		if err != nil {
			r.logger.Warn("skip unreadable delivery document", zap.String("id", doc.ID.Hex()), zap.Error(err))
			continue
		}
		events = append(events, event)
	}
	return events, nil
}

// InsertDelivery stores a new delivery and returns its id.
func (r *MongoDBRepository) InsertDelivery(ctx context.Context, event models.DeliveryEvent) (string, error) {
	event.ID = ""
	doc, err := newDeliveryDocument(event)
	if err != nil {
		return "", err
	}

	res, err := r.collection(deliveriesCollection).InsertOne(ctx, doc)
	if err != nil {
		return "", fmt.Errorf("failed to insert delivery: %w", err)
	}
	return insertedID(res)
}

// UpdateDelivery replaces the stored delivery with the same id.
func (r *MongoDBRepository) UpdateDelivery(ctx context.Context, event models.DeliveryEvent) error {
	oid, err := primitive.ObjectIDFromHex(event.ID)
	if err != nil {
		return repository.ErrNotFound
	}
	doc, err := newDeliveryDocument(event)
	if err != nil {
		return err
	}

	res, err := r.collection(deliveriesCollection).ReplaceOne(ctx, bson.M{"_id": oid}, doc)
	if err != nil {
		return fmt.Errorf("failed to update delivery: %w", err)
	}
	if res.MatchedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// DeleteDelivery removes the delivery with id.
func (r *MongoDBRepository) DeleteDelivery(ctx context.Context, id string) error {
	return r.deleteByID(ctx, deliveriesCollection, id)
}

// ListPayments returns every payment, most recent first.
func (r *MongoDBRepository) ListPayments(ctx context.Context) ([]models.PaymentRecord, error) {
	opts := options.Find().SetSort(bson.D{{Key: "date", Value: -1}})
	cursor, err := r.collection(paymentsCollection).Find(ctx, bson.D{}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to query payments: %w", err)
	}

	var docs []paymentDocument
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("failed to decode payments: %w", err)
	}

	payments := make([]models.PaymentRecord, 0, len(docs))
	for _, doc := range docs {
		payment, err := doc.toModel()
		if err != nil {
			r.logger.Warn("skip unreadable payment document", zap.String("id", doc.ID.Hex()), zap.Error(err))
			continue
		}
		payments = append(payments, payment)
	}
	return payments, nil
}

// InsertPayment stores a new payment and returns its id.
func (r *MongoDBRepository) InsertPayment(ctx context.Context, payment models.PaymentRecord) (string, error) {
	payment.ID = ""
	doc, err := newPaymentDocument(payment)
	if err != nil {
		return "", err
	}

	res, err := r.collection(paymentsCollection).InsertOne(ctx, doc)
	if err != nil {
		return "", fmt.Errorf("failed to insert payment: %w", err)
	}
	return insertedID(res)
}

// UpdatePayment replaces the stored payment with the same id.
func (r *MongoDBRepository) UpdatePayment(ctx context.Context, payment models.PaymentRecord) error {
	oid, err := primitive.ObjectIDFromHex(payment.ID)
	if err != nil {
		return repository.ErrNotFound
	}
	doc, err := newPaymentDocument(payment)
	if err != nil {
		return err
	}

	res, err := r.collection(paymentsCollection).ReplaceOne(ctx, bson.M{"_id": oid}, doc)
	if err != nil {
		return fmt.Errorf("failed to update payment: %w", err)
	}
	if res.MatchedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// DeletePayment removes the payment with id.
func (r *MongoDBRepository) DeletePayment(ctx context.Context, id string) error {
	return r.deleteByID(ctx, paymentsCollection, id)
}

// GetRates loads the rate table, seeding the defaults when it does not exist.
func (r *MongoDBRepository) GetRates(ctx context.Context) (models.RateTable, error) {
	var doc ratesDocument
	err := r.collection(ratesCollection).FindOne(ctx, bson.M{"_id": ratesDocumentID}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		defaults := models.DefaultRates()
		if err := r.SaveRates(ctx, defaults); err != nil {
			return models.RateTable{}, err
		}
		r.logger.Info("rates document created with defaults")
		return defaults, nil
	}
	if err != nil {
		return models.RateTable{}, fmt.Errorf("failed to load rates: %w", err)
	}
	return doc.toModel()
}

// SaveRates overwrites the rate table.
func (r *MongoDBRepository) SaveRates(ctx context.Context, rates models.RateTable) error {
	doc, err := newRatesDocument(rates)
	if err != nil {
		return err
	}

	opts := options.Replace().SetUpsert(true)
	if _, err := r.collection(ratesCollection).ReplaceOne(ctx, bson.M{"_id": ratesDocumentID}, doc, opts); err != nil {
		return fmt.Errorf("failed to save rates: %w", err)
	}
	return nil
}

// DeleteByItem removes every delivery and payment of kind. The two deletes are
// not atomic; a failure on payments leaves the deliveries already removed.
func (r *MongoDBRepository) DeleteByItem(ctx context.Context, kind models.ServiceKind) error {
	filter := bson.M{"item": string(kind)}

	deliveries, err := r.collection(deliveriesCollection).DeleteMany(ctx, filter)
	if err != nil {
		return fmt.Errorf("failed to delete %s deliveries: %w", kind, err)
	}
	payments, err := r.collection(paymentsCollection).DeleteMany(ctx, filter)
	if err != nil {
		return fmt.Errorf("failed to delete %s payments: %w", kind, err)
	}

	r.logger.Info("item purged",
		zap.String("item", string(kind)),
		zap.Int64("deliveries", deliveries.DeletedCount),
		zap.Int64("payments", payments.DeletedCount))
	return nil
}

// Close closes the MongoDB connection.
func (r *MongoDBRepository) Close(ctx context.Context) error {
	return r.client.Disconnect(ctx)
}

func (r *MongoDBRepository) deleteByID(ctx context.Context, collection, id string) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return repository.ErrNotFound
	}

	res, err := r.collection(collection).DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return fmt.Errorf("failed to delete from %s: %w", collection, err)
	}
	if res.DeletedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func insertedID(res *mongo.InsertOneResult) (string, error) {
	oid, ok := res.InsertedID.(primitive.ObjectID)
	if !ok {
		return "", fmt.Errorf("unexpected inserted id type %T", res.InsertedID)
	}
	return oid.Hex(), nil
}
