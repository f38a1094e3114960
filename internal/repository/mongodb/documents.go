package mongodb

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/mamadbah2/household/internal/domain/models"
)

const ratesDocumentID = "currentRates"

// deliveryDocument is the stored shape of a delivery event.
type deliveryDocument struct {
	ID             primitive.ObjectID    `bson:"_id,omitempty"`
	Date           time.Time             `bson:"date"`
	Item           string                `bson:"item"`
	Quantity       primitive.Decimal128  `bson:"quantity"`
	Status         string                `bson:"status,omitempty"`
	BilledQuantity *primitive.Decimal128 `bson:"billedQuantity,omitempty"`
}

type paymentDocument struct {
	ID         primitive.ObjectID   `bson:"_id,omitempty"`
	Date       time.Time            `bson:"date"`
	Item       string               `bson:"item"`
	Amount     primitive.Decimal128 `bson:"amount"`
	Reason     string               `bson:"reason,omitempty"`
	Attachment string               `bson:"attachment,omitempty"`
}

type ratesDocument struct {
	ID            string               `bson:"_id"`
	Milk          primitive.Decimal128 `bson:"milk"`
	Water         primitive.Decimal128 `bson:"water"`
	HouseCleaning primitive.Decimal128 `bson:"house-cleaning"`
	Gardener      primitive.Decimal128 `bson:"gardener"`
}

func toDecimal128(value decimal.Decimal) (primitive.Decimal128, error) {
	d, err := primitive.ParseDecimal128(value.String())
	if err != nil {
		return primitive.Decimal128{}, fmt.Errorf("encode decimal %s: %w: %w", value.String(), models.ErrTooPrecise, err)
	}
	return d, nil
}

func fromDecimal128(value primitive.Decimal128) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(value.String())
	if err != nil {
		return decimal.Zero, fmt.Errorf("decode decimal %s: %w", value.String(), err)
	}
	return d, nil
}

func newDeliveryDocument(event models.DeliveryEvent) (deliveryDocument, error) {
	qty, err := toDecimal128(event.Quantity)
	if err != nil {
		return deliveryDocument{}, err
	}

	doc := deliveryDocument{
		Date:     event.Date.Time,
		Item:     string(event.Item),
		Quantity: qty,
		Status:   string(event.Status),
	}

	if event.BilledQuantity != nil {
		billed, err := toDecimal128(*event.BilledQuantity)
		if err != nil {
			return deliveryDocument{}, err
		}
		doc.BilledQuantity = &billed
	}

	if event.ID != "" {
		oid, err := primitive.ObjectIDFromHex(event.ID)
		if err != nil {
			return deliveryDocument{}, fmt.Errorf("delivery id %q: %w", event.ID, err)
		}
		doc.ID = oid
	}

	return doc, nil
}

func (d deliveryDocument) toModel() (models.DeliveryEvent, error) {
	item, err := models.ParseServiceKind(d.Item)
	if err != nil {
		return models.DeliveryEvent{}, err
	}
	status, err := models.ParseStatus(d.Status)
	if err != nil {
		return models.DeliveryEvent{}, err
	}
	qty, err := fromDecimal128(d.Quantity)
	if err != nil {
		return models.DeliveryEvent{}, err
	}

	event := models.DeliveryEvent{
		ID:       d.ID.Hex(),
		Date:     models.DateOf(d.Date.UTC()),
		Item:     item,
		Quantity: qty,
		Status:   status,
	}

	if d.BilledQuantity != nil {
		billed, err := fromDecimal128(*d.BilledQuantity)
		if err != nil {
			return models.DeliveryEvent{}, err
		}
		event.BilledQuantity = &billed
	}

	return event, nil
}

func newPaymentDocument(payment models.PaymentRecord) (paymentDocument, error) {
	amount, err := toDecimal128(payment.Amount)
	if err != nil {
		return paymentDocument{}, err
	}

	doc := paymentDocument{
		Date:   payment.Date.Time,
		Item:   string(payment.Item),
		Amount: amount,
	}
	if payment.Reason != nil {
		doc.Reason = *payment.Reason
	}
	if payment.Attachment != nil {
		doc.Attachment = *payment.Attachment
	}

	if payment.ID != "" {
		oid, err := primitive.ObjectIDFromHex(payment.ID)
		if err != nil {
			return paymentDocument{}, fmt.Errorf("payment id %q: %w", payment.ID, err)
		}
		doc.ID = oid
	}

	return doc, nil
}

func (d paymentDocument) toModel() (models.PaymentRecord, error) {
	item, err := models.ParseServiceKind(d.Item)
	if err != nil {
		return models.PaymentRecord{}, err
	}
	amount, err := fromDecimal128(d.Amount)
	if err != nil {
		return models.PaymentRecord{}, err
	}

	return models.PaymentRecord{
		ID:         d.ID.Hex(),
		Date:       models.DateOf(d.Date.UTC()),
		Item:       item,
		Amount:     amount,
		Reason:     models.OptionalString(d.Reason),
		Attachment: models.OptionalString(d.Attachment),
	}, nil
}

func newRatesDocument(rates models.RateTable) (ratesDocument, error) {
	doc := ratesDocument{ID: ratesDocumentID}

	var err error
	if doc.Milk, err = toDecimal128(rates.Milk); err != nil {
		return ratesDocument{}, err
	}
	if doc.Water, err = toDecimal128(rates.Water); err != nil {
		return ratesDocument{}, err
	}
	if doc.HouseCleaning, err = toDecimal128(rates.HouseCleaning); err != nil {
		return ratesDocument{}, err
	}
	if doc.Gardener, err = toDecimal128(rates.Gardener); err != nil {
		return ratesDocument{}, err
	}
	return doc, nil
}

func (d ratesDocument) toModel() (models.RateTable, error) {
	var (
		rates models.RateTable
		err   error
	)
	if rates.Milk, err = fromDecimal128(d.Milk); err != nil {
		return models.RateTable{}, err
	}
	if rates.Water, err = fromDecimal128(d.Water); err != nil {
		return models.RateTable{}, err
	}
	if rates.HouseCleaning, err = fromDecimal128(d.HouseCleaning); err != nil {
		return models.RateTable{}, err
	}
	if rates.Gardener, err = fromDecimal128(d.Gardener); err != nil {
		return models.RateTable{}, err
	}
	return rates, nil
}
