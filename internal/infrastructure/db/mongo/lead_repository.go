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

	"github.com/marketprime/marketplace-api/internal/core/domain"
)

const leadsCollection = "forms"

type LeadRepository struct {
	coll *mongo.Collection
}

func NewLeadRepository(db *mongo.Database) *LeadRepository {
	return &LeadRepository{coll: db.Collection(leadsCollection)}
}

type mongoLead struct {
	ID        primitive.ObjectID `bson:"_id,omitempty"`
	Name      string             `bson:"name"`
	Message   string             `bson:"message"`
	PhoneNo   string             `bson:"phone_no"`
	Location  string             `bson:"location,omitempty"`
	City      string             `bson:"city"`
	State     string             `bson:"state,omitempty"`
	OwnerID   string             `bson:"owner_id"`
	UserName  string             `bson:"user_name"`
	UserEmail string             `bson:"user_email"`
	Status    domain.LeadStatus  `bson:"status"`
	CreatedAt time.Time          `bson:"created_at"`
	UpdatedAt time.Time          `bson:"updated_at"`
}

func (ml *mongoLead) toDomain() *domain.Lead {
	return &domain.Lead{
		ID:        ml.ID.Hex(),
		Name:      ml.Name,
		Message:   ml.Message,
		PhoneNo:   ml.PhoneNo,
		Location:  ml.Location,
		City:      ml.City,
		State:     ml.State,
		OwnerID:   ml.OwnerID,
		UserName:  ml.UserName,
		UserEmail: ml.UserEmail,
		Status:    ml.Status,
		CreatedAt: ml.CreatedAt,
		UpdatedAt: ml.UpdatedAt,
	}
}

func (r *LeadRepository) Create(ctx context.Context, l *domain.Lead) (*domain.Lead, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	doc := mongoLead{
		Name:      l.Name,
		Message:   l.Message,
		PhoneNo:   l.PhoneNo,
		Location:  l.Location,
		City:      l.City,
		State:     l.State,
		OwnerID:   l.OwnerID,
		UserName:  l.UserName,
		UserEmail: l.UserEmail,
		Status:    l.Status,
		CreatedAt: l.CreatedAt,
		UpdatedAt: l.UpdatedAt,
	}
	res, err := r.coll.InsertOne(ctx, doc)
	if err != nil {
		return nil, fmt.Errorf("insert lead: %w", err)
	}

	created := *l
	created.ID = res.InsertedID.(primitive.ObjectID).Hex()
	return &created, nil
}

func (r *LeadRepository) FindByID(ctx context.Context, id string) (*domain.Lead, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, domain.ErrInvalidID
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var ml mongoLead
	if err := r.coll.FindOne(ctx, bson.M{"_id": oid}).Decode(&ml); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrLeadNotFound
		}
		return nil, fmt.Errorf("find lead: %w", err)
	}
	return ml.toDomain(), nil
}

func (r *LeadRepository) List(ctx context.Context) ([]*domain.Lead, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	cursor, err := r.coll.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, fmt.Errorf("list leads: %w", err)
	}
	defer cursor.Close(ctx)

	leads := []*domain.Lead{}
	for cursor.Next(ctx) {
		var ml mongoLead
		if err := cursor.Decode(&ml); err != nil {
			return nil, fmt.Errorf("decode lead: %w", err)
		}
		leads = append(leads, ml.toDomain())
	}
	if err := cursor.Err(); err != nil {
		return nil, fmt.Errorf("list leads: %w", err)
	}
	return leads, nil
}

func (r *LeadRepository) UpdateStatus(ctx context.Context, id string, status domain.LeadStatus) (*domain.Lead, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, domain.ErrInvalidID
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	update := bson.M{"$set": bson.M{"status": status, "updated_at": time.Now().UTC()}}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var ml mongoLead
	if err := r.coll.FindOneAndUpdate(ctx, bson.M{"_id": oid}, update, opts).Decode(&ml); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrLeadNotFound
		}
		return nil, fmt.Errorf("update lead status: %w", err)
	}
	return ml.toDomain(), nil
}
