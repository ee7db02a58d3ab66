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
	"github.com/marketprime/marketplace-api/internal/core/ports"
)

const listingsCollection = "listings"

type ListingRepository struct {
	coll *mongo.Collection
}

func NewListingRepository(db *mongo.Database) *ListingRepository {
	return &ListingRepository{coll: db.Collection(listingsCollection)}
}

// mongoListing mirrors domain.Listing with a typed ObjectID so identifier
// validation stays in this package.
type mongoListing struct {
	ID            primitive.ObjectID   `bson:"_id,omitempty"`
	Name          string               `bson:"name"`
	Description   string               `bson:"description"`
	Age           string               `bson:"age,omitempty"`
	City          string               `bson:"city"`
	State         string               `bson:"state"`
	PhoneNo       string               `bson:"phone_no"`
	WhatsappNo    string               `bson:"whatsapp_no,omitempty"`
	HourlyRate    float64              `bson:"hourly_rate"`
	NightRate     float64              `bson:"night_rate"`
	Services      []string             `bson:"services"`
	Availability  string               `bson:"availability,omitempty"`
	Verified      bool                 `bson:"verified"`
	Featured      bool                 `bson:"featured"`
	Images        []string             `bson:"images"`
	OwnerID       string               `bson:"owner_id"`
	OwnerName     string               `bson:"owner_name"`
	OwnerEmail    string               `bson:"owner_email"`
	CreatedByRole domain.CreatorRole   `bson:"created_by_role"`
	Status        domain.ListingStatus `bson:"status"`
	CreatedAt     time.Time            `bson:"created_at"`
	UpdatedAt     time.Time            `bson:"updated_at"`
}

func fromDomainListing(l *domain.Listing) (*mongoListing, error) {
	ml := &mongoListing{
		Name:          l.Name,
		Description:   l.Description,
		Age:           l.Age,
		City:          l.City,
		State:         l.State,
		PhoneNo:       l.PhoneNo,
		WhatsappNo:    l.WhatsappNo,
		HourlyRate:    l.HourlyRate,
		NightRate:     l.NightRate,
		Services:      l.Services,
		Availability:  l.Availability,
		Verified:      l.Verified,
		Featured:      l.Featured,
		Images:        l.Images,
		OwnerID:       l.OwnerID,
		OwnerName:     l.OwnerName,
		OwnerEmail:    l.OwnerEmail,
		CreatedByRole: l.CreatedByRole,
		Status:        l.Status,
		CreatedAt:     l.CreatedAt,
		UpdatedAt:     l.UpdatedAt,
	}
	if l.ID != "" {
		oid, err := primitive.ObjectIDFromHex(l.ID)
		if err != nil {
			return nil, domain.ErrInvalidID
		}
		ml.ID = oid
	}
	return ml, nil
}

func (ml *mongoListing) toDomain() *domain.Listing {
	return &domain.Listing{
		ID:            ml.ID.Hex(),
		Name:          ml.Name,
		Description:   ml.Description,
		Age:           ml.Age,
		City:          ml.City,
		State:         ml.State,
		PhoneNo:       ml.PhoneNo,
		WhatsappNo:    ml.WhatsappNo,
		HourlyRate:    ml.HourlyRate,
		NightRate:     ml.NightRate,
		Services:      ml.Services,
		Availability:  ml.Availability,
		Verified:      ml.Verified,
		Featured:      ml.Featured,
		Images:        ml.Images,
		OwnerID:       ml.OwnerID,
		OwnerName:     ml.OwnerName,
		OwnerEmail:    ml.OwnerEmail,
		CreatedByRole: ml.CreatedByRole,
		Status:        ml.Status,
		CreatedAt:     ml.CreatedAt,
		UpdatedAt:     ml.UpdatedAt,
	}
}

func (r *ListingRepository) Create(ctx context.Context, l *domain.Listing) (*domain.Listing, error) {
	ml, err := fromDomainListing(l)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.coll.InsertOne(ctx, ml)
	if err != nil {
		return nil, fmt.Errorf("insert listing: %w", err)
	}

	created := *l
	created.ID = res.InsertedID.(primitive.ObjectID).Hex()
	return &created, nil
}

func (r *ListingRepository) FindByID(ctx context.Context, id string) (*domain.Listing, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, domain.ErrInvalidID
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var ml mongoListing
	if err := r.coll.FindOne(ctx, bson.M{"_id": oid}).Decode(&ml); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrListingNotFound
		}
		return nil, fmt.Errorf("find listing: %w", err)
	}
	return ml.toDomain(), nil
}

func (r *ListingRepository) List(ctx context.Context, filter ports.ListingFilter) ([]*domain.Listing, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	query := bson.M{}
	if filter.Status != "" {
		query["status"] = filter.Status
	}

	order := -1
	if filter.OldestFirst {
		order = 1
	}
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: order}})

	cursor, err := r.coll.Find(ctx, query, opts)
	if err != nil {
		return nil, fmt.Errorf("list listings: %w", err)
	}
	defer cursor.Close(ctx)

	listings := []*domain.Listing{}
	for cursor.Next(ctx) {
		var ml mongoListing
		if err := cursor.Decode(&ml); err != nil {
			return nil, fmt.Errorf("decode listing: %w", err)
		}
		listings = append(listings, ml.toDomain())
	}
	if err := cursor.Err(); err != nil {
		return nil, fmt.Errorf("list listings: %w", err)
	}
	return listings, nil
}

// Update replaces the stored document. Last write wins by design.
func (r *ListingRepository) Update(ctx context.Context, l *domain.Listing) error {
	ml, err := fromDomainListing(l)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.coll.ReplaceOne(ctx, bson.M{"_id": ml.ID}, ml)
	if err != nil {
		return fmt.Errorf("update listing: %w", err)
	}
	if res.MatchedCount == 0 {
		return domain.ErrListingNotFound
	}
	return nil
}

func (r *ListingRepository) Delete(ctx context.Context, id string) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return domain.ErrInvalidID
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.coll.DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return fmt.Errorf("delete listing: %w", err)
	}
	if res.DeletedCount == 0 {
		return domain.ErrListingNotFound
	}
	return nil
}

// EnsureIndexes creates the indexes the read paths rely on.
func (r *ListingRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	indexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "status", Value: 1}, {Key: "created_at", Value: 1}}},
		{Keys: bson.D{{Key: "owner_id", Value: 1}}},
	}
	_, err := r.coll.Indexes().CreateMany(ctx, indexes)
	return err
}
