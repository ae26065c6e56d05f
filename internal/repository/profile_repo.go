package repository

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"geoquiz/internal/model"
)

// ProfileRepo stores the account-scoped display name. Unlike session
// state it is durable and outlives any quiz session.
type ProfileRepo interface {
	Get(ctx context.Context, accountID string) (*model.Profile, error)
	Upsert(ctx context.Context, accountID, displayName string) (*model.Profile, error)
}

type profileRepo struct {
	collection *mongo.Collection
}

func NewProfileRepo(db *mongo.Database) ProfileRepo {
	return &profileRepo{
		collection: db.Collection("profiles"),
	}
}

func (r *profileRepo) Get(ctx context.Context, accountID string) (*model.Profile, error) {
	var profile model.Profile
	err := r.collection.FindOne(ctx, bson.M{"_id": accountID}).Decode(&profile)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, err
	}
	return &profile, nil
}

func (r *profileRepo) Upsert(ctx context.Context, accountID, displayName string) (*model.Profile, error) {
	profile := &model.Profile{
		AccountID:   accountID,
		DisplayName: displayName,
		UpdatedAt:   time.Now().UTC(),
	}
	_, err := r.collection.ReplaceOne(
		ctx,
		bson.M{"_id": accountID},
		profile,
		options.Replace().SetUpsert(true),
	)
	if err != nil {
		return nil, err
	}
	return profile, nil
}
