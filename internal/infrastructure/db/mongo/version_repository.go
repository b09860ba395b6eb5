package mongo

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/userhive/account-api/internal/core/domain"
)

const versionsCollection = "versions"

// VersionRepository persists the append-only audit history. Entries are
// never updated or deleted; even destroying a user keeps its history.
type VersionRepository struct {
	coll *mongo.Collection
}

func NewVersionRepository(db *mongo.Database) *VersionRepository {
	return &VersionRepository{coll: db.Collection(versionsCollection)}
}

type mongoVersion struct {
	ItemID    int64         `bson:"item_id"`
	Event     string        `bson:"event"`
	Object    mongoSnapshot `bson:"object"`
	Whodunnit int64         `bson:"whodunnit"`
	CreatedAt int64         `bson:"created_at"`
}

type mongoSnapshot struct {
	Name         string             `bson:"name"`
	Email        string             `bson:"email"`
	Role         string             `bson:"role"`
	Translations []mongoTranslation `bson:"translations,omitempty"`
}

func (r *VersionRepository) Insert(ctx context.Context, version *domain.Version) error {
	doc := mongoVersion{
		ItemID: version.ItemID,
		Event:  string(version.Event),
		Object: mongoSnapshot{
			Name:  version.Object.Name,
			Email: version.Object.Email,
			Role:  version.Object.Role.String(),
		},
		Whodunnit: version.Whodunnit,
		CreatedAt: version.CreatedAt.Unix(),
	}
	for _, t := range version.Object.Translations {
		doc.Object.Translations = append(doc.Object.Translations, mongoTranslation(t))
	}

	if _, err := r.coll.InsertOne(ctx, doc); err != nil {
		return fmt.Errorf("insert version: %w", err)
	}
	return nil
}

func (r *VersionRepository) ListByItem(ctx context.Context, itemID int64) ([]domain.Version, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}})
	cursor, err := r.coll.Find(ctx, bson.M{"item_id": itemID}, opts)
	if err != nil {
		return nil, fmt.Errorf("list versions: %w", err)
	}
	defer cursor.Close(ctx)

	var versions []domain.Version
	for cursor.Next(ctx) {
		var mv mongoVersion
		if err := cursor.Decode(&mv); err != nil {
			return nil, fmt.Errorf("decode version: %w", err)
		}
		version, err := fromMongoVersion(mv)
		if err != nil {
			return nil, err
		}
		versions = append(versions, version)
	}
	if err := cursor.Err(); err != nil {
		return nil, fmt.Errorf("list versions: %w", err)
	}
	return versions, nil
}

func fromMongoVersion(mv mongoVersion) (domain.Version, error) {
	role, err := domain.ParseRole(mv.Object.Role)
	if err != nil {
		return domain.Version{}, fmt.Errorf("version of user %d: %w", mv.ItemID, err)
	}
	version := domain.Version{
		ItemID: mv.ItemID,
		Event:  domain.VersionEvent(mv.Event),
		Object: domain.UserSnapshot{
			Name:  mv.Object.Name,
			Email: mv.Object.Email,
			Role:  role,
		},
		Whodunnit: mv.Whodunnit,
		CreatedAt: unixToTime(mv.CreatedAt),
	}
	for _, t := range mv.Object.Translations {
		version.Object.Translations = append(version.Object.Translations, domain.Translation(t))
	}
	return version, nil
}
