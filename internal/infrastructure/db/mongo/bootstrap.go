package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"golang.org/x/crypto/bcrypt"

	"github.com/userhive/account-api/internal/core/domain"
)

// BootstrapConfig seeds the store at startup: unique indexes, the anonymous
// sentinel row, and optionally a first admin account.
type BootstrapConfig struct {
	AnonymousID   int64
	AnonymousName string
	AdminName     string
	AdminEmail    string
	// AdminPassword empty skips admin seeding.
	AdminPassword string
}

// Bootstrap prepares the database. Idempotent; safe to run on every start.
func Bootstrap(ctx context.Context, db *mongo.Database, cfg BootstrapConfig, log zerolog.Logger) error {
	if err := ensureIndexes(ctx, db); err != nil {
		return err
	}
	if err := ensureAnonymous(ctx, db, cfg); err != nil {
		return err
	}
	return ensureAdmin(ctx, db, cfg, log)
}

func ensureIndexes(ctx context.Context, db *mongo.Database) error {
	users := db.Collection(usersCollection)
	_, err := users.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "name", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "email", Value: 1}}, Options: options.Index().SetUnique(true)},
	})
	if err != nil {
		return fmt.Errorf("create user indexes: %w", err)
	}

	versions := db.Collection(versionsCollection)
	_, err = versions.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "item_id", Value: 1}, {Key: "created_at", Value: 1}},
	})
	if err != nil {
		return fmt.Errorf("create version index: %w", err)
	}
	return nil
}

// ensureAnonymous upserts the sentinel row. Every unauthenticated request
// resolves to this record, so its absence is a fatal configuration error.
func ensureAnonymous(ctx context.Context, db *mongo.Database, cfg BootstrapConfig) error {
	now := time.Now().UTC().Unix()
	users := db.Collection(usersCollection)
	_, err := users.UpdateOne(ctx,
		bson.M{"_id": cfg.AnonymousID},
		bson.M{
			"$setOnInsert": mongoUser{
				ID:        cfg.AnonymousID,
				Name:      cfg.AnonymousName,
				Email:     cfg.AnonymousName + "@localhost",
				Role:      domain.DefaultRole().String(),
				CreatedAt: now,
				UpdatedAt: now,
			},
		},
		options.Update().SetUpsert(true),
	)
	if err != nil {
		return fmt.Errorf("ensure anonymous user: %w", err)
	}

	// Keep the id counter ahead of the sentinel so allocation never collides.
	counters := db.Collection(countersCollection)
	_, err = counters.UpdateOne(ctx,
		bson.M{"_id": usersCounterID, "seq": bson.M{"$lt": cfg.AnonymousID}},
		bson.M{"$set": bson.M{"seq": cfg.AnonymousID}},
		options.Update().SetUpsert(true),
	)
	if err != nil && !mongo.IsDuplicateKeyError(err) {
		return fmt.Errorf("ensure id counter: %w", err)
	}
	return nil
}

func ensureAdmin(ctx context.Context, db *mongo.Database, cfg BootstrapConfig, log zerolog.Logger) error {
	if cfg.AdminPassword == "" {
		return nil
	}

	repo := NewUserRepository(db)
	if _, err := repo.FindByName(ctx, cfg.AdminName); err == nil {
		return nil
	} else if !errors.Is(err, domain.ErrUserNotFound) {
		return err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(cfg.AdminPassword), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	now := time.Now().UTC()
	admin, err := repo.Create(ctx, &domain.User{
		Name:         cfg.AdminName,
		Email:        cfg.AdminEmail,
		PasswordHash: string(hash),
		Role:         domain.RoleAdmin,
		CreatedAt:    now,
		UpdatedAt:    now,
	})
	if err != nil {
		if errors.Is(err, domain.ErrUserExists) {
			return nil
		}
		return err
	}

	log.Info().Int64("user_id", admin.ID).Str("name", admin.Name).Msg("seeded admin account")
	return nil
}
