// Command seed populates the database with demo users and clients: one
// admin, one supervisor, three managers, and three companies per manager
// with Caterpillar pump equipment on a yearly service schedule.
package main

import (
	"context"
	"fmt"
	"math/rand"
	"os"
	"time"

	"github.com/joho/godotenv"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"golang.org/x/crypto/bcrypt"

	"github.com/fieldserve/servicetrack/internal/core/domain"
	mongoinfra "github.com/fieldserve/servicetrack/internal/infrastructure/db/mongo"
	"github.com/fieldserve/servicetrack/pkg/logger"
)

func main() {
	_ = godotenv.Load()

	log := logger.Init(logger.Options{Level: "info", Pretty: true})

	uri := requireEnv("MONGO_URI")
	database := envOr("MONGO_DB", "servicetrack")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	client, db, err := mongoinfra.Connect(ctx, mongoinfra.Config{URI: uri, Database: database})
	if err != nil {
		log.Fatal().Err(err).Msg("mongo connect failed")
	}
	defer client.Disconnect(ctx)

	if err := mongoinfra.EnsureIndexes(ctx, db); err != nil {
		log.Fatal().Err(err).Msg("ensure indexes failed")
	}

	users := db.Collection("users")
	clients := db.Collection("clients")

	admin := seedUser(ctx, users, "Admin", envOr("ADMIN_EMAIL", "admin@example.com"), requireEnv("ADMIN_PASSWORD"), domain.RoleAdmin)
	seedUser(ctx, users, "Supervisor", envOr("SUPERVISOR_EMAIL", "supervisor@example.com"), requireEnv("SUPERVISOR_PASSWORD"), domain.RoleSupervisor)

	managerSpecs := []struct {
		name     string
		emailEnv string
		passEnv  string
		fallback string
		base     string
	}{
		{"Manager One", "MANAGER1_EMAIL", "MANAGER1_PASSWORD", "manager1@example.com", "Northside"},
		{"Manager Two", "MANAGER2_EMAIL", "MANAGER2_PASSWORD", "manager2@example.com", "Riverside"},
		{"Manager Three", "MANAGER3_EMAIL", "MANAGER3_PASSWORD", "manager3@example.com", "Harbour"},
	}

	_ = admin
	for _, spec := range managerSpecs {
		manager := seedUser(ctx, users, spec.name, envOr(spec.emailEnv, spec.fallback), requireEnv(spec.passEnv), domain.RoleManager)
		seedCompanies(ctx, clients, manager, spec.base)
	}

	log.Info().Msg("seed complete")
}

func requireEnv(key string) string {
	v := os.Getenv(key)
	if v == "" {
		fmt.Fprintf(os.Stderr, "missing required env var: %s\n", key)
		os.Exit(1)
	}
	return v
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// seedUser upserts a user by email so repeated runs stay idempotent, and
// returns the stored _id.
func seedUser(ctx context.Context, col *mongo.Collection, name, email, password, role string) primitive.ObjectID {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		fmt.Fprintf(os.Stderr, "hash password: %v\n", err)
		os.Exit(1)
	}

	opts := options.FindOneAndUpdate().
		SetUpsert(true).
		SetReturnDocument(options.After)

	var doc struct {
		ID primitive.ObjectID `bson:"_id"`
	}
	err = col.FindOneAndUpdate(ctx,
		bson.M{"email": email},
		bson.M{"$set": bson.M{
			"name":     name,
			"email":    email,
			"password": string(hash),
			"role":     role,
		}, "$setOnInsert": bson.M{"createdAt": time.Now().UTC()}},
		opts,
	).Decode(&doc)
	if err != nil {
		fmt.Fprintf(os.Stderr, "seed user %s: %v\n", email, err)
		os.Exit(1)
	}
	return doc.ID
}

// makePump builds one Caterpillar pump on a yearly service schedule.
func makePump(idx string, purchased time.Time) bson.M {
	return bson.M{
		"_id":                 primitive.NewObjectID(),
		"model":               fmt.Sprintf("Caterpillar Pump CP-%s", idx),
		"serial":              fmt.Sprintf("CAT-CP-%s-%06d", idx, 100000+rand.Intn(899999)),
		"purchaseDate":        purchased,
		"serviceStatus":       string(domain.ServiceStatusNone),
		"serviceDueDate":      purchased.AddDate(1, 0, 0),
		"lastServiceNotified": nil,
	}
}

// seedCompanies upserts the three demo companies owned by the manager, one
// of which carries two equipment items.
func seedCompanies(ctx context.Context, col *mongo.Collection, managerID primitive.ObjectID, base string) {
	date := func(s string) time.Time {
		t, _ := time.Parse("2006-01-02", s)
		return t
	}

	companies := []bson.M{
		{
			"companyName":         base + " Alpha Ltd",
			"clientContactPerson": "Pat Murphy",
			"contactEmail":        fmt.Sprintf("%s.alpha@demo.local", base),
			"contactPhone":        "+353111000001",
			"isActive":            true,
			"managerId":           managerID,
			"equipment":           bson.A{makePump("A1", date("2024-08-01"))},
			"notes":               "Auto-seeded company (Alpha)",
		},
		{
			"companyName":         base + " Beta Ltd",
			"clientContactPerson": "Pat Murphy",
			"contactEmail":        fmt.Sprintf("%s.beta@demo.local", base),
			"contactPhone":        "+353111000002",
			"isActive":            true,
			"managerId":           managerID,
			"equipment":           bson.A{makePump("B1", date("2024-09-15")), makePump("B2", date("2024-10-05"))},
			"notes":               "Auto-seeded company (Beta)",
		},
		{
			"companyName":         base + " Gamma Ltd",
			"clientContactPerson": "Pat Murphy",
			"contactEmail":        fmt.Sprintf("%s.gamma@demo.local", base),
			"contactPhone":        "+353111000003",
			"isActive":            true,
			"managerId":           managerID,
			"equipment":           bson.A{makePump("G1", date("2025-01-20"))},
			"notes":               "Auto-seeded company (Gamma)",
		},
	}

	for _, company := range companies {
		_, err := col.UpdateOne(ctx,
			bson.M{"contactEmail": company["contactEmail"]},
			bson.M{"$setOnInsert": company},
			options.Update().SetUpsert(true),
		)
		if err != nil {
			fmt.Fprintf(os.Stderr, "seed company %v: %v\n", company["companyName"], err)
			os.Exit(1)
		}
	}
}
