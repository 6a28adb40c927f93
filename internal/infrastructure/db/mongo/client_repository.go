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

	"github.com/fieldserve/servicetrack/internal/core/domain"
	"github.com/fieldserve/servicetrack/internal/core/ports"
)

const collectionClients = "clients"

type ClientRepository struct {
	col *mongo.Collection
}

func NewClientRepository(db *mongo.Database) *ClientRepository {
	return &ClientRepository{col: db.Collection(collectionClients)}
}

// mongoEquipment is the persisted shape of one embedded equipment item. Each
// item carries its own ObjectID so it is addressable within the parent.
type mongoEquipment struct {
	ID                  primitive.ObjectID `bson:"_id,omitempty"`
	Model               string             `bson:"model,omitempty"`
	Serial              string             `bson:"serial,omitempty"`
	PurchaseDate        time.Time          `bson:"purchaseDate,omitempty"`
	ServiceStatus       string             `bson:"serviceStatus"`
	LastServiceNotified *time.Time         `bson:"lastServiceNotified,omitempty"`
	ServiceDueDate      time.Time          `bson:"serviceDueDate,omitempty"`
}

type mongoClient struct {
	ID            primitive.ObjectID `bson:"_id,omitempty"`
	ManagerID     primitive.ObjectID `bson:"managerId"`
	ContactPerson string             `bson:"clientContactPerson"`
	CompanyName   string             `bson:"companyName,omitempty"`
	ContactEmail  string             `bson:"contactEmail"`
	ContactPhone  string             `bson:"contactPhone,omitempty"`
	Notes         string             `bson:"notes,omitempty"`
	IsActive      bool               `bson:"isActive"`
	Equipment     []mongoEquipment   `bson:"equipment"`
}

func toClientDoc(c *domain.Client) (*mongoClient, error) {
	managerOID, err := primitive.ObjectIDFromHex(c.ManagerID)
	if err != nil {
		return nil, domain.ErrUserNotFound
	}

	doc := &mongoClient{
		ManagerID:     managerOID,
		ContactPerson: c.ContactPerson,
		CompanyName:   c.CompanyName,
		ContactEmail:  c.ContactEmail,
		ContactPhone:  c.ContactPhone,
		Notes:         c.Notes,
		IsActive:      c.Active,
		Equipment:     make([]mongoEquipment, 0, len(c.Equipment)),
	}
	for _, eq := range c.Equipment {
		doc.Equipment = append(doc.Equipment, toEquipmentDoc(eq))
	}
	return doc, nil
}

func toEquipmentDoc(eq domain.Equipment) mongoEquipment {
	id := primitive.NilObjectID
	if eq.ID != "" {
		if oid, err := primitive.ObjectIDFromHex(eq.ID); err == nil {
			id = oid
		}
	}
	if id.IsZero() {
		id = primitive.NewObjectID()
	}
	return mongoEquipment{
		ID:                  id,
		Model:               eq.Model,
		Serial:              eq.Serial,
		PurchaseDate:        eq.PurchaseDate,
		ServiceStatus:       string(eq.ServiceStatus),
		LastServiceNotified: eq.LastServiceNotified,
		ServiceDueDate:      eq.ServiceDueDate,
	}
}

func (d *mongoClient) toDomain() *domain.Client {
	client := &domain.Client{
		ID:            d.ID.Hex(),
		ManagerID:     d.ManagerID.Hex(),
		ContactPerson: d.ContactPerson,
		CompanyName:   d.CompanyName,
		ContactEmail:  d.ContactEmail,
		ContactPhone:  d.ContactPhone,
		Notes:         d.Notes,
		Active:        d.IsActive,
		Equipment:     make([]domain.Equipment, 0, len(d.Equipment)),
	}
	for _, eq := range d.Equipment {
		client.Equipment = append(client.Equipment, domain.Equipment{
			ID:                  eq.ID.Hex(),
			Model:               eq.Model,
			Serial:              eq.Serial,
			PurchaseDate:        eq.PurchaseDate,
			ServiceStatus:       domain.ServiceStatus(eq.ServiceStatus),
			LastServiceNotified: eq.LastServiceNotified,
			ServiceDueDate:      eq.ServiceDueDate,
		})
	}
	return client
}

// Insert stores a new client document and returns it with generated ids.
func (r *ClientRepository) Insert(ctx context.Context, c *domain.Client) (*domain.Client, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	doc, err := toClientDoc(c)
	if err != nil {
		return nil, err
	}

	res, err := r.col.InsertOne(ctx, doc)
	if err != nil {
		return nil, fmt.Errorf("insert client: %w", err)
	}

	doc.ID = res.InsertedID.(primitive.ObjectID)
	return doc.toDomain(), nil
}

// FindByID retrieves a single client. A malformed id is treated as not found,
// matching the behaviour of a well-formed id with no document.
func (r *ClientRepository) FindByID(ctx context.Context, id string) (*domain.Client, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, domain.ErrClientNotFound
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var doc mongoClient
	if err := r.col.FindOne(ctx, bson.M{"_id": oid}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrClientNotFound
		}
		return nil, err
	}
	return doc.toDomain(), nil
}

// List returns all clients, or only those owned by managerID when non-empty.
func (r *ClientRepository) List(ctx context.Context, managerID string) ([]*domain.Client, error) {
	filter := bson.M{}
	if managerID != "" {
		oid, err := primitive.ObjectIDFromHex(managerID)
		if err != nil {
			return nil, domain.ErrUserNotFound
		}
		filter["managerId"] = oid
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	cur, err := r.col.Find(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("list clients: %w", err)
	}
	defer cur.Close(ctx)

	var clients []*domain.Client
	for cur.Next(ctx) {
		var doc mongoClient
		if err := cur.Decode(&doc); err != nil {
			return nil, fmt.Errorf("decode client: %w", err)
		}
		clients = append(clients, doc.toDomain())
	}
	return clients, cur.Err()
}

// Update overwrites the mutable fields and the full equipment list of the
// client. The owning manager is untouched.
func (r *ClientRepository) Update(ctx context.Context, c *domain.Client) error {
	oid, err := primitive.ObjectIDFromHex(c.ID)
	if err != nil {
		return domain.ErrClientNotFound
	}

	equipment := make([]mongoEquipment, 0, len(c.Equipment))
	for _, eq := range c.Equipment {
		equipment = append(equipment, toEquipmentDoc(eq))
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.col.UpdateOne(ctx, bson.M{"_id": oid}, bson.M{"$set": bson.M{
		"clientContactPerson": c.ContactPerson,
		"companyName":         c.CompanyName,
		"contactEmail":        c.ContactEmail,
		"contactPhone":        c.ContactPhone,
		"notes":               c.Notes,
		"isActive":            c.Active,
		"equipment":           equipment,
	}})
	if err != nil {
		return fmt.Errorf("update client: %w", err)
	}
	if res.MatchedCount == 0 {
		return domain.ErrClientNotFound
	}
	return nil
}

// Delete removes the client document permanently.
func (r *ClientRepository) Delete(ctx context.Context, id string) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return domain.ErrClientNotFound
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.col.DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return fmt.Errorf("delete client: %w", err)
	}
	if res.DeletedCount == 0 {
		return domain.ErrClientNotFound
	}
	return nil
}

// SetActive flips the soft-delete flag.
func (r *ClientRepository) SetActive(ctx context.Context, id string, active bool) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return domain.ErrClientNotFound
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.col.UpdateOne(ctx, bson.M{"_id": oid}, bson.M{"$set": bson.M{"isActive": active}})
	if err != nil {
		return fmt.Errorf("set active: %w", err)
	}
	if res.MatchedCount == 0 {
		return domain.ErrClientNotFound
	}
	return nil
}

// SetManager reassigns the client and returns the updated document.
func (r *ClientRepository) SetManager(ctx context.Context, id, managerID string) (*domain.Client, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, domain.ErrClientNotFound
	}
	managerOID, err := primitive.ObjectIDFromHex(managerID)
	if err != nil {
		return nil, domain.ErrNotAManager
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var doc mongoClient
	err = r.col.FindOneAndUpdate(ctx,
		bson.M{"_id": oid},
		bson.M{"$set": bson.M{"managerId": managerOID}},
		opts,
	).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrClientNotFound
		}
		return nil, err
	}
	return doc.toDomain(), nil
}

// UpdateEquipment writes the service fields of one embedded item using a
// positional update, keeping the transition a single atomic document write.
func (r *ClientRepository) UpdateEquipment(ctx context.Context, clientID string, eq *domain.Equipment) error {
	clientOID, err := primitive.ObjectIDFromHex(clientID)
	if err != nil {
		return domain.ErrClientNotFound
	}
	eqOID, err := primitive.ObjectIDFromHex(eq.ID)
	if err != nil {
		return domain.ErrEquipmentNotFound
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.col.UpdateOne(ctx,
		bson.M{"_id": clientOID, "equipment._id": eqOID},
		bson.M{"$set": bson.M{
			"equipment.$.serviceStatus":       string(eq.ServiceStatus),
			"equipment.$.lastServiceNotified": eq.LastServiceNotified,
			"equipment.$.serviceDueDate":      eq.ServiceDueDate,
		}},
	)
	if err != nil {
		return fmt.Errorf("update equipment: %w", err)
	}
	if res.MatchedCount == 0 {
		return domain.ErrEquipmentNotFound
	}
	return nil
}

// CountAll returns the unconditional client count.
func (r *ClientRepository) CountAll(ctx context.Context) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	return r.col.CountDocuments(ctx, bson.M{})
}

// CountDueInWindow counts clients with at least one equipment item whose due
// date falls inside the filter window, via $elemMatch so the date and status
// conditions apply to the same item.
func (r *ClientRepository) CountDueInWindow(ctx context.Context, f ports.DueWindowFilter) (int64, error) {
	match := bson.M{
		"serviceDueDate": bson.M{"$gte": f.From, "$lte": f.To},
	}
	if f.Status != "" {
		match["serviceStatus"] = string(f.Status)
	}
	if f.ExcludeStatus != "" {
		match["serviceStatus"] = bson.M{"$ne": string(f.ExcludeStatus)}
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	return r.col.CountDocuments(ctx, bson.M{"equipment": bson.M{"$elemMatch": match}})
}

// EnsureIndexes creates the owner lookup index on the clients collection.
func (r *ClientRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	indexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "managerId", Value: 1}}},
		{Keys: bson.D{{Key: "equipment.serviceDueDate", Value: 1}}},
	}

	_, err := r.col.Indexes().CreateMany(ctx, indexes)
	return err
}
