package repository

import (
	"context"
	"time"

	"github.com/docgate/docgate/internal/document"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoRepo implements Repository on a MongoDB collection. Grants live as an
// embedded array on the document row, so document deletion cascades over them
// for free. Grant insertion is a single guarded UpdateOne whose filter
// excludes documents already carrying the (username, permission) pair; the
// update is applied atomically server-side, which is what actually enforces
// the triple-uniqueness invariant under concurrent granters.
type MongoRepo struct {
	col *mongo.Collection
}

func NewMongoRepo(col *mongo.Collection) *MongoRepo {
	// unique index on "id" for fast lookups and duplicate protection
	idxModel := mongo.IndexModel{Keys: bson.D{{Key: "id", Value: 1}}, Options: options.Index().SetUnique(true)}
	col.Indexes().CreateOne(context.Background(), idxModel)
	return &MongoRepo{col: col}
}

func (m *MongoRepo) Create(ctx context.Context, doc *document.Document) (string, error) {
	if doc.ID == "" {
		doc.ID = "doc_" + primitive.NewObjectID().Hex()
	}
	if doc.CreatedAt.IsZero() {
		doc.CreatedAt = time.Now().UTC()
	}
	if doc.Grants == nil {
		doc.Grants = []document.Grant{}
	}
	if _, err := m.col.InsertOne(ctx, doc); err != nil {
		return "", err
	}
	return doc.ID, nil
}

func (m *MongoRepo) Get(ctx context.Context, id string) (*document.Document, error) {
	var d document.Document
	err := m.col.FindOne(ctx, bson.M{"id": id}).Decode(&d)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, document.ErrNotFound
		}
		return nil, err
	}
	return &d, nil
}

func (m *MongoRepo) List(ctx context.Context) ([]*document.Document, error) {
	return m.find(ctx, bson.M{})
}

func (m *MongoRepo) ListAccessible(ctx context.Context, username string, p document.Permission) ([]*document.Document, error) {
	return m.find(ctx, accessibleFilter(username, p))
}

func (m *MongoRepo) find(ctx context.Context, filter bson.M) ([]*document.Document, error) {
	cur, err := m.col.Find(ctx, filter)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)
	out := []*document.Document{}
	for cur.Next(ctx) {
		var d document.Document
		if err := cur.Decode(&d); err != nil {
			return nil, err
		}
		out = append(out, &d)
	}
	return out, cur.Err()
}

func (m *MongoRepo) Delete(ctx context.Context, id string) error {
	res, err := m.col.DeleteOne(ctx, bson.M{"id": id})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return document.ErrNotFound
	}
	return nil
}

func (m *MongoRepo) InsertGrant(ctx context.Context, id string, g document.Grant) (*document.Document, error) {
	filter := bson.M{
		"id": id,
		"grants": bson.M{"$not": bson.M{"$elemMatch": bson.M{
			"username":   g.Username,
			"permission": g.Permission,
		}}},
	}
	res, err := m.col.UpdateOne(ctx, filter, bson.M{"$push": bson.M{"grants": g}})
	if err != nil {
		return nil, err
	}
	if res.MatchedCount == 0 {
		// either the document is missing or it already carries the pair;
		// a second lookup tells the two apart
		if _, err := m.Get(ctx, id); err != nil {
			return nil, err
		}
		return nil, ErrGrantExists
	}
	return m.Get(ctx, id)
}

func (m *MongoRepo) FilterExisting(ctx context.Context, ids []string) ([]string, error) {
	return m.findIDs(ctx, bson.M{"id": bson.M{"$in": ids}})
}

func (m *MongoRepo) FilterAccessible(ctx context.Context, username string, p document.Permission, ids []string) ([]string, error) {
	filter := accessibleFilter(username, p)
	filter["id"] = bson.M{"$in": ids}
	return m.findIDs(ctx, filter)
}

func (m *MongoRepo) findIDs(ctx context.Context, filter bson.M) ([]string, error) {
	opts := options.Find().SetProjection(bson.M{"id": 1})
	cur, err := m.col.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)
	out := []string{}
	seen := map[string]bool{}
	for cur.Next(ctx) {
		var row struct {
			ID string `bson:"id"`
		}
		if err := cur.Decode(&row); err != nil {
			return nil, err
		}
		if !seen[row.ID] {
			seen[row.ID] = true
			out = append(out, row.ID)
		}
	}
	return out, cur.Err()
}

// accessibleFilter selects documents created by username or carrying an
// explicit (username, p) grant, matching the non-admin listing rule.
func accessibleFilter(username string, p document.Permission) bson.M {
	return bson.M{"$or": []bson.M{
		{"createdBy": username},
		{"grants": bson.M{"$elemMatch": bson.M{"username": username, "permission": p}}},
	}}
}
