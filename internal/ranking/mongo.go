package ranking

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoRanking keeps per-course standings inside the course document, as a
// "rankings" array of {user_id, user_name, points}.
type MongoRanking struct {
	courses *mongo.Collection
}

// NewMongoRanking uses the given courses collection.
func NewMongoRanking(courses *mongo.Collection) *MongoRanking {
	return &MongoRanking{courses: courses}
}

// courseKey uses an ObjectID when the course id is one, the raw string
// otherwise.
func courseKey(courseID string) any {
	if oid, err := primitive.ObjectIDFromHex(courseID); err == nil {
		return oid
	}
	return courseID
}

// Report increments the user's entry, adding one if the user has none yet.
func (m *MongoRanking) Report(ctx context.Context, a Award) error {
	id := courseKey(a.CourseID)

	res, err := m.courses.UpdateOne(ctx,
		bson.M{"_id": id, "rankings.user_id": a.UserID},
		bson.M{"$inc": bson.M{"rankings.$.points": a.Points}},
	)
	if err != nil {
		return fmt.Errorf("mongo ranking: %w", err)
	}
	if res.ModifiedCount > 0 {
		return nil
	}

	_, err = m.courses.UpdateOne(ctx,
		bson.M{"_id": id},
		bson.M{"$push": bson.M{"rankings": bson.M{
			"user_id":   a.UserID,
			"user_name": a.UserName,
			"points":    a.Points,
		}}},
		options.Update().SetUpsert(true),
	)
	if err != nil {
		return fmt.Errorf("mongo ranking: %w", err)
	}
	return nil
}

type courseDoc struct {
	Rankings []Standing `bson:"rankings"`
}

// Top reads the course's rankings array, best first.
func (m *MongoRanking) Top(ctx context.Context, courseID string, limit int) ([]Standing, error) {
	var doc courseDoc
	err := m.courses.FindOne(ctx, bson.M{"_id": courseKey(courseID)},
		options.FindOne().SetProjection(bson.M{"rankings": 1}),
	).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("mongo ranking: %w", err)
	}

	out := doc.Rankings
	sort.SliceStable(out, func(i, j int) bool { return out[i].Points > out[j].Points })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	for i := range out {
		out[i].Rank = i + 1
	}
	return out, nil
}
