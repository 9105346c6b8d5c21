package ranking

import (
	"context"
	"errors"
	"os"
	"testing"

	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/integration/mtest"

	"github.com/abhisek/stepwise/internal/store"
)

type fakePoints struct {
	appended  []store.PointsEventData
	standings []store.CourseStanding
	err       error
}

func (f *fakePoints) AppendPoints(_ context.Context, d store.PointsEventData) error {
	if f.err != nil {
		return f.err
	}
	f.appended = append(f.appended, d)
	return nil
}

func (f *fakePoints) CourseStandings(_ context.Context, _ string, _ int) ([]store.CourseStanding, error) {
	return f.standings, f.err
}

type recordingReporter struct {
	awards []Award
	err    error
}

func (r *recordingReporter) Report(_ context.Context, a Award) error {
	r.awards = append(r.awards, a)
	return r.err
}

func testAward(points int) Award {
	return Award{
		Owner:     Owner{CourseID: "c1", UserID: "u1", UserName: "Ana"},
		Points:    points,
		Reason:    "perfect",
		SessionID: "s1",
	}
}

func TestOwnerValid(t *testing.T) {
	tests := []struct {
		owner Owner
		want  bool
	}{
		{Owner{CourseID: "c", UserID: "u"}, true},
		{Owner{CourseID: "c"}, false},
		{Owner{UserID: "u"}, false},
		{Owner{}, false},
	}
	for _, tt := range tests {
		if got := tt.owner.Valid(); got != tt.want {
			t.Errorf("%+v.Valid() = %v, want %v", tt.owner, got, tt.want)
		}
	}
}

func TestMulti_ReportsToAllAndJoinsErrors(t *testing.T) {
	errA := errors.New("a down")
	a := &recordingReporter{err: errA}
	b := &recordingReporter{}

	err := Multi{a, b}.Report(context.Background(), testAward(5))
	if !errors.Is(err, errA) {
		t.Fatalf("err = %v, want %v", err, errA)
	}
	if len(a.awards) != 1 || len(b.awards) != 1 {
		t.Fatalf("awards = %d/%d, want 1/1", len(a.awards), len(b.awards))
	}

	if err := (Multi{}).Report(context.Background(), testAward(5)); err != nil {
		t.Errorf("empty Multi: %v", err)
	}
}

func TestLedger(t *testing.T) {
	repo := &fakePoints{standings: []store.CourseStanding{
		{UserID: "u2", UserName: "Bo", Points: 65},
		{UserID: "u1", UserName: "Ana", Points: 13},
	}}
	l := NewLedger(repo)

	if err := l.Report(context.Background(), testAward(10)); err != nil {
		t.Fatalf("report: %v", err)
	}
	if len(repo.appended) != 1 {
		t.Fatalf("appended = %d, want 1", len(repo.appended))
	}
	got := repo.appended[0]
	if got.CourseID != "c1" || got.UserID != "u1" || got.UserName != "Ana" || got.Points != 10 || got.Reason != "perfect" || got.SessionID != "s1" {
		t.Errorf("appended = %+v", got)
	}

	top, err := l.Top(context.Background(), "c1", 10)
	if err != nil {
		t.Fatalf("top: %v", err)
	}
	if len(top) != 2 || top[0].Rank != 1 || top[0].UserID != "u2" || top[1].Rank != 2 || top[1].Points != 13 {
		t.Errorf("top = %+v", top)
	}

	repo.err = errors.New("disk full")
	if err := l.Report(context.Background(), testAward(1)); !errors.Is(err, repo.err) {
		t.Errorf("err = %v, want wrapped disk full", err)
	}
}

func TestRedisKeys(t *testing.T) {
	if got := scoreKey("c1"); got != "course:c1:lb" {
		t.Errorf("scoreKey = %q", got)
	}
	if got := namesKey("c1"); got != "course:c1:names" {
		t.Errorf("namesKey = %q", got)
	}
}

// TestRedisLeaderboard runs against a live server when STEPWISE_TEST_REDIS
// names one, e.g. "redis://localhost:6379/15".
func TestRedisLeaderboard(t *testing.T) {
	url := os.Getenv("STEPWISE_TEST_REDIS")
	if url == "" {
		t.Skip("STEPWISE_TEST_REDIS not set")
	}
	opts, err := redis.ParseURL(url)
	if err != nil {
		t.Fatalf("parse url: %v", err)
	}
	client := redis.NewClient(opts)
	defer client.Close()

	ctx := context.Background()
	course := "test-" + t.Name()
	client.Del(ctx, scoreKey(course), namesKey(course))
	defer client.Del(ctx, scoreKey(course), namesKey(course))

	lb := NewRedisLeaderboard(client)
	for _, a := range []Award{
		{Owner: Owner{CourseID: course, UserID: "u1", UserName: "Ana"}, Points: 5},
		{Owner: Owner{CourseID: course, UserID: "u2", UserName: "Bo"}, Points: 10},
		{Owner: Owner{CourseID: course, UserID: "u1"}, Points: 10},
	} {
		if err := lb.Report(ctx, a); err != nil {
			t.Fatalf("report: %v", err)
		}
	}

	top, err := lb.Top(ctx, course, 5)
	if err != nil {
		t.Fatalf("top: %v", err)
	}
	if len(top) != 2 || top[0].UserID != "u1" || top[0].Points != 15 || top[0].UserName != "Ana" {
		t.Errorf("top = %+v", top)
	}

	rank, err := lb.Rank(ctx, course, "u2")
	if err != nil || rank != 2 {
		t.Errorf("rank = %d, %v; want 2", rank, err)
	}
	rank, err = lb.Rank(ctx, course, "nobody")
	if err != nil || rank != 0 {
		t.Errorf("rank of unknown = %d, %v; want 0", rank, err)
	}
}

func TestCourseKey(t *testing.T) {
	if _, ok := courseKey("65f1a2b3c4d5e6f708091a2b").(string); ok {
		t.Error("hex id should become an ObjectID")
	}
	if got, ok := courseKey("biology-101").(string); !ok || got != "biology-101" {
		t.Errorf("courseKey = %v", got)
	}
}

func TestMongoRanking(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("increments existing entry", func(mt *mtest.T) {
		// Only one response is queued: a $push would fail for lack of one.
		mt.AddMockResponses(mtest.CreateSuccessResponse(
			bson.E{Key: "n", Value: 1},
			bson.E{Key: "nModified", Value: 1},
		))
		if err := NewMongoRanking(mt.Coll).Report(context.Background(), testAward(5)); err != nil {
			mt.Fatalf("report: %v", err)
		}
	})

	mt.Run("pushes new entry", func(mt *mtest.T) {
		mt.AddMockResponses(
			mtest.CreateSuccessResponse(
				bson.E{Key: "n", Value: 0},
				bson.E{Key: "nModified", Value: 0},
			),
			mtest.CreateSuccessResponse(
				bson.E{Key: "n", Value: 1},
				bson.E{Key: "nModified", Value: 1},
			),
		)
		if err := NewMongoRanking(mt.Coll).Report(context.Background(), testAward(3)); err != nil {
			mt.Fatalf("report: %v", err)
		}
	})

	mt.Run("command error", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateCommandErrorResponse(mtest.CommandError{
			Code:    2,
			Name:    "BadValue",
			Message: "bad update",
		}))
		if err := NewMongoRanking(mt.Coll).Report(context.Background(), testAward(3)); err == nil {
			mt.Fatal("expected error")
		}
	})

	mt.Run("top sorts and limits", func(mt *mtest.T) {
		ns := mt.Coll.Database().Name() + "." + mt.Coll.Name()
		mt.AddMockResponses(mtest.CreateCursorResponse(0, ns, mtest.FirstBatch, bson.D{
			{Key: "_id", Value: "c1"},
			{Key: "rankings", Value: bson.A{
				bson.D{{Key: "user_id", Value: "u1"}, {Key: "user_name", Value: "Ana"}, {Key: "points", Value: 13}},
				bson.D{{Key: "user_id", Value: "u2"}, {Key: "user_name", Value: "Bo"}, {Key: "points", Value: 65}},
				bson.D{{Key: "user_id", Value: "u3"}, {Key: "user_name", Value: "Cy"}, {Key: "points", Value: 20}},
			}},
		}))
		top, err := NewMongoRanking(mt.Coll).Top(context.Background(), "c1", 2)
		if err != nil {
			mt.Fatalf("top: %v", err)
		}
		if len(top) != 2 {
			mt.Fatalf("top = %+v, want 2 rows", top)
		}
		if top[0].UserID != "u2" || top[0].Points != 65 || top[0].Rank != 1 {
			mt.Errorf("first = %+v", top[0])
		}
		if top[1].UserID != "u3" || top[1].Rank != 2 {
			mt.Errorf("second = %+v", top[1])
		}
	})

	mt.Run("top of unknown course", func(mt *mtest.T) {
		ns := mt.Coll.Database().Name() + "." + mt.Coll.Name()
		mt.AddMockResponses(mtest.CreateCursorResponse(0, ns, mtest.FirstBatch))
		top, err := NewMongoRanking(mt.Coll).Top(context.Background(), "missing", 5)
		if err != nil || top != nil {
			mt.Errorf("top = %+v, %v; want nil, nil", top, err)
		}
	})
}
