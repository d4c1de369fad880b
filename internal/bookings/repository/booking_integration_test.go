package repository

import (
	"context"
	"errors"
	"os"
	"sync"
	"testing"
	"time"

	bookingserrors "salonbook/internal/bookings/errors"
	"salonbook/pkg/client"
	"salonbook/pkg/config"
	"salonbook/pkg/logger"
	"salonbook/pkg/model"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const testMongoURIEnv = "SALON_TEST_MONGO_URI"

func newTestRepo(t *testing.T) BookingRepository {
	t.Helper()
	uri := os.Getenv(testMongoURIEnv)
	if uri == "" {
		t.Skipf("%s not set", testMongoURIEnv)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	mc, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		t.Fatalf("connect: %v", err)
	}

	dbName := "salon_test_" + primitive.NewObjectID().Hex()
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = mc.Database(dbName).Drop(ctx)
		_ = mc.Disconnect(ctx)
	})

	cfg := &config.Config{
		MongoDatabaseName: dbName,
		ReadTimeout:       5 * time.Second,
		WriteTimeout:      5 * time.Second,
		Log:               logger.Discard(),
		Client:            &client.Client{Mongo: mc},
	}
	repo := NewMongoBookingRepository(cfg)
	if err := repo.EnsureIndexes(ctx); err != nil {
		t.Fatalf("EnsureIndexes: %v", err)
	}
	return repo
}

func newBooking(userID string, at time.Time) *model.Booking {
	return &model.Booking{
		UserID:        userID,
		RequestedDate: "2025-08-21",
		RequestedTime: "14:30",
		RequestedAt:   at,
		ServiceIDs:    []string{"64b7f0c2a1b2c3d4e5f60718"},
	}
}

func TestInsertIfAbsent_ConcurrentSameSlot(t *testing.T) {
	repo := newTestRepo(t)
	at := time.Date(2030, 8, 21, 6, 30, 0, 0, time.UTC)

	const n = 16
	var wg sync.WaitGroup
	results := make(chan error, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			results <- repo.InsertIfAbsent(context.Background(), newBooking("U1", at))
		}()
	}
	wg.Wait()
	close(results)

	wins := 0
	for err := range results {
		switch {
		case err == nil:
			wins++
		case errors.Is(err, bookingserrors.ErrSlotTaken):
		default:
			t.Errorf("unexpected error: %v", err)
		}
	}
	if wins != 1 {
		t.Errorf("wins = %d, want exactly 1", wins)
	}
}

func TestUpdateStatus_TerminalReleasesSlot(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	at := time.Date(2030, 8, 21, 6, 30, 0, 0, time.UTC)

	first := newBooking("U1", at)
	if err := repo.InsertIfAbsent(ctx, first); err != nil {
		t.Fatal(err)
	}
	if err := repo.UpdateStatus(ctx, first.ID, model.BookingPending, model.BookingCanceled); err != nil {
		t.Fatal(err)
	}
	if err := repo.UpdateStatus(ctx, first.ID, model.BookingPending, model.BookingCanceled); !errors.Is(err, bookingserrors.ErrStatusChanged) {
		t.Errorf("stale transition: err = %v", err)
	}

	if err := repo.InsertIfAbsent(ctx, newBooking("U1", at)); err != nil {
		t.Errorf("slot should be free after cancel: %v", err)
	}

	got, err := repo.FindByID(ctx, first.ID)
	if err != nil {
		t.Fatal(err)
	}
	if got.Status != model.BookingCanceled || got.SlotKey != "" {
		t.Errorf("canceled booking = %+v", got)
	}
}

func TestMarkConfirmed(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	at := time.Date(2030, 8, 21, 6, 30, 0, 0, time.UTC)

	b := newBooking("U1", at)
	if err := repo.InsertIfAbsent(ctx, b); err != nil {
		t.Fatal(err)
	}

	c := Confirmation{
		FinalStartAt:     at.Add(30 * time.Minute),
		FinalEndAt:       at.Add(90 * time.Minute),
		CalendarEventID:  "evt-1",
		CalendarHTMLLink: "https://calendar.example/evt-1",
	}
	got, err := repo.MarkConfirmed(ctx, b.ID, []model.BookingStatus{model.BookingPending, model.BookingConfirmed}, c)
	if err != nil {
		t.Fatal(err)
	}
	if got.Status != model.BookingConfirmed || got.CalendarEventID != "evt-1" || got.SlotKey == "" {
		t.Errorf("confirmed booking = %+v", got)
	}

	if _, err := repo.MarkConfirmed(ctx, primitive.NewObjectID().Hex(), []model.BookingStatus{model.BookingPending}, c); !errors.Is(err, bookingserrors.ErrNotFound) {
		t.Errorf("missing booking: err = %v", err)
	}
}
