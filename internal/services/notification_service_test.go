package services_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/freightflow/freight-marketplace/internal/models"
	"github.com/freightflow/freight-marketplace/internal/realtime"
	"github.com/freightflow/freight-marketplace/internal/services"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type emittedEvent struct {
	Room    string
	Event   string
	Payload interface{}
}

type fakeEmitter struct {
	events []emittedEvent
	onEmit func()
}

func (e *fakeEmitter) Emit(room, event string, payload interface{}) {
	if e.onEmit != nil {
		e.onEmit()
	}
	e.events = append(e.events, emittedEvent{Room: room, Event: event, Payload: payload})
}

type fakeStore struct {
	insertErr error
	inserted  []*models.Notification
	markedIDs []primitive.ObjectID
}

func (s *fakeStore) Insert(_ context.Context, notif *models.Notification) (*models.Notification, error) {
	if s.insertErr != nil {
		return nil, s.insertErr
	}
	notif.ID = primitive.NewObjectID()
	notif.CreatedAt = time.Now()
	notif.Read = false
	s.inserted = append(s.inserted, notif)
	return notif, nil
}

func (s *fakeStore) ListRecent(_ context.Context, userID primitive.ObjectID, limit int64) ([]models.Notification, error) {
	var out []models.Notification
	for i := len(s.inserted) - 1; i >= 0 && int64(len(out)) < limit; i-- {
		if s.inserted[i].UserID == userID {
			out = append(out, *s.inserted[i])
		}
	}
	return out, nil
}

func (s *fakeStore) MarkRead(_ context.Context, id primitive.ObjectID) error {
	// Silently succeeds whether or not the id exists, like the real store.
	s.markedIDs = append(s.markedIDs, id)
	for _, n := range s.inserted {
		if n.ID == id {
			n.Read = true
		}
	}
	return nil
}

func (s *fakeStore) MarkAllRead(_ context.Context, userID primitive.ObjectID) error {
	for _, n := range s.inserted {
		if n.UserID == userID {
			n.Read = true
		}
	}
	return nil
}

type fakeDirectory struct {
	users []models.User
	err   error
}

func (d *fakeDirectory) GetUsersByRole(_ context.Context, role string) ([]models.User, error) {
	if d.err != nil {
		return nil, d.err
	}
	var out []models.User
	for _, u := range d.users {
		if u.Role == role {
			out = append(out, u)
		}
	}
	return out, nil
}

func TestNotifyUserPersistsThenEmits(t *testing.T) {
	store := &fakeStore{}
	emitter := &fakeEmitter{}
	svc := services.NewNotificationService(store, &fakeDirectory{}, emitter)

	userID := primitive.NewObjectID()
	created, err := svc.NotifyUser(context.Background(), userID, models.NotificationOfferAccepted,
		"Offer Accepted", "Your offer was accepted", map[string]interface{}{"offerId": "o1"})
	require.NoError(t, err)

	require.NotNil(t, created)
	assert.False(t, created.ID.IsZero(), "store must assign the id")
	assert.False(t, created.CreatedAt.IsZero(), "store must assign the timestamp")
	assert.False(t, created.Read)

	require.Len(t, emitter.events, 1)
	assert.Equal(t, realtime.UserRoom(userID.Hex()), emitter.events[0].Room)
	assert.Equal(t, services.EventNotification, emitter.events[0].Event)
	assert.Equal(t, created, emitter.events[0].Payload, "the emitted payload is the stored record")
}

func TestNotifyUserVisibleInFeedImmediately(t *testing.T) {
	store := &fakeStore{}
	svc := services.NewNotificationService(store, &fakeDirectory{}, &fakeEmitter{})

	userID := primitive.NewObjectID()
	created, err := svc.NotifyUser(context.Background(), userID, "", "Offer Accepted", "msg", nil)
	require.NoError(t, err)

	feed, err := svc.GetUserNotifications(context.Background(), userID)
	require.NoError(t, err)
	require.Len(t, feed, 1)
	assert.Equal(t, created.ID, feed[0].ID)
	assert.False(t, feed[0].Read)
}

func TestNotifyUserPropagatesStoreFailure(t *testing.T) {
	store := &fakeStore{insertErr: errors.New("store down")}
	emitter := &fakeEmitter{}
	svc := services.NewNotificationService(store, &fakeDirectory{}, emitter)

	_, err := svc.NotifyUser(context.Background(), primitive.NewObjectID(), "", "t", "m", nil)
	require.Error(t, err)
	assert.Empty(t, emitter.events, "no push without a persisted record")
}

func TestNotifyRoleEmitsBeforePersisting(t *testing.T) {
	store := &fakeStore{}
	dir := &fakeDirectory{users: []models.User{
		{ID: primitive.NewObjectID(), Role: models.RoleCarrier},
		{ID: primitive.NewObjectID(), Role: models.RoleCarrier},
		{ID: primitive.NewObjectID(), Role: models.RoleShipper},
	}}

	var insertsAtEmit int
	emitter := &fakeEmitter{}
	emitter.onEmit = func() { insertsAtEmit = len(store.inserted) }
	svc := services.NewNotificationService(store, dir, emitter)

	svc.NotifyRole(context.Background(), models.RoleCarrier, models.NotificationShipmentCreated,
		"New Shipment Available", "From X to Y", nil)

	require.Len(t, emitter.events, 1)
	assert.Equal(t, realtime.RoleRoom(models.RoleCarrier), emitter.events[0].Room)
	assert.Equal(t, 0, insertsAtEmit, "the live event precedes the persisted records")
	assert.Len(t, store.inserted, 2, "one record per carrier, none for other roles")
}

func TestNotifyRoleEphemeralPayloadShape(t *testing.T) {
	emitter := &fakeEmitter{}
	svc := services.NewNotificationService(&fakeStore{}, &fakeDirectory{}, emitter)

	svc.NotifyRole(context.Background(), models.RoleCarrier, models.NotificationShipmentCreated,
		"New Shipment Available", "From X to Y", map[string]interface{}{"shipmentId": "s1"})

	require.Len(t, emitter.events, 1)
	payload, ok := emitter.events[0].Payload.(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "New Shipment Available", payload["title"])
	assert.Equal(t, "From X to Y", payload["message"])
	assert.Equal(t, models.NotificationShipmentCreated, payload["type"])
	assert.Equal(t, false, payload["isRead"])
	assert.NotNil(t, payload["createdAt"])
}

func TestNotifyRoleSwallowsStoreFailure(t *testing.T) {
	store := &fakeStore{insertErr: errors.New("store down")}
	dir := &fakeDirectory{users: []models.User{{ID: primitive.NewObjectID(), Role: models.RoleCarrier}}}
	emitter := &fakeEmitter{}
	svc := services.NewNotificationService(store, dir, emitter)

	assert.NotPanics(t, func() {
		svc.NotifyRole(context.Background(), models.RoleCarrier, "", "t", "m", nil)
	})
	assert.Len(t, emitter.events, 1, "the ephemeral broadcast already went out")
}

func TestNotifyRoleSwallowsDirectoryFailure(t *testing.T) {
	dir := &fakeDirectory{err: errors.New("directory down")}
	emitter := &fakeEmitter{}
	svc := services.NewNotificationService(&fakeStore{}, dir, emitter)

	assert.NotPanics(t, func() {
		svc.NotifyRole(context.Background(), models.RoleCarrier, "", "t", "m", nil)
	})
	assert.Len(t, emitter.events, 1)
}

func TestMarkReadIsIdempotentAndNeverFails(t *testing.T) {
	store := &fakeStore{}
	svc := services.NewNotificationService(store, &fakeDirectory{}, &fakeEmitter{})

	userID := primitive.NewObjectID()
	created, err := svc.NotifyUser(context.Background(), userID, "", "t", "m", nil)
	require.NoError(t, err)

	require.NoError(t, svc.MarkNotificationRead(context.Background(), created.ID))
	require.NoError(t, svc.MarkNotificationRead(context.Background(), created.ID), "second call is a no-op")

	feed, _ := svc.GetUserNotifications(context.Background(), userID)
	require.Len(t, feed, 1)
	assert.True(t, feed[0].Read)

	// Unknown ids silently succeed; callers get no not-found signal.
	assert.NoError(t, svc.MarkNotificationRead(context.Background(), primitive.NewObjectID()))
}

func TestMarkAllReadScopedToOneUser(t *testing.T) {
	store := &fakeStore{}
	svc := services.NewNotificationService(store, &fakeDirectory{}, &fakeEmitter{})

	alice := primitive.NewObjectID()
	bob := primitive.NewObjectID()
	for i := 0; i < 3; i++ {
		_, err := svc.NotifyUser(context.Background(), alice, "", "t", "m", nil)
		require.NoError(t, err)
	}
	_, err := svc.NotifyUser(context.Background(), bob, "", "t", "m", nil)
	require.NoError(t, err)

	require.NoError(t, svc.MarkAllNotificationsRead(context.Background(), alice))

	aliceFeed, _ := svc.GetUserNotifications(context.Background(), alice)
	for _, n := range aliceFeed {
		assert.True(t, n.Read)
	}
	bobFeed, _ := svc.GetUserNotifications(context.Background(), bob)
	require.Len(t, bobFeed, 1)
	assert.False(t, bobFeed[0].Read, "other users' unread sets are untouched")
}
