package handlers_test

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/freightflow/freight-marketplace/internal/handlers"
	"github.com/freightflow/freight-marketplace/internal/models"
	"github.com/freightflow/freight-marketplace/internal/services"
	jwtutil "github.com/freightflow/freight-marketplace/pkg/jwt"
	"github.com/freightflow/freight-marketplace/pkg/middleware"
	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type memStore struct {
	notifications []*models.Notification
}

func (s *memStore) Insert(_ context.Context, notif *models.Notification) (*models.Notification, error) {
	notif.ID = primitive.NewObjectID()
	notif.CreatedAt = time.Now()
	notif.Read = false
	s.notifications = append(s.notifications, notif)
	return notif, nil
}

func (s *memStore) ListRecent(_ context.Context, userID primitive.ObjectID, limit int64) ([]models.Notification, error) {
	var out []models.Notification
	for i := len(s.notifications) - 1; i >= 0 && int64(len(out)) < limit; i-- {
		if s.notifications[i].UserID == userID {
			out = append(out, *s.notifications[i])
		}
	}
	return out, nil
}

func (s *memStore) MarkRead(_ context.Context, id primitive.ObjectID) error {
	for _, n := range s.notifications {
		if n.ID == id {
			n.Read = true
		}
	}
	return nil
}

func (s *memStore) MarkAllRead(_ context.Context, userID primitive.ObjectID) error {
	for _, n := range s.notifications {
		if n.UserID == userID {
			n.Read = true
		}
	}
	return nil
}

type noDirectory struct{}

func (noDirectory) GetUsersByRole(_ context.Context, _ string) ([]models.User, error) {
	return nil, nil
}

type noEmitter struct{}

func (noEmitter) Emit(_, _ string, _ interface{}) {}

func newNotificationHandler(store *memStore) *handlers.NotificationHandler {
	svc := services.NewNotificationService(store, noDirectory{}, noEmitter{})
	return handlers.NewNotificationHandler(svc)
}

func authedRequest(method, target string, userID primitive.ObjectID) *http.Request {
	req := httptest.NewRequest(method, target, nil)
	claims := &jwtutil.Claims{UserID: userID.Hex(), Role: models.RoleShipper}
	return req.WithContext(context.WithValue(req.Context(), middleware.UserContextKey, claims))
}

func seed(t *testing.T, store *memStore, userID primitive.ObjectID, count int) []*models.Notification {
	t.Helper()
	var out []*models.Notification
	for i := 0; i < count; i++ {
		created, err := store.Insert(context.Background(), &models.Notification{
			UserID:  userID,
			Title:   fmt.Sprintf("Notification %d", i),
			Message: "msg",
		})
		require.NoError(t, err)
		out = append(out, created)
	}
	return out
}

func TestGetNotificationsLimitAndOrder(t *testing.T) {
	store := &memStore{}
	handler := newNotificationHandler(store)
	userID := primitive.NewObjectID()
	seeded := seed(t, store, userID, 25)

	rec := httptest.NewRecorder()
	handler.GetNotificationsHandler(rec, authedRequest(http.MethodGet, "/notifications", userID))

	require.Equal(t, http.StatusOK, rec.Code)
	var feed []models.Notification
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&feed))
	require.Len(t, feed, 20, "the feed is capped at 20 entries")
	assert.Equal(t, seeded[len(seeded)-1].ID, feed[0].ID, "newest first")
}

func TestGetNotificationsEmptyFeed(t *testing.T) {
	handler := newNotificationHandler(&memStore{})

	rec := httptest.NewRecorder()
	handler.GetNotificationsHandler(rec, authedRequest(http.MethodGet, "/notifications", primitive.NewObjectID()))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, "[]", rec.Body.String())
}

func TestGetNotificationsUnauthorized(t *testing.T) {
	handler := newNotificationHandler(&memStore{})

	rec := httptest.NewRecorder()
	handler.GetNotificationsHandler(rec, httptest.NewRequest(http.MethodGet, "/notifications", nil))

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestMarkAsReadUnknownIDStillSucceeds(t *testing.T) {
	handler := newNotificationHandler(&memStore{})

	// The store reports no error for ids that do not exist; the endpoint
	// deliberately gives callers no not-found signal.
	req := authedRequest(http.MethodPatch, "/notifications/x/read", primitive.NewObjectID())
	req = mux.SetURLVars(req, map[string]string{"id": primitive.NewObjectID().Hex()})

	rec := httptest.NewRecorder()
	handler.MarkAsReadHandler(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestMarkAsReadMalformedID(t *testing.T) {
	handler := newNotificationHandler(&memStore{})

	req := authedRequest(http.MethodPatch, "/notifications/x/read", primitive.NewObjectID())
	req = mux.SetURLVars(req, map[string]string{"id": "not-an-object-id"})

	rec := httptest.NewRecorder()
	handler.MarkAsReadHandler(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestMarkAsReadIsIdempotent(t *testing.T) {
	store := &memStore{}
	handler := newNotificationHandler(store)
	userID := primitive.NewObjectID()
	seeded := seed(t, store, userID, 1)

	for i := 0; i < 2; i++ {
		req := authedRequest(http.MethodPatch, "/notifications/x/read", userID)
		req = mux.SetURLVars(req, map[string]string{"id": seeded[0].ID.Hex()})
		rec := httptest.NewRecorder()
		handler.MarkAsReadHandler(rec, req)
		require.Equal(t, http.StatusOK, rec.Code)
	}
	assert.True(t, store.notifications[0].Read)
}

func TestMarkAllAsReadScopedToCaller(t *testing.T) {
	store := &memStore{}
	handler := newNotificationHandler(store)
	alice := primitive.NewObjectID()
	bob := primitive.NewObjectID()
	seed(t, store, alice, 3)
	seed(t, store, bob, 2)

	rec := httptest.NewRecorder()
	handler.MarkAllAsReadHandler(rec, authedRequest(http.MethodPost, "/notifications/mark-all-read", alice))
	require.Equal(t, http.StatusOK, rec.Code)

	for _, n := range store.notifications {
		if n.UserID == alice {
			assert.True(t, n.Read)
		} else {
			assert.False(t, n.Read, "other users' notifications are untouched")
		}
	}
}
