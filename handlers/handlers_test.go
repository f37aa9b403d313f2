package handlers

import (
	"bytes"
	"encoding/json"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"github.com/Shweta-Mathanker/womanSafetyDTI/broker"
	"github.com/Shweta-Mathanker/womanSafetyDTI/coordinator"
	"github.com/Shweta-Mathanker/womanSafetyDTI/models"
	"github.com/Shweta-Mathanker/womanSafetyDTI/pkg/geo"
	"github.com/Shweta-Mathanker/womanSafetyDTI/pkg/notify"
	"github.com/Shweta-Mathanker/womanSafetyDTI/repository"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// fakeStore is an in-memory MarkerStore with the repository's approximate
// coordinate matching semantics.
type fakeStore struct {
	markers   []models.Marker
	nextID    int
	createErr error
	listErr   error
}

func (f *fakeStore) Create(at geo.Point, description string) (models.Marker, error) {
	if f.createErr != nil {
		return models.Marker{}, f.createErr
	}
	f.nextID++
	m := models.Marker{
		ID:          f.nextID,
		Latitude:    at.Latitude,
		Longitude:   at.Longitude,
		Description: description,
		CreatedAt:   time.Now().UTC().Truncate(time.Second),
	}
	f.markers = append(f.markers, m)
	return m, nil
}

func (f *fakeStore) ListAll() ([]models.Marker, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	out := make([]models.Marker, 0, len(f.markers))
	for i := len(f.markers) - 1; i >= 0; i-- {
		out = append(out, f.markers[i])
	}
	return out, nil
}

func (f *fakeStore) DeleteByApproxCoordinates(at geo.Point, tol float64) (models.Marker, error) {
	for i := len(f.markers) - 1; i >= 0; i-- {
		m := f.markers[i]
		if at.CloseTo(geo.Point{Latitude: m.Latitude, Longitude: m.Longitude}, tol) {
			f.markers = append(f.markers[:i], f.markers[i+1:]...)
			return m, nil
		}
	}
	return models.Marker{}, repository.ErrNotFound
}

// testEnv wires a real hub and coordinator over fake collaborators.
type testEnv struct {
	router *gin.Engine
	hub    *broker.Hub
	store  *fakeStore
}

func newTestEnv(t *testing.T, sender notify.Sender, roster []string) *testEnv {
	t.Helper()
	hub := broker.NewHub()
	dispatcher := notify.NewDispatcher(sender, roster, time.Second, nil)
	coord := coordinator.New(hub, dispatcher, nil)
	store := &fakeStore{}

	markers := NewMarkersHandler(store, coord)
	sos := NewSosHandler(coord)

	r := gin.New()
	r.GET("/health", HealthCheck(hub))
	r.POST("/markers", markers.CreateMarker)
	r.GET("/markers", markers.GetMarkers)
	r.DELETE("/markers", markers.DeleteMarker)
	r.POST("/sos", sos.TriggerSos)

	return &testEnv{router: r, hub: hub, store: store}
}

func (e *testEnv) do(t *testing.T, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

// awaitBroadcasts blocks until the hub's loop has finished any in-flight
// broadcast pass.
func (e *testEnv) awaitBroadcasts() { e.hub.Count() }

func receiveEvent(t *testing.T, sub *broker.Subscriber) map[string]interface{} {
	t.Helper()
	select {
	case payload, ok := <-sub.Events():
		require.True(t, ok, "subscriber channel closed unexpectedly")
		var event map[string]interface{}
		require.NoError(t, json.Unmarshal(payload, &event))
		return event
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for event")
		return nil
	}
}

func assertNoEvent(t *testing.T, sub *broker.Subscriber) {
	t.Helper()
	select {
	case payload := <-sub.Events():
		t.Fatalf("unexpected event: %s", payload)
	default:
	}
}

func decodeEnvelope(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp
}
