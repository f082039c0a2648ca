package router

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/freee021022/onconet/internal/config"
	"github.com/freee021022/onconet/internal/email"
	"github.com/freee021022/onconet/internal/geocode"
	"github.com/freee021022/onconet/internal/repository/memory"
	"github.com/freee021022/onconet/internal/service/audit"
	"github.com/freee021022/onconet/internal/session"
	"github.com/freee021022/onconet/pkg/security"
)

type fakeGeocoder struct{}

func (fakeGeocoder) Geocode(_ context.Context, address string) (*geocode.Result, error) {
	if strings.Contains(address, "nowhere") {
		return nil, geocode.ErrNotFound
	}
	return &geocode.Result{Lat: 41.9, Lng: 12.5, FormattedAddress: "Roma, Italy"}, nil
}

type testServer struct {
	t     *testing.T
	url   string
	store *memory.Store
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)

	cfg := &config.Config{
		Server:    config.ServerConfig{RequestTimeout: 5 * time.Second, MaxBodyBytes: 1 << 20},
		Session:   config.SessionConfig{Store: config.SessionStoreMemory, Secret: "test-secret", TTL: time.Hour, CookieName: "onconet_session"},
		CORS:      config.CORSConfig{AllowedOrigins: []string{"http://localhost:5173"}, MaxAge: 600},
		RateLimit: config.RateLimitConfig{Enabled: false},
	}
	store := memory.NewStore()
	r := NewRouter(Dependencies{
		Config:   cfg,
		Store:    store,
		Sessions: session.NewManager(session.NewMemoryStore(), cfg.Session.Secret, cfg.Session.TTL),
		Hasher:   security.NewBcryptHasher(bcrypt.MinCost),
		Geocoder: fakeGeocoder{},
		Mailer:   email.NewService(config.MailConfig{}),
		Auditor:  audit.NewService(store),
		Registry: prometheus.NewRegistry(),
	})

	srv := httptest.NewServer(r.Engine())
	t.Cleanup(srv.Close)
	return &testServer{t: t, url: srv.URL, store: store}
}

// client is one browser: it keeps its own session cookie.
type client struct {
	ts   *testServer
	http *http.Client
}

func (ts *testServer) client() *client {
	jar, err := cookiejar.New(nil)
	require.NoError(ts.t, err)
	return &client{ts: ts, http: &http.Client{Jar: jar}}
}

func (c *client) do(method, path string, body interface{}) (int, map[string]interface{}, []byte) {
	c.ts.t.Helper()
	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(c.ts.t, err)
		reader = bytes.NewReader(b)
	}
	req, err := http.NewRequest(method, c.ts.url+path, reader)
	require.NoError(c.ts.t, err)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := c.http.Do(req)
	require.NoError(c.ts.t, err)
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	require.NoError(c.ts.t, err)
	var obj map[string]interface{}
	_ = json.Unmarshal(raw, &obj)
	return resp.StatusCode, obj, raw
}

func (c *client) register(username, userType string) int64 {
	c.ts.t.Helper()
	status, body, raw := c.do("POST", "/api/auth/register", map[string]interface{}{
		"username": username,
		"email":    username + "@x.com",
		"password": "secret123",
		"fullName": strings.ToUpper(username[:1]) + username[1:],
		"userType": userType,
	})
	require.Equal(c.ts.t, http.StatusCreated, status, string(raw))
	return int64(body["id"].(float64))
}

func TestAuthScenario(t *testing.T) {
	ts := newTestServer(t)
	alice := ts.client()
	alice.register("alice", "patient")

	status, body, _ := alice.do("POST", "/api/auth/register", map[string]interface{}{
		"username": "alice", "email": "other@x.com", "password": "secret123", "fullName": "A",
	})
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "Username already taken", body["message"])

	status, body, _ = alice.do("POST", "/api/auth/register", map[string]interface{}{
		"username": "alice2", "email": "alice@x.com", "password": "secret123", "fullName": "A",
	})
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "Email already registered", body["message"])

	anon := ts.client()
	status, body, _ = anon.do("POST", "/api/auth/login", map[string]string{"username": "alice", "password": "wrong"})
	assert.Equal(t, http.StatusUnauthorized, status)
	assert.Equal(t, "Invalid credentials", body["message"])

	status, body, _ = anon.do("POST", "/api/auth/login", map[string]string{"username": "alice"})
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "Username and password required", body["message"])

	status, _, _ = anon.do("GET", "/api/auth/check", nil)
	assert.Equal(t, http.StatusUnauthorized, status)

	status, _, _ = anon.do("POST", "/api/auth/login", map[string]string{"username": "alice", "password": "secret123"})
	require.Equal(t, http.StatusOK, status)

	status, body, raw := anon.do("GET", "/api/auth/check", nil)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "alice", body["username"])
	assert.NotContains(t, string(raw), "password")

	status, body, _ = anon.do("POST", "/api/auth/logout", nil)
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "Logged out successfully", body["message"])

	status, body, _ = anon.do("GET", "/api/auth/check", nil)
	assert.Equal(t, http.StatusUnauthorized, status)
	assert.Equal(t, "Not authenticated", body["message"])
}

func TestErrorBodyShape(t *testing.T) {
	ts := newTestServer(t)
	c := ts.client()

	status, body, _ := c.do("POST", "/api/auth/register", map[string]interface{}{"username": "al"})
	require.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "error", body["status"])
	assert.NotEmpty(t, body["trace_id"])
	violations, ok := body["errors"].([]interface{})
	require.True(t, ok)
	fields := map[string]bool{}
	for _, v := range violations {
		fields[v.(map[string]interface{})["field"].(string)] = true
	}
	assert.True(t, fields["username"])
	assert.True(t, fields["email"])
	assert.True(t, fields["password"])
}

func TestProfileUpdateRestrictedToOwner(t *testing.T) {
	ts := newTestServer(t)
	alice := ts.client()
	aliceID := alice.register("alice", "patient")
	bob := ts.client()
	bob.register("bob", "patient")

	path := fmt.Sprintf("/api/users/%d", aliceID)
	status, _, _ := bob.do("PUT", path, map[string]string{"bio": "hacked"})
	assert.Equal(t, http.StatusForbidden, status)

	status, _, _ = ts.client().do("PUT", path, map[string]string{"bio": "anon"})
	assert.Equal(t, http.StatusUnauthorized, status)

	status, body, _ := alice.do("PUT", path, map[string]string{"bio": "ciao"})
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "ciao", body["bio"])

	status, body, _ = bob.do("GET", "/api/users/abc", nil)
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "Invalid user ID", body["message"])

	status, body, _ = bob.do("GET", "/api/users/999", nil)
	assert.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, "User not found", body["message"])
}

func TestDoctorReviews(t *testing.T) {
	ts := newTestServer(t)
	c := ts.client()
	patientID := c.register("paola", "patient")
	doctorID := c.register("drrossi", "professional")

	status, _, raw := c.do("GET", fmt.Sprintf("/api/doctors/%d/reviews", doctorID), nil)
	require.Equal(t, http.StatusOK, status)
	assert.JSONEq(t, `[]`, string(raw))

	status, body, _ := c.do("GET", "/api/doctors/abc/reviews", nil)
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "Invalid doctor ID", body["message"])

	status, body, _ = c.do("GET", fmt.Sprintf("/api/doctors/%d/reviews", patientID), nil)
	assert.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, "Doctor not found", body["message"])

	status, _, _ = c.do("GET", "/api/doctors/999/reviews", nil)
	assert.Equal(t, http.StatusNotFound, status)
}

func TestForumScenario(t *testing.T) {
	ts := newTestServer(t)
	alice := ts.client()
	alice.register("alice", "patient")
	bob := ts.client()
	bob.register("bob", "professional")

	status, cat, _ := alice.do("POST", "/api/forum/categories", map[string]string{"name": "Supporto emotivo", "slug": "emotional-support"})
	require.Equal(t, http.StatusCreated, status)
	catID := cat["id"].(float64)

	status, _, _ = ts.client().do("POST", "/api/forum/posts", map[string]interface{}{"title": "t", "content": "c", "categoryId": catID})
	assert.Equal(t, http.StatusUnauthorized, status)

	status, post, _ := alice.do("POST", "/api/forum/posts", map[string]interface{}{"title": "Ciao a tutti", "content": "Primo post", "categoryId": catID})
	require.Equal(t, http.StatusCreated, status)
	assert.Equal(t, float64(0), post["viewCount"])
	postID := post["id"].(float64)

	for _, c := range []*client{bob, alice} {
		status, _, _ = c.do("POST", "/api/forum/comments", map[string]interface{}{"content": "commento", "postId": postID})
		require.Equal(t, http.StatusCreated, status)
	}

	status, detail, _ := bob.do("GET", fmt.Sprintf("/api/forum/posts/%d", int64(postID)), nil)
	require.Equal(t, http.StatusOK, status)
	p := detail["post"].(map[string]interface{})
	assert.Equal(t, float64(1), p["viewCount"])
	assert.Equal(t, "Ciao a tutti", p["title"])
	assert.Equal(t, "Supporto emotivo", p["categoryName"])
	assert.Equal(t, "alice", p["author"].(map[string]interface{})["username"])
	comments := detail["comments"].([]interface{})
	require.Len(t, comments, 2)
	assert.Equal(t, "bob", comments[0].(map[string]interface{})["author"].(map[string]interface{})["username"])

	status, body, _ := bob.do("GET", "/api/forum/posts/999", nil)
	assert.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, "Post not found", body["message"])

	status, _, _ = bob.do("GET", "/api/forum/posts?categoryId=abc", nil)
	assert.Equal(t, http.StatusBadRequest, status)
}

func TestSecondOpinionScenario(t *testing.T) {
	ts := newTestServer(t)
	c := ts.client()
	patientID := c.register("paziente", "patient")
	doctorID := ts.client().register("dottore", "professional")

	status, created, raw := c.do("POST", "/api/second-opinion/requests", map[string]interface{}{
		"patientId":   patientID,
		"doctorId":    doctorID,
		"diagnosis":   "Carcinoma",
		"description": "Richiesta di secondo parere",
		"status":      "completed",
	})
	require.Equal(t, http.StatusCreated, status, string(raw))
	assert.Equal(t, "pending", created["status"])
	path := fmt.Sprintf("/api/second-opinion/requests/%d", int64(created["id"].(float64)))

	status, _, _ = c.do("PATCH", path+"/status", map[string]string{"status": "accepted"})
	require.Equal(t, http.StatusOK, status)

	status, got, _ := c.do("GET", path, nil)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "accepted", got["status"])

	status, _, _ = c.do("PATCH", path+"/status", map[string]string{"status": "pending"})
	assert.Equal(t, http.StatusConflict, status)

	status, body, _ := c.do("GET", "/api/second-opinion/requests/999", nil)
	assert.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, "Request not found", body["message"])
}

func TestMessagesScenario(t *testing.T) {
	ts := newTestServer(t)
	c := ts.client()
	u1 := c.register("uno", "patient")
	u2 := ts.client().register("due", "professional")

	status, msg, _ := c.do("POST", "/api/messages", map[string]interface{}{"senderId": u1, "receiverId": u2, "content": "ciao"})
	require.Equal(t, http.StatusCreated, status)
	assert.Equal(t, false, msg["isRead"])

	status, body, _ := c.do("GET", "/api/messages", nil)
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "User ID required", body["message"])

	status, body, _ = c.do("GET", fmt.Sprintf("/api/messages/conversation?user1Id=%d", u1), nil)
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "Both user IDs required", body["message"])

	status, body, _ = c.do("PATCH", fmt.Sprintf("/api/messages/%d/read", int64(msg["id"].(float64))), nil)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, true, body["success"])

	status, body, _ = c.do("PATCH", "/api/messages/999/read", nil)
	assert.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, "Message not found", body["message"])
}

func TestMedicalRecordScoping(t *testing.T) {
	ts := newTestServer(t)
	alice := ts.client()
	aliceID := alice.register("alice", "patient")
	bob := ts.client()
	bobID := bob.register("bob", "patient")

	status, rec, raw := alice.do("POST", "/api/medical-records", map[string]interface{}{
		"patientId":   aliceID,
		"recordType":  "diagnosis",
		"title":       "Biopsia",
		"description": "Stadio II",
		"date":        "2024-03-01",
	})
	require.Equal(t, http.StatusCreated, status, string(raw))
	assert.Equal(t, true, rec["isPrivate"])
	recID := int64(rec["id"].(float64))

	status, _, _ = ts.client().do("GET", fmt.Sprintf("/api/medical-records?patientId=%d", aliceID), nil)
	assert.Equal(t, http.StatusUnauthorized, status)

	status, _, _ = bob.do("GET", fmt.Sprintf("/api/medical-records?patientId=%d", aliceID), nil)
	assert.Equal(t, http.StatusForbidden, status)

	status, body, _ := bob.do("GET", fmt.Sprintf("/api/medical-records/%d?patientId=%d", recID, bobID), nil)
	assert.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, "Medical record not found", body["message"])

	status, _, _ = bob.do("DELETE", fmt.Sprintf("/api/medical-records/%d?patientId=%d", recID, aliceID), nil)
	assert.Equal(t, http.StatusNotFound, status)

	status, body, _ = alice.do("GET", "/api/medical-records", nil)
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "Patient ID required", body["message"])

	status, _, _ = alice.do("PUT", fmt.Sprintf("/api/medical-records/%d", recID), map[string]interface{}{"patientId": aliceID, "title": "Biopsia (rev)"})
	require.Equal(t, http.StatusOK, status)

	status, body, _ = alice.do("DELETE", fmt.Sprintf("/api/medical-records/%d?patientId=%d", recID, aliceID), nil)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, true, body["success"])

	status, _, raw = alice.do("GET", "/api/audit-events", nil)
	require.Equal(t, http.StatusOK, status)
	var events []map[string]interface{}
	require.NoError(t, json.Unmarshal(raw, &events))
	require.NotEmpty(t, events)
	assert.Equal(t, "delete", events[0]["action"])
}

func TestSosContractScenario(t *testing.T) {
	ts := newTestServer(t)
	patient := ts.client()
	patientID := patient.register("paziente", "patient")
	doctor := ts.client()
	doctorID := doctor.register("dottore", "professional")

	status, rec, _ := patient.do("POST", "/api/medical-records", map[string]interface{}{
		"patientId": patientID, "recordType": "test_result", "title": "TAC", "description": "ok", "date": "2024-05-10",
	})
	require.Equal(t, http.StatusCreated, status)

	status, contract, raw := patient.do("POST", "/api/sos-contracts", map[string]interface{}{
		"doctorId":        doctorID,
		"sharedRecordIds": []interface{}{rec["id"]},
		"consentGiven":    true,
	})
	require.Equal(t, http.StatusCreated, status, string(raw))
	assert.Equal(t, false, contract["isActive"])
	base := fmt.Sprintf("/api/sos-contracts/%d", int64(contract["id"].(float64)))

	status, _, _ = doctor.do("GET", base+"/records", nil)
	assert.Equal(t, http.StatusForbidden, status)

	status, _, _ = doctor.do("PATCH", base+"/activate", nil)
	assert.Equal(t, http.StatusForbidden, status)

	for i := 0; i < 2; i++ {
		status, body, _ := patient.do("PATCH", base+"/activate", nil)
		require.Equal(t, http.StatusOK, status)
		assert.Equal(t, true, body["isActive"])
	}

	status, access, _ := doctor.do("GET", base+"/records", nil)
	require.Equal(t, http.StatusOK, status)
	assert.Len(t, access["records"].([]interface{}), 1)

	status, body, _ := doctor.do("PATCH", base+"/deactivate", nil)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, false, body["isActive"])

	status, body, _ = ts.client().do("GET", "/api/sos-contracts", nil)
	assert.Equal(t, http.StatusUnauthorized, status)
	assert.Equal(t, "Authentication required", body["message"])

	status, body, _ = patient.do("GET", "/api/sos-contracts", nil)
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "Patient ID or Doctor ID required", body["message"])

	status, _, raw = doctor.do("GET", fmt.Sprintf("/api/sos-contracts?doctorId=%d", doctorID), nil)
	require.Equal(t, http.StatusOK, status)
	var list []interface{}
	require.NoError(t, json.Unmarshal(raw, &list))
	assert.Len(t, list, 1)
}

func TestPharmaciesAndGeocode(t *testing.T) {
	ts := newTestServer(t)
	c := ts.client()

	status, body, _ := c.do("GET", "/api/pharmacies/1", nil)
	assert.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, "Pharmacy not found", body["message"])

	status, _, raw := c.do("GET", "/api/testimonials", nil)
	assert.Equal(t, http.StatusOK, status)
	assert.JSONEq(t, "[]", string(raw))

	status, body, _ = c.do("POST", "/api/geocode", map[string]string{"address": "  "})
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "Address is required", body["message"])

	status, body, _ = c.do("POST", "/api/geocode", map[string]string{"address": "nowhere land"})
	assert.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, "Address not found", body["message"])

	status, body, _ = c.do("POST", "/api/geocode", map[string]string{"address": "Via del Corso, Roma"})
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "Roma, Italy", body["formatted_address"])
}

func TestOperationalEndpoints(t *testing.T) {
	ts := newTestServer(t)
	c := ts.client()

	status, body, _ := c.do("GET", "/health/ready", nil)
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "UP", body["status"])

	c.do("GET", "/api/doctors", nil)
	status, _, raw := c.do("GET", "/metrics", nil)
	assert.Equal(t, http.StatusOK, status)
	assert.Contains(t, string(raw), "onconet_http_requests_total")

	req, err := http.NewRequest("GET", ts.url+"/api/doctors", nil)
	require.NoError(t, err)
	req.Header.Set("X-Request-ID", "abc-123")
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, "abc-123", resp.Header.Get("X-Request-ID"))
	assert.Equal(t, "no-store", resp.Header.Get("Cache-Control"))
}
