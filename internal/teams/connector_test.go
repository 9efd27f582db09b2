package teams

import (
	"context"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Mbalsss/ServiceDesk-sub001/internal/config"
	"github.com/Mbalsss/ServiceDesk-sub001/internal/models"
)

type memStore struct {
	rows map[string]models.TeamsIntegration
}

func newMemStore() *memStore { return &memStore{rows: map[string]models.TeamsIntegration{}} }

func (m *memStore) Get(_ context.Context, userID string) (*models.TeamsIntegration, error) {
	if row, ok := m.rows[userID]; ok {
		return &row, nil
	}
	return nil, nil
}

func (m *memStore) Upsert(_ context.Context, in *models.TeamsIntegration) error {
	m.rows[in.UserID] = *in
	return nil
}

func (m *memStore) Delete(_ context.Context, userID string) error {
	delete(m.rows, userID)
	return nil
}

func TestStateStoreSingleUse(t *testing.T) {
	s := NewStateStore(time.Minute)
	key := s.Put("u1", "verifier-1")

	uid, v, err := s.Take(key)
	require.NoError(t, err)
	assert.Equal(t, "u1", uid)
	assert.Equal(t, "verifier-1", v)

	_, _, err = s.Take(key)
	assert.ErrorIs(t, err, ErrStateNotFound)
}

func TestStateStoreExpiry(t *testing.T) {
	s := NewStateStore(time.Minute)
	now := time.Now()
	s.now = func() time.Time { return now }
	key := s.Put("u1", "v")

	s.now = func() time.Time { return now.Add(2 * time.Minute) }
	_, _, err := s.Take(key)
	assert.ErrorIs(t, err, ErrStateNotFound)
}

// fakePlatform stands in for both the token endpoint and the graph API.
type fakePlatform struct {
	*httptest.Server
	wantChallenge string
	exchanges     int
}

func newFakePlatform(t *testing.T) *fakePlatform {
	fp := &fakePlatform{}
	mux := http.NewServeMux()
	mux.HandleFunc("/token", func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		fp.exchanges++
		verifier := r.Form.Get("code_verifier")
		if verifier == "" {
			http.Error(w, "missing verifier", http.StatusBadRequest)
			return
		}
		sum := sha256.Sum256([]byte(verifier))
		if base64.RawURLEncoding.EncodeToString(sum[:]) != fp.wantChallenge {
			http.Error(w, "verifier does not match challenge", http.StatusBadRequest)
			return
		}
		if r.Form.Get("client_secret") != "" {
			http.Error(w, "public client must not send a secret", http.StatusBadRequest)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"access_token":  "at-123",
			"refresh_token": "rt-456",
			"token_type":    "Bearer",
			"expires_in":    3600,
		})
	})
	mux.HandleFunc("/me", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer at-123" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]string{"id": "teams-user-9"})
	})
	fp.Server = httptest.NewServer(mux)
	return fp
}

func testConnector(t *testing.T, store IntegrationStore) (*Connector, *fakePlatform) {
	fp := newFakePlatform(t)
	t.Cleanup(fp.Close)
	c := NewConnector(config.TeamsConfig{
		ClientID:    "desk-client",
		AuthURL:     fp.URL + "/authorize",
		TokenURL:    fp.URL + "/token",
		GraphURL:    fp.URL,
		RedirectURL: "http://localhost:8080/api/integrations/teams/callback",
		Scopes:      []string{"User.Read"},
	}, store)
	return c, fp
}

func TestBeginCarriesS256Challenge(t *testing.T) {
	store := newMemStore()
	c, _ := testConnector(t, store)

	authURL, err := c.Begin("u1")
	require.NoError(t, err)
	assert.Contains(t, authURL, "code_challenge=")
	assert.Contains(t, authURL, "code_challenge_method=S256")
	assert.Contains(t, authURL, "state=")
}

func TestCompleteRoundTrip(t *testing.T) {
	store := newMemStore()
	c, fp := testConnector(t, store)

	authURL, err := c.Begin("u1")
	require.NoError(t, err)

	state, challenge := parseFlowParams(t, authURL)
	fp.wantChallenge = challenge

	in, err := c.Complete(context.Background(), state, "the-code")
	require.NoError(t, err)
	assert.Equal(t, "u1", in.UserID)
	assert.Equal(t, "teams-user-9", in.TeamsUserID)
	assert.Equal(t, "at-123", in.AccessToken)
	assert.Equal(t, "rt-456", in.RefreshToken)

	saved, err := store.Get(context.Background(), "u1")
	require.NoError(t, err)
	require.NotNil(t, saved)
	assert.Equal(t, "teams-user-9", saved.TeamsUserID)
}

func TestCompleteWithoutStoredVerifierFails(t *testing.T) {
	store := newMemStore()
	c, fp := testConnector(t, store)

	_, err := c.Complete(context.Background(), "never-issued-state", "the-code")
	assert.ErrorIs(t, err, ErrStateNotFound)
	assert.Zero(t, fp.exchanges, "no exchange may be attempted without a verifier")
	assert.Empty(t, store.rows, "no partial token state may persist")
}

func TestCompleteStateIsSingleUse(t *testing.T) {
	store := newMemStore()
	c, fp := testConnector(t, store)

	authURL, err := c.Begin("u1")
	require.NoError(t, err)
	state, challenge := parseFlowParams(t, authURL)
	fp.wantChallenge = challenge

	_, err = c.Complete(context.Background(), state, "the-code")
	require.NoError(t, err)

	_, err = c.Complete(context.Background(), state, "the-code")
	assert.ErrorIs(t, err, ErrStateNotFound)
}

func TestCompleteMissingCodeAborts(t *testing.T) {
	store := newMemStore()
	c, fp := testConnector(t, store)

	authURL, err := c.Begin("u1")
	require.NoError(t, err)
	state, _ := parseFlowParams(t, authURL)

	_, err = c.Complete(context.Background(), state, "")
	assert.Error(t, err)
	assert.Zero(t, fp.exchanges)
	assert.Empty(t, store.rows)
}

func TestStatusAndDisconnect(t *testing.T) {
	store := newMemStore()
	c, _ := testConnector(t, store)
	ctx := context.Background()

	_, err := c.Status(ctx, "u1")
	assert.ErrorIs(t, err, ErrNotConnected)

	require.NoError(t, store.Upsert(ctx, &models.TeamsIntegration{UserID: "u1", TeamsUserID: "t1"}))
	in, err := c.Status(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, "t1", in.TeamsUserID)

	require.NoError(t, c.Disconnect(ctx, "u1"))
	_, err = c.Status(ctx, "u1")
	assert.ErrorIs(t, err, ErrNotConnected)
}

func parseFlowParams(t *testing.T, authURL string) (state, challenge string) {
	t.Helper()
	u, err := url.Parse(authURL)
	require.NoError(t, err)
	q := u.Query()
	require.NotEmpty(t, q.Get("state"))
	require.NotEmpty(t, q.Get("code_challenge"))
	return q.Get("state"), q.Get("code_challenge")
}
