// Package teams establishes the delegated-permission connection to the chat
// platform with the OAuth2 authorization-code + PKCE flow and wraps the small
// slice of its graph API the dashboard uses.
package teams

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"golang.org/x/oauth2"

	"github.com/Mbalsss/ServiceDesk-sub001/internal/config"
	"github.com/Mbalsss/ServiceDesk-sub001/internal/models"
)

var ErrNotConnected = errors.New("teams: user has no active connection")

// IntegrationStore persists the token pair. Implemented by the postgres
// integration repository.
type IntegrationStore interface {
	Get(ctx context.Context, userID string) (*models.TeamsIntegration, error)
	Upsert(ctx context.Context, in *models.TeamsIntegration) error
	Delete(ctx context.Context, userID string) error
}

type Connector struct {
	oauth  oauth2.Config
	graph  string
	states *StateStore
	store  IntegrationStore
	client *http.Client
}

func NewConnector(cfg config.TeamsConfig, store IntegrationStore) *Connector {
	return &Connector{
		oauth: oauth2.Config{
			ClientID:    cfg.ClientID,
			RedirectURL: cfg.RedirectURL,
			Scopes:      cfg.Scopes,
			Endpoint: oauth2.Endpoint{
				AuthURL:  cfg.AuthURL,
				TokenURL: cfg.TokenURL,
			},
		},
		graph:  cfg.GraphURL,
		states: NewStateStore(10 * time.Minute),
		store:  store,
		client: &http.Client{Timeout: 15 * time.Second},
	}
}

// Enabled reports whether a client id is configured at all.
func (c *Connector) Enabled() bool { return c.oauth.ClientID != "" }

// Begin starts a flow for the user: generates the PKCE verifier, stashes it
// against a fresh state key, and returns the authorization URL carrying the
// S256 challenge.
func (c *Connector) Begin(userID string) (authURL string, err error) {
	if userID == "" {
		return "", errors.New("teams: missing user id")
	}
	verifier := oauth2.GenerateVerifier()
	state := c.states.Put(userID, verifier)
	return c.oauth.AuthCodeURL(state, oauth2.S256ChallengeOption(verifier)), nil
}

// Complete finishes the flow on the redirect back: consumes the stored
// verifier, exchanges the code for the token pair (verifier instead of a
// client secret), resolves the platform user, and persists the connection.
// Any failure leaves no partial token state behind.
func (c *Connector) Complete(ctx context.Context, state, code string) (*models.TeamsIntegration, error) {
	userID, verifier, err := c.states.Take(state)
	if err != nil {
		return nil, err
	}
	if code == "" {
		return nil, errors.New("teams: authorization code missing")
	}

	ctx = context.WithValue(ctx, oauth2.HTTPClient, c.client)
	tok, err := c.oauth.Exchange(ctx, code, oauth2.VerifierOption(verifier))
	if err != nil {
		return nil, fmt.Errorf("token exchange: %w", err)
	}

	teamsUser, err := c.fetchMe(ctx, tok.AccessToken)
	if err != nil {
		return nil, err
	}

	in := &models.TeamsIntegration{
		UserID:       userID,
		TeamsUserID:  teamsUser,
		AccessToken:  tok.AccessToken,
		RefreshToken: tok.RefreshToken,
		ExpiresAt:    tok.Expiry,
		ConnectedAt:  time.Now(),
	}
	if err := c.store.Upsert(ctx, in); err != nil {
		return nil, err
	}
	return in, nil
}

// Disconnect tears the connection down by deleting the stored row.
func (c *Connector) Disconnect(ctx context.Context, userID string) error {
	return c.store.Delete(ctx, userID)
}

// Status returns the stored connection, or ErrNotConnected.
func (c *Connector) Status(ctx context.Context, userID string) (*models.TeamsIntegration, error) {
	in, err := c.store.Get(ctx, userID)
	if err != nil {
		return nil, err
	}
	if in == nil {
		return nil, ErrNotConnected
	}
	return in, nil
}

// SendMessage posts a chat message on the user's behalf, refreshing the
// access token through the oauth2 token source when it has expired. A
// refreshed token pair is written back to the store.
func (c *Connector) SendMessage(ctx context.Context, userID, chatID, text string) error {
	in, err := c.Status(ctx, userID)
	if err != nil {
		return err
	}

	ctx = context.WithValue(ctx, oauth2.HTTPClient, c.client)
	src := c.oauth.TokenSource(ctx, &oauth2.Token{
		AccessToken:  in.AccessToken,
		RefreshToken: in.RefreshToken,
		Expiry:       in.ExpiresAt,
	})
	tok, err := src.Token()
	if err != nil {
		return fmt.Errorf("refresh token: %w", err)
	}
	if tok.AccessToken != in.AccessToken {
		in.AccessToken = tok.AccessToken
		if tok.RefreshToken != "" {
			in.RefreshToken = tok.RefreshToken
		}
		in.ExpiresAt = tok.Expiry
		if err := c.store.Upsert(ctx, in); err != nil {
			return err
		}
	}

	body, _ := json.Marshal(map[string]any{
		"body": map[string]string{"content": text},
	})
	url := fmt.Sprintf("%s/chats/%s/messages", c.graph, chatID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+tok.AccessToken)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("teams: send message failed with status %d", resp.StatusCode)
	}
	return nil
}

// fetchMe resolves the platform-side user id for the freshly issued token.
func (c *Connector) fetchMe(ctx context.Context, accessToken string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.graph+"/me", nil)
	if err != nil {
		return "", err
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)

	resp, err := c.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("teams: user lookup failed with status %d", resp.StatusCode)
	}

	var me struct {
		ID string `json:"id"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&me); err != nil {
		return "", err
	}
	if me.ID == "" {
		return "", errors.New("teams: user lookup returned no id")
	}
	return me.ID, nil
}
