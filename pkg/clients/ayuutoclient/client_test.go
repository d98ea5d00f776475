package ayuutoclient

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/oauth2"

	"github.com/ayuuto/ayuuto-cli/pkg/core/validation"
)

type staticSource struct {
	token string
	err   error
}

func (s staticSource) Token() (*oauth2.Token, error) {
	if s.err != nil {
		return nil, s.err
	}
	return &oauth2.Token{AccessToken: s.token, TokenType: "Bearer"}, nil
}

func newTestClient(t *testing.T, handler http.HandlerFunc, tokens oauth2.TokenSource) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	client, err := NewClient(server.URL+"/api", tokens, zap.NewNop())
	require.NoError(t, err)
	return client
}

func writeJSON(w http.ResponseWriter, status int, body string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	fmt.Fprint(w, body)
}

func TestNewClient_InvalidBaseURL(t *testing.T) {
	_, err := NewClient("not a url", nil, zap.NewNop())
	assert.Error(t, err)
}

func TestGetGroup_DecodesEnvelopeAndSendsBearer(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/api/groups/g-1", r.URL.Path)
		assert.Equal(t, "Bearer tok-123", r.Header.Get("Authorization"))
		assert.NotEmpty(t, r.Header.Get("X-Request-ID"))

		writeJSON(w, http.StatusOK, `{
			"success": true,
			"data": {
				"id": "g-1",
				"name": "Family",
				"memberCount": 2,
				"amountPerPerson": 50,
				"collectionDate": 15,
				"frequency": "monthly",
				"isOrderSet": true,
				"currentRecipientIndex": 1,
				"createdBy": null,
				"participants": [
					{"id": "p1", "name": "Hodan", "order": 2, "isPaid": true, "hasReceivedPayment": false},
					{"id": "p2", "name": "Farah", "user": {"id": "u2", "email": "farah@example.com"}, "order": 1, "isPaid": false, "hasReceivedPayment": true}
				],
				"rounds": [{"roundNumber": 1, "recipientParticipantId": "p2", "status": "COMPLETED"}]
			}
		}`)
	}, staticSource{token: "tok-123"})

	group, err := client.GetGroup(context.Background(), "g-1")
	require.NoError(t, err)

	assert.Equal(t, "Family", group.Name)
	assert.Equal(t, "15", string(group.CollectionDate))
	assert.Nil(t, group.CreatedBy)
	require.Len(t, group.Participants, 2)
	assert.Equal(t, 2, group.Participants[0].OrderValue())
	assert.Equal(t, "farah@example.com", group.Participants[1].User.Email)
	require.Len(t, group.Rounds, 1)
	assert.Equal(t, "p2", group.Rounds[0].RecipientParticipantID)
}

func TestLogin_PublicEndpointSendsNoToken(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Empty(t, r.Header.Get("Authorization"))
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var req validation.LoginRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "amina@example.com", req.Email)

		writeJSON(w, http.StatusOK, `{"success":true,"data":{"token":"jwt","user":{"id":"u1","email":"amina@example.com"}}}`)
	}, nil)

	session, err := client.Login(context.Background(), validation.LoginRequest{Email: "amina@example.com", Password: "secret"})
	require.NoError(t, err)
	assert.Equal(t, "jwt", session.Token)
	assert.Equal(t, "u1", session.User.ID)
}

func TestDo_SuccessFalseCarriesMessage(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, `{"success":false,"message":"Group is full"}`)
	}, staticSource{token: "t"})

	_, err := client.AddParticipants(context.Background(), "g", validation.AddParticipantsRequest{})
	require.Error(t, err)

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, "Group is full", apiErr.Message)
	assert.False(t, IsAuthExpired(err))
}

func TestDo_Non2xxUsesEnvelopeMessage(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusBadRequest, `{"success":false,"message":"Order already set"}`)
	}, staticSource{token: "t"})

	_, err := client.SpinOrder(context.Background(), "g")
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusBadRequest, apiErr.Status)
	assert.Equal(t, "Order already set", apiErr.Message)
}

func TestDo_EmptyAndInvalidBodies(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
		want   string
	}{
		{"empty body", http.StatusOK, "", "empty response"},
		{"not json", http.StatusOK, "<html>oops</html>", "invalid response"},
		{"missing data", http.StatusOK, `{"success":true}`, "missing data"},
		{"server error html", http.StatusBadGateway, "<html>bad gateway</html>", "Bad Gateway"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				writeJSON(w, tt.status, tt.body)
			}, staticSource{token: "t"})

			_, err := client.GetGroup(context.Background(), "g")
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestDo_DeleteWithoutData(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodDelete, r.Method)
		writeJSON(w, http.StatusOK, `{"success":true,"message":"deleted"}`)
	}, staticSource{token: "t"})

	assert.NoError(t, client.DeleteGroup(context.Background(), "g"))
}

func TestDo_AuthExpiry(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
	}{
		{"401", http.StatusUnauthorized, `{"success":false,"message":"nope"}`},
		{"not authorized message", http.StatusForbidden, `{"success":false,"message":"Not authorized, token failed"}`},
		{"expired message", http.StatusOK, `{"success":false,"message":"Token expired"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				writeJSON(w, tt.status, tt.body)
			}, staticSource{token: "t"})

			_, err := client.ListGroups(context.Background())
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrSessionExpired))
			assert.True(t, IsAuthExpired(err))
		})
	}
}

func TestDo_PublicEndpointsNeverExpireSession(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
		call   func(*Client) error
	}{
		{"expired otp", http.StatusBadRequest, `{"success":false,"message":"OTP has expired"}`, func(c *Client) error {
			return c.VerifyOTP(context.Background(), validation.VerifyOTPRequest{Email: "amina@example.com", OTP: "123456"})
		}},
		{"expired reset", http.StatusOK, `{"success":false,"message":"Reset code expired"}`, func(c *Client) error {
			return c.ResetPassword(context.Background(), validation.ResetPasswordRequest{Email: "amina@example.com", OTP: "123456", NewPassword: "secret1"})
		}},
		{"wrong password", http.StatusUnauthorized, `{"success":false,"message":"Invalid credentials"}`, func(c *Client) error {
			_, err := c.Login(context.Background(), validation.LoginRequest{Email: "amina@example.com", Password: "bad"})
			return err
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				writeJSON(w, tt.status, tt.body)
			}, staticSource{token: "t"})

			err := tt.call(client)
			var apiErr *APIError
			require.ErrorAs(t, err, &apiErr)
			assert.Equal(t, tt.status, apiErr.Status)
			assert.False(t, errors.Is(err, ErrSessionExpired))
			assert.False(t, IsAuthExpired(err))
		})
	}
}

func TestDo_TokenSourceErrorsAreAuthErrors(t *testing.T) {
	called := false
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		called = true
	}, staticSource{err: ErrSessionExpired})

	_, err := client.ListGroups(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrSessionExpired)
	assert.False(t, IsTransport(err))
	assert.False(t, called, "no request is sent without a valid token")
}

func TestDo_NoSession(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {}, nil)

	_, err := client.ListGroups(context.Background())
	assert.ErrorIs(t, err, ErrNotLoggedIn)
	assert.True(t, IsAuthExpired(err))
}

func TestDo_TransportError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := server.URL
	server.Close()

	client, err := NewClient(url, staticSource{token: "t"}, zap.NewNop())
	require.NoError(t, err)

	_, err = client.GetGroup(context.Background(), "g")
	require.Error(t, err)
	assert.True(t, IsTransport(err))
	assert.False(t, IsAuthExpired(err))
}

func TestUpdatePaymentStatus_Body(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPatch, r.Method)
		assert.Equal(t, "/api/groups/g/participants/p%201/payment", r.URL.EscapedPath())

		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, true, body["isPaid"])

		writeJSON(w, http.StatusOK, `{"success":true,"data":{"id":"g","participants":[]}}`)
	}, staticSource{token: "t"})

	group, err := client.UpdatePaymentStatus(context.Background(), "g", "p 1", true)
	require.NoError(t, err)
	assert.Equal(t, "g", group.ID)
}

func TestGetSharedGroup_IsPublic(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/shared/abc", r.URL.Path)
		assert.Empty(t, r.Header.Get("Authorization"))
		writeJSON(w, http.StatusOK, `{"success":true,"data":{"id":"g","name":"Shared","participants":[]}}`)
	}, nil)

	group, err := client.GetSharedGroup(context.Background(), "abc")
	require.NoError(t, err)
	assert.Equal(t, "Shared", group.Name)
}
