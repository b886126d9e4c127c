package remote

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/onkernel/profiles-demo/pkg/browser"
)

func TestCreateProfile(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/v1/profiles", r.URL.Path)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))

		var req map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "profile_1_abcd1234", req["name"])

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(browser.Profile{Name: req["name"]})
	}))
	defer srv.Close()

	client := NewClient(srv.URL, "test-key")
	profile, err := client.CreateProfile(context.Background(), "profile_1_abcd1234")
	require.NoError(t, err)
	assert.Equal(t, "profile_1_abcd1234", profile.Name)
}

func TestCreateProfileConflict(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusConflict)
		json.NewEncoder(w).Encode(map[string]string{"error": "profile exists"})
	}))
	defer srv.Close()

	client := NewClient(srv.URL, "")
	_, err := client.CreateProfile(context.Background(), "taken")
	require.Error(t, err)
	assert.True(t, browser.IsConflict(err))

	var ce *browser.ConflictError
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, "taken", ce.Name)
}

func TestCreateSession(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/sessions", r.URL.Path)

		var req struct {
			Profile *browser.ProfileRef `json:"profile"`
			Stealth bool                `json:"stealth"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		require.NotNil(t, req.Profile)
		assert.Equal(t, "p1", req.Profile.Name)
		assert.True(t, req.Profile.SaveChanges)
		assert.True(t, req.Stealth)

		json.NewEncoder(w).Encode(browser.Session{
			ID:          "sess-42",
			LiveViewURL: "https://live.example.com/sess-42",
			ControlURL:  "wss://cdp.example.com/sess-42",
		})
	}))
	defer srv.Close()

	client := NewClient(srv.URL, "")
	sess, err := client.CreateSession(context.Background(), browser.SessionOptions{
		Profile: &browser.ProfileRef{Name: "p1", SaveChanges: true},
		Stealth: true,
	})
	require.NoError(t, err)
	assert.Equal(t, "sess-42", sess.ID)
	assert.Equal(t, "wss://cdp.example.com/sess-42", sess.ControlURL)
}

func TestDeleteSession(t *testing.T) {
	var gotPath string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		assert.Equal(t, http.MethodDelete, r.Method)
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	client := NewClient(srv.URL, "")
	require.NoError(t, client.DeleteSession(context.Background(), "sess-42"))
	assert.Equal(t, "/v1/sessions/sess-42", gotPath)
}

func TestDeleteSessionEmptyID(t *testing.T) {
	client := NewClient("http://unused.example.com", "")
	err := client.DeleteSession(context.Background(), "")
	assert.Error(t, err)
}

func TestServerErrorSurfacesDetail(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		json.NewEncoder(w).Encode(map[string]string{"error": "out of capacity"})
	}))
	defer srv.Close()

	client := NewClient(srv.URL, "")
	_, err := client.CreateSession(context.Background(), browser.SessionOptions{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "500")
	assert.Contains(t, err.Error(), "out of capacity")
	assert.False(t, browser.IsConflict(err))
}

func TestTrailingSlashBaseURL(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/profiles", r.URL.Path)
		json.NewEncoder(w).Encode(browser.Profile{Name: "p"})
	}))
	defer srv.Close()

	client := NewClient(srv.URL+"/", "")
	_, err := client.CreateProfile(context.Background(), "p")
	assert.NoError(t, err)
}
