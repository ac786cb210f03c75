package apollo

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMatchPerson_Success(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/v1/people/match", r.URL.Path)
		assert.Equal(t, "test-key", r.Header.Get("x-api-key"))
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		assert.Equal(t, "no-cache", r.Header.Get("Cache-Control"))

		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "Jane", body["first_name"])
		assert.Equal(t, "Doe", body["last_name"])
		assert.Equal(t, "Acme", body["organization_name"])
		assert.Equal(t, true, body["reveal_personal_emails"])

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"person":{"id":"p1","first_name":"Jane","last_name":"Doe","email":"jane@acme.com","organization":{"name":"Acme"}}}`))
	}))
	defer srv.Close()

	client := NewClient("test-key", WithBaseURL(srv.URL))
	got, err := client.MatchPerson(context.Background(), MatchRequest{
		FirstName:            "Jane",
		LastName:             "Doe",
		OrganizationName:     "Acme",
		RevealPersonalEmails: true,
	})

	require.NoError(t, err)
	require.NotNil(t, got.Person)
	assert.Equal(t, "jane@acme.com", got.Email())
	assert.Equal(t, "Acme", got.Person.Organization.Name)
}

func TestMatchPerson_OmitsEmptyOrganization(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		_, ok := body["organization_name"]
		assert.False(t, ok)
		w.Write([]byte(`{"person":null}`))
	}))
	defer srv.Close()

	client := NewClient("k", WithBaseURL(srv.URL))
	got, err := client.MatchPerson(context.Background(), MatchRequest{FirstName: "A", LastName: "B"})

	require.NoError(t, err)
	assert.Nil(t, got.Person)
	assert.Equal(t, "", got.Email())
}

func TestMatchPerson_StatusError(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		w.Write([]byte(`{"error":"rate limited"}`))
	}))
	defer srv.Close()

	client := NewClient("k", WithBaseURL(srv.URL))
	_, err := client.MatchPerson(context.Background(), MatchRequest{FirstName: "A", LastName: "B"})

	require.Error(t, err)
	var se *StatusError
	require.True(t, errors.As(err, &se))
	assert.Equal(t, http.StatusTooManyRequests, se.StatusCode)
	assert.Contains(t, err.Error(), "429")
}

func TestMatchPerson_MalformedJSON(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{not json`))
	}))
	defer srv.Close()

	client := NewClient("k", WithBaseURL(srv.URL))
	_, err := client.MatchPerson(context.Background(), MatchRequest{FirstName: "A", LastName: "B"})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "unmarshal")
}

func TestMatchPerson_ContextCancellation(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	client := NewClient("k", WithBaseURL(srv.URL))
	_, err := client.MatchPerson(ctx, MatchRequest{FirstName: "A", LastName: "B"})

	require.Error(t, err)
}

func TestEmail_NilSafe(t *testing.T) {
	var r *MatchResponse
	assert.Equal(t, "", r.Email())
	assert.Equal(t, "", (&MatchResponse{}).Email())
}

func TestMatchPerson_KeepsFullPayload(t *testing.T) {
	t.Parallel()

	payload := `{"person":{"id":"p1","email":"jane@acme.com","headline":"CEO at Acme","employment_history":[{"title":"CEO"}]},"credits_used":1}`
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(payload))
	}))
	defer srv.Close()

	client := NewClient("k", WithBaseURL(srv.URL))
	got, err := client.MatchPerson(context.Background(), MatchRequest{FirstName: "Jane", LastName: "Doe"})
	require.NoError(t, err)
	assert.Equal(t, "jane@acme.com", got.Email())
	assert.JSONEq(t, payload, string(got.Raw()))

	out, err := json.Marshal(got)
	require.NoError(t, err)
	assert.JSONEq(t, payload, string(out))
}

func TestMatchResponse_MarshalBuiltInCode(t *testing.T) {
	r := &MatchResponse{Person: &Person{Email: "a@b.c"}}
	out, err := json.Marshal(r)
	require.NoError(t, err)
	assert.JSONEq(t, `{"person":{"email":"a@b.c"}}`, string(out))
	assert.Nil(t, r.Raw())
}
