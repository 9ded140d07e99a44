package ai_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Despensa-api/internal/application/backend"
	"github.com/jhoicas/Despensa-api/internal/application/menu"
	"github.com/jhoicas/Despensa-api/internal/domain"
	"github.com/jhoicas/Despensa-api/internal/infrastructure/ai"
	"github.com/jhoicas/Despensa-api/pkg/config"
)

func sampleRequest() menu.SelectionRequest {
	return menu.SelectionRequest{
		Days:     2,
		Servings: 2,
		TopK:     10,
		Candidates: []menu.Candidate{
			{RecipeID: 1, Name: "Arroz frito"},
			{RecipeID: 2, Name: "Tortilla"},
		},
	}
}

// ── HTTP ─────────────────────────────────────────────────────────────────────

func TestHTTPPlannerSelector_NotConfigured(t *testing.T) {
	s := ai.NewHTTPPlannerSelector(config.EndpointConfig{})
	ok, reason := s.Available()
	assert.False(t, ok)
	assert.Equal(t, "PLANNER_HTTP_ENDPOINT no configurado", reason)
}

func TestHTTPPlannerSelector_SendsPayloadAndParsesSelection(t *testing.T) {
	var got map[string]any
	var gotHeaders http.Header
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotHeaders = r.Header.Clone()
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		_, _ = w.Write([]byte(`{"selected":[{"recipe_id":2,"explain":"rápida"},{"recipe_id":1,"explain":["a","b"]},{"explain":"sin id"}]}`))
	}))
	defer srv.Close()

	s := ai.NewHTTPPlannerSelector(config.EndpointConfig{
		Endpoint:    srv.URL,
		HeadersJSON: `{"Authorization":"Bearer x"}`,
		Timeout:     2 * time.Second,
	})
	ok, _ := s.Available()
	require.True(t, ok)

	sel, err := s.Select(context.Background(), sampleRequest())
	require.NoError(t, err)
	require.Len(t, sel.Selected, 2)
	assert.Equal(t, int64(2), sel.Selected[0].RecipeID)
	assert.Equal(t, []string{"rápida"}, sel.Selected[0].Explain)
	assert.Equal(t, []string{"a", "b"}, sel.Selected[1].Explain)

	assert.Equal(t, "Bearer x", gotHeaders.Get("Authorization"))
	assert.Equal(t, "application/json", gotHeaders.Get("Content-Type"))
	for _, key := range []string{"days", "servings", "constraints", "inventory", "candidates", "top_k"} {
		assert.Contains(t, got, key)
	}
}

func TestHTTPPlannerSelector_QuantitiesAreJSONNumbers(t *testing.T) {
	var got struct {
		Inventory  []map[string]any `json:"inventory"`
		Candidates []struct {
			Ingredients []map[string]any `json:"ingredients"`
		} `json:"candidates"`
	}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		_, _ = w.Write([]byte(`{"selected":[{"recipe_id":1}]}`))
	}))
	defer srv.Close()

	req := sampleRequest()
	req.Inventory = []menu.InventoryEntry{{ItemName: "Arroz", Quantity: 250.5, Unit: "g"}}
	req.Candidates[0].Ingredients = []menu.CandidateIngredient{{ItemID: 2, ItemName: "Arroz", Quantity: 200, Unit: "g"}}

	s := ai.NewHTTPPlannerSelector(config.EndpointConfig{Endpoint: srv.URL, Timeout: time.Second})
	_, err := s.Select(context.Background(), req)
	require.NoError(t, err)

	require.Len(t, got.Inventory, 1)
	assert.Equal(t, 250.5, got.Inventory[0]["quantity"])
	require.Len(t, got.Candidates[0].Ingredients, 1)
	assert.Equal(t, 200.0, got.Candidates[0].Ingredients[0]["quantity"])
}

func TestHTTPPlannerSelector_ErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "caído", http.StatusBadGateway)
	}))
	defer srv.Close()

	s := ai.NewHTTPPlannerSelector(config.EndpointConfig{Endpoint: srv.URL, Timeout: time.Second})
	_, err := s.Select(context.Background(), sampleRequest())
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrBackendResponseError))
	assert.Equal(t, backend.CodeResponseError, backend.Code(err))
}

func TestHTTPPlannerSelector_NonSuccessStatusWithJSONBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusMultipleChoices)
		_, _ = w.Write([]byte(`{"selected":[{"recipe_id":1}]}`))
	}))
	defer srv.Close()

	s := ai.NewHTTPPlannerSelector(config.EndpointConfig{Endpoint: srv.URL, Timeout: time.Second})
	_, err := s.Select(context.Background(), sampleRequest())
	require.Error(t, err)
	assert.Equal(t, backend.CodeResponseError, backend.Code(err))
	assert.Contains(t, err.Error(), "300")
}

func TestHTTPPlannerSelector_InvalidResponses(t *testing.T) {
	bodies := []string{`no es json`, `{}`, `{"selected":[]}`}
	for _, body := range bodies {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(body))
		}))
		s := ai.NewHTTPPlannerSelector(config.EndpointConfig{Endpoint: srv.URL, Timeout: time.Second})
		_, err := s.Select(context.Background(), sampleRequest())
		srv.Close()
		require.Error(t, err, body)
		assert.True(t, errors.Is(err, domain.ErrBackendResponseInvalid), body)
	}
}

func TestHTTPPlannerSelector_BadHeadersIsConfigError(t *testing.T) {
	called := false
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))
	defer srv.Close()

	s := ai.NewHTTPPlannerSelector(config.EndpointConfig{Endpoint: srv.URL, HeadersJSON: `{roto`, Timeout: time.Second})
	_, err := s.Select(context.Background(), sampleRequest())
	require.Error(t, err)
	assert.Equal(t, backend.CodeConfig, backend.Code(err))
	assert.False(t, called)
}

func TestHTTPPlannerSelector_Timeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	}))
	defer srv.Close()

	s := ai.NewHTTPPlannerSelector(config.EndpointConfig{Endpoint: srv.URL, Timeout: 50 * time.Millisecond})
	_, err := s.Select(context.Background(), sampleRequest())
	require.Error(t, err)
	assert.Equal(t, backend.CodeGeneric, backend.Code(err))
}

// ── Ollama ───────────────────────────────────────────────────────────────────

func TestOllamaPlannerSelector_Availability(t *testing.T) {
	ok, reason := ai.NewOllamaPlannerSelector(config.ModelConfig{Model: "m"}).Available()
	assert.False(t, ok)
	assert.Equal(t, "PLANNER_LOCAL_ENDPOINT no configurado", reason)

	ok, reason = ai.NewOllamaPlannerSelector(config.ModelConfig{Endpoint: "http://x"}).Available()
	assert.False(t, ok)
	assert.Equal(t, "PLANNER_LOCAL_MODEL no configurado", reason)
}

func TestOllamaPlannerSelector_ParsesFencedJSON(t *testing.T) {
	var got map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		resp := map[string]any{
			"response": "Claro:\n```json\n{\"selected\":[{\"recipe_id\":1,\"explain\":[\"usa huevos\"]}]}\n```",
		}
		_ = json.NewEncoder(w).Encode(resp)
	}))
	defer srv.Close()

	s := ai.NewOllamaPlannerSelector(config.ModelConfig{Endpoint: srv.URL, Model: "qwen", Timeout: time.Second})
	sel, err := s.Select(context.Background(), sampleRequest())
	require.NoError(t, err)
	require.Len(t, sel.Selected, 1)
	assert.Equal(t, int64(1), sel.Selected[0].RecipeID)
	assert.Equal(t, []string{"usa huevos"}, sel.Selected[0].Explain)

	assert.Equal(t, "qwen", got["model"])
	assert.Equal(t, false, got["stream"])
	assert.Contains(t, got["prompt"], "Arroz frito")
	opts, ok := got["options"].(map[string]any)
	require.True(t, ok)
	assert.InDelta(t, 0.2, opts["temperature"], 1e-9)
}

func TestOllamaPlannerSelector_NoJSONIsInvalid(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"response":"no sé qué cocinar"}`))
	}))
	defer srv.Close()

	s := ai.NewOllamaPlannerSelector(config.ModelConfig{Endpoint: srv.URL, Model: "qwen", Timeout: time.Second})
	_, err := s.Select(context.Background(), sampleRequest())
	require.Error(t, err)
	assert.Equal(t, backend.CodeResponseInvalid, backend.Code(err))
}
