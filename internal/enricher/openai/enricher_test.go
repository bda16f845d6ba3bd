package openai_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"medscan/internal/domain"
	"medscan/internal/enricher"
	"medscan/internal/enricher/openai"
	"medscan/internal/port"
)

func newTestEnricher(url string) *openai.Enricher {
	return openai.New(enricher.ProviderConfig{
		Provider: "openai",
		APIKey:   "test-openai-key",
		Model:    "gpt-test",
		Endpoint: url,
	}, nil)
}

func completion(content, finish string) map[string]interface{} {
	return map[string]interface{}{
		"choices": []map[string]interface{}{
			{
				"message":       map[string]interface{}{"role": "assistant", "content": content},
				"finish_reason": finish,
			},
		},
	}
}

func TestEnricher_Enrich_Success(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer test-openai-key", r.Header.Get("Authorization"))

		var reqBody map[string]interface{}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&reqBody))
		assert.Equal(t, "gpt-test", reqBody["model"])
		format := reqBody["response_format"].(map[string]interface{})
		assert.Equal(t, "json_object", format["type"])
		messages := reqBody["messages"].([]interface{})
		require.Len(t, messages, 2)
		assert.Contains(t, messages[1].(map[string]interface{})["content"], "Lipid Profile Report")

		_ = json.NewEncoder(w).Encode(completion(`{"summary":"Cholesterol is elevated.","keyFindings":["LDL high"]}`, "stop"))
	}))
	defer server.Close()

	a, err := newTestEnricher(server.URL).Enrich(context.Background(), port.EnrichInput{
		Text:       "LDL: 190 mg/dL",
		ReportType: domain.ReportTypeLipidProfile,
	})

	require.NoError(t, err)
	assert.Equal(t, "Cholesterol is elevated.", a.Summary)
	assert.Equal(t, []string{"LDL high"}, a.KeyFindings)
	assert.Equal(t, "openai/gpt-test", a.Provider)
}

func TestEnricher_Enrich_Truncated(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(completion(`{"summary":`, "length"))
	}))
	defer server.Close()

	_, err := newTestEnricher(server.URL).Enrich(context.Background(), port.EnrichInput{Text: "x"})
	assert.ErrorContains(t, err, "output truncated")
}

func TestEnricher_Enrich_APIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"error":"invalid key"}`))
	}))
	defer server.Close()

	_, err := newTestEnricher(server.URL).Enrich(context.Background(), port.EnrichInput{Text: "x"})

	var apiErr *enricher.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusUnauthorized, apiErr.StatusCode)
}
