package ollama

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/ollama/ollama/api"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClassify(t *testing.T) {
	var got api.ChatRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/chat", r.URL.Path)
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(api.ChatResponse{
			Model:   got.Model,
			Message: api.Message{Role: "assistant", Content: `{"label":"cloud","confidences":{"cloud":0.8,"sun":0.2}}`},
			Done:    true,
		})
	}))
	defer srv.Close()

	c, err := NewClient(srv.URL + "/api/chat")
	require.NoError(t, err)

	p, err := c.Classify(t.Context(), "minicpm-v4.5", "classify", "aGVsbG8=")
	require.NoError(t, err)
	assert.Equal(t, "cloud", p.Label)
	assert.InDelta(t, 0.8, p.Confidence(), 1e-9)

	require.Len(t, got.Messages, 1)
	assert.Equal(t, []api.ImageData{api.ImageData("hello")}, got.Messages[0].Images)
	assert.Contains(t, got.Options, "num_ctx")
}

func TestNewClientRejectsBadURL(t *testing.T) {
	_, err := NewClient("localhost")
	assert.Error(t, err)
}

func TestBadBase64(t *testing.T) {
	c, err := NewClient("http://127.0.0.1:1")
	require.NoError(t, err)
	_, err = c.SimpleQuery(t.Context(), "m", "p", "!!!")
	assert.ErrorContains(t, err, "base64")
}
