package llamacpp

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newServer(t *testing.T, status int, reply any) (*httptest.Server, *ChatCompletionRequest) {
	t.Helper()
	var got ChatCompletionRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/chat/completions", r.URL.Path)
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.WriteHeader(status)
		_ = json.NewEncoder(w).Encode(reply)
	}))
	t.Cleanup(srv.Close)
	return srv, &got
}

func reply(content any) ChatCompletionResponse {
	return ChatCompletionResponse{Choices: []Choice{{Message: Message{Role: "assistant", Content: content}}}}
}

func TestClassify(t *testing.T) {
	srv, got := newServer(t, http.StatusOK, reply(`{"label":"heart","confidences":{"heart":1}}`))
	c, err := NewClient(srv.URL + "/")
	require.NoError(t, err)

	p, err := c.Classify(t.Context(), "model-x", "classify", "iVBORw0KGgo=")
	require.NoError(t, err)
	assert.Equal(t, "heart", p.Label)

	assert.Equal(t, "model-x", got.Model)
	require.Len(t, got.Messages, 1)
	parts, ok := got.Messages[0].Content.([]any)
	require.True(t, ok)
	require.Len(t, parts, 2)
	image := parts[1].(map[string]any)["image_url"].(map[string]any)
	assert.Equal(t, "data:image/png;base64,iVBORw0KGgo=", image["url"])
}

func TestSimpleQueryContentParts(t *testing.T) {
	srv, _ := newServer(t, http.StatusOK, reply([]map[string]string{{"type": "text", "text": "a doodle"}}))
	c, err := NewClient(srv.URL)
	require.NoError(t, err)

	text, err := c.SimpleQuery(t.Context(), "m", "what", "")
	require.NoError(t, err)
	assert.Equal(t, "a doodle", text)
}

func TestServerErrors(t *testing.T) {
	srv, _ := newServer(t, http.StatusInternalServerError, map[string]string{"error": "boom"})
	c, _ := NewClient(srv.URL)
	_, err := c.Classify(t.Context(), "m", "p", "")
	assert.ErrorContains(t, err, "status 500")

	srv, _ = newServer(t, http.StatusOK, ChatCompletionResponse{})
	c, _ = NewClient(srv.URL)
	_, err = c.SimpleQuery(t.Context(), "m", "p", "")
	assert.ErrorContains(t, err, "no choices")
}

func TestMimeType(t *testing.T) {
	assert.Equal(t, "image/png", mimeType("iVBORw0"))
	assert.Equal(t, "image/webp", mimeType("UklGRh"))
	assert.Equal(t, "image/jpeg", mimeType("/9j/4AAQ"))
}
