package xray

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAnalyzeSendsImageAndDecodesResult(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/analyze", r.URL.Path)

		file, header, err := r.FormFile("file")
		require.NoError(t, err)
		defer file.Close()
		assert.Equal(t, "chest.png", header.Filename)

		json.NewEncoder(w).Encode(map[string]interface{}{
			"findings": []string{"no acute cardiopulmonary disease"},
		})
	}))
	defer server.Close()

	client := NewClient(server.URL, 2*time.Second)
	result, err := client.Analyze(context.Background(), "chest.png", []byte("fake-image-bytes"))
	require.NoError(t, err)
	assert.Contains(t, result, "findings")
}

func TestCompareSendsBothImages(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/compare", r.URL.Path)
		_, _, err := r.FormFile("previous")
		require.NoError(t, err)
		_, _, err = r.FormFile("current")
		require.NoError(t, err)
		json.NewEncoder(w).Encode(map[string]interface{}{"interval_change": "stable"})
	}))
	defer server.Close()

	client := NewClient(server.URL, 2*time.Second)
	result, err := client.Compare(context.Background(), "old.png", []byte("a"), "new.png", []byte("b"))
	require.NoError(t, err)
	assert.Equal(t, "stable", result["interval_change"])
}

func TestAskQuestionForwardsQuestionField(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/qna", r.URL.Path)
		require.NoError(t, r.ParseMultipartForm(1<<20))
		assert.Equal(t, "any effusion?", r.FormValue("question"))
		json.NewEncoder(w).Encode(map[string]interface{}{"answer": "no"})
	}))
	defer server.Close()

	client := NewClient(server.URL, 2*time.Second)
	result, err := client.AskQuestion(context.Background(), "chest.png", []byte("img"), "any effusion?")
	require.NoError(t, err)
	assert.Equal(t, "no", result["answer"])
}

func TestServerErrorMapsToUnavailable(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "model not loaded", http.StatusInternalServerError)
	}))
	defer server.Close()

	client := NewClient(server.URL, 2*time.Second)
	_, err := client.Analyze(context.Background(), "chest.png", []byte("img"))
	require.Error(t, err)

	var unavailable *ErrUnavailable
	require.ErrorAs(t, err, &unavailable)
	assert.Equal(t, "analyze", unavailable.Op)
}

func TestTransportErrorMapsToUnavailable(t *testing.T) {
	client := NewClient("http://127.0.0.1:1", 200*time.Millisecond)
	_, err := client.Analyze(context.Background(), "chest.png", []byte("img"))
	require.Error(t, err)

	var unavailable *ErrUnavailable
	require.ErrorAs(t, err, &unavailable)
}
