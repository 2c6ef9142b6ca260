package api

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/mikey/email-classifier/internal/core"
)

const productiveResponse = `{
	"category": "Productive",
	"confidence": 0.95,
	"resposta_sugerida": "Thanks, the report will be sent today.",
	"metodo_usado": "nlp",
	"detalhes": {
		"justificativa": "Request with urgency markers",
		"tempo_processamento": 0.42,
		"modelo": "gemini-1.5-flash",
		"versao": "3.0"
	}
}`

const comparativeResponse = `{
	"categoria": "Improdutivo",
	"confidence": 0.81,
	"resposta_sugerida": "Thank you for the message!",
	"metodo_usado": "gemini",
	"detalhes": {
		"justificativa": "Greeting without action",
		"tempo_processamento": 1.2,
		"modelo": "hybrid",
		"versao": "2.1",
		"analise_comparativa": {
			"nlp_resultado": {
				"classificacao": "Produtivo",
				"confianca": 0.55,
				"raciocinio": "one productive keyword",
				"features": {
					"productive_keywords": 1,
					"unproductive_keywords": 0,
					"has_urgency": false,
					"has_questions": true,
					"word_count": 12
				}
			},
			"gemini_resultado": {
				"classificacao": "Improdutivo",
				"confianca": 0.81,
				"raciocinio": "holiday greeting"
			},
			"concordancia": {
				"concordam": false,
				"status": "Divergent",
				"metodo_escolhido": "gemini",
				"criterio_decisao": "higher_confidence"
			}
		}
	}
}`

func newTestClient(url string, timeout time.Duration) *Client {
	return NewClient(ClientConfig{BaseURL: url, Timeout: timeout}, zap.NewNop())
}

func TestClient_ClassifyText(t *testing.T) {
	t.Run("successful classification", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/process_email", r.URL.Path)
			assert.Equal(t, http.MethodPost, r.Method)

			require.NoError(t, r.ParseMultipartForm(1<<20))
			assert.Equal(t, "Please send the monthly report urgently", r.FormValue("text"))
			assert.Empty(t, r.MultipartForm.File)

			w.Header().Set("Content-Type", "application/json")
			_, err := w.Write([]byte(productiveResponse))
			require.NoError(t, err)
		}))
		defer server.Close()

		client := newTestClient(server.URL, 5*time.Second)
		resp, err := client.ClassifyText(context.Background(), "  Please send the monthly report urgently \n")

		require.NoError(t, err)
		assert.Equal(t, core.CategoryProductive, resp.Category)
		assert.Equal(t, 0.95, resp.Confidence)
		assert.Equal(t, core.MethodNLP, resp.MethodUsed)
		assert.Equal(t, "Thanks, the report will be sent today.", resp.SuggestedReply)
		assert.Equal(t, "gemini-1.5-flash", resp.Details.ModelName)
		assert.Equal(t, 0.42, resp.Details.ProcessingTimeSeconds)
		assert.Nil(t, resp.Details.ComparativeAnalysis)
	})

	t.Run("comparative analysis", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(comparativeResponse))
		}))
		defer server.Close()

		client := newTestClient(server.URL, 5*time.Second)
		resp, err := client.ClassifyText(context.Background(), "Happy holidays to the whole team!")

		require.NoError(t, err)
		assert.Equal(t, core.CategoryUnproductive, resp.Category)
		assert.Equal(t, core.MethodAI, resp.MethodUsed)

		analysis := resp.Details.ComparativeAnalysis
		require.NotNil(t, analysis)
		require.NotNil(t, analysis.NLP)
		require.NotNil(t, analysis.AI)
		assert.Equal(t, core.CategoryProductive, analysis.NLP.Classification)
		assert.Equal(t, 1, analysis.NLP.Features.ProductiveKeywordCount)
		assert.True(t, analysis.NLP.Features.HasQuestions)
		assert.Equal(t, 12, analysis.NLP.Features.WordCount)
		assert.Equal(t, 0.81, analysis.AI.Confidence)
		assert.False(t, analysis.Agreement.Agree)
		assert.Equal(t, core.MethodAI, analysis.Agreement.ChosenMethod)
		assert.Equal(t, "higher_confidence", analysis.Agreement.DecisionCriterion)
	})

	t.Run("timeout becomes slow backend message", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			select {
			case <-r.Context().Done():
			case <-time.After(2 * time.Second):
			}
		}))
		defer server.Close()

		client := newTestClient(server.URL, 50*time.Millisecond)
		_, err := client.ClassifyText(context.Background(), "Please send the monthly report urgently")

		require.Error(t, err)
		var transportErr *core.TransportError
		require.True(t, errors.As(err, &transportErr))
		assert.True(t, transportErr.Timeout)
		assert.Equal(t, DefaultSlowBackendMessage, err.Error())
		assert.Contains(t, err.Error(), "cold start")
		assert.Equal(t, core.KindTransport, core.KindOf(err))
	})

	t.Run("custom slow backend message", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			select {
			case <-r.Context().Done():
			case <-time.After(2 * time.Second):
			}
		}))
		defer server.Close()

		client := NewClient(ClientConfig{
			BaseURL:            server.URL,
			Timeout:            50 * time.Millisecond,
			SlowBackendMessage: "Backend is warming up, retry shortly",
		}, zap.NewNop())
		_, err := client.ClassifyText(context.Background(), "Please send the monthly report urgently")

		require.Error(t, err)
		assert.Equal(t, "Backend is warming up, retry shortly", err.Error())
	})

	t.Run("server error prefers detail", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusBadRequest)
			_, _ = w.Write([]byte(`{"detail": "Formato não suportado. Use .txt ou .pdf."}`))
		}))
		defer server.Close()

		client := newTestClient(server.URL, 5*time.Second)
		_, err := client.ClassifyText(context.Background(), "Please send the monthly report urgently")

		var serverErr *core.ServerError
		require.True(t, errors.As(err, &serverErr))
		assert.Equal(t, http.StatusBadRequest, serverErr.StatusCode)
		assert.Equal(t, "Formato não suportado. Use .txt ou .pdf.", serverErr.Message)
		assert.Equal(t, "Bad Request", serverErr.Detail)
	})

	t.Run("server error with validation list", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusUnprocessableEntity)
			_, _ = w.Write([]byte(`{"detail": [{"loc": ["body", "text"], "msg": "field required"}]}`))
		}))
		defer server.Close()

		client := newTestClient(server.URL, 5*time.Second)
		_, err := client.ClassifyText(context.Background(), "Please send the monthly report urgently")

		require.Error(t, err)
		assert.Equal(t, "field required", err.Error())
	})

	t.Run("server error without payload falls back to status", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
			_, _ = w.Write([]byte("internal error"))
		}))
		defer server.Close()

		client := newTestClient(server.URL, 5*time.Second)
		_, err := client.ClassifyText(context.Background(), "Please send the monthly report urgently")

		require.Error(t, err)
		assert.Equal(t, core.KindServer, core.KindOf(err))
		assert.Equal(t, "Request failed with status code 500", err.Error())
		assert.Equal(t, "Internal Server Error", core.Describe(err).Detail)
	})

	t.Run("non conforming response is rejected", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			_, _ = w.Write([]byte(`{"categoria": "Spam", "confidence": 0.9}`))
		}))
		defer server.Close()

		client := newTestClient(server.URL, 5*time.Second)
		_, err := client.ClassifyText(context.Background(), "Please send the monthly report urgently")

		var serverErr *core.ServerError
		require.True(t, errors.As(err, &serverErr))
		assert.Equal(t, "invalid_response", serverErr.Code)
		assert.Contains(t, serverErr.Detail, "Spam")
	})

	t.Run("default method is distinct from a missing one", func(t *testing.T) {
		body := `{"categoria": "Improdutivo", "confidence": 0.5, "metodo_usado": "default"}`
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			_, _ = w.Write([]byte(body))
		}))
		defer server.Close()

		client := newTestClient(server.URL, 5*time.Second)
		resp, err := client.ClassifyText(context.Background(), "Please send the monthly report urgently")
		require.NoError(t, err)
		assert.Equal(t, core.MethodDefault, resp.MethodUsed)

		body = `{"categoria": "Improdutivo", "confidence": 0.5}`
		resp, err = client.ClassifyText(context.Background(), "Please send the monthly report urgently")
		require.NoError(t, err)
		assert.Equal(t, core.MethodUnspecified, resp.MethodUsed)
	})

	t.Run("confidence out of range is rejected", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			_, _ = w.Write([]byte(`{"categoria": "Produtivo", "confidence": 1.5, "metodo_usado": "nlp"}`))
		}))
		defer server.Close()

		client := newTestClient(server.URL, 5*time.Second)
		_, err := client.ClassifyText(context.Background(), "Please send the monthly report urgently")

		var serverErr *core.ServerError
		require.True(t, errors.As(err, &serverErr))
		assert.Equal(t, "invalid_response", serverErr.Code)
	})

	t.Run("chosen method without result is rejected", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			_, _ = w.Write([]byte(`{
				"categoria": "Produtivo", "confidence": 0.9, "metodo_usado": "nlp",
				"detalhes": {"analise_comparativa": {
					"nlp_resultado": {"classificacao": "Produtivo", "confianca": 0.9},
					"concordancia": {"concordam": true, "metodo_escolhido": "gemini"}
				}}
			}`))
		}))
		defer server.Close()

		client := newTestClient(server.URL, 5*time.Second)
		_, err := client.ClassifyText(context.Background(), "Please send the monthly report urgently")

		var serverErr *core.ServerError
		require.True(t, errors.As(err, &serverErr))
		assert.Contains(t, serverErr.Detail, "chosen method ai has no result")
	})

	t.Run("connection error", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
		url := server.URL
		server.Close()

		client := newTestClient(url, time.Second)
		_, err := client.ClassifyText(context.Background(), "Please send the monthly report urgently")

		var transportErr *core.TransportError
		require.True(t, errors.As(err, &transportErr))
		assert.False(t, transportErr.Timeout)
		assert.NotEqual(t, DefaultSlowBackendMessage, transportErr.Message)
	})
}

func TestClient_ClassifyFile(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/process_email", r.URL.Path)
		require.NoError(t, r.ParseMultipartForm(1<<20))
		assert.Empty(t, r.FormValue("text"))

		file, header, err := r.FormFile("file")
		require.NoError(t, err)
		defer file.Close()

		assert.Equal(t, `report "q3".pdf`, header.Filename)
		assert.Equal(t, "application/pdf", header.Header.Get("Content-Type"))
		content, err := io.ReadAll(file)
		require.NoError(t, err)
		assert.Equal(t, "%PDF-1.4 fake", string(content))

		_, _ = w.Write([]byte(productiveResponse))
	}))
	defer server.Close()

	client := newTestClient(server.URL, 5*time.Second)
	resp, err := client.ClassifyFile(context.Background(), &core.FileInput{
		Name:      `report "q3".pdf`,
		MediaType: "application/pdf",
		Size:      13,
		Content:   []byte("%PDF-1.4 fake"),
	})

	require.NoError(t, err)
	assert.Equal(t, core.CategoryProductive, resp.Category)
}

func TestClient_Passthroughs(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		switch r.URL.Path {
		case "/health":
			_, _ = w.Write([]byte(`{"status": "ok", "version": "3.0"}`))
		case "/system_info":
			_, _ = w.Write([]byte(`{"version": "3.0-gemini-only", "components": {"gemini": "active"}}`))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer server.Close()

	client := newTestClient(server.URL+"/", 5*time.Second)

	health, err := client.CheckHealth(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "ok", health["status"])

	info, err := client.GetSystemInfo(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "3.0-gemini-only", info["version"])
	assert.IsType(t, map[string]interface{}{}, info["components"])
}
