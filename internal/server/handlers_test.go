package server_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yaakydd/DriveGreen/internal/chat"
	"github.com/yaakydd/DriveGreen/internal/ml"
	"github.com/yaakydd/DriveGreen/internal/models"
	"github.com/yaakydd/DriveGreen/internal/server"
	"github.com/yaakydd/DriveGreen/internal/services"
)

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	os.Exit(m.Run())
}

// newTestRouter builds a router over the sample artifacts. A nil chatClient
// installs an unconfigured one.
func newTestRouter(t *testing.T, chatClient *chat.Client) *gin.Engine {
	t.Helper()

	dir := t.TempDir()
	require.NoError(t, ml.CreateSampleArtifacts(dir))
	predictions := services.NewPredictionService(ml.LoadArtifacts(dir))

	stats, err := services.NewUsageStats(filepath.Join(t.TempDir(), "stats.json"))
	require.NoError(t, err)
	predictions.Stats = stats

	if chatClient == nil {
		chatClient = chat.NewClient(chat.ClientConfig{})
	}

	srv := server.NewServer(predictions, chatClient, stats, server.Config{})
	return srv.Router()
}

// stubChatClient points the chat client at a local fake provider
func stubChatClient(t *testing.T, handler http.HandlerFunc) *chat.Client {
	t.Helper()
	provider := httptest.NewServer(handler)
	t.Cleanup(provider.Close)

	return chat.NewClient(chat.ClientConfig{
		APIKey:  "test-key",
		Model:   "test-model",
		BaseURL: provider.URL,
		Timeout: 2 * time.Second,
	})
}

func doRequest(router *gin.Engine, method, path, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body), "body: %s", rec.Body.String())
	return body
}

func TestPredictEndpoint(t *testing.T) {
	router := newTestRouter(t, nil)

	rec := doRequest(router, http.MethodPost, "/predict",
		`{"fuel_type": "X", "engine_size": 2.0, "cylinder_count": 4}`)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	body := decodeBody(t, rec)

	assert.InDelta(t, 139.86, body["co2_grams_per_km"], 1e-9)
	assert.Equal(t, "g/km", body["unit"])
	assert.Equal(t, "Good", body["category"])
	assert.Equal(t, "#22c55e", body["display_color"])
	assert.NotEmpty(t, body["description"])
}

func TestPredictEndpoint_ValidationError(t *testing.T) {
	router := newTestRouter(t, nil)

	rec := doRequest(router, http.MethodPost, "/predict",
		`{"fuel_type": "X", "engine_size": 9.0, "cylinder_count": 4}`)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	body := decodeBody(t, rec)

	assert.Contains(t, body["error"], "0.9 and 8.4")
	assert.Equal(t, "engine_size", body["field"])
}

func TestPredictEndpoint_UnknownFuel(t *testing.T) {
	router := newTestRouter(t, nil)

	rec := doRequest(router, http.MethodPost, "/predict",
		`{"fuel_type": "Q", "engine_size": 2.0, "cylinder_count": 4}`)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	body := decodeBody(t, rec)

	assert.Contains(t, body["error"], "X, Z, E, D, N")
	assert.Equal(t, "fuel_type", body["field"])
}

func TestPredictEndpoint_MalformedJSON(t *testing.T) {
	router := newTestRouter(t, nil)

	rec := doRequest(router, http.MethodPost, "/predict", `{not json`)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Invalid request body", decodeBody(t, rec)["error"])
}

func TestPredictEndpoint_WrongFieldType(t *testing.T) {
	router := newTestRouter(t, nil)

	rec := doRequest(router, http.MethodPost, "/predict",
		`{"fuel_type": "X", "engine_size": "two liters", "cylinder_count": 4}`)

	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestPredictEndpoint_ArtifactsMissing(t *testing.T) {
	predictions := services.NewPredictionService(ml.LoadArtifacts(t.TempDir()))
	srv := server.NewServer(predictions, chat.NewClient(chat.ClientConfig{}), nil, server.Config{})
	router := srv.Router()

	rec := doRequest(router, http.MethodPost, "/predict",
		`{"fuel_type": "X", "engine_size": 2.0, "cylinder_count": 4}`)

	require.Equal(t, http.StatusServiceUnavailable, rec.Code)
	body := decodeBody(t, rec)

	assert.Contains(t, body["error"], "Prediction service not fully initialized")
	assert.Contains(t, body["error"], "model, encoder, feature_names")
}

func TestHealthEndpoint(t *testing.T) {
	router := newTestRouter(t, nil)

	rec := doRequest(router, http.MethodGet, "/health", "")

	require.Equal(t, http.StatusOK, rec.Code)
	body := decodeBody(t, rec)

	assert.Equal(t, "healthy", body["status"])
	assert.Equal(t, true, body["model_loaded"])
	assert.Equal(t, true, body["encoder_loaded"])
	assert.Equal(t, true, body["feature_names_loaded"])
	assert.Equal(t, false, body["scaler_loaded"])
}

func TestHealthEndpoint_Degraded(t *testing.T) {
	predictions := services.NewPredictionService(ml.LoadArtifacts(t.TempDir()))
	srv := server.NewServer(predictions, chat.NewClient(chat.ClientConfig{}), nil, server.Config{})
	router := srv.Router()

	rec := doRequest(router, http.MethodGet, "/health", "")

	require.Equal(t, http.StatusOK, rec.Code)
	body := decodeBody(t, rec)

	assert.Equal(t, "unhealthy", body["status"])
	assert.Equal(t, false, body["model_loaded"])
}

func TestFuelTypesEndpoint(t *testing.T) {
	router := newTestRouter(t, nil)

	rec := doRequest(router, http.MethodGet, "/fuel-types", "")

	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		FuelTypes    []string          `json:"fuel_types"`
		Descriptions map[string]string `json:"descriptions"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))

	assert.Equal(t, []string{"X", "Z", "E", "D", "N"}, body.FuelTypes)
	assert.Equal(t, "Diesel", body.Descriptions["D"])
	assert.Len(t, body.Descriptions, 5)
}

func TestModelInfoEndpoint(t *testing.T) {
	router := newTestRouter(t, nil)

	rec := doRequest(router, http.MethodGet, "/model-info", "")

	require.Equal(t, http.StatusOK, rec.Code)

	var info models.ModelInfo
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &info))

	assert.Equal(t, "linear_regression", info.ModelType)
	assert.Len(t, info.ExpectedFeatureOrder, 7)
	assert.NotEmpty(t, info.PreprocessingPipeline)
	assert.True(t, info.ComponentsLoaded["model"])
}

func TestStatsEndpoint(t *testing.T) {
	router := newTestRouter(t, nil)

	for i := 0; i < 2; i++ {
		rec := doRequest(router, http.MethodPost, "/predict",
			`{"fuel_type": "X", "engine_size": 2.0, "cylinder_count": 4}`)
		require.Equal(t, http.StatusOK, rec.Code)
	}

	rec := doRequest(router, http.MethodGet, "/stats", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var snapshot services.StatsSnapshot
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &snapshot))

	assert.Equal(t, int64(2), snapshot.TotalPredictions)
	assert.Equal(t, int64(2), snapshot.ByFuelType["X"])
}

func TestChatEndpoint_Misconfigured(t *testing.T) {
	router := newTestRouter(t, nil)

	rec := doRequest(router, http.MethodPost, "/chat", `{"message": "hello"}`)

	require.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t,
		"Chatbot service not configured. Please add HUGGINGFACE_API_KEY to your .env file",
		decodeBody(t, rec)["error"])
}

func TestChatEndpoint_MissingMessage(t *testing.T) {
	router := newTestRouter(t, nil)

	rec := doRequest(router, http.MethodPost, "/chat", `{}`)

	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestChatEndpoint(t *testing.T) {
	var gotPrompt struct {
		Inputs string `json:"inputs"`
	}
	client := stubChatClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotPrompt))
		w.Write([]byte(`[{"generated_text": "Drive smoothly and check tire pressure."}]`))
	})
	router := newTestRouter(t, client)

	rec := doRequest(router, http.MethodPost, "/chat", `{"message": "How do I cut emissions?"}`)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "Drive smoothly and check tire pressure.", decodeBody(t, rec)["response"])

	assert.Contains(t, gotPrompt.Inputs, "User Question: How do I cut emissions?")
	assert.Contains(t, gotPrompt.Inputs, "FUEL TYPES AND CARBON INTENSITY")
}

func TestChatEndpoint_WithPredictionContext(t *testing.T) {
	var gotPrompt struct {
		Inputs string `json:"inputs"`
	}
	client := stubChatClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotPrompt))
		w.Write([]byte(`[{"generated_text": "Your result is in the Good band."}]`))
	})
	router := newTestRouter(t, client)

	rec := doRequest(router, http.MethodPost, "/chat", `{
		"message": "Is my result good?",
		"prediction_data": {
			"co2_grams_per_km": 139.86,
			"category": "Good",
			"vehicle": {"fuel_type": "X", "engine_size": 2.0, "cylinder_count": 4}
		}
	}`)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Contains(t, gotPrompt.Inputs, "CURRENT USER'S VEHICLE DATA:")
	assert.Contains(t, gotPrompt.Inputs, "Predicted CO2: 139.86 g/km")
}

func TestChatEndpoint_ModelLoading(t *testing.T) {
	client := stubChatClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	})
	router := newTestRouter(t, client)

	rec := doRequest(router, http.MethodPost, "/chat", `{"message": "hi"}`)

	require.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Equal(t,
		"AI model is loading. Please wait 30-60 seconds and try again.",
		decodeBody(t, rec)["error"])
}

func TestChatEndpoint_InvalidCredentials(t *testing.T) {
	client := stubChatClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	})
	router := newTestRouter(t, client)

	rec := doRequest(router, http.MethodPost, "/chat", `{"message": "hi"}`)

	require.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t,
		"Invalid API credentials. Check your Hugging Face API key in .env file",
		decodeBody(t, rec)["error"])
}

func TestChatEndpoint_RateLimited(t *testing.T) {
	client := stubChatClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	})
	router := newTestRouter(t, client)

	rec := doRequest(router, http.MethodPost, "/chat", `{"message": "hi"}`)

	require.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Contains(t, decodeBody(t, rec)["error"], "Rate limit exceeded")
}

func TestChatEndpoint_EmitsEvent(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, ml.CreateSampleArtifacts(dir))
	predictions := services.NewPredictionService(ml.LoadArtifacts(dir))

	client := stubChatClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[{"generated_text": "ok"}]`))
	})

	srv := server.NewServer(predictions, client, nil, server.Config{})
	srv.ChatEvents = make(chan *models.ChatEvent, 1)
	router := srv.Router()

	rec := doRequest(router, http.MethodPost, "/chat", `{"message": "hello"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	select {
	case event := <-srv.ChatEvents:
		assert.Equal(t, "ok", event.Status)
		assert.Equal(t, len("hello"), event.MessageChars)
		assert.False(t, event.HadPredictionContext)
	default:
		t.Fatal("expected a chat event on the channel")
	}
}

func TestChatHealthEndpoint(t *testing.T) {
	client := chat.NewClient(chat.ClientConfig{APIKey: "real-key"})
	router := newTestRouter(t, client)

	rec := doRequest(router, http.MethodGet, "/chat/health", "")

	require.Equal(t, http.StatusOK, rec.Code)
	body := decodeBody(t, rec)

	assert.Equal(t, "healthy", body["status"])
	assert.Equal(t, true, body["api_configured"])
	assert.Equal(t, "mistralai/Mistral-7B-Instruct-v0.2", body["model"])
	assert.Equal(t, "Hugging Face Inference API", body["provider"])
	assert.Equal(t, "https://api-inference.huggingface.co", body["endpoint"])
}

func TestChatHealthEndpoint_Misconfigured(t *testing.T) {
	router := newTestRouter(t, nil)

	rec := doRequest(router, http.MethodGet, "/chat/health", "")

	require.Equal(t, http.StatusOK, rec.Code)
	body := decodeBody(t, rec)

	assert.Equal(t, "misconfigured", body["status"])
	assert.Equal(t, false, body["api_configured"])
}

func TestRootBanner(t *testing.T) {
	router := newTestRouter(t, nil)

	rec := doRequest(router, http.MethodGet, "/", "")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, decodeBody(t, rec)["message"], "DriveGreen")
}

func TestUnknownRoute(t *testing.T) {
	router := newTestRouter(t, nil)

	rec := doRequest(router, http.MethodGet, "/nope", "")

	require.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "Not found", decodeBody(t, rec)["error"])
}

func TestCORSPreflight(t *testing.T) {
	router := newTestRouter(t, nil)

	rec := doRequest(router, http.MethodOptions, "/predict", "")

	require.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
	assert.Contains(t, rec.Header().Get("Access-Control-Allow-Methods"), "POST")
}

func TestStaticFrontend(t *testing.T) {
	staticDir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(staticDir, "index.html"),
		[]byte("<html>app shell</html>"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(staticDir, "app.js"),
		[]byte("console.log('app')"), 0644))

	dir := t.TempDir()
	require.NoError(t, ml.CreateSampleArtifacts(dir))
	predictions := services.NewPredictionService(ml.LoadArtifacts(dir))

	srv := server.NewServer(predictions, chat.NewClient(chat.ClientConfig{}), nil,
		server.Config{StaticDir: staticDir})
	router := srv.Router()

	// Root and client-side routes serve the app shell
	rec := doRequest(router, http.MethodGet, "/", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "app shell")

	rec = doRequest(router, http.MethodGet, "/history/42", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "app shell")

	// Real assets are served as-is
	rec = doRequest(router, http.MethodGet, "/app.js", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "console.log")

	// API paths never fall through to the app shell
	rec = doRequest(router, http.MethodGet, "/predict", "")
	require.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "Not found", decodeBody(t, rec)["error"])
}
