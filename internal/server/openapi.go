package server

import (
	"encoding/json"
	"net/http"

	openapi "github.com/swaggest/openapi-go"
	"github.com/swaggest/openapi-go/openapi3"
)

// ErrorResponse is returned for all error responses.
type ErrorResponse struct {
	Error string `json:"error"`
}

type HealthCheck struct {
	Status string `json:"status"`
}

// HealthResponse maps each configured dependency to its status.
type HealthResponse map[string]HealthCheck

type tokenQuery struct {
	Token string `query:"token" description:"Player token, for clients that cannot set headers."`
}

func newOpenAPISpec() *openapi3.Spec {
	r := openapi3.NewReflector()
	r.Spec.Info.Title = "GeoQuest API"
	r.Spec.Info.Version = "0.1.0"
	r.Spec.Info.WithDescription("Backend API for the GeoQuest geography quiz.")

	// GET /healthz
	getHealthz, _ := r.NewOperationContext(http.MethodGet, "/healthz")
	getHealthz.SetSummary("Health check")
	getHealthz.SetDescription("Returns the health status of configured backend dependencies.")
	getHealthz.AddRespStructure(HealthResponse{}, openapi.WithHTTPStatus(http.StatusOK))
	getHealthz.AddRespStructure(HealthResponse{}, openapi.WithHTTPStatus(http.StatusServiceUnavailable))
	_ = r.AddOperation(getHealthz)

	// POST /api/quiz/start
	postStart, _ := r.NewOperationContext(http.MethodPost, "/api/quiz/start")
	postStart.SetSummary("Start quiz")
	postStart.SetDescription("Starts a session of the given difficulty. Sending a Bearer token restarts that player's quiz; otherwise a new player token is issued.")
	postStart.AddReqStructure(StartRequest{})
	postStart.AddRespStructure(StartResponse{}, openapi.WithHTTPStatus(http.StatusOK))
	postStart.AddRespStructure(ValidationErrorResponse{}, openapi.WithHTTPStatus(http.StatusBadRequest))
	postStart.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusUnprocessableEntity))
	postStart.AddRespStructure(RateLimitedResponse{}, openapi.WithHTTPStatus(http.StatusTooManyRequests))
	_ = r.AddOperation(postStart)

	// GET /api/quiz/state
	getState, _ := r.NewOperationContext(http.MethodGet, "/api/quiz/state")
	getState.SetSummary("Get quiz state")
	getState.SetDescription("Returns the current question, countdown and score. Requires Bearer token.")
	getState.AddRespStructure(StateResponse{}, openapi.WithHTTPStatus(http.StatusOK))
	getState.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusUnauthorized))
	_ = r.AddOperation(getState)

	// POST /api/quiz/answer
	postAnswer, _ := r.NewOperationContext(http.MethodPost, "/api/quiz/answer")
	postAnswer.SetSummary("Submit answer")
	postAnswer.SetDescription("Answers the current question with text or a map click. Each question accepts one answer. Requires Bearer token.")
	postAnswer.AddReqStructure(AnswerRequest{})
	postAnswer.AddRespStructure(AnswerResponse{}, openapi.WithHTTPStatus(http.StatusOK))
	postAnswer.AddRespStructure(ValidationErrorResponse{}, openapi.WithHTTPStatus(http.StatusBadRequest))
	postAnswer.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusUnauthorized))
	postAnswer.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusConflict))
	_ = r.AddOperation(postAnswer)

	// POST /api/quiz/next
	postNext, _ := r.NewOperationContext(http.MethodPost, "/api/quiz/next")
	postNext.SetSummary("Next question")
	postNext.SetDescription("Moves to the next question, or completes the session after the last one. Requires Bearer token.")
	postNext.AddRespStructure(StateResponse{}, openapi.WithHTTPStatus(http.StatusOK))
	postNext.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusUnauthorized))
	postNext.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusConflict))
	_ = r.AddOperation(postNext)

	// POST /api/quiz/finish
	postFinish, _ := r.NewOperationContext(http.MethodPost, "/api/quiz/finish")
	postFinish.SetSummary("Finish quiz")
	postFinish.SetDescription("Ends the session early and returns its results. Requires Bearer token.")
	postFinish.AddRespStructure(ResultsResponse{}, openapi.WithHTTPStatus(http.StatusOK))
	postFinish.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusNotFound))
	postFinish.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusConflict))
	_ = r.AddOperation(postFinish)

	// POST /api/quiz/reset
	postReset, _ := r.NewOperationContext(http.MethodPost, "/api/quiz/reset")
	postReset.SetSummary("Reset quiz")
	postReset.SetDescription("Discards the session. Requires Bearer token.")
	postReset.AddRespStructure(StateResponse{}, openapi.WithHTTPStatus(http.StatusOK))
	postReset.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusUnauthorized))
	_ = r.AddOperation(postReset)

	// GET /api/quiz/results
	getResults, _ := r.NewOperationContext(http.MethodGet, "/api/quiz/results")
	getResults.SetSummary("Get results")
	getResults.SetDescription("Returns score, accuracy, average time and badge. Requires Bearer token.")
	getResults.AddRespStructure(ResultsResponse{}, openapi.WithHTTPStatus(http.StatusOK))
	getResults.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusNotFound))
	_ = r.AddOperation(getResults)

	// GET /api/quiz/events
	getEvents, _ := r.NewOperationContext(http.MethodGet, "/api/quiz/events")
	getEvents.SetSummary("SSE event stream")
	getEvents.SetDescription("Server-Sent Events stream of countdown ticks and session changes.")
	getEvents.AddReqStructure(tokenQuery{})
	getEvents.AddRespStructure(nil, openapi.WithHTTPStatus(http.StatusOK),
		openapi.WithContentType("text/event-stream"))
	_ = r.AddOperation(getEvents)

	// GET /api/quiz/ws
	getWS, _ := r.NewOperationContext(http.MethodGet, "/api/quiz/ws")
	getWS.SetSummary("WebSocket event stream")
	getWS.SetDescription("Upgrades to a WebSocket carrying the same events as the SSE stream.")
	getWS.AddReqStructure(tokenQuery{})
	getWS.AddRespStructure(nil, openapi.WithHTTPStatus(http.StatusSwitchingProtocols),
		openapi.WithContentType("text/plain"))
	_ = r.AddOperation(getWS)

	// POST /api/rate-limit
	postRateLimit, _ := r.NewOperationContext(http.MethodPost, "/api/rate-limit")
	postRateLimit.SetSummary("Count request")
	postRateLimit.SetDescription("Counts one request for the caller's IP. Fails open when the counter store is unavailable.")
	postRateLimit.AddRespStructure(RateLimitResponse{}, openapi.WithHTTPStatus(http.StatusOK))
	postRateLimit.AddRespStructure(RateLimitedResponse{}, openapi.WithHTTPStatus(http.StatusTooManyRequests))
	_ = r.AddOperation(postRateLimit)

	// GET /api/rate-limit
	getRateLimit, _ := r.NewOperationContext(http.MethodGet, "/api/rate-limit")
	getRateLimit.SetSummary("Rate limit status")
	getRateLimit.AddRespStructure(RateLimitStatusResponse{}, openapi.WithHTTPStatus(http.StatusOK))
	_ = r.AddOperation(getRateLimit)

	return r.Spec
}

func handleOpenAPI() http.HandlerFunc {
	spec := newOpenAPISpec()
	data, _ := json.MarshalIndent(spec, "", "  ")

	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(data)
	}
}
