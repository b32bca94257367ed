package main

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"textback"

	"github.com/gorilla/mux"
	"github.com/gorilla/sessions"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// questionGenerator is the part of the quiz generator the handlers use
type questionGenerator interface {
	GenerateQuestion(ctx context.Context, seed string) (textback.Question, error)
	GenerateVariant(ctx context.Context, seed string, variant textback.Variant) (textback.Question, error)
}

type Server struct {
	generator questionGenerator
	sessions  sessions.Store
	limiter   *limiterPool
}

func NewServer(generator questionGenerator, store sessions.Store, limiter *limiterPool) *Server {
	return &Server{generator: generator, sessions: store, limiter: limiter}
}

func (s *Server) routes() http.Handler {
	r := mux.NewRouter()
	r.HandleFunc("/question", s.handleQuestion).Methods(http.MethodGet)
	r.HandleFunc("/answer", s.handleAnswer).Methods(http.MethodPost)
	r.HandleFunc("/score", s.handleScore).Methods(http.MethodGet)
	r.HandleFunc("/healthz", s.handleHealthz).Methods(http.MethodGet)
	r.Handle("/metrics", promhttp.Handler()).Methods(http.MethodGet)
	return r
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		textback.Logger().Warnf("Failed to encode response: %v", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// statusFor maps a generation error to an HTTP status
func statusFor(err error) int {
	switch {
	case errors.Is(err, textback.ErrUnknownVariant), errors.Is(err, textback.ErrVariantDisabled):
		return http.StatusBadRequest
	case errors.Is(err, textback.ErrRetriesExhausted):
		return http.StatusServiceUnavailable
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}

// handleQuestion handles GET /question?seed=&variant=
func (s *Server) handleQuestion(w http.ResponseWriter, r *http.Request) {
	if !s.limiter.Allow(clientKey(r)) {
		writeError(w, http.StatusTooManyRequests, "rate limit exceeded")
		return
	}

	seed := r.URL.Query().Get("seed")
	var (
		q   textback.Question
		err error
	)
	if name := r.URL.Query().Get("variant"); name != "" {
		variant, perr := textback.ParseVariant(name)
		if perr != nil {
			writeError(w, http.StatusBadRequest, perr.Error())
			return
		}
		q, err = s.generator.GenerateVariant(r.Context(), seed, variant)
	} else {
		q, err = s.generator.GenerateQuestion(r.Context(), seed)
	}
	if err != nil {
		status := statusFor(err)
		if status >= http.StatusInternalServerError {
			textback.Logger().Errorf("Failed to generate question for seed %q: %v", seed, err)
		}
		writeError(w, status, err.Error())
		return
	}

	game := s.loadGame(r)
	game.serve(q)
	if err := s.saveGame(w, r, game); err != nil {
		textback.Logger().Warnf("Session save error: %v", err)
	}
	writeJSON(w, http.StatusOK, q)
}

type answerResponse struct {
	Correct bool   `json:"correct"`
	Answer  string `json:"answer"`
	Score   score  `json:"score"`
}

type score struct {
	Correct  int `json:"correct"`
	Answered int `json:"answered"`
	Streak   int `json:"streak"`
}

func scoreOf(g GameSession) score {
	return score{Correct: g.Correct, Answered: g.Answered, Streak: g.Streak}
}

// handleAnswer handles POST /answer with form value choice
func (s *Server) handleAnswer(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		writeError(w, http.StatusBadRequest, "failed to parse form")
		return
	}
	choice := r.FormValue("choice")
	if choice == "" {
		writeError(w, http.StatusBadRequest, "choice is required")
		return
	}

	game := s.loadGame(r)
	if !game.Pending {
		writeError(w, http.StatusConflict, "no question to answer")
		return
	}
	correct := game.answer(choice)
	if err := s.saveGame(w, r, game); err != nil {
		textback.Logger().Errorf("Session save error: %v", err)
		writeError(w, http.StatusInternalServerError, "failed to save session")
		return
	}

	textback.VerboseLog("seed %s: answered %q, correct=%t", game.Seed, choice, correct)
	writeJSON(w, http.StatusOK, answerResponse{Correct: correct, Answer: game.Answer, Score: scoreOf(game)})
}

// handleScore handles GET /score
func (s *Server) handleScore(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, scoreOf(s.loadGame(r)))
}

func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
