package main

import (
	"encoding/gob"
	"net/http"

	"textback"
)

const sessionName = "textback-session"

// GameSession is the player state kept in the session cookie
type GameSession struct {
	Seed     string           `json:"seed"`
	Variant  textback.Variant `json:"variant"`
	Answer   string           `json:"-"`
	Pending  bool             `json:"pending"`
	Correct  int              `json:"correct"`
	Answered int              `json:"answered"`
	Streak   int              `json:"streak"`
}

func init() {
	gob.Register(GameSession{})
}

func (s *Server) loadGame(r *http.Request) GameSession {
	session, err := s.sessions.Get(r, sessionName)
	if err != nil {
		// an undecodable cookie starts a fresh game
		return GameSession{}
	}
	game, _ := session.Values["game"].(GameSession)
	return game
}

func (s *Server) saveGame(w http.ResponseWriter, r *http.Request, game GameSession) error {
	session, _ := s.sessions.Get(r, sessionName)
	session.Values["game"] = game
	return session.Save(r, w)
}

// serve records q as the question the player must answer next
func (g *GameSession) serve(q textback.Question) {
	g.Seed = q.Seed
	g.Variant = q.Variant
	g.Answer = q.Answer
	g.Pending = true
}

// answer scores a choice against the pending question
func (g *GameSession) answer(choice string) bool {
	correct := choice == g.Answer
	g.Pending = false
	g.Answered++
	if correct {
		g.Correct++
		g.Streak++
	} else {
		g.Streak = 0
	}
	return correct
}
