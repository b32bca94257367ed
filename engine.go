package textback

import (
	"context"
	"fmt"

	"github.com/dustin/go-humanize"
)

// Engine bundles everything a binary needs to serve questions from a corpus database
type Engine struct {
	DB        *DB
	Metadata  *Metadata
	Generator *QuizGenerator

	transcript *LLMLogger
}

// OpenEngine opens the corpus database, computes its metadata and builds the generator.
// The model provider is only created when the model config is enabled.
func OpenEngine(ctx context.Context, cfg Config) (*Engine, error) {
	db, err := OpenDB(cfg.Database.Path)
	if err != nil {
		return nil, err
	}
	e := &Engine{DB: db}

	meta, err := ComputeMetadata(ctx, db, cfg.Generator.RequireReactions)
	if err != nil {
		e.Close()
		return nil, fmt.Errorf("failed to compute corpus metadata: %w", err)
	}
	e.Metadata = meta
	Logger().Infof("Corpus: %s messages between %s from %s to %s",
		humanize.Comma(meta.MessageCount), meta.Participants,
		meta.MinTimestamp.Format("2006-01-02"), meta.MaxTimestamp.Format("2006-01-02"))

	var provider AlternativeProvider
	if cfg.Model.Enabled() {
		if cfg.LogPath != "" {
			e.transcript, err = NewLLMLogger(cfg.LogPath)
			if err != nil {
				e.Close()
				return nil, err
			}
		}
		provider = NewModelProvider(cfg.Model, e.transcript)
	} else {
		Logger().Warnf("No model configured; react, continue and next questions are disabled")
	}

	e.Generator, err = NewQuizGenerator(db, meta, cfg.Generator, provider)
	if err != nil {
		e.Close()
		return nil, err
	}
	if e.transcript != nil {
		e.Generator.SetLLMLogger(e.transcript)
	}
	return e, nil
}

// Close releases the database and the transcript
func (e *Engine) Close() error {
	if e.transcript != nil {
		if err := e.transcript.Close(); err != nil {
			Logger().Warnf("Failed to close transcript: %v", err)
		}
	}
	return e.DB.CloseDB()
}
