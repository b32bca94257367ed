package textback

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"sort"
)

// Corpus is the canonical import format: messages from any platform, already parsed out of
// the platform exports. Message ids are assigned in timestamp order on import.
type Corpus struct {
	Messages []Message `json:"messages"`
}

// ReadCorpus decodes a corpus from JSON
func ReadCorpus(r io.Reader) (*Corpus, error) {
	var c Corpus
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&c); err != nil {
		return nil, fmt.Errorf("failed to decode corpus: %w", err)
	}
	return &c, nil
}

// LoadCorpus stores every message of the corpus, oldest first. Messages with neither text nor
// media are skipped and counted.
func LoadCorpus(ctx context.Context, db *DB, c *Corpus) (loaded, skipped int, err error) {
	messages := append([]Message(nil), c.Messages...)
	sort.SliceStable(messages, func(i, j int) bool {
		return messages[i].Timestamp.Before(messages[j].Timestamp)
	})

	for i, m := range messages {
		if err := ctx.Err(); err != nil {
			return loaded, skipped, err
		}
		m.ID = 0
		if _, err := db.CreateMessage(ctx, m); err != nil {
			if errors.Is(err, ErrEmptyMessage) {
				skipped++
				continue
			}
			return loaded, skipped, fmt.Errorf("failed to load message %d: %w", i, err)
		}
		loaded++
	}
	return loaded, skipped, nil
}
