package textback

import (
	"context"
	"errors"
	"fmt"
)

// SeedLength is the length of seeds generated for requests without one
const SeedLength = 16

// ErrVariantDisabled is returned when a forced variant is not enabled for this corpus
var ErrVariantDisabled = errors.New("question variant is disabled")

// QuizGenerator dispatches a seed to a variant generator and retries unusable samples
type QuizGenerator struct {
	meta        *Metadata
	generators  map[Variant]Generator
	variants    []Variant // enabled, sorted
	checker     *QuestionChecker
	cache       *QuestionCache
	maxAttempts int
	logger      *LLMLogger
}

// NewQuizGenerator builds the variant table for a corpus. Variants the corpus cannot support
// are left out: platform needs two platforms, react needs reactions, and the variants that
// ask a model for alternatives need a provider. provider may be nil.
func NewQuizGenerator(store Store, meta *Metadata, cfg GeneratorConfig, provider AlternativeProvider) (*QuizGenerator, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	loc, err := cfg.Location()
	if err != nil {
		return nil, err
	}

	repo := NewRepository(store, meta)
	all := []Generator{
		NewDurationGenerator(repo, cfg.Duration),
		NewPlatformGenerator(repo, cfg.Platform),
		NewWhoGenerator(repo, cfg.Who),
		NewWhenGenerator(repo, cfg.When, loc),
	}
	if provider != nil {
		all = append(all,
			NewReactGenerator(repo, provider, cfg.React),
			NewContinueGenerator(repo, provider, cfg.Continue),
			NewNextGenerator(repo, provider, cfg.Next),
		)
	}

	qg := &QuizGenerator{
		meta:        meta,
		generators:  make(map[Variant]Generator),
		checker:     NewQuestionChecker(meta),
		cache:       NewQuestionCache(cfg.CacheSize),
		maxAttempts: cfg.MaxAttempts,
	}
	for _, g := range all {
		v := g.Variant()
		switch {
		case cfg.IsDisabled(v):
			VerboseLog("variant %s disabled by config", v)
			continue
		case v == VariantPlatform && len(meta.Platforms) < 2:
			VerboseLog("variant %s needs at least two platforms", v)
			continue
		case v == VariantReact && len(meta.Reactions) == 0:
			VerboseLog("variant %s needs reactions", v)
			continue
		}
		qg.generators[v] = g
	}
	for _, v := range AllVariants {
		if _, ok := qg.generators[v]; ok {
			qg.variants = append(qg.variants, v)
		}
	}
	if len(qg.variants) == 0 {
		return nil, ErrNoVariants
	}

	Logger().Infof("Enabled variants: %v", qg.variants)
	return qg, nil
}

// SetLLMLogger records every attempt outcome in the model transcript
func (qg *QuizGenerator) SetLLMLogger(logger *LLMLogger) {
	qg.logger = logger
}

// Variants returns the enabled variants in sorted order
func (qg *QuizGenerator) Variants() []Variant {
	return append([]Variant(nil), qg.variants...)
}

// Metadata returns the corpus snapshot questions are generated against
func (qg *QuizGenerator) Metadata() *Metadata {
	return qg.meta
}

// GenerateQuestion generates the question for seed. An empty seed is replaced by a fresh one,
// which is echoed in the returned question.
func (qg *QuizGenerator) GenerateQuestion(ctx context.Context, seed string) (Question, error) {
	return qg.generate(ctx, seed, "")
}

// GenerateVariant generates a question of the given variant for seed. The variant draw still
// consumes the random stream so the rest of the draws match GenerateQuestion.
func (qg *QuizGenerator) GenerateVariant(ctx context.Context, seed string, variant Variant) (Question, error) {
	if _, err := ParseVariant(string(variant)); err != nil {
		return Question{}, err
	}
	if _, ok := qg.generators[variant]; !ok {
		return Question{}, fmt.Errorf("%w: %s", ErrVariantDisabled, variant)
	}
	return qg.generate(ctx, seed, variant)
}

func (qg *QuizGenerator) generate(ctx context.Context, seed string, forced Variant) (Question, error) {
	if seed == "" {
		seed = NewRandomSeed().String(SeedLength)
	}
	if q, ok := qg.cache.Get(seed, forced); ok {
		cacheHits.Inc()
		return q, nil
	}

	rng := NewRandom(seed)
	variant, err := Choice(rng, qg.variants)
	if err != nil {
		return Question{}, err
	}
	if forced != "" {
		variant = forced
	}
	gen := qg.generators[variant]
	VerboseLog("seed %s: generating %s question", seed, variant)

	for attempt := 1; attempt <= qg.maxAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return Question{}, err
		}

		result, err := gen.Generate(ctx, rng)
		if err != nil {
			generationFailures.WithLabelValues(string(variant)).Inc()
			return Question{}, fmt.Errorf("failed to generate %s question: %w", variant, err)
		}

		q, ok := result.Question()
		if !ok {
			qg.retry(seed, variant, attempt, result.Reason())
			continue
		}
		if check := qg.checker.CheckQuestion(q, gen.Bounds()); check.Action == ActionReject {
			Logger().Warnf("seed %s: %s question rejected: %s", seed, variant, check.Reason)
			qg.retry(seed, variant, attempt, check.Reason)
			continue
		}

		q.Seed = seed
		questionsGenerated.WithLabelValues(string(variant)).Inc()
		if qg.logger != nil {
			qg.logger.LogQuestionResult(seed, variant, string(ActionAccept), fmt.Sprintf("attempt %d", attempt))
		}
		qg.cache.Add(seed, forced, q)
		return q, nil
	}

	generationFailures.WithLabelValues(string(variant)).Inc()
	return Question{}, fmt.Errorf("%w: %s after %d attempts", ErrRetriesExhausted, variant, qg.maxAttempts)
}

func (qg *QuizGenerator) retry(seed string, variant Variant, attempt int, reason string) {
	generationRetries.WithLabelValues(string(variant)).Inc()
	VerboseLog("seed %s: %s attempt %d retry: %s", seed, variant, attempt, reason)
	if qg.logger != nil {
		qg.logger.LogQuestionResult(seed, variant, "retry", reason)
	}
}
