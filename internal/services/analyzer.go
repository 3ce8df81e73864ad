package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
)

const DefaultRequestTimeout = 30 * time.Second

type AnalysisState int

const (
	StateReceived AnalysisState = iota
	StateExtracting
	StateProfiling
	StateMatching
	StateScoring
	StateSynthesizing
	StateCompleted
	StateFailed
)

func (s AnalysisState) String() string {
	switch s {
	case StateReceived:
		return "received"
	case StateExtracting:
		return "extracting"
	case StateProfiling:
		return "profiling"
	case StateMatching:
		return "matching"
	case StateScoring:
		return "scoring"
	case StateSynthesizing:
		return "synthesizing"
	case StateCompleted:
		return "completed"
	case StateFailed:
		return "failed"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// TransitionFunc observes state changes of an analysis. kind is set only for
// StateFailed.
type TransitionFunc func(requestID uuid.UUID, state AnalysisState, kind ErrorKind)

// Analyzer is the single entry point for resume analysis.
type Analyzer interface {
	Analyze(ctx context.Context, req AnalysisRequest) (*AnalysisResult, error)
}

type AnalyzerOptions struct {
	Timeout      time.Duration
	OnTransition TransitionFunc
}

type analyzer struct {
	extractor   DocumentExtractor
	catalog     CategoryModel
	matcher     KeywordMatcher
	scorer      Scorer
	synthesizer FeedbackSynthesizer
	limiter     Limiter
	opts        AnalyzerOptions
}

func NewAnalyzer(
	extractor DocumentExtractor,
	catalog CategoryModel,
	matcher KeywordMatcher,
	scorer Scorer,
	synthesizer FeedbackSynthesizer,
	limiter Limiter,
	opts AnalyzerOptions,
) Analyzer {
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultRequestTimeout
	}

	return &analyzer{
		extractor:   extractor,
		catalog:     catalog,
		matcher:     matcher,
		scorer:      scorer,
		synthesizer: synthesizer,
		limiter:     limiter,
		opts:        opts,
	}
}

type analysisRun struct {
	id      uuid.UUID
	state   AnalysisState
	started time.Time
	hook    TransitionFunc

	// extracting is closed when the extractor goroutine returns. Nil until
	// extraction starts.
	extracting chan struct{}
}

func (r *analysisRun) enter(state AnalysisState) {
	r.state = state
	log.Printf("🔄 [%s] %s", r.id, state)
	if r.hook != nil {
		r.hook(r.id, state, "")
	}
}

func (r *analysisRun) fail(err error) *AnalysisError {
	analysisErr := asAnalysisError(err)
	failedIn := r.state
	r.state = StateFailed

	if analysisErr.Kind == KindInternalFailure {
		log.Printf("❌ [%s] analysis failed while %s: %v", r.id, failedIn, err)
	} else {
		log.Printf("⚠️ [%s] analysis rejected while %s: %v", r.id, failedIn, err)
	}

	if r.hook != nil {
		r.hook(r.id, StateFailed, analysisErr.Kind)
	}
	return analysisErr
}

// releaseWhenIdle frees the concurrency slot once no extractor goroutine is
// left running for this request.
func (r *analysisRun) releaseWhenIdle(release func()) {
	if r.extracting == nil {
		release()
		return
	}

	select {
	case <-r.extracting:
		release()
	default:
		log.Printf("⏳ [%s] extractor still running, slot held until it returns", r.id)
		go func() {
			<-r.extracting
			release()
		}()
	}
}

// Analyze implements Analyzer. Every failure is an *AnalysisError and no
// partial result is ever returned.
func (a *analyzer) Analyze(ctx context.Context, req AnalysisRequest) (result *AnalysisResult, err error) {
	run := &analysisRun{id: uuid.New(), started: time.Now(), hook: a.opts.OnTransition}
	run.enter(StateReceived)

	if a.limiter != nil {
		release, err := a.limiter.Acquire(ctx)
		if err != nil {
			return nil, run.fail(err)
		}
		defer run.releaseWhenIdle(release)
	}

	ctx, cancel := context.WithTimeout(ctx, a.opts.Timeout)
	defer cancel()

	defer func() {
		if r := recover(); r != nil {
			result = nil
			err = run.fail(newError(KindInternalFailure, fmt.Errorf("panic: %v", r)))
		}
	}()

	result, err = a.run(ctx, run, req)
	if err != nil {
		return nil, run.fail(err)
	}

	run.enter(StateCompleted)
	log.Printf("✅ [%s] analysis completed in %s with score %d", run.id, time.Since(run.started).Round(time.Millisecond), result.MatchPercentage)
	return result, nil
}

func (a *analyzer) run(ctx context.Context, run *analysisRun, req AnalysisRequest) (*AnalysisResult, error) {
	run.enter(StateExtracting)
	text, err := a.extract(ctx, run, req.Document)
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	run.enter(StateProfiling)
	profile := a.catalog.Resolve(ctx, req.Category)
	if len(profile.Keywords) == 0 {
		return nil, newError(KindInternalFailure, fmt.Errorf("category profile %q has no keywords", profile.Name))
	}
	log.Printf("📋 [%s] using %s profile for category %q", run.id, profile.Name, req.Category)
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	run.enter(StateMatching)
	match := a.matcher.Match(profile, text)
	if len(match.Matches) != len(profile.Keywords) {
		return nil, newError(KindInternalFailure,
			fmt.Errorf("matcher returned %d outcomes for %d keywords", len(match.Matches), len(profile.Keywords)))
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	run.enter(StateScoring)
	score := a.scorer.Score(match)
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	run.enter(StateSynthesizing)
	result := a.synthesizer.Synthesize(ctx, profile, match, score, text)
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	return &result, nil
}

type extraction struct {
	text NormalizedText
	err  error
}

// extract runs the extractor on its own goroutine so a deadline returns
// immediately even when a parser is stuck. The channel is buffered so the
// goroutine can always finish and drop the document. The limiter slot stays
// held until the goroutine returns, see releaseWhenIdle.
func (a *analyzer) extract(ctx context.Context, run *analysisRun, doc ResumeDocument) (NormalizedText, error) {
	done := make(chan extraction, 1)
	run.extracting = make(chan struct{})

	go func() {
		var out extraction
		// extracting closes before the result is sent so a caller that
		// received the result always sees the goroutine as finished.
		defer func() {
			close(run.extracting)
			done <- out
		}()
		defer func() {
			if r := recover(); r != nil {
				out = extraction{err: newError(KindInternalFailure, fmt.Errorf("extractor panic: %v", r))}
			}
		}()
		out.text, out.err = a.extractor.Extract(ctx, doc)
	}()

	select {
	case <-ctx.Done():
		return NormalizedText{}, ctx.Err()
	case out := <-done:
		if out.err != nil {
			var analysisErr *AnalysisError
			if !errors.As(out.err, &analysisErr) && ctx.Err() == nil {
				return NormalizedText{}, newError(KindCorruptDocument, out.err)
			}
			return NormalizedText{}, out.err
		}
		return out.text, nil
	}
}
