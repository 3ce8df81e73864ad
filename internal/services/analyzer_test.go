package services

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type blockingExtractor struct {
	unblock chan struct{}
}

func (b *blockingExtractor) Extract(_ context.Context, _ ResumeDocument) (NormalizedText, error) {
	<-b.unblock
	return NewNormalizedText("React"), nil
}

type erroringExtractor struct{}

func (erroringExtractor) Extract(context.Context, ResumeDocument) (NormalizedText, error) {
	return NormalizedText{}, errors.New("unexpected EOF")
}

type panickingMatcher struct{}

func (panickingMatcher) Match(CategoryProfile, NormalizedText) MatchResult {
	panic("index out of range")
}

type analyzerDeps struct {
	extractor DocumentExtractor
	matcher   KeywordMatcher
	limiter   Limiter
	opts      AnalyzerOptions
}

func newTestAnalyzer(t *testing.T, deps analyzerDeps) Analyzer {
	t.Helper()

	catalog, err := NewCatalog(CatalogSpec{Categories: []CategoryProfile{reactProfile()}})
	require.NoError(t, err)

	if deps.extractor == nil {
		deps.extractor = NewDocumentExtractor(1<<20, nil)
	}
	if deps.matcher == nil {
		deps.matcher = NewKeywordMatcher()
	}

	return NewAnalyzer(
		deps.extractor,
		catalog,
		deps.matcher,
		NewScorer(),
		NewFeedbackSynthesizer(nil, DefaultSynthesizerOptions()),
		deps.limiter,
		deps.opts,
	)
}

type transition struct {
	state AnalysisState
	kind  ErrorKind
}

func recordTransitions(opts *AnalyzerOptions) *[]transition {
	var seen []transition
	opts.OnTransition = func(_ uuid.UUID, state AnalysisState, kind ErrorKind) {
		seen = append(seen, transition{state: state, kind: kind})
	}
	return &seen
}

func TestAnalyzer_Scenario(t *testing.T) {
	var opts AnalyzerOptions
	seen := recordTransitions(&opts)
	analyzer := newTestAnalyzer(t, analyzerDeps{opts: opts})

	result, err := analyzer.Analyze(context.Background(), AnalysisRequest{
		Document: textDocument(reactResume),
		Category: "React Developer",
	})
	require.NoError(t, err)

	assert.Equal(t, 60, result.MatchPercentage)
	assert.Equal(t, []string{"Node.js", "testing"}, result.MissingKeywords)
	assert.Contains(t, result.Strengths, "Demonstrated experience with React")
	assert.NotEmpty(t, result.Suggestions)
	assert.NotEmpty(t, result.Summary)

	assert.Equal(t, []transition{
		{state: StateReceived},
		{state: StateExtracting},
		{state: StateProfiling},
		{state: StateMatching},
		{state: StateScoring},
		{state: StateSynthesizing},
		{state: StateCompleted},
	}, *seen)
}

func TestAnalyzer_PDFDocument(t *testing.T) {
	data := buildPDF(t, []string{
		"Jane Doe",
		"Frontend engineer building React applications with JavaScript.",
		"Integrated a REST API for internal dashboards.",
	})

	result, err := newTestAnalyzer(t, analyzerDeps{}).Analyze(context.Background(), AnalysisRequest{
		Document: ResumeDocument{Data: data, MediaType: MediaTypePDF, Size: int64(len(data))},
		Category: "react developer",
	})
	require.NoError(t, err)

	assert.Equal(t, 60, result.MatchPercentage)
	assert.Equal(t, []string{"Node.js", "testing"}, result.MissingKeywords)
}

func TestAnalyzer_Idempotent(t *testing.T) {
	analyzer := newTestAnalyzer(t, analyzerDeps{})
	req := AnalysisRequest{Document: textDocument(reactResume), Category: "React Developer"}

	first, err := analyzer.Analyze(context.Background(), req)
	require.NoError(t, err)
	second, err := analyzer.Analyze(context.Background(), req)
	require.NoError(t, err)

	a, err := json.Marshal(first)
	require.NoError(t, err)
	b, err := json.Marshal(second)
	require.NoError(t, err)
	assert.Equal(t, string(a), string(b))
}

func TestAnalyzer_UnknownCategoryUsesGenericProfile(t *testing.T) {
	result, err := newTestAnalyzer(t, analyzerDeps{}).Analyze(context.Background(), AnalysisRequest{
		Document: textDocument(reactResume),
		Category: "Underwater Basket Weaving",
	})
	require.NoError(t, err)

	assert.Contains(t, result.Summary, "No specific category matched")
	assert.GreaterOrEqual(t, result.MatchPercentage, 0)
	assert.LessOrEqual(t, result.MatchPercentage, 100)
}

func TestAnalyzer_DocumentFailures(t *testing.T) {
	tests := []struct {
		name string
		doc  ResumeDocument
		want ErrorKind
	}{
		{"zero bytes", ResumeDocument{MediaType: MediaTypePDF}, KindEmptyContent},
		{"binary declared as pdf", ResumeDocument{Data: []byte{0x00, 0xff, 0x13, 0x37}, MediaType: MediaTypePDF}, KindCorruptDocument},
		{"image", ResumeDocument{Data: []byte("GIF89a"), MediaType: "image/gif"}, KindUnsupportedFormat},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var opts AnalyzerOptions
			seen := recordTransitions(&opts)

			result, err := newTestAnalyzer(t, analyzerDeps{opts: opts}).Analyze(context.Background(), AnalysisRequest{
				Document: tt.doc,
				Category: "React Developer",
			})
			require.Error(t, err)
			assert.Nil(t, result)

			var analysisErr *AnalysisError
			require.ErrorAs(t, err, &analysisErr)
			assert.Equal(t, tt.want, analysisErr.Kind)
			assert.Equal(t, SafeMessage(err), analysisErr.Message)

			last := (*seen)[len(*seen)-1]
			assert.Equal(t, transition{state: StateFailed, kind: tt.want}, last)
		})
	}
}

func TestAnalyzer_UnclassifiedExtractorErrorIsCorrupt(t *testing.T) {
	_, err := newTestAnalyzer(t, analyzerDeps{extractor: erroringExtractor{}}).Analyze(context.Background(), AnalysisRequest{
		Document: textDocument(reactResume),
	})
	assert.Equal(t, KindCorruptDocument, KindOf(err))
}

func TestAnalyzer_Timeout(t *testing.T) {
	extractor := &blockingExtractor{unblock: make(chan struct{})}
	t.Cleanup(func() { close(extractor.unblock) })

	opts := AnalyzerOptions{Timeout: 20 * time.Millisecond}
	seen := recordTransitions(&opts)

	started := time.Now()
	result, err := newTestAnalyzer(t, analyzerDeps{extractor: extractor, opts: opts}).Analyze(context.Background(), AnalysisRequest{
		Document: textDocument(reactResume),
		Category: "React Developer",
	})

	require.Error(t, err)
	assert.Nil(t, result)
	assert.Equal(t, KindTimeout, KindOf(err))
	assert.Less(t, time.Since(started), time.Second)
	assert.Equal(t, transition{state: StateFailed, kind: KindTimeout}, (*seen)[len(*seen)-1])
}

func TestAnalyzer_CallerCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := newTestAnalyzer(t, analyzerDeps{}).Analyze(ctx, AnalysisRequest{
		Document: textDocument(reactResume),
		Category: "React Developer",
	})
	assert.Equal(t, KindTimeout, KindOf(err))
}

func TestAnalyzer_PanicIsInternalFailure(t *testing.T) {
	result, err := newTestAnalyzer(t, analyzerDeps{matcher: panickingMatcher{}}).Analyze(context.Background(), AnalysisRequest{
		Document: textDocument(reactResume),
		Category: "React Developer",
	})

	assert.Nil(t, result)
	assert.Equal(t, KindInternalFailure, KindOf(err))
	assert.Equal(t, "Something went wrong while analyzing the resume.", SafeMessage(err))
}

func TestAnalyzer_TimeoutKeepsSlotUntilExtractorReturns(t *testing.T) {
	limiter := NewLimiter(1, 0)
	extractor := &blockingExtractor{unblock: make(chan struct{})}
	analyzer := newTestAnalyzer(t, analyzerDeps{
		extractor: extractor,
		limiter:   limiter,
		opts:      AnalyzerOptions{Timeout: 20 * time.Millisecond},
	})
	req := AnalysisRequest{Document: textDocument(reactResume), Category: "React Developer"}

	_, err := analyzer.Analyze(context.Background(), req)
	assert.Equal(t, KindTimeout, KindOf(err))
	assert.Equal(t, int64(1), limiter.InFlight())

	for i := 0; i < 2; i++ {
		_, err = analyzer.Analyze(context.Background(), req)
		assert.Equal(t, KindBusy, KindOf(err))
		assert.LessOrEqual(t, limiter.InFlight(), int64(1))
	}

	close(extractor.unblock)
	assert.Eventually(t, func() bool { return limiter.InFlight() == 0 }, time.Second, 5*time.Millisecond)

	result, err := analyzer.Analyze(context.Background(), req)
	require.NoError(t, err)
	assert.NotNil(t, result)
	assert.Zero(t, limiter.InFlight())
}

func TestAnalyzer_Busy(t *testing.T) {
	limiter := NewLimiter(1, 0)
	analyzer := newTestAnalyzer(t, analyzerDeps{limiter: limiter})

	release, err := limiter.Acquire(context.Background())
	require.NoError(t, err)

	_, err = analyzer.Analyze(context.Background(), AnalysisRequest{Document: textDocument(reactResume)})
	assert.Equal(t, KindBusy, KindOf(err))

	release()

	_, err = analyzer.Analyze(context.Background(), AnalysisRequest{Document: textDocument(reactResume)})
	require.NoError(t, err)
	assert.Zero(t, limiter.InFlight())
}
