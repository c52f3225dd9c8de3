package orchestrator

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/gitgraph/year-in-code/internal/analysis"
	"github.com/gitgraph/year-in-code/internal/apperrors"
	"github.com/gitgraph/year-in-code/internal/types"
)

// Progress step labels, surfaced while a run is loading.
const (
	StepUser      = "locating developer"
	StepRepos     = "scanning repositories"
	StepSummarize = "summarizing activity"
	StepAnalyze   = "analyzing profile"
)

// GitHubService is the slice of the GitHub client the orchestrator needs.
type GitHubService interface {
	FetchUser(ctx context.Context, username string) (*types.UserProfile, error)
	FetchRepositories(ctx context.Context, username string) ([]types.Repository, error)
}

// Result is the immutable snapshot a successful run produces: the GitHub
// profile and the inferred developer profile, presented together or not at
// all.
type Result struct {
	User    *types.UserProfile
	Profile *types.DeveloperProfile
}

// Orchestrator sequences one analysis run: fetch user, fetch repositories,
// filter to the target year, analyze. It owns the run state machine
// (idle -> loading -> success|error, with explicit reset back to idle) and
// rejects re-entrant runs while one is loading.
type Orchestrator struct {
	github         GitHubService
	analyzer       analysis.Analyzer
	targetYear     int
	analyzeTimeout time.Duration
	logger         *slog.Logger

	mu      sync.Mutex
	state   types.AppState
	step    string
	result  *Result
	lastErr error
}

// New creates an idle orchestrator.
func New(github GitHubService, analyzer analysis.Analyzer, targetYear int, analyzeTimeout time.Duration) *Orchestrator {
	return &Orchestrator{
		github:         github,
		analyzer:       analyzer,
		targetYear:     targetYear,
		analyzeTimeout: analyzeTimeout,
		logger:         slog.Default(),
		state:          types.StateIdle,
	}
}

// State returns the current run phase.
func (o *Orchestrator) State() types.AppState {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.state
}

// Step returns the coarse progress label of a loading run.
func (o *Orchestrator) Step() string {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.step
}

// Result returns the success snapshot, or nil outside the success state.
func (o *Orchestrator) Result() *Result {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.state != types.StateSuccess {
		return nil
	}
	return o.result
}

// Err returns the failure of the last run, or nil outside the error state.
func (o *Orchestrator) Err() error {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.state != types.StateError {
		return nil
	}
	return o.lastErr
}

// Reset returns a finished run to idle, discarding its result or error. It
// is a no-op while a run is loading: only terminal states reset.
func (o *Orchestrator) Reset() {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.state == types.StateLoading {
		return
	}
	o.state = types.StateIdle
	o.step = ""
	o.result = nil
	o.lastErr = nil
}

// Run executes the full pipeline for username. Each invocation discards any
// previous result set; a run already in flight rejects new submissions.
func (o *Orchestrator) Run(ctx context.Context, username string) (*Result, error) {
	o.mu.Lock()
	if o.state == types.StateLoading {
		o.mu.Unlock()
		return nil, apperrors.NewValidation("an analysis is already in progress")
	}
	o.state = types.StateLoading
	o.step = StepUser
	o.result = nil
	o.lastErr = nil
	o.mu.Unlock()

	res, err := o.run(ctx, username)

	o.mu.Lock()
	defer o.mu.Unlock()
	o.step = ""
	if err != nil {
		o.state = types.StateError
		o.lastErr = err
		o.logger.Error("recap run failed",
			"username", username,
			"year", o.targetYear,
			"kind", apperrors.KindOf(err),
			"error", err.Error(),
		)
		return nil, err
	}
	o.state = types.StateSuccess
	o.result = res
	o.logger.Info("recap run completed",
		"username", username,
		"year", o.targetYear,
		"skills", len(res.Profile.Skills),
	)
	return res, nil
}

// run performs the four steps strictly in sequence: each step's output feeds
// the next, and the first failure aborts the whole run with no retries.
func (o *Orchestrator) run(ctx context.Context, username string) (*Result, error) {
	o.setStep(StepUser)
	user, err := o.github.FetchUser(ctx, username)
	if err != nil {
		return nil, err
	}

	o.setStep(StepRepos)
	repos, err := o.github.FetchRepositories(ctx, username)
	if err != nil {
		return nil, err
	}

	o.setStep(StepSummarize)
	summaries, err := analysis.FilterAndSummarize(repos, o.targetYear)
	if err != nil {
		return nil, err
	}

	// The analyze step races a wall-clock deadline. Whichever settles first
	// decides the run; cancelling the context tears the losing request down
	// instead of letting it run on unobserved.
	o.setStep(StepAnalyze)
	actx, cancel := context.WithTimeout(ctx, o.analyzeTimeout)
	defer cancel()

	type analyzeOutcome struct {
		profile *types.DeveloperProfile
		err     error
	}
	done := make(chan analyzeOutcome, 1)
	go func() {
		profile, err := o.analyzer.Analyze(actx, username, summaries)
		done <- analyzeOutcome{profile: profile, err: err}
	}()

	select {
	case <-actx.Done():
		// A result arriving after this point is discarded, successful or not.
		if actx.Err() == context.DeadlineExceeded {
			return nil, apperrors.NewTimeout("analysis timed out; the profile may be too complex or the service is busy", actx.Err())
		}
		return nil, apperrors.ToAppError(actx.Err())
	case out := <-done:
		if out.err != nil {
			if actx.Err() == context.DeadlineExceeded && !apperrors.IsKind(out.err, apperrors.KindTimeout) {
				return nil, apperrors.NewTimeout("analysis timed out; the profile may be too complex or the service is busy", out.err)
			}
			return nil, out.err
		}
		return &Result{User: user, Profile: out.profile}, nil
	}
}

func (o *Orchestrator) setStep(step string) {
	o.mu.Lock()
	o.step = step
	o.mu.Unlock()
	o.logger.Info("recap step", "step", step)
}
