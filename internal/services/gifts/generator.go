package gifts

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/nidrosoft/rizzer-sub001/internal/database"
	"github.com/nidrosoft/rizzer-sub001/internal/lock"
	"github.com/nidrosoft/rizzer-sub001/internal/logger"
	"github.com/nidrosoft/rizzer-sub001/internal/metrics"
	"github.com/nidrosoft/rizzer-sub001/internal/models"
	"github.com/nidrosoft/rizzer-sub001/internal/services/ai"
	"github.com/nidrosoft/rizzer-sub001/internal/telemetry"
	"go.uber.org/zap"
)

// Config tunes a Generator. Zero values take the defaults, except
// MinQualityScore where nil takes ServerMinQualityScore and 0 turns the gate off.
type Config struct {
	MinQualityScore  *int
	ScheduleInterval time.Duration
	QueryTimeout     time.Duration
	Model            string
	Weights          *ScoreWeights
}

// Deps are the collaborators a Generator drives
type Deps struct {
	Profiles    database.ProfileDataSource
	Completion  ai.CompletionClient
	Suggestions database.SuggestionStore
	Logs        database.GenerationLogStore
	Schedule    database.ScheduleStore
	Locker      lock.Locker
}

// GenerationResult describes one successful attempt
type GenerationResult struct {
	ProfileID        uuid.UUID                 `json:"profileId"`
	BatchID          uuid.UUID                 `json:"batchId"`
	Suggestions      []models.StoredSuggestion `json:"suggestions"`
	QualityScore     int                       `json:"qualityScore"`
	Model            string                    `json:"model"`
	PromptTokens     int64                     `json:"promptTokens"`
	CompletionTokens int64                     `json:"completionTokens"`
	Cost             float64                   `json:"cost"`
	DurationMS       int64                     `json:"duration_ms"`
}

// Generator runs the whole pipeline for one profile
type Generator struct {
	gatherer    *Gatherer
	completion  ai.CompletionClient
	suggestions database.SuggestionStore
	logs        database.GenerationLogStore
	schedule    database.ScheduleStore
	locker      lock.Locker
	cfg         Config
	minScore    int
	weights     ScoreWeights
	logger      *zap.Logger
	now         func() time.Time
}

// NewGenerator wires a Generator. A nil Locker disables profile locking.
func NewGenerator(deps Deps, cfg Config, log *zap.Logger) *Generator {
	minScore := ServerMinQualityScore
	if cfg.MinQualityScore != nil && *cfg.MinQualityScore >= 0 {
		minScore = *cfg.MinQualityScore
	}
	if cfg.ScheduleInterval <= 0 {
		cfg.ScheduleInterval = DefaultScheduleInterval
	}
	if cfg.Model == "" {
		cfg.Model = ai.DefaultOpenAIModel
	}
	weights := DefaultScoreWeights
	if cfg.Weights != nil {
		weights = *cfg.Weights
	}
	locker := deps.Locker
	if locker == nil {
		locker = lock.NoopLocker{}
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Generator{
		gatherer:    NewGatherer(deps.Profiles, cfg.QueryTimeout),
		completion:  deps.Completion,
		suggestions: deps.Suggestions,
		logs:        deps.Logs,
		schedule:    deps.Schedule,
		locker:      locker,
		cfg:         cfg,
		minScore:    minScore,
		weights:     weights,
		logger:      log,
		now:         func() time.Time { return time.Now().UTC() },
	}
}

// attempt accumulates what one run learned, for the log row
type attempt struct {
	profileID        uuid.UUID
	batchID          uuid.UUID
	model            string
	promptTokens     int64
	completionTokens int64
	qualityScore     int
	stored           []models.StoredSuggestion
}

// GenerateForProfile runs gather, score, prompt, completion, validation and
// persistence for one profile. Every attempt, failed or not, appends a log
// row and pushes the profile's next run out by the schedule interval. A
// profile already being generated elsewhere fails with
// ErrGenerationInProgress and its schedule is left alone.
func (g *Generator) GenerateForProfile(ctx context.Context, profileID uuid.UUID) (*GenerationResult, error) {
	start := g.now()
	a := &attempt{profileID: profileID, batchID: uuid.New(), model: g.cfg.Model}

	ctx = ai.WithProfileID(ctx, profileID)
	ctx = ai.WithBatchID(ctx, a.batchID)
	ctx, span := telemetry.StartSpan(ctx, "gifts.generate_for_profile",
		telemetry.AttrProfileID.String(profileID.String()),
		telemetry.AttrBatchID.String(a.batchID.String()),
		telemetry.AttrModel.String(a.model),
	)

	unlock, acquired, err := g.locker.TryLock(ctx, profileID.String())
	if err != nil {
		g.logger.Warn("profile_lock_unavailable_continuing",
			zap.String("profile_id", profileID.String()),
			zap.Error(err),
		)
	} else if !acquired {
		runErr := ErrGenerationInProgress
		g.finish(ctx, a, start, runErr, false)
		telemetry.EndSpan(span, runErr, KindInProgress)
		return nil, runErr
	} else {
		defer func() {
			if err := unlock(context.WithoutCancel(ctx)); err != nil {
				g.logger.Warn("profile_lock_release_failed",
					zap.String("profile_id", profileID.String()),
					zap.Error(err),
				)
			}
		}()
	}

	runErr := g.run(ctx, a)
	duration := g.finish(ctx, a, start, runErr, true)
	telemetry.EndSpan(span, runErr, ErrorKind(runErr))
	if runErr != nil {
		return nil, runErr
	}

	return &GenerationResult{
		ProfileID:        profileID,
		BatchID:          a.batchID,
		Suggestions:      a.stored,
		QualityScore:     a.qualityScore,
		Model:            a.model,
		PromptTokens:     a.promptTokens,
		CompletionTokens: a.completionTokens,
		Cost:             EstimateCost(a.model, a.promptTokens, a.completionTokens),
		DurationMS:       duration.Milliseconds(),
	}, nil
}

// CheckReadiness gathers a profile and scores it against threshold without
// calling the model. Used by the interactive "ready for suggestions" check.
func (g *Generator) CheckReadiness(ctx context.Context, profileID uuid.UUID, threshold int) (*Readiness, error) {
	agg, err := g.gatherer.Gather(ctx, profileID)
	if err != nil {
		return nil, err
	}
	r := CheckReadiness(agg, g.weights, threshold)
	return &r, nil
}

func (g *Generator) run(ctx context.Context, a *attempt) error {
	var agg *models.ProfileAggregate
	err := g.stage(ctx, "gather", func(ctx context.Context) error {
		var err error
		agg, err = g.gatherer.Gather(ctx, a.profileID)
		return err
	})
	if err != nil {
		return err
	}

	a.qualityScore = Score(agg, g.weights)
	metrics.ObserveQualityScore(a.qualityScore)
	if err := Gate(agg, g.weights, g.minScore); err != nil {
		return err
	}

	userPrompt := BuildPrompt(agg)
	g.logger.Debug("gift_prompt_built",
		zap.String("profile_id", a.profileID.String()),
		zap.Int("quality_score", a.qualityScore),
		zap.Int("prompt_length", len(userPrompt)),
		zap.Any("sections", SectionsIn(userPrompt)),
	)

	var raw *ai.RawModelResponse
	err = g.stage(ctx, "completion", func(ctx context.Context) error {
		var err error
		raw, err = g.completion.Generate(ctx, SystemPrompt, userPrompt)
		return err
	})
	if err != nil {
		return err
	}
	if raw.Model != "" {
		a.model = raw.Model
	}
	a.promptTokens = raw.PromptTokens
	a.completionTokens = raw.CompletionTokens

	var suggestions []models.Suggestion
	err = g.stage(ctx, "validate", func(ctx context.Context) error {
		var err error
		suggestions, err = ParseSuggestions(raw.Content)
		return err
	})
	if err != nil {
		if errors.Is(err, ErrMalformedResponse) {
			g.logger.Warn("gift_response_unparseable",
				zap.String("profile_id", a.profileID.String()),
				zap.String("response_preview", ai.SanitizeResponse(raw.Content, false)),
			)
		}
		return err
	}

	return g.stage(ctx, "persist", func(ctx context.Context) error {
		stored, err := g.suggestions.ReplaceActive(ctx, a.profileID, a.batchID, suggestions, g.now())
		if err != nil {
			return &PersistenceError{Op: "persist suggestions", Err: err}
		}
		a.stored = stored
		metrics.AddSuggestionsPersisted(len(stored))
		return nil
	})
}

// stage times fn under its own span
func (g *Generator) stage(ctx context.Context, name string, fn func(ctx context.Context) error) error {
	started := time.Now()
	ctx, span := telemetry.StartSpan(ctx, "gifts."+name)
	err := fn(ctx)
	telemetry.EndSpan(span, err, ErrorKind(err))
	metrics.ObserveStage(name, time.Since(started))
	return err
}

// finish writes the log row and, when advance is set, the schedule entry.
// Bookkeeping failures are logged but never replace the attempt's own error.
func (g *Generator) finish(ctx context.Context, a *attempt, start time.Time, runErr error, advance bool) time.Duration {
	// bookkeeping must land even if the caller gave up
	ctx = context.WithoutCancel(ctx)
	now := g.now()
	duration := now.Sub(start)
	cost := EstimateCost(a.model, a.promptTokens, a.completionTokens)
	success := runErr == nil
	kind := ErrorKind(runErr)

	entry := &models.GenerationLogEntry{
		ProfileID:        a.profileID,
		BatchID:          a.batchID,
		SuggestionsCount: len(a.stored),
		DurationMS:       duration.Milliseconds(),
		Model:            a.model,
		PromptTokens:     a.promptTokens,
		CompletionTokens: a.completionTokens,
		Cost:             cost,
		Status:           models.GenerationStatusSuccess,
		CreatedAt:        now,
	}
	if !success {
		msg := logger.SanitizeError(runErr)
		entry.Status = models.GenerationStatusFailed
		entry.ErrorMessage = &msg
	}
	if err := g.logs.Append(ctx, entry); err != nil {
		g.logger.Error("generation_log_append_failed",
			zap.String("profile_id", a.profileID.String()),
			zap.Error(err),
		)
	}

	if advance {
		if err := g.advanceSchedule(ctx, a.profileID, success, now); err != nil {
			g.logger.Error("generation_schedule_update_failed",
				zap.String("profile_id", a.profileID.String()),
				zap.Error(err),
			)
		}
	}

	metrics.ObserveAttempt(success, kind, duration)
	if a.promptTokens > 0 || a.completionTokens > 0 {
		metrics.ObserveUsage(a.model, a.promptTokens, a.completionTokens, cost)
	}

	fields := []zap.Field{
		zap.String("profile_id", a.profileID.String()),
		zap.String("generation_batch_id", a.batchID.String()),
		zap.Int("quality_score", a.qualityScore),
		zap.Int("suggestions_count", len(a.stored)),
		zap.String("model", a.model),
		zap.Int64("prompt_tokens", a.promptTokens),
		zap.Int64("completion_tokens", a.completionTokens),
		zap.Float64("cost_usd", cost),
		zap.Int64("duration_ms", duration.Milliseconds()),
	}
	if success {
		g.logger.Info("gift_generation_succeeded", fields...)
	} else {
		fields = append(fields, zap.String("error_kind", kind), zap.String("error", logger.SanitizeError(runErr)))
		if kind == KindUpstream {
			fields = append(fields, zap.String("upstream_class", ai.StatusClass(runErr)))
		}
		g.logger.Warn("gift_generation_failed", fields...)
	}
	return duration
}

func (g *Generator) advanceSchedule(ctx context.Context, profileID uuid.UUID, success bool, now time.Time) error {
	if err := g.schedule.Advance(ctx, profileID, success, g.cfg.ScheduleInterval); err != nil {
		return fmt.Errorf("advance schedule: %w", err)
	}
	if !g.logger.Core().Enabled(zap.DebugLevel) {
		return nil
	}
	// read back what the procedure wrote; a failed read only thins the log line
	row, err := g.schedule.Get(ctx, profileID)
	if err != nil {
		row = nil
	}
	expected := AdvanceSchedule(nil, profileID, success, now, g.cfg.ScheduleInterval)
	fields := []zap.Field{
		zap.String("profile_id", profileID.String()),
		zap.Bool("success", success),
		zap.Time("expected_next_run_at", expected.NextRunAt),
	}
	if row != nil {
		fields = append(fields, zap.Time("next_run_at", row.NextRunAt), zap.Int("consecutive_failures", row.ConsecutiveFailures))
	}
	g.logger.Debug("generation_schedule_advanced", fields...)
	return nil
}
