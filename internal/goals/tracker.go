// Package goals tracks daily step and workout goals against health data.
package goals

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
)

// ErrInvalidGoal is returned when a goal value is not a positive integer.
var ErrInvalidGoal = errors.New("goal must be a positive integer")

// ErrUnknownKind is returned for a goal kind other than Steps or Workout.
var ErrUnknownKind = errors.New("unknown goal kind")

// Kind identifies a goal.
type Kind string

const (
	// Steps is the daily step count goal.
	Steps Kind = "steps"
	// Workout is the daily exercise goal, in minutes.
	Workout Kind = "workout"
)

// Kinds lists every goal kind.
var Kinds = []Kind{Steps, Workout}

// Key returns the preference key the goal is stored under.
func (k Kind) Key() string {
	return string(k) + "_goal"
}

// Default returns the goal used until the user sets one.
func (k Kind) Default() int64 {
	switch k {
	case Steps:
		return 10000
	case Workout:
		return 30
	}
	return 0
}

// ParseKind converts s to a Kind.
func ParseKind(s string) (Kind, error) {
	k := Kind(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range Kinds {
		if k == known {
			return k, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownKind, s)
}

// PreferenceStore persists integer preferences by key.
type PreferenceStore interface {
	// GetInt64 returns the stored value and whether it was set.
	GetInt64(ctx context.Context, key string) (int64, bool, error)
	// PutInt64 stores value under key, replacing any previous value.
	PutInt64(ctx context.Context, key string, value int64) error
}

// Session is one recorded exercise session.
type Session struct {
	Start time.Time
	End   time.Time
}

// HealthReader reads aggregated health data for a time range.
type HealthReader interface {
	Steps(ctx context.Context, start, end time.Time) (int64, error)
	Sessions(ctx context.Context, start, end time.Time) ([]Session, error)
}

// Daily is today's progress for every goal.
type Daily struct {
	Steps   Progress `json:"steps"`
	Workout Progress `json:"workout"`
}

// Tracker reads and updates goals and measures today's progress.
type Tracker struct {
	prefs  PreferenceStore
	health HealthReader
	log    *zap.Logger
	now    func() time.Time
}

// NewTracker creates a Tracker. health may be nil when no health data source
// is available; progress is then measured as zero.
func NewTracker(prefs PreferenceStore, health HealthReader, log *zap.Logger) *Tracker {
	return &Tracker{prefs: prefs, health: health, log: log, now: time.Now}
}

// Goal returns the stored goal for k, or its default.
func (t *Tracker) Goal(ctx context.Context, k Kind) int64 {
	v, ok, err := t.prefs.GetInt64(ctx, k.Key())
	if err != nil {
		t.log.Error("failed to read goal", zap.String("kind", string(k)), zap.Error(err))
		return k.Default()
	}
	if !ok {
		return k.Default()
	}
	return v
}

// SetGoal stores the goal for k parsed from raw user input.
func (t *Tracker) SetGoal(ctx context.Context, k Kind, input string) (int64, error) {
	v, err := strconv.ParseInt(strings.TrimSpace(input), 10, 64)
	if err != nil || v <= 0 {
		return 0, fmt.Errorf("%w: %q", ErrInvalidGoal, input)
	}
	if err := t.prefs.PutInt64(ctx, k.Key(), v); err != nil {
		return 0, fmt.Errorf("failed to save %s goal: %w", k, err)
	}
	return v, nil
}

// Today measures progress from the start of the local day until now.
func (t *Tracker) Today(ctx context.Context) Daily {
	now := t.now()
	y, m, d := now.Date()
	start := time.Date(y, m, d, 0, 0, 0, 0, now.Location())

	var steps, minutes int64
	if t.health != nil {
		steps = t.readSteps(ctx, start, now)
		minutes = t.readWorkoutMinutes(ctx, start, now)
	}
	return Daily{
		Steps:   NewProgress(steps, t.Goal(ctx, Steps)),
		Workout: NewProgress(minutes, t.Goal(ctx, Workout)),
	}
}

func (t *Tracker) readSteps(ctx context.Context, start, end time.Time) int64 {
	n, err := t.health.Steps(ctx, start, end)
	if err != nil {
		t.log.Warn("failed to read steps", zap.Error(err))
		return 0
	}
	return n
}

func (t *Tracker) readWorkoutMinutes(ctx context.Context, start, end time.Time) int64 {
	sessions, err := t.health.Sessions(ctx, start, end)
	if err != nil {
		t.log.Warn("failed to read exercise sessions", zap.Error(err))
		return 0
	}
	var total int64
	for _, s := range sessions {
		total += int64(s.End.Sub(s.Start) / time.Minute)
	}
	return total
}

// MemoryPreferences is a PreferenceStore held in process.
type MemoryPreferences struct {
	mu     sync.Mutex
	values map[string]int64
}

// NewMemoryPreferences creates an empty MemoryPreferences.
func NewMemoryPreferences() *MemoryPreferences {
	return &MemoryPreferences{values: make(map[string]int64)}
}

// GetInt64 returns the value stored under key and whether it was set.
func (p *MemoryPreferences) GetInt64(_ context.Context, key string) (int64, bool, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	v, ok := p.values[key]
	return v, ok, nil
}

// PutInt64 stores value under key.
func (p *MemoryPreferences) PutInt64(_ context.Context, key string, value int64) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.values[key] = value
	return nil
}
