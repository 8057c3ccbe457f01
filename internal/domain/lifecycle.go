package domain

import "fmt"

// Stage is a request lifecycle state.
type Stage string

// Lifecycle stages in order. Failed is terminal.
const (
	StageReceived    Stage = "RECEIVED"
	StageClassified  Stage = "CLASSIFIED"
	StageDispatched  Stage = "DISPATCHED"
	StageCollecting  Stage = "COLLECTING"
	StageAggregating Stage = "AGGREGATING"
	StageSummarizing Stage = "SUMMARIZING"
	StageDelivering  Stage = "DELIVERING"
	StageComplete    Stage = "COMPLETE"
	StageFailed      Stage = "FAILED"
)

var nextStage = map[Stage]Stage{
	StageReceived:    StageClassified,
	StageClassified:  StageDispatched,
	StageDispatched:  StageCollecting,
	StageCollecting:  StageAggregating,
	StageAggregating: StageSummarizing,
	StageSummarizing: StageDelivering,
	StageDelivering:  StageComplete,
}

// CanTransition reports whether from → to is a legal lifecycle step.
// Failed is reachable only before dispatch.
func CanTransition(from, to Stage) bool {
	if to == StageFailed {
		return from == StageReceived || from == StageClassified
	}
	return nextStage[from] == to
}

// Lifecycle tracks one request through its stages.
type Lifecycle struct {
	stage   Stage
	history []Stage
}

// NewLifecycle starts in StageReceived.
func NewLifecycle() *Lifecycle {
	return &Lifecycle{stage: StageReceived, history: []Stage{StageReceived}}
}

// Stage returns the current stage.
func (l *Lifecycle) Stage() Stage { return l.stage }

// History returns every stage entered so far.
func (l *Lifecycle) History() []Stage {
	return append([]Stage(nil), l.history...)
}

// Advance moves to the given stage.
func (l *Lifecycle) Advance(to Stage) error {
	if !CanTransition(l.stage, to) {
		return fmt.Errorf("illegal lifecycle transition %s -> %s", l.stage, to)
	}
	l.stage = to
	l.history = append(l.history, to)
	return nil
}
