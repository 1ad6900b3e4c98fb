package model

import "time"

// CampaignAction is one edge kind of the campaign state machine
type CampaignAction string

//revive:disable:exported
const (
	CampaignActionSchedule CampaignAction = "schedule"
	CampaignActionActivate CampaignAction = "activate"
	CampaignActionPause    CampaignAction = "pause"
	CampaignActionComplete CampaignAction = "complete"
	CampaignActionCancel   CampaignAction = "cancel"
	CampaignActionArchive  CampaignAction = "archive"
)

//revive:enable:exported

type campaignEdge struct {
	from   []CampaignStatus
	target CampaignStatus
}

var campaignEdges = map[CampaignAction]campaignEdge{
	CampaignActionSchedule: {
		from:   []CampaignStatus{CampaignStatusDraft, CampaignStatusScheduled},
		target: CampaignStatusScheduled,
	},
	CampaignActionActivate: {
		from:   []CampaignStatus{CampaignStatusDraft, CampaignStatusScheduled, CampaignStatusPaused},
		target: CampaignStatusActive,
	},
	CampaignActionPause: {
		from:   []CampaignStatus{CampaignStatusActive},
		target: CampaignStatusPaused,
	},
	CampaignActionComplete: {
		from:   []CampaignStatus{CampaignStatusActive, CampaignStatusPaused},
		target: CampaignStatusCompleted,
	},
	CampaignActionCancel: {
		from: []CampaignStatus{
			CampaignStatusDraft, CampaignStatusScheduled,
			CampaignStatusActive, CampaignStatusPaused,
		},
		target: CampaignStatusCancelled,
	},
	CampaignActionArchive: {
		from: []CampaignStatus{
			CampaignStatusActive, CampaignStatusPaused,
			CampaignStatusCompleted, CampaignStatusCancelled,
		},
		target: CampaignStatusArchived,
	},
}

// NextCampaignStatus returns the status reached by applying action to from
func NextCampaignStatus(from CampaignStatus, action CampaignAction) (CampaignStatus, bool) {
	edge, ok := campaignEdges[action]
	if !ok {
		return "", false
	}
	if !containsEnum(edge.from, from) {
		return "", false
	}
	return edge.target, true
}

// IsTerminal ...
func (s CampaignStatus) IsTerminal() bool {
	switch s {
	case CampaignStatusCompleted, CampaignStatusCancelled, CampaignStatusArchived:
		return true
	default:
		return false
	}
}

// executionPipeline is the forward order of the delivery pipeline
var executionPipeline = []ExecutionStatus{
	ExecutionStatusPending,
	ExecutionStatusSending,
	ExecutionStatusSent,
	ExecutionStatusDelivered,
	ExecutionStatusOpened,
	ExecutionStatusClicked,
	ExecutionStatusConverted,
}

func pipelineIndex(s ExecutionStatus) int {
	if s == ExecutionStatusScheduled {
		return 0
	}
	for i, e := range executionPipeline {
		if e == s {
			return i
		}
	}
	return -1
}

// IsTerminal reports whether no further transition is possible (FAILED may still be retried)
func (s ExecutionStatus) IsTerminal() bool {
	switch s {
	case ExecutionStatusConverted, ExecutionStatusBounced, ExecutionStatusFailed,
		ExecutionStatusCancelled, ExecutionStatusUnsubscribed:
		return true
	default:
		return false
	}
}

// IsExit reports whether s is one of the exit states of the pipeline
func (s ExecutionStatus) IsExit() bool {
	switch s {
	case ExecutionStatusBounced, ExecutionStatusFailed,
		ExecutionStatusCancelled, ExecutionStatusUnsubscribed:
		return true
	default:
		return false
	}
}

// CanAdvanceExecution reports whether an execution may move from -> to.
// Forward moves may skip intermediate pipeline states.
func CanAdvanceExecution(from ExecutionStatus, to ExecutionStatus) bool {
	if from.IsTerminal() {
		return false
	}
	if to.IsExit() {
		return true
	}
	fromIndex := pipelineIndex(from)
	toIndex := pipelineIndex(to)
	if fromIndex < 0 || toIndex < 0 {
		return false
	}
	return toIndex > fromIndex
}

func setIfNil(t **time.Time, now time.Time) {
	if *t == nil {
		v := now
		*t = &v
	}
}

// Advance moves e to status `to`, filling every missing pipeline timestamp up to it
// so that e.g. ClickedAt is never set without SentAt and DeliveredAt.
func (e *Execution) Advance(to ExecutionStatus, now time.Time) bool {
	if !CanAdvanceExecution(e.Status, to) {
		return false
	}

	switch to {
	case ExecutionStatusBounced:
		setIfNil(&e.BouncedAt, now)
	case ExecutionStatusUnsubscribed:
		setIfNil(&e.UnsubscribedAt, now)
	case ExecutionStatusFailed, ExecutionStatusCancelled:
	default:
		pipelineTimes := []**time.Time{
			nil, // PENDING
			nil, // SENDING
			&e.SentAt,
			&e.DeliveredAt,
			&e.OpenedAt,
			&e.ClickedAt,
			&e.ConvertedAt,
		}
		toIndex := pipelineIndex(to)
		for i := 0; i <= toIndex; i++ {
			if pipelineTimes[i] != nil {
				setIfNil(pipelineTimes[i], now)
			}
		}
	}

	e.Status = to
	e.UpdatedAt = now
	return true
}

// Retry moves a FAILED execution back to PENDING and counts the attempt.
// RetryCount never exceeds MaxRetries.
func (e *Execution) Retry(now time.Time) bool {
	if !e.CanRetry() {
		return false
	}
	e.RetryCount++
	e.Status = ExecutionStatusPending
	e.ErrorMessage = ""
	e.UpdatedAt = now
	return true
}

// Fail moves e to FAILED with the reason of the failure
func (e *Execution) Fail(reason string, now time.Time) bool {
	if !e.Advance(ExecutionStatusFailed, now) {
		return false
	}
	e.ErrorMessage = reason
	return true
}
