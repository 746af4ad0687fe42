package model

var allowedTransitions = map[TaskStatus]map[TaskStatus]bool{
	StatusInProgress: {
		StatusProcessing: true,
	},
	StatusProcessing: {
		StatusCompleted: true,
		StatusFailed:    true,
	},
	StatusCompleted: {},
	StatusFailed:    {},
}

func (s TaskStatus) IsKnown() bool {
	_, ok := allowedTransitions[s]
	return ok
}

func (s TaskStatus) IsTerminal() bool {
	return s == StatusCompleted || s == StatusFailed
}

func CanTransition(from, to TaskStatus) bool {
	next, ok := allowedTransitions[from]
	if !ok {
		return false
	}
	return next[to]
}

// Predecessors returns the statuses a task may be in right before moving to status.
func Predecessors(status TaskStatus) []TaskStatus {
	var from []TaskStatus
	for _, s := range []TaskStatus{StatusInProgress, StatusProcessing, StatusCompleted, StatusFailed} {
		if CanTransition(s, status) {
			from = append(from, s)
		}
	}
	return from
}
