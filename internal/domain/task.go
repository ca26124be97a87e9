package domain

type TaskStatus string

const (
	TaskStatusNotStarted     TaskStatus = "NOT_STARTED"
	TaskStatusStarted        TaskStatus = "STARTED"
	TaskStatusReadyForClaim  TaskStatus = "READY_FOR_CLAIM"
	TaskStatusReadyForVerify TaskStatus = "READY_FOR_VERIFY"
	TaskStatusFinished       TaskStatus = "FINISHED"
)

const (
	TaskTypeProgressTarget = "PROGRESS_TARGET"
	TaskTypeProgressTask   = "PROGRESS_TASK"

	TaskValidationKeyword = "KEYWORD"
)

type Task struct {
	ID             string
	Title          string
	Kind           string
	Type           string
	Status         TaskStatus
	ValidationType string
}

func (t Task) Startable() bool {
	return t.Status == TaskStatusNotStarted && t.Type != TaskTypeProgressTarget
}

func (t Task) Claimable() bool {
	return t.Status == TaskStatusReadyForClaim && t.Type != TaskTypeProgressTask
}

func (t Task) NeedsKeyword() bool {
	return t.Status == TaskStatusReadyForVerify && t.ValidationType == TaskValidationKeyword
}
