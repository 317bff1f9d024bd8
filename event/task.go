package event

import "github.com/wagoodman/go-progress"

type Task struct {
	Title   Title
	Context string
}

type Title struct {
	Default      string
	WhileRunning string
	OnSuccess    string
	OnFail       string
}

type ManualStagedProgress struct {
	*progress.AtomicStage
	*progress.Manual
}

// Origin identifies which path of the filter rejected an object
type Origin string

const (
	OriginSpawn Origin = "spawn"
	OriginSweep Origin = "sweep"
)

// Rejection is the payload of an ObjectRejectedEvent
type Rejection struct {
	ShortName string
	TypeName  string
	Keyword   string
	Reason    string
	Origin    Origin
	// Object is the host object that was destroyed (a spawnguard.Object)
	Object interface{}
}
