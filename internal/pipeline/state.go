package pipeline

// State tracks where one extraction cycle ended up.
type State string

const (
	StateIdle       State = "idle"
	StateGated      State = "gated" // auth missing or location unresolved, not an error
	StateExtracting State = "extracting"
	StateUploading  State = "uploading"
	StateReconciled State = "reconciled"
	StateFailed     State = "failed"
	StateDone       State = "done"
)
