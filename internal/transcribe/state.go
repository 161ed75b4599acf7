package transcribe

// State is the stage a transcription run is in.
type State int

const (
	StateIdle State = iota
	StateLoading
	StateExtracting
	StateConverting
	StateDone
	StateFailed
)

var stateNames = [...]string{"idle", "loading", "extracting", "converting", "done", "failed"}

func (s State) String() string {
	if s < 0 || int(s) >= len(stateNames) {
		return "unknown"
	}
	return stateNames[s]
}

// Terminal reports whether no further transition can follow s.
func (s State) Terminal() bool {
	return s == StateDone || s == StateFailed
}

// Observer is notified of every state transition of a run, in order.
type Observer func(id string, s State)
