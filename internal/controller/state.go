package controller

type Action string

const (
	ActionLoadStats Action = "load_stats"
	ActionLoadChain Action = "load_chain"
	ActionSubmit    Action = "submit_transaction"
	ActionTrack     Action = "track_product"
	ActionMine      Action = "mine"
	ActionValidate  Action = "validate_chain"
	ActionProducts  Action = "list_products"
)

// Actions lists every action the controller performs.
var Actions = []Action{ActionLoadStats, ActionLoadChain, ActionSubmit, ActionTrack, ActionMine, ActionValidate, ActionProducts}

// Phase is a step of an action's lifecycle: idle, loading, then success or error, then idle again.
type Phase string

const (
	PhaseIdle    Phase = "idle"
	PhaseLoading Phase = "loading"
	PhaseSuccess Phase = "success"
	PhaseError   Phase = "error"
)

// Observer is told about every phase transition.
type Observer interface {
	PhaseChanged(action Action, phase Phase)
}

type nopObserver struct{}

func (nopObserver) PhaseChanged(Action, Phase) {}
