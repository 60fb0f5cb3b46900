package chat

import (
	"time"

	"github.com/agendafacil/agenda-service/internal/slot"
)

type Stage string

const (
	StageStart            Stage = "start"
	StageCollectingName   Stage = "collecting_name"
	StageCollectingPhone  Stage = "collecting_phone"
	StageChoosingSlot     Stage = "choosing_slot"
	StageChoosingModality Stage = "choosing_modality"
	StageConfirming       Stage = "confirming"
)

// State is one patient's progress through the booking dialogue. It is
// JSON-serializable so the Redis session store can persist it between
// messages. There is no terminal stage: finishing or abandoning the flow
// deletes the state, and the next message starts fresh.
type State struct {
	Stage    Stage         `json:"stage"`
	Greeted  bool          `json:"greeted"`
	Name     string        `json:"name,omitempty"`
	Phone    string        `json:"phone,omitempty"`
	ChosenAt time.Time     `json:"chosen_at,omitempty"`
	Modality slot.Modality `json:"modality,omitempty"`
}

func NewState() *State {
	return &State{Stage: StageStart}
}
