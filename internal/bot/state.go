package bot

import "sync"

// State is where a chat is in the conversation flow.
type State string

const (
	StateMainMenu  State = "MAIN_MENU"
	StateMoodInput State = "MOOD_INPUT"
	StateAIChat    State = "AI_CHAT"
	StateExercise  State = "EXERCISE"
)

type stateMachine struct {
	mu     sync.RWMutex
	states map[int64]State
}

func newStateMachine() *stateMachine {
	return &stateMachine{states: make(map[int64]State)}
}

func (s *stateMachine) Get(chatID int64) State {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if st, ok := s.states[chatID]; ok {
		return st
	}
	return StateMainMenu
}

func (s *stateMachine) Set(chatID int64, st State) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if st == StateMainMenu {
		delete(s.states, chatID)
		return
	}
	s.states[chatID] = st
}
