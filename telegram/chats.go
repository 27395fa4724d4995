package telegram

import (
	"sync"

	"mockinterview/interview"
)

type chatState struct {
	history []interview.Turn
	// current is the question waiting for an answer.
	current string
	// lastQuestion and lastAnswer are the most recent answered pair.
	lastQuestion string
	lastAnswer   string
}

// chatStore keeps each chat's transcript and its latest answered question.
type chatStore struct {
	mu    sync.Mutex
	chats map[int64]*chatState
}

func newChatStore() *chatStore {
	return &chatStore{chats: make(map[int64]*chatState)}
}

// begin replaces any previous session of the chat with one opened by greeting.
func (s *chatStore) begin(chatID int64, greeting string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.chats[chatID] = &chatState{
		history: []interview.Turn{{Role: interview.RoleInterviewer, Content: greeting}},
		current: greeting,
	}
}

// record appends an answer to the current question and the question asked in response to it.
func (s *chatStore) record(chatID int64, answer, nextQuestion string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	state, ok := s.chats[chatID]
	if !ok {
		return
	}
	state.history = append(state.history,
		interview.Turn{Role: interview.RoleUser, Content: answer},
		interview.Turn{Role: interview.RoleInterviewer, Content: nextQuestion},
	)
	state.lastQuestion = state.current
	state.lastAnswer = answer
	state.current = nextQuestion
}

// history returns a copy of the chat's transcript.
func (s *chatStore) history(chatID int64) ([]interview.Turn, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	state, ok := s.chats[chatID]
	if !ok {
		return nil, false
	}
	history := make([]interview.Turn, len(state.history))
	copy(history, state.history)
	return history, true
}

// lastExchange returns the latest answered pair and the transcript that preceded it.
func (s *chatStore) lastExchange(chatID int64) (question, answer string, before []interview.Turn, ok bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	state, found := s.chats[chatID]
	if !found || state.lastAnswer == "" {
		return "", "", nil, false
	}
	// The last three turns are the answered question, the answer and the follow-up.
	n := len(state.history) - 3
	before = make([]interview.Turn, n)
	copy(before, state.history[:n])
	return state.lastQuestion, state.lastAnswer, before, true
}

func (s *chatStore) reset(chatID int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.chats, chatID)
}
