package screen

import (
	"sync"

	"github.com/rs/zerolog/log"
)

// Notifier shows user-visible outcomes of screen actions.
type Notifier interface {
	Success(message string)
	Error(message string, err error)
}

// Confirmer asks the user to approve a destructive action.
type Confirmer func(prompt string) bool

// LogNotifier reports through the process logger.
type LogNotifier struct{}

func (LogNotifier) Success(message string) {
	log.Info().Msg(message)
}

func (LogNotifier) Error(message string, err error) {
	log.Error().Err(err).Msg(message)
}

// Level of a recorded message.
type Level string

const (
	LevelSuccess Level = "success"
	LevelError   Level = "error"
)

// Message is a notification kept by a Recorder.
type Message struct {
	Level Level
	Text  string
}

// Recorder collects notifications until they are drained, the console uses
// one to render flash messages on the next page.
type Recorder struct {
	mu       sync.Mutex
	messages []Message
}

func (r *Recorder) Success(message string) {
	r.add(Message{Level: LevelSuccess, Text: message})
}

func (r *Recorder) Error(message string, err error) {
	text := message
	if err != nil && err.Error() != message {
		text = message + ": " + err.Error()
	}
	r.add(Message{Level: LevelError, Text: text})
}

// Drain returns and forgets the collected messages.
func (r *Recorder) Drain() []Message {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := r.messages
	r.messages = nil
	return out
}

func (r *Recorder) add(m Message) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.messages = append(r.messages, m)
}
