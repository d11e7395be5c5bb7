package session

const flashKey = "_messages"

const (
	LevelSuccess = "success"
	LevelInfo    = "info"
	LevelWarning = "warning"
	LevelError   = "error"
)

// Notice is a one-shot message shown on the next rendered page.
type Notice struct {
	Level string `json:"level"`
	Text  string `json:"text"`
}

func (s *Session) AddFlash(level, text string) {
	var pending []Notice
	// a corrupt queue is replaced rather than surfaced
	_, _ = s.Get(flashKey, &pending)
	pending = append(pending, Notice{Level: level, Text: text})
	if err := s.Set(flashKey, pending); err == nil {
		s.MarkModified()
	}
}

func (s *Session) Success(text string) { s.AddFlash(LevelSuccess, text) }
func (s *Session) Info(text string)    { s.AddFlash(LevelInfo, text) }
func (s *Session) Warning(text string) { s.AddFlash(LevelWarning, text) }
func (s *Session) Error(text string)   { s.AddFlash(LevelError, text) }

// Flashes drains the pending notices.
func (s *Session) Flashes() []Notice {
	var pending []Notice
	found, _ := s.Get(flashKey, &pending)
	if !found {
		return nil
	}
	s.Delete(flashKey)
	s.MarkModified()
	return pending
}
