package session

import (
	"time"

	"github.com/google/uuid"
)

// NoticeLevel is the severity of a transient notice
type NoticeLevel string

const (
	NoticeSuccess NoticeLevel = "success"
	NoticeError   NoticeLevel = "error"
)

// Notice is a transient, auto-dismissing status message. Visibility and
// clearing run on two independent timers so a rapid follow-up action is not
// visually dropped while an older notice fades out.
type Notice struct {
	ID        string      `json:"id"`
	Level     NoticeLevel `json:"level"`
	Message   string      `json:"message"`
	Visible   bool        `json:"visible"`
	CreatedAt time.Time   `json:"created_at"`
}

func (s *Session) pushNotice(level NoticeLevel, message string) {
	n := &Notice{
		ID:        uuid.NewString(),
		Level:     level,
		Message:   message,
		Visible:   true,
		CreatedAt: time.Now(),
	}

	s.mu.Lock()
	s.notices = append(s.notices, n)
	s.mu.Unlock()

	// The timers only touch notice state, never the product set.
	time.AfterFunc(s.cfg.NoticeVisibleFor, func() {
		s.mu.Lock()
		n.Visible = false
		s.mu.Unlock()
	})
	time.AfterFunc(s.cfg.NoticeClearAfter, func() {
		s.clearNotice(n.ID)
	})
}

func (s *Session) clearNotice(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	kept := s.notices[:0]
	for _, n := range s.notices {
		if n.ID != id {
			kept = append(kept, n)
		}
	}
	s.notices = kept
}

// Notices returns the currently retained notices, newest last
func (s *Session) Notices() []Notice {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]Notice, 0, len(s.notices))
	for _, n := range s.notices {
		out = append(out, *n)
	}
	return out
}
