// Package state tracks each user's position in the verification and
// feedback conversation. One keyed store holds exactly one stage per user,
// so a user can never sit in two pending stages at once.
package state

import "sync"

// Stage is what the bot expects from a user's next input.
type Stage int

const (
	StageUnverified Stage = iota
	StageAwaitingStudentID
	StageVerifiedIdle
	StageAwaitingEGEScreenshot
	StageAwaitingExternalScreenshot
)

func (s Stage) String() string {
	switch s {
	case StageUnverified:
		return "unverified"
	case StageAwaitingStudentID:
		return "awaiting_student_id"
	case StageVerifiedIdle:
		return "verified_idle"
	case StageAwaitingEGEScreenshot:
		return "awaiting_ege_screenshot"
	case StageAwaitingExternalScreenshot:
		return "awaiting_external_screenshot"
	default:
		return "unknown"
	}
}

// Session is one user's conversation state. The zero value is a fresh
// unverified user.
type Session struct {
	Stage            Stage
	StudentID        string
	InstructionsSent bool
}

type Store struct {
	mu       sync.Mutex
	sessions map[int64]Session
}

func NewStore() *Store {
	return &Store{sessions: make(map[int64]Session)}
}

// Get returns a copy of the user's session.
func (s *Store) Get(userID int64) Session {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.sessions[userID]
}

// Update applies fn to the user's session under the lock.
func (s *Store) Update(userID int64, fn func(*Session)) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess := s.sessions[userID]
	fn(&sess)
	s.sessions[userID] = sess
}

// SetStage moves the user to a new stage.
func (s *Store) SetStage(userID int64, stage Stage) {
	s.Update(userID, func(sess *Session) {
		sess.Stage = stage
	})
}

// BindStudentID records the verified external id and moves the user to
// screenshot intake. Binding is one-way: a bound id is never replaced.
func (s *Store) BindStudentID(userID int64, studentID string) {
	s.Update(userID, func(sess *Session) {
		if sess.StudentID == "" {
			sess.StudentID = studentID
		}

		sess.Stage = StageAwaitingEGEScreenshot
	})
}

// InstructionsSent reports whether the external-review instructions were
// already delivered to this user.
func (s *Store) InstructionsSent(userID int64) bool {
	return s.Get(userID).InstructionsSent
}

// MarkInstructionsSent flags the instructions as delivered and arms the
// external screenshot stage so the next photo is stored as review proof.
func (s *Store) MarkInstructionsSent(userID int64) {
	s.Update(userID, func(sess *Session) {
		sess.InstructionsSent = true
		sess.Stage = StageAwaitingExternalScreenshot
	})
}
