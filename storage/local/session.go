package localstore

import "github.com/incluso/backend/core/user"

type sessionStore struct {
	db *DB
}

var _ user.SessionStore = (*sessionStore)(nil) // interface compliance check

func NewSessionStore(db *DB) user.SessionStore {
	return &sessionStore{db: db}
}

func (s *sessionStore) Restore() (user.Session, error) {
	s.db.Lock()
	defer s.db.Unlock()

	sess := s.db.data.Session
	if sess == nil {
		return user.Session{}, user.ErrNoSession
	}
	if sess.Token == "" || sess.User.ID == "" {
		// half-written session state is as good as none; drop it
		s.db.data.Session = nil
		_ = s.db.save()
		return user.Session{}, user.ErrNoSession
	}
	return *sess, nil
}

func (s *sessionStore) Set(sess user.Session) error {
	s.db.Lock()
	defer s.db.Unlock()

	s.db.data.Session = &sess
	return s.db.save()
}

func (s *sessionStore) Clear() error {
	s.db.Lock()
	defer s.db.Unlock()

	s.db.data.Session = nil
	return s.db.save()
}
