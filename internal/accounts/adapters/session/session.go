package session

import (
	"context"

	"github.com/google/uuid"

	"goaccounts/internal/accounts/domain/services"
	"goaccounts/internal/accounts/ports/repositories"
	svc "goaccounts/internal/accounts/ports/services"
)

var _ svc.Session = (*Session)(nil)

// Session - сессия одного запроса. Изменения сохраняет middleware после обработчика.
type Session struct {
	id        string
	data      services.SessionData
	store     repositories.SessionRepository
	isNew     bool
	modified  bool
	destroyed bool
}

// New создает пустую сессию со свежим идентификатором.
func New(store repositories.SessionRepository) *Session {
	return &Session{
		id:    uuid.NewString(),
		store: store,
		isNew: true,
	}
}

// Restore восстанавливает сессию, прочитанную из хранилища.
func Restore(id string, data *services.SessionData, store repositories.SessionRepository) *Session {
	s := &Session{id: id, store: store}
	if data != nil {
		s.data = *data
	}
	return s
}

// ID возвращает идентификатор сессии.
func (s *Session) ID() string {
	return s.id
}

// UserID возвращает пользователя сессии, если он записан.
func (s *Session) UserID() (string, bool) {
	if s.destroyed || s.data.UserID == "" {
		return "", false
	}
	return s.data.UserID, true
}

// SetUserID привязывает пользователя к сессии.
func (s *Session) SetUserID(userID string) {
	s.data.UserID = userID
	s.modified = true
	s.destroyed = false
}

// Destroy удаляет сессию из хранилища. Даже при ошибке хранилища сессия
// больше не сохраняется в этом запросе.
func (s *Session) Destroy(ctx context.Context) error {
	s.destroyed = true
	s.modified = false
	s.data = services.SessionData{}
	return s.store.Destroy(ctx, s.id)
}

// IsNew сообщает, что сессия создана в этом запросе.
func (s *Session) IsNew() bool { return s.isNew }

// Modified сообщает, что сессию нужно сохранить.
func (s *Session) Modified() bool { return s.modified }

// Destroyed сообщает, что сессия уничтожена.
func (s *Session) Destroyed() bool { return s.destroyed }

// Data возвращает копию данных сессии.
func (s *Session) Data() *services.SessionData {
	data := s.data
	return &data
}
