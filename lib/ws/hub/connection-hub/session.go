package connectionhub

import (
	"context"
	"time"

	"marketplace-backend/models"

	"github.com/gofiber/contrib/websocket"
	log "github.com/sirupsen/logrus"
)

type clientSession struct {
	conn *websocket.Conn
	role models.UserRole

	// исходящие сообщения, буферизованы
	sendCh chan any
	stop   func()
}

func newSession(conn *websocket.Conn, role models.UserRole) *clientSession {
	ctx, cancelFn := context.WithCancel(context.Background())
	sess := &clientSession{
		stop:   cancelFn,
		conn:   conn,
		role:   role,
		sendCh: make(chan any, 16),
	}
	go sess.startSend(ctx)
	return sess
}

func (s *clientSession) startSend(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			s.close()
			return
		case msg := <-s.sendCh:
			err := s.send(msg)
			if err != nil {
				log.WithError(err).Error("ошибка отправки сообщения")
			}
		}
	}
}

// push не блокирует отправителя, при переполненном буфере сообщение отбрасывается
func (s *clientSession) push(msg any) bool {
	select {
	case s.sendCh <- msg:
		return true
	default:
		return false
	}
}

func (s *clientSession) send(msg any) error {
	if s.conn == nil || s.conn.Conn == nil {
		return nil
	}
	return s.conn.WriteJSON(msg)
}

func (s *clientSession) close() {
	if s.conn == nil || s.conn.Conn == nil {
		return
	}
	err := s.conn.WriteControl(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""), time.Now().Add(time.Millisecond))
	if err != nil {
		log.WithError(err).Debug("cant close")
	}
}
