package connectionhub

import (
	"sync"

	"marketplace-backend/models"
	wsmodels "marketplace-backend/models/ws"

	"github.com/gofiber/contrib/websocket"
	log "github.com/sirupsen/logrus"
)

type Provider interface {
	AddClient(userID string, role models.UserRole, conn *websocket.Conn)
	DeleteClient(userID string)
	SendMessage(msg wsmodels.ServerMessage)
	// Broadcast отправка всем подключенным пользователям, чья роль подходит под фильтр
	Broadcast(filter func(role models.UserRole) bool, msg wsmodels.ServerMessage)
	IsConnected(userID string) bool
}

var Instance Provider

func Init() {
	Instance = &impl{
		clients: map[string]*clientSession{},
	}
}

type impl struct {
	mu      sync.RWMutex
	clients map[string]*clientSession //map[userID]
}

func (i *impl) DeleteClient(userID string) {
	i.mu.Lock()
	sess, ok := i.clients[userID]
	delete(i.clients, userID)
	i.mu.Unlock()
	if ok {
		sess.stop()
	}
}

func (i *impl) AddClient(userID string, role models.UserRole, conn *websocket.Conn) {
	i.mu.Lock()
	oldSess, ok := i.clients[userID]
	i.clients[userID] = newSession(conn, role)
	i.mu.Unlock()
	if ok {
		oldSess.stop()
	}
}

func (i *impl) SendMessage(msg wsmodels.ServerMessage) {
	i.mu.RLock()
	sess, ok := i.clients[msg.ToUserID]
	i.mu.RUnlock()
	if !ok {
		return
	}
	if !sess.push(msg) {
		log.WithField("user_id", msg.ToUserID).Warn("очередь отправки переполнена, сообщение пропущено")
	}
}

func (i *impl) Broadcast(filter func(role models.UserRole) bool, msg wsmodels.ServerMessage) {
	i.mu.RLock()
	defer i.mu.RUnlock()
	for userID, sess := range i.clients {
		if filter != nil && !filter(sess.role) {
			continue
		}
		msg.ToUserID = userID
		if !sess.push(msg) {
			log.WithField("user_id", userID).Warn("очередь отправки переполнена, сообщение пропущено")
		}
	}
}

func (i *impl) IsConnected(userID string) bool {
	i.mu.RLock()
	defer i.mu.RUnlock()
	sess, ok := i.clients[userID]
	if !ok || sess.conn == nil || sess.conn.Conn == nil {
		return false
	}
	return true
}
