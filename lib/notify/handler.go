package notifyhandler

import (
	"fmt"
	"runtime/debug"
	"time"

	"marketplace-backend/db"
	listcache "marketplace-backend/lib/approval/list-cache"
	"marketplace-backend/lib/smtp"
	usersstore "marketplace-backend/lib/users/store"
	connectionhub "marketplace-backend/lib/ws/hub/connection-hub"
	"marketplace-backend/models"
	wsmodels "marketplace-backend/models/ws"

	log "github.com/sirupsen/logrus"
)

// Provider уведомления и сброс кешей после изменений.
// Ошибки доставки только логируются и не влияют на вызывающего
type Provider interface {
	EntityTransitioned(event models.TransitionEvent)
	EntitySubmitted(kind models.EntityKind, entityID, ownerID string)
	AvailabilityChanged(kind models.EntityKind, entityID string)
}

var Instance Provider

func NewHandler() {
	Instance = impl{
		listCache:  listcache.Instance,
		hub:        connectionhub.Instance,
		mail:       smtp.Instance,
		usersStore: usersstore.NewInstance(db.DB),
		async:      goAsync,
	}
}

type impl struct {
	listCache  listcache.Provider
	hub        connectionhub.Provider
	mail       smtp.Provider
	usersStore usersstore.Provider
	async      func(name string, fn func())
}

func goAsync(name string, fn func()) {
	go func() {
		defer func() {
			if r := recover(); r != nil {
				log.
					WithField("job", name).
					WithField("panic_stack", string(debug.Stack())).
					Errorf("panic: (%v)", r)
			}
		}()
		fn()
	}()
}

func (i impl) EntityTransitioned(event models.TransitionEvent) {
	// сброс проекций синхронно, чтобы следующее чтение видело новый статус
	i.listCache.Invalidate(event.Kind)
	i.async("entity_transitioned", func() {
		i.pushListInvalidated(event.Kind, event.EntityID)
		if event.OwnerID == "" {
			return
		}
		text := fmt.Sprintf("%v: статус изменен с \"%v\" на \"%v\"", event.Kind.ToHuman(), event.From.ToHuman(), event.To.ToHuman())
		if event.Note != "" {
			text = fmt.Sprintf("%v. Комментарий: %v", text, event.Note)
		}
		i.hub.SendMessage(wsmodels.ServerMessage{
			ToUserID: event.OwnerID,
			Time:     event.At.Format("02.01.2006 15:04:05"),
			Code:     wsmodels.CodeEntityStatusChanged,
			Msg:      text,
			Kind:     string(event.Kind),
			EntityID: event.EntityID,
		})
		i.sendMail(event.OwnerID, "изменение статуса", text)
	})
}

func (i impl) EntitySubmitted(kind models.EntityKind, entityID, ownerID string) {
	i.listCache.Invalidate(kind)
	i.async("entity_submitted", func() {
		i.pushListInvalidated(kind, entityID)
	})
}

func (i impl) AvailabilityChanged(kind models.EntityKind, entityID string) {
	i.listCache.Invalidate(kind)
	i.async("availability_changed", func() {
		i.pushListInvalidated(kind, entityID)
	})
}

func (i impl) pushListInvalidated(kind models.EntityKind, entityID string) {
	i.hub.Broadcast(func(role models.UserRole) bool {
		return role.IsStaff()
	}, wsmodels.ServerMessage{
		Time:     time.Now().Format("02.01.2006 15:04:05"),
		Code:     wsmodels.CodeListInvalidated,
		Msg:      fmt.Sprintf("Обновлен список: %v", kind.ToHuman()),
		Kind:     string(kind),
		EntityID: entityID,
	})
}

func (i impl) sendMail(userID, subject, text string) {
	logger := log.WithField("user_id", userID)
	user, err := i.usersStore.GetByID(userID)
	if err != nil {
		logger.WithError(err).Error("ошибка получения пользователя для уведомления")
		return
	}
	if user == nil || user.Email == "" {
		return
	}
	err = i.mail.SendEMail(user.Email, subject, text)
	if err != nil {
		logger.WithError(err).Warn("уведомление на почту не отправлено")
	}
}
