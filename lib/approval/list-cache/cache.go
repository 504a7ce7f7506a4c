package listcache

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"marketplace-backend/models"
	dbmodels "marketplace-backend/models/db"

	"github.com/patrickmn/go-cache"
)

// Page закешированная страница списка
type Page struct {
	List     []dbmodels.ApprovableRecord
	RowCount int64
}

// Provider кеш проекций списков (на рассмотрении, одобренные и тд).
// Проекции не обновляются инкрементально, а сбрасываются после каждого изменения
type Provider interface {
	// Generation текущее поколение проекций вида, берется до чтения из БД
	Generation(kind models.EntityKind) uint64
	Get(kind models.EntityKind, generation uint64, status models.ApprovalStatus, page, limit int) (Page, bool)
	// Set страница устаревшего поколения сохраняется под старым ключом и больше не читается
	Set(kind models.EntityKind, generation uint64, status models.ApprovalStatus, page, limit int, value Page)
	Invalidate(kind models.EntityKind)
}

var Instance Provider

func NewHandler(ttl time.Duration) {
	Instance = NewInstance(ttl)
}

func NewInstance(ttl time.Duration) Provider {
	return &impl{
		cache:       cache.New(ttl, 2*ttl),
		generations: map[models.EntityKind]uint64{},
	}
}

type impl struct {
	cache       *cache.Cache
	mu          sync.RWMutex
	generations map[models.EntityKind]uint64
}

func kindPrefix(kind models.EntityKind) string {
	return string(kind) + "|"
}

func key(kind models.EntityKind, generation uint64, status models.ApprovalStatus, page, limit int) string {
	return fmt.Sprintf("%s%d|%s|%d|%d", kindPrefix(kind), generation, status, page, limit)
}

func (i *impl) Generation(kind models.EntityKind) uint64 {
	i.mu.RLock()
	defer i.mu.RUnlock()
	return i.generations[kind]
}

func (i *impl) Get(kind models.EntityKind, generation uint64, status models.ApprovalStatus, page, limit int) (Page, bool) {
	value, ok := i.cache.Get(key(kind, generation, status, page, limit))
	if !ok {
		return Page{}, false
	}
	result, ok := value.(Page)
	return result, ok
}

func (i *impl) Set(kind models.EntityKind, generation uint64, status models.ApprovalStatus, page, limit int, value Page) {
	if generation != i.Generation(kind) {
		return
	}
	i.cache.SetDefault(key(kind, generation, status, page, limit), value)
}

func (i *impl) Invalidate(kind models.EntityKind) {
	i.mu.Lock()
	i.generations[kind]++
	i.mu.Unlock()
	prefix := kindPrefix(kind)
	for k := range i.cache.Items() {
		if strings.HasPrefix(k, prefix) {
			i.cache.Delete(k)
		}
	}
}
