package wsmodels

const (
	CodeEntityStatusChanged = "entity_status_changed"
	CodeListInvalidated     = "list_invalidated"
)

type ServerMessage struct {
	ToUserID string `json:"-"`
	Time     string `json:"time"`           // время события
	Code     string `json:"code"`           // код события
	Msg      string `json:"msg"`            // текст события
	Kind     string `json:"kind,omitempty"` // вид сущности, для обновления списков
	EntityID string `json:"entity_id,omitempty"`
}
