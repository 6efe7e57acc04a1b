package model

import (
	"encoding/json"

	"hitbuilder/internal/hit"
)

// Status состояние проверки хита.
type Status string

const (
	StatusUnvalidated Status = "UNVALIDATED"
	StatusValidating  Status = "VALIDATING"
	StatusValid       Status = "VALID"
	StatusInvalid     Status = "INVALID"
	StatusSending     Status = "SENDING"
	StatusSent        Status = "SENT"
)

// MessageTypeError тип сообщения, которое привязывается к параметру как ошибка.
const MessageTypeError = "ERROR"

// CodeValueRequired код сообщения об отсутствующем параметре.
const CodeValueRequired = "VALUE_REQUIRED"

// ValidationMessage сообщение сервера проверки.
type ValidationMessage struct {
	Param       string `json:"param"`       // имя параметра, к которому относится сообщение
	Description string `json:"description"` // текст без ссылки на документацию
	Type        string `json:"type"`        // ERROR, WARN, INFO или пусто
	Code        string `json:"code"`        // например VALUE_REQUIRED
}

// IsError сообщает, должно ли сообщение отображаться как ошибка параметра.
func (m ValidationMessage) IsError() bool {
	return m.Type == "" || m.Type == MessageTypeError
}

// ValidationResult ответ сервера проверки вместе с хитом, для которого он получен.
type ValidationResult struct {
	Hit      string              `json:"hit"`
	Response json.RawMessage     `json:"response"`
	Messages []ValidationMessage `json:"messages"`
	Valid    bool                `json:"valid"`
}

// Property ресурс отслеживания, доступный пользователю.
type Property struct {
	ID    string `json:"id" yaml:"id"`       // идентификатор отслеживания, UA-XXXX-Y
	Name  string `json:"name" yaml:"name"`   // название ресурса
	Group string `json:"group" yaml:"group"` // название аккаунта
}

// Patch изменения параметра. Nil поля не меняются.
type Patch struct {
	Name  *string `json:"name,omitempty"`
	Value *string `json:"value,omitempty"`
}

// State сериализуемое состояние HitModel для хранилищ.
type State struct {
	Status     Status              `json:"status"`
	Parameters []hit.Parameter     `json:"parameters"`
	Messages   []ValidationMessage `json:"messages"`
	LastID     int64               `json:"last_id"`
}

// Snapshot представление сессии для API.
type Snapshot struct {
	ID         string              `json:"id"`
	Hit        string              `json:"hit"`
	Status     Status              `json:"status"`
	Parameters []hit.Parameter     `json:"parameters"`
	Messages   []ValidationMessage `json:"messages"`
}
