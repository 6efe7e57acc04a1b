package model

import (
	"errors"
	"slices"

	"hitbuilder/internal/hit"
)

// ErrNotSendable возвращается при попытке отправить хит, который не прошел проверку.
var ErrNotSendable = errors.New("hit is not validated")

// HitModel упорядоченный список параметров хита и результат последней проверки.
//
// Все команды возвращают новый снимок и не меняют исходный. Счетчик
// идентификаторов принадлежит модели: идентификаторы не переиспользуются,
// а разные модели не влияют друг на друга.
type HitModel struct {
	seq      *hit.Sequence
	status   Status
	params   []hit.Parameter
	messages []ValidationMessage
}

// New создает модель из строки хита.
func New(raw string) HitModel {
	seq := new(hit.Sequence)

	return HitModel{
		seq:    seq,
		status: StatusUnvalidated,
		params: hit.Parse(seq.Next, raw),
	}
}

// FromState восстанавливает модель из хранилища.
func FromState(st State) HitModel {
	last := st.LastID
	for _, p := range st.Parameters {
		last = max(last, p.ID)
	}

	seq := hit.NewSequence(last)

	m := HitModel{
		seq:      seq,
		status:   st.Status,
		params:   slices.Clone(st.Parameters),
		messages: slices.Clone(st.Messages),
	}

	if m.status == "" {
		m.status = StatusUnvalidated
	}

	if !hasRequiredPrefix(m.params) {
		m.params = hit.Parse(seq.Next, hit.Serialize(m.params))
	}

	return m
}

func hasRequiredPrefix(params []hit.Parameter) bool {
	if len(params) < len(hit.RequiredParams) {
		return false
	}

	for i, name := range hit.RequiredParams {
		if params[i].Name != name || !params[i].Required {
			return false
		}
	}

	for _, p := range params[len(hit.RequiredParams):] {
		if p.Required {
			return false
		}
	}

	return true
}

// State возвращает состояние для сохранения.
func (m HitModel) State() State {
	return State{
		Status:     m.status,
		Parameters: m.Parameters(),
		Messages:   m.Messages(),
		LastID:     m.seq.Last(),
	}
}

// Snapshot возвращает представление модели для API.
func (m HitModel) Snapshot(id string) Snapshot {
	return Snapshot{
		ID:         id,
		Hit:        m.Hit(),
		Status:     m.status,
		Parameters: m.Parameters(),
		Messages:   m.Messages(),
	}
}

func (m HitModel) Status() Status {
	return m.status
}

func (m HitModel) Parameters() []hit.Parameter {
	return slices.Clone(m.params)
}

func (m HitModel) Messages() []ValidationMessage {
	if m.messages == nil {
		return []ValidationMessage{}
	}

	return slices.Clone(m.messages)
}

// Hit текущая полезная нагрузка.
func (m HitModel) Hit() string {
	return hit.Serialize(m.params)
}

func (m HitModel) HasParameter(name string) bool {
	_, ok := m.ParameterByName(name)
	return ok
}

func (m HitModel) Parameter(id int64) (hit.Parameter, bool) {
	i := m.index(id)
	if i < 0 {
		return hit.Parameter{}, false
	}

	return m.params[i], true
}

// ParameterByName возвращает первый параметр с указанным именем.
func (m HitModel) ParameterByName(name string) (hit.Parameter, bool) {
	for _, p := range m.params {
		if p.Name == name {
			return p, true
		}
	}

	return hit.Parameter{}, false
}

func (m HitModel) index(id int64) int {
	return slices.IndexFunc(m.params, func(p hit.Parameter) bool {
		return p.ID == id
	})
}

func (m HitModel) clone() HitModel {
	m.params = slices.Clone(m.params)
	m.messages = slices.Clone(m.messages)

	return m
}

// edited сбрасывает результат проверки после изменения параметров.
func (m HitModel) edited() HitModel {
	m.status = StatusUnvalidated
	m.messages = nil

	return m
}

// AddParameter добавляет пустой необязательный параметр.
func (m HitModel) AddParameter() HitModel {
	return m.AddNamedParameter("")
}

// AddNamedParameter добавляет необязательный параметр с заданным именем и пустым значением.
func (m HitModel) AddNamedParameter(name string) HitModel {
	m = m.clone()
	m.params = append(m.params, hit.Parameter{ID: m.seq.Next(), Name: name})

	return m.edited()
}

// RemoveParameter удаляет параметр. Обязательные параметры не удаляются.
func (m HitModel) RemoveParameter(id int64) HitModel {
	i := m.index(id)
	if i < 0 || m.params[i].Required {
		return m
	}

	m = m.clone()
	m.params = slices.Delete(m.params, i, i+1)

	return m.edited()
}

// UpdateParameter применяет patch к параметру и сбрасывает его ошибку.
// Имя обязательного параметра не меняется.
func (m HitModel) UpdateParameter(id int64, patch Patch) HitModel {
	i := m.index(id)
	if i < 0 {
		return m
	}

	m = m.clone()
	p := &m.params[i]

	if patch.Name != nil && !p.Required {
		p.Name = *patch.Name
	}

	if patch.Value != nil {
		p.Value = *patch.Value
	}

	p.Error = ""

	return m.edited()
}

// ReplaceFromString разбирает новую строку хита, если она отличается от текущей.
func (m HitModel) ReplaceFromString(raw string) HitModel {
	if raw == m.Hit() {
		return m
	}

	m = m.clone()
	m.params = hit.Parse(m.seq.Next, raw)

	return m.edited()
}

func (m HitModel) clearErrors() HitModel {
	for i := range m.params {
		m.params[i].Error = ""
	}

	return m
}

// BeginValidation сбрасывает ошибки параметров и возвращает хит, который нужно проверить.
func (m HitModel) BeginValidation() (HitModel, string) {
	m = m.clone().clearErrors()
	m.status = StatusValidating
	m.messages = nil

	return m, m.Hit()
}

// AbortValidation возвращает модель в непроверенное состояние, например при сетевой ошибке.
func (m HitModel) AbortValidation() HitModel {
	if m.status != StatusValidating {
		return m
	}

	m.status = StatusUnvalidated

	return m
}

// ApplyValidation раскладывает ошибки по параметрам с совпадающими именами.
// Результат для устаревшего хита отбрасывается, второй результат тогда false.
func (m HitModel) ApplyValidation(res ValidationResult) (HitModel, bool) {
	if res.Hit != m.Hit() {
		return m, false
	}

	m = m.clone().clearErrors()

	for _, msg := range res.Messages {
		if msg.Param == "" || !msg.IsError() {
			continue
		}

		for i := range m.params {
			if m.params[i].Name == msg.Param && m.params[i].Error == "" {
				m.params[i].Error = msg.Description
			}
		}
	}

	m.messages = slices.Clone(res.Messages)
	m.status = StatusInvalid
	if res.Valid {
		m.status = StatusValid
	}

	return m, true
}

// BeginSend переводит проверенную модель в состояние отправки.
func (m HitModel) BeginSend() (HitModel, string, error) {
	if m.status != StatusValid && m.status != StatusSent {
		return m, "", ErrNotSendable
	}

	m.status = StatusSending

	return m, m.Hit(), nil
}

// FinishSend фиксирует результат отправки хита payload.
func (m HitModel) FinishSend(payload string, sent bool) HitModel {
	if m.status != StatusSending || payload != m.Hit() {
		return m
	}

	m.status = StatusValid
	if sent {
		m.status = StatusSent
	}

	return m
}
