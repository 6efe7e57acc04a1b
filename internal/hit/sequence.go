package hit

import "sync/atomic"

// IDGenerator возвращает следующий идентификатор параметра.
type IDGenerator func() int64

// Sequence монотонный счетчик идентификаторов. Нулевое значение готово к работе.
type Sequence struct {
	last int64
}

// NewSequence создает счетчик, продолжающий нумерацию после last.
func NewSequence(last int64) *Sequence {
	return &Sequence{last: last}
}

// Next выдает следующий идентификатор.
func (s *Sequence) Next() int64 {
	return atomic.AddInt64(&s.last, 1)
}

// Last последний выданный идентификатор.
func (s *Sequence) Last() int64 {
	return atomic.LoadInt64(&s.last)
}
