package hit

// DefaultHit используется, когда в запросе нет строки хита.
const DefaultHit = "v=1&t=pageview"

// Types известные типы хитов для подсказок значения параметра t.
var Types = []string{
	"pageview",
	"screenview",
	"event",
	"transaction",
	"item",
	"social",
	"exception",
	"timing",
}

// InitialHit возвращает query или DefaultHit, если query пуст.
func InitialHit(query string) string {
	if query == "" {
		return DefaultHit
	}

	return query
}
