// Package hit разбирает и собирает полезную нагрузку хита Measurement Protocol.
//
// Хит представляется упорядоченным списком параметров. Четыре обязательных
// параметра (v, t, tid, cid) всегда идут первыми и в фиксированном порядке,
// остальные параметры сохраняют порядок, в котором встретились в исходной строке.
//
// Разбор тотален: некорректные фрагменты не приводят к ошибке, а нормализуются.
package hit

import (
	"net/url"
	"strings"
)

// Имена обязательных параметров.
const (
	ParamVersion  = "v"
	ParamHitType  = "t"
	ParamTracking = "tid"
	ParamClientID = "cid"
)

// RequiredParams обязательные параметры в порядке сериализации.
var RequiredParams = [...]string{ParamVersion, ParamHitType, ParamTracking, ParamClientID}

// Parameter одна пара ключ/значение хита.
type Parameter struct {
	Name     string `json:"name"`
	Value    string `json:"value"`
	Error    string `json:"error,omitempty"`
	ID       int64  `json:"id"`
	Required bool   `json:"required"`
}

// IsRequired сообщает, является ли имя одним из обязательных параметров.
func IsRequired(name string) bool {
	for _, r := range RequiredParams {
		if r == name {
			return true
		}
	}

	return false
}

type pair struct {
	key   string
	value string
}

// Parse разбирает полезную нагрузку хита или полный URL в список параметров.
// Сначала идут четыре обязательных параметра, затем остальные пары в исходном порядке.
// Если обязательный ключ встречается несколько раз, первое вхождение занимает
// обязательную позицию, а остальные остаются необязательными параметрами.
func Parse(next IDGenerator, raw string) []Parameter {
	if i := strings.IndexByte(raw, '?'); i > -1 {
		raw = raw[i+1:]
	}

	pairs := splitPairs(raw)

	params := make([]Parameter, 0, len(RequiredParams)+len(pairs))
	for _, name := range RequiredParams {
		p := Parameter{ID: next(), Name: name, Required: true}

		for i := range pairs {
			if pairs[i].key == name {
				p.Value = pairs[i].value
				pairs = append(pairs[:i], pairs[i+1:]...)
				break
			}
		}

		params = append(params, p)
	}

	for _, kv := range pairs {
		params = append(params, Parameter{
			ID:    next(),
			Name:  kv.key,
			Value: kv.value,
		})
	}

	return params
}

func splitPairs(raw string) []pair {
	if raw == "" {
		return nil
	}

	chunks := strings.Split(raw, "&")
	pairs := make([]pair, 0, len(chunks))

	for _, chunk := range chunks {
		key, value, _ := strings.Cut(chunk, "=")

		key = unescape(key)
		if key == "" {
			continue
		}

		pairs = append(pairs, pair{key: key, value: unescape(value)})
	}

	return pairs
}

// unescape декодирует s. При некорректном экранировании возвращается исходный текст.
func unescape(s string) string {
	decoded, err := url.QueryUnescape(s)
	if err != nil {
		return s
	}

	return decoded
}

// Serialize собирает параметры в строку запроса.
// Параметры без имени пропускаются, пустые значения сохраняются.
func Serialize(params []Parameter) string {
	var sb strings.Builder

	for _, p := range params {
		if p.Name == "" {
			continue
		}

		if sb.Len() > 0 {
			sb.WriteByte('&')
		}

		sb.WriteString(escape(p.Name))
		sb.WriteByte('=')
		sb.WriteString(escape(p.Value))
	}

	return sb.String()
}

// escape экранирует значение, оставляя запятые как есть.
func escape(s string) string {
	return strings.ReplaceAll(url.QueryEscape(s), "%2C", ",")
}
