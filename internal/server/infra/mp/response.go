package mp

import (
	"encoding/json"
	"regexp"
	"strings"

	"github.com/tidwall/gjson"

	"hitbuilder/internal/server/core/model"
)

var docsLink = regexp.MustCompile(`Please see http://goo\.gl/a8d4RP#\w+ for details\.$`)

// ParseResponse читает сообщения из ответа сервера проверки.
//
// Поддерживаются ответ Universal Analytics (hitParsingResult[0].parserMessage)
// и ответы со списком ошибок по полям (errors[] или validationMessages[] с fieldPath).
func ParseResponse(payload string, body []byte) model.ValidationResult {
	result := model.ValidationResult{
		Hit:      payload,
		Response: json.RawMessage(body),
		Messages: []model.ValidationMessage{},
	}

	doc := gjson.ParseBytes(body)

	if first := doc.Get("hitParsingResult.0"); first.Exists() {
		first.Get("parserMessage").ForEach(func(_, m gjson.Result) bool {
			result.Messages = append(result.Messages, model.ValidationMessage{
				Param:       m.Get("parameter").String(),
				Description: formatDescription(m.Get("description").String()),
				Type:        m.Get("messageType").String(),
				Code:        m.Get("messageCode").String(),
			})
			return true
		})
		result.Valid = first.Get("valid").Bool()

		return result
	}

	for _, path := range []string{"errors", "validationMessages"} {
		doc.Get(path).ForEach(func(_, m gjson.Result) bool {
			result.Messages = append(result.Messages, model.ValidationMessage{
				Param:       m.Get("fieldPath").String(),
				Description: formatDescription(m.Get("description").String()),
				Type:        m.Get("messageType").String(),
				Code:        m.Get("validationCode").String(),
			})
			return true
		})
	}

	result.Valid = true
	for _, m := range result.Messages {
		if m.IsError() {
			result.Valid = false
			break
		}
	}

	return result
}

func formatDescription(description string) string {
	return strings.TrimSpace(docsLink.ReplaceAllString(description, ""))
}
