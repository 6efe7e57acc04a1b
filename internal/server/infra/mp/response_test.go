package mp

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const universalResponse = `{
  "hitParsingResult": [ {
    "valid": false,
    "parserMessage": [ {
      "messageType": "ERROR",
      "description": "A value is required for parameter 'tid'. Please see http://goo.gl/a8d4RP#tid for details.",
      "messageCode": "VALUE_REQUIRED",
      "parameter": "tid"
    }, {
      "messageType": "INFO",
      "description": "IP Address from this hit was anonymized.",
      "messageCode": "VALUE_MODIFIED",
      "parameter": "uip"
    } ],
    "hit": "/debug/collect?v=1&t=pageview"
  } ],
  "parserMessage": [ {
    "messageType": "INFO",
    "description": "Found 1 hit in the request."
  } ]
}`

func TestParseResponse(t *testing.T) {
	t.Run("universal analytics", func(t *testing.T) {
		result := ParseResponse("v=1&t=pageview", []byte(universalResponse))

		assert.False(t, result.Valid)
		require.Len(t, result.Messages, 2)
		assert.Equal(t, "tid", result.Messages[0].Param)
		assert.Equal(t, "A value is required for parameter 'tid'.", result.Messages[0].Description)
		assert.Equal(t, "VALUE_REQUIRED", result.Messages[0].Code)
		assert.True(t, result.Messages[0].IsError())
		assert.False(t, result.Messages[1].IsError())
	})

	t.Run("universal analytics valid", func(t *testing.T) {
		result := ParseResponse("v=1", []byte(`{"hitParsingResult":[{"valid":true,"parserMessage":[]}]}`))

		assert.True(t, result.Valid)
		assert.Empty(t, result.Messages)
	})

	t.Run("validation messages", func(t *testing.T) {
		result := ParseResponse("v=1", []byte(`{"validationMessages":[
			{"fieldPath":"cid","description":"bad client id","validationCode":"VALUE_INVALID"}]}`))

		assert.False(t, result.Valid)
		require.Len(t, result.Messages, 1)
		assert.Equal(t, "cid", result.Messages[0].Param)
		assert.Equal(t, "VALUE_INVALID", result.Messages[0].Code)
	})

	t.Run("empty object", func(t *testing.T) {
		result := ParseResponse("v=1", []byte(`{}`))

		assert.True(t, result.Valid)
		assert.NotNil(t, result.Messages)
	})
}
