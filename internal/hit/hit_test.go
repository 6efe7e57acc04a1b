package hit

import (
	"net/url"
	"sort"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func names(params []Parameter) []string {
	result := make([]string, 0, len(params))
	for _, p := range params {
		result = append(result, p.Name)
	}

	return result
}

func pairsOf(t *testing.T, query string) []string {
	t.Helper()

	var result []string
	for _, chunk := range strings.Split(query, "&") {
		k, v, _ := strings.Cut(chunk, "=")
		key, err := url.QueryUnescape(k)
		require.NoError(t, err)
		value, err := url.QueryUnescape(v)
		require.NoError(t, err)
		result = append(result, key+"="+value)
	}
	sort.Strings(result)

	return result
}

func TestParse_RequiredFirst(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []Parameter
	}{
		{
			name:  "empty string",
			input: "",
			want: []Parameter{
				{ID: 1, Name: "v", Required: true},
				{ID: 2, Name: "t", Required: true},
				{ID: 3, Name: "tid", Required: true},
				{ID: 4, Name: "cid", Required: true},
			},
		},
		{
			name:  "required keys out of order",
			input: "cid=abc&foo=1&tid=UA-1&t=pageview&v=1",
			want: []Parameter{
				{ID: 1, Name: "v", Value: "1", Required: true},
				{ID: 2, Name: "t", Value: "pageview", Required: true},
				{ID: 3, Name: "tid", Value: "UA-1", Required: true},
				{ID: 4, Name: "cid", Value: "abc", Required: true},
				{ID: 5, Name: "foo", Value: "1"},
			},
		},
		{
			name:  "some required missing",
			input: "t=event&ec=video",
			want: []Parameter{
				{ID: 1, Name: "v", Required: true},
				{ID: 2, Name: "t", Value: "event", Required: true},
				{ID: 3, Name: "tid", Required: true},
				{ID: 4, Name: "cid", Required: true},
				{ID: 5, Name: "ec", Value: "video"},
			},
		},
		{
			name:  "full url",
			input: "https://www.google-analytics.com/collect?v=1&t=pageview&dp=%2Fhome",
			want: []Parameter{
				{ID: 1, Name: "v", Value: "1", Required: true},
				{ID: 2, Name: "t", Value: "pageview", Required: true},
				{ID: 3, Name: "tid", Required: true},
				{ID: 4, Name: "cid", Required: true},
				{ID: 5, Name: "dp", Value: "/home"},
			},
		},
		{
			name:  "fragments without value or key",
			input: "v=1&flag&=orphan&&dt=My+Page",
			want: []Parameter{
				{ID: 1, Name: "v", Value: "1", Required: true},
				{ID: 2, Name: "t", Required: true},
				{ID: 3, Name: "tid", Required: true},
				{ID: 4, Name: "cid", Required: true},
				{ID: 5, Name: "flag"},
				{ID: 6, Name: "dt", Value: "My Page"},
			},
		},
		{
			name:  "broken escape kept raw",
			input: "v=1&dl=100%zz",
			want: []Parameter{
				{ID: 1, Name: "v", Value: "1", Required: true},
				{ID: 2, Name: "t", Required: true},
				{ID: 3, Name: "tid", Required: true},
				{ID: 4, Name: "cid", Required: true},
				{ID: 5, Name: "dl", Value: "100%zz"},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Parse(new(Sequence).Next, tt.input)
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("Parse() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestParse_OptionalOrder(t *testing.T) {
	params := Parse(new(Sequence).Next, "v=1&t=pageview&tid=UA-1&cid=abc&foo=1&bar=2")

	assert.Equal(t, []string{"v", "t", "tid", "cid", "foo", "bar"}, names(params))
	for i, p := range params {
		assert.Equal(t, i < 4, p.Required, p.Name)
	}
}

func TestParse_Duplicates(t *testing.T) {
	t.Run("optional duplicates kept", func(t *testing.T) {
		params := Parse(new(Sequence).Next, "cd1=a&cd1=b")

		require.Len(t, params, 6)
		assert.Equal(t, "a", params[4].Value)
		assert.Equal(t, "b", params[5].Value)
	})

	t.Run("first required occurrence wins", func(t *testing.T) {
		params := Parse(new(Sequence).Next, "v=1&dp=%2F&v=2")

		require.Len(t, params, 6)
		assert.Equal(t, "1", params[0].Value)
		assert.Equal(t, "dp", params[4].Name)
		assert.Equal(t, Parameter{ID: 6, Name: "v", Value: "2"}, params[5])
	})
}

func TestParse_IDsContinueSequence(t *testing.T) {
	seq := new(Sequence)

	first := Parse(seq.Next, "v=1&foo=bar")
	second := Parse(seq.Next, "v=1")

	assert.Equal(t, int64(5), first[len(first)-1].ID)
	assert.Equal(t, int64(6), second[0].ID)
	assert.Equal(t, int64(9), seq.Last())
}

func TestSerialize(t *testing.T) {
	tests := []struct {
		name   string
		params []Parameter
		want   string
	}{
		{
			name:   "nil",
			params: nil,
			want:   "",
		},
		{
			name:   "empty values kept",
			params: Parse(new(Sequence).Next, ""),
			want:   "v=&t=&tid=&cid=",
		},
		{
			name: "empty names dropped even when required",
			params: []Parameter{
				{Name: "", Value: "1", Required: true},
				{Name: "t", Value: "pageview", Required: true},
				{Name: "", Value: "x"},
			},
			want: "t=pageview",
		},
		{
			name: "values are escaped, commas are not",
			params: []Parameter{
				{Name: "dt", Value: "Hello World"},
				{Name: "dp", Value: "/a&b"},
				{Name: "pr1va", Value: "red,large"},
			},
			want: "dt=Hello+World&dp=%2Fa%26b&pr1va=red,large",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Serialize(tt.params))
		})
	}
}

func TestRoundTrip(t *testing.T) {
	inputs := []string{
		"v=1&t=pageview&tid=UA-1&cid=abc",
		"v=1&t=pageview&tid=UA-1&cid=abc&foo=1&bar=2",
		"dp=%2Fhome&v=1&t=event&ec=Video&ea=play&tid=UA-12345-1&cid=35009a79-1a05-49d7-b876-2b884d0f825b",
		"v=1&t=pageview&tid=UA-1&cid=abc&cd1=a&cd1=b&dt=A+title&pr1nm=shirt,blue",
		"v=&t=&tid=&cid=&empty=",
	}

	for _, input := range inputs {
		t.Run(input, func(t *testing.T) {
			out := Serialize(Parse(new(Sequence).Next, input))
			assert.Equal(t, pairsOf(t, input), pairsOf(t, out))
		})
	}

	t.Run("required moved to front", func(t *testing.T) {
		out := Serialize(Parse(new(Sequence).Next, "foo=1&cid=abc&v=1&tid=UA-1&t=pageview"))
		assert.Equal(t, "v=1&t=pageview&tid=UA-1&cid=abc&foo=1", out)
	})
}

func TestIsRequired(t *testing.T) {
	assert.True(t, IsRequired("v"))
	assert.True(t, IsRequired("cid"))
	assert.False(t, IsRequired("dp"))
	assert.False(t, IsRequired(""))
}

func TestInitialHit(t *testing.T) {
	assert.Equal(t, DefaultHit, InitialHit(""))
	assert.Equal(t, "v=1&t=event", InitialHit("v=1&t=event"))
}
