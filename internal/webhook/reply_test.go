package webhook

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

const fallback = "I received your message but had trouble generating a response."

func TestResolveReply(t *testing.T) {
	tests := []struct {
		name   string
		body   string
		want   string
		wantOK bool
	}{
		{name: "output field", body: `{"output":"Drink more water"}`, want: "Drink more water", wantOK: true},
		{name: "message field", body: `{"message":"Reduce salt"}`, want: "Reduce salt", wantOK: true},
		{name: "response field", body: `{"response":"120/80 mmHg"}`, want: "120/80 mmHg", wantOK: true},
		{name: "output wins over message", body: `{"message":"second","output":"first"}`, want: "first", wantOK: true},
		{name: "empty output falls through", body: `{"output":"","response":"third"}`, want: "third", wantOK: true},
		{name: "null output falls through", body: `{"output":null,"message":"second"}`, want: "second", wantOK: true},
		{name: "false falls through", body: `{"output":false,"message":"second"}`, want: "second", wantOK: true},
		{name: "zero falls through", body: `{"output":0,"message":"second"}`, want: "second", wantOK: true},
		{name: "number is rendered", body: `{"output":120}`, want: "120", wantOK: true},
		{name: "true is rendered", body: `{"output":true}`, want: "true", wantOK: true},
		{name: "object is rendered raw", body: `{"output":{"systolic":120}}`, want: `{"systolic":120}`, wantOK: true},
		{name: "duplicate key keeps last", body: `{"output":"a","output":"b"}`, want: "b", wantOK: true},
		{name: "duplicate key last empty falls through", body: `{"output":"a","output":"","message":"m"}`, want: "m", wantOK: true},
		{name: "escaped key", body: `{"\u006futput":"escaped"}`, want: "escaped", wantOK: true},
		{name: "utf-8 bom is ignored", body: "\xef\xbb\xbf{\"output\":\"x\"}", want: "x", wantOK: true},
		{name: "bom alone", body: "\xef\xbb\xbf", wantOK: false},
		{name: "no recognized field", body: `{}`, want: fallback, wantOK: true},
		{name: "unrelated fields", body: `{"text":"hello"}`, want: fallback, wantOK: true},
		{name: "top-level array", body: `[{"output":"nested"}]`, want: fallback, wantOK: true},
		{name: "top-level string", body: `"hello"`, want: fallback, wantOK: true},
		{name: "top-level null", body: `null`, wantOK: false},
		{name: "not json", body: `<html>Bad Gateway</html>`, wantOK: false},
		{name: "empty body", body: ``, wantOK: false},
		{name: "truncated json", body: `{"output":"Drink`, wantOK: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ResolveReply([]byte(tt.body), fallback)
			assert.Equal(t, tt.wantOK, ok)
			if tt.wantOK {
				assert.Equal(t, tt.want, got)
			}
		})
	}
}
