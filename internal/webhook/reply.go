package webhook

import (
	"bytes"
	"strconv"

	"github.com/tidwall/gjson"
)

// replyFields are checked in order; the first truthy value is the reply.
var replyFields = []string{"output", "message", "response"}

var utf8BOM = []byte("\xef\xbb\xbf")

// ResolveReply extracts the reply text from a webhook response body.
// ok is false when body is not usable JSON. When no reply field holds a
// truthy value, fallback is returned.
func ResolveReply(body []byte, fallback string) (reply string, ok bool) {
	body = bytes.TrimPrefix(body, utf8BOM)
	if !gjson.ValidBytes(body) {
		return "", false
	}

	doc := gjson.ParseBytes(body)
	if doc.Type == gjson.Null {
		return "", false
	}
	if !doc.IsObject() {
		return fallback, true
	}

	fields := lastValues(doc)
	for _, field := range replyFields {
		if text, found := truthy(fields[field]); found {
			return text, true
		}
	}
	return fallback, true
}

// lastValues maps each reply field to its value. A repeated key keeps its
// last occurrence.
func lastValues(doc gjson.Result) map[string]gjson.Result {
	out := make(map[string]gjson.Result, len(replyFields))
	doc.ForEach(func(key, value gjson.Result) bool {
		for _, field := range replyFields {
			if key.Str == field {
				out[field] = value
			}
		}
		return true
	})
	return out
}

// truthy renders v as display text when it counts as a present value:
// a non-empty string, a non-zero number, true, or any object or array.
func truthy(v gjson.Result) (string, bool) {
	switch v.Type {
	case gjson.String:
		return v.Str, v.Str != ""
	case gjson.Number:
		if v.Num == 0 {
			return "", false
		}
		return strconv.FormatFloat(v.Num, 'f', -1, 64), true
	case gjson.True:
		return "true", true
	case gjson.JSON:
		return v.Raw, true
	default:
		return "", false
	}
}
