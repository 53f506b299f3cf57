package mail

import (
	"bytes"
	"fmt"
	"html/template"
	"strings"
	"sync"

	"github.com/microcosm-cc/bluemonday"
)

var bodyPolicy = sync.OnceValue(func() *bluemonday.Policy {
	policy := bluemonday.UGCPolicy()
	policy.RequireNoFollowOnLinks(true)
	policy.AllowURLSchemes("http", "https", "mailto")
	policy.AddTargetBlankToFullyQualifiedLinks(true)
	policy.AddSpaceWhenStrippingTag(true)
	return policy
})

// SanitizeBody strips everything the UGC policy does not allow.
func SanitizeBody(body string) string {
	trimmed := strings.TrimSpace(body)
	if trimmed == "" {
		return ""
	}
	return strings.TrimSpace(bodyPolicy().Sanitize(trimmed))
}

var layout = template.Must(template.New("bulk").Parse(`<!DOCTYPE html>
<html>
<head><meta charset="utf-8"><title>{{.Subject}}</title></head>
<body style="font-family:Arial,Helvetica,sans-serif;line-height:1.5;color:#222">
<div style="max-width:600px;margin:0 auto;padding:24px">
{{.Body}}
</div>
</body>
</html>`))

// Render wraps an already sanitised body in the mail layout.
func Render(subject, sanitizedBody string) (string, error) {
	var buf bytes.Buffer
	err := layout.Execute(&buf, struct {
		Subject string
		Body    template.HTML
	}{
		Subject: subject,
		Body:    template.HTML(sanitizedBody),
	})
	if err != nil {
		return "", fmt.Errorf("render email: %w", err)
	}
	return buf.String(), nil
}
