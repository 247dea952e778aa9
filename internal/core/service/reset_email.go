package service

import (
	"bytes"
	"html/template"
)

var resetEmailTemplate = template.Must(template.New("reset").Parse(`<!DOCTYPE html>
<html>
  <body style="font-family: Arial, sans-serif; color: #333;">
    <h2>Password Recovery</h2>
    <p>Hi {{.Name}},</p>
    <p>You requested a password reset. The link below is valid for 30 minutes.</p>
    <p><a href="{{.URL}}" style="background:#1f6feb;color:#fff;padding:10px 16px;border-radius:4px;text-decoration:none;">Reset password</a></p>
    <p>If the button does not work, paste this URL into your browser:<br>{{.URL}}</p>
    <p>If you did not request this, you can ignore this email.</p>
  </body>
</html>`))

func renderResetEmail(name, url string) (string, error) {
	var buf bytes.Buffer
	if err := resetEmailTemplate.Execute(&buf, struct{ Name, URL string }{name, url}); err != nil {
		return "", err
	}
	return buf.String(), nil
}
