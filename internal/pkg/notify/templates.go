package notify

import (
	"bytes"
	"fmt"
	"html/template"
)

// 邮件模板名称
const (
	TemplateWelcome            = "welcome"
	TemplatePasswordReset      = "password_reset"
	TemplatePostModerated      = "post_moderated"
	TemplateOrderPlaced        = "order_placed"
	TemplateOrderStatus        = "order_status"
	TemplateSubmissionReviewed = "submission_reviewed"
)

const layout = `{{define "layout"}}<!DOCTYPE html>
<html><body style="font-family:Georgia,serif;color:#222;max-width:560px;margin:auto">
{{template "content" .}}
<p style="color:#888;font-size:12px">{{.AppName}}</p>
</body></html>{{end}}`

var contents = map[string]string{
	TemplateWelcome: `{{define "content"}}<h2>Welcome, {{.Name}}</h2>
<p>Your account is ready. Join the community and share your writing.</p>{{end}}`,

	TemplatePasswordReset: `{{define "content"}}<h2>Password reset</h2>
<p>Your verification code is <strong>{{.Code}}</strong>. It expires in {{.Minutes}} minutes.</p>
<p>If you did not request a reset you can ignore this email.</p>{{end}}`,

	TemplatePostModerated: `{{define "content"}}<h2>Your post was {{.Decision}}</h2>
{{if .Reason}}<p>Reason: {{.Reason}}</p>{{end}}
<p><a href="{{.Link}}">View post</a></p>{{end}}`,

	TemplateOrderPlaced: `{{define "content"}}<h2>Order {{.OrderNo}} received</h2>
<table>{{range .Items}}<tr><td>{{.Name}} ({{.Variant}}) x{{.Quantity}}</td><td>{{.LineTotal}}</td></tr>{{end}}</table>
<p>Total: {{.Currency}} {{.Total}}</p>{{end}}`,

	TemplateOrderStatus: `{{define "content"}}<h2>Order {{.OrderNo}} update</h2>
<p>Status: {{.Status}}, payment: {{.PaymentStatus}}</p>{{end}}`,

	TemplateSubmissionReviewed: `{{define "content"}}<h2>Your {{.Kind}} for {{.Championship}} was {{.Decision}}</h2>
{{if .Note}}<p>{{.Note}}</p>{{end}}{{end}}`,
}

// Renderer 预编译的邮件模板
type Renderer struct {
	templates map[string]*template.Template
	appName   string
}

func NewRenderer(appName string) (*Renderer, error) {
	r := &Renderer{templates: make(map[string]*template.Template, len(contents)), appName: appName}
	for name, body := range contents {
		t, err := template.New(name).Parse(layout)
		if err != nil {
			return nil, err
		}
		if _, err := t.Parse(body); err != nil {
			return nil, fmt.Errorf("parse template %s: %w", name, err)
		}
		r.templates[name] = t
	}
	return r, nil
}

// Render 渲染模板，data 中自动注入 AppName
func (r *Renderer) Render(name string, data map[string]any) (string, error) {
	t, ok := r.templates[name]
	if !ok {
		return "", fmt.Errorf("unknown template %q", name)
	}
	merged := make(map[string]any, len(data)+1)
	for k, v := range data {
		merged[k] = v
	}
	merged["AppName"] = r.appName

	var buf bytes.Buffer
	if err := t.ExecuteTemplate(&buf, "layout", merged); err != nil {
		return "", err
	}
	return buf.String(), nil
}
