package web

import (
	"html/template"
	"net/http"
)

// loginErrorMessages maps relayed error codes to the Turkish text shown on
// the login error page. Unknown codes get the generic message plus the code.
var loginErrorMessages = map[string]string{
	"access_denied":         "Giriş isteği reddedildi.",
	"state_mismatch":        "Oturum doğrulama kodu eşleşmedi. Lütfen tekrar deneyin.",
	"no_code":               "Sağlayıcıdan yetkilendirme kodu alınamadı.",
	"token_exchange_failed": "Giriş tamamlanamadı. Lütfen tekrar deneyin.",
}

var loginErrorTmpl = template.Must(template.New("login_error").Parse(`<!DOCTYPE html>
<html lang="tr">
<head><meta charset="utf-8"><title>Skylab Superadmin</title></head>
<body>
<h1>Giriş başarısız</h1>
<p>{{.Message}}</p>
{{if .Code}}<p><code>{{.Code}}</code></p>{{end}}
<p><a href="/login">Tekrar dene</a></p>
</body>
</html>
`))

var indexTmpl = template.Must(template.New("index").Parse(`<!DOCTYPE html>
<html lang="tr">
<head><meta charset="utf-8"><title>Skylab Superadmin</title></head>
<body>
<h1>Skylab Superadmin</h1>
<ul>
{{range .Resources}}<li><a href="/api/{{.}}">{{.}}</a></li>
{{end}}</ul>
<p><a href="/logout">Çıkış yap</a></p>
</body>
</html>
`))

func renderLoginError(w http.ResponseWriter, code string) {
	msg, known := loginErrorMessages[code]
	if !known {
		msg = "Giriş sırasında bir hata oluştu."
	}
	data := struct {
		Message string
		Code    string
	}{Message: msg}
	if !known {
		data.Code = code
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	loginErrorTmpl.Execute(w, data)
}

func renderIndex(w http.ResponseWriter) {
	resources := []string{
		"users", "events", "competitions", "competitors", "seasons",
		"sessions", "announcements", "images", "qrcodes",
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	indexTmpl.Execute(w, struct{ Resources []string }{resources})
}
