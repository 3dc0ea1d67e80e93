package gateway

import (
	"fmt"
	"net/http"
)

// backendMessages maps the backend's machine-readable error keys to the
// Turkish messages shown in the dashboard. Unknown keys fall through to the
// raw backend message.
var backendMessages = map[string]string{
	"user.not.found":          "Kullanıcı bulunamadı.",
	"user.already.exists":     "Bu kullanıcı zaten kayıtlı.",
	"event.not.found":         "Etkinlik bulunamadı.",
	"competition.not.found":   "Yarışma bulunamadı.",
	"competitor.not.found":    "Yarışmacı bulunamadı.",
	"season.not.found":        "Sezon bulunamadı.",
	"session.not.found":       "Oturum bulunamadı.",
	"announcement.not.found":  "Duyuru bulunamadı.",
	"image.not.found":         "Görsel bulunamadı.",
	"qrcode.not.found":        "QR kod bulunamadı.",
	"validation.failed":       "Gönderilen veriler geçersiz.",
	"unauthorized":            "Bu işlem için yetkiniz yok.",
	"forbidden":               "Bu işlem için yetkiniz yok.",
	"internal.error":          "Sunucuda beklenmeyen bir hata oluştu.",
}

// resolveMessage produces the user-facing message for a backend error
// response. key is the backend's "message" field (may be empty when the body
// was absent or not JSON).
func resolveMessage(status int, key string) string {
	if msg, ok := backendMessages[key]; ok {
		return msg
	}
	if key != "" {
		return key
	}
	return fmt.Sprintf("HTTP %d %s", status, http.StatusText(status))
}
