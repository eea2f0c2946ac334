package server

import (
	"net/http"
	"net/url"

	qrcode "github.com/skip2/go-qrcode"
)

const qrSize = 256

// HandleQR 生成加入房间链接的二维码，方便手机扫码进入局域网对局
// GET /qr?room=arena
func (m *Manager) HandleQR(w http.ResponseWriter, r *http.Request) {
	roomID := m.roomParam(r)
	if len(roomID) > maxRoomIDLen {
		http.Error(w, "room id too long", http.StatusBadRequest)
		return
	}
	link := joinURL(r, roomID)
	png, err := qrcode.Encode(link, qrcode.Medium, qrSize)
	if err != nil {
		Log.Errorw("qr encode", "url", link, "err", err)
		http.Error(w, "qr encode failed", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "no-store")
	_, _ = w.Write(png)
}

// joinURL 按请求的 Host 拼出页面地址
func joinURL(r *http.Request, roomID string) string {
	scheme := "http"
	if r.TLS != nil {
		scheme = "https"
	}
	u := url.URL{
		Scheme:   scheme,
		Host:     r.Host,
		Path:     "/",
		RawQuery: url.Values{"room": {roomID}}.Encode(),
	}
	return u.String()
}
