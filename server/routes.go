package server

import "net/http"

// Routes 组装全部 HTTP 入口；webDir 为静态客户端目录
func (m *Manager) Routes(webDir string) http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", m.HandleWS)
	// 前后端分离：将 / 映射到 web 目录的静态资源
	mux.Handle("/", http.FileServer(http.Dir(webDir)))
	// 管理与监控接口
	mux.HandleFunc("/admin/config", m.HandleAdminConfig)
	mux.HandleFunc("/admin/rooms", m.HandleRooms)
	mux.HandleFunc("/metrics", m.HandleMetrics)
	mux.HandleFunc("/qr", m.HandleQR)
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("ok"))
	})
	return mux
}
