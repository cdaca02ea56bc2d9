package apiserver

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"dxip_harvester/internal/extract"
	"dxip_harvester/internal/harvest"
	"dxip_harvester/internal/logger"
	"dxip_harvester/internal/store"
)

// APIServer API服务器
type APIServer struct {
	recordStore store.RecordStore
	label       string
	token       string
	port        int
	server      *http.Server
}

// RecordResponse 记录响应结构
type RecordResponse struct {
	Code    int              `json:"code"`
	Message string           `json:"message"`
	Data    []extract.Record `json:"data"`
	Count   int              `json:"count"`
	Total   int              `json:"total"`
}

// ErrorResponse 错误响应结构
type ErrorResponse struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// NewAPIServer 创建新的API服务器
func NewAPIServer(recordStore store.RecordStore, label, token string, port int) *APIServer {
	return &APIServer{
		recordStore: recordStore,
		label:       label,
		token:       token,
		port:        port,
	}
}

// Handler 组装路由和中间件
func (s *APIServer) Handler() http.Handler {
	mux := http.NewServeMux()

	// 注册路由
	mux.HandleFunc("/api/records", s.handleGetRecords)
	mux.HandleFunc("/api/records/text", s.handleGetRecordsText)
	mux.HandleFunc("/api/status", s.handleGetStatus)

	return s.loggingMiddleware(s.authMiddleware(mux))
}

// Start 启动API服务器
func (s *APIServer) Start() error {
	s.server = &http.Server{
		Addr:         fmt.Sprintf(":%d", s.port),
		Handler:      s.Handler(),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	}

	logger.Info("API服务器启动在端口 %d", s.port)
	return s.server.ListenAndServe()
}

// Stop 停止API服务器
func (s *APIServer) Stop() error {
	if s.server != nil {
		return s.server.Close()
	}
	return nil
}

// authMiddleware 认证中间件
func (s *APIServer) authMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := r.URL.Query().Get("token")
		if token == "" {
			s.writeError(w, 401, "缺少token参数")
			return
		}

		if token != s.token {
			s.writeError(w, 401, "token无效")
			return
		}

		next.ServeHTTP(w, r)
	})
}

// loggingMiddleware 日志中间件
func (s *APIServer) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		logger.Debug("API请求: %s %s - %v", r.Method, r.URL.Path, time.Since(start))
	})
}

// handleGetRecords 获取排名记录接口
func (s *APIServer) handleGetRecords(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.writeError(w, 405, "只支持GET方法")
		return
	}

	countStr := r.URL.Query().Get("count")

	// 默认值
	count := 10
	if countStr != "" {
		var err error
		count, err = strconv.Atoi(countStr)
		if err != nil || count <= 0 || count > 100 {
			s.writeError(w, 400, "count参数无效，必须是1-100之间的整数")
			return
		}
	}

	total, err := s.recordStore.Len()
	if err != nil {
		s.writeError(w, 500, "获取IP池状态失败")
		return
	}

	if total == 0 {
		s.writeJSON(w, RecordResponse{
			Code:    200,
			Message: "成功，但IP池为空",
			Data:    []extract.Record{},
			Count:   0,
			Total:   0,
		})
		return
	}

	records, err := s.recordStore.GetAll()
	if err != nil {
		s.writeError(w, 500, "获取IP池记录失败")
		return
	}

	// 记录已按速度降序排列，截取前count条
	if count > len(records) {
		count = len(records)
	}

	s.writeJSON(w, RecordResponse{
		Code:    200,
		Message: "获取成功",
		Data:    records[:count],
		Count:   count,
		Total:   total,
	})
}

// handleGetRecordsText 以结果文件的文本格式返回全部记录
func (s *APIServer) handleGetRecordsText(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.writeError(w, 405, "只支持GET方法")
		return
	}

	records, err := s.recordStore.GetAll()
	if err != nil {
		s.writeError(w, 500, "获取IP池记录失败")
		return
	}

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	for _, line := range extract.FormatRecords(records, s.label) {
		fmt.Fprintln(w, line)
	}
}

// handleGetStatus 获取状态接口
func (s *APIServer) handleGetStatus(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.writeError(w, 405, "只支持GET方法")
		return
	}

	total, err := s.recordStore.Len()
	if err != nil {
		s.writeError(w, 500, "获取IP池状态失败")
		return
	}

	lastHarvest := ""
	if t := harvest.LastRun(); !t.IsZero() {
		lastHarvest = t.Format("2006-01-02 15:04:05")
	}

	status := map[string]interface{}{
		"code":         200,
		"message":      "状态正常",
		"total":        total,
		"last_harvest": lastHarvest,
		"timestamp":    time.Now().Unix(),
	}

	s.writeJSON(w, status)
}

// writeJSON 写入JSON响应
func (s *APIServer) writeJSON(w http.ResponseWriter, data interface{}) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(data)
}

// writeError 写入错误响应
func (s *APIServer) writeError(w http.ResponseWriter, code int, message string) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(ErrorResponse{
		Code:    code,
		Message: message,
	})
}
