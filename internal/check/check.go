package check

import (
	"strings"

	"dxip_harvester/internal/extract"
	"dxip_harvester/internal/globals"
	"dxip_harvester/internal/logger"
	"dxip_harvester/internal/store"
)

// StartCandidateWorkers 启动候选校验工作线程
func StartCandidateWorkers(workerNum int, recordStore store.RecordStore) {
	if workerNum <= 0 {
		workerNum = 1
	}
	logger.Info("启动 %d 个候选校验工作线程", workerNum)
	for i := 0; i < workerNum; i++ {
		go candidateWorker(recordStore)
	}
}

// 校验worker，从CandidateChan取候选，校验通过才入库
func candidateWorker(recordStore store.RecordStore) {
	for candidate := range globals.CandidateChan {
		rec, ok := ParseCandidate(candidate)
		if !ok {
			// 校验失败自动丢弃
			continue
		}
		if err := recordStore.Add(rec); err != nil {
			logger.Error("候选记录入库失败: %v", err)
		}
	}
}

// ParseCandidate 解析插件投递的候选串，格式为"地址 速度文本"，速度文本
// 可以省略。地址必须是完整的合法点分IPv4，否则整条丢弃。
func ParseCandidate(candidate string) (extract.Record, bool) {
	candidate = strings.TrimSpace(candidate)
	if candidate == "" {
		return extract.Record{}, false
	}

	addr := candidate
	speedText := ""
	if i := strings.IndexByte(candidate, ' '); i >= 0 {
		addr = candidate[:i]
		speedText = strings.TrimSpace(candidate[i+1:])
	}

	if !extract.ValidAddress(addr) {
		logger.Debug("丢弃非法候选: %s", candidate)
		return extract.Record{}, false
	}

	return extract.NewRecord(addr, speedText), true
}
