package globals

var (
	CandidateChan chan string
)

// InitCandidateChannel 初始化候选IP通道
func InitCandidateChannel(size int) {
	CandidateChan = make(chan string, size)
}
