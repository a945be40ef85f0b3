package models

// Message 私聊消息，按到达顺序追加到 chat:<pairKey> 列表
type Message struct {
	ID        string `json:"id"`
	From      string `json:"from"`
	To        string `json:"to"`
	Content   string `json:"content"`
	Timestamp int64  `json:"timestamp"` // epoch ms
}
