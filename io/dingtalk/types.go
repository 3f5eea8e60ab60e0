package dingtalk

// MarkdownMessage is the DingTalk robot markdown payload
type MarkdownMessage struct {
	MsgType  string       `json:"msgtype"`
	Markdown MarkdownBody `json:"markdown"`
}

// MarkdownBody carries the rendered report
type MarkdownBody struct {
	Title string `json:"title"`
	Text  string `json:"text"`
}

// TextMessage is the DingTalk robot plain text payload
type TextMessage struct {
	MsgType string   `json:"msgtype"`
	Text    TextBody `json:"text"`
}

// TextBody carries a plain text message
type TextBody struct {
	Content string `json:"content"`
}

// WebhookResponse is the DingTalk robot API response body.
// ErrCode zero means the message was accepted.
type WebhookResponse struct {
	ErrCode int    `json:"errcode"`
	ErrMsg  string `json:"errmsg"`
}
