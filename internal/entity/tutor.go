package entity

// TutorAskRequest 针对某节课内容向外部文本生成服务提问。
type TutorAskRequest struct {
	CourseID string `json:"course_id" binding:"required"`
	LessonID string `json:"lesson_id" binding:"required"`
	Question string `json:"question" binding:"required"`
}

// TutorSource 回答引用的来源，顺序与上游返回一致。
type TutorSource struct {
	URI   string `json:"uri"`
	Title string `json:"title"`
}

type TutorAskResponse struct {
	Answer   string        `json:"answer"`
	Sources  []TutorSource `json:"sources,omitempty"`
	Degraded bool          `json:"degraded,omitempty"`
}

// 实时辅导会话的入站帧类型。
const (
	LiveFrameAudio = "audio"
	LiveFrameImage = "image"
)

type LiveSessionCreateResponse struct {
	SessionID string `json:"session_id"`
}

// LiveFrameRequest 上行一帧媒体：16kHz 单声道 PCM 音频或 JPEG 快照，均为 base64。
type LiveFrameRequest struct {
	Kind string `json:"kind" binding:"required"`
	Data string `json:"data" binding:"required"`
}

type LiveTurnResponse struct {
	SessionID string `json:"session_id"`
	Accepted  bool   `json:"accepted"`
}
