package models

// Comment represents a comment on a mood event. Replies carry the parent's ID.
type Comment struct {
	ID          string   `json:"id" firestore:"id" gorm:"primaryKey;size:64"`
	MoodEventID string   `json:"mood_event_id" firestore:"moodEventId" gorm:"index;size:64"`
	UserID      string   `json:"user_id" firestore:"userId" gorm:"size:128"`
	Username    string   `json:"username" firestore:"username"`
	Content     string   `json:"content" firestore:"content"`
	Timestamp   int64    `json:"timestamp" firestore:"timestamp" gorm:"index"`
	ParentID    string   `json:"parent_id,omitempty" firestore:"parentId" gorm:"index;size:64"`
	ReplyIDs    []string `json:"reply_ids" firestore:"replyIds" gorm:"-"`
}

// CreateCommentRequest defines the request body for creating a new comment
type CreateCommentRequest struct {
	Content  string `json:"content" validate:"required,min=1,max=500"`
	ParentID string `json:"parent_id,omitempty"`
}
