package models

import "time"

type ModerationAction string

const (
	ActionRequestApproved ModerationAction = "publisher_request_approved"
	ActionRequestRejected ModerationAction = "publisher_request_rejected"
	ActionRoleChanged     ModerationAction = "role_changed"
	ActionUserBanned      ModerationAction = "user_banned"
	ActionUserUnbanned    ModerationAction = "user_unbanned"
	ActionCommentEdited   ModerationAction = "comment_edited"
	ActionCommentDeleted  ModerationAction = "comment_deleted"
	ActionPostEdited      ModerationAction = "post_edited"
	ActionPostDeleted     ModerationAction = "post_deleted"
	ActionStoryApproved   ModerationAction = "story_approved"
	ActionStoryRejected   ModerationAction = "story_rejected"
	ActionStoryEdited     ModerationAction = "story_edited"
	ActionStoryDeleted    ModerationAction = "story_deleted"
)

// ModerationLog is an append-only record of an admin action (PostgreSQL)
type ModerationLog struct {
	ID        uint             `json:"id" gorm:"primaryKey"`
	ActorID   string           `json:"actor_id" gorm:"size:24;index"`
	TargetID  string           `json:"target_id" gorm:"size:24;index"`
	Action    ModerationAction `json:"action" gorm:"size:40;index"`
	Detail    string           `json:"detail"`
	CreatedAt time.Time        `json:"created_at" gorm:"index"`
}
