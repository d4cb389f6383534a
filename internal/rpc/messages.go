package rpc

import (
	"encoding/json"
	"time"
)

type Empty struct{}

type User struct {
	ID       string `json:"id"`
	Email    string `json:"email"`
	Username string `json:"username,omitempty"`
	Role     string `json:"role"`
}

type Profile struct {
	ID        string    `json:"id"`
	Username  string    `json:"username"`
	Role      string    `json:"role"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"created_at"`
}

// Task dates travel as strings: due_date is YYYY-MM-DD, due_time is HH:MM[:SS].
type Task struct {
	ID          string    `json:"id"`
	UserID      string    `json:"user_id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	DueDate     *string   `json:"due_date,omitempty"`
	DueTime     *string   `json:"due_time,omitempty"`
	IsCompleted bool      `json:"is_completed"`
	IsArchived  bool      `json:"is_archived"`
	CreatedAt   time.Time `json:"created_at"`
}

type Notification struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	TaskID    *string   `json:"task_id,omitempty"`
	Type      string    `json:"type"`
	Title     string    `json:"title"`
	Message   string    `json:"message"`
	Read      bool      `json:"read"`
	CreatedAt time.Time `json:"created_at"`
}

type AuditLogEntry struct {
	ID         int64           `json:"id,omitempty"`
	UserID     string          `json:"user_id"`
	Username   string          `json:"username"`
	Action     string          `json:"action"`
	EntityType *string         `json:"entity_type,omitempty"`
	EntityID   *string         `json:"entity_id,omitempty"`
	Details    json.RawMessage `json:"details,omitempty"`
	CreatedAt  time.Time       `json:"created_at"`
}

type PingResponse struct {
	Status string `json:"status"`
}

type SignUpRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Username string `json:"username"`
}

type SignUpResponse struct {
	UserID string `json:"user_id"`
}

type SignInRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type TokenResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

type RefreshTokenRequest struct {
	RefreshToken string `json:"refresh_token"`
}

type SignOutRequest struct {
	RefreshToken string `json:"refresh_token"`
}

type GetUserResponse struct {
	User User `json:"user"`
}

type UpdatePasswordRequest struct {
	Password string `json:"password"`
}

type GetProfileRequest struct {
	ID string `json:"id"`
}

type ProfileResponse struct {
	Profile Profile `json:"profile"`
}

type UpdateProfileRequest struct {
	ID       string `json:"id"`
	Username string `json:"username"`
}

type ListProfilesResponse struct {
	Profiles []Profile `json:"profiles"`
}

type DeleteProfileRequest struct {
	ID string `json:"id"`
}

type CreateTaskRequest struct {
	Title       string  `json:"title"`
	Description string  `json:"description"`
	DueDate     *string `json:"due_date,omitempty"`
	DueTime     *string `json:"due_time,omitempty"`
}

type TaskResponse struct {
	Task Task `json:"task"`
}

// ListTasksRequest narrows the caller's tasks. With Pending set only tasks
// that have a due date and are neither completed nor archived are returned.
type ListTasksRequest struct {
	Pending bool `json:"pending,omitempty"`
}

type ListTasksResponse struct {
	Tasks []Task `json:"tasks"`
}

// UpdateTaskRequest carries a partial update. Nil fields are left unchanged;
// a DueDate or DueTime pointing at "" clears the column.
type UpdateTaskRequest struct {
	ID          string  `json:"id"`
	Title       *string `json:"title,omitempty"`
	Description *string `json:"description,omitempty"`
	DueDate     *string `json:"due_date,omitempty"`
	DueTime     *string `json:"due_time,omitempty"`
	IsCompleted *bool   `json:"is_completed,omitempty"`
	IsArchived  *bool   `json:"is_archived,omitempty"`
}

type CreateNotificationRequest struct {
	TaskID  *string `json:"task_id,omitempty"`
	Type    string  `json:"type"`
	Title   string  `json:"title"`
	Message string  `json:"message"`
}

type NotificationResponse struct {
	Notification Notification `json:"notification"`
}

type ListNotificationsRequest struct {
	UnreadOnly bool `json:"unread_only,omitempty"`
	Limit      int  `json:"limit,omitempty"`
}

type ListNotificationsResponse struct {
	Notifications []Notification `json:"notifications"`
}

type NotificationIDRequest struct {
	ID string `json:"id"`
}

type MarkAllNotificationsReadResponse struct {
	Updated int64 `json:"updated"`
}

type TrackingRequest struct {
	TaskID           string `json:"task_id"`
	NotificationType string `json:"notification_type"`
	SentDate         string `json:"sent_date"`
}

type FindTrackingResponse struct {
	Found bool `json:"found"`
}

type InsertAuditLogRequest struct {
	Entry AuditLogEntry `json:"entry"`
}

type ListAuditLogsRequest struct {
	Action string `json:"action,omitempty"`
	Limit  int    `json:"limit,omitempty"`
}

type ListAuditLogsResponse struct {
	Entries []AuditLogEntry `json:"entries"`
}

type ExportAuditLogsRequest struct {
	Action string `json:"action,omitempty"`
}

type ExportAuditLogsResponse struct {
	Key   string `json:"key"`
	URL   string `json:"url"`
	Count int    `json:"count"`
}
