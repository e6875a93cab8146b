package quillsdk

import "time"

// ============================================================================
// Errors
// ============================================================================

// ErrorResponse is the body of every non 2xx response.
type ErrorResponse struct {
	// Error is the machine readable kind (e.g. "validation_error", "conflict")
	Error string `json:"error"`

	// ErrorDescription is a human readable description of the error
	ErrorDescription string `json:"error_description,omitempty"`
}

// ============================================================================
// Auth
// ============================================================================

type RegisterRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// RefreshRequest carries the refresh token when it is not sent as the
// refresh_token cookie.
type RefreshRequest struct {
	RefreshToken string `json:"refresh_token,omitempty"`
}

// TokenResponse is returned by register, login and refresh.
type TokenResponse struct {
	// AccessToken is the EdDSA signed JWT used as a Bearer token
	AccessToken string `json:"access_token"`

	// RefreshToken is the opaque rotating refresh token. It is also set as an
	// HttpOnly cookie.
	RefreshToken string `json:"refresh_token,omitempty"`

	// TokenType is always "Bearer"
	TokenType string `json:"token_type"`

	// ExpiresIn is the access token lifetime in seconds
	ExpiresIn int `json:"expires_in"`

	User *UserResponse `json:"user,omitempty"`
}

// ============================================================================
// Users
// ============================================================================

type UserResponse struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

type UpdateProfileRequest struct {
	Name string `json:"name"`
}

// UserSummary is the display info attached to collaborators and invites.
type UserSummary struct {
	ID    string `json:"id"`
	Name  string `json:"name,omitempty"`
	Email string `json:"email,omitempty"`
}

// ============================================================================
// Notes
// ============================================================================

type CreateNoteRequest struct {
	Title   string `json:"title"`
	Content string `json:"content"`
}

// UpdateNoteRequest changes only the fields that are present.
type UpdateNoteRequest struct {
	Title    *string `json:"title,omitempty"`
	Content  *string `json:"content,omitempty"`
	Favorite *bool   `json:"favorite,omitempty"`
}

type NoteResponse struct {
	ID        string     `json:"id"`
	OwnerID   string     `json:"owner_id"`
	Title     string     `json:"title"`
	Content   string     `json:"content"`
	Favorite  bool       `json:"favorite"`
	Trashed   bool       `json:"trashed"`
	TrashedAt *time.Time `json:"trashed_at,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`

	// Role is the caller's role on the note: owner, editor or viewer
	Role string `json:"role"`
}

type NoteListResponse struct {
	Notes []NoteResponse `json:"notes"`
}

// ============================================================================
// Collaboration
// ============================================================================

type CreateInviteRequest struct {
	NoteID string `json:"note_id"`
	Email  string `json:"email"`

	// Role is editor or viewer, defaulting to viewer
	Role string `json:"role,omitempty"`
}

type InviteResponse struct {
	ID         string      `json:"id"`
	NoteID     string      `json:"note_id"`
	NoteTitle  string      `json:"note_title,omitempty"`
	Sender     UserSummary `json:"sender"`
	Recipient  UserSummary `json:"recipient"`
	Role       string      `json:"role"`
	Status     string      `json:"status"`
	SentAt     time.Time   `json:"sent_at"`
	AcceptedAt *time.Time  `json:"accepted_at,omitempty"`
}

type InviteListResponse struct {
	Invites []InviteResponse `json:"invites"`
}

type CollaboratorResponse struct {
	User UserSummary `json:"user"`
	Role string      `json:"role"`
}

type CollaboratorListResponse struct {
	Collaborators []CollaboratorResponse `json:"collaborators"`
}

type ChangeRoleRequest struct {
	Role string `json:"role"`
}

// ============================================================================
// Health
// ============================================================================

// HealthResponse is returned by /livez and /readyz. Only readyz fills Checks.
type HealthResponse struct {
	Status  string        `json:"status"`
	Uptime  string        `json:"uptime,omitempty"`
	Version string        `json:"version,omitempty"`
	Checks  *HealthChecks `json:"checks,omitempty"`
}

type HealthChecks struct {
	Database string `json:"database"`
	Signer   string `json:"signer"`

	// Notifier is only present when a Redis publisher is configured
	Notifier string `json:"notifier,omitempty"`
}
