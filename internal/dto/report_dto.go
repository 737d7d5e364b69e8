package dto

import (
	"time"

	"github.com/campuswatch/backend/internal/models"
	"github.com/campuswatch/backend/internal/storage"
	"github.com/google/uuid"
)

type CreateReportRequest struct {
	Category    string   `json:"category" validate:"required,oneof=theft assault harassment vandalism suspicious_activity safety infrastructure other"`
	Severity    int      `json:"severity" validate:"required,min=1,max=5"`
	Title       string   `json:"title" validate:"required,min=5,max=200"`
	Description string   `json:"description" validate:"required,min=10,max=2000"`
	Latitude    float64  `json:"latitude" validate:"latitude"`
	Longitude   float64  `json:"longitude" validate:"longitude"`
	MediaURLs   []string `json:"media_urls" validate:"max=10,dive,max=500"`
	IsAnonymous bool     `json:"is_anonymous"`
}

type UpdateReportRequest struct {
	Category    *string  `json:"category" validate:"omitempty,oneof=theft assault harassment vandalism suspicious_activity safety infrastructure other"`
	Severity    *int     `json:"severity" validate:"omitempty,min=1,max=5"`
	Title       *string  `json:"title" validate:"omitempty,min=5,max=200"`
	Description *string  `json:"description" validate:"omitempty,min=10,max=2000"`
	Latitude    *float64 `json:"latitude" validate:"omitempty,latitude"`
	Longitude   *float64 `json:"longitude" validate:"omitempty,longitude"`
}

// Empty reports whether the edit carries no field at all.
func (r *UpdateReportRequest) Empty() bool {
	return r.Category == nil && r.Severity == nil && r.Title == nil &&
		r.Description == nil && r.Latitude == nil && r.Longitude == nil
}

type VoteRequest struct {
	Kind string `json:"kind" validate:"required,oneof=confirm dispute"`
}

type CreateCommentRequest struct {
	Content     string `json:"content" validate:"required,min=1,max=500"`
	IsAnonymous bool   `json:"is_anonymous"`
}

type UpdateCommentRequest struct {
	Content string `json:"content" validate:"required,min=1,max=500"`
}

// ReportResponse is the sanitized view of a report. Reporter identity is
// withheld for anonymous reports unless the viewer is the reporter or a
// moderator; moderation-only fields are zeroed for everyone else.
type ReportResponse struct {
	ID             uuid.UUID  `json:"id"`
	CampusID       uuid.UUID  `json:"campus_id"`
	ReporterID     *uuid.UUID `json:"reporter_id,omitempty"`
	IsAnonymous    bool       `json:"is_anonymous"`
	Category       string     `json:"category"`
	Severity       int        `json:"severity"`
	Title          string     `json:"title"`
	Description    string     `json:"description"`
	Latitude       float64    `json:"latitude"`
	Longitude      float64    `json:"longitude"`
	MediaURLs      []string   `json:"media_urls,omitempty"`
	Status         string     `json:"status"`
	ModeratorNotes string     `json:"moderator_notes,omitempty"`
	AssignedTo     *uuid.UUID `json:"assigned_to,omitempty"`
	ResolvedBy     *uuid.UUID `json:"resolved_by,omitempty"`
	ResolvedAt     *time.Time `json:"resolved_at,omitempty"`
	ConfirmCount   int        `json:"confirm_count"`
	DisputeCount   int        `json:"dispute_count"`
	NetVotes       int        `json:"net_votes"`
	CommentCount   int        `json:"comment_count"`
	ViewCount      int        `json:"view_count"`
	SpamFlagCount  int        `json:"spam_flag_count,omitempty"`
	IsSpam         bool       `json:"is_spam,omitempty"`
	Edited         bool       `json:"edited"`
	EditedAt       *time.Time `json:"edited_at,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
	DistanceMeters *float64   `json:"distance_meters,omitempty"`
}

// NewReportResponse sanitizes a report for the given viewer.
func NewReportResponse(r *models.Report, viewerID uuid.UUID, moderator bool) ReportResponse {
	resp := ReportResponse{
		ID:           r.ID,
		CampusID:     r.CampusID,
		IsAnonymous:  r.IsAnonymous,
		Category:     r.Category,
		Severity:     r.Severity,
		Title:        r.Title,
		Description:  r.Description,
		Latitude:     r.Latitude,
		Longitude:    r.Longitude,
		MediaURLs:    r.MediaURLs,
		Status:       r.Status,
		ConfirmCount: r.ConfirmCount,
		DisputeCount: r.DisputeCount,
		NetVotes:     r.ConfirmCount - r.DisputeCount,
		CommentCount: r.CommentCount,
		ViewCount:    r.ViewCount,
		Edited:       r.Edited,
		EditedAt:     r.EditedAt,
		CreatedAt:    r.CreatedAt,
		UpdatedAt:    r.UpdatedAt,
	}
	if !r.IsAnonymous || moderator || viewerID == r.ReporterID {
		reporter := r.ReporterID
		resp.ReporterID = &reporter
	}
	if moderator {
		resp.ModeratorNotes = r.ModeratorNotes
		resp.AssignedTo = r.AssignedTo
		resp.SpamFlagCount = r.SpamFlagCount
		resp.IsSpam = r.IsSpam
	}
	resp.ResolvedBy = r.ResolvedBy
	resp.ResolvedAt = r.ResolvedAt
	if r.DistanceMeters > 0 {
		d := r.DistanceMeters
		resp.DistanceMeters = &d
	}
	return resp
}

// NewReportResponses maps a listing for one viewer.
func NewReportResponses(reports []models.Report, viewerID uuid.UUID, moderator bool) []ReportResponse {
	out := make([]ReportResponse, len(reports))
	for i := range reports {
		out[i] = NewReportResponse(&reports[i], viewerID, moderator)
	}
	return out
}

type ReportListResponse struct {
	Reports []ReportResponse `json:"reports"`
	Meta    PageMeta         `json:"meta"`
}

// VoteResponse echoes the authoritative tally after a vote.
type VoteResponse struct {
	Kind  string             `json:"kind"`
	Votes storage.VoteCounts `json:"votes"`
}

// SpamFlagResponse reports the flag count after flagging.
type SpamFlagResponse struct {
	FlagCount  int  `json:"flag_count"`
	MarkedSpam bool `json:"marked_spam"`
}

// CommentResponse hides the author of anonymous comments from
// non-moderators and substitutes placeholder text for deleted ones.
type CommentResponse struct {
	ID          uuid.UUID  `json:"id"`
	ReportID    uuid.UUID  `json:"report_id"`
	AuthorID    *uuid.UUID `json:"author_id,omitempty"`
	Content     string     `json:"content"`
	IsAnonymous bool       `json:"is_anonymous"`
	Edited      bool       `json:"edited"`
	EditedAt    *time.Time `json:"edited_at,omitempty"`
	Deleted     bool       `json:"deleted,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
}

// NewCommentResponse sanitizes a comment for the given viewer. Deleted
// comments keep their slot in the thread with placeholder content.
func NewCommentResponse(c *models.Comment, viewerID uuid.UUID, moderator bool) CommentResponse {
	resp := CommentResponse{
		ID:          c.ID,
		ReportID:    c.ReportID,
		Content:     c.Content,
		IsAnonymous: c.IsAnonymous,
		Edited:      c.Edited,
		EditedAt:    c.EditedAt,
		CreatedAt:   c.CreatedAt,
	}
	if c.DeletedAt != nil {
		resp.Deleted = true
		resp.Content = "[deleted]"
		resp.Edited = false
		resp.EditedAt = nil
		return resp
	}
	if !c.IsAnonymous || moderator || viewerID == c.AuthorID {
		author := c.AuthorID
		resp.AuthorID = &author
	}
	return resp
}

func NewCommentResponses(comments []models.Comment, viewerID uuid.UUID, moderator bool) []CommentResponse {
	out := make([]CommentResponse, len(comments))
	for i := range comments {
		out[i] = NewCommentResponse(&comments[i], viewerID, moderator)
	}
	return out
}

type CommentListResponse struct {
	Comments []CommentResponse `json:"comments"`
	Meta     PageMeta          `json:"meta"`
}
