// Package storage is the persistence boundary. Services talk to the Stores
// interfaces; *DB backs them with Postgres through GORM and Memory backs
// them in-process for tests.
package storage

import (
	"context"
	"errors"
	"time"

	"github.com/campuswatch/backend/internal/apperr"
	"github.com/campuswatch/backend/internal/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Feed sort options.
const (
	SortNewest       = "newest"
	SortOldest       = "oldest"
	SortSeverityDesc = "severity_desc"
	SortSeverityAsc  = "severity_asc"
	SortPopular      = "popular"
)

// visibleStatuses is the default status set for public listings; spam and
// invalid reports only show up when asked for explicitly.
var visibleStatuses = []string{
	models.StatusReported,
	models.StatusVerified,
	models.StatusInvestigating,
	models.StatusResolved,
}

// staffRoles are the roles alerted about high-severity reports.
var staffRoles = []string{
	models.RoleSecurity,
	models.RoleModerator,
	models.RoleAdmin,
	models.RoleSuperAdmin,
}

// NearbyFilters narrows a geospatial query. Zero values mean "no filter".
type NearbyFilters struct {
	Category     string
	MinSeverity  int
	Status       string
	CreatedSince *time.Time
}

// FeedFilters narrows the paginated feed. IncludeHidden lifts the default
// status restriction for moderator listings.
type FeedFilters struct {
	Category      string
	MinSeverity   int
	Status        string
	CreatedSince  *time.Time
	IncludeHidden bool
}

// EditFields carries the author-editable slice of a report. Nil means
// leave the field unchanged.
type EditFields struct {
	Category    *string
	Severity    *int
	Title       *string
	Description *string
	Latitude    *float64
	Longitude   *float64
}

// ModerationUpdate carries a moderator mutation. Status "" and nil pointers
// leave fields unchanged. ActorID stamps resolved_by when the status moves
// to resolved; moving anywhere else clears the resolver fields.
type ModerationUpdate struct {
	Status     string
	Notes      *string
	AssignedTo *uuid.UUID
	ActorID    uuid.UUID
}

// VoteCounts is the authoritative tally after a vote lands.
type VoteCounts struct {
	Confirms int `json:"confirms"`
	Disputes int `json:"disputes"`
	Net      int `json:"net"`
}

type ReportStore interface {
	Create(ctx context.Context, r *models.Report) error
	GetByID(ctx context.Context, campusID, id uuid.UUID) (*models.Report, error)
	IncrementViews(ctx context.Context, id uuid.UUID) error
	IncrementComments(ctx context.Context, id uuid.UUID, delta int) error
	FindNearby(ctx context.Context, campusID uuid.UUID, lng, lat, radiusMeters float64, f NearbyFilters) ([]models.Report, error)
	FindFeed(ctx context.Context, campusID uuid.UUID, f FeedFilters, sort string, page, pageSize int) ([]models.Report, int64, error)
	ApplyEdit(ctx context.Context, id, editorID uuid.UUID, fields EditFields, before models.ReportSnapshot) (bool, error)
	UpdateModeration(ctx context.Context, id uuid.UUID, upd ModerationUpdate) error
	PutVote(ctx context.Context, reportID, userID uuid.UUID, kind string) (VoteCounts, error)
	AddSpamFlag(ctx context.Context, reportID, userID uuid.UUID) (count int, added bool, err error)
	MarkSpam(ctx context.Context, reportID uuid.UUID) (bool, error)
	CountByStatus(ctx context.Context, campusID uuid.UUID, since *time.Time) (map[string]int64, error)
}

type CommentStore interface {
	Create(ctx context.Context, c *models.Comment) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Comment, error)
	ListByReport(ctx context.Context, reportID uuid.UUID, page, pageSize int) ([]models.Comment, int64, error)
	UpdateContent(ctx context.Context, id uuid.UUID, content string, editedAt time.Time) error
	SoftDelete(ctx context.Context, id uuid.UUID, at time.Time) error
}

// AuditStore is append-only: there is deliberately no update or delete.
type AuditStore interface {
	Append(ctx context.Context, e *models.AuditLogEntry) error
	ByEntity(ctx context.Context, campusID, entityID uuid.UUID, page, pageSize int) ([]models.AuditLogEntry, int64, error)
	ByActor(ctx context.Context, campusID, actorID uuid.UUID, page, pageSize int) ([]models.AuditLogEntry, int64, error)
	Recent(ctx context.Context, campusID uuid.UUID, actions []string, limit int) ([]models.AuditLogEntry, error)
}

type NotificationStore interface {
	Create(ctx context.Context, n *models.Notification) error
	ListByUser(ctx context.Context, userID uuid.UUID, unreadOnly bool, page, pageSize int) ([]models.Notification, int64, error)
	MarkRead(ctx context.Context, userID, id uuid.UUID) error
	MarkAllRead(ctx context.Context, userID uuid.UUID) (int64, error)
}

type UserStore interface {
	Create(ctx context.Context, u *models.User) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	GetByEmail(ctx context.Context, campusID uuid.UUID, email string) (*models.User, error)
	// ListStaff returns active, unbanned security+ users of a campus.
	ListStaff(ctx context.Context, campusID uuid.UUID) ([]models.User, error)
	SetEmailVerified(ctx context.Context, id uuid.UUID) error
	SetBanned(ctx context.Context, id uuid.UUID, banned bool) error
}

type CampusStore interface {
	Create(ctx context.Context, c *models.Campus) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Campus, error)
	GetByCode(ctx context.Context, code string) (*models.Campus, error)
	List(ctx context.Context) ([]models.Campus, error)
	Update(ctx context.Context, id uuid.UUID, upd CampusUpdate) (*models.Campus, error)
}

// CampusUpdate mutates campus settings; nil pointers leave fields alone.
type CampusUpdate struct {
	Name                   *string
	City                   *string
	CenterLat              *float64
	CenterLng              *float64
	MinSeverityForPush     *int
	ReportRateLimitPerHour *int
	IsActive               *bool
}

// Stores bundles every store behind one handle so services can run
// multi-store mutations atomically via Transact.
type Stores interface {
	Reports() ReportStore
	Comments() CommentStore
	Audits() AuditStore
	Notifications() NotificationStore
	Users() UserStore
	Campuses() CampusStore

	// Transact runs fn against stores bound to a single transaction.
	// Returning an error rolls everything back.
	Transact(ctx context.Context, fn func(Stores) error) error
}

// wrapErr translates driver errors into the shared taxonomy.
func wrapErr(err error, entity string) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return apperr.NotFound(entity)
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return apperr.Conflict(entity + " already exists")
	default:
		return apperr.Unavailable(err)
	}
}

// NormalizePage clamps pagination inputs to sane bounds. Stores apply it
// themselves; services call it too so response metadata echoes the values
// actually used.
func NormalizePage(page, pageSize int) (int, int) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = 20
	}
	if pageSize > 100 {
		pageSize = 100
	}
	return page, pageSize
}
