package storage

import (
	"context"
	"encoding/json"
	"sort"
	"sync"
	"time"

	"github.com/campuswatch/backend/internal/apperr"
	"github.com/campuswatch/backend/internal/models"
	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// Memory implements Stores entirely in process. Useful for tests.
// Transact runs fn directly: there is no rollback, which is fine for the
// failure-free paths tests exercise.
type Memory struct {
	mu sync.Mutex

	// Clock stamps created/updated times; tests swap it for a fixed one.
	Clock func() time.Time

	campuses      map[uuid.UUID]*models.Campus
	users         map[uuid.UUID]*models.User
	reports       map[uuid.UUID]*models.Report
	votes         map[uuid.UUID]map[uuid.UUID]string
	flags         map[uuid.UUID]map[uuid.UUID]struct{}
	edits         []models.ReportEdit
	comments      map[uuid.UUID]*models.Comment
	audits        []models.AuditLogEntry
	notifications map[uuid.UUID]*models.Notification
}

func NewMemory() *Memory {
	return &Memory{
		Clock:         time.Now,
		campuses:      make(map[uuid.UUID]*models.Campus),
		users:         make(map[uuid.UUID]*models.User),
		reports:       make(map[uuid.UUID]*models.Report),
		votes:         make(map[uuid.UUID]map[uuid.UUID]string),
		flags:         make(map[uuid.UUID]map[uuid.UUID]struct{}),
		comments:      make(map[uuid.UUID]*models.Comment),
		notifications: make(map[uuid.UUID]*models.Notification),
	}
}

func (m *Memory) Reports() ReportStore             { return memReports{m} }
func (m *Memory) Comments() CommentStore           { return memComments{m} }
func (m *Memory) Audits() AuditStore               { return memAudits{m} }
func (m *Memory) Notifications() NotificationStore { return memNotifications{m} }
func (m *Memory) Users() UserStore                 { return memUsers{m} }
func (m *Memory) Campuses() CampusStore            { return memCampuses{m} }

func (m *Memory) Transact(_ context.Context, fn func(Stores) error) error {
	return fn(m)
}

func (m *Memory) now() time.Time { return m.Clock() }

// Edits returns the stored edit history, newest last.
func (m *Memory) Edits(reportID uuid.UUID) []models.ReportEdit {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.ReportEdit
	for _, e := range m.edits {
		if e.ReportID == reportID {
			out = append(out, e)
		}
	}
	return out
}

type memReports struct{ m *Memory }

func (s memReports) Create(_ context.Context, r *models.Report) error {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()

	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	if r.Status == "" {
		r.Status = models.StatusReported
	}
	now := s.m.now()
	if r.CreatedAt.IsZero() {
		r.CreatedAt = now
	}
	r.UpdatedAt = now

	cp := *r
	s.m.reports[r.ID] = &cp
	return nil
}

func (s memReports) GetByID(_ context.Context, campusID, id uuid.UUID) (*models.Report, error) {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()

	r, ok := s.m.reports[id]
	if !ok || (campusID != uuid.Nil && r.CampusID != campusID) {
		return nil, apperr.NotFound("report")
	}
	cp := *r
	return &cp, nil
}

func (s memReports) IncrementViews(_ context.Context, id uuid.UUID) error {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	if r, ok := s.m.reports[id]; ok {
		r.ViewCount++
	}
	return nil
}

func (s memReports) IncrementComments(_ context.Context, id uuid.UUID, delta int) error {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	if r, ok := s.m.reports[id]; ok {
		r.CommentCount += delta
	}
	return nil
}

func statusVisible(status string) bool {
	for _, v := range visibleStatuses {
		if v == status {
			return true
		}
	}
	return false
}

func (s memReports) FindNearby(_ context.Context, campusID uuid.UUID, lng, lat, radiusMeters float64, f NearbyFilters) ([]models.Report, error) {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()

	box := boundingBox(lat, lng, radiusMeters)
	var out []models.Report
	for _, r := range s.m.reports {
		if campusID != uuid.Nil && r.CampusID != campusID {
			continue
		}
		if f.Status != "" {
			if r.Status != f.Status {
				continue
			}
		} else if !statusVisible(r.Status) {
			continue
		}
		if f.Category != "" && r.Category != f.Category {
			continue
		}
		if f.MinSeverity > 0 && r.Severity < f.MinSeverity {
			continue
		}
		if f.CreatedSince != nil && r.CreatedAt.Before(*f.CreatedSince) {
			continue
		}
		if r.Latitude < box.minLat || r.Latitude > box.maxLat ||
			r.Longitude < box.minLng || r.Longitude > box.maxLng {
			continue
		}
		d := haversineMeters(lat, lng, r.Latitude, r.Longitude)
		if d > radiusMeters {
			continue
		}
		cp := *r
		cp.DistanceMeters = d
		out = append(out, cp)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

func (s memReports) FindFeed(_ context.Context, campusID uuid.UUID, f FeedFilters, sortBy string, page, pageSize int) ([]models.Report, int64, error) {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()

	var all []models.Report
	for _, r := range s.m.reports {
		if campusID != uuid.Nil && r.CampusID != campusID {
			continue
		}
		switch {
		case f.Status != "":
			if r.Status != f.Status {
				continue
			}
		case !f.IncludeHidden:
			if !statusVisible(r.Status) {
				continue
			}
		}
		if f.Category != "" && r.Category != f.Category {
			continue
		}
		if f.MinSeverity > 0 && r.Severity < f.MinSeverity {
			continue
		}
		if f.CreatedSince != nil && r.CreatedAt.Before(*f.CreatedSince) {
			continue
		}
		all = append(all, *r)
	}

	newerFirst := func(i, j int) bool { return all[i].CreatedAt.After(all[j].CreatedAt) }
	switch sortBy {
	case SortOldest:
		sort.Slice(all, func(i, j int) bool { return all[i].CreatedAt.Before(all[j].CreatedAt) })
	case SortSeverityDesc:
		sort.Slice(all, func(i, j int) bool {
			if all[i].Severity != all[j].Severity {
				return all[i].Severity > all[j].Severity
			}
			return newerFirst(i, j)
		})
	case SortSeverityAsc:
		sort.Slice(all, func(i, j int) bool {
			if all[i].Severity != all[j].Severity {
				return all[i].Severity < all[j].Severity
			}
			return newerFirst(i, j)
		})
	case SortPopular:
		sort.Slice(all, func(i, j int) bool {
			if all[i].ViewCount != all[j].ViewCount {
				return all[i].ViewCount > all[j].ViewCount
			}
			return newerFirst(i, j)
		})
	default:
		sort.Slice(all, newerFirst)
	}

	total := int64(len(all))
	page, pageSize = NormalizePage(page, pageSize)
	start := (page - 1) * pageSize
	if start >= len(all) {
		return nil, total, nil
	}
	end := start + pageSize
	if end > len(all) {
		end = len(all)
	}
	return all[start:end], total, nil
}

func (s memReports) ApplyEdit(_ context.Context, id, editorID uuid.UUID, fields EditFields, before models.ReportSnapshot) (bool, error) {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()

	r, ok := s.m.reports[id]
	if !ok || r.Status != models.StatusReported {
		return false, nil
	}

	if fields.Category != nil {
		r.Category = *fields.Category
	}
	if fields.Severity != nil {
		r.Severity = *fields.Severity
	}
	if fields.Title != nil {
		r.Title = *fields.Title
	}
	if fields.Description != nil {
		r.Description = *fields.Description
	}
	if fields.Latitude != nil {
		r.Latitude = *fields.Latitude
	}
	if fields.Longitude != nil {
		r.Longitude = *fields.Longitude
	}
	now := s.m.now()
	r.Edited = true
	r.EditedAt = &now
	r.UpdatedAt = now

	snap, err := json.Marshal(before)
	if err != nil {
		return false, err
	}
	s.m.edits = append(s.m.edits, models.ReportEdit{
		ID:        uuid.New(),
		ReportID:  id,
		EditorID:  editorID,
		Before:    datatypes.JSON(snap),
		CreatedAt: now,
	})
	return true, nil
}

func (s memReports) UpdateModeration(_ context.Context, id uuid.UUID, upd ModerationUpdate) error {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()

	r, ok := s.m.reports[id]
	if !ok {
		return apperr.NotFound("report")
	}

	now := s.m.now()
	if upd.Status != "" {
		r.Status = upd.Status
		if upd.Status == models.StatusResolved {
			actor := upd.ActorID
			r.ResolvedBy = &actor
			r.ResolvedAt = &now
		} else {
			r.ResolvedBy = nil
			r.ResolvedAt = nil
		}
	}
	if upd.Notes != nil {
		r.ModeratorNotes = *upd.Notes
	}
	if upd.AssignedTo != nil {
		if *upd.AssignedTo == uuid.Nil {
			r.AssignedTo = nil
		} else {
			assignee := *upd.AssignedTo
			r.AssignedTo = &assignee
		}
	}
	r.UpdatedAt = now
	return nil
}

func (s memReports) PutVote(_ context.Context, reportID, userID uuid.UUID, kind string) (VoteCounts, error) {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()

	set, ok := s.m.votes[reportID]
	if !ok {
		set = make(map[uuid.UUID]string)
		s.m.votes[reportID] = set
	}
	set[userID] = kind

	var counts VoteCounts
	for _, k := range set {
		switch k {
		case models.VoteConfirm:
			counts.Confirms++
		case models.VoteDispute:
			counts.Disputes++
		}
	}
	counts.Net = counts.Confirms - counts.Disputes

	if r, ok := s.m.reports[reportID]; ok {
		r.ConfirmCount = counts.Confirms
		r.DisputeCount = counts.Disputes
	}
	return counts, nil
}

func (s memReports) AddSpamFlag(_ context.Context, reportID, userID uuid.UUID) (int, bool, error) {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()

	set, ok := s.m.flags[reportID]
	if !ok {
		set = make(map[uuid.UUID]struct{})
		s.m.flags[reportID] = set
	}
	_, exists := set[userID]
	if !exists {
		set[userID] = struct{}{}
	}
	count := len(set)

	if r, ok := s.m.reports[reportID]; ok {
		r.SpamFlagCount = count
	}
	return count, !exists, nil
}

func (s memReports) MarkSpam(_ context.Context, reportID uuid.UUID) (bool, error) {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()

	r, ok := s.m.reports[reportID]
	if !ok || r.IsSpam {
		return false, nil
	}
	r.IsSpam = true
	r.Status = models.StatusSpam
	r.UpdatedAt = s.m.now()
	return true, nil
}

func (s memReports) CountByStatus(_ context.Context, campusID uuid.UUID, since *time.Time) (map[string]int64, error) {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()

	out := make(map[string]int64)
	for _, r := range s.m.reports {
		if campusID != uuid.Nil && r.CampusID != campusID {
			continue
		}
		if since != nil && r.CreatedAt.Before(*since) {
			continue
		}
		out[r.Status]++
	}
	return out, nil
}

type memComments struct{ m *Memory }

func (s memComments) Create(_ context.Context, c *models.Comment) error {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()

	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	now := s.m.now()
	if c.CreatedAt.IsZero() {
		c.CreatedAt = now
	}
	c.UpdatedAt = now

	cp := *c
	s.m.comments[c.ID] = &cp
	return nil
}

func (s memComments) GetByID(_ context.Context, id uuid.UUID) (*models.Comment, error) {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()

	c, ok := s.m.comments[id]
	if !ok {
		return nil, apperr.NotFound("comment")
	}
	cp := *c
	return &cp, nil
}

func (s memComments) ListByReport(_ context.Context, reportID uuid.UUID, page, pageSize int) ([]models.Comment, int64, error) {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()

	var all []models.Comment
	for _, c := range s.m.comments {
		if c.ReportID == reportID {
			all = append(all, *c)
		}
	}
	sort.Slice(all, func(i, j int) bool { return all[i].CreatedAt.Before(all[j].CreatedAt) })

	total := int64(len(all))
	page, pageSize = NormalizePage(page, pageSize)
	start := (page - 1) * pageSize
	if start >= len(all) {
		return nil, total, nil
	}
	end := start + pageSize
	if end > len(all) {
		end = len(all)
	}
	return all[start:end], total, nil
}

func (s memComments) UpdateContent(_ context.Context, id uuid.UUID, content string, editedAt time.Time) error {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()

	c, ok := s.m.comments[id]
	if !ok {
		return apperr.NotFound("comment")
	}
	c.Content = content
	c.Edited = true
	at := editedAt
	c.EditedAt = &at
	c.UpdatedAt = s.m.now()
	return nil
}

func (s memComments) SoftDelete(_ context.Context, id uuid.UUID, at time.Time) error {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()

	c, ok := s.m.comments[id]
	if !ok || c.DeletedAt != nil {
		return nil
	}
	when := at
	c.DeletedAt = &when
	c.UpdatedAt = s.m.now()
	return nil
}

type memAudits struct{ m *Memory }

func (s memAudits) Append(_ context.Context, e *models.AuditLogEntry) error {
	if !models.ValidAuditAction(e.Action) {
		return apperr.Newf(apperr.KindInvalidArgument, "unknown audit action %q", e.Action)
	}

	s.m.mu.Lock()
	defer s.m.mu.Unlock()

	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	if e.CreatedAt.IsZero() {
		e.CreatedAt = s.m.now()
	}
	s.m.audits = append(s.m.audits, *e)
	return nil
}

func (s memAudits) withActor(e models.AuditLogEntry) models.AuditLogEntry {
	if u, ok := s.m.users[e.ActorID]; ok {
		e.Actor = *u
	}
	return e
}

func (s memAudits) filter(campusID uuid.UUID, match func(models.AuditLogEntry) bool) []models.AuditLogEntry {
	var out []models.AuditLogEntry
	for _, e := range s.m.audits {
		if campusID != uuid.Nil && e.CampusID != campusID {
			continue
		}
		if match != nil && !match(e) {
			continue
		}
		out = append(out, s.withActor(e))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out
}

func pageEntries(all []models.AuditLogEntry, page, pageSize int) ([]models.AuditLogEntry, int64) {
	total := int64(len(all))
	page, pageSize = NormalizePage(page, pageSize)
	start := (page - 1) * pageSize
	if start >= len(all) {
		return nil, total
	}
	end := start + pageSize
	if end > len(all) {
		end = len(all)
	}
	return all[start:end], total
}

func (s memAudits) ByEntity(_ context.Context, campusID, entityID uuid.UUID, page, pageSize int) ([]models.AuditLogEntry, int64, error) {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()

	all := s.filter(campusID, func(e models.AuditLogEntry) bool { return e.EntityID == entityID })
	entries, total := pageEntries(all, page, pageSize)
	return entries, total, nil
}

func (s memAudits) ByActor(_ context.Context, campusID, actorID uuid.UUID, page, pageSize int) ([]models.AuditLogEntry, int64, error) {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()

	all := s.filter(campusID, func(e models.AuditLogEntry) bool { return e.ActorID == actorID })
	entries, total := pageEntries(all, page, pageSize)
	return entries, total, nil
}

func (s memAudits) Recent(_ context.Context, campusID uuid.UUID, actions []string, limit int) ([]models.AuditLogEntry, error) {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()

	if limit < 1 {
		limit = 10
	}
	allowed := make(map[string]struct{}, len(actions))
	for _, a := range actions {
		allowed[a] = struct{}{}
	}
	all := s.filter(campusID, func(e models.AuditLogEntry) bool {
		if len(allowed) == 0 {
			return true
		}
		_, ok := allowed[e.Action]
		return ok
	})
	if len(all) > limit {
		all = all[:limit]
	}
	return all, nil
}

type memNotifications struct{ m *Memory }

func (s memNotifications) Create(_ context.Context, n *models.Notification) error {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()

	if n.ID == uuid.Nil {
		n.ID = uuid.New()
	}
	if n.Priority == "" {
		n.Priority = models.PriorityNormal
	}
	if n.CreatedAt.IsZero() {
		n.CreatedAt = s.m.now()
	}
	cp := *n
	s.m.notifications[n.ID] = &cp
	return nil
}

func (s memNotifications) ListByUser(_ context.Context, userID uuid.UUID, unreadOnly bool, page, pageSize int) ([]models.Notification, int64, error) {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()

	var all []models.Notification
	for _, n := range s.m.notifications {
		if n.UserID != userID {
			continue
		}
		if unreadOnly && n.IsRead {
			continue
		}
		all = append(all, *n)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].CreatedAt.After(all[j].CreatedAt) })

	total := int64(len(all))
	page, pageSize = NormalizePage(page, pageSize)
	start := (page - 1) * pageSize
	if start >= len(all) {
		return nil, total, nil
	}
	end := start + pageSize
	if end > len(all) {
		end = len(all)
	}
	return all[start:end], total, nil
}

func (s memNotifications) MarkRead(_ context.Context, userID, id uuid.UUID) error {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()

	n, ok := s.m.notifications[id]
	if !ok || n.UserID != userID {
		return apperr.NotFound("notification")
	}
	now := s.m.now()
	n.IsRead = true
	n.ReadAt = &now
	return nil
}

func (s memNotifications) MarkAllRead(_ context.Context, userID uuid.UUID) (int64, error) {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()

	var count int64
	now := s.m.now()
	for _, n := range s.m.notifications {
		if n.UserID == userID && !n.IsRead {
			n.IsRead = true
			n.ReadAt = &now
			count++
		}
	}
	return count, nil
}

type memUsers struct{ m *Memory }

func (s memUsers) Create(_ context.Context, u *models.User) error {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()

	for _, existing := range s.m.users {
		if existing.CampusID == u.CampusID && existing.Email == u.Email {
			return apperr.Conflict("user already exists")
		}
	}
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	if u.Role == "" {
		u.Role = models.RoleUser
	}
	u.IsActive = true
	now := s.m.now()
	if u.CreatedAt.IsZero() {
		u.CreatedAt = now
	}
	u.UpdatedAt = now

	cp := *u
	s.m.users[u.ID] = &cp
	return nil
}

func (s memUsers) GetByID(_ context.Context, id uuid.UUID) (*models.User, error) {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()

	u, ok := s.m.users[id]
	if !ok {
		return nil, apperr.NotFound("user")
	}
	cp := *u
	return &cp, nil
}

func (s memUsers) GetByEmail(_ context.Context, campusID uuid.UUID, email string) (*models.User, error) {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()

	for _, u := range s.m.users {
		if u.CampusID == campusID && u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, apperr.NotFound("user")
}

func (s memUsers) ListStaff(_ context.Context, campusID uuid.UUID) ([]models.User, error) {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()

	isStaff := func(role string) bool {
		for _, r := range staffRoles {
			if r == role {
				return true
			}
		}
		return false
	}
	var out []models.User
	for _, u := range s.m.users {
		if u.CampusID != campusID || !isStaff(u.Role) || !u.IsActive || u.IsBanned {
			continue
		}
		out = append(out, *u)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (s memUsers) SetEmailVerified(_ context.Context, id uuid.UUID) error {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()

	u, ok := s.m.users[id]
	if !ok {
		return apperr.NotFound("user")
	}
	u.EmailVerified = true
	u.UpdatedAt = s.m.now()
	return nil
}

func (s memUsers) SetBanned(_ context.Context, id uuid.UUID, banned bool) error {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()

	u, ok := s.m.users[id]
	if !ok {
		return apperr.NotFound("user")
	}
	u.IsBanned = banned
	u.UpdatedAt = s.m.now()
	return nil
}

type memCampuses struct{ m *Memory }

func (s memCampuses) Create(_ context.Context, c *models.Campus) error {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()

	for _, existing := range s.m.campuses {
		if existing.Code == c.Code {
			return apperr.Conflict("campus already exists")
		}
	}
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	if c.MinSeverityForPush == 0 {
		c.MinSeverityForPush = 4
	}
	c.IsActive = true
	now := s.m.now()
	if c.CreatedAt.IsZero() {
		c.CreatedAt = now
	}
	c.UpdatedAt = now

	cp := *c
	s.m.campuses[c.ID] = &cp
	return nil
}

func (s memCampuses) GetByID(_ context.Context, id uuid.UUID) (*models.Campus, error) {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()

	c, ok := s.m.campuses[id]
	if !ok {
		return nil, apperr.NotFound("campus")
	}
	cp := *c
	return &cp, nil
}

func (s memCampuses) GetByCode(_ context.Context, code string) (*models.Campus, error) {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()

	for _, c := range s.m.campuses {
		if c.Code == code {
			cp := *c
			return &cp, nil
		}
	}
	return nil, apperr.NotFound("campus")
}

func (s memCampuses) List(_ context.Context) ([]models.Campus, error) {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()

	var out []models.Campus
	for _, c := range s.m.campuses {
		out = append(out, *c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (s memCampuses) Update(_ context.Context, id uuid.UUID, upd CampusUpdate) (*models.Campus, error) {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()

	c, ok := s.m.campuses[id]
	if !ok {
		return nil, apperr.NotFound("campus")
	}
	if upd.Name != nil {
		c.Name = *upd.Name
	}
	if upd.City != nil {
		c.City = *upd.City
	}
	if upd.CenterLat != nil {
		c.CenterLat = *upd.CenterLat
	}
	if upd.CenterLng != nil {
		c.CenterLng = *upd.CenterLng
	}
	if upd.MinSeverityForPush != nil {
		c.MinSeverityForPush = *upd.MinSeverityForPush
	}
	if upd.ReportRateLimitPerHour != nil {
		c.ReportRateLimitPerHour = *upd.ReportRateLimitPerHour
	}
	if upd.IsActive != nil {
		c.IsActive = *upd.IsActive
	}
	c.UpdatedAt = s.m.now()

	cp := *c
	return &cp, nil
}
