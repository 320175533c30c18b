package core

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"attendance.service/internal/core/model"
	"attendance.service/internal/ports/messaging"
	"attendance.service/internal/ports/repository"
)

type stubClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *stubClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *stubClock) Set(t time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = t
}

// fakeAttendanceRepo mirrors the store's atomic guarantees under a mutex.
type fakeAttendanceRepo struct {
	mu      sync.Mutex
	records map[string]*model.AttendanceRecord
	users   *fakeUserRepo
	err     error
}

func newFakeAttendanceRepo(users *fakeUserRepo) *fakeAttendanceRepo {
	return &fakeAttendanceRepo{records: make(map[string]*model.AttendanceRecord), users: users}
}

func recordKey(userID, date string) string {
	return userID + "|" + date
}

func (r *fakeAttendanceRepo) put(rec *model.AttendanceRecord) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.records[recordKey(rec.UserID, rec.Date)] = cloneRecord(rec)
}

func (r *fakeAttendanceRepo) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.records)
}

func (r *fakeAttendanceRepo) CreateCheckIn(_ context.Context, rec *model.AttendanceRecord) (*model.AttendanceRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return nil, r.err
	}

	key := recordKey(rec.UserID, rec.Date)
	if existing, ok := r.records[key]; ok {
		if existing.CheckInTime != nil {
			return nil, model.ErrAlreadyCheckedIn
		}
		t := *rec.CheckInTime
		existing.CheckInTime = &t
		return cloneRecord(existing), nil
	}
	r.records[key] = cloneRecord(rec)
	return cloneRecord(rec), nil
}

func (r *fakeAttendanceRepo) CompleteCheckOut(_ context.Context, id string, checkOut time.Time, totalHours float64, status model.AttendanceStatus) (*model.AttendanceRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return nil, r.err
	}

	for _, rec := range r.records {
		if rec.ID != id {
			continue
		}
		if rec.CheckOutTime != nil {
			return nil, model.ErrAlreadyCheckedOut
		}
		rec.CheckOutTime = &checkOut
		rec.TotalHours = &totalHours
		rec.Status = status
		return cloneRecord(rec), nil
	}
	return nil, model.ErrAlreadyCheckedOut
}

func (r *fakeAttendanceRepo) FindByUserAndDate(_ context.Context, userID, date string) (*model.AttendanceRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return nil, r.err
	}
	return cloneRecord(r.records[recordKey(userID, date)]), nil
}

func (r *fakeAttendanceRepo) GetByID(_ context.Context, id string) (*model.AttendanceRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, rec := range r.records {
		if rec.ID == id {
			return cloneRecord(rec), nil
		}
	}
	return nil, model.ErrRecordNotFound
}

func (r *fakeAttendanceRepo) ListByUser(_ context.Context, userID string, dr *repository.DateRange, limit int) ([]*model.AttendanceRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return nil, r.err
	}

	out := make([]*model.AttendanceRecord, 0)
	for _, rec := range r.records {
		if rec.UserID == userID && inRange(rec.Date, dr) {
			out = append(out, cloneRecord(rec))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date > out[j].Date })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *fakeAttendanceRepo) ListWithUsers(_ context.Context, filter model.ListFilter) ([]*model.AttendanceWithUser, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]*model.AttendanceWithUser, 0)
	for _, rec := range r.records {
		item := r.join(rec)
		if filter.Date != "" && rec.Date != filter.Date {
			continue
		}
		if filter.Status != "" && rec.Status != filter.Status {
			continue
		}
		if filter.EmployeeID != "" && item.User.EmployeeID != filter.EmployeeID {
			continue
		}
		out = append(out, item)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Date != out[j].Date {
			return out[i].Date > out[j].Date
		}
		return out[i].User.EmployeeID < out[j].User.EmployeeID
	})
	return out, nil
}

func (r *fakeAttendanceRepo) ListForExport(_ context.Context, dr *repository.DateRange) ([]*model.AttendanceWithUser, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]*model.AttendanceWithUser, 0)
	for _, rec := range r.records {
		if inRange(rec.Date, dr) {
			out = append(out, r.join(rec))
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Date != out[j].Date {
			return out[i].Date < out[j].Date
		}
		return out[i].User.EmployeeID < out[j].User.EmployeeID
	})
	return out, nil
}

func (r *fakeAttendanceRepo) CountCheckedIn(_ context.Context, date string) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return 0, r.err
	}
	n := 0
	for _, rec := range r.records {
		if rec.Date == date && rec.CheckInTime != nil {
			n++
		}
	}
	return n, nil
}

func (r *fakeAttendanceRepo) CountByStatus(_ context.Context, date string, status model.AttendanceStatus) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return 0, r.err
	}
	n := 0
	for _, rec := range r.records {
		if rec.Date == date && rec.Status == status {
			n++
		}
	}
	return n, nil
}

func (r *fakeAttendanceRepo) join(rec *model.AttendanceRecord) *model.AttendanceWithUser {
	item := &model.AttendanceWithUser{AttendanceRecord: *cloneRecord(rec)}
	if r.users != nil {
		if u, err := r.users.FindByID(context.Background(), rec.UserID); err == nil {
			item.User = model.UserIdentity{
				ID:         u.ID,
				Name:       u.Name,
				Email:      u.Email,
				EmployeeID: u.EmployeeID,
				Department: u.Department,
			}
		}
	}
	return item
}

func inRange(date string, dr *repository.DateRange) bool {
	if dr == nil {
		return true
	}
	return date >= dr.From.Format(model.DateLayout) && date <= dr.To.Format(model.DateLayout)
}

func cloneRecord(rec *model.AttendanceRecord) *model.AttendanceRecord {
	if rec == nil {
		return nil
	}
	c := *rec
	if rec.CheckInTime != nil {
		t := *rec.CheckInTime
		c.CheckInTime = &t
	}
	if rec.CheckOutTime != nil {
		t := *rec.CheckOutTime
		c.CheckOutTime = &t
	}
	if rec.TotalHours != nil {
		h := *rec.TotalHours
		c.TotalHours = &h
	}
	return &c
}

type fakeUserRepo struct {
	mu    sync.Mutex
	users map[string]*model.User
}

func newFakeUserRepo(users ...*model.User) *fakeUserRepo {
	r := &fakeUserRepo{users: make(map[string]*model.User)}
	for _, u := range users {
		c := *u
		r.users[u.ID] = &c
	}
	return r
}

func (r *fakeUserRepo) Create(_ context.Context, u *model.User) (*model.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.users {
		if strings.EqualFold(existing.Email, u.Email) {
			return nil, model.ErrEmailAlreadyExists
		}
	}
	c := *u
	r.users[u.ID] = &c
	out := c
	return &out, nil
}

func (r *fakeUserRepo) FindByID(_ context.Context, id string) (*model.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return nil, model.ErrUserNotFound
	}
	c := *u
	return &c, nil
}

func (r *fakeUserRepo) FindByEmail(_ context.Context, email string) (*model.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if strings.EqualFold(u.Email, email) {
			c := *u
			return &c, nil
		}
	}
	return nil, model.ErrUserNotFound
}

func (r *fakeUserRepo) Count(context.Context) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.users), nil
}

type fakePublisher struct {
	mu     sync.Mutex
	syncs  []messaging.CheckOutEvent
	emails []messaging.EmailEvent
	err    error
}

func (p *fakePublisher) PublishSync(_ context.Context, e messaging.CheckOutEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.syncs = append(p.syncs, e)
	return p.err
}

func (p *fakePublisher) PublishEmail(_ context.Context, e messaging.EmailEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.emails = append(p.emails, e)
	return p.err
}
