package service_test

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"kaiginote/internal/model"
	"kaiginote/internal/repo"
)

// fakeRepo is an in-memory repo.Repository used to exercise the handlers
// without postgres.
type fakeRepo struct {
	mu sync.Mutex

	users        map[int]*model.User
	events       map[int]*model.Event
	participants map[int]*model.EventParticipant

	nextUserID        int
	nextEventID       int
	nextParticipantID int
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{
		users:             make(map[int]*model.User),
		events:            make(map[int]*model.Event),
		participants:      make(map[int]*model.EventParticipant),
		nextUserID:        1,
		nextEventID:       1,
		nextParticipantID: 1,
	}
}

func (f *fakeRepo) CreateUser(_ context.Context, u *model.User) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, existing := range f.users {
		if existing.Email == u.Email {
			return 0, repo.ErrEmailTaken
		}
	}
	u.ID = f.nextUserID
	f.nextUserID++
	u.CreatedAt = time.Now()
	u.UpdatedAt = u.CreatedAt
	cp := *u
	f.users[u.ID] = &cp
	return int64(u.ID), nil
}

func (f *fakeRepo) GetUserByID(_ context.Context, id int64) (*model.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[int(id)]
	if !ok {
		return nil, repo.ErrUserNotFound
	}
	cp := *u
	return &cp, nil
}

func (f *fakeRepo) GetUserByEmail(_ context.Context, email string) (*model.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, repo.ErrUserNotFound
}

func (f *fakeRepo) GetAllUsers(_ context.Context, offset, limit int) ([]model.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	ids := make([]int, 0, len(f.users))
	for id := range f.users {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	var out []model.User
	for i, id := range ids {
		if i < offset {
			continue
		}
		if len(out) >= limit {
			break
		}
		out = append(out, *f.users[id])
	}
	return out, nil
}

func (f *fakeRepo) UpdateUser(_ context.Context, u *model.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.users[u.ID]; !ok {
		return repo.ErrUserNotFound
	}
	for id, existing := range f.users {
		if id != u.ID && existing.Email == u.Email {
			return repo.ErrEmailTaken
		}
	}
	u.UpdatedAt = time.Now()
	cp := *u
	f.users[u.ID] = &cp
	return nil
}

func (f *fakeRepo) CreateEvent(_ context.Context, e *model.Event) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	e.ID = f.nextEventID
	f.nextEventID++
	e.CreatedAt = time.Now()
	e.UpdatedAt = e.CreatedAt
	cp := *e
	f.events[e.ID] = &cp
	return int64(e.ID), nil
}

func (f *fakeRepo) GetEventByID(_ context.Context, id int64) (*model.Event, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	e, ok := f.events[int(id)]
	if !ok {
		return nil, repo.ErrEventNotFound
	}
	cp := *e
	return &cp, nil
}

func (f *fakeRepo) ListEvents(_ context.Context, params repo.ListEventsParams) ([]model.Event, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var matched []model.Event
	for _, e := range f.events {
		if params.Keyword != "" &&
			!strings.Contains(e.Place, params.Keyword) &&
			!strings.Contains(e.Content, params.Keyword) {
			continue
		}
		if params.Status != "" && e.Status != params.Status {
			continue
		}
		matched = append(matched, *e)
	}
	sort.Slice(matched, func(i, j int) bool {
		return matched[i].StartTime.After(matched[j].StartTime)
	})
	if params.Offset >= len(matched) {
		return nil, nil
	}
	matched = matched[params.Offset:]
	if len(matched) > params.Limit {
		matched = matched[:params.Limit]
	}
	return matched, nil
}

func (f *fakeRepo) UpdateEvent(_ context.Context, e *model.Event) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.events[e.ID]; !ok {
		return repo.ErrEventNotFound
	}
	e.UpdatedAt = time.Now()
	cp := *e
	f.events[e.ID] = &cp
	return nil
}

func (f *fakeRepo) DeleteEvent(_ context.Context, id int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.events[int(id)]; !ok {
		return repo.ErrEventNotFound
	}
	delete(f.events, int(id))
	for pid, p := range f.participants {
		if p.EventID == int(id) {
			delete(f.participants, pid)
		}
	}
	return nil
}

func (f *fakeRepo) GetParticipantsByEventID(_ context.Context, eventID int64) ([]model.ParticipantWithUser, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []model.ParticipantWithUser
	ids := make([]int, 0, len(f.participants))
	for id := range f.participants {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	for _, id := range ids {
		p := f.participants[id]
		if p.EventID != int(eventID) {
			continue
		}
		name := ""
		if u, ok := f.users[p.UserID]; ok {
			name = u.Name
		}
		out = append(out, model.ParticipantWithUser{EventParticipant: *p, UserName: name})
	}
	return out, nil
}

func (f *fakeRepo) AddParticipantTx(_ context.Context, p *model.EventParticipant) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.events[p.EventID]; !ok {
		return 0, repo.ErrEventNotFound
	}
	if _, ok := f.users[p.UserID]; !ok {
		return 0, repo.ErrUserNotFound
	}
	for _, existing := range f.participants {
		if existing.EventID == p.EventID && existing.UserID == p.UserID {
			return 0, repo.ErrDuplicateParticipant
		}
	}
	p.ID = f.nextParticipantID
	f.nextParticipantID++
	p.CreatedAt = time.Now()
	p.UpdatedAt = p.CreatedAt
	cp := *p
	f.participants[p.ID] = &cp
	return int64(p.ID), nil
}

func (f *fakeRepo) GetParticipant(_ context.Context, eventID, participantID int64) (*model.EventParticipant, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.participants[int(participantID)]
	if !ok || p.EventID != int(eventID) {
		return nil, repo.ErrParticipantNotFound
	}
	cp := *p
	return &cp, nil
}

func (f *fakeRepo) UpdateParticipant(_ context.Context, p *model.EventParticipant) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	existing, ok := f.participants[p.ID]
	if !ok || existing.EventID != p.EventID {
		return repo.ErrParticipantNotFound
	}
	p.UpdatedAt = time.Now()
	cp := *p
	f.participants[p.ID] = &cp
	return nil
}

func (f *fakeRepo) DeleteParticipant(_ context.Context, eventID, participantID int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.participants[int(participantID)]
	if !ok || p.EventID != int(eventID) {
		return repo.ErrParticipantNotFound
	}
	delete(f.participants, int(participantID))
	return nil
}

func (f *fakeRepo) MigrateUp(string) error   { return nil }
func (f *fakeRepo) MigrateDown(string) error { return nil }
