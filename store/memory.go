package store

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/cppla/maeum/models"
)

// NewMemoryStores returns map-backed stores for tests and demo mode. Data lives only as long
// as the process.
func NewMemoryStores() Stores {
	return Stores{
		Profiles: NewMemoryProfileStore(),
		CheckIns: NewMemoryCheckInStore(),
		Diary:    NewMemoryDiaryStore(),
		Missions: NewMemoryMissionStore(),
		Letters:  NewMemoryLetterStore(),
		Posts:    NewMemoryPostStore(),
		Ping:     func(context.Context) error { return nil },
	}
}

type dayKey struct {
	userID string
	day    models.Day
}

// MemoryProfileStore implements ProfileStore.
type MemoryProfileStore struct {
	mu       sync.RWMutex
	profiles map[string]models.UserProfile
}

func NewMemoryProfileStore() *MemoryProfileStore {
	return &MemoryProfileStore{profiles: make(map[string]models.UserProfile)}
}

func (s *MemoryProfileStore) Get(_ context.Context, userID string) (models.UserProfile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.profiles[userID]
	if !ok {
		return models.UserProfile{}, fmt.Errorf("%w: profile %s", models.ErrNotFound, userID)
	}
	return p, nil
}

func (s *MemoryProfileStore) Create(_ context.Context, p models.UserProfile) (models.UserProfile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.profiles[p.ID]; ok {
		return models.UserProfile{}, fmt.Errorf("%w: profile %s", models.ErrAlreadyExists, p.ID)
	}
	now := time.Now()
	if p.CreatedAt.IsZero() {
		p.CreatedAt = now
	}
	p.UpdatedAt = now
	s.profiles[p.ID] = p
	return p, nil
}

func (s *MemoryProfileStore) Update(_ context.Context, userID string, u models.ProfileUpdate) (models.UserProfile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.profiles[userID]
	if !ok {
		return models.UserProfile{}, fmt.Errorf("%w: profile %s", models.ErrNotFound, userID)
	}
	if u.DisplayName != nil {
		p.DisplayName = *u.DisplayName
	}
	if u.Email != nil {
		p.Email = *u.Email
	}
	if u.PhotoURL != nil {
		p.PhotoURL = *u.PhotoURL
	}
	if u.Streak != nil {
		p.Streak = *u.Streak
	}
	if u.LastCheckIn != nil {
		day := *u.LastCheckIn
		p.LastCheckIn = &day
	}
	p.UpdatedAt = time.Now()
	s.profiles[userID] = p
	return p, nil
}

func (s *MemoryProfileStore) Count(context.Context) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return int64(len(s.profiles)), nil
}

// MemoryCheckInStore implements CheckInStore.
type MemoryCheckInStore struct {
	mu     sync.RWMutex
	nextID uint
	items  map[dayKey]models.CheckIn
}

func NewMemoryCheckInStore() *MemoryCheckInStore {
	return &MemoryCheckInStore{items: make(map[dayKey]models.CheckIn)}
}

func (s *MemoryCheckInStore) Upsert(_ context.Context, c models.CheckIn) (models.CheckIn, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := time.Now()
	k := dayKey{c.UserID, c.Day}
	if prev, ok := s.items[k]; ok {
		c.ID = prev.ID
		c.CreatedAt = prev.CreatedAt
	} else {
		s.nextID++
		c.ID = s.nextID
		c.CreatedAt = now
	}
	c.UpdatedAt = now
	s.items[k] = c
	return c, nil
}

func (s *MemoryCheckInStore) Get(_ context.Context, userID string, day models.Day) (models.CheckIn, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.items[dayKey{userID, day}]
	if !ok {
		return models.CheckIn{}, fmt.Errorf("%w: check-in %s on %s", models.ErrNotFound, userID, day)
	}
	return c, nil
}

func (s *MemoryCheckInStore) Days(_ context.Context, userID string) ([]models.Day, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	days := []models.Day{}
	for k := range s.items {
		if k.userID == userID {
			days = append(days, k.day)
		}
	}
	sort.Slice(days, func(i, j int) bool { return days[i] < days[j] })
	return days, nil
}

func (s *MemoryCheckInStore) CountOnDay(_ context.Context, day models.Day) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var n int64
	for k := range s.items {
		if k.day == day {
			n++
		}
	}
	return n, nil
}

// MemoryDiaryStore implements DiaryStore.
type MemoryDiaryStore struct {
	mu     sync.RWMutex
	nextID uint
	items  map[dayKey]models.DiaryEntry
}

func NewMemoryDiaryStore() *MemoryDiaryStore {
	return &MemoryDiaryStore{items: make(map[dayKey]models.DiaryEntry)}
}

func (s *MemoryDiaryStore) Upsert(_ context.Context, e models.DiaryEntry) (models.DiaryEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := time.Now()
	k := dayKey{e.UserID, e.Day}
	if prev, ok := s.items[k]; ok {
		e.ID = prev.ID
		e.CreatedAt = prev.CreatedAt
	} else {
		s.nextID++
		e.ID = s.nextID
		e.CreatedAt = now
	}
	e.UpdatedAt = now
	s.items[k] = e
	return e, nil
}

func (s *MemoryDiaryStore) Get(_ context.Context, userID string, day models.Day) (models.DiaryEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.items[dayKey{userID, day}]
	if !ok {
		return models.DiaryEntry{}, fmt.Errorf("%w: diary %s on %s", models.ErrNotFound, userID, day)
	}
	return e, nil
}

func (s *MemoryDiaryStore) ListRange(_ context.Context, userID string, from, to models.Day) ([]models.DiaryEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := []models.DiaryEntry{}
	for k, e := range s.items {
		if k.userID == userID && k.day >= from && k.day <= to {
			out = append(out, e)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Day < out[j].Day })
	return out, nil
}

// MemoryMissionStore implements MissionStore. order keeps creation order for List.
type MemoryMissionStore struct {
	mu       sync.RWMutex
	missions map[string]models.Mission
	order    []string
	seq      map[string]int64
}

func NewMemoryMissionStore() *MemoryMissionStore {
	return &MemoryMissionStore{missions: make(map[string]models.Mission), seq: make(map[string]int64)}
}

func (s *MemoryMissionStore) Add(_ context.Context, m models.Mission) (models.Mission, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := time.Now()
	m.ID = uuid.NewString()
	m.Completed = false
	m.CompletedAt = nil
	if m.CreatedAt.IsZero() {
		m.CreatedAt = now
	}
	m.UpdatedAt = now
	s.seq[m.UserID]++
	m.Seq = s.seq[m.UserID]
	s.missions[m.ID] = m
	s.order = append(s.order, m.ID)
	return m, nil
}

func (s *MemoryMissionStore) Get(_ context.Context, id string) (models.Mission, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	m, ok := s.missions[id]
	if !ok {
		return models.Mission{}, fmt.Errorf("%w: mission %s", models.ErrNotFound, id)
	}
	return m, nil
}

func (s *MemoryMissionStore) Toggle(_ context.Context, id string, at time.Time) (models.Mission, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	m, ok := s.missions[id]
	if !ok {
		return models.Mission{}, fmt.Errorf("%w: mission %s", models.ErrNotFound, id)
	}
	m.Completed = !m.Completed
	if m.Completed {
		m.CompletedAt = &at
	} else {
		m.CompletedAt = nil
	}
	m.UpdatedAt = time.Now()
	s.missions[id] = m
	return m, nil
}

func (s *MemoryMissionStore) Remove(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.missions[id]; !ok {
		return fmt.Errorf("%w: mission %s", models.ErrNotFound, id)
	}
	delete(s.missions, id)
	for i, mid := range s.order {
		if mid == id {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	return nil
}

func (s *MemoryMissionStore) List(_ context.Context, userID string) ([]models.Mission, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := []models.Mission{}
	for _, id := range s.order {
		if m := s.missions[id]; m.UserID == userID {
			out = append(out, m)
		}
	}
	return out, nil
}

func (s *MemoryMissionStore) ResetRecurring(_ context.Context, userID string, today models.Day, dayStart time.Time) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var n int64
	for id, m := range s.missions {
		if m.UserID != userID || !m.NeedsReset(dayStart) {
			continue
		}
		day := today
		m.Completed = false
		m.CompletedAt = nil
		m.LastResetDay = &day
		m.UpdatedAt = time.Now()
		s.missions[id] = m
		n++
	}
	return n, nil
}

func (s *MemoryMissionStore) UsersNeedingReset(_ context.Context, dayStart time.Time) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	seen := map[string]bool{}
	users := []string{}
	for _, id := range s.order {
		m := s.missions[id]
		if m.NeedsReset(dayStart) && !seen[m.UserID] {
			seen[m.UserID] = true
			users = append(users, m.UserID)
		}
	}
	return users, nil
}

// MemoryLetterStore implements LetterStore.
type MemoryLetterStore struct {
	mu      sync.RWMutex
	letters map[string]models.Letter
}

func NewMemoryLetterStore() *MemoryLetterStore {
	return &MemoryLetterStore{letters: make(map[string]models.Letter)}
}

func (s *MemoryLetterStore) Create(_ context.Context, l models.Letter) (models.Letter, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := time.Now()
	l.ID = uuid.NewString()
	l.CreatedAt = now
	l.UpdatedAt = now
	s.letters[l.ID] = l
	return l, nil
}

func (s *MemoryLetterStore) List(_ context.Context, userID string) ([]models.Letter, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := []models.Letter{}
	for _, l := range s.letters {
		if l.UserID == userID {
			out = append(out, l)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (s *MemoryLetterStore) Delete(_ context.Context, userID, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	l, ok := s.letters[id]
	if !ok || l.UserID != userID {
		return fmt.Errorf("%w: letter %s", models.ErrNotFound, id)
	}
	delete(s.letters, id)
	return nil
}

// MemoryPostStore implements PostStore.
type MemoryPostStore struct {
	mu       sync.RWMutex
	posts    map[string]models.Post
	comments map[string]models.Comment
}

func NewMemoryPostStore() *MemoryPostStore {
	return &MemoryPostStore{
		posts:    make(map[string]models.Post),
		comments: make(map[string]models.Comment),
	}
}

func (s *MemoryPostStore) Create(_ context.Context, p models.Post) (models.Post, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := time.Now()
	p.ID = uuid.NewString()
	p.Likes = 0
	p.Comments = 0
	p.CreatedAt = now
	p.UpdatedAt = now
	s.posts[p.ID] = p
	return p, nil
}

func (s *MemoryPostStore) Get(_ context.Context, id string) (models.Post, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.posts[id]
	if !ok {
		return models.Post{}, fmt.Errorf("%w: post %s", models.ErrNotFound, id)
	}
	return p, nil
}

func (s *MemoryPostStore) List(_ context.Context, q models.PostQuery) ([]models.Post, int64, error) {
	q = normalizePage(q)
	s.mu.RLock()
	all := make([]models.Post, 0, len(s.posts))
	for _, p := range s.posts {
		if q.Category == "" || p.Category == q.Category {
			all = append(all, p)
		}
	}
	s.mu.RUnlock()

	sort.Slice(all, func(i, j int) bool {
		if q.Sort == models.SortPopular && all[i].Likes != all[j].Likes {
			return all[i].Likes > all[j].Likes
		}
		return all[i].CreatedAt.After(all[j].CreatedAt)
	})
	total := int64(len(all))
	start := (q.Page - 1) * q.PageSize
	if start >= len(all) {
		return []models.Post{}, total, nil
	}
	end := start + q.PageSize
	if end > len(all) {
		end = len(all)
	}
	return all[start:end], total, nil
}

func (s *MemoryPostStore) Like(_ context.Context, id string) (models.Post, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.posts[id]
	if !ok {
		return models.Post{}, fmt.Errorf("%w: post %s", models.ErrNotFound, id)
	}
	p.Likes++
	s.posts[id] = p
	return p, nil
}

func (s *MemoryPostStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.posts[id]; !ok {
		return fmt.Errorf("%w: post %s", models.ErrNotFound, id)
	}
	delete(s.posts, id)
	for cid, c := range s.comments {
		if c.PostID == id {
			delete(s.comments, cid)
		}
	}
	return nil
}

func (s *MemoryPostStore) Count(context.Context) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return int64(len(s.posts)), nil
}

func (s *MemoryPostStore) AddComment(_ context.Context, c models.Comment) (models.Comment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.posts[c.PostID]
	if !ok {
		return models.Comment{}, fmt.Errorf("%w: post %s", models.ErrNotFound, c.PostID)
	}
	c.ID = uuid.NewString()
	c.CreatedAt = time.Now()
	s.comments[c.ID] = c
	p.Comments++
	s.posts[p.ID] = p
	return c, nil
}

func (s *MemoryPostStore) GetComment(_ context.Context, id string) (models.Comment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.comments[id]
	if !ok {
		return models.Comment{}, fmt.Errorf("%w: comment %s", models.ErrNotFound, id)
	}
	return c, nil
}

func (s *MemoryPostStore) ListComments(_ context.Context, postID string) ([]models.Comment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if _, ok := s.posts[postID]; !ok {
		return nil, fmt.Errorf("%w: post %s", models.ErrNotFound, postID)
	}
	out := []models.Comment{}
	for _, c := range s.comments {
		if c.PostID == postID {
			out = append(out, c)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (s *MemoryPostStore) DeleteComment(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.comments[id]
	if !ok {
		return fmt.Errorf("%w: comment %s", models.ErrNotFound, id)
	}
	delete(s.comments, id)
	if p, ok := s.posts[c.PostID]; ok && p.Comments > 0 {
		p.Comments--
		s.posts[p.ID] = p
	}
	return nil
}
