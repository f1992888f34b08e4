package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/cppla/maeum/models"
)

// AllModels lists every persisted model for AutoMigrate.
func AllModels() []interface{} {
	return []interface{}{
		&models.UserProfile{},
		&models.CheckIn{},
		&models.DiaryEntry{},
		&models.Mission{},
		&models.Letter{},
		&models.Post{},
		&models.Comment{},
	}
}

// NewGormStores returns stores backed by db. The db should be opened with TranslateError
// so duplicate keys surface as gorm.ErrDuplicatedKey.
func NewGormStores(db *gorm.DB) Stores {
	return Stores{
		Profiles: &GormProfileStore{db: db},
		CheckIns: &GormCheckInStore{db: db},
		Diary:    &GormDiaryStore{db: db},
		Missions: &GormMissionStore{db: db},
		Letters:  &GormLetterStore{db: db},
		Posts:    &GormPostStore{db: db},
		Ping: func(ctx context.Context) error {
			sqlDB, err := db.DB()
			if err != nil {
				return translate(err, "database")
			}
			if err := sqlDB.PingContext(ctx); err != nil {
				return translate(err, "database")
			}
			return nil
		},
	}
}

// translate maps driver errors onto the shared error kinds.
func translate(err error, what string) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return fmt.Errorf("%w: %s", models.ErrNotFound, what)
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return fmt.Errorf("%w: %s", models.ErrAlreadyExists, what)
	default:
		return fmt.Errorf("%w: %s: %v", models.ErrUnavailable, what, err)
	}
}

// GormProfileStore implements ProfileStore.
type GormProfileStore struct{ db *gorm.DB }

func (s *GormProfileStore) Get(ctx context.Context, userID string) (models.UserProfile, error) {
	var p models.UserProfile
	if err := s.db.WithContext(ctx).First(&p, "id = ?", userID).Error; err != nil {
		return models.UserProfile{}, translate(err, "profile "+userID)
	}
	return p, nil
}

func (s *GormProfileStore) Create(ctx context.Context, p models.UserProfile) (models.UserProfile, error) {
	if err := s.db.WithContext(ctx).Create(&p).Error; err != nil {
		return models.UserProfile{}, translate(err, "profile "+p.ID)
	}
	return p, nil
}

func (s *GormProfileStore) Update(ctx context.Context, userID string, u models.ProfileUpdate) (models.UserProfile, error) {
	updates := map[string]interface{}{"updated_at": time.Now()}
	if u.DisplayName != nil {
		updates["display_name"] = *u.DisplayName
	}
	if u.Email != nil {
		updates["email"] = *u.Email
	}
	if u.PhotoURL != nil {
		updates["photo_url"] = *u.PhotoURL
	}
	if u.Streak != nil {
		updates["streak"] = *u.Streak
	}
	if u.LastCheckIn != nil {
		updates["last_check_in"] = *u.LastCheckIn
	}
	res := s.db.WithContext(ctx).Model(&models.UserProfile{}).Where("id = ?", userID).Updates(updates)
	if res.Error != nil {
		return models.UserProfile{}, translate(res.Error, "profile "+userID)
	}
	if res.RowsAffected == 0 {
		return models.UserProfile{}, fmt.Errorf("%w: profile %s", models.ErrNotFound, userID)
	}
	return s.Get(ctx, userID)
}

func (s *GormProfileStore) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := s.db.WithContext(ctx).Model(&models.UserProfile{}).Count(&n).Error; err != nil {
		return 0, translate(err, "profiles")
	}
	return n, nil
}

// GormCheckInStore implements CheckInStore.
type GormCheckInStore struct{ db *gorm.DB }

func (s *GormCheckInStore) Upsert(ctx context.Context, c models.CheckIn) (models.CheckIn, error) {
	now := time.Now()
	c.ID = 0
	c.CreatedAt = now
	c.UpdatedAt = now
	// Atomic upsert on the (user_id, day) unique index
	err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}, {Name: "day"}},
		DoUpdates: clause.AssignmentColumns([]string{"emotion", "stress", "energy", "sleep_hours", "note", "updated_at"}),
	}).Create(&c).Error
	if err != nil {
		return models.CheckIn{}, translate(err, "check-in")
	}
	return s.Get(ctx, c.UserID, c.Day)
}

func (s *GormCheckInStore) Get(ctx context.Context, userID string, day models.Day) (models.CheckIn, error) {
	var c models.CheckIn
	if err := s.db.WithContext(ctx).Where("user_id = ? AND day = ?", userID, day).First(&c).Error; err != nil {
		return models.CheckIn{}, translate(err, fmt.Sprintf("check-in %s on %s", userID, day))
	}
	return c, nil
}

func (s *GormCheckInStore) Days(ctx context.Context, userID string) ([]models.Day, error) {
	days := []models.Day{}
	if err := s.db.WithContext(ctx).Model(&models.CheckIn{}).
		Where("user_id = ?", userID).Order("day ASC").Pluck("day", &days).Error; err != nil {
		return nil, translate(err, "check-in days")
	}
	return days, nil
}

func (s *GormCheckInStore) CountOnDay(ctx context.Context, day models.Day) (int64, error) {
	var n int64
	if err := s.db.WithContext(ctx).Model(&models.CheckIn{}).Where("day = ?", day).Count(&n).Error; err != nil {
		return 0, translate(err, "check-ins")
	}
	return n, nil
}

// GormDiaryStore implements DiaryStore.
type GormDiaryStore struct{ db *gorm.DB }

func (s *GormDiaryStore) Upsert(ctx context.Context, e models.DiaryEntry) (models.DiaryEntry, error) {
	now := time.Now()
	e.ID = 0
	e.CreatedAt = now
	e.UpdatedAt = now
	err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}, {Name: "day"}},
		DoUpdates: clause.AssignmentColumns([]string{"content", "emotion", "updated_at"}),
	}).Create(&e).Error
	if err != nil {
		return models.DiaryEntry{}, translate(err, "diary entry")
	}
	return s.Get(ctx, e.UserID, e.Day)
}

func (s *GormDiaryStore) Get(ctx context.Context, userID string, day models.Day) (models.DiaryEntry, error) {
	var e models.DiaryEntry
	if err := s.db.WithContext(ctx).Where("user_id = ? AND day = ?", userID, day).First(&e).Error; err != nil {
		return models.DiaryEntry{}, translate(err, fmt.Sprintf("diary %s on %s", userID, day))
	}
	return e, nil
}

func (s *GormDiaryStore) ListRange(ctx context.Context, userID string, from, to models.Day) ([]models.DiaryEntry, error) {
	entries := []models.DiaryEntry{}
	if err := s.db.WithContext(ctx).
		Where("user_id = ? AND day >= ? AND day <= ?", userID, from, to).
		Order("day ASC").Find(&entries).Error; err != nil {
		return nil, translate(err, "diary entries")
	}
	return entries, nil
}

// GormMissionStore implements MissionStore.
type GormMissionStore struct{ db *gorm.DB }

// Add appends a mission after the user's last one. Callers serialize adds per user; a lost
// race surfaces as ErrAlreadyExists from the (user_id, seq) unique index.
func (s *GormMissionStore) Add(ctx context.Context, m models.Mission) (models.Mission, error) {
	now := time.Now()
	m.ID = uuid.NewString()
	m.Completed = false
	m.CompletedAt = nil
	if m.CreatedAt.IsZero() {
		m.CreatedAt = now
	}
	m.UpdatedAt = now
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var last int64
		if err := tx.Model(&models.Mission{}).Where("user_id = ?", m.UserID).
			Select("COALESCE(MAX(seq), 0)").Scan(&last).Error; err != nil {
			return err
		}
		m.Seq = last + 1
		return tx.Create(&m).Error
	})
	if err != nil {
		return models.Mission{}, translate(err, "mission")
	}
	return m, nil
}

func (s *GormMissionStore) Get(ctx context.Context, id string) (models.Mission, error) {
	var m models.Mission
	if err := s.db.WithContext(ctx).First(&m, "id = ?", id).Error; err != nil {
		return models.Mission{}, translate(err, "mission "+id)
	}
	return m, nil
}

func (s *GormMissionStore) Toggle(ctx context.Context, id string, at time.Time) (models.Mission, error) {
	var out models.Mission
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var m models.Mission
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&m, "id = ?", id).Error; err != nil {
			return err
		}
		m.Completed = !m.Completed
		if m.Completed {
			m.CompletedAt = &at
		} else {
			m.CompletedAt = nil
		}
		m.UpdatedAt = time.Now()
		if err := tx.Model(&models.Mission{}).Where("id = ?", id).Updates(map[string]interface{}{
			"completed":    m.Completed,
			"completed_at": m.CompletedAt,
			"updated_at":   m.UpdatedAt,
		}).Error; err != nil {
			return err
		}
		out = m
		return nil
	})
	if err != nil {
		return models.Mission{}, translate(err, "mission "+id)
	}
	return out, nil
}

func (s *GormMissionStore) Remove(ctx context.Context, id string) error {
	res := s.db.WithContext(ctx).Where("id = ?", id).Delete(&models.Mission{})
	if res.Error != nil {
		return translate(res.Error, "mission "+id)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("%w: mission %s", models.ErrNotFound, id)
	}
	return nil
}

func (s *GormMissionStore) List(ctx context.Context, userID string) ([]models.Mission, error) {
	missions := []models.Mission{}
	if err := s.db.WithContext(ctx).Where("user_id = ?", userID).
		Order("seq ASC").Find(&missions).Error; err != nil {
		return nil, translate(err, "missions")
	}
	return missions, nil
}

func (s *GormMissionStore) resettable(tx *gorm.DB, dayStart time.Time) *gorm.DB {
	return tx.Model(&models.Mission{}).
		Where("recurring = ? AND completed = ?", true, true).
		Where("completed_at IS NULL OR completed_at < ?", dayStart)
}

func (s *GormMissionStore) ResetRecurring(ctx context.Context, userID string, today models.Day, dayStart time.Time) (int64, error) {
	res := s.resettable(s.db.WithContext(ctx), dayStart).Where("user_id = ?", userID).
		Updates(map[string]interface{}{
			"completed":      false,
			"completed_at":   nil,
			"last_reset_day": today,
			"updated_at":     time.Now(),
		})
	if res.Error != nil {
		return 0, translate(res.Error, "mission reset")
	}
	return res.RowsAffected, nil
}

func (s *GormMissionStore) UsersNeedingReset(ctx context.Context, dayStart time.Time) ([]string, error) {
	users := []string{}
	if err := s.resettable(s.db.WithContext(ctx), dayStart).
		Distinct().Pluck("user_id", &users).Error; err != nil {
		return nil, translate(err, "mission reset")
	}
	return users, nil
}

// GormLetterStore implements LetterStore.
type GormLetterStore struct{ db *gorm.DB }

func (s *GormLetterStore) Create(ctx context.Context, l models.Letter) (models.Letter, error) {
	now := time.Now()
	l.ID = uuid.NewString()
	l.CreatedAt = now
	l.UpdatedAt = now
	if err := s.db.WithContext(ctx).Create(&l).Error; err != nil {
		return models.Letter{}, translate(err, "letter")
	}
	return l, nil
}

func (s *GormLetterStore) List(ctx context.Context, userID string) ([]models.Letter, error) {
	letters := []models.Letter{}
	if err := s.db.WithContext(ctx).Where("user_id = ?", userID).
		Order("created_at DESC").Find(&letters).Error; err != nil {
		return nil, translate(err, "letters")
	}
	return letters, nil
}

func (s *GormLetterStore) Delete(ctx context.Context, userID, id string) error {
	res := s.db.WithContext(ctx).Where("id = ? AND user_id = ?", id, userID).Delete(&models.Letter{})
	if res.Error != nil {
		return translate(res.Error, "letter "+id)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("%w: letter %s", models.ErrNotFound, id)
	}
	return nil
}

// GormPostStore implements PostStore.
type GormPostStore struct{ db *gorm.DB }

func (s *GormPostStore) Create(ctx context.Context, p models.Post) (models.Post, error) {
	now := time.Now()
	p.ID = uuid.NewString()
	p.Likes = 0
	p.Comments = 0
	p.CreatedAt = now
	p.UpdatedAt = now
	if err := s.db.WithContext(ctx).Create(&p).Error; err != nil {
		return models.Post{}, translate(err, "post")
	}
	return p, nil
}

func (s *GormPostStore) Get(ctx context.Context, id string) (models.Post, error) {
	var p models.Post
	if err := s.db.WithContext(ctx).First(&p, "id = ?", id).Error; err != nil {
		return models.Post{}, translate(err, "post "+id)
	}
	return p, nil
}

func (s *GormPostStore) List(ctx context.Context, q models.PostQuery) ([]models.Post, int64, error) {
	q = normalizePage(q)
	query := s.db.WithContext(ctx).Model(&models.Post{})
	if q.Category != "" {
		query = query.Where("category = ?", q.Category)
	}
	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, translate(err, "posts")
	}
	if q.Sort == models.SortPopular {
		query = query.Order("likes DESC")
	}
	posts := []models.Post{}
	if err := query.Order("created_at DESC").
		Offset((q.Page - 1) * q.PageSize).Limit(q.PageSize).Find(&posts).Error; err != nil {
		return nil, 0, translate(err, "posts")
	}
	return posts, total, nil
}

func (s *GormPostStore) Like(ctx context.Context, id string) (models.Post, error) {
	res := s.db.WithContext(ctx).Model(&models.Post{}).Where("id = ?", id).
		UpdateColumn("likes", gorm.Expr("likes + 1"))
	if res.Error != nil {
		return models.Post{}, translate(res.Error, "post "+id)
	}
	if res.RowsAffected == 0 {
		return models.Post{}, fmt.Errorf("%w: post %s", models.ErrNotFound, id)
	}
	return s.Get(ctx, id)
}

func (s *GormPostStore) Delete(ctx context.Context, id string) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Where("id = ?", id).Delete(&models.Post{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return tx.Where("post_id = ?", id).Delete(&models.Comment{}).Error
	})
	return translate(err, "post "+id)
}

func (s *GormPostStore) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := s.db.WithContext(ctx).Model(&models.Post{}).Count(&n).Error; err != nil {
		return 0, translate(err, "posts")
	}
	return n, nil
}

func (s *GormPostStore) AddComment(ctx context.Context, c models.Comment) (models.Comment, error) {
	c.ID = uuid.NewString()
	c.CreatedAt = time.Now()
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.Post{}).Where("id = ?", c.PostID).
			UpdateColumn("comments", gorm.Expr("comments + 1"))
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return tx.Create(&c).Error
	})
	if err != nil {
		return models.Comment{}, translate(err, "post "+c.PostID)
	}
	return c, nil
}

func (s *GormPostStore) GetComment(ctx context.Context, id string) (models.Comment, error) {
	var c models.Comment
	if err := s.db.WithContext(ctx).First(&c, "id = ?", id).Error; err != nil {
		return models.Comment{}, translate(err, "comment "+id)
	}
	return c, nil
}

func (s *GormPostStore) ListComments(ctx context.Context, postID string) ([]models.Comment, error) {
	if _, err := s.Get(ctx, postID); err != nil {
		return nil, err
	}
	comments := []models.Comment{}
	if err := s.db.WithContext(ctx).Where("post_id = ?", postID).
		Order("created_at ASC").Find(&comments).Error; err != nil {
		return nil, translate(err, "comments")
	}
	return comments, nil
}

func (s *GormPostStore) DeleteComment(ctx context.Context, id string) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var c models.Comment
		if err := tx.First(&c, "id = ?", id).Error; err != nil {
			return err
		}
		if err := tx.Delete(&models.Comment{}, "id = ?", id).Error; err != nil {
			return err
		}
		return tx.Model(&models.Post{}).Where("id = ? AND comments > 0", c.PostID).
			UpdateColumn("comments", gorm.Expr("comments - 1")).Error
	})
	return translate(err, "comment "+id)
}
