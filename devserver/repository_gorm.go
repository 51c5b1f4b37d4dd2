package devserver

import (
	"context"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/kochabx/portfoliohub/api"
	"github.com/kochabx/portfoliohub/errors"
)

type userModel struct {
	ID           string `gorm:"primaryKey;size:36"`
	Email        string `gorm:"size:254;uniqueIndex"`
	Username     string `gorm:"size:32;uniqueIndex"`
	Name         string `gorm:"size:80"`
	Role         string `gorm:"size:16"`
	Plan         string `gorm:"size:32"`
	AvatarURL    string
	PasswordHash []byte
}

func (userModel) TableName() string { return "users" }

func (m *userModel) toAPI() api.User {
	return api.User{
		ID:        m.ID,
		Email:     m.Email,
		Username:  m.Username,
		Name:      m.Name,
		Role:      m.Role,
		Plan:      m.Plan,
		AvatarURL: m.AvatarURL,
	}
}

type portfolioModel struct {
	UserID         string            `gorm:"primaryKey;size:36"`
	Username       string            `gorm:"size:32;index:idx_portfolio_public"`
	Slug           string            `gorm:"size:60;index:idx_portfolio_public"`
	TemplateID     string            `gorm:"size:32"`
	Content        map[string]any    `gorm:"type:text;serializer:json"`
	Theme          map[string]string `gorm:"type:text;serializer:json"`
	Published      bool
	SEOTitle       string
	SEODescription string
	SEOImage       string
	UpdatedAt      time.Time `gorm:"autoUpdateTime:false"`
}

func (portfolioModel) TableName() string { return "portfolios" }

func (m *portfolioModel) toAPI() api.Portfolio {
	return api.Portfolio{
		Username:   m.Username,
		Slug:       m.Slug,
		TemplateID: m.TemplateID,
		Content:    m.Content,
		Theme:      m.Theme,
		Published:  m.Published,
		SEO:        api.SEO{Title: m.SEOTitle, Description: m.SEODescription, Image: m.SEOImage},
		UpdatedAt:  m.UpdatedAt,
	}
}

// mediaModel 以自增 Seq 保持上传顺序
type mediaModel struct {
	Seq         uint   `gorm:"primaryKey"`
	ID          string `gorm:"size:36;uniqueIndex"`
	UserID      string `gorm:"size:36;index"`
	URL         string
	Filename    string
	ContentType string `gorm:"size:128"`
	Size        int64
	CreatedAt   time.Time `gorm:"autoCreateTime:false"`
}

func (mediaModel) TableName() string { return "media" }

type subscriptionModel struct {
	UserID           string `gorm:"primaryKey;size:36"`
	PlanID           string `gorm:"size:32"`
	Status           string `gorm:"size:16"`
	CurrentPeriodEnd time.Time
}

func (subscriptionModel) TableName() string { return "subscriptions" }

// Models 返回需要迁移的表
func Models() []any {
	return []any{&userModel{}, &portfolioModel{}, &mediaModel{}, &subscriptionModel{}}
}

// gormRepository 持久化实现，sqlite/postgres/mysql 通用
type gormRepository struct {
	db  *gorm.DB
	now func() time.Time
}

// NewGormRepository 使用已迁移的连接，见 Models
func NewGormRepository(db *gorm.DB, now func() time.Time) Repository {
	if now == nil {
		now = time.Now
	}
	return &gormRepository{db: db, now: now}
}

func (r *gormRepository) CreateUser(ctx context.Context, in api.RegisterInput, hash []byte) (api.User, error) {
	u := newUser(in)
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if exists(tx, "username = ?", u.Username) {
			return ErrUsernameTaken
		}
		if exists(tx, "email = ?", u.Email) {
			return ErrEmailTaken
		}
		m := userModel{
			ID:           u.ID,
			Email:        u.Email,
			Username:     u.Username,
			Name:         u.Name,
			Role:         u.Role,
			Plan:         u.Plan,
			PasswordHash: hash,
		}
		if err := tx.Create(&m).Error; err != nil {
			// 并发注册时由唯一索引兜底
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return ErrUsernameTaken.WithCause(err)
			}
			return err
		}
		return nil
	})
	if err != nil {
		return api.User{}, err
	}
	return u, nil
}

func exists(tx *gorm.DB, query string, args ...any) bool {
	var n int64
	tx.Model(&userModel{}).Where(query, args...).Count(&n)
	return n > 0
}

func (r *gormRepository) Credentials(ctx context.Context, email string) (api.User, []byte, error) {
	var m userModel
	err := r.db.WithContext(ctx).Where("email = ?", strings.ToLower(email)).First(&m).Error
	if err != nil {
		return api.User{}, nil, notFound(err, ErrUserNotFound)
	}
	return m.toAPI(), m.PasswordHash, nil
}

func (r *gormRepository) User(ctx context.Context, id string) (api.User, error) {
	m, err := r.user(r.db.WithContext(ctx), id)
	if err != nil {
		return api.User{}, err
	}
	return m.toAPI(), nil
}

func (r *gormRepository) user(tx *gorm.DB, id string) (*userModel, error) {
	var m userModel
	if err := tx.First(&m, "id = ?", id).Error; err != nil {
		return nil, notFound(err, ErrUserNotFound)
	}
	return &m, nil
}

func (r *gormRepository) UpdateUser(ctx context.Context, id string, in api.UpdateUserInput) (api.User, error) {
	var out api.User
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		m, err := r.user(tx, id)
		if err != nil {
			return err
		}
		out = m.toAPI()
		applyUserUpdate(&out, in)
		return tx.Model(m).Updates(map[string]any{"name": out.Name, "avatar_url": out.AvatarURL}).Error
	})
	if err != nil {
		return api.User{}, err
	}
	return out, nil
}

func (r *gormRepository) Portfolio(ctx context.Context, userID string) (api.Portfolio, error) {
	db := r.db.WithContext(ctx)
	if _, err := r.user(db, userID); err != nil {
		return api.Portfolio{}, err
	}
	var m portfolioModel
	if err := db.First(&m, "user_id = ?", userID).Error; err != nil {
		return api.Portfolio{}, notFound(err, ErrNoPortfolio)
	}
	return m.toAPI(), nil
}

func (r *gormRepository) SavePortfolio(ctx context.Context, userID string, in api.SavePortfolioInput) (api.Portfolio, error) {
	var m portfolioModel
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		u, err := r.user(tx, userID)
		if err != nil {
			return err
		}
		if err := tx.Where("user_id = ?", userID).Limit(1).Find(&m).Error; err != nil {
			return err
		}
		m.UserID = userID
		m.Username = u.Username
		m.Slug = in.Slug
		m.TemplateID = in.TemplateID
		m.Content = in.Content
		m.Theme = in.Theme
		m.SEOTitle = in.SEO.Title
		m.SEODescription = in.SEO.Description
		m.SEOImage = in.SEO.Image
		m.UpdatedAt = r.now()
		return tx.Save(&m).Error
	})
	if err != nil {
		return api.Portfolio{}, err
	}
	return m.toAPI(), nil
}

func (r *gormRepository) Publish(ctx context.Context, userID string, published bool) (api.Portfolio, error) {
	var m portfolioModel
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := r.user(tx, userID); err != nil {
			return err
		}
		if err := tx.First(&m, "user_id = ?", userID).Error; err != nil {
			return notFound(err, ErrNoPortfolio)
		}
		m.Published = published
		m.UpdatedAt = r.now()
		return tx.Model(&m).Updates(map[string]any{"published": m.Published, "updated_at": m.UpdatedAt}).Error
	})
	if err != nil {
		return api.Portfolio{}, err
	}
	return m.toAPI(), nil
}

func (r *gormRepository) PublicPortfolio(ctx context.Context, username, slug string) (api.Portfolio, error) {
	var m portfolioModel
	err := r.db.WithContext(ctx).
		Where("username = ? AND slug = ? AND published = ?", username, slug, true).
		First(&m).Error
	if err != nil {
		return api.Portfolio{}, notFound(err, ErrNoPortfolio)
	}
	return m.toAPI(), nil
}

func (r *gormRepository) AddMedia(ctx context.Context, userID string, item api.MediaItem) (api.MediaItem, error) {
	db := r.db.WithContext(ctx)
	if _, err := r.user(db, userID); err != nil {
		return api.MediaItem{}, err
	}
	m := mediaModel{
		ID:          item.ID,
		UserID:      userID,
		URL:         item.URL,
		Filename:    item.Filename,
		ContentType: item.ContentType,
		Size:        item.Size,
		CreatedAt:   item.CreatedAt,
	}
	if err := db.Create(&m).Error; err != nil {
		return api.MediaItem{}, err
	}
	return item, nil
}

func (r *gormRepository) ListMedia(ctx context.Context, userID string) ([]api.MediaItem, error) {
	db := r.db.WithContext(ctx)
	if _, err := r.user(db, userID); err != nil {
		return nil, err
	}
	var rows []mediaModel
	if err := db.Where("user_id = ?", userID).Order("seq").Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make([]api.MediaItem, 0, len(rows))
	for _, m := range rows {
		out = append(out, api.MediaItem{
			ID:          m.ID,
			URL:         m.URL,
			Filename:    m.Filename,
			ContentType: m.ContentType,
			Size:        m.Size,
			CreatedAt:   m.CreatedAt,
		})
	}
	return out, nil
}

func (r *gormRepository) Subscribe(ctx context.Context, userID string, plan api.Plan) (api.Subscription, error) {
	sub := newSubscription(plan, r.now())
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		u, err := r.user(tx, userID)
		if err != nil {
			return err
		}
		m := subscriptionModel{
			UserID:           userID,
			PlanID:           sub.PlanID,
			Status:           sub.Status,
			CurrentPeriodEnd: sub.CurrentPeriodEnd,
		}
		if err := tx.Save(&m).Error; err != nil {
			return err
		}
		return tx.Model(u).Update("plan", plan.ID).Error
	})
	if err != nil {
		return api.Subscription{}, err
	}
	return sub, nil
}

func notFound(err error, target *errors.Error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return target
	}
	return err
}
