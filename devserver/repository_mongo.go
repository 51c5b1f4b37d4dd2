package devserver

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/kochabx/portfoliohub/api"
	"github.com/kochabx/portfoliohub/errors"
)

// userDoc 作品集与订阅内嵌在用户文档中
type userDoc struct {
	ID           string           `bson:"_id"`
	Email        string           `bson:"email"`
	Username     string           `bson:"username"`
	Name         string           `bson:"name,omitempty"`
	Role         string           `bson:"role"`
	Plan         string           `bson:"plan"`
	AvatarURL    string           `bson:"avatarUrl,omitempty"`
	PasswordHash []byte           `bson:"passwordHash"`
	Portfolio    *portfolioDoc    `bson:"portfolio,omitempty"`
	Subscription *subscriptionDoc `bson:"subscription,omitempty"`
}

func (d *userDoc) toAPI() api.User {
	return api.User{
		ID:        d.ID,
		Email:     d.Email,
		Username:  d.Username,
		Name:      d.Name,
		Role:      d.Role,
		Plan:      d.Plan,
		AvatarURL: d.AvatarURL,
	}
}

func (d *userDoc) portfolio() (api.Portfolio, error) {
	if d.Portfolio == nil {
		return api.Portfolio{}, ErrNoPortfolio
	}
	p := d.Portfolio
	return api.Portfolio{
		Username:   d.Username,
		Slug:       p.Slug,
		TemplateID: p.TemplateID,
		Content:    p.Content,
		Theme:      p.Theme,
		Published:  p.Published,
		SEO:        api.SEO{Title: p.SEOTitle, Description: p.SEODescription, Image: p.SEOImage},
		UpdatedAt:  p.UpdatedAt,
	}, nil
}

type portfolioDoc struct {
	Slug           string            `bson:"slug"`
	TemplateID     string            `bson:"templateId"`
	Content        map[string]any    `bson:"content,omitempty"`
	Theme          map[string]string `bson:"theme,omitempty"`
	Published      bool              `bson:"published"`
	SEOTitle       string            `bson:"seoTitle,omitempty"`
	SEODescription string            `bson:"seoDescription,omitempty"`
	SEOImage       string            `bson:"seoImage,omitempty"`
	UpdatedAt      time.Time         `bson:"updatedAt"`
}

type subscriptionDoc struct {
	PlanID           string    `bson:"planId"`
	Status           string    `bson:"status"`
	CurrentPeriodEnd time.Time `bson:"currentPeriodEnd"`
}

// mediaDoc 以 ObjectID 排序保持上传顺序
type mediaDoc struct {
	OID         primitive.ObjectID `bson:"_id"`
	ID          string             `bson:"id"`
	UserID      string             `bson:"userId"`
	URL         string             `bson:"url"`
	Filename    string             `bson:"filename"`
	ContentType string             `bson:"contentType"`
	Size        int64              `bson:"size"`
	CreatedAt   time.Time          `bson:"createdAt"`
}

type mongoRepository struct {
	users *mongo.Collection
	media *mongo.Collection
	now   func() time.Time
}

// NewMongoRepository 使用 users 与 media 两个集合，并确保唯一索引存在
func NewMongoRepository(ctx context.Context, db *mongo.Database, now func() time.Time) (Repository, error) {
	if now == nil {
		now = time.Now
	}
	r := &mongoRepository{
		users: db.Collection("users"),
		media: db.Collection("media"),
		now:   now,
	}

	_, err := r.users.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "email", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "username", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "username", Value: 1}, {Key: "portfolio.slug", Value: 1}}},
	})
	if err != nil {
		return nil, fmt.Errorf("devserver: user indexes: %w", err)
	}
	if _, err := r.media.Indexes().CreateOne(ctx, mongo.IndexModel{Keys: bson.D{{Key: "userId", Value: 1}}}); err != nil {
		return nil, fmt.Errorf("devserver: media indexes: %w", err)
	}
	return r, nil
}

func (r *mongoRepository) CreateUser(ctx context.Context, in api.RegisterInput, hash []byte) (api.User, error) {
	u := newUser(in)
	if n, err := r.users.CountDocuments(ctx, bson.M{"username": u.Username}); err != nil {
		return api.User{}, err
	} else if n > 0 {
		return api.User{}, ErrUsernameTaken
	}
	if n, err := r.users.CountDocuments(ctx, bson.M{"email": u.Email}); err != nil {
		return api.User{}, err
	} else if n > 0 {
		return api.User{}, ErrEmailTaken
	}

	doc := userDoc{
		ID:           u.ID,
		Email:        u.Email,
		Username:     u.Username,
		Name:         u.Name,
		Role:         u.Role,
		Plan:         u.Plan,
		PasswordHash: hash,
	}
	if _, err := r.users.InsertOne(ctx, doc); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return api.User{}, ErrUsernameTaken.WithCause(err)
		}
		return api.User{}, err
	}
	return u, nil
}

func (r *mongoRepository) find(ctx context.Context, filter any) (*userDoc, error) {
	var doc userDoc
	if err := r.users.FindOne(ctx, filter).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return &doc, nil
}

// update 更新后返回新文档
func (r *mongoRepository) update(ctx context.Context, id string, set bson.M) (*userDoc, error) {
	var doc userDoc
	err := r.users.FindOneAndUpdate(ctx, bson.M{"_id": id}, bson.M{"$set": set},
		options.FindOneAndUpdate().SetReturnDocument(options.After)).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return &doc, nil
}

func (r *mongoRepository) Credentials(ctx context.Context, email string) (api.User, []byte, error) {
	doc, err := r.find(ctx, bson.M{"email": strings.ToLower(email)})
	if err != nil {
		return api.User{}, nil, err
	}
	return doc.toAPI(), doc.PasswordHash, nil
}

func (r *mongoRepository) User(ctx context.Context, id string) (api.User, error) {
	doc, err := r.find(ctx, bson.M{"_id": id})
	if err != nil {
		return api.User{}, err
	}
	return doc.toAPI(), nil
}

func (r *mongoRepository) UpdateUser(ctx context.Context, id string, in api.UpdateUserInput) (api.User, error) {
	set := bson.M{}
	if in.Name != nil {
		set["name"] = *in.Name
	}
	if in.AvatarURL != nil {
		set["avatarUrl"] = *in.AvatarURL
	}
	if len(set) == 0 {
		return r.User(ctx, id)
	}
	doc, err := r.update(ctx, id, set)
	if err != nil {
		return api.User{}, err
	}
	return doc.toAPI(), nil
}

func (r *mongoRepository) Portfolio(ctx context.Context, userID string) (api.Portfolio, error) {
	doc, err := r.find(ctx, bson.M{"_id": userID})
	if err != nil {
		return api.Portfolio{}, err
	}
	return doc.portfolio()
}

// SavePortfolio 逐字段 $set，保留已有的发布状态
func (r *mongoRepository) SavePortfolio(ctx context.Context, userID string, in api.SavePortfolioInput) (api.Portfolio, error) {
	doc, err := r.update(ctx, userID, bson.M{
		"portfolio.slug":           in.Slug,
		"portfolio.templateId":     in.TemplateID,
		"portfolio.content":        in.Content,
		"portfolio.theme":          in.Theme,
		"portfolio.seoTitle":       in.SEO.Title,
		"portfolio.seoDescription": in.SEO.Description,
		"portfolio.seoImage":       in.SEO.Image,
		"portfolio.updatedAt":      r.now(),
	})
	if err != nil {
		return api.Portfolio{}, err
	}
	return doc.portfolio()
}

func (r *mongoRepository) Publish(ctx context.Context, userID string, published bool) (api.Portfolio, error) {
	doc, err := r.find(ctx, bson.M{"_id": userID})
	if err != nil {
		return api.Portfolio{}, err
	}
	if doc.Portfolio == nil {
		return api.Portfolio{}, ErrNoPortfolio
	}
	doc, err = r.update(ctx, userID, bson.M{
		"portfolio.published": published,
		"portfolio.updatedAt": r.now(),
	})
	if err != nil {
		return api.Portfolio{}, err
	}
	return doc.portfolio()
}

func (r *mongoRepository) PublicPortfolio(ctx context.Context, username, slug string) (api.Portfolio, error) {
	doc, err := r.find(ctx, bson.M{
		"username":            username,
		"portfolio.slug":      slug,
		"portfolio.published": true,
	})
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return api.Portfolio{}, ErrNoPortfolio
		}
		return api.Portfolio{}, err
	}
	return doc.portfolio()
}

func (r *mongoRepository) AddMedia(ctx context.Context, userID string, item api.MediaItem) (api.MediaItem, error) {
	if _, err := r.find(ctx, bson.M{"_id": userID}); err != nil {
		return api.MediaItem{}, err
	}
	_, err := r.media.InsertOne(ctx, mediaDoc{
		OID:         primitive.NewObjectID(),
		ID:          item.ID,
		UserID:      userID,
		URL:         item.URL,
		Filename:    item.Filename,
		ContentType: item.ContentType,
		Size:        item.Size,
		CreatedAt:   item.CreatedAt,
	})
	if err != nil {
		return api.MediaItem{}, err
	}
	return item, nil
}

func (r *mongoRepository) ListMedia(ctx context.Context, userID string) ([]api.MediaItem, error) {
	if _, err := r.find(ctx, bson.M{"_id": userID}); err != nil {
		return nil, err
	}
	cur, err := r.media.Find(ctx, bson.M{"userId": userID}, options.Find().SetSort(bson.D{{Key: "_id", Value: 1}}))
	if err != nil {
		return nil, err
	}
	var docs []mediaDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, err
	}
	out := make([]api.MediaItem, 0, len(docs))
	for _, d := range docs {
		out = append(out, api.MediaItem{
			ID:          d.ID,
			URL:         d.URL,
			Filename:    d.Filename,
			ContentType: d.ContentType,
			Size:        d.Size,
			CreatedAt:   d.CreatedAt,
		})
	}
	return out, nil
}

func (r *mongoRepository) Subscribe(ctx context.Context, userID string, plan api.Plan) (api.Subscription, error) {
	sub := newSubscription(plan, r.now())
	_, err := r.update(ctx, userID, bson.M{
		"plan": plan.ID,
		"subscription": subscriptionDoc{
			PlanID:           sub.PlanID,
			Status:           sub.Status,
			CurrentPeriodEnd: sub.CurrentPeriodEnd,
		},
	})
	if err != nil {
		return api.Subscription{}, err
	}
	return sub, nil
}
