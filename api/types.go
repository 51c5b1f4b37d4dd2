package api

import "time"

type User struct {
	ID        string `json:"id"`
	Email     string `json:"email"`
	Username  string `json:"username"`
	Name      string `json:"name,omitempty"`
	Role      string `json:"role,omitempty"`
	Plan      string `json:"plan,omitempty"`
	AvatarURL string `json:"avatarUrl,omitempty"`
}

type Template struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Category    string `json:"category,omitempty"`
	PreviewURL  string `json:"previewUrl,omitempty"`
	Premium     bool   `json:"premium"`
}

type SEO struct {
	Title       string `json:"title,omitempty" validate:"omitempty,max=70"`
	Description string `json:"description,omitempty" validate:"omitempty,max=160"`
	Image       string `json:"image,omitempty" validate:"omitempty,url"`
}

type Portfolio struct {
	Username   string            `json:"username"`
	Slug       string            `json:"slug"`
	TemplateID string            `json:"templateId"`
	Content    map[string]any    `json:"content,omitempty"`
	Theme      map[string]string `json:"theme,omitempty"`
	Published  bool              `json:"published"`
	SEO        SEO               `json:"seo"`
	UpdatedAt  time.Time         `json:"updatedAt"`
}

type MediaItem struct {
	ID          string    `json:"id"`
	URL         string    `json:"url"`
	Filename    string    `json:"filename"`
	ContentType string    `json:"contentType"`
	Size        int64     `json:"size"`
	CreatedAt   time.Time `json:"createdAt"`
}

type Plan struct {
	ID         string   `json:"id"`
	Name       string   `json:"name"`
	PriceCents int      `json:"priceCents"`
	Interval   string   `json:"interval"`
	Features   []string `json:"features,omitempty"`
}

type Subscription struct {
	PlanID           string    `json:"planId"`
	Status           string    `json:"status"`
	CurrentPeriodEnd time.Time `json:"currentPeriodEnd"`
}

// Credentials 登录参数。密码只校验非空，长度规则在注册时执行
type Credentials struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type RegisterInput struct {
	Email    string `json:"email" validate:"required,email"`
	Username string `json:"username" validate:"required,username"`
	Password string `json:"password" validate:"required,min=8,max=72"`
	Name     string `json:"name,omitempty" validate:"omitempty,max=80"`
}

type UpdateUserInput struct {
	Name      *string `json:"name,omitempty" validate:"omitempty,max=80"`
	AvatarURL *string `json:"avatarUrl,omitempty" validate:"omitempty,url"`
}

type SavePortfolioInput struct {
	Slug       string            `json:"slug" validate:"required,slug,max=60"`
	TemplateID string            `json:"templateId" validate:"required"`
	Content    map[string]any    `json:"content,omitempty"`
	Theme      map[string]string `json:"theme,omitempty"`
	SEO        SEO               `json:"seo"`
}

type PublishInput struct {
	Published bool `json:"published"`
}

type SubscribeInput struct {
	PlanID string `json:"planId" validate:"required"`
}

// AuthResponse 是 login、register、refresh 的响应体
type AuthResponse struct {
	User User `json:"user"`
}
