package api

import (
	"bytes"
	"context"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"path"

	khttp "github.com/kochabx/portfoliohub/core/net/http"
	"github.com/kochabx/portfoliohub/core/validator"
	"github.com/kochabx/portfoliohub/errors"
)

const (
	PathRegister    = "/auth/register"
	PathLogin       = "/auth/login"
	PathRefresh     = "/auth/refresh"
	PathLogout      = "/auth/logout"
	PathMe          = "/users/me"
	PathTemplates   = "/templates"
	PathMyPortfolio = "/portfolios/me"
	PathPublish     = "/portfolios/me/publish"
	PathPublic      = "/p"
	PathMedia       = "/media"
	PathPlans       = "/billing/plans"
	PathSubscribe   = "/billing/subscribe"

	// MediaField multipart 表单中文件字段名
	MediaField = "file"
)

func (c *Client) check(ctx context.Context, in any) error {
	if err := c.validate.StructCtx(ctx, in); err != nil {
		return validator.ToError(err)
	}
	return nil
}

// Register 注册并登录
func (c *Client) Register(ctx context.Context, in RegisterInput) (*User, error) {
	if err := c.check(ctx, in); err != nil {
		return nil, err
	}

	var resp AuthResponse
	if err := c.http.Post(ctx, PathRegister, in, &resp, khttp.WithoutRefresh()); err != nil {
		return nil, err
	}
	return &resp.User, nil
}

// Login 用邮箱和密码登录，成功后服务端写入会话 cookie
func (c *Client) Login(ctx context.Context, email, password string) (*User, error) {
	in := Credentials{Email: email, Password: password}
	if err := c.check(ctx, in); err != nil {
		return nil, err
	}

	var resp AuthResponse
	if err := c.http.Post(ctx, PathLogin, in, &resp, khttp.WithoutRefresh()); err != nil {
		return nil, err
	}
	return &resp.User, nil
}

// Refresh 用 refresh_token cookie 换新的会话并返回当前用户
func (c *Client) Refresh(ctx context.Context) (*User, error) {
	var resp AuthResponse
	req := khttp.NewRefreshRequest(c.refreshPath)
	req.Result = &resp
	if _, err := c.http.Do(ctx, req); err != nil {
		return nil, err
	}
	return &resp.User, nil
}

// Logout 使服务端会话失效
func (c *Client) Logout(ctx context.Context) error {
	return c.http.Post(ctx, PathLogout, nil, nil, khttp.WithoutRefresh())
}

func (c *Client) Me(ctx context.Context) (*User, error) {
	var u User
	if err := c.http.Get(ctx, PathMe, &u); err != nil {
		return nil, err
	}
	return &u, nil
}

func (c *Client) UpdateMe(ctx context.Context, in UpdateUserInput) (*User, error) {
	if err := c.check(ctx, in); err != nil {
		return nil, err
	}

	var u User
	if err := c.http.Put(ctx, PathMe, in, &u); err != nil {
		return nil, err
	}
	return &u, nil
}

func (c *Client) Templates(ctx context.Context) ([]Template, error) {
	var out []Template
	if err := c.http.Get(ctx, PathTemplates, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) MyPortfolio(ctx context.Context) (*Portfolio, error) {
	var p Portfolio
	if err := c.http.Get(ctx, PathMyPortfolio, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

func (c *Client) SavePortfolio(ctx context.Context, in SavePortfolioInput) (*Portfolio, error) {
	if err := c.check(ctx, in); err != nil {
		return nil, err
	}

	var p Portfolio
	if err := c.http.Put(ctx, PathMyPortfolio, in, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

// Publish 发布或下线作品集
func (c *Client) Publish(ctx context.Context, published bool) (*Portfolio, error) {
	var p Portfolio
	if err := c.http.Post(ctx, PathPublish, PublishInput{Published: published}, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

// PublicPortfolio 读取已发布的作品集，无需登录
func (c *Client) PublicPortfolio(ctx context.Context, username, slug string) (*Portfolio, error) {
	if username == "" || slug == "" {
		return nil, errors.BadRequest("username and slug are required")
	}

	var p Portfolio
	route := path.Join(PathPublic, url.PathEscape(username), url.PathEscape(slug))
	if err := c.http.Get(ctx, route, &p, khttp.WithoutRefresh()); err != nil {
		return nil, err
	}
	return &p, nil
}

// UploadMedia 以 multipart 上传文件
func (c *Client) UploadMedia(ctx context.Context, filename string, r io.Reader) (*MediaItem, error) {
	if filename == "" {
		return nil, errors.BadRequest("filename is required")
	}

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	part, err := mw.CreateFormFile(MediaField, filename)
	if err != nil {
		return nil, errors.Wrap(err, http.StatusBadRequest, "build upload")
	}
	if _, err := io.Copy(part, r); err != nil {
		return nil, errors.Wrap(err, http.StatusBadRequest, "read upload")
	}
	if err := mw.Close(); err != nil {
		return nil, errors.Wrap(err, http.StatusBadRequest, "build upload")
	}

	var item MediaItem
	_, err = c.http.Do(ctx, &khttp.Request{
		Method: khttp.MethodPost,
		Path:   PathMedia,
		Header: http.Header{khttp.HeaderContentType: {mw.FormDataContentType()}},
		Body:   body.Bytes(),
		Result: &item,
	})
	if err != nil {
		return nil, err
	}
	return &item, nil
}

func (c *Client) ListMedia(ctx context.Context) ([]MediaItem, error) {
	var out []MediaItem
	if err := c.http.Get(ctx, PathMedia, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) Plans(ctx context.Context) ([]Plan, error) {
	var out []Plan
	if err := c.http.Get(ctx, PathPlans, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) Subscribe(ctx context.Context, planID string) (*Subscription, error) {
	in := SubscribeInput{PlanID: planID}
	if err := c.check(ctx, in); err != nil {
		return nil, err
	}

	var sub Subscription
	if err := c.http.Post(ctx, PathSubscribe, in, &sub); err != nil {
		return nil, err
	}
	return &sub, nil
}
