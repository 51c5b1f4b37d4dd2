package devserver

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/kochabx/portfoliohub/api"
	"github.com/kochabx/portfoliohub/errors"
	"github.com/kochabx/portfoliohub/store/oss/minio"
	"github.com/kochabx/portfoliohub/transport/http/response"
)

func (s *Server) listTemplates(c *gin.Context) {
	response.GinJSON(c, templates)
}

func (s *Server) listPlans(c *gin.Context) {
	response.GinJSON(c, plans)
}

func (s *Server) publicPortfolio(c *gin.Context) {
	p, err := s.repo.PublicPortfolio(c.Request.Context(), c.Param("username"), c.Param("slug"))
	if err != nil {
		response.GinJSONE(c, err)
		return
	}
	response.GinJSON(c, p)
}

func (s *Server) me(c *gin.Context) {
	id, ok := currentUserID(c)
	if !ok {
		return
	}
	u, err := s.repo.User(c.Request.Context(), id)
	if err != nil {
		// 账号不存在时会话无效
		response.GinJSONE(c, ErrSessionExpired.WithCause(err))
		return
	}
	response.GinJSON(c, u)
}

func (s *Server) updateMe(c *gin.Context) {
	id, ok := currentUserID(c)
	if !ok {
		return
	}
	var in api.UpdateUserInput
	if !s.bind(c, &in) {
		return
	}
	u, err := s.repo.UpdateUser(c.Request.Context(), id, in)
	if err != nil {
		response.GinJSONE(c, err)
		return
	}
	response.GinJSON(c, u)
}

func (s *Server) myPortfolio(c *gin.Context) {
	id, ok := currentUserID(c)
	if !ok {
		return
	}
	p, err := s.repo.Portfolio(c.Request.Context(), id)
	if err != nil {
		response.GinJSONE(c, err)
		return
	}
	response.GinJSON(c, p)
}

func (s *Server) savePortfolio(c *gin.Context) {
	id, ok := currentUserID(c)
	if !ok {
		return
	}
	var in api.SavePortfolioInput
	if !s.bind(c, &in) {
		return
	}
	if _, ok := templateByID(in.TemplateID); !ok {
		response.GinJSONE(c, ErrTemplateAbsent.WithMetadata(map[string]string{"templateId": in.TemplateID}))
		return
	}
	p, err := s.repo.SavePortfolio(c.Request.Context(), id, in)
	if err != nil {
		response.GinJSONE(c, err)
		return
	}
	response.GinJSON(c, p)
}

func (s *Server) publish(c *gin.Context) {
	id, ok := currentUserID(c)
	if !ok {
		return
	}
	var in api.PublishInput
	if !s.bind(c, &in) {
		return
	}
	p, err := s.repo.Publish(c.Request.Context(), id, in.Published)
	if err != nil {
		response.GinJSONE(c, err)
		return
	}
	response.GinJSON(c, p)
}

func (s *Server) uploadMedia(c *gin.Context) {
	id, ok := currentUserID(c)
	if !ok {
		return
	}
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxUploadSize)

	fh, err := c.FormFile(api.MediaField)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			response.GinJSONE(c, errors.New(http.StatusRequestEntityTooLarge, "file exceeds %d bytes", maxUploadSize))
			return
		}
		response.GinJSONE(c, errors.BadRequest("missing %q file field", api.MediaField).WithCause(err))
		return
	}

	contentType := fh.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	item := newMediaItem(api.MediaItem{
		Filename:    fh.Filename,
		ContentType: contentType,
		Size:        fh.Size,
	}, s.now())

	f, err := fh.Open()
	if err != nil {
		response.GinJSONE(c, errors.BadRequest("read upload").WithCause(err))
		return
	}
	defer f.Close()
	if err := s.blobs.Put(c.Request.Context(), mediaKey(item.ID, item.Filename), f, fh.Size, contentType); err != nil {
		response.GinJSONE(c, errors.Internal("store media").WithCause(err))
		return
	}

	item, err = s.repo.AddMedia(c.Request.Context(), id, item)
	if err != nil {
		response.GinJSONE(c, err)
		return
	}
	response.GinJSONStatus(c, http.StatusCreated, item)
}

// serveMedia 媒体地址公开，与作品集页面一样无需登录
func (s *Server) serveMedia(c *gin.Context) {
	rc, contentType, err := s.blobs.Open(c.Request.Context(), mediaKey(c.Param("id"), c.Param("filename")))
	if err != nil {
		if errors.Is(err, minio.ErrObjectNotFound) {
			response.GinJSONE(c, ErrMediaNotFound)
			return
		}
		response.GinJSONE(c, errors.Internal("open media").WithCause(err))
		return
	}
	defer rc.Close()
	c.DataFromReader(http.StatusOK, -1, contentType, rc, map[string]string{"Cache-Control": "public, max-age=86400"})
}

func (s *Server) listMedia(c *gin.Context) {
	id, ok := currentUserID(c)
	if !ok {
		return
	}
	items, err := s.repo.ListMedia(c.Request.Context(), id)
	if err != nil {
		response.GinJSONE(c, err)
		return
	}
	response.GinJSON(c, items)
}

func (s *Server) subscribe(c *gin.Context) {
	id, ok := currentUserID(c)
	if !ok {
		return
	}
	var in api.SubscribeInput
	if !s.bind(c, &in) {
		return
	}
	plan, ok := planByID(in.PlanID)
	if !ok {
		response.GinJSONE(c, ErrPlanNotFound)
		return
	}
	sub, err := s.repo.Subscribe(c.Request.Context(), id, plan)
	if err != nil {
		response.GinJSONE(c, err)
		return
	}
	response.GinJSONStatus(c, http.StatusCreated, sub)
}
