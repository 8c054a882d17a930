package api

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v5"

	"github.com/samcharles93/wasmrev/internal/logger"
	"github.com/samcharles93/wasmrev/internal/mixer"
	"github.com/samcharles93/wasmrev/internal/recovery"
	"github.com/samcharles93/wasmrev/pkg/wasmscan"
)

type Options struct {
	// Prefix wraps recovered secrets in flags. Empty means recovery.DefaultPrefix.
	Prefix string
	Logger logger.Logger
}

type Server struct {
	store  *RecoveryStore
	prefix string
	log    logger.Logger
	clock  func() time.Time
}

func NewServer(store *RecoveryStore, opts Options) *Server {
	if store == nil {
		store = NewRecoveryStore()
	}
	if opts.Logger == nil {
		opts.Logger = logger.Default()
	}
	return &Server{
		store:  store,
		prefix: opts.Prefix,
		log:    opts.Logger,
		clock:  time.Now,
	}
}

func (s *Server) Register(e *echo.Echo) {
	e.POST("/v1/recoveries", s.handleCreateRecovery)
	e.GET("/v1/recoveries/:id", s.handleGetRecovery)
	e.DELETE("/v1/recoveries/:id", s.handleDeleteRecovery)

	e.POST("/v1/invert", s.handleInvert)
	e.POST("/v1/verify", s.handleVerify)
}

func (s *Server) handleCreateRecovery(c *echo.Context) error {
	f, err := wasmscan.LoadLimit(c.Request().Body, MaxModuleBytes)
	if err != nil {
		return writeRecoveryError(c, err)
	}
	defer func() { _ = f.Close() }()

	ctx := logger.WithContext(c.Request().Context(), s.log)
	res, err := recovery.Recover(ctx, f.Data)
	if err != nil {
		s.log.Warn("recovery failed", "bytes", len(f.Data), "error", err)
		return writeRecoveryError(c, err)
	}

	rec := s.store.Save(res, s.prefix, len(f.Data), s.clock())
	s.log.Info("recovered secret", "id", rec.ID, "secret", res.Secret)
	return c.JSON(http.StatusOK, rec)
}

func (s *Server) handleGetRecovery(c *echo.Context) error {
	id := c.Param("id")
	rec, ok := s.store.Get(id)
	if !ok {
		return writeNotFound(c, "recovery not found")
	}
	return c.JSON(http.StatusOK, rec)
}

func (s *Server) handleDeleteRecovery(c *echo.Context) error {
	id := c.Param("id")
	if !s.store.Delete(id) {
		return writeNotFound(c, "recovery not found")
	}
	return c.JSON(http.StatusOK, DeletedResponse{
		ID:      id,
		Object:  "recovery.deleted",
		Deleted: true,
	})
}

func (s *Server) handleInvert(c *echo.Context) error {
	req, err := decodeJSON[InvertRequest](c.Request().Body)
	if err != nil {
		return writeBadRequest(c, "invalid JSON body")
	}
	key, err := parseBlockField("key", req.Key)
	if err != nil {
		return writeRecoveryError(c, err)
	}
	target, err := parseBlockField("target", req.Target)
	if err != nil {
		return writeRecoveryError(c, err)
	}

	ctx := logger.WithContext(c.Request().Context(), s.log)
	res, err := recovery.Solve(ctx, key, target)
	if err != nil {
		return writeRecoveryError(c, err)
	}

	prefix := req.Prefix
	if prefix == "" {
		prefix = s.prefix
	}
	resp := InvertResponse{Report: res.Report(prefix, req.Steps)}
	if req.All {
		for _, p := range mixer.Preimages(key, target, maxPreimages) {
			resp.Preimages = append(resp.Preimages, p.String())
		}
	}
	return c.JSON(http.StatusOK, resp)
}

func (s *Server) handleVerify(c *echo.Context) error {
	req, err := decodeJSON[VerifyRequest](c.Request().Body)
	if err != nil {
		return writeBadRequest(c, "invalid JSON body")
	}
	key, err := parseBlockField("key", req.Key)
	if err != nil {
		return writeRecoveryError(c, err)
	}
	target, err := parseBlockField("target", req.Target)
	if err != nil {
		return writeRecoveryError(c, err)
	}
	secret, err := parseBlockField("secret", req.Secret)
	if err != nil {
		return writeRecoveryError(c, err)
	}

	got := mixer.Forward(secret, key)
	return c.JSON(http.StatusOK, VerifyResponse{
		OK:    got == target,
		State: got.String(),
	})
}
