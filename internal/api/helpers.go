package api

import (
	"fmt"
	"io"

	"github.com/goccy/go-json"
	"github.com/labstack/echo/v5"

	"github.com/samcharles93/wasmrev/internal/mixer"
	"github.com/samcharles93/wasmrev/internal/version"
)

// MaxModuleBytes caps both the request body and the module it decompresses to.
const MaxModuleBytes = 16 << 20

func decodeJSON[T any](r io.Reader) (T, error) {
	var out T
	dec := json.NewDecoder(r)
	if err := dec.Decode(&out); err != nil {
		return out, err
	}
	return out, nil
}

func parseBlockField(name, value string) (mixer.Block, error) {
	if value == "" {
		return mixer.Block{}, newInvalidRequest(name + " is required")
	}
	b, err := mixer.ParseBlock(value)
	if err != nil {
		return mixer.Block{}, newInvalidRequest(fmt.Sprintf("%s: %v", name, err))
	}
	return b, nil
}

// ServerHeader stamps every response with the build's user agent.
func ServerHeader() echo.MiddlewareFunc {
	ua := version.UserAgent()
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c *echo.Context) error {
			c.Response().Header().Set(echo.HeaderServer, ua)
			return next(c)
		}
	}
}
