package bridge

import (
	"context"
	"io"

	"github.com/aura-studio/lambdaweb/canonical"
	"github.com/gofiber/fiber/v2"
)

// Fiber binds a fiber app. Fiber runs on fasthttp, so requests go through
// app.Test with the timeout disabled.
func Fiber(app *fiber.App) Handler {
	return HandlerFunc(func(ctx context.Context, req *canonical.Request) (*canonical.Response, error) {
		r, err := NewHTTPRequest(ctx, req)
		if err != nil {
			return nil, err
		}
		r.RequestURI = ""

		rsp, err := app.Test(r, -1)
		if err != nil {
			return nil, err
		}
		defer rsp.Body.Close()

		body, err := io.ReadAll(rsp.Body)
		if err != nil {
			return nil, err
		}

		resp := canonical.NewResponse(rsp.StatusCode)
		resp.Header = rsp.Header.Clone()
		resp.Body = body
		return resp, nil
	})
}
