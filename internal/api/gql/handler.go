package gql

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/graphql-go/graphql"
	"github.com/graphql-go/graphql/gqlerrors"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/storefront/commerce/internal/api/middleware"
	"github.com/storefront/commerce/internal/core/domain"
)

type ctxKey struct{}

// WithClaims returns a context carrying the caller's claims.
func WithClaims(ctx context.Context, claims *domain.Claims) context.Context {
	return context.WithValue(ctx, ctxKey{}, claims)
}

// ClaimsFrom returns the claims stored by WithClaims, or nil.
func ClaimsFrom(ctx context.Context) *domain.Claims {
	claims, _ := ctx.Value(ctxKey{}).(*domain.Claims)
	return claims
}

type request struct {
	Query         string         `json:"query"`
	OperationName string         `json:"operationName"`
	Variables     map[string]any `json:"variables"`
}

// Handler executes GraphQL requests. It expects middleware.Authenticate to
// have run; every root field enforces its own policy.
type Handler struct {
	schema graphql.Schema
	log    zerolog.Logger
}

func NewHandler(schema graphql.Schema, log zerolog.Logger) *Handler {
	return &Handler{schema: schema, log: log}
}

// Serve handles POST /graphql.
//
// @Summary      GraphQL endpoint
// @Tags         graphql
// @Accept       json
// @Produce      json
// @Router       /graphql [post]
func (h *Handler) Serve(c echo.Context) error {
	var req request
	if err := c.Bind(&req); err != nil || req.Query == "" {
		return fmt.Errorf("%w: a query is required", domain.ErrValidation)
	}

	ctx := WithClaims(c.Request().Context(), middleware.Claims(c))
	result := graphql.Do(graphql.Params{
		Schema:         h.schema,
		RequestString:  req.Query,
		VariableValues: req.Variables,
		OperationName:  req.OperationName,
		Context:        ctx,
	})
	for i, fe := range result.Errors {
		result.Errors[i] = h.format(c, fe)
	}
	return c.JSON(http.StatusOK, result)
}

// format attaches the domain code to resolver errors and hides unexpected
// ones behind a generic message.
func (h *Handler) format(c echo.Context, fe gqlerrors.FormattedError) gqlerrors.FormattedError {
	orig := fe.OriginalError()
	var located *gqlerrors.Error
	if errors.As(orig, &located) {
		// Syntax and validation errors carry no cause and pass through.
		orig = located.OriginalError
	}
	if orig == nil {
		return fe
	}

	code := domain.Code(orig)
	if code == "" {
		h.log.Error().
			Err(orig).
			Str("path", c.Path()).
			Interface("field", fe.Path).
			Msg("unhandled graphql error")
		return gqlerrors.FormattedError{
			Message:    "internal server error",
			Locations:  fe.Locations,
			Path:       fe.Path,
			Extensions: map[string]any{"code": "internal"},
		}
	}

	return gqlerrors.FormattedError{
		Message:    domain.Message(orig),
		Locations:  fe.Locations,
		Path:       fe.Path,
		Extensions: map[string]any{"code": code},
	}
}
