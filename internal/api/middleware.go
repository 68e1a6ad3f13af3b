package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/SergeyKozhin/calnotes-backend/internal/model"
	"github.com/SergeyKozhin/calnotes-backend/internal/pkg/jwt"
)

type contextKey string

const (
	contextKeyID      = contextKey("id")
	contextKeyProfile = contextKey("profile")
)

var errCantRetrieveID = errors.New("can't retrieve id")

func (a *Api) auth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := r.Header.Get("Authorization")
		if token == "" {
			a.unauthorizedResponse(w, r, errors.New("no token provided"))
			return
		}

		token = strings.TrimPrefix(token, "Bearer ")

		id, err := a.jwts.GetIDFromToken(token)
		if err != nil {
			invalidTokenErr := &jwt.InvalidTokenError{}
			switch {
			case errors.As(err, &invalidTokenErr):
				a.unauthorizedResponse(w, r, invalidTokenErr)
			default:
				a.serverErrorResponse(w, r, err)
			}
			return
		}

		idContext := context.WithValue(r.Context(), contextKeyID, id)
		next.ServeHTTP(w, r.WithContext(idContext))
	})
}

func (a *Api) profileCtx(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id, ok := r.Context().Value(contextKeyID).(string)
		if !ok {
			a.serverErrorResponse(w, r, errCantRetrieveID)
			return
		}

		profile, err := a.profiles.GetProfileByID(r.Context(), a.db, id)
		if err != nil {
			switch {
			case errors.Is(err, model.ErrNoRecord):
				a.forbiddenResponse(w, r, "profile does not exist")
			default:
				a.serverErrorResponse(w, r, fmt.Errorf("get profile: %w", err))
			}
			return
		}

		profileCtx := context.WithValue(r.Context(), contextKeyProfile, profile)
		next.ServeHTTP(w, r.WithContext(profileCtx))
	})
}
