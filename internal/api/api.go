package api

import (
	"context"
	"net/http"
	"time"

	"github.com/SergeyKozhin/calnotes-backend/internal/database"
	"github.com/SergeyKozhin/calnotes-backend/internal/model"
	"github.com/SergeyKozhin/calnotes-backend/internal/refresh"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

type Api struct {
	handler http.Handler
	logger  *zap.SugaredLogger

	jwts     jwtManager
	registry *refresh.Registry

	// streamKeepAlive is the interval of comment frames on refresh streams.
	streamKeepAlive time.Duration

	db       database.PGX
	profiles profilesRepository

	eventsService  eventsService
	sharingService sharingService
}

type jwtManager interface {
	GetIDFromToken(token string) (string, error)
}

type profilesRepository interface {
	GetProfileByID(ctx context.Context, q database.Queryable, id string) (*model.Profile, error)
	UpdatePushToken(ctx context.Context, q database.Queryable, id string, token string) error
	UpdateNotify(ctx context.Context, q database.Queryable, id string, notify bool) error
}

type eventsService interface {
	CreateEvent(ctx context.Context, info *model.EventCreate) (*model.Event, int, error)
	GetEvent(ctx context.Context, ownerID, id string) (*model.Event, error)
	GetEvents(ctx context.Context, filter model.EventsFilter) ([]*model.Event, error)
	GetSeries(ctx context.Context, ownerID, id string) ([]*model.Event, error)
	UpdateEvent(ctx context.Context, ownerID, id string, upd *model.EventUpdate) (*model.Event, error)
	UpdateSeries(ctx context.Context, ownerID, id string, upd *model.EventUpdate) ([]*model.Event, error)
	DeleteEvent(ctx context.Context, ownerID, id string) (int64, error)
	DeleteSeries(ctx context.Context, ownerID, id string) (int64, error)
}

type sharingService interface {
	ShareEvent(ctx context.Context, senderID, eventID, recipientEmail string) (*model.SharedEvent, error)
	RespondToShare(ctx context.Context, recipientID string, shareID int64, accept bool) (*model.SharedEvent, error)
	GetIncoming(ctx context.Context, recipientID string, statuses []model.ShareStatus) ([]*model.SharedEvent, error)
	GetOutgoing(ctx context.Context, senderID string) ([]*model.SharedEvent, error)
	DeleteShare(ctx context.Context, userID string, shareID int64) error
}

func NewApi(
	logger *zap.SugaredLogger,
	jwts jwtManager,
	registry *refresh.Registry,
	db database.PGX,
	profiles profilesRepository,
	eventsService eventsService,
	sharingService sharingService,
) (*Api, error) {
	a := &Api{
		logger:          logger,
		jwts:            jwts,
		registry:        registry,
		streamKeepAlive: 25 * time.Second,
		db:              db,
		profiles:        profiles,
		eventsService:   eventsService,
		sharingService:  sharingService,
	}
	a.setupHandler()

	return a, nil
}

func (a *Api) setupHandler() {
	middleware.DefaultLogger = func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			a.logger.Debugw(r.URL.RequestURI(),
				"addr", r.RemoteAddr,
				"protocol", r.Proto,
				"method", r.Method,
			)
			next.ServeHTTP(w, r)
		})
	}

	r := chi.NewMux()

	r.Use(middleware.Logger, middleware.Recoverer, middleware.StripSlashes)
	r.NotFound(a.notFoundResponse)
	r.MethodNotAllowed(a.methodNotAllowedResponse)

	r.Get("/healthcheck", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	r.Handle("/metrics", promhttp.Handler())

	r.With(a.auth).Group(func(r chi.Router) {
		r.Route("/events", func(r chi.Router) {
			r.Get("/", a.getEventsHandler)
			r.Post("/", a.createEventHandler)

			r.Route("/{eventID}", func(r chi.Router) {
				r.Get("/", a.getEventHandler)
				r.Put("/", a.updateEventHandler)
				r.Delete("/", a.deleteEventHandler)

				r.Get("/series", a.getSeriesHandler)
				r.Put("/series", a.updateSeriesHandler)
				r.Delete("/series", a.deleteSeriesHandler)
			})
		})

		r.Get("/calendar.ics", a.exportCalendarHandler)

		r.Route("/shares", func(r chi.Router) {
			r.Post("/", a.shareEventHandler)
			r.Get("/incoming", a.getIncomingSharesHandler)
			r.Get("/outgoing", a.getOutgoingSharesHandler)

			r.Route("/{shareID}", func(r chi.Router) {
				r.Post("/accept", a.acceptShareHandler)
				r.Post("/decline", a.declineShareHandler)
				r.Delete("/", a.deleteShareHandler)
			})
		})

		r.With(a.profileCtx).Route("/user", func(r chi.Router) {
			r.Get("/", a.getUserHandler)
			r.Put("/push-token", a.updatePushTokenHandler)
			r.Put("/notify", a.updateNotifyHandler)
		})

		r.Get("/refresh/stream", a.refreshStreamHandler)
	})

	a.handler = r
}

func (a *Api) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	a.handler.ServeHTTP(w, r)
}
