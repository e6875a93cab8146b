package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/aussiebroadwan/quill/internal/quill/metrics"
	"github.com/aussiebroadwan/quill/internal/quill/service"
	"github.com/aussiebroadwan/quill/internal/quill/store"
	"github.com/aussiebroadwan/quill/pkg/httpx"
	"github.com/aussiebroadwan/quill/pkg/jwtx"
	"github.com/aussiebroadwan/quill/pkg/slogx"

	_ "github.com/aussiebroadwan/quill/api/quill" // Swagger docs
	httpSwagger "github.com/swaggo/http-swagger"
)

// Router holds shared dependencies for HTTP handlers.
type Router struct {
	Mux         *http.ServeMux
	middlewares []httpx.Middleware
	handler     http.Handler

	keys         *jwtx.KeySet
	verifier     jwtx.Verifier
	buildVersion string
	startTime    time.Time
	logger       *slog.Logger
	store        store.Store

	TokenService  *service.TokenService
	UserService   *service.UserService
	NoteService   *service.NoteService
	CollabService *service.CollabService

	// Optional
	Metrics      *metrics.Metrics
	Notifier     Pinger
	CORSOrigins  []string
	CookieSecure bool
}

func NewRouter(
	keys *jwtx.KeySet,
	verifier jwtx.Verifier,
	buildVersion string,
	st store.Store,
	logger *slog.Logger,
) *Router {
	return &Router{
		Mux:          http.NewServeMux(),
		keys:         keys,
		verifier:     verifier,
		buildVersion: buildVersion,
		startTime:    time.Now(),
		store:        st,
		logger:       logger,
	}
}

// ApplyRoutes registers every route and builds the global middleware chain.
// Set the services and optional fields first.
func (r *Router) ApplyRoutes() {
	r.registerAuth()
	r.registerUsers()
	r.registerNotes()
	r.registerCollab()
	r.registerSystem()

	r.Mux.Handle("GET /swagger/",
		httpx.Chain(httpSwagger.Handler(), httpx.RateLimitByIP(httpx.PublicLimit)))

	// Metrics must wrap the mux directly to see the matched pattern.
	r.middlewares = []httpx.Middleware{
		slogx.HTTPMiddleware(r.logger),
		httpx.CORS(r.CORSOrigins...),
		r.Metrics.Middleware(),
	}
	r.handler = httpx.Chain(r.Mux, r.middlewares...)
}

// ServeHTTP implements http.Handler for Router and applies the global middleware chain.
//
//	@title			Quill API
//	@version		0.1.0
//	@description	Collaborative notes. Notes have one owner and a list of collaborators who joined through invites.
//	@description
//	@description				Access tokens are EdDSA signed JWTs. Refresh tokens rotate on every use.
//
//	@contact.name				AussieBroadWAN Team
//	@contact.url				https://github.com/aussiebroadwan/quill
//
//	@license.name				MIT
//	@license.url				https://opensource.org/licenses/MIT
//
//	@host						localhost:8080
//	@BasePath					/
//
//	@schemes					http https
//
//	@securityDefinitions.apikey	BearerAuth
//	@in							header
//	@name						Authorization
//	@description				JWT access token. Format: "Bearer {token}".
func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	r.handler.ServeHTTP(w, req)
}

// secured wraps h with authentication and a per-user rate limit.
func (r *Router) secured(h http.HandlerFunc, limit httpx.RateLimitConfig) http.Handler {
	return httpx.Chain(h,
		httpx.AuthnMiddleware(r.verifier),
		httpx.RateLimitByUser(limit),
	)
}

func (r *Router) registerAuth() {
	h := &AuthHandler{
		UserService:  r.UserService,
		TokenService: r.TokenService,
		CookieSecure: r.CookieSecure,
		RefreshTTL:   r.TokenService.RefreshTTL,
	}

	// Credential endpoints - strict rate limit by IP
	r.Mux.Handle("POST /v1/auth/register",
		httpx.Chain(http.HandlerFunc(h.HandleRegister), httpx.RateLimitByIP(httpx.StrictLimit)))
	r.Mux.Handle("POST /v1/auth/login",
		httpx.Chain(http.HandlerFunc(h.HandleLogin), httpx.RateLimitByIP(httpx.StrictLimit)))

	// Token endpoints - moderate rate limit by IP
	r.Mux.Handle("POST /v1/auth/refresh",
		httpx.Chain(http.HandlerFunc(h.HandleRefresh), httpx.RateLimitByIP(httpx.ModerateLimit)))
	r.Mux.Handle("POST /v1/auth/logout",
		httpx.Chain(http.HandlerFunc(h.HandleLogout), httpx.RateLimitByIP(httpx.ModerateLimit)))
}

func (r *Router) registerUsers() {
	h := &UsersHandler{UserService: r.UserService}

	r.Mux.Handle("GET /v1/users/me", r.secured(h.HandleGetMe, httpx.LenientLimit))
	r.Mux.Handle("PUT /v1/users/me", r.secured(h.HandleUpdateMe, httpx.ModerateLimit))
}

func (r *Router) registerNotes() {
	h := &NotesHandler{NoteService: r.NoteService}

	r.Mux.Handle("GET /v1/notes", r.secured(h.HandleList, httpx.LenientLimit))
	r.Mux.Handle("POST /v1/notes", r.secured(h.HandleCreate, httpx.ModerateLimit))
	r.Mux.Handle("GET /v1/notes/trash", r.secured(h.HandleListTrash, httpx.LenientLimit))
	r.Mux.Handle("GET /v1/notes/{noteId}", r.secured(h.HandleGet, httpx.LenientLimit))

	// Autosave hits PUT frequently, so it shares the lenient bucket.
	r.Mux.Handle("PUT /v1/notes/{noteId}", r.secured(h.HandleUpdate, httpx.LenientLimit))
	r.Mux.Handle("DELETE /v1/notes/{noteId}", r.secured(h.HandleDelete, httpx.ModerateLimit))
	r.Mux.Handle("POST /v1/notes/{noteId}/trash", r.secured(h.HandleTrash, httpx.ModerateLimit))
	r.Mux.Handle("POST /v1/notes/{noteId}/restore", r.secured(h.HandleRestore, httpx.ModerateLimit))
}

func (r *Router) registerCollab() {
	h := &CollabHandler{CollabService: r.CollabService}

	r.Mux.Handle("POST /v1/collab/invites", r.secured(h.HandleCreateInvite, httpx.ModerateLimit))
	r.Mux.Handle("GET /v1/collab/invites", r.secured(h.HandleListReceived, httpx.LenientLimit))
	r.Mux.Handle("POST /v1/collab/invites/{inviteId}/accept", r.secured(h.HandleAccept, httpx.ModerateLimit))

	r.Mux.Handle("GET /v1/collab/notes/{noteId}/collaborators",
		r.secured(h.HandleListCollaborators, httpx.LenientLimit))
	r.Mux.Handle("PATCH /v1/collab/notes/{noteId}/collaborators/{userId}",
		r.secured(h.HandleChangeRole, httpx.ModerateLimit))
	r.Mux.Handle("DELETE /v1/collab/notes/{noteId}/collaborators/{userId}",
		r.secured(h.HandleRevoke, httpx.ModerateLimit))
	r.Mux.Handle("GET /v1/collab/notes/{noteId}/invites",
		r.secured(h.HandleListPending, httpx.LenientLimit))
}

func (r *Router) registerSystem() {
	// Health check endpoints - public rate limits (monitoring systems may poll frequently)
	r.Mux.Handle("GET /livez",
		httpx.Chain(LivezHandler(r.startTime, r.buildVersion),
			httpx.RateLimitByIP(httpx.PublicLimit),
		),
	)
	r.Mux.Handle("GET /readyz",
		httpx.Chain(ReadyzHandler(r.startTime, r.buildVersion, r.store, r.keys, r.Notifier),
			httpx.RateLimitByIP(httpx.PublicLimit),
		),
	)

	if r.Metrics != nil {
		r.Mux.Handle("GET /metrics", r.Metrics.Handler())
	}
}
