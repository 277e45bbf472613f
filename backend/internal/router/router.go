package router

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/BJS-kr/whatup/backend/internal/setup"
	"github.com/BJS-kr/whatup/shared/domain"
	mw "github.com/BJS-kr/whatup/shared/middleware"
	"github.com/BJS-kr/whatup/shared/middleware/metrics"
	rl "github.com/BJS-kr/whatup/shared/middleware/ratelimiter"
)

// New creates the chi router with all the routes.
// Limiters attached with Use count requests of the whole group together.
func New(deps *setup.Dependencies) http.Handler {
	r := chi.NewRouter()

	r.Use(chimw.Recoverer)
	r.Use(metrics.Middleware)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   deps.Config.Public.Http.CorsOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Content-Type", "Authorization"},
		AllowCredentials: true,
	}))
	r.Use(mw.SecurityHeaders(deps.Config.Public.Http.SecureCookies))

	r.Handle("/metrics", metrics.Handler())

	h := deps.Handler
	authMw := deps.AuthMiddleware

	r.Route("/v1", func(v1 chi.Router) {
		v1.Get("/health", h.Health)
		v1.Get("/ready", h.Ready)

		v1.Route("/auth", func(auth chi.Router) {
			auth.Group(func(limited chi.Router) {
				limited.Use(mw.RateLimit(deps.Track(rl.OnceInSecond()), mw.GetIP)) // 1 per second by IP
				limited.Post("/sign-up", h.SignUp)
				limited.Post("/sign-in", h.SignIn)
			})
			auth.Post("/sign-out", h.SignOut)
		})

		// Public reads
		v1.Group(func(public chi.Router) {
			public.Use(mw.RateLimit(deps.Track(rl.Rps100()), mw.GetIP))
			public.Get("/threads", h.ListThreads(domain.ThreadListAll))
			public.Get("/threads/{thread}", h.GetThread)
			public.Get("/threads/{thread}/story", h.Story)
		})

		v1.Group(func(loggedIn chi.Router) {
			loggedIn.Use(authMw.NeedAuth())
			loggedIn.Use(mw.RateLimit(deps.Track(rl.Rps100()), mw.GetUserIDFromContext)) // 100 RPS per user

			loggedIn.Get("/threads/my", h.ListThreads(domain.ThreadListMine))
			loggedIn.Get("/threads/others", h.ListThreads(domain.ThreadListOthers))
			loggedIn.Get("/threads/liked", h.ListThreads(domain.ThreadListLiked))
			loggedIn.Get("/threads/trending", h.ListThreads(domain.ThreadListTrending))

			// CreateThread: 1 per minute per user
			loggedIn.With(mw.RateLimit(deps.Track(rl.OnceInMinute()), mw.GetUserIDFromContext)).Post("/threads", h.CreateThread)
			loggedIn.Patch("/threads/{thread}", h.UpdateThread)
			loggedIn.Delete("/threads/{thread}", h.DeleteThread)
			loggedIn.Put("/threads/{thread}/like", h.ToggleThreadLike)

			// SubmitContent: 1 per second per user
			loggedIn.With(mw.RateLimit(deps.Track(rl.New(1, 1, time.Hour)), mw.GetUserIDFromContext)).Post("/threads/{thread}/content", h.SubmitContent)
			loggedIn.Get("/threads/{thread}/pending-contents", h.PendingContents)

			loggedIn.Put("/content/{content}/accept", h.AcceptContent)
			loggedIn.Put("/content/{content}/reject", h.RejectContent)
			loggedIn.Put("/content/{content}/request-changes", h.RequestChanges)
			loggedIn.Put("/content/{content}/update", h.UpdateContent)
			loggedIn.Put("/content/{content}/like", h.LikeContent)

			loggedIn.Get("/notices", h.ListNotices)
			loggedIn.Get("/notices/unread-count", h.UnreadNoticeCount)
			loggedIn.Put("/notices/mark-all-read", h.MarkAllNoticesRead)
			loggedIn.Put("/notices/{notice}/read", h.MarkNoticeRead)
		})
	})

	return r
}
