package server

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/The127/ioc"
	"github.com/podhaven/podhaven/internal/config"
	"github.com/podhaven/podhaven/internal/handlers/adminhandlers"
	"github.com/podhaven/podhaven/internal/handlers/apihandlers"
	"github.com/podhaven/podhaven/internal/handlers/mediahandlers"
	"github.com/podhaven/podhaven/internal/logging"
	"github.com/podhaven/podhaven/internal/middlewares"
	"github.com/podhaven/podhaven/internal/middlewares/authentication"

	gh "github.com/gorilla/handlers"
	"github.com/gorilla/mux"
)

func Serve(root *ioc.DependencyProvider, serverConfig config.ServerConfig, hostMediaApi bool) {
	r := mux.NewRouter()

	r.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		logging.Logger.Infof("Not found API Request: %s %s", r.Method, r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusNotFound)
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"errors": []map[string]string{
				{"code": "NOT_FOUND", "message": "route not found"},
			},
		})
	})

	r.Use(middlewares.RecoverMiddleware())
	r.Use(middlewares.LoggingMiddleware())
	r.Use(middlewares.ScopeMiddleware(root))

	r.Use(gh.CORS(
		gh.AllowedOrigins(serverConfig.AllowedOrigins),
		gh.AllowedMethods([]string{"GET", "POST", "PUT", "DELETE", "PATCH"}),
		gh.AllowedHeaders([]string{"Authorization", "Content-Type"}),
		gh.AllowCredentials(),
		gh.MaxAge(3600),
	))

	mapAdminApi(r)
	mapApi(r)

	if hostMediaApi {
		mapMediaApi(r)
	}

	addr := fmt.Sprintf("%s:%d", serverConfig.Host, serverConfig.Port)
	logging.Logger.Infof("Starting server on %s", addr)
	srv := &http.Server{
		Addr:    addr,
		Handler: r,
	}

	go serve(srv)
}

func serve(srv *http.Server) {
	err := srv.ListenAndServe()
	if err != nil {
		panic(fmt.Errorf("error while running server: %w", err))
	}
}

func mapMediaApi(r *mux.Router) {
	apiRouter := r.PathPrefix("/media/api/v1").Subrouter()
	apiRouter.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	apiRouter.HandleFunc("/{key:.+}", mediahandlers.DownloadAudio).Methods(http.MethodGet, http.MethodOptions)
}

func mapAdminApi(r *mux.Router) {
	apiRouter := r.PathPrefix("/admin/api/v1").Subrouter()
	apiRouter.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	authApiRouter := apiRouter.PathPrefix("").Subrouter()
	authApiRouter.Use(authentication.ApiAuthenticationMiddleware())

	authApiRouter.HandleFunc("/dashboard", adminhandlers.GetDashboard).Methods(http.MethodGet, http.MethodOptions)
	authApiRouter.HandleFunc("/episodes/pending", adminhandlers.ListPendingEpisodes).Methods(http.MethodGet, http.MethodOptions)
	authApiRouter.HandleFunc("/episodes/{episodeId}/review", adminhandlers.ReviewEpisode).Methods(http.MethodPost, http.MethodOptions)
}

func mapApi(r *mux.Router) {
	apiRouter := r.PathPrefix("/api/v1").Subrouter()
	apiRouter.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	// unauthenticated endpoints need to go above the authentication middleware
	authApiRouter := apiRouter.PathPrefix("").Subrouter()
	authApiRouter.Use(authentication.ApiAuthenticationMiddleware())

	authApiRouter.HandleFunc("/podcasts", apihandlers.CreatePodcast).Methods(http.MethodPost, http.MethodOptions)
	authApiRouter.HandleFunc("/podcasts", apihandlers.ListPodcasts).Methods(http.MethodGet, http.MethodOptions)
	authApiRouter.HandleFunc("/podcasts/{podcastId}", apihandlers.GetPodcast).Methods(http.MethodGet, http.MethodOptions)
	authApiRouter.HandleFunc("/podcasts/{podcastId}", apihandlers.PatchPodcast).Methods(http.MethodPatch, http.MethodOptions)
	authApiRouter.HandleFunc("/podcasts/{podcastId}", apihandlers.DeletePodcast).Methods(http.MethodDelete, http.MethodOptions)

	authApiRouter.HandleFunc("/podcasts/{podcastId}/episodes", apihandlers.AddEpisode).Methods(http.MethodPost, http.MethodOptions)
	authApiRouter.HandleFunc("/podcasts/{podcastId}/subscription", apihandlers.Subscribe).Methods(http.MethodPost, http.MethodOptions)
	authApiRouter.HandleFunc("/podcasts/{podcastId}/subscription", apihandlers.Unsubscribe).Methods(http.MethodDelete, http.MethodOptions)

	authApiRouter.HandleFunc("/episodes/{episodeId}", apihandlers.GetEpisode).Methods(http.MethodGet, http.MethodOptions)
	authApiRouter.HandleFunc("/episodes/{episodeId}", apihandlers.DeleteEpisode).Methods(http.MethodDelete, http.MethodOptions)
	authApiRouter.HandleFunc("/episodes/{episodeId}/audio", apihandlers.ReplaceEpisodeAudio).Methods(http.MethodPut, http.MethodOptions)
	authApiRouter.HandleFunc("/episodes/{episodeId}/audio", apihandlers.GetEpisodeAudio).Methods(http.MethodGet, http.MethodOptions)
	authApiRouter.HandleFunc("/episodes/{episodeId}/plays", apihandlers.RecordPlay).Methods(http.MethodPost, http.MethodOptions)

	authApiRouter.HandleFunc("/episodes/{episodeId}/comments", apihandlers.AddComment).Methods(http.MethodPost, http.MethodOptions)
	authApiRouter.HandleFunc("/episodes/{episodeId}/comments/{commentId}", apihandlers.EditComment).Methods(http.MethodPut, http.MethodOptions)

	authApiRouter.HandleFunc("/account", apihandlers.DeleteAccount).Methods(http.MethodDelete, http.MethodOptions)
}
