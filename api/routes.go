package api

import (
	"io/fs"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/rpupo63/project-showcase/services"
)

// setupRoutes registers every endpoint on r. It is mounted both at the root
// and under /api.
func setupRoutes(r chi.Router, handlers *routeHandlers) {
	r.Get("/health", handlers.healthHandler.getHealth())

	// Project Handler endpoints
	r.Get("/projects", handlers.projectHandler.getAllProjects())
	r.Get("/projects/search", handlers.projectHandler.searchProjects())
	r.Get("/projects/user/{userID}", handlers.projectHandler.getProjectsByUser())
	r.Get("/projects/{projectID}", handlers.projectHandler.getProject())
	r.Post("/projects", handlers.projectHandler.createProject())
	r.Put("/projects/{projectID}", handlers.projectHandler.updateProject())
	r.Delete("/projects/{projectID}", handlers.projectHandler.deleteProject())

	// Comment Handler endpoints
	r.Get("/comments", handlers.commentHandler.getAllComments())
	r.Get("/comments/project/{projectID}", handlers.commentHandler.getProjectComments())
	r.Get("/comments/{commentID}", handlers.commentHandler.getComment())
	r.Post("/comments", handlers.commentHandler.createComment())
	r.Put("/comments/{commentID}", handlers.commentHandler.updateComment())
	r.Delete("/comments/{commentID}", handlers.commentHandler.deleteComment())

	// File Handler endpoints
	r.Post("/files/upload", handlers.fileHandler.uploadFile())
	r.Get("/files/image/{projectID}", handlers.fileHandler.getProjectImage())
}

// setupLegacyRoutes keeps the upload paths older frontends still call.
func setupLegacyRoutes(r chi.Router, handlers *routeHandlers) {
	r.Post("/game/upload/file", handlers.fileHandler.uploadFile())
	r.Get("/game/image/{projectID}", handlers.fileHandler.getProjectImage())
}

// mountUploads serves stored uploads without directory listings.
func mountUploads(r chi.Router, dir string) {
	fileServer := http.StripPrefix(services.UploadURLPrefix, http.FileServer(noListingFS{http.Dir(dir)}))
	r.Get(services.UploadURLPrefix+"*", func(w http.ResponseWriter, req *http.Request) {
		w.Header().Set("Cache-Control", "public, max-age=86400")
		fileServer.ServeHTTP(w, req)
	})
}

type noListingFS struct {
	root http.FileSystem
}

func (n noListingFS) Open(name string) (http.File, error) {
	f, err := n.root.Open(name)
	if err != nil {
		return nil, err
	}
	stat, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, err
	}
	if stat.IsDir() {
		f.Close()
		return nil, fs.ErrNotExist
	}
	return f, nil
}
