package uploadhttp

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/upsrv/upserver/internal/engine"
	"github.com/upsrv/upserver/internal/models"
)

// Catalog — витрина завершённых загрузок для листинга файлов.
type Catalog interface {
	List(ctx context.Context) ([]models.Upload, error)
}

type Deps struct {
	Engine    *engine.Engine
	Catalog   Catalog
	UploadDir string
}

// Server serves the upload HTTP API on top of the session engine.
type Server struct {
	Deps
}

// New создаёт HTTP-обработчик сервера загрузок.
func New(deps Deps) http.Handler {
	srv := &Server{
		Deps: deps,
	}

	return srv.routes()
}

// routes регистрирует обработчики сессий, файлов и здоровья.
func (a *Server) routes() http.Handler {
	r := chi.NewRouter()

	r.Route("/uploads", func(ur chi.Router) {
		ur.Post("/", a.createUpload)
		ur.Get("/", a.listUploads)

		ur.Route("/{uploadID}", func(sr chi.Router) {
			sr.Get("/", a.uploadStatus)
			sr.Delete("/", a.abortUpload)
			sr.Post("/complete", a.completeUpload)
			sr.Put("/chunks/{idx}", a.putChunk)
		})
	})

	r.Route("/files", func(fr chi.Router) {
		fr.Post("/", a.postFile)
		fr.Get("/", a.listFiles)
		fr.Get("/{name}", a.getFile)
	})

	r.Get("/health", a.health)

	return r
}
