package main

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/cors"

	getusers "garment-erp/http-server/admin/get"
	saveuser "garment-erp/http-server/admin/save"
	"garment-erp/http-server/admin/token"
	updateusers "garment-erp/http-server/admin/update"
	"garment-erp/http-server/assignment/approve"
	assign "garment-erp/http-server/assignment/save"
	getlots "garment-erp/http-server/cutting/get"
	savelot "garment-erp/http-server/cutting/save"
	getdispatch "garment-erp/http-server/dispatch/get"
	savedispatch "garment-erp/http-server/dispatch/save"
	getproduction "garment-erp/http-server/production/get"
	saveproduction "garment-erp/http-server/production/save"
	updateproduction "garment-erp/http-server/production/update"
	"garment-erp/http-server/report/excel"
	"garment-erp/http-server/report/pic"
	getrewash "garment-erp/http-server/rewash/get"
	saverewash "garment-erp/http-server/rewash/save"
	updaterewash "garment-erp/http-server/rewash/update"
	"garment-erp/http-server/upload/image"
	getworkers "garment-erp/http-server/workers/get"
	"garment-erp/internal/config"
	"garment-erp/internal/filestore"
	"garment-erp/internal/middleware/auth"
	"garment-erp/internal/pipeline"
	"garment-erp/internal/service/export"
	"garment-erp/internal/storage"
	"garment-erp/internal/storage/mysql"
)

func routes(cfg config.Config, log *slog.Logger, store *mysql.Storage, svc *pipeline.Service, exporter *export.Service, files *filestore.Store) *chi.Mux {
	router := chi.NewRouter()

	corsHandler := cors.New(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
	})

	router.Use(corsHandler.Handler)
	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(middleware.Logger)
	router.Use(middleware.Recoverer)

	router.Group(func(r chi.Router) {
		r.Use(auth.Authenticate(cfg.JWT.Secret))

		// cutting is the head of every chain and has no assignments
		r.Group(func(r chi.Router) {
			r.Use(auth.RequireRole(string(storage.StageCutting)))

			r.Post("/api/cutting/create", savelot.CreateLot(log, svc))
			r.Get("/api/cutting/list-entries", getlots.ListLots(log, svc))
			r.Get("/api/cutting/get-lot-sizes/{id}", getlots.LotSizes(log, svc))
			r.Get("/api/cutting/download-all", getlots.DownloadLots(log, exporter))
		})

		r.Route("/api/{stage}", func(r chi.Router) {
			r.With(auth.RequireRoleFunc(assignerRoles)).Post("/assign", assign.Assign(log, svc))

			r.Group(func(r chi.Router) {
				r.Use(auth.RequireRoleFunc(stageRoles))

				r.Get("/approve", approve.Pending(log, svc))
				r.Post("/approve-lot", approve.Approve(log, svc))
				r.Post("/deny-lot", approve.Deny(log, svc))

				r.Post("/create", saveproduction.CreateProduction(log, svc))
				r.Get("/list-entries", getproduction.ListEntries(log, svc))
				r.Get("/get-lot-sizes/{id}", getproduction.LotSizes(log, svc))
				r.Get("/update/{id}/json", getproduction.Entry(log, svc))
				r.Post("/update/{id}", updateproduction.AddPieces(log, svc))
				r.Get("/challan/{id}", getproduction.Challan(log, svc))
				r.Get("/download-all", getproduction.DownloadAll(log, exporter))
			})
		})

		r.Group(func(r chi.Router) {
			r.Use(auth.RequireRole(string(storage.StageWashing)))

			r.Post("/api/rewash/create", saverewash.CreateRewash(log, svc))
			r.Get("/api/rewash/pending", getrewash.Pending(log, svc))
			r.Post("/api/rewash/{id}/complete", updaterewash.Complete(log, svc))
		})

		r.Group(func(r chi.Router) {
			r.Use(auth.RequireRole(string(storage.StageFinishing)))

			r.Post("/api/dispatch/create", savedispatch.CreateDispatch(log, svc))
			r.Get("/api/dispatch/{id}", getdispatch.Summary(log, svc))
		})

		r.Get("/api/dashboard/pic-report", pic.Report(log, svc))
		r.Get("/api/dashboard/pic-report/download", excel.Download(log, exporter))
		r.Get("/api/dashboard/lot-status/{lotNo}", pic.LotStatus(log, svc))

		r.Get("/api/workers", getworkers.GetWorkers(log, store))
		r.Post("/api/uploads/image", image.Upload(log, files, cfg.MinIO.MaxUploadBytes))
	})

	adminRouter := chi.NewRouter()
	adminRouter.Use(auth.BasicAuth(cfg.AdminLogin, cfg.AdminPass))

	adminRouter.Get("/users", getusers.Users(log, store))
	adminRouter.Post("/users/save", saveuser.SaveUser(log, store))
	adminRouter.Put("/users/update", updateusers.UpdateUsers(log, store))
	adminRouter.Post("/token", token.Issue(log, store, cfg.JWT.Secret, cfg.JWT.TTL))

	router.Mount("/api/admin", adminRouter)

	return router
}

// stageRoles allows the workers of the production stage named in the URL.
// An unknown stage is left to the handler, which answers 404.
func stageRoles(r *http.Request) []string {
	stage, err := storage.ParseStage(chi.URLParam(r, "stage"))
	if err != nil || !stage.IsProduction() {
		return nil
	}
	return []string{string(stage)}
}

// assignerRoles allows the workers of the stages that feed the stage named in
// the URL.
func assignerRoles(r *http.Request) []string {
	stage, err := storage.ParseStage(chi.URLParam(r, "stage"))
	if err != nil || !stage.IsProduction() {
		return nil
	}
	var roles []string
	for _, up := range pipeline.AssignerStages(stage) {
		roles = append(roles, string(up))
	}
	return roles
}
