package httpapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// Routes assembles the chi router. Everything under /api/v1 except the
// auth endpoints requires a bearer token.
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/auth/register", s.handleRegister)
		r.Post("/auth/verify-email", s.handleVerifyEmail)
		r.Post("/auth/resend-verification", s.handleResendVerification)
		r.Post("/auth/login", s.handleLogin)
		r.Post("/auth/second-factor", s.handleSecondFactor)
		r.Post("/auth/request-otp", s.handleRequestOtp)

		r.Group(func(r chi.Router) {
			r.Use(s.requireToken)

			r.Post("/account/password", s.handleChangePassword)
			r.Post("/account/totp/enable", s.handleEnableTotp)
			r.Post("/account/totp/confirm", s.handleConfirmTotp)
			r.Post("/account/totp/disable", s.handleDisableTotp)
			r.Post("/account/second-factor", s.handleSetSecondFactor)

			r.Route("/devices", func(r chi.Router) {
				r.Get("/", s.handleListDevices)
				r.Post("/", s.handleCreateDevice)
				r.Route("/{deviceID}", func(r chi.Router) {
					r.Get("/", s.handleGetDevice)
					r.Put("/", s.handleUpdateDevice)
					r.Delete("/", s.handleDeleteDevice)
					r.Put("/credential", s.handleSetCredential)
					r.Get("/credential", s.handleGetCredential)
					r.Delete("/credential", s.handleDeleteCredential)
					r.Get("/tags", s.handleListDeviceTags)
					r.Put("/tags/{tagID}", s.handleAssignTag)
					r.Delete("/tags/{tagID}", s.handleUnassignTag)
					r.Get("/backups", s.handleListBackups)
					r.Post("/backups", s.handleRequestUpload)
				})
			})

			r.Route("/tags", func(r chi.Router) {
				r.Get("/", s.handleListTags)
				r.Post("/", s.handleCreateTag)
				r.Delete("/{tagID}", s.handleDeleteTag)
				r.Get("/{tagID}/devices", s.handleListDevicesByTag)
			})

			r.Route("/backups/{backupID}", func(r chi.Router) {
				r.Post("/complete", s.handleCompleteUpload)
				r.Get("/download", s.handleDownloadURL)
			})

			r.Get("/audit", s.handleListAudit)
		})
	})

	return r
}
