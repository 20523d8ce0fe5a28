package httpapi

import (
	"net/http"
	"strconv"
	"time"

	"github.com/fnpsdn/netinv/internal/server/models"
	"github.com/go-chi/chi/v5"
)

type deviceRequest struct {
	Name      string `json:"name"`
	MgmtAddr  string `json:"mgmt_addr"`
	Vendor    string `json:"vendor"`
	OSVersion string `json:"os_version"`
}

type deviceResponse struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	MgmtAddr  string    `json:"mgmt_addr"`
	Vendor    string    `json:"vendor"`
	OSVersion string    `json:"os_version"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func toDeviceResponse(d *models.Device) deviceResponse {
	return deviceResponse{
		ID: d.ID, Name: d.Name, MgmtAddr: d.MgmtAddr,
		Vendor: d.Vendor, OSVersion: d.OSVersion,
		CreatedAt: d.CreatedAt, UpdatedAt: d.UpdatedAt,
	}
}

func toDeviceResponses(devices []*models.Device) []deviceResponse {
	out := make([]deviceResponse, 0, len(devices))
	for _, d := range devices {
		out = append(out, toDeviceResponse(d))
	}
	return out
}

func (s *Server) handleCreateDevice(w http.ResponseWriter, r *http.Request) {
	var req deviceRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.Name == "" {
		writeError(w, http.StatusBadRequest, "validation", "name is required")
		return
	}

	device, err := s.devices.Create(r.Context(), &models.Device{
		Name: req.Name, MgmtAddr: req.MgmtAddr,
		Vendor: req.Vendor, OSVersion: req.OSVersion,
	})
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, toDeviceResponse(device))
}

func (s *Server) handleGetDevice(w http.ResponseWriter, r *http.Request) {
	device, err := s.devices.Get(r.Context(), chi.URLParam(r, "deviceID"))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toDeviceResponse(device))
}

func (s *Server) handleListDevices(w http.ResponseWriter, r *http.Request) {
	devices, err := s.devices.List(r.Context())
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toDeviceResponses(devices))
}

func (s *Server) handleListDevicesByTag(w http.ResponseWriter, r *http.Request) {
	devices, err := s.devices.ListByTag(r.Context(), chi.URLParam(r, "tagID"))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toDeviceResponses(devices))
}

func (s *Server) handleUpdateDevice(w http.ResponseWriter, r *http.Request) {
	var req deviceRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	err := s.devices.Update(r.Context(), &models.Device{
		ID: chi.URLParam(r, "deviceID"), Name: req.Name,
		MgmtAddr: req.MgmtAddr, Vendor: req.Vendor, OSVersion: req.OSVersion,
	})
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "updated"})
}

func (s *Server) handleDeleteDevice(w http.ResponseWriter, r *http.Request) {
	if err := s.devices.Delete(r.Context(), chi.URLParam(r, "deviceID")); err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

type credentialRequest struct {
	Username string `json:"username"`
	Secret   string `json:"secret"`
}

func (s *Server) handleSetCredential(w http.ResponseWriter, r *http.Request) {
	var req credentialRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	err := s.devices.SetCredential(r.Context(), chi.URLParam(r, "deviceID"),
		req.Username, []byte(req.Secret))
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "stored"})
}

func (s *Server) handleGetCredential(w http.ResponseWriter, r *http.Request) {
	username, secret, err := s.devices.GetCredential(r.Context(), chi.URLParam(r, "deviceID"))
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{
		"username": username,
		"secret":   string(secret),
	})
}

func (s *Server) handleDeleteCredential(w http.ResponseWriter, r *http.Request) {
	if err := s.devices.DeleteCredential(r.Context(), chi.URLParam(r, "deviceID")); err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

type tagRequest struct {
	Name  string `json:"name"`
	Color string `json:"color"`
}

func (s *Server) handleCreateTag(w http.ResponseWriter, r *http.Request) {
	var req tagRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.Name == "" {
		writeError(w, http.StatusBadRequest, "validation", "name is required")
		return
	}

	tag, err := s.tags.Create(r.Context(), &models.Tag{Name: req.Name, Color: req.Color})
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, tag)
}

func (s *Server) handleListTags(w http.ResponseWriter, r *http.Request) {
	tags, err := s.tags.List(r.Context())
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, tags)
}

func (s *Server) handleListDeviceTags(w http.ResponseWriter, r *http.Request) {
	tags, err := s.tags.ListByDevice(r.Context(), chi.URLParam(r, "deviceID"))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, tags)
}

func (s *Server) handleDeleteTag(w http.ResponseWriter, r *http.Request) {
	if err := s.tags.Delete(r.Context(), chi.URLParam(r, "tagID")); err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

func (s *Server) handleAssignTag(w http.ResponseWriter, r *http.Request) {
	err := s.tags.Assign(r.Context(), chi.URLParam(r, "deviceID"), chi.URLParam(r, "tagID"))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "assigned"})
}

func (s *Server) handleUnassignTag(w http.ResponseWriter, r *http.Request) {
	err := s.tags.Unassign(r.Context(), chi.URLParam(r, "deviceID"), chi.URLParam(r, "tagID"))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "unassigned"})
}

func (s *Server) handleRequestUpload(w http.ResponseWriter, r *http.Request) {
	task, err := s.backups.RequestUpload(r.Context(), chi.URLParam(r, "deviceID"))
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]string{
		"backup_id":  task.BackupID,
		"upload_url": task.URL,
	})
}

func (s *Server) handleListBackups(w http.ResponseWriter, r *http.Request) {
	backups, err := s.backups.ListByDevice(r.Context(), chi.URLParam(r, "deviceID"))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, backups)
}

func (s *Server) handleCompleteUpload(w http.ResponseWriter, r *http.Request) {
	if err := s.backups.CompleteUpload(r.Context(), chi.URLParam(r, "backupID")); err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "stored"})
}

func (s *Server) handleDownloadURL(w http.ResponseWriter, r *http.Request) {
	url, err := s.backups.DownloadURL(r.Context(), chi.URLParam(r, "backupID"))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"download_url": url})
}

func (s *Server) handleListAudit(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	events, err := s.audit.List(r.Context(), limit)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, events)
}
