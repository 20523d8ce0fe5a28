package httpapi

import (
	"net/http"
)

type registerRequest struct {
	Email    string `json:"email"`
	Name     string `json:"name"`
	Surname  string `json:"surname"`
	Password string `json:"password"`
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	account, err := s.accounts.Register(r.Context(), req.Email, req.Name, req.Surname, []byte(req.Password))
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]string{
		"id":    account.ID,
		"email": account.Email,
	})
}

type verifyEmailRequest struct {
	Email string `json:"email"`
	Code  string `json:"code"`
}

func (s *Server) handleVerifyEmail(w http.ResponseWriter, r *http.Request) {
	var req verifyEmailRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	if err := s.accounts.VerifyEmail(r.Context(), req.Email, req.Code); err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "verified"})
}

type resendVerificationRequest struct {
	Email string `json:"email"`
}

func (s *Server) handleResendVerification(w http.ResponseWriter, r *http.Request) {
	var req resendVerificationRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	if err := s.accounts.ResendVerification(r.Context(), req.Email); err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "sent"})
}

type changePasswordRequest struct {
	OldPassword string `json:"old_password"`
	NewPassword string `json:"new_password"`
}

func (s *Server) handleChangePassword(w http.ResponseWriter, r *http.Request) {
	var req changePasswordRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	err := s.accounts.ChangePassword(r.Context(), AccountID(r.Context()),
		[]byte(req.OldPassword), []byte(req.NewPassword))
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "changed"})
}

func (s *Server) handleEnableTotp(w http.ResponseWriter, r *http.Request) {
	enrollment, err := s.accounts.EnableTotp(r.Context(), AccountID(r.Context()))
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{
		"secret":           enrollment.Secret,
		"provisioning_uri": enrollment.ProvisioningURI,
	})
}

type totpCodeRequest struct {
	Code string `json:"code"`
}

func (s *Server) handleConfirmTotp(w http.ResponseWriter, r *http.Request) {
	var req totpCodeRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	if err := s.accounts.ConfirmTotp(r.Context(), AccountID(r.Context()), req.Code); err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "enabled"})
}

func (s *Server) handleDisableTotp(w http.ResponseWriter, r *http.Request) {
	if err := s.accounts.DisableTotp(r.Context(), AccountID(r.Context())); err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "disabled"})
}

type setSecondFactorRequest struct {
	Method string `json:"method"`
}

func (s *Server) handleSetSecondFactor(w http.ResponseWriter, r *http.Request) {
	var req setSecondFactorRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	if err := s.accounts.SetSecondFactor(r.Context(), AccountID(r.Context()), req.Method); err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "updated"})
}
