package httpapi

import (
	"net/http"
)

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginResponse struct {
	State       string `json:"state"`
	AccessToken string `json:"access_token,omitempty"`
	ChallengeID string `json:"challenge_id,omitempty"`
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	result, err := s.auth.Login(r.Context(), req.Email, []byte(req.Password))
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, loginResponse{
		State:       result.State,
		AccessToken: result.AccessToken,
		ChallengeID: result.ChallengeID,
	})
}

type secondFactorRequest struct {
	ChallengeID string `json:"challenge_id"`
	Code        string `json:"code"`
}

func (s *Server) handleSecondFactor(w http.ResponseWriter, r *http.Request) {
	var req secondFactorRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	result, err := s.auth.SubmitSecondFactor(r.Context(), req.ChallengeID, req.Code)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, loginResponse{
		State:       result.State,
		AccessToken: result.AccessToken,
	})
}

type requestOtpRequest struct {
	ChallengeID string `json:"challenge_id"`
}

func (s *Server) handleRequestOtp(w http.ResponseWriter, r *http.Request) {
	var req requestOtpRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	if err := s.auth.RequestOtp(r.Context(), req.ChallengeID); err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "sent"})
}
