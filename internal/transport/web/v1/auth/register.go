package auth

import (
	"encoding/json"
	"log"
	"net/http"
	"strings"

	"github.com/tech-wizard720/Property-Listing-system/internal/domain"
	"github.com/tech-wizard720/Property-Listing-system/internal/transport/web/logx"
	"github.com/tech-wizard720/Property-Listing-system/internal/transport/web/mw"
	v1 "github.com/tech-wizard720/Property-Listing-system/internal/transport/web/v1"
)

// HandlerRegister обрабатывает POST /api/auth/register
type HandlerRegister struct {
	Log    *log.Logger
	Users  domain.UsersRepo
	Hasher domain.PasswordHasher
}

type registerRequest struct {
	Email string `json:"email"`
	Name  string `json:"name"`
	Pswd  string `json:"pswd"`
}

type registerResponse struct {
	Email string `json:"email"`
}

// Register godoc
// @Summary     Register new user
// @Description Регистрация нового пользователя по email и паролю.
// @Tags        auth
// @Accept      json
// @Produce     json
// @Param       request body registerRequest true "email, name, pswd"
// @Success     200 {object} domain.APIEnvelope{response=registerResponse}
// @Failure     400 {object} domain.APIEnvelope
// @Failure     405 {object} domain.APIEnvelope
// @Failure     409 {object} domain.APIEnvelope
// @Failure     500 {object} domain.APIEnvelope
// @Router      /api/auth/register [post]
func (h *HandlerRegister) Register(w http.ResponseWriter, r *http.Request) {
	const op = "auth.register"
	reqID := mw.RequestIDFromCtx(r.Context())
	logx.Info(h.Log, reqID, op, "start", "method", r.Method, "path", r.URL.Path)

	if r.Method != http.MethodPost {
		logx.Error(h.Log, reqID, op, "method not allowed", domain.ErrMethodNotAllowed, "method", r.Method)
		v1.WriteDomainError(w, r, domain.ErrMethodNotAllowed)
		return
	}

	// Принимаем JSON, но поддержим и форму (на случай ручного теста).
	var req registerRequest
	ct := r.Header.Get("Content-Type")
	if strings.HasPrefix(ct, "application/json") {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			logx.Error(h.Log, reqID, op, "bad json", err)
			v1.WriteDomainError(w, r, domain.ErrBadParams)
			return
		}
	} else {
		_ = r.ParseForm()
		req.Email = r.FormValue("email")
		req.Name = r.FormValue("name")
		req.Pswd = r.FormValue("pswd")
	}

	// 1) Валидация email/пароля (домен)
	if !domain.ValidEmail(req.Email) || !domain.ValidPassword(req.Pswd) {
		logx.Error(h.Log, reqID, op, "validation failed", domain.ErrBadParams, "email", req.Email)
		v1.WriteDomainError(w, r, domain.ErrBadParams)
		return
	}

	// 2) Хэш пароля
	hashStr, err := h.Hasher.Hash(req.Pswd)
	if err != nil {
		logx.Error(h.Log, reqID, op, "hash failed", err)
		v1.WriteDomainError(w, r, domain.ErrUnexpected)
		return
	}

	// 3) Создаём пользователя
	u, err := h.Users.CreateUser(r.Context(), strings.ToLower(req.Email), req.Name, []byte(hashStr))
	if err != nil {
		// уникальный конфликт по email — маппим как conflict
		logx.Error(h.Log, reqID, op, "create user failed", err, "email", req.Email)
		v1.WriteDomainError(w, r, domain.ErrConflict)
		return
	}

	// 4) Ответ по конверту
	logx.Info(h.Log, reqID, op, "ok", "user_id", u.ID, "email", u.Email)
	v1.WriteOKResponse(w, r, registerResponse{Email: u.Email})
}
