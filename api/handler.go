package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/gabrielvendedoryamaha-creator/Gest-o-de-Vendas/internal/sales"
)

// appHandler holds the session state and implements the HTTP handlers
// around it.
type appHandler struct {
	session *sales.Session
	logger  *zap.Logger
}

// NewAppHandler creates a new handler around the given session.
func NewAppHandler(session *sales.Session, logger *zap.Logger) *appHandler {
	return &appHandler{
		session: session,
		logger:  logger,
	}
}

// saleView decorates a sale with the formatted value and date shown on
// the cards.
type saleView struct {
	sales.Sale
	DisplayValue string `json:"display_value"`
	DisplayDate  string `json:"display_date"`
}

func newSaleView(s *sales.Sale) saleView {
	return saleView{
		Sale:         *s,
		DisplayValue: s.DisplayValue(),
		DisplayDate:  s.DisplayDate(),
	}
}

// handleLogin handles POST /login.
func (h *appHandler) handleLogin(ctx *gin.Context) {
	var req struct {
		Email string `json:"email"`
	}
	if err := ctx.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("failed to bind JSON request", zap.Error(err))
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "invalid request payload"})
		return
	}

	if err := h.session.Login(ctx.Request.Context(), req.Email); err != nil {
		if errors.Is(err, sales.ErrInvalidEmail) {
			ctx.JSON(http.StatusBadRequest, gin.H{"error": "invalid email"})
			return
		}
		// The identity is set; only the sales reload failed.
		h.logger.Error("failed to load sales after login", zap.Error(err))
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load sales"})
		return
	}

	ctx.Status(http.StatusNoContent)
}

// handleLogout handles POST /logout.
func (h *appHandler) handleLogout(ctx *gin.Context) {
	h.session.Logout()
	ctx.Status(http.StatusNoContent)
}

// handleSession handles GET /session.
func (h *appHandler) handleSession(ctx *gin.Context) {
	ctx.JSON(http.StatusOK, gin.H{
		"logged_in": h.session.LoggedIn(),
		"email":     h.session.Email(),
		"theme":     h.session.Theme(),
		"busy":      h.session.Busy(),
	})
}

// handleListSales handles GET /sales?q=term.
func (h *appHandler) handleListSales(ctx *gin.Context) {
	if !h.session.LoggedIn() {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "no active session"})
		return
	}

	h.session.SetSearch(ctx.Query("q"))
	visible := h.session.Visible()

	results := make([]saleView, 0, len(visible))
	for _, s := range visible {
		results = append(results, newSaleView(s))
	}

	ctx.JSON(http.StatusOK, gin.H{
		"results":  results,
		"metadata": sales.Summarize(visible),
	})
}

// handleCreateSale handles POST /sales. The value field may arrive as
// a JSON number or as a comma-decimal string ("150,5"), matching the
// entry form; the CPF is coerced to its masked format.
func (h *appHandler) handleCreateSale(ctx *gin.Context) {
	if h.session.Busy() {
		ctx.JSON(http.StatusConflict, gin.H{"error": "another submission is in progress"})
		return
	}

	var req struct {
		ClientName string          `json:"client_name"`
		ClientCPF  string          `json:"client_cpf"`
		Value      json.RawMessage `json:"value"`
	}
	if err := ctx.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("failed to bind JSON request", zap.Error(err))
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "invalid request payload"})
		return
	}

	var value float64
	if err := json.Unmarshal(req.Value, &value); err != nil {
		var text string
		if err := json.Unmarshal(req.Value, &text); err != nil {
			ctx.JSON(http.StatusBadRequest, gin.H{"error": "invalid value"})
			return
		}
		parsed, err := sales.ParseAmount(text)
		if err != nil {
			ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		value = parsed
	} else if value < 0 {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "value must not be negative"})
		return
	}

	draft := sales.SaleDraft{
		ClientName: strings.TrimSpace(req.ClientName),
		ClientCPF:  sales.FormatCPF(req.ClientCPF),
		Value:      value,
	}

	sale, err := h.session.AddSale(ctx.Request.Context(), draft)
	if err != nil {
		switch {
		case errors.Is(err, sales.ErrNoSession):
			ctx.JSON(http.StatusUnauthorized, gin.H{"error": "no active session"})
		case errors.Is(err, sales.ErrInvalidDraft):
			ctx.JSON(http.StatusBadRequest, gin.H{"error": "incomplete sale draft"})
		default:
			h.logger.Error("failed to create sale", zap.Error(err),
				zap.String("client", draft.ClientName))
			ctx.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create sale"})
		}
		return
	}

	ctx.JSON(http.StatusCreated, newSaleView(sale))
}

// handleToggleTheme handles POST /theme/toggle.
func (h *appHandler) handleToggleTheme(ctx *gin.Context) {
	ctx.JSON(http.StatusOK, gin.H{"theme": h.session.ToggleTheme()})
}
