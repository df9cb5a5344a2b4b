package handlers

import (
	"errors"
	"net/http"

	"github.com/t9fiction/Solana-Task-Manager/internal/http/middleware"
	"github.com/t9fiction/Solana-Task-Manager/internal/ledger"
	"github.com/t9fiction/Solana-Task-Manager/internal/solana"
	"github.com/t9fiction/Solana-Task-Manager/internal/task"

	"github.com/gin-gonic/gin"
)

// CreateTask submits the create transition for the caller's wallet.
// Expects {"title": "...", "description": "..."}.
func (h *Handler) CreateTask(c *gin.Context) {
	caller, ok := h.caller(c)
	if !ok {
		return
	}

	var req struct {
		Title       string `json:"title"`
		Description string `json:"description"`
	}
	if err := c.BindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "bad request"})
		return
	}

	rec, err := h.Tasks.Create(c.Request.Context(), caller, req.Title, req.Description)
	if err != nil {
		middleware.TaskTransitions.WithLabelValues("create", "rejected").Inc()
		h.taskError(c, err)
		return
	}

	middleware.TaskTransitions.WithLabelValues("create", "committed").Inc()
	c.JSON(http.StatusCreated, gin.H{"address": rec.Address.String(), "task": rec.Task})
}

// UpdateTask replaces the description of the task at :address.
// Expects {"description": "..."}.
func (h *Handler) UpdateTask(c *gin.Context) {
	caller, ok := h.caller(c)
	if !ok {
		return
	}
	addr, ok := h.address(c)
	if !ok {
		return
	}

	var req struct {
		Description string `json:"description"`
	}
	if err := c.BindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "bad request"})
		return
	}

	rec, err := h.Tasks.Update(c.Request.Context(), caller, addr, req.Description)
	if err != nil {
		middleware.TaskTransitions.WithLabelValues("update", "rejected").Inc()
		h.taskError(c, err)
		return
	}

	middleware.TaskTransitions.WithLabelValues("update", "committed").Inc()
	c.JSON(http.StatusOK, gin.H{"address": rec.Address.String(), "task": rec.Task})
}

// CompleteTask marks the task at :address completed. Completing an
// already-completed task reports already_completed instead of failing.
func (h *Handler) CompleteTask(c *gin.Context) {
	caller, ok := h.caller(c)
	if !ok {
		return
	}
	addr, ok := h.address(c)
	if !ok {
		return
	}

	rec, already, err := h.Tasks.Complete(c.Request.Context(), caller, addr)
	if err != nil {
		middleware.TaskTransitions.WithLabelValues("complete", "rejected").Inc()
		h.taskError(c, err)
		return
	}

	outcome := "committed"
	if already {
		outcome = "noop"
	}
	middleware.TaskTransitions.WithLabelValues("complete", outcome).Inc()
	c.JSON(http.StatusOK, gin.H{
		"address":           rec.Address.String(),
		"task":              rec.Task,
		"already_completed": already,
	})
}

// DeleteTask closes the task account at :address. Confirmation dialogs are
// the client's job; the API deletes directly.
func (h *Handler) DeleteTask(c *gin.Context) {
	caller, ok := h.caller(c)
	if !ok {
		return
	}
	addr, ok := h.address(c)
	if !ok {
		return
	}

	if err := h.Tasks.Delete(c.Request.Context(), caller, addr); err != nil {
		middleware.TaskTransitions.WithLabelValues("delete", "rejected").Inc()
		h.taskError(c, err)
		return
	}

	middleware.TaskTransitions.WithLabelValues("delete", "committed").Inc()
	c.JSON(http.StatusOK, gin.H{"deleted": true, "address": addr.String()})
}

// GetTask reads one task by address.
func (h *Handler) GetTask(c *gin.Context) {
	addr, ok := h.address(c)
	if !ok {
		return
	}

	rec, err := h.Tasks.Get(c.Request.Context(), addr)
	if err != nil {
		h.taskError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"address": rec.Address.String(), "task": rec.Task})
}

// ListTasks returns tasks in ledger insertion order. ?owner= restricts to
// one author; ?source=index serves from the off-chain index when available.
func (h *Handler) ListTasks(c *gin.Context) {
	var owner *solana.PublicKey
	if v := c.Query("owner"); v != "" {
		pk, err := solana.PublicKeyFromBase58(v)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid owner address"})
			return
		}
		owner = &pk
	}

	if c.Query("source") == "index" && h.TaskIndex != nil {
		ownerStr := ""
		if owner != nil {
			ownerStr = owner.String()
		}
		indexed, err := h.TaskIndex.List(c.Request.Context(), ownerStr, 100)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "index error"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"tasks": indexed, "source": "index"})
		return
	}

	records, err := h.Tasks.List(c.Request.Context(), owner)
	if err != nil {
		h.taskError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"tasks": records, "source": "ledger"})
}

// caller resolves the authenticated wallet into a public key.
func (h *Handler) caller(c *gin.Context) (solana.PublicKey, bool) {
	wallet, ok := callerWallet(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return solana.PublicKey{}, false
	}
	pk, err := solana.PublicKeyFromBase58(wallet)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid wallet"})
		return solana.PublicKey{}, false
	}
	return pk, true
}

// address parses the :address path parameter.
func (h *Handler) address(c *gin.Context) (solana.PublicKey, bool) {
	addr, err := solana.PublicKeyFromBase58(c.Param("address"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid task address"})
		return solana.PublicKey{}, false
	}
	return addr, true
}

// taskError maps the error taxonomy onto HTTP statuses. Validation errors
// and authorization failures are terminal; conflicts ask the client to
// re-read; unknown outcomes must not be retried blindly.
func (h *Handler) taskError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, task.ErrTitleIsEmpty),
		errors.Is(err, task.ErrTitleTooLong),
		errors.Is(err, task.ErrDescriptionIsEmpty),
		errors.Is(err, task.ErrDescriptionTooLong):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})

	case errors.Is(err, task.ErrUnauthorized):
		c.JSON(http.StatusForbidden, gin.H{"error": "unauthorized"})

	case errors.Is(err, task.ErrTitleNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "title not found"})

	case errors.Is(err, task.ErrTaskAlreadyExists):
		c.JSON(http.StatusConflict, gin.H{"error": "task already exists for this title"})

	case errors.Is(err, task.ErrAddressMismatch), errors.Is(err, task.ErrDecode):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})

	case errors.Is(err, ledger.ErrConflict):
		c.JSON(http.StatusConflict, gin.H{"error": "conflicting write, re-read current state and retry"})

	case errors.Is(err, ledger.ErrUnknownOutcome):
		c.JSON(http.StatusGatewayTimeout, gin.H{"error": "transition outcome unknown, re-query state before retrying"})

	default:
		c.JSON(http.StatusBadGateway, gin.H{"error": "ledger error"})
	}
}
