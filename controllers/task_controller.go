package controllers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/kaiazoo/zooquest/middleware"
	"github.com/kaiazoo/zooquest/rewards"
	"github.com/kaiazoo/zooquest/store"
	"github.com/kaiazoo/zooquest/utils"
)

// TaskController serves the task catalog, one-shot completion rewards
// and the achievements unlocked by completing tasks.
type TaskController struct {
	store  store.Store
	engine *rewards.TaskEngine
}

// NewTaskController creates a TaskController.
func NewTaskController(s store.Store, engine *rewards.TaskEngine) *TaskController {
	return &TaskController{store: s, engine: engine}
}

// List returns the task catalog. When the caller is signed in each task
// carries its completion status.
func (t *TaskController) List(ctx *gin.Context) {
	if userID, ok := middleware.UserID(ctx); ok {
		tasks, err := t.store.TasksWithStatus(userID)
		if err != nil {
			utils.Error(ctx, http.StatusInternalServerError, 50020, "failed to list tasks")
			return
		}
		utils.Success(ctx, tasks)
		return
	}

	tasks, err := t.store.Tasks()
	if err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50020, "failed to list tasks")
		return
	}
	utils.Success(ctx, tasks)
}

// Get returns a single catalog task by ID.
func (t *TaskController) Get(ctx *gin.Context) {
	id := strings.TrimSpace(ctx.Param("id"))
	if id == "" {
		utils.Error(ctx, http.StatusBadRequest, 40020, "missing task id")
		return
	}

	task, err := t.store.Task(id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			utils.Error(ctx, http.StatusNotFound, 40403, "task not found")
			return
		}
		utils.Error(ctx, http.StatusInternalServerError, 50021, "failed to get task")
		return
	}
	utils.Success(ctx, task)
}

// Complete grants the caller the task reward, at most once per task.
func (t *TaskController) Complete(ctx *gin.Context) {
	userID, ok := middleware.UserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40108, "unauthorized")
		return
	}

	id := strings.TrimSpace(ctx.Param("id"))
	if id == "" {
		utils.Error(ctx, http.StatusBadRequest, 40020, "missing task id")
		return
	}

	completion, err := t.engine.Complete(userID, id)
	if err != nil {
		switch {
		case errors.Is(err, rewards.ErrTaskNotFound):
			utils.Error(ctx, http.StatusNotFound, 40403, "task not found")
		case errors.Is(err, store.ErrAlreadyCompleted):
			utils.Error(ctx, http.StatusConflict, 40902, "task already completed")
		default:
			utils.Error(ctx, http.StatusInternalServerError, 50022, "failed to complete task")
		}
		return
	}

	utils.InvalidateByPrefix(profileCacheKey(userID))
	utils.Success(ctx, completion)
}

// Completed lists the caller's completion records.
func (t *TaskController) Completed(ctx *gin.Context) {
	userID, ok := middleware.UserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40108, "unauthorized")
		return
	}

	completions, err := t.store.Completions(userID)
	if err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50023, "failed to list completions")
		return
	}
	utils.Success(ctx, completions)
}

// Achievements lists the caller's unlocked achievements.
func (t *TaskController) Achievements(ctx *gin.Context) {
	userID, ok := middleware.UserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40108, "unauthorized")
		return
	}

	achievements, err := t.store.Achievements(userID)
	if err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50024, "failed to list achievements")
		return
	}
	utils.Success(ctx, achievements)
}
