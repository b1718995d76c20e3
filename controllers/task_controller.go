package controllers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/dayflow/dayflow/models"
	"github.com/dayflow/dayflow/services"
	"github.com/dayflow/dayflow/utils"
)

// TaskController handles the task CRUD surface and feeds the activity and
// badge engines on completion events.
type TaskController struct {
	db       *gorm.DB
	activity *services.ActivityService
	badges   *services.BadgeService
}

// NewTaskController creates a TaskController.
func NewTaskController(db *gorm.DB, activity *services.ActivityService, badges *services.BadgeService) *TaskController {
	return &TaskController{db: db, activity: activity, badges: badges}
}

func taskCachePrefix(userID uint) string {
	return fmt.Sprintf("dayflow:tasks:u%d:", userID)
}

// List returns the user's tasks with optional filters and pagination.
func (t *TaskController) List(ctx *gin.Context) {
	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40110, "unauthorized")
		return
	}

	cacheKey := taskCachePrefix(userID) + ctx.Request.URL.RawQuery
	if b, hit := utils.CacheGetBytes(cacheKey); hit {
		utils.Success(ctx, json.RawMessage(b))
		return
	}

	page, pageSize := parsePagination(ctx.Query("page"), ctx.Query("page_size"))

	query := t.db.Model(&models.Task{}).Where("user_id = ?", userID)
	if status := ctx.Query("status"); status != "" {
		query = query.Where("status = ?", status)
	}
	if priority := ctx.Query("priority"); priority != "" {
		query = query.Where("priority = ?", priority)
	}
	if category := ctx.Query("category"); category != "" {
		query = query.Where("category = ?", category)
	}
	if search := ctx.Query("search"); search != "" {
		like := "%" + search + "%"
		query = query.Where("title LIKE ? OR description LIKE ?", like, like)
	}
	switch ctx.Query("due") {
	case "today":
		query = query.Where("due_date >= ? AND due_date < ?", startOfToday(), startOfToday().AddDate(0, 0, 1))
	case "overdue":
		query = query.Where("due_date < ? AND status NOT IN ?", startOfToday(), []string{models.TaskCompleted, models.TaskCancelled})
	case "upcoming":
		query = query.Where("due_date >= ?", startOfToday().AddDate(0, 0, 1))
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50020, "failed to count tasks")
		return
	}

	var tasks []models.Task
	if err := query.
		Order("sort_order ASC, created_at DESC").
		Offset((page - 1) * pageSize).
		Limit(pageSize).
		Find(&tasks).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50021, "failed to load tasks")
		return
	}

	data := gin.H{
		"tasks":     tasks,
		"total":     total,
		"page":      page,
		"page_size": pageSize,
	}
	utils.CacheSetJSON(cacheKey, data, 5*time.Minute)
	utils.Success(ctx, data)
}

// Get returns one task by id.
func (t *TaskController) Get(ctx *gin.Context) {
	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40110, "unauthorized")
		return
	}

	task, ok := t.findOwned(ctx, userID)
	if !ok {
		return
	}
	utils.Success(ctx, gin.H{"task": task})
}

type taskPayload struct {
	Title            *string          `json:"title"`
	Description      *string          `json:"description"`
	Priority         *string          `json:"priority"`
	Status           *string          `json:"status"`
	Category         *string          `json:"category"`
	Tags             *[]string        `json:"tags"`
	DueDate          *time.Time       `json:"due_date"`
	DueTime          *string          `json:"due_time"`
	EstimatedMinutes *int             `json:"estimated_minutes"`
	Subtasks         *[]models.Subtask `json:"subtasks"`
	IsRecurring      *bool            `json:"is_recurring"`
	RecurringPattern *string          `json:"recurring_pattern"`
	Order            *int             `json:"order"`
}

// Create adds a new task.
func (t *TaskController) Create(ctx *gin.Context) {
	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40110, "unauthorized")
		return
	}

	var req taskPayload
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40020, "invalid request payload")
		return
	}
	if req.Title == nil || *req.Title == "" {
		utils.Error(ctx, http.StatusBadRequest, 40021, "title is required")
		return
	}
	if len([]rune(*req.Title)) > 200 {
		utils.Error(ctx, http.StatusBadRequest, 40022, "title must be at most 200 characters")
		return
	}

	task := models.Task{
		UserID: userID,
		Title:  utils.Sanitize(*req.Title),
	}
	applyTaskPayload(&task, req)
	if !validTaskStatus(task.Status) || !validTaskPriority(task.Priority) {
		utils.Error(ctx, http.StatusBadRequest, 40023, "invalid status or priority")
		return
	}

	completed := task.Status == models.TaskCompleted
	if completed {
		now := time.Now()
		task.CompletedAt = &now
	}

	if err := t.db.Create(&task).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50022, "failed to create task")
		return
	}

	utils.InvalidateByPrefix(taskCachePrefix(userID))
	var newBadges []models.EarnedBadge
	if completed {
		newBadges = t.onTasksCompleted(userID, 1)
	} else {
		newBadges = []models.EarnedBadge{}
	}

	utils.Success(ctx, gin.H{"task": task, "new_badges": newBadges})
}

// Update applies a partial update to a task. A transition into the completed
// status triggers stats, activity and badge updates.
func (t *TaskController) Update(ctx *gin.Context) {
	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40110, "unauthorized")
		return
	}

	task, ok := t.findOwned(ctx, userID)
	if !ok {
		return
	}

	var req taskPayload
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40020, "invalid request payload")
		return
	}
	if req.Title != nil {
		if *req.Title == "" {
			utils.Error(ctx, http.StatusBadRequest, 40021, "title is required")
			return
		}
		task.Title = utils.Sanitize(*req.Title)
	}

	wasCompleted := task.Status == models.TaskCompleted
	applyTaskPayload(task, req)
	if !validTaskStatus(task.Status) || !validTaskPriority(task.Priority) {
		utils.Error(ctx, http.StatusBadRequest, 40023, "invalid status or priority")
		return
	}

	nowCompleted := task.Status == models.TaskCompleted
	if nowCompleted && !wasCompleted {
		now := time.Now()
		task.CompletedAt = &now
	}
	if !nowCompleted && wasCompleted {
		task.CompletedAt = nil
	}

	if err := t.db.Save(task).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50023, "failed to update task")
		return
	}

	utils.InvalidateByPrefix(taskCachePrefix(userID))
	newBadges := []models.EarnedBadge{}
	if nowCompleted && !wasCompleted {
		newBadges = t.onTasksCompleted(userID, 1)
	}

	utils.Success(ctx, gin.H{"task": task, "new_badges": newBadges})
}

// Delete removes a task.
func (t *TaskController) Delete(ctx *gin.Context) {
	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40110, "unauthorized")
		return
	}

	task, ok := t.findOwned(ctx, userID)
	if !ok {
		return
	}

	if err := t.db.Delete(task).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50024, "failed to delete task")
		return
	}

	utils.InvalidateByPrefix(taskCachePrefix(userID))
	utils.Success(ctx, gin.H{"deleted": task.ID})
}

// BulkDelete removes a set of tasks owned by the user.
func (t *TaskController) BulkDelete(ctx *gin.Context) {
	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40110, "unauthorized")
		return
	}

	var req struct {
		IDs []uint `json:"ids" binding:"required,min=1"`
	}
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40024, "invalid request payload")
		return
	}

	res := t.db.Where("user_id = ? AND id IN ?", userID, req.IDs).Delete(&models.Task{})
	if res.Error != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50025, "failed to delete tasks")
		return
	}

	utils.InvalidateByPrefix(taskCachePrefix(userID))
	utils.Success(ctx, gin.H{"deleted": res.RowsAffected})
}

// BulkStatus moves a set of tasks to one status. Tasks newly entering the
// completed status are counted as a single activity delta.
func (t *TaskController) BulkStatus(ctx *gin.Context) {
	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40110, "unauthorized")
		return
	}

	var req struct {
		IDs    []uint `json:"ids" binding:"required,min=1"`
		Status string `json:"status" binding:"required"`
	}
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40024, "invalid request payload")
		return
	}
	if !validTaskStatus(req.Status) {
		utils.Error(ctx, http.StatusBadRequest, 40023, "invalid status or priority")
		return
	}

	var newlyCompleted int64
	if req.Status == models.TaskCompleted {
		if err := t.db.Model(&models.Task{}).
			Where("user_id = ? AND id IN ? AND status <> ?", userID, req.IDs, models.TaskCompleted).
			Count(&newlyCompleted).Error; err != nil {
			utils.Error(ctx, http.StatusInternalServerError, 50026, "failed to update tasks")
			return
		}
	}

	updates := map[string]interface{}{"status": req.Status}
	if req.Status == models.TaskCompleted {
		updates["completed_at"] = time.Now()
	} else {
		updates["completed_at"] = nil
	}
	res := t.db.Model(&models.Task{}).
		Where("user_id = ? AND id IN ?", userID, req.IDs).
		Updates(updates)
	if res.Error != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50026, "failed to update tasks")
		return
	}

	utils.InvalidateByPrefix(taskCachePrefix(userID))
	newBadges := []models.EarnedBadge{}
	if newlyCompleted > 0 {
		newBadges = t.onTasksCompleted(userID, int(newlyCompleted))
	}

	utils.Success(ctx, gin.H{"updated": res.RowsAffected, "new_badges": newBadges})
}

// ToggleSubtask flips the completion flag of one subtask by index.
func (t *TaskController) ToggleSubtask(ctx *gin.Context) {
	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40110, "unauthorized")
		return
	}

	task, ok := t.findOwned(ctx, userID)
	if !ok {
		return
	}

	index, err := strconv.Atoi(ctx.Param("index"))
	if err != nil || index < 0 || index >= len(task.Subtasks) {
		utils.Error(ctx, http.StatusBadRequest, 40025, "subtask index out of range")
		return
	}

	task.Subtasks[index].Completed = !task.Subtasks[index].Completed
	if task.Subtasks[index].Completed {
		now := time.Now()
		task.Subtasks[index].CompletedAt = &now
	} else {
		task.Subtasks[index].CompletedAt = nil
	}

	if err := t.db.Model(task).Update("subtasks", task.Subtasks).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50027, "failed to update subtask")
		return
	}

	utils.InvalidateByPrefix(taskCachePrefix(userID))
	utils.Success(ctx, gin.H{"task": task})
}

// Stats returns a completion summary over the user's tasks.
func (t *TaskController) Stats(ctx *gin.Context) {
	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40110, "unauthorized")
		return
	}

	type statusCount struct {
		Status string
		Count  int64
	}
	var rows []statusCount
	if err := t.db.Model(&models.Task{}).
		Select("status, COUNT(*) AS count").
		Where("user_id = ?", userID).
		Group("status").
		Scan(&rows).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50028, "failed to load task stats")
		return
	}

	var total, completed, pending, inProgress int64
	for _, r := range rows {
		total += r.Count
		switch r.Status {
		case models.TaskCompleted:
			completed = r.Count
		case models.TaskPending:
			pending = r.Count
		case models.TaskInProgress:
			inProgress = r.Count
		}
	}

	var overdue int64
	if err := t.db.Model(&models.Task{}).
		Where("user_id = ? AND due_date < ? AND status NOT IN ?",
			userID, startOfToday(), []string{models.TaskCompleted, models.TaskCancelled}).
		Count(&overdue).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50028, "failed to load task stats")
		return
	}

	rate := 0.0
	if total > 0 {
		rate = float64(completed) / float64(total) * 100
	}

	utils.Success(ctx, gin.H{
		"total":           total,
		"completed":       completed,
		"pending":         pending,
		"in_progress":     inProgress,
		"overdue":         overdue,
		"completion_rate": rate,
	})
}

// onTasksCompleted applies the side effects of n tasks entering the completed
// status: lifetime stats, the daily activity record and a badge pass.
func (t *TaskController) onTasksCompleted(userID uint, n int) []models.EarnedBadge {
	if err := t.db.Model(&models.User{}).
		Where("id = ?", userID).
		Update("stat_tasks_completed", gorm.Expr("stat_tasks_completed + ?", n)).Error; err != nil {
		utils.Sugar.Errorf("tasks: failed to bump completed counter for user %d: %v", userID, err)
	}
	t.activity.RecordToday(userID, services.ActivityDelta{TasksCompleted: n})
	return t.badges.Award(userID)
}

// findOwned loads the task from the :id route param, answering 404 when it
// does not exist or belongs to another user.
func (t *TaskController) findOwned(ctx *gin.Context, userID uint) (*models.Task, bool) {
	id, err := strconv.ParseUint(ctx.Param("id"), 10, 64)
	if err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40026, "invalid task id")
		return nil, false
	}

	var task models.Task
	if err := t.db.Where("id = ? AND user_id = ?", id, userID).First(&task).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			utils.Error(ctx, http.StatusNotFound, 40420, "task not found")
			return nil, false
		}
		utils.Error(ctx, http.StatusInternalServerError, 50029, "failed to load task")
		return nil, false
	}
	return &task, true
}

func applyTaskPayload(task *models.Task, req taskPayload) {
	if req.Description != nil {
		task.Description = utils.Sanitize(*req.Description)
	}
	if req.Priority != nil {
		task.Priority = *req.Priority
	}
	if req.Status != nil {
		task.Status = *req.Status
	}
	if req.Category != nil {
		task.Category = *req.Category
	}
	if req.Tags != nil {
		task.Tags = *req.Tags
	}
	if req.DueDate != nil {
		task.DueDate = req.DueDate
	}
	if req.DueTime != nil {
		task.DueTime = *req.DueTime
	}
	if req.EstimatedMinutes != nil {
		task.EstimatedMinutes = req.EstimatedMinutes
	}
	if req.Subtasks != nil {
		task.Subtasks = *req.Subtasks
	}
	if req.IsRecurring != nil {
		task.IsRecurring = *req.IsRecurring
	}
	if req.RecurringPattern != nil {
		task.RecurringPattern = *req.RecurringPattern
	}
	if req.Order != nil {
		task.Order = *req.Order
	}
	if task.Priority == "" {
		task.Priority = "medium"
	}
	if task.Status == "" {
		task.Status = models.TaskPending
	}
	if task.Category == "" {
		task.Category = "General"
	}
}

func validTaskStatus(s string) bool {
	switch s {
	case models.TaskPending, models.TaskInProgress, models.TaskCompleted, models.TaskCancelled:
		return true
	}
	return false
}

func validTaskPriority(p string) bool {
	switch p {
	case "low", "medium", "high", "urgent":
		return true
	}
	return false
}

func startOfToday() time.Time {
	now := time.Now().UTC()
	return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
}
