package controllers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/dayflow/dayflow/models"
	"github.com/dayflow/dayflow/services"
	"github.com/dayflow/dayflow/utils"
)

// NoteController handles the notes CRUD surface.
type NoteController struct {
	db       *gorm.DB
	activity *services.ActivityService
	badges   *services.BadgeService
}

// NewNoteController creates a NoteController.
func NewNoteController(db *gorm.DB, activity *services.ActivityService, badges *services.BadgeService) *NoteController {
	return &NoteController{db: db, activity: activity, badges: badges}
}

// List returns notes, pinned first, newest first within each group.
func (n *NoteController) List(ctx *gin.Context) {
	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40110, "unauthorized")
		return
	}

	page, pageSize := parsePagination(ctx.Query("page"), ctx.Query("page_size"))

	query := n.db.Model(&models.Note{}).Where("user_id = ?", userID)
	if ctx.Query("include_archived") != "true" {
		query = query.Where("is_archived = ?", false)
	}
	if search := ctx.Query("search"); search != "" {
		like := "%" + search + "%"
		query = query.Where("title LIKE ? OR content LIKE ?", like, like)
	}
	if tag := ctx.Query("tag"); tag != "" {
		// Serialized tag arrays are stored as JSON text.
		query = query.Where("tags LIKE ?", "%\""+tag+"\"%")
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50040, "failed to load notes")
		return
	}

	var notes []models.Note
	if err := query.
		Order("is_pinned DESC, updated_at DESC").
		Offset((page - 1) * pageSize).
		Limit(pageSize).
		Find(&notes).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50040, "failed to load notes")
		return
	}

	utils.Success(ctx, gin.H{
		"notes":     notes,
		"total":     total,
		"page":      page,
		"page_size": pageSize,
	})
}

type notePayload struct {
	Title        *string   `json:"title"`
	Content      *string   `json:"content"`
	Color        *string   `json:"color"`
	Tags         *[]string `json:"tags"`
	LinkedTaskID *uint     `json:"linked_task_id"`
}

// Create adds a note and records it as activity.
func (n *NoteController) Create(ctx *gin.Context) {
	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40110, "unauthorized")
		return
	}

	var req notePayload
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40040, "invalid request payload")
		return
	}

	note := models.Note{UserID: userID}
	applyNotePayload(&note, req)
	if note.Title == "" {
		note.Title = "Untitled Note"
	}

	if err := n.db.Create(&note).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50041, "failed to create note")
		return
	}

	n.activity.RecordToday(userID, services.ActivityDelta{NotesCreated: 1})
	newBadges := n.badges.Award(userID)

	utils.Success(ctx, gin.H{"note": note, "new_badges": newBadges})
}

// Get returns one note by id.
func (n *NoteController) Get(ctx *gin.Context) {
	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40110, "unauthorized")
		return
	}

	note, ok := n.findOwned(ctx, userID)
	if !ok {
		return
	}
	utils.Success(ctx, gin.H{"note": note})
}

// Update applies a partial update to a note.
func (n *NoteController) Update(ctx *gin.Context) {
	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40110, "unauthorized")
		return
	}

	note, ok := n.findOwned(ctx, userID)
	if !ok {
		return
	}

	var req notePayload
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40040, "invalid request payload")
		return
	}
	applyNotePayload(note, req)

	if err := n.db.Save(note).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50042, "failed to update note")
		return
	}

	utils.Success(ctx, gin.H{"note": note})
}

// Delete removes a note.
func (n *NoteController) Delete(ctx *gin.Context) {
	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40110, "unauthorized")
		return
	}

	note, ok := n.findOwned(ctx, userID)
	if !ok {
		return
	}

	if err := n.db.Delete(note).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50043, "failed to delete note")
		return
	}

	utils.Success(ctx, gin.H{"deleted": note.ID})
}

// TogglePin flips the pinned flag.
func (n *NoteController) TogglePin(ctx *gin.Context) {
	n.toggleFlag(ctx, "is_pinned", func(note *models.Note) *bool { return &note.IsPinned })
}

// ToggleArchive flips the archived flag.
func (n *NoteController) ToggleArchive(ctx *gin.Context) {
	n.toggleFlag(ctx, "is_archived", func(note *models.Note) *bool { return &note.IsArchived })
}

func (n *NoteController) toggleFlag(ctx *gin.Context, column string, field func(*models.Note) *bool) {
	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40110, "unauthorized")
		return
	}

	note, ok := n.findOwned(ctx, userID)
	if !ok {
		return
	}

	flag := field(note)
	*flag = !*flag
	if err := n.db.Model(note).Update(column, *flag).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50044, "failed to update note")
		return
	}

	utils.Success(ctx, gin.H{"note": note})
}

func (n *NoteController) findOwned(ctx *gin.Context, userID uint) (*models.Note, bool) {
	id, err := strconv.ParseUint(ctx.Param("id"), 10, 64)
	if err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40041, "invalid note id")
		return nil, false
	}

	var note models.Note
	if err := n.db.Where("id = ? AND user_id = ?", id, userID).First(&note).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			utils.Error(ctx, http.StatusNotFound, 40440, "note not found")
			return nil, false
		}
		utils.Error(ctx, http.StatusInternalServerError, 50045, "failed to load note")
		return nil, false
	}
	return &note, true
}

func applyNotePayload(note *models.Note, req notePayload) {
	if req.Title != nil {
		note.Title = utils.Sanitize(*req.Title)
	}
	if req.Content != nil {
		note.Content = utils.Sanitize(*req.Content)
	}
	if req.Color != nil {
		note.Color = *req.Color
	}
	if req.Tags != nil {
		note.Tags = *req.Tags
	}
	if req.LinkedTaskID != nil {
		note.LinkedTaskID = req.LinkedTaskID
	}
}
