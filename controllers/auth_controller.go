package controllers

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/dayflow/dayflow/config"
	"github.com/dayflow/dayflow/models"
	"github.com/dayflow/dayflow/utils"
)

// AuthController handles registration, login and profile endpoints.
type AuthController struct {
	db *gorm.DB
}

// NewAuthController creates an AuthController.
func NewAuthController(db *gorm.DB) *AuthController {
	return &AuthController{db: db}
}

// Register creates a new account from name, email and password.
func (a *AuthController) Register(ctx *gin.Context) {
	var req struct {
		Name     string `json:"name" binding:"required,min=2,max=50"`
		Email    string `json:"email" binding:"required,email"`
		Password string `json:"password" binding:"required"`
	}

	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40001, "invalid request payload")
		return
	}

	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if msg := passwordPolicyViolation(req.Password); msg != "" {
		utils.Error(ctx, http.StatusBadRequest, 40002, msg)
		return
	}

	var existing models.User
	if err := a.db.Where("email = ?", req.Email).First(&existing).Error; err == nil {
		utils.Error(ctx, http.StatusBadRequest, 40003, "email already registered")
		return
	}

	hash, err := utils.HashPassword(req.Password)
	if err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50001, "failed to hash password")
		return
	}

	user := models.User{
		Name:         strings.TrimSpace(req.Name),
		Email:        req.Email,
		PasswordHash: hash,
	}
	if err := a.db.Create(&user).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50002, "failed to create user")
		return
	}

	token, err := utils.GenerateToken(user.ID, user.Email, tokenTTL())
	if err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50003, "failed to generate token")
		return
	}

	utils.Success(ctx, gin.H{
		"token": token,
		"user":  user,
	})
}

// Login authenticates by email and password, with a temporary lockout
// after repeated failures.
func (a *AuthController) Login(ctx *gin.Context) {
	var req struct {
		Email    string `json:"email" binding:"required"`
		Password string `json:"password" binding:"required"`
	}

	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40004, "invalid request payload")
		return
	}

	cfg := config.Get()
	ip := ctx.ClientIP()
	email := strings.ToLower(strings.TrimSpace(req.Email))

	var user models.User
	if err := a.db.Where("email = ?", email).First(&user).Error; err != nil {
		// Same message whether the email exists or not
		utils.Error(ctx, http.StatusUnauthorized, 40106, "invalid email or password")
		return
	}

	if user.IsLocked() {
		minutesLeft := int(time.Until(*user.LockUntil).Minutes()) + 1
		utils.Sugar.Warnf("login attempt on locked account %s from %s", email, ip)
		utils.Error(ctx, http.StatusLocked, 42301, fmt.Sprintf("account temporarily locked, try again in %d minutes", minutesLeft))
		return
	}

	if !utils.CheckPassword(user.PasswordHash, req.Password) {
		attempts := user.LoginAttempts + 1
		updates := map[string]interface{}{"login_attempts": attempts}
		if attempts >= cfg.LoginMaxAttempts {
			lockUntil := time.Now().Add(time.Duration(cfg.LoginLockMinutes) * time.Minute)
			updates["lock_until"] = lockUntil
		}
		if err := a.db.Model(&user).Updates(updates).Error; err != nil {
			utils.Sugar.Errorf("failed to record failed login for %s: %v", email, err)
		}
		utils.Sugar.Warnf("failed login for %s from %s (attempt %d)", email, ip, attempts)
		if attempts >= cfg.LoginMaxAttempts {
			utils.Error(ctx, http.StatusLocked, 42302, "account locked due to too many failed attempts")
			return
		}
		utils.Error(ctx, http.StatusUnauthorized, 40106, "invalid email or password")
		return
	}

	now := time.Now()
	if err := a.db.Model(&user).Updates(map[string]interface{}{
		"login_attempts": 0,
		"lock_until":     nil,
		"last_login_at":  now,
		"last_login_ip":  ip,
	}).Error; err != nil {
		utils.Sugar.Errorf("failed to record login for %s: %v", email, err)
	}

	token, err := utils.GenerateToken(user.ID, user.Email, tokenTTL())
	if err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50004, "failed to generate token")
		return
	}

	utils.Success(ctx, gin.H{
		"token": token,
		"user":  user,
	})
}

// Logout invalidates the token by blacklisting it until expiration.
func (a *AuthController) Logout(ctx *gin.Context) {
	authHeader := ctx.GetHeader("Authorization")
	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 {
		utils.Error(ctx, http.StatusUnauthorized, 40107, "invalid authorization header")
		return
	}

	token := strings.TrimSpace(parts[1])
	claims, err := utils.ParseToken(token)
	if err != nil {
		utils.Error(ctx, http.StatusUnauthorized, 40105, "invalid token")
		return
	}

	expiresAt := time.Now().Add(tokenTTL())
	if claims.RegisteredClaims.ExpiresAt != nil {
		expiresAt = claims.RegisteredClaims.ExpiresAt.Time
	}

	utils.BlacklistToken(token, expiresAt)
	utils.Success(ctx, gin.H{"message": "logged out"})
}

// Me returns the authenticated user including earned badges.
func (a *AuthController) Me(ctx *gin.Context) {
	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40110, "unauthorized")
		return
	}

	var user models.User
	if err := a.db.Preload("Badges").First(&user, userID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			utils.Error(ctx, http.StatusNotFound, 40410, "user not found")
			return
		}
		utils.Error(ctx, http.StatusInternalServerError, 50005, "failed to load user")
		return
	}

	utils.Success(ctx, gin.H{"user": user})
}

// UpdateProfile updates name, bio, avatar gradient and preferences.
func (a *AuthController) UpdateProfile(ctx *gin.Context) {
	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40110, "unauthorized")
		return
	}

	var req struct {
		Name           *string             `json:"name"`
		Bio            *string             `json:"bio"`
		AvatarGradient *string             `json:"avatar_gradient"`
		Preferences    *models.Preferences `json:"preferences"`
	}
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40005, "invalid request payload")
		return
	}

	var user models.User
	if err := a.db.First(&user, userID).Error; err != nil {
		utils.Error(ctx, http.StatusNotFound, 40410, "user not found")
		return
	}

	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if l := len([]rune(name)); l < 2 || l > 50 {
			utils.Error(ctx, http.StatusBadRequest, 40006, "name must be 2-50 characters")
			return
		}
		user.Name = name
	}
	if req.Bio != nil {
		bio := strings.TrimSpace(*req.Bio)
		if len([]rune(bio)) > 250 {
			bio = string([]rune(bio)[:250])
		}
		user.Bio = bio
	}
	if req.AvatarGradient != nil {
		user.AvatarGradient = *req.AvatarGradient
	}
	if req.Preferences != nil {
		user.Preferences = *req.Preferences
	}

	if err := a.db.Save(&user).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50006, "failed to update profile")
		return
	}

	utils.Success(ctx, gin.H{"user": user})
}

// ChangePassword verifies the current password and stores a new hash.
func (a *AuthController) ChangePassword(ctx *gin.Context) {
	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40110, "unauthorized")
		return
	}

	var req struct {
		CurrentPassword string `json:"current_password" binding:"required"`
		NewPassword     string `json:"new_password" binding:"required"`
	}
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40007, "invalid request payload")
		return
	}
	if msg := passwordPolicyViolation(req.NewPassword); msg != "" {
		utils.Error(ctx, http.StatusBadRequest, 40008, msg)
		return
	}

	var user models.User
	if err := a.db.First(&user, userID).Error; err != nil {
		utils.Error(ctx, http.StatusNotFound, 40410, "user not found")
		return
	}

	if !utils.CheckPassword(user.PasswordHash, req.CurrentPassword) {
		utils.Error(ctx, http.StatusBadRequest, 40009, "current password is incorrect")
		return
	}

	hash, err := utils.HashPassword(req.NewPassword)
	if err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50007, "failed to hash password")
		return
	}
	if err := a.db.Model(&user).Update("password_hash", hash).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50008, "failed to update password")
		return
	}

	utils.Success(ctx, gin.H{"message": "password updated"})
}

// passwordPolicyViolation returns a message when the password does not meet
// the minimum policy: 8+ characters with at least one uppercase letter and
// one digit.
func passwordPolicyViolation(password string) string {
	if len(password) < 8 {
		return "password must be at least 8 characters"
	}
	var hasUpper, hasDigit bool
	for _, r := range password {
		switch {
		case r >= 'A' && r <= 'Z':
			hasUpper = true
		case r >= '0' && r <= '9':
			hasDigit = true
		}
	}
	if !hasUpper {
		return "password must contain at least one uppercase letter"
	}
	if !hasDigit {
		return "password must contain at least one number"
	}
	return ""
}

func tokenTTL() time.Duration {
	return time.Duration(config.Get().TokenTTLHours) * time.Hour
}
