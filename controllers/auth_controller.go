package controllers

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/crewfit/fitcircle/config"
	"github.com/crewfit/fitcircle/models"
	"github.com/crewfit/fitcircle/utils"
)

const tokenDuration = 72 * time.Hour

// AuthController handles registration, login and profile endpoints.
type AuthController struct {
	db *gorm.DB
}

// NewAuthController creates an AuthController.
func NewAuthController(db *gorm.DB) *AuthController {
	return &AuthController{db: db}
}

// Register creates a local account with a bcrypt-hashed password.
// Usernames listed in AdminUsernames become admins at registration
// time; everyone else starts as a regular participant.
func (a *AuthController) Register(ctx *gin.Context) {
	type request struct {
		Username    string `json:"username" binding:"required,min=3,max=64"`
		Email       string `json:"email"`
		Password    string `json:"password" binding:"required,min=6,max=72"`
		DisplayName string `json:"display_name"`
	}

	var req request
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40001, "invalid request payload")
		return
	}

	req.Username = strings.TrimSpace(req.Username)
	if !validUsername(req.Username) {
		utils.Error(ctx, http.StatusBadRequest, 40002, "username may contain letters, digits and '-' only")
		return
	}

	var existing models.User
	if err := a.db.Where("username = ?", req.Username).First(&existing).Error; err == nil {
		utils.Error(ctx, http.StatusConflict, 40901, "username already exists")
		return
	}

	hash, err := utils.HashPassword(req.Password)
	if err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50001, "failed to hash password")
		return
	}

	role := models.RoleUser
	if isAdminUsername(req.Username) {
		role = models.RoleAdmin
	}

	user := models.User{
		Username:     req.Username,
		Email:        strings.TrimSpace(req.Email),
		PasswordHash: hash,
		DisplayName:  strings.TrimSpace(req.DisplayName),
		Role:         role,
	}

	if err := a.db.Create(&user).Error; err != nil {
		if utils.IsDuplicateKeyError(err) {
			utils.Error(ctx, http.StatusConflict, 40901, "username already exists")
			return
		}
		utils.Error(ctx, http.StatusInternalServerError, 50002, "failed to create user")
		return
	}

	token, err := utils.GenerateToken(user.ID, user.Username, user.Role, tokenDuration)
	if err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50003, "failed to generate token")
		return
	}

	utils.Success(ctx, gin.H{
		"token": token,
		"user":  userResponse(user),
	})
}

// Login verifies user credentials and issues a JWT.
func (a *AuthController) Login(ctx *gin.Context) {
	type request struct {
		Username string `json:"username" binding:"required"`
		Password string `json:"password" binding:"required"`
	}

	var req request
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40003, "invalid request payload")
		return
	}

	var user models.User
	if err := a.db.Where("username = ?", strings.TrimSpace(req.Username)).First(&user).Error; err != nil {
		utils.Error(ctx, http.StatusUnauthorized, 40106, "invalid username or password")
		return
	}

	if !utils.CheckPassword(user.PasswordHash, req.Password) {
		utils.Error(ctx, http.StatusUnauthorized, 40106, "invalid username or password")
		return
	}

	token, err := utils.GenerateToken(user.ID, user.Username, user.Role, tokenDuration)
	if err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50004, "failed to generate token")
		return
	}

	utils.Success(ctx, gin.H{
		"token": token,
		"user":  userResponse(user),
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

	expiresAt := time.Now().Add(tokenDuration)
	if claims.RegisteredClaims.ExpiresAt != nil {
		expiresAt = claims.RegisteredClaims.ExpiresAt.Time
	}

	utils.BlacklistToken(token, expiresAt)
	utils.Success(ctx, gin.H{"message": "logged out"})
}

// Me returns the current authenticated user's information.
func (a *AuthController) Me(ctx *gin.Context) {
	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40110, "unauthorized")
		return
	}

	var user models.User
	if err := a.db.First(&user, userID).Error; err != nil {
		utils.Error(ctx, http.StatusNotFound, 40401, "user not found")
		return
	}

	utils.Success(ctx, userResponse(user))
}

// UpdateProfile allows the authenticated user to update basic profile fields.
func (a *AuthController) UpdateProfile(ctx *gin.Context) {
	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40110, "unauthorized")
		return
	}

	var req struct {
		Email       string `json:"email"`
		DisplayName string `json:"display_name"`
		AvatarURL   string `json:"avatar_url"`
	}
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40030, "invalid request payload")
		return
	}

	var user models.User
	if err := a.db.First(&user, userID).Error; err != nil {
		utils.Error(ctx, http.StatusNotFound, 40401, "user not found")
		return
	}

	if v := strings.TrimSpace(req.Email); v != "" {
		user.Email = v
	}
	if v := strings.TrimSpace(req.DisplayName); v != "" {
		name := utils.Sanitize(v)
		if len([]rune(name)) > 64 {
			rs := []rune(name)
			name = string(rs[:64])
		}
		user.DisplayName = name
	}
	if v := strings.TrimSpace(req.AvatarURL); v != "" {
		user.AvatarURL = v
	}

	if err := a.db.Save(&user).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50031, "failed to update profile")
		return
	}
	utils.InvalidateByPrefix("cache:user:public:" + strconv.Itoa(int(user.ID)))

	utils.Success(ctx, userResponse(user))
}

// GetUserPublic returns public user info by ID.
func (a *AuthController) GetUserPublic(ctx *gin.Context) {
	idStr := strings.TrimSpace(ctx.Param("id"))
	if idStr == "" {
		utils.Error(ctx, http.StatusBadRequest, 40050, "missing user id")
		return
	}
	if b, ok := utils.CacheGetBytes("cache:user:public:" + idStr); ok {
		ctx.Data(http.StatusOK, "application/json", b)
		return
	}
	var user models.User
	if err := a.db.First(&user, idStr).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			utils.Error(ctx, http.StatusNotFound, 40410, "user not found")
			return
		}
		utils.Error(ctx, http.StatusInternalServerError, 50050, "failed to get user")
		return
	}
	payload := publicUserResponse(user)
	wrapper := utils.JSONResponse{Code: 0, Message: "success", Data: payload}
	utils.CacheSetJSON("cache:user:public:"+idStr, wrapper, time.Hour)
	utils.Success(ctx, payload)
}

func validUsername(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if (r >= '0' && r <= '9') || (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || r == '-' {
			continue
		}
		return false
	}
	return true
}

// isAdminUsername checks whether given username is configured as an admin (case-insensitive).
func isAdminUsername(username string) bool {
	uname := strings.TrimSpace(username)
	if uname == "" {
		return false
	}
	for _, u := range config.Get().AdminUsernames {
		if strings.EqualFold(strings.TrimSpace(u), uname) {
			return true
		}
	}
	return false
}

func userResponse(user models.User) gin.H {
	return gin.H{
		"id":           user.ID,
		"username":     user.Username,
		"email":        user.Email,
		"display_name": user.DisplayName,
		"role":         user.Role,
		"group_id":     user.GroupID,
		"avatar_url":   user.AvatarURL,
		"created_at":   user.CreatedAt,
	}
}

func publicUserResponse(user models.User) gin.H {
	return gin.H{
		"id":           user.ID,
		"username":     user.Username,
		"display_name": user.DisplayName,
		"group_id":     user.GroupID,
		"avatar_url":   user.AvatarURL,
		"created_at":   user.CreatedAt,
	}
}
