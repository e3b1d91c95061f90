package controllers

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/crewfit/fitcircle/models"
	"github.com/crewfit/fitcircle/services"
	"github.com/crewfit/fitcircle/utils"
)

// PostController manages the community feed: posts and comments.
type PostController struct {
	db *gorm.DB
}

// NewPostController creates a new PostController instance.
func NewPostController(db *gorm.DB) *PostController {
	return &PostController{db: db}
}

var validCategories = []string{"general", "progress", "nutrition", "motivation", "questions"}

func validCategory(category string) bool {
	for _, c := range validCategories {
		if category == c {
			return true
		}
	}
	return false
}

// canModeratePosts reports whether the caller may remove other users'
// content.
func canModeratePosts(ctx *gin.Context) bool {
	return services.Allowed(getRole(ctx), services.OpPostModerate)
}

// CreatePost allows authenticated users to create new posts.
func (p *PostController) CreatePost(ctx *gin.Context) {
	var req struct {
		Title    string `json:"title" binding:"required,min=1"`
		Content  string `json:"content" binding:"required"`
		Category string `json:"category"`
		PhotoURL string `json:"photo_url"`
	}

	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40080, "invalid request payload")
		return
	}

	title := utils.Sanitize(strings.TrimSpace(req.Title))
	if title == "" {
		utils.Error(ctx, http.StatusBadRequest, 40081, "title cannot be empty")
		return
	}

	content := utils.Sanitize(req.Content)
	category := req.Category
	if category == "" {
		category = "general"
	}
	if !validCategory(category) {
		utils.Error(ctx, http.StatusBadRequest, 40082, "invalid category")
		return
	}

	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40110, "unauthorized")
		return
	}

	var author models.User
	if err := p.db.First(&author, userID).Error; err != nil {
		utils.Error(ctx, http.StatusNotFound, 40401, "user not found")
		return
	}

	post := models.Post{
		UserID:   userID,
		Title:    title,
		Content:  content,
		Category: category,
		PhotoURL: strings.TrimSpace(req.PhotoURL),
	}
	if author.GroupID != nil {
		post.GroupID = *author.GroupID
	}

	if err := p.db.Create(&post).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50080, "failed to create post")
		return
	}

	if post.PhotoURL != "" {
		if err := p.db.Model(&models.UploadedFile{}).
			Where("user_id = ? AND url = ?", userID, post.PhotoURL).
			Update("expire_at", nil).Error; err != nil {
			utils.Sugar.Warnf("claim upload failed user=%d url=%s: %v", userID, post.PhotoURL, err)
		}
	}

	utils.InvalidateByPrefix("cache:posts:list:")
	utils.InvalidateByPrefix("cache:user:" + strconv.Itoa(int(userID)) + ":posts:")

	utils.Success(ctx, gin.H{"post": post})
}

// ListPosts returns paginated posts including author information.
// Optional filters: search, category, group_id.
func (p *PostController) ListPosts(ctx *gin.Context) {
	page, pageSize := parsePagination(ctx.Query("page"), ctx.Query("page_size"))
	search := strings.TrimSpace(ctx.Query("search"))
	category := strings.TrimSpace(ctx.Query("category"))
	groupID := strings.TrimSpace(ctx.Query("group_id"))

	// Cache feed/category lists when no search term to avoid cache key explosion
	cacheKey := fmt.Sprintf("cache:posts:list:cat=%s:group=%s:page=%d:size=%d", category, groupID, page, pageSize)
	if search == "" {
		if b, ok := utils.CacheGetBytes(cacheKey); ok {
			ctx.Data(http.StatusOK, "application/json", b)
			return
		}
	}

	var posts []models.Post
	var total int64

	query := p.db.Preload("User").Order("created_at DESC")
	if search != "" {
		query = query.Where("title LIKE ? OR content LIKE ?", "%"+search+"%", "%"+search+"%")
	}
	if category != "" {
		query = query.Where("category = ?", category)
	}
	if groupID != "" {
		query = query.Where("group_id = ?", groupID)
	}
	if err := query.Model(&models.Post{}).Count(&total).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50081, "failed to count posts")
		return
	}

	offset := (page - 1) * pageSize
	if err := query.Offset(offset).Limit(pageSize).Find(&posts).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50082, "failed to list posts")
		return
	}

	payload := gin.H{
		"items": posts,
		"pagination": gin.H{
			"page":        page,
			"page_size":   pageSize,
			"total":       total,
			"total_pages": int((total + int64(pageSize) - 1) / int64(pageSize)),
		},
	}
	if search == "" {
		wrapper := utils.JSONResponse{Code: 0, Message: "success", Data: payload}
		utils.CacheSetJSON(cacheKey, wrapper, time.Hour)
	}
	utils.Success(ctx, payload)
}

// GetPost returns a single post with comments.
func (p *PostController) GetPost(ctx *gin.Context) {
	postID := ctx.Param("id")

	if b, ok := utils.CacheGetBytes("cache:post:detail:" + postID); ok {
		ctx.Data(http.StatusOK, "application/json", b)
		return
	}

	var post models.Post
	if err := p.db.Preload("User").First(&post, postID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			utils.Error(ctx, http.StatusNotFound, 40440, "post not found")
			return
		}
		utils.Error(ctx, http.StatusInternalServerError, 50083, "failed to load post")
		return
	}

	var comments []models.Comment
	if err := p.db.Model(&post).Association("Comments").Find(&comments); err != nil {
		utils.Sugar.Warnf("failed to load comments post=%s: %v", postID, err)
	} else {
		post.Comments = comments
	}

	if len(post.Comments) > 0 {
		var userIDs []uint
		for _, c := range post.Comments {
			userIDs = append(userIDs, c.UserID)
		}
		userIDs = utils.UniqueUint(userIDs)

		var users []models.User
		if err := p.db.Find(&users, userIDs).Error; err == nil {
			userMap := make(map[uint]models.User)
			for _, u := range users {
				userMap[u.ID] = u
			}
			for i := range post.Comments {
				if user, ok := userMap[post.Comments[i].UserID]; ok {
					post.Comments[i].User = user
				}
			}
		} else {
			utils.Sugar.Warnf("failed to load comment authors post=%s: %v", postID, err)
		}
	}

	payload := gin.H{"post": post}
	wrapper := utils.JSONResponse{Code: 0, Message: "success", Data: payload}
	utils.CacheSetJSON("cache:post:detail:"+postID, wrapper, time.Hour)
	utils.Success(ctx, payload)
}

// ListMyPosts returns posts created by the authenticated user.
func (p *PostController) ListMyPosts(ctx *gin.Context) {
	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40110, "unauthorized")
		return
	}
	page, pageSize := parsePagination(ctx.Query("page"), ctx.Query("page_size"))
	var posts []models.Post
	var total int64
	q := p.db.Where("user_id = ?", userID).Preload("User").Order("created_at DESC")
	if err := q.Model(&models.Post{}).Count(&total).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50084, "failed to count user posts")
		return
	}
	if err := q.Offset((page - 1) * pageSize).Limit(pageSize).Find(&posts).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50085, "failed to list user posts")
		return
	}
	utils.Success(ctx, gin.H{
		"items": posts,
		"pagination": gin.H{
			"page":        page,
			"page_size":   pageSize,
			"total":       total,
			"total_pages": int((total + int64(pageSize) - 1) / int64(pageSize)),
		},
	})
}

// CreateComment allows authenticated users to comment on posts.
func (p *PostController) CreateComment(ctx *gin.Context) {
	var req struct {
		Content string `json:"content" binding:"required"`
	}

	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40083, "invalid request payload")
		return
	}

	content := utils.Sanitize(req.Content)
	if content == "" {
		utils.Error(ctx, http.StatusBadRequest, 40084, "content cannot be empty")
		return
	}

	postID := ctx.Param("id")
	var post models.Post
	if err := p.db.First(&post, postID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			utils.Error(ctx, http.StatusNotFound, 40440, "post not found")
			return
		}
		utils.Error(ctx, http.StatusInternalServerError, 50083, "failed to load post")
		return
	}

	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40110, "unauthorized")
		return
	}

	comment := models.Comment{
		PostID:  post.ID,
		UserID:  userID,
		Content: content,
	}

	if err := p.db.Create(&comment).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50086, "failed to create comment")
		return
	}

	if err := p.db.Preload("User").First(&comment, comment.ID).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50087, "failed to load comment")
		return
	}

	utils.InvalidateByPrefix("cache:post:detail:" + strconv.Itoa(int(post.ID)))

	utils.Success(ctx, gin.H{"comment": comment})
}

// DeleteComment allows the comment owner or a moderator to delete a
// comment.
func (p *PostController) DeleteComment(ctx *gin.Context) {
	cid := strings.TrimSpace(ctx.Param("commentId"))
	if cid == "" {
		utils.Error(ctx, http.StatusBadRequest, 40085, "missing comment id")
		return
	}
	var cmt models.Comment
	if err := p.db.First(&cmt, cid).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			utils.Error(ctx, http.StatusNotFound, 40441, "comment not found")
			return
		}
		utils.Error(ctx, http.StatusInternalServerError, 50088, "failed to load comment")
		return
	}

	uid, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40110, "unauthorized")
		return
	}
	if cmt.UserID != uid && !canModeratePosts(ctx) {
		utils.Error(ctx, http.StatusForbidden, 40320, "you can only delete your own comment")
		return
	}
	if err := p.db.Delete(&cmt).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50089, "failed to delete comment")
		return
	}
	utils.InvalidateByPrefix("cache:post:detail:" + strconv.Itoa(int(cmt.PostID)))
	utils.Success(ctx, gin.H{"message": "comment deleted"})
}

// UpdatePost allows the author to update their post.
func (p *PostController) UpdatePost(ctx *gin.Context) {
	var req struct {
		Title    string `json:"title" binding:"required,min=1"`
		Content  string `json:"content" binding:"required"`
		Category string `json:"category"`
		PhotoURL string `json:"photo_url"`
	}

	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40086, "invalid request payload")
		return
	}

	title := utils.Sanitize(strings.TrimSpace(req.Title))
	if title == "" {
		utils.Error(ctx, http.StatusBadRequest, 40081, "title cannot be empty")
		return
	}

	content := utils.Sanitize(req.Content)
	category := req.Category
	if category == "" {
		category = "general"
	}
	if !validCategory(category) {
		utils.Error(ctx, http.StatusBadRequest, 40082, "invalid category")
		return
	}

	postID := ctx.Param("id")
	var post models.Post
	if err := p.db.First(&post, postID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			utils.Error(ctx, http.StatusNotFound, 40440, "post not found")
			return
		}
		utils.Error(ctx, http.StatusInternalServerError, 50083, "failed to load post")
		return
	}

	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40110, "unauthorized")
		return
	}

	if post.UserID != userID {
		utils.Error(ctx, http.StatusForbidden, 40321, "you can only update your own posts")
		return
	}

	post.Title = title
	post.Content = content
	post.Category = category
	post.PhotoURL = strings.TrimSpace(req.PhotoURL)
	if err := p.db.Save(&post).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50090, "failed to update post")
		return
	}

	utils.InvalidateByPrefix("cache:posts:list:")
	utils.InvalidateByPrefix("cache:post:detail:" + postID)
	utils.InvalidateByPrefix("cache:user:" + strconv.Itoa(int(post.UserID)) + ":posts:")

	utils.Success(ctx, gin.H{"post": post})
}

// DeletePost allows the author or a moderator to delete a post.
func (p *PostController) DeletePost(ctx *gin.Context) {
	postID := ctx.Param("id")
	var post models.Post
	if err := p.db.First(&post, postID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			utils.Error(ctx, http.StatusNotFound, 40440, "post not found")
			return
		}
		utils.Error(ctx, http.StatusInternalServerError, 50083, "failed to load post")
		return
	}

	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40110, "unauthorized")
		return
	}

	if post.UserID != userID && !canModeratePosts(ctx) {
		utils.Error(ctx, http.StatusForbidden, 40322, "you can only delete your own posts")
		return
	}

	if err := p.db.Delete(&post).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50091, "failed to delete post")
		return
	}

	utils.InvalidateByPrefix("cache:posts:list:")
	utils.InvalidateByPrefix("cache:post:detail:" + postID)
	utils.InvalidateByPrefix("cache:user:" + strconv.Itoa(int(post.UserID)) + ":posts:")

	utils.Success(ctx, gin.H{"message": "post deleted"})
}
