package controllers

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/crewfit/fitcircle/config"
	"github.com/crewfit/fitcircle/models"
	"github.com/crewfit/fitcircle/services"
	"github.com/crewfit/fitcircle/utils"
)

// CheckInController handles daily habit check-in endpoints.
type CheckInController struct {
	db       *gorm.DB
	analyzer services.WorkoutAnalyzer
	badges   *services.BadgeEvaluator
}

// NewCheckInController creates a CheckInController. analyzer may wrap a
// nil LLM client; enrichment is skipped in that case.
func NewCheckInController(db *gorm.DB, analyzer services.WorkoutAnalyzer) *CheckInController {
	return &CheckInController{
		db:       db,
		analyzer: analyzer,
		badges:   services.NewBadgeEvaluator(db),
	}
}

type checkInRequest struct {
	Date       string `json:"date"` // optional YYYY-MM-DD, defaults to today
	Nutrition  bool   `json:"nutrition"`
	Hydration  bool   `json:"hydration"`
	Movement   bool   `json:"movement"`
	Scripture  bool   `json:"scripture"`
	Notes      string `json:"notes"`
	PhotoURL   string `json:"photo_url"`
	WorkoutLog string `json:"workout_log"`
}

// SubmitCheckIn records one habit check-in for an app day. The unique
// index on (user_id, checkin_day) enforces once-per-day; the lookup
// before the insert only exists to produce a friendly conflict message.
func (c *CheckInController) SubmitCheckIn(ctx *gin.Context) {
	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40110, "unauthorized")
		return
	}

	var req checkInRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40010, "invalid request payload")
		return
	}

	m, err := resolveMembership(c.db, userID)
	if err != nil {
		respondMembershipError(ctx, err)
		return
	}

	now := time.Now()
	eventTime := now
	if strings.TrimSpace(req.Date) != "" {
		day, err := time.ParseInLocation("2006-01-02", strings.TrimSpace(req.Date), now.Location())
		if err != nil {
			utils.Error(ctx, http.StatusBadRequest, 40011, "invalid date, expected YYYY-MM-DD")
			return
		}
		if services.AppDayKey(day).After(services.AppDayKey(now)) {
			utils.Error(ctx, http.StatusBadRequest, 40012, "cannot check in for a future day")
			return
		}
		if services.SameAppDay(day, now) {
			eventTime = now
		} else {
			eventTime = services.StartOfAppDay(day)
		}
	}
	dayKey := services.AppDayKey(eventTime)

	var existing models.CheckIn
	if err := c.db.Where("user_id = ? AND checkin_day = ?", userID, dayKey).First(&existing).Error; err == nil {
		utils.Error(ctx, http.StatusConflict, 40902, "already checked in for this day")
		return
	}

	checkin := models.CheckIn{
		UserID:      userID,
		GroupID:     m.Group.ID,
		ChallengeID: m.Challenge.ID,
		Date:        eventTime,
		CheckinDay:  dayKey,
		Nutrition:   req.Nutrition,
		Hydration:   req.Hydration,
		Movement:    req.Movement,
		Scripture:   req.Scripture,
		Notes:       utils.Sanitize(req.Notes),
		PhotoURL:    strings.TrimSpace(req.PhotoURL),
		WorkoutLog:  utils.Sanitize(req.WorkoutLog),
	}

	if err := c.db.Create(&checkin).Error; err != nil {
		if utils.IsDuplicateKeyError(err) {
			utils.Error(ctx, http.StatusConflict, 40902, "already checked in for this day")
			return
		}
		utils.Error(ctx, http.StatusInternalServerError, 50010, "failed to record check-in")
		return
	}

	if checkin.PhotoURL != "" {
		c.claimUpload(userID, checkin.PhotoURL)
	}

	newBadges, err := c.badges.CheckAndAward(userID)
	if err != nil {
		utils.Sugar.Warnf("badge evaluation failed user=%d: %v", userID, err)
	}

	if checkin.WorkoutLog != "" {
		go c.enrichWorkout(checkin.ID, checkin.WorkoutLog)
	}

	invalidateScoringCaches(m.Group.ID)

	utils.Success(ctx, gin.H{
		"checkin":    checkin,
		"new_badges": newBadges,
	})
}

// enrichWorkout runs the workout analyzer off the request path and
// backfills the check-in row. Failures are logged and swallowed; the
// check-in is already complete.
func (c *CheckInController) enrichWorkout(checkinID uint, workoutLog string) {
	defer func() { _ = recover() }()

	ctx, cancel := context.WithTimeout(context.Background(), 45*time.Second)
	defer cancel()

	analysis, err := c.analyzer.AnalyzeWorkout(ctx, workoutLog)
	if err != nil {
		if !errors.Is(err, services.ErrLLMUnavailable) {
			utils.Sugar.Warnf("workout analysis failed checkin=%d: %v", checkinID, err)
		}
		return
	}

	if err := c.db.Model(&models.CheckIn{}).Where("id = ?", checkinID).
		Update("workout_analysis", string(analysis)).Error; err != nil {
		utils.Sugar.Warnf("workout analysis save failed checkin=%d: %v", checkinID, err)
	}
}

// claimUpload clears the expiry on an uploaded proof photo once it is
// attached to a check-in, so the cleaner leaves it alone.
func (c *CheckInController) claimUpload(userID uint, url string) {
	if err := c.db.Model(&models.UploadedFile{}).
		Where("user_id = ? AND url = ?", userID, url).
		Update("expire_at", nil).Error; err != nil {
		utils.Sugar.Warnf("claim upload failed user=%d url=%s: %v", userID, url, err)
	}
}

// GetCheckInByDate returns the caller's check-in for one app day.
func (c *CheckInController) GetCheckInByDate(ctx *gin.Context) {
	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40110, "unauthorized")
		return
	}

	day, err := time.ParseInLocation("2006-01-02", strings.TrimSpace(ctx.Param("date")), time.Local)
	if err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40011, "invalid date, expected YYYY-MM-DD")
		return
	}

	var checkin models.CheckIn
	if err := c.db.Where("user_id = ? AND checkin_day = ?", userID, services.AppDayKey(day)).First(&checkin).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			utils.Error(ctx, http.StatusNotFound, 40420, "no check-in for this day")
			return
		}
		utils.Error(ctx, http.StatusInternalServerError, 50011, "failed to load check-in")
		return
	}

	utils.Success(ctx, checkin)
}

// ListMyCheckIns returns the caller's check-in history, newest first.
func (c *CheckInController) ListMyCheckIns(ctx *gin.Context) {
	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40110, "unauthorized")
		return
	}

	page, pageSize := parsePagination(ctx.Query("page"), ctx.Query("page_size"))

	var total int64
	if err := c.db.Model(&models.CheckIn{}).Where("user_id = ?", userID).Count(&total).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50012, "failed to count check-ins")
		return
	}

	var checkins []models.CheckIn
	if err := c.db.Where("user_id = ?", userID).Order("checkin_day DESC").
		Offset((page - 1) * pageSize).Limit(pageSize).Find(&checkins).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50013, "failed to list check-ins")
		return
	}

	utils.Success(ctx, gin.H{
		"items": checkins,
		"pagination": gin.H{
			"page":        page,
			"page_size":   pageSize,
			"total":       total,
			"total_pages": int((total + int64(pageSize) - 1) / int64(pageSize)),
		},
	})
}

var allowedPhotoExt = map[string]bool{
	".jpg": true, ".jpeg": true, ".png": true, ".gif": true, ".webp": true,
}

// UploadProofPhoto stores a proof photo under static/uploads and
// records it with an expiry. Attaching the returned URL to a check-in
// or post clears the expiry; unclaimed uploads are purged by the
// background cleaner.
func (c *CheckInController) UploadProofPhoto(ctx *gin.Context) {
	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40110, "unauthorized")
		return
	}

	file, header, err := ctx.Request.FormFile("file")
	if err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40013, "no file uploaded")
		return
	}
	defer file.Close()

	const maxSize = 10 * 1024 * 1024
	if header.Size > maxSize {
		utils.Error(ctx, http.StatusBadRequest, 40014, "file size exceeds 10MB")
		return
	}

	ext := strings.ToLower(filepath.Ext(header.Filename))
	if !allowedPhotoExt[ext] {
		utils.Error(ctx, http.StatusBadRequest, 40015, "unsupported image type")
		return
	}

	now := time.Now()
	baseDir := filepath.Join(".", "static", "uploads", now.Format("2006"), now.Format("01"))
	if err := os.MkdirAll(baseDir, 0755); err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50014, "failed to create upload directory")
		return
	}

	safeName := fmt.Sprintf("%d_%s%s", userID, uuid.NewString(), ext)
	dstPath := filepath.Join(baseDir, safeName)

	out, err := os.Create(dstPath)
	if err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50015, "failed to save file")
		return
	}
	defer out.Close()

	lr := &io.LimitedReader{R: file, N: maxSize + 1}
	written, err := io.Copy(out, lr)
	if err != nil || written > maxSize {
		_ = out.Close()
		_ = os.Remove(dstPath)
		utils.Error(ctx, http.StatusInternalServerError, 50016, "failed to write file")
		return
	}

	relURL := fmt.Sprintf("/static/uploads/%s/%s/%s", now.Format("2006"), now.Format("01"), safeName)
	absPath, _ := filepath.Abs(dstPath)

	ttlHours := config.Get().UploadTTLHours
	var expireAt *time.Time
	if ttlHours > 0 {
		exp := now.Add(time.Duration(ttlHours) * time.Hour)
		expireAt = &exp
	}
	record := models.UploadedFile{
		UserID:   userID,
		FilePath: absPath,
		URL:      relURL,
		ExpireAt: expireAt,
	}
	if err := c.db.Create(&record).Error; err != nil {
		utils.Sugar.Warnf("upload record failed user=%d: %v", userID, err)
	}

	utils.Success(ctx, gin.H{"url": relURL})
}

// respondMembershipError maps group/challenge precondition failures and
// lookup errors to API responses.
func respondMembershipError(ctx *gin.Context, err error) {
	switch {
	case errors.Is(err, errNoGroup):
		utils.Error(ctx, http.StatusBadRequest, 40020, errNoGroup.Error())
	case errors.Is(err, errNoChallenge):
		utils.Error(ctx, http.StatusBadRequest, 40021, errNoChallenge.Error())
	case errors.Is(err, gorm.ErrRecordNotFound):
		utils.Error(ctx, http.StatusNotFound, 40401, "user not found")
	default:
		utils.Error(ctx, http.StatusInternalServerError, 50020, "failed to resolve membership")
	}
}
