package controllers

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/crewfit/fitcircle/models"
	"github.com/crewfit/fitcircle/services"
	"github.com/crewfit/fitcircle/utils"
)

// AdminController handles attendance marking, point adjustments, the
// check-in day editor and group/challenge/user management. Routes are
// gated by the authorization policy upstream; handlers assume the
// capability check already passed.
type AdminController struct {
	db     *gorm.DB
	badges *services.BadgeEvaluator
}

// NewAdminController creates an AdminController.
func NewAdminController(db *gorm.DB) *AdminController {
	return &AdminController{db: db, badges: services.NewBadgeEvaluator(db)}
}

// MarkAttendance records weekly meeting attendance for one or more
// users. One row per (user, week); re-marking the same week updates the
// existing row instead of stacking bonuses.
func (a *AdminController) MarkAttendance(ctx *gin.Context) {
	markerID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40110, "unauthorized")
		return
	}

	var req struct {
		UserIDs  []uint `json:"user_ids" binding:"required,min=1"`
		Date     string `json:"date"` // optional YYYY-MM-DD inside the target week
		Attended *bool  `json:"attended"`
	}
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40060, "invalid request payload")
		return
	}

	attended := true
	if req.Attended != nil {
		attended = *req.Attended
	}

	when := time.Now()
	if strings.TrimSpace(req.Date) != "" {
		d, err := time.ParseInLocation("2006-01-02", strings.TrimSpace(req.Date), when.Location())
		if err != nil {
			utils.Error(ctx, http.StatusBadRequest, 40061, "invalid date, expected YYYY-MM-DD")
			return
		}
		when = d
	}
	weekStart := services.WeekKey(when)

	// Resolve the whole batch before writing anything: a bad user ID
	// rejects the request instead of leaving earlier members marked.
	userIDs := utils.UniqueUint(req.UserIDs)
	memberships := make([]*membership, 0, len(userIDs))
	for _, userID := range userIDs {
		m, err := resolveMembership(a.db, userID)
		if err != nil {
			respondMembershipError(ctx, err)
			return
		}
		memberships = append(memberships, m)
	}

	marked := make([]models.WeeklyAttendance, 0, len(memberships))
	err := a.db.Transaction(func(tx *gorm.DB) error {
		for _, m := range memberships {
			row := models.WeeklyAttendance{
				UserID:      m.User.ID,
				GroupID:     m.Group.ID,
				ChallengeID: m.Challenge.ID,
				WeekStart:   weekStart,
				Attended:    attended,
				MarkedBy:    markerID,
			}
			if err := tx.Clauses(clause.OnConflict{
				Columns:   []clause.Column{{Name: "user_id"}, {Name: "week_start"}},
				DoUpdates: clause.AssignmentColumns([]string{"attended", "marked_by", "updated_at"}),
			}).Create(&row).Error; err != nil {
				return err
			}
			marked = append(marked, row)
		}
		return nil
	})
	if err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50060, "failed to record attendance")
		return
	}
	for _, m := range memberships {
		invalidateScoringCaches(m.Group.ID)
	}

	utils.Success(ctx, gin.H{
		"week_start": weekStart.Format("2006-01-02"),
		"attended":   attended,
		"marked":     marked,
	})
}

// CreateAdjustment appends a point adjustment to the ledger. A reason
// is mandatory; rows are never edited afterward, corrections get a
// compensating entry.
func (a *AdminController) CreateAdjustment(ctx *gin.Context) {
	adminID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40110, "unauthorized")
		return
	}

	var req struct {
		UserID      uint   `json:"user_id" binding:"required"`
		PointsDelta int    `json:"points_delta" binding:"required"`
		Reason      string `json:"reason" binding:"required"`
		Category    string `json:"category"`
		Date        string `json:"date"` // optional YYYY-MM-DD, defaults to today
	}
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40062, "invalid request payload")
		return
	}
	reason := strings.TrimSpace(req.Reason)
	if reason == "" {
		utils.Error(ctx, http.StatusBadRequest, 40063, "reason is required")
		return
	}

	m, err := resolveMembership(a.db, req.UserID)
	if err != nil {
		respondMembershipError(ctx, err)
		return
	}

	when := time.Now()
	if strings.TrimSpace(req.Date) != "" {
		d, err := time.ParseInLocation("2006-01-02", strings.TrimSpace(req.Date), when.Location())
		if err != nil {
			utils.Error(ctx, http.StatusBadRequest, 40061, "invalid date, expected YYYY-MM-DD")
			return
		}
		when = services.StartOfAppDay(d)
	}

	adjustment := models.PointAdjustment{
		UserID:      req.UserID,
		GroupID:     m.Group.ID,
		ChallengeID: m.Challenge.ID,
		Date:        when,
		PointsDelta: req.PointsDelta,
		Reason:      reason,
		Category:    strings.TrimSpace(req.Category),
		AdjustedBy:  adminID,
	}
	if err := a.db.Create(&adjustment).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50061, "failed to record adjustment")
		return
	}

	invalidateScoringCaches(m.Group.ID)
	utils.Success(ctx, adjustment)
}

// ListAdjustments returns the adjustment ledger, optionally filtered by
// user, newest first.
func (a *AdminController) ListAdjustments(ctx *gin.Context) {
	page, pageSize := parsePagination(ctx.Query("page"), ctx.Query("page_size"))

	query := a.db.Model(&models.PointAdjustment{})
	if v := strings.TrimSpace(ctx.Query("user_id")); v != "" {
		id, err := strconv.Atoi(v)
		if err != nil || id <= 0 {
			utils.Error(ctx, http.StatusBadRequest, 40064, "invalid user_id")
			return
		}
		query = query.Where("user_id = ?", id)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50062, "failed to count adjustments")
		return
	}

	var items []models.PointAdjustment
	if err := query.Order("created_at DESC").Offset((page - 1) * pageSize).Limit(pageSize).Find(&items).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50063, "failed to list adjustments")
		return
	}

	utils.Success(ctx, gin.H{
		"items": items,
		"pagination": gin.H{
			"page":        page,
			"page_size":   pageSize,
			"total":       total,
			"total_pages": int((total + int64(pageSize) - 1) / int64(pageSize)),
		},
	})
}

// UpsertCheckIn is the admin day editor: it creates or overwrites a
// user's check-in for one app day. Unlike the self-service endpoint it
// accepts any past or present day and replaces existing flags.
func (a *AdminController) UpsertCheckIn(ctx *gin.Context) {
	var req struct {
		UserID     uint   `json:"user_id" binding:"required"`
		Date       string `json:"date" binding:"required"` // YYYY-MM-DD
		Nutrition  bool   `json:"nutrition"`
		Hydration  bool   `json:"hydration"`
		Movement   bool   `json:"movement"`
		Scripture  bool   `json:"scripture"`
		Notes      string `json:"notes"`
		PhotoURL   string `json:"photo_url"`
		WorkoutLog string `json:"workout_log"`
	}
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40065, "invalid request payload")
		return
	}

	now := time.Now()
	day, err := time.ParseInLocation("2006-01-02", strings.TrimSpace(req.Date), now.Location())
	if err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40061, "invalid date, expected YYYY-MM-DD")
		return
	}
	if services.AppDayKey(day).After(services.AppDayKey(now)) {
		utils.Error(ctx, http.StatusBadRequest, 40012, "cannot check in for a future day")
		return
	}

	m, err := resolveMembership(a.db, req.UserID)
	if err != nil {
		respondMembershipError(ctx, err)
		return
	}

	dayKey := services.AppDayKey(day)
	eventTime := services.StartOfAppDay(day)
	if services.SameAppDay(day, now) {
		eventTime = now
	}

	var checkin models.CheckIn
	err = a.db.Where("user_id = ? AND checkin_day = ?", req.UserID, dayKey).First(&checkin).Error
	switch {
	case err == nil:
		checkin.Nutrition = req.Nutrition
		checkin.Hydration = req.Hydration
		checkin.Movement = req.Movement
		checkin.Scripture = req.Scripture
		checkin.Notes = utils.Sanitize(req.Notes)
		checkin.PhotoURL = strings.TrimSpace(req.PhotoURL)
		checkin.WorkoutLog = utils.Sanitize(req.WorkoutLog)
		if err := a.db.Save(&checkin).Error; err != nil {
			utils.Error(ctx, http.StatusInternalServerError, 50064, "failed to update check-in")
			return
		}
	case errors.Is(err, gorm.ErrRecordNotFound):
		checkin = models.CheckIn{
			UserID:      req.UserID,
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
		if err := a.db.Create(&checkin).Error; err != nil {
			if utils.IsDuplicateKeyError(err) {
				utils.Error(ctx, http.StatusConflict, 40902, "already checked in for this day")
				return
			}
			utils.Error(ctx, http.StatusInternalServerError, 50065, "failed to create check-in")
			return
		}
	default:
		utils.Error(ctx, http.StatusInternalServerError, 50066, "failed to load check-in")
		return
	}

	newBadges, err := a.badges.CheckAndAward(req.UserID)
	if err != nil {
		utils.Sugar.Warnf("badge evaluation failed user=%d: %v", req.UserID, err)
	}

	invalidateScoringCaches(m.Group.ID)
	utils.Success(ctx, gin.H{
		"checkin":    checkin,
		"new_badges": newBadges,
	})
}

// DeleteCheckIn removes a check-in by ID. The delete is permanent so
// the (user, day) slot in the unique index frees up and the user can
// resubmit that day.
func (a *AdminController) DeleteCheckIn(ctx *gin.Context) {
	id := strings.TrimSpace(ctx.Param("id"))
	if id == "" {
		utils.Error(ctx, http.StatusBadRequest, 40066, "missing check-in id")
		return
	}

	var checkin models.CheckIn
	if err := a.db.First(&checkin, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.Error(ctx, http.StatusNotFound, 40421, "check-in not found")
			return
		}
		utils.Error(ctx, http.StatusInternalServerError, 50066, "failed to load check-in")
		return
	}

	if err := a.db.Delete(&checkin).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50067, "failed to delete check-in")
		return
	}

	invalidateScoringCaches(checkin.GroupID)
	utils.Success(ctx, gin.H{"message": "check-in deleted"})
}

// CreateChallenge creates a challenge window.
func (a *AdminController) CreateChallenge(ctx *gin.Context) {
	var req struct {
		Name      string `json:"name" binding:"required"`
		StartDate string `json:"start_date" binding:"required"` // YYYY-MM-DD
		EndDate   string `json:"end_date" binding:"required"`   // YYYY-MM-DD
	}
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40067, "invalid request payload")
		return
	}

	start, err := time.ParseInLocation("2006-01-02", strings.TrimSpace(req.StartDate), time.Local)
	if err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40061, "invalid start_date, expected YYYY-MM-DD")
		return
	}
	end, err := time.ParseInLocation("2006-01-02", strings.TrimSpace(req.EndDate), time.Local)
	if err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40061, "invalid end_date, expected YYYY-MM-DD")
		return
	}
	if !end.After(start) {
		utils.Error(ctx, http.StatusBadRequest, 40068, "end_date must be after start_date")
		return
	}

	challenge := models.Challenge{
		Name:      strings.TrimSpace(req.Name),
		StartDate: start,
		EndDate:   end,
		Active:    true,
	}
	if err := a.db.Create(&challenge).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50068, "failed to create challenge")
		return
	}

	utils.Success(ctx, challenge)
}

// CreateGroup creates a group, optionally attached to a challenge and
// with a designated leader. Assigning a leader promotes that user's
// role unless they are already an admin.
func (a *AdminController) CreateGroup(ctx *gin.Context) {
	var req struct {
		Name        string `json:"name" binding:"required"`
		ChallengeID *uint  `json:"challenge_id"`
		LeaderID    *uint  `json:"leader_id"`
	}
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40069, "invalid request payload")
		return
	}

	if req.ChallengeID != nil {
		var challenge models.Challenge
		if err := a.db.First(&challenge, *req.ChallengeID).Error; err != nil {
			utils.Error(ctx, http.StatusNotFound, 40431, "challenge not found")
			return
		}
	}

	group := models.Group{
		Name:        strings.TrimSpace(req.Name),
		ChallengeID: req.ChallengeID,
		LeaderID:    req.LeaderID,
	}
	if err := a.db.Create(&group).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50069, "failed to create group")
		return
	}

	if req.LeaderID != nil {
		if err := a.promoteLeader(*req.LeaderID, group.ID); err != nil {
			utils.Sugar.Warnf("leader promotion failed user=%d group=%d: %v", *req.LeaderID, group.ID, err)
		}
	}

	utils.Success(ctx, group)
}

func (a *AdminController) promoteLeader(userID, groupID uint) error {
	var user models.User
	if err := a.db.First(&user, userID).Error; err != nil {
		return err
	}
	updates := map[string]interface{}{"group_id": groupID}
	if user.Role == models.RoleUser {
		updates["role"] = models.RoleLeader
	}
	return a.db.Model(&user).Updates(updates).Error
}

// AssignUserGroup moves a user into a group (or out, with null).
func (a *AdminController) AssignUserGroup(ctx *gin.Context) {
	userID := strings.TrimSpace(ctx.Param("id"))
	if userID == "" {
		utils.Error(ctx, http.StatusBadRequest, 40050, "missing user id")
		return
	}

	var req struct {
		GroupID *uint `json:"group_id"`
	}
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40070, "invalid request payload")
		return
	}

	var user models.User
	if err := a.db.First(&user, userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.Error(ctx, http.StatusNotFound, 40401, "user not found")
			return
		}
		utils.Error(ctx, http.StatusInternalServerError, 50070, "failed to load user")
		return
	}

	if req.GroupID != nil {
		var group models.Group
		if err := a.db.First(&group, *req.GroupID).Error; err != nil {
			utils.Error(ctx, http.StatusNotFound, 40430, "group not found")
			return
		}
	}

	if err := a.db.Model(&user).Update("group_id", req.GroupID).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50071, "failed to assign group")
		return
	}

	utils.Success(ctx, gin.H{"message": "group assigned"})
}

// ListUsers returns paginated users for the admin panel.
func (a *AdminController) ListUsers(ctx *gin.Context) {
	page, pageSize := parsePagination(ctx.Query("page"), ctx.Query("page_size"))

	query := a.db.Model(&models.User{})
	if v := strings.TrimSpace(ctx.Query("group_id")); v != "" {
		query = query.Where("group_id = ?", v)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50072, "failed to count users")
		return
	}

	var users []models.User
	if err := query.Order("created_at DESC").Offset((page - 1) * pageSize).Limit(pageSize).Find(&users).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50073, "failed to list users")
		return
	}

	items := make([]gin.H, 0, len(users))
	for _, u := range users {
		items = append(items, userResponse(u))
	}

	utils.Success(ctx, gin.H{
		"items": items,
		"pagination": gin.H{
			"page":        page,
			"page_size":   pageSize,
			"total":       total,
			"total_pages": int((total + int64(pageSize) - 1) / int64(pageSize)),
		},
	})
}

// DeleteUser removes a user and their scoring history. Check-ins,
// attendance, adjustments, badges and body metrics are removed
// outright inside one transaction; only the user row itself is
// soft-deleted.
func (a *AdminController) DeleteUser(ctx *gin.Context) {
	idStr := strings.TrimSpace(ctx.Param("id"))
	if idStr == "" {
		utils.Error(ctx, http.StatusBadRequest, 40050, "missing user id")
		return
	}

	var user models.User
	if err := a.db.First(&user, idStr).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.Error(ctx, http.StatusNotFound, 40401, "user not found")
			return
		}
		utils.Error(ctx, http.StatusInternalServerError, 50070, "failed to load user")
		return
	}

	err := a.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("user_id = ?", user.ID).Delete(&models.CheckIn{}).Error; err != nil {
			return err
		}
		for _, model := range []interface{}{
			&models.WeeklyAttendance{},
			&models.PointAdjustment{},
			&models.UserBadge{},
			&models.BodyMetric{},
		} {
			if err := tx.Where("user_id = ?", user.ID).Delete(model).Error; err != nil {
				return err
			}
		}
		return tx.Delete(&user).Error
	})
	if err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50074, "failed to delete user")
		return
	}

	if user.GroupID != nil {
		invalidateScoringCaches(*user.GroupID)
	}
	utils.Success(ctx, gin.H{"message": "user deleted"})
}
