package services

import "github.com/crewfit/fitcircle/models"

// Privileged operations. Handlers check capability once, up front,
// before any side effect; there are no scattered inline role branches.
const (
	OpAttendanceMark   = "attendance.mark"
	OpAdjustmentCreate = "adjustment.create"
	OpCheckinUpsert    = "checkin.upsert"
	OpUserManage       = "user.manage"
	OpGroupManage      = "group.manage"
	OpChallengeManage  = "challenge.manage"
	OpPostModerate     = "post.moderate"
	OpAnalyticsView    = "analytics.view"
)

var rolePolicy = map[string]map[string]bool{
	models.RoleAdmin: {
		OpAttendanceMark:   true,
		OpAdjustmentCreate: true,
		OpCheckinUpsert:    true,
		OpUserManage:       true,
		OpGroupManage:      true,
		OpChallengeManage:  true,
		OpPostModerate:     true,
		OpAnalyticsView:    true,
	},
	models.RoleLeader: {
		OpAttendanceMark: true,
		OpPostModerate:   true,
		OpAnalyticsView:  true,
	},
}

// Allowed reports whether a role may perform an operation. Unknown
// roles and unknown operations are denied.
func Allowed(role, operation string) bool {
	ops, ok := rolePolicy[role]
	if !ok {
		return false
	}
	return ops[operation]
}
