package services

import (
	"testing"

	"github.com/crewfit/fitcircle/models"
)

func TestPolicyAllowed(t *testing.T) {
	cases := []struct {
		role string
		op   string
		want bool
	}{
		{models.RoleAdmin, OpAdjustmentCreate, true},
		{models.RoleAdmin, OpCheckinUpsert, true},
		{models.RoleAdmin, OpUserManage, true},
		{models.RoleLeader, OpAttendanceMark, true},
		{models.RoleLeader, OpAnalyticsView, true},
		{models.RoleLeader, OpAdjustmentCreate, false},
		{models.RoleLeader, OpCheckinUpsert, false},
		{models.RoleUser, OpAttendanceMark, false},
		{models.RoleUser, OpPostModerate, false},
		{"", OpAttendanceMark, false},
		{"superuser", OpUserManage, false},
		{models.RoleAdmin, "unknown.op", false},
	}
	for _, c := range cases {
		if got := Allowed(c.role, c.op); got != c.want {
			t.Fatalf("Allowed(%q,%q)=%t, want %t", c.role, c.op, got, c.want)
		}
	}
}
