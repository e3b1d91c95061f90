package controllers

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/gin-gonic/gin"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/crewfit/fitcircle/middleware"
)

// newMockDB opens a gorm handle over a sqlmock connection so handler
// tests can pin the exact statements sent to the database.
func newMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	t.Helper()
	sqlDB, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	t.Cleanup(func() { _ = sqlDB.Close() })

	db, err := gorm.Open(mysql.New(mysql.Config{
		Conn:                      sqlDB,
		SkipInitializeWithVersion: true,
	}), &gorm.Config{
		Logger:               logger.Discard,
		TranslateError:       true,
		DisableAutomaticPing: true,
	})
	if err != nil {
		t.Fatalf("gorm open: %v", err)
	}
	return db, mock
}

func newTestContext(t *testing.T, method, target, body string) (*gin.Context, *httptest.ResponseRecorder) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	ctx, _ := gin.CreateTestContext(w)
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	ctx.Request = req
	return ctx, w
}

func expectMembership(mock sqlmock.Sqlmock, userID, groupID, challengeID uint) {
	mock.ExpectQuery("SELECT (.+) FROM `users`").
		WillReturnRows(sqlmock.NewRows([]string{"id", "group_id", "role"}).AddRow(userID, groupID, "user"))
	mock.ExpectQuery("SELECT (.+) FROM `groups`").
		WillReturnRows(sqlmock.NewRows([]string{"id", "challenge_id"}).AddRow(groupID, challengeID))
	mock.ExpectQuery("SELECT (.+) FROM `challenges`").
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(challengeID))
}

func TestMarkAttendanceRejectsWholeBatchOnUnknownMember(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")
	db, mock := newMockDB(t)

	// First member resolves, second does not exist. Nothing may be
	// written for the first member.
	expectMembership(mock, 1, 10, 20)
	mock.ExpectQuery("SELECT (.+) FROM `users`").
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	ctx, w := newTestContext(t, http.MethodPost, "/api/v1/admin/attendance",
		`{"user_ids":[1,2],"date":"2025-03-09"}`)
	ctx.Set(middleware.ContextUserIDKey, uint(99))

	NewAdminController(db).MarkAttendance(ctx)

	if w.Code != http.StatusNotFound {
		t.Fatalf("status=%d, want 404", w.Code)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("attendance rows were written before the batch validated: %v", err)
	}
}

func TestAdminDayEditorReportsConflictOnDuplicateDay(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")
	db, mock := newMockDB(t)

	expectMembership(mock, 1, 10, 20)
	// No row visible for the day, then the insert loses a race with a
	// concurrent submission and hits the unique index.
	mock.ExpectQuery("SELECT (.+) FROM `check_ins`").
		WillReturnRows(sqlmock.NewRows([]string{"id"}))
	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO `check_ins`").
		WillReturnError(errors.New("Error 1062 (23000): Duplicate entry '1-2025-03-10' for key 'idx_checkin_user_day'"))
	mock.ExpectRollback()

	ctx, w := newTestContext(t, http.MethodPut, "/api/v1/admin/checkins",
		`{"user_id":1,"date":"2025-03-10","nutrition":true}`)

	NewAdminController(db).UpsertCheckIn(ctx)

	if w.Code != http.StatusConflict {
		t.Fatalf("status=%d, want 409", w.Code)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unexpected database activity: %v", err)
	}
}

func TestDeleteCheckInFreesTheDay(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")
	db, mock := newMockDB(t)

	mock.ExpectQuery("SELECT (.+) FROM `check_ins`").
		WillReturnRows(sqlmock.NewRows([]string{"id", "user_id", "group_id"}).AddRow(5, 1, 10))
	// Must be a hard DELETE: a soft delete would leave the
	// (user_id, checkin_day) slot occupied in the unique index and
	// block resubmission for that day.
	mock.ExpectBegin()
	mock.ExpectExec("DELETE FROM `check_ins`").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	ctx, w := newTestContext(t, http.MethodDelete, "/api/v1/admin/checkins/5", "")
	ctx.Params = gin.Params{{Key: "id", Value: "5"}}

	NewAdminController(db).DeleteCheckIn(ctx)

	if w.Code != http.StatusOK {
		t.Fatalf("status=%d, want 200", w.Code)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("check-in was not hard-deleted: %v", err)
	}
}
