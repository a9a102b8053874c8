package controller

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/smousavi/bazaarche-backend/internal/app/service"
	apperrors "github.com/smousavi/bazaarche-backend/internal/errors"
	"github.com/smousavi/bazaarche-backend/internal/middleware"
	"github.com/smousavi/bazaarche-backend/pkg/util"
	"github.com/xuri/excelize/v2"
)

type AdminController struct {
	adminService service.AdminService
}

func NewAdminController(adminService service.AdminService) *AdminController {
	return &AdminController{adminService: adminService}
}

type UpdateProfileRequest struct {
	Name     string `json:"name"`
	Username string `json:"username"`
	Phone    string `json:"phone"`
}

type ChangePasswordRequest struct {
	NewPassword string `json:"new_password" binding:"required"`
}

// Stats returns the dashboard counters
// GET /api/admin/stats
func (ctrl *AdminController) Stats(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	stats, err := ctrl.adminService.GetStats()
	if err != nil {
		log.Error("Failed to compute stats", err)
		apperrors.ParseAndRespond(c, http.StatusInternalServerError, err, "admin stats")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"stats": stats,
	})
}

// ListUsers returns all registered users
// GET /api/admin/users
func (ctrl *AdminController) ListUsers(c *gin.Context) {
	users, err := ctrl.adminService.ListUsers()
	if err != nil {
		apperrors.ParseAndRespond(c, http.StatusInternalServerError, err, "list users")
		return
	}

	out := make([]gin.H, 0, len(users))
	for i := range users {
		out = append(out, userJSON(&users[i]))
	}
	c.JSON(http.StatusOK, gin.H{
		"users": out,
	})
}

// DeleteUser removes a user account
// DELETE /api/admin/users/:id
func (ctrl *AdminController) DeleteUser(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		apperrors.BadRequest(c, apperrors.ValidationInvalidID, "شناسه کاربر معتبر نیست")
		return
	}

	if err := ctrl.adminService.DeleteUser(uint(id)); err != nil {
		if errors.Is(err, service.ErrUserNotFound) {
			apperrors.NotFound(c, apperrors.ResourceNotFound, "کاربر مورد نظر یافت نشد")
			return
		}
		log.Error("Failed to delete user", err, map[string]interface{}{
			"user_id": id,
		})
		apperrors.ParseAndRespond(c, http.StatusInternalServerError, err, "delete user")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "کاربر با موفقیت حذف شد",
	})
}

// ExportUsers streams the user list as an XLSX workbook
// GET /api/admin/users/export
func (ctrl *AdminController) ExportUsers(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	users, err := ctrl.adminService.ListUsers()
	if err != nil {
		apperrors.ParseAndRespond(c, http.StatusInternalServerError, err, "export users")
		return
	}

	f := excelize.NewFile()
	defer f.Close()

	sheet := f.GetSheetName(0)
	headers := []string{"ID", "Name", "Phone", "Username", "Role", "Created At"}
	for i, header := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		f.SetCellValue(sheet, cell, header)
	}
	for row, user := range users {
		values := []interface{}{
			user.ID,
			user.Name,
			user.Phone,
			user.Username,
			string(user.Role),
			user.CreatedAt.Format(time.RFC3339),
		}
		for col, value := range values {
			cell, _ := excelize.CoordinatesToCellName(col+1, row+2)
			f.SetCellValue(sheet, cell, value)
		}
	}

	filename := fmt.Sprintf("users-%s.xlsx", time.Now().Format("2006-01-02"))
	c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	if err := f.Write(c.Writer); err != nil {
		log.Error("Failed to write workbook", err)
	}
}

// UpdateProfile edits the authenticated user's own profile
// PUT /api/admin/update-profile
func (ctrl *AdminController) UpdateProfile(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	userID, ok := middleware.GetUserID(c)
	if !ok {
		apperrors.Unauthorized(c, "")
		return
	}

	var req UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "اطلاعات واردشده معتبر نیست")
		return
	}

	if req.Phone != "" && !util.IsValidMobile(req.Phone) {
		apperrors.BadRequest(c, apperrors.ValidationInvalidPhone, "شماره موبایل معتبر نیست")
		return
	}

	user, err := ctrl.adminService.UpdateProfile(userID, req.Name, req.Username, req.Phone)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrPhoneAlreadyExists):
			apperrors.Conflict(c, apperrors.AuthPhoneExists, "این شماره موبایل قبلاً ثبت شده است")
		case errors.Is(err, service.ErrUsernameAlreadyExists):
			apperrors.Conflict(c, apperrors.AuthUsernameExists, "این نام کاربری قبلاً استفاده شده است")
		case errors.Is(err, service.ErrUserNotFound):
			apperrors.NotFound(c, apperrors.ResourceNotFound, "کاربر مورد نظر یافت نشد")
		default:
			log.Error("Failed to update profile", err, map[string]interface{}{
				"user_id": userID,
			})
			apperrors.ParseAndRespond(c, http.StatusInternalServerError, err, "update profile")
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"user": userJSON(user),
	})
}

// ChangePassword replaces the authenticated user's password. Short
// passwords are rejected before anything is written.
// PUT /api/admin/change-password
func (ctrl *AdminController) ChangePassword(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	userID, ok := middleware.GetUserID(c)
	if !ok {
		apperrors.Unauthorized(c, "")
		return
	}

	var req ChangePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "رمز عبور جدید الزامی است")
		return
	}

	if err := ctrl.adminService.ChangePassword(userID, req.NewPassword); err != nil {
		switch {
		case errors.Is(err, service.ErrPasswordTooShort):
			apperrors.BadRequest(c, apperrors.ValidationPasswordShort, "رمز عبور باید حداقل ۶ کاراکتر باشد")
		case errors.Is(err, service.ErrUserNotFound):
			apperrors.NotFound(c, apperrors.ResourceNotFound, "کاربر مورد نظر یافت نشد")
		default:
			log.Error("Failed to change password", err, map[string]interface{}{
				"user_id": userID,
			})
			apperrors.ParseAndRespond(c, http.StatusInternalServerError, err, "change password")
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "رمز عبور با موفقیت تغییر کرد",
	})
}
