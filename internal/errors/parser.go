package errors

import (
	"errors"
	"strings"

	"gorm.io/gorm"
)

// ErrorInfo pairs an error code with its Persian user message
type ErrorInfo struct {
	Code    string
	Message string
}

// ParseError translates an error into a user-safe code and message.
// Raw database and driver errors never reach the client; they are logged
// at the handler boundary and mapped here.
func ParseError(err error, context string) ErrorInfo {
	if err == nil {
		return ErrorInfo{
			Code:    InternalServerError,
			Message: "خطایی در سرور رخ داد",
		}
	}

	errStr := err.Error()
	errStrLower := strings.ToLower(errStr)

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrorInfo{
			Code:    ResourceNotFound,
			Message: getNotFoundMessage(context),
		}
	}

	// Unique constraint violations: sqlite says "UNIQUE constraint failed",
	// postgres says "duplicate key value violates unique constraint"
	if strings.Contains(errStrLower, "unique constraint") || strings.Contains(errStrLower, "duplicate key") {
		return parseDuplicateKeyError(errStrLower)
	}

	// Foreign key violations surface as missing referenced rows
	if strings.Contains(errStrLower, "foreign key constraint") {
		return parseForeignKeyError(errStrLower)
	}

	if strings.Contains(errStrLower, "not-null constraint") ||
		(strings.Contains(errStrLower, "not null") && strings.Contains(errStrLower, "constraint")) {
		return ErrorInfo{
			Code:    ValidationRequired,
			Message: "فیلدهای الزامی تکمیل نشده‌اند",
		}
	}

	// Network/connection failures to upstream services
	if strings.Contains(errStrLower, "connection refused") ||
		strings.Contains(errStrLower, "no such host") ||
		strings.Contains(errStrLower, "timeout") {
		return ErrorInfo{
			Code:    InternalExternalAPI,
			Message: "ارتباط با سرویس خارجی برقرار نشد. لطفاً بعداً تلاش کنید",
		}
	}

	return ErrorInfo{
		Code:    InternalServerError,
		Message: getDefaultErrorMessage(context),
	}
}

func parseDuplicateKeyError(errLower string) ErrorInfo {
	if strings.Contains(errLower, "phone") {
		return ErrorInfo{
			Code:    AuthPhoneExists,
			Message: "این شماره موبایل قبلاً ثبت شده است",
		}
	}
	if strings.Contains(errLower, "username") {
		return ErrorInfo{
			Code:    AuthUsernameExists,
			Message: "این نام کاربری قبلاً استفاده شده است",
		}
	}
	if strings.Contains(errLower, "shop_followers") || strings.Contains(errLower, "idx_shop_user_follow") {
		return ErrorInfo{
			Code:    ShopAlreadyFollowing,
			Message: "شما قبلاً این فروشگاه را دنبال کرده‌اید",
		}
	}
	if strings.Contains(errLower, "chat_rooms") || strings.Contains(errLower, "idx_ad_buyer_room") {
		return ErrorInfo{
			Code:    ResourceAlreadyExists,
			Message: "گفتگو برای این آگهی از قبل وجود دارد",
		}
	}
	return ErrorInfo{
		Code:    ResourceAlreadyExists,
		Message: "این داده قبلاً ثبت شده است",
	}
}

func parseForeignKeyError(errLower string) ErrorInfo {
	if strings.Contains(errLower, "user_id") {
		return ErrorInfo{
			Code:    ResourceNotFound,
			Message: "کاربر مورد نظر وجود ندارد",
		}
	}
	if strings.Contains(errLower, "shop_id") {
		return ErrorInfo{
			Code:    ShopNotFound,
			Message: "فروشگاه مورد نظر وجود ندارد",
		}
	}
	if strings.Contains(errLower, "ad_id") {
		return ErrorInfo{
			Code:    AdNotFound,
			Message: "آگهی مورد نظر وجود ندارد",
		}
	}
	return ErrorInfo{
		Code:    ResourceNotFound,
		Message: "داده مرجع یافت نشد",
	}
}

func getNotFoundMessage(context string) string {
	contextLower := strings.ToLower(context)

	if strings.Contains(contextLower, "ad") {
		return "آگهی مورد نظر یافت نشد"
	}
	if strings.Contains(contextLower, "shop") {
		return "فروشگاه مورد نظر یافت نشد"
	}
	if strings.Contains(contextLower, "user") {
		return "کاربر مورد نظر یافت نشد"
	}
	if strings.Contains(contextLower, "chat") || strings.Contains(contextLower, "room") {
		return "گفتگوی مورد نظر یافت نشد"
	}
	return "داده درخواستی یافت نشد"
}

func getDefaultErrorMessage(context string) string {
	contextLower := strings.ToLower(context)

	if strings.Contains(contextLower, "create") || strings.Contains(contextLower, "register") {
		return "ثبت اطلاعات با خطا مواجه شد. لطفاً بعداً تلاش کنید"
	}
	if strings.Contains(contextLower, "update") {
		return "به‌روزرسانی با خطا مواجه شد. لطفاً بعداً تلاش کنید"
	}
	if strings.Contains(contextLower, "delete") {
		return "حذف با خطا مواجه شد. لطفاً بعداً تلاش کنید"
	}
	return "خطایی در سرور رخ داد. لطفاً بعداً دوباره تلاش کنید"
}

// IsUniqueViolation reports whether err is a unique-constraint failure,
// across both supported drivers.
func IsUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "unique constraint") || strings.Contains(msg, "duplicate key")
}
