package errors

// Error code constants, CATEGORY_SPECIFIC_DETAIL.
// The frontend maps these codes to its own copy; the message field is the
// Persian default shown when no mapping exists.

const (
	// ==================== Auth (AUTH_) ====================
	AuthUnauthorized       = "AUTH_UNAUTHORIZED"        // login required
	AuthInvalidCredentials = "AUTH_INVALID_CREDENTIALS" // wrong username/password
	AuthTokenExpired       = "AUTH_TOKEN_EXPIRED"
	AuthTokenInvalid       = "AUTH_TOKEN_INVALID"
	AuthPhoneExists        = "AUTH_PHONE_EXISTS"    // duplicate phone
	AuthUsernameExists     = "AUTH_USERNAME_EXISTS" // duplicate username

	// ==================== Validation (VALIDATION_) ====================
	ValidationInvalidInput  = "VALIDATION_INVALID_INPUT"
	ValidationInvalidID     = "VALIDATION_INVALID_ID"
	ValidationInvalidPhone  = "VALIDATION_INVALID_PHONE"
	ValidationPasswordShort = "VALIDATION_PASSWORD_SHORT" // under 6 characters
	ValidationRequired      = "VALIDATION_REQUIRED"

	// ==================== Resources (RESOURCE_) ====================
	ResourceNotFound      = "RESOURCE_NOT_FOUND"
	ResourceAlreadyExists = "RESOURCE_ALREADY_EXISTS"
	ResourceConflict      = "RESOURCE_CONFLICT"

	// ==================== Ads (AD_) ====================
	AdNotFound        = "AD_NOT_FOUND"
	AdMissingLocation = "AD_MISSING_LOCATION" // latitude/longitude required

	// ==================== Shops (SHOP_) ====================
	ShopNotFound         = "SHOP_NOT_FOUND"
	ShopAlreadyFollowing = "SHOP_ALREADY_FOLLOWING"
	ShopNotFollowing     = "SHOP_NOT_FOLLOWING"

	// ==================== Chat (CHAT_) ====================
	ChatRoomNotFound      = "CHAT_ROOM_NOT_FOUND"
	ChatSelfRoomForbidden = "CHAT_SELF_ROOM_FORBIDDEN"

	// ==================== Uploads (UPLOAD_) ====================
	UploadInvalidFileType = "UPLOAD_INVALID_FILE_TYPE"
	UploadInvalidPath     = "UPLOAD_INVALID_PATH"
	UploadNotFound        = "UPLOAD_NOT_FOUND"

	// ==================== Internal (INTERNAL_) ====================
	InternalServerError   = "INTERNAL_SERVER_ERROR"
	InternalDatabaseError = "INTERNAL_DATABASE_ERROR"
	InternalExternalAPI   = "INTERNAL_EXTERNAL_API"
)
