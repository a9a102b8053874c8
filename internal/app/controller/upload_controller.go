package controller

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"
	apperrors "github.com/smousavi/bazaarche-backend/internal/errors"
	"github.com/smousavi/bazaarche-backend/internal/middleware"
)

// UploadController serves legacy shop images that predate inline base64
// storage. New images never land here.
type UploadController struct {
	uploadsDir string
}

func NewUploadController(uploadsDir string) *UploadController {
	return &UploadController{uploadsDir: uploadsDir}
}

// ServeShopFile serves a file from the shops upload directory. The
// resolved path must stay under uploads/shops; anything that escapes via
// .. or absolute segments is rejected.
// GET /uploads/shops/*filepath
func (ctrl *UploadController) ServeShopFile(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	requested := c.Param("filepath")
	shopsDir, err := filepath.Abs(filepath.Join(ctrl.uploadsDir, "shops"))
	if err != nil {
		apperrors.InternalError(c, "")
		return
	}

	resolved, err := filepath.Abs(filepath.Join(shopsDir, filepath.Clean("/"+requested)))
	if err != nil || !strings.HasPrefix(resolved, shopsDir+string(os.PathSeparator)) {
		log.Warn("Rejected upload path", map[string]interface{}{
			"path": requested,
		})
		apperrors.BadRequest(c, apperrors.UploadInvalidPath, "مسیر فایل معتبر نیست")
		return
	}

	info, err := os.Stat(resolved)
	if err != nil || info.IsDir() {
		apperrors.NotFound(c, apperrors.UploadNotFound, "فایل مورد نظر یافت نشد")
		return
	}

	c.File(resolved)
}
