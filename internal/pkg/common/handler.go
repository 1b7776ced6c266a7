package handler

import (
	"errors"
	"net/http"
	"thywilluche/internal/pkg/geo"
	"thywilluche/internal/pkg/uploader"
	"thywilluche/pkg/logger"
	"thywilluche/pkg/response"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// maxUploadBody 5 个 10 MiB 文件加表单开销
const maxUploadBody = uploader.MaxFiles*uploader.MaxFileSize + 1<<20

type Handler struct {
	uploader uploader.Uploader
	geo      geo.Client
}

func NewHandler(u uploader.Uploader, g geo.Client) *Handler {
	return &Handler{uploader: u, geo: g}
}

// UploadFile 上传文件 (支持批量)
// @Summary 上传文件到 OSS (支持批量)
// @Tags Common
// @Security Bearer
// @Accept multipart/form-data
// @Produce json
// @Param kind formData string false "image | document | receipt"
// @Param files formData file true "Files"
// @Success 200 {object} response.Response{data=[]string} "URLs"
// @Router /upload [post]
func (h *Handler) UploadFile(c *gin.Context) {
	if h.uploader == nil {
		response.Error(c, http.StatusServiceUnavailable, response.ErrServerInternal, "file storage is not configured")
		return
	}

	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxUploadBody)
	form, err := c.MultipartForm()
	if err != nil {
		response.Error(c, http.StatusBadRequest, response.ErrValidation, "invalid form data")
		return
	}

	kind, err := uploader.ParseKind(c.PostForm("kind"))
	if err != nil {
		response.Error(c, http.StatusBadRequest, response.ErrValidation, err.Error())
		return
	}

	files := form.File["files"]
	if err := uploader.Validate(kind, files); err != nil {
		response.Error(c, http.StatusBadRequest, response.ErrValidation, err.Error())
		return
	}

	urls, err := uploader.UploadFiles(c.Request.Context(), h.uploader, kind, files)
	if err != nil {
		logger.Log.Error("upload failed", zap.String("kind", string(kind)), zap.Int("files", len(files)), zap.Error(err))
		response.Error(c, http.StatusInternalServerError, response.ErrServerInternal, "upload failed")
		return
	}
	response.Success(c, urls)
}

func geoError(c *gin.Context, err error) {
	if errors.Is(err, geo.ErrUpstream) {
		logger.Log.Warn("geo lookup failed", zap.Error(err))
		response.HandleError(c, response.NewUpstream("location service is unavailable"))
		return
	}
	response.HandleError(c, err)
}

// Countries 国家列表
// @Summary 国家列表
// @Tags Common
// @Success 200 {array} geo.Country
// @Router /geo/countries [get]
func (h *Handler) Countries(c *gin.Context) {
	list, err := h.geo.Countries(c.Request.Context())
	if err != nil {
		geoError(c, err)
		return
	}
	response.Success(c, list)
}

// States 省/州列表
// @Summary 省/州列表
// @Tags Common
// @Param country path string true "ISO2"
// @Success 200 {array} geo.State
// @Router /geo/countries/{country}/states [get]
func (h *Handler) States(c *gin.Context) {
	list, err := h.geo.States(c.Request.Context(), c.Param("country"))
	if err != nil {
		geoError(c, err)
		return
	}
	response.Success(c, list)
}

// Cities 城市列表
// @Summary 城市列表
// @Tags Common
// @Param country path string true "ISO2"
// @Param state path string true "ISO2"
// @Success 200 {array} geo.City
// @Router /geo/countries/{country}/states/{state}/cities [get]
func (h *Handler) Cities(c *gin.Context) {
	list, err := h.geo.Cities(c.Request.Context(), c.Param("country"), c.Param("state"))
	if err != nil {
		geoError(c, err)
		return
	}
	response.Success(c, list)
}
