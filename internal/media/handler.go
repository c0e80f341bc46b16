package media

import (
	"net/http"

	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/mediaupload/service/internal/response"
	"github.com/mediaupload/service/internal/storage"
	"github.com/mediaupload/service/internal/upload"
)

// MsgNoFile is returned when no file was bound under the upload field.
const MsgNoFile = "failed to upload file"

// Handler holds HTTP handlers for media endpoints.
type Handler struct {
	svc *Service
	log *zap.Logger
}

// NewHandler creates a new media Handler.
func NewHandler(svc *Service, log *zap.Logger) *Handler {
	return &Handler{svc: svc, log: log}
}

// Upload godoc
//
//	@Summary		Upload a media file
//	@Description	Streams one multipart file to the storage provider and returns the provider's descriptor unchanged.
//	@Tags			media
//	@Accept			multipart/form-data
//	@Produce		json
//	@Param			media_file	formData	file	true	"File to store"
//	@Success		200			{object}	map[string]interface{}
//	@Failure		400			{object}	response.Message
//	@Failure		422			{object}	response.Message
//	@Failure		429			{object}	response.Message
//	@Failure		502			{object}	response.Message
//	@Failure		500			{object}	response.Message
//	@Router			/media/upload [post]
func (h *Handler) Upload(w http.ResponseWriter, r *http.Request) {
	form, ok := upload.FromContext(r.Context())
	if !ok || form.File == nil {
		response.BadRequest(w, MsgNoFile)
		return
	}

	d, err := h.svc.Upload(r.Context(), form.File)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	response.OK(w, d)
}

func (h *Handler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	kind := storage.KindOf(err)
	h.log.Error("media upload failed",
		zap.String("request_id", chiMiddleware.GetReqID(r.Context())),
		zap.String("kind", string(kind)),
		zap.Error(err),
	)

	switch kind {
	case storage.KindInvalidInput:
		response.BadRequest(w, MsgNoFile)
	case storage.KindProviderRejected:
		response.UnprocessableEntity(w, "upload rejected by storage provider")
	case storage.KindProviderUnavailable:
		response.BadGateway(w, "storage provider unavailable")
	default:
		response.InternalError(w)
	}
}
